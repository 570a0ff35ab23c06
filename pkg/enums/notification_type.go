package enums

import "fmt"

// NotificationType distinguishes admin-facing and requester-facing events.
type NotificationType string

const (
	NotificationTypeNewRequest    NotificationType = "NEW_REQUEST"
	NotificationTypeStatusChanged NotificationType = "STATUS_CHANGED"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeNewRequest,
	NotificationTypeStatusChanged,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}

package enums

import "fmt"

// RequestStatus tracks the lifecycle of a stock request.
type RequestStatus string

const (
	RequestStatusPending           RequestStatus = "PENDING"
	RequestStatusApproved          RequestStatus = "APPROVED"
	RequestStatusPartiallyApproved RequestStatus = "PARTIALLY_APPROVED"
	RequestStatusRejected          RequestStatus = "REJECTED"
)

var validRequestStatuses = []RequestStatus{
	RequestStatusPending,
	RequestStatusApproved,
	RequestStatusPartiallyApproved,
	RequestStatusRejected,
}

// String implements fmt.Stringer.
func (r RequestStatus) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RequestStatus.
func (r RequestStatus) IsValid() bool {
	for _, candidate := range validRequestStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is allowed from the status.
func (r RequestStatus) IsTerminal() bool {
	return r.IsValid() && r != RequestStatusPending
}

// ParseRequestStatus converts raw input into a RequestStatus.
func ParseRequestStatus(value string) (RequestStatus, error) {
	for _, candidate := range validRequestStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid request status %q", value)
}

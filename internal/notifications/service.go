package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/security"
)

const (
	adminListLimit = 50

	// DefaultRetention is how long read notifications are kept before the
	// cleanup job removes them.
	DefaultRetention = 30 * 24 * time.Hour
)

// Service defines the notification read surface plus retention cleanup.
type Service interface {
	ListForAdmin(ctx context.Context, adminID uuid.UUID) ([]NotificationView, error)
	UnreadCount(ctx context.Context, adminID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, adminID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, adminID uuid.UUID) (int64, error)
	ListForToken(ctx context.Context, token string) ([]NotificationView, error)
	PurgeRead(ctx context.Context, retention time.Duration) (int64, error)
}

type service struct {
	repo  Repository
	clock func() time.Time
}

// NewService wires a notification service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("notification repository required")
	}
	return &service{repo: repo, clock: time.Now}, nil
}

func (s *service) ListForAdmin(ctx context.Context, adminID uuid.UUID) ([]NotificationView, error) {
	if adminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "admin identity missing")
	}
	rows, err := s.repo.ListForAdmin(ctx, adminID, adminListLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}
	return viewsFromModels(rows), nil
}

func (s *service) UnreadCount(ctx context.Context, adminID uuid.UUID) (int64, error) {
	if adminID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeUnauthorized, "admin identity missing")
	}
	count, err := s.repo.UnreadCount(ctx, adminID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread notifications")
	}
	return count, nil
}

func (s *service) MarkRead(ctx context.Context, adminID, notificationID uuid.UUID) error {
	if adminID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "admin identity missing")
	}
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}
	found, err := s.repo.MarkRead(ctx, adminID, notificationID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, adminID uuid.UUID) (int64, error) {
	if adminID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeUnauthorized, "admin identity missing")
	}
	count, err := s.repo.MarkAllRead(ctx, adminID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return count, nil
}

// ListForToken returns the requester-facing notifications for a tracking
// token. Malformed tokens read as not found so the endpoint does not reveal
// whether a token exists.
func (s *service) ListForToken(ctx context.Context, token string) ([]NotificationView, error) {
	if !security.IsTrackingToken(token) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
	}
	rows, err := s.repo.ListForToken(ctx, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications by token")
	}
	return viewsFromModels(rows), nil
}

func (s *service) PurgeRead(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		retention = DefaultRetention
	}
	cutoff := s.clock().Add(-retention)
	purged, err := s.repo.PurgeRead(ctx, cutoff)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "purge read notifications")
	}
	return purged, nil
}

// NotificationView is the notification representation returned to controllers.
type NotificationView struct {
	ID        uuid.UUID  `json:"id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	RequestID *uuid.UUID `json:"requestId,omitempty"`
	IsRead    bool       `json:"isRead"`
	CreatedAt time.Time  `json:"createdAt"`
}

func viewsFromModels(rows []models.Notification) []NotificationView {
	views := make([]NotificationView, 0, len(rows))
	for _, row := range rows {
		views = append(views, NotificationView{
			ID:        row.ID,
			Type:      string(row.Type),
			Title:     row.Title,
			Message:   row.Message,
			RequestID: row.RequestID,
			IsRead:    row.IsRead,
			CreatedAt: row.CreatedAt,
		})
	}
	return views
}

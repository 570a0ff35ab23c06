package notifications

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
)

// Emitter writes workflow notifications on the caller's transaction so they
// commit or roll back together with the request mutation.
type Emitter struct {
	repo Repository
}

// NewEmitter builds the notification emitter consumed by the request workflow.
func NewEmitter(repo Repository) (*Emitter, error) {
	if repo == nil {
		return nil, fmt.Errorf("notification repository required")
	}
	return &Emitter{repo: repo}, nil
}

// NewRequest fans one notification out to every admin account.
func (e *Emitter) NewRequest(ctx context.Context, tx *gorm.DB, request *models.Request) error {
	repo := e.repo.WithTx(tx)

	adminIDs, err := repo.ListAdminIDs(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list admins for notification")
	}
	if len(adminIDs) == 0 {
		return nil
	}

	requestID := request.ID
	rows := make([]models.Notification, 0, len(adminIDs))
	for _, adminID := range adminIDs {
		id := adminID
		rows = append(rows, models.Notification{
			Type:      enums.NotificationTypeNewRequest,
			Title:     "New inventory request",
			Message:   fmt.Sprintf("%s submitted request %s", request.RequesterName, request.RequestNumber),
			RequestID: &requestID,
			AdminID:   &id,
		})
	}
	if err := repo.CreateBatch(ctx, rows); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create admin notifications")
	}
	return nil
}

// StatusChanged notifies the requester through the tracking token.
func (e *Emitter) StatusChanged(ctx context.Context, tx *gorm.DB, request *models.Request) error {
	repo := e.repo.WithTx(tx)

	requestID := request.ID
	token := request.TrackingToken
	row := models.Notification{
		Type:          enums.NotificationTypeStatusChanged,
		Title:         "Request " + request.RequestNumber + " updated",
		Message:       statusMessage(request),
		RequestID:     &requestID,
		TrackingToken: &token,
	}
	if err := repo.CreateBatch(ctx, []models.Notification{row}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create requester notification")
	}
	return nil
}

func statusMessage(request *models.Request) string {
	switch request.Status {
	case enums.RequestStatusApproved:
		return fmt.Sprintf("Request %s has been approved", request.RequestNumber)
	case enums.RequestStatusPartiallyApproved:
		return fmt.Sprintf("Request %s has been partially approved", request.RequestNumber)
	case enums.RequestStatusRejected:
		if request.RejectionReason != nil && *request.RejectionReason != "" {
			return fmt.Sprintf("Request %s has been rejected: %s", request.RequestNumber, *request.RejectionReason)
		}
		return fmt.Sprintf("Request %s has been rejected", request.RequestNumber)
	default:
		return fmt.Sprintf("Request %s is now %s", request.RequestNumber, request.Status)
	}
}

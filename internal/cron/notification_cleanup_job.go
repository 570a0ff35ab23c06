package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/stockroomhq/stockroom-backend/pkg/logger"
)

type notificationPurger interface {
	PurgeRead(ctx context.Context, retention time.Duration) (int64, error)
}

// NotificationCleanupJobParams configures the notification retention job.
type NotificationCleanupJobParams struct {
	Logger        *logger.Logger
	Notifications notificationPurger
	Retention     time.Duration
}

// NewNotificationCleanupJob builds the job that deletes read notifications
// older than the retention window.
func NewNotificationCleanupJob(params NotificationCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Notifications == nil {
		return nil, fmt.Errorf("notifications service required")
	}
	return &notificationCleanupJob{
		logg:      params.Logger,
		purger:    params.Notifications,
		retention: params.Retention,
	}, nil
}

type notificationCleanupJob struct {
	logg      *logger.Logger
	purger    notificationPurger
	retention time.Duration
}

func (j *notificationCleanupJob) Name() string { return "notification-cleanup" }

func (j *notificationCleanupJob) Run(ctx context.Context) error {
	purged, err := j.purger.PurgeRead(ctx, j.retention)
	if err != nil {
		return fmt.Errorf("notification cleanup: %w", err)
	}
	logCtx := j.logg.WithField(ctx, "rows_deleted", purged)
	j.logg.Info(logCtx, "notification cleanup complete")
	return nil
}

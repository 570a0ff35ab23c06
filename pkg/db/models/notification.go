package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/stockroomhq/stockroom-backend/pkg/enums"
)

// Notification stores in-app notification payloads. Admin-facing rows carry
// AdminID; requester-facing rows carry the tracking token instead.
type Notification struct {
	ID            uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Type          enums.NotificationType `gorm:"type:text;not null"`
	Title         string                 `gorm:"type:text;not null"`
	Message       string                 `gorm:"type:text;not null"`
	RequestID     *uuid.UUID             `gorm:"column:request_id;type:uuid;index"`
	AdminID       *uuid.UUID             `gorm:"column:admin_id;type:uuid;index"`
	TrackingToken *string                `gorm:"column:tracking_token;type:text;index"`
	IsRead        bool                   `gorm:"column:is_read;not null;default:false"`
	CreatedAt     time.Time              `gorm:"column:created_at;autoCreateTime;index"`
}

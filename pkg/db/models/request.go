package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/stockroomhq/stockroom-backend/pkg/db/types"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
)

// Request is an inventory request submitted through the public form. Status
// transitions are one-way: PENDING is the only non-terminal state.
type Request struct {
	ID              uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	RequestNumber   string              `gorm:"column:request_number;type:text;not null;uniqueIndex"`
	TrackingToken   string              `gorm:"column:tracking_token;type:text;not null;uniqueIndex"`
	RequesterName   string              `gorm:"column:requester_name;type:text;not null"`
	DivisionID      uuid.UUID           `gorm:"column:division_id;type:uuid;not null"`
	Status          enums.RequestStatus `gorm:"type:text;not null;default:'PENDING'"`
	RejectionReason *string             `gorm:"column:rejection_reason;type:text"`
	FormData        dbtypes.JSONMap     `gorm:"column:form_data;type:jsonb"`
	RequestDate     time.Time           `gorm:"column:request_date;not null"`
	ApprovalDate    *time.Time          `gorm:"column:approval_date"`
	ApprovedByID    *uuid.UUID          `gorm:"column:approved_by_id;type:uuid"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`

	Division   *Division     `gorm:"foreignKey:DivisionID"`
	ApprovedBy *Admin        `gorm:"foreignKey:ApprovedByID"`
	Items      []RequestItem `gorm:"foreignKey:RequestID"`
}

// RequestItem is one line of a request. QtyApproved stays nil until the
// request is processed.
type RequestItem struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	RequestID    uuid.UUID `gorm:"column:request_id;type:uuid;not null;index"`
	ItemID       uuid.UUID `gorm:"column:item_id;type:uuid;not null;index"`
	QtyRequested int       `gorm:"column:qty_requested;not null"`
	QtyApproved  *int      `gorm:"column:qty_approved"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`

	Item *Item `gorm:"foreignKey:ItemID"`
}

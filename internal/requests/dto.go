package requests

import (
	"time"

	"github.com/google/uuid"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	"github.com/stockroomhq/stockroom-backend/pkg/pagination"
)

// MaxItemsPerRequest caps the number of lines a single request may carry.
const MaxItemsPerRequest = 10

// LineInput is one requested item line.
type LineInput struct {
	ItemID uuid.UUID
	Qty    int
}

// SubmitInput carries a public form submission.
type SubmitInput struct {
	RequesterName string
	DivisionID    uuid.UUID
	FormData      map[string]string
	Items         []LineInput
}

// UpdateInput replaces a pending request's content wholesale.
type UpdateInput struct {
	RequesterName string
	DivisionID    uuid.UUID
	FormData      map[string]string
	Items         []LineInput
}

// ApprovalLine carries the admin's decision for one request line.
type ApprovalLine struct {
	RequestItemID uuid.UUID
	QtyApproved   int
}

// ApproveInput carries a full approval decision.
type ApproveInput struct {
	RequestID uuid.UUID
	AdminID   uuid.UUID
	Lines     []ApprovalLine
}

// RejectInput carries a rejection decision.
type RejectInput struct {
	RequestID uuid.UUID
	AdminID   uuid.UUID
	Reason    string
}

// ListParams filters the admin request listing.
type ListParams struct {
	Status     *enums.RequestStatus
	DivisionID *uuid.UUID
	ItemID     *uuid.UUID
	From       *time.Time
	To         *time.Time
	Pagination pagination.Params
}

// LineDetail is a request line joined with its item.
type LineDetail struct {
	ID           uuid.UUID `json:"id"`
	ItemID       uuid.UUID `json:"itemId"`
	ItemName     string    `json:"itemName"`
	QtyRequested int       `json:"qtyRequested"`
	QtyApproved  *int      `json:"qtyApproved,omitempty"`
}

// Detail is the full request view returned to both admins and requesters.
type Detail struct {
	ID              uuid.UUID           `json:"id"`
	RequestNumber   string              `json:"requestNumber"`
	TrackingToken   string              `json:"trackingToken,omitempty"`
	RequesterName   string              `json:"requesterName"`
	DivisionID      uuid.UUID           `json:"divisionId"`
	DivisionName    string              `json:"divisionName,omitempty"`
	Status          enums.RequestStatus `json:"status"`
	RejectionReason *string             `json:"rejectionReason,omitempty"`
	FormData        map[string]string   `json:"formData,omitempty"`
	RequestDate     time.Time           `json:"requestDate"`
	ApprovalDate    *time.Time          `json:"approvalDate,omitempty"`
	ApprovedByName  *string             `json:"approvedByName,omitempty"`
	Items           []LineDetail        `json:"items"`
	CreatedAt       time.Time           `json:"createdAt"`
}

func detailFromModel(req *models.Request) *Detail {
	if req == nil {
		return nil
	}

	detail := &Detail{
		ID:              req.ID,
		RequestNumber:   req.RequestNumber,
		TrackingToken:   req.TrackingToken,
		RequesterName:   req.RequesterName,
		DivisionID:      req.DivisionID,
		Status:          req.Status,
		RejectionReason: req.RejectionReason,
		FormData:        map[string]string(req.FormData),
		RequestDate:     req.RequestDate,
		ApprovalDate:    req.ApprovalDate,
		CreatedAt:       req.CreatedAt,
	}
	if req.Division != nil {
		detail.DivisionName = req.Division.Name
	}
	if req.ApprovedBy != nil {
		name := req.ApprovedBy.Name
		detail.ApprovedByName = &name
	}
	for _, line := range req.Items {
		ld := LineDetail{
			ID:           line.ID,
			ItemID:       line.ItemID,
			QtyRequested: line.QtyRequested,
			QtyApproved:  line.QtyApproved,
		}
		if line.Item != nil {
			ld.ItemName = line.Item.Name
		}
		detail.Items = append(detail.Items, ld)
	}
	return detail
}

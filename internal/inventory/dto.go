package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
)

// CreateItemInput carries a new item definition. InitialStock is pinned to
// the starting stock so the ledger can be reconciled later.
type CreateItemInput struct {
	Name      string
	Stock     int
	Threshold *int
	ImageURL  *string
	AdminID   uuid.UUID
}

// UpdateItemInput carries partial item updates. Stock is deliberately absent;
// stock only moves through the ledger operations.
type UpdateItemInput struct {
	Name      *string
	Threshold *int
	ImageURL  *string
}

// StockActionInput covers restock, reduction and damaged writes. Notes is
// mandatory; every ledger row carries the operator's explanation.
type StockActionInput struct {
	ItemID  uuid.UUID
	Qty     int
	Notes   string
	AdminID uuid.UUID
}

// AdjustInput sets an absolute stock level with an audit trail.
type AdjustInput struct {
	ItemID   uuid.UUID
	NewStock int
	Reason   string
	AdminID  uuid.UUID
}

// SetStockInput is the administrative overwrite. No ledger row is written;
// the reconcile job will surface the drift.
type SetStockInput struct {
	ItemID   uuid.UUID
	NewStock int
	AdminID  uuid.UUID
}

// ItemView is the item representation returned to controllers.
type ItemView struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Stock        int       `json:"stock"`
	InitialStock int       `json:"initialStock"`
	Threshold    int       `json:"threshold"`
	ImageURL     *string   `json:"imageUrl,omitempty"`
	IsActive     bool      `json:"isActive"`
	LowStock     bool      `json:"lowStock"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func viewFromModel(item *models.Item) *ItemView {
	if item == nil {
		return nil
	}
	return &ItemView{
		ID:           item.ID,
		Name:         item.Name,
		Stock:        item.Stock,
		InitialStock: item.InitialStock,
		Threshold:    item.Threshold,
		ImageURL:     item.ImageURL,
		IsActive:     item.IsActive,
		LowStock:     item.LowStock(),
		CreatedAt:    item.CreatedAt,
		UpdatedAt:    item.UpdatedAt,
	}
}

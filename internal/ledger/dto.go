package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	"github.com/stockroomhq/stockroom-backend/pkg/pagination"
)

// HistoryFilter narrows the unified ledger listing.
type HistoryFilter struct {
	ItemID     *uuid.UUID
	From       *time.Time
	To         *time.Time
	Pagination pagination.Params
}

// HistoryEntry is one ledger row joined with its item, admin and request.
type HistoryEntry struct {
	ID            uuid.UUID             `json:"id"`
	ItemID        uuid.UUID             `json:"itemId"`
	ItemName      string                `json:"itemName"`
	ChangeType    enums.StockChangeType `json:"changeType"`
	QtyChange     int                   `json:"qtyChange"`
	Notes         *string               `json:"notes,omitempty"`
	RequestID     *uuid.UUID            `json:"requestId,omitempty"`
	RequestNumber *string               `json:"requestNumber,omitempty"`
	AdminID       *uuid.UUID            `json:"adminId,omitempty"`
	AdminName     *string               `json:"adminName,omitempty"`
	CreatedAt     time.Time             `json:"createdAt"`
}

// AdjustmentEntry is one direct-correction audit row with its joins.
type AdjustmentEntry struct {
	ID          uuid.UUID `json:"id"`
	ItemID      uuid.UUID `json:"itemId"`
	ItemName    string    `json:"itemName"`
	StockBefore int       `json:"stockBefore"`
	StockAfter  int       `json:"stockAfter"`
	Reason      string    `json:"reason"`
	AdminID     uuid.UUID `json:"adminId"`
	AdminName   *string   `json:"adminName,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ItemBalance pairs an item's live stock with the sum of its ledger rows.
type ItemBalance struct {
	ItemID       uuid.UUID
	Name         string
	Stock        int
	InitialStock int
	LedgerSum    int
}

// Drift describes one item whose stock disagrees with its ledger.
type Drift struct {
	ItemID   uuid.UUID `json:"itemId"`
	Name     string    `json:"name"`
	Stock    int       `json:"stock"`
	Expected int       `json:"expected"`
}

// ReconcileReport summarizes one reconciliation pass.
type ReconcileReport struct {
	Checked int     `json:"checked"`
	Drifts  []Drift `json:"drifts"`
}

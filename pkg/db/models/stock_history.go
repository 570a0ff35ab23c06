package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/stockroomhq/stockroom-backend/pkg/enums"
)

// StockHistory is the append-only ledger of stock movements. Rows are never
// updated or deleted; corrections get their own ADJUSTMENT row.
type StockHistory struct {
	ID         uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ItemID     uuid.UUID             `gorm:"column:item_id;type:uuid;not null;index"`
	ChangeType enums.StockChangeType `gorm:"column:change_type;type:text;not null"`
	QtyChange  int                   `gorm:"column:qty_change;not null"`
	Notes      *string               `gorm:"column:notes;type:text"`
	RequestID  *uuid.UUID            `gorm:"column:request_id;type:uuid;index"`
	AdminID    *uuid.UUID            `gorm:"column:admin_id;type:uuid"`
	CreatedAt  time.Time             `gorm:"column:created_at;autoCreateTime;index"`

	Item  *Item  `gorm:"foreignKey:ItemID"`
	Admin *Admin `gorm:"foreignKey:AdminID"`
}

// StockAdjustment is the dual-write audit record for direct corrections. Only
// ADJUSTMENT ledger rows get a companion row here.
type StockAdjustment struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ItemID      uuid.UUID `gorm:"column:item_id;type:uuid;not null;index"`
	StockBefore int       `gorm:"column:stock_before;not null"`
	StockAfter  int       `gorm:"column:stock_after;not null"`
	Reason      string    `gorm:"column:reason;type:text;not null"`
	AdminID     uuid.UUID `gorm:"column:admin_id;type:uuid;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`

	Item  *Item  `gorm:"foreignKey:ItemID"`
	Admin *Admin `gorm:"foreignKey:AdminID"`
}

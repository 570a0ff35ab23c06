package models

import (
	"time"

	"github.com/google/uuid"
)

// Item is a stocked inventory item. InitialStock is fixed at creation; the
// append-only stock history should always explain the distance between it and
// the live Stock column.
type Item struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string    `gorm:"type:text;not null;uniqueIndex"`
	Stock        int       `gorm:"column:stock;not null;default:0"`
	InitialStock int       `gorm:"column:initial_stock;not null;default:0"`
	Threshold    int       `gorm:"column:threshold;not null;default:10"`
	ImageURL     *string   `gorm:"column:image_url"`
	IsActive     bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// LowStock reports whether the item sits at or below its alert threshold.
func (i Item) LowStock() bool {
	return i.Stock <= i.Threshold
}

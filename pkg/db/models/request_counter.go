package models

// RequestCounter backs the gapless per-year request number sequence. The row
// for a year is created on first use and bumped with an atomic upsert.
type RequestCounter struct {
	Year       int `gorm:"column:year;primaryKey"`
	LastNumber int `gorm:"column:last_number;not null;default:0"`
}

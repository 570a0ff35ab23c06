package requests

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// NextRequestNumber allocates the next request number for the given year on
// the caller's transaction. The counter row is the serialization point, so
// concurrent submissions block on the row lock and never observe the same
// number.
func NextRequestNumber(ctx context.Context, tx *gorm.DB, year int) (string, error) {
	if tx == nil {
		return "", fmt.Errorf("transaction required for request number allocation")
	}

	var lastNumber int
	err := tx.WithContext(ctx).Raw(`
		INSERT INTO request_counters (year, last_number)
		VALUES (?, 1)
		ON CONFLICT (year)
		DO UPDATE SET last_number = request_counters.last_number + 1
		RETURNING last_number
	`, year).Scan(&lastNumber).Error
	if err != nil {
		return "", fmt.Errorf("allocate request number for %d: %w", year, err)
	}

	return FormatRequestNumber(year, lastNumber), nil
}

// FormatRequestNumber renders the canonical request number string.
func FormatRequestNumber(year, number int) string {
	return fmt.Sprintf("REQ-%d-%04d", year, number)
}

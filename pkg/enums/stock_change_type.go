package enums

import "fmt"

// StockChangeType classifies every row in the stock ledger.
type StockChangeType string

const (
	StockChangeRestock    StockChangeType = "RESTOCK"
	StockChangeReduction  StockChangeType = "REDUCTION"
	StockChangeAdjustment StockChangeType = "ADJUSTMENT"
	StockChangeDamaged    StockChangeType = "DAMAGED"
	StockChangeApproved   StockChangeType = "APPROVED"
)

var validStockChangeTypes = []StockChangeType{
	StockChangeRestock,
	StockChangeReduction,
	StockChangeAdjustment,
	StockChangeDamaged,
	StockChangeApproved,
}

// String implements fmt.Stringer.
func (s StockChangeType) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StockChangeType.
func (s StockChangeType) IsValid() bool {
	for _, candidate := range validStockChangeTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStockChangeType converts raw input into a StockChangeType.
func ParseStockChangeType(value string) (StockChangeType, error) {
	for _, candidate := range validStockChangeTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock change type %q", value)
}

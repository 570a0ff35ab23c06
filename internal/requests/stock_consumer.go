package requests

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
)

type stockConsumerImpl struct{}

// NewStockConsumer exposes the default stock consumption implementation.
func NewStockConsumer() StockConsumer {
	return stockConsumerImpl{}
}

// ConsumeApproved draws down stock for one approved line. The stock >= qty
// guard in the WHERE clause is what keeps stock non-negative under
// concurrency: no row updated means somebody got there first.
func (stockConsumerImpl) ConsumeApproved(ctx context.Context, tx *gorm.DB, input ConsumeInput) error {
	if input.Qty <= 0 {
		return nil
	}
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock consumption")
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE items
		SET stock = stock - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND stock >= ?
	`, input.Qty, input.ItemID, input.Qty)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "consume stock")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock for approval").
			WithDetails(map[string]any{"item_id": input.ItemID, "qty": input.Qty})
	}

	notes := input.RequestNumber
	adminID := input.AdminID
	requestID := input.RequestID
	history := models.StockHistory{
		ID:         uuid.New(),
		ItemID:     input.ItemID,
		ChangeType: enums.StockChangeApproved,
		QtyChange:  -input.Qty,
		Notes:      &notes,
		RequestID:  &requestID,
		AdminID:    &adminID,
	}
	if err := tx.WithContext(ctx).Create(&history).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append stock history")
	}
	return nil
}

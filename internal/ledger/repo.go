package ledger

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository reads the stock ledger and its audit companions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	History(ctx context.Context, filter HistoryFilter) ([]HistoryEntry, int64, error)
	Adjustments(ctx context.Context, itemID *uuid.UUID) ([]AdjustmentEntry, error)
	ItemBalances(ctx context.Context) ([]ItemBalance, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) historyQuery(ctx context.Context, filter HistoryFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Table("stock_histories")
	if filter.ItemID != nil {
		query = query.Where("stock_histories.item_id = ?", *filter.ItemID)
	}
	if filter.From != nil {
		query = query.Where("stock_histories.created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("stock_histories.created_at <= ?", *filter.To)
	}
	return query
}

func (r *repository) History(ctx context.Context, filter HistoryFilter) ([]HistoryEntry, int64, error) {
	var total int64
	if err := r.historyQuery(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params := filter.Pagination.Normalize()
	var entries []HistoryEntry
	err := r.historyQuery(ctx, filter).
		Select(`stock_histories.id,
			stock_histories.item_id,
			items.name AS item_name,
			stock_histories.change_type,
			stock_histories.qty_change,
			stock_histories.notes,
			stock_histories.request_id,
			requests.request_number,
			stock_histories.admin_id,
			admins.name AS admin_name,
			stock_histories.created_at`).
		Joins("JOIN items ON items.id = stock_histories.item_id").
		Joins("LEFT JOIN requests ON requests.id = stock_histories.request_id").
		Joins("LEFT JOIN admins ON admins.id = stock_histories.admin_id").
		Order("stock_histories.created_at DESC").
		Offset(params.Offset()).
		Limit(params.Limit).
		Scan(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *repository) Adjustments(ctx context.Context, itemID *uuid.UUID) ([]AdjustmentEntry, error) {
	query := r.db.WithContext(ctx).
		Table("stock_adjustments").
		Select(`stock_adjustments.id,
			stock_adjustments.item_id,
			items.name AS item_name,
			stock_adjustments.stock_before,
			stock_adjustments.stock_after,
			stock_adjustments.reason,
			stock_adjustments.admin_id,
			admins.name AS admin_name,
			stock_adjustments.created_at`).
		Joins("JOIN items ON items.id = stock_adjustments.item_id").
		Joins("LEFT JOIN admins ON admins.id = stock_adjustments.admin_id").
		Order("stock_adjustments.created_at DESC")
	if itemID != nil {
		query = query.Where("stock_adjustments.item_id = ?", *itemID)
	}

	var entries []AdjustmentEntry
	if err := query.Scan(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ItemBalances sums the ledger per active item so the reconcile pass can
// compare it against the live stock column.
func (r *repository) ItemBalances(ctx context.Context) ([]ItemBalance, error) {
	var balances []ItemBalance
	err := r.db.WithContext(ctx).
		Table("items").
		Select(`items.id AS item_id,
			items.name,
			items.stock,
			items.initial_stock,
			COALESCE(SUM(stock_histories.qty_change), 0) AS ledger_sum`).
		Joins("LEFT JOIN stock_histories ON stock_histories.item_id = items.id").
		Where("items.is_active = ?", true).
		Group("items.id, items.name, items.stock, items.initial_stock").
		Order("items.name ASC").
		Scan(&balances).Error
	if err != nil {
		return nil, err
	}
	return balances, nil
}

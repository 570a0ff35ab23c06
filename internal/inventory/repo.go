package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
)

// Repository exposes persistence helpers for items and the stock ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, item *models.Item) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	List(ctx context.Context, includeInactive bool) ([]models.Item, error)
	ListLowStock(ctx context.Context) ([]models.Item, error)
	TotalStock(ctx context.Context) (int64, error)
	UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	CountPendingReferences(ctx context.Context, itemID uuid.UUID) (int64, error)
	AddStock(ctx context.Context, id uuid.UUID, qty int) (bool, error)
	RemoveStock(ctx context.Context, id uuid.UUID, qty int) (bool, error)
	CompareAndSetStock(ctx context.Context, id uuid.UUID, oldStock, newStock int) (bool, error)
	OverwriteStock(ctx context.Context, id uuid.UUID, newStock int) (bool, error)
	AppendHistory(ctx context.Context, row *models.StockHistory) error
	CreateAdjustment(ctx context.Context, row *models.StockAdjustment) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an inventory repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, item *models.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var item models.Item
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) List(ctx context.Context, includeInactive bool) ([]models.Item, error) {
	query := r.db.WithContext(ctx).Model(&models.Item{})
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	var items []models.Item
	if err := query.Order("name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) ListLowStock(ctx context.Context) ([]models.Item, error) {
	var items []models.Item
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND stock <= threshold", true).
		Order("stock ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) TotalStock(ctx context.Context) (int64, error) {
	var total *int64
	err := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("is_active = ?", true).
		Select("SUM(stock)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

func (r *repository) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("id = ?", id).
		UpdateColumn("is_active", false).Error
}

// CountPendingReferences counts pending request lines that still point at the
// item. Soft deletes are blocked while any exist.
func (r *repository) CountPendingReferences(ctx context.Context, itemID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RequestItem{}).
		Joins("JOIN requests ON requests.id = request_items.request_id").
		Where("request_items.item_id = ? AND requests.status = ?", itemID, enums.RequestStatusPending).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) AddStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE items
		SET stock = stock + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND is_active = ?
	`, qty, id, true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// RemoveStock decrements stock only when enough is available. The guard in
// the WHERE clause keeps the column non-negative under concurrency.
func (r *repository) RemoveStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE items
		SET stock = stock - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND is_active = ? AND stock >= ?
	`, qty, id, true, qty)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CompareAndSetStock writes an absolute stock level only if the current value
// still matches what the caller observed.
func (r *repository) CompareAndSetStock(ctx context.Context, id uuid.UUID, oldStock, newStock int) (bool, error) {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE items
		SET stock = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND is_active = ? AND stock = ?
	`, newStock, id, true, oldStock)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) OverwriteStock(ctx context.Context, id uuid.UUID, newStock int) (bool, error) {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE items
		SET stock = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, newStock, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) AppendHistory(ctx context.Context, row *models.StockHistory) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *repository) CreateAdjustment(ctx context.Context, row *models.StockAdjustment) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(row).Error
}

package divisions

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
)

// Repository manages persistence for divisions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, division *models.Division) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Division, error)
	FindByName(ctx context.Context, name string) (*models.Division, error)
	ListActive(ctx context.Context) ([]models.Division, error)
	UpdateName(ctx context.Context, id uuid.UUID, name string) error
	Reactivate(ctx context.Context, id uuid.UUID) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	CountPendingReferences(ctx context.Context, divisionID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a division repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, division *models.Division) error {
	return r.db.WithContext(ctx).Create(division).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Division, error) {
	var division models.Division
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&division).Error; err != nil {
		return nil, err
	}
	return &division, nil
}

// FindByName matches on the unique name regardless of active state so a
// soft-deleted division can be found and reactivated.
func (r *repository) FindByName(ctx context.Context, name string) (*models.Division, error) {
	var division models.Division
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&division).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &division, nil
}

func (r *repository) ListActive(ctx context.Context) ([]models.Division, error) {
	var divisions []models.Division
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&divisions).Error
	if err != nil {
		return nil, err
	}
	return divisions, nil
}

func (r *repository) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	return r.db.WithContext(ctx).
		Model(&models.Division{}).
		Where("id = ?", id).
		UpdateColumn("name", name).Error
}

func (r *repository) Reactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Division{}).
		Where("id = ?", id).
		UpdateColumn("is_active", true).Error
}

func (r *repository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Division{}).
		Where("id = ?", id).
		UpdateColumn("is_active", false).Error
}

// CountPendingReferences counts pending requests filed under the division.
// Soft deletes are blocked while any exist.
func (r *repository) CountPendingReferences(ctx context.Context, divisionID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Request{}).
		Where("division_id = ? AND status = ?", divisionID, enums.RequestStatusPending).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

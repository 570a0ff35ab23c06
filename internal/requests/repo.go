package requests

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	dbtypes "github.com/stockroomhq/stockroom-backend/pkg/db/types"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
)

// Repository exposes persistence helpers for requests.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, request *models.Request) error
	CreateItems(ctx context.Context, items []models.RequestItem) error
	ReplaceItems(ctx context.Context, requestID uuid.UUID, items []models.RequestItem) error
	NextRequestNumber(ctx context.Context, year int) (string, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Request, error)
	FindByToken(ctx context.Context, token string) (*models.Request, error)
	List(ctx context.Context, params ListParams) ([]models.Request, int64, error)
	MarkProcessed(ctx context.Context, id uuid.UUID, status enums.RequestStatus, adminID uuid.UUID, reason *string, now time.Time) (bool, error)
	UpdatePendingHeader(ctx context.Context, id uuid.UUID, requesterName string, divisionID uuid.UUID, formData dbtypes.JSONMap) (bool, error)
	SetLineApproved(ctx context.Context, lineID uuid.UUID, qty int) error
	FindActiveDivision(ctx context.Context, id uuid.UUID) (*models.Division, error)
	FindActiveItemsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Item, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a requests repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, request *models.Request) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *repository) CreateItems(ctx context.Context, items []models.RequestItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) ReplaceItems(ctx context.Context, requestID uuid.UUID, items []models.RequestItem) error {
	if err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Delete(&models.RequestItem{}).Error; err != nil {
		return err
	}
	return r.CreateItems(ctx, items)
}

func (r *repository) NextRequestNumber(ctx context.Context, year int) (string, error) {
	return NextRequestNumber(ctx, r.db, year)
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Request, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *repository) FindByToken(ctx context.Context, token string) (*models.Request, error) {
	return r.findOne(ctx, "tracking_token = ?", token)
}

func (r *repository) findOne(ctx context.Context, cond string, arg any) (*models.Request, error) {
	var request models.Request
	err := r.db.WithContext(ctx).
		Preload("Division").
		Preload("ApprovedBy").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("request_items.created_at ASC")
		}).
		Preload("Items.Item").
		Where(cond, arg).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) List(ctx context.Context, params ListParams) ([]models.Request, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Request{})
	if params.Status != nil {
		query = query.Where("requests.status = ?", *params.Status)
	}
	if params.DivisionID != nil {
		query = query.Where("requests.division_id = ?", *params.DivisionID)
	}
	if params.ItemID != nil {
		query = query.Where(
			"EXISTS (SELECT 1 FROM request_items ri WHERE ri.request_id = requests.id AND ri.item_id = ?)",
			*params.ItemID,
		)
	}
	if params.From != nil {
		query = query.Where("requests.created_at >= ?", *params.From)
	}
	if params.To != nil {
		query = query.Where("requests.created_at <= ?", *params.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	normalized := params.Pagination.Normalize()
	var rows []models.Request
	err := query.
		Preload("Division").
		Preload("ApprovedBy").
		Preload("Items").
		Preload("Items.Item").
		Order("requests.created_at DESC").
		Limit(normalized.Limit).
		Offset(params.Pagination.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// MarkProcessed performs the winner-takes-all terminal transition. The status
// precondition in the WHERE clause makes concurrent decisions race safely:
// exactly one caller sees RowsAffected == 1.
func (r *repository) MarkProcessed(ctx context.Context, id uuid.UUID, status enums.RequestStatus, adminID uuid.UUID, reason *string, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE requests
		SET status = ?,
			approved_by_id = ?,
			approval_date = ?,
			rejection_reason = ?,
			updated_at = ?
		WHERE id = ? AND status = ?
	`, status, adminID, now, reason, now, id, enums.RequestStatusPending)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpdatePendingHeader rewrites the editable fields while the request is still
// pending. RowsAffected == 0 means it was processed in the meantime.
func (r *repository) UpdatePendingHeader(ctx context.Context, id uuid.UUID, requesterName string, divisionID uuid.UUID, formData dbtypes.JSONMap) (bool, error) {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE requests
		SET requester_name = ?,
			division_id = ?,
			form_data = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?
	`, requesterName, divisionID, formData, id, enums.RequestStatusPending)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) SetLineApproved(ctx context.Context, lineID uuid.UUID, qty int) error {
	return r.db.WithContext(ctx).
		Model(&models.RequestItem{}).
		Where("id = ?", lineID).
		UpdateColumn("qty_approved", qty).Error
}

func (r *repository) FindActiveDivision(ctx context.Context, id uuid.UUID) (*models.Division, error) {
	var division models.Division
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&division).Error
	if err != nil {
		return nil, err
	}
	return &division, nil
}

func (r *repository) FindActiveItemsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []models.Item
	err := r.db.WithContext(ctx).
		Where("id IN ? AND is_active = ?", ids, true).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

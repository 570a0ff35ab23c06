package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/metrics"
)

const defaultThreshold = 10

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines item and stock ledger operations.
type Service interface {
	CreateItem(ctx context.Context, input CreateItemInput) (*ItemView, error)
	UpdateItem(ctx context.Context, id uuid.UUID, input UpdateItemInput) (*ItemView, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
	GetItem(ctx context.Context, id uuid.UUID) (*ItemView, error)
	ListItems(ctx context.Context, includeInactive bool) ([]ItemView, error)
	ListLowStock(ctx context.Context) ([]ItemView, error)
	TotalStock(ctx context.Context) (int64, error)
	Restock(ctx context.Context, input StockActionInput) (*ItemView, error)
	Reduce(ctx context.Context, input StockActionInput) (*ItemView, error)
	RecordDamaged(ctx context.Context, input StockActionInput) (*ItemView, error)
	Adjust(ctx context.Context, input AdjustInput) (*ItemView, error)
	SetStock(ctx context.Context, input SetStockInput) (*ItemView, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	metrics *metrics.DomainMetrics
}

// NewService builds an inventory service with the required dependencies.
func NewService(repo Repository, tx txRunner, domainMetrics *metrics.DomainMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, metrics: domainMetrics}, nil
}

func (s *service) CreateItem(ctx context.Context, input CreateItemInput) (*ItemView, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name required")
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	threshold := defaultThreshold
	if input.Threshold != nil {
		if *input.Threshold < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "threshold cannot be negative")
		}
		threshold = *input.Threshold
	}

	item := &models.Item{
		ID:           uuid.New(),
		Name:         name,
		Stock:        input.Stock,
		InitialStock: input.Stock,
		Threshold:    threshold,
		ImageURL:     input.ImageURL,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "item name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create item")
	}
	return viewFromModel(item), nil
}

func (s *service) UpdateItem(ctx context.Context, id uuid.UUID, input UpdateItemInput) (*ItemView, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name cannot be empty")
		}
		updates["name"] = name
	}
	if input.Threshold != nil {
		if *input.Threshold < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "threshold cannot be negative")
		}
		updates["threshold"] = *input.Threshold
	}
	if input.ImageURL != nil {
		updates["image_url"] = *input.ImageURL
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	if _, err := s.mustFindItem(ctx, s.repo, id); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateFields(ctx, id, updates); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "item name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item")
	}
	return s.GetItem(ctx, id)
}

// DeleteItem soft-deletes an item. Items still referenced by a pending
// request stay active so approvals can finish.
func (s *service) DeleteItem(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := s.mustFindItem(ctx, repo, id); err != nil {
			return err
		}
		pending, err := repo.CountPendingReferences(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count pending references")
		}
		if pending > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "item is referenced by pending requests").
				WithDetails(map[string]any{"pending_requests": pending})
		}
		if err := repo.Deactivate(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate item")
		}
		return nil
	})
}

func (s *service) GetItem(ctx context.Context, id uuid.UUID) (*ItemView, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	item, err := s.mustFindItem(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	return viewFromModel(item), nil
}

func (s *service) ListItems(ctx context.Context, includeInactive bool) ([]ItemView, error) {
	items, err := s.repo.List(ctx, includeInactive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list items")
	}
	return viewsFromModels(items), nil
}

func (s *service) ListLowStock(ctx context.Context) ([]ItemView, error) {
	items, err := s.repo.ListLowStock(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list low stock items")
	}
	return viewsFromModels(items), nil
}

func (s *service) TotalStock(ctx context.Context) (int64, error) {
	total, err := s.repo.TotalStock(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "total stock")
	}
	return total, nil
}

func (s *service) Restock(ctx context.Context, input StockActionInput) (*ItemView, error) {
	if err := validateStockAction(input); err != nil {
		return nil, err
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := s.mustFindItem(ctx, repo, input.ItemID); err != nil {
			return err
		}
		ok, err := repo.AddStock(ctx, input.ItemID, input.Qty)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restock item")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeConflict, "item is inactive")
		}
		return s.appendHistory(ctx, repo, input, enums.StockChangeRestock, input.Qty)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncStockMovement(string(enums.StockChangeRestock))
	return s.GetItem(ctx, input.ItemID)
}

func (s *service) Reduce(ctx context.Context, input StockActionInput) (*ItemView, error) {
	return s.removeStock(ctx, input, enums.StockChangeReduction)
}

func (s *service) RecordDamaged(ctx context.Context, input StockActionInput) (*ItemView, error) {
	return s.removeStock(ctx, input, enums.StockChangeDamaged)
}

func (s *service) removeStock(ctx context.Context, input StockActionInput, changeType enums.StockChangeType) (*ItemView, error) {
	if err := validateStockAction(input); err != nil {
		return nil, err
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := s.mustFindItem(ctx, repo, input.ItemID); err != nil {
			return err
		}
		ok, err := repo.RemoveStock(ctx, input.ItemID, input.Qty)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove stock")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough stock available").
				WithDetails(map[string]any{"item_id": input.ItemID, "qty": input.Qty})
		}
		return s.appendHistory(ctx, repo, input, changeType, -input.Qty)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncStockMovement(string(changeType))
	return s.GetItem(ctx, input.ItemID)
}

// Adjust sets an absolute stock level. It writes both the ledger row and the
// specialized adjustment record in the same transaction.
func (s *service) Adjust(ctx context.Context, input AdjustInput) (*ItemView, error) {
	if input.ItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	if input.NewStock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	if input.AdminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "admin identity missing")
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "adjustment reason required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		item, err := s.mustFindItem(ctx, repo, input.ItemID)
		if err != nil {
			return err
		}

		ok, err := repo.CompareAndSetStock(ctx, input.ItemID, item.Stock, input.NewStock)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adjust stock")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeConflict, "stock changed concurrently; retry")
		}

		adminID := input.AdminID
		history := &models.StockHistory{
			ItemID:     input.ItemID,
			ChangeType: enums.StockChangeAdjustment,
			QtyChange:  input.NewStock - item.Stock,
			Notes:      &reason,
			AdminID:    &adminID,
		}
		if err := repo.AppendHistory(ctx, history); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append stock history")
		}

		adjustment := &models.StockAdjustment{
			ItemID:      input.ItemID,
			StockBefore: item.Stock,
			StockAfter:  input.NewStock,
			Reason:      reason,
			AdminID:     input.AdminID,
		}
		if err := repo.CreateAdjustment(ctx, adjustment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create adjustment record")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncStockMovement(string(enums.StockChangeAdjustment))
	return s.GetItem(ctx, input.ItemID)
}

// SetStock overwrites the live stock level without touching the ledger. It
// exists for bootstrap and emergency fixes; the reconcile job will flag the
// resulting drift until an adjustment explains it.
func (s *service) SetStock(ctx context.Context, input SetStockInput) (*ItemView, error) {
	if input.ItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	if input.NewStock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	if input.AdminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "admin identity missing")
	}

	if _, err := s.mustFindItem(ctx, s.repo, input.ItemID); err != nil {
		return nil, err
	}
	ok, err := s.repo.OverwriteStock(ctx, input.ItemID, input.NewStock)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set stock")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}
	return s.GetItem(ctx, input.ItemID)
}

func (s *service) appendHistory(ctx context.Context, repo Repository, input StockActionInput, changeType enums.StockChangeType, qtyChange int) error {
	adminID := input.AdminID
	notes := strings.TrimSpace(input.Notes)
	history := &models.StockHistory{
		ItemID:     input.ItemID,
		ChangeType: changeType,
		QtyChange:  qtyChange,
		Notes:      &notes,
		AdminID:    &adminID,
	}
	if err := repo.AppendHistory(ctx, history); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append stock history")
	}
	return nil
}

func (s *service) mustFindItem(ctx context.Context, repo Repository, id uuid.UUID) (*models.Item, error) {
	item, err := repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}
	return item, nil
}

func validateStockAction(input StockActionInput) error {
	if input.ItemID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	if input.Qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if input.AdminID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "admin identity missing")
	}
	if strings.TrimSpace(input.Notes) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "notes required")
	}
	return nil
}

func viewsFromModels(items []models.Item) []ItemView {
	views := make([]ItemView, 0, len(items))
	for i := range items {
		views = append(views, *viewFromModel(&items[i]))
	}
	return views
}

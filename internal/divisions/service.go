package divisions

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines division management operations.
type Service interface {
	Create(ctx context.Context, name string) (*DivisionView, error)
	Rename(ctx context.Context, id uuid.UUID, name string) (*DivisionView, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*DivisionView, error)
	ListActive(ctx context.Context) ([]DivisionView, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds a division service with the required dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("division repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// Create adds a division. A soft-deleted division with the same name is
// reactivated instead so historical requests keep pointing at one row.
func (s *service) Create(ctx context.Context, name string) (*DivisionView, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "division name required")
	}

	var view *DivisionView
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.FindByName(ctx, name)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup division name")
		}
		if existing != nil {
			if existing.IsActive {
				return pkgerrors.New(pkgerrors.CodeConflict, "division name already exists")
			}
			if err := repo.Reactivate(ctx, existing.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reactivate division")
			}
			existing.IsActive = true
			view = viewFromModel(existing)
			return nil
		}

		division := &models.Division{ID: uuid.New(), Name: name, IsActive: true}
		if err := repo.Create(ctx, division); err != nil {
			if pkgerrors.IsUniqueViolation(err) {
				return pkgerrors.New(pkgerrors.CodeConflict, "division name already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create division")
		}
		view = viewFromModel(division)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *service) Rename(ctx context.Context, id uuid.UUID, name string) (*DivisionView, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "division id required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "division name required")
	}

	if _, err := s.mustFindDivision(ctx, s.repo, id); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateName(ctx, id, name); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "division name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rename division")
	}
	return s.Get(ctx, id)
}

// Delete soft-deletes a division. Divisions with pending requests stay
// active so approvals can finish.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "division id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := s.mustFindDivision(ctx, repo, id); err != nil {
			return err
		}
		pending, err := repo.CountPendingReferences(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count pending references")
		}
		if pending > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "division has pending requests").
				WithDetails(map[string]any{"pending_requests": pending})
		}
		if err := repo.Deactivate(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate division")
		}
		return nil
	})
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*DivisionView, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "division id required")
	}
	division, err := s.mustFindDivision(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	return viewFromModel(division), nil
}

func (s *service) ListActive(ctx context.Context) ([]DivisionView, error) {
	divisions, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list divisions")
	}
	return viewsFromModels(divisions), nil
}

func (s *service) mustFindDivision(ctx context.Context, repo Repository, id uuid.UUID) (*models.Division, error) {
	division, err := repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "division not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load division")
	}
	return division, nil
}

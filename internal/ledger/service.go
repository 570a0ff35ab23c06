package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
	"github.com/stockroomhq/stockroom-backend/pkg/metrics"
	"github.com/stockroomhq/stockroom-backend/pkg/pagination"
)

// Service exposes read access to the stock ledger plus the reconcile pass.
type Service interface {
	History(ctx context.Context, filter HistoryFilter) ([]HistoryEntry, *pagination.Meta, error)
	Adjustments(ctx context.Context, itemID *uuid.UUID) ([]AdjustmentEntry, error)
	Reconcile(ctx context.Context) (*ReconcileReport, error)
}

type service struct {
	repo    Repository
	logg    *logger.Logger
	metrics *metrics.DomainMetrics
}

// NewService wires a ledger service with the provided dependencies.
func NewService(repo Repository, logg *logger.Logger, domainMetrics *metrics.DomainMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg, metrics: domainMetrics}, nil
}

func (s *service) History(ctx context.Context, filter HistoryFilter) ([]HistoryEntry, *pagination.Meta, error) {
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "date range end precedes start")
	}
	filter.Pagination = filter.Pagination.Normalize()

	entries, total, err := s.repo.History(ctx, filter)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock history")
	}
	meta := pagination.MetaFor(filter.Pagination, total)
	return entries, &meta, nil
}

func (s *service) Adjustments(ctx context.Context, itemID *uuid.UUID) ([]AdjustmentEntry, error) {
	entries, err := s.repo.Adjustments(ctx, itemID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock adjustments")
	}
	return entries, nil
}

// Reconcile checks every active item against its ledger. An item is clean
// when stock equals initial_stock plus the sum of its qty_change rows. All
// mismatches are reported together rather than failing on the first one.
func (s *service) Reconcile(ctx context.Context) (*ReconcileReport, error) {
	balances, err := s.repo.ItemBalances(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item balances")
	}

	report := &ReconcileReport{Checked: len(balances)}
	var errs error
	for _, balance := range balances {
		expected := balance.InitialStock + balance.LedgerSum
		if balance.Stock == expected {
			continue
		}
		report.Drifts = append(report.Drifts, Drift{
			ItemID:   balance.ItemID,
			Name:     balance.Name,
			Stock:    balance.Stock,
			Expected: expected,
		})
		driftCtx := s.logg.WithFields(ctx, map[string]any{
			"item_id":  balance.ItemID,
			"item":     balance.Name,
			"stock":    balance.Stock,
			"expected": expected,
		})
		s.logg.Warn(driftCtx, "stock disagrees with ledger")
		errs = multierr.Append(errs, fmt.Errorf("item %s (%s): stock %d, ledger expects %d",
			balance.Name, balance.ItemID, balance.Stock, expected))
	}

	s.metrics.SetLedgerDrift(len(report.Drifts))
	summaryCtx := s.logg.WithFields(ctx, map[string]any{
		"checked": report.Checked,
		"drifts":  len(report.Drifts),
	})
	s.logg.Info(summaryCtx, "ledger reconcile pass complete")
	return report, errs
}

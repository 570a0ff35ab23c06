package cron

import (
	"context"
	"fmt"

	"github.com/stockroomhq/stockroom-backend/internal/ledger"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
)

type ledgerReconciler interface {
	Reconcile(ctx context.Context) (*ledger.ReconcileReport, error)
}

// LedgerReconcileJobParams configures the ledger reconciliation job.
type LedgerReconcileJobParams struct {
	Logger *logger.Logger
	Ledger ledgerReconciler
}

// NewLedgerReconcileJob builds the job that checks every item against its
// ledger. Drift makes the job fail so it shows up in the failure counter.
func NewLedgerReconcileJob(params LedgerReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	return &ledgerReconcileJob{logg: params.Logger, ledger: params.Ledger}, nil
}

type ledgerReconcileJob struct {
	logg   *logger.Logger
	ledger ledgerReconciler
}

func (j *ledgerReconcileJob) Name() string { return "ledger-reconcile" }

func (j *ledgerReconcileJob) Run(ctx context.Context) error {
	report, err := j.ledger.Reconcile(ctx)
	if report != nil {
		logCtx := j.logg.WithFields(ctx, map[string]any{
			"checked": report.Checked,
			"drifts":  len(report.Drifts),
		})
		j.logg.Info(logCtx, "ledger reconcile job finished")
	}
	if err != nil {
		return fmt.Errorf("ledger reconcile: %w", err)
	}
	return nil
}

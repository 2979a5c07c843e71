package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/storefront-backend/internal/reconcile"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const reconcileJobName = "checkout_reconcile"

type reconciler interface {
	Run(ctx context.Context) (reconcile.Report, error)
}

type reconcileJob struct {
	logg       *logger.Logger
	reconciler reconciler
}

// NewReconcileJob wraps the checkout reconciler as a cron job.
func NewReconcileJob(logg *logger.Logger, r reconciler) (Job, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if r == nil {
		return nil, fmt.Errorf("reconciler required")
	}
	return &reconcileJob{logg: logg, reconciler: r}, nil
}

func (j *reconcileJob) Name() string { return reconcileJobName }

func (j *reconcileJob) Run(ctx context.Context) error {
	report, err := j.reconciler.Run(ctx)
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"scanned":  report.Scanned,
		"repaired": report.Repaired,
		"failed":   report.Failed,
		"reported": report.Reported,
	}), "reconcile pass finished")
	return err
}

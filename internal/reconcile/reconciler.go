// Package reconcile repairs checkout side effects that failed after the
// customer already reached the success stage.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront-backend/internal/analytics"
	"github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

const (
	defaultLookback    = 72 * time.Hour
	defaultBatch       = 100
	defaultMaxAttempts = 5
)

var (
	retrySteps  = []enums.CheckoutStep{enums.CheckoutStepOrderCompleted, enums.CheckoutStepAnalyticsIncremented}
	reportSteps = []enums.CheckoutStep{enums.CheckoutStepInvoiceDelivered, enums.CheckoutStepMirrorAppended, enums.CheckoutStepCartCleared}
)

type stepStore interface {
	Create(ctx context.Context, step *models.CheckoutStep) error
	Unresolved(ctx context.Context, steps []enums.CheckoutStep, since time.Time, maxAttempts, limit int) ([]models.CheckoutStep, error)
}

type orderCompleter interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	CompleteCheckout(ctx context.Context, id uuid.UUID, method enums.PaymentMethod) (*models.Order, error)
}

type purchaseCounter interface {
	IncrementBatch(ctx context.Context, deltas []analytics.Delta) error
}

// Params configure a Reconciler.
type Params struct {
	Steps       stepStore
	Orders      orderCompleter
	Analytics   purchaseCounter
	Logger      *logger.Logger
	Metrics     *metrics.CheckoutMetrics
	Lookback    time.Duration
	Batch       int
	MaxAttempts int
}

// Report summarises one reconciliation pass.
type Report struct {
	Scanned  int
	Repaired int
	Failed   int
	Reported int
}

// Reconciler replays retry-safe failed steps and reports the rest.
type Reconciler struct {
	steps       stepStore
	orders      orderCompleter
	analytics   purchaseCounter
	logg        *logger.Logger
	metrics     *metrics.CheckoutMetrics
	lookback    time.Duration
	batch       int
	maxAttempts int
	now         func() time.Time
}

func New(params Params) (*Reconciler, error) {
	if params.Steps == nil {
		return nil, fmt.Errorf("step store required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders service required")
	}
	if params.Analytics == nil {
		return nil, fmt.Errorf("analytics service required")
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	if params.Lookback <= 0 {
		params.Lookback = defaultLookback
	}
	if params.Batch <= 0 {
		params.Batch = defaultBatch
	}
	if params.MaxAttempts <= 0 {
		params.MaxAttempts = defaultMaxAttempts
	}
	return &Reconciler{
		steps:       params.Steps,
		orders:      params.Orders,
		analytics:   params.Analytics,
		logg:        params.Logger,
		metrics:     params.Metrics,
		lookback:    params.Lookback,
		batch:       params.Batch,
		maxAttempts: params.MaxAttempts,
		now:         time.Now,
	}, nil
}

// Run performs one pass. Errors from individual orders are combined; the
// pass continues past them.
func (r *Reconciler) Run(ctx context.Context) (Report, error) {
	var report Report
	since := r.now().Add(-r.lookback)

	pending, err := r.steps.Unresolved(ctx, retrySteps, since, r.maxAttempts, r.batch)
	if err != nil {
		return report, fmt.Errorf("load failed steps: %w", err)
	}
	var errs error
	for _, row := range pending {
		report.Scanned++
		rowCtx := r.logg.WithOrderNumber(ctx, row.OrderNumber)
		rowCtx = r.logg.WithField(rowCtx, "step", row.Step.String())
		cause := r.retry(rowCtx, row)

		next := &models.CheckoutStep{
			OrderID:     row.OrderID,
			OrderNumber: row.OrderNumber,
			Step:        row.Step,
			Channel:     row.Channel,
			Attempt:     row.Attempt + 1,
			Outcome:     enums.StepOutcomeSucceeded,
		}
		if cause != nil {
			next.Outcome = enums.StepOutcomeFailed
			next.Detail = checkout.Detail(cause)
			report.Failed++
			r.logg.Error(rowCtx, "reconcile retry failed", cause)
		} else {
			report.Repaired++
			r.logg.Info(rowCtx, "checkout step repaired")
		}
		r.metrics.IncStep(row.Step.String(), next.Outcome.String())
		if err := r.steps.Create(ctx, next); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("record %s for %s: %w", row.Step, row.OrderNumber, err))
		}
	}

	manual, err := r.steps.Unresolved(ctx, reportSteps, since, 0, r.batch)
	if err != nil {
		return report, multierr.Append(errs, fmt.Errorf("load reported steps: %w", err))
	}
	for _, row := range manual {
		report.Reported++
		rowCtx := r.logg.WithOrderNumber(ctx, row.OrderNumber)
		rowCtx = r.logg.WithFields(rowCtx, map[string]any{"step": row.Step.String(), "detail": row.Detail})
		r.logg.Warn(rowCtx, "checkout step needs manual follow-up")

		// The marker supersedes the failure so later passes stay quiet.
		marker := &models.CheckoutStep{
			OrderID:     row.OrderID,
			OrderNumber: row.OrderNumber,
			Step:        row.Step,
			Channel:     row.Channel,
			Attempt:     row.Attempt + 1,
			Outcome:     enums.StepOutcomeReported,
			Detail:      row.Detail,
		}
		r.metrics.IncStep(row.Step.String(), marker.Outcome.String())
		if err := r.steps.Create(ctx, marker); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("mark %s reported for %s: %w", row.Step, row.OrderNumber, err))
		}
	}
	return report, errs
}

func (r *Reconciler) retry(ctx context.Context, row models.CheckoutStep) error {
	order, err := r.orders.Get(ctx, row.OrderID)
	if err != nil {
		return err
	}
	switch row.Step {
	case enums.CheckoutStepOrderCompleted:
		method := row.Channel
		if method == nil {
			method = order.PaymentMethod
		}
		if method == nil {
			return errors.New("no delivery channel recorded for order")
		}
		_, err := r.orders.CompleteCheckout(ctx, order.ID, *method)
		return err
	case enums.CheckoutStepAnalyticsIncremented:
		return r.analytics.IncrementBatch(ctx, checkout.PurchaseDeltas(*order, analytics.Day(row.CreatedAt)))
	default:
		return fmt.Errorf("step %s is not retry safe", row.Step)
	}
}

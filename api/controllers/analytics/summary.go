// Package analytics serves the back-office product funnel report.
package analytics

import (
	"context"
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/responses"
	internalanalytics "github.com/angelmondragon/storefront-backend/internal/analytics"
	"github.com/angelmondragon/storefront-backend/pkg/documents"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type reporter interface {
	Summary(ctx context.Context, req internalanalytics.SummaryRequest) (*internalanalytics.Summary, error)
	Export(ctx context.Context, req internalanalytics.SummaryRequest) (documents.Table, error)
}

// Summary returns per-product views, cart adds and purchases with order stats.
func Summary(svc reporter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}
		req, err := resolveRange(r, timeNowUTC())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := svc.Summary(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// Export streams the same report as CSV.
func Export(svc reporter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}
		req, err := resolveRange(r, timeNowUTC())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		table, err := svc.Export(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCSV(r.Context(), logg, w, "analytics.csv", table)
	}
}

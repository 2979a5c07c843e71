package analytics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	internalanalytics "github.com/angelmondragon/storefront-backend/internal/analytics"
	"github.com/angelmondragon/storefront-backend/pkg/documents"
)

type stubReporter struct {
	last internalanalytics.SummaryRequest
}

func (s *stubReporter) Summary(_ context.Context, req internalanalytics.SummaryRequest) (*internalanalytics.Summary, error) {
	s.last = req
	return &internalanalytics.Summary{
		Products: []internalanalytics.ProductStats{{
			ProductID:      uuid.New(),
			Name:           "Tee",
			Views:          10,
			CartAdds:       4,
			Purchases:      2,
			ConversionRate: decimal.RequireFromString("20"),
		}},
		Orders: internalanalytics.OrderStats{Total: 3, Completed: 2, Pending: 1, Revenue: decimal.RequireFromString("2002.46")},
	}, nil
}

func (s *stubReporter) Export(_ context.Context, req internalanalytics.SummaryRequest) (documents.Table, error) {
	s.last = req
	table := documents.Table{Header: []string{"Product", "Views"}}
	table.Append("Tee", "10")
	return table, nil
}

func withFixedNow(t *testing.T, now time.Time) {
	t.Helper()
	prev := timeNowUTC
	timeNowUTC = func() time.Time { return now }
	t.Cleanup(func() { timeNowUTC = prev })
}

func TestSummaryDefaultsToThirtyDays(t *testing.T) {
	withFixedNow(t, time.Date(2026, 3, 31, 15, 0, 0, 0, time.UTC))
	svc := &stubReporter{}

	resp := httptest.NewRecorder()
	Summary(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !svc.last.Start.Equal(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start %s", svc.last.Start)
	}
	if !svc.last.End.Equal(time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected end %s", svc.last.End)
	}

	var envelope struct {
		Data internalanalytics.Summary `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Orders.Completed != 2 || !envelope.Data.Orders.Revenue.Equal(decimal.RequireFromString("2002.46")) {
		t.Fatalf("unexpected order stats %+v", envelope.Data.Orders)
	}
}

func TestSummaryExplicitRange(t *testing.T) {
	svc := &stubReporter{}
	resp := httptest.NewRecorder()
	Summary(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/?from=2026-01-01&to=2026-01-31", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.last.Start.Day() != 1 || svc.last.End.Day() != 31 {
		t.Fatalf("unexpected range %+v", svc.last)
	}
}

func TestSummaryAllPresetIsOpen(t *testing.T) {
	svc := &stubReporter{last: internalanalytics.SummaryRequest{Start: time.Now()}}
	resp := httptest.NewRecorder()
	Summary(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/?preset=all", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !svc.last.Start.IsZero() || !svc.last.End.IsZero() {
		t.Fatalf("expected open range, got %+v", svc.last)
	}
}

func TestSummaryRejectsBadRanges(t *testing.T) {
	for _, target := range []string{
		"/?from=2026-01-01",
		"/?from=2026-02-01&to=2026-01-01",
		"/?from=01/02/2026&to=2026-01-01",
		"/?preset=1y",
	} {
		resp := httptest.NewRecorder()
		Summary(&stubReporter{}, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, target, nil))
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400 got %d", target, resp.Code)
		}
	}
}

func TestExportWritesCSV(t *testing.T) {
	resp := httptest.NewRecorder()
	Export(&stubReporter{}, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/?preset=7d", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if resp.Body.String() != "Product,Views\nTee,10\n" {
		t.Fatalf("unexpected body %q", resp.Body.String())
	}
}

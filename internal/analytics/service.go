// Package analytics keeps per-product daily counters for views, cart adds and
// purchases, and reports on them.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/documents"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

var hundred = decimal.NewFromInt(100)

// Service records counters and builds reports.
type Service interface {
	Track(ctx context.Context, productID uuid.UUID, metric enums.MetricType) error
	IncrementBatch(ctx context.Context, deltas []Delta) error
	Summary(ctx context.Context, req SummaryRequest) (*Summary, error)
	Export(ctx context.Context, req SummaryRequest) (documents.Table, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService wires the analytics service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("analytics repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *service) Track(ctx context.Context, productID uuid.UUID, metric enums.MetricType) error {
	return s.IncrementBatch(ctx, []Delta{{ProductID: productID, Metric: metric, Value: 1}})
}

// IncrementBatch merges deltas sharing a key and applies them in one upsert.
// A zero Day means today.
func (s *service) IncrementBatch(ctx context.Context, deltas []Delta) error {
	merged, err := s.merge(deltas)
	if err != nil {
		return err
	}
	if len(merged) == 0 {
		return nil
	}
	if err := s.repo.Increment(ctx, merged); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment analytics")
	}
	return nil
}

type deltaKey struct {
	product uuid.UUID
	metric  enums.MetricType
	day     time.Time
}

func (s *service) merge(deltas []Delta) ([]Delta, error) {
	today := Day(s.now())
	index := make(map[deltaKey]int, len(deltas))
	out := make([]Delta, 0, len(deltas))
	for _, d := range deltas {
		if !d.Metric.IsValid() {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unknown metric %q", d.Metric)
		}
		if d.ProductID == uuid.Nil || d.Value <= 0 {
			continue
		}
		day := today
		if !d.Day.IsZero() {
			day = Day(d.Day)
		}
		key := deltaKey{product: d.ProductID, metric: d.Metric, day: day}
		if i, ok := index[key]; ok {
			out[i].Value += d.Value
			continue
		}
		index[key] = len(out)
		out = append(out, Delta{ProductID: d.ProductID, Metric: d.Metric, Day: day, Value: d.Value})
	}
	return out, nil
}

func (s *service) Summary(ctx context.Context, req SummaryRequest) (*Summary, error) {
	names, err := s.repo.ProductNames(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	totals, err := s.repo.Totals(ctx, req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load analytics totals")
	}
	orders, err := s.repo.OrderStats(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order stats")
	}
	series, err := s.repo.Series(ctx, enums.MetricTypePurchases, req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase series")
	}

	byProduct := make(map[uuid.UUID]*ProductStats, len(names))
	products := make([]ProductStats, 0, len(names))
	for _, n := range names {
		products = append(products, ProductStats{ProductID: n.ID, Name: n.Name})
	}
	for i := range products {
		byProduct[products[i].ProductID] = &products[i]
	}
	for _, t := range totals {
		stats, ok := byProduct[t.ProductID]
		if !ok {
			continue
		}
		switch t.MetricType {
		case enums.MetricTypeViews:
			stats.Views = t.Total
		case enums.MetricTypeCartAdds:
			stats.CartAdds = t.Total
		case enums.MetricTypePurchases:
			stats.Purchases = t.Total
		}
	}
	for i := range products {
		products[i].ConversionRate = conversion(products[i].Purchases, products[i].Views)
	}
	sort.SliceStable(products, func(i, j int) bool { return products[i].Purchases > products[j].Purchases })

	return &Summary{Products: products, Orders: orders, Purchases: series}, nil
}

// conversion is purchases per hundred views, two places. No views reads as zero.
func conversion(purchases, views int64) decimal.Decimal {
	if views <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(purchases).Mul(hundred).Div(decimal.NewFromInt(views)).Round(2)
}

func (s *service) Export(ctx context.Context, req SummaryRequest) (documents.Table, error) {
	rows, err := s.repo.List(ctx, req)
	if err != nil {
		return documents.Table{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list analytics")
	}
	table := documents.Table{Header: []string{"Product ID", "Metric Type", "Value", "Date"}}
	for _, row := range rows {
		table.Append(
			row.ProductID.String(),
			row.MetricType.String(),
			strconv.FormatInt(row.Value, 10),
			time.Time(row.Date).Format(time.DateOnly),
		)
	}
	return table, nil
}

package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Repository reads and upserts counters.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Increment(ctx context.Context, deltas []Delta) error
	Totals(ctx context.Context, req SummaryRequest) ([]MetricTotal, error)
	Series(ctx context.Context, metric enums.MetricType, req SummaryRequest) ([]TimeSeriesPoint, error)
	ProductNames(ctx context.Context) ([]ProductName, error)
	OrderStats(ctx context.Context) (OrderStats, error)
	List(ctx context.Context, req SummaryRequest) ([]models.AnalyticsCounter, error)
}

// MetricTotal is the sum of one metric for one product.
type MetricTotal struct {
	ProductID  uuid.UUID
	MetricType enums.MetricType
	Total      int64
}

// ProductName pairs a product id with its display name.
type ProductName struct {
	ID   uuid.UUID
	Name string
}

type repository struct {
	db *gorm.DB
}

// NewRepository binds the analytics repository to db.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Increment applies every delta in one statement. Callers merge duplicate keys
// first because an upsert may touch each row only once.
func (r *repository) Increment(ctx context.Context, deltas []Delta) error {
	if len(deltas) == 0 {
		return nil
	}
	now := time.Now().UTC()
	rows := make([]models.AnalyticsCounter, 0, len(deltas))
	for _, d := range deltas {
		rows = append(rows, models.AnalyticsCounter{
			ProductID:  d.ProductID,
			MetricType: d.Metric,
			Date:       datatypes.Date(d.Day),
			Value:      d.Value,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "product_id"}, {Name: "metric_type"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]any{
			"value":      gorm.Expr("analytics.value + excluded.value"),
			"updated_at": gorm.Expr("excluded.updated_at"),
		}),
	}).Create(&rows).Error
}

func (r *repository) bounded(ctx context.Context, req SummaryRequest) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.AnalyticsCounter{})
	if !req.Start.IsZero() {
		q = q.Where("date >= ?", datatypes.Date(Day(req.Start)))
	}
	if !req.End.IsZero() {
		q = q.Where("date <= ?", datatypes.Date(Day(req.End)))
	}
	return q
}

func (r *repository) Totals(ctx context.Context, req SummaryRequest) ([]MetricTotal, error) {
	var out []MetricTotal
	err := r.bounded(ctx, req).
		Select("product_id, metric_type, SUM(value) AS total").
		Group("product_id, metric_type").
		Scan(&out).Error
	return out, err
}

func (r *repository) Series(ctx context.Context, metric enums.MetricType, req SummaryRequest) ([]TimeSeriesPoint, error) {
	var rows []struct {
		Date  datatypes.Date
		Value int64
	}
	err := r.bounded(ctx, req).
		Select("date, SUM(value) AS value").
		Where("metric_type = ?", metric).
		Group("date").
		Order("date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]TimeSeriesPoint, 0, len(rows))
	for _, row := range rows {
		out = append(out, TimeSeriesPoint{Date: time.Time(row.Date).Format(time.DateOnly), Value: row.Value})
	}
	return out, nil
}

func (r *repository) ProductNames(ctx context.Context) ([]ProductName, error) {
	var out []ProductName
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Select("id, name").
		Order("name ASC").
		Scan(&out).Error
	return out, err
}

func (r *repository) OrderStats(ctx context.Context) (OrderStats, error) {
	var row struct {
		Total     int64
		Completed int64
		Pending   int64
		Revenue   decimal.NullDecimal
	}
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Select(
			"COUNT(*) AS total, "+
				"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS completed, "+
				"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS pending, "+
				"SUM(CASE WHEN payment_status = ? THEN total_amount ELSE 0 END) AS revenue",
			enums.OrderStatusCompleted, enums.OrderStatusPending, enums.PaymentStatusCompleted,
		).
		Scan(&row).Error
	if err != nil {
		return OrderStats{}, err
	}
	stats := OrderStats{Total: row.Total, Completed: row.Completed, Pending: row.Pending, Revenue: decimal.Zero}
	if row.Revenue.Valid {
		stats.Revenue = row.Revenue.Decimal
	}
	return stats, nil
}

func (r *repository) List(ctx context.Context, req SummaryRequest) ([]models.AnalyticsCounter, error) {
	var out []models.AnalyticsCounter
	err := r.bounded(ctx, req).Order("date ASC").Order("product_id ASC").Find(&out).Error
	return out, err
}

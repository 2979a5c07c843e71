package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

var fixedNow = time.Date(2026, 10, 18, 15, 4, 5, 0, time.UTC)

func newAnalytics(t *testing.T) (*service, *gorm.DB) {
	t.Helper()
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	impl := svc.(*service)
	impl.now = func() time.Time { return fixedNow }
	return impl, conn
}

func seedProduct(t *testing.T, conn *gorm.DB, name string) uuid.UUID {
	t.Helper()
	p := models.Product{Name: name, Price: decimal.NewFromInt(100), IsActive: true,
		Colors: datatypes.JSONSlice[string]{"Red"}, Sizes: datatypes.JSONSlice[string]{"M"}, LogoOptions: datatypes.JSONSlice[string]{"Plain"}}
	require.NoError(t, conn.Create(&p).Error)
	return p.ID
}

func counters(t *testing.T, conn *gorm.DB) []models.AnalyticsCounter {
	t.Helper()
	var rows []models.AnalyticsCounter
	require.NoError(t, conn.Order("metric_type ASC").Find(&rows).Error)
	return rows
}

func TestTrackCreatesThenIncrements(t *testing.T) {
	ctx := context.Background()
	svc, conn := newAnalytics(t)
	productID := seedProduct(t, conn, "Tee")

	require.NoError(t, svc.Track(ctx, productID, enums.MetricTypeViews))
	require.NoError(t, svc.Track(ctx, productID, enums.MetricTypeViews))

	rows := counters(t, conn)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(2), rows[0].Value)
	assert.Equal(t, "2026-10-18", time.Time(rows[0].Date).Format(time.DateOnly))
}

func TestIncrementBatchMergesDuplicateKeys(t *testing.T) {
	ctx := context.Background()
	svc, conn := newAnalytics(t)
	a := seedProduct(t, conn, "A")
	b := seedProduct(t, conn, "B")

	err := svc.IncrementBatch(ctx, []Delta{
		{ProductID: a, Metric: enums.MetricTypePurchases, Value: 2},
		{ProductID: b, Metric: enums.MetricTypePurchases, Value: 1},
		{ProductID: a, Metric: enums.MetricTypePurchases, Value: 3},
		{ProductID: b, Metric: enums.MetricTypePurchases, Value: 0},
	})
	require.NoError(t, err)
	require.NoError(t, svc.IncrementBatch(ctx, []Delta{{ProductID: a, Metric: enums.MetricTypePurchases, Value: 1}}))

	got := map[uuid.UUID]int64{}
	for _, row := range counters(t, conn) {
		got[row.ProductID] = row.Value
	}
	assert.Equal(t, int64(6), got[a])
	assert.Equal(t, int64(1), got[b])

	err = svc.IncrementBatch(ctx, []Delta{{ProductID: a, Metric: "likes", Value: 1}})
	assert.Error(t, err)
}

func TestSummary(t *testing.T) {
	ctx := context.Background()
	svc, conn := newAnalytics(t)
	a := seedProduct(t, conn, "Hoodie")
	b := seedProduct(t, conn, "Cap")

	yesterday := fixedNow.AddDate(0, 0, -1)
	require.NoError(t, svc.IncrementBatch(ctx, []Delta{
		{ProductID: a, Metric: enums.MetricTypeViews, Value: 8},
		{ProductID: a, Metric: enums.MetricTypeCartAdds, Value: 3},
		{ProductID: a, Metric: enums.MetricTypePurchases, Value: 1},
		{ProductID: a, Metric: enums.MetricTypePurchases, Value: 2, Day: yesterday},
		{ProductID: b, Metric: enums.MetricTypeViews, Value: 0},
	}))

	orders := []models.Order{
		{OrderNumber: "ORD-1", TotalAmount: decimal.RequireFromString("1697"), Status: enums.OrderStatusProcessing, PaymentStatus: enums.PaymentStatusCompleted, Items: datatypes.JSONSlice[models.OrderItem]{}},
		{OrderNumber: "ORD-2", TotalAmount: decimal.RequireFromString("499"), Status: enums.OrderStatusPending, PaymentStatus: enums.PaymentStatusPending, Items: datatypes.JSONSlice[models.OrderItem]{}},
		{OrderNumber: "ORD-3", TotalAmount: decimal.RequireFromString("100.50"), Status: enums.OrderStatusCompleted, PaymentStatus: enums.PaymentStatusCompleted, Items: datatypes.JSONSlice[models.OrderItem]{}},
	}
	require.NoError(t, conn.Create(&orders).Error)

	summary, err := svc.Summary(ctx, SummaryRequest{})
	require.NoError(t, err)
	require.Len(t, summary.Products, 2)

	top := summary.Products[0]
	assert.Equal(t, "Hoodie", top.Name)
	assert.Equal(t, int64(8), top.Views)
	assert.Equal(t, int64(3), top.CartAdds)
	assert.Equal(t, int64(3), top.Purchases)
	assert.True(t, top.ConversionRate.Equal(decimal.RequireFromString("37.5")), top.ConversionRate.String())
	assert.True(t, summary.Products[1].ConversionRate.IsZero())

	assert.Equal(t, int64(3), summary.Orders.Total)
	assert.Equal(t, int64(1), summary.Orders.Completed)
	assert.Equal(t, int64(1), summary.Orders.Pending)
	assert.True(t, summary.Orders.Revenue.Equal(decimal.RequireFromString("1797.5")), summary.Orders.Revenue.String())

	require.Len(t, summary.Purchases, 2)
	assert.Equal(t, TimeSeriesPoint{Date: "2026-10-17", Value: 2}, summary.Purchases[0])

	todayOnly, err := svc.Summary(ctx, SummaryRequest{Start: fixedNow, End: fixedNow})
	require.NoError(t, err)
	assert.Equal(t, int64(1), todayOnly.Products[0].Purchases)
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	svc, conn := newAnalytics(t)
	a := seedProduct(t, conn, "Tee")
	require.NoError(t, svc.Track(ctx, a, enums.MetricTypeCartAdds))

	table, err := svc.Export(ctx, SummaryRequest{})
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, []string{a.String(), "cart_adds", "1", "2026-10-18"}, table.Rows[0])
}

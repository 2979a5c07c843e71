package invoices

import (
	"bytes"
	"context"
	"fmt"
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
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type sequenceNumberer struct{ n int }

func (s *sequenceNumberer) InvoiceNumber() string {
	s.n++
	return fmt.Sprintf("INV-%d", s.n)
}

var fixedNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func newInvoices(t *testing.T) (*service, *gorm.DB) {
	t.Helper()
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn), &sequenceNumberer{}, StandardDefaults())
	require.NoError(t, err)
	impl := svc.(*service)
	impl.now = func() time.Time { return fixedNow }
	return impl, conn
}

func seedOrder(t *testing.T, conn *gorm.DB) models.Order {
	t.Helper()
	order := models.Order{
		OrderNumber:   "ORD-42",
		CustomerName:  "Asha",
		CustomerPhone: "9999999999",
		CustomerEmail: "asha@example.com",
		TotalAmount:   decimal.NewFromInt(1697),
		Items: datatypes.JSONSlice[models.OrderItem]{
			{ProductID: uuid.New(), Name: "Tee", Price: decimal.NewFromInt(499), Quantity: 2, Color: "Red", Size: "M", Logo: "Plain"},
			{ProductID: uuid.New(), Name: "Cap", Price: decimal.NewFromInt(699), Quantity: 1, Color: "Blue", Size: "L", Logo: "Custom"},
		},
		Status:        enums.OrderStatusPending,
		PaymentStatus: enums.PaymentStatusPending,
	}
	require.NoError(t, conn.Create(&order).Error)
	return order
}

var business = models.BusinessInfo{Name: "Loom & Co", Address: "12 MG Road", Phone: "080-1234", Email: "hi@loom.example", GSTIN: "29ABCDE1234F1Z5"}

func TestBuildFromOrderUsesSnapshot(t *testing.T) {
	order := models.Order{
		ID:           uuid.New(),
		CustomerName: "Asha",
		Items: datatypes.JSONSlice[models.OrderItem]{
			{Name: "Tee", Price: decimal.NewFromInt(499), Quantity: 2, Color: "Red", Size: "M", Logo: "Plain"},
		},
	}
	inv := BuildFromOrder(order, business, "INV-1", StandardDefaults(), fixedNow)

	require.Len(t, inv.Items, 1)
	l := inv.Items[0]
	assert.Equal(t, "Tee (Red/M/Plain)", l.Description)
	assert.Equal(t, "9404", l.HSNSAC)
	assert.Equal(t, "Pcs", l.Unit)
	assert.True(t, l.TaxPercent.Equal(decimal.NewFromInt(18)))
	assert.True(t, l.DiscountPercent.IsZero())
	assert.Equal(t, "Thank you for your order!", inv.Notes)
	assert.Equal(t, fixedNow.AddDate(0, 0, 7), inv.DueDate)
	assert.True(t, inv.GrandTotal.Equal(decimal.RequireFromString("1177.64")), inv.GrandTotal.String())
	assert.Equal(t, "Asha", inv.CustomerInfo.Data().Name)
	assert.Equal(t, business.GSTIN, inv.BusinessInfo.Data().GSTIN)
}

func TestGetOrCreateIssuesOnce(t *testing.T) {
	ctx := context.Background()
	svc, conn := newInvoices(t)
	order := seedOrder(t, conn)

	inv, created, err := svc.GetOrCreate(ctx, order, business)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "INV-1", inv.InvoiceNumber)
	assert.Equal(t, "2002.46", inv.GrandTotal.StringFixed(2))

	again, created, err := svc.GetOrCreate(ctx, order, business)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, inv.ID, again.ID)
	assert.Equal(t, "INV-1", again.InvoiceNumber)

	var count int64
	require.NoError(t, conn.Model(&models.Invoice{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	byOrder, err := svc.GetByOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, byOrder.ID)

	_, err = svc.GetByOrder(ctx, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestRenderingIsDeterministic(t *testing.T) {
	ctx := context.Background()
	svc, conn := newInvoices(t)
	order := seedOrder(t, conn)
	inv, _, err := svc.GetOrCreate(ctx, order, business)
	require.NoError(t, err)

	stored, err := svc.Get(ctx, inv.ID)
	require.NoError(t, err)
	first := Document(*stored)
	second := Document(*stored)
	assert.True(t, first.GrandTotal.Equal(second.GrandTotal))
	assert.Equal(t, "2002.46", first.GrandTotal.StringFixed(2))
	require.Len(t, first.Lines, 2)
	assert.Equal(t, "1177.64", first.Lines[0].Amount.StringFixed(2))

	pdf, err := svc.PDF(*stored)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	sheet := svc.Sheet(*stored)
	assert.Equal(t, "Loom & Co - Invoice (CSV Format)", sheet.Header[0])
	var grand []string
	for _, row := range sheet.Rows {
		if len(row) > 0 && row[0] == "GRAND TOTAL" {
			grand = row
		}
	}
	require.NotNil(t, grand)
	assert.Equal(t, "₹2002.46", grand[len(grand)-1])
}

func TestExportAll(t *testing.T) {
	ctx := context.Background()
	svc, conn := newInvoices(t)
	order := seedOrder(t, conn)
	_, _, err := svc.GetOrCreate(ctx, order, business)
	require.NoError(t, err)

	table, err := svc.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Invoice Number", "Order ID", "Date", "Customer", "Subtotal", "Discount", "Tax", "Grand Total"}, table.Header)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, []string{"INV-1", order.ID.String(), "2026-10-18", "Asha", "₹1697.00", "₹0.00", "₹305.46", "₹2002.46"}, table.Rows[0])

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Lines, 2)
}

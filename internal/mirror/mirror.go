// Package mirror appends completed orders to the bookkeeping spreadsheet.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/settings"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/documents"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/sheets"
)

const (
	// OrdersRange is the A1 range rows are appended to.
	OrdersRange = "Orders!A:I"
	// StatusPlaceholder fills the bookkeeping status column.
	StatusPlaceholder = "Pending"
	rowDateLayout     = "02/01/2006"
)

// ErrDisabled is returned when the mirror is switched off in settings.
var ErrDisabled = errors.New("sheets mirror disabled")

type appender interface {
	AppendRow(ctx context.Context, target sheets.Target, values []any) (string, error)
}

// Mirror is append-only. Rows carry no dedup key, so every call adds a row.
type Mirror struct {
	sheets appender
	logg   *logger.Logger
}

// New wires the mirror to a sheets appender.
func New(a appender, logg *logger.Logger) (*Mirror, error) {
	if a == nil {
		return nil, fmt.Errorf("sheets appender required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Mirror{sheets: a, logg: logg}, nil
}

// AppendRow writes values to the configured sheet. It reports false with the
// cause on failure and ErrDisabled when the mirror is off.
func (m *Mirror) AppendRow(ctx context.Context, cfg settings.SheetsConfig, values []any) (bool, error) {
	if !cfg.Enabled {
		return false, ErrDisabled
	}
	updated, err := m.sheets.AppendRow(ctx, sheets.Target{
		SpreadsheetID: cfg.SheetID,
		Range:         OrdersRange,
		APIKey:        cfg.APIKey,
	}, values)
	if err != nil {
		m.logg.Error(ctx, "sheets append failed", err)
		return false, err
	}
	m.logg.Info(m.logg.WithField(ctx, "updated_range", updated), "order mirrored to sheets")
	return true, nil
}

// OrderRow is the nine bookkeeping columns for one invoiced order.
func OrderRow(inv models.Invoice, order models.Order, at time.Time) []any {
	items := make([]string, 0, len(inv.Items))
	for _, line := range inv.Items {
		items = append(items, fmt.Sprintf("%s x%d", line.Description, line.Quantity))
	}
	return []any{
		inv.InvoiceNumber,
		order.OrderNumber,
		at.Format(rowDateLayout),
		order.CustomerName,
		order.CustomerPhone,
		order.CustomerEmail,
		documents.Rupees(order.TotalAmount),
		StatusPlaceholder,
		strings.Join(items, "; "),
	}
}

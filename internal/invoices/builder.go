package invoices

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// Defaults are the constants applied to every line built from an order.
type Defaults struct {
	TaxPercent      decimal.Decimal
	DiscountPercent decimal.Decimal
	HSNSAC          string
	Unit            string
	Notes           string
	DueDays         int
}

// DefaultsFromConfig reads invoice defaults from checkout configuration.
func DefaultsFromConfig(cfg config.CheckoutConfig) Defaults {
	return Defaults{
		TaxPercent:      cfg.Tax(),
		DiscountPercent: cfg.Discount(),
		HSNSAC:          cfg.HSNCode,
		Unit:            cfg.Unit,
		Notes:           cfg.InvoiceNotes,
		DueDays:         cfg.DueDays,
	}
}

// StandardDefaults are 18% tax, no discount, HSN 9404, Pcs, due in a week.
func StandardDefaults() Defaults {
	return Defaults{
		TaxPercent:      decimal.NewFromInt(18),
		DiscountPercent: decimal.Zero,
		HSNSAC:          "9404",
		Unit:            "Pcs",
		Notes:           "Thank you for your order!",
		DueDays:         7,
	}
}

// LineDescription renders "Name (color/size/logo)".
func LineDescription(item models.OrderItem) string {
	return fmt.Sprintf("%s (%s/%s/%s)", item.Name, item.Color, item.Size, item.Logo)
}

// BuildFromOrder derives an unsaved invoice from the order's item snapshot.
// The live cart and catalog are never consulted.
func BuildFromOrder(order models.Order, business models.BusinessInfo, number string, d Defaults, now time.Time) models.Invoice {
	lines := make([]models.InvoiceLine, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, models.InvoiceLine{
			Description:     LineDescription(item),
			HSNSAC:          d.HSNSAC,
			Quantity:        item.Quantity,
			Unit:            d.Unit,
			Rate:            item.Price,
			TaxPercent:      d.TaxPercent,
			DiscountPercent: d.DiscountPercent,
		})
	}
	totals := Compute(lines)
	return models.Invoice{
		InvoiceNumber: number,
		OrderID:       order.ID,
		BusinessInfo:  datatypes.NewJSONType(business),
		CustomerInfo: datatypes.NewJSONType(models.CustomerInfo{
			Name:  order.CustomerName,
			Phone: order.CustomerPhone,
			Email: strings.TrimSpace(order.CustomerEmail),
		}),
		Items:      datatypes.JSONSlice[models.InvoiceLine](lines),
		Subtotal:   totals.Subtotal,
		Discount:   totals.TotalDiscount,
		Tax:        totals.TotalTax,
		GrandTotal: totals.GrandTotal,
		Notes:      d.Notes,
		DueDate:    now.UTC().AddDate(0, 0, d.DueDays),
		CreatedAt:  now.UTC(),
	}
}

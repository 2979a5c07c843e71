package invoices

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

var hundred = decimal.NewFromInt(100)

// LineAmounts are the computed components of one invoice line.
type LineAmounts struct {
	Base     decimal.Decimal `json:"base"`
	Discount decimal.Decimal `json:"discount"`
	Taxable  decimal.Decimal `json:"taxable"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Totals aggregates per-line components. Values are unrounded.
type Totals struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
	TaxableAmount decimal.Decimal `json:"taxable_amount"`
	TotalTax      decimal.Decimal `json:"total_tax"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	Lines         []LineAmounts   `json:"lines"`
}

// ComputeLine taxes one line after its discount.
func ComputeLine(line models.InvoiceLine) LineAmounts {
	base := line.Rate.Mul(decimal.NewFromInt(int64(line.Quantity)))
	discount := base.Mul(line.DiscountPercent).Div(hundred)
	taxable := base.Sub(discount)
	tax := taxable.Mul(line.TaxPercent).Div(hundred)
	return LineAmounts{
		Base:     base,
		Discount: discount,
		Taxable:  taxable,
		Tax:      tax,
		Total:    taxable.Add(tax),
	}
}

// Compute sums per-line components. Aggregates are never derived from
// aggregate percentages.
func Compute(lines []models.InvoiceLine) Totals {
	t := Totals{
		Subtotal:      decimal.Zero,
		TotalDiscount: decimal.Zero,
		TaxableAmount: decimal.Zero,
		TotalTax:      decimal.Zero,
		GrandTotal:    decimal.Zero,
		Lines:         make([]LineAmounts, 0, len(lines)),
	}
	for _, line := range lines {
		a := ComputeLine(line)
		t.Lines = append(t.Lines, a)
		t.Subtotal = t.Subtotal.Add(a.Base)
		t.TotalDiscount = t.TotalDiscount.Add(a.Discount)
		t.TaxableAmount = t.TaxableAmount.Add(a.Taxable)
		t.TotalTax = t.TotalTax.Add(a.Tax)
		t.GrandTotal = t.GrandTotal.Add(a.Total)
	}
	return t
}

package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductSnapshot is the catalog data copied into a line when it is added.
type ProductSnapshot struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image,omitempty"`
}

// Line is one chosen product variant.
type Line struct {
	ID         string          `json:"id"`
	ProductID  uuid.UUID       `json:"product_id"`
	Product    ProductSnapshot `json:"product"`
	Quantity   int             `json:"quantity"`
	Color      string          `json:"color"`
	Size       string          `json:"size"`
	Logo       string          `json:"logo"`
	CustomText string          `json:"custom_text,omitempty"`
	AddedAt    time.Time       `json:"added_at"`
}

// LineTotal is quantity times the snapshotted unit price.
func (l Line) LineTotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the ordered list of lines for one browsing session.
type Cart struct {
	SessionID string    `json:"session_id"`
	Lines     []Line    `json:"lines"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Total sums every line total without rounding.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.LineTotal())
	}
	return total
}

// Count is the number of units across all lines.
func (c Cart) Count() int {
	n := 0
	for _, line := range c.Lines {
		n += line.Quantity
	}
	return n
}

// IsEmpty reports whether the cart holds no lines.
func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// AddLineInput is the storefront add-to-cart payload.
type AddLineInput struct {
	ProductID  uuid.UUID `json:"product_id" validate:"required"`
	Quantity   int       `json:"quantity" validate:"required,min=1"`
	Color      string    `json:"color" validate:"required"`
	Size       string    `json:"size" validate:"required"`
	Logo       string    `json:"logo" validate:"required"`
	CustomText string    `json:"custom_text"`
}

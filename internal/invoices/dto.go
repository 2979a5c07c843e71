package invoices

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// InvoiceDTO is the API shape of an invoice.
type InvoiceDTO struct {
	ID            uuid.UUID            `json:"id"`
	InvoiceNumber string               `json:"invoice_number"`
	OrderID       uuid.UUID            `json:"order_id"`
	Business      models.BusinessInfo  `json:"business_info"`
	Customer      models.CustomerInfo  `json:"customer_info"`
	Items         []models.InvoiceLine `json:"items"`
	Lines         []LineAmounts        `json:"line_amounts"`
	Subtotal      decimal.Decimal      `json:"subtotal"`
	Discount      decimal.Decimal      `json:"discount"`
	Tax           decimal.Decimal      `json:"tax"`
	GrandTotal    decimal.Decimal      `json:"grand_total"`
	Notes         string               `json:"notes"`
	DueDate       time.Time            `json:"due_date"`
	CreatedAt     time.Time            `json:"created_at"`
}

// ToDTO maps a stored invoice, recomputing line amounts from its items.
func ToDTO(inv models.Invoice) InvoiceDTO {
	items := []models.InvoiceLine(inv.Items)
	if items == nil {
		items = []models.InvoiceLine{}
	}
	return InvoiceDTO{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		OrderID:       inv.OrderID,
		Business:      inv.BusinessInfo.Data(),
		Customer:      inv.CustomerInfo.Data(),
		Items:         items,
		Lines:         Compute(items).Lines,
		Subtotal:      inv.Subtotal,
		Discount:      inv.Discount,
		Tax:           inv.Tax,
		GrandTotal:    inv.GrandTotal,
		Notes:         inv.Notes,
		DueDate:       inv.DueDate,
		CreatedAt:     inv.CreatedAt,
	}
}

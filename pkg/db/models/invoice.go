package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Invoice is the tax document issued once per order.
type Invoice struct {
	ID            uuid.UUID                        `gorm:"column:id;type:uuid;primaryKey"`
	InvoiceNumber string                           `gorm:"column:invoice_number;not null;uniqueIndex"`
	OrderID       uuid.UUID                        `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	BusinessInfo  datatypes.JSONType[BusinessInfo] `gorm:"column:business_info;type:jsonb;not null"`
	CustomerInfo  datatypes.JSONType[CustomerInfo] `gorm:"column:customer_info;type:jsonb;not null"`
	Items         datatypes.JSONSlice[InvoiceLine] `gorm:"column:items;type:jsonb;not null"`
	Subtotal      decimal.Decimal                  `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Discount      decimal.Decimal                  `gorm:"column:discount;type:numeric(12,2);not null"`
	Tax           decimal.Decimal                  `gorm:"column:tax;type:numeric(12,2);not null"`
	GrandTotal    decimal.Decimal                  `gorm:"column:grand_total;type:numeric(12,2);not null"`
	Notes         string                           `gorm:"column:notes;not null;default:''"`
	DueDate       time.Time                        `gorm:"column:due_date;not null"`
	CreatedAt     time.Time                        `gorm:"column:created_at;autoCreateTime"`
}

func (Invoice) TableName() string { return "invoices" }

func (i *Invoice) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// BusinessInfo identifies the seller on invoices and outbound messages.
type BusinessInfo struct {
	Name    string `json:"name" validate:"required"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email" validate:"omitempty,email"`
	GSTIN   string `json:"gstin"`
}

// CustomerInfo is the buyer contact triple.
type CustomerInfo struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// InvoiceLine is one billed row. Percentages are 0-100.
type InvoiceLine struct {
	Description     string          `json:"description"`
	HSNSAC          string          `json:"hsn_sac"`
	Quantity        int             `json:"quantity"`
	Unit            string          `json:"unit"`
	Rate            decimal.Decimal `json:"rate"`
	TaxPercent      decimal.Decimal `json:"tax_percent"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

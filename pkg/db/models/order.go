package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Order is a customer purchase. TotalAmount is locked at creation and Items
// is the cart snapshot taken at the same moment.
type Order struct {
	ID               uuid.UUID                      `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber      string                         `gorm:"column:order_number;not null;uniqueIndex"`
	CustomerName     string                         `gorm:"column:customer_name;not null"`
	CustomerPhone    string                         `gorm:"column:customer_phone;not null"`
	CustomerEmail    string                         `gorm:"column:customer_email;not null"`
	TotalAmount      decimal.Decimal                `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Items            datatypes.JSONSlice[OrderItem] `gorm:"column:items;type:jsonb;not null"`
	Status           enums.OrderStatus              `gorm:"column:status;not null;default:pending"`
	PaymentStatus    enums.PaymentStatus            `gorm:"column:payment_status;not null;default:pending"`
	PaymentMethod    *enums.PaymentMethod           `gorm:"column:payment_method"`
	UPITransactionID *string                        `gorm:"column:upi_transaction_id"`
	CreatedAt        time.Time                      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time                      `gorm:"column:updated_at;autoUpdateTime"`
	CompletedAt      *time.Time                     `gorm:"column:completed_at"`
}

func (Order) TableName() string { return "orders" }

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderItem is one cart line frozen into an order.
type OrderItem struct {
	ProductID  uuid.UUID       `json:"product_id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Image      string          `json:"image,omitempty"`
	Quantity   int             `json:"quantity"`
	Color      string          `json:"color"`
	Size       string          `json:"size"`
	Logo       string          `json:"logo"`
	CustomText string          `json:"custom_text,omitempty"`
}

// LineTotal is quantity times unit price.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

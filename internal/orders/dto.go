package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

// OrderDTO is the API shape of an order.
type OrderDTO struct {
	ID               uuid.UUID            `json:"id"`
	OrderNumber      string               `json:"order_number"`
	CustomerName     string               `json:"customer_name"`
	CustomerPhone    string               `json:"customer_phone"`
	CustomerEmail    string               `json:"customer_email"`
	TotalAmount      decimal.Decimal      `json:"total_amount"`
	Items            []models.OrderItem   `json:"items"`
	Status           enums.OrderStatus    `json:"status"`
	PaymentStatus    enums.PaymentStatus  `json:"payment_status"`
	PaymentMethod    *enums.PaymentMethod `json:"payment_method,omitempty"`
	UPITransactionID *string              `json:"upi_transaction_id,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
	CompletedAt      *time.Time           `json:"completed_at,omitempty"`
}

// ToDTO maps a stored order to its API shape.
func ToDTO(o models.Order) OrderDTO {
	items := []models.OrderItem(o.Items)
	if items == nil {
		items = []models.OrderItem{}
	}
	return OrderDTO{
		ID:               o.ID,
		OrderNumber:      o.OrderNumber,
		CustomerName:     o.CustomerName,
		CustomerPhone:    o.CustomerPhone,
		CustomerEmail:    o.CustomerEmail,
		TotalAmount:      o.TotalAmount,
		Items:            items,
		Status:           o.Status,
		PaymentStatus:    o.PaymentStatus,
		PaymentMethod:    o.PaymentMethod,
		UPITransactionID: o.UPITransactionID,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
		CompletedAt:      o.CompletedAt,
	}
}

// CreateInput is everything needed to open a pending order.
type CreateInput struct {
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	Items         []models.OrderItem
}

// ListFilter narrows the admin order list.
type ListFilter struct {
	Status        *enums.OrderStatus
	PaymentStatus *enums.PaymentStatus
	Params        pagination.Params
}

// OrderList is one page of orders, newest first.
type OrderList struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

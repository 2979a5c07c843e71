// Package orders is the order ledger: creation with a locked total, payment and
// fulfillment transitions, and back-office reads.
package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/documents"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type numberer interface {
	OrderNumber() string
}

// Service exposes the order ledger.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetByNumber(ctx context.Context, number string) (*models.Order, error)
	List(ctx context.Context, filter ListFilter) (*OrderList, error)
	CompleteCheckout(ctx context.Context, id uuid.UUID, method enums.PaymentMethod) (*models.Order, error)
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status enums.PaymentStatus, upiTransactionID *string) (*models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (*models.Order, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Export(ctx context.Context) (documents.Table, error)
	Receipt(ctx context.Context, id uuid.UUID, business models.BusinessInfo) ([]byte, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	numbers numberer
	now     func() time.Time
}

// NewService builds the order ledger.
func NewService(repo Repository, tx txRunner, numbers numberer) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if numbers == nil {
		return nil, fmt.Errorf("order numberer required")
	}
	return &service{repo: repo, tx: tx, numbers: numbers, now: time.Now}, nil
}

// Create opens a pending order whose total is locked to the item snapshot.
func (s *service) Create(ctx context.Context, input CreateInput) (*models.Order, error) {
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	total := decimal.Zero
	for _, item := range input.Items {
		if item.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be at least 1")
		}
		if item.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item price must not be negative")
		}
		total = total.Add(item.LineTotal())
	}
	items := make([]models.OrderItem, len(input.Items))
	copy(items, input.Items)

	order := &models.Order{
		OrderNumber:   s.numbers.OrderNumber(),
		CustomerName:  strings.TrimSpace(input.CustomerName),
		CustomerPhone: strings.TrimSpace(input.CustomerPhone),
		CustomerEmail: strings.TrimSpace(input.CustomerEmail),
		TotalAmount:   total,
		Items:         datatypes.JSONSlice[models.OrderItem](items),
		Status:        enums.OrderStatusPending,
		PaymentStatus: enums.PaymentStatusPending,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}
	return order, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	return s.found(order, err)
}

func (s *service) GetByNumber(ctx context.Context, number string) (*models.Order, error) {
	order, err := s.repo.FindByNumber(ctx, number)
	return s.found(order, err)
}

func (s *service) found(order *models.Order, err error) (*models.Order, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) (*OrderList, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unknown order status %q", *filter.Status)
	}
	if filter.PaymentStatus != nil && !filter.PaymentStatus.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unknown payment status %q", *filter.PaymentStatus)
	}
	if _, err := pagination.ParseCursor(filter.Params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, next, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	list := &OrderList{Orders: make([]OrderDTO, 0, len(rows))}
	for _, row := range rows {
		list.Orders = append(list.Orders, ToDTO(row))
	}
	if next != nil {
		list.NextCursor = pagination.EncodeCursor(*next)
	}
	return list, nil
}

// CompleteCheckout marks payment completed and fulfillment processing. Calling
// it on an order that is already paid returns the order unchanged.
func (s *service) CompleteCheckout(ctx context.Context, id uuid.UUID, method enums.PaymentMethod) (*models.Order, error) {
	if !method.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unknown payment method %q", method)
	}
	now := s.now().UTC()
	n, err := s.repo.UpdateWhere(ctx, id,
		map[string]any{"payment_status": enums.PaymentStatusPending},
		map[string]any{
			"payment_status": enums.PaymentStatusCompleted,
			"payment_method": method,
			"status":         enums.OrderStatusProcessing,
			"completed_at":   now,
		})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete order")
	}
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == 0 && order.PaymentStatus != enums.PaymentStatusCompleted {
		return nil, pkgerrors.Newf(pkgerrors.CodeStateConflict, "payment status %s cannot be completed", order.PaymentStatus)
	}
	return order, nil
}

// UpdatePaymentStatus moves payment out of pending. Repeating the current
// status is a no-op; leaving completed or failed is rejected.
func (s *service) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status enums.PaymentStatus, upiTransactionID *string) (*models.Order, error) {
	if !status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unknown payment status %q", status)
	}
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == status {
		return order, nil
	}
	if order.PaymentStatus != enums.PaymentStatusPending {
		return nil, pkgerrors.Newf(pkgerrors.CodeStateConflict, "payment status cannot move from %s to %s", order.PaymentStatus, status)
	}

	updates := map[string]any{"payment_status": status}
	if upiTransactionID != nil {
		if txn := strings.TrimSpace(*upiTransactionID); txn != "" {
			updates["upi_transaction_id"] = txn
		}
	}
	if status == enums.PaymentStatusCompleted {
		updates["completed_at"] = s.now().UTC()
	}
	n, err := s.repo.UpdateWhere(ctx, id, map[string]any{"payment_status": enums.PaymentStatusPending}, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment status")
	}
	if n == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "payment status changed concurrently")
	}
	return s.Get(ctx, id)
}

// UpdateStatus is the admin override. Any status may be set; completed_at
// follows the completed status.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (*models.Order, error) {
	if !status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unknown order status %q", status)
	}
	updates := map[string]any{"status": status, "completed_at": nil}
	if status == enums.OrderStatusCompleted {
		updates["completed_at"] = s.now().UTC()
	}
	n, err := s.repo.UpdateWhere(ctx, id, nil, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	if n == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	var deleted int64
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		n, err := s.repo.WithTx(tx).Delete(ctx, id)
		deleted = n
		return err
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
	}
	if deleted == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return nil
}

func (s *service) Export(ctx context.Context) (documents.Table, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return documents.Table{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	table := documents.Table{Header: []string{
		"Order Number", "Order ID", "Date", "Customer Name", "Customer Phone", "Customer Email",
		"Total Amount", "Payment Status", "Order Status", "Payment Method",
	}}
	for _, o := range rows {
		method := ""
		if o.PaymentMethod != nil {
			method = o.PaymentMethod.String()
		}
		table.Append(
			o.OrderNumber,
			o.ID.String(),
			o.CreatedAt.UTC().Format(time.DateOnly),
			o.CustomerName,
			o.CustomerPhone,
			o.CustomerEmail,
			documents.Rupees(o.TotalAmount),
			o.PaymentStatus.String(),
			o.Status.String(),
			method,
		)
	}
	return table, nil
}

// Receipt renders the customer receipt PDF for an order.
func (s *service) Receipt(ctx context.Context, id uuid.UUID, business models.BusinessInfo) ([]byte, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	storeName := business.Name
	if storeName == "" {
		storeName = "Receipt"
	}
	doc := documents.ReceiptDocument{
		StoreName:   storeName,
		Tagline:     business.Address,
		OrderNumber: order.OrderNumber,
		Date:        order.CreatedAt.UTC().Format("02 Jan 2006"),
		Customer:    documents.Party{Name: order.CustomerName, Phone: order.CustomerPhone, Email: order.CustomerEmail},
		Total:       order.TotalAmount,
	}
	for _, item := range order.Items {
		doc.Items = append(doc.Items, documents.ReceiptItem{
			Name:       item.Name,
			Color:      item.Color,
			Size:       item.Size,
			Logo:       item.Logo,
			CustomText: item.CustomText,
			Quantity:   item.Quantity,
			Price:      item.Price,
			Total:      item.LineTotal(),
		})
	}
	pdf, err := documents.RenderReceipt(doc)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render receipt")
	}
	return pdf, nil
}

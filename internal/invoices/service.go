// Package invoices builds, stores and renders the single tax invoice issued for
// an order.
package invoices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/documents"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

const dateLayout = "02 Jan 2006"

type numberer interface {
	InvoiceNumber() string
}

// Service issues and renders invoices.
type Service interface {
	GetOrCreate(ctx context.Context, order models.Order, business models.BusinessInfo) (*models.Invoice, bool, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	GetByOrder(ctx context.Context, orderID uuid.UUID) (*models.Invoice, error)
	List(ctx context.Context) ([]InvoiceDTO, error)
	PDF(inv models.Invoice) ([]byte, error)
	Sheet(inv models.Invoice) documents.Table
	Export(ctx context.Context) (documents.Table, error)
}

type service struct {
	repo     Repository
	numbers  numberer
	defaults Defaults
	now      func() time.Time
}

// NewService wires invoice issuance with the line defaults to apply.
func NewService(repo Repository, numbers numberer, defaults Defaults) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("invoice repository required")
	}
	if numbers == nil {
		return nil, fmt.Errorf("invoice numberer required")
	}
	return &service{repo: repo, numbers: numbers, defaults: defaults, now: time.Now}, nil
}

// GetOrCreate returns the order's invoice, issuing it on first call. The bool
// reports whether this call created it.
func (s *service) GetOrCreate(ctx context.Context, order models.Order, business models.BusinessInfo) (*models.Invoice, bool, error) {
	if order.ID == uuid.Nil {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	existing, err := s.repo.FindByOrder(ctx, order.ID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
	}
	if len(order.Items) == 0 {
		return nil, false, pkgerrors.New(pkgerrors.CodeStateConflict, "order has no items to invoice")
	}

	inv := BuildFromOrder(order, business, s.numbers.InvoiceNumber(), s.defaults, s.now())
	if err := s.repo.Create(ctx, &inv); err != nil {
		if db.IsUniqueViolation(err, "") {
			existing, findErr := s.repo.FindByOrder(ctx, order.ID)
			if findErr == nil {
				return existing, false, nil
			}
		}
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist invoice")
	}
	return &inv, true, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	inv, err := s.repo.FindByID(ctx, id)
	return found(inv, err)
}

func (s *service) GetByOrder(ctx context.Context, orderID uuid.UUID) (*models.Invoice, error) {
	inv, err := s.repo.FindByOrder(ctx, orderID)
	return found(inv, err)
}

func found(inv *models.Invoice, err error) (*models.Invoice, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
	}
	return inv, nil
}

func (s *service) List(ctx context.Context) ([]InvoiceDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list invoices")
	}
	out := make([]InvoiceDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, ToDTO(row))
	}
	return out, nil
}

// Document maps an invoice to its printable form. Amounts are recomputed from
// the stored lines so repeated renders agree.
func Document(inv models.Invoice) documents.InvoiceDocument {
	return FromInvoice(inv).Document()
}

func (s *service) PDF(inv models.Invoice) ([]byte, error) {
	return FromInvoice(inv).PDF()
}

// Sheet is the sectioned single-invoice export.
func (s *service) Sheet(inv models.Invoice) documents.Table {
	return FromInvoice(inv).Table()
}

func (s *service) Export(ctx context.Context) (documents.Table, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return documents.Table{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list invoices")
	}
	table := documents.Table{Header: []string{"Invoice Number", "Order ID", "Date", "Customer", "Subtotal", "Discount", "Tax", "Grand Total"}}
	for _, inv := range rows {
		customer := inv.CustomerInfo.Data().Name
		if customer == "" {
			customer = "N/A"
		}
		table.Append(
			inv.InvoiceNumber,
			inv.OrderID.String(),
			inv.CreatedAt.UTC().Format(time.DateOnly),
			customer,
			documents.Rupees(inv.Subtotal),
			documents.Rupees(inv.Discount),
			documents.Rupees(inv.Tax),
			documents.Rupees(inv.GrandTotal),
		)
	}
	return table, nil
}

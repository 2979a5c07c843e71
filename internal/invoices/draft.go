package invoices

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/documents"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

const draftUnit = "Nos"

// Party is a seller or buyer block as printed on an invoice.
type Party struct {
	Name    string
	Address string
	Phone   string
	Email   string
	GSTIN   string
}

// Draft is an invoice as it will be printed. Order invoices are mapped onto it
// and the back office composes ad-hoc ones directly.
type Draft struct {
	Number   string
	Date     time.Time
	DueDate  *time.Time
	Business Party
	Customer Party
	Lines    []models.InvoiceLine
	Notes    string
}

// FromInvoice maps a stored invoice onto its printable draft.
func FromInvoice(inv models.Invoice) Draft {
	business := inv.BusinessInfo.Data()
	customer := inv.CustomerInfo.Data()
	due := inv.DueDate
	return Draft{
		Number:   inv.InvoiceNumber,
		Date:     inv.CreatedAt,
		DueDate:  &due,
		Business: Party{Name: business.Name, Address: business.Address, Phone: business.Phone, Email: business.Email, GSTIN: business.GSTIN},
		Customer: Party{Name: customer.Name, Phone: customer.Phone, Email: customer.Email},
		Lines:    inv.Items,
		Notes:    inv.Notes,
	}
}

// Normalize trims text fields and fills the default unit.
func (d Draft) Normalize() Draft {
	d.Number = strings.TrimSpace(d.Number)
	d.Notes = strings.TrimSpace(d.Notes)
	d.Business.Name = strings.TrimSpace(d.Business.Name)
	d.Customer.Name = strings.TrimSpace(d.Customer.Name)
	lines := make([]models.InvoiceLine, len(d.Lines))
	for i, line := range d.Lines {
		line.Description = strings.TrimSpace(line.Description)
		line.Unit = strings.TrimSpace(line.Unit)
		if line.Unit == "" {
			line.Unit = draftUnit
		}
		lines[i] = line
	}
	d.Lines = lines
	return d
}

// Validate checks the amounts Compute relies on: positive quantities,
// non-negative rates and percentages within 0-100.
func (d Draft) Validate() error {
	details := map[string]string{}
	if d.Number == "" {
		details["invoice_number"] = "is required"
	}
	if d.Business.Name == "" {
		details["business.name"] = "is required"
	}
	if d.Customer.Name == "" {
		details["customer.name"] = "is required"
	}
	if len(d.Lines) == 0 {
		details["items"] = "must contain at least one line"
	}
	if d.DueDate != nil && d.DueDate.Before(d.Date) {
		details["due_date"] = "must not be before date"
	}
	for i, line := range d.Lines {
		field := func(name string) string { return fmt.Sprintf("items[%d].%s", i, name) }
		if line.Description == "" {
			details[field("name")] = "is required"
		}
		if line.Quantity < 1 {
			details[field("quantity")] = "must be at least 1"
		}
		if line.Rate.IsNegative() {
			details[field("rate")] = "must not be negative"
		}
		if !percent(line.TaxPercent) {
			details[field("tax_percent")] = "must be between 0 and 100"
		}
		if !percent(line.DiscountPercent) {
			details[field("discount_percent")] = "must be between 0 and 100"
		}
	}
	if len(details) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invoice draft invalid").WithDetails(details)
}

func percent(v decimal.Decimal) bool {
	return !v.IsNegative() && v.LessThanOrEqual(hundred)
}

func (d Draft) dueDate() string {
	if d.DueDate == nil {
		return ""
	}
	return d.DueDate.UTC().Format(dateLayout)
}

// Document lays the draft out for the PDF renderer. Amounts come from Compute.
func (d Draft) Document() documents.InvoiceDocument {
	totals := Compute(d.Lines)
	doc := documents.InvoiceDocument{
		Number:     d.Number,
		Date:       d.Date.UTC().Format(dateLayout),
		DueDate:    d.dueDate(),
		Business:   documents.Party(d.Business),
		Customer:   documents.Party(d.Customer),
		Subtotal:   totals.Subtotal,
		Discount:   totals.TotalDiscount,
		Tax:        totals.TotalTax,
		GrandTotal: totals.GrandTotal,
		Notes:      d.Notes,
	}
	for i, line := range d.Lines {
		doc.Lines = append(doc.Lines, documents.InvoiceLine{
			Description:     line.Description,
			HSNSAC:          line.HSNSAC,
			Quantity:        line.Quantity,
			Unit:            line.Unit,
			Rate:            line.Rate,
			DiscountPercent: line.DiscountPercent,
			TaxPercent:      line.TaxPercent,
			Amount:          totals.Lines[i].Total,
		})
	}
	return doc
}

// PDF renders the draft.
func (d Draft) PDF() ([]byte, error) {
	pdf, err := documents.RenderInvoice(d.Document())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render invoice")
	}
	return pdf, nil
}

// Table is the sectioned single-invoice CSV layout. Empty contact fields are omitted.
func (d Draft) Table() documents.Table {
	totals := Compute(d.Lines)
	title := "Invoice (CSV Format)"
	if d.Business.Name != "" {
		title = d.Business.Name + " - " + title
	}
	t := documents.Table{Header: []string{title}}
	blank := func() { t.Append() }
	party := func(heading string, p Party) {
		t.Append(heading)
		t.Append("Name", p.Name)
		for _, kv := range [][2]string{{"Address", p.Address}, {"Phone", p.Phone}, {"Email", p.Email}, {"GSTIN", p.GSTIN}} {
			if kv[1] != "" {
				t.Append(kv[0], kv[1])
			}
		}
	}

	blank()
	party("BUSINESS INFORMATION", d.Business)
	blank()
	party("CUSTOMER INFORMATION", d.Customer)
	blank()
	t.Append("INVOICE DETAILS")
	t.Append("Invoice No", d.Number)
	t.Append("Date", d.Date.UTC().Format(dateLayout))
	t.Append("Due Date", d.dueDate())
	blank()
	t.Append("ITEMS")
	t.Append("Item Name", "HSN/SAC", "Quantity", "Unit", "Rate", "Tax %", "Discount %", "Amount")
	for i, line := range d.Lines {
		t.Append(
			line.Description,
			line.HSNSAC,
			fmt.Sprint(line.Quantity),
			line.Unit,
			documents.Rupees(line.Rate),
			line.TaxPercent.String()+"%",
			line.DiscountPercent.String()+"%",
			documents.Rupees(totals.Lines[i].Total),
		)
	}
	blank()
	total := func(label, amount string) { t.Append(label, "", "", "", "", "", "", amount) }
	total("Subtotal", documents.Rupees(totals.Subtotal))
	total("Discount", documents.Rupees(totals.TotalDiscount))
	total("Taxable Amount", documents.Rupees(totals.TaxableAmount))
	total("Total Tax", documents.Rupees(totals.TotalTax))
	total("GRAND TOTAL", documents.Rupees(totals.GrandTotal))
	if d.Notes != "" {
		blank()
		t.Append("NOTES")
		t.Append(d.Notes)
	}
	return t
}

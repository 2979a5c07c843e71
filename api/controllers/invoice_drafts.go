package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/invoices"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type draftParty struct {
	Name    string `json:"name" validate:"required,max=200"`
	Address string `json:"address" validate:"max=500"`
	Phone   string `json:"phone" validate:"max=40"`
	Email   string `json:"email" validate:"omitempty,email"`
	GSTIN   string `json:"gstin" validate:"max=20"`
}

type draftLine struct {
	Name            string          `json:"name" validate:"required,max=200"`
	HSNSAC          string          `json:"hsn_sac" validate:"max=20"`
	Quantity        int             `json:"quantity" validate:"gte=1"`
	Unit            string          `json:"unit" validate:"max=20"`
	Rate            decimal.Decimal `json:"rate"`
	TaxPercent      decimal.Decimal `json:"tax_percent"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

type draftInvoiceRequest struct {
	Format        string      `json:"format" validate:"omitempty,oneof=pdf csv"`
	InvoiceNumber string      `json:"invoice_number" validate:"required,max=64"`
	Date          string      `json:"date" validate:"omitempty,datetime=2006-01-02"`
	DueDate       string      `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Business      draftParty  `json:"business"`
	Customer      draftParty  `json:"customer"`
	Items         []draftLine `json:"items" validate:"required,min=1,max=200,dive"`
	Notes         string      `json:"notes" validate:"max=2000"`
}

func (req draftInvoiceRequest) draft(now time.Time) invoices.Draft {
	d := invoices.Draft{
		Number:   req.InvoiceNumber,
		Date:     now.UTC(),
		Business: invoices.Party(req.Business),
		Customer: invoices.Party(req.Customer),
		Notes:    req.Notes,
	}
	if req.Date != "" {
		d.Date, _ = time.Parse(time.DateOnly, req.Date)
	}
	if req.DueDate != "" {
		due, _ := time.Parse(time.DateOnly, req.DueDate)
		d.DueDate = &due
	}
	for _, item := range req.Items {
		d.Lines = append(d.Lines, models.InvoiceLine{
			Description:     item.Name,
			HSNSAC:          item.HSNSAC,
			Quantity:        item.Quantity,
			Unit:            item.Unit,
			Rate:            item.Rate,
			TaxPercent:      item.TaxPercent,
			DiscountPercent: item.DiscountPercent,
		})
	}
	return d.Normalize()
}

// AdminRenderInvoice composes an invoice that is not tied to an order and
// returns it as a PDF or CSV download. Nothing is stored.
func AdminRenderInvoice(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body draftInvoiceRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		draft := body.draft(timeNowUTC())
		if err := draft.Validate(); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filename := "Invoice_" + fileSafe(draft.Number)
		if body.Format == "csv" {
			responses.WriteCSV(r.Context(), logg, w, filename+".csv", draft.Table())
			return
		}
		pdf, err := draft.PDF()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteAttachment(w, pdfContentType, filename+".pdf", pdf)
	}
}

var timeNowUTC = func() time.Time { return time.Now().UTC() }

func fileSafe(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
}

// Package documents renders invoices and receipts as PDF and tabular exports as CSV.
package documents

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// Party is a name and contact block printed on a document.
type Party struct {
	Name    string
	Address string
	Phone   string
	Email   string
	GSTIN   string
}

// InvoiceLine is one billed row with its computed amount.
type InvoiceLine struct {
	Description     string
	HSNSAC          string
	Quantity        int
	Unit            string
	Rate            decimal.Decimal
	DiscountPercent decimal.Decimal
	TaxPercent      decimal.Decimal
	Amount          decimal.Decimal
}

// InvoiceDocument is everything printed on an invoice. Amounts are final.
type InvoiceDocument struct {
	Number     string
	Date       string
	DueDate    string
	Business   Party
	Customer   Party
	Lines      []InvoiceLine
	Subtotal   decimal.Decimal
	Discount   decimal.Decimal
	Tax        decimal.Decimal
	GrandTotal decimal.Decimal
	Notes      string
}

const (
	pageMargin  = 15.0
	maxDescLen  = 30
	currencyPDF = "Rs. "
	footerText  = "This is a computer-generated invoice and does not require a signature."
)

var (
	accent     = [3]int{139, 92, 246}
	panelFill  = [3]int{245, 245, 245}
	stripeFill = [3]int{250, 250, 250}
	mutedText  = [3]int{100, 100, 100}

	invoiceHeaders = []string{"#", "Item Description", "HSN/SAC", "Qty", "Unit", "Rate", "Discount", "Tax", "Amount"}
	invoiceCols    = []float64{10, 55, 22, 15, 15, 20, 20, 18, 23}
)

// RenderInvoice lays out an A4 tax invoice.
func RenderInvoice(doc InvoiceDocument) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	pageW, pageH := pdf.GetPageSize()

	fill(pdf, accent)
	pdf.Rect(0, 0, pageW, 40, "F")

	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 28)
	pdf.Text(pageMargin, 20, tr(doc.Business.Name))
	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(pageMargin, 28, tr(doc.Business.Address))
	pdf.Text(pageMargin, 33, tr("Phone: "+doc.Business.Phone))

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 24)
	textRight(pdf, pageW-pageMargin, 20, "INVOICE")
	pdf.SetFont("Helvetica", "", 10)
	textRight(pdf, pageW-pageMargin, 28, tr("Invoice #: "+doc.Number))
	textRight(pdf, pageW-pageMargin, 33, "Date: "+doc.Date)
	textRight(pdf, pageW-pageMargin, 38, "Due Date: "+doc.DueDate)

	y := 55.0
	panelW := (pageW-2*pageMargin)/2 - 5
	fill(pdf, panelFill)
	pdf.Rect(pageMargin, y, panelW, 25, "F")
	pdf.Rect(pageW/2+5, y, panelW, 25, "F")

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Text(pageMargin+3, y+6, "Bill To:")
	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(pageMargin+3, y+12, tr(doc.Customer.Name))
	pdf.Text(pageMargin+3, y+17, tr(doc.Customer.Email))
	pdf.Text(pageMargin+3, y+22, tr("Phone: "+doc.Customer.Phone))

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Text(pageW/2+8, y+6, "Business Details:")
	pdf.SetFont("Helvetica", "", 10)
	if doc.Business.GSTIN != "" {
		pdf.Text(pageW/2+8, y+12, tr("GSTIN: "+doc.Business.GSTIN))
	}
	if doc.Business.Email != "" {
		pdf.Text(pageW/2+8, y+17, tr("Email: "+doc.Business.Email))
	}

	y += 35
	y = invoiceTableHeader(pdf, pageW, y)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 8)
	for i, line := range doc.Lines {
		if y > pageH-40 {
			pdf.AddPage()
			y = 20
		}
		if i%2 == 0 {
			fill(pdf, stripeFill)
			pdf.Rect(pageMargin, y, pageW-2*pageMargin, 7, "F")
		}
		hsn := line.HSNSAC
		if hsn == "" {
			hsn = "N/A"
		}
		cells := []string{
			strconv.Itoa(i + 1),
			tr(truncate(line.Description, maxDescLen)),
			hsn,
			strconv.Itoa(line.Quantity),
			line.Unit,
			money(line.Rate),
			line.DiscountPercent.String() + "%",
			line.TaxPercent.String() + "%",
			money(line.Amount),
		}
		x := pageMargin
		for c, cell := range cells {
			pdf.Text(x+2, y+5, cell)
			x += invoiceCols[c]
		}
		y += 7
	}

	y += 5
	draw(pdf, accent)
	pdf.SetLineWidth(0.5)
	pdf.Line(pageMargin, y, pageW-pageMargin, y)

	y += 8
	summaryX := pageW - pageMargin - 60
	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(summaryX, y, "Subtotal:")
	textRight(pdf, pageW-pageMargin, y, money(doc.Subtotal))
	y += 6
	pdf.Text(summaryX, y, "Total Discount:")
	textRight(pdf, pageW-pageMargin, y, "-"+money(doc.Discount))
	y += 6
	pdf.Text(summaryX, y, "Total Tax:")
	textRight(pdf, pageW-pageMargin, y, money(doc.Tax))

	y += 8
	fill(pdf, accent)
	pdf.Rect(summaryX-5, y-5, pageW-summaryX-pageMargin+5, 10, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Text(summaryX, y+2, "Grand Total:")
	textRight(pdf, pageW-pageMargin, y+2, money(doc.GrandTotal))

	if doc.Notes != "" {
		y += 20
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.Text(pageMargin, y, "Notes:")
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetXY(pageMargin, y+2)
		pdf.MultiCell(pageW-2*pageMargin, 5, tr(doc.Notes), "", "L", false)
	}

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(mutedText[0], mutedText[1], mutedText[2])
	textCenter(pdf, pageW/2, pageH-10, footerText)

	return output(pdf)
}

func invoiceTableHeader(pdf *fpdf.Fpdf, pageW, y float64) float64 {
	fill(pdf, accent)
	pdf.SetTextColor(255, 255, 255)
	pdf.Rect(pageMargin, y, pageW-2*pageMargin, 8, "F")
	pdf.SetFont("Helvetica", "B", 9)
	x := pageMargin
	for i, h := range invoiceHeaders {
		pdf.Text(x+2, y+6, h)
		x += invoiceCols[i]
	}
	return y + 8
}

func output(pdf *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func fill(pdf *fpdf.Fpdf, c [3]int) { pdf.SetFillColor(c[0], c[1], c[2]) }

func draw(pdf *fpdf.Fpdf, c [3]int) { pdf.SetDrawColor(c[0], c[1], c[2]) }

func textRight(pdf *fpdf.Fpdf, right, y float64, s string) {
	pdf.Text(right-pdf.GetStringWidth(s), y, s)
}

func textCenter(pdf *fpdf.Fpdf, center, y float64, s string) {
	pdf.Text(center-pdf.GetStringWidth(s)/2, y, s)
}

func money(d decimal.Decimal) string {
	return currencyPDF + d.StringFixed(2)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

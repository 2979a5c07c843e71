package documents

import (
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// ReceiptItem is one purchased line.
type ReceiptItem struct {
	Name       string
	Color      string
	Size       string
	Logo       string
	CustomText string
	Quantity   int
	Price      decimal.Decimal
	Total      decimal.Decimal
}

// ReceiptDocument is a customer-facing order summary.
type ReceiptDocument struct {
	StoreName   string
	Tagline     string
	OrderNumber string
	Date        string
	Customer    Party
	Items       []ReceiptItem
	Total       decimal.Decimal
}

// RenderReceipt lays out a single-column order receipt.
func RenderReceipt(doc ReceiptDocument) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 24)
	textCenter(pdf, 105, 20, tr(doc.StoreName))
	if doc.Tagline != "" {
		pdf.SetFont("Helvetica", "", 10)
		textCenter(pdf, 105, 28, tr(doc.Tagline))
	}
	pdf.SetLineWidth(0.5)
	pdf.Line(20, 35, 190, 35)

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Text(20, 45, "Receipt")
	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(20, 55, tr("Order: "+doc.OrderNumber))
	pdf.Text(20, 62, "Date: "+doc.Date)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.Text(20, 75, "Customer Details")
	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(20, 82, tr("Name: "+doc.Customer.Name))
	pdf.Text(20, 89, tr("Phone: "+doc.Customer.Phone))
	pdf.Text(20, 96, tr("Email: "+doc.Customer.Email))
	pdf.Line(20, 105, 190, 105)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.Text(20, 115, "Items")

	y := 125.0
	for i, item := range doc.Items {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.Text(20, y, tr(fmt.Sprintf("%d. %s", i+1, item.Name)))
		y += 7

		pdf.SetFont("Helvetica", "", 9)
		pdf.Text(20, y, tr(fmt.Sprintf("   Color: %s | Size: %s | Logo: %s", item.Color, item.Size, item.Logo)))
		y += 6
		if item.CustomText != "" {
			pdf.Text(20, y, tr("   Custom Text: "+item.CustomText))
			y += 6
		}
		pdf.Text(20, y, fmt.Sprintf("   Quantity: %d x %s = %s", item.Quantity, money(item.Price), money(item.Total)))
		y += 10
	}

	pdf.Line(20, y, 190, y)
	y += 10
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Text(20, y, "Total: "+money(doc.Total))

	y += 15
	pdf.SetFont("Helvetica", "I", 10)
	textCenter(pdf, 105, y, tr(fmt.Sprintf("Thank you for shopping with %s!", doc.StoreName)))
	textCenter(pdf, 105, y+7, "We hope to see you again soon!")

	return output(pdf)
}

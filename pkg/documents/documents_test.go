package documents

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderInvoiceProducesPDF(t *testing.T) {
	lines := make([]InvoiceLine, 0, 40)
	for i := 0; i < 40; i++ {
		lines = append(lines, InvoiceLine{
			Description:     "Campus Hoodie with a very long descriptive name (Black/M/Embroidered)",
			HSNSAC:          "9404",
			Quantity:        2,
			Unit:            "Pcs",
			Rate:            decimal.RequireFromString("500"),
			DiscountPercent: decimal.Zero,
			TaxPercent:      decimal.NewFromInt(18),
			Amount:          decimal.RequireFromString("1180"),
		})
	}
	out, err := RenderInvoice(InvoiceDocument{
		Number:     "INV-1",
		Date:       "2026-10-18",
		DueDate:    "2026-10-25",
		Business:   Party{Name: "Campus Closet", Address: "Main Road", Phone: "99999", GSTIN: "29ABCDE1234F1Z5", Email: "shop@example.com"},
		Customer:   Party{Name: "Asha", Phone: "88888", Email: "asha@example.com"},
		Lines:      lines,
		Subtotal:   decimal.RequireFromString("40000"),
		Discount:   decimal.Zero,
		Tax:        decimal.RequireFromString("7200"),
		GrandTotal: decimal.RequireFromString("47200"),
		Notes:      "Thank you for your order!",
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Contains(t, string(out), "/Count 2")
}

func TestRenderReceiptProducesPDF(t *testing.T) {
	out, err := RenderReceipt(ReceiptDocument{
		StoreName:   "Campus Closet",
		OrderNumber: "ORD-1",
		Date:        "2026-10-18",
		Customer:    Party{Name: "Asha"},
		Items: []ReceiptItem{{
			Name: "Tee", Color: "Red", Size: "L", Logo: "Custom Print", CustomText: "ASHA",
			Quantity: 1, Price: decimal.NewFromInt(300), Total: decimal.NewFromInt(300),
		}},
		Total: decimal.NewFromInt(300),
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestWriteCSVQuotesFields(t *testing.T) {
	table := Table{Header: []string{"Name", "Total"}}
	table.Append(`Tee, "Red"`, Rupees(decimal.RequireFromString("12.5")))

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, table))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Name,Total", lines[0])
	assert.Equal(t, `"Tee, ""Red""",₹12.50`, lines[1])
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab...", truncate("abcd", 2))
}

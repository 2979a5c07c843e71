package documents

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

// CSVContentType is the media type for exports.
const CSVContentType = "text/csv; charset=utf-8"

// Table is a header plus rows ready for export.
type Table struct {
	Header []string
	Rows   [][]string
}

// Append adds one row.
func (t *Table) Append(row ...string) {
	t.Rows = append(t.Rows, row)
}

// WriteCSV writes the table with RFC 4180 quoting.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

// Rupees formats an amount with the rupee sign and two decimals.
func Rupees(d decimal.Decimal) string {
	return "₹" + d.StringFixed(2)
}

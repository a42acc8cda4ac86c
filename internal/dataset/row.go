// Package dataset turns tabular retail exports into rows keyed by column name.
package dataset

import (
	"errors"
	"strings"
)

// Column names used by the Superstore export.
const (
	FieldCategory    = "Category"
	FieldSubCategory = "Sub-Category"
	FieldProfit      = "Profit"
	FieldState       = "State"
	FieldPostalCode  = "Postal Code"
	FieldQuantity    = "Quantity"
	FieldOrderDate   = "Order Date"
	FieldShipDate    = "Ship Date"
)

var (
	ErrNoHeader          = errors.New("dataset has no header row")
	ErrUnsupportedSource = errors.New("unsupported dataset source")
	ErrSheetNotFound     = errors.New("sheet not found")
)

// Row is one record keyed by column name. Absent columns read as "".
type Row map[string]string

// Get returns the trimmed value of a field.
func (r Row) Get(field string) string {
	return strings.TrimSpace(r[field])
}

// fromRecord builds a Row from a header and a (possibly short) record.
func fromRecord(header, rec []string) Row {
	row := make(Row, len(header))
	for i, name := range header {
		if name == "" {
			continue
		}
		if i < len(rec) {
			row[name] = rec[i]
		} else {
			row[name] = ""
		}
	}
	return row
}

func cleanHeader(h []string) []string {
	out := make([]string, len(h))
	for i, s := range h {
		if i == 0 {
			s = strings.TrimPrefix(s, "\ufeff")
		}
		out[i] = strings.TrimSpace(s)
	}
	return out
}

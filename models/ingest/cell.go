package ingest

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CellKind tags the decoded representation of one spreadsheet cell.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
	CellDate
)

// Cell is one decoded spreadsheet value. Exactly one of Text/Number/Date is
// meaningful, selected by Kind.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
	Date   time.Time
}

func TextCell(s string) Cell    { return Cell{Kind: CellText, Text: s} }
func NumberCell(n float64) Cell { return Cell{Kind: CellNumber, Number: n} }
func DateCell(t time.Time) Cell { return Cell{Kind: CellDate, Date: t} }
func EmptyCell() Cell           { return Cell{Kind: CellEmpty} }

// String renders the cell for name-like columns.
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return strings.TrimSpace(c.Text)
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case CellDate:
		return c.Date.Format("2006-01-02")
	default:
		return ""
	}
}

// Decimal coerces a metric cell to a decimal amount. Anything that is not a
// number reads as zero, never as an error; POS exports format amounts with
// thousand separators and decimal commas, so a cleaned second parse is tried
// before giving up.
func (c Cell) Decimal() decimal.Decimal {
	switch c.Kind {
	case CellNumber:
		return decimal.NewFromFloat(c.Number)
	case CellText:
		s := strings.TrimSpace(c.Text)
		if s == "" {
			return decimal.Zero
		}
		if d, err := decimal.NewFromString(s); err == nil {
			return d
		}
		if d, err := decimal.NewFromString(cleanNumeric(s)); err == nil {
			return d
		}
	}
	return decimal.Zero
}

// Int coerces a metric cell to an integer count, zero on anything unreadable.
func (c Cell) Int() int {
	switch c.Kind {
	case CellNumber:
		return int(c.Number)
	case CellText:
		s := strings.TrimSpace(c.Text)
		if s == "" {
			return 0
		}
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return int(n)
		}
		if n, err := strconv.ParseFloat(cleanNumeric(s), 64); err == nil {
			return int(n)
		}
	}
	return 0
}

// cleanNumeric strips grouping spaces and turns a decimal comma into a dot:
// "1 234,56" -> "1234.56".
func cleanNumeric(s string) string {
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}
	return s
}

package ingest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// NormalizeDate converts one date cell of unknown representation into the
// canonical YYYY-MM-DD string. Returns false when no representation applies;
// the caller counts the row as skipped and moves on.
//
// Accepted, in order:
//  1. a native date value (local calendar terms, no timezone conversion)
//  2. a spreadsheet serial day count (1900 date system)
//  3. text "DD.MM.YYYY" optionally followed by ", <weekday>" free text
//  4. text already in YYYY-MM-DD form
//
// Calendar validity is deliberately not checked: a "2024-02-31" passes
// through as-is, matching what the report queries have always been fed.
func NormalizeDate(c Cell) (string, bool) {
	switch c.Kind {
	case CellDate:
		y, m, d := c.Date.Date()
		return fmt.Sprintf("%04d-%02d-%02d", y, int(m), d), true
	case CellNumber:
		t, err := excelize.ExcelDateToTime(c.Number, false)
		if err != nil {
			return "", false
		}
		y, m, d := t.Date()
		return fmt.Sprintf("%04d-%02d-%02d", y, int(m), d), true
	case CellText:
		return normalizeTextDate(c.Text)
	default:
		return "", false
	}
}

func normalizeTextDate(s string) (string, bool) {
	// The POS export writes "01.01.2024, понедельник"; everything after the
	// first comma is decoration.
	datePart := s
	if idx := strings.IndexByte(s, ','); idx >= 0 {
		datePart = s[:idx]
	}
	datePart = strings.TrimSpace(datePart)

	if parts := strings.Split(datePart, "."); len(parts) == 3 {
		day, month, year := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), strings.TrimSpace(parts[2])
		return year + "-" + pad2(month) + "-" + pad2(day), true
	}

	if isoDatePattern.MatchString(datePart) {
		return datePart, true
	}
	return "", false
}

func pad2(s string) string {
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n < 10 && len(s) < 2 {
		return "0" + s
	}
	return s
}

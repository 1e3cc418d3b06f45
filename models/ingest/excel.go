package ingest

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// DecodeWorkbook reads the first sheet of an xlsx stream into header names
// and one header->cell map per data row. The first sheet row is the header
// row. Cells are read raw, so date cells arrive as their serial day count and
// flow through the numeric arm of NormalizeDate.
func DecodeWorkbook(r io.Reader) ([]string, []map[string]Cell, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnparseableFile, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("%w: workbook has no sheets", ErrUnparseableFile)
	}

	sheetRows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnparseableFile, err)
	}
	if len(sheetRows) == 0 {
		return nil, nil, fmt.Errorf("%w: sheet %s is empty", ErrUnparseableFile, sheets[0])
	}

	headers := make([]string, 0, len(sheetRows[0]))
	for _, h := range sheetRows[0] {
		headers = append(headers, strings.TrimSpace(h))
	}

	rows := make([]map[string]Cell, 0, len(sheetRows)-1)
	for _, sheetRow := range sheetRows[1:] {
		row := make(map[string]Cell, len(headers))
		for i, header := range headers {
			if header == "" {
				continue
			}
			if i >= len(sheetRow) {
				row[header] = EmptyCell()
				continue
			}
			row[header] = decodeCell(sheetRow[i])
		}
		rows = append(rows, row)
	}
	return headers, rows, nil
}

// decodeCell classifies one raw cell value. Raw numeric text (including date
// serials) becomes a number cell; everything else non-empty stays text.
func decodeCell(raw string) Cell {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return EmptyCell()
	}
	if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return NumberCell(n)
	}
	return TextCell(trimmed)
}

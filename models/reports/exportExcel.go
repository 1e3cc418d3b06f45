package reports

import (
	"context"
	"fmt"

	"bitbucket.org/mmdatafocus/resto_backend/models"
	"github.com/xuri/excelize/v2"
)

// BuildMonthWorkbook renders one month's daily stats as an xlsx workbook,
// one row per date, ready to stream as an attachment. The column layout
// mirrors what the import pipeline accepts, so an exported file can be
// re-imported as-is.
func BuildMonthWorkbook(ctx context.Context, year int, month int) (*excelize.File, error) {
	stats, err := models.GetDailyStatsForMonth(ctx, monthPrefix(year, month))
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheetName := "Sheet1"
	if _, err := f.NewSheet(sheetName); err != nil {
		return nil, err
	}

	// Add headers
	f.SetCellValue(sheetName, "A1", "Date")
	f.SetCellValue(sheetName, "B1", "Revenue")
	f.SetCellValue(sheetName, "C1", "Guests")
	f.SetCellValue(sheetName, "D1", "Checks")

	// Add data
	for i, stat := range stats {
		row := fmt.Sprint(i + 2)
		f.SetCellValue(sheetName, "A"+row, stat.Date)
		f.SetCellValue(sheetName, "B"+row, stat.Revenue.InexactFloat64())
		f.SetCellValue(sheetName, "C"+row, stat.Guests)
		f.SetCellValue(sheetName, "D"+row, stat.Checks)
	}

	return f, nil
}

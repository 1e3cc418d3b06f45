package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"bitbucket.org/mmdatafocus/resto_backend/config"
	"bitbucket.org/mmdatafocus/resto_backend/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	models.MigrateTableOn(db)
	config.SetDB(db)
	return db
}

var dailyHeaders = []string{"Операционный день", "Сумма продаж", "Гости", "Чеки", "Касса"}

func dailyRow(date string, revenue float64, guests, checks, register float64) map[string]Cell {
	return map[string]Cell{
		"Операционный день": TextCell(date),
		"Сумма продаж":      NumberCell(revenue),
		"Гости":             NumberCell(guests),
		"Чеки":              NumberCell(checks),
		"Касса":             NumberCell(register),
	}
}

func TestImportDailyRows(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	rows := []map[string]Cell{
		dailyRow("10.09.2024, вторник", 100.5, 10, 5, 1),
		dailyRow("10.09.2024, вторник", 200, 20, 8, 2),
		dailyRow("11.09.2024", 50, 3, 2, 1),
	}
	result, err := ImportDailyRows(ctx, db, dailyHeaders, rows, DailyImportOptions{})
	if err != nil {
		t.Fatalf("ImportDailyRows returned error: %v", err)
	}
	if result.DatesAffected != 2 || result.RowsImported != 2 || result.RowsSkipped != 0 {
		t.Fatalf("result = %+v", result)
	}
	if len(result.Failures) != 0 {
		t.Fatalf("unexpected failures: %v", result.Failures)
	}

	stat, err := models.GetDailyStat(ctx, "2024-09-10")
	if err != nil {
		t.Fatalf("GetDailyStat: %v", err)
	}
	if !stat.Revenue.Equal(dec("300.5")) || stat.Guests != 30 || stat.Checks != 13 {
		t.Fatalf("stored stat = %s/%d/%d", stat.Revenue, stat.Guests, stat.Checks)
	}
}

func TestImportDailyRowsIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	rows := []map[string]Cell{dailyRow("2024-09-10", 100, 10, 5, 1)}
	for i := 0; i < 2; i++ {
		if _, err := ImportDailyRows(ctx, db, dailyHeaders, rows, DailyImportOptions{}); err != nil {
			t.Fatalf("run %d: %v", i+1, err)
		}
	}

	var count int64
	if err := db.Model(&models.DailyStat{}).Where("date = ?", "2024-09-10").Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("got %d rows for the date, want 1", count)
	}
	stat, err := models.GetDailyStat(ctx, "2024-09-10")
	if err != nil {
		t.Fatalf("GetDailyStat: %v", err)
	}
	if !stat.Revenue.Equal(dec("100")) {
		t.Fatalf("revenue after re-import = %s, want unchanged 100", stat.Revenue)
	}
}

func TestImportDailyRowsRegisterFilter(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	opts := DailyImportOptions{Register: &RegisterPolicy{Cutover: "2024-09-10", Register: 1}}
	rows := []map[string]Cell{
		dailyRow("2024-09-05", 100, 5, 3, 1),
		dailyRow("2024-09-05", 999, 50, 30, 2),
	}
	if _, err := ImportDailyRows(ctx, db, dailyHeaders, rows, opts); err != nil {
		t.Fatalf("ImportDailyRows: %v", err)
	}
	stat, err := models.GetDailyStat(ctx, "2024-09-05")
	if err != nil {
		t.Fatalf("GetDailyStat: %v", err)
	}
	if !stat.Revenue.Equal(dec("100")) || stat.Guests != 5 {
		t.Fatalf("pre-cutover stat = %s/%d, want register 1 only", stat.Revenue, stat.Guests)
	}
}

func TestImportDailyRowsSkipsBadDates(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	rows := []map[string]Cell{
		dailyRow("2024-09-10", 100, 10, 5, 1),
		dailyRow("итого", 9999, 0, 0, 1),
		{"Операционный день": EmptyCell()},
	}
	result, err := ImportDailyRows(ctx, db, dailyHeaders, rows, DailyImportOptions{})
	if err != nil {
		t.Fatalf("ImportDailyRows: %v", err)
	}
	if result.RowsSkipped != 2 || result.DatesAffected != 1 {
		t.Fatalf("result = %+v, want 2 skipped and 1 date", result)
	}
}

func TestImportDailyRowsMissingDateColumn(t *testing.T) {
	db := newTestDB(t)

	_, err := ImportDailyRows(context.Background(), db, []string{"Foo", "Bar"}, nil, DailyImportOptions{})
	var missing *MissingColumnError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %v, want *MissingColumnError", err)
	}
	if missing.Field != FieldDate {
		t.Fatalf("missing field = %s, want %s", missing.Field, FieldDate)
	}
}

func TestImportDailyRowsReportsUnresolvedMetrics(t *testing.T) {
	db := newTestDB(t)

	headers := []string{"Дата", "Выручка"}
	rows := []map[string]Cell{{
		"Дата":    TextCell("2024-09-10"),
		"Выручка": NumberCell(100),
	}}
	result, err := ImportDailyRows(context.Background(), db, headers, rows, DailyImportOptions{})
	if err != nil {
		t.Fatalf("ImportDailyRows: %v", err)
	}
	want := []Field{FieldGuests, FieldChecks, FieldDishes}
	if len(result.UnresolvedFields) != len(want) {
		t.Fatalf("unresolved = %v, want %v", result.UnresolvedFields, want)
	}
	for i, field := range want {
		if result.UnresolvedFields[i] != field {
			t.Fatalf("unresolved = %v, want %v", result.UnresolvedFields, want)
		}
	}
	// Missing metric columns read as zero, not as an error.
	stat, err := models.GetDailyStat(context.Background(), "2024-09-10")
	if err != nil {
		t.Fatalf("GetDailyStat: %v", err)
	}
	if stat.Guests != 0 || stat.Checks != 0 {
		t.Fatalf("stat = %+v, want zero guests and checks", stat)
	}
}

var waiterHeaders = []string{"Дата", "Официант", "Выручка", "Гости", "Чеки", "Блюда"}

func waiterRow(date, waiter string, revenue float64, guests, checks, dishes float64) map[string]Cell {
	return map[string]Cell{
		"Дата":     TextCell(date),
		"Официант": TextCell(waiter),
		"Выручка":  NumberCell(revenue),
		"Гости":    NumberCell(guests),
		"Чеки":     NumberCell(checks),
		"Блюда":    NumberCell(dishes),
	}
}

func TestImportWaiterRows(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	rows := []map[string]Cell{
		waiterRow("2024-09-10", "Анна", 100, 4, 2, 9),
		waiterRow("2024-09-10", "Борис", 50, 2, 1, 3),
		waiterRow("2024-09-10", "", 10, 1, 1, 1),
	}
	result, err := ImportWaiterRows(ctx, db, waiterHeaders, rows, nil)
	if err != nil {
		t.Fatalf("ImportWaiterRows: %v", err)
	}
	if result.RowsImported != 2 || result.RowsSkipped != 1 || result.DatesAffected != 1 {
		t.Fatalf("result = %+v", result)
	}

	stats, err := models.GetWaiterStatsForDate(ctx, "2024-09-10")
	if err != nil {
		t.Fatalf("GetWaiterStatsForDate: %v", err)
	}
	if len(stats) != 2 || stats[0].Waiter != "Анна" || stats[1].Waiter != "Борис" {
		t.Fatalf("roster = %+v", stats)
	}

	names, err := models.ListWaiterNames(ctx)
	if err != nil {
		t.Fatalf("ListWaiterNames: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("directory = %v, want both names registered", names)
	}
}

func TestImportWaiterRowsReplacesDateRoster(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first := []map[string]Cell{
		waiterRow("2024-09-10", "Анна", 100, 4, 2, 9),
		waiterRow("2024-09-10", "Борис", 50, 2, 1, 3),
	}
	if _, err := ImportWaiterRows(ctx, db, waiterHeaders, first, nil); err != nil {
		t.Fatalf("first import: %v", err)
	}

	second := []map[string]Cell{
		waiterRow("2024-09-10", "Вера", 70, 3, 2, 5),
	}
	if _, err := ImportWaiterRows(ctx, db, waiterHeaders, second, nil); err != nil {
		t.Fatalf("second import: %v", err)
	}

	stats, err := models.GetWaiterStatsForDate(ctx, "2024-09-10")
	if err != nil {
		t.Fatalf("GetWaiterStatsForDate: %v", err)
	}
	if len(stats) != 1 || stats[0].Waiter != "Вера" {
		t.Fatalf("roster after re-import = %+v, want only the new import's rows", stats)
	}

	// The directory keeps every name ever seen; replacement never shrinks it.
	names, err := models.ListWaiterNames(ctx)
	if err != nil {
		t.Fatalf("ListWaiterNames: %v", err)
	}
	if len(names) != 3 {
		t.Fatalf("directory = %v, want 3 names", names)
	}
}

func TestImportWaiterRowsScopedToOwnDate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := ImportWaiterRows(ctx, db, waiterHeaders, []map[string]Cell{
		waiterRow("2024-09-10", "Анна", 100, 4, 2, 9),
	}, nil); err != nil {
		t.Fatalf("first import: %v", err)
	}
	if _, err := ImportWaiterRows(ctx, db, waiterHeaders, []map[string]Cell{
		waiterRow("2024-09-11", "Борис", 50, 2, 1, 3),
	}, nil); err != nil {
		t.Fatalf("second import: %v", err)
	}

	stats, err := models.GetWaiterStatsForDate(ctx, "2024-09-10")
	if err != nil {
		t.Fatalf("GetWaiterStatsForDate: %v", err)
	}
	if len(stats) != 1 || stats[0].Waiter != "Анна" {
		t.Fatalf("unrelated date was touched: %+v", stats)
	}
}

func TestImportWaiterRowsMissingWaiterColumn(t *testing.T) {
	db := newTestDB(t)

	_, err := ImportWaiterRows(context.Background(), db, []string{"Дата", "Выручка"}, nil, nil)
	var missing *MissingColumnError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %v, want *MissingColumnError", err)
	}
	if missing.Field != FieldWaiter {
		t.Fatalf("missing field = %s, want %s", missing.Field, FieldWaiter)
	}
}

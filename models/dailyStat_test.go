package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"bitbucket.org/mmdatafocus/resto_backend/config"
	"bitbucket.org/mmdatafocus/resto_backend/utils"
	"github.com/shopspring/decimal"
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
	MigrateTableOn(db)
	config.SetDB(db)
	return db
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestUpsertDailyStatOverwrites(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first := &NewDailyStat{Date: "2024-09-10", Revenue: dec("100"), Guests: 10, Checks: 5}
	if err := UpsertDailyStat(ctx, db, first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	second := &NewDailyStat{Date: "2024-09-10", Revenue: dec("250"), Guests: 12, Checks: 6}
	if err := UpsertDailyStat(ctx, db, second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	var count int64
	if err := db.Model(&DailyStat{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("got %d rows, want 1", count)
	}

	stat, err := GetDailyStat(ctx, "2024-09-10")
	if err != nil {
		t.Fatalf("GetDailyStat: %v", err)
	}
	// Last write wins wholesale, never additive.
	if !stat.Revenue.Equal(dec("250")) || stat.Guests != 12 || stat.Checks != 6 {
		t.Fatalf("stat after overwrite = %s/%d/%d", stat.Revenue, stat.Guests, stat.Checks)
	}
}

func TestGetDailyStatNotFound(t *testing.T) {
	newTestDB(t)
	_, err := GetDailyStat(context.Background(), "2024-01-01")
	if !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("error = %v, want ErrorRecordNotFound", err)
	}
}

func TestGetDailyStatsForMonthPrefix(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	for _, date := range []string{"2024-09-15", "2024-09-02", "2024-10-01", "2023-09-20"} {
		if err := UpsertDailyStat(ctx, db, &NewDailyStat{Date: date, Revenue: dec("1"), Checks: 1}); err != nil {
			t.Fatalf("seed %s: %v", date, err)
		}
	}

	stats, err := GetDailyStatsForMonth(ctx, "2024-09")
	if err != nil {
		t.Fatalf("GetDailyStatsForMonth: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("got %d rows, want 2", len(stats))
	}
	if stats[0].Date != "2024-09-02" || stats[1].Date != "2024-09-15" {
		t.Fatalf("order = %s, %s", stats[0].Date, stats[1].Date)
	}
}

func TestDeleteStatsForDate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := UpsertDailyStat(ctx, db, &NewDailyStat{Date: "2024-09-10", Revenue: dec("100"), Checks: 1}); err != nil {
		t.Fatalf("seed daily: %v", err)
	}
	if err := db.Create(&WaiterStat{Date: "2024-09-10", Waiter: "Анна", Revenue: dec("100"), Checks: 1}).Error; err != nil {
		t.Fatalf("seed waiter: %v", err)
	}
	if err := db.Create(&WaiterStat{Date: "2024-09-11", Waiter: "Анна", Revenue: dec("50"), Checks: 1}).Error; err != nil {
		t.Fatalf("seed other date: %v", err)
	}

	if err := DeleteStatsForDate(ctx, "2024-09-10"); err != nil {
		t.Fatalf("DeleteStatsForDate: %v", err)
	}

	if _, err := GetDailyStat(ctx, "2024-09-10"); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("daily row survived: %v", err)
	}
	roster, err := GetWaiterStatsForDate(ctx, "2024-09-10")
	if err != nil {
		t.Fatalf("GetWaiterStatsForDate: %v", err)
	}
	if len(roster) != 0 {
		t.Fatalf("waiter rows survived: %+v", roster)
	}
	other, err := GetWaiterStatsForDate(ctx, "2024-09-11")
	if err != nil {
		t.Fatalf("GetWaiterStatsForDate: %v", err)
	}
	if len(other) != 1 {
		t.Fatalf("unrelated date was touched: %+v", other)
	}
}

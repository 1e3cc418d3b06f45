package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/resto_backend/config"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WaiterStat is one waiter's shift result for one date.
// Key is (date, waiter); several waiters share a date.
type WaiterStat struct {
	ID      int             `gorm:"primary_key" json:"id"`
	Date    string          `gorm:"size:10;not null;uniqueIndex:idx_ws_date_waiter,priority:1" json:"date"`
	Waiter  string          `gorm:"size:100;not null;uniqueIndex:idx_ws_date_waiter,priority:2" json:"waiter"`
	Revenue decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"revenue"`
	Guests  int             `gorm:"default:0" json:"guests"`
	Checks  int             `gorm:"default:0" json:"checks"`
	Dishes  int             `gorm:"default:0" json:"dishes"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewWaiterStat struct {
	Date    string          `json:"date" binding:"required"`
	Waiter  string          `json:"waiter" binding:"required"`
	Revenue decimal.Decimal `json:"revenue"`
	Guests  int             `json:"guests"`
	Checks  int             `json:"checks"`
	Dishes  int             `json:"dishes"`
}

// AddWaiterStat records one manually entered shift row. It is a one-row
// import: any previous row for the same (date, waiter) pair is replaced, and
// the waiter name lands in the directory.
func AddWaiterStat(ctx context.Context, input *NewWaiterStat) error {
	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("date = ? AND waiter = ?", input.Date, input.Waiter).
			Delete(&WaiterStat{}).Error; err != nil {
			return err
		}
		stat := WaiterStat{
			Date:    input.Date,
			Waiter:  input.Waiter,
			Revenue: input.Revenue,
			Guests:  input.Guests,
			Checks:  input.Checks,
			Dishes:  input.Dishes,
		}
		return tx.Create(&stat).Error
	})
	if err != nil {
		return err
	}
	return RegisterWaiterName(ctx, db, input.Waiter)
}

// ReplaceWaiterStatsForDate makes stats the authoritative shift roster for
// date: every existing row of that date is dropped first, whoever it belonged
// to, so a re-import cannot merge with a stale roster. Runs in one
// transaction; a failed insert rolls the delete back.
func ReplaceWaiterStatsForDate(ctx context.Context, db *gorm.DB, date string, stats []*WaiterStat) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("date = ?", date).Delete(&WaiterStat{}).Error; err != nil {
			return err
		}
		for _, stat := range stats {
			if err := tx.Create(stat).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetWaiterStatsForDate returns the shift roster of one date.
func GetWaiterStatsForDate(ctx context.Context, date string) ([]*WaiterStat, error) {
	db := config.GetDB()
	var stats []*WaiterStat
	err := db.WithContext(ctx).
		Where("date = ?", date).
		Order("waiter").
		Find(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

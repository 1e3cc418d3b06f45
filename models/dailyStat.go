package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/resto_backend/config"
	"bitbucket.org/mmdatafocus/resto_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DailyStat is the per-date revenue aggregate: one row per calendar date.
//
// Dates are stored as canonical YYYY-MM-DD strings so month queries stay a
// simple prefix match, same as the data the mobile report screens consume.
type DailyStat struct {
	ID      int             `gorm:"primary_key" json:"id"`
	Date    string          `gorm:"size:10;uniqueIndex;not null" json:"date"`
	Revenue decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"revenue"`
	Guests  int             `gorm:"default:0" json:"guests"`
	Checks  int             `gorm:"default:0" json:"checks"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewDailyStat struct {
	Date    string          `json:"date" binding:"required"`
	Revenue decimal.Decimal `json:"revenue"`
	Guests  int             `json:"guests"`
	Checks  int             `json:"checks"`
}

// UpsertDailyStat inserts the record for input.Date or overwrites all metric
// fields of the existing one. Re-running the same write is a no-op on state
// (last write wins, never additive).
func UpsertDailyStat(ctx context.Context, db *gorm.DB, input *NewDailyStat) error {
	stat := DailyStat{
		Date:    input.Date,
		Revenue: input.Revenue,
		Guests:  input.Guests,
		Checks:  input.Checks,
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"revenue", "guests", "checks", "updated_at"}),
	}).Create(&stat).Error
}

func GetDailyStat(ctx context.Context, date string) (*DailyStat, error) {
	db := config.GetDB()
	var stat DailyStat
	err := db.WithContext(ctx).Where("date = ?", date).Take(&stat).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &stat, nil
}

// GetDailyStatsForMonth returns all daily rows of one calendar month ordered
// by date. monthPrefix must be "YYYY-MM".
func GetDailyStatsForMonth(ctx context.Context, monthPrefix string) ([]*DailyStat, error) {
	db := config.GetDB()
	var stats []*DailyStat
	err := db.WithContext(ctx).
		Where("date LIKE ?", monthPrefix+"%").
		Order("date").
		Find(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// DeleteStatsForDate removes the daily row and every waiter row of one date.
func DeleteStatsForDate(ctx context.Context, date string) error {
	db := config.GetDB()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("date = ?", date).Delete(&DailyStat{}).Error; err != nil {
			return err
		}
		return tx.Where("date = ?", date).Delete(&WaiterStat{}).Error
	})
}

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

// MonthlyPlan is the revenue target for one (year, month).
type MonthlyPlan struct {
	ID        int             `gorm:"primary_key" json:"id"`
	Year      int             `gorm:"not null;uniqueIndex:idx_plan_year_month,priority:1" json:"year"`
	Month     int             `gorm:"not null;uniqueIndex:idx_plan_year_month,priority:2" json:"month"`
	PlanValue decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"plan_value"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewMonthlyPlan struct {
	Year  int             `json:"year" binding:"required"`
	Month int             `json:"month" binding:"required,min=1,max=12"`
	Plan  decimal.Decimal `json:"plan"`
}

// SaveMonthlyPlan upserts the plan for (year, month).
func SaveMonthlyPlan(ctx context.Context, input *NewMonthlyPlan) error {
	db := config.GetDB()
	plan := MonthlyPlan{
		Year:      input.Year,
		Month:     input.Month,
		PlanValue: input.Plan,
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "year"}, {Name: "month"}},
		DoUpdates: clause.AssignmentColumns([]string{"plan_value", "updated_at"}),
	}).Create(&plan).Error
}

func GetMonthlyPlan(ctx context.Context, year int, month int) (*MonthlyPlan, error) {
	db := config.GetDB()
	var plan MonthlyPlan
	err := db.WithContext(ctx).Where("year = ? AND month = ?", year, month).Take(&plan).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &plan, nil
}

func DeleteMonthlyPlan(ctx context.Context, year int, month int) error {
	db := config.GetDB()
	return db.WithContext(ctx).
		Where("year = ? AND month = ?", year, month).
		Delete(&MonthlyPlan{}).Error
}

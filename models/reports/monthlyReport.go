package reports

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/resto_backend/models"
	"bitbucket.org/mmdatafocus/resto_backend/utils"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// MonthSummary is the headline block of the report screen: month totals plus
// the derived average check.
type MonthSummary struct {
	Year         int             `json:"year"`
	Month        int             `json:"month"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalGuests  int             `json:"total_guests"`
	TotalChecks  int             `json:"total_checks"`
	AverageCheck decimal.Decimal `json:"average_check"`
}

func monthPrefix(year int, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// GetMonthSummary sums the month's daily rows. A month without checks has an
// average check of zero, not an error.
func GetMonthSummary(ctx context.Context, year int, month int) (*MonthSummary, error) {
	started := time.Now()
	cacheKey := fmt.Sprintf("report:month-summary:%04d-%02d", year, month)
	if reportCacheEnabled() {
		var cached MonthSummary
		if ok, err := cacheGet(cacheKey, &cached); err == nil && ok {
			return &cached, nil
		}
	}

	stats, err := models.GetDailyStatsForMonth(ctx, monthPrefix(year, month))
	if err != nil {
		return nil, err
	}

	summary := &MonthSummary{Year: year, Month: month, TotalRevenue: decimal.Zero, AverageCheck: decimal.Zero}
	for _, stat := range stats {
		summary.TotalRevenue = summary.TotalRevenue.Add(stat.Revenue)
		summary.TotalGuests += stat.Guests
		summary.TotalChecks += stat.Checks
	}
	if summary.TotalChecks > 0 {
		summary.AverageCheck = summary.TotalRevenue.DivRound(decimal.NewFromInt(int64(summary.TotalChecks)), 2)
	}

	if reportCacheEnabled() {
		_ = cacheSet(cacheKey, summary, reportCacheTTL())
	}
	logSlowReport(ctx, "month_summary", started, map[string]any{"year": year, "month": month})
	return summary, nil
}

// WeekRevenue is one calendar-week bucket of the month (days 1-7, 8-14,
// 15-21, 22-28, 29-31) with its share of the monthly plan.
type WeekRevenue struct {
	Week        int             `json:"week"`
	Revenue     decimal.Decimal `json:"revenue"`
	PlanPercent decimal.Decimal `json:"plan_percent"`
}

// GetWeeklyRevenue buckets the month's revenue by calendar-day ranges and
// relates each bucket to the monthly plan. No plan (or a zero plan) yields
// zero percentages.
func GetWeeklyRevenue(ctx context.Context, year int, month int) ([]*WeekRevenue, error) {
	stats, err := models.GetDailyStatsForMonth(ctx, monthPrefix(year, month))
	if err != nil {
		return nil, err
	}

	planValue := decimal.Zero
	plan, err := models.GetMonthlyPlan(ctx, year, month)
	if err != nil && err != utils.ErrorRecordNotFound {
		return nil, err
	}
	if plan != nil {
		planValue = plan.PlanValue
	}

	weeks := make([]*WeekRevenue, 5)
	for i := range weeks {
		weeks[i] = &WeekRevenue{Week: i + 1, Revenue: decimal.Zero, PlanPercent: decimal.Zero}
	}
	for _, stat := range stats {
		day := dayOfDate(stat.Date)
		var idx int
		switch {
		case day <= 7:
			idx = 0
		case day <= 14:
			idx = 1
		case day <= 21:
			idx = 2
		case day <= 28:
			idx = 3
		default:
			idx = 4
		}
		weeks[idx].Revenue = weeks[idx].Revenue.Add(stat.Revenue)
	}
	if planValue.IsPositive() {
		for _, week := range weeks {
			week.PlanPercent = week.Revenue.Mul(hundred).DivRound(planValue, 1)
		}
	}
	return weeks, nil
}

func dayOfDate(date string) int {
	parts := strings.Split(date, "-")
	if len(parts) != 3 {
		return 0
	}
	day, _ := strconv.Atoi(parts[2])
	return day
}

// YearOverYear compares one month against the same month a year earlier.
// A zero previous-year denominator reports a zero percentage, not an error.
type YearOverYear struct {
	ThisYear       *MonthSummary   `json:"this_year"`
	LastYear       *MonthSummary   `json:"last_year"`
	RevenueDelta   decimal.Decimal `json:"revenue_delta"`
	RevenuePercent decimal.Decimal `json:"revenue_percent"`
	GuestsDelta    int             `json:"guests_delta"`
	ChecksDelta    int             `json:"checks_delta"`
}

func GetYearOverYear(ctx context.Context, year int, month int) (*YearOverYear, error) {
	current, err := GetMonthSummary(ctx, year, month)
	if err != nil {
		return nil, err
	}
	previous, err := GetMonthSummary(ctx, year-1, month)
	if err != nil {
		return nil, err
	}

	cmp := &YearOverYear{
		ThisYear:       current,
		LastYear:       previous,
		RevenueDelta:   current.TotalRevenue.Sub(previous.TotalRevenue),
		RevenuePercent: decimal.Zero,
		GuestsDelta:    current.TotalGuests - previous.TotalGuests,
		ChecksDelta:    current.TotalChecks - previous.TotalChecks,
	}
	if previous.TotalRevenue.IsPositive() {
		cmp.RevenuePercent = cmp.RevenueDelta.Mul(hundred).DivRound(previous.TotalRevenue, 1)
	}
	return cmp, nil
}

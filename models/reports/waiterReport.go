package reports

import (
	"context"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/resto_backend/config"
	"github.com/shopspring/decimal"
)

// WaiterMetrics is one waiter's summed shift results over a period plus the
// two derived ratios the floor manager actually looks at: average check and
// fill (dishes per check).
type WaiterMetrics struct {
	Waiter       string          `json:"waiter"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalGuests  int             `json:"total_guests"`
	TotalChecks  int             `json:"total_checks"`
	TotalDishes  int             `json:"total_dishes"`
	AverageCheck decimal.Decimal `json:"average_check"`
	Fill         decimal.Decimal `json:"fill"`
}

// GetWaiterMetrics aggregates shift rows per waiter over the requested
// period: "month" is the given calendar month, "week" the current Monday to
// Sunday week. Zero checks yield zero ratios.
func GetWaiterMetrics(ctx context.Context, period string, year int, month int) ([]*WaiterMetrics, error) {
	started := time.Now()

	start, end, err := periodRange(period, year, month, time.Now())
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	var results []*WaiterMetrics
	query := db.WithContext(ctx).Raw(`
		SELECT waiter,
		       SUM(revenue) AS total_revenue,
		       SUM(guests)  AS total_guests,
		       SUM(checks)  AS total_checks,
		       SUM(dishes)  AS total_dishes
		FROM waiter_stats
		WHERE date >= ? AND date <= ?
		GROUP BY waiter
		ORDER BY waiter
	`, start, end)
	if err := query.Scan(&results).Error; err != nil {
		return nil, err
	}

	for _, r := range results {
		r.AverageCheck = decimal.Zero
		r.Fill = decimal.Zero
		if r.TotalChecks > 0 {
			checks := decimal.NewFromInt(int64(r.TotalChecks))
			r.AverageCheck = r.TotalRevenue.DivRound(checks, 2)
			r.Fill = decimal.NewFromInt(int64(r.TotalDishes)).DivRound(checks, 2)
		}
	}

	logSlowReport(ctx, "waiter_metrics", started, map[string]any{"period": period, "from": start, "to": end})
	return results, nil
}

// periodRange resolves a report period to inclusive date-string bounds.
func periodRange(period string, year int, month int, now time.Time) (string, string, error) {
	switch period {
	case "month":
		first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		last := first.AddDate(0, 1, -1)
		return first.Format("2006-01-02"), last.Format("2006-01-02"), nil
	case "week":
		// Monday-based week containing now.
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		monday := now.AddDate(0, 0, 1-weekday)
		sunday := monday.AddDate(0, 0, 6)
		return monday.Format("2006-01-02"), sunday.Format("2006-01-02"), nil
	default:
		return "", "", fmt.Errorf("invalid period %q", period)
	}
}

package ingest

import (
	"context"
	"sort"

	"bitbucket.org/mmdatafocus/resto_backend/models"
	"gorm.io/gorm"
)

// ReconcileDaily merges aggregated daily totals into the store, one keyed
// upsert per date. A failed write is recorded and reconciliation continues:
// the upserts are idempotent, so the operator can simply re-run the import
// after fixing whatever broke.
func ReconcileDaily(ctx context.Context, db *gorm.DB, grouped map[string]*DailyTotals, result *ImportResult) {
	dates := make([]string, 0, len(grouped))
	for date := range grouped {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	for _, date := range dates {
		totals := grouped[date]
		err := models.UpsertDailyStat(ctx, db, &models.NewDailyStat{
			Date:    date,
			Revenue: totals.Revenue,
			Guests:  totals.Guests,
			Checks:  totals.Checks,
		})
		if err != nil {
			result.fail(date, err)
			continue
		}
		result.RowsImported++
		result.DatesAffected++
	}
}

// ReconcileWaiters merges aggregated waiter totals into the store. Each date
// is replaced wholesale in its own transaction: the import is the
// authoritative roster for that date, so stale rows from a previous roster
// cannot survive. A failed date is recorded and the remaining dates proceed.
//
// Every waiter name encountered is registered in the directory, including
// names from dates whose write failed; the directory is append-only and
// registration is insert-if-absent.
func ReconcileWaiters(ctx context.Context, db *gorm.DB, grouped map[WaiterKey]*WaiterTotals, result *ImportResult) {
	byDate := make(map[string][]*models.WaiterStat)
	nameSet := make(map[string]struct{})
	for key, totals := range grouped {
		byDate[key.Date] = append(byDate[key.Date], &models.WaiterStat{
			Date:    key.Date,
			Waiter:  key.Waiter,
			Revenue: totals.Revenue,
			Guests:  totals.Guests,
			Checks:  totals.Checks,
			Dishes:  totals.Dishes,
		})
		nameSet[key.Waiter] = struct{}{}
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	for _, date := range dates {
		stats := byDate[date]
		sort.Slice(stats, func(i, j int) bool { return stats[i].Waiter < stats[j].Waiter })
		if err := models.ReplaceWaiterStatsForDate(ctx, db, date, stats); err != nil {
			result.fail(date, err)
			continue
		}
		result.RowsImported += len(stats)
		result.DatesAffected++
	}

	names := make([]string, 0, len(nameSet))
	for name := range nameSet {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := models.RegisterWaiterName(ctx, db, name); err != nil {
			result.fail("waiter:"+name, err)
		}
	}
}

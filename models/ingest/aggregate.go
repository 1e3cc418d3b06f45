package ingest

import (
	"github.com/shopspring/decimal"
)

// RawRow holds the resolved logical fields of one spreadsheet row before
// aggregation. Metric cells that were missing or unreadable are already
// coerced to zero by this point.
type RawRow struct {
	Date     string
	Waiter   string
	Register int
	Revenue  decimal.Decimal
	Guests   int
	Checks   int
	Dishes   int
}

// RegisterPolicy models the till consolidation in the business's history:
// rows dated strictly before Cutover are summed only when they belong to the
// qualifying register; rows on or after it are summed unconditionally.
// A nil policy sums everything (deployments without a register split).
type RegisterPolicy struct {
	Cutover  string // YYYY-MM-DD
	Register int
}

// Includes reports whether the row participates in the daily sum.
func (p *RegisterPolicy) Includes(row *RawRow) bool {
	if p == nil || p.Cutover == "" {
		return true
	}
	// Canonical date strings order lexicographically.
	if row.Date >= p.Cutover {
		return true
	}
	return row.Register == p.Register
}

// DailyTotals is one date's summed metrics.
type DailyTotals struct {
	Revenue decimal.Decimal
	Guests  int
	Checks  int
}

// WaiterKey identifies one waiter's rows within one date.
type WaiterKey struct {
	Date   string
	Waiter string
}

// WaiterTotals is one (date, waiter) pair's summed metrics.
type WaiterTotals struct {
	Revenue decimal.Decimal
	Guests  int
	Checks  int
	Dishes  int
}

// AggregateDaily collapses raw rows into one summed record per date. Source
// sheets carry one row per till, so several rows per date are normal. Keys
// whose summed metrics are all zero are dropped: they would only write
// meaningless all-zero records.
func AggregateDaily(rows []*RawRow, policy *RegisterPolicy) map[string]*DailyTotals {
	grouped := make(map[string]*DailyTotals)
	for _, row := range rows {
		if !policy.Includes(row) {
			continue
		}
		totals, ok := grouped[row.Date]
		if !ok {
			totals = &DailyTotals{Revenue: decimal.Zero}
			grouped[row.Date] = totals
		}
		totals.Revenue = totals.Revenue.Add(row.Revenue)
		totals.Guests += row.Guests
		totals.Checks += row.Checks
	}
	for date, totals := range grouped {
		if totals.Revenue.IsZero() && totals.Guests == 0 && totals.Checks == 0 {
			delete(grouped, date)
		}
	}
	return grouped
}

// AggregateWaiters collapses raw rows into one summed record per
// (date, waiter) pair. All-zero keys are dropped.
func AggregateWaiters(rows []*RawRow) map[WaiterKey]*WaiterTotals {
	grouped := make(map[WaiterKey]*WaiterTotals)
	for _, row := range rows {
		key := WaiterKey{Date: row.Date, Waiter: row.Waiter}
		totals, ok := grouped[key]
		if !ok {
			totals = &WaiterTotals{Revenue: decimal.Zero}
			grouped[key] = totals
		}
		totals.Revenue = totals.Revenue.Add(row.Revenue)
		totals.Guests += row.Guests
		totals.Checks += row.Checks
		totals.Dishes += row.Dishes
	}
	for key, totals := range grouped {
		if totals.Revenue.IsZero() && totals.Guests == 0 && totals.Checks == 0 && totals.Dishes == 0 {
			delete(grouped, key)
		}
	}
	return grouped
}

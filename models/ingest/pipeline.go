package ingest

import (
	"context"
	"io"

	"gorm.io/gorm"
)

// DailyImportOptions configures a daily-aggregate import. Zero value works:
// default header candidates, no register filtering.
type DailyImportOptions struct {
	Columns  ColumnConfig
	Register *RegisterPolicy
}

// ImportDailyWorkbook runs the whole daily pipeline on an xlsx stream:
// decode, resolve headers, normalize dates, aggregate per date, reconcile.
// Only an undecodable file or an unresolvable date column abort; everything
// else is reported in the result.
func ImportDailyWorkbook(ctx context.Context, db *gorm.DB, r io.Reader, opts DailyImportOptions) (*ImportResult, error) {
	headers, rows, err := DecodeWorkbook(r)
	if err != nil {
		return nil, err
	}
	return ImportDailyRows(ctx, db, headers, rows, opts)
}

// ImportDailyRows is the decode-independent part of the daily pipeline; the
// manual-entry path and tests feed it rows directly.
func ImportDailyRows(ctx context.Context, db *gorm.DB, headers []string, rows []map[string]Cell, opts DailyImportOptions) (*ImportResult, error) {
	colmap, unresolved, err := ResolveColumns(headers, opts.Columns, FieldDate)
	if err != nil {
		return nil, err
	}
	result := &ImportResult{UnresolvedFields: unresolved}

	raws := make([]*RawRow, 0, len(rows))
	for _, row := range rows {
		date, ok := NormalizeDate(cellFor(row, colmap, FieldDate))
		if !ok {
			result.RowsSkipped++
			continue
		}
		raws = append(raws, &RawRow{
			Date:     date,
			Register: registerOf(cellFor(row, colmap, FieldRegister)),
			Revenue:  cellFor(row, colmap, FieldRevenue).Decimal(),
			Guests:   cellFor(row, colmap, FieldGuests).Int(),
			Checks:   cellFor(row, colmap, FieldChecks).Int(),
		})
	}

	ReconcileDaily(ctx, db, AggregateDaily(raws, opts.Register), result)
	return result, nil
}

// ImportWaiterWorkbook runs the per-waiter pipeline on an xlsx stream.
func ImportWaiterWorkbook(ctx context.Context, db *gorm.DB, r io.Reader, columns ColumnConfig) (*ImportResult, error) {
	headers, rows, err := DecodeWorkbook(r)
	if err != nil {
		return nil, err
	}
	return ImportWaiterRows(ctx, db, headers, rows, columns)
}

// ImportWaiterRows resolves, normalizes and aggregates per (date, waiter),
// then replaces each affected date's roster.
func ImportWaiterRows(ctx context.Context, db *gorm.DB, headers []string, rows []map[string]Cell, columns ColumnConfig) (*ImportResult, error) {
	colmap, unresolved, err := ResolveColumns(headers, columns, FieldDate, FieldWaiter)
	if err != nil {
		return nil, err
	}
	result := &ImportResult{UnresolvedFields: unresolved}

	raws := make([]*RawRow, 0, len(rows))
	for _, row := range rows {
		date, ok := NormalizeDate(cellFor(row, colmap, FieldDate))
		if !ok {
			result.RowsSkipped++
			continue
		}
		waiter := cellFor(row, colmap, FieldWaiter).String()
		if waiter == "" {
			result.RowsSkipped++
			continue
		}
		raws = append(raws, &RawRow{
			Date:    date,
			Waiter:  waiter,
			Revenue: cellFor(row, colmap, FieldRevenue).Decimal(),
			Guests:  cellFor(row, colmap, FieldGuests).Int(),
			Checks:  cellFor(row, colmap, FieldChecks).Int(),
			Dishes:  cellFor(row, colmap, FieldDishes).Int(),
		})
	}

	ReconcileWaiters(ctx, db, AggregateWaiters(raws), result)
	return result, nil
}

func cellFor(row map[string]Cell, colmap map[Field]string, field Field) Cell {
	header, ok := colmap[field]
	if !ok {
		return EmptyCell()
	}
	cell, ok := row[header]
	if !ok {
		return EmptyCell()
	}
	return cell
}

// registerOf reads the till number, defaulting to register 1 for rows that
// predate the export format carrying one.
func registerOf(c Cell) int {
	if reg := c.Int(); reg != 0 {
		return reg
	}
	return 1
}

package ingest

import (
	"errors"
	"fmt"
	"strings"
)

// Field names one logical column of the import schema.
type Field string

const (
	FieldDate     Field = "date"
	FieldWaiter   Field = "waiter"
	FieldRevenue  Field = "revenue"
	FieldGuests   Field = "guests"
	FieldChecks   Field = "checks"
	FieldDishes   Field = "dishes"
	FieldRegister Field = "register"
)

// ErrUnparseableFile marks input that could not be decoded as tabular data at
// all. Fatal: nothing is written.
var ErrUnparseableFile = errors.New("unable to decode spreadsheet")

// MissingColumnError is returned when a required logical field cannot be
// matched against any sheet header. Fatal: nothing is written. Carries the
// full observed header list so the operator can see what the sheet looked
// like.
type MissingColumnError struct {
	Field   Field
	Headers []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("no column found for required field %q (headers: %s)",
		string(e.Field), strings.Join(e.Headers, ", "))
}

// KeyFailure is one store write that failed during reconciliation.
// Reconciliation keeps going; repeated re-import is safe because writes are
// keyed upserts.
type KeyFailure struct {
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

// ImportResult is the summary handed back to the caller. Per-row and per-key
// problems are data here, not errors.
type ImportResult struct {
	DatesAffected    int          `json:"dates_affected"`
	RowsImported     int          `json:"rows_imported"`
	RowsSkipped      int          `json:"rows_skipped"`
	UnresolvedFields []Field      `json:"unresolved_fields"`
	Failures         []KeyFailure `json:"failures"`
}

func (r *ImportResult) fail(key string, err error) {
	r.Failures = append(r.Failures, KeyFailure{Key: key, Reason: err.Error()})
}

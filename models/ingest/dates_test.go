package ingest

import (
	"testing"
	"time"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name string
		cell Cell
		want string
		ok   bool
	}{
		{"native date", DateCell(time.Date(2024, 9, 10, 0, 0, 0, 0, time.UTC)), "2024-09-10", true},
		{"serial day count", NumberCell(45292), "2024-01-01", true},
		{"dotted with weekday", TextCell("10.09.2024, вторник"), "2024-09-10", true},
		{"dotted plain", TextCell("01.01.2024"), "2024-01-01", true},
		{"dotted single digits", TextCell("1.9.2024"), "2024-09-01", true},
		{"iso passthrough", TextCell("2024-05-03"), "2024-05-03", true},
		{"iso with weekday", TextCell("2024-05-03, friday"), "2024-05-03", true},
		{"calendar-invalid preserved", TextCell("31.02.2024"), "2024-02-31", true},
		{"free text", TextCell("итого"), "", false},
		{"empty cell", EmptyCell(), "", false},
		{"blank text", TextCell("   "), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeDate(tt.cell)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("NormalizeDate(%v) = (%q, %v), want (%q, %v)", tt.cell, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestNormalizeDateSerialOutOfRange(t *testing.T) {
	if got, ok := NormalizeDate(NumberCell(-5)); ok {
		t.Fatalf("negative serial normalized to %q, want rejection", got)
	}
}

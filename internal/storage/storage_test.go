package storage

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func amount(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func sampleLedger() core.Transactions {
	return core.Transactions{
		{ID: core.NewID(1), Title: "Coffee", Amount: amount("-4.50"), Date: core.NewDate(2024, 3, 5), Category: "expense"},
		{ID: core.NewID(2), Title: "Salary, March", Amount: amount("2500"), Date: core.NewDate(2024, 3, 1), Category: "income"},
		{ID: core.ParseID("legacy-7"), Title: "Imported \"quote\"", Amount: amount("-12.345"), Date: core.NewDate(2023, 12, 31), Category: "expense"},
		{ID: core.NewID(3), Title: "No amount yet", Date: core.NewDate(2024, 4, 1), Category: "expense"},
	}
}

func assertSameLedger(t *testing.T, want, got core.Transactions) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(got))
	}
	for i := range want {
		if !want[i].Equal(got[i]) {
			t.Fatalf("record %d differs: want %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestRowCoercion(t *testing.T) {
	cases := []struct {
		name string
		raw  row
		ok   bool
	}{
		{"complete", row{{"1", true}, {"a", true}, {"1.5", true}, {"2024-01-02", true}, {"x", true}}, true},
		{"missing columns", row{{"1", true}, {}, {}, {}, {}}, true},
		{"blank amount", row{{"1", true}, {"a", true}, {"  ", true}, {"2024-01-02", true}, {"x", true}}, true},
		{"bad amount", row{{"1", true}, {"a", true}, {"ten", true}, {"2024-01-02", true}, {"x", true}}, false},
		{"bad date", row{{"1", true}, {"a", true}, {"1", true}, {"soon", true}, {"x", true}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.raw.transaction()
			if tc.ok && err != nil {
				t.Fatalf("expected ok, got %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadReportDegraded(t *testing.T) {
	if (LoadReport{}).Degraded() {
		t.Fatalf("zero report should not be degraded")
	}
	if !(LoadReport{Err: context.Canceled}).Degraded() {
		t.Fatalf("report with error should be degraded")
	}
}

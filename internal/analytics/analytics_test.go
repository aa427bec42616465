package analytics

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func tx(id, amount, date, category string) core.Transaction {
	t := core.Transaction{ID: core.ParseID(id), Title: "t" + id, Category: category}
	if amount != "" {
		t.Amount = decimal.NewNullDecimal(dec(amount))
	}
	if date != "" {
		d, err := core.ParseDate(date)
		if err != nil {
			panic(err)
		}
		t.Date = d
	}
	return t
}

func sample() core.Transactions {
	return core.Transactions{
		tx("1", "-4.50", "2024-03-05", "expense"),
		tx("2", "2500", "2024-03-01", "income"),
		tx("3", "-120.25", "2024-02-14", "expense"),
		tx("4", "-30", "2023-03-20", "groceries"),
		tx("5", "", "2024-04-01", "expense"),
		tx("6", "15", "", "income"),
	}
}

func assertDec(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Fatalf("%s: expected %s, got %s", name, want, got)
	}
}

func TestEmptyLedgerResults(t *testing.T) {
	empty := core.Transactions{}
	if got := MonthlySummary(empty); got == nil || len(got) != 0 {
		t.Fatalf("MonthlySummary: expected empty slice, got %v", got)
	}
	if got := FilterByMonth(empty, 3); got == nil || len(got) != 0 {
		t.Fatalf("FilterByMonth: expected empty, got %v", got)
	}
	if got := TotalsByCategory(empty); got == nil || len(got) != 0 {
		t.Fatalf("TotalsByCategory: expected empty map, got %v", got)
	}
	assertDec(t, "Mean", Mean(empty), "0")
	assertDec(t, "Median", Median(empty), "0")
	assertDec(t, "StdDev", StdDev(empty), "0")
	if got, err := FilterByDateRange(empty, "2024-01-01", "2024-12-31"); err != nil || len(got) != 0 {
		t.Fatalf("FilterByDateRange: expected empty, got %v err=%v", got, err)
	}
	if got := CumulativeSpending(empty); got == nil || len(got) != 0 {
		t.Fatalf("CumulativeSpending: expected empty, got %v", got)
	}
	if got := CheckBudget(empty, map[string]decimal.Decimal{"expense": dec("-100")}); got == nil || len(got) != 0 {
		t.Fatalf("CheckBudget: expected empty, got %v", got)
	}
	if got := CategoryPercentages(empty); got == nil || len(got) != 0 {
		t.Fatalf("CategoryPercentages: expected empty, got %v", got)
	}
}

func TestMonthlySummary(t *testing.T) {
	got := MonthlySummary(sample())
	want := []MonthTotal{
		{"2023-03", dec("-30")},
		{"2024-02", dec("-120.25")},
		{"2024-03", dec("2495.50")},
		{"2024-04", dec("0")},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d months, got %v", len(want), got)
	}
	for i := range want {
		if got[i].Month != want[i].Month || !got[i].Total.Equal(want[i].Total) {
			t.Fatalf("month %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestMonthlySummarySingleInsert(t *testing.T) {
	got := MonthlySummary(core.Transactions{tx("1", "-4.50", "2024-03-05", "expense")})
	if len(got) != 1 || got[0].Month != "2024-03" || !got[0].Total.Equal(dec("-4.5")) {
		t.Fatalf("unexpected summary %v", got)
	}
}

func TestFilterByMonth(t *testing.T) {
	got := FilterByMonth(sample(), 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 March records across years, got %d", len(got))
	}
	if got := FilterByMonth(sample(), 13); len(got) != 0 {
		t.Fatalf("expected nothing for month 13")
	}
}

func TestTotalsByCategoryPartition(t *testing.T) {
	txs := sample()
	totals := TotalsByCategory(txs)
	assertDec(t, "expense", totals["expense"], "-124.75")
	assertDec(t, "income", totals["income"], "2515")
	assertDec(t, "groceries", totals["groceries"], "-30")

	combined := decimal.Zero
	for _, v := range totals {
		combined = combined.Add(v)
	}
	assertDec(t, "partition", combined, Sum(txs).String())
}

func TestCategories(t *testing.T) {
	keys := Categories(map[string]int{"b": 1, "a": 2, "c": 3})
	if len(keys) != 3 || keys[0] != "a" || keys[2] != "c" {
		t.Fatalf("unexpected order %v", keys)
	}
}

func TestDescriptiveStatistics(t *testing.T) {
	txs := core.Transactions{
		tx("1", "2", "2024-01-01", "x"),
		tx("2", "4", "2024-01-02", "x"),
		tx("3", "4", "2024-01-03", "x"),
		tx("4", "4", "2024-01-04", "x"),
		tx("5", "5", "2024-01-05", "x"),
		tx("6", "5", "2024-01-06", "x"),
		tx("7", "7", "2024-01-07", "x"),
		tx("8", "9", "2024-01-08", "x"),
		tx("9", "", "2024-01-09", "x"),
	}
	assertDec(t, "Mean", Mean(txs), "5")
	assertDec(t, "Median", Median(txs), "4.5")

	// Sample variance is 32/7.
	sd := StdDev(txs).InexactFloat64()
	if sd < 2.13808 || sd > 2.13809 {
		t.Fatalf("StdDev: expected ~2.138090, got %v", sd)
	}

	assertDec(t, "Median odd", Median(txs[:3]), "4")
	assertDec(t, "StdDev single", StdDev(txs[:1]), "0")
}

func TestFilterByDateRange(t *testing.T) {
	got, err := FilterByDateRange(sample(), "2024-02-14", "2024-03-05")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected inclusive bounds to keep 3 records, got %d", len(got))
	}

	if _, err := FilterByDateRange(sample(), "garbage", "2024-03-05"); !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
	if got, _ := FilterByDateRange(sample(), "2025-01-01", "2024-01-01"); len(got) != 0 {
		t.Fatalf("inverted range should be empty")
	}
}

func TestCumulativeSpending(t *testing.T) {
	txs := core.Transactions{
		tx("1", "10", "2024-01-03", "x"),
		tx("2", "-5", "2024-01-01", "x"),
		tx("3", "7", "2024-01-03", "x"),
		tx("4", "1", "", "x"),
		tx("5", "2", "2024-01-02", "x"),
	}
	got := CumulativeSpending(txs)
	wantAmounts := []string{"-5", "2", "10", "7", "1"}
	wantRunning := []string{"-5", "-3", "7", "14", "15"}
	if len(got) != len(wantAmounts) {
		t.Fatalf("expected %d points, got %d", len(wantAmounts), len(got))
	}
	for i := range got {
		assertDec(t, "amount", got[i].Amount, wantAmounts[i])
		assertDec(t, "running", got[i].RunningTotal, wantRunning[i])
	}
	assertDec(t, "last running total", got[len(got)-1].RunningTotal, Sum(txs).String())
	if !got[len(got)-1].Date.IsEmpty() {
		t.Fatalf("undated record should sort last")
	}
}

func TestCheckBudget(t *testing.T) {
	txs := core.Transactions{
		tx("1", "-100", "2024-01-01", "expense"),
		tx("2", "-50", "2024-01-02", "expense"),
		tx("3", "-10", "2024-01-03", "Expense"),
		tx("4", "3000", "2024-01-04", "income"),
	}
	got := CheckBudget(txs, map[string]decimal.Decimal{
		"expense": dec("-100"),
		"income":  dec("5000"),
		"travel":  dec("-200"),
	})
	if len(got) != 3 {
		t.Fatalf("expected one result per limit, got %v", got)
	}

	exp := got["expense"]
	assertDec(t, "expense spent", exp.Spent, "-150")
	assertDec(t, "expense limit", exp.Limit, "-100")
	assertDec(t, "expense difference", exp.Difference, "-50")
	if exp.Status != StatusOverBudget {
		t.Fatalf("expected %q, got %q", StatusOverBudget, exp.Status)
	}

	inc := got["income"]
	assertDec(t, "income difference", inc.Difference, "-2000")
	if inc.Status != StatusWithinBudget {
		t.Fatalf("expected income within budget, got %q", inc.Status)
	}

	travel := got["travel"]
	assertDec(t, "travel spent", travel.Spent, "0")
	if travel.Status != StatusWithinBudget {
		t.Fatalf("unused category should be within budget, got %q", travel.Status)
	}
}

func TestCheckBudgetPositiveLimits(t *testing.T) {
	txs := core.Transactions{
		tx("1", "150", "2024-01-01", "fun"),
		tx("2", "80", "2024-01-02", "food"),
	}
	got := CheckBudget(txs, map[string]decimal.Decimal{"fun": dec("100"), "food": dec("80")})
	if got["fun"].Status != StatusOverBudget {
		t.Fatalf("expected %q, got %q", StatusOverBudget, got["fun"].Status)
	}
	assertDec(t, "fun difference", got["fun"].Difference, "50")
	if got["food"].Status != StatusWithinBudget {
		t.Fatalf("spending exactly the limit is within budget, got %q", got["food"].Status)
	}
}

func TestMovingAverage(t *testing.T) {
	txs := core.Transactions{
		tx("1", "30", "2024-01-03", "x"),
		tx("2", "10", "2024-01-01", "x"),
		tx("3", "40", "2024-01-04", "x"),
		tx("4", "20", "2024-01-02", "x"),
	}
	got, err := MovingAverage(txs, 3)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 points, got %d", len(got))
	}
	assertDec(t, "first", got[0].Average, "20")
	assertDec(t, "second", got[1].Average, "30")
	if got[0].Date.String() != "2024-01-03" || got[1].Date.String() != "2024-01-04" {
		t.Fatalf("points should carry the date of the window's last record: %v", got)
	}
}

func TestMovingAverageLength(t *testing.T) {
	txs := sample()
	present := len(presentAmounts(txs))
	for window := 1; window <= present+2; window++ {
		got, err := MovingAverage(txs, window)
		want := present - window + 1
		if want < 0 {
			want = 0
		}
		if len(got) != want {
			t.Fatalf("window %d: expected %d points, got %d", window, want, len(got))
		}
		if window > present && !errors.Is(err, ErrInsufficientData) {
			t.Fatalf("window %d: expected ErrInsufficientData, got %v", window, err)
		}
		for _, p := range got {
			found := false
			for _, r := range txs {
				if r.Date.Equal(p.Date.Time) {
					found = true
				}
			}
			if !found {
				t.Fatalf("window %d: point date %s not in input", window, p.Date)
			}
		}
	}

	if _, err := MovingAverage(txs, 0); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow, got %v", err)
	}
}

func TestCategoryPercentages(t *testing.T) {
	txs := core.Transactions{
		tx("1", "10", "2024-01-01", "a"),
		tx("2", "20", "2024-01-02", "b"),
		tx("3", "70", "2024-01-03", "c"),
		tx("4", "0.01", "2024-01-04", "d"),
	}
	got := CategoryPercentages(txs)
	total := decimal.Zero
	for _, v := range got {
		total = total.Add(v)
	}
	if total.Sub(dec("100")).Abs().GreaterThan(dec("0.01")) {
		t.Fatalf("percentages should sum to 100, got %s", total)
	}
	assertDec(t, "c", got["c"], "69.99")
	assertDec(t, "d", got["d"], "0.01")

	zero := core.Transactions{
		tx("1", "10", "2024-01-01", "income"),
		tx("2", "-10", "2024-01-02", "expense"),
	}
	if got := CategoryPercentages(zero); len(got) != 0 {
		t.Fatalf("expected empty result for zero total, got %v", got)
	}
}

package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
)

var hundred = decimal.NewFromInt(100)

// MonthlySummary sums amounts per calendar month, oldest month first.
func MonthlySummary(txs core.Transactions) []MonthTotal {
	totals := map[string]decimal.Decimal{}
	for _, tx := range txs {
		if tx.Date.IsEmpty() {
			continue
		}
		key := tx.Date.MonthKey()
		totals[key] = totals[key].Add(amountOf(tx))
	}

	out := make([]MonthTotal, 0, len(totals))
	for month, total := range totals {
		out = append(out, MonthTotal{Month: month, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// TotalsByCategory sums amounts per category.
func TotalsByCategory(txs core.Transactions) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		totals[tx.Category] = totals[tx.Category].Add(amountOf(tx))
	}
	return totals
}

// Categories returns the keys of a per-category result in sorted order.
func Categories[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CategoryPercentages gives each category's share of the overall total,
// rounded to two decimals. A zero total yields an empty result.
func CategoryPercentages(txs core.Transactions) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	total := Sum(txs)
	if total.IsZero() {
		return out
	}
	for category, sum := range TotalsByCategory(txs) {
		out[category] = sum.Mul(hundred).Div(total).Round(2)
	}
	return out
}

// CheckBudget compares the summed amount of each limited category with its
// limit. Matching is exact and case-sensitive. A category is over budget when
// its total moves further from zero than the limit, so an expense limit of
// -100 is exceeded by a total of -150 just as an income cap of 100 is
// exceeded by 150.
func CheckBudget(txs core.Transactions, limits map[string]decimal.Decimal) map[string]BudgetCheck {
	out := make(map[string]BudgetCheck, len(limits))
	if len(txs) == 0 {
		return out
	}
	totals := TotalsByCategory(txs)
	for category, limit := range limits {
		spent := totals[category]
		status := StatusWithinBudget
		if spent.Abs().GreaterThan(limit.Abs()) {
			status = StatusOverBudget
		}
		out[category] = BudgetCheck{
			Spent:      spent,
			Limit:      limit,
			Status:     status,
			Difference: spent.Sub(limit),
		}
	}
	return out
}

// Sum adds every present amount.
func Sum(txs core.Transactions) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(amountOf(tx))
	}
	return total
}

func amountOf(tx core.Transaction) decimal.Decimal {
	if !tx.Amount.Valid {
		return decimal.Zero
	}
	return tx.Amount.Decimal
}

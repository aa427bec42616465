package analytics

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
)

var two = decimal.NewFromInt(2)

// Mean is the arithmetic mean of all present amounts.
func Mean(txs core.Transactions) decimal.Decimal {
	amounts := presentAmounts(txs)
	if len(amounts) == 0 {
		return decimal.Zero
	}
	return decimal.Sum(decimal.Zero, amounts...).Div(decimal.NewFromInt(int64(len(amounts))))
}

// Median is the middle present amount, or the mean of the two middle ones.
func Median(txs core.Transactions) decimal.Decimal {
	amounts := presentAmounts(txs)
	n := len(amounts)
	if n == 0 {
		return decimal.Zero
	}
	sort.Slice(amounts, func(i, j int) bool { return amounts[i].LessThan(amounts[j]) })
	if n%2 == 1 {
		return amounts[n/2]
	}
	return amounts[n/2-1].Add(amounts[n/2]).Div(two)
}

// StdDev is the sample standard deviation (n-1 denominator). Fewer than two
// amounts give zero.
func StdDev(txs core.Transactions) decimal.Decimal {
	amounts := presentAmounts(txs)
	n := len(amounts)
	if n < 2 {
		return decimal.Zero
	}
	mean := Mean(txs)
	squares := decimal.Zero
	for _, a := range amounts {
		d := a.Sub(mean)
		squares = squares.Add(d.Mul(d))
	}
	variance := squares.Div(decimal.NewFromInt(int64(n - 1)))
	return decimal.NewFromFloat(math.Sqrt(variance.InexactFloat64()))
}

func presentAmounts(txs core.Transactions) []decimal.Decimal {
	out := make([]decimal.Decimal, 0, len(txs))
	for _, tx := range txs {
		if tx.Amount.Valid {
			out = append(out, tx.Amount.Decimal)
		}
	}
	return out
}

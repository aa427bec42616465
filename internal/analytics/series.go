package analytics

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
)

// CumulativeSpending orders records by date and keeps a running total.
// Records on the same date keep their ledger order.
func CumulativeSpending(txs core.Transactions) []CumulativePoint {
	series := byDate(txs)
	out := make([]CumulativePoint, 0, len(series))
	running := decimal.Zero
	for _, tx := range series {
		running = running.Add(tx.Amount.Decimal)
		out = append(out, CumulativePoint{
			Date:         tx.Date,
			Amount:       tx.Amount.Decimal,
			RunningTotal: running,
		})
	}
	return out
}

// MovingAverage computes the simple moving average over exactly window
// consecutive date-ordered records. There are no partial windows, so the
// result has count-window+1 points.
func MovingAverage(txs core.Transactions, window int) ([]AveragePoint, error) {
	if window <= 0 {
		return []AveragePoint{}, ErrInvalidWindow
	}
	series := byDate(txs)
	if len(series) < window {
		return []AveragePoint{}, fmt.Errorf("%w: %d records, window %d", ErrInsufficientData, len(series), window)
	}

	size := decimal.NewFromInt(int64(window))
	out := make([]AveragePoint, 0, len(series)-window+1)
	sum := decimal.Zero
	for i, tx := range series {
		sum = sum.Add(tx.Amount.Decimal)
		if i >= window {
			sum = sum.Sub(series[i-window].Amount.Decimal)
		}
		if i >= window-1 {
			out = append(out, AveragePoint{Date: tx.Date, Average: sum.Div(size)})
		}
	}
	return out, nil
}

// byDate returns the records that carry an amount, stably sorted by date
// with undated records last.
func byDate(txs core.Transactions) core.Transactions {
	out := filter(txs, func(tx core.Transaction) bool { return tx.Amount.Valid })
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Date, out[j].Date
		if a.IsEmpty() || b.IsEmpty() {
			return !a.IsEmpty() && b.IsEmpty()
		}
		return a.Before(b.Time)
	})
	return out
}

package analytics

import (
	"ledger/internal/core"
)

// FilterByMonth keeps records dated in the given month (1-12) of any year.
func FilterByMonth(txs core.Transactions, month int) core.Transactions {
	return filter(txs, func(tx core.Transaction) bool {
		return !tx.Date.IsEmpty() && tx.Date.Month() == month
	})
}

// FilterByDateRange keeps records dated between start and end, both inclusive.
func FilterByDateRange(txs core.Transactions, start, end string) (core.Transactions, error) {
	if len(txs) == 0 {
		return core.Transactions{}, nil
	}
	from, err := core.ParseDateLenient(start)
	if err != nil {
		return core.Transactions{}, err
	}
	to, err := core.ParseDateLenient(end)
	if err != nil {
		return core.Transactions{}, err
	}
	return filter(txs, func(tx core.Transaction) bool {
		return !tx.Date.IsEmpty() && !tx.Date.Before(from.Time) && !tx.Date.After(to.Time)
	}), nil
}

func filter(txs core.Transactions, keep func(core.Transaction) bool) core.Transactions {
	out := core.Transactions{}
	for _, tx := range txs {
		if keep(tx) {
			out = append(out, tx)
		}
	}
	return out
}

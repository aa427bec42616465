// Package analytics computes read-only summaries over a ledger snapshot.
//
// Every function tolerates an empty collection and returns an empty, non-nil
// result or zero. Records without an amount contribute nothing; records
// without a date are left out of month and range filters and sort after
// dated records wherever date order matters.
package analytics

import (
	"errors"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
)

const (
	StatusOverBudget   BudgetStatus = "Over Budget"
	StatusWithinBudget BudgetStatus = "Within Budget"
)

type (
	BudgetStatus string

	// MonthTotal is the summed amount of one calendar month.
	MonthTotal struct {
		Month string // YYYY-MM
		Total decimal.Decimal
	}

	CumulativePoint struct {
		Date         core.Date
		Amount       decimal.Decimal
		RunningTotal decimal.Decimal
	}

	// AveragePoint is one moving average value, dated with the last record
	// of its window.
	AveragePoint struct {
		Date    core.Date
		Average decimal.Decimal
	}

	BudgetCheck struct {
		Spent      decimal.Decimal
		Limit      decimal.Decimal
		Status     BudgetStatus
		Difference decimal.Decimal // Spent - Limit
	}
)

var (
	ErrInvalidWindow    = errors.New("window size must be positive")
	ErrInsufficientData = errors.New("not enough data for moving average")
)

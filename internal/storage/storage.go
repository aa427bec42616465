// Package storage loads and saves the whole ledger. Backends never fail the
// caller on load: problems are logged and an empty ledger is returned
// together with a LoadReport describing what happened.
package storage

import (
	"context"
	"fmt"
	"strings"

	"ledger/internal/core"
)

// Column names of the canonical schema, in file order.
const (
	ColumnID       = "id"
	ColumnTitle    = "title"
	ColumnAmount   = "amount"
	ColumnDate     = "date"
	ColumnCategory = "category"
)

// Columns is the header row of the backing file.
var Columns = []string{ColumnID, ColumnTitle, ColumnAmount, ColumnDate, ColumnCategory}

type (
	// Adapter persists the full transaction collection.
	Adapter interface {
		Load(ctx context.Context) (core.Transactions, LoadReport)
		Save(ctx context.Context, txs core.Transactions) error
		Close() error
	}

	// LoadReport summarizes schema normalization of one load.
	LoadReport struct {
		Rows    int      // rows read from the backend
		Skipped int      // rows dropped because a value failed type coercion
		Missing []string // expected columns absent from the source
		Err     error    // cause when the load degraded to an empty ledger
	}

	cell struct {
		value   string
		present bool
	}

	// row is one untyped record in canonical column order.
	row [5]cell
)

// Degraded reports whether the load fell back to an empty ledger.
func (r LoadReport) Degraded() bool {
	return r.Err != nil
}

// transaction coerces a raw row into a typed record. Blank or missing cells
// become absent values; a non-blank amount or date that does not parse is an
// error and the row is skipped by the caller.
func (r row) transaction() (core.Transaction, error) {
	tx := core.Transaction{
		ID:       core.ParseID(r[0].value),
		Title:    r[1].value,
		Category: r[4].value,
	}

	if v := strings.TrimSpace(r[2].value); r[2].present && v != "" {
		amount, ok := core.ParseAmount(v)
		if !ok {
			return core.Transaction{}, fmt.Errorf("amount %q: %w", v, core.ErrInvalidAmount)
		}
		tx.Amount.Decimal = amount
		tx.Amount.Valid = true
	}

	if v := strings.TrimSpace(r[3].value); r[3].present && v != "" {
		date, err := core.ParseDateLenient(v)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("date %q: %w", v, err)
		}
		tx.Date = date
	}

	return tx, nil
}

// cells renders a record in canonical column order. Absent values are empty.
func cells(tx core.Transaction) []string {
	amount := ""
	if tx.Amount.Valid {
		amount = tx.Amount.Decimal.String()
	}
	return []string{tx.ID.String(), tx.Title, amount, tx.Date.String(), tx.Category}
}

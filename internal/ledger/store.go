// Package ledger implements the transaction store. Every operation takes the
// current collection and returns the resulting one; nothing is kept between
// calls. Only Insert persists. DeleteByID and Clean leave saving to the
// caller.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
	applog "ledger/internal/log"
)

var (
	ErrNotFound     = errors.New("transaction not found")
	ErrNotPersisted = errors.New("ledger not persisted")
	ErrIDExhausted  = errors.New("no transaction id left above the largest id")
)

// Saver is the part of a storage adapter the store needs.
type Saver interface {
	Save(ctx context.Context, txs core.Transactions) error
}

type Store struct {
	saver  Saver
	logger *slog.Logger
}

func NewStore(saver Saver, logger *slog.Logger) *Store {
	return &Store{
		saver:  saver,
		logger: applog.WithComponent(logger, applog.ComponentLedger),
	}
}

// NextID returns one more than the largest managed id, or 1 when there is none.
// It fails with ErrIDExhausted once the largest id is math.MaxInt64.
func NextID(txs core.Transactions) (int64, error) {
	var max int64
	found := false
	for _, tx := range txs {
		n, ok := tx.ID.Number()
		if !ok {
			continue
		}
		if !found || n > max {
			max, found = n, true
		}
	}
	if !found {
		return 1, nil
	}
	if max == math.MaxInt64 {
		return 0, ErrIDExhausted
	}
	return max + 1, nil
}

// Insert records a new transaction and saves the ledger.
//
// The amount must already carry its sign. An unparseable date returns
// core.ErrInvalidDate and an exhausted id space ErrIDExhausted, both with txs
// unchanged. If saving fails the returned
// collection still holds the new record and the error wraps ErrNotPersisted,
// meaning memory is ahead of durable state.
func (s *Store) Insert(ctx context.Context, txs core.Transactions, title string, amount decimal.Decimal, date, category string) (core.Transactions, error) {
	parsed, err := core.ParseDateLenient(date)
	if err != nil {
		s.logger.WarnContext(ctx, "Rejected transaction with invalid date",
			applog.FieldOperation, applog.OpInsert, applog.FieldDate, date)
		return txs, err
	}
	id, err := NextID(txs)
	if err != nil {
		s.logger.ErrorContext(ctx, "Rejected transaction",
			applog.FieldOperation, applog.OpInsert, applog.FieldError, err)
		return txs, err
	}

	tx := core.Transaction{
		ID:       core.NewID(id),
		Title:    title,
		Amount:   decimal.NewNullDecimal(amount),
		Date:     parsed,
		Category: category,
	}
	out := append(txs.Clone(), tx)

	if err := s.saver.Save(ctx, out); err != nil {
		return out, fmt.Errorf("%w: %w", ErrNotPersisted, err)
	}

	fields := applog.NewFields().
		WithTransaction(tx.ID.String(), tx.Title, amount.String(), tx.Date.String(), tx.Category).
		WithOperation(applog.OpInsert)
	s.logger.InfoContext(ctx, "Transaction added", fields.ToSlice()...)
	return out, nil
}

// DeleteByID removes every record whose id token equals id. When nothing
// matched it returns txs unchanged and ErrNotFound.
func DeleteByID(txs core.Transactions, id string) (core.Transactions, error) {
	id = strings.TrimSpace(id)
	out := make(core.Transactions, 0, len(txs))
	for _, tx := range txs {
		if !tx.ID.IsZero() && tx.ID.String() == id {
			continue
		}
		out = append(out, tx)
	}
	if len(out) == len(txs) {
		return txs, fmt.Errorf("%w: id %s", ErrNotFound, id)
	}
	return out, nil
}

// Clean drops records that fail validation, then exact duplicates, keeping
// the first occurrence. It returns the number of records removed.
func Clean(txs core.Transactions) (core.Transactions, int) {
	byID := make(map[string]core.Transactions, len(txs))
	out := make(core.Transactions, 0, len(txs))
	for _, tx := range txs {
		if tx.Validate() != nil {
			continue
		}
		key := tx.ID.String()
		if slices.ContainsFunc(byID[key], tx.Equal) {
			continue
		}
		byID[key] = append(byID[key], tx)
		out = append(out, tx)
	}
	return out, len(txs) - len(out)
}

// SortByAmountDescending returns a copy ordered from the largest amount to
// the smallest. Equal amounts keep their order; absent amounts go last.
func SortByAmountDescending(txs core.Transactions) core.Transactions {
	out := txs.Clone()
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Amount, out[j].Amount
		if !a.Valid || !b.Valid {
			return a.Valid && !b.Valid
		}
		return a.Decimal.GreaterThan(b.Decimal)
	})
	return out
}

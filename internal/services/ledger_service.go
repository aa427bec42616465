package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/shopspring/decimal"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/ledger"
	applog "ledger/internal/log"
	"ledger/internal/storage"
)

// ErrLedgerUnreadable is returned by mutations when the backing store could
// not be read. Saving would overwrite it with an empty ledger.
var ErrLedgerUnreadable = errors.New("ledger could not be loaded")

// Publisher announces persisted ledger changes.
type Publisher interface {
	PublishLedgerChange(ctx context.Context, msg *amqp.LedgerChangeMessage) error
}

// LedgerService runs each mutation as load, change, save, and then publishes
// a change notification when a publisher is configured.
type LedgerService struct {
	storage   storage.Adapter
	store     *ledger.Store
	publisher Publisher
	logger    *slog.Logger
}

func NewLedgerService(adapter storage.Adapter, publisher Publisher, logger *slog.Logger) *LedgerService {
	return &LedgerService{
		storage:   adapter,
		store:     ledger.NewStore(adapter, logger),
		publisher: publisher,
		logger:    applog.WithComponent(logger, applog.ComponentService),
	}
}

// Snapshot loads the current ledger. It never fails; see storage.LoadReport.
func (s *LedgerService) Snapshot(ctx context.Context) (core.Transactions, storage.LoadReport) {
	return s.storage.Load(ctx)
}

// Add records a transaction whose amount already carries its sign. When the
// save fails the new record is still returned along with the error.
func (s *LedgerService) Add(ctx context.Context, title string, amount decimal.Decimal, date, category string) (core.Transaction, error) {
	txs, err := s.load(ctx)
	if err != nil {
		return core.Transaction{}, err
	}

	out, err := s.store.Insert(ctx, txs, title, amount, date, category)
	if len(out) == len(txs) {
		return core.Transaction{}, err
	}
	added := out[len(out)-1]
	if err != nil {
		return added, err
	}

	s.publish(ctx, applog.OpInsert, added.ID.String(), len(out))
	return added, nil
}

// Delete removes every record with the given id and saves the ledger.
func (s *LedgerService) Delete(ctx context.Context, id string) error {
	txs, err := s.load(ctx)
	if err != nil {
		return err
	}

	out, err := ledger.DeleteByID(txs, id)
	if err != nil {
		s.logger.InfoContext(ctx, "Transaction not found",
			applog.FieldOperation, applog.OpDelete, applog.FieldID, id)
		return err
	}

	if err := s.storage.Save(ctx, out); err != nil {
		return fmt.Errorf("%w: %w", ledger.ErrNotPersisted, err)
	}

	s.logger.InfoContext(ctx, "Transaction deleted",
		applog.FieldOperation, applog.OpDelete,
		applog.FieldID, id,
		applog.FieldRemoved, len(txs)-len(out))
	s.publish(ctx, applog.OpDelete, id, len(out))
	return nil
}

// Clean drops incomplete and duplicate records and saves the result.
func (s *LedgerService) Clean(ctx context.Context) (int, error) {
	txs, err := s.load(ctx)
	if err != nil {
		return 0, err
	}

	out, removed := ledger.Clean(txs)
	s.logger.InfoContext(ctx, "Cleaned ledger",
		applog.FieldOperation, applog.OpClean, applog.FieldRemoved, removed)

	if err := s.storage.Save(ctx, out); err != nil {
		return removed, fmt.Errorf("%w: %w", ledger.ErrNotPersisted, err)
	}

	s.publish(ctx, applog.OpClean, "", len(out))
	return removed, nil
}

func (s *LedgerService) load(ctx context.Context) (core.Transactions, error) {
	txs, report := s.storage.Load(ctx)
	if report.Degraded() {
		return nil, fmt.Errorf("%w: %w", ErrLedgerUnreadable, report.Err)
	}
	return txs, nil
}

func (s *LedgerService) publish(ctx context.Context, op, id string, count int) {
	if s.publisher == nil {
		return
	}
	// The ledger is already saved; a lost notification is only logged.
	if err := s.publisher.PublishLedgerChange(ctx, amqp.NewLedgerChangeMessage(op, id, count)); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish ledger change",
			applog.FieldOperation, op, applog.FieldID, id, applog.FieldError, err)
	}
}

// Close closes the storage backend and the publisher when it holds a connection.
func (s *LedgerService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %w", errors.Join(errs...))
	}

	return nil
}

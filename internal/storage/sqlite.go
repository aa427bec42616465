package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"ledger/internal/core"
	applog "ledger/internal/log"

	_ "modernc.org/sqlite"
)

// SQLite keeps the ledger in a single table. Save replaces the whole table
// inside one transaction, so readers see either the old or the new ledger.
type SQLite struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

func NewSQLite(dbPath string, logger *slog.Logger) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{
		db:     db,
		path:   dbPath,
		logger: applog.WithComponent(logger, applog.ComponentStorage),
	}, nil
}

func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Load implements Adapter.
func (s *SQLite) Load(ctx context.Context) (core.Transactions, LoadReport) {
	var report LoadReport

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, amount, date, category FROM transactions ORDER BY position`)
	if err != nil {
		return s.degrade(ctx, fmt.Errorf("query transactions: %w", err))
	}
	defer rows.Close()

	txs := core.Transactions{}
	for rows.Next() {
		var cols [5]sql.NullString
		if err := rows.Scan(&cols[0], &cols[1], &cols[2], &cols[3], &cols[4]); err != nil {
			return s.degrade(ctx, fmt.Errorf("scan transaction: %w", err))
		}
		report.Rows++

		var raw row
		for i, c := range cols {
			raw[i] = cell{value: c.String, present: c.Valid}
		}
		tx, err := raw.transaction()
		if err != nil {
			report.Skipped++
			continue
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return s.degrade(ctx, fmt.Errorf("iterate transactions: %w", err))
	}

	if report.Skipped > 0 {
		s.logger.WarnContext(ctx, "Skipped malformed ledger rows",
			applog.FieldPath, s.path, applog.FieldSkipped, report.Skipped)
	}
	return txs, report
}

func (s *SQLite) degrade(ctx context.Context, err error) (core.Transactions, LoadReport) {
	s.logger.ErrorContext(ctx, "Error loading ledger, starting empty",
		applog.FieldOperation, applog.OpLoad, applog.FieldPath, s.path, applog.FieldError, err)
	return core.Transactions{}, LoadReport{Err: err}
}

// Save implements Adapter.
func (s *SQLite) Save(ctx context.Context, txs core.Transactions) error {
	if err := s.replace(ctx, txs); err != nil {
		s.logger.ErrorContext(ctx, "Error saving ledger",
			applog.FieldOperation, applog.OpSave, applog.FieldPath, s.path, applog.FieldError, err)
		return err
	}
	s.logger.DebugContext(ctx, "Ledger saved", applog.FieldPath, s.path, applog.FieldCount, len(txs))
	return nil
}

func (s *SQLite) replace(ctx context.Context, txs core.Transactions) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO transactions (position, id, title, amount, date, category) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range txs {
		if _, err := stmt.ExecContext(ctx, i+1,
			nullable(t.ID.String()), t.Title, nullableAmount(t), nullable(t.Date.String()), t.Category); err != nil {
			return fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullableAmount(t core.Transaction) sql.NullString {
	if !t.Amount.Valid {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Amount.Decimal.String(), Valid: true}
}

var _ Adapter = (*SQLite)(nil)

package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"ledger/internal/core"
	applog "ledger/internal/log"
)

// CSVFile stores the ledger as a single comma separated file with a header row.
type CSVFile struct {
	path   string
	logger *slog.Logger
}

func NewCSVFile(path string, logger *slog.Logger) *CSVFile {
	return &CSVFile{
		path:   path,
		logger: applog.WithComponent(logger, applog.ComponentStorage),
	}
}

// Load implements Adapter. A missing file is an empty ledger, not an error.
func (f *CSVFile) Load(ctx context.Context) (core.Transactions, LoadReport) {
	file, err := os.Open(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		f.logger.DebugContext(ctx, "Ledger file not found, starting empty", applog.FieldPath, f.path)
		return core.Transactions{}, LoadReport{}
	}
	if err != nil {
		return f.degrade(ctx, fmt.Errorf("open ledger file: %w", err))
	}
	defer file.Close()

	txs, report, err := f.read(file)
	if err != nil {
		return f.degrade(ctx, err)
	}

	if report.Skipped > 0 || len(report.Missing) > 0 {
		f.logger.WarnContext(ctx, "Ledger file needed normalization",
			applog.FieldPath, f.path,
			applog.FieldSkipped, report.Skipped,
			"missing_columns", report.Missing)
	}
	f.logger.DebugContext(ctx, "Ledger loaded", applog.FieldPath, f.path, applog.FieldCount, len(txs))
	return txs, report
}

func (f *CSVFile) read(r io.Reader) (core.Transactions, LoadReport, error) {
	var report LoadReport
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return core.Transactions{}, report, nil
	}
	if err != nil {
		return nil, report, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	positions := make([]int, len(Columns))
	for i, name := range Columns {
		pos, ok := index[name]
		if !ok {
			pos = -1
			report.Missing = append(report.Missing, name)
		}
		positions[i] = pos
	}

	txs := core.Transactions{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, report, fmt.Errorf("read record: %w", err)
		}
		report.Rows++

		var raw row
		for i, pos := range positions {
			if pos >= 0 && pos < len(record) {
				raw[i] = cell{value: record[pos], present: true}
			}
		}
		tx, err := raw.transaction()
		if err != nil {
			report.Skipped++
			continue
		}
		txs = append(txs, tx)
	}
	return txs, report, nil
}

func (f *CSVFile) degrade(ctx context.Context, err error) (core.Transactions, LoadReport) {
	f.logger.ErrorContext(ctx, "Error loading ledger, starting empty",
		applog.FieldOperation, applog.OpLoad, applog.FieldPath, f.path, applog.FieldError, err)
	return core.Transactions{}, LoadReport{Err: err}
}

// Save implements Adapter. The collection is written to a temporary file in
// the same directory which then replaces the ledger file in one rename.
func (f *CSVFile) Save(ctx context.Context, txs core.Transactions) error {
	if err := f.write(txs); err != nil {
		f.logger.ErrorContext(ctx, "Error saving ledger",
			applog.FieldOperation, applog.OpSave, applog.FieldPath, f.path, applog.FieldError, err)
		return err
	}
	f.logger.DebugContext(ctx, "Ledger saved", applog.FieldPath, f.path, applog.FieldCount, len(txs))
	return nil
}

func (f *CSVFile) write(txs core.Transactions) (err error) {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create ledger directory: %w", err)
	}

	mode := fs.FileMode(0o644)
	if info, err := os.Stat(f.path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	// CreateTemp opens with 0600; the ledger keeps its existing mode.
	if err := tmp.Chmod(mode); err != nil {
		return fmt.Errorf("set ledger mode: %w", err)
	}

	w := csv.NewWriter(tmp)
	if err := w.Write(Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, tx := range txs {
		if err := w.Write(cells(tx)); err != nil {
			return fmt.Errorf("write record %s: %w", tx.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush ledger: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace ledger file: %w", err)
	}
	return nil
}

// Close implements Adapter. The file is only open during Load and Save.
func (f *CSVFile) Close() error {
	return nil
}

var _ Adapter = (*CSVFile)(nil)

package summary

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"github.com/user/idf_analyzer_go/internal/analysis"
)

// CSVWriter appends summary rows to a CSV file. Appends are serialised
// within the process by a mutex and across processes by a lock file.
type CSVWriter struct {
	path        string
	writeHeader bool

	mu   sync.Mutex
	lock *flock.Flock
}

// NewCSVWriter returns a writer for path. When writeHeader is set the column
// header is written before the first row of a new or empty file.
func NewCSVWriter(path string, writeHeader bool) *CSVWriter {
	return &CSVWriter{
		path:        path,
		writeHeader: writeHeader,
		lock:        flock.New(path + ".lock"),
	}
}

// Path returns the CSV file path.
func (w *CSVWriter) Path() string { return w.path }

// Append writes one row for s.
func (w *CSVWriter) Append(ctx context.Context, _ string, s *analysis.RunSummary) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return fmt.Errorf("create summary directory: %w", err)
	}

	if err := w.lock.Lock(); err != nil {
		return fmt.Errorf("acquire summary lock: %w", err)
	}
	defer func() { _ = w.lock.Unlock() }()

	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open summary table: %w", err)
	}
	if err := writeRow(f, w.writeHeader, NewRecord(s)); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close summary table: %w", err)
	}
	return nil
}

// writeRow appends rec to f, preceded by the header when f is empty and withHeader is set.
func writeRow(f *os.File, withHeader bool, rec Record) error {
	cw := csv.NewWriter(f)
	if withHeader {
		info, err := f.Stat()
		if err != nil {
			return fmt.Errorf("stat summary table: %w", err)
		}
		if info.Size() == 0 {
			if err := cw.Write(Columns); err != nil {
				return fmt.Errorf("write summary header: %w", err)
			}
		}
	}
	if err := cw.Write(rec.Strings()); err != nil {
		return fmt.Errorf("write summary row: %w", err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush summary row: %w", err)
	}
	return nil
}

// ReadCSV loads every row of a summary CSV. A header row, if present, is skipped.
func ReadCSV(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open summary table: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(Columns)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read summary table: %w", err)
	}

	records := make([]Record, 0, len(rows))
	for i, row := range rows {
		if i == 0 && row[0] == Columns[0] {
			continue
		}
		rec, err := recordFromStrings(row)
		if err != nil {
			return nil, fmt.Errorf("summary row %d: %w", i+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

package summary

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/user/idf_analyzer_go/internal/analysis"
)

const schema = `CREATE TABLE IF NOT EXISTS scan_summary (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    batch_id    TEXT NOT NULL,
    scan_id     TEXT NOT NULL,
    technique   TEXT NOT NULL,
    title       TEXT NOT NULL,
    charge_mah  REAL NOT NULL,
    ua_min      REAL NOT NULL,
    ua_max      REAL NOT NULL,
    volts_min   REAL NOT NULL,
    volts_max   REAL NOT NULL,
    created_at  TEXT NOT NULL
)`

// StoredRecord is a Record read back from the SQLite store.
type StoredRecord struct {
	Record
	BatchID   string
	CreatedAt time.Time
}

// SQLiteStore keeps summary rows in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens or creates the summary database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create summary db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer keeps appends ordered under concurrent producers.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create summary schema: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Append inserts one row for sum.
func (s *SQLiteStore) Append(ctx context.Context, batchID string, sum *analysis.RunSummary) error {
	rec := NewRecord(sum)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scan_summary (
            batch_id, scan_id, technique, title, charge_mah,
            ua_min, ua_max, volts_min, volts_max, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		batchID,
		rec.ScanID,
		rec.Technique,
		rec.Title,
		rec.Charge,
		rec.MicroAmpsMin,
		rec.MicroAmpsMax,
		rec.VoltsMin,
		rec.VoltsMax,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert summary row: %w", err)
	}
	return nil
}

// List returns stored rows in insertion order. An empty batchID lists every batch.
func (s *SQLiteStore) List(ctx context.Context, batchID string) ([]StoredRecord, error) {
	query := `SELECT batch_id, scan_id, technique, title, charge_mah,
            ua_min, ua_max, volts_min, volts_max, created_at
        FROM scan_summary`
	var args []any
	if batchID != "" {
		query += ` WHERE batch_id = ?`
		args = append(args, batchID)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query summary rows: %w", err)
	}
	defer rows.Close()

	var out []StoredRecord
	for rows.Next() {
		var (
			rec     StoredRecord
			created string
		)
		if err := rows.Scan(
			&rec.BatchID,
			&rec.ScanID,
			&rec.Technique,
			&rec.Title,
			&rec.Charge,
			&rec.MicroAmpsMin,
			&rec.MicroAmpsMax,
			&rec.VoltsMin,
			&rec.VoltsMax,
			&created,
		); err != nil {
			return nil, fmt.Errorf("scan summary row: %w", err)
		}
		rec.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", created, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

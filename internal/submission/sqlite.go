package submission

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/studentconnect/intake/internal/form"
	"github.com/studentconnect/intake/internal/logger"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

// SQLiteFile is the database file name inside the data directory.
const SQLiteFile = "intake.db"

// SQLite stores submissions as JSON rows in a single table. Resubmitting the
// same ID is a no-op that acknowledges the existing row.
type SQLite struct {
	db   *sql.DB
	path string
}

// SQLitePath is where the database lives for a data directory.
func SQLitePath(dataDir string) string {
	return filepath.Join(dataDir, SQLiteFile)
}

// OpenSQLite opens (creating if needed) the submissions database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS submissions (
		id TEXT PRIMARY KEY,
		reference TEXT NOT NULL,
		payment_date TEXT NOT NULL,
		total INTEGER NOT NULL,
		submitted_at TEXT NOT NULL,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create submissions table: %w", err)
	}
	logger.Debug("Opened submissions database at %s", path)
	return &SQLite{db: db, path: path}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Submit inserts the submission and acknowledges with its row ID.
func (s *SQLite) Submit(ctx context.Context, sub form.Submission) (form.Ack, error) {
	payload, err := json.Marshal(sub)
	if err != nil {
		return form.Ack{}, fmt.Errorf("failed to marshal submission: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO submissions (id, reference, payment_date, total, submitted_at, payload)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sub.ID,
		sub.Review.PaymentReference,
		sub.State.PaymentDate,
		sub.Review.TotalCost,
		sub.SubmittedAt.UTC().Format(time.RFC3339Nano),
		payload,
	)
	if err != nil {
		return form.Ack{}, fmt.Errorf("insert submission: %w", err)
	}

	var rowID int64
	if err := s.db.QueryRowContext(ctx, `SELECT rowid FROM submissions WHERE id = ?`, sub.ID).Scan(&rowID); err != nil {
		return form.Ack{}, fmt.Errorf("lookup submission: %w", err)
	}

	return form.Ack{
		ID:          sub.ID,
		Reference:   sub.Review.PaymentReference,
		Location:    fmt.Sprintf("%s#%d", s.path, rowID),
		SubmittedAt: sub.SubmittedAt,
	}, nil
}

// List returns every stored submission in insertion order.
func (s *SQLite) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT rowid, payload FROM submissions ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("select submissions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []Record
	for rows.Next() {
		var (
			rowID   int64
			payload []byte
		)
		if err := rows.Scan(&rowID, &payload); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		var sub form.Submission
		if err := json.Unmarshal(payload, &sub); err != nil {
			logger.Warn("Skipping malformed submission (row=%d): %v", rowID, err)
			continue
		}
		records = append(records, Record{Sequence: uint64(rowID), Submission: sub})
	}
	return records, rows.Err()
}

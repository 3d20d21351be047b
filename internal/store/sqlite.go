package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	verrors "intrinsic-valuator/internal/errors"
	"intrinsic-valuator/internal/models"
)

// SQLiteStore implements SnapshotStore using SQLite.
type SQLiteStore struct {
	db    *sql.DB
	retry RetryConfig
}

// NewSQLiteStore creates a new SQLite-based snapshot store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, verrors.Wrap(verrors.ErrDatabaseError, err.Error())
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db, retry: DefaultRetryConfig()}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the snapshot table and its index.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		ticker TEXT NOT NULL,
		as_of DATETIME NOT NULL,
		name TEXT,
		price REAL NOT NULL,
		shares_outstanding REAL NOT NULL,
		payload TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (ticker, as_of)
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_as_of ON snapshots(ticker, as_of DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save stores a snapshot, replacing any existing one for the same ticker and date.
func (s *SQLiteStore) Save(ctx context.Context, snap *models.FinancialSnapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	err = retry(ctx, s.retry, func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT OR REPLACE INTO snapshots (ticker, as_of, name, price, shares_outstanding, payload, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, normalizeTicker(snap.Ticker), snap.AsOf.UTC(), snap.Name, snap.Price, snap.SharesOutstanding, string(payload), time.Now().UTC())
		return err
	})
	if err != nil {
		return verrors.Wrapf(verrors.ErrDatabaseError, "failed to save snapshot %s: %v", snap.Ticker, err)
	}
	return nil
}

// Latest returns the newest snapshot for ticker.
func (s *SQLiteStore) Latest(ctx context.Context, ticker string) (*models.FinancialSnapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT payload FROM snapshots WHERE ticker = ? ORDER BY as_of DESC LIMIT 1
	`, normalizeTicker(ticker))
	return scanSnapshot(row, ticker)
}

// Get returns the snapshot for ticker as of the given date.
func (s *SQLiteStore) Get(ctx context.Context, ticker string, asOf time.Time) (*models.FinancialSnapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT payload FROM snapshots WHERE ticker = ? AND as_of = ?
	`, normalizeTicker(ticker), asOf.UTC())
	return scanSnapshot(row, ticker)
}

// List returns snapshot summaries, newest first.
func (s *SQLiteStore) List(ctx context.Context, filter SnapshotFilter) ([]SnapshotSummary, error) {
	query := "SELECT ticker, COALESCE(name, ''), as_of, price, shares_outstanding, updated_at FROM snapshots WHERE 1=1"
	args := []interface{}{}

	if filter.Ticker != "" {
		query += " AND ticker = ?"
		args = append(args, normalizeTicker(filter.Ticker))
	}
	if !filter.Since.IsZero() {
		query += " AND as_of >= ?"
		args = append(args, filter.Since.UTC())
	}

	query += " ORDER BY ticker ASC, as_of DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, verrors.Wrapf(verrors.ErrDatabaseError, "failed to query snapshots: %v", err)
	}
	defer rows.Close()

	var out []SnapshotSummary
	for rows.Next() {
		var sum SnapshotSummary
		if err := rows.Scan(&sum.Ticker, &sum.Name, &sum.AsOf, &sum.Price, &sum.Shares, &sum.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		out = append(out, sum)
	}

	return out, rows.Err()
}

// Delete removes every snapshot for ticker and reports how many were removed.
func (s *SQLiteStore) Delete(ctx context.Context, ticker string) (int64, error) {
	var res sql.Result
	err := retry(ctx, s.retry, func() error {
		var err error
		res, err = s.db.ExecContext(ctx, "DELETE FROM snapshots WHERE ticker = ?", normalizeTicker(ticker))
		return err
	})
	if err != nil {
		return 0, verrors.Wrapf(verrors.ErrDatabaseError, "failed to delete snapshots for %s: %v", ticker, err)
	}
	return res.RowsAffected()
}

func scanSnapshot(row *sql.Row, ticker string) (*models.FinancialSnapshot, error) {
	var payload string
	err := row.Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, verrors.Wrapf(verrors.ErrNotFound, "no snapshot for %s", ticker)
	}
	if err != nil {
		return nil, verrors.Wrapf(verrors.ErrDatabaseError, "failed to get snapshot: %v", err)
	}

	var snap models.FinancialSnapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", ticker, err)
	}
	return &snap, nil
}

func normalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// Package state records spell-check run history in SQLite. Only
// aggregate metadata is stored (counts and timing); checked words and
// corrections are never persisted.
package state

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

// CheckRecord is one spell-check run.
type CheckRecord struct {
	ID           string    `json:"id"`
	Source       string    `json:"source"`
	WordsScanned int64     `json:"words_scanned"`
	Flagged      int64     `json:"flagged"`
	Confident    int64     `json:"confident"`
	DurationMS   int64     `json:"duration_ms"`
	StartedAt    time.Time `json:"started_at"`
}

// Store persists check history in a SQLite database.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (or creates) the history database at path and runs any
// pending migrations.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping state database: %w", err)
	}

	store := &Store{db: db, logger: logger}
	if err := store.Migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// NewWithDB wraps an existing database connection. The caller is
// responsible for migrations and for closing the connection.
func NewWithDB(db *sql.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{db: db, logger: logger}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// generateID creates a new UUID.
func generateID() string {
	return uuid.New().String()
}

// RecordCheck inserts a check record, assigning an ID and start time
// when unset.
func (s *Store) RecordCheck(rec *CheckRecord) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	if rec.ID == "" {
		rec.ID = generateID()
	}
	if rec.StartedAt.IsZero() {
		rec.StartedAt = time.Now().UTC()
	}

	s.logger.Debug("recording check",
		slog.String("id", rec.ID),
		slog.String("source", rec.Source),
		slog.Int64("words", rec.WordsScanned))

	_, err := s.db.Exec(
		`INSERT INTO checks (id, source, words_scanned, flagged, confident, duration_ms, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Source, rec.WordsScanned, rec.Flagged, rec.Confident, rec.DurationMS, rec.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record check: %w", err)
	}

	return nil
}

// ListChecks retrieves the most recent checks up to the given limit,
// newest first.
func (s *Store) ListChecks(limit int) ([]*CheckRecord, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT id, source, words_scanned, flagged, confident, duration_ms, started_at
		 FROM checks ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list checks: %w", err)
	}
	defer rows.Close()

	var records []*CheckRecord
	for rows.Next() {
		rec := &CheckRecord{}
		err := rows.Scan(&rec.ID, &rec.Source, &rec.WordsScanned, &rec.Flagged, &rec.Confident, &rec.DurationMS, &rec.StartedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan check: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// LastCheck retrieves the most recent check, or nil when the history is
// empty.
func (s *Store) LastCheck() (*CheckRecord, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rec := &CheckRecord{}
	err := s.db.QueryRow(
		`SELECT id, source, words_scanned, flagged, confident, duration_ms, started_at
		 FROM checks ORDER BY started_at DESC LIMIT 1`,
	).Scan(&rec.ID, &rec.Source, &rec.WordsScanned, &rec.Flagged, &rec.Confident, &rec.DurationMS, &rec.StartedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last check: %w", err)
	}

	return rec, nil
}

// CountChecks returns the number of recorded checks.
func (s *Store) CountChecks() (int64, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database not opened")
	}

	var count int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM checks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count checks: %w", err)
	}
	return count, nil
}

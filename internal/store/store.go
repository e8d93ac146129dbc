// Package store handles SQLite persistence of best scores.
package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/typesprint/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for per-mode bests.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)
	store := &Store{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS bests (
			mode TEXT PRIMARY KEY,
			max_wpm INTEGER NOT NULL,
			accuracy INTEGER NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_bests_max_wpm ON bests(max_wpm);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// RecordScore folds a finished session into the mode's best and returns the
// resulting best WPM and whether this score raised it.
func (s *Store) RecordScore(ctx context.Context, mode string, wpm, accuracy int) (best int, improved bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	var current int
	err = tx.QueryRowContext(ctx, `SELECT max_wpm FROM bests WHERE mode = ?`, mode).Scan(&current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		improved = true
	case err != nil:
		return 0, false, err
	default:
		improved = wpm > current
	}

	if !improved {
		if err = tx.Commit(); err != nil {
			return 0, false, err
		}
		return current, false, nil
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO bests (mode, max_wpm, accuracy, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(mode) DO UPDATE SET max_wpm = excluded.max_wpm, accuracy = excluded.accuracy, updated_at = excluded.updated_at`,
		mode, wpm, accuracy, s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, false, err
	}
	if err = tx.Commit(); err != nil {
		return 0, false, err
	}
	return wpm, true, nil
}

// Bests returns every mode's best, highest WPM first.
func (s *Store) Bests(ctx context.Context) ([]model.Best, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT mode, max_wpm, accuracy, updated_at FROM bests ORDER BY max_wpm DESC, mode ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	bests := []model.Best{}
	for rows.Next() {
		var b model.Best
		var updatedAt string
		if err := rows.Scan(&b.Mode, &b.MaxWPM, &b.Accuracy, &updatedAt); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, updatedAt)
		if err != nil {
			return nil, err
		}
		b.UpdatedAt = parsed
		bests = append(bests, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bests, nil
}

// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/tuiquiz/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for statistics and round history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	// Wait for writers in other processes; transactions take the write lock up front.
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_txlock=immediate")
	if err != nil {
		return nil, err
	}
	// Serialize writers on a single connection; SQLite allows one writer anyway.
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
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

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS rounds (
			id INTEGER PRIMARY KEY,
			completed_at TEXT NOT NULL,
			correct INTEGER NOT NULL,
			total INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_rounds_completed_at ON rounds(completed_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Bytes returns the raw value stored under key.
func (s *Store) Bytes(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return value, true, nil
}

// SetBytes stores value under key, replacing any previous value.
func (s *Store) SetBytes(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

// UpdateBytes reads the value under key and replaces it with the result of fn
// inside one transaction. When fn reports no change the value is left as is.
func (s *Store) UpdateBytes(ctx context.Context, key string, fn func(current []byte, ok bool) ([]byte, bool, error)) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin update of %q: %w", key, err)
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	var current []byte
	ok := true
	err = tx.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		ok = false
		err = nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %q: %w", key, err)
	}
	next, changed, err := fn(current, ok)
	if err != nil {
		return err
	}
	if changed {
		if next == nil {
			next = []byte{}
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			key, next, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("failed to write %q: %w", key, err)
		}
	}
	return tx.Commit()
}

// Add increments the integer stored under key in a single statement, so
// concurrent writers never lose an update. A missing key starts from zero.
func (s *Store) Add(ctx context.Context, key string, delta int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
			value = CAST(CAST(kv.value AS INTEGER) + CAST(excluded.value AS INTEGER) AS TEXT),
			updated_at = excluded.updated_at`,
		key, []byte(strconv.Itoa(delta)), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to add to %q: %w", key, err)
	}
	return nil
}

// Int returns the integer stored under key. A missing key reads as zero.
func (s *Store) Int(ctx context.Context, key string) (int, error) {
	raw, ok, err := s.Bytes(ctx, key)
	if err != nil || !ok {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0, fmt.Errorf("failed to parse %q: %w", key, err)
	}
	return n, nil
}

// SetInt stores an integer under key.
func (s *Store) SetInt(ctx context.Context, key string, value int) error {
	return s.SetBytes(ctx, key, []byte(strconv.Itoa(value)))
}

// InsertRound appends a completed round to the history.
func (s *Store) InsertRound(ctx context.Context, record model.GameRecord) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO rounds (completed_at, correct, total) VALUES (?, ?, ?)`,
		record.Date.UTC().Format(time.RFC3339Nano),
		record.Correct,
		record.Total,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListRounds returns stored rounds filtered by stats config, oldest first.
func (s *Store) ListRounds(ctx context.Context, cfg model.StatsConfig) ([]model.RoundAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Since != nil {
		clauses = append(clauses, "completed_at >= ?")
		args = append(args, cfg.Since.UTC().Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, completed_at, correct, total
		FROM rounds
		WHERE %s
		ORDER BY completed_at ASC, id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var rounds []model.RoundAggregate
	for rows.Next() {
		var agg model.RoundAggregate
		var completedAt string
		if err := rows.Scan(&agg.RoundID, &completedAt, &agg.Correct, &agg.Total); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, completedAt)
		if err != nil {
			return nil, err
		}
		agg.CompletedAt = parsed
		rounds = append(rounds, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(rounds) > cfg.Last {
		rounds = rounds[len(rounds)-cfg.Last:]
	}
	return rounds, nil
}

// Reset removes all statistics and round history.
func (s *Store) Reset(ctx context.Context) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()
	if _, err = tx.ExecContext(ctx, `DELETE FROM kv`); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM rounds`); err != nil {
		return err
	}
	return tx.Commit()
}

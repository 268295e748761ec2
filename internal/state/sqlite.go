package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	_ "github.com/mattn/go-sqlite3" // sqlite driver
)

// Keys of the persisted namespace.
const (
	keyQueue     = "job_queue"
	keyCursor    = "cursor"
	keyActive    = "active"
	keyProcessed = "processed_count"
)

const schema = `
CREATE TABLE IF NOT EXISTS traversal_state (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// SQLiteStore keeps traversal state in a small key/value table. SQLite gives
// the durability the pipeline depends on without asking the operator to run
// a database server; the file path is all a fresh process needs.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if needed creates) the state database at path.
// ":memory:" is accepted for tests.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping state db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Load rehydrates the traversal state, returning the empty inactive default
// when nothing is persisted.
func (s *SQLiteStore) Load(ctx context.Context) (TraversalState, error) {
	st := TraversalState{}

	raw, err := s.get(ctx, keyQueue, "[]")
	if err != nil {
		return TraversalState{}, err
	}
	if err := json.Unmarshal([]byte(raw), &st.Queue); err != nil {
		return TraversalState{}, fmt.Errorf("decode persisted queue: %w", err)
	}
	if len(st.Queue) == 0 {
		st.Queue = nil
	}

	if st.Cursor, err = s.getInt(ctx, keyCursor); err != nil {
		return TraversalState{}, err
	}
	if st.ProcessedCount, err = s.getInt(ctx, keyProcessed); err != nil {
		return TraversalState{}, err
	}
	active, err := s.get(ctx, keyActive, "false")
	if err != nil {
		return TraversalState{}, err
	}
	st.Active = active == "true"
	return st, nil
}

// Save atomically overwrites the whole state in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, st TraversalState) error {
	if err := st.Validate(); err != nil {
		return fmt.Errorf("refusing to persist invalid state: %w", err)
	}
	queue, err := json.Marshal(st.Queue)
	if err != nil {
		return fmt.Errorf("encode queue: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin state save: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	pairs := map[string]string{
		keyQueue:     string(queue),
		keyCursor:    strconv.Itoa(st.Cursor),
		keyActive:    strconv.FormatBool(st.Active),
		keyProcessed: strconv.Itoa(st.ProcessedCount),
	}
	for key, value := range pairs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO traversal_state (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value); err != nil {
			return fmt.Errorf("persist %s: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit state save: %w", err)
	}
	return nil
}

// Reset destroys the persisted state, returning the store to the empty
// inactive default. This is the explicit discard for abandoned batches; a
// stale active flag never clears itself.
func (s *SQLiteStore) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM traversal_state`); err != nil {
		return fmt.Errorf("reset state: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close state db: %w", err)
	}
	return nil
}

func (s *SQLiteStore) get(ctx context.Context, key, fallback string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM traversal_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return fallback, nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteStore) getInt(ctx context.Context, key string) (int, error) {
	raw, err := s.get(ctx, key, "0")
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("decode %s: %w", key, err)
	}
	return n, nil
}

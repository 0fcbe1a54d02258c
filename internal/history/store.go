package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one journaled command execution.
type Entry struct {
	ID        int64
	RunID     string
	TicketID  string
	Title     string
	Priority  int
	Outcome   string
	ExitCode  int
	Duration  time.Duration
	StartedAt time.Time
	Error     string
}

// Recorder accepts journal entries. The daemon depends on this rather than
// on Store so tests can substitute an in-memory recorder.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// Store persists entries in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the journal database and applies migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record appends an entry.
func (s *Store) Record(ctx context.Context, e Entry) error {
	started := e.StartedAt
	if started.IsZero() {
		started = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO executions (
            run_id, ticket_id, title, priority, outcome, exit_code, duration_ms, started_at, error
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RunID,
		e.TicketID,
		e.Title,
		e.Priority,
		e.Outcome,
		e.ExitCode,
		e.Duration.Milliseconds(),
		started.UTC().Format(time.RFC3339Nano),
		nullableString(e.Error),
	)
	if err != nil {
		return fmt.Errorf("insert execution: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. A limit <= 0 returns all.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT id, run_id, ticket_id, title, priority, outcome, exit_code, duration_ms, started_at, error
        FROM executions ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query executions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			durationMS int64
			startedAt  string
			errText    sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.RunID, &e.TicketID, &e.Title, &e.Priority, &e.Outcome,
			&e.ExitCode, &durationMS, &startedAt, &errText); err != nil {
			return nil, fmt.Errorf("scan execution: %w", err)
		}
		e.Duration = time.Duration(durationMS) * time.Millisecond
		if ts, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
			e.StartedAt = ts
		}
		e.Error = errText.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune keeps the newest max entries and deletes the rest. A max <= 0 keeps
// everything. It returns the number of deleted rows.
func (s *Store) Prune(ctx context.Context, max int) (int64, error) {
	if max <= 0 {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM executions WHERE id NOT IN (SELECT id FROM executions ORDER BY id DESC LIMIT ?)`, max)
	if err != nil {
		return 0, fmt.Errorf("prune executions: %w", err)
	}
	return res.RowsAffected()
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

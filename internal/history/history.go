// Package history keeps a local SQLite log of pipeline runs.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	applog "github.com/ivlev/infographic2gif/internal/log"

	_ "modernc.org/sqlite"
)

const schemaVersion = 1

// Fixed-width so started_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Run is one pipeline execution.
type Run struct {
	ID        string
	Input     string
	Mode      string
	Ratio     string
	Output    string
	PlanPath  string
	SizeBytes int64
	Elements  int
	Duration  time.Duration
	Status    string // "ok" or "failed"
	Error     string
	StartedAt time.Time
}

// Store is an open history database.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates the database file and schema if needed.
func Open(path string) (*Store, error) {
	l := applog.WithOperation(applog.WithComponent("history"), "open").With(slog.String("path", path))
	if path == "" {
		return nil, errors.New("history path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Batch workers share one connection; sqlite serialises writers anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure schema failed", slog.Any("err", err))
		return nil, err
	}

	l.Debug("history ready")
	return &Store{db: db, path: path}, nil
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			input       TEXT NOT NULL,
			mode        TEXT NOT NULL,
			ratio       TEXT NOT NULL,
			output      TEXT,
			plan_path   TEXT,
			size_bytes  INTEGER NOT NULL DEFAULT 0,
			elements    INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			status      TEXT NOT NULL,
			error       TEXT,
			started_at  TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS runs_started_idx ON runs(started_at);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO meta(key, value) VALUES('schema', ?) ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		fmt.Sprint(schemaVersion))
	if err != nil {
		return fmt.Errorf("write schema version: %w", err)
	}
	return nil
}

// Path is the database file location.
func (s *Store) Path() string { return s.path }

// Record inserts or replaces a run.
func (s *Store) Record(ctx context.Context, r Run) error {
	if r.ID == "" {
		return errors.New("run id is required")
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}
	if r.Status == "" {
		r.Status = "ok"
	}
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO runs
		(id, input, mode, ratio, output, plan_path, size_bytes, elements, duration_ms, status, error, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Input, r.Mode, r.Ratio, r.Output, r.PlanPath, r.SizeBytes, r.Elements,
		r.Duration.Milliseconds(), r.Status, r.Error, r.StartedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("record run %s: %w", r.ID, err)
	}
	return nil
}

// Recent returns up to n runs, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Run, error) {
	if n <= 0 {
		n = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, input, mode, ratio, output, plan_path, size_bytes,
		elements, duration_ms, status, error, started_at
		FROM runs ORDER BY started_at DESC, id LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r                 Run
			output, plan, msg sql.NullString
			ms                int64
			started           string
		)
		if err := rows.Scan(&r.ID, &r.Input, &r.Mode, &r.Ratio, &output, &plan, &r.SizeBytes,
			&r.Elements, &ms, &r.Status, &msg, &started); err != nil {
			return nil, err
		}
		r.Output, r.PlanPath, r.Error = output.String, plan.String, msg.String
		r.Duration = time.Duration(ms) * time.Millisecond
		if t, err := time.Parse(timeLayout, started); err == nil {
			r.StartedAt = t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

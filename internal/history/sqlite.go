package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL UNIQUE,
    created_at INTEGER NOT NULL,
    mode TEXT NOT NULL CHECK (mode IN ('edit', 'generate')),
    provider TEXT NOT NULL,
    model TEXT NOT NULL,
    prompt TEXT NOT NULL,
    input_path TEXT,
    output_path TEXT,
    status TEXT NOT NULL,
    http_status INTEGER DEFAULT 0,
    error TEXT,
    duration_ms INTEGER DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);
`

// NewSQLiteStore opens (creating if needed) the history database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Record inserts a run and sets its ID. RunID and CreatedAt are filled in
// when empty.
func (s *SQLiteStore) Record(ctx context.Context, run *Run) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	if run.RunID == "" {
		run.RunID = uuid.NewString()
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (run_id, created_at, mode, provider, model, prompt, input_path, output_path, status, http_status, error, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.CreatedAt.UnixMilli(), string(run.Mode), run.Provider, run.Model, run.Prompt,
		run.InputPath, run.OutputPath, string(run.Status), run.HTTPStatus, run.Error,
		run.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("get run id: %w", err)
	}
	run.ID = id
	return nil
}

// List returns the most recent runs, newest first. limit <= 0 means 20.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, created_at, mode, provider, model, prompt,
		       COALESCE(input_path, ''), COALESCE(output_path, ''), status,
		       http_status, COALESCE(error, ''), duration_ms
		FROM runs
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r          Run
			createdMs  int64
			mode       string
			status     string
			durationMs int64
		)
		if err := rows.Scan(&r.ID, &r.RunID, &createdMs, &mode, &r.Provider, &r.Model, &r.Prompt,
			&r.InputPath, &r.OutputPath, &status, &r.HTTPStatus, &r.Error, &durationMs); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.CreatedAt = time.UnixMilli(createdMs)
		r.Mode = Mode(mode)
		r.Status = Status(status)
		r.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

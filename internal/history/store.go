package history

import (
	"context"
	"time"
)

// Status is the outcome of a run.
type Status string

const (
	StatusOK       Status = "ok"
	StatusNoData   Status = "no_data"
	StatusAPIError Status = "api_error"
	StatusError    Status = "error"
)

// Mode distinguishes edits from generations.
type Mode string

const (
	ModeEdit     Mode = "edit"
	ModeGenerate Mode = "generate"
)

// Run is one recorded image request.
type Run struct {
	ID         int64
	RunID      string // UUID, stable across databases
	CreatedAt  time.Time
	Mode       Mode
	Provider   string
	Model      string
	Prompt     string
	InputPath  string
	OutputPath string
	Status     Status
	HTTPStatus int
	Error      string
	Duration   time.Duration
}

// Store records and lists runs.
type Store interface {
	Record(ctx context.Context, run *Run) error
	List(ctx context.Context, limit int) ([]Run, error)
	Close() error
}

// NewStore opens the SQLite store at path, or a no-op store when disabled.
func NewStore(enabled bool, path string) (Store, error) {
	if !enabled {
		return NoopStore{}, nil
	}
	return NewSQLiteStore(path)
}

// NoopStore discards everything.
type NoopStore struct{}

func (NoopStore) Record(context.Context, *Run) error {
	return nil
}

func (NoopStore) List(context.Context, int) ([]Run, error) {
	return nil, nil
}

func (NoopStore) Close() error {
	return nil
}

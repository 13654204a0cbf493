// Package store persists pipeline run records so classify, train, and
// predict invocations stay auditable. Two backends exist: SQLite for
// single-machine use and Postgres for shared deployments.
package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rotisserie/eris"

	"github.com/DylanKirbs/BiomeClassification/internal/koppen"
)

// RunKind names the pipeline stage a run executed.
type RunKind string

const (
	RunClassify RunKind = "classify"
	RunTrain    RunKind = "train"
	RunPredict  RunKind = "predict"
)

// RunStatus tracks a run through its lifecycle.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// ErrRunNotFound marks lookups and updates against unknown run IDs.
var ErrRunNotFound = eris.New("store: run not found")

// RunSummary captures the outcome of a completed run.
type RunSummary struct {
	CellsVisited    int64                  `json:"cells_visited"`
	CellsClassified int64                  `json:"cells_classified"`
	ClassCounts     map[koppen.Label]int64 `json:"class_counts,omitempty"`
	ModelPath       string                 `json:"model_path,omitempty"`
	Error           string                 `json:"error,omitempty"`
}

// Run is one pipeline invocation.
type Run struct {
	ID        string      `json:"id"`
	Kind      RunKind     `json:"kind"`
	GridName  string      `json:"grid_name"`
	Status    RunStatus   `json:"status"`
	Summary   *RunSummary `json:"summary,omitempty"`
	CreatedAt int64       `json:"created_at"` // unix seconds, UTC
	UpdatedAt int64       `json:"updated_at"`
}

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Kind     RunKind   `json:"kind,omitempty"`
	Status   RunStatus `json:"status,omitempty"`
	GridName string    `json:"grid_name,omitempty"`
	Limit    int       `json:"limit,omitempty"`
	Offset   int       `json:"offset,omitempty"`
}

// Store defines the run persistence interface.
type Store interface {
	CreateRun(ctx context.Context, kind RunKind, gridName string) (*Run, error)
	CompleteRun(ctx context.Context, runID string, summary *RunSummary) error
	FailRun(ctx context.Context, runID string, message string) error
	GetRun(ctx context.Context, runID string) (*Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]Run, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Pool is the subset of pgxpool.Pool the Postgres backend uses; pgxmock
// implements it for tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// Package store persists run history for fill runs. Two backends
// implement the same interface: SQLite for local single-user setups and
// Postgres for shared deployments.
package store

import (
	"context"
	"time"

	"github.com/sells-group/planfill-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status       model.RunStatus `json:"status,omitempty"`
	Source       string          `json:"source,omitempty"`
	CreatedAfter time.Time       `json:"created_after,omitempty"`
	Limit        int             `json:"limit,omitempty"`
	Offset       int             `json:"offset,omitempty"`
}

// Store defines the run-history persistence interface. A run is created
// when processing starts and finished exactly once, with CompleteRun or
// FailRun.
type Store interface {
	// CreateRun persists a new run. The seed carries source, input, the
	// configuration source labels, and document/prompt counts; the store
	// assigns the id, the running status, and the timestamps.
	CreateRun(ctx context.Context, seed model.Run) (*model.Run, error)
	// CompleteRun marks a run complete and records its miss count and
	// output location.
	CompleteRun(ctx context.Context, runID string, misses int, outputPath string) error
	// FailRun marks a run failed with the given message.
	FailRun(ctx context.Context, runID string, message string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Package store persists completed simulation runs so they can be listed,
// replayed, and re-analyzed after the process that produced them is gone.
package store

import (
	"context"
	"time"

	"github.com/web4labs/trustsim/internal/engine"
	"github.com/web4labs/trustsim/internal/models"
)

// RunKind distinguishes the two simulation variants.
type RunKind string

const (
	RunKindEngine  RunKind = "engine"
	RunKindNetwork RunKind = "network"
)

// Run is the stored metadata of a completed simulation.
type Run struct {
	ID        string    `json:"id"`
	Kind      RunKind   `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
	Seed      int64     `json:"seed"`

	// Summary is present for engine runs only.
	Summary *engine.Summary `json:"summary,omitempty"`
}

// RunStore defines persistence for simulation runs and their detected
// moments.
type RunStore interface {
	// SaveEngineRun persists a single-agent result and returns its run ID.
	SaveEngineRun(ctx context.Context, result engine.Result) (string, error)

	// SaveNetworkRun persists a network run's snapshots and returns its
	// run ID.
	SaveNetworkRun(ctx context.Context, seed int64, snapshots []models.TickSnapshot) (string, error)

	// GetRun returns a run's metadata, or an error if the ID is unknown.
	GetRun(ctx context.Context, id string) (*Run, error)

	// ListRuns returns all stored runs, newest first.
	ListRuns(ctx context.Context) ([]Run, error)

	// LoadLives returns an engine run's life records in life order.
	LoadLives(ctx context.Context, runID string) ([]models.Life, error)

	// LoadSnapshots returns a network run's snapshots in tick order.
	LoadSnapshots(ctx context.Context, runID string) ([]models.TickSnapshot, error)

	// SaveMoments replaces the stored moments for a run, preserving their
	// ranked order.
	SaveMoments(ctx context.Context, runID string, moments []models.Moment) error

	// LoadMoments returns a run's moments in their stored rank order.
	LoadMoments(ctx context.Context, runID string) ([]models.Moment, error)

	Close() error
}

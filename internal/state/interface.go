package state

import (
	"context"
	"io"
	"time"

	"github.com/ShayCichocki/learnlab/pkg/models"
)

// RunStore handles run persistence.
type RunStore interface {
	CreateRun(r *Run) error
	FinishRun(id string, status RunStatus, at time.Time) error
	GetRun(id string) (*Run, error)
	ListRuns(limit int) ([]Run, error)
	ListRunsByStatus(status RunStatus) ([]Run, error)
}

// TrialStore handles trial persistence.
type TrialStore interface {
	InsertTrial(ctx context.Context, runID string, t models.TrialResult) error
	ListTrials(runID string) ([]models.TrialResult, error)
	Summaries(runID string) ([]TrialSummary, error)
}

// Migrator handles database schema migrations.
type Migrator interface {
	// Migrate applies all pending schema migrations.
	Migrate() error
}

// StateStore is the full benchmark history backend.
type StateStore interface {
	io.Closer
	Migrator
	RunStore
	TrialStore
}

// Compile-time verification that DB implements all interfaces.
var (
	_ StateStore = (*DB)(nil)
	_ Migrator   = (*DB)(nil)
	_ RunStore   = (*DB)(nil)
	_ TrialStore = (*DB)(nil)
)

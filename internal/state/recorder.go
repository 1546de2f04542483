package state

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/ShayCichocki/learnlab/pkg/models"
)

// RunRecorder stores the trials of one run as the harness reports them.
type RunRecorder struct {
	db  TrialStore
	run *Run
}

// RunConfig describes a run being started.
type RunConfig struct {
	Kind     RunKind
	Learners []string
	Repeat   int
	Cache    bool
	Seed     int64
}

// StartRun creates a running run and returns a recorder for its trials.
func StartRun(db RunStore, trials TrialStore, cfg RunConfig) (*RunRecorder, error) {
	r := &Run{
		ID:        uuid.New().String(),
		Kind:      cfg.Kind,
		Learners:  cfg.Learners,
		Repeat:    cfg.Repeat,
		Cache:     cfg.Cache,
		Seed:      cfg.Seed,
		PID:       os.Getpid(),
		StartedAt: time.Now(),
		Status:    RunRunning,
	}
	if err := db.CreateRun(r); err != nil {
		return nil, err
	}
	return &RunRecorder{db: trials, run: r}, nil
}

// ID returns the run ID.
func (r *RunRecorder) ID() string {
	return r.run.ID
}

// RecordTrial stores one trial result.
func (r *RunRecorder) RecordTrial(ctx context.Context, t models.TrialResult) error {
	return r.db.InsertTrial(ctx, r.run.ID, t)
}

// Finish marks the run completed, or failed when err is non-nil.
func (r *RunRecorder) Finish(db RunStore, err error) error {
	status := RunCompleted
	if err != nil {
		status = RunFailed
	}
	if ferr := db.FinishRun(r.run.ID, status, time.Now()); ferr != nil {
		return fmt.Errorf("finish run %s: %w", r.run.ID, ferr)
	}
	r.run.Status = status
	return nil
}

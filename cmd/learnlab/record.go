package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"

	"github.com/ShayCichocki/learnlab/internal/bench"
	"github.com/ShayCichocki/learnlab/internal/state"
)

// runHistory stores one benchmark run in the state database.
type runHistory struct {
	db  *state.DB
	rec *state.RunRecorder
}

// startHistory opens the state database and starts a run. It returns nil
// when history is disabled.
func startHistory(rc state.RunConfig) (*runHistory, error) {
	if !cfg.State.Enabled {
		return nil, nil
	}
	db, err := state.OpenMigrated(cfg.State.DBPath)
	if err != nil {
		return nil, err
	}
	if _, err := state.NewRecoveryManager(db).MarkInterrupted(); err != nil {
		debugLogger.Log("[cli] marking interrupted runs failed: %v", err)
	}
	rec, err := state.StartRun(db, db, rc)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("start run: %w", err)
	}
	debugLogger.Log("[cli] recording run %s", rec.ID())
	return &runHistory{db: db, rec: rec}, nil
}

// sink returns the trial sink of the run, or nil without history.
func (h *runHistory) sink() bench.TrialSink {
	if h == nil {
		return nil
	}
	return h.rec
}

// finish closes the run with the outcome of the benchmark.
func (h *runHistory) finish(runErr error) {
	if h == nil {
		return
	}
	defer h.db.Close()

	var err error
	if errors.Is(runErr, context.Canceled) {
		err = h.db.FinishRun(h.rec.ID(), state.RunInterrupted, time.Now())
	} else {
		err = h.rec.Finish(h.db, runErr)
	}
	if err != nil {
		printStatus("!", fmt.Sprintf("Could not record run: %v", err), color.FgYellow)
		return
	}
	printStatus("✓", "Recorded as run "+h.rec.ID(), color.FgGreen)
}

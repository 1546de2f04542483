package state

import (
	"errors"
	"fmt"
	"log"
	"os"
	"syscall"
	"time"
)

// InterruptedRun is a run left in the running state by a process that no
// longer exists.
type InterruptedRun struct {
	RunID     string
	Kind      RunKind
	StartedAt time.Time
	PID       int
	Trials    int
}

// RecoveryManager detects runs whose process died before finishing.
type RecoveryManager struct {
	db *DB
	// alive reports whether a process is still running.
	alive func(pid int) bool
}

// NewRecoveryManager creates a new RecoveryManager with the given database.
func NewRecoveryManager(db *DB) *RecoveryManager {
	return &RecoveryManager{db: db, alive: isProcessAlive}
}

// CheckForInterrupted lists the running runs whose process is gone.
func (rm *RecoveryManager) CheckForInterrupted() ([]InterruptedRun, error) {
	runs, err := rm.db.ListRunsByStatus(RunRunning)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	var out []InterruptedRun
	for _, r := range runs {
		if r.PID == os.Getpid() || rm.alive(r.PID) {
			continue
		}
		var trials int
		if err := rm.db.QueryRow("SELECT COUNT(*) FROM trials WHERE run_id = ?", r.ID).Scan(&trials); err != nil {
			return nil, fmt.Errorf("count trials: %w", err)
		}
		out = append(out, InterruptedRun{
			RunID:     r.ID,
			Kind:      r.Kind,
			StartedAt: r.StartedAt,
			PID:       r.PID,
			Trials:    trials,
		})
	}
	return out, nil
}

// MarkInterrupted moves every interrupted run to RunInterrupted and
// returns them.
func (rm *RecoveryManager) MarkInterrupted() ([]InterruptedRun, error) {
	runs, err := rm.CheckForInterrupted()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	marked := runs[:0]
	for _, r := range runs {
		err := rm.db.FinishRun(r.RunID, RunInterrupted, now)
		if errors.Is(err, ErrRunFinished) {
			// Finished between the check and the update.
			continue
		}
		if err != nil {
			return nil, err
		}
		marked = append(marked, r)
		log.Printf("[state] run %s (pid %d) was interrupted after %d trials", r.RunID, r.PID, r.Trials)
	}
	return marked, nil
}

// isProcessAlive checks if a process with the given PID is still running.
func isProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// Send signal 0 to check if process exists
	err = process.Signal(syscall.Signal(0))
	return err == nil
}

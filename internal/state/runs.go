package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ShayCichocki/learnlab/internal/logging"
	"github.com/ShayCichocki/learnlab/pkg/models"
)

// ErrRunFinished is returned when finishing a run that already has a
// final status.
var ErrRunFinished = errors.New("run already finished")

// RunStatus represents the status of a benchmark run.
type RunStatus string

const (
	RunRunning     RunStatus = "running"
	RunCompleted   RunStatus = "completed"
	RunFailed      RunStatus = "failed"
	RunInterrupted RunStatus = "interrupted"
)

// Terminal reports whether the status is final.
func (s RunStatus) Terminal() bool {
	return s == RunCompleted || s == RunFailed || s == RunInterrupted
}

// RunKind is the command that produced a run.
type RunKind string

const (
	RunBench  RunKind = "bench"
	RunSeries RunKind = "series"
)

// Run is one invocation of the benchmark harness.
type Run struct {
	ID         string     `json:"id"`
	Kind       RunKind    `json:"kind"`
	Learners   []string   `json:"learners"`
	Repeat     int        `json:"repeat"`
	Cache      bool       `json:"cache"`
	Seed       int64      `json:"seed"`
	PID        int        `json:"pid"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
	Status     RunStatus  `json:"status"`
}

// TrialSummary aggregates the trials of one learner side on one example.
type TrialSummary struct {
	Example     string           `json:"example"`
	Learner     string           `json:"learner"`
	Role        models.TrialRole `json:"role"`
	Trials      int              `json:"trials"`
	Failures    int              `json:"failures"`
	MeanMillis  float64          `json:"mean_millis"`
	MeanQueries float64          `json:"mean_queries"`
}

const runColumns = `id, kind, learners, repeat, cache, seed, pid, started_at, finished_at, status`

// Run CRUD operations

// CreateRun creates a new run.
func (db *DB) CreateRun(r *Run) error {
	_, err := db.Exec(`
		INSERT INTO runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL, ?)
	`, r.ID, string(r.Kind), strings.Join(r.Learners, ","), r.Repeat, boolToInt(r.Cache), r.Seed, r.PID,
		formatTime(r.StartedAt), string(r.Status))
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

// FinishRun sets the final status of a running run. The status check and
// the update share a transaction, so a run marked interrupted by another
// process is never overwritten.
func (db *DB) FinishRun(id string, status RunStatus, at time.Time) error {
	err := db.Transaction(func(tx *sql.Tx) error {
		var current string
		err := tx.QueryRow(`SELECT status FROM runs WHERE id = ?`, id).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("no run %s", id)
		}
		if err != nil {
			return err
		}
		if RunStatus(current).Terminal() {
			return fmt.Errorf("%w: %s is %s", ErrRunFinished, id, current)
		}
		_, err = tx.Exec(`
			UPDATE runs SET status = ?, finished_at = ? WHERE id = ?
		`, string(status), formatTime(at), id)
		return err
	})
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	logging.Debugf("[state] run %s %s", id, status)
	return nil
}

// GetRun retrieves a run by ID. Returns nil if it does not exist.
func (db *DB) GetRun(id string) (*Run, error) {
	row := db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return r, nil
}

// ListRuns lists runs, newest first. A non-positive limit lists all.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// ListRunsByStatus lists the runs with the given status, newest first.
func (db *DB) ListRunsByStatus(status RunStatus) ([]Run, error) {
	rows, err := db.Query(`
		SELECT `+runColumns+` FROM runs WHERE status = ? ORDER BY started_at DESC
	`, string(status))
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// DeleteRun deletes a run and its trials.
func (db *DB) DeleteRun(id string) error {
	result, err := db.Exec("DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("delete run: no run %s", id)
	}
	logging.Debugf("[state] deleted run %s", id)
	return nil
}

// Trial operations

// InsertTrial stores a trial of run.
func (db *DB) InsertTrial(ctx context.Context, runID string, t models.TrialResult) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO trials (run_id, example, learner, role, trial, elapsed_ns, rounds, queries, symbols, error, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, runID, t.Example, t.Learner, string(t.Role), t.Trial, int64(t.Elapsed), t.Rounds, t.Queries, t.Symbols, t.Err,
		formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("insert trial: %w", err)
	}
	return nil
}

// ListTrials returns the trials of a run in insertion order.
func (db *DB) ListTrials(runID string) ([]models.TrialResult, error) {
	rows, err := db.Query(`
		SELECT example, learner, role, trial, elapsed_ns, rounds, queries, symbols, error
		FROM trials WHERE run_id = ? ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list trials: %w", err)
	}
	defer rows.Close()

	var trials []models.TrialResult
	for rows.Next() {
		var t models.TrialResult
		var elapsed int64
		if err := rows.Scan(&t.Example, &t.Learner, &t.Role, &t.Trial, &elapsed, &t.Rounds, &t.Queries, &t.Symbols, &t.Err); err != nil {
			return nil, fmt.Errorf("scan trial: %w", err)
		}
		t.Elapsed = time.Duration(elapsed)
		trials = append(trials, t)
	}
	return trials, rows.Err()
}

// Summaries aggregates the trials of a run per example, learner and role.
// Means cover successful trials only and are zero when none succeeded.
func (db *DB) Summaries(runID string) ([]TrialSummary, error) {
	rows, err := db.Query(`
		SELECT example, learner, role, COUNT(*),
			SUM(CASE WHEN error != '' THEN 1 ELSE 0 END),
			COALESCE(AVG(CASE WHEN error = '' THEN elapsed_ns END), 0),
			COALESCE(AVG(CASE WHEN error = '' THEN queries END), 0)
		FROM trials WHERE run_id = ?
		GROUP BY example, learner, role
		ORDER BY MIN(id)
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("summarize trials: %w", err)
	}
	defer rows.Close()

	var out []TrialSummary
	for rows.Next() {
		var s TrialSummary
		var meanNanos float64
		if err := rows.Scan(&s.Example, &s.Learner, &s.Role, &s.Trials, &s.Failures, &meanNanos, &s.MeanQueries); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		s.MeanMillis = meanNanos / float64(time.Millisecond)
		out = append(out, s)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var r Run
	var learners, startedAt string
	var cache int
	var finishedAt sql.NullString
	if err := row.Scan(&r.ID, &r.Kind, &learners, &r.Repeat, &cache, &r.Seed, &r.PID, &startedAt, &finishedAt, &r.Status); err != nil {
		return nil, err
	}
	if learners != "" {
		r.Learners = strings.Split(learners, ",")
	}
	r.Cache = cache != 0
	r.StartedAt, _ = parseTime(startedAt)
	r.FinishedAt = parseNullableTime(finishedAt)
	return &r, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

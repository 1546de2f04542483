package models

import (
	"fmt"
	"time"
)

// FinalRoundLabel labels the round in which the hypothesis was accepted.
const FinalRoundLabel = "final"

// RoundLabel returns the display label for round r.
func RoundLabel(r int) string {
	return fmt.Sprintf("round %d", r)
}

// TrialRole says whether a trial ran the primary learner or its baseline.
type TrialRole string

const (
	// TrialRoleLearner is the learner under evaluation.
	TrialRoleLearner TrialRole = "learner"
	// TrialRoleBaseline is the reference implementation it is compared with.
	TrialRoleBaseline TrialRole = "baseline"
)

// Valid returns true if the role is a known value.
func (r TrialRole) Valid() bool {
	switch r {
	case TrialRoleLearner, TrialRoleBaseline:
		return true
	default:
		return false
	}
}

// TrialResult is the measurement of a single benchmark trial.
type TrialResult struct {
	// Learner is the name of the learner pair.
	Learner string `json:"learner"`
	// Role is which side of the pair ran.
	Role TrialRole `json:"role"`
	// Example is the name of the target.
	Example string `json:"example"`
	// Trial is the zero-based repetition index.
	Trial int `json:"trial"`
	// Elapsed is the time spent inside the learner.
	Elapsed time.Duration `json:"elapsed"`
	// Rounds is the number of refinement rounds.
	Rounds int `json:"rounds"`
	// Queries is the number of membership queries that reached the target.
	Queries int64 `json:"queries"`
	// Symbols is the total length of those queries.
	Symbols int64 `json:"symbols"`
	// Err is the failure message; empty on success.
	Err string `json:"error,omitempty"`
}

// Failed reports whether the trial did not complete.
func (t TrialResult) Failed() bool {
	return t.Err != ""
}

// ElapsedMillis returns the elapsed time in fractional milliseconds.
func (t TrialResult) ElapsedMillis() float64 {
	return float64(t.Elapsed) / float64(time.Millisecond)
}

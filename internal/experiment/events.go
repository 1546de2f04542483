package experiment

import (
	"time"

	"github.com/ShayCichocki/learnlab/pkg/models"
)

// EventType represents the type of loop event.
type EventType string

const (
	// EventStarted indicates the learner built its first hypothesis.
	EventStarted EventType = "started"
	// EventHypothesis indicates a hypothesis was checked and published.
	EventHypothesis EventType = "hypothesis"
	// EventRoundCompleted indicates a counterexample ended a round.
	EventRoundCompleted EventType = "round_completed"
	// EventCounterexampleRejected indicates a user-supplied word was rejected.
	EventCounterexampleRejected EventType = "counterexample_rejected"
	// EventRenderFailed indicates the presentation sink failed.
	EventRenderFailed EventType = "render_failed"
	// EventDone indicates the hypothesis is equivalent to the target.
	EventDone EventType = "done"
	// EventAborted indicates the user stopped the run.
	EventAborted EventType = "aborted"
)

// Event is emitted by the loop to report progress.
type Event struct {
	// Type is the kind of event.
	Type EventType
	// Round is the current round number.
	Round int
	// Label is the round label used in artifact titles.
	Label string
	// States is the size of the current hypothesis.
	States int
	// Counterexample is set for round_completed events.
	Counterexample models.Word
	// Queries is the number of membership queries so far.
	Queries int64
	// Message provides additional context about the event.
	Message string
	// Error contains error details for failure events.
	Error error
	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// Package learner defines the contract between the experiment loop and an
// active learning algorithm.
package learner

import (
	"errors"

	"github.com/ShayCichocki/learnlab/internal/automaton"
	"github.com/ShayCichocki/learnlab/internal/instrument"
	"github.com/ShayCichocki/learnlab/internal/oracle"
	"github.com/ShayCichocki/learnlab/internal/present"
	"github.com/ShayCichocki/learnlab/pkg/models"
)

var (
	// ErrAlreadyStarted is returned by a second call to Start.
	ErrAlreadyStarted = errors.New("learner already started")
	// ErrNotStarted is returned by Refine or Hypothesis before Start.
	ErrNotStarted = errors.New("learner not started")
	// ErrInvalidCounterexample is returned by Refine when the word does not
	// separate the hypothesis from the target.
	ErrInvalidCounterexample = errors.New("invalid counterexample")
)

// Learner infers an automaton from membership queries and counterexamples.
type Learner[D comparable] interface {
	// Start builds the first hypothesis. It may be called once.
	Start() error
	// Hypothesis returns a snapshot of the current hypothesis. Snapshots are
	// not changed by later refinements.
	Hypothesis() automaton.Automaton[D]
	// Refine incorporates a counterexample and builds a new hypothesis.
	Refine(ce models.Counterexample[D]) error
}

// Factory creates a learner over alphabet answering queries with mq. A
// factory may return nil when it does not apply to the target.
type Factory[D comparable] func(alphabet models.Alphabet, mq oracle.Oracle[D]) Learner[D]

// View extracts presentation artifacts from a learner. It is created
// together with the learner so it knows the learner's concrete type.
type View interface {
	// Hypothesis renders the current hypothesis.
	Hypothesis(title string) present.Artifact
	// Extras renders learner-specific data structures.
	Extras(round string) []present.Artifact
}

// Observable learners accept instrumentation observers.
type Observable interface {
	AddObserver(o instrument.Observer)
}

// Session is a learner bundled with how to present it.
type Session[D comparable] struct {
	Learner Learner[D]
	View    View
}

// Open creates a session over alphabet answering queries with mq.
type Open[D comparable] func(alphabet models.Alphabet, mq oracle.Oracle[D]) Session[D]

// Observe registers o with the session's learner if it is observable.
// It reports whether the observer was registered.
func (s Session[D]) Observe(o instrument.Observer) bool {
	obs, ok := s.Learner.(Observable)
	if !ok {
		return false
	}
	obs.AddObserver(o)
	return true
}

// Factory returns the learner part of open as a Factory.
func (open Open[D]) Factory() Factory[D] {
	if open == nil {
		return nil
	}
	return func(alphabet models.Alphabet, mq oracle.Oracle[D]) Learner[D] {
		return open(alphabet, mq).Learner
	}
}

// Plain opens sessions that present only the hypothesis graph.
func Plain[D comparable](f Factory[D]) Open[D] {
	return func(alphabet models.Alphabet, mq oracle.Oracle[D]) Session[D] {
		l := f(alphabet, mq)
		return Session[D]{Learner: l, View: HypothesisView[D]{Learner: l}}
	}
}

// HypothesisView presents the hypothesis graph and nothing else.
type HypothesisView[D comparable] struct {
	Learner Learner[D]
}

// Hypothesis implements View.
func (v HypothesisView[D]) Hypothesis(title string) present.Artifact {
	return present.GraphArtifact(title, v.Learner.Hypothesis().Graph())
}

// Extras implements View.
func (HypothesisView[D]) Extras(string) []present.Artifact {
	return nil
}

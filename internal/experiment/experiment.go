// Package experiment runs the active-learning loop: it alternates between
// the learner's hypothesis, an equivalence check against the target and
// refinement with a counterexample, until the hypothesis is equivalent to
// the target or the user stops.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ShayCichocki/learnlab/internal/automaton"
	"github.com/ShayCichocki/learnlab/internal/equivalence"
	"github.com/ShayCichocki/learnlab/internal/learner"
	"github.com/ShayCichocki/learnlab/internal/logging"
	"github.com/ShayCichocki/learnlab/internal/oracle"
	"github.com/ShayCichocki/learnlab/internal/present"
	"github.com/ShayCichocki/learnlab/pkg/models"
)

var (
	// ErrConsistencyViolation indicates the checker and the learner disagree
	// in a way the protocol does not allow.
	ErrConsistencyViolation = errors.New("consistency violation")
	// ErrAbortedByUser marks a run the user stopped. Run reports it through
	// Result.Aborted, never as an error.
	ErrAbortedByUser = errors.New("aborted by user")
	// ErrNotApplicable indicates the session factory produced no learner.
	ErrNotApplicable = errors.New("learner not applicable")
	// ErrRoundLimit indicates the run exceeded Options.MaxRounds.
	ErrRoundLimit = errors.New("round limit exceeded")
)

// Artifact titles.
const (
	QueriesTitle = "New queries"
)

// HypothesisTitle returns the title of the hypothesis artifact for label.
func HypothesisTitle(label string) string {
	return "Hypothesis (" + label + ")"
}

// Options configures a run.
type Options[D comparable] struct {
	// Target is the hidden automaton. Required.
	Target automaton.Automaton[D]
	// Checker finds separating words. Defaults to equivalence.Exact.
	Checker equivalence.Checker[D]
	// Interactive asks Prompter for counterexamples.
	Interactive bool
	// Prompter is required in interactive mode.
	Prompter Prompter
	// Notifier receives round summaries. Defaults to Prompter, if set.
	Notifier present.Notifier
	// Sink receives hypotheses and query lists. Nil publishes nothing.
	Sink present.Sink
	// OnSession is called with the session before Start, for example to
	// register instrumentation observers.
	OnSession func(learner.Session[D])
	// OnEvent receives loop events.
	OnEvent func(Event)
	// CounterOptions configure the query counter.
	CounterOptions []oracle.CounterOption
	// MaxRounds bounds the number of refinements; 0 means unbounded.
	MaxRounds int
	Logger    *logging.DebugLogger
}

// Result summarizes a run.
type Result[D comparable] struct {
	// Rounds is the number of refinements.
	Rounds int
	// Hypothesis is the last hypothesis.
	Hypothesis automaton.Automaton[D]
	// Aborted is set when the user stopped the run.
	Aborted bool
	// LearnerTime is the time spent inside Start and Refine.
	LearnerTime time.Duration
	// WallTime is the duration of the whole run.
	WallTime time.Duration
	Queries  int64
	Symbols  int64
}

type run[D comparable] struct {
	opts     Options[D]
	session  learner.Session[D]
	recorder *oracle.Recorder[D]
	counter  *oracle.Counter[D]
	checker  equivalence.Checker[D]
	notifier present.Notifier
}

// Run learns opts.Target with the learner opened by open. Membership
// queries go to mq through a query counter and a recorder.
func Run[D comparable](ctx context.Context, mq oracle.Oracle[D], open learner.Open[D], opts Options[D]) (*Result[D], error) {
	if opts.Target == nil {
		return nil, errors.New("run experiment: no target")
	}
	if opts.Interactive && opts.Prompter == nil {
		return nil, errors.New("run experiment: interactive mode needs a prompter")
	}
	r := &run[D]{opts: opts, checker: opts.Checker, notifier: opts.Notifier}
	if r.checker == nil {
		r.checker = equivalence.Exact[D]{}
	}
	if r.notifier == nil && opts.Prompter != nil {
		r.notifier = opts.Prompter
	}
	return r.execute(ctx, mq, open)
}

func (r *run[D]) execute(ctx context.Context, mq oracle.Oracle[D], open learner.Open[D]) (*Result[D], error) {
	began := time.Now()
	target := r.opts.Target
	alphabet := target.Alphabet()

	r.counter = oracle.NewCounter(mq, r.opts.CounterOptions...)
	r.recorder = oracle.NewRecorder[D](r.counter)
	r.session = open(alphabet, r.recorder)
	if r.session.Learner == nil {
		return nil, ErrNotApplicable
	}
	if r.session.View == nil {
		r.session.View = learner.HypothesisView[D]{Learner: r.session.Learner}
	}
	if r.opts.OnSession != nil {
		r.opts.OnSession(r.session)
	}

	res := &Result[D]{}
	finish := func() *Result[D] {
		res.WallTime = time.Since(began)
		res.Queries = r.counter.Count()
		res.Symbols = r.counter.Symbols()
		return res
	}

	if err := r.timed(res, r.session.Learner.Start); err != nil {
		return nil, fmt.Errorf("start learner: %w", err)
	}
	r.emit(Event{Type: EventStarted, Label: models.RoundLabel(0)})

	for round := 0; ; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hyp := r.session.Learner.Hypothesis()
		res.Hypothesis = hyp
		res.Rounds = round

		w, found, err := r.checker.FindSeparatingWord(target, hyp, alphabet)
		if err != nil {
			return nil, fmt.Errorf("check round %d: %w", round, err)
		}
		if !found {
			r.publish(ctx, round, models.FinalRoundLabel)
			r.emit(Event{Type: EventDone, Round: round, Label: models.FinalRoundLabel, States: hyp.Size()})
			r.opts.Logger.Log("[experiment] done after %d rounds, %d states, %d queries", round, hyp.Size(), r.counter.Count())
			return finish(), nil
		}
		label := models.RoundLabel(round)
		r.publish(ctx, round, label)
		r.emit(Event{Type: EventHypothesis, Round: round, Label: label, States: hyp.Size()})

		if r.opts.MaxRounds > 0 && round >= r.opts.MaxRounds {
			return nil, fmt.Errorf("%w: %d", ErrRoundLimit, r.opts.MaxRounds)
		}

		ce, ok, err := r.resolve(ctx, hyp, w)
		if err != nil {
			return nil, err
		}
		if !ok {
			r.emit(Event{Type: EventAborted, Round: round, Label: label, States: hyp.Size(), Error: ErrAbortedByUser})
			res.Aborted = true
			return finish(), nil
		}
		if !r.opts.Interactive && r.notifier != nil {
			r.notifier.Notify(fmt.Sprintf("Finished round %d, counterexample: %s", round, ce.Input))
		}
		r.emit(Event{Type: EventRoundCompleted, Round: round, Label: label, States: hyp.Size(), Counterexample: ce.Input})

		err = r.timed(res, func() error { return r.session.Learner.Refine(ce) })
		if errors.Is(err, learner.ErrInvalidCounterexample) {
			return nil, fmt.Errorf("%w: learner rejected %s in round %d: %w", ErrConsistencyViolation, ce.Input, round, err)
		}
		if err != nil {
			return nil, fmt.Errorf("refine round %d: %w", round, err)
		}
		if next := r.session.Learner.Hypothesis(); next.Output(ce.Input) != ce.Output {
			return nil, fmt.Errorf("%w: hypothesis still mispredicts %s after round %d", ErrConsistencyViolation, ce.Input, round)
		}
	}
}

// resolve returns the counterexample ending a round. ok is false when the
// user terminates.
func (r *run[D]) resolve(ctx context.Context, hyp automaton.Automaton[D], w models.Word) (models.Counterexample[D], bool, error) {
	target := r.opts.Target
	if !r.opts.Interactive {
		out := target.Output(w)
		if hyp.Output(w) == out {
			return models.Counterexample[D]{}, false, fmt.Errorf("%w: checker returned %s, on which hypothesis and target agree",
				ErrConsistencyViolation, w)
		}
		return models.Counterexample[D]{Input: w, Output: out}, true, nil
	}

	resolver := Resolver[D]{
		Prompter: r.opts.Prompter,
		OnReject: func(input string, err error) {
			r.emit(Event{Type: EventCounterexampleRejected, Message: input, Error: err})
		},
	}
	u, ok, err := resolver.Resolve(ctx, hyp, target, w)
	if err != nil || !ok {
		return models.Counterexample[D]{}, false, err
	}
	return models.Counterexample[D]{Input: u, Output: target.Output(u)}, true, nil
}

// publish shows the hypothesis, the view extras and the queries since the
// last publication. The queries are drained even without a sink.
func (r *run[D]) publish(ctx context.Context, round int, label string) {
	queries := r.recorder.FetchNew()
	if r.opts.Sink == nil {
		return
	}
	artifacts := []present.Artifact{r.session.View.Hypothesis(HypothesisTitle(label))}
	artifacts = append(artifacts, r.session.View.Extras(label)...)
	artifacts = append(artifacts, present.WordsArtifact(QueriesTitle, queries))

	if err := r.opts.Sink.Show(ctx, artifacts...); err != nil {
		log.Printf("[experiment] failed to render %s: %v", label, err)
		r.opts.Logger.Log("[experiment] render %s: %v", label, err)
		r.emit(Event{Type: EventRenderFailed, Round: round, Label: label, Error: err})
	}
}

func (r *run[D]) timed(res *Result[D], f func() error) error {
	start := time.Now()
	err := f()
	res.LearnerTime += time.Since(start)
	return err
}

func (r *run[D]) emit(ev Event) {
	if r.opts.OnEvent == nil {
		return
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	ev.Queries = r.counter.Count()
	r.opts.OnEvent(ev)
}

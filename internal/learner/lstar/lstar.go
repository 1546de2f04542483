// Package lstar implements Angluin-style learning with an observation table.
// Counterexamples are handled by adding their prefixes (classic), their
// suffixes (Maler-Pnueli) or one distinguishing suffix found by binary
// search (Rivest-Schapire).
package lstar

import (
	"fmt"

	"github.com/ShayCichocki/learnlab/internal/automaton"
	"github.com/ShayCichocki/learnlab/internal/learner"
	"github.com/ShayCichocki/learnlab/internal/logging"
	"github.com/ShayCichocki/learnlab/internal/oracle"
	"github.com/ShayCichocki/learnlab/pkg/models"
)

// Handler selects how counterexamples are added to the table.
type Handler string

const (
	// Classic adds every prefix of the counterexample as a short prefix.
	Classic Handler = "classic"
	// MalerPnueli adds every suffix of the counterexample as a column.
	MalerPnueli Handler = "maler-pnueli"
	// RivestSchapire adds a single distinguishing suffix.
	RivestSchapire Handler = "rivest-schapire"
)

// Valid returns true if the handler is a known value.
func (h Handler) Valid() bool {
	switch h {
	case Classic, MalerPnueli, RivestSchapire:
		return true
	default:
		return false
	}
}

// Learner is an observation-table learner.
type Learner[D comparable] struct {
	alphabet models.Alphabet
	mq       oracle.Oracle[D]
	model    automaton.Model[D]
	handler  Handler
	logger   *logging.DebugLogger

	table   *Table[D]
	hyp     automaton.Automaton[D]
	reps    []models.Word
	started bool
}

var _ learner.Learner[bool] = (*Learner[bool])(nil)

// Option configures a Learner.
type Option func(*options)

type options struct {
	handler Handler
	logger  *logging.DebugLogger
}

// WithHandler selects the counterexample handler. The default is Classic.
func WithHandler(h Handler) Option {
	return func(o *options) { o.handler = h }
}

// WithLogger sets the debug logger.
func WithLogger(l *logging.DebugLogger) Option {
	return func(o *options) { o.logger = l }
}

// New creates a learner for model over alphabet.
func New[D comparable](alphabet models.Alphabet, mq oracle.Oracle[D], model automaton.Model[D], opts ...Option) *Learner[D] {
	o := options{handler: Classic}
	for _, opt := range opts {
		opt(&o)
	}
	return &Learner[D]{
		alphabet: alphabet,
		mq:       mq,
		model:    model,
		handler:  o.handler,
		logger:   o.logger,
	}
}

// Factory returns a learner.Factory for the given handler.
func Factory[D comparable](model automaton.Model[D], h Handler) learner.Factory[D] {
	return func(alphabet models.Alphabet, mq oracle.Oracle[D]) learner.Learner[D] {
		return New(alphabet, mq, model, WithHandler(h))
	}
}

// Open returns a session factory presenting the observation table.
func Open[D comparable](model automaton.Model[D], h Handler) learner.Open[D] {
	return func(alphabet models.Alphabet, mq oracle.Oracle[D]) learner.Session[D] {
		l := New(alphabet, mq, model, WithHandler(h))
		return learner.Session[D]{Learner: l, View: View[D]{Learner: l}}
	}
}

// Start implements learner.Learner.
func (l *Learner[D]) Start() error {
	if l.started {
		return learner.ErrAlreadyStarted
	}
	l.started = true
	l.table = newTable[D](l.alphabet, l.model.LocalSuffixes(l.alphabet))
	if err := l.table.fill(l.mq); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	return l.stabilize()
}

// Hypothesis implements learner.Learner. It returns nil before Start.
func (l *Learner[D]) Hypothesis() automaton.Automaton[D] {
	return l.hyp
}

// Table returns the observation table, or nil before Start.
func (l *Learner[D]) Table() *Table[D] {
	return l.table
}

// Refine implements learner.Learner. The counterexample is processed until
// the hypothesis agrees with it.
func (l *Learner[D]) Refine(ce models.Counterexample[D]) error {
	if !l.started {
		return learner.ErrNotStarted
	}
	if !l.alphabet.Covers(ce.Input) {
		return fmt.Errorf("%w: %s uses symbols outside %s", learner.ErrInvalidCounterexample, ce.Input, l.alphabet)
	}
	if l.hyp.Output(ce.Input) == ce.Output {
		return fmt.Errorf("%w: hypothesis already produces %s on %s",
			learner.ErrInvalidCounterexample, l.model.Format(ce.Output), ce.Input)
	}

	for l.hyp.Output(ce.Input) != ce.Output {
		before := l.hyp.Size()
		if err := l.handle(ce); err != nil {
			return err
		}
		if err := l.stabilize(); err != nil {
			return err
		}
		if l.hyp.Size() <= before {
			return fmt.Errorf("%w: %s does not contradict the membership oracle",
				learner.ErrInvalidCounterexample, ce.Input)
		}
		l.logger.Log("[lstar] refined with %s: %d states", ce.Input, l.hyp.Size())
	}
	return nil
}

func (l *Learner[D]) handle(ce models.Counterexample[D]) error {
	w := ce.Input
	switch l.handler {
	case MalerPnueli:
		for i := 0; i < w.Len(); i++ {
			l.table.addSuffix(w.Suffix(i))
		}
	case RivestSchapire:
		v, err := l.distinguishingSuffix(ce)
		if err != nil {
			return err
		}
		l.table.addSuffix(v)
	default:
		for i := 1; i <= w.Len(); i++ {
			l.table.addShort(w.Prefix(i))
		}
	}
	if err := l.table.fill(l.mq); err != nil {
		return fmt.Errorf("refine: %w", err)
	}
	return nil
}

// stabilize makes the table closed (and consistent for Classic), then
// rebuilds the hypothesis.
func (l *Learner[D]) stabilize() error {
	for {
		if l.table.close() {
			if err := l.table.fill(l.mq); err != nil {
				return fmt.Errorf("close table: %w", err)
			}
			continue
		}
		if l.handler != Classic {
			break
		}
		suffix, found := l.table.findInconsistency()
		if !found {
			break
		}
		l.table.addSuffix(suffix)
		if err := l.table.fill(l.mq); err != nil {
			return fmt.Errorf("make table consistent: %w", err)
		}
	}
	return l.build()
}

func (l *Learner[D]) build() error {
	t := l.table
	stateOf := make(map[string]int)
	var reps []models.Word
	for _, s := range t.short {
		key := t.rowKey(s)
		if _, ok := stateOf[key]; !ok {
			stateOf[key] = len(reps)
			reps = append(reps, s)
		}
	}

	nLocal := len(l.model.LocalSuffixes(l.alphabet))
	succ := make([][]int, len(reps))
	local := make([][]D, len(reps))
	for s, rep := range reps {
		succ[s] = make([]int, l.alphabet.Size())
		for i := range succ[s] {
			succ[s][i] = stateOf[t.rowKey(rep.Append(l.alphabet.Symbol(i)))]
		}
		local[s] = t.rows[rep][:nLocal]
	}

	hyp, err := l.model.Build(l.alphabet, 0, succ, local)
	if err != nil {
		return fmt.Errorf("build hypothesis: %w", err)
	}
	l.hyp = hyp
	l.reps = reps
	return nil
}

// distinguishingSuffix performs the Rivest-Schapire analysis. With u_i the
// first i symbols of w, q_i the hypothesis state reached by u_i, r_i its
// representative and v_i the rest of w, it finds i with
// MQ(r_i·v_i) != hyp(q_i, v_i) and MQ(r_{i+1}·v_{i+1}) == hyp(q_{i+1}, v_{i+1})
// and returns v_{i+1}.
func (l *Learner[D]) distinguishingSuffix(ce models.Counterexample[D]) (models.Word, error) {
	w := ce.Input
	agrees := func(i int) (bool, error) {
		u, v := w.Prefix(i), w.Suffix(i)
		q := automaton.Reach(l.hyp, l.hyp.Initial(), u)
		out, err := oracle.Answer(l.mq, l.reps[q], v)
		if err != nil {
			return false, fmt.Errorf("analyze counterexample: %w", err)
		}
		return out == l.hyp.OutputFrom(q, v), nil
	}

	ok, err := agrees(0)
	if err != nil {
		return models.Word{}, err
	}
	if ok {
		return models.Word{}, fmt.Errorf("%w: membership oracle agrees with hypothesis on %s",
			learner.ErrInvalidCounterexample, w)
	}

	lo, hi := 0, w.Len()
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		ok, err := agrees(mid)
		if err != nil {
			return models.Word{}, err
		}
		if ok {
			hi = mid
		} else {
			lo = mid
		}
	}
	return w.Suffix(lo + 1), nil
}

// Package dt implements a discrimination-tree learner. States are leaves of
// a tree of separating suffixes; counterexamples are analyzed by binary
// search and split one leaf at a time. Discriminators introduced by a split
// are temporary and are replaced by a one-symbol extension of an existing
// final discriminator when one separates the successors of the two states.
//
// The learner emits instrument events around every split, every detected
// inconsistency and every discriminator replacement.
package dt

import (
	"fmt"

	"github.com/ShayCichocki/learnlab/internal/automaton"
	"github.com/ShayCichocki/learnlab/internal/instrument"
	"github.com/ShayCichocki/learnlab/internal/learner"
	"github.com/ShayCichocki/learnlab/internal/logging"
	"github.com/ShayCichocki/learnlab/internal/oracle"
	"github.com/ShayCichocki/learnlab/pkg/models"
)

// Learner is a discrimination-tree learner.
type Learner[D comparable] struct {
	alphabet models.Alphabet
	mq       oracle.Oracle[D]
	model    automaton.Model[D]
	local    []models.Word
	logger   *logging.DebugLogger
	events   instrument.Dispatcher

	root    *Node[D]
	states  []*State[D]
	hyp     automaton.Automaton[D]
	started bool
}

var (
	_ learner.Learner[bool] = (*Learner[bool])(nil)
	_ learner.Observable    = (*Learner[bool])(nil)
)

// Option configures a Learner.
type Option func(*options)

type options struct {
	logger    *logging.DebugLogger
	observers []instrument.Observer
}

// WithLogger sets the debug logger.
func WithLogger(l *logging.DebugLogger) Option {
	return func(o *options) { o.logger = l }
}

// WithObserver registers an observer at construction.
func WithObserver(obs instrument.Observer) Option {
	return func(o *options) { o.observers = append(o.observers, obs) }
}

// New creates a learner for model over alphabet.
func New[D comparable](alphabet models.Alphabet, mq oracle.Oracle[D], model automaton.Model[D], opts ...Option) *Learner[D] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	l := &Learner[D]{
		alphabet: alphabet,
		mq:       mq,
		model:    model,
		local:    model.LocalSuffixes(alphabet),
		logger:   o.logger,
	}
	for _, obs := range o.observers {
		l.events.Register(obs)
	}
	return l
}

// Factory returns a learner.Factory.
func Factory[D comparable](model automaton.Model[D]) learner.Factory[D] {
	return func(alphabet models.Alphabet, mq oracle.Oracle[D]) learner.Learner[D] {
		return New(alphabet, mq, model)
	}
}

// Open returns a session factory presenting the discrimination tree.
func Open[D comparable](model automaton.Model[D]) learner.Open[D] {
	return func(alphabet models.Alphabet, mq oracle.Oracle[D]) learner.Session[D] {
		l := New(alphabet, mq, model)
		return learner.Session[D]{Learner: l, View: View[D]{Learner: l}}
	}
}

// AddObserver implements learner.Observable.
func (l *Learner[D]) AddObserver(o instrument.Observer) {
	l.events.Register(o)
}

// Root returns the root of the discrimination tree, or nil before Start.
func (l *Learner[D]) Root() *Node[D] { return l.root }

// States returns the hypothesis states in creation order.
func (l *Learner[D]) States() []*State[D] { return l.states }

// Hypothesis implements learner.Learner. It returns nil before Start.
func (l *Learner[D]) Hypothesis() automaton.Automaton[D] { return l.hyp }

// Start implements learner.Learner.
func (l *Learner[D]) Start() error {
	if l.started {
		return learner.ErrAlreadyStarted
	}
	l.started = true
	l.root = &Node[D]{disc: l.local[0], level: 0}

	leaf, err := l.sift(l.root, models.Word{})
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}
	if _, err := l.newState(models.Word{}, leaf); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	if err := l.closeTransitions(); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	return l.rebuild()
}

// Refine implements learner.Learner. The counterexample is processed until
// the hypothesis agrees with it; afterwards inconsistencies between the
// tree and the hypothesis are resolved.
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
		if err := l.refineOnce(ce.Input); err != nil {
			return err
		}
	}
	return l.ensureConsistency()
}

// refineOnce splits one state using w and rebuilds the hypothesis.
func (l *Learner[D]) refineOnce(w models.Word) error {
	t, v, err := l.analyze(w)
	if err != nil {
		return err
	}
	if err := l.split(t, v); err != nil {
		return err
	}
	if err := l.closeTransitions(); err != nil {
		return fmt.Errorf("refine: %w", err)
	}
	if err := l.finalize(); err != nil {
		return err
	}
	return l.rebuild()
}

// analyze finds the transition whose target is misclassified and the
// suffix that proves it (Rivest-Schapire).
func (l *Learner[D]) analyze(w models.Word) (*Transition[D], models.Word, error) {
	agrees := func(i int) (bool, error) {
		q := l.stateAt(w.Prefix(i))
		v := w.Suffix(i)
		out, err := oracle.Answer(l.mq, q.access, v)
		if err != nil {
			return false, fmt.Errorf("analyze counterexample: %w", err)
		}
		return out == l.hyp.OutputFrom(q.id, v), nil
	}

	ok, err := agrees(0)
	if err != nil {
		return nil, models.Word{}, err
	}
	if ok {
		return nil, models.Word{}, fmt.Errorf("%w: membership oracle agrees with hypothesis on %s",
			learner.ErrInvalidCounterexample, w)
	}
	lo, hi := 0, w.Len()
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		ok, err := agrees(mid)
		if err != nil {
			return nil, models.Word{}, err
		}
		if ok {
			hi = mid
		} else {
			lo = mid
		}
	}

	src := l.stateAt(w.Prefix(lo))
	sym, _ := l.alphabet.Index(w.Symbol(lo))
	return src.trans[sym], w.Suffix(lo + 1), nil
}

// stateAt returns the hypothesis state reached by u.
func (l *Learner[D]) stateAt(u models.Word) *State[D] {
	return l.states[automaton.Reach(l.hyp, l.hyp.Initial(), u)]
}

// split gives the target of t a sibling: a new state reached by t,
// separated from the old target by v.
func (l *Learner[D]) split(t *Transition[D], v models.Word) error {
	if err := l.events.Emit(instrument.SplitEvent{Phase: instrument.Pre, Transition: t, Discriminator: v}); err != nil {
		return err
	}

	leaf := t.node
	old := leaf.state
	oldOut, err := oracle.Answer(l.mq, old.access, v)
	if err != nil {
		return fmt.Errorf("split: %w", err)
	}
	newOut, err := oracle.Answer(l.mq, t.AccessSequence(), v)
	if err != nil {
		return fmt.Errorf("split: %w", err)
	}
	if oldOut == newOut {
		return fmt.Errorf("split: %w: %s does not separate %s from %s",
			learner.ErrInvalidCounterexample, v, old.access, t.AccessSequence())
	}

	leaf.state = nil
	leaf.disc = v
	leaf.temporary = true
	oldLeaf := leaf.addChild(oldOut)
	oldLeaf.state = old
	old.leaf = oldLeaf
	newLeaf := leaf.addChild(newOut)

	s, err := l.newState(t.AccessSequence(), newLeaf)
	if err != nil {
		return fmt.Errorf("split: %w", err)
	}
	t.node = newLeaf
	t.tree = true
	l.logger.Log("[dt] split %s with %s: state %d", old.access, v, s.id)

	return l.events.Emit(instrument.SplitEvent{Phase: instrument.Post, Transition: t, Discriminator: v})
}

// newState creates a state at an empty leaf and queries its local outputs.
func (l *Learner[D]) newState(access models.Word, leaf *Node[D]) (*State[D], error) {
	s := &State[D]{id: len(l.states), access: access, leaf: leaf}
	batch := make([]*models.Query[D], len(l.local))
	for i, u := range l.local {
		batch[i] = models.NewQuery[D](access, u)
	}
	if err := l.mq.Process(batch); err != nil {
		return nil, err
	}
	for _, q := range batch {
		s.local = append(s.local, q.Output())
	}
	for i := 0; i < l.alphabet.Size(); i++ {
		s.trans = append(s.trans, &Transition[D]{source: s, symbol: l.alphabet.Symbol(i), node: l.root})
	}
	leaf.state = s
	l.states = append(l.states, s)
	return s, nil
}

// sift moves u down from n until it reaches a leaf, creating missing
// nodes on the way. A created leaf has no state yet.
func (l *Learner[D]) sift(n *Node[D], u models.Word) (*Node[D], error) {
	for n.inner() {
		out, err := oracle.Answer(l.mq, u, n.disc)
		if err != nil {
			return nil, err
		}
		c := n.child(out)
		if c == nil {
			c = n.addChild(out)
			if n.level >= 0 && n.level+1 < len(l.local) {
				c.level = n.level + 1
				c.disc = l.local[c.level]
			}
			if c.level < 0 {
				return c, nil
			}
		}
		n = c
	}
	return n, nil
}

// closeTransitions sifts every transition to a leaf. Transitions reaching
// a new leaf create the state of that leaf.
func (l *Learner[D]) closeTransitions() error {
	for i := 0; i < len(l.states); i++ {
		for _, t := range l.states[i].trans {
			if t.node.state != nil {
				continue
			}
			leaf, err := l.sift(t.node, t.AccessSequence())
			if err != nil {
				return err
			}
			t.node = leaf
			if leaf.state == nil {
				if _, err := l.newState(t.AccessSequence(), leaf); err != nil {
					return err
				}
				t.tree = true
			}
		}
	}
	return nil
}

// finalize replaces temporary discriminators of blocks with two leaves by
// a·d, where d is the final discriminator separating the a-successors.
func (l *Learner[D]) finalize() error {
	for {
		root, sp, ok := l.findSplitter()
		if !ok {
			return nil
		}
		if err := l.replaceDiscriminator(root, sp); err != nil {
			return err
		}
		if err := l.closeTransitions(); err != nil {
			return fmt.Errorf("finalize: %w", err)
		}
	}
}

func (l *Learner[D]) findSplitter() (*Node[D], instrument.Splitter, bool) {
	var blocks []*Node[D]
	var walk func(n *Node[D])
	walk = func(n *Node[D]) {
		if n.state != nil {
			return
		}
		if n.temporary && len(n.children) == 2 && n.children[0].state != nil && n.children[1].state != nil {
			blocks = append(blocks, n)
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(l.root)

	for _, b := range blocks {
		s1, s2 := b.children[0].state, b.children[1].state
		var best instrument.Splitter
		found := false
		for i := 0; i < l.alphabet.Size(); i++ {
			n1, n2 := s1.trans[i].node, s2.trans[i].node
			if n1 == n2 {
				continue
			}
			sep := lca(n1, n2)
			if sep.temporary {
				continue
			}
			disc := sep.disc.Prepend(l.alphabet.Symbol(i))
			if found && disc.Len() >= best.Discriminator.Len() {
				continue
			}
			best = instrument.Splitter{
				State1: s1, State2: s2,
				Symbol:        l.alphabet.Symbol(i),
				Discriminator: disc,
				SuccSeparator: sep,
			}
			found = true
		}
		if found {
			return b, best, true
		}
	}
	return nil, instrument.Splitter{}, false
}

// replaceDiscriminator installs the splitter's discriminator at root and
// re-sorts the two leaves. Transitions into the block are re-sifted.
func (l *Learner[D]) replaceDiscriminator(root *Node[D], sp instrument.Splitter) error {
	if err := l.events.Emit(instrument.FinalizeEvent{Phase: instrument.Pre, BlockRoot: root, Splitter: sp}); err != nil {
		return err
	}

	outcomes := make([]D, len(root.children))
	for i, c := range root.children {
		out, err := oracle.Answer(l.mq, c.state.access, sp.Discriminator)
		if err != nil {
			return fmt.Errorf("finalize: %w", err)
		}
		outcomes[i] = out
	}
	if outcomes[0] == outcomes[1] {
		return fmt.Errorf("finalize: %s does not separate the block of %s", sp.Discriminator, root.disc)
	}

	root.disc = sp.Discriminator
	root.temporary = false
	for i, c := range root.children {
		c.outcome = outcomes[i]
		root.outcomes[i] = outcomes[i]
	}
	for _, s := range l.states {
		for _, t := range s.trans {
			if root.ancestorOf(t.node) {
				t.node = root
			}
		}
	}
	l.logger.Log("[dt] finalized discriminator %s", sp.Discriminator)

	return l.events.Emit(instrument.FinalizeEvent{Phase: instrument.Post, BlockRoot: root, Splitter: sp})
}

// ensureConsistency resolves states whose hypothesis output on an
// ancestor's discriminator differs from the branch they are sorted into.
func (l *Learner[D]) ensureConsistency() error {
	for {
		s, node, outcome, ok := l.findInconsistency()
		if !ok {
			return nil
		}
		if err := l.events.Emit(instrument.ConsistencyEvent{State: s, Node: node, Outcome: outcome}); err != nil {
			return err
		}
		w := s.access.Concat(node.disc)
		l.logger.Log("[dt] inconsistency at %s on %s", s.access, node.disc)
		before := len(l.states)
		if err := l.refineOnce(w); err != nil {
			return err
		}
		if len(l.states) == before {
			return fmt.Errorf("ensure consistency: no progress on %s", w)
		}
	}
}

func (l *Learner[D]) findInconsistency() (*State[D], *Node[D], D, bool) {
	for _, s := range l.states {
		child := s.leaf
		for n := child.parent; n != nil; n = n.parent {
			if l.hyp.OutputFrom(s.id, n.disc) != child.outcome {
				return s, n, child.outcome, true
			}
			child = n
		}
	}
	var zero D
	return nil, nil, zero, false
}

func (l *Learner[D]) rebuild() error {
	succ := make([][]int, len(l.states))
	local := make([][]D, len(l.states))
	for i, s := range l.states {
		succ[i] = make([]int, len(s.trans))
		for a, t := range s.trans {
			succ[i][a] = t.node.state.id
		}
		local[i] = s.local
	}
	hyp, err := l.model.Build(l.alphabet, 0, succ, local)
	if err != nil {
		return fmt.Errorf("build hypothesis: %w", err)
	}
	l.hyp = hyp
	return nil
}

package automaton

import (
	"github.com/ShayCichocki/learnlab/internal/graph"
	"github.com/ShayCichocki/learnlab/pkg/models"
)

// DFA is a deterministic finite acceptor.
type DFA struct {
	table
	accepting []bool
}

var _ Automaton[bool] = (*DFA)(nil)

// NewDFA creates an empty DFA over the alphabet.
func NewDFA(alphabet models.Alphabet) *DFA {
	return &DFA{table: newTable(alphabet)}
}

// AddState adds a state and returns its index.
func (d *DFA) AddState(accepting bool) int {
	return d.AddNamedState("", accepting)
}

// AddNamedState adds a state with a display name.
func (d *DFA) AddNamedState(name string, accepting bool) int {
	d.accepting = append(d.accepting, accepting)
	return d.addState(name)
}

// SetInitial marks the initial state.
func (d *DFA) SetInitial(state int) error {
	return d.setInitial(state)
}

// SetTransition defines the successor of state on symbol.
func (d *DFA) SetTransition(state int, symbol string, target int) error {
	i, err := d.index(state, symbol, target)
	if err != nil {
		return err
	}
	d.trans[i] = target
	return nil
}

// SetAccepting changes the acceptance of a state.
func (d *DFA) SetAccepting(state int, accepting bool) {
	d.accepting[state] = accepting
}

// Accepting reports whether state is accepting.
func (d *DFA) Accepting(state int) bool {
	return d.accepting[state]
}

// Validate reports missing parts.
func (d *DFA) Validate() error {
	return d.validate()
}

// OutputFrom reports whether w leads from state to an accepting state.
func (d *DFA) OutputFrom(state int, w models.Word) bool {
	return d.accepting[d.reach(state, w)]
}

// SuffixOutput implements Automaton.
func (d *DFA) SuffixOutput(prefix, suffix models.Word) bool {
	return d.OutputFrom(d.initial, prefix.Concat(suffix))
}

// Output reports whether w is accepted.
func (d *DFA) Output(w models.Word) bool {
	return d.OutputFrom(d.initial, w)
}

// Model implements Automaton.
func (d *DFA) Model() Model[bool] {
	return DFAModel
}

// Graph renders accepting states as double circles.
func (d *DFA) Graph() *graph.Graph {
	g := d.baseGraph("dfa", func(s int) string {
		if d.accepting[s] {
			return "doublecircle"
		}
		return ""
	})
	k := d.alphabet.Size()
	for s := 0; s < d.Size(); s++ {
		for i := 0; i < k; i++ {
			t := d.Successor(s, i)
			if t < 0 {
				continue
			}
			e := g.MustEdge(stateID(s), stateID(t), d.alphabet.Symbol(i))
			e.Ref = TransitionRef{State: s, Symbol: i}
		}
	}
	return g
}

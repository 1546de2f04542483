package automaton

import (
	"github.com/ShayCichocki/learnlab/internal/graph"
	"github.com/ShayCichocki/learnlab/pkg/models"
)

// Mealy is a deterministic Mealy machine: every transition emits one output
// symbol, and the output of a word is the word of emitted symbols.
type Mealy struct {
	table
	outputs []string
}

var _ Automaton[models.Word] = (*Mealy)(nil)

// NewMealy creates an empty Mealy machine over the input alphabet.
func NewMealy(alphabet models.Alphabet) *Mealy {
	return &Mealy{table: newTable(alphabet)}
}

// AddState adds a state and returns its index.
func (m *Mealy) AddState() int {
	return m.AddNamedState("")
}

// AddNamedState adds a state with a display name.
func (m *Mealy) AddNamedState(name string) int {
	for i := 0; i < m.alphabet.Size(); i++ {
		m.outputs = append(m.outputs, "")
	}
	return m.addState(name)
}

// SetInitial marks the initial state.
func (m *Mealy) SetInitial(state int) error {
	return m.setInitial(state)
}

// SetTransition defines the successor and output of state on symbol.
func (m *Mealy) SetTransition(state int, symbol string, target int, output string) error {
	i, err := m.index(state, symbol, target)
	if err != nil {
		return err
	}
	m.trans[i] = target
	m.outputs[i] = output
	return nil
}

// TransitionOutput returns the output symbol of a transition.
func (m *Mealy) TransitionOutput(state, symbol int) string {
	return m.outputs[state*m.alphabet.Size()+symbol]
}

// Validate reports missing parts.
func (m *Mealy) Validate() error {
	return m.validate()
}

// OutputFrom returns the symbols emitted while reading w from state.
func (m *Mealy) OutputFrom(state int, w models.Word) models.Word {
	if w.IsEmpty() {
		return models.Word{}
	}
	out := make([]string, 0, w.Len())
	k := m.alphabet.Size()
	for _, sym := range w.Symbols() {
		i, ok := m.alphabet.Index(sym)
		if !ok {
			panic("automaton: symbol " + sym + " not in alphabet " + m.alphabet.String())
		}
		out = append(out, m.outputs[state*k+i])
		state = m.trans[state*k+i]
		if state < 0 {
			panic("automaton: undefined transition on " + sym)
		}
	}
	return models.NewWord(out...)
}

// SuffixOutput returns the output of suffix after reading prefix.
func (m *Mealy) SuffixOutput(prefix, suffix models.Word) models.Word {
	return m.OutputFrom(m.reach(m.initial, prefix), suffix)
}

// Output implements Automaton.
func (m *Mealy) Output(w models.Word) models.Word {
	return m.OutputFrom(m.initial, w)
}

// Model implements Automaton.
func (m *Mealy) Model() Model[models.Word] {
	return MealyModel
}

// Graph labels edges "input / output".
func (m *Mealy) Graph() *graph.Graph {
	g := m.baseGraph("mealy", nil)
	k := m.alphabet.Size()
	for s := 0; s < m.Size(); s++ {
		for i := 0; i < k; i++ {
			t := m.Successor(s, i)
			if t < 0 {
				continue
			}
			label := m.alphabet.Symbol(i) + " / " + m.TransitionOutput(s, i)
			e := g.MustEdge(stateID(s), stateID(t), label)
			e.Ref = TransitionRef{State: s, Symbol: i}
		}
	}
	return g
}

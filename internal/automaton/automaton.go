// Package automaton implements compact deterministic automata: acceptors
// (DFA) with boolean output and transducers (Mealy machines) with word output.
package automaton

import (
	"errors"
	"fmt"

	"github.com/ShayCichocki/learnlab/internal/graph"
	"github.com/ShayCichocki/learnlab/pkg/models"
)

var (
	// ErrIncomplete indicates a missing initial state or transition.
	ErrIncomplete = errors.New("incomplete automaton")
	// ErrUnknownState indicates a state index or name that does not exist.
	ErrUnknownState = errors.New("unknown state")
	// ErrUnknownSymbol indicates a symbol outside the automaton's alphabet.
	ErrUnknownSymbol = errors.New("unknown symbol")
)

// Automaton is a complete deterministic automaton whose observable behavior
// is a function from input words to outputs of type D.
type Automaton[D comparable] interface {
	// Alphabet returns the input alphabet.
	Alphabet() models.Alphabet
	// Size returns the number of states.
	Size() int
	// Initial returns the initial state.
	Initial() int
	// Successor returns the target of the transition, or -1 if undefined.
	Successor(state, symbol int) int
	// OutputFrom returns the output produced by reading w from state.
	OutputFrom(state int, w models.Word) D
	// SuffixOutput returns the output of suffix after reading prefix.
	SuffixOutput(prefix, suffix models.Word) D
	// Output returns the output of w read from the initial state.
	Output(w models.Word) D
	// Model describes the output domain.
	Model() Model[D]
	// Graph returns a renderable view of the automaton.
	Graph() *graph.Graph
}

// TransitionRef identifies a transition in graphs built by Graph.
type TransitionRef struct {
	State  int
	Symbol int
}

// Reach returns the state reached from state by reading w.
// It panics if w contains a symbol outside the alphabet.
func Reach[D comparable](a Automaton[D], state int, w models.Word) int {
	alpha := a.Alphabet()
	for _, sym := range w.Symbols() {
		i, ok := alpha.Index(sym)
		if !ok {
			panic(fmt.Sprintf("automaton: symbol %q not in alphabet %s", sym, alpha))
		}
		state = a.Successor(state, i)
		if state < 0 {
			panic(fmt.Sprintf("automaton: undefined transition on %q", sym))
		}
	}
	return state
}

// AccessSequences returns, for every reachable state, a shortest word that
// reaches it. Unreachable states get ok=false.
func AccessSequences[D comparable](a Automaton[D]) (words []models.Word, ok []bool) {
	words = make([]models.Word, a.Size())
	ok = make([]bool, a.Size())
	alpha := a.Alphabet()

	queue := []int{a.Initial()}
	ok[a.Initial()] = true
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		for i := 0; i < alpha.Size(); i++ {
			t := a.Successor(s, i)
			if t < 0 || ok[t] {
				continue
			}
			ok[t] = true
			words[t] = words[s].Append(alpha.Symbol(i))
			queue = append(queue, t)
		}
	}
	return words, ok
}

// table is the transition structure shared by DFA and Mealy.
type table struct {
	alphabet models.Alphabet
	initial  int
	trans    []int
	names    []string
}

func newTable(alphabet models.Alphabet) table {
	return table{alphabet: alphabet, initial: -1}
}

func (t *table) addState(name string) int {
	s := len(t.names)
	if name == "" {
		name = fmt.Sprintf("q%d", s)
	}
	t.names = append(t.names, name)
	for i := 0; i < t.alphabet.Size(); i++ {
		t.trans = append(t.trans, -1)
	}
	return s
}

func (t *table) Alphabet() models.Alphabet { return t.alphabet }

func (t *table) Size() int { return len(t.names) }

func (t *table) Initial() int { return t.initial }

func (t *table) Successor(state, symbol int) int {
	return t.trans[state*t.alphabet.Size()+symbol]
}

// StateName returns the display name of a state.
func (t *table) StateName(state int) string {
	return t.names[state]
}

// StateByName returns the index of the named state.
func (t *table) StateByName(name string) (int, bool) {
	for i, n := range t.names {
		if n == name {
			return i, true
		}
	}
	return -1, false
}

func (t *table) setInitial(state int) error {
	if state < 0 || state >= t.Size() {
		return fmt.Errorf("set initial %d: %w", state, ErrUnknownState)
	}
	t.initial = state
	return nil
}

func (t *table) index(state int, symbol string, target int) (int, error) {
	if state < 0 || state >= t.Size() {
		return 0, fmt.Errorf("transition from %d: %w", state, ErrUnknownState)
	}
	if target < 0 || target >= t.Size() {
		return 0, fmt.Errorf("transition to %d: %w", target, ErrUnknownState)
	}
	i, ok := t.alphabet.Index(symbol)
	if !ok {
		return 0, fmt.Errorf("transition on %q: %w", symbol, ErrUnknownSymbol)
	}
	return state*t.alphabet.Size() + i, nil
}

func (t *table) validate() error {
	if t.Size() == 0 {
		return fmt.Errorf("%w: no states", ErrIncomplete)
	}
	if t.initial < 0 {
		return fmt.Errorf("%w: no initial state", ErrIncomplete)
	}
	k := t.alphabet.Size()
	for i, target := range t.trans {
		if target < 0 {
			return fmt.Errorf("%w: state %s has no transition on %q",
				ErrIncomplete, t.names[i/k], t.alphabet.Symbol(i%k))
		}
	}
	return nil
}

func (t *table) reach(state int, w models.Word) int {
	for _, sym := range w.Symbols() {
		i, ok := t.alphabet.Index(sym)
		if !ok {
			panic(fmt.Sprintf("automaton: symbol %q not in alphabet %s", sym, t.alphabet))
		}
		state = t.trans[state*t.alphabet.Size()+i]
		if state < 0 {
			panic(fmt.Sprintf("automaton: undefined transition on %q", sym))
		}
	}
	return state
}

func (t *table) baseGraph(name string, shape func(int) string) *graph.Graph {
	g := graph.New(name)
	start := g.AddNode("__start", "")
	start.Hidden = true
	for s := range t.names {
		n := g.AddNode(stateID(s), t.names[s])
		n.Ref = s
		if shape != nil {
			n.Shape = shape(s)
		}
	}
	if t.initial >= 0 {
		g.MustEdge("__start", stateID(t.initial), "")
	}
	return g
}

func stateID(s int) string {
	return fmt.Sprintf("s%d", s)
}

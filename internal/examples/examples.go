// Package examples builds target automata for experiments and benchmarks.
package examples

import (
	"fmt"
	"math/rand"

	"github.com/ShayCichocki/learnlab/internal/automaton"
	"github.com/ShayCichocki/learnlab/pkg/models"
)

// Example is a named target.
type Example[D comparable] struct {
	Name   string
	Target automaton.Automaton[D]
}

// Alphabet returns the target's input alphabet.
func (e Example[D]) Alphabet() models.Alphabet {
	return e.Target.Alphabet()
}

// Reference returns the target automaton.
func (e Example[D]) Reference() automaton.Automaton[D] {
	return e.Target
}

// Size returns the number of target states.
func (e Example[D]) Size() int {
	return e.Target.Size()
}

// Keylock returns a combination lock over k symbols with n states: symbol
// "0" advances one state, any other symbol resets to the start. The last
// state accepts. A cyclic lock restarts after the last state instead of
// staying there.
func Keylock(k, n int, cyclic bool) *automaton.DFA {
	d := automaton.NewDFA(models.IntegerAlphabet(k))
	for i := 0; i < n; i++ {
		d.AddState(i == n-1)
	}
	for i := 0; i < n; i++ {
		next := i + 1
		if next == n {
			next = n - 1
			if cyclic {
				next = 0
			}
		}
		mustSet(d.SetTransition(i, "0", next))
		for a := 1; a < k; a++ {
			reset := 0
			if i == n-1 && !cyclic {
				reset = n - 1
			}
			mustSet(d.SetTransition(i, d.Alphabet().Symbol(a), reset))
		}
	}
	mustSet(d.SetInitial(0))
	return d
}

// RandomDFA returns a DFA with n states over k symbols whose transitions and
// acceptance are drawn from rng.
func RandomDFA(rng *rand.Rand, k, n int) *automaton.DFA {
	d := automaton.NewDFA(models.IntegerAlphabet(k))
	for i := 0; i < n; i++ {
		d.AddState(rng.Intn(2) == 1)
	}
	for i := 0; i < n; i++ {
		for a := 0; a < k; a++ {
			mustSet(d.SetTransition(i, d.Alphabet().Symbol(a), rng.Intn(n)))
		}
	}
	mustSet(d.SetInitial(0))
	return d
}

// RandomMealy returns a Mealy machine with n states over k inputs whose
// transitions and outputs (drawn from "o0".."o<outputs-1>") come from rng.
func RandomMealy(rng *rand.Rand, k, n, outputs int) *automaton.Mealy {
	m := automaton.NewMealy(models.IntegerAlphabet(k))
	for i := 0; i < n; i++ {
		m.AddState()
	}
	for i := 0; i < n; i++ {
		for a := 0; a < k; a++ {
			out := fmt.Sprintf("o%d", rng.Intn(outputs))
			mustSet(m.SetTransition(i, m.Alphabet().Symbol(a), rng.Intn(n), out))
		}
	}
	mustSet(m.SetInitial(0))
	return m
}

// EvenA returns a three-state DFA over {a, b} accepting words with an even
// number of "a". Two of its states are equivalent, so the minimal
// acceptor has two states.
func EvenA() *automaton.DFA {
	d := automaton.NewDFA(models.MustAlphabet("a", "b"))
	even := d.AddNamedState("even", true)
	odd := d.AddNamedState("odd", false)
	evenB := d.AddNamedState("even'", true)
	mustSet(d.SetTransition(even, "a", odd))
	mustSet(d.SetTransition(even, "b", evenB))
	mustSet(d.SetTransition(odd, "a", evenB))
	mustSet(d.SetTransition(odd, "b", odd))
	mustSet(d.SetTransition(evenB, "a", odd))
	mustSet(d.SetTransition(evenB, "b", even))
	mustSet(d.SetInitial(even))
	return d
}

// AcceptAll returns the one-state DFA accepting every word over alphabet.
func AcceptAll(alphabet models.Alphabet) *automaton.DFA {
	d := automaton.NewDFA(alphabet)
	s := d.AddState(true)
	for _, sym := range alphabet.Symbols() {
		mustSet(d.SetTransition(s, sym, s))
	}
	mustSet(d.SetInitial(s))
	return d
}

func mustSet(err error) {
	if err != nil {
		panic("examples: " + err.Error())
	}
}

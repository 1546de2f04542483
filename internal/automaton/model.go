package automaton

import (
	"fmt"

	"github.com/ShayCichocki/learnlab/pkg/models"
)

// Model describes an output domain: which experiments determine a state's
// local behavior, how to assemble a hypothesis from learned data, and how to
// print outputs.
type Model[D comparable] interface {
	// Name is "dfa" or "mealy".
	Name() string
	// LocalSuffixes are the suffixes whose outputs label a state or its
	// outgoing transitions.
	LocalSuffixes(alphabet models.Alphabet) []models.Word
	// Build assembles a hypothesis. succ[s][a] is the successor of state s
	// on symbol a; local[s][i] is the output of LocalSuffixes()[i] from s.
	Build(alphabet models.Alphabet, initial int, succ [][]int, local [][]D) (Automaton[D], error)
	// Format renders an output for tables and messages.
	Format(D) string
}

// Kind names of the supported models.
const (
	KindDFA   = "dfa"
	KindMealy = "mealy"
)

var (
	// DFAModel is the boolean acceptance domain.
	DFAModel Model[bool] = dfaModel{}
	// MealyModel is the output-word domain.
	MealyModel Model[models.Word] = mealyModel{}
)

type dfaModel struct{}

func (dfaModel) Name() string { return KindDFA }

func (dfaModel) LocalSuffixes(models.Alphabet) []models.Word {
	return []models.Word{{}}
}

func (dfaModel) Build(alphabet models.Alphabet, initial int, succ [][]int, local [][]bool) (Automaton[bool], error) {
	d := NewDFA(alphabet)
	for s := range succ {
		if len(local[s]) < 1 {
			return nil, fmt.Errorf("build dfa: %w: state %d has no acceptance", ErrIncomplete, s)
		}
		d.AddState(local[s][0])
	}
	if err := fillTransitions(alphabet, succ, func(s int, sym string, t int) error {
		return d.SetTransition(s, sym, t)
	}); err != nil {
		return nil, fmt.Errorf("build dfa: %w", err)
	}
	if err := d.SetInitial(initial); err != nil {
		return nil, fmt.Errorf("build dfa: %w", err)
	}
	return d, nil
}

func (dfaModel) Format(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

type mealyModel struct{}

func (mealyModel) Name() string { return KindMealy }

func (mealyModel) LocalSuffixes(alphabet models.Alphabet) []models.Word {
	out := make([]models.Word, alphabet.Size())
	for i := range out {
		out[i] = models.NewWord(alphabet.Symbol(i))
	}
	return out
}

func (mealyModel) Build(alphabet models.Alphabet, initial int, succ [][]int, local [][]models.Word) (Automaton[models.Word], error) {
	m := NewMealy(alphabet)
	for range succ {
		m.AddState()
	}
	err := fillTransitions(alphabet, succ, func(s int, sym string, t int) error {
		i, _ := alphabet.Index(sym)
		if i >= len(local[s]) || local[s][i].Len() != 1 {
			return fmt.Errorf("%w: state %d needs a single output on %q", ErrIncomplete, s, sym)
		}
		return m.SetTransition(s, sym, t, local[s][i].Symbol(0))
	})
	if err != nil {
		return nil, fmt.Errorf("build mealy: %w", err)
	}
	if err := m.SetInitial(initial); err != nil {
		return nil, fmt.Errorf("build mealy: %w", err)
	}
	return m, nil
}

func (mealyModel) Format(w models.Word) string {
	return w.String()
}

func fillTransitions(alphabet models.Alphabet, succ [][]int, set func(s int, sym string, t int) error) error {
	for s, row := range succ {
		if len(row) != alphabet.Size() {
			return fmt.Errorf("%w: state %d has %d successors, want %d", ErrIncomplete, s, len(row), alphabet.Size())
		}
		for i, t := range row {
			if err := set(s, alphabet.Symbol(i), t); err != nil {
				return err
			}
		}
	}
	return nil
}

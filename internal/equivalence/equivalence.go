// Package equivalence decides equivalence of two automata and produces
// separating words.
package equivalence

import (
	"errors"
	"fmt"

	"github.com/ShayCichocki/learnlab/internal/automaton"
	"github.com/ShayCichocki/learnlab/pkg/models"
)

// ErrAlphabetMismatch indicates a symbol one of the automata cannot read.
var ErrAlphabetMismatch = errors.New("alphabet mismatch")

// Checker searches for a word on which two automata disagree.
type Checker[D comparable] interface {
	// FindSeparatingWord returns a separating word and true, or false if
	// the automata agree on every word over alphabet.
	FindSeparatingWord(target, hyp automaton.Automaton[D], alphabet models.Alphabet) (models.Word, bool, error)
}

// Exact explores the product of both automata breadth-first. The returned
// word is a shortest separating word.
type Exact[D comparable] struct{}

var _ Checker[bool] = Exact[bool]{}

// FindSeparatingWord implements Checker.
func (Exact[D]) FindSeparatingWord(target, hyp automaton.Automaton[D], alphabet models.Alphabet) (models.Word, bool, error) {
	return FindSeparatingWord(target, hyp, alphabet)
}

type pair struct{ a, b int }

type visit struct {
	parent pair
	symbol int
	root   bool
}

// FindSeparatingWord is the function form of Exact.
func FindSeparatingWord[D comparable](a, b automaton.Automaton[D], alphabet models.Alphabet) (models.Word, bool, error) {
	idxA, err := translate(a.Alphabet(), alphabet)
	if err != nil {
		return models.Word{}, false, fmt.Errorf("find separating word: %w", err)
	}
	idxB, err := translate(b.Alphabet(), alphabet)
	if err != nil {
		return models.Word{}, false, fmt.Errorf("find separating word: %w", err)
	}
	local := a.Model().LocalSuffixes(alphabet)

	start := pair{a.Initial(), b.Initial()}
	seen := map[pair]visit{start: {root: true}}
	queue := []pair{start}

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]

		for _, u := range local {
			if a.OutputFrom(p.a, u) != b.OutputFrom(p.b, u) {
				return accessWord(seen, p, alphabet).Concat(u), true, nil
			}
		}

		for i := 0; i < alphabet.Size(); i++ {
			next := pair{a.Successor(p.a, idxA[i]), b.Successor(p.b, idxB[i])}
			if next.a < 0 || next.b < 0 {
				return models.Word{}, false, fmt.Errorf("find separating word: %w: undefined transition on %q",
					automaton.ErrIncomplete, alphabet.Symbol(i))
			}
			if _, ok := seen[next]; ok {
				continue
			}
			seen[next] = visit{parent: p, symbol: i}
			queue = append(queue, next)
		}
	}
	return models.Word{}, false, nil
}

// translate maps positions of alphabet to positions in own.
func translate(own, alphabet models.Alphabet) ([]int, error) {
	out := make([]int, alphabet.Size())
	for i := range out {
		j, ok := own.Index(alphabet.Symbol(i))
		if !ok {
			return nil, fmt.Errorf("%w: %q not in %s", ErrAlphabetMismatch, alphabet.Symbol(i), own)
		}
		out[i] = j
	}
	return out, nil
}

func accessWord(seen map[pair]visit, p pair, alphabet models.Alphabet) models.Word {
	var rev []string
	for {
		v := seen[p]
		if v.root {
			break
		}
		rev = append(rev, alphabet.Symbol(v.symbol))
		p = v.parent
	}
	syms := make([]string, len(rev))
	for i := range rev {
		syms[i] = rev[len(rev)-1-i]
	}
	return models.NewWord(syms...)
}

// Equivalent reports whether a and b agree on all words over alphabet.
func Equivalent[D comparable](a, b automaton.Automaton[D], alphabet models.Alphabet) (bool, error) {
	_, found, err := FindSeparatingWord(a, b, alphabet)
	if err != nil {
		return false, err
	}
	return !found, nil
}

package examples

import (
	"fmt"
	"math/rand"

	"github.com/ShayCichocki/learnlab/internal/automaton"
	"github.com/ShayCichocki/learnlab/pkg/models"
)

// KeylockName names a keylock example.
func KeylockName(k, n int, cyclic bool) string {
	if cyclic {
		return fmt.Sprintf("keylock-c-%d-%d", k, n)
	}
	return fmt.Sprintf("keylock-%d-%d", k, n)
}

// RandomName names a random example.
func RandomName(k, n int) string {
	return fmt.Sprintf("random-%d-%d", k, n)
}

type shape struct{ k, n int }

var (
	keylockShapes = []shape{{2, 10}, {2, 50}, {5, 25}, {10, 50}}
	randomShapes  = []shape{{2, 10}, {2, 100}, {5, 50}, {10, 100}}
)

// DFACatalog returns the acceptor benchmark set. Random targets are drawn
// from a generator seeded with seed.
func DFACatalog(seed int64) []Example[bool] {
	rng := rand.New(rand.NewSource(seed))
	var out []Example[bool]
	for _, s := range keylockShapes {
		out = append(out,
			Example[bool]{Name: KeylockName(s.k, s.n, false), Target: Keylock(s.k, s.n, false)},
			Example[bool]{Name: KeylockName(s.k, s.n, true), Target: Keylock(s.k, s.n, true)},
		)
	}
	for _, s := range randomShapes {
		out = append(out, Example[bool]{Name: RandomName(s.k, s.n), Target: RandomDFA(rng, s.k, s.n)})
	}
	return out
}

// MealyCatalog returns the transducer benchmark set: the acceptor set
// converted to Mealy machines, plus random Mealy machines.
func MealyCatalog(seed int64) []Example[models.Word] {
	var out []Example[models.Word]
	for _, ex := range DFACatalog(seed) {
		out = append(out, Example[models.Word]{
			Name:   ex.Name,
			Target: automaton.ToMealy(ex.Target.(*automaton.DFA)),
		})
	}
	rng := rand.New(rand.NewSource(seed + 1))
	for _, s := range randomShapes {
		out = append(out, Example[models.Word]{
			Name:   "mealy-" + RandomName(s.k, s.n),
			Target: RandomMealy(rng, s.k, s.n, 2),
		})
	}
	return out
}

// RandomMealySeries returns a random Mealy target with n states over k
// inputs, named for a series sweep.
func RandomMealySeries(seed int64, k, n int) Example[models.Word] {
	rng := rand.New(rand.NewSource(seed + int64(k)*1_000_003 + int64(n)))
	return Example[models.Word]{Name: RandomName(k, n), Target: RandomMealy(rng, k, n, 2)}
}

// Named returns the built-in targets addressable by name from the CLI.
func Named() map[string]func() *automaton.DFA {
	return map[string]func() *automaton.DFA{
		"even-a":     EvenA,
		"keylock":    func() *automaton.DFA { return Keylock(2, 5, false) },
		"keylock-c":  func() *automaton.DFA { return Keylock(2, 5, true) },
		"accept-all": func() *automaton.DFA { return AcceptAll(models.MustAlphabet("a", "b")) },
	}
}

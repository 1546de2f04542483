// Package registry maps learner names to their factories. A Registry is
// built once at startup and passed to the loop and the benchmark harness.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ShayCichocki/learnlab/internal/automaton"
	"github.com/ShayCichocki/learnlab/internal/learner"
	"github.com/ShayCichocki/learnlab/internal/learner/dt"
	"github.com/ShayCichocki/learnlab/internal/learner/lstar"
	"github.com/ShayCichocki/learnlab/internal/logging"
	"github.com/ShayCichocki/learnlab/internal/oracle"
	"github.com/ShayCichocki/learnlab/pkg/models"
)

// ErrUnknownLearner indicates a name that is not registered.
var ErrUnknownLearner = errors.New("unknown learner")

// Learner names.
const (
	LStar          = "lstar"
	MalerPnueli    = "mp"
	RivestSchapire = "rs"
	DT             = "dt"
)

// Default is the learner used when none is selected.
const Default = LStar

// Entry is one registered learner.
type Entry[D comparable] struct {
	Name string
	// ID orders entries in benchmark output.
	ID int
	// Description is shown in help output.
	Description string
	// Open creates an interactive session with presentation.
	Open learner.Open[D]
	// Baseline is the comparison implementation, or nil when none applies.
	Baseline learner.Factory[D]
}

// Registry is an ordered set of entries.
type Registry[D comparable] struct {
	entries []Entry[D]
	byName  map[string]int
}

// New builds a registry. Entries are kept in ID order.
func New[D comparable](entries ...Entry[D]) (*Registry[D], error) {
	r := &Registry[D]{byName: make(map[string]int, len(entries))}
	sorted := append([]Entry[D](nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	for i, e := range sorted {
		if e.Open == nil {
			return nil, fmt.Errorf("register %s: no session factory", e.Name)
		}
		if _, dup := r.byName[e.Name]; dup {
			return nil, fmt.Errorf("register %s: duplicate name", e.Name)
		}
		r.byName[e.Name] = i
	}
	r.entries = sorted
	return r, nil
}

// Lookup returns the entry called name.
func (r *Registry[D]) Lookup(name string) (Entry[D], error) {
	i, ok := r.byName[name]
	if !ok {
		return Entry[D]{}, fmt.Errorf("%w %q (known: %s)", ErrUnknownLearner, name, strings.Join(r.Names(), ", "))
	}
	return r.entries[i], nil
}

// Entries returns all entries in ID order.
func (r *Registry[D]) Entries() []Entry[D] {
	return append([]Entry[D](nil), r.entries...)
}

// Names returns the registered names in ID order.
func (r *Registry[D]) Names() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.Name
	}
	return names
}

// Select returns the named entries in ID order. No names selects all.
func (r *Registry[D]) Select(names []string) ([]Entry[D], error) {
	if len(names) == 0 {
		return r.Entries(), nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		if _, err := r.Lookup(n); err != nil {
			return nil, err
		}
		want[n] = true
	}
	var out []Entry[D]
	for _, e := range r.entries {
		if want[e.Name] {
			out = append(out, e)
		}
	}
	return out, nil
}

// Standard returns the built-in learners for model.
func Standard[D comparable](model automaton.Model[D], logger *logging.DebugLogger) *Registry[D] {
	table := func(h lstar.Handler) learner.Open[D] {
		return func(alphabet models.Alphabet, mq oracle.Oracle[D]) learner.Session[D] {
			l := lstar.New(alphabet, mq, model, lstar.WithHandler(h), lstar.WithLogger(logger))
			return learner.Session[D]{Learner: l, View: lstar.View[D]{Learner: l}}
		}
	}
	// The baselines run the same algorithm without batching queries.
	unbatched := func(h lstar.Handler) learner.Factory[D] {
		return func(alphabet models.Alphabet, mq oracle.Oracle[D]) learner.Learner[D] {
			return lstar.New[D](alphabet, oracle.NewSequential(mq), model, lstar.WithHandler(h))
		}
	}
	tree := func(alphabet models.Alphabet, mq oracle.Oracle[D]) learner.Session[D] {
		l := dt.New(alphabet, mq, model, dt.WithLogger(logger))
		return learner.Session[D]{Learner: l, View: dt.View[D]{Learner: l}}
	}

	r, err := New(
		Entry[D]{Name: LStar, ID: 0, Description: "observation table, classic counterexample handling",
			Open: table(lstar.Classic), Baseline: unbatched(lstar.Classic)},
		Entry[D]{Name: MalerPnueli, ID: 1, Description: "observation table, all counterexample suffixes",
			Open: table(lstar.MalerPnueli), Baseline: unbatched(lstar.MalerPnueli)},
		Entry[D]{Name: RivestSchapire, ID: 2, Description: "observation table, binary-search counterexample analysis",
			Open: table(lstar.RivestSchapire), Baseline: unbatched(lstar.RivestSchapire)},
		Entry[D]{Name: DT, ID: 4, Description: "discrimination tree with temporary discriminators",
			Open: tree},
	)
	if err != nil {
		panic(err)
	}
	return r
}

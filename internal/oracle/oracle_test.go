package oracle

import (
	"errors"
	"reflect"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/ShayCichocki/learnlab/internal/automaton"
	"github.com/ShayCichocki/learnlab/pkg/models"
)

// endsWithA accepts words whose last symbol is "a".
func endsWithA(t *testing.T) *automaton.DFA {
	t.Helper()
	d := automaton.NewDFA(models.MustAlphabet("a", "b"))
	s0 := d.AddState(false)
	s1 := d.AddState(true)
	for _, s := range []int{s0, s1} {
		if err := d.SetTransition(s, "a", s1); err != nil {
			t.Fatal(err)
		}
		if err := d.SetTransition(s, "b", s0); err != nil {
			t.Fatal(err)
		}
	}
	if err := d.SetInitial(s0); err != nil {
		t.Fatal(err)
	}
	return d
}

func queries(words ...models.Word) []*models.Query[bool] {
	out := make([]*models.Query[bool], len(words))
	for i, w := range words {
		out[i] = models.NewQuery[bool](models.Word{}, w)
	}
	return out
}

// countingOracle counts batches and queries it receives.
type countingOracle struct {
	batches int
	queries int
	inner   Oracle[bool]
}

func (c *countingOracle) Process(qs []*models.Query[bool]) error {
	c.batches++
	c.queries += len(qs)
	return c.inner.Process(qs)
}

func TestSimulator(t *testing.T) {
	sim := NewSimulator[bool](endsWithA(t))

	qs := []*models.Query[bool]{
		models.NewQuery[bool](models.NewWord("b"), models.NewWord("a")),
		models.NewQuery[bool](models.NewWord("a"), models.NewWord("b")),
	}
	if err := sim.Process(qs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !qs[0].Output() || qs[1].Output() {
		t.Errorf("unexpected outputs %v %v", qs[0].Output(), qs[1].Output())
	}

	bad := queries(models.NewWord("z"))
	if err := sim.Process(bad); !errors.Is(err, ErrOracleFailure) {
		t.Errorf("expected ErrOracleFailure, got %v", err)
	}
}

func TestRecorder_FetchNew(t *testing.T) {
	rec := NewRecorder[bool](NewSimulator[bool](endsWithA(t)))

	q := models.NewQuery[bool](models.NewWord("a"), models.NewWord("b"))
	if err := rec.Process([]*models.Query[bool]{q}); err != nil {
		t.Fatal(err)
	}
	if err := rec.Process(queries(models.Word{})); err != nil {
		t.Fatal(err)
	}

	got := rec.FetchNew()
	want := []models.Word{models.NewWord("a", "b"), {}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FetchNew() = %v, want %v", got, want)
	}
	if again := rec.FetchNew(); len(again) != 0 {
		t.Errorf("second FetchNew() should be empty, got %v", again)
	}
	if q.Output() {
		t.Error("recorder must not change answers")
	}
}

func TestRecorder_PropagatesFailure(t *testing.T) {
	boom := errors.New("boom")
	rec := NewRecorder[bool](Func[bool](func([]*models.Query[bool]) error { return boom }))

	err := rec.Process(queries(models.NewWord("a")))
	if !errors.Is(err, ErrOracleFailure) || !errors.Is(err, boom) {
		t.Errorf("expected wrapped failure, got %v", err)
	}
	if rec.Pending() != 1 {
		t.Errorf("issued query should still be recorded, pending=%d", rec.Pending())
	}
}

func TestCounter(t *testing.T) {
	queryMetric := prometheus.NewCounter(prometheus.CounterOpts{Name: "q_total", Help: "q"})
	symbolMetric := prometheus.NewCounter(prometheus.CounterOpts{Name: "s_total", Help: "s"})
	c := NewCounter[bool](NewSimulator[bool](endsWithA(t)), WithMetrics(queryMetric, symbolMetric))

	if err := c.Process(queries(models.NewWord("a", "b"), models.NewWord("a"))); err != nil {
		t.Fatal(err)
	}

	if c.Count() != 2 {
		t.Errorf("expected 2 queries, got %d", c.Count())
	}
	if c.Symbols() != 3 {
		t.Errorf("expected 3 symbols, got %d", c.Symbols())
	}
	if got := testutil.ToFloat64(queryMetric); got != 2 {
		t.Errorf("query metric = %v", got)
	}
	if got := testutil.ToFloat64(symbolMetric); got != 3 {
		t.Errorf("symbol metric = %v", got)
	}

	c.Reset()
	if c.Count() != 0 || c.Symbols() != 0 {
		t.Error("Reset should zero the counts")
	}
}

func TestCache(t *testing.T) {
	inner := &countingOracle{inner: NewSimulator[bool](endsWithA(t))}
	cache := NewCache[bool](inner)

	first := queries(models.NewWord("a"), models.NewWord("b"), models.NewWord("a"))
	if err := cache.Process(first); err != nil {
		t.Fatal(err)
	}
	if inner.queries != 2 {
		t.Errorf("duplicates in a batch should be forwarded once, forwarded %d", inner.queries)
	}
	if !first[0].Output() || first[1].Output() || !first[2].Output() {
		t.Error("unexpected answers")
	}

	second := queries(models.NewWord("a"))
	if err := cache.Process(second); err != nil {
		t.Fatal(err)
	}
	if inner.batches != 1 {
		t.Errorf("cached query should not reach the delegate, batches=%d", inner.batches)
	}
	if !second[0].Output() {
		t.Error("cached answer lost")
	}
	if cache.Hits() != 2 || cache.Len() != 2 {
		t.Errorf("hits=%d len=%d", cache.Hits(), cache.Len())
	}
}

func TestSequential(t *testing.T) {
	inner := &countingOracle{inner: NewSimulator[bool](endsWithA(t))}
	seq := NewSequential[bool](inner)

	if err := seq.Process(queries(models.NewWord("a"), models.NewWord("b"), models.Word{})); err != nil {
		t.Fatal(err)
	}
	if inner.batches != 3 {
		t.Errorf("expected 3 single-query batches, got %d", inner.batches)
	}
}

func TestAnswer(t *testing.T) {
	out, err := Answer[bool](NewSimulator[bool](endsWithA(t)), models.NewWord("b"), models.NewWord("a"))
	if err != nil {
		t.Fatal(err)
	}
	if !out {
		t.Error("expected ba to be accepted")
	}
}

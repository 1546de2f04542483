package bench

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ShayCichocki/learnlab/internal/automaton"
	"github.com/ShayCichocki/learnlab/internal/examples"
	"github.com/ShayCichocki/learnlab/internal/learner"
	"github.com/ShayCichocki/learnlab/internal/learner/lstar"
	"github.com/ShayCichocki/learnlab/internal/metrics"
	"github.com/ShayCichocki/learnlab/internal/oracle"
	"github.com/ShayCichocki/learnlab/internal/registry"
	"github.com/ShayCichocki/learnlab/pkg/models"
)

type nopCloser struct{ *bytes.Buffer }

func (nopCloser) Close() error { return nil }

// memDest keeps every result file in memory.
type memDest struct {
	files map[string]*bytes.Buffer
	fail  map[string]bool
}

func newMemDest() *memDest {
	return &memDest{files: map[string]*bytes.Buffer{}, fail: map[string]bool{}}
}

func (m *memDest) open(name string) (io.WriteCloser, error) {
	if m.fail[name] {
		return nil, errors.New("read-only file system")
	}
	b := &bytes.Buffer{}
	m.files[name] = b
	return nopCloser{b}, nil
}

type trialRecorder struct{ trials []models.TrialResult }

func (r *trialRecorder) RecordTrial(_ context.Context, t models.TrialResult) error {
	r.trials = append(r.trials, t)
	return nil
}

func lstarPair(baseline learner.Factory[bool]) Pair[bool] {
	return Pair[bool]{
		Name:     "lstar",
		ID:       0,
		Learner:  lstar.Factory[bool](automaton.DFAModel, lstar.Classic),
		Baseline: baseline,
	}
}

func TestHarness_MissingBaselineIsSentinel(t *testing.T) {
	ex := examples.Example[bool]{Name: "keylock-2-4", Target: examples.Keylock(2, 4, false)}
	rec := &trialRecorder{}
	collects := 0
	h := New([]Pair[bool]{lstarPair(nil)}, Options{
		Repeat:  3,
		Collect: func() { collects++ },
		Trials:  rec,
	})

	sum, err := h.RunExample(context.Background(), ex)
	if err != nil {
		t.Fatal(err)
	}
	if len(sum.Rows) != 1 {
		t.Fatalf("rows = %d", len(sum.Rows))
	}
	row := sum.Rows[0]
	if row.Baseline.MeanMillis != NotApplicable || row.Baseline.MeanQueries != NotApplicable {
		t.Errorf("baseline = %+v, want sentinel", row.Baseline)
	}
	if row.Learner.Trials != 3 || row.Learner.MeanQueries <= 0 {
		t.Errorf("learner = %+v", row.Learner)
	}
	if !strings.HasSuffix(row.Format(), " -1.000000 -1.000000") {
		t.Errorf("Format() = %q", row.Format())
	}
	if len(rec.trials) != 3 {
		t.Errorf("recorded %d trials, want 3", len(rec.trials))
	}
	if collects != 6 {
		t.Errorf("collect ran %d times, want 6", collects)
	}
}

func TestHarness_FactoryReturningNil(t *testing.T) {
	ex := examples.Example[bool]{Name: "even-a", Target: examples.EvenA()}
	none := func(models.Alphabet, oracle.Oracle[bool]) learner.Learner[bool] { return nil }
	h := New([]Pair[bool]{{Name: "none", ID: 3, Learner: none, Baseline: none}}, Options{Repeat: 2})

	sum, err := h.RunExample(context.Background(), ex)
	if err != nil {
		t.Fatal(err)
	}
	if got := sum.Rows[0].Format(); got != "none 3 -1.000000 -1.000000 -1.000000 -1.000000" {
		t.Errorf("Format() = %q", got)
	}
}

// flakyFactory returns lstar learners whose oracle fails on every trial
// for which fail reports true.
func flakyFactory(fail func(trial int) bool) learner.Factory[bool] {
	trial := 0
	return func(alphabet models.Alphabet, mq oracle.Oracle[bool]) learner.Learner[bool] {
		defer func() { trial++ }()
		if fail(trial) {
			mq = oracle.Func[bool](func([]*models.Query[bool]) error {
				return errors.New("sut died")
			})
		}
		return lstar.New[bool](alphabet, mq, automaton.DFAModel)
	}
}

func TestHarness_FailingTrialsLeaveTheMean(t *testing.T) {
	ex := examples.Example[bool]{Name: "even-a", Target: examples.EvenA()}
	rec := &trialRecorder{}
	pair := Pair[bool]{Name: "flaky", ID: 1, Learner: flakyFactory(func(i int) bool { return i%2 == 1 })}
	h := New([]Pair[bool]{pair}, Options{Repeat: 4, Trials: rec})

	sum, err := h.RunExample(context.Background(), ex)
	if err != nil {
		t.Fatalf("failing trials should not stop the example: %v", err)
	}
	stats := sum.Rows[0].Learner
	if stats.Trials != 4 || stats.Failures != 2 {
		t.Errorf("stats = %+v, want 4 trials with 2 failures", stats)
	}

	var okQueries int64
	var ok int
	for _, r := range rec.trials {
		if r.Trial%2 == 1 {
			if !strings.Contains(r.Err, "sut died") {
				t.Errorf("trial %d Err = %q, want the oracle failure", r.Trial, r.Err)
			}
			continue
		}
		if r.Failed() {
			t.Errorf("trial %d failed: %s", r.Trial, r.Err)
		}
		okQueries += r.Queries
		ok++
	}
	if len(rec.trials) != 4 || ok != 2 {
		t.Fatalf("recorded %d trials, %d successful", len(rec.trials), ok)
	}
	if want := float64(okQueries) / 2; stats.MeanQueries != want {
		t.Errorf("MeanQueries = %v, want %v over successful trials", stats.MeanQueries, want)
	}
	if stats.MeanMillis == NotApplicable {
		t.Error("successful trials should give a mean time")
	}
}

func TestHarness_AllTrialsFailingIsSentinel(t *testing.T) {
	ex := examples.Example[bool]{Name: "even-a", Target: examples.EvenA()}
	pair := Pair[bool]{Name: "dead", ID: 1, Learner: flakyFactory(func(int) bool { return true })}
	h := New([]Pair[bool]{pair}, Options{Repeat: 3})

	sum, err := h.RunExample(context.Background(), ex)
	if err != nil {
		t.Fatal(err)
	}
	stats := sum.Rows[0].Learner
	if stats.Failures != 3 || stats.MeanMillis != NotApplicable || stats.MeanQueries != NotApplicable {
		t.Errorf("stats = %+v, want 3 failures and sentinel means", stats)
	}
}

func TestHarness_DeterministicQueries(t *testing.T) {
	ex := examples.Example[bool]{Name: "keylock-c-3-5", Target: examples.Keylock(3, 5, true)}
	baseline := func(alphabet models.Alphabet, mq oracle.Oracle[bool]) learner.Learner[bool] {
		return lstar.New[bool](alphabet, oracle.NewSequential(mq), automaton.DFAModel)
	}
	m := metrics.New()
	h := New([]Pair[bool]{lstarPair(baseline)}, Options{Repeat: 2, Cache: true, Metrics: m})

	sum, err := h.RunExample(context.Background(), ex)
	if err != nil {
		t.Fatal(err)
	}
	row := sum.Rows[0]
	if row.Learner.MeanQueries != row.Baseline.MeanQueries {
		t.Errorf("unbatched baseline should pose the same queries: %v vs %v",
			row.Learner.MeanQueries, row.Baseline.MeanQueries)
	}
}

func TestRunAll_WritesOneFilePerExample(t *testing.T) {
	exs := []examples.Example[bool]{
		{Name: "even-a", Target: examples.EvenA()},
		{Name: "broken", Target: examples.Keylock(2, 3, false)},
		{Name: "keylock-2-3", Target: examples.Keylock(2, 3, false)},
	}
	dest := newMemDest()
	dest.fail[DatName("broken")] = true
	h := New(Pairs(registry.Standard[bool](automaton.DFAModel, nil).Entries()), Options{Repeat: 1})

	sums, err := h.RunAll(context.Background(), exs, dest.open)
	if err == nil || !strings.Contains(err.Error(), "example broken") {
		t.Fatalf("err = %v", err)
	}
	if len(sums) != 2 {
		t.Errorf("summaries = %d, want 2", len(sums))
	}

	out := dest.files["even-a.dat"].String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if lines[0] != "# even-a, inputs: 2, states: 3" {
		t.Errorf("header = %q", lines[0])
	}
	if len(lines) != 5 {
		t.Fatalf("expected header and 4 rows, got:\n%s", out)
	}
	wantPrefix := []string{"lstar 0 ", "mp 1 ", "rs 2 ", "dt 4 "}
	for i, p := range wantPrefix {
		if !strings.HasPrefix(lines[i+1], p) {
			t.Errorf("row %d = %q, want prefix %q", i, lines[i+1], p)
		}
	}
	if !strings.HasSuffix(lines[4], " -1.000000 -1.000000") {
		t.Errorf("dt has no baseline: %q", lines[4])
	}
	if _, ok := dest.files["keylock-2-3.dat"]; !ok {
		t.Error("example after the failing one was not written")
	}
}

type failingSink struct{}

func (failingSink) RecordTrial(context.Context, models.TrialResult) error {
	return errors.New("database is locked")
}

func TestRunAll_FailingExampleKeepsOldFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DatName("even-a"))
	if err := os.WriteFile(path, []byte("previous results\n"), 0644); err != nil {
		t.Fatal(err)
	}
	h := New([]Pair[bool]{lstarPair(nil)}, Options{Repeat: 1, Trials: failingSink{}})

	_, err := h.RunAll(context.Background(), []examples.Example[bool]{{Name: "even-a", Target: examples.EvenA()}}, DirDestination(dir))
	if err == nil || !strings.Contains(err.Error(), "database is locked") {
		t.Fatalf("err = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "previous results\n" {
		t.Errorf("result file overwritten: %q", data)
	}

	dest := newMemDest()
	if _, err := h.RunAll(context.Background(), []examples.Example[bool]{{Name: "even-a", Target: examples.EvenA()}}, dest.open); err == nil {
		t.Fatal("expected error")
	}
	if _, ok := dest.files[DatName("even-a")]; ok {
		t.Error("destination opened for a failing example")
	}
}

func TestSeries(t *testing.T) {
	pairs := []Pair[models.Word]{{
		Name:    "rs",
		ID:      2,
		Learner: lstar.Factory[models.Word](automaton.MealyModel, lstar.RivestSchapire),
	}}
	h := New(pairs, Options{Repeat: 1})
	dest := newMemDest()
	opts := SeriesOptions[models.Word]{
		Lower: 2, Upper: 7, Step: 2,
		AlphabetSizes: []int{2, 3},
		Example: func(k, n int) examples.Example[models.Word] {
			return examples.RandomMealySeries(1, k, n)
		},
	}
	if err := h.Series(context.Background(), opts, dest.open); err != nil {
		t.Fatal(err)
	}
	for _, k := range []int{2, 3} {
		out := dest.files[SeriesName(k)].String()
		lines := strings.Split(strings.TrimSpace(out), "\n")
		if len(lines) != 3 {
			t.Fatalf("k=%d: expected 3 lines, got:\n%s", k, out)
		}
		for i, n := range []string{"2 ", "4 ", "6 "} {
			if !strings.HasPrefix(lines[i], n) || !strings.HasSuffix(lines[i], " -1.000000") {
				t.Errorf("k=%d line %d = %q", k, i, lines[i])
			}
		}
	}
}

func TestSeriesOptions_Validate(t *testing.T) {
	gen := func(k, n int) examples.Example[models.Word] { return examples.RandomMealySeries(1, k, n) }
	tests := []struct {
		name string
		opts SeriesOptions[models.Word]
		ok   bool
	}{
		{"default", DefaultSeries(gen), true},
		{"upper below lower", SeriesOptions[models.Word]{Lower: 5, Upper: 5, Step: 1, AlphabetSizes: []int{2}, Example: gen}, false},
		{"zero step", SeriesOptions[models.Word]{Lower: 1, Upper: 5, AlphabetSizes: []int{2}, Example: gen}, false},
		{"no sizes", SeriesOptions[models.Word]{Lower: 1, Upper: 5, Step: 1, Example: gen}, false},
		{"bad size", SeriesOptions[models.Word]{Lower: 1, Upper: 5, Step: 1, AlphabetSizes: []int{0}, Example: gen}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.Validate(); (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

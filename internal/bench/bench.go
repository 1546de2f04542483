// Package bench runs repeated learning trials of learner pairs on example
// targets and reports mean learner time and query counts.
package bench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sort"
	"time"

	"github.com/ShayCichocki/learnlab/internal/examples"
	"github.com/ShayCichocki/learnlab/internal/experiment"
	"github.com/ShayCichocki/learnlab/internal/learner"
	"github.com/ShayCichocki/learnlab/internal/logging"
	"github.com/ShayCichocki/learnlab/internal/metrics"
	"github.com/ShayCichocki/learnlab/internal/oracle"
	"github.com/ShayCichocki/learnlab/internal/registry"
	"github.com/ShayCichocki/learnlab/pkg/models"
)

// NotApplicable is reported for the means of a side that did not run.
const NotApplicable = -1.0

// DefaultRepeat is the number of trials per pair and role.
const DefaultRepeat = 10

// Pair is a learner and the baseline it is compared with.
type Pair[D comparable] struct {
	Name string
	ID   int
	// Learner and Baseline may be nil, or return nil, when not applicable.
	Learner  learner.Factory[D]
	Baseline learner.Factory[D]
}

// Pairs converts registry entries into benchmark pairs.
func Pairs[D comparable](entries []registry.Entry[D]) []Pair[D] {
	out := make([]Pair[D], len(entries))
	for i, e := range entries {
		out[i] = Pair[D]{Name: e.Name, ID: e.ID, Learner: e.Open.Factory(), Baseline: e.Baseline}
	}
	return out
}

// TrialSink receives every trial result.
type TrialSink interface {
	RecordTrial(ctx context.Context, r models.TrialResult) error
}

// Options configures a Harness.
type Options struct {
	// Repeat is the number of trials per pair and role.
	Repeat int
	// Cache puts a query cache between the learner and the counter.
	Cache bool
	// Collect runs before and after each trial. Nil disables it.
	Collect func()
	// Progress receives a line per trial. Nil disables it.
	Progress io.Writer
	// Trials receives every trial result.
	Trials  TrialSink
	Metrics *metrics.Metrics
	Logger  *logging.DebugLogger
}

// DefaultCollect requests a full garbage collection.
func DefaultCollect() {
	runtime.GC()
}

// Harness runs trials. It is not safe for concurrent use.
type Harness[D comparable] struct {
	pairs []Pair[D]
	opts  Options
}

// New creates a harness for pairs. Pairs are run in ID order.
func New[D comparable](pairs []Pair[D], opts Options) *Harness[D] {
	if opts.Repeat <= 0 {
		opts.Repeat = DefaultRepeat
	}
	sorted := append([]Pair[D](nil), pairs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	return &Harness[D]{pairs: sorted, opts: opts}
}

// Stats are the means over the successful trials of one side.
type Stats struct {
	MeanMillis  float64
	MeanQueries float64
	Trials      int
	Failures    int
}

// Applicable reports whether at least one trial succeeded.
func (s Stats) Applicable() bool {
	return s.Trials > s.Failures
}

// Row is the result line of one pair.
type Row struct {
	Name     string
	ID       int
	Learner  Stats
	Baseline Stats
}

// Format renders the row as "<name> <id> <t_l> <q_l> <t_b> <q_b>".
func (r Row) Format() string {
	return fmt.Sprintf("%s %d %f %f %f %f", r.Name, r.ID,
		r.Learner.MeanMillis, r.Learner.MeanQueries, r.Baseline.MeanMillis, r.Baseline.MeanQueries)
}

// Summary is the result of one example.
type Summary struct {
	Example string
	Inputs  int
	States  int
	Rows    []Row
}

// Header returns the comment line naming the example.
func (s Summary) Header() string {
	return fmt.Sprintf("# %s, inputs: %d, states: %d", s.Example, s.Inputs, s.States)
}

// WriteTo writes the header and one line per row.
func (s Summary) WriteTo(w io.Writer) (int64, error) {
	var total int64
	n, err := fmt.Fprintln(w, s.Header())
	total += int64(n)
	if err != nil {
		return total, err
	}
	for _, r := range s.Rows {
		n, err := fmt.Fprintln(w, r.Format())
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// RunExample runs every pair on ex.
func (h *Harness[D]) RunExample(ctx context.Context, ex examples.Example[D]) (Summary, error) {
	sum := Summary{Example: ex.Name, Inputs: ex.Alphabet().Size(), States: ex.Size()}
	h.progressf("Running example %s(%d/%d)\n", ex.Name, sum.Inputs, sum.States)
	for _, p := range h.pairs {
		row, err := h.runPair(ctx, ex, p)
		if err != nil {
			return sum, err
		}
		sum.Rows = append(sum.Rows, row)
	}
	return sum, nil
}

func (h *Harness[D]) runPair(ctx context.Context, ex examples.Example[D], p Pair[D]) (Row, error) {
	row := Row{Name: p.Name, ID: p.ID}
	var learnerRuns, baselineRuns []models.TrialResult
	for i := 0; i < h.opts.Repeat; i++ {
		if err := ctx.Err(); err != nil {
			return row, err
		}
		h.progressf("%s #%d ... ", p.Name, i)
		lr, ok, err := h.trial(ctx, ex, p.Name, models.TrialRoleLearner, p.Learner, i)
		if err != nil {
			return row, err
		}
		if ok {
			learnerRuns = append(learnerRuns, lr)
			h.progressf("%s", describe(lr))
		} else {
			h.progressf("n/a")
		}
		br, ok, err := h.trial(ctx, ex, p.Name, models.TrialRoleBaseline, p.Baseline, i)
		if err != nil {
			return row, err
		}
		if ok {
			baselineRuns = append(baselineRuns, br)
			h.progressf(" / %s\n", describe(br))
		} else {
			h.progressf(" / n/a\n")
		}
	}
	row.Learner = aggregate(learnerRuns)
	row.Baseline = aggregate(baselineRuns)
	return row, nil
}

// trial runs one learner on a fresh oracle stack. ok is false when the
// factory does not apply.
func (h *Harness[D]) trial(ctx context.Context, ex examples.Example[D], name string, role models.TrialRole, f learner.Factory[D], i int) (models.TrialResult, bool, error) {
	if f == nil {
		return models.TrialResult{}, false, nil
	}
	var counterOpts []oracle.CounterOption
	if h.opts.Metrics != nil {
		counterOpts = append(counterOpts, oracle.WithMetrics(h.opts.Metrics.QueryCounters(name, role)))
	}
	counter := oracle.NewCounter[D](oracle.NewSimulator(ex.Target), counterOpts...)
	var mq oracle.Oracle[D] = counter
	if h.opts.Cache {
		mq = oracle.NewCache[D](counter)
	}

	h.collect()
	res, err := experiment.Run(ctx, mq, learner.Plain(f), experiment.Options[D]{
		Target: ex.Target,
		Logger: h.opts.Logger,
	})
	h.collect()

	if errors.Is(err, experiment.ErrNotApplicable) {
		return models.TrialResult{}, false, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return models.TrialResult{}, false, ctxErr
	}
	r := models.TrialResult{
		Learner: name,
		Role:    role,
		Example: ex.Name,
		Trial:   i,
		Queries: counter.Count(),
		Symbols: counter.Symbols(),
	}
	if err != nil {
		r.Err = err.Error()
		h.opts.Logger.Log("[bench] %s/%s on %s #%d failed: %v", name, role, ex.Name, i, err)
	} else {
		r.Elapsed = res.LearnerTime
		r.Rounds = res.Rounds
	}
	if h.opts.Metrics != nil {
		h.opts.Metrics.ObserveTrial(r)
	}
	if h.opts.Trials != nil {
		if err := h.opts.Trials.RecordTrial(ctx, r); err != nil {
			return r, true, fmt.Errorf("record trial: %w", err)
		}
	}
	return r, true, nil
}

func (h *Harness[D]) collect() {
	if h.opts.Collect != nil {
		h.opts.Collect()
	}
}

func (h *Harness[D]) progressf(format string, args ...any) {
	if h.opts.Progress != nil {
		fmt.Fprintf(h.opts.Progress, format, args...)
	}
}

func describe(r models.TrialResult) string {
	if r.Failed() {
		return "failed: " + r.Err
	}
	return fmt.Sprintf("%dms (%d MQs)", r.Elapsed.Milliseconds(), r.Queries)
}

// aggregate averages the successful trials. Sides without a successful
// trial report NotApplicable.
func aggregate(runs []models.TrialResult) Stats {
	s := Stats{Trials: len(runs), MeanMillis: NotApplicable, MeanQueries: NotApplicable}
	var elapsed time.Duration
	var queries int64
	ok := 0
	for _, r := range runs {
		if r.Failed() {
			s.Failures++
			continue
		}
		elapsed += r.Elapsed
		queries += r.Queries
		ok++
	}
	if ok == 0 {
		return s
	}
	s.MeanMillis = float64(elapsed) / float64(time.Millisecond) / float64(ok)
	s.MeanQueries = float64(queries) / float64(ok)
	return s
}

package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/ShayCichocki/learnlab/pkg/models"
)

func TestObserveTrial(t *testing.T) {
	m := New()
	m.ObserveTrial(models.TrialResult{Learner: "lstar", Role: models.TrialRoleLearner, Elapsed: 3 * time.Millisecond, Rounds: 2})
	m.ObserveTrial(models.TrialResult{Learner: "lstar", Role: models.TrialRoleLearner, Err: "boom"})

	if got := testutil.ToFloat64(m.trials.WithLabelValues("lstar", "learner", "ok")); got != 1 {
		t.Errorf("ok trials = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.trials.WithLabelValues("lstar", "learner", "failed")); got != 1 {
		t.Errorf("failed trials = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(m.trialSeconds); n != 1 {
		t.Errorf("learner_seconds series = %d, want 1", n)
	}
}

func TestQueryCounters(t *testing.T) {
	m := New()
	q, s := m.QueryCounters("dt", models.TrialRoleBaseline)
	q.Add(3)
	s.Add(7)
	if got := testutil.ToFloat64(m.queries.WithLabelValues("dt", "baseline")); got != 3 {
		t.Errorf("queries = %v", got)
	}
	if got := testutil.ToFloat64(m.symbols.WithLabelValues("dt", "baseline")); got != 7 {
		t.Errorf("symbols = %v", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.ObserveRounds("rs", 4)
	path := filepath.Join(t.TempDir(), "out", "learnlab.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `learnlab_learn_rounds_count{learner="rs"} 1`) {
		t.Errorf("unexpected textfile:\n%s", data)
	}
}

func TestQueryTotals(t *testing.T) {
	m := New()
	totals, err := m.QueryTotals()
	if err != nil {
		t.Fatal(err)
	}
	if len(totals) != 0 {
		t.Errorf("fresh metrics totals = %v", totals)
	}

	q, _ := m.QueryCounters("lstar", models.TrialRoleLearner)
	q.Add(5)
	q, _ = m.QueryCounters("dt", models.TrialRoleLearner)
	q.Add(2)
	q, _ = m.QueryCounters("lstar", models.TrialRoleBaseline)
	q.Add(11)

	totals, err = m.QueryTotals()
	if err != nil {
		t.Fatal(err)
	}
	if totals[models.TrialRoleLearner] != 7 || totals[models.TrialRoleBaseline] != 11 {
		t.Errorf("totals = %v, want learner 7 and baseline 11", totals)
	}
}

// Package metrics collects prometheus metrics for learning runs and
// benchmark trials. Metrics live in a dedicated registry that can be
// written to a node-exporter textfile after a run.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"

	"github.com/ShayCichocki/learnlab/pkg/models"
)

const namespace = "learnlab"

// Metrics holds the collectors of one process.
type Metrics struct {
	registry *prometheus.Registry

	// queries counts membership queries. Labels: learner, role.
	queries *prometheus.CounterVec
	// symbols counts query symbols. Labels: learner, role.
	symbols *prometheus.CounterVec
	// trials counts finished trials. Labels: learner, role, status.
	trials *prometheus.CounterVec
	// trialSeconds measures learner time per trial. Labels: learner, role.
	trialSeconds *prometheus.HistogramVec
	// rounds measures refinements per trial or run. Labels: learner.
	rounds *prometheus.HistogramVec
}

// New creates metrics in a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		queries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "queries_total",
			Help:      "Membership queries answered by the target",
		}, []string{"learner", "role"}),
		symbols: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "symbols_total",
			Help:      "Input symbols in answered membership queries",
		}, []string{"learner", "role"}),
		trials: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bench",
			Name:      "trials_total",
			Help:      "Benchmark trials by outcome",
		}, []string{"learner", "role", "status"}),
		trialSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "bench",
			Name:      "learner_seconds",
			Help:      "Time spent inside the learner per trial",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}, []string{"learner", "role"}),
		rounds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "learn",
			Name:      "rounds",
			Help:      "Refinement rounds until equivalence",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32, 64, 128},
		}, []string{"learner"}),
	}
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// QueryCounters returns the query and symbol counters for a learner role,
// suitable for oracle.WithMetrics.
func (m *Metrics) QueryCounters(learner string, role models.TrialRole) (queries, symbols prometheus.Counter) {
	return m.queries.WithLabelValues(learner, string(role)), m.symbols.WithLabelValues(learner, string(role))
}

// ObserveRounds records the rounds of a learning run.
func (m *Metrics) ObserveRounds(learner string, rounds int) {
	m.rounds.WithLabelValues(learner).Observe(float64(rounds))
}

// ObserveTrial records a finished benchmark trial.
func (m *Metrics) ObserveTrial(r models.TrialResult) {
	status := "ok"
	if r.Failed() {
		status = "failed"
	}
	m.trials.WithLabelValues(r.Learner, string(r.Role), status).Inc()
	if r.Failed() {
		return
	}
	m.trialSeconds.WithLabelValues(r.Learner, string(r.Role)).Observe(r.Elapsed.Seconds())
	m.rounds.WithLabelValues(r.Learner).Observe(float64(r.Rounds))
}

// QueryTotals sums the answered membership queries of all learners per
// role.
func (m *Metrics) QueryTotals() (map[models.TrialRole]float64, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}
	totals := map[models.TrialRole]float64{}
	for _, mf := range families {
		if mf.GetName() != namespace+"_oracle_queries_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			role := models.TrialRole(labelValue(metric, "role"))
			totals[role] += metric.GetCounter().GetValue()
		}
	}
	return totals, nil
}

func labelValue(metric *dto.Metric, name string) string {
	for _, lp := range metric.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

// WriteTextfile writes all metrics in the text exposition format to path.
func (m *Metrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

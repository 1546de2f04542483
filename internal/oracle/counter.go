package oracle

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ShayCichocki/learnlab/pkg/models"
)

// Counter counts the queries and symbols it forwards.
type Counter[D comparable] struct {
	delegate Oracle[D]
	queries  int64
	symbols  int64

	queryMetric  prometheus.Counter
	symbolMetric prometheus.Counter
}

var _ Oracle[bool] = (*Counter[bool])(nil)

// CounterOption configures a Counter.
type CounterOption func(*counterOptions)

type counterOptions struct {
	queries prometheus.Counter
	symbols prometheus.Counter
}

// WithMetrics also adds the counts to prometheus counters. Either may be nil.
func WithMetrics(queries, symbols prometheus.Counter) CounterOption {
	return func(o *counterOptions) {
		o.queries = queries
		o.symbols = symbols
	}
}

// NewCounter wraps delegate.
func NewCounter[D comparable](delegate Oracle[D], opts ...CounterOption) *Counter[D] {
	var o counterOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Counter[D]{
		delegate:     delegate,
		queryMetric:  o.queries,
		symbolMetric: o.symbols,
	}
}

// Process counts the batch, then forwards it.
func (c *Counter[D]) Process(queries []*models.Query[D]) error {
	var symbols int64
	for _, q := range queries {
		symbols += int64(q.Prefix.Len() + q.Suffix.Len())
	}
	c.queries += int64(len(queries))
	c.symbols += symbols
	if c.queryMetric != nil {
		c.queryMetric.Add(float64(len(queries)))
	}
	if c.symbolMetric != nil {
		c.symbolMetric.Add(float64(symbols))
	}
	return failure(c.delegate.Process(queries))
}

// Count returns the number of queries forwarded so far.
func (c *Counter[D]) Count() int64 {
	return c.queries
}

// Symbols returns the total length of the queries forwarded so far.
func (c *Counter[D]) Symbols() int64 {
	return c.symbols
}

// Reset zeroes both counts. Prometheus counters are not affected.
func (c *Counter[D]) Reset() {
	c.queries = 0
	c.symbols = 0
}

package oracle

import (
	"github.com/ShayCichocki/learnlab/pkg/models"
)

// Recorder remembers the input of every query it forwards since the last
// call to FetchNew.
type Recorder[D comparable] struct {
	delegate Oracle[D]
	recorded []models.Word
}

var _ Oracle[bool] = (*Recorder[bool])(nil)

// NewRecorder wraps delegate.
func NewRecorder[D comparable](delegate Oracle[D]) *Recorder[D] {
	return &Recorder[D]{delegate: delegate}
}

// Process records the queries, then forwards them unchanged.
func (r *Recorder[D]) Process(queries []*models.Query[D]) error {
	for _, q := range queries {
		r.recorded = append(r.recorded, q.Input())
	}
	return failure(r.delegate.Process(queries))
}

// FetchNew returns the inputs recorded since the previous call, in issue
// order, and starts a fresh record.
func (r *Recorder[D]) FetchNew() []models.Word {
	out := r.recorded
	r.recorded = nil
	return out
}

// Pending returns the number of recorded inputs not yet fetched.
func (r *Recorder[D]) Pending() int {
	return len(r.recorded)
}

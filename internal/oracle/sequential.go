package oracle

import (
	"github.com/ShayCichocki/learnlab/pkg/models"
)

// Sequential forwards every query in its own batch. It models targets that
// cannot handle batched queries.
type Sequential[D comparable] struct {
	delegate Oracle[D]
}

// NewSequential wraps delegate.
func NewSequential[D comparable](delegate Oracle[D]) *Sequential[D] {
	return &Sequential[D]{delegate: delegate}
}

// Process implements Oracle.
func (s *Sequential[D]) Process(queries []*models.Query[D]) error {
	for _, q := range queries {
		if err := s.delegate.Process([]*models.Query[D]{q}); err != nil {
			return failure(err)
		}
	}
	return nil
}

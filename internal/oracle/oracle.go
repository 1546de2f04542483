// Package oracle defines membership oracles and the wrappers that record,
// count and cache the queries passing through them.
package oracle

import (
	"errors"
	"fmt"

	"github.com/ShayCichocki/learnlab/internal/automaton"
	"github.com/ShayCichocki/learnlab/pkg/models"
)

// ErrOracleFailure indicates the membership oracle could not answer.
var ErrOracleFailure = errors.New("membership oracle failure")

// Oracle answers batches of membership queries by filling their outputs.
//
// Implementations are not required to be safe for concurrent use.
type Oracle[D comparable] interface {
	Process(queries []*models.Query[D]) error
}

// Func adapts a function to the Oracle interface.
type Func[D comparable] func(queries []*models.Query[D]) error

// Process calls f.
func (f Func[D]) Process(queries []*models.Query[D]) error {
	return f(queries)
}

// Answer poses a single query and returns its output.
func Answer[D comparable](o Oracle[D], prefix, suffix models.Word) (D, error) {
	q := models.NewQuery[D](prefix, suffix)
	if err := o.Process([]*models.Query[D]{q}); err != nil {
		var zero D
		return zero, err
	}
	return q.Output(), nil
}

// Simulator answers queries by running them on a known automaton.
type Simulator[D comparable] struct {
	target automaton.Automaton[D]
}

// NewSimulator creates an oracle backed by target.
func NewSimulator[D comparable](target automaton.Automaton[D]) *Simulator[D] {
	return &Simulator[D]{target: target}
}

// Process implements Oracle. Queries with symbols outside the target's
// alphabet fail.
func (s *Simulator[D]) Process(queries []*models.Query[D]) error {
	alpha := s.target.Alphabet()
	for _, q := range queries {
		if !alpha.Covers(q.Prefix) || !alpha.Covers(q.Suffix) {
			return fmt.Errorf("%w: query %s outside alphabet %s", ErrOracleFailure, q.Input(), alpha)
		}
		q.Answer(s.target.SuffixOutput(q.Prefix, q.Suffix))
	}
	return nil
}

// Target returns the simulated automaton.
func (s *Simulator[D]) Target() automaton.Automaton[D] {
	return s.target
}

// failure marks err as an oracle failure unless it already is one.
func failure(err error) error {
	if err == nil || errors.Is(err, ErrOracleFailure) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrOracleFailure, err)
}

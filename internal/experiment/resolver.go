package experiment

import (
	"context"
	"fmt"

	"github.com/ShayCichocki/learnlab/internal/automaton"
	"github.com/ShayCichocki/learnlab/internal/learner"
	"github.com/ShayCichocki/learnlab/pkg/models"
)

// Prompt texts.
const (
	EnterCounterexample = "Enter counterexample (symbols separated by spaces)"
	TerminateTitle      = "Terminate learning?"
)

// Resolver asks a human for a counterexample and validates it against the
// hypothesis and the target.
type Resolver[D comparable] struct {
	Prompter Prompter
	// OnReject is called for every rejected word.
	OnReject func(input string, err error)
}

// Resolve returns a word on which hyp and target disagree. hint is a known
// separating word, shown when the user wants to stop. ok is false when the
// user terminates.
func (r Resolver[D]) Resolve(ctx context.Context, hyp, target automaton.Automaton[D], hint models.Word) (models.Word, bool, error) {
	alphabet := target.Alphabet()
	last := ""
	for {
		text, ok, err := r.Prompter.Prompt(ctx, EnterCounterexample, last)
		if err != nil {
			return models.Word{}, false, fmt.Errorf("prompt counterexample: %w", err)
		}
		if !ok {
			stop, err := r.Prompter.Confirm(ctx, TerminateTitle, fmt.Sprintf(
				"The hypothesis is not yet equivalent to the target system. A sample counterexample is %s. Terminate anyway?", hint))
			if err != nil {
				return models.Word{}, false, fmt.Errorf("confirm termination: %w", err)
			}
			if stop {
				return models.Word{}, false, nil
			}
			continue
		}
		last = text

		u, err := alphabet.ParseWord(text)
		if err != nil {
			r.reject(text, err)
			continue
		}
		if hyp.Output(u) == target.Output(u) {
			r.reject(text, &NotCounterexampleError{Word: u})
			continue
		}
		return u, true, nil
	}
}

// NotCounterexampleError reports a user-supplied word on which the
// hypothesis already agrees with the target.
type NotCounterexampleError struct {
	Word models.Word
}

func (e *NotCounterexampleError) Error() string {
	return fmt.Sprintf("Word '%s' is not a counterexample!", e.Word)
}

// Unwrap lets errors.Is match learner.ErrInvalidCounterexample.
func (e *NotCounterexampleError) Unwrap() error {
	return learner.ErrInvalidCounterexample
}

func (r Resolver[D]) reject(input string, err error) {
	r.Prompter.Notify(err.Error())
	if r.OnReject != nil {
		r.OnReject(input, err)
	}
}

package models

import "fmt"

// Query is a membership query: the output produced by Suffix after reading
// Prefix from the initial state.
type Query[D comparable] struct {
	// Prefix is the access part of the input.
	Prefix Word
	// Suffix is the part whose output is asked for.
	Suffix Word

	output   D
	answered bool
}

// NewQuery creates an unanswered query.
func NewQuery[D comparable](prefix, suffix Word) *Query[D] {
	return &Query[D]{Prefix: prefix, Suffix: suffix}
}

// Input returns prefix followed by suffix.
func (q *Query[D]) Input() Word {
	return q.Prefix.Concat(q.Suffix)
}

// Answer fills the output slot.
func (q *Query[D]) Answer(output D) {
	q.output = output
	q.answered = true
}

// Output returns the answer; it is the zero value until Answer is called.
func (q *Query[D]) Output() D {
	return q.output
}

// Answered reports whether an oracle has filled the output slot.
func (q *Query[D]) Answered() bool {
	return q.answered
}

func (q *Query[D]) String() string {
	if !q.answered {
		return fmt.Sprintf("Query[%s | %s]", q.Prefix, q.Suffix)
	}
	return fmt.Sprintf("Query[%s | %s / %v]", q.Prefix, q.Suffix, q.output)
}

// Counterexample is an input on which target and hypothesis disagree,
// together with the target's output on it.
type Counterexample[D comparable] struct {
	Input  Word
	Output D
}

func (c Counterexample[D]) String() string {
	return fmt.Sprintf("%s / %v", c.Input, c.Output)
}

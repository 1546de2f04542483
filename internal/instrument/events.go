// Package instrument defines the events a learner emits around its internal
// refinement steps and the observers that receive them.
//
// Events carry identity handles into the learner's structures. Observers may
// read through the handles but must not mutate learner state.
package instrument

import (
	"fmt"

	"github.com/ShayCichocki/learnlab/pkg/models"
)

// State is a handle on a hypothesis state.
type State interface {
	ID() int
	AccessSequence() models.Word
}

// Node is a handle on a node of the learner's discrimination structure.
type Node interface {
	// Discriminator is the suffix separating the node's children; empty for leaves.
	Discriminator() models.Word
	IsLeaf() bool
	// LeafState is the state stored at a leaf, or nil.
	LeafState() State
}

// Transition is a handle on a hypothesis transition.
type Transition interface {
	Source() State
	Symbol() string
	// Target is the current target state, or nil while unresolved.
	Target() State
	AccessSequence() models.Word
}

// Phase places an event before or after the mutation it brackets.
type Phase int

const (
	// Pre events fire before the mutation.
	Pre Phase = iota
	// Post events fire after the mutation completed.
	Post
)

func (p Phase) String() string {
	if p == Pre {
		return "pre"
	}
	return "post"
}

// Kind identifies an event variant.
type Kind string

const (
	KindSplit       Kind = "split"
	KindConsistency Kind = "consistency"
	KindFinalize    Kind = "finalize"
)

// Event is one of SplitEvent, ConsistencyEvent or FinalizeEvent.
type Event interface {
	Kind() Kind
}

// SplitEvent brackets the creation of a new state by splitting the target
// of Transition with Discriminator.
type SplitEvent struct {
	Phase         Phase
	Transition    Transition
	Discriminator models.Word
}

// Kind implements Event.
func (SplitEvent) Kind() Kind { return KindSplit }

// ConsistencyEvent reports that the hypothesis output of State on the
// discriminator of Node contradicts Outcome, the branch State is sorted into.
type ConsistencyEvent struct {
	State   State
	Node    Node
	Outcome any
}

// Kind implements Event.
func (ConsistencyEvent) Kind() Kind { return KindConsistency }

// Splitter describes how two states are separated: on Symbol their
// successors are separated by SuccSeparator, giving the discriminator
// Symbol·SuccSeparator.Discriminator().
type Splitter struct {
	State1        State
	State2        State
	Symbol        string
	Discriminator models.Word
	SuccSeparator Node
}

// FinalizeEvent brackets replacing the temporary discriminator of
// BlockRoot with the final one from Splitter.
type FinalizeEvent struct {
	Phase     Phase
	BlockRoot Node
	Splitter  Splitter
}

// Kind implements Event.
func (FinalizeEvent) Kind() Kind { return KindFinalize }

// Describe returns a one-line description of an event for logs.
func Describe(ev Event) string {
	switch e := ev.(type) {
	case SplitEvent:
		return fmt.Sprintf("%s-split %s·%s with %s", e.Phase,
			e.Transition.Source().AccessSequence(), e.Transition.Symbol(), e.Discriminator)
	case ConsistencyEvent:
		return fmt.Sprintf("consistency state %s node %s outcome %v",
			e.State.AccessSequence(), e.Node.Discriminator(), e.Outcome)
	case FinalizeEvent:
		return fmt.Sprintf("%s-finalize %s -> %s", e.Phase,
			e.BlockRoot.Discriminator(), e.Splitter.Discriminator)
	default:
		return fmt.Sprintf("event %T", ev)
	}
}

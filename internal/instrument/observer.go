package instrument

import (
	"fmt"

	"github.com/ShayCichocki/learnlab/pkg/models"
)

// Observer receives events synchronously on the learner's goroutine. A
// non-nil error aborts the refinement in progress.
type Observer interface {
	Observe(ev Event) error
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ev Event) error

// Observe calls f.
func (f ObserverFunc) Observe(ev Event) error {
	return f(ev)
}

// Dispatcher delivers events to registered observers in registration order.
// The zero value is ready to use.
type Dispatcher struct {
	observers []Observer
}

// Register adds an observer.
func (d *Dispatcher) Register(o Observer) {
	if o != nil {
		d.observers = append(d.observers, o)
	}
}

// Len returns the number of registered observers.
func (d *Dispatcher) Len() int {
	return len(d.observers)
}

// Emit delivers ev to every observer. Delivery stops at the first error,
// which is returned.
func (d *Dispatcher) Emit(ev Event) error {
	for _, o := range d.observers {
		if err := o.Observe(ev); err != nil {
			return fmt.Errorf("observe %s event: %w", ev.Kind(), err)
		}
	}
	return nil
}

// Listener is the paired-callback form of an observer.
type Listener interface {
	PreSplit(t Transition, discriminator models.Word) error
	PostSplit(t Transition, discriminator models.Word) error
	EnsureConsistency(state State, node Node, outcome any) error
	PreFinalizeDiscriminator(blockRoot Node, splitter Splitter) error
	PostFinalizeDiscriminator(blockRoot Node, splitter Splitter) error
}

// BaseListener implements Listener with no-ops. Embed it to override only
// some callbacks.
type BaseListener struct{}

func (BaseListener) PreSplit(Transition, models.Word) error { return nil }

func (BaseListener) PostSplit(Transition, models.Word) error { return nil }

func (BaseListener) EnsureConsistency(State, Node, any) error { return nil }

func (BaseListener) PreFinalizeDiscriminator(Node, Splitter) error { return nil }

func (BaseListener) PostFinalizeDiscriminator(Node, Splitter) error { return nil }

// FromListener adapts a Listener to the Observer interface.
func FromListener(l Listener) Observer {
	return ObserverFunc(func(ev Event) error {
		switch e := ev.(type) {
		case SplitEvent:
			if e.Phase == Pre {
				return l.PreSplit(e.Transition, e.Discriminator)
			}
			return l.PostSplit(e.Transition, e.Discriminator)
		case ConsistencyEvent:
			return l.EnsureConsistency(e.State, e.Node, e.Outcome)
		case FinalizeEvent:
			if e.Phase == Pre {
				return l.PreFinalizeDiscriminator(e.BlockRoot, e.Splitter)
			}
			return l.PostFinalizeDiscriminator(e.BlockRoot, e.Splitter)
		default:
			return nil
		}
	})
}

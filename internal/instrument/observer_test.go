package instrument

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ShayCichocki/learnlab/pkg/models"
)

type fakeState struct {
	id  int
	acc models.Word
}

func (s *fakeState) ID() int                     { return s.id }
func (s *fakeState) AccessSequence() models.Word { return s.acc }

type fakeTransition struct {
	src *fakeState
	sym string
}

func (t *fakeTransition) Source() State              { return t.src }
func (t *fakeTransition) Symbol() string             { return t.sym }
func (t *fakeTransition) Target() State              { return nil }
func (t *fakeTransition) AccessSequence() models.Word { return t.src.acc.Append(t.sym) }

type fakeNode struct {
	disc models.Word
}

func (n *fakeNode) Discriminator() models.Word { return n.disc }
func (n *fakeNode) IsLeaf() bool               { return n.disc.IsEmpty() }
func (n *fakeNode) LeafState() State           { return nil }

func TestDispatcher_Order(t *testing.T) {
	var d Dispatcher
	var got []string

	d.Register(ObserverFunc(func(Event) error { got = append(got, "first"); return nil }))
	d.Register(ObserverFunc(func(Event) error { got = append(got, "second"); return nil }))
	d.Register(nil)

	if err := d.Emit(ConsistencyEvent{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"first", "second"}) {
		t.Errorf("delivery order = %v", got)
	}
	if d.Len() != 2 {
		t.Errorf("nil observer should be ignored, len=%d", d.Len())
	}
}

func TestDispatcher_StopsAtFirstError(t *testing.T) {
	var d Dispatcher
	boom := errors.New("boom")
	called := false

	d.Register(ObserverFunc(func(Event) error { return boom }))
	d.Register(ObserverFunc(func(Event) error { called = true; return nil }))

	err := d.Emit(SplitEvent{Phase: Pre})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if called {
		t.Error("observers after a failing one must not be called")
	}
}

type recordingListener struct {
	BaseListener
	calls []string
}

func (r *recordingListener) PreSplit(Transition, models.Word) error {
	r.calls = append(r.calls, "preSplit")
	return nil
}

func (r *recordingListener) PostSplit(Transition, models.Word) error {
	r.calls = append(r.calls, "postSplit")
	return nil
}

func (r *recordingListener) PostFinalizeDiscriminator(Node, Splitter) error {
	r.calls = append(r.calls, "postFinalize")
	return nil
}

func TestFromListener(t *testing.T) {
	l := &recordingListener{}
	o := FromListener(l)

	tr := &fakeTransition{src: &fakeState{id: 0}, sym: "a"}
	events := []Event{
		SplitEvent{Phase: Pre, Transition: tr, Discriminator: models.NewWord("b")},
		SplitEvent{Phase: Post, Transition: tr, Discriminator: models.NewWord("b")},
		ConsistencyEvent{State: &fakeState{}, Node: &fakeNode{}, Outcome: true},
		FinalizeEvent{Phase: Pre, BlockRoot: &fakeNode{}},
		FinalizeEvent{Phase: Post, BlockRoot: &fakeNode{}},
	}
	for _, ev := range events {
		if err := o.Observe(ev); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	want := []string{"preSplit", "postSplit", "postFinalize"}
	if !reflect.DeepEqual(l.calls, want) {
		t.Errorf("calls = %v, want %v", l.calls, want)
	}
}

func TestDescribe(t *testing.T) {
	tr := &fakeTransition{src: &fakeState{acc: models.NewWord("a")}, sym: "b"}
	got := Describe(SplitEvent{Phase: Post, Transition: tr, Discriminator: models.NewWord("c")})
	if got != "post-split a·b with c" {
		t.Errorf("Describe() = %q", got)
	}
}

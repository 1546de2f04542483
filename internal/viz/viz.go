// Package viz renders learner instrumentation events. For every checkpoint
// it publishes the hypothesis and the discrimination tree with the involved
// states, nodes and transitions highlighted, and explains the step through
// a notifier.
package viz

import (
	"context"
	"fmt"
	"log"

	"github.com/ShayCichocki/learnlab/internal/graph"
	"github.com/ShayCichocki/learnlab/internal/instrument"
	"github.com/ShayCichocki/learnlab/internal/logging"
	"github.com/ShayCichocki/learnlab/internal/present"
	"github.com/ShayCichocki/learnlab/pkg/models"
)

// Highlight colors.
const (
	Red   = "red"
	Blue  = "blue"
	Green = "green"
)

// Source exposes the learner structures to render.
type Source interface {
	HypothesisGraph() *graph.Graph
	TreeGraph() *graph.Graph
	FormatOutcome(outcome any) string
}

// Observer renders events to a sink. Render failures are logged and never
// returned, so visualization cannot abort learning.
type Observer struct {
	instrument.BaseListener

	ctx      context.Context
	source   Source
	sink     present.Sink
	notifier present.Notifier
	logger   *logging.DebugLogger
}

var _ instrument.Listener = (*Observer)(nil)

// New creates an observer for source. A nil notifier discards messages.
func New(ctx context.Context, source Source, sink present.Sink, notifier present.Notifier, logger *logging.DebugLogger) *Observer {
	if notifier == nil {
		notifier = present.NotifierFunc(func(string) {})
	}
	return &Observer{ctx: ctx, source: source, sink: sink, notifier: notifier, logger: logger}
}

// Observer returns o as an instrument.Observer.
func (o *Observer) Observer() instrument.Observer {
	return instrument.FromListener(o)
}

// PreSplit implements instrument.Listener.
func (o *Observer) PreSplit(t instrument.Transition, disc models.Word) error {
	target := t.Target()
	o.show(
		[]graph.Decorator{
			graph.Highlight{Color: Red, Nodes: refs(target)},
			graph.Highlight{Color: Blue, Edges: []any{t}},
		},
		[]graph.Decorator{graph.Highlight{Color: Red, Nodes: refs(target)}},
	)
	o.notifier.Notify(fmt.Sprintf(
		"MQ([%s] %s) != MQ([%s] %s %s).\nSplitting state %s, new state with access sequence %s,\nand using %s as temporary discriminator",
		t.AccessSequence(), disc, t.Source().AccessSequence(), t.Symbol(), disc,
		stateName(target), t.AccessSequence(), disc))
	return nil
}

// EnsureConsistency implements instrument.Listener.
func (o *Observer) EnsureConsistency(state instrument.State, node instrument.Node, outcome any) error {
	formatted := o.source.FormatOutcome(outcome)
	o.show(
		[]graph.Decorator{graph.Highlight{Color: Red, Nodes: []any{state}}},
		[]graph.Decorator{
			graph.Highlight{Color: Blue, Nodes: []any{node}},
			graph.Highlight{Color: Red, Nodes: []any{state}},
			graph.EdgeLabelHighlight{Color: Red, From: node, Label: formatted},
		},
	)
	o.notifier.Notify(fmt.Sprintf(
		"Unstable hypothesis:\nState %s (access sequence %s) predicts wrong output for suffix %s\n"+
			"Real output: %s (according to discrimination tree).\nUsing %s as counterexample.",
		stateName(state), state.AccessSequence(), node.Discriminator(), formatted,
		state.AccessSequence().Concat(node.Discriminator())))
	return nil
}

// PreFinalizeDiscriminator implements instrument.Listener.
func (o *Observer) PreFinalizeDiscriminator(blockRoot instrument.Node, sp instrument.Splitter) error {
	states := []any{sp.State1, sp.State2}
	tree := []graph.Decorator{
		graph.Highlight{Color: Red, Nodes: []any{blockRoot}},
		graph.Highlight{Color: Blue, Nodes: states},
	}
	if sp.SuccSeparator != nil {
		tree = append(tree, graph.Highlight{Color: Green, Nodes: []any{sp.SuccSeparator}})
	}
	o.show(
		[]graph.Decorator{
			graph.Highlight{Color: Blue, Nodes: states},
			symbolHighlight{color: Blue, sources: states, symbol: sp.Symbol},
		},
		tree,
	)
	if sp.SuccSeparator != nil {
		o.notifier.Notify(fmt.Sprintf(
			"'%s'-successor of states %s and %s is separated by final discriminator %s.\n"+
				"Using %s to replace temporary discriminator %s",
			sp.Symbol, stateName(sp.State1), stateName(sp.State2), sp.SuccSeparator.Discriminator(),
			sp.Discriminator, blockRoot.Discriminator()))
	} else {
		o.notifier.Notify(fmt.Sprintf(
			"States %s and %s produce differing outputs on %s.\nUsing %s to replace temporary discriminator %s.",
			stateName(sp.State1), stateName(sp.State2), sp.Symbol, sp.Symbol, blockRoot.Discriminator()))
	}
	return nil
}

func (o *Observer) show(hyp, tree []graph.Decorator) {
	var artifacts []present.Artifact
	if g := o.source.HypothesisGraph(); g != nil {
		artifacts = append(artifacts, present.GraphArtifact("Hypothesis", g, hyp...))
	}
	if g := o.source.TreeGraph(); g != nil {
		artifacts = append(artifacts, present.GraphArtifact("Discrimination tree", g, tree...))
	}
	if err := o.sink.Show(o.ctx, artifacts...); err != nil {
		log.Printf("[viz] render failed: %v", err)
		o.logger.Log("[viz] render failed: %v", err)
	}
}

// symbolHighlight colors the transitions on symbol leaving one of sources.
type symbolHighlight struct {
	color   string
	sources []any
	symbol  string
}

func (symbolHighlight) DecorateNode(*graph.Node, graph.Attrs) {}

func (h symbolHighlight) DecorateEdge(e *graph.Edge, _, _ *graph.Node, attrs graph.Attrs) {
	t, ok := e.Ref.(instrument.Transition)
	if !ok || t.Symbol() != h.symbol {
		return
	}
	for _, s := range h.sources {
		if s == any(t.Source()) {
			attrs["color"] = h.color
			attrs["fontcolor"] = h.color
			attrs["penwidth"] = "2"
			return
		}
	}
}

func refs(s instrument.State) []any {
	if s == nil {
		return nil
	}
	return []any{s}
}

func stateName(s instrument.State) string {
	if s == nil {
		return "?"
	}
	return fmt.Sprintf("q%d", s.ID())
}

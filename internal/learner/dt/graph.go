package dt

import (
	"fmt"

	"github.com/ShayCichocki/learnlab/internal/automaton"
	"github.com/ShayCichocki/learnlab/internal/graph"
)

// HypothesisGraph renders the current hypothesis. Node refs are *State and
// edge refs are *Transition, so observers can highlight event handles.
// It returns nil before Start.
func (l *Learner[D]) HypothesisGraph() *graph.Graph {
	if l.hyp == nil {
		return nil
	}
	g := l.hyp.Graph()
	for _, n := range g.Nodes() {
		if id, ok := n.Ref.(int); ok {
			n.Ref = l.states[id]
		}
	}
	for _, e := range g.Edges() {
		if ref, ok := e.Ref.(automaton.TransitionRef); ok {
			e.Ref = l.states[ref.State].trans[ref.Symbol]
		}
	}
	return g
}

// TreeGraph renders the discrimination tree. Inner nodes are boxes labeled
// with their discriminator and refer to their *Node; leaves refer to their
// *State. Edges below temporary discriminators are dashed. It returns nil
// before Start.
func (l *Learner[D]) TreeGraph() *graph.Graph {
	if l.root == nil {
		return nil
	}
	g := graph.New("tree")
	next := 0
	var walk func(n *Node[D]) string
	walk = func(n *Node[D]) string {
		id := fmt.Sprintf("n%d", next)
		next++
		if n.state != nil {
			v := g.AddNode(id, fmt.Sprintf("q%d", n.state.id))
			v.Ref = n.state
			return id
		}
		label := n.disc.String()
		if n.temporary {
			label += " (temp)"
		}
		v := g.AddNode(id, label)
		v.Shape = "box"
		v.Ref = n
		for i, c := range n.children {
			e := g.MustEdge(id, walk(c), l.model.Format(n.outcomes[i]))
			if n.temporary {
				e.Style = "dashed"
			}
		}
		return id
	}
	walk(l.root)
	return g
}

// FormatOutcome renders an event outcome the way tree edges are labeled.
func (l *Learner[D]) FormatOutcome(outcome any) string {
	if d, ok := outcome.(D); ok {
		return l.model.Format(d)
	}
	return fmt.Sprint(outcome)
}

package dt

import (
	"github.com/ShayCichocki/learnlab/internal/instrument"
	"github.com/ShayCichocki/learnlab/pkg/models"
)

// State is a hypothesis state. Its access sequence reaches it through the
// spanning tree of the hypothesis.
type State[D comparable] struct {
	id     int
	access models.Word
	leaf   *Node[D]
	local  []D
	trans  []*Transition[D]
}

var _ instrument.State = (*State[bool])(nil)

// ID implements instrument.State.
func (s *State[D]) ID() int { return s.id }

// AccessSequence implements instrument.State.
func (s *State[D]) AccessSequence() models.Word { return s.access }

// Transition is an outgoing transition of a state. It points into the
// discrimination tree; after closing, always at a leaf.
type Transition[D comparable] struct {
	source *State[D]
	symbol string
	node   *Node[D]
	// tree transitions are the first transition into their target state.
	tree bool
}

var _ instrument.Transition = (*Transition[bool])(nil)

// Source implements instrument.Transition.
func (t *Transition[D]) Source() instrument.State { return t.source }

// Symbol implements instrument.Transition.
func (t *Transition[D]) Symbol() string { return t.symbol }

// Target implements instrument.Transition. It is nil while the transition
// points at an inner node.
func (t *Transition[D]) Target() instrument.State {
	if t.node == nil || t.node.state == nil {
		return nil
	}
	return t.node.state
}

// AccessSequence implements instrument.Transition.
func (t *Transition[D]) AccessSequence() models.Word {
	return t.source.access.Append(t.symbol)
}

// IsTree reports whether the transition belongs to the spanning tree.
func (t *Transition[D]) IsTree() bool { return t.tree }

// Node is a node of the discrimination tree. Inner nodes carry a
// discriminator and have one child per observed outcome; leaves hold a
// state.
type Node[D comparable] struct {
	parent  *Node[D]
	outcome D
	depth   int

	disc models.Word
	// level is the index of disc among the local suffixes, or -1.
	level     int
	temporary bool
	outcomes  []D
	children  []*Node[D]

	state *State[D]
}

var _ instrument.Node = (*Node[bool])(nil)

// Discriminator implements instrument.Node.
func (n *Node[D]) Discriminator() models.Word { return n.disc }

// IsLeaf implements instrument.Node.
func (n *Node[D]) IsLeaf() bool { return n.state != nil }

// LeafState implements instrument.Node.
func (n *Node[D]) LeafState() instrument.State {
	if n.state == nil {
		return nil
	}
	return n.state
}

// Temporary reports whether the discriminator may still be replaced.
func (n *Node[D]) Temporary() bool { return n.temporary }

// Children returns the outcomes and child nodes in creation order.
func (n *Node[D]) Children() ([]D, []*Node[D]) { return n.outcomes, n.children }

// Outcome returns the outcome on the edge from the parent.
func (n *Node[D]) Outcome() D { return n.outcome }

// inner reports whether n routes words to children. Fresh leaves without
// a state are not inner.
func (n *Node[D]) inner() bool {
	return n.state == nil && (n.level >= 0 || len(n.children) > 0)
}

func (n *Node[D]) child(out D) *Node[D] {
	for i, o := range n.outcomes {
		if o == out {
			return n.children[i]
		}
	}
	return nil
}

func (n *Node[D]) addChild(out D) *Node[D] {
	c := &Node[D]{parent: n, outcome: out, depth: n.depth + 1, level: -1}
	n.outcomes = append(n.outcomes, out)
	n.children = append(n.children, c)
	return c
}

// leaves appends the leaves below n in tree order.
func (n *Node[D]) leaves(out []*Node[D]) []*Node[D] {
	if n.state != nil {
		return append(out, n)
	}
	for _, c := range n.children {
		out = c.leaves(out)
	}
	return out
}

// ancestorOf reports whether n is an ancestor of (or equal to) m.
func (n *Node[D]) ancestorOf(m *Node[D]) bool {
	for ; m != nil; m = m.parent {
		if m == n {
			return true
		}
	}
	return false
}

// lca returns the lowest common ancestor of a and b.
func lca[D comparable](a, b *Node[D]) *Node[D] {
	for a.depth > b.depth {
		a = a.parent
	}
	for b.depth > a.depth {
		b = b.parent
	}
	for a != b {
		a, b = a.parent, b.parent
	}
	return a
}

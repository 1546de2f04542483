// Package graph provides labeled directed graphs used to render automata and
// discrimination trees.
package graph

import (
	"errors"
	"fmt"
)

// ErrUnknownNode indicates an edge refers to a node that was never added.
var ErrUnknownNode = errors.New("unknown node")

// Node is a vertex of a Graph.
type Node struct {
	// ID is unique within the graph.
	ID string
	// Label is the text shown inside the node.
	Label string
	// Shape is a graphviz shape name; empty means the graph default.
	Shape string
	// Ref identifies the domain object behind the node (a state or tree node).
	Ref any
	// Hidden nodes are drawn without outline or label.
	Hidden bool
}

// Edge is a directed, labeled edge.
type Edge struct {
	From  string
	To    string
	Label string
	// Ref identifies the domain object behind the edge (a transition).
	Ref any
	// Style is a graphviz edge style such as "dashed"; empty means solid.
	Style string
}

// Graph is an ordered collection of nodes and edges.
//
// Nodes and edges keep insertion order so output is deterministic.
type Graph struct {
	Name  string
	nodes []*Node
	byID  map[string]*Node
	edges []*Edge
}

// New creates an empty graph.
func New(name string) *Graph {
	return &Graph{
		Name: name,
		byID: make(map[string]*Node),
	}
}

// AddNode adds a node, or returns the existing node with the same ID.
func (g *Graph) AddNode(id, label string) *Node {
	if n, ok := g.byID[id]; ok {
		return n
	}
	n := &Node{ID: id, Label: label}
	g.nodes = append(g.nodes, n)
	g.byID[id] = n
	return n
}

// AddEdge adds an edge between two existing nodes.
func (g *Graph) AddEdge(from, to, label string) (*Edge, error) {
	if _, ok := g.byID[from]; !ok {
		return nil, fmt.Errorf("add edge %s->%s: %w: %s", from, to, ErrUnknownNode, from)
	}
	if _, ok := g.byID[to]; !ok {
		return nil, fmt.Errorf("add edge %s->%s: %w: %s", from, to, ErrUnknownNode, to)
	}
	e := &Edge{From: from, To: to, Label: label}
	g.edges = append(g.edges, e)
	return e, nil
}

// MustEdge is AddEdge for graphs built from already validated structures.
func (g *Graph) MustEdge(from, to, label string) *Edge {
	e, err := g.AddEdge(from, to, label)
	if err != nil {
		panic(err)
	}
	return e
}

// Node returns the node with the given ID, or nil.
func (g *Graph) Node(id string) *Node {
	return g.byID[id]
}

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	return g.nodes
}

// Edges returns the edges in insertion order.
func (g *Graph) Edges() []*Edge {
	return g.edges
}

// NodeByRef returns the first node whose Ref equals ref.
func (g *Graph) NodeByRef(ref any) *Node {
	for _, n := range g.nodes {
		if n.Ref == ref {
			return n
		}
	}
	return nil
}

// EdgesFrom returns the edges leaving the given node.
func (g *Graph) EdgesFrom(id string) []*Edge {
	var out []*Edge
	for _, e := range g.edges {
		if e.From == id {
			out = append(out, e)
		}
	}
	return out
}

package graph

import (
	"errors"
	"strings"
	"testing"
)

func TestGraph_AddEdgeUnknownNode(t *testing.T) {
	g := New("t")
	g.AddNode("a", "A")

	_, err := g.AddEdge("a", "b", "x")
	if !errors.Is(err, ErrUnknownNode) {
		t.Fatalf("expected ErrUnknownNode, got %v", err)
	}
}

func TestGraph_AddNodeIdempotent(t *testing.T) {
	g := New("t")
	first := g.AddNode("a", "A")
	second := g.AddNode("a", "other")

	if first != second {
		t.Error("AddNode should return the existing node")
	}
	if len(g.Nodes()) != 1 {
		t.Errorf("expected 1 node, got %d", len(g.Nodes()))
	}
}

func TestGraph_WriteDOT(t *testing.T) {
	g := New("dfa")
	g.AddNode("s0", "0").Shape = "doublecircle"
	g.AddNode("s1", "1")
	g.MustEdge("s0", "s1", "a")
	g.MustEdge("s1", "s0", "b")

	dot := g.DOT()

	for _, want := range []string{
		`digraph "dfa" {`,
		`"s0" [label="0", shape="doublecircle"];`,
		`"s0" -> "s1" [label="a"];`,
		`"s1" -> "s0" [label="b"];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT output missing %q:\n%s", want, dot)
		}
	}
}

func TestHighlight(t *testing.T) {
	type ref struct{ id int }
	target := &ref{1}
	other := &ref{2}

	g := New("h")
	g.AddNode("a", "a").Ref = target
	g.AddNode("b", "b").Ref = other
	e := g.MustEdge("a", "b", "x")
	e.Ref = target

	dot := g.DOT(Highlight{Color: "red", Nodes: []any{target}, Edges: []any{target}})

	if !strings.Contains(dot, `"a" [fillcolor="red", label="a", style="filled"];`) {
		t.Errorf("node a not highlighted:\n%s", dot)
	}
	if strings.Contains(dot, `"b" [fillcolor`) {
		t.Errorf("node b should not be highlighted:\n%s", dot)
	}
	if !strings.Contains(dot, `color="red"`) {
		t.Errorf("edge not highlighted:\n%s", dot)
	}
}

func TestEdgeLabelHighlight(t *testing.T) {
	type ref struct{ id int }
	node := &ref{1}

	g := New("h")
	g.AddNode("n", "n").Ref = node
	g.AddNode("l", "l")
	g.AddNode("r", "r")
	g.MustEdge("n", "l", "0")
	g.MustEdge("n", "r", "1")

	dot := g.DOT(EdgeLabelHighlight{Color: "red", From: node, Label: "1"})

	if !strings.Contains(dot, `"n" -> "r" [color="red", fontcolor="red", label="1", penwidth="2"];`) {
		t.Errorf("edge n->r not highlighted:\n%s", dot)
	}
	if !strings.Contains(dot, `"n" -> "l" [label="0"];`) {
		t.Errorf("edge n->l should be plain:\n%s", dot)
	}
}

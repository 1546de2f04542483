package graph

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Attrs are graphviz attributes of a node or edge.
type Attrs map[string]string

// Decorator adjusts the attributes of nodes and edges while writing DOT.
type Decorator interface {
	DecorateNode(n *Node, attrs Attrs)
	DecorateEdge(e *Edge, from, to *Node, attrs Attrs)
}

// Highlight colors nodes and edges whose Ref matches one of the given refs.
type Highlight struct {
	Color string
	Nodes []any
	Edges []any
}

// DecorateNode implements Decorator.
func (h Highlight) DecorateNode(n *Node, attrs Attrs) {
	if n.Ref == nil || !contains(h.Nodes, n.Ref) {
		return
	}
	attrs["style"] = "filled"
	attrs["fillcolor"] = h.Color
}

// DecorateEdge implements Decorator.
func (h Highlight) DecorateEdge(e *Edge, _, _ *Node, attrs Attrs) {
	if e.Ref == nil || !contains(h.Edges, e.Ref) {
		return
	}
	attrs["color"] = h.Color
	attrs["fontcolor"] = h.Color
	attrs["penwidth"] = "2"
}

// EdgeLabelHighlight colors the out-edges of a node by label.
type EdgeLabelHighlight struct {
	Color string
	From  any
	Label string
}

// DecorateNode implements Decorator.
func (EdgeLabelHighlight) DecorateNode(*Node, Attrs) {}

// DecorateEdge implements Decorator.
func (h EdgeLabelHighlight) DecorateEdge(e *Edge, from, _ *Node, attrs Attrs) {
	if e.Label != h.Label || from == nil || from.Ref == nil || from.Ref != h.From {
		return
	}
	attrs["color"] = h.Color
	attrs["fontcolor"] = h.Color
	attrs["penwidth"] = "2"
}

func contains(refs []any, ref any) bool {
	for _, r := range refs {
		if r == ref {
			return true
		}
	}
	return false
}

// WriteDOT renders the graph in graphviz DOT syntax.
func (g *Graph) WriteDOT(w io.Writer, decorators ...Decorator) error {
	bw := bufio.NewWriter(w)

	name := g.Name
	if name == "" {
		name = "g"
	}
	fmt.Fprintf(bw, "digraph %s {\n", quote(name))
	fmt.Fprintln(bw, "\tnode [shape=circle];")

	for _, n := range g.nodes {
		attrs := Attrs{"label": n.Label}
		if n.Shape != "" {
			attrs["shape"] = n.Shape
		}
		if n.Hidden {
			attrs["shape"] = "none"
			attrs["label"] = ""
			attrs["width"] = "0"
			attrs["height"] = "0"
		}
		for _, d := range decorators {
			d.DecorateNode(n, attrs)
		}
		fmt.Fprintf(bw, "\t%s [%s];\n", quote(n.ID), formatAttrs(attrs))
	}

	for _, e := range g.edges {
		attrs := Attrs{"label": e.Label}
		if e.Style != "" {
			attrs["style"] = e.Style
		}
		from, to := g.byID[e.From], g.byID[e.To]
		for _, d := range decorators {
			d.DecorateEdge(e, from, to, attrs)
		}
		fmt.Fprintf(bw, "\t%s -> %s [%s];\n", quote(e.From), quote(e.To), formatAttrs(attrs))
	}

	fmt.Fprintln(bw, "}")
	return bw.Flush()
}

// DOT returns the DOT rendering as a string.
func (g *Graph) DOT(decorators ...Decorator) string {
	var sb strings.Builder
	_ = g.WriteDOT(&sb, decorators...)
	return sb.String()
}

func formatAttrs(attrs Attrs) string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + quote(attrs[k])
	}
	return strings.Join(parts, ", ")
}

func quote(s string) string {
	return strconv.Quote(s)
}

// Package present publishes learning artifacts (automata, trees, tables and
// query lists) for a human to inspect.
package present

import (
	"context"
	"errors"
	"fmt"

	"github.com/ShayCichocki/learnlab/internal/graph"
	"github.com/ShayCichocki/learnlab/pkg/models"
)

// ErrRenderFailure indicates an artifact could not be published.
var ErrRenderFailure = errors.New("render failure")

// Artifact is a titled piece of content.
type Artifact struct {
	Title   string
	Content Content
}

// Content is one of *Graph, *Table or *Words.
type Content interface {
	contentKind() string
}

// Graph is a renderable graph with optional highlighting.
type Graph struct {
	Graph      *graph.Graph
	Decorators []graph.Decorator
}

func (*Graph) contentKind() string { return "graph" }

// DOT renders the graph with its decorators.
func (g *Graph) DOT() string {
	return g.Graph.DOT(g.Decorators...)
}

// Table is tabular observation data.
type Table struct {
	Columns []string
	Rows    []TableRow
}

func (*Table) contentKind() string { return "table" }

// TableRow is one row of a Table. Rows with the same Group are shown
// together; the learner decides group names.
type TableRow struct {
	Header string
	Cells  []string
	Group  string
}

// Words is an ordered list of words.
type Words struct {
	Words []models.Word
}

func (*Words) contentKind() string { return "words" }

// GraphArtifact builds a graph artifact.
func GraphArtifact(title string, g *graph.Graph, decorators ...graph.Decorator) Artifact {
	return Artifact{Title: title, Content: &Graph{Graph: g, Decorators: decorators}}
}

// WordsArtifact builds a word-list artifact.
func WordsArtifact(title string, words []models.Word) Artifact {
	return Artifact{Title: title, Content: &Words{Words: words}}
}

// TableArtifact builds a table artifact.
func TableArtifact(title string, t *Table) Artifact {
	return Artifact{Title: title, Content: t}
}

// Sink publishes artifacts. Each call shows one composite document.
type Sink interface {
	Show(ctx context.Context, artifacts ...Artifact) error
}

// Notifier shows a short message to the user.
type Notifier interface {
	Notify(msg string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(msg string)

// Notify calls f.
func (f NotifierFunc) Notify(msg string) { f(msg) }

// NopSink discards everything.
type NopSink struct{}

// Show implements Sink.
func (NopSink) Show(context.Context, ...Artifact) error { return nil }

// MemorySink keeps every document in memory.
type MemorySink struct {
	Documents [][]Artifact
	// Err, if set, is returned from Show after recording.
	Err error
}

// Show implements Sink.
func (s *MemorySink) Show(_ context.Context, artifacts ...Artifact) error {
	s.Documents = append(s.Documents, artifacts)
	if s.Err != nil {
		return fmt.Errorf("%w: %w", ErrRenderFailure, s.Err)
	}
	return nil
}

// Titles returns the artifact titles of every document.
func (s *MemorySink) Titles() [][]string {
	out := make([][]string, len(s.Documents))
	for i, doc := range s.Documents {
		for _, a := range doc {
			out[i] = append(out[i], a.Title)
		}
	}
	return out
}

// Last returns the most recent document.
func (s *MemorySink) Last() []Artifact {
	if len(s.Documents) == 0 {
		return nil
	}
	return s.Documents[len(s.Documents)-1]
}

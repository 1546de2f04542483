package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ShayCichocki/learnlab/internal/automaton"
	"github.com/ShayCichocki/learnlab/internal/examples"
	"github.com/ShayCichocki/learnlab/internal/graph"
)

// loadTarget reads an automaton file. A path that does not exist but names
// a built-in example loads that example instead.
func loadTarget(path string) (*automaton.File, error) {
	f, err := automaton.ReadFile(path)
	if err == nil {
		return f, nil
	}
	if _, statErr := os.Stat(path); errors.Is(statErr, fs.ErrNotExist) {
		if build, ok := examples.Named()[path]; ok {
			return automaton.DescribeDFA(build()), nil
		}
	}
	return nil, err
}

// fileGraph builds the graph of the automaton described by f.
func fileGraph(f *automaton.File) (*graph.Graph, error) {
	switch f.Type {
	case automaton.KindDFA:
		d, err := f.DFA()
		if err != nil {
			return nil, err
		}
		return d.Graph(), nil
	case automaton.KindMealy:
		m, err := f.Mealy()
		if err != nil {
			return nil, err
		}
		return m.Graph(), nil
	default:
		return nil, fmt.Errorf("%w: unknown type %q", automaton.ErrInvalidFile, f.Type)
	}
}

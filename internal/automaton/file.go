package automaton

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ShayCichocki/learnlab/pkg/models"
)

// ErrInvalidFile indicates an automaton description that cannot be loaded.
var ErrInvalidFile = errors.New("invalid automaton file")

// File is the YAML description of an automaton.
//
//	type: dfa
//	alphabet: [a, b]
//	initial: q0
//	states:
//	  - name: q0
//	    accepting: true
//	transitions:
//	  - {from: q0, input: a, to: q1}
type File struct {
	Type        string           `yaml:"type"`
	Alphabet    []string         `yaml:"alphabet"`
	Initial     string           `yaml:"initial"`
	States      []FileState      `yaml:"states"`
	Transitions []FileTransition `yaml:"transitions"`
}

// FileState is one state in a File.
type FileState struct {
	Name      string `yaml:"name"`
	Accepting bool   `yaml:"accepting,omitempty"`
}

// FileTransition is one transition in a File. Output is used by Mealy machines.
type FileTransition struct {
	From   string `yaml:"from"`
	Input  string `yaml:"input"`
	To     string `yaml:"to"`
	Output string `yaml:"output,omitempty"`
}

// ReadFile loads an automaton description from disk.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read automaton file: %w", err)
	}
	f, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Decode parses a YAML automaton description.
func Decode(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	switch f.Type {
	case "":
		f.Type = KindDFA
	case KindDFA, KindMealy:
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidFile, f.Type)
	}
	return &f, nil
}

// Encode writes the description as YAML.
func (f *File) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encode automaton: %w", err)
	}
	return enc.Close()
}

// WriteFile writes the description to path, creating parent directories.
func (f *File) WriteFile(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	var buf bytes.Buffer
	if err := f.Encode(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write automaton file: %w", err)
	}
	return nil
}

// DFA builds the acceptor described by the file.
func (f *File) DFA() (*DFA, error) {
	if f.Type != KindDFA {
		return nil, fmt.Errorf("%w: file describes a %s", ErrInvalidFile, f.Type)
	}
	alpha, err := models.NewAlphabet(f.Alphabet...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	d := NewDFA(alpha)
	for _, s := range f.States {
		d.AddNamedState(s.Name, s.Accepting)
	}
	err = f.link(&d.table, func(from int, tr FileTransition, to int) error {
		return d.SetTransition(from, tr.Input, to)
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Mealy builds the Mealy machine described by the file.
func (f *File) Mealy() (*Mealy, error) {
	if f.Type != KindMealy {
		return nil, fmt.Errorf("%w: file describes a %s", ErrInvalidFile, f.Type)
	}
	alpha, err := models.NewAlphabet(f.Alphabet...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	m := NewMealy(alpha)
	for _, s := range f.States {
		m.AddNamedState(s.Name)
	}
	err = f.link(&m.table, func(from int, tr FileTransition, to int) error {
		return m.SetTransition(from, tr.Input, to, tr.Output)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (f *File) link(t *table, set func(from int, tr FileTransition, to int) error) error {
	seen := make(map[string]bool, len(f.States))
	for _, s := range f.States {
		if s.Name == "" || seen[s.Name] {
			return fmt.Errorf("%w: state names must be unique and non-empty", ErrInvalidFile)
		}
		seen[s.Name] = true
	}
	for _, tr := range f.Transitions {
		from, ok := t.StateByName(tr.From)
		if !ok {
			return fmt.Errorf("%w: %w: %s", ErrInvalidFile, ErrUnknownState, tr.From)
		}
		to, ok := t.StateByName(tr.To)
		if !ok {
			return fmt.Errorf("%w: %w: %s", ErrInvalidFile, ErrUnknownState, tr.To)
		}
		if err := set(from, tr, to); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidFile, err)
		}
	}
	initial, ok := t.StateByName(f.Initial)
	if !ok {
		return fmt.Errorf("%w: %w: initial %q", ErrInvalidFile, ErrUnknownState, f.Initial)
	}
	t.initial = initial
	if err := t.validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	return nil
}

// DescribeDFA converts an acceptor into its file description.
func DescribeDFA(d *DFA) *File {
	f := describe(KindDFA, &d.table)
	for s := range f.States {
		f.States[s].Accepting = d.accepting[s]
	}
	return f
}

// DescribeMealy converts a Mealy machine into its file description.
func DescribeMealy(m *Mealy) *File {
	f := describe(KindMealy, &m.table)
	k := m.alphabet.Size()
	for i := range f.Transitions {
		s, _ := m.StateByName(f.Transitions[i].From)
		a, _ := m.alphabet.Index(f.Transitions[i].Input)
		f.Transitions[i].Output = m.outputs[s*k+a]
	}
	return f
}

func describe(kind string, t *table) *File {
	f := &File{Type: kind, Alphabet: t.alphabet.Symbols()}
	if t.initial >= 0 {
		f.Initial = t.names[t.initial]
	}
	for s := range t.names {
		f.States = append(f.States, FileState{Name: t.names[s]})
	}
	k := t.alphabet.Size()
	for s := range t.names {
		for i := 0; i < k; i++ {
			target := t.trans[s*k+i]
			if target < 0 {
				continue
			}
			f.Transitions = append(f.Transitions, FileTransition{
				From:  t.names[s],
				Input: t.alphabet.Symbol(i),
				To:    t.names[target],
			})
		}
	}
	return f
}

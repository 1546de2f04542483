// Package models holds the value types shared by learners, oracles and
// the benchmark harness: alphabets, words, queries and trial results.
package models

import (
	"strings"
)

// symbolSep joins symbols inside a Word. Alphabets reject symbols containing it.
const symbolSep = "\x1f"

// EmptyWordString is how the empty word is printed.
const EmptyWordString = "ε"

// Word is an immutable finite sequence of symbols.
//
// Word is comparable and can be used as a map key. The zero value is the
// empty word.
type Word struct {
	joined string
	n      int
}

// NewWord builds a word from the given symbols.
func NewWord(symbols ...string) Word {
	if len(symbols) == 0 {
		return Word{}
	}
	return Word{joined: strings.Join(symbols, symbolSep), n: len(symbols)}
}

// Len returns the number of symbols in the word.
func (w Word) Len() int {
	return w.n
}

// IsEmpty reports whether w is the empty word.
func (w Word) IsEmpty() bool {
	return w.n == 0
}

// Symbols returns a copy of the word's symbols.
func (w Word) Symbols() []string {
	if w.n == 0 {
		return nil
	}
	return strings.Split(w.joined, symbolSep)
}

// Symbol returns the i-th symbol. It panics if i is out of range.
func (w Word) Symbol(i int) string {
	if i < 0 || i >= w.n {
		panic("models: word index out of range")
	}
	rest := w.joined
	for ; i > 0; i-- {
		rest = rest[strings.Index(rest, symbolSep)+len(symbolSep):]
	}
	if j := strings.Index(rest, symbolSep); j >= 0 {
		return rest[:j]
	}
	return rest
}

// First returns the first symbol. It panics on the empty word.
func (w Word) First() string {
	return w.Symbol(0)
}

// Last returns the last symbol. It panics on the empty word.
func (w Word) Last() string {
	if w.n == 0 {
		panic("models: last symbol of empty word")
	}
	if j := strings.LastIndex(w.joined, symbolSep); j >= 0 && w.n > 1 {
		return w.joined[j+len(symbolSep):]
	}
	return w.joined
}

// Prefix returns the first n symbols of w.
func (w Word) Prefix(n int) Word {
	if n <= 0 {
		return Word{}
	}
	if n >= w.n {
		return w
	}
	end := w.offset(n) - len(symbolSep)
	return Word{joined: w.joined[:end], n: n}
}

// Suffix returns w without its first `from` symbols.
func (w Word) Suffix(from int) Word {
	if from <= 0 {
		return w
	}
	if from >= w.n {
		return Word{}
	}
	return Word{joined: w.joined[w.offset(from):], n: w.n - from}
}

// Concat returns w followed by other.
func (w Word) Concat(other Word) Word {
	switch {
	case other.n == 0:
		return w
	case w.n == 0:
		return other
	}
	return Word{joined: w.joined + symbolSep + other.joined, n: w.n + other.n}
}

// Append returns w followed by the given symbols.
func (w Word) Append(symbols ...string) Word {
	return w.Concat(NewWord(symbols...))
}

// Prepend returns the given symbol followed by w.
func (w Word) Prepend(symbol string) Word {
	return NewWord(symbol).Concat(w)
}

// HasPrefix reports whether p is a prefix of w.
func (w Word) HasPrefix(p Word) bool {
	if p.n > w.n {
		return false
	}
	return w.Prefix(p.n) == p
}

// String renders the word with symbols separated by spaces.
func (w Word) String() string {
	if w.n == 0 {
		return EmptyWordString
	}
	return strings.ReplaceAll(w.joined, symbolSep, " ")
}

// offset returns the byte offset where symbol i starts.
func (w Word) offset(i int) int {
	pos := 0
	for ; i > 0; i-- {
		pos += strings.Index(w.joined[pos:], symbolSep) + len(symbolSep)
	}
	return pos
}

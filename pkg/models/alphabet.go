package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidAlphabet is returned when an alphabet cannot be built.
	ErrInvalidAlphabet = errors.New("invalid alphabet")
	// ErrMalformedWord is returned when user input contains a symbol outside the alphabet.
	ErrMalformedWord = errors.New("malformed word")
)

// SymbolError reports an input symbol that does not belong to the alphabet.
type SymbolError struct {
	Symbol string
}

func (e *SymbolError) Error() string {
	return fmt.Sprintf("Invalid symbol '%s'!", e.Symbol)
}

// Unwrap lets errors.Is match ErrMalformedWord.
func (e *SymbolError) Unwrap() error {
	return ErrMalformedWord
}

// Alphabet is a finite, ordered set of input symbols.
type Alphabet struct {
	symbols []string
	index   map[string]int
}

// NewAlphabet builds an alphabet from distinct, non-empty symbols.
func NewAlphabet(symbols ...string) (Alphabet, error) {
	if len(symbols) == 0 {
		return Alphabet{}, fmt.Errorf("%w: no symbols", ErrInvalidAlphabet)
	}
	a := Alphabet{
		symbols: make([]string, len(symbols)),
		index:   make(map[string]int, len(symbols)),
	}
	for i, s := range symbols {
		if s == "" || strings.ContainsAny(s, symbolSep+" \t\n") {
			return Alphabet{}, fmt.Errorf("%w: bad symbol %q", ErrInvalidAlphabet, s)
		}
		if _, dup := a.index[s]; dup {
			return Alphabet{}, fmt.Errorf("%w: duplicate symbol %q", ErrInvalidAlphabet, s)
		}
		a.symbols[i] = s
		a.index[s] = i
	}
	return a, nil
}

// MustAlphabet is NewAlphabet for fixed symbol sets; it panics on error.
func MustAlphabet(symbols ...string) Alphabet {
	a, err := NewAlphabet(symbols...)
	if err != nil {
		panic(err)
	}
	return a
}

// IntegerAlphabet returns the alphabet "0", "1", ..., "k-1".
func IntegerAlphabet(k int) Alphabet {
	symbols := make([]string, k)
	for i := range symbols {
		symbols[i] = strconv.Itoa(i)
	}
	return MustAlphabet(symbols...)
}

// Size returns the number of symbols.
func (a Alphabet) Size() int {
	return len(a.symbols)
}

// Symbol returns the symbol at position i.
func (a Alphabet) Symbol(i int) string {
	return a.symbols[i]
}

// Index returns the position of sym, or -1 and false if it is not in the alphabet.
func (a Alphabet) Index(sym string) (int, bool) {
	i, ok := a.index[sym]
	if !ok {
		return -1, false
	}
	return i, true
}

// Contains reports whether sym belongs to the alphabet.
func (a Alphabet) Contains(sym string) bool {
	_, ok := a.index[sym]
	return ok
}

// Symbols returns a copy of the symbols in order.
func (a Alphabet) Symbols() []string {
	out := make([]string, len(a.symbols))
	copy(out, a.symbols)
	return out
}

// Equal reports whether both alphabets hold the same symbols in the same order.
func (a Alphabet) Equal(b Alphabet) bool {
	if len(a.symbols) != len(b.symbols) {
		return false
	}
	for i := range a.symbols {
		if a.symbols[i] != b.symbols[i] {
			return false
		}
	}
	return true
}

// ParseWord splits whitespace-separated input into a word over the alphabet.
// Blank input yields the empty word.
func (a Alphabet) ParseWord(input string) (Word, error) {
	fields := strings.Fields(input)
	for _, f := range fields {
		if !a.Contains(f) {
			return Word{}, &SymbolError{Symbol: f}
		}
	}
	return NewWord(fields...), nil
}

// Covers reports whether every symbol of w belongs to the alphabet.
func (a Alphabet) Covers(w Word) bool {
	for _, s := range w.Symbols() {
		if !a.Contains(s) {
			return false
		}
	}
	return true
}

func (a Alphabet) String() string {
	return "{" + strings.Join(a.symbols, ", ") + "}"
}

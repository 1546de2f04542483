package automaton

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShayCichocki/learnlab/pkg/models"
)

// evenA accepts words over {a, b} with an even number of a.
func evenA(t *testing.T) *DFA {
	t.Helper()
	d := NewDFA(models.MustAlphabet("a", "b"))
	even := d.AddState(true)
	odd := d.AddState(false)
	require.NoError(t, d.SetInitial(even))
	require.NoError(t, d.SetTransition(even, "a", odd))
	require.NoError(t, d.SetTransition(even, "b", even))
	require.NoError(t, d.SetTransition(odd, "a", even))
	require.NoError(t, d.SetTransition(odd, "b", odd))
	require.NoError(t, d.Validate())
	return d
}

func TestDFA_Output(t *testing.T) {
	d := evenA(t)

	assert.True(t, d.Output(models.Word{}))
	assert.False(t, d.Output(models.NewWord("a")))
	assert.True(t, d.Output(models.NewWord("a", "b", "a")))
	assert.False(t, d.SuffixOutput(models.NewWord("a"), models.NewWord("b")))
	assert.Equal(t, 1, Reach[bool](d, d.Initial(), models.NewWord("b", "a", "b")))
}

func TestDFA_ValidateIncomplete(t *testing.T) {
	d := NewDFA(models.MustAlphabet("a"))
	s := d.AddState(false)

	require.ErrorIs(t, d.Validate(), ErrIncomplete)
	require.NoError(t, d.SetInitial(s))
	require.ErrorIs(t, d.Validate(), ErrIncomplete)
	require.NoError(t, d.SetTransition(s, "a", s))
	require.NoError(t, d.Validate())
}

func TestDFA_SetTransitionErrors(t *testing.T) {
	d := NewDFA(models.MustAlphabet("a"))
	s := d.AddState(false)

	assert.ErrorIs(t, d.SetTransition(s, "z", s), ErrUnknownSymbol)
	assert.ErrorIs(t, d.SetTransition(s, "a", 5), ErrUnknownState)
	assert.ErrorIs(t, d.SetInitial(3), ErrUnknownState)
}

func TestMealy_Output(t *testing.T) {
	alpha := models.MustAlphabet("a", "b")
	m := NewMealy(alpha)
	s0 := m.AddState()
	s1 := m.AddState()
	require.NoError(t, m.SetInitial(s0))
	require.NoError(t, m.SetTransition(s0, "a", s1, "x"))
	require.NoError(t, m.SetTransition(s0, "b", s0, "y"))
	require.NoError(t, m.SetTransition(s1, "a", s0, "y"))
	require.NoError(t, m.SetTransition(s1, "b", s1, "x"))

	assert.Equal(t, models.Word{}, m.Output(models.Word{}))
	assert.Equal(t, models.NewWord("x", "x", "y"), m.Output(models.NewWord("a", "b", "a")))
	assert.Equal(t, models.NewWord("y"), m.SuffixOutput(models.NewWord("a"), models.NewWord("a")))
}

func TestModels_Build(t *testing.T) {
	alpha := models.MustAlphabet("a", "b")

	hyp, err := DFAModel.Build(alpha, 0, [][]int{{1, 0}, {0, 1}}, [][]bool{{true}, {false}})
	require.NoError(t, err)
	assert.Equal(t, 2, hyp.Size())
	assert.False(t, hyp.Output(models.NewWord("a")))
	assert.Len(t, DFAModel.LocalSuffixes(alpha), 1)

	local := [][]models.Word{
		{models.NewWord("x"), models.NewWord("y")},
		{models.NewWord("y"), models.NewWord("x")},
	}
	mealy, err := MealyModel.Build(alpha, 0, [][]int{{1, 0}, {0, 1}}, local)
	require.NoError(t, err)
	assert.Equal(t, models.NewWord("x", "x"), mealy.Output(models.NewWord("a", "b")))
	assert.Len(t, MealyModel.LocalSuffixes(alpha), 2)

	_, err = MealyModel.Build(alpha, 0, [][]int{{0, 0}}, [][]models.Word{{models.NewWord("x", "y"), models.NewWord("y")}})
	assert.ErrorIs(t, err, ErrIncomplete)

	assert.Equal(t, "1", DFAModel.Format(true))
	assert.Equal(t, "x y", MealyModel.Format(models.NewWord("x", "y")))
}

func TestToMealy(t *testing.T) {
	d := evenA(t)
	m := ToMealy(d)

	require.NoError(t, m.Validate())
	assert.Equal(t, models.NewWord("0", "1", "1"), m.Output(models.NewWord("a", "a", "b")))
}

func TestAccessSequences(t *testing.T) {
	d := evenA(t)
	d.AddState(true) // unreachable

	words, ok := AccessSequences[bool](d)
	assert.Equal(t, []bool{true, true, false}, ok)
	assert.Equal(t, models.NewWord("a"), words[1])
}

func TestFile_RoundTrip(t *testing.T) {
	d := evenA(t)
	path := filepath.Join(t.TempDir(), "sub", "even.yaml")

	require.NoError(t, DescribeDFA(d).WriteFile(path))

	f, err := ReadFile(path)
	require.NoError(t, err)
	loaded, err := f.DFA()
	require.NoError(t, err)

	for _, w := range []models.Word{{}, models.NewWord("a"), models.NewWord("a", "b", "a")} {
		assert.Equal(t, d.Output(w), loaded.Output(w), "word %s", w)
	}

	_, err = f.Mealy()
	assert.ErrorIs(t, err, ErrInvalidFile)
}

func TestFile_Mealy(t *testing.T) {
	src := `
type: mealy
alphabet: [a]
initial: p
states:
  - name: p
  - name: r
transitions:
  - {from: p, input: a, to: r, output: "0"}
  - {from: r, input: a, to: p, output: "1"}
`
	f, err := Decode(strings.NewReader(src))
	require.NoError(t, err)
	m, err := f.Mealy()
	require.NoError(t, err)
	assert.Equal(t, models.NewWord("0", "1", "0"), m.Output(models.NewWord("a", "a", "a")))

	var buf bytes.Buffer
	require.NoError(t, DescribeMealy(m).Encode(&buf))
	assert.Contains(t, buf.String(), "output: \"1\"")
}

func TestFile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unknown type", "type: nfa\nalphabet: [a]\n"},
		{"unknown field", "type: dfa\ncolour: red\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.src))
			assert.ErrorIs(t, err, ErrInvalidFile)
		})
	}

	f, err := Decode(strings.NewReader("type: dfa\nalphabet: [a]\ninitial: x\nstates: [{name: p}]\n"))
	require.NoError(t, err)
	_, err = f.DFA()
	assert.ErrorIs(t, err, ErrUnknownState)
}

func TestDFA_Graph(t *testing.T) {
	g := evenA(t).Graph()

	assert.Len(t, g.Nodes(), 3) // start marker + 2 states
	assert.Len(t, g.Edges(), 5)
	assert.Equal(t, "doublecircle", g.Node("s0").Shape)
	assert.Equal(t, 0, g.Node("s0").Ref)
}

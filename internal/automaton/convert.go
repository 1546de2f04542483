package automaton

// Output symbols of Mealy machines derived from acceptors.
const (
	AcceptOutput = "1"
	RejectOutput = "0"
)

// ToMealy converts a DFA into a Mealy machine over the same states whose
// transitions emit AcceptOutput when they enter an accepting state.
//
// The Mealy machine does not observe the acceptance of the empty word.
func ToMealy(d *DFA) *Mealy {
	m := NewMealy(d.alphabet)
	for s := 0; s < d.Size(); s++ {
		m.AddNamedState(d.StateName(s))
	}
	k := d.alphabet.Size()
	for s := 0; s < d.Size(); s++ {
		for i := 0; i < k; i++ {
			t := d.Successor(s, i)
			if t < 0 {
				continue
			}
			out := RejectOutput
			if d.accepting[t] {
				out = AcceptOutput
			}
			idx := s*k + i
			m.trans[idx] = t
			m.outputs[idx] = out
		}
	}
	m.initial = d.initial
	return m
}

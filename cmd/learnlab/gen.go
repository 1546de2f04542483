package main

import (
	"fmt"
	"math/rand"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/learnlab/internal/automaton"
	"github.com/ShayCichocki/learnlab/internal/examples"
)

// Generator names.
const (
	genKeylock = "keylock"
	genRandom  = "random"
	genEvenA   = "even-a"
)

// genOptions holds the shape of a generated target.
type genOptions struct {
	Inputs  int
	States  int
	Outputs int
	Cyclic  bool
	Mealy   bool
	Seed    int64
}

var genOpts genOptions

var genCmd = &cobra.Command{
	Use:       "gen keylock|random|even-a [flags] <file-out>",
	Short:     "Write an example target as an automaton file",
	ValidArgs: []string{genKeylock, genRandom, genEvenA},
	Args:      cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := generate(args[0], genOpts)
		if err != nil {
			return err
		}
		if err := f.WriteFile(args[1]); err != nil {
			return err
		}
		printStatus("✓", fmt.Sprintf("Wrote %s with %d states to %s", f.Type, len(f.States), args[1]), color.FgGreen)
		return nil
	},
}

func init() {
	genCmd.Flags().IntVarP(&genOpts.Inputs, "inputs", "k", 2, "Alphabet size")
	genCmd.Flags().IntVarP(&genOpts.States, "states", "n", 10, "Number of states")
	genCmd.Flags().IntVar(&genOpts.Outputs, "outputs", 2, "Output symbols of a random Mealy machine")
	genCmd.Flags().BoolVar(&genOpts.Cyclic, "cyclic", false, "Make the keylock restart after the final state")
	genCmd.Flags().BoolVar(&genOpts.Mealy, "mealy", false, "Generate a Mealy machine instead of an acceptor")
	genCmd.Flags().Int64Var(&genOpts.Seed, "seed", 1, "Seed of the random target")
}

// generate builds the file description of the named target.
func generate(kind string, o genOptions) (*automaton.File, error) {
	if o.Inputs <= 0 || o.States <= 0 {
		return nil, fmt.Errorf("inputs and states must be positive, got %d and %d", o.Inputs, o.States)
	}
	var d *automaton.DFA
	switch kind {
	case genKeylock:
		d = examples.Keylock(o.Inputs, o.States, o.Cyclic)
	case genEvenA:
		d = examples.EvenA()
	case genRandom:
		rng := rand.New(rand.NewSource(o.Seed))
		if o.Mealy {
			if o.Outputs <= 0 {
				return nil, fmt.Errorf("outputs must be positive, got %d", o.Outputs)
			}
			return automaton.DescribeMealy(examples.RandomMealy(rng, o.Inputs, o.States, o.Outputs)), nil
		}
		d = examples.RandomDFA(rng, o.Inputs, o.States)
	default:
		return nil, fmt.Errorf("unknown generator %q (want %s, %s or %s)", kind, genKeylock, genRandom, genEvenA)
	}
	if o.Mealy {
		return automaton.DescribeMealy(automaton.ToMealy(d)), nil
	}
	return automaton.DescribeDFA(d), nil
}

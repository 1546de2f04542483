package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/learnlab/internal/automaton"
)

var dotCmd = &cobra.Command{
	Use:   "dot [file-in [file-out]]",
	Short: "Convert an automaton file to graphviz DOT",
	Long: `Convert an automaton file to graphviz DOT.

Reads standard input when no input file is given and writes standard output
when no output file is given.`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := io.Reader(os.Stdin)
		if len(args) > 0 {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open input: %w", err)
			}
			defer f.Close()
			in = f
		}
		out := io.Writer(os.Stdout)
		if len(args) > 1 {
			f, err := os.Create(args[1])
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			defer f.Close()
			out = f
		}
		return writeDOT(in, out)
	},
}

// writeDOT decodes an automaton file from r and writes its graph to w.
func writeDOT(r io.Reader, w io.Writer) error {
	f, err := automaton.Decode(r)
	if err != nil {
		return err
	}
	g, err := fileGraph(f)
	if err != nil {
		return err
	}
	return g.WriteDOT(w)
}

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/learnlab/internal/automaton"
	"github.com/ShayCichocki/learnlab/internal/bench"
	"github.com/ShayCichocki/learnlab/internal/config"
	"github.com/ShayCichocki/learnlab/internal/examples"
	"github.com/ShayCichocki/learnlab/internal/metrics"
	"github.com/ShayCichocki/learnlab/internal/registry"
	"github.com/ShayCichocki/learnlab/internal/state"
)

var (
	benchRepeat   int
	benchKind     string
	benchLearners []string
	benchNoCache  bool
	benchSeed     int64
)

var benchCmd = &cobra.Command{
	Use:   "bench [flags] [output-dir]",
	Short: "Benchmark the learners on the example catalog",
	Long: `Run every selected learner and its unbatched baseline on the example
catalog and write one .dat table per example into the output directory.

Each trial learns the target from scratch; the table reports the mean
learner time and mean number of membership queries per learner.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBenchCmd,
}

func init() {
	benchCmd.Flags().IntVarP(&benchRepeat, "repeat", "n", 0, "Trials per learner and example (default from config)")
	benchCmd.Flags().StringVar(&benchKind, "kind", automaton.KindDFA, "Catalog to run: dfa or mealy")
	benchCmd.Flags().StringSliceVar(&benchLearners, "learners", nil, "Learners to run (default: all)")
	benchCmd.Flags().BoolVar(&benchNoCache, "no-cache", false, "Answer every query from the target")
	benchCmd.Flags().Int64Var(&benchSeed, "seed", 0, "Seed of the random examples (default from config)")
}

// benchSettings merges the bench flags into the configured defaults.
func benchSettings(cmd *cobra.Command, bc config.BenchConfig) config.BenchConfig {
	flags := cmd.Flags()
	if flags.Changed("repeat") {
		bc.Repeat = benchRepeat
	}
	if flags.Changed("learners") {
		bc.Learners = benchLearners
	}
	if flags.Changed("no-cache") {
		bc.Cache = !benchNoCache
	}
	return bc
}

// outputDir returns the first argument, or the configured directory.
func outputDir(args []string, configured string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if configured == "" {
		return "", fmt.Errorf("no output directory given")
	}
	return configured, nil
}

func runBenchCmd(cmd *cobra.Command, args []string) error {
	bc := benchSettings(cmd, cfg.Bench)
	if bc.Repeat <= 0 {
		return fmt.Errorf("repeat must be positive, got %d", bc.Repeat)
	}
	dir, err := outputDir(args, bc.OutputDir)
	if err != nil {
		return err
	}
	seed := cfg.Series.Seed
	if cmd.Flags().Changed("seed") {
		seed = benchSeed
	}

	switch benchKind {
	case automaton.KindDFA:
		return runBench(automaton.DFAModel, examples.DFACatalog(seed), bc, seed, dir)
	case automaton.KindMealy:
		return runBench(automaton.MealyModel, examples.MealyCatalog(seed), bc, seed, dir)
	default:
		return fmt.Errorf("unknown kind %q (want %s or %s)", benchKind, automaton.KindDFA, automaton.KindMealy)
	}
}

func runBench[D comparable](model automaton.Model[D], exs []examples.Example[D], bc config.BenchConfig, seed int64, dir string) error {
	entries, err := registry.Standard(model, debugLogger).Select(bc.Learners)
	if err != nil {
		return err
	}
	names := entryNames(entries)

	history, err := startHistory(state.RunConfig{
		Kind: state.RunBench, Learners: names, Repeat: bc.Repeat, Cache: bc.Cache, Seed: seed,
	})
	if err != nil {
		return err
	}

	m := metrics.New()
	h := bench.New(bench.Pairs(entries), benchOptions(bc, m, history))

	ctx, cancel := signalContext()
	defer cancel()

	printStatus("→", fmt.Sprintf("Benchmarking %s on %d %s examples, %d trials each",
		strings.Join(names, ", "), len(exs), model.Name(), bc.Repeat), color.FgBlue)
	_, err = h.RunAll(ctx, exs, bench.DirDestination(dir))
	history.finish(err)
	if err != nil {
		return err
	}
	printStatus("✓", "Results written to "+dir, color.FgGreen)
	printQueryTotals(m)
	return exportMetrics(m)
}

// benchOptions builds the harness options shared by bench and series.
func benchOptions(bc config.BenchConfig, m *metrics.Metrics, history *runHistory) bench.Options {
	opts := bench.Options{
		Repeat:   bc.Repeat,
		Cache:    bc.Cache,
		Progress: os.Stdout,
		Trials:   history.sink(),
		Metrics:  m,
		Logger:   debugLogger,
	}
	if bc.CollectGarbage {
		opts.Collect = bench.DefaultCollect
	}
	return opts
}

func entryNames[D comparable](entries []registry.Entry[D]) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

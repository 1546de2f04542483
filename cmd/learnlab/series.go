package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/learnlab/internal/automaton"
	"github.com/ShayCichocki/learnlab/internal/bench"
	"github.com/ShayCichocki/learnlab/internal/config"
	"github.com/ShayCichocki/learnlab/internal/examples"
	"github.com/ShayCichocki/learnlab/internal/metrics"
	"github.com/ShayCichocki/learnlab/internal/registry"
	"github.com/ShayCichocki/learnlab/internal/state"
	"github.com/ShayCichocki/learnlab/pkg/models"
)

var (
	seriesLower  int
	seriesUpper  int
	seriesStep   int
	seriesSizes  []int
	seriesRepeat int
	seriesSeed   int64
)

var seriesCmd = &cobra.Command{
	Use:   "series [flags] [output-dir]",
	Short: "Benchmark the learners on growing random Mealy machines",
	Long: `Sweep random Mealy machines from --lower to --upper states in steps of
--step, for every alphabet size, and write one series file per alphabet
size into the output directory.

Each line of a series file holds the state count followed by the mean
learner time and mean query count of every learner and baseline.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSeriesCmd,
}

func init() {
	seriesCmd.Flags().IntVarP(&seriesLower, "lower", "l", 0, "Smallest state count (default from config)")
	seriesCmd.Flags().IntVarP(&seriesUpper, "upper", "u", 0, "State count bound, exclusive (default from config)")
	seriesCmd.Flags().IntVarP(&seriesStep, "step", "s", 0, "State count increment (default from config)")
	seriesCmd.Flags().IntSliceVarP(&seriesSizes, "alphabet-sizes", "k", nil, "Alphabet sizes to sweep (default from config)")
	seriesCmd.Flags().IntVarP(&seriesRepeat, "repeat", "n", 0, "Trials per learner and target (default from config)")
	seriesCmd.Flags().Int64Var(&seriesSeed, "seed", 0, "Seed of the random targets (default from config)")
}

// seriesSettings merges the series flags into the configured defaults.
func seriesSettings(cmd *cobra.Command, sc config.SeriesConfig, bc config.BenchConfig) (config.SeriesConfig, config.BenchConfig) {
	flags := cmd.Flags()
	if flags.Changed("lower") {
		sc.Lower = seriesLower
	}
	if flags.Changed("upper") {
		sc.Upper = seriesUpper
	}
	if flags.Changed("step") {
		sc.Step = seriesStep
	}
	if flags.Changed("alphabet-sizes") {
		sc.AlphabetSizes = seriesSizes
	}
	if flags.Changed("seed") {
		sc.Seed = seriesSeed
	}
	if flags.Changed("repeat") {
		bc.Repeat = seriesRepeat
	}
	return sc, bc
}

func runSeriesCmd(cmd *cobra.Command, args []string) error {
	sc, bc := seriesSettings(cmd, cfg.Series, cfg.Bench)
	if bc.Repeat <= 0 {
		return fmt.Errorf("repeat must be positive, got %d", bc.Repeat)
	}
	dir, err := outputDir(args, bc.OutputDir)
	if err != nil {
		return err
	}

	opts := bench.SeriesOptions[models.Word]{
		Lower:         sc.Lower,
		Upper:         sc.Upper,
		Step:          sc.Step,
		AlphabetSizes: sc.AlphabetSizes,
		Example: func(k, n int) examples.Example[models.Word] {
			return examples.RandomMealySeries(sc.Seed, k, n)
		},
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	entries, err := registry.Standard(automaton.MealyModel, debugLogger).Select(bc.Learners)
	if err != nil {
		return err
	}
	history, err := startHistory(state.RunConfig{
		Kind: state.RunSeries, Learners: entryNames(entries), Repeat: bc.Repeat, Cache: bc.Cache, Seed: sc.Seed,
	})
	if err != nil {
		return err
	}

	m := metrics.New()
	h := bench.New(bench.Pairs(entries), benchOptions(bc, m, history))

	ctx, cancel := signalContext()
	defer cancel()

	printStatus("→", fmt.Sprintf("Sweeping %d..%d states (step %d) over alphabet sizes %v",
		sc.Lower, sc.Upper, sc.Step, sc.AlphabetSizes), color.FgBlue)
	err = h.Series(ctx, opts, bench.DirDestination(dir))
	history.finish(err)
	if err != nil {
		return err
	}
	printStatus("✓", "Series written to "+dir, color.FgGreen)
	printQueryTotals(m)
	return exportMetrics(m)
}

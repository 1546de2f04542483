package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/learnlab/internal/automaton"
	"github.com/ShayCichocki/learnlab/internal/config"
	"github.com/ShayCichocki/learnlab/internal/exec"
	"github.com/ShayCichocki/learnlab/internal/experiment"
	"github.com/ShayCichocki/learnlab/internal/learner"
	"github.com/ShayCichocki/learnlab/internal/metrics"
	"github.com/ShayCichocki/learnlab/internal/oracle"
	"github.com/ShayCichocki/learnlab/internal/present"
	"github.com/ShayCichocki/learnlab/internal/registry"
	"github.com/ShayCichocki/learnlab/internal/tui"
	"github.com/ShayCichocki/learnlab/internal/viz"
	"github.com/ShayCichocki/learnlab/pkg/models"
)

var (
	learnAlgorithm   string
	learnInteractive bool
	learnTUI         bool
	learnNoBrowser   bool
	learnOutDir      string
	learnMaxRounds   int
)

var learnCmd = &cobra.Command{
	Use:   "learn [flags] <file>",
	Short: "Learn an automaton from a description file",
	Long: `Learn the automaton described by a YAML file.

The file is the hidden target: it answers membership queries and, unless
--interactive is set, finds counterexamples by itself. Every hypothesis is
rendered into an HTML page in the output directory.

Instead of a file, one of the built-in targets may be named:
  even-a, keylock, keylock-c, accept-all

Algorithms:
  lstar  observation table, classic counterexample handling
  mp     observation table, all counterexample suffixes
  rs     observation table, binary-search counterexample analysis
  dt     discrimination tree, with step-by-step visualization`,
	Args: cobra.ExactArgs(1),
	RunE: runLearnCmd,
}

func init() {
	learnCmd.Flags().StringVarP(&learnAlgorithm, "algorithm", "a", "", "Learner to run (lstar, mp, rs, dt)")
	learnCmd.Flags().BoolVarP(&learnInteractive, "interactive", "i", false, "Ask for counterexamples instead of computing them")
	learnCmd.Flags().BoolVar(&learnTUI, "tui", false, "Use the terminal UI for interactive prompts")
	learnCmd.Flags().BoolVar(&learnNoBrowser, "no-browser", false, "Do not open rendered pages in a browser")
	learnCmd.Flags().StringVar(&learnOutDir, "out", "", "Directory for rendered pages (default: a temporary directory)")
	learnCmd.Flags().IntVar(&learnMaxRounds, "max-rounds", 0, "Stop after this many refinements (0 means unbounded)")
}

// learnSettings merges the learn flags into the configured defaults.
func learnSettings(cmd *cobra.Command, lc config.LearnConfig) config.LearnConfig {
	flags := cmd.Flags()
	if flags.Changed("algorithm") {
		lc.Algorithm = learnAlgorithm
	}
	if flags.Changed("interactive") {
		lc.Interactive = learnInteractive
	}
	if flags.Changed("tui") {
		lc.TUI = learnTUI
	}
	if flags.Changed("no-browser") {
		lc.OpenBrowser = !learnNoBrowser
	}
	if flags.Changed("out") {
		lc.OutputDir = learnOutDir
	}
	if flags.Changed("max-rounds") {
		lc.MaxRounds = learnMaxRounds
	}
	return lc
}

func runLearnCmd(cmd *cobra.Command, args []string) error {
	lc := learnSettings(cmd, cfg.Learn)

	f, err := loadTarget(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	switch f.Type {
	case automaton.KindMealy:
		target, err := f.Mealy()
		if err != nil {
			return err
		}
		return runLearn[models.Word](ctx, target, automaton.MealyModel, lc)
	default:
		target, err := f.DFA()
		if err != nil {
			return err
		}
		return runLearn[bool](ctx, target, automaton.DFAModel, lc)
	}
}

func runLearn[D comparable](ctx context.Context, target automaton.Automaton[D], model automaton.Model[D], lc config.LearnConfig) error {
	entry, err := registry.Standard(model, debugLogger).Lookup(lc.Algorithm)
	if err != nil {
		return err
	}

	dir := lc.OutputDir
	if dir == "" {
		dir, err = os.MkdirTemp("", "learnlab-")
		if err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	sink := present.NewHTMLSink(dir, exec.NewRunner(),
		present.WithDot(lc.DotPath),
		present.WithOpen(lc.OpenBrowser),
		present.WithLogger(debugLogger))

	m := metrics.New()
	queries, symbols := m.QueryCounters(entry.Name, models.TrialRoleLearner)

	opts := experiment.Options[D]{
		Target:         target,
		Interactive:    lc.Interactive,
		Sink:           sink,
		MaxRounds:      lc.MaxRounds,
		CounterOptions: []oracle.CounterOption{oracle.WithMetrics(queries, symbols)},
		OnEvent:        printEvent,
		Logger:         debugLogger,
	}

	var notifier present.Notifier = present.NotifierFunc(func(msg string) {
		printStatus("•", msg, color.FgCyan)
	})
	if lc.Interactive {
		if lc.TUI {
			p := tui.NewPrompter(os.Stdin, os.Stdout)
			opts.Prompter = p
			opts.OnEvent = func(ev experiment.Event) {
				p.Observe(ev)
				printEvent(ev)
			}
		} else {
			opts.Prompter = experiment.NewLinePrompter(os.Stdin, os.Stdout)
		}
		notifier = opts.Prompter
	}
	opts.Notifier = notifier

	opts.OnSession = func(s learner.Session[D]) {
		src, ok := s.Learner.(viz.Source)
		if !ok {
			return
		}
		if s.Observe(viz.New(ctx, src, sink, notifier, debugLogger).Observer()) {
			debugLogger.Log("[cli] visualizing %s steps", entry.Name)
		}
	}

	printStatus("→", fmt.Sprintf("Learning with %s (%s), pages in %s", entry.Name, entry.Description, dir), color.FgBlue)
	res, err := experiment.Run(ctx, oracle.NewSimulator(target), entry.Open, opts)
	if err != nil {
		printStatus("✗", fmt.Sprintf("Learning failed: %v", err), color.FgRed)
		return err
	}
	m.ObserveRounds(entry.Name, res.Rounds)

	if res.Aborted {
		printStatus("!", fmt.Sprintf("Stopped after %d rounds", res.Rounds), color.FgYellow)
	} else {
		printStatus("✓", fmt.Sprintf("Learned %d states in %d rounds", res.Hypothesis.Size(), res.Rounds), color.FgGreen)
	}
	fmt.Printf("  Queries:      %d (%d symbols)\n", res.Queries, res.Symbols)
	fmt.Printf("  Learner time: %s\n", res.LearnerTime.Round(time.Microsecond))
	fmt.Printf("  Wall time:    %s\n", res.WallTime.Round(time.Millisecond))
	if doc := sink.LastDocument(); doc != "" {
		fmt.Printf("  Last page:    %s\n", doc)
	}

	return exportMetrics(m)
}

// printEvent logs loop events to the debug log and reports rejected
// counterexamples and render failures on the terminal.
func printEvent(ev experiment.Event) {
	debugLogger.Log("[cli] event %s round=%d states=%d queries=%d", ev.Type, ev.Round, ev.States, ev.Queries)
	switch ev.Type {
	case experiment.EventRenderFailed:
		printStatus("!", fmt.Sprintf("Could not render %s: %v", ev.Label, ev.Error), color.FgYellow)
	case experiment.EventHypothesis:
		if ev.Round > 0 {
			printStatus("·", fmt.Sprintf("%s: %d states, %d queries", ev.Label, ev.States, ev.Queries), color.FgHiBlack)
		}
	}
}

// printQueryTotals reports how many queries learners and baselines asked.
func printQueryTotals(m *metrics.Metrics) {
	totals, err := m.QueryTotals()
	if err != nil {
		debugLogger.Log("[cli] %v", err)
		return
	}
	fmt.Printf("  Queries: %.0f by learners, %.0f by baselines\n",
		totals[models.TrialRoleLearner], totals[models.TrialRoleBaseline])
}

// exportMetrics writes m to the configured textfile, if any.
func exportMetrics(m *metrics.Metrics) error {
	if cfg.Metrics.Textfile == "" {
		return nil
	}
	if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
		return err
	}
	printStatus("✓", "Metrics written to "+cfg.Metrics.Textfile, color.FgGreen)
	return nil
}

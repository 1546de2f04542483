package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/learnlab/internal/config"
	"github.com/ShayCichocki/learnlab/internal/logging"
)

var (
	debugLogPath string
	noColor      bool

	// cfg is loaded before every command runs.
	cfg         *config.Config
	debugLogger *logging.DebugLogger
)

var rootCmd = &cobra.Command{
	Use:   "learnlab",
	Short: "Active automata learning experiments",
	Long: `learnlab learns finite automata and Mealy machines from membership
and equivalence queries.

It runs single learning experiments with an optional human in the loop,
renders every hypothesis as an HTML page, and benchmarks the built-in
learners against each other on a catalog of targets.

Configuration is read from ~/.config/learnlab/config.yaml, a project
.learnlab.yaml and LEARNLAB_* environment variables.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if debugLogger != nil {
			debugLogger.Close()
		}
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&debugLogPath, "debug-log", "", "Write debug output to this file (- for stderr)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(learnCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(seriesCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(dotCmd)
	rootCmd.AddCommand(genCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads the configuration and opens the debug log.
func setup() error {
	loaded, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = loaded

	if noColor {
		color.NoColor = true
	}

	path := debugLogPath
	if path == "" {
		path = cfg.Log.DebugFile
	}
	debugLogger, err = openDebugLog(path, os.Stderr)
	if err != nil {
		return err
	}
	logging.SetDefault(debugLogger)
	debugLogger.Log("[cli] %s started (pid %d)", os.Args[0], os.Getpid())
	return nil
}

// openDebugLog opens the debug log at path. "-" writes to stderr and an
// empty path discards everything.
func openDebugLog(path string, stderr io.Writer) (*logging.DebugLogger, error) {
	switch path {
	case "":
		return logging.NopLogger(), nil
	case "-":
		return logging.NewWriterLogger(stderr), nil
	}
	l, err := logging.NewDebugLogger(path)
	if err != nil {
		return nil, fmt.Errorf("open debug log: %w", err)
	}
	return l, nil
}

// signalContext returns a context canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			fmt.Println("\nReceived interrupt, shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigCh)
		cancel()
	}
}

// printStatus prints a status message with a colored symbol.
func printStatus(symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	fmt.Printf("%s %s\n", c.Sprint(symbol), message)
}

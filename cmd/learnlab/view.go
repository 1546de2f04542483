package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/learnlab/internal/exec"
	"github.com/ShayCichocki/learnlab/internal/present"
	"github.com/ShayCichocki/learnlab/internal/watch"
)

var (
	viewWatch     bool
	viewOutDir    string
	viewNoBrowser bool
)

var viewCmd = &cobra.Command{
	Use:   "view [flags] <file>...",
	Short: "Render automaton files as HTML pages",
	Long: `Render the graph of every automaton file into an HTML page.

With --watch, a file is rendered again whenever it changes on disk, until
interrupted.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runViewCmd,
}

func init() {
	viewCmd.Flags().BoolVarP(&viewWatch, "watch", "w", false, "Render again when a file changes")
	viewCmd.Flags().StringVar(&viewOutDir, "out", "", "Directory for rendered pages (default: a temporary directory)")
	viewCmd.Flags().BoolVar(&viewNoBrowser, "no-browser", false, "Do not open rendered pages in a browser")
}

func runViewCmd(cmd *cobra.Command, args []string) error {
	dir := viewOutDir
	if dir == "" {
		dir = cfg.Learn.OutputDir
	}
	if dir == "" {
		var err error
		if dir, err = os.MkdirTemp("", "learnlab-view-"); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	open := cfg.Learn.OpenBrowser && !viewNoBrowser
	newSink := func(open bool) *present.HTMLSink {
		return present.NewHTMLSink(dir, exec.NewRunner(),
			present.WithDot(cfg.Learn.DotPath),
			present.WithOpen(open),
			present.WithLogger(debugLogger))
	}

	ctx, cancel := signalContext()
	defer cancel()

	sink := newSink(open)
	for _, path := range args {
		if err := renderFile(ctx, sink, path); err != nil {
			return err
		}
	}
	if !viewWatch {
		return nil
	}

	// Re-renders replace the pages already open.
	rerender := newSink(false)
	w, err := watch.New(args, watch.DefaultDebounce, func(path string) error {
		return renderFile(ctx, rerender, path)
	})
	if err != nil {
		return err
	}
	printStatus("→", fmt.Sprintf("Watching %d files, press Ctrl+C to stop", len(args)), color.FgBlue)
	return w.Run(ctx)
}

// renderFile shows the graph of the automaton file at path.
func renderFile(ctx context.Context, sink *present.HTMLSink, path string) error {
	f, err := loadTarget(path)
	if err != nil {
		return err
	}
	g, err := fileGraph(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := sink.Show(ctx, present.GraphArtifact(filepath.Base(path), g)); err != nil {
		return err
	}
	printStatus("✓", fmt.Sprintf("%s → %s", path, sink.LastDocument()), color.FgGreen)
	return nil
}

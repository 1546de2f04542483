package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/learnlab/internal/state"
)

var (
	historyRun    string
	historyLimit  int
	historyPurge  time.Duration
	historyDelete string
)

var historyCmd = &cobra.Command{
	Use:   "history [flags]",
	Short: "Show recorded benchmark runs",
	Long: `List the benchmark and series runs stored in the state database, most
recent first. With --run, show the per-example averages of one run.
--delete removes one run and --purge removes every run older than the
given age, each together with its trials.

Runs whose process died without finishing are marked interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := state.OpenMigrated(cfg.State.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		interrupted, err := state.NewRecoveryManager(db).MarkInterrupted()
		if err != nil {
			return fmt.Errorf("check interrupted runs: %w", err)
		}
		for _, ir := range interrupted {
			printStatus("!", fmt.Sprintf("Run %s was interrupted after %d trials", ir.RunID, ir.Trials), color.FgYellow)
		}

		if historyDelete != "" || historyPurge > 0 {
			return pruneRuns(os.Stdout, db, historyDelete, historyPurge)
		}
		if historyRun != "" {
			return showRun(os.Stdout, db, historyRun)
		}
		runs, err := db.ListRuns(historyLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}
		listRuns(os.Stdout, runs, time.Now())
		return nil
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyRun, "run", "", "Show the averages of this run")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to list (0 lists all)")
	historyCmd.Flags().DurationVar(&historyPurge, "purge", 0, "Delete runs started longer ago than this (e.g. 720h)")
	historyCmd.Flags().StringVar(&historyDelete, "delete", "", "Delete this run and its trials")
	historyCmd.MarkFlagsMutuallyExclusive("run", "delete", "purge")
}

// pruneRuns deletes the run id, if set, and the runs older than age, if
// positive.
func pruneRuns(w io.Writer, db *state.DB, id string, age time.Duration) error {
	if id != "" {
		if err := db.DeleteRun(id); err != nil {
			return err
		}
		fmt.Fprintf(w, "Deleted run %s\n", id)
	}
	if age > 0 {
		n, err := db.PurgeOldRuns(age)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Purged %d runs older than %s\n", n, formatDuration(age))
	}
	return nil
}

// listRuns prints one line per run.
func listRuns(w io.Writer, runs []state.Run, now time.Time) {
	fmt.Fprintf(w, "%-36s  %-6s  %-11s  %6s  %8s  %s\n", "ID", "KIND", "STATUS", "REPEAT", "STARTED", "LEARNERS")
	for _, r := range runs {
		// Pad before coloring; escape codes would skew the width.
		fmt.Fprintf(w, "%-36s  %-6s  %s  %6d  %8s  %s\n",
			r.ID, r.Kind, statusColor(r.Status).Sprintf("%-11s", r.Status), r.Repeat,
			formatDuration(now.Sub(r.StartedAt))+" ago", strings.Join(r.Learners, ","))
	}
}

// showRun prints a run and its trial averages.
func showRun(w io.Writer, db *state.DB, id string) error {
	r, err := db.GetRun(id)
	if err != nil {
		return err
	}
	if r == nil {
		return fmt.Errorf("run %s not found", id)
	}
	summaries, err := db.Summaries(id)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Run %s (%s, %s)\n", r.ID, r.Kind, statusColor(r.Status).Sprint(r.Status))
	fmt.Fprintf(w, "  Started:  %s\n", r.StartedAt.Format(time.RFC3339))
	if r.FinishedAt != nil {
		fmt.Fprintf(w, "  Duration: %s\n", formatDuration(r.FinishedAt.Sub(r.StartedAt)))
	}
	fmt.Fprintf(w, "  Repeat:   %d, cache %t, seed %d\n\n", r.Repeat, r.Cache, r.Seed)

	if len(summaries) == 0 {
		fmt.Fprintln(w, "No trials recorded.")
		return nil
	}
	fmt.Fprintf(w, "%-24s  %-8s  %-8s  %6s  %6s  %12s  %12s\n", "EXAMPLE", "LEARNER", "ROLE", "TRIALS", "FAILED", "MEAN MS", "MEAN QUERIES")
	for _, s := range summaries {
		fmt.Fprintf(w, "%-24s  %-8s  %-8s  %6d  %6d  %12.3f  %12.1f\n",
			s.Example, s.Learner, s.Role, s.Trials, s.Failures, s.MeanMillis, s.MeanQueries)
	}
	return nil
}

func statusColor(s state.RunStatus) *color.Color {
	switch s {
	case state.RunCompleted:
		return color.New(color.FgGreen)
	case state.RunFailed:
		return color.New(color.FgRed)
	case state.RunInterrupted:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgCyan)
	}
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		h := int(d.Hours())
		m := int(d.Minutes()) % 60
		if m > 0 {
			return fmt.Sprintf("%dh%dm", h, m)
		}
		return fmt.Sprintf("%dh", h)
	}
	days := int(d.Hours()) / 24
	return fmt.Sprintf("%dd", days)
}

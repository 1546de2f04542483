package bench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ShayCichocki/learnlab/internal/examples"
)

// Destination opens the output of one result file.
type Destination func(name string) (io.WriteCloser, error)

// DirDestination writes files into dir, creating it if needed.
func DirDestination(dir string) Destination {
	return func(name string) (io.WriteCloser, error) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("create result file: %w", err)
		}
		return f, nil
	}
}

// DatName returns the result file name of an example.
func DatName(example string) string {
	return example + ".dat"
}

// SeriesName returns the result file name of a random series.
func SeriesName(alphabetSize int) string {
	return fmt.Sprintf("randseries-%d.dat", alphabetSize)
}

// RunAll runs every example and writes its summary to its own file before
// starting the next one. A failing example does not stop the others; the
// errors are joined.
func (h *Harness[D]) RunAll(ctx context.Context, exs []examples.Example[D], dest Destination) ([]Summary, error) {
	var sums []Summary
	var errs []error
	for _, ex := range exs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		sum, err := h.runToFile(ctx, ex, dest)
		if err != nil {
			errs = append(errs, fmt.Errorf("example %s: %w", ex.Name, err))
			continue
		}
		sums = append(sums, sum)
	}
	return sums, errors.Join(errs...)
}

// runToFile opens the destination only once the example has a summary, so
// a failing example leaves an existing result file untouched.
func (h *Harness[D]) runToFile(ctx context.Context, ex examples.Example[D], dest Destination) (sum Summary, err error) {
	sum, err = h.RunExample(ctx, ex)
	if err != nil {
		return sum, err
	}
	w, err := dest(DatName(ex.Name))
	if err != nil {
		return sum, err
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close result file: %w", cerr)
		}
	}()
	if _, err := sum.WriteTo(w); err != nil {
		return sum, fmt.Errorf("write results: %w", err)
	}
	return sum, nil
}

// SeriesOptions describes a sweep over random targets.
type SeriesOptions[D comparable] struct {
	// Lower is the first state count; Upper is exclusive.
	Lower, Upper, Step int
	AlphabetSizes   []int
	// Example builds the target with n states over k inputs.
	Example func(k, n int) examples.Example[D]
}

// DefaultSeries returns the sweep bounds used when none are given.
func DefaultSeries[D comparable](example func(k, n int) examples.Example[D]) SeriesOptions[D] {
	return SeriesOptions[D]{Lower: 10, Upper: 1000, Step: 10, AlphabetSizes: []int{2, 10, 100}, Example: example}
}

// Validate checks the sweep bounds.
func (o SeriesOptions[D]) Validate() error {
	switch {
	case o.Lower <= 0:
		return fmt.Errorf("lower bound must be positive, got %d", o.Lower)
	case o.Upper <= o.Lower:
		return fmt.Errorf("upper bound %d must exceed lower bound %d", o.Upper, o.Lower)
	case o.Step <= 0:
		return fmt.Errorf("step must be positive, got %d", o.Step)
	case len(o.AlphabetSizes) == 0:
		return errors.New("no alphabet sizes")
	case o.Example == nil:
		return errors.New("no example generator")
	}
	for _, k := range o.AlphabetSizes {
		if k <= 0 {
			return fmt.Errorf("alphabet size must be positive, got %d", k)
		}
	}
	return nil
}

// Series writes one file per alphabet size. Each line is the target size
// followed by the learner and baseline mean times of every pair.
func (h *Harness[D]) Series(ctx context.Context, opts SeriesOptions[D], dest Destination) error {
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("random series: %w", err)
	}
	var errs []error
	for _, k := range opts.AlphabetSizes {
		h.progressf("Running series for alphabet size %d\n", k)
		if err := h.series(ctx, k, opts, dest); err != nil {
			errs = append(errs, fmt.Errorf("alphabet size %d: %w", k, err))
			if ctx.Err() != nil {
				break
			}
		}
	}
	return errors.Join(errs...)
}

func (h *Harness[D]) series(ctx context.Context, k int, opts SeriesOptions[D], dest Destination) (err error) {
	w, err := dest(SeriesName(k))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close result file: %w", cerr)
		}
	}()
	for n := opts.Lower; n < opts.Upper; n += opts.Step {
		sum, err := h.RunExample(ctx, opts.Example(k, n))
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, SeriesLine(sum)+"\n"); err != nil {
			return fmt.Errorf("write results: %w", err)
		}
	}
	return nil
}

// SeriesLine renders a summary as "<states> (<t_l> <t_b>)...".
func SeriesLine(s Summary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d", s.States)
	for _, r := range s.Rows {
		fmt.Fprintf(&sb, " %f %f", r.Learner.MeanMillis, r.Baseline.MeanMillis)
	}
	return sb.String()
}

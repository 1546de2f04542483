package tui

import (
	"context"
	"fmt"
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ShayCichocki/learnlab/internal/experiment"
)

// runFunc runs a bubbletea model until it quits.
type runFunc func(ctx context.Context, m tea.Model) (tea.Model, error)

// Prompter asks for counterexamples in the terminal.
type Prompter struct {
	out  io.Writer
	run  runFunc
	view *RoundView

	mu   sync.Mutex
	note string
}

var _ experiment.Prompter = (*Prompter)(nil)

// NewPrompter creates a Prompter reading keys from in and drawing to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		out:  out,
		run:  programRunner(in, out),
		view: NewRoundView(),
	}
}

func programRunner(in io.Reader, out io.Writer) runFunc {
	return func(ctx context.Context, m tea.Model) (tea.Model, error) {
		p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out))
		return p.Run()
	}
}

// Observe records a loop event for the round summary. It is meant for
// experiment.Options.OnEvent.
func (p *Prompter) Observe(ev experiment.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.view.Apply(ev)
}

// Prompt implements experiment.Prompter.
func (p *Prompter) Prompt(ctx context.Context, message, initial string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	p.mu.Lock()
	m := newPromptModel(p.view.View(), message, initial, p.note)
	p.note = ""
	p.mu.Unlock()

	final, err := p.run(ctx, m)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", false, ctxErr
	}
	if err != nil {
		return "", false, fmt.Errorf("run prompt: %w", err)
	}
	pm, ok := final.(*promptModel)
	if !ok {
		return "", false, fmt.Errorf("run prompt: unexpected model %T", final)
	}
	return pm.text, pm.ok, nil
}

// Confirm implements experiment.Prompter.
func (p *Prompter) Confirm(ctx context.Context, title, message string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	final, err := p.run(ctx, newConfirmModel(title, message))
	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, ctxErr
	}
	if err != nil {
		return false, fmt.Errorf("run confirm: %w", err)
	}
	cm, ok := final.(*confirmModel)
	if !ok {
		return false, fmt.Errorf("run confirm: unexpected model %T", final)
	}
	return cm.answer, nil
}

// Notify implements experiment.Prompter. The message is printed now and
// repeated in the next prompt.
func (p *Prompter) Notify(msg string) {
	p.mu.Lock()
	p.note = msg
	p.mu.Unlock()
	fmt.Fprintln(p.out, noteStyle.Render(msg))
}

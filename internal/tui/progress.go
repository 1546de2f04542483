package tui

import (
	"fmt"
	"strings"

	"github.com/ShayCichocki/learnlab/internal/experiment"
)

// RoundState tracks the progress of a learning run.
type RoundState struct {
	Label          string
	States         int
	Queries        int64
	Rounds         int
	Counterexample string
	Rejected       int
	Done           bool
}

// RoundView renders the round summary shown above each prompt.
type RoundView struct {
	state RoundState
}

// NewRoundView creates an empty RoundView.
func NewRoundView() *RoundView {
	return &RoundView{}
}

// Apply folds a loop event into the state.
func (v *RoundView) Apply(ev experiment.Event) {
	v.state.Queries = ev.Queries
	switch ev.Type {
	case experiment.EventStarted:
		v.state.Label = ev.Label
	case experiment.EventHypothesis:
		v.state.Label = ev.Label
		v.state.States = ev.States
	case experiment.EventCounterexampleRejected:
		v.state.Rejected++
	case experiment.EventRoundCompleted:
		v.state.Rounds = ev.Round + 1
		v.state.Counterexample = ev.Counterexample.String()
	case experiment.EventDone:
		v.state.Label = ev.Label
		v.state.States = ev.States
		v.state.Done = true
	}
}

// State returns the current state.
func (v *RoundView) State() RoundState {
	return v.state
}

// View renders the summary. It is empty before the first event.
func (v *RoundView) View() string {
	if v.state.Label == "" {
		return ""
	}
	var b strings.Builder

	label := v.state.Label
	if v.state.Done {
		label = doneStyle.Render(label)
	}
	b.WriteString(labelStyle.Render("Hypothesis:"))
	b.WriteString(valueStyle.Render(label))
	b.WriteString("  ")
	b.WriteString(labelStyle.Render("States:"))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%d", v.state.States)))
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("Queries:"))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%d", v.state.Queries)))
	b.WriteString("  ")
	b.WriteString(labelStyle.Render("Rounds:"))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%d", v.state.Rounds)))
	b.WriteString("\n")

	if v.state.Counterexample != "" {
		b.WriteString(labelStyle.Render("Last counterex.:"))
		b.WriteString(v.state.Counterexample)
		b.WriteString("\n")
	}
	if v.state.Rejected > 0 {
		b.WriteString(labelStyle.Render("Rejected:"))
		b.WriteString(errorStyle.Render(fmt.Sprintf("%d", v.state.Rejected)))
		b.WriteString("\n")
	}
	return b.String()
}

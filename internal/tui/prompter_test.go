package tui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ShayCichocki/learnlab/internal/experiment"
	"github.com/ShayCichocki/learnlab/pkg/models"
)

// drive feeds msgs to m. Enter and escape are followed by the message
// their command produces.
func drive(m tea.Model, msgs ...tea.Msg) tea.Model {
	for _, msg := range msgs {
		var cmd tea.Cmd
		m, cmd = m.Update(msg)
		key, ok := msg.(tea.KeyMsg)
		if ok && (key.Type == tea.KeyEnter || key.Type == tea.KeyEsc) && cmd != nil {
			m, _ = m.Update(cmd())
		}
	}
	return m
}

func typed(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
)

// scriptedPrompter answers each program with the next key script and
// keeps the models it was given.
func scriptedPrompter(out *bytes.Buffer, scripts ...[]tea.Msg) (*Prompter, *[]tea.Model) {
	var seen []tea.Model
	p := &Prompter{out: out, view: NewRoundView()}
	p.run = func(_ context.Context, m tea.Model) (tea.Model, error) {
		seen = append(seen, m)
		if len(scripts) == 0 {
			return m, errors.New("no script left")
		}
		script := scripts[0]
		scripts = scripts[1:]
		return drive(m, script...), nil
	}
	return p, &seen
}

func TestPromptModel_Submit(t *testing.T) {
	m := drive(newPromptModel("", "Enter a counterexample", "", ""), typed("a b"), enter).(*promptModel)

	if !m.done || !m.ok || m.text != "a b" {
		t.Errorf("model = done:%v ok:%v text:%q", m.done, m.ok, m.text)
	}
	if m.View() != "" {
		t.Error("finished prompt should render nothing")
	}
}

func TestPromptModel_Cancel(t *testing.T) {
	tests := []struct {
		name string
		keys []tea.Msg
	}{
		{"empty enter", []tea.Msg{enter}},
		{"escape", []tea.Msg{typed("a"), esc}},
		{"ctrl+c", []tea.Msg{tea.KeyMsg{Type: tea.KeyCtrlC}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := drive(newPromptModel("", "msg", "", ""), tt.keys...).(*promptModel)
			if !m.done || m.ok {
				t.Errorf("model = done:%v ok:%v", m.done, m.ok)
			}
		})
	}
}

func TestPromptModel_View(t *testing.T) {
	m := newPromptModel("HEADER", "Enter a counterexample", "a", "Invalid symbol 'z'!")
	view := m.View()

	for _, want := range []string{"HEADER", "Enter a counterexample", "Invalid symbol 'z'!", "esc stop"} {
		if !strings.Contains(view, want) {
			t.Errorf("View missing %q:\n%s", want, view)
		}
	}
}

func TestConfirmModel(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"y", true},
		{"Y", true},
		{"n", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			m := drive(newConfirmModel("Terminate learning?", "sure?"), typed(tt.key)).(*confirmModel)
			if !m.done || m.answer != tt.want {
				t.Errorf("model = done:%v answer:%v", m.done, m.answer)
			}
		})
	}

	m := drive(newConfirmModel("t", "m"), typed("x")).(*confirmModel)
	if m.done {
		t.Error("unrelated key should not answer")
	}
	m = drive(m, enter).(*confirmModel)
	if !m.done || m.answer {
		t.Errorf("enter should answer no, got done:%v answer:%v", m.done, m.answer)
	}
}

func TestPrompter_Prompt(t *testing.T) {
	var out bytes.Buffer
	p, seen := scriptedPrompter(&out, []tea.Msg{typed(" b"), enter})

	text, ok, err := p.Prompt(context.Background(), experiment.EnterCounterexample, "a")
	if err != nil {
		t.Fatalf("Prompt failed: %v", err)
	}
	if !ok || text != "a b" {
		t.Errorf("Prompt() = %q, %v", text, ok)
	}
	if len(*seen) != 1 {
		t.Errorf("ran %d programs, want 1", len(*seen))
	}
}

func TestPrompter_NotifyRepeatsInNextPrompt(t *testing.T) {
	var out bytes.Buffer
	p, seen := scriptedPrompter(&out, []tea.Msg{enter}, []tea.Msg{enter})

	p.Notify("Word 'a' is not a counterexample!")
	if !strings.Contains(out.String(), "Word 'a' is not a counterexample!") {
		t.Errorf("Notify output = %q", out.String())
	}

	if _, _, err := p.Prompt(context.Background(), "msg", ""); err != nil {
		t.Fatal(err)
	}
	if _, _, err := p.Prompt(context.Background(), "msg", ""); err != nil {
		t.Fatal(err)
	}
	first := (*seen)[0].(*promptModel)
	second := (*seen)[1].(*promptModel)
	if first.note != "Word 'a' is not a counterexample!" {
		t.Errorf("first prompt note = %q", first.note)
	}
	if second.note != "" {
		t.Errorf("note should be shown once, second prompt has %q", second.note)
	}
}

func TestPrompter_Confirm(t *testing.T) {
	var out bytes.Buffer
	p, _ := scriptedPrompter(&out, []tea.Msg{typed("y")}, []tea.Msg{typed("n")})

	yes, err := p.Confirm(context.Background(), experiment.TerminateTitle, "Terminate anyway?")
	if err != nil || !yes {
		t.Errorf("Confirm() = %v, %v, want true", yes, err)
	}
	no, err := p.Confirm(context.Background(), experiment.TerminateTitle, "Terminate anyway?")
	if err != nil || no {
		t.Errorf("Confirm() = %v, %v, want false", no, err)
	}
}

func TestPrompter_Errors(t *testing.T) {
	var out bytes.Buffer
	p, seen := scriptedPrompter(&out)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := p.Prompt(ctx, "msg", ""); !errors.Is(err, context.Canceled) {
		t.Errorf("Prompt with canceled context = %v", err)
	}
	if _, err := p.Confirm(ctx, "t", "m"); !errors.Is(err, context.Canceled) {
		t.Errorf("Confirm with canceled context = %v", err)
	}
	if len(*seen) != 0 {
		t.Error("no program should run after cancellation")
	}

	if _, _, err := p.Prompt(context.Background(), "msg", ""); err == nil || !strings.Contains(err.Error(), "run prompt") {
		t.Errorf("Prompt with failing program = %v", err)
	}
}

func TestPrompter_ObserveFeedsHeader(t *testing.T) {
	var out bytes.Buffer
	p, seen := scriptedPrompter(&out, []tea.Msg{enter})

	p.Observe(experiment.Event{Type: experiment.EventHypothesis, Round: 0, Label: models.RoundLabel(0), States: 2, Queries: 9})
	if _, _, err := p.Prompt(context.Background(), "msg", ""); err != nil {
		t.Fatal(err)
	}
	header := (*seen)[0].(*promptModel).header
	if !strings.Contains(header, "round 0") || !strings.Contains(header, "9") {
		t.Errorf("header = %q", header)
	}
}

package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// WordSubmittedMsg is sent when the user submits the input line.
type WordSubmittedMsg struct {
	Text string
}

// PromptCanceledMsg is sent when the user leaves the input with escape.
type PromptCanceledMsg struct{}

// InputField is a text input component for entering counterexamples.
type InputField struct {
	input textinput.Model
	width int
}

// NewInputField creates a new InputField pre-filled with initial.
func NewInputField(initial string) *InputField {
	ti := textinput.New()
	ti.Placeholder = "symbols separated by spaces, empty to stop"
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60
	ti.SetValue(initial)
	ti.CursorEnd()

	return &InputField{
		input: ti,
		width: 80,
	}
}

// SetWidth sets the width of the input field.
func (f *InputField) SetWidth(width int) {
	f.width = width
	f.input.Width = width - 4 // Account for prompt and padding
}

// Value returns the current text.
func (f *InputField) Value() string {
	return f.input.Value()
}

// Update handles messages for the input field.
func (f *InputField) Update(msg tea.Msg) (*InputField, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyEnter:
			text := strings.TrimSpace(f.input.Value())
			return f, func() tea.Msg {
				return WordSubmittedMsg{Text: text}
			}
		case tea.KeyEsc:
			return f, func() tea.Msg {
				return PromptCanceledMsg{}
			}
		}
	}

	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return f, cmd
}

// View renders the input field.
func (f *InputField) View() string {
	promptStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("39")).
		Bold(true)

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Width(f.width - 2)

	prompt := promptStyle.Render("> ")
	return boxStyle.Render(prompt + f.input.View())
}

// Focus sets focus on the input field.
func (f *InputField) Focus() tea.Cmd {
	return f.input.Focus()
}

// Blur removes focus from the input field.
func (f *InputField) Blur() {
	f.input.Blur()
}

package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// promptModel asks for one line of text.
type promptModel struct {
	header  string
	message string
	note    string
	input   *InputField

	text string
	ok   bool
	done bool
}

func newPromptModel(header, message, initial, note string) *promptModel {
	return &promptModel{
		header:  header,
		message: message,
		note:    note,
		input:   NewInputField(initial),
	}
}

func (m *promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.input.SetWidth(msg.Width)
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.done = true
			return m, tea.Quit
		}
	case WordSubmittedMsg:
		m.text = msg.Text
		m.ok = msg.Text != ""
		m.done = true
		return m, tea.Quit
	case PromptCanceledMsg:
		m.done = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *promptModel) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	if m.header != "" {
		b.WriteString(m.header)
		b.WriteString("\n")
	}
	b.WriteString(messageStyle.Render(m.message))
	b.WriteString("\n")
	if m.note != "" {
		b.WriteString(noteStyle.Render(m.note))
		b.WriteString("\n")
	}
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("enter submit • esc stop"))
	b.WriteString("\n")
	return b.String()
}

// confirmModel asks a yes/no question. Anything but y answers no.
type confirmModel struct {
	title   string
	message string

	answer bool
	done   bool
}

func newConfirmModel(title, message string) *confirmModel {
	return &confirmModel{title: title, message: message}
}

func (m *confirmModel) Init() tea.Cmd {
	return nil
}

func (m *confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "y", "Y":
		m.answer = true
	case "n", "N", "enter", "esc", "ctrl+c":
		m.answer = false
	default:
		return m, nil
	}
	m.done = true
	return m, tea.Quit
}

func (m *confirmModel) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(messageStyle.Render(m.message))
	b.WriteString("\n\n  ")
	b.WriteString(keyStyle.Render("y"))
	b.WriteString("  Yes  ")
	b.WriteString(keyStyle.Render("n"))
	b.WriteString("  No\n")
	return b.String()
}

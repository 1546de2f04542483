package experiment

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Prompter asks a human for input. It is the only blocking point of the
// loop.
type Prompter interface {
	// Prompt asks for a line of text, pre-filled with initial. ok is false
	// when the user cancels.
	Prompt(ctx context.Context, message, initial string) (text string, ok bool, err error)
	// Confirm asks a yes/no question.
	Confirm(ctx context.Context, title, message string) (bool, error)
	// Notify shows a message.
	Notify(msg string)
}

// LinePrompter prompts on a line-oriented stream. An empty line or end of
// input cancels a prompt; end of input confirms, so a closed stream always
// terminates the run.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

var _ Prompter = (*LinePrompter)(nil)

// NewLinePrompter reads answers from in and writes prompts to out.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

// Prompt implements Prompter.
func (p *LinePrompter) Prompt(ctx context.Context, message, initial string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	// A line stream cannot pre-fill input, so initial is only a suggestion.
	if initial != "" {
		fmt.Fprintf(p.out, "%s (suggestion: %s, empty line stops): ", message, initial)
	} else {
		fmt.Fprintf(p.out, "%s (empty line stops): ", message)
	}
	line, err := p.readLine()
	if err == io.EOF {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if line == "" {
		return "", false, nil
	}
	return line, true, nil
}

// Confirm implements Prompter.
func (p *LinePrompter) Confirm(ctx context.Context, title, message string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	fmt.Fprintf(p.out, "%s\n%s [y/N]: ", title, message)
	line, err := p.readLine()
	if err == io.EOF {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Notify implements Prompter.
func (p *LinePrompter) Notify(msg string) {
	fmt.Fprintln(p.out, msg)
}

// readLine returns the next trimmed line. A final line without newline is
// returned before io.EOF is reported.
func (p *LinePrompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err == io.EOF && line != "" {
		return strings.TrimSpace(line), nil
	}
	if err == io.EOF {
		return "", io.EOF
	}
	if err != nil {
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

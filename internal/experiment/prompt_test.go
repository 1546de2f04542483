package experiment

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestLinePrompter(t *testing.T) {
	var out bytes.Buffer
	p := NewLinePrompter(strings.NewReader("a b\n\nno\ny\n"), &out)
	ctx := context.Background()

	text, ok, err := p.Prompt(ctx, "Enter", "")
	if err != nil || !ok || text != "a b" {
		t.Fatalf("Prompt() = %q, %v, %v", text, ok, err)
	}
	if text, ok, _ := p.Prompt(ctx, "Enter", "a b"); ok || text != "" {
		t.Errorf("empty line should cancel, not accept the suggestion; got %q, %v", text, ok)
	}
	if yes, _ := p.Confirm(ctx, "Stop?", "really"); yes {
		t.Error("'no' should not confirm")
	}
	if yes, _ := p.Confirm(ctx, "Stop?", "really"); !yes {
		t.Error("'y' should confirm")
	}
	if _, ok, err := p.Prompt(ctx, "Enter", ""); ok || err != nil {
		t.Errorf("end of input should cancel, got ok=%v err=%v", ok, err)
	}
	if yes, err := p.Confirm(ctx, "Stop?", "really"); !yes || err != nil {
		t.Errorf("end of input should confirm, got %v, %v", yes, err)
	}
	if !strings.Contains(out.String(), "Enter (suggestion: a b, empty line stops): ") {
		t.Errorf("suggestion not shown: %q", out.String())
	}
	if strings.Contains(out.String(), "[a b]") {
		t.Errorf("suggestion shown as a default: %q", out.String())
	}
}

func TestLinePrompter_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewLinePrompter(strings.NewReader("x\n"), &bytes.Buffer{})
	if _, _, err := p.Prompt(ctx, "Enter", ""); err == nil {
		t.Error("expected context error")
	}
}

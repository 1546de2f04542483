package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNew_NoFiles(t *testing.T) {
	if _, err := New(nil, 0, func(string) error { return nil }); err == nil {
		t.Error("expected error for empty file list")
	}
}

func TestNew_MissingDirectory(t *testing.T) {
	_, err := New([]string{filepath.Join(t.TempDir(), "missing", "a.yaml")}, 0, func(string) error { return nil })
	if err == nil {
		t.Error("expected error watching a missing directory")
	}
}

func TestWatcher_Run(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target.yaml")
	other := filepath.Join(dir, "other.yaml")
	for _, f := range []string{target, other} {
		if err := os.WriteFile(f, []byte("states: 1\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	changed := make(chan string, 10)
	w, err := New([]string{target}, 20*time.Millisecond, func(path string) error {
		changed <- path
		return errors.New("handler errors are logged")
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if files := w.Files(); len(files) != 1 || filepath.Base(files[0]) != "target.yaml" {
		t.Errorf("Files() = %v", files)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher a moment to start reading events
	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(other, []byte("states: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(target, []byte("states: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case path := <-changed:
		if filepath.Base(path) != "target.yaml" {
			t.Errorf("handler got %s", path)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("handler was not called")
	}

	select {
	case path := <-changed:
		t.Errorf("unexpected second call for %s", path)
	case <-time.After(100 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestDue(t *testing.T) {
	now := time.Now()
	pending := map[string]time.Time{
		"b": now.Add(-time.Second),
		"a": now.Add(-time.Second),
		"c": now,
	}
	got := due(pending, now, 100*time.Millisecond)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("due() = %v, want [a b]", got)
	}
}

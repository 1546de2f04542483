// Package exec provides an interface for running external tools such as
// graphviz and the desktop opener.
package exec

import (
	"context"
)

// CommandRunner defines the interface for running external commands.
// This abstraction allows faking graphviz in tests.
type CommandRunner interface {
	// Run executes a command and returns combined stdout/stderr output.
	// The working directory is set to workDir if non-empty.
	Run(ctx context.Context, workDir string, name string, args ...string) (output []byte, err error)

	// LookPath resolves an executable name to a path.
	LookPath(name string) (string, error)

	// Start launches a command without waiting for it to finish.
	Start(ctx context.Context, name string, args ...string) error
}

package keautil

import (
	"context"
	"os/exec"
)

// The command executor is an abstraction layer on top of the exec package to
// improve testability and allow mock the operating system operations.
type CommandExecutor interface {
	// Runs the command and returns its combined standard output and
	// standard error. The error is an *exec.ExitError when the command
	// exited with a non-zero status.
	CombinedOutput(ctx context.Context, command string, args ...string) ([]byte, error)
	// Looks for a given command in the system PATH and returns absolute
	// path if found.
	LookPath(command string) (string, error)
}

// Executes the given command in the operating system.
type systemCommandExecutor struct{}

// Constructs the command executor that runs the commands in the
// operating system.
func NewSystemCommandExecutor() CommandExecutor {
	return &systemCommandExecutor{}
}

// Executes a given command and returns its output.
func (e *systemCommandExecutor) CombinedOutput(ctx context.Context, command string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, command, args...).CombinedOutput()
}

// Looks for a given command in the system PATH and returns absolute path if found.
func (e *systemCommandExecutor) LookPath(command string) (string, error) {
	return exec.LookPath(command)
}

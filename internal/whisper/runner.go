package whisper

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// CommandRunner executes external processes. The default runner shells out;
// tests substitute fakes.
type CommandRunner interface {
	// Run executes the command and waits for it, returning an error on a
	// non-zero exit or a missing binary.
	Run(ctx context.Context, name string, args ...string) error
	// Output executes the command and returns its trimmed stdout.
	Output(ctx context.Context, name string, args ...string) (string, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if isNotFound(err) {
			return err
		}
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

func (execRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// isNotFound reports whether err means the binary is not on PATH.
func isNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound)
}

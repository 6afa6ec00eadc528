package executor

import (
	"context"
	"errors"
	"os/exec"
)

// ExecRunner runs commands with os/exec, stderr merged into stdout.
type ExecRunner struct{}

// Run starts argv and waits for it. ctx is not used to kill the command: an
// action that has started always runs to completion.
func (ExecRunner) Run(_ context.Context, argv []string, dir string) ([]byte, int, error) {
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = dir

	output, err := cmd.CombinedOutput()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return output, exitErr.ExitCode(), nil
	}
	if err != nil {
		return output, -1, err
	}
	return output, 0, nil
}

package executor

import (
	"errors"
	"fmt"
	"strings"
)

// Process exit codes for fatal command failures.
const (
	ExitCommandFailed = 1
	ExitSpawnFailed   = 2
)

// CommandExecutionError is returned when an external command ran and exited non-zero.
type CommandExecutionError struct {
	Argv     []string
	ExitCode int
	Output   []byte
}

func (e *CommandExecutionError) Error() string {
	return fmt.Sprintf("command '%s' failed with rc=%d", strings.Join(e.Argv, " "), e.ExitCode)
}

// CommandSpawnError is returned when an external command could not be started.
type CommandSpawnError struct {
	Argv []string
	Err  error
}

func (e *CommandSpawnError) Error() string {
	name := ""
	if len(e.Argv) > 0 {
		name = e.Argv[0]
	}
	return fmt.Sprintf("could not run '%s': %v", name, e.Err)
}

func (e *CommandSpawnError) Unwrap() error {
	return e.Err
}

// ExitCode maps a fatal command error to the process exit code, or 0 if err
// is not one. The command's own exit status is deliberately not propagated.
func ExitCode(err error) int {
	var execErr *CommandExecutionError
	var spawnErr *CommandSpawnError
	switch {
	case errors.As(err, &spawnErr):
		return ExitSpawnFailed
	case errors.As(err, &execErr):
		return ExitCommandFailed
	default:
		return 0
	}
}

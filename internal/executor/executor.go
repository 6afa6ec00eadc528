// Package executor carries out method actions: log lines, Kodi built-ins,
// external commands and JSON-RPC calls.
package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"screensaverturnoff/internal/logger"
	"screensaverturnoff/internal/methods"
	"screensaverturnoff/internal/metrics"
)

// RPC performs a JSON-RPC request against the host and returns its result.
type RPC interface {
	Call(ctx context.Context, method string, params map[string]any) (any, error)
}

// BuiltinRunner runs a named host built-in. Success is not observable.
type BuiltinRunner interface {
	RunBuiltin(ctx context.Context, name string, wait bool) error
}

// Notifier shows a user-visible failure message.
type Notifier interface {
	Notify(ctx context.Context, msg string)
}

// ProcessRunner runs argv to completion and returns its combined output and
// exit code. err is non-nil only when the process could not be started.
type ProcessRunner interface {
	Run(ctx context.Context, argv []string, dir string) (output []byte, exitCode int, err error)
}

// Options wires the executor to its collaborators. Metrics may be nil.
type Options struct {
	RPC      RPC
	Builtins BuiltinRunner
	Notifier Notifier
	Procs    ProcessRunner
	Addon    *logger.AddonLogger
	Metrics  *metrics.Metrics
}

// Executor dispatches action parameters to the handler of their strategy.
type Executor struct {
	rpc      RPC
	builtins BuiltinRunner
	notifier Notifier
	procs    ProcessRunner
	addon    *logger.AddonLogger
	metrics  *metrics.Metrics
}

// New creates an Executor. A nil Procs uses ExecRunner.
func New(opts Options) *Executor {
	procs := opts.Procs
	if procs == nil {
		procs = ExecRunner{}
	}
	addon := opts.Addon
	if addon == nil {
		addon = logger.NewAddonLogger("screensaver.turnoff")
	}
	return &Executor{
		rpc:      opts.RPC,
		builtins: opts.Builtins,
		notifier: opts.Notifier,
		procs:    procs,
		addon:    addon,
		metrics:  opts.Metrics,
	}
}

// Run executes one action. The result is only meaningful for RemoteCall.
//
// A failing external command is reported to the user and returned as
// *CommandExecutionError or *CommandSpawnError; the caller decides to exit.
func (e *Executor) Run(ctx context.Context, params methods.Params) (any, error) {
	switch p := params.(type) {
	case methods.LogParams:
		e.runLog(p)
		e.metrics.ObserveAction(p.Strategy().String(), metrics.OutcomeOK)
		return nil, nil
	case methods.BuiltinParams:
		e.runBuiltin(ctx, p)
		e.metrics.ObserveAction(p.Strategy().String(), metrics.OutcomeOK)
		return nil, nil
	case methods.ProcessParams:
		err := e.runProcess(ctx, p)
		e.metrics.ObserveAction(p.Strategy().String(), outcome(err))
		return nil, err
	case methods.RemoteCallParams:
		result, err := e.runRemoteCall(ctx, p)
		e.metrics.ObserveAction(p.Strategy().String(), outcome(err))
		return result, err
	default:
		return nil, fmt.Errorf("unsupported action parameters %T", params)
	}
}

func (e *Executor) runLog(p methods.LogParams) {
	e.addon.Log(p.Level).Msg(p.Msg)
}

func (e *Executor) runBuiltin(ctx context.Context, p methods.BuiltinParams) {
	e.addon.Log(logger.AddonLevelVerbose).Str("builtin", p.Name).Msg("Executing builtin")
	if err := e.builtins.RunBuiltin(ctx, p.Name, p.Wait); err != nil {
		// fire-and-forget: the host would have swallowed this too
		log := logger.WithComponent("executor")
		log.Warn().Err(err).Str("builtin", p.Name).Msg("Builtin could not be delivered")
	}
}

// runProcess blocks until the command exits. There is no timeout: a hung
// command holds the session until it returns.
func (e *Executor) runProcess(ctx context.Context, p methods.ProcessParams) error {
	if len(p.Argv) == 0 {
		return &CommandSpawnError{Err: errors.New("empty command")}
	}
	command := strings.Join(p.Argv, " ")

	output, rc, err := e.procs.Run(ctx, p.Argv, p.Dir)
	if err != nil {
		e.addon.Error().Err(err).Str("command", p.Argv[0]).Msg("Exception running command")
		e.notify(ctx, fmt.Sprintf("Exception running '%s': %v", p.Argv[0], err))
		return &CommandSpawnError{Argv: p.Argv, Err: err}
	}

	if rc != 0 {
		e.addon.Error().
			Str("command", command).
			Int("rc", rc).
			Bytes("output", output).
			Msg("Running command failed")
		e.notify(ctx, strings.TrimSpace(string(output)))
		return &CommandExecutionError{Argv: p.Argv, ExitCode: rc, Output: output}
	}

	e.addon.Log(logger.AddonLevelVerbose).Str("command", command).Int("rc", rc).Msg("Running command succeeded")
	return nil
}

func (e *Executor) runRemoteCall(ctx context.Context, p methods.RemoteCallParams) (any, error) {
	e.addon.Log(logger.AddonLevelDebug).Str("method", p.Method).Msg("Sending JSON-RPC request")
	result, err := e.rpc.Call(ctx, p.Method, p.Params)
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = map[string]any{}
	}
	return result, nil
}

func (e *Executor) notify(ctx context.Context, msg string) {
	if e.notifier != nil {
		e.notifier.Notify(ctx, msg)
	}
}

func outcome(err error) string {
	var spawnErr *CommandSpawnError
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.As(err, &spawnErr):
		return metrics.OutcomeSpawnFailed
	default:
		return metrics.OutcomeFailed
	}
}

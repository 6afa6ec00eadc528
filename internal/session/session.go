// Package session drives one screensaver session: it powers the display and
// system down on activation and restores the display on deactivation.
package session

import (
	"context"
	"fmt"
	"time"

	"screensaverturnoff/internal/config"
	"screensaverturnoff/internal/logger"
	"screensaverturnoff/internal/methods"
	"screensaverturnoff/internal/metrics"
)

// State is the lifecycle position of a session.
type State int

const (
	Idle State = iota
	Activating
	Active
	Deactivating
	Terminated
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Activating:
		return "Activating"
	case Active:
		return "Active"
	case Deactivating:
		return "Deactivating"
	case Terminated:
		return "Terminated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session results reported to metrics.
const (
	ResultResumed = "resumed"
	ResultAborted = "aborted"
	ResultFailed  = "failed"
	ResultClosed  = "closed"
)

const loginWindow = "loginscreen"

// statusTimeout bounds each status publish so a slow store cannot delay
// the display and power actions that follow a transition.
const statusTimeout = 500 * time.Millisecond

// Runner executes a single method action.
type Runner interface {
	Run(ctx context.Context, params methods.Params) (any, error)
}

// Host is the part of the media center the session controls directly.
type Host interface {
	ActivateWindow(ctx context.Context, window string) error
	SetMute(ctx context.Context, mute bool) error
}

// StatusPublisher is told about every state change.
type StatusPublisher interface {
	Publish(ctx context.Context, state string, settings config.Settings)
}

// Deps are the collaborators of a session. Status, Metrics and Addon may be
// nil; nil catalogs default to methods.Display and methods.Power.
type Deps struct {
	Runner  Runner
	Host    Host
	Status  StatusPublisher
	Metrics *metrics.Metrics
	Addon   *logger.AddonLogger
	Display *methods.Catalog
	Power   *methods.Catalog
}

// Session is the state of a single screensaver session. It is driven from
// one goroutine and is not safe for concurrent use.
type Session struct {
	deps Deps

	state    State
	settings config.Settings
	display  *methods.MethodEntry
	power    *methods.MethodEntry
	monitor  *Monitor
}

// New creates an Idle session.
func New(deps Deps) *Session {
	if deps.Display == nil {
		deps.Display = &methods.Display
	}
	if deps.Power == nil {
		deps.Power = &methods.Power
	}
	if deps.Addon == nil {
		deps.Addon = logger.NewAddonLogger("screensaver.turnoff")
	}
	return &Session{deps: deps, state: Idle}
}

// State returns the current state.
func (s *Session) State() State {
	return s.state
}

// Monitor returns the attached monitor, or nil outside the Active state.
func (s *Session) Monitor() *Monitor {
	return s.monitor
}

// Activate runs the off sequence: display off, logoff, mute, monitor
// attach, power off. A method index that does not resolve aborts before
// anything runs and terminates the session. An error before the monitor is
// attached stops the sequence and terminates the session. A power off error
// is returned with the session still Active, so the next deactivation
// restores display and mute. The caller decides whether an error is fatal.
func (s *Session) Activate(ctx context.Context, settings config.Settings) error {
	if s.state != Idle {
		return fmt.Errorf("activate: session is %s", s.state)
	}
	s.settings = settings
	s.setState(ctx, Activating)

	display, err := methods.Lookup(s.deps.Display, settings.DisplayMethod)
	if err != nil {
		s.abort(ctx, err)
		return err
	}
	power, err := methods.Lookup(s.deps.Power, settings.PowerMethod)
	if err != nil {
		s.abort(ctx, err)
		return err
	}
	s.display, s.power = display, power

	s.deps.Addon.Log(logger.AddonLevelInfo).
		Str("display_method", display.ID).
		Str("power_method", power.ID).
		Bool("logoff", settings.Logoff).
		Bool("mute", settings.Mute).
		Msg("Screensaver activated")

	if err := s.runOff(ctx, display); err != nil {
		return s.fail(ctx, "display off", err)
	}

	if settings.Logoff {
		if err := s.deps.Host.ActivateWindow(ctx, loginWindow); err != nil {
			return s.fail(ctx, "logoff", err)
		}
	}

	if settings.Mute {
		if err := s.deps.Host.SetMute(ctx, true); err != nil {
			return s.fail(ctx, "mute", err)
		}
	}

	s.monitor = newMonitor(s.Resume)
	s.setState(ctx, Active)

	if err := s.runOff(ctx, power); err != nil {
		s.deps.Addon.Error().Err(err).Str("power_method", power.ID).Msg("Power off failed, waiting for deactivation")
		return fmt.Errorf("power off: %w", err)
	}
	return nil
}

// Resume runs the on sequence: unmute, display on, then teardown. It does
// nothing unless the session is Active.
func (s *Session) Resume(ctx context.Context) error {
	if s.state != Active {
		return nil
	}
	s.setState(ctx, Deactivating)
	s.deps.Addon.Log(logger.AddonLevelInfo).Msg("Screensaver deactivated")

	if s.settings.Mute {
		if err := s.deps.Host.SetMute(ctx, false); err != nil {
			return s.fail(ctx, "unmute", err)
		}
	}

	// power methods have no on action; the OS resumes the system itself
	if s.display.On != nil {
		if _, err := s.deps.Runner.Run(ctx, s.display.On); err != nil {
			return s.fail(ctx, "display on", err)
		}
	}

	s.deps.Metrics.ObserveSession(ResultResumed)
	s.teardown(ctx)
	return nil
}

// Close detaches the monitor and terminates the session without running
// any on action. Safe to call more than once.
func (s *Session) Close() {
	if s.state == Terminated {
		return
	}
	if s.state == Active {
		s.deps.Metrics.ObserveSession(ResultClosed)
	}
	s.teardown(context.Background())
}

func (s *Session) runOff(ctx context.Context, entry *methods.MethodEntry) error {
	_, err := s.deps.Runner.Run(ctx, entry.Off)
	return err
}

func (s *Session) abort(ctx context.Context, err error) {
	s.deps.Addon.Error().Err(err).Msg("Method does not resolve, leaving display and power untouched")
	s.deps.Metrics.ObserveSession(ResultAborted)
	s.teardown(ctx)
}

func (s *Session) fail(ctx context.Context, step string, err error) error {
	s.deps.Metrics.ObserveSession(ResultFailed)
	s.teardown(ctx)
	return fmt.Errorf("%s: %w", step, err)
}

func (s *Session) teardown(ctx context.Context) {
	if s.monitor != nil {
		s.monitor.Detach()
		s.monitor = nil
	}
	s.setState(ctx, Terminated)
}

func (s *Session) setState(ctx context.Context, state State) {
	s.state = state
	log := logger.WithComponent("session")
	log.Debug().Str("state", state.String()).Msg("Session state changed")
	if s.deps.Status != nil {
		pubCtx, cancel := context.WithTimeout(ctx, statusTimeout)
		defer cancel()
		s.deps.Status.Publish(pubCtx, state.String(), s.settings)
	}
}

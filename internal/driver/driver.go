// Package driver turns Kodi screensaver notifications into session
// transitions. It owns the single live session.
package driver

import (
	"context"
	"errors"

	"screensaverturnoff/internal/config"
	"screensaverturnoff/internal/executor"
	"screensaverturnoff/internal/kodi"
	"screensaverturnoff/internal/logger"
	"screensaverturnoff/internal/methods"
	"screensaverturnoff/internal/session"
)

// Probe asks the host whether its screensaver is currently shown.
type Probe interface {
	ScreensaverActive(ctx context.Context) (bool, error)
}

// Notifier shows a user-visible failure message.
type Notifier interface {
	Notify(ctx context.Context, msg string)
}

// Options configures a Driver. Probe and Notifier may be nil.
type Options struct {
	Events     <-chan kodi.Event
	NewSession func() *session.Session
	Settings   func() config.Settings
	Probe      Probe
	Notifier   Notifier
}

// Driver consumes host events on a single goroutine, so sessions never see
// concurrent calls.
type Driver struct {
	opts    Options
	current *session.Session
}

// New creates a Driver.
func New(opts Options) *Driver {
	return &Driver{opts: opts}
}

// Run handles events until ctx is cancelled or the event channel closes.
// It returns an error only when a command failure must end the process;
// executor.ExitCode maps it to the exit status. The live session is closed
// on return without running its on actions.
func (d *Driver) Run(ctx context.Context) error {
	log := logger.WithComponent("driver")
	defer d.closeSession()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Driver stopping")
			return nil
		case ev, ok := <-d.opts.Events:
			if !ok {
				return nil
			}
			if err := d.handle(ctx, ev); err != nil {
				if executor.ExitCode(err) != 0 {
					return err
				}
				log.Error().Err(err).Str("event", ev.Method).Msg("Event handling failed")
			}
		}
	}
}

// Session returns the live session, if any.
func (d *Driver) Session() *session.Session {
	return d.current
}

func (d *Driver) handle(ctx context.Context, ev kodi.Event) error {
	switch ev.Method {
	case kodi.ScreensaverActivated:
		return d.activate(ctx)
	case kodi.ScreensaverDeactivated:
		return d.deactivate(ctx)
	case kodi.Reconnected:
		return d.recover(ctx)
	}
	return nil
}

func (d *Driver) activate(ctx context.Context) error {
	if d.current != nil {
		log := logger.WithComponent("driver")
		log.Warn().
			Str("state", d.current.State().String()).
			Msg("Screensaver activated while a session is live, ignoring")
		return nil
	}

	s := d.opts.NewSession()
	err := s.Activate(ctx, d.opts.Settings())
	if s.State() == session.Active {
		// keep a session whose power off failed so its deactivation still
		// restores display and mute
		d.current = s
	}
	if err != nil {
		var resErr *methods.ResolutionError
		if errors.As(err, &resErr) && d.opts.Notifier != nil {
			d.opts.Notifier.Notify(ctx, err.Error())
		}
		return err
	}
	return nil
}

func (d *Driver) deactivate(ctx context.Context) error {
	if d.current == nil {
		return nil
	}
	s := d.current
	d.current = nil

	if m := s.Monitor(); m != nil {
		return m.OnScreensaverDeactivated(ctx)
	}
	return nil
}

// recover resumes a session whose deactivation was missed while the
// notification stream was down.
func (d *Driver) recover(ctx context.Context) error {
	if d.current == nil || d.opts.Probe == nil {
		return nil
	}
	active, err := d.opts.Probe.ScreensaverActive(ctx)
	if err != nil {
		return err
	}
	if active {
		return nil
	}
	log := logger.WithComponent("driver")
	log.Info().Msg("Screensaver went away while disconnected, resuming")
	return d.deactivate(ctx)
}

func (d *Driver) closeSession() {
	if d.current != nil {
		d.current.Close()
		d.current = nil
	}
}

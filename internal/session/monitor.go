package session

import (
	"context"
	"sync/atomic"
)

// Monitor waits for the one screensaver deactivation of a session and
// forwards it to the session's resume transition.
type Monitor struct {
	action   func(ctx context.Context) error
	fired    atomic.Bool
	detached atomic.Bool
}

func newMonitor(action func(ctx context.Context) error) *Monitor {
	return &Monitor{action: action}
}

// OnScreensaverDeactivated runs the resume action the first time it is
// called. Later calls, and calls after Detach, do nothing.
func (m *Monitor) OnScreensaverDeactivated(ctx context.Context) error {
	if m.detached.Load() || !m.fired.CompareAndSwap(false, true) {
		return nil
	}
	return m.action(ctx)
}

// Active reports whether the monitor is still waiting for its event.
func (m *Monitor) Active() bool {
	return !m.fired.Load() && !m.detached.Load()
}

// Detach makes the monitor inert without firing it.
func (m *Monitor) Detach() {
	m.detached.Store(true)
}

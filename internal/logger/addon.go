package logger

import (
	"sync"

	"github.com/rs/zerolog"
)

// Addon levels as used by the method catalogs and the max_log_level setting.
// 0 is the most important, 3 the most verbose.
const (
	AddonLevelCritical = 0
	AddonLevelInfo     = 1
	AddonLevelVerbose  = 2
	AddonLevelDebug    = 3
)

// AddonEnabled reports whether a message at the given add-on level passes the
// filter. Host debug logging lets everything through; otherwise the message
// must not exceed maxLevel, and maxLevel 0 silences all add-on chatter.
func AddonEnabled(level int, debug bool, maxLevel int) bool {
	if debug {
		return true
	}
	return maxLevel != 0 && level <= maxLevel
}

// AddonSeverity maps an add-on level to the zerolog level the line is written at.
func AddonSeverity(level int, debug bool) zerolog.Level {
	if !debug {
		return zerolog.InfoLevel
	}
	if level%3 == 0 {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}

// AddonLogger writes add-on level messages tagged with the add-on id.
// The filter inputs can change at runtime (settings reload, host debug flag).
type AddonLogger struct {
	id string

	mu       sync.RWMutex
	debug    bool
	maxLevel int
}

// NewAddonLogger creates an AddonLogger for the given add-on id.
func NewAddonLogger(id string) *AddonLogger {
	return &AddonLogger{id: id}
}

// SetDebug toggles host debug logging.
func (a *AddonLogger) SetDebug(debug bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.debug = debug
}

// SetMaxLevel updates the max_log_level filter.
func (a *AddonLogger) SetMaxLevel(level int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.maxLevel = level
}

// Log returns an event for the given add-on level, or nil when filtered out.
// zerolog treats a nil *Event as disabled, so callers can chain unconditionally.
func (a *AddonLogger) Log(level int) *zerolog.Event {
	a.mu.RLock()
	debug, maxLevel := a.debug, a.maxLevel
	a.mu.RUnlock()

	if !AddonEnabled(level, debug, maxLevel) {
		return nil
	}
	return globalLogger.WithLevel(AddonSeverity(level, debug)).Str("addon", a.id)
}

// Error returns an error event; errors bypass the add-on filter.
func (a *AddonLogger) Error() *zerolog.Event {
	return globalLogger.Error().Str("addon", a.id)
}

// Package service runs the daemon until its work finishes or the process
// is asked to stop.
package service

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"screensaverturnoff/internal/logger"
)

// RunFunc is the daemon's main loop. It must return once ctx is cancelled.
type RunFunc func(ctx context.Context) error

// Service supervises a RunFunc and cancels it on SIGINT or SIGTERM.
type Service struct {
	runFunc RunFunc

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped bool
}

// New creates a Service for runFunc.
func New(runFunc RunFunc) *Service {
	return &Service{runFunc: runFunc}
}

// Run blocks until runFunc returns and passes its error through, so a fatal
// error inside the loop still reaches the caller after a signal.
func (s *Service) Run(ctx context.Context) error {
	log := logger.WithComponent("service")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	done := make(chan error, 1)
	go func() {
		done <- s.runFunc(ctx)
	}()

	log.Info().Int("pid", os.Getpid()).Msg("Service started")

	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		s.Stop()

		select {
		case err := <-done:
			return err
		case sig := <-sigChan:
			log.Warn().Str("signal", sig.String()).Msg("Received second signal, forcing exit")
			return nil
		}

	case err := <-done:
		return err
	}
}

// Stop cancels the running loop. Safe to call more than once.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil && !s.stopped {
		s.stopped = true
		s.cancel()
	}
}

// IsService reports whether the process runs without a terminal, as under
// systemd or when Kodi's autostart launches it.
func IsService() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) == 0
}

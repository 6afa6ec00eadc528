// Package metrics exposes Prometheus counters for executed actions and sessions.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"screensaverturnoff/internal/logger"
)

const namespace = "screensaverturnoff"

// Outcome labels.
const (
	OutcomeOK          = "ok"
	OutcomeFailed      = "failed"
	OutcomeSpawnFailed = "spawn_failed"
)

// Metrics holds the daemon's counters.
type Metrics struct {
	Actions  *prometheus.CounterVec
	Sessions *prometheus.CounterVec
}

// New creates and registers the metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Off/on actions executed, by strategy and outcome.",
		}, []string{"strategy", "outcome"}),
		Sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Screensaver sessions, by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.Actions, m.Sessions)
	return m
}

// ObserveAction counts one executed action. Safe on a nil receiver.
func (m *Metrics) ObserveAction(strategy, outcome string) {
	if m == nil {
		return
	}
	m.Actions.WithLabelValues(strategy, outcome).Inc()
}

// ObserveSession counts one finished or aborted session. Safe on a nil receiver.
func (m *Metrics) ObserveSession(result string) {
	if m == nil {
		return
	}
	m.Sessions.WithLabelValues(result).Inc()
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, gatherer prometheus.Gatherer) error {
	log := logger.WithComponent("metrics")

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Msg("Serving metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

package status

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/benbjohnson/clock"

	"screensaverturnoff/internal/config"
)

func newTestPublisher(t *testing.T, addr string, clk clock.Clock) *Publisher {
	t.Helper()
	cfg := config.RedisConfig{Enabled: true, Addr: addr, Key: "screensaver.turnoff:status"}
	p := NewPublisher(cfg, nil, clk)
	t.Cleanup(func() { p.Close() })
	return p
}

func TestPublish_WritesHash(t *testing.T) {
	mr := miniredis.RunT(t)
	clk := clock.NewMock()
	clk.Set(time.Date(2024, 3, 1, 22, 15, 0, 0, time.UTC))

	p := newTestPublisher(t, mr.Addr(), clk)
	p.Publish(context.Background(), "Active", config.Settings{DisplayMethod: 2, PowerMethod: 1})

	key := "screensaver.turnoff:status"
	if got := mr.HGet(key, FieldState); got != "Active" {
		t.Errorf("expected state=Active, got %q", got)
	}
	if got := mr.HGet(key, FieldDisplayMethod); got != "2" {
		t.Errorf("expected display_method=2, got %q", got)
	}
	if got := mr.HGet(key, FieldPowerMethod); got != "1" {
		t.Errorf("expected power_method=1, got %q", got)
	}
	if got := mr.HGet(key, FieldChangedAt); got != "2024-03-01T22:15:00Z" {
		t.Errorf("expected changed_at=2024-03-01T22:15:00Z, got %q", got)
	}
}

func TestPublish_OverwritesPreviousState(t *testing.T) {
	mr := miniredis.RunT(t)
	clk := clock.NewMock()

	p := newTestPublisher(t, mr.Addr(), clk)
	p.Publish(context.Background(), "Active", config.Settings{})
	clk.Add(time.Minute)
	p.Publish(context.Background(), "Terminated", config.Settings{})

	if got := mr.HGet("screensaver.turnoff:status", FieldState); got != "Terminated" {
		t.Errorf("expected state=Terminated, got %q", got)
	}
	if got := mr.HGet("screensaver.turnoff:status", FieldChangedAt); got != "1970-01-01T00:01:00Z" {
		t.Errorf("expected changed_at to advance with the clock, got %q", got)
	}
}

func TestPublish_ServerDownIsNotFatal(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	p := newTestPublisher(t, addr, clock.NewMock())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	// Must return without panicking or blocking past the timeout.
	p.Publish(ctx, "Active", config.Settings{})
}

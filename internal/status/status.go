// Package status mirrors the session state into a Redis hash so that other
// tools on the network can see whether the display was powered down.
package status

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/redis/go-redis/v9"

	"screensaverturnoff/internal/config"
	"screensaverturnoff/internal/logger"
	"screensaverturnoff/internal/network"
)

const publishTimeout = 5 * time.Second

// Hash fields written on every transition.
const (
	FieldState         = "state"
	FieldDisplayMethod = "display_method"
	FieldPowerMethod   = "power_method"
	FieldChangedAt     = "changed_at"
)

// Publisher writes session transitions to Redis.
type Publisher struct {
	client *redis.Client
	key    string
	clock  clock.Clock
}

// NewPublisher creates a Publisher. dial is optional and routes the
// connection through a proxy when set.
func NewPublisher(cfg config.RedisConfig, dial network.DialContextFunc, clk clock.Clock) *Publisher {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if dial != nil {
		opts.Dialer = func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dial(ctx, network, addr)
		}
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Publisher{
		client: redis.NewClient(opts),
		key:    cfg.Key,
		clock:  clk,
	}
}

// Publish records state together with the methods in use. Errors are logged
// and dropped; a Redis outage must not affect the display.
func (p *Publisher) Publish(ctx context.Context, state string, settings config.Settings) {
	log := logger.WithComponent("status")

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err := p.client.HSet(pubCtx, p.key,
		FieldState, state,
		FieldDisplayMethod, settings.DisplayMethod,
		FieldPowerMethod, settings.PowerMethod,
		FieldChangedAt, p.clock.Now().UTC().Format(time.RFC3339),
	).Err()
	if err != nil {
		log.Warn().Err(fmt.Errorf("redis HSET %s failed: %w", p.key, err)).Str("state", state).Msg("Failed to publish status")
		return
	}
	log.Debug().Str("key", p.key).Str("state", state).Msg("Published status")
}

// Close releases the Redis connection pool.
func (p *Publisher) Close() error {
	return p.client.Close()
}

package kodi

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"

	"screensaverturnoff/internal/logger"
	"screensaverturnoff/internal/network"
)

// Notification methods the daemon reacts to.
const (
	ScreensaverActivated   = "GUI.OnScreensaverActivated"
	ScreensaverDeactivated = "GUI.OnScreensaverDeactivated"
	// Reconnected is synthesized after the websocket had to be re-dialed;
	// notifications sent while disconnected are lost.
	Reconnected = "Connection.Reconnected"
)

// Event is a host notification delivered to the driver.
type Event struct {
	Method string
	Data   json.RawMessage
}

type notification struct {
	Method string `json:"method"`
	Params struct {
		Sender string          `json:"sender"`
		Data   json.RawMessage `json:"data"`
	} `json:"params"`
}

// Events streams screensaver notifications from Kodi's JSON-RPC websocket,
// re-dialing with exponential backoff when the connection drops.
type Events struct {
	url          string
	dialer       *websocket.Dialer
	initialDelay time.Duration
	maxDelay     time.Duration
}

// NewEvents creates a notification stream for the websocket at addr (host:port).
func NewEvents(addr string, dial network.DialContextFunc, maxDelay time.Duration) *Events {
	dialer := &websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	if dial != nil {
		dialer.NetDialContext = dial
	}
	if maxDelay <= 0 {
		maxDelay = 30 * time.Second
	}
	return &Events{
		url:          fmt.Sprintf("ws://%s/jsonrpc", addr),
		dialer:       dialer,
		initialDelay: 500 * time.Millisecond,
		maxDelay:     maxDelay,
	}
}

// Run delivers events to out until ctx is cancelled. It only returns ctx.Err().
func (e *Events) Run(ctx context.Context, out chan<- Event) error {
	log := logger.WithComponent("kodi-events")

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = e.initialDelay
	b.MaxInterval = e.maxDelay
	b.MaxElapsedTime = 0
	b.Reset()

	everConnected := false
	for {
		connected, err := e.stream(ctx, out, everConnected)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if connected {
			everConnected = true
			b.Reset()
		}

		wait := b.NextBackOff()
		log.Warn().Err(err).Str("url", e.url).Dur("retry_in", wait).Msg("Kodi websocket unavailable")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// stream handles one websocket connection. connected reports whether the
// dial succeeded, so the caller can reset its backoff.
func (e *Events) stream(ctx context.Context, out chan<- Event, reconnect bool) (connected bool, err error) {
	log := logger.WithComponent("kodi-events")

	conn, _, err := e.dialer.DialContext(ctx, e.url, nil)
	if err != nil {
		return false, err
	}

	stop := make(chan struct{})
	defer close(stop)
	defer conn.Close()
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	log.Info().Str("url", e.url).Msg("Connected to Kodi notifications")
	if reconnect {
		if err := deliver(ctx, out, Event{Method: Reconnected}); err != nil {
			return true, err
		}
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return true, err
		}
		var msg notification
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Warn().Err(err).Msg("Skipping malformed notification")
			continue
		}

		switch msg.Method {
		case ScreensaverActivated, ScreensaverDeactivated:
		default:
			continue
		}

		log.Debug().Str("method", msg.Method).Str("sender", msg.Params.Sender).Msg("Received notification")
		if err := deliver(ctx, out, Event{Method: msg.Method, Data: msg.Params.Data}); err != nil {
			return true, err
		}
	}
}

func deliver(ctx context.Context, out chan<- Event, ev Event) error {
	select {
	case out <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

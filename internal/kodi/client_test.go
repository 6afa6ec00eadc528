package kodi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screensaverturnoff/internal/config"
)

// newTestClient starts a fake Kodi JSON-RPC endpoint. The handler receives
// the decoded request and returns the raw reply body.
func newTestClient(t *testing.T, handler func(t *testing.T, req map[string]any) string) (*Client, *[]map[string]any) {
	t.Helper()
	var requests []map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/jsonrpc", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		var req map[string]any
		if !assert.NoError(t, json.Unmarshal(body, &req)) {
			return
		}
		requests = append(requests, req)

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, handler(t, req))
	}))
	t.Cleanup(server.Close)

	host, portStr, _ := strings.Cut(strings.TrimPrefix(server.URL, "http://"), ":")
	port, _ := strconv.Atoi(portStr)
	cfg := config.KodiConfig{Host: host, HTTPPort: port, Timeout: 2 * time.Second}
	return NewClient(cfg, nil), &requests
}

func TestClient_Call_Envelope(t *testing.T) {
	c, requests := newTestClient(t, func(t *testing.T, req map[string]any) string {
		return `{"jsonrpc":"2.0","id":1,"result":"OK"}`
	})

	result, err := c.Call(context.Background(), "Application.SetMute", map[string]any{"mute": true})
	require.NoError(t, err)
	assert.Equal(t, "OK", result)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, "2.0", req["jsonrpc"])
	assert.EqualValues(t, 1, req["id"])
	assert.Equal(t, "Application.SetMute", req["method"])
	assert.Equal(t, map[string]any{"mute": true}, req["params"])
}

func TestClient_Call_OmitsNilParams(t *testing.T) {
	c, requests := newTestClient(t, func(t *testing.T, req map[string]any) string {
		return `{"jsonrpc":"2.0","id":1,"result":"OK"}`
	})

	_, err := c.Call(context.Background(), "System.Suspend", nil)
	require.NoError(t, err)
	_, hasParams := (*requests)[0]["params"]
	assert.False(t, hasParams)
}

func TestClient_Call_MissingResultIsEmptyMap(t *testing.T) {
	c, _ := newTestClient(t, func(t *testing.T, req map[string]any) string {
		return `{"jsonrpc":"2.0","id":1}`
	})

	result, err := c.Call(context.Background(), "System.Shutdown", nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, result)
}

func TestClient_Call_RPCError(t *testing.T) {
	c, _ := newTestClient(t, func(t *testing.T, req map[string]any) string {
		return `{"jsonrpc":"2.0","id":1,"error":{"code":-32601,"message":"Method not found."}}`
	})

	_, err := c.Call(context.Background(), "System.Nope", nil)
	var rpcErr *RPCError
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, -32601, rpcErr.Code)
}

func TestClient_Call_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	host, portStr, _ := strings.Cut(strings.TrimPrefix(server.URL, "http://"), ":")
	port, _ := strconv.Atoi(portStr)
	c := NewClient(config.KodiConfig{Host: host, HTTPPort: port}, nil)

	_, err := c.Call(context.Background(), "System.Suspend", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 401")
}

func TestClient_BasicAuth(t *testing.T) {
	var user, pass string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, _ = r.BasicAuth()
		io.WriteString(w, `{"jsonrpc":"2.0","id":1,"result":true}`)
	}))
	defer server.Close()

	host, portStr, _ := strings.Cut(strings.TrimPrefix(server.URL, "http://"), ":")
	port, _ := strconv.Atoi(portStr)
	c := NewClient(config.KodiConfig{Host: host, HTTPPort: port, Username: "kodi", Password: "secret"}, nil)

	require.NoError(t, c.SetMute(context.Background(), false))
	assert.Equal(t, "kodi", user)
	assert.Equal(t, "secret", pass)
}

func TestClient_Helpers(t *testing.T) {
	c, requests := newTestClient(t, func(t *testing.T, req map[string]any) string {
		switch req["method"] {
		case "Settings.GetSettingValue":
			return `{"jsonrpc":"2.0","id":1,"result":{"value":true}}`
		case "XBMC.GetInfoBooleans":
			return `{"jsonrpc":"2.0","id":1,"result":{"System.ScreenSaverActive":false}}`
		default:
			return `{"jsonrpc":"2.0","id":1,"result":"OK"}`
		}
	})
	ctx := context.Background()

	require.NoError(t, c.ActivateWindow(ctx, "loginscreen"))
	require.NoError(t, c.ShowNotification(ctx, "Addon screensaver.turnoff failed", "boom", "icon.png", 10*time.Second))

	debug, err := c.DebugLogging(ctx)
	require.NoError(t, err)
	assert.True(t, debug)

	active, err := c.ScreensaverActive(ctx)
	require.NoError(t, err)
	assert.False(t, active)

	require.Len(t, *requests, 4)
	assert.Equal(t, map[string]any{"window": "loginscreen"}, (*requests)[0]["params"])
	assert.Equal(t, map[string]any{
		"title":       "Addon screensaver.turnoff failed",
		"message":     "boom",
		"image":       "icon.png",
		"displaytime": float64(10000),
	}, (*requests)[1]["params"])
	assert.Equal(t, map[string]any{"setting": "debug.showloginfo"}, (*requests)[2]["params"])
}

func TestNotifier_Notify(t *testing.T) {
	c, requests := newTestClient(t, func(t *testing.T, req map[string]any) string {
		return `{"jsonrpc":"2.0","id":1,"result":"OK"}`
	})

	NewNotifier(c, "screensaver.turnoff", "").Notify(context.Background(), "rc=1")

	require.Len(t, *requests, 1)
	assert.Equal(t, "GUI.ShowNotification", (*requests)[0]["method"])
	assert.Equal(t, map[string]any{
		"title":       "Addon screensaver.turnoff failed",
		"message":     "rc=1",
		"displaytime": float64(10000),
	}, (*requests)[0]["params"])
}

func TestNotifier_SwallowsErrors(t *testing.T) {
	c := NewClient(config.KodiConfig{Host: "127.0.0.1", HTTPPort: 1, Timeout: 100 * time.Millisecond}, nil)
	assert.NotPanics(t, func() {
		NewNotifier(c, "screensaver.turnoff", "").Notify(context.Background(), "boom")
	})
}

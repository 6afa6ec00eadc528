// Package kodi talks to a running Kodi instance: JSON-RPC over HTTP for
// request/reply calls, JSON-RPC notifications over a websocket, and the UDP
// EventServer for built-in actions.
package kodi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"screensaverturnoff/internal/config"
	"screensaverturnoff/internal/logger"
	"screensaverturnoff/internal/network"
)

const (
	jsonrpcVersion  = "2.0"
	jsonrpcID       = 1
	jsonContentType = "application/json"
	maxReplyBytes   = 1 << 20
)

// Request is the JSON-RPC envelope sent to Kodi.
type Request struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      int            `json:"id"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params,omitempty"`
}

// Response is the JSON-RPC reply envelope.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is an error object returned by Kodi.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("kodi JSON-RPC error %d: %s", e.Code, e.Message)
}

// Client performs JSON-RPC calls against Kodi's HTTP endpoint.
// Calls are never retried.
type Client struct {
	client   *http.Client
	url      string
	username string
	password string
}

// NewClient creates a JSON-RPC client for the given Kodi endpoint.
// dial is optional and routes connections through a proxy.
func NewClient(cfg config.KodiConfig, dial network.DialContextFunc) *Client {
	transport := &http.Transport{}
	if dial != nil {
		transport.DialContext = dial
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		url:      fmt.Sprintf("http://%s/jsonrpc", cfg.HTTPAddress()),
		username: cfg.Username,
		password: cfg.Password,
	}
}

// Call invokes method with params and returns the decoded "result" field.
// A reply without a result yields an empty map.
func (c *Client) Call(ctx context.Context, method string, params map[string]any) (any, error) {
	log := logger.WithComponent("kodi-jsonrpc")

	payload := Request{
		JSONRPC: jsonrpcVersion,
		ID:      jsonrpcID,
		Method:  method,
		Params:  params,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	reply, err := c.doPost(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}

	log.Debug().
		RawJSON("payload", body).
		Bytes("reply", reply).
		Msg("Sent JSON-RPC payload")

	var resp Response
	if err := json.Unmarshal(reply, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode %s reply: %w", method, err)
	}
	if resp.Error != nil {
		return nil, resp.Error
	}

	if len(resp.Result) == 0 || bytes.Equal(resp.Result, []byte("null")) {
		return map[string]any{}, nil
	}
	var result any
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return nil, fmt.Errorf("failed to decode %s result: %w", method, err)
	}
	return result, nil
}

func (c *Client) doPost(ctx context.Context, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", jsonContentType)
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read reply: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("kodi returned HTTP %d", resp.StatusCode)
	}
	return data, nil
}

// SetMute sets Kodi's global mute flag.
func (c *Client) SetMute(ctx context.Context, mute bool) error {
	_, err := c.Call(ctx, "Application.SetMute", map[string]any{"mute": mute})
	return err
}

// ActivateWindow switches Kodi to the named window.
func (c *Client) ActivateWindow(ctx context.Context, window string) error {
	_, err := c.Call(ctx, "GUI.ActivateWindow", map[string]any{"window": window})
	return err
}

// ShowNotification raises a toast on the Kodi GUI.
func (c *Client) ShowNotification(ctx context.Context, title, message, image string, displayTime time.Duration) error {
	params := map[string]any{
		"title":       title,
		"message":     message,
		"displaytime": int(displayTime / time.Millisecond),
	}
	if image != "" {
		params["image"] = image
	}
	_, err := c.Call(ctx, "GUI.ShowNotification", params)
	return err
}

// GetSettingValue reads a global Kodi setting.
func (c *Client) GetSettingValue(ctx context.Context, setting string) (any, error) {
	result, err := c.Call(ctx, "Settings.GetSettingValue", map[string]any{"setting": setting})
	if err != nil {
		return nil, err
	}
	m, _ := result.(map[string]any)
	return m["value"], nil
}

// DebugLogging reports whether Kodi's debug logging is enabled.
func (c *Client) DebugLogging(ctx context.Context) (bool, error) {
	v, err := c.GetSettingValue(ctx, "debug.showloginfo")
	if err != nil {
		return false, err
	}
	enabled, _ := v.(bool)
	return enabled, nil
}

// ScreensaverActive reports whether Kodi currently shows the screensaver.
func (c *Client) ScreensaverActive(ctx context.Context) (bool, error) {
	const key = "System.ScreenSaverActive"
	result, err := c.Call(ctx, "XBMC.GetInfoBooleans", map[string]any{"booleans": []string{key}})
	if err != nil {
		return false, err
	}
	m, _ := result.(map[string]any)
	active, _ := m[key].(bool)
	return active, nil
}

// Package network builds the dialers used to reach a Kodi instance, optionally
// through a SOCKS5 proxy when Kodi runs on another box.
package network

import (
	"context"
	"fmt"
	"net"

	"golang.org/x/net/proxy"
)

// DialContextFunc matches http.Transport.DialContext and websocket.Dialer.NetDialContext.
type DialContextFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// NewSOCKS5Dialer creates a SOCKS5 proxy dialer.
func NewSOCKS5Dialer(host string, port int) (proxy.Dialer, error) {
	addr := fmt.Sprintf("%s:%d", host, port)
	dialer, err := proxy.SOCKS5("tcp", addr, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer for %s: %w", addr, err)
	}
	return dialer, nil
}

// DialContext returns a dial function going through the SOCKS5 proxy at host:port.
// If host is empty, it returns nil and callers use their default dialer.
func DialContext(host string, port int) (DialContextFunc, error) {
	if host == "" {
		return nil, nil
	}
	dialer, err := NewSOCKS5Dialer(host, port)
	if err != nil {
		return nil, err
	}
	if cd, ok := dialer.(proxy.ContextDialer); ok {
		return cd.DialContext, nil
	}
	return func(_ context.Context, network, addr string) (net.Conn, error) {
		return dialer.Dial(network, addr)
	}, nil
}

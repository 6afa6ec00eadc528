// Package config provides configuration management for screensaverturnoff.
package config

import (
	"fmt"
	"time"
)

// Config is the root agent configuration (Config.json).
type Config struct {
	Kodi       KodiConfig    `json:"Kodi"`
	SOCKSProxy SOCKSConfig   `json:"SocksProxy"`
	Redis      RedisConfig   `json:"Redis"`
	Metrics    MetricsConfig `json:"Metrics"`
	Addon      AddonConfig   `json:"Addon"`
}

// KodiConfig describes how to reach the Kodi instance.
type KodiConfig struct {
	Host            string        `json:"Host"`
	HTTPPort        int           `json:"HTTPPort"`        // JSON-RPC over HTTP
	WebSocketPort   int           `json:"WebSocketPort"`   // JSON-RPC notifications
	EventServerPort int           `json:"EventServerPort"` // UDP, used for built-ins
	Username        string        `json:"Username"`
	Password        string        `json:"Password"`
	Timeout         time.Duration `json:"Timeout"`
	ReconnectMax    time.Duration `json:"ReconnectMax"`
}

// HTTPAddress returns host:port of the JSON-RPC HTTP endpoint.
func (k KodiConfig) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", k.Host, k.HTTPPort)
}

// WebSocketAddress returns host:port of the JSON-RPC websocket endpoint.
func (k KodiConfig) WebSocketAddress() string {
	return fmt.Sprintf("%s:%d", k.Host, k.WebSocketPort)
}

// EventServerAddress returns host:port of the UDP EventServer.
func (k KodiConfig) EventServerAddress() string {
	return fmt.Sprintf("%s:%d", k.Host, k.EventServerPort)
}

// SOCKSConfig contains SOCKS5 proxy settings.
type SOCKSConfig struct {
	Host string `json:"Host"`
	Port int    `json:"Port"`
}

// RedisConfig controls the optional session status publisher.
type RedisConfig struct {
	Enabled  bool   `json:"Enabled"`
	Addr     string `json:"Addr"`
	Password string `json:"Password"`
	DB       int    `json:"DB"`
	Key      string `json:"Key"`
}

// MetricsConfig controls the optional Prometheus listener.
type MetricsConfig struct {
	Listen string `json:"Listen"` // empty disables the listener
}

// AddonConfig is the identity used in log lines and notifications.
type AddonConfig struct {
	ID   string `json:"ID"`
	Name string `json:"Name"`
	Icon string `json:"Icon"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Kodi: KodiConfig{
			Host:            "127.0.0.1",
			HTTPPort:        8080,
			WebSocketPort:   9090,
			EventServerPort: 9777,
			Timeout:         10 * time.Second,
			ReconnectMax:    30 * time.Second,
		},
		Redis: RedisConfig{
			Addr: "127.0.0.1:6379",
			Key:  "screensaver.turnoff:status",
		},
		Addon: AddonConfig{
			ID:   "screensaver.turnoff",
			Name: "Turn Off",
			Icon: "special://home/addons/screensaver.turnoff/resources/icon.png",
		},
	}
}

// Merge applies non-zero values from other to this config.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Kodi.Host != "" {
		c.Kodi.Host = other.Kodi.Host
	}
	if other.Kodi.HTTPPort != 0 {
		c.Kodi.HTTPPort = other.Kodi.HTTPPort
	}
	if other.Kodi.WebSocketPort != 0 {
		c.Kodi.WebSocketPort = other.Kodi.WebSocketPort
	}
	if other.Kodi.EventServerPort != 0 {
		c.Kodi.EventServerPort = other.Kodi.EventServerPort
	}
	if other.Kodi.Username != "" {
		c.Kodi.Username = other.Kodi.Username
	}
	if other.Kodi.Password != "" {
		c.Kodi.Password = other.Kodi.Password
	}
	if other.Kodi.Timeout != 0 {
		c.Kodi.Timeout = other.Kodi.Timeout
	}
	if other.Kodi.ReconnectMax != 0 {
		c.Kodi.ReconnectMax = other.Kodi.ReconnectMax
	}

	if other.SOCKSProxy.Host != "" {
		c.SOCKSProxy.Host = other.SOCKSProxy.Host
	}
	if other.SOCKSProxy.Port != 0 {
		c.SOCKSProxy.Port = other.SOCKSProxy.Port
	}

	c.Redis.Enabled = other.Redis.Enabled
	if other.Redis.Addr != "" {
		c.Redis.Addr = other.Redis.Addr
	}
	if other.Redis.Password != "" {
		c.Redis.Password = other.Redis.Password
	}
	if other.Redis.DB != 0 {
		c.Redis.DB = other.Redis.DB
	}
	if other.Redis.Key != "" {
		c.Redis.Key = other.Redis.Key
	}

	if other.Metrics.Listen != "" {
		c.Metrics.Listen = other.Metrics.Listen
	}

	if other.Addon.ID != "" {
		c.Addon.ID = other.Addon.ID
	}
	if other.Addon.Name != "" {
		c.Addon.Name = other.Addon.Name
	}
	if other.Addon.Icon != "" {
		c.Addon.Icon = other.Addon.Icon
	}
}

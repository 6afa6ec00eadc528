package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"screensaverturnoff/internal/logger"
)

// rawConfig is used for JSON unmarshaling with duration strings.
type rawConfig struct {
	Kodi       rawKodiConfig `json:"Kodi"`
	SOCKSProxy SOCKSConfig   `json:"SocksProxy"`
	Redis      RedisConfig   `json:"Redis"`
	Metrics    MetricsConfig `json:"Metrics"`
	Addon      AddonConfig   `json:"Addon"`
}

type rawKodiConfig struct {
	Host            string `json:"Host"`
	HTTPPort        int    `json:"HTTPPort"`
	WebSocketPort   int    `json:"WebSocketPort"`
	EventServerPort int    `json:"EventServerPort"`
	Username        string `json:"Username"`
	Password        string `json:"Password"`
	Timeout         string `json:"Timeout"`
	ReconnectMax    string `json:"ReconnectMax"`
}

// Load reads the agent configuration from the specified file path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses the agent configuration from JSON bytes.
func Parse(data []byte) (*Config, error) {
	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	parsed, err := convertRawConfig(&raw)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	cfg.Merge(parsed)
	return cfg, nil
}

func convertRawConfig(raw *rawConfig) (*Config, error) {
	cfg := &Config{
		Kodi: KodiConfig{
			Host:            raw.Kodi.Host,
			HTTPPort:        raw.Kodi.HTTPPort,
			WebSocketPort:   raw.Kodi.WebSocketPort,
			EventServerPort: raw.Kodi.EventServerPort,
			Username:        raw.Kodi.Username,
			Password:        raw.Kodi.Password,
		},
		SOCKSProxy: raw.SOCKSProxy,
		Redis:      raw.Redis,
		Metrics:    raw.Metrics,
		Addon:      raw.Addon,
	}

	var err error
	if cfg.Kodi.Timeout, err = parseDuration("Kodi.Timeout", raw.Kodi.Timeout); err != nil {
		return nil, err
	}
	if cfg.Kodi.ReconnectMax, err = parseDuration("Kodi.ReconnectMax", raw.Kodi.ReconnectMax); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseDuration(name, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", name, err)
	}
	return d, nil
}

// LoadSettings reads the add-on settings from the specified file path.
// A missing file yields the defaults, as a fresh Kodi install has no settings yet.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings file: %w", err)
	}
	return ParseSettings(data)
}

type rawLoggingConfig struct {
	Level      string `json:"Level"`
	FilePath   string `json:"FilePath"`
	MaxSizeMB  int    `json:"MaxSizeMB"`
	MaxBackups int    `json:"MaxBackups"`
	MaxAgeDays int    `json:"MaxAgeDays"`
	Compress   bool   `json:"Compress"`
	Console    bool   `json:"Console"`
	Format     string `json:"Format"`
}

// LoadLogging reads logging configuration from the specified file path.
func LoadLogging(path string) (*logger.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read logging config file: %w", err)
	}
	return ParseLogging(data)
}

// ParseLogging parses logging configuration from JSON bytes.
func ParseLogging(data []byte) (*logger.Config, error) {
	var raw rawLoggingConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse logging config JSON: %w", err)
	}

	def := logger.DefaultConfig()
	if raw.Level != "" {
		def.Level = raw.Level
	}
	if raw.FilePath != "" {
		def.FilePath = raw.FilePath
	}
	if raw.MaxSizeMB != 0 {
		def.MaxSizeMB = raw.MaxSizeMB
	}
	if raw.MaxBackups != 0 {
		def.MaxBackups = raw.MaxBackups
	}
	if raw.MaxAgeDays != 0 {
		def.MaxAgeDays = raw.MaxAgeDays
	}
	if raw.Format != "" {
		def.Format = raw.Format
	}
	def.Compress = raw.Compress
	def.Console = raw.Console

	return &def, nil
}

// LoadAll loads the agent config, the add-on settings and the logging config.
func LoadAll(configPath, settingsPath, loggingPath string) (*Config, Settings, *logger.Config, error) {
	cfg, err := Load(configPath)
	if err != nil {
		return nil, Settings{}, nil, fmt.Errorf("failed to load config: %w", err)
	}

	settings, err := LoadSettings(settingsPath)
	if err != nil {
		return nil, Settings{}, nil, fmt.Errorf("failed to load settings: %w", err)
	}

	lc, err := LoadLogging(loggingPath)
	if err != nil {
		return nil, Settings{}, nil, fmt.Errorf("failed to load logging config: %w", err)
	}

	return cfg, settings, lc, nil
}

package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Settings are the user-facing add-on settings (Settings.json).
// Method indices are positions in the methods catalogs.
type Settings struct {
	DisplayMethod int
	PowerMethod   int
	Logoff        bool
	Mute          bool
	MaxLogLevel   int
}

// DefaultSettings mirrors the add-on defaults: do nothing, keep the user
// logged in, mute audio.
func DefaultSettings() Settings {
	return Settings{Mute: true}
}

// settingValue accepts a JSON string, number or bool. Kodi stores every
// add-on setting as a string, hand-edited files tend to use native types.
type settingValue string

func (v *settingValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = settingValue(s)
		return nil
	}
	*v = settingValue(data)
	return nil
}

type rawSettings struct {
	DisplayMethod settingValue `json:"display_method"`
	PowerMethod   settingValue `json:"power_method"`
	Logoff        settingValue `json:"logoff"`
	Mute          settingValue `json:"mute"`
	MaxLogLevel   settingValue `json:"max_log_level"`
}

// ParseSettings parses settings JSON. Empty values fall back to the defaults.
func ParseSettings(data []byte) (Settings, error) {
	var raw rawSettings
	if err := json.Unmarshal(data, &raw); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings JSON: %w", err)
	}

	s := DefaultSettings()
	var err error
	if s.DisplayMethod, err = intSetting("display_method", raw.DisplayMethod, s.DisplayMethod); err != nil {
		return Settings{}, err
	}
	if s.PowerMethod, err = intSetting("power_method", raw.PowerMethod, s.PowerMethod); err != nil {
		return Settings{}, err
	}
	if s.MaxLogLevel, err = intSetting("max_log_level", raw.MaxLogLevel, s.MaxLogLevel); err != nil {
		return Settings{}, err
	}
	s.Logoff = boolSetting(raw.Logoff, s.Logoff)
	s.Mute = boolSetting(raw.Mute, s.Mute)
	return s, nil
}

func intSetting(name string, v settingValue, def int) (int, error) {
	text := strings.TrimSpace(string(v))
	if text == "" {
		return def, nil
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, text, err)
	}
	return n, nil
}

// boolSetting treats exactly "true" as true, matching how the add-on compared
// its string settings; anything else non-empty is false.
func boolSetting(v settingValue, def bool) bool {
	text := strings.TrimSpace(string(v))
	if text == "" {
		return def
	}
	return text == "true"
}

// SettingsStore holds the current settings. It is updated by the settings
// watcher and read once per screensaver session.
type SettingsStore struct {
	mu       sync.RWMutex
	settings Settings
}

// NewSettingsStore creates a store holding s.
func NewSettingsStore(s Settings) *SettingsStore {
	return &SettingsStore{settings: s}
}

// Get returns a copy of the current settings.
func (st *SettingsStore) Get() Settings {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.settings
}

// Set replaces the current settings.
func (st *SettingsStore) Set(s Settings) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.settings = s
}

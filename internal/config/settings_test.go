package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSettings_StringValues(t *testing.T) {
	s, err := ParseSettings([]byte(`{
		"display_method": "2",
		"power_method": "0",
		"logoff": "true",
		"mute": "false",
		"max_log_level": "3"
	}`))
	require.NoError(t, err)
	assert.Equal(t, Settings{DisplayMethod: 2, PowerMethod: 0, Logoff: true, Mute: false, MaxLogLevel: 3}, s)
}

func TestParseSettings_NativeValues(t *testing.T) {
	s, err := ParseSettings([]byte(`{"display_method": 4, "logoff": true, "mute": false}`))
	require.NoError(t, err)
	assert.Equal(t, 4, s.DisplayMethod)
	assert.True(t, s.Logoff)
	assert.False(t, s.Mute)
}

func TestParseSettings_EmptyFallsBackToDefaults(t *testing.T) {
	s, err := ParseSettings([]byte(`{"display_method": "", "mute": null}`))
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
	assert.True(t, s.Mute)
	assert.False(t, s.Logoff)
}

func TestParseSettings_OnlyExactTrueIsTrue(t *testing.T) {
	s, err := ParseSettings([]byte(`{"logoff": "yes", "mute": "True"}`))
	require.NoError(t, err)
	assert.False(t, s.Logoff)
	assert.False(t, s.Mute)
}

func TestParseSettings_InvalidIndex(t *testing.T) {
	_, err := ParseSettings([]byte(`{"power_method": "two"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "power_method")
}

func TestLoadSettings_MissingFileGivesDefaults(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "Settings.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
}

func TestSettingsStore(t *testing.T) {
	st := NewSettingsStore(DefaultSettings())
	st.Set(Settings{DisplayMethod: 3})
	assert.Equal(t, 3, st.Get().DisplayMethod)
}

func TestSettingsWatcher_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"display_method": "0"}`), 0644))

	var mu sync.Mutex
	var got []Settings
	w, err := NewSettingsWatcher(path, func(s Settings) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, s)
	})
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()
	assert.True(t, w.IsRunning())

	require.NoError(t, os.WriteFile(path, []byte(`{"display_method": "4"}`), 0644))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) > 0 && got[len(got)-1].DisplayMethod == 4
	}, 2*time.Second, 20*time.Millisecond)
}

func TestSettingsWatcher_IgnoresBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0644))

	called := make(chan Settings, 4)
	w, err := NewSettingsWatcher(path, func(s Settings) { called <- s })
	require.NoError(t, err)
	require.NoError(t, w.Start())

	require.NoError(t, os.WriteFile(path, []byte(`{"display_method": "x"}`), 0644))

	select {
	case s := <-called:
		t.Fatalf("callback should not run for an invalid file, got %+v", s)
	case <-time.After(200 * time.Millisecond):
	}

	require.NoError(t, w.Stop())
	assert.False(t, w.IsRunning())
}

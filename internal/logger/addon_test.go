package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestAddonEnabled(t *testing.T) {
	tests := []struct {
		name     string
		level    int
		debug    bool
		maxLevel int
		want     bool
	}{
		{"debug lets everything through", AddonLevelDebug, true, 0, true},
		{"max level zero silences", AddonLevelCritical, false, 0, false},
		{"within max level", AddonLevelInfo, false, 2, true},
		{"at max level", AddonLevelVerbose, false, 2, true},
		{"above max level", AddonLevelDebug, false, 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddonEnabled(tt.level, tt.debug, tt.maxLevel))
		})
	}
}

func TestAddonSeverity(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, AddonSeverity(AddonLevelDebug, false))
	assert.Equal(t, zerolog.DebugLevel, AddonSeverity(AddonLevelDebug, true))
	assert.Equal(t, zerolog.InfoLevel, AddonSeverity(AddonLevelInfo, true))
	assert.Equal(t, zerolog.InfoLevel, AddonSeverity(AddonLevelVerbose, true))
}

func TestAddonLogger_FiltersAndTags(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	a := NewAddonLogger("screensaver.turnoff")
	a.Log(AddonLevelInfo).Msg("filtered")
	assert.Empty(t, buf.String())

	a.SetMaxLevel(AddonLevelVerbose)
	a.Log(AddonLevelInfo).Msg("Mute audio")
	assert.Contains(t, buf.String(), `"addon":"screensaver.turnoff"`)
	assert.Contains(t, buf.String(), "Mute audio")

	buf.Reset()
	a.Log(AddonLevelDebug).Msg("too verbose")
	assert.Empty(t, buf.String())

	a.SetDebug(true)
	a.Log(AddonLevelDebug).Msg("payload")
	assert.Contains(t, buf.String(), `"level":"debug"`)

	buf.Reset()
	a.SetDebug(false)
	a.SetMaxLevel(0)
	a.Error().Msg("command failed")
	assert.Contains(t, buf.String(), `"level":"error"`)
}

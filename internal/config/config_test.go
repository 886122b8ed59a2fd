package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"LOG_LEVEL", "LOG_FORMAT", "EXTRACT_PROVIDER", "EXTRACT_MODEL", "EXTRACT_CONCURRENCY", "EXTRACT_TEMPERATURE",
	"GEMINI_API_KEY", "OPENAI_API_KEY", "OLLAMA_URL", "GEOCODE_PROVIDER", "GEOCODE_REGION", "GEOCODE_DELAY",
	"GEOCODE_TIMEOUT", "NOMINATIM_URL", "GEOCODE_USER_AGENT", "MAPBOX_TOKEN", "MATCH_THRESHOLD", "MATCH_UNMATCHED_SAMPLE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "gemini", cfg.Extract.Provider)
	assert.Equal(t, 10, cfg.Extract.Concurrency)
	assert.Equal(t, "nominatim", cfg.Geocode.Provider)
	assert.Equal(t, 1100*time.Millisecond, cfg.Geocode.Delay)
	assert.Equal(t, 0.6, cfg.Match.Threshold)
	assert.Equal(t, 20, cfg.Match.UnmatchedSample)
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("EXTRACT_PROVIDER", "openai")
	t.Setenv("EXTRACT_CONCURRENCY", "4")
	t.Setenv("GEOCODE_PROVIDER", "mapbox")
	t.Setenv("MAPBOX_TOKEN", "pk.test")
	t.Setenv("GEOCODE_DELAY", "0s")
	t.Setenv("GEOCODE_REGION", "Vancouver, BC")
	t.Setenv("MATCH_THRESHOLD", "0.75")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "openai", cfg.Extract.Provider)
	assert.Equal(t, 4, cfg.Extract.Concurrency)
	assert.Equal(t, "pk.test", cfg.Geocode.MapboxToken)
	assert.Equal(t, time.Duration(0), cfg.Geocode.Delay)
	assert.Equal(t, "Vancouver, BC", cfg.Geocode.Region)
	assert.Equal(t, 0.75, cfg.Match.Threshold)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]map[string]string{
		"bad int":          {"EXTRACT_CONCURRENCY": "many"},
		"zero concurrency": {"EXTRACT_CONCURRENCY": "0"},
		"bad duration":     {"GEOCODE_DELAY": "soon"},
		"negative delay":   {"GEOCODE_DELAY": "-1s"},
		"unknown provider": {"EXTRACT_PROVIDER": "claude"},
		"mapbox no token":  {"GEOCODE_PROVIDER": "mapbox"},
		"threshold high":   {"MATCH_THRESHOLD": "1.5"},
		"log format":       {"LOG_FORMAT": "xml"},
	}

	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestValidateAfterOverride(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Extract.Concurrency = 0
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Config.Extract.Concurrency")
}

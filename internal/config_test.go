package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := NewDefaultConfig()
	cfg.App.HTTP.Host = "127.0.0.1"
	cfg.App.HTTP.Port = 3000
	cfg.Cache.Dir = "./cache"
	return cfg
}

func TestConfig_Valid(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestConfig_DefaultsNeedRequiredValues(t *testing.T) {
	assert.Error(t, NewDefaultConfig().Validate())
}

func TestConfig_MissingHost(t *testing.T) {
	cfg := validConfig()
	cfg.App.HTTP.Host = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "host parameter is missing")
}

func TestConfig_MissingPort(t *testing.T) {
	cfg := validConfig()
	cfg.App.HTTP.Port = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port parameter is missing")
}

func TestConfig_PortOutOfRange(t *testing.T) {
	cfg := validConfig()
	cfg.App.HTTP.Port = 70000
	assert.Error(t, cfg.Validate())
}

func TestConfig_MissingCache(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.Dir = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache parameter is missing")
}

func TestConfig_NegativeThrottle(t *testing.T) {
	cfg := validConfig()
	cfg.Events.Throttle = -time.Second
	assert.Error(t, cfg.Validate())
}

func TestHTTPConfig_Address(t *testing.T) {
	assert.Equal(t, "127.0.0.1:3000", (&HTTPConfig{Host: "127.0.0.1", Port: 3000}).Address())
	assert.Equal(t, "[::1]:8080", (&HTTPConfig{Host: "::1", Port: 8080}).Address())
}

func TestJournalConfig_Enabled(t *testing.T) {
	assert.False(t, (&JournalConfig{}).Enabled())
	assert.True(t, (&JournalConfig{Path: "j.db"}).Enabled())
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"BOOKING_API_URL",
	"BOOKING_HTTP_TIMEOUT",
	"BOOKING_LOG_LEVEL",
	"BOOKING_LOG_FILE",
	"BOOKING_MOCK_ADDR",
	"BOOKING_MOCK_SECRET",
}

// clearEnv unsets every key for the test and restores it afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	root := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", root)
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000/api", cfg.APIURL)
	assert.Equal(t, 12*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, logrus.InfoLevel, cfg.LogLevel)
	assert.Equal(t, "127.0.0.1:3000", cfg.MockAddr)
	assert.NotEmpty(t, cfg.MockSecret)
	assert.True(t, strings.HasSuffix(cfg.LogFile, filepath.Join("studio-booking-cli", "client.log")), cfg.LogFile)
}

func TestLoad_EnvFileAndOverrides(t *testing.T) {
	clearEnv(t)
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(
		"BOOKING_API_URL=https://booking.example.com/api/\n"+
			"BOOKING_HTTP_TIMEOUT=3s\n"+
			"BOOKING_LOG_LEVEL=debug\n",
	), 0o644))
	t.Setenv("BOOKING_LOG_LEVEL", "warn")

	cfg, err := Load(envFile)
	require.NoError(t, err)

	assert.Equal(t, "https://booking.example.com/api", cfg.APIURL)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, logrus.WarnLevel, cfg.LogLevel, "environment wins over .env")
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"BOOKING_API_URL":      "ftp://example.com",
		"BOOKING_HTTP_TIMEOUT": "soon",
		"BOOKING_LOG_LEVEL":    "chatty",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoad_NonPositiveTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOOKING_HTTP_TIMEOUT", "0s")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))

	assert.Error(t, err)
}

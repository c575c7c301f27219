// Package config loads client settings from a .env file and the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"studio-booking-cli/service"
	"studio-booking-cli/store"
)

const (
	defaultTimeout   = 12 * time.Second
	defaultMockAddr  = "127.0.0.1:3000"
	defaultLogLevel  = "info"
	defaultLogFile   = "client.log"
	defaultMockToken = "studio-booking-dev-secret"
)

type Config struct {
	APIURL      string
	HTTPTimeout time.Duration
	LogLevel    logrus.Level
	LogFile     string
	MockAddr    string
	MockSecret  string
}

// Load reads .env files (missing files are fine) and then the environment.
// Values already set in the environment win over .env entries.
func Load(envFiles ...string) (Config, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}
	if len(envFiles) == 0 {
		_ = godotenv.Load()
	}

	cfg := Config{
		APIURL:     strings.TrimRight(envStr("BOOKING_API_URL", service.DefaultBaseURL), "/"),
		MockAddr:   envStr("BOOKING_MOCK_ADDR", defaultMockAddr),
		MockSecret: envStr("BOOKING_MOCK_SECRET", defaultMockToken),
	}

	u, err := url.Parse(cfg.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Config{}, fmt.Errorf("BOOKING_API_URL: invalid url %q", cfg.APIURL)
	}

	cfg.HTTPTimeout, err = envDur("BOOKING_HTTP_TIMEOUT", defaultTimeout)
	if err != nil {
		return Config{}, err
	}

	cfg.LogLevel, err = logrus.ParseLevel(envStr("BOOKING_LOG_LEVEL", defaultLogLevel))
	if err != nil {
		return Config{}, fmt.Errorf("BOOKING_LOG_LEVEL: %w", err)
	}

	cfg.LogFile = os.Getenv("BOOKING_LOG_FILE")
	if cfg.LogFile == "" {
		cfg.LogFile, err = store.CachePath(defaultLogFile)
		if err != nil {
			return Config{}, fmt.Errorf("BOOKING_LOG_FILE: %w", err)
		}
	}
	return cfg, nil
}

func envStr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envDur(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %s", key, v)
	}
	return d, nil
}

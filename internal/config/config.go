package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds the process settings read from the environment.
type Config struct {
	Port            string
	LogLevel        string
	GinMode         string
	RedisURL        string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

// Load reads the environment. Only malformed values are errors; every
// setting has a default and an empty REDIS_URL disables event publishing.
func Load() (*Config, error) {
	cfg := &Config{
		Port:            getenv("PORT", "8080"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		GinMode:         getenv("GIN_MODE", "release"),
		RedisURL:        os.Getenv("REDIS_URL"),
		AllowedOrigins:  splitList(getenv("CORS_ALLOWED_ORIGINS", "*")),
		ShutdownTimeout: 5 * time.Second,
	}

	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("config: invalid SHUTDOWN_TIMEOUT %q: %w", v, err)
		}
		cfg.ShutdownTimeout = d
	}

	if len(cfg.AllowedOrigins) == 0 {
		return nil, errors.New("config: CORS_ALLOWED_ORIGINS has no origins")
	}

	return cfg, nil
}

// AllowAllOrigins reports whether CORS should accept any origin.
func (c *Config) AllowAllOrigins() bool {
	for _, o := range c.AllowedOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package config

import (
	"fmt"
	"net/url"
	"os"
	"time"
)

type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

type SessionConfig struct {
	Secret string
	// CacheTTL bounds how long a resolved user is reused before the token
	// is re-validated against the backend profile endpoint.
	CacheTTL time.Duration
}

type Config struct {
	Backend    BackendConfig
	Session    SessionConfig
	ServerPort string
}

func Load() (*Config, error) {
	cfg := &Config{
		Backend: BackendConfig{
			BaseURL: getEnvOrDefault("BACKEND_BASE_URL", "http://localhost:8000"),
			Timeout: getDurationOrDefault("BACKEND_TIMEOUT", 15*time.Second),
		},
		Session: SessionConfig{
			Secret:   getEnvOrDefault("SESSION_SECRET", "default-secret-key-change-in-production"),
			CacheTTL: getDurationOrDefault("SESSION_CACHE_TTL", time.Minute),
		},
		ServerPort: getEnvOrDefault("SERVER_PORT", "8090"),
	}

	if _, err := url.ParseRequestURI(cfg.Backend.BaseURL); err != nil {
		return nil, fmt.Errorf("BACKEND_BASE_URL is not a valid URL: %w", err)
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

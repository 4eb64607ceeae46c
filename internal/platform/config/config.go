// Package config loads the process configuration from the environment.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type HTTPConfig struct {
	Addr string
}

// LookupConfig holds credentials and limits for the external catalog APIs.
type LookupConfig struct {
	OMDBKey        string
	GoogleBooksKey string
	Timeout        time.Duration
	CacheTTL       time.Duration
}

type AppConfig struct {
	ServiceName string
	LogLevel    string
	Env         string
	HTTP        HTTPConfig
	DatabaseURL string
	NATSURL     string
	JWTSecret   string
	Lookup      LookupConfig
}

// Production reports whether the process runs with APP_ENV=production.
// In production a reachable Postgres is mandatory; elsewhere the in-memory
// stores are an accepted development fallback.
func (c AppConfig) Production() bool {
	return strings.EqualFold(c.Env, "production")
}

func Load() (AppConfig, error) {
	cfg := AppConfig{
		ServiceName: getenv("SERVICE_NAME"),
		LogLevel:    getenv("LOG_LEVEL"),
		Env:         getenv("APP_ENV"),
		HTTP: HTTPConfig{
			Addr: getenv("HTTP_ADDR"),
		},
		DatabaseURL: getenv("DATABASE_URL"),
		NATSURL:     getenv("NATS_URL"),
		JWTSecret:   getenv("JWT_SECRET"),
		Lookup: LookupConfig{
			OMDBKey:        getenv("OMDB_API_KEY"),
			GoogleBooksKey: getenv("GOOGLE_BOOKS_API_KEY"),
			Timeout:        envDuration("LOOKUP_TIMEOUT", 5*time.Second),
			CacheTTL:       time.Duration(envInt("SEARCH_CACHE_TTL_SEC", 60)) * time.Second,
		},
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "review-platform"
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.JWTSecret == "" {
		return AppConfig{}, errors.New("JWT_SECRET is required")
	}
	return cfg, nil
}

func getenv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func envInt(key string, fallback int) int {
	v := getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SERVICE_NAME", "")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("LOOKUP_TIMEOUT", "")
	t.Setenv("SEARCH_CACHE_TTL_SEC", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServiceName != "review-platform" || cfg.HTTP.Addr != ":8080" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Lookup.Timeout != 5*time.Second || cfg.Lookup.CacheTTL != 60*time.Second {
		t.Fatalf("unexpected lookup defaults: %+v", cfg.Lookup)
	}
	if cfg.Production() {
		t.Fatal("expected non-production by default")
	}
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected an error without JWT_SECRET")
	}
}

func TestLoad_Production(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("APP_ENV", "Production")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Production() {
		t.Fatal("expected Production() for APP_ENV=Production")
	}
}

func TestLoad_LookupOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("LOOKUP_TIMEOUT", "2s")
	t.Setenv("SEARCH_CACHE_TTL_SEC", "120")
	t.Setenv("OMDB_API_KEY", "omdb-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Lookup.Timeout != 2*time.Second || cfg.Lookup.CacheTTL != 2*time.Minute {
		t.Fatalf("unexpected lookup config: %+v", cfg.Lookup)
	}
	if cfg.Lookup.OMDBKey != "omdb-key" {
		t.Fatalf("unexpected key: %q", cfg.Lookup.OMDBKey)
	}
}

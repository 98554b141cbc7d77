package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DRIVER", "DB_DSN", "ALLOWED_ORIGINS", "APP_ENV", "JWT_SECRET", "TOKEN_TTL_HOURS", "SEED_DEMO_DATA"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("port = %q", cfg.Port)
	}
	if cfg.DBDriver != "sqlite" {
		t.Fatalf("driver = %q", cfg.DBDriver)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Fatalf("ttl = %v", cfg.TokenTTL)
	}
	if cfg.JWTSecret == "" {
		t.Fatalf("expected development secret fallback")
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "http://localhost:5173" {
		t.Fatalf("origins = %v", cfg.AllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "MySQL")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("TOKEN_TTL_HOURS", "nope")
	t.Setenv("SEED_DEMO_DATA", "true")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	cfg := Load()
	if cfg.DBDriver != "mysql" {
		t.Fatalf("driver = %q", cfg.DBDriver)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "http://b.test" {
		t.Fatalf("origins = %v", cfg.AllowedOrigins)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Fatalf("invalid ttl should fall back, got %v", cfg.TokenTTL)
	}
	if !cfg.SeedDemoData {
		t.Fatalf("seed flag not parsed")
	}
	if cfg.JWTSecret != "" {
		t.Fatalf("production must not get a fallback secret")
	}
}

package config

import (
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	// envOrDefault treats empty the same as unset, so blanking the vars
	// yields pure defaults while t.Setenv restores them afterward.
	for _, key := range []string{
		"APP_HOST", "APP_PORT", "APP_ENV",
		"POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB",
		"VALKEY_HOST", "VALKEY_PORT", "VALKEY_PASSWORD",
		"SESSION_TTL_HOURS", "AUTH_RATE_LIMIT",
	} {
		t.Setenv(key, "")
	}
}

// TestLoad_Defaults verifies development defaults when nothing is set.
func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.Host != "0.0.0.0" || cfg.Port != "8080" {
		t.Errorf("addr defaults = %s:%s, want 0.0.0.0:8080", cfg.Host, cfg.Port)
	}
	if cfg.Env != "development" {
		t.Errorf("Env = %q, want development", cfg.Env)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("SessionTTL = %v, want 24h", cfg.SessionTTL)
	}
	if cfg.AuthRateLimit != 20 {
		t.Errorf("AuthRateLimit = %d, want 20", cfg.AuthRateLimit)
	}
	if !cfg.IsDev() {
		t.Error("IsDev() = false in development")
	}
}

// TestLoad_SessionTTL covers the override and its validation.
func TestLoad_SessionTTL(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_TTL_HOURS", "72")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.SessionTTL != 72*time.Hour {
		t.Errorf("SessionTTL = %v, want 72h", cfg.SessionTTL)
	}

	t.Setenv("SESSION_TTL_HOURS", "zero")
	if _, err := Load(); err == nil {
		t.Error("Load() accepted non-numeric SESSION_TTL_HOURS")
	}

	t.Setenv("SESSION_TTL_HOURS", "-1")
	if _, err := Load(); err == nil {
		t.Error("Load() accepted negative SESSION_TTL_HOURS")
	}
}

// TestLoad_ProductionGuards verifies production refuses the default
// database password.
func TestLoad_ProductionGuards(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() accepted default POSTGRES_PASSWORD in production")
	}
	if !strings.Contains(err.Error(), "POSTGRES_PASSWORD") {
		t.Errorf("error %q does not name POSTGRES_PASSWORD", err)
	}

	t.Setenv("POSTGRES_PASSWORD", "s3cret")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.IsDev() {
		t.Error("IsDev() = true in production")
	}
}

// TestDSN checks the connection string shape.
func TestDSN(t *testing.T) {
	cfg := &Config{
		DBHost: "db", DBPort: "5433",
		DBUser: "u", DBPassword: "p", DBName: "n",
	}
	want := "postgres://u:p@db:5433/n?sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

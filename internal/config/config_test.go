package config

import (
	"os"
	"testing"
	"time"
)

func setEnv(t *testing.T, key, val string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	os.Setenv(key, val)
	t.Cleanup(func() {
		if had {
			os.Setenv(key, old)
		} else {
			os.Unsetenv(key)
		}
	})
}

func TestLoad_Defaults(t *testing.T) {
	setEnv(t, "DATABASE_URL", "postgres://localhost:5432/bedrock")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.FlagCacheTTL != 5*time.Minute {
		t.Errorf("expected 5m flag cache TTL, got %s", cfg.FlagCacheTTL)
	}
	if cfg.FlagPolicy != "fail_open" {
		t.Errorf("expected fail_open default, got %s", cfg.FlagPolicy)
	}
	if !cfg.IsDev() {
		t.Error("expected development mode by default")
	}
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	setEnv(t, "DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Error("expected error when DATABASE_URL is missing")
	}
}

func TestLoad_RejectsUnknownFlagPolicy(t *testing.T) {
	setEnv(t, "DATABASE_URL", "postgres://localhost:5432/bedrock")
	setEnv(t, "FLAG_FAILURE_POLICY", "fail_sideways")

	if _, err := Load(); err == nil {
		t.Error("expected error for unknown failure policy")
	}
}

func TestLoad_Overrides(t *testing.T) {
	setEnv(t, "DATABASE_URL", "postgres://localhost:5432/bedrock")
	setEnv(t, "PORT", "9100")
	setEnv(t, "FLAG_FAILURE_POLICY", "fail_closed")
	setEnv(t, "ENV", "production")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9100" {
		t.Errorf("expected port 9100, got %s", cfg.Port)
	}
	if cfg.FlagPolicy != "fail_closed" {
		t.Errorf("expected fail_closed, got %s", cfg.FlagPolicy)
	}
	if !cfg.IsProduction() {
		t.Error("expected production mode")
	}
}

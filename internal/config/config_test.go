package config

import (
	"context"
	"testing"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadDefaults(t *testing.T) {
	env := map[string]string{
		"DATABASE_URL": "postgres://localhost:5432/fintrack",
		"JWT_SECRET":   "test-secret",
	}

	var cfg Config
	if err := envconfig.ProcessWith(context.Background(), &cfg, envconfig.MapLookuper(env)); err != nil {
		t.Fatalf("process failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("port = %q, want default 8080", cfg.Port)
	}
	if cfg.RateLimitPerMinute != 60 {
		t.Errorf("rate limit = %d, want default 60", cfg.RateLimitPerMinute)
	}
	if cfg.RateLimitBurst != 10 {
		t.Errorf("burst = %d, want default 10", cfg.RateLimitBurst)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	var cfg Config
	err := envconfig.ProcessWith(context.Background(), &cfg, envconfig.MapLookuper(map[string]string{}))
	if err == nil {
		t.Fatal("expected error when DATABASE_URL and JWT_SECRET are missing")
	}
}

package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Setenv("LEDGER_ADDRESS", "CLEDGER")
	t.Setenv("OWNER_ADDRESS", "GOWNER")
}

func TestLoadDevDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AllowanceTTL != 30*24*time.Hour {
		t.Fatalf("expected 30 day allowance, got %s", cfg.AllowanceTTL)
	}
	if cfg.JWTSecret == "" {
		t.Fatal("expected dev jwt secret")
	}
	if cfg.OwnerSecret == "" {
		t.Fatal("expected dev owner secret")
	}
	if cfg.Address() != ":8080" {
		t.Fatalf("unexpected address %s", cfg.Address())
	}
}

func TestLoadRequiresIdentities(t *testing.T) {
	t.Setenv("LEDGER_ADDRESS", "")
	t.Setenv("OWNER_ADDRESS", "GOWNER")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without LEDGER_ADDRESS")
	}

	t.Setenv("LEDGER_ADDRESS", "CLEDGER")
	t.Setenv("OWNER_ADDRESS", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without OWNER_ADDRESS")
	}
}

func TestLoadProductionRequiresBackends(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://localhost/gyro")
	t.Setenv("REDIS_URL", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without REDIS_URL")
	}

	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without JWT_SECRET")
	}

	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("OWNER_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without OWNER_SECRET")
	}

	t.Setenv("OWNER_SECRET", "owner passphrase")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.OwnerSecret != "owner passphrase" {
		t.Fatalf("unexpected owner secret %q", cfg.OwnerSecret)
	}
}

func TestLoadDurations(t *testing.T) {
	setRequired(t)
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "3")
	t.Setenv("IDEMPOTENCY_TTL", "90m")
	t.Setenv("ALLOWANCE_TTL", "48h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ShutdownPeriod != 3*time.Second || cfg.IdempotencyTTL != 90*time.Minute || cfg.AllowanceTTL != 48*time.Hour {
		t.Fatalf("unexpected durations %+v", cfg)
	}

	t.Setenv("ALLOWANCE_TTL", "soon")
	if _, err := Load(); err == nil {
		t.Fatal("expected invalid duration error")
	}
}

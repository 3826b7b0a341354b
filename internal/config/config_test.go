package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_DSN", "host=localhost user=test password=test dbname=test port=5432 sslmode=disable")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.APIPort != 8080 {
		t.Errorf("APIPort = %d, want 8080", cfg.APIPort)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %s, want info", cfg.LogLevel)
	}
	if cfg.PaymentGraceMonths != 2 {
		t.Errorf("PaymentGraceMonths = %d, want 2", cfg.PaymentGraceMonths)
	}
	if cfg.StaleAfterDays != 60 {
		t.Errorf("StaleAfterDays = %d, want 60", cfg.StaleAfterDays)
	}
	if cfg.FireTimeoutSeconds != 30 {
		t.Errorf("FireTimeoutSeconds = %d, want 30", cfg.FireTimeoutSeconds)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("API_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("PAYMENT_GRACE_MONTHS", "3")
	t.Setenv("STALE_AFTER_DAYS", "30")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.APIPort != 9090 {
		t.Errorf("APIPort = %d, want 9090", cfg.APIPort)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want debug", cfg.LogLevel)
	}
	if cfg.PaymentGraceMonths != 3 {
		t.Errorf("PaymentGraceMonths = %d, want 3", cfg.PaymentGraceMonths)
	}
	if cfg.StaleAfter() != 30*24*time.Hour {
		t.Errorf("StaleAfter = %v, want 720h", cfg.StaleAfter())
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_DSN", "host=localhost")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing required env vars, got nil")
	}
}

func TestLoad_RejectsNonPositiveGrace(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PAYMENT_GRACE_MONTHS", "0")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for zero grace period, got nil")
	}
}

func TestLoad_DurationAccessors(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.StaleAfter() != 60*24*time.Hour {
		t.Errorf("StaleAfter = %v, want 1440h", cfg.StaleAfter())
	}
	if cfg.FireTimeout() != 30*time.Second {
		t.Errorf("FireTimeout = %v, want 30s", cfg.FireTimeout())
	}
	if cfg.ShutdownGrace() != 10*time.Second {
		t.Errorf("ShutdownGrace = %v, want 10s", cfg.ShutdownGrace())
	}
}

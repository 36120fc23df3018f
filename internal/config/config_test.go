package config

import (
	"errors"
	"os"
	"testing"
	"time"
)

func TestLoadMissingDatabaseURL(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	if !errors.Is(err, ErrMissingDatabaseURL) {
		t.Fatalf("expected ErrMissingDatabaseURL, got %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DATABASE_URL", "postgres://localhost/ducksnap")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.TaskQueueName != "ducksnap_tasks" {
		t.Errorf("expected default queue ducksnap_tasks, got %s", cfg.TaskQueueName)
	}
	if cfg.SessionTTL != 168*time.Hour {
		t.Errorf("expected default session ttl 168h, got %s", cfg.SessionTTL)
	}
	if !cfg.IsDevelopment() {
		t.Error("expected development environment by default")
	}
}

func TestLoadMissingJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "restore-me")
	os.Unsetenv("JWT_SECRET")
	t.Setenv("DATABASE_URL", "postgres://localhost/ducksnap")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when JWT_SECRET is missing")
	}
}

func TestPayPalPlanID(t *testing.T) {
	cfg := &Config{PayPalMonthlyPlanID: "P-MONTH", PayPalYearlyPlanID: "P-YEAR"}
	if got := cfg.PayPalPlanID("premium_monthly"); got != "P-MONTH" {
		t.Errorf("monthly: got %q", got)
	}
	if got := cfg.PayPalPlanID("premium_yearly"); got != "P-YEAR" {
		t.Errorf("yearly: got %q", got)
	}
	if got := cfg.PayPalPlanID("free"); got != "" {
		t.Errorf("free: expected empty plan id, got %q", got)
	}
}

func TestPayPalPlans(t *testing.T) {
	cfg := &Config{PayPalMonthlyPlanID: "P-MONTH", PayPalYearlyPlanID: "P-YEAR"}
	plans := cfg.PayPalPlans()
	if len(plans) != 2 || plans["premium_monthly"] != "P-MONTH" || plans["premium_yearly"] != "P-YEAR" {
		t.Errorf("unexpected plans: %v", plans)
	}
}

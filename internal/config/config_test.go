package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_ID", "restaurant")
	t.Setenv("ORDERS_COLLECTION_ID", "orders")
	t.Setenv("SESSION_SECRET", "s3cret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("expected default addr :8080, got %s", cfg.Addr)
	}
	if cfg.AdminsCollection != "admins" || cfg.SessionsCollection != "sessions" {
		t.Errorf("unexpected collection defaults: %s %s", cfg.AdminsCollection, cfg.SessionsCollection)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("expected 24h ttl, got %s", cfg.SessionTTL)
	}
	if !cfg.CookieSecure {
		t.Errorf("expected secure cookies by default")
	}
	if strings.Contains(cfg.String(), "s3cret") {
		t.Errorf("String leaks the secret: %s", cfg.String())
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ADDR", ":9090")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("COOKIE_SECURE", "false")
	t.Setenv("RUN_LOCAL", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":9090" || cfg.SessionTTL != 30*time.Minute || cfg.CookieSecure || !cfg.RunLocal {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestLoad_MissingIdentifiers(t *testing.T) {
	t.Setenv("DATABASE_ID", "")
	t.Setenv("ORDERS_COLLECTION_ID", "")
	t.Setenv("SESSION_SECRET", "s3cret")

	_, err := Load()
	if !errors.Is(err, ErrMissing) {
		t.Fatalf("expected ErrMissing, got %v", err)
	}
	if !strings.Contains(err.Error(), "DATABASE_ID") || !strings.Contains(err.Error(), "ORDERS_COLLECTION_ID") {
		t.Fatalf("error should name the missing keys: %v", err)
	}
}

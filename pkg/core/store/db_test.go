package store

import (
	"strings"
	"testing"
	"time"
)

func TestPGOptionsPoolConfig(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env@localhost:5432/fallback")

	cfg, err := PGOptions{}.poolConfig()
	if err != nil {
		t.Fatalf("poolConfig failed: %v", err)
	}
	if cfg.ConnConfig.Database != "fallback" {
		t.Errorf("Expected DATABASE_URL fallback, got %q", cfg.ConnConfig.Database)
	}
	if cfg.ConnConfig.RuntimeParams["application_name"] != applicationName {
		t.Errorf("Expected application_name %s, got %q", applicationName, cfg.ConnConfig.RuntimeParams["application_name"])
	}

	cfg, err = PGOptions{
		URL:            "postgres://app@db:5432/feasibility?application_name=reporting",
		MaxConns:       7,
		ConnectTimeout: 3 * time.Second,
	}.poolConfig()
	if err != nil {
		t.Fatalf("poolConfig failed: %v", err)
	}
	if cfg.ConnConfig.Database != "feasibility" || cfg.MaxConns != 7 || cfg.ConnConfig.ConnectTimeout != 3*time.Second {
		t.Errorf("Options not applied: db=%s max=%d timeout=%v", cfg.ConnConfig.Database, cfg.MaxConns, cfg.ConnConfig.ConnectTimeout)
	}
	if cfg.ConnConfig.RuntimeParams["application_name"] != "reporting" {
		t.Error("An application_name in the URL should win")
	}
}

func TestPGOptionsRequireURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := (PGOptions{}).poolConfig(); err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Errorf("Expected missing URL error, got %v", err)
	}
	if _, err := (PGOptions{URL: "://nope"}).poolConfig(); err == nil {
		t.Error("Expected unparseable URL to fail")
	}
}

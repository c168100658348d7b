package config

import (
	"strings"
	"testing"
)

func TestLoadConfig_RequiresDatabaseAndKey(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("API_PUBLIC_KEY", "")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error when required vars are missing")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/progresshub")
	t.Setenv("API_PUBLIC_KEY", "anon")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPPort != "8080" || cfg.JWTAccessTTLMinutes != 15 || !cfg.RunMigrations {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadClientConfig_AllowsMissingRemote(t *testing.T) {
	t.Setenv("PROGRESSHUB_URL", "")
	t.Setenv("PROGRESSHUB_ANON_KEY", "")
	t.Setenv("PROGRESSHUB_SESSION_FILE", "")
	cfg, err := LoadClientConfig()
	if err != nil {
		t.Fatalf("load client config: %v", err)
	}
	if cfg.RemoteURL != "" || cfg.AnonKey != "" {
		t.Fatalf("expected empty remote settings, got %+v", cfg)
	}
	if !strings.HasSuffix(cfg.SessionFile, "session.toml") {
		t.Fatalf("expected default session file, got %q", cfg.SessionFile)
	}
}

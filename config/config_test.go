package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Mode != ModeTeams {
		t.Fatalf("unexpected default mode: %s", cfg.Mode)
	}
	if cfg.RateLimit.Attempts != 10 || cfg.RateLimit.Window != time.Minute {
		t.Fatalf("unexpected ratelimit defaults: %+v", cfg.RateLimit)
	}
	if GetConfig() != cfg {
		t.Fatalf("expected global config to be replaced")
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
server:
  addr: ":9000"
database:
  driver: sqlite
  dsn: "file::memory:"
mode: users
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config failed: %v", err)
	}
	t.Setenv("MANUALCTF_JWT_SECRET", "from-env")
	t.Setenv("MANUALCTF_REDIS_ADDR", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Fatalf("unexpected addr: %s", cfg.Server.Addr)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Fatalf("unexpected driver: %s", cfg.Database.Driver)
	}
	if cfg.Mode != ModeUsers {
		t.Fatalf("unexpected mode: %s", cfg.Mode)
	}
	if cfg.JWT.Secret != "from-env" {
		t.Fatalf("env override not applied: %s", cfg.JWT.Secret)
	}
	if cfg.Redis.Addr != "" {
		t.Fatalf("expected redis to be disabled, got %q", cfg.Redis.Addr)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("unexpected log level: %s", cfg.Log.Level)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "bad mode", mutate: func(c *Config) { c.Mode = "solo" }},
		{name: "bad driver", mutate: func(c *Config) { c.Database.Driver = "oracle" }},
		{name: "empty secret", mutate: func(c *Config) { c.JWT.Secret = "" }},
		{name: "negative ratelimit", mutate: func(c *Config) { c.RateLimit.Attempts = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	body := "MANUALCTF_MODE=users\nMANUALCTF_SERVER_ADDR=:7000\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(body), 0o600); err != nil {
		t.Fatalf("write .env failed: %v", err)
	}
	t.Chdir(dir)
	// real environment wins over .env
	t.Setenv("MANUALCTF_SERVER_ADDR", ":7001")
	t.Cleanup(func() { _ = os.Unsetenv("MANUALCTF_MODE") })

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Mode != ModeUsers {
		t.Fatalf("expected mode from .env, got %s", cfg.Mode)
	}
	if cfg.Server.Addr != ":7001" {
		t.Fatalf("expected environment to override .env, got %s", cfg.Server.Addr)
	}
}

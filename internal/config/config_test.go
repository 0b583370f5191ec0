package config

import (
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	for _, k := range []string{"ADDR", "DEBUG", "DATABASE_URL", "REDIS_URL", "JWT_SECRET", "TOKEN_TTL", "IDLE_TIMEOUT", "ORIGIN_ALLOWLIST"} {
		t.Setenv(k, "")
	}
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.Debug || cfg.DatabaseURL != "" || cfg.TokenTTL != 24*time.Hour {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if len(cfg.JWTSecret) != 64 {
		t.Fatalf("expected a random 32 byte hex secret, got %q", cfg.JWTSecret)
	}
	if len(cfg.Origins) != 2 {
		t.Fatalf("unexpected origins %v", cfg.Origins)
	}
}

func TestEnvThenFlags(t *testing.T) {
	t.Setenv("ADDR", ":9000")
	t.Setenv("DEBUG", "true")
	t.Setenv("TOKEN_TTL", "90m")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("ORIGIN_ALLOWLIST", "https://a.example, https://b.example,")

	cfg, err := Load([]string{"-addr", ":7000"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7000" {
		t.Fatalf("flag should win over env, got %s", cfg.Addr)
	}
	if !cfg.Debug || cfg.TokenTTL != 90*time.Minute {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.JWTSecret != "from-env" {
		t.Fatalf("unexpected secret %q", cfg.JWTSecret)
	}
	if len(cfg.Origins) != 2 || cfg.Origins[1] != "https://b.example" {
		t.Fatalf("unexpected origins %v", cfg.Origins)
	}
}

func TestBadFlag(t *testing.T) {
	if _, err := Load([]string{"-token-ttl", "forever"}); err == nil {
		t.Fatalf("expected a parse error")
	}
}

// Package config reads server settings from flags, falling back to
// environment variables and then to defaults.
package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"livechess/pkg/utils"
)

// Config holds the server settings.
type Config struct {
	Addr        string
	Debug       bool
	DatabaseURL string
	RedisURL    string
	JWTSecret   string
	TokenTTL    time.Duration
	Origins     []string
}

// Load parses args (without the program name).
func Load(args []string) (Config, error) {
	fs := flag.NewFlagSet("livechess", flag.ContinueOnError)

	var cfg Config
	var origins string
	fs.StringVar(&cfg.Addr, "addr", getenv("ADDR", ":8080"), "listen address")
	fs.BoolVar(&cfg.Debug, "debug", getbool("DEBUG", false), "enable debug logging")
	fs.StringVar(&cfg.DatabaseURL, "dsn", getenv("DATABASE_URL", ""), "postgres DSN; empty keeps everything in memory")
	fs.StringVar(&cfg.RedisURL, "redis", getenv("REDIS_URL", ""), "redis URL for sessions; empty keeps them in memory")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", getenv("JWT_SECRET", ""), "token signing secret; random when empty")
	fs.DurationVar(&cfg.TokenTTL, "token-ttl", getduration("TOKEN_TTL", 24*time.Hour), "session token lifetime")
	fs.StringVar(&origins, "origins", getenv("ORIGIN_ALLOWLIST", "http://localhost:8080,http://127.0.0.1:8080"), "comma separated allowed origins, * for any")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.Origins = append(cfg.Origins, o)
		}
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = utils.RandomHex(32)
	}
	return cfg, nil
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getbool(k string, d bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(k)); err == nil {
		return b
	}
	return d
}

func getduration(k string, d time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(k)); err == nil {
		return v
	}
	return d
}

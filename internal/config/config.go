package config

import (
	"os"
	"strings"
	"time"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Addr     string
	DBDriver string
	DBDSN    string

	JWTSecret string
	TokenTTL  time.Duration

	AllowedOrigins []string

	// RedisAddr enables the cross-process relay bridge when set.
	RedisAddr string
}

// Load reads configuration from environment variables, falling back to
// development defaults.
func Load() Config {
	cfg := Config{
		Addr:      getenv("ADDR", ":8080"),
		DBDriver:  getenv("DB_DRIVER", "sqlite3"),
		DBDSN:     getenv("DB_DSN", "chitchat.db"),
		JWTSecret: getenv("JWT_SECRET", "dev-secret-change-me"),
		RedisAddr: os.Getenv("REDIS_ADDR"),
	}

	ttl := getenv("TOKEN_TTL", "720h")
	d, err := time.ParseDuration(ttl)
	if err != nil {
		d = 30 * 24 * time.Hour
	}
	cfg.TokenTTL = d

	origins := getenv("ALLOWED_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")
	cfg.AllowedOrigins = strings.Split(origins, ",")
	for i := range cfg.AllowedOrigins {
		cfg.AllowedOrigins[i] = strings.TrimSpace(cfg.AllowedOrigins[i])
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

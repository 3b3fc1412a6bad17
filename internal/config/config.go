package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
)

type Config struct {
	Port        string
	DatabaseDSN string
	Env         string
	JWTSecret   string
}

func (c Config) IsProduction() bool { return c.Env == "production" }

// Load reads configuration from the environment with development defaults.
// Precedence: explicit env var > .env file (if loaded by caller) > default.
//
// JWT_SECRET has no fallback in production: tokens must fail closed rather
// than verify against a known default, so startup errors out instead.
func Load() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "3000"),
		DatabaseDSN: getEnv("DATABASE_DSN", "file:invoices.db?_foreign_keys=on"),
		Env:         getEnv("APP_ENV", "development"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
	}
	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return Config{}, fmt.Errorf("JWT_SECRET must be set when APP_ENV=production")
		}
		// Dev convenience: an ephemeral secret, so restarts invalidate
		// outstanding tokens.
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return Config{}, fmt.Errorf("generate dev secret: %w", err)
		}
		cfg.JWTSecret = hex.EncodeToString(buf)
		slog.Warn("JWT_SECRET not set, using ephemeral development secret")
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

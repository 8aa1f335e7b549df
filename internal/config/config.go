package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
)

type Config struct {
	Port        string
	DataDir     string
	DatabaseDSN string
	Env         string
}

// Load loads configuration from environment with sensible defaults.
// Precedence: explicit env var > .env file (if loaded by the caller) > default.
func Load() Config {
	cfg := Config{}
	cfg.Port = getEnv("PORT", "7420")
	cfg.DataDir = getEnv("RAILPOS_DATA_DIR", ".")
	// Empty DSN means the catalog lives in a sqlite file under DataDir.
	cfg.DatabaseDSN = os.Getenv("DATABASE_DSN")
	cfg.Env = getEnv("APP_ENV", "development")
	return cfg
}

// CatalogPath is the sqlite file used when no DATABASE_DSN is configured.
func (c Config) CatalogPath() string {
	return filepath.Join(c.DataDir, "railpos.sqlite")
}

// ShiftsDir holds the per-shift orders databases and the current-shift marker.
func (c Config) ShiftsDir() string {
	return filepath.Join(c.DataDir, "shifts")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// ParseBool reads an env var as bool with default.
func ParseBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid boolean for %s: %s", key, v)
			return def
		}
		return b
	}
	return def
}

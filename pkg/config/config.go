// Package config holds runtime settings for smishscan. Settings come from
// the environment, optionally seeded from a .env file; cmd/smishscan lets
// CLI flags override them per run.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds global settings for smishscan.
// All settings can be configured via environment variables or flags.
type Config struct {
	// === Extraction ===
	DBPath    string // Path to the chat.db file (env: SMISHSCAN_DB_PATH)
	OutputDir string // Directory for exported reports (default: "./analysis_output")
	Limit     int    // Max messages to analyze, 0 = all (env: SMISHSCAN_LIMIT)

	// === Taxonomy ===
	TaxonomyPath string // Optional YAML taxonomy override (env: SMISHSCAN_PATTERNS)

	// === Serve Mode ===
	Port          string        // HTTP listen port (env: PORT, default: "8089")
	MaxConcurrent int           // Bound on concurrent analyses (default: 8)
	CacheTTL      time.Duration // Report cache TTL (default: 5m)
	RedisAddr     string        // Redis address; empty = in-memory cache (env: REDIS_ADDR)
	ArchiveURL    string        // Postgres archive URL; empty = archive disabled (env: ARCHIVE_DATABASE_URL)

	// === Environment ===
	Env string // "production" or anything else for development (env: SMISHSCAN_ENV)
}

// NewDefaultConfig creates a Config from the environment with sensible
// defaults. A .env file in the working directory is loaded first when
// present; a missing one is fine.
func NewDefaultConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		// Extraction
		DBPath:    GetEnv("SMISHSCAN_DB_PATH", ""),
		OutputDir: GetEnv("SMISHSCAN_OUTPUT_DIR", "./analysis_output"),
		Limit:     GetEnvInt("SMISHSCAN_LIMIT", 0),

		// Taxonomy
		TaxonomyPath: GetEnv("SMISHSCAN_PATTERNS", ""),

		// Serve mode
		Port:          GetEnv("PORT", "8089"),
		MaxConcurrent: clampInt(GetEnvInt("SMISHSCAN_MAX_CONCURRENT", 8), 1, 256),
		CacheTTL:      GetEnvDuration("SMISHSCAN_CACHE_TTL", 5*time.Minute),
		RedisAddr:     GetEnv("REDIS_ADDR", ""),
		ArchiveURL:    GetEnv("ARCHIVE_DATABASE_URL", ""),

		// Environment
		Env: GetEnv("SMISHSCAN_ENV", "development"),
	}
}

// IsProduction reports whether the process runs in production mode.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Env)
	return env == "production" || env == "prod"
}

// Validate checks the settings an analysis run depends on. Call after flag
// overrides have been applied.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("chat database path is required (SMISHSCAN_DB_PATH or --db-path)")
	}
	if _, err := os.Stat(c.DBPath); err != nil {
		return fmt.Errorf("chat database %s: %w", c.DBPath, err)
	}
	if c.MaxConcurrent < 1 {
		return fmt.Errorf("max concurrent analyses must be positive, got %d", c.MaxConcurrent)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got %s", c.CacheTTL)
	}
	return nil
}

// clampInt ensures a value is within bounds
func clampInt(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Helper functions for environment variable parsing
// These are exported for use by other packages

// GetEnv returns the value of an environment variable or a default value.
func GetEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// GetEnvInt returns the integer value of an environment variable or a default value.
func GetEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return defaultValue
}

// GetEnvBool returns the boolean value of an environment variable or a default value.
func GetEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

// GetEnvDuration returns the duration value of an environment variable or a
// default value. Accepts time.ParseDuration forms ("90s", "5m").
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return defaultValue
}

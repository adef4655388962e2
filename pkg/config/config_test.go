package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewDefaultConfigFromEnv(t *testing.T) {
	t.Setenv("SMISHSCAN_DB_PATH", "/tmp/chat.db")
	t.Setenv("SMISHSCAN_OUTPUT_DIR", "/tmp/out")
	t.Setenv("SMISHSCAN_LIMIT", "250")
	t.Setenv("PORT", "9999")
	t.Setenv("SMISHSCAN_MAX_CONCURRENT", "3")
	t.Setenv("SMISHSCAN_CACHE_TTL", "90s")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg := NewDefaultConfig()

	if cfg.DBPath != "/tmp/chat.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.OutputDir != "/tmp/out" {
		t.Errorf("OutputDir = %q", cfg.OutputDir)
	}
	if cfg.Limit != 250 {
		t.Errorf("Limit = %d", cfg.Limit)
	}
	if cfg.Port != "9999" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.MaxConcurrent != 3 {
		t.Errorf("MaxConcurrent = %d", cfg.MaxConcurrent)
	}
	if cfg.CacheTTL != 90*time.Second {
		t.Errorf("CacheTTL = %v", cfg.CacheTTL)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("RedisAddr = %q", cfg.RedisAddr)
	}
}

func TestNewDefaultConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"SMISHSCAN_DB_PATH", "SMISHSCAN_OUTPUT_DIR", "SMISHSCAN_LIMIT",
		"SMISHSCAN_PATTERNS", "PORT", "SMISHSCAN_MAX_CONCURRENT",
		"SMISHSCAN_CACHE_TTL", "REDIS_ADDR", "ARCHIVE_DATABASE_URL", "SMISHSCAN_ENV",
	} {
		t.Setenv(key, "")
	}

	cfg := NewDefaultConfig()

	if cfg.OutputDir != "./analysis_output" {
		t.Errorf("OutputDir = %q, want ./analysis_output", cfg.OutputDir)
	}
	if cfg.Port != "8089" {
		t.Errorf("Port = %q, want 8089", cfg.Port)
	}
	if cfg.MaxConcurrent != 8 {
		t.Errorf("MaxConcurrent = %d, want 8", cfg.MaxConcurrent)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Errorf("CacheTTL = %v, want 5m", cfg.CacheTTL)
	}
	if cfg.RedisAddr != "" || cfg.ArchiveURL != "" {
		t.Errorf("optional backends = %q/%q, want empty", cfg.RedisAddr, cfg.ArchiveURL)
	}
	if cfg.IsProduction() {
		t.Error("IsProduction() = true for default env")
	}
}

func TestMaxConcurrentClamped(t *testing.T) {
	t.Setenv("SMISHSCAN_MAX_CONCURRENT", "100000")
	if cfg := NewDefaultConfig(); cfg.MaxConcurrent != 256 {
		t.Errorf("MaxConcurrent = %d, want clamped to 256", cfg.MaxConcurrent)
	}

	t.Setenv("SMISHSCAN_MAX_CONCURRENT", "0")
	if cfg := NewDefaultConfig(); cfg.MaxConcurrent != 1 {
		t.Errorf("MaxConcurrent = %d, want clamped to 1", cfg.MaxConcurrent)
	}
}

func TestIsProduction(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{"production", true},
		{"prod", true},
		{"PRODUCTION", true},
		{"development", false},
		{"", false},
		{"staging", false},
	}
	for _, tt := range tests {
		cfg := &Config{Env: tt.env}
		if got := cfg.IsProduction(); got != tt.want {
			t.Errorf("IsProduction(%q) = %v, want %v", tt.env, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "chat.db")
	if err := os.WriteFile(db, []byte("fixture"), 0o644); err != nil {
		t.Fatal(err)
	}

	good := &Config{DBPath: db, MaxConcurrent: 4, CacheTTL: time.Minute}
	if err := good.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}

	tests := []struct {
		name string
		cfg  *Config
	}{
		{"empty db path", &Config{MaxConcurrent: 4, CacheTTL: time.Minute}},
		{"missing db file", &Config{DBPath: filepath.Join(dir, "absent.db"), MaxConcurrent: 4, CacheTTL: time.Minute}},
		{"bad concurrency", &Config{DBPath: db, MaxConcurrent: 0, CacheTTL: time.Minute}},
		{"bad ttl", &Config{DBPath: db, MaxConcurrent: 4, CacheTTL: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("SMISHSCAN_TEST_STR", "value")
	t.Setenv("SMISHSCAN_TEST_INT", "42")
	t.Setenv("SMISHSCAN_TEST_BADINT", "not-a-number")
	t.Setenv("SMISHSCAN_TEST_BOOL", "true")
	t.Setenv("SMISHSCAN_TEST_BADBOOL", "yep")
	t.Setenv("SMISHSCAN_TEST_DUR", "2m30s")
	t.Setenv("SMISHSCAN_TEST_BADDUR", "soon")

	if got := GetEnv("SMISHSCAN_TEST_STR", "fallback"); got != "value" {
		t.Errorf("GetEnv = %q", got)
	}
	if got := GetEnv("SMISHSCAN_TEST_UNSET", "fallback"); got != "fallback" {
		t.Errorf("GetEnv unset = %q", got)
	}
	if got := GetEnvInt("SMISHSCAN_TEST_INT", 7); got != 42 {
		t.Errorf("GetEnvInt = %d", got)
	}
	if got := GetEnvInt("SMISHSCAN_TEST_BADINT", 7); got != 7 {
		t.Errorf("GetEnvInt malformed = %d, want fallback 7", got)
	}
	if got := GetEnvBool("SMISHSCAN_TEST_BOOL", false); !got {
		t.Errorf("GetEnvBool = %v", got)
	}
	if got := GetEnvBool("SMISHSCAN_TEST_BADBOOL", false); got {
		t.Errorf("GetEnvBool malformed = %v, want fallback false", got)
	}
	if got := GetEnvDuration("SMISHSCAN_TEST_DUR", time.Second); got != 2*time.Minute+30*time.Second {
		t.Errorf("GetEnvDuration = %v", got)
	}
	if got := GetEnvDuration("SMISHSCAN_TEST_BADDUR", time.Second); got != time.Second {
		t.Errorf("GetEnvDuration malformed = %v, want fallback 1s", got)
	}
}

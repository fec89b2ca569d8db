package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("default port: %q", cfg.Port)
	}
	if cfg.MaxPerHour != defaultMaxPerHour {
		t.Fatalf("default rate limit: %d", cfg.MaxPerHour)
	}
	if cfg.MaxReactionsPerHour != defaultMaxReactionsPerHour {
		t.Fatalf("default reaction rate limit: %d", cfg.MaxReactionsPerHour)
	}
	if cfg.UseDynamoDB() || cfg.UsePostgres() {
		t.Fatalf("no backend should be selected by default")
	}
}

func TestLoadConfigFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "port: \"9000\"\ndatabase_url: postgres://file\nmax_per_hour: 10\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("CTEA_MAX_PER_HOUR", "2")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Port != "9000" {
		t.Fatalf("file value lost: %q", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://env" {
		t.Fatalf("env should override file: %q", cfg.DatabaseURL)
	}
	if cfg.MaxPerHour != 2 {
		t.Fatalf("env rate limit not applied: %d", cfg.MaxPerHour)
	}
	if !cfg.UsePostgres() {
		t.Fatalf("postgres mode should be selected")
	}
}

func TestLoadConfigRejectsBadRateLimit(t *testing.T) {
	t.Setenv("CTEA_MAX_PER_HOUR", "zero")
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("non-numeric rate limit should error")
	}

	t.Setenv("CTEA_MAX_PER_HOUR", "-1")
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("negative rate limit should error")
	}

	t.Setenv("CTEA_MAX_PER_HOUR", "5")
	t.Setenv("CTEA_MAX_REACTIONS_PER_HOUR", "0")
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("zero reaction rate limit should error")
	}
}

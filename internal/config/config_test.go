package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvConfigFile, "LOG_LEVEL", "UPLOAD_ENDPOINT", "UPLOAD_TIMEOUT_SECONDS",
		"LAB_PORT", "LAB_MAX_UPLOAD_BYTES", "LAB_RATE_LIMIT_RPS", "POSTGRES_DSN", "NATS_URL", "BREAKER_ENABLED",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.UploadEndpoint != DefaultUploadEndpoint {
		t.Fatalf("expected default endpoint, got %q", cfg.UploadEndpoint)
	}
	if cfg.UploadTimeout() != 0 {
		t.Fatalf("expected transport default timeout, got %s", cfg.UploadTimeout())
	}
	if cfg.LabUploadRoute != "/api/laboratory/upload" {
		t.Fatalf("expected default route, got %q", cfg.LabUploadRoute)
	}
	if cfg.LabMaxUploadBytes != 20<<20 {
		t.Fatalf("expected 20MiB limit, got %d", cfg.LabMaxUploadBytes)
	}
	if cfg.PostgresDSN != "" || cfg.NATSURL != "" {
		t.Fatalf("expected optional backends to be disabled by default")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("UPLOAD_ENDPOINT", "http://localhost:8080/api/laboratory/upload")
	t.Setenv("UPLOAD_TIMEOUT_SECONDS", "15")
	t.Setenv("LAB_MAX_UPLOAD_BYTES", "1024")
	t.Setenv("BREAKER_ENABLED", "false")
	t.Setenv("LAB_RATE_LIMIT_RPS", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.UploadEndpoint != "http://localhost:8080/api/laboratory/upload" {
		t.Fatalf("expected endpoint override, got %q", cfg.UploadEndpoint)
	}
	if cfg.UploadTimeout() != 15*time.Second {
		t.Fatalf("expected 15s timeout, got %s", cfg.UploadTimeout())
	}
	if cfg.LabMaxUploadBytes != 1024 {
		t.Fatalf("expected 1024 byte limit, got %d", cfg.LabMaxUploadBytes)
	}
	if cfg.BreakerEnabled {
		t.Fatalf("expected breaker disabled")
	}
	if cfg.LabRateLimitRPS != 10 {
		t.Fatalf("expected fallback for invalid int, got %d", cfg.LabRateLimitRPS)
	}
}

func TestLoadFileSitsBetweenDefaultsAndEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "uploader.yaml")
	content := "upload_endpoint: http://file.example/upload\nlab_port: \"9000\"\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(EnvConfigFile, path)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.UploadEndpoint != "http://file.example/upload" {
		t.Fatalf("expected endpoint from file, got %q", cfg.UploadEndpoint)
	}
	if cfg.LabPort != "9000" {
		t.Fatalf("expected port from file, got %q", cfg.LabPort)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("expected env to win over file, got %q", cfg.LogLevel)
	}
	if cfg.NATSSubject != "laboratory.uploads" {
		t.Fatalf("expected default for keys missing from file, got %q", cfg.NATSSubject)
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvConfigFile, filepath.Join(t.TempDir(), "missing.yaml"))

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

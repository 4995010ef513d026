package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultUploadEndpoint = "https://exam-lab-ai-production.up.railway.app/api/laboratory/upload"

	EnvConfigFile = "UPLOADER_CONFIG_FILE"
)

type Config struct {
	LogLevel string `yaml:"log_level"`

	UploadEndpoint       string `yaml:"upload_endpoint"`
	UploadTimeoutSeconds int    `yaml:"upload_timeout_seconds"`

	LabPort           string `yaml:"lab_port"`
	LabUploadRoute    string `yaml:"lab_upload_route"`
	LabMaxUploadBytes int64  `yaml:"lab_max_upload_bytes"`
	LabRateLimitRPS   int    `yaml:"lab_rate_limit_rps"`
	LabRateLimitBurst int    `yaml:"lab_rate_limit_burst"`

	PostgresDSN string `yaml:"postgres_dsn"`
	StoragePath string `yaml:"storage_path"`

	NATSURL        string `yaml:"nats_url"`
	NATSSubject    string `yaml:"nats_subject"`
	BreakerEnabled bool   `yaml:"breaker_enabled"`

	WorkerMetricsPort string `yaml:"worker_metrics_port"`
}

func Defaults() Config {
	return Config{
		LogLevel: "info",

		UploadEndpoint:       DefaultUploadEndpoint,
		UploadTimeoutSeconds: 0,

		LabPort:           "8080",
		LabUploadRoute:    "/api/laboratory/upload",
		LabMaxUploadBytes: 20 << 20,
		LabRateLimitRPS:   10,
		LabRateLimitBurst: 20,

		StoragePath: "./data/uploads",

		NATSSubject:    "laboratory.uploads",
		BreakerEnabled: true,

		WorkerMetricsPort: "9090",
	}
}

// Load reads an optional .env file, then the optional YAML file named by
// UPLOADER_CONFIG_FILE, then environment overrides.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	return cfg.withEnv(), nil
}

func (c *Config) mergeFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c Config) withEnv() Config {
	c.LogLevel = mustEnv("LOG_LEVEL", c.LogLevel)

	c.UploadEndpoint = mustEnv("UPLOAD_ENDPOINT", c.UploadEndpoint)
	c.UploadTimeoutSeconds = mustEnvInt("UPLOAD_TIMEOUT_SECONDS", c.UploadTimeoutSeconds)

	c.LabPort = mustEnv("LAB_PORT", c.LabPort)
	c.LabUploadRoute = mustEnv("LAB_UPLOAD_ROUTE", c.LabUploadRoute)
	c.LabMaxUploadBytes = mustEnvInt64("LAB_MAX_UPLOAD_BYTES", c.LabMaxUploadBytes)
	c.LabRateLimitRPS = mustEnvInt("LAB_RATE_LIMIT_RPS", c.LabRateLimitRPS)
	c.LabRateLimitBurst = mustEnvInt("LAB_RATE_LIMIT_BURST", c.LabRateLimitBurst)

	c.PostgresDSN = mustEnv("POSTGRES_DSN", c.PostgresDSN)
	c.StoragePath = mustEnv("STORAGE_PATH", c.StoragePath)

	c.NATSURL = mustEnv("NATS_URL", c.NATSURL)
	c.NATSSubject = mustEnv("NATS_SUBJECT", c.NATSSubject)
	c.BreakerEnabled = mustEnvBool("BREAKER_ENABLED", c.BreakerEnabled)

	c.WorkerMetricsPort = mustEnv("WORKER_METRICS_PORT", c.WorkerMetricsPort)
	return c
}

func (c Config) UploadTimeout() time.Duration {
	if c.UploadTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.UploadTimeoutSeconds) * time.Second
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

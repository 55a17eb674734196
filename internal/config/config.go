package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// Data portal configuration.
	CloudnetURL      string
	CloudnetUsername string
	CloudnetPassword string
	CloudnetTimeout  time.Duration

	// Open-data download configuration.
	ECMWFBaseURL    string
	DownloadDir     string
	DownloadTimeout time.Duration
	DownloadRetries int

	OutputDir string

	// Workers bounds the per-site write and submit parallelism.
	Workers int

	MetricsAddr     string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Product event configuration.
	KafkaBrokers []string
	KafkaTopic   string
	KafkaEnabled bool
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDurationEnv("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	downloadTimeout, err := parseDurationEnv("DOWNLOAD_TIMEOUT", "10m")
	if err != nil {
		return nil, err
	}

	cloudnetTimeout, err := parseDurationEnv("CLOUDNET_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	downloadRetries, err := parseRetries()
	if err != nil {
		return nil, err
	}

	workers, err := parseWorkers()
	if err != nil {
		return nil, err
	}

	kafkaBrokersEnv := os.Getenv("KAFKA_BROKERS")
	kafkaEnabled := kafkaBrokersEnv != ""
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		CloudnetURL:      envOrDefault("CLOUDNET_API_URL", "http://localhost:3000"),
		CloudnetUsername: envOrDefault("CLOUDNET_USERNAME", "admin"),
		CloudnetPassword: envOrDefault("CLOUDNET_PASSWORD", "admin"),
		CloudnetTimeout:  cloudnetTimeout,

		ECMWFBaseURL:    envOrDefault("ECMWF_BASE_URL", "https://data.ecmwf.int/forecasts"),
		DownloadDir:     envOrDefault("DOWNLOAD_DIR", "data"),
		DownloadTimeout: downloadTimeout,
		DownloadRetries: downloadRetries,

		OutputDir: envOrDefault("OUTPUT_DIR", "output"),

		Workers: workers,

		MetricsAddr:     os.Getenv("METRICS_ADDR"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaBrokers: parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "model-products"),
		KafkaEnabled: kafkaEnabled,
	}

	if cfg.CloudnetURL == "" {
		return nil, errors.New("CLOUDNET_API_URL is required")
	}
	if cfg.ECMWFBaseURL == "" {
		return nil, errors.New("ECMWF_BASE_URL is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_TOPIC is not set")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDurationEnv(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parseRetries() (int, error) {
	s := os.Getenv("DOWNLOAD_RETRIES")
	if s == "" {
		return 3, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errors.New("invalid DOWNLOAD_RETRIES")
	}
	return n, nil
}

func parseWorkers() (int, error) {
	s := os.Getenv("WORKERS")
	if s == "" {
		return 4, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, errors.New("invalid WORKERS")
	}
	return n, nil
}

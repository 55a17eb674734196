package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000", cfg.CloudnetURL)
	assert.Equal(t, "admin", cfg.CloudnetUsername)
	assert.Equal(t, "admin", cfg.CloudnetPassword)
	assert.Equal(t, "https://data.ecmwf.int/forecasts", cfg.ECMWFBaseURL)
	assert.Equal(t, 30*time.Second, cfg.CloudnetTimeout)
	assert.Equal(t, "data", cfg.DownloadDir)
	assert.Equal(t, 10*time.Minute, cfg.DownloadTimeout)
	assert.Equal(t, 3, cfg.DownloadRetries)
	assert.Equal(t, "output", cfg.OutputDir)
	assert.Equal(t, 4, cfg.Workers)
	assert.Empty(t, cfg.MetricsAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "model-products", cfg.KafkaTopic)
	assert.False(t, cfg.KafkaEnabled)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("CLOUDNET_API_URL", "https://cloudnet.fmi.fi")
	t.Setenv("CLOUDNET_USERNAME", "munger")
	t.Setenv("CLOUDNET_PASSWORD", "hunter2")
	t.Setenv("ECMWF_BASE_URL", "https://mirror.example.com/forecasts")
	t.Setenv("DOWNLOAD_DIR", "/var/cache/grib")
	t.Setenv("DOWNLOAD_TIMEOUT", "2m")
	t.Setenv("DOWNLOAD_RETRIES", "5")
	t.Setenv("CLOUDNET_TIMEOUT", "1m")
	t.Setenv("OUTPUT_DIR", "/var/lib/munger")
	t.Setenv("WORKERS", "8")
	t.Setenv("METRICS_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "custom-products")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://cloudnet.fmi.fi", cfg.CloudnetURL)
	assert.Equal(t, "munger", cfg.CloudnetUsername)
	assert.Equal(t, "hunter2", cfg.CloudnetPassword)
	assert.Equal(t, "https://mirror.example.com/forecasts", cfg.ECMWFBaseURL)
	assert.Equal(t, "/var/cache/grib", cfg.DownloadDir)
	assert.Equal(t, 2*time.Minute, cfg.DownloadTimeout)
	assert.Equal(t, 5, cfg.DownloadRetries)
	assert.Equal(t, time.Minute, cfg.CloudnetTimeout)
	assert.Equal(t, "/var/lib/munger", cfg.OutputDir)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-products", cfg.KafkaTopic)
	assert.True(t, cfg.KafkaEnabled)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_NegativeShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidDownloadTimeout(t *testing.T) {
	t.Setenv("DOWNLOAD_TIMEOUT", "bad")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DOWNLOAD_TIMEOUT")
}

func TestLoad_InvalidDownloadRetries(t *testing.T) {
	t.Setenv("DOWNLOAD_RETRIES", "-1")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DOWNLOAD_RETRIES")
}

func TestLoad_InvalidWorkers(t *testing.T) {
	t.Setenv("WORKERS", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WORKERS")
}

func TestLoad_BrokersImplyKafkaEnabled(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker1:9092")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.KafkaEnabled)
}

func TestLoad_KafkaExplicitlyDisabled(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker1:9092")
	t.Setenv("KAFKA_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled)
}

func TestLoad_KafkaEnabledWithoutBrokers(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", ",")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}

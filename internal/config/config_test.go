package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "sales.db", cfg.DBPath)
	assert.Equal(t, 5*time.Minute, cfg.ReportCacheTTL)
	assert.Equal(t, time.Second, cfg.WriteRateWindow)
	assert.False(t, cfg.RedisEnabled())
	assert.False(t, cfg.KafkaEnabled())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DB_PATH", "/tmp/ventes.db")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("WRITE_RATE_LIMIT", "5")
	t.Setenv("WRITE_RATE_WINDOW", "10s")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/ventes.db", cfg.DBPath)
	assert.True(t, cfg.RedisEnabled())
	assert.Equal(t, 5, cfg.WriteRateLimit)
	assert.Equal(t, 10*time.Second, cfg.WriteRateWindow)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(file, []byte("HTTP_ADDR=:9090\nLOG_LEVEL=debug\n"), 0o600))
	t.Setenv("LOG_LEVEL", "warn")
	// godotenv 写入的变量在测试结束时清理
	t.Setenv("HTTP_ADDR", "")
	require.NoError(t, os.Unsetenv("HTTP_ADDR"))

	cfg, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadRejectsInvalid(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.env")
	cases := map[string]string{
		"WRITE_RATE_LIMIT":  "0",
		"WRITE_RATE_WINDOW": "10ms",
		"REPORT_CACHE_TTL":  "-1s",
		"REDIS_DB":          "abc",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load(missing)
			assert.Error(t, err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(AppConfig{LogLevel: "debug", LogFormat: "json"}, &buf)
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log.WithField("sale_id", 1).Info("sale recorded")
	assert.Contains(t, buf.String(), `"sale_id":1`)

	_, err = NewLogger(AppConfig{LogLevel: "loud"}, &buf)
	assert.Error(t, err)
	_, err = NewLogger(AppConfig{LogLevel: "info", LogFormat: "xml"}, &buf)
	assert.Error(t, err)
}

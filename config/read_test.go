package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestReadConfig(t *testing.T) {
	path := writeTempConfig(t, `{
		"port": 9090,
		"log_level": "debug",
		"nats_url": "nats://localhost:4222",
		"redis_url": "redis://localhost:6379",
		"sync_interval_seconds": 10,
		"history_limit": 50,
		"send_rate_burst": 3
	}`)

	cfg, err := ReadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "nats://localhost:4222", cfg.NATSURL)
	assert.Equal(t, 10, cfg.SyncInterval)
	assert.Equal(t, 50, cfg.HistoryLimit)
	assert.Equal(t, 3, cfg.SendRateBurst)
}

func TestReadConfigAppliesDefaults(t *testing.T) {
	path := writeTempConfig(t, `{"port": 8080}`)

	cfg, err := ReadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultSyncInterval, cfg.SyncInterval)
	assert.Equal(t, DefaultHistoryLimit, cfg.HistoryLimit)
	assert.Equal(t, DefaultSendRateBurst, cfg.SendRateBurst)
}

func TestReadConfigMissingFile(t *testing.T) {
	_, err := ReadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

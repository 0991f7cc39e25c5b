package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, ":8080", cfg.EndpointAddr)
	assert.Equal(t, "127.0.0.1:6379", cfg.RedisAddr)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoadConfig_JsonAndFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := filepath.Join(t.TempDir(), "server.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"endpoint_addr": ":9000",
		"redis_addr": "redis.local:6379",
		"shutdown_timeout": "3s"
	}`), 0o600))

	os.Args = []string{"testbin", "-c", path, "-a", ":7000"}

	cfg := LoadConfig()
	assert.Equal(t, ":7000", cfg.EndpointAddr, "flag wins over JSON")
	assert.Equal(t, "redis.local:6379", cfg.RedisAddr)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	// Untouched fields keep their defaults.
	assert.Contains(t, cfg.DatabaseDSN, "postgres://")
}

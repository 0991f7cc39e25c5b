package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8080", cfg.ServerBaseURL)
	assert.Equal(t, "lobby", cfg.Room)
	assert.Equal(t, "chat", cfg.S3Bucket)
}

func TestLoadConfig_FlagsOverrideDefaults(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"testbin", "-a", "http://feed.local:9090", "-r", "random"}

	cfg := LoadConfig()
	assert.Equal(t, "http://feed.local:9090", cfg.ServerBaseURL)
	assert.Equal(t, "random", cfg.Room)
	// Untouched fields keep their defaults.
	assert.Equal(t, "us-east-1", cfg.S3Region)
}

func TestLoadConfig_JsonOverlayAndFlagPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := filepath.Join(t.TempDir(), "client.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server_base_url": "http://json.local:8000",
		"room": "json-room",
		"s3_bucket": "json-bucket"
	}`), 0o600))

	// Flags win over the JSON file, JSON wins over defaults.
	os.Args = []string{"testbin", "-c", path, "-r", "flag-room"}

	cfg := LoadConfig()
	assert.Equal(t, "http://json.local:8000", cfg.ServerBaseURL)
	assert.Equal(t, "flag-room", cfg.Room)
	assert.Equal(t, "json-bucket", cfg.S3Bucket)
}

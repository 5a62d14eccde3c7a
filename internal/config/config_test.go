package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LEOLANI_DATA_DIR", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultStoreURL, cfg.StoreURL)
	assert.Equal(t, DefaultStoreTimeoutSeconds, cfg.StoreTimeoutSeconds)
	assert.Equal(t, DefaultRobotName, cfg.RobotName)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.NoError(t, cfg.Validate())
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LEOLANI_DATA_DIR", dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`
[store]
url = "http://graphdb.local:7200/repositories/robot"
timeout_seconds = 30

[robot]
name = "pepper"

[logging]
level = "debug"
`), 0644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://graphdb.local:7200/repositories/robot", cfg.StoreURL)
	assert.Equal(t, 30, cfg.StoreTimeoutSeconds)
	assert.Equal(t, "pepper", cfg.RobotName)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LEOLANI_DATA_DIR", dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`
[store]
url = "http://from-file:7200/repositories/a"
`), 0644))
	t.Setenv("LEOLANI_STORE_URL", "http://from-env:7200/repositories/b/")
	t.Setenv("LEOLANI_ROBOT_NAME", "nao")

	cfg, err := Load()
	require.NoError(t, err)
	// trailing slash is trimmed so URL joining stays predictable
	assert.Equal(t, "http://from-env:7200/repositories/b", cfg.StoreURL)
	assert.Equal(t, "nao", cfg.RobotName)
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Setenv("LEOLANI_DATA_DIR", t.TempDir())
	cfg, err := Load()
	require.NoError(t, err)

	bad := *cfg
	bad.StoreURL = "  "
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.StoreTimeoutSeconds = 0
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.LogLevel = "loud"
	assert.Error(t, bad.Validate())
}

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blooprocket-create/ChaosInFull-sub002/internal/infrastructure/config"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestLoadConfig_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))

	// A named but missing file is an error; the default search path is not
	require.Error(t, err)

	cfg, err = config.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 25, cfg.Database.Pool.MaxOpen)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 30*time.Second, cfg.Daemon.ShutdownTimeout)
	assert.Equal(t, 10*time.Second, cfg.Daemon.ReconcileTimeout)
}

func TestLoadConfig_ReadsFile(t *testing.T) {
	path := writeConfigFile(t, `
database:
  type: sqlite
  path: /tmp/chaos-test.db
logging:
  level: debug
  format: console
daemon:
  reconcile_on_boot: true
`)

	cfg, err := config.LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "/tmp/chaos-test.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.True(t, cfg.Daemon.ReconcileOnBoot)
}

func TestLoadConfig_RejectsInvalidValues(t *testing.T) {
	path := writeConfigFile(t, `
database:
  type: mongodb
`)

	_, err := config.LoadConfig(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLoadConfig_DatabaseURLOverride(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgresql://chaos:secret@db:5432/chaos")

	cfg, err := config.LoadConfig("")

	require.NoError(t, err)
	assert.Equal(t, "postgresql://chaos:secret@db:5432/chaos", cfg.Database.URL)
}

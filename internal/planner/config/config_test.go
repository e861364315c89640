package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "data/planner/catalog.db", cfg.DBPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.HTTP.Listen)
	assert.False(t, cfg.AllowReload)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planner.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db_path: /var/lib/planner/catalog.db
snapshot_path: /etc/planner/snapshot.json
http:
  listen: ":8080"
allow_reload: true
log_level: debug
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/planner/catalog.db", cfg.DBPath)
	assert.Equal(t, "/etc/planner/snapshot.json", cfg.SnapshotPath)
	assert.Equal(t, ":8080", cfg.HTTP.Listen)
	assert.True(t, cfg.AllowReload)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planner.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: warn\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "data/planner/catalog.db", cfg.DBPath)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db_path: [unclosed\n"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

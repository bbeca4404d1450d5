package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateEnv points all config lookups at fresh temp directories.
func isolateEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	return home
}

func TestLoad_Defaults(t *testing.T) {
	isolateEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.Surface)
	assert.False(t, cfg.EmptyDirs)
	assert.False(t, cfg.FollowSymlinks)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Equal(t, DefaultProtect, cfg.Protect)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, DefaultRetentionDays, cfg.History.RetentionDays)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "10MB", cfg.Logging.Rotation.MaxSize)
}

func TestLoad_ReadsConfigFile(t *testing.T) {
	home := isolateEnv(t)

	dir := filepath.Join(home, ".config", "torclean")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	content := `
surface: true
output: json
history:
  retention_days: 7
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Surface)
	assert.Equal(t, "json", cfg.Output)
	assert.Equal(t, 7, cfg.History.RetentionDays)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Unset keys keep their defaults.
	assert.False(t, cfg.EmptyDirs)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	isolateEnv(t)
	t.Setenv("TORCLEAN_OUTPUT", "yaml")
	t.Setenv("TORCLEAN_SURFACE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "yaml", cfg.Output)
	assert.True(t, cfg.Surface)
}

func TestLoad_ExpandsTildePaths(t *testing.T) {
	home := isolateEnv(t)

	dir := filepath.Join(home, ".config", "torclean")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	content := `
history:
  path: ~/journal
store:
  path: ~/snapshots.db
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "journal"), cfg.History.Path)
	assert.Equal(t, filepath.Join(home, "snapshots.db"), cfg.Store.Path)
}

func TestConfigDir(t *testing.T) {
	home := isolateEnv(t)

	dir, err := ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "torclean"), dir)
}

func TestHistoryDir(t *testing.T) {
	home := isolateEnv(t)

	dir, err := HistoryDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "torclean", ".history"), dir)
}

func TestWriteDefault(t *testing.T) {
	home := isolateEnv(t)

	require.NoError(t, WriteDefault())

	path := filepath.Join(home, ".config", "torclean", "config.yaml")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "surface: false")
	assert.Contains(t, string(data), "output: "+DefaultOutput)

	// A second call must not clobber an edited file.
	require.NoError(t, os.WriteFile(path, []byte("output: json\n"), 0o644))
	require.NoError(t, WriteDefault())
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "output: json\n", string(data))
}

func TestExpandPath(t *testing.T) {
	home := isolateEnv(t)

	got, err := ExpandPath("~/sub/file")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "sub", "file"), got)

	got, err = ExpandPath("/abs/path")
	require.NoError(t, err)
	assert.Equal(t, "/abs/path", got)
}

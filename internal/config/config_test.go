// ABOUTME: Tests for config loading, defaults and environment overrides
// ABOUTME: Uses a temporary XDG config home per test

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FirstRunWritesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv(EnvVaultDir, "")
	t.Setenv(EnvLogLevel, "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultFeedsFolder, cfg.GetFeedsFolder())
	assert.Equal(t, DefaultItemLimit, cfg.GetDefaultItemLimit())
	assert.Equal(t, "sqlite", cfg.GetCache())
	assert.Equal(t, "Feeds/tagmap.md", cfg.GetTagMapNote())
	assert.FileExists(t, filepath.Join(dir, "feednotes", "config.json"))
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv(EnvVaultDir, "/tmp/vault-from-env")
	t.Setenv(EnvLogLevel, "")

	path := filepath.Join(dir, "feednotes", "config.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(`{
  "vault_dir": "/tmp/vault-from-file",
  "feeds_folder": "/Subscriptions/",
  "tag_prefix": "#news/",
  "default_item_limit": 25,
  "cache": "none",
  "log_level": "debug"
}`), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/vault-from-env", cfg.GetVaultDir())
	assert.Equal(t, "Subscriptions", cfg.GetFeedsFolder())
	assert.Equal(t, "news", cfg.GetTagPrefix())
	assert.Equal(t, 25, cfg.GetDefaultItemLimit())
	assert.Equal(t, "none", cfg.GetCache())
	assert.Equal(t, "debug", cfg.GetLogLevel())
	assert.Equal(t, "Subscriptions/tagmap.md", cfg.GetTagMapNote())
}

func TestLoad_InvalidCache(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path := filepath.Join(dir, "feednotes", "config.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(`{"cache": "redis"}`), 0644))

	_, err := Load()
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := &Config{VaultDir: "~/notes", TagPrefix: "feeds"}
	require.NoError(t, cfg.Save())

	loaded, err := loadFile(GetConfigPath())
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, filepath.Join(home, "vault"), ExpandPath("~/vault"))
	assert.Equal(t, "/abs/path", ExpandPath("/abs/path"))
}

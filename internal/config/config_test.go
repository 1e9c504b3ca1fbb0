package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	assert.Equal(t, 0.3, cfg.Weights.Positional)
	assert.Equal(t, 1.0, cfg.Weights.Grep)
	assert.Equal(t, 0.5, cfg.Weights.Topology)
	assert.Equal(t, 2000, cfg.Compression.DefaultBudget)
	assert.Equal(t, int64(1<<20), cfg.IO.MaxFileSize)
}

func TestLoadPath_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg := LoadPath(filepath.Join(t.TempDir(), "no-such-config.toml"))
	assert.Equal(t, Defaults().Weights, cfg.Weights)
}

func TestLoadPath_ReadsTOMLOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	toml := `
[weights]
positional = 0.7

[compression]
default_budget = 5000
`
	require.NoError(t, os.WriteFile(path, []byte(toml), 0o644))

	cfg := LoadPath(path)
	assert.Equal(t, 0.7, cfg.Weights.Positional)
	assert.Equal(t, 5000, cfg.Compression.DefaultBudget)
	// unspecified fields keep their defaults
	assert.Equal(t, 1.0, cfg.Weights.Grep)
}

func TestLoadPath_MalformedTOMLFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("not valid { toml"), 0o644))

	cfg := LoadPath(path)
	assert.Equal(t, Defaults(), cfg)
}

func TestApplyEnv_OverridesFloatIntAndBool(t *testing.T) {
	t.Setenv("NUB_W_POSITIONAL", "0.9")
	t.Setenv("NUB_DEFAULT_BUDGET", "12345")
	t.Setenv("NUB_DEDUPLICATE", "true")

	cfg := LoadPath(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Equal(t, 0.9, cfg.Weights.Positional)
	assert.Equal(t, 12345, cfg.Compression.DefaultBudget)
	assert.True(t, cfg.Compression.DeduplicateNgrams)
}

func TestApplyEnv_InvalidValueLeavesFieldUnchanged(t *testing.T) {
	t.Setenv("NUB_W_POSITIONAL", "not-a-number")

	cfg := LoadPath(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Equal(t, Defaults().Weights.Positional, cfg.Weights.Positional)
}

func TestPath_UsesXDGConfigHomeWhenSet(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
	assert.Equal(t, "/tmp/xdg-test/nub/config.toml", Path())
}

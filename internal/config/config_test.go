package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	assert.Nil(t, cfg.Data.Dir)
	assert.Nil(t, cfg.Dashboard.ProductCode)
}

func TestLoadConfigEmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfigSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[data]
dir = "/srv/neiss"

[dashboard]
product-code = 1807
most-frequent = true
age-min = 10
age-max = 60
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Data.Dir)
	assert.Equal(t, "/srv/neiss", *cfg.Data.Dir)
	assert.Nil(t, cfg.Data.DB)
	require.NotNil(t, cfg.Dashboard.ProductCode)
	assert.Equal(t, 1807, *cfg.Dashboard.ProductCode)
	assert.True(t, *cfg.Dashboard.MostFrequent)
	assert.Equal(t, 10, *cfg.Dashboard.AgeMin)
	assert.Equal(t, 60, *cfg.Dashboard.AgeMax)
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[dashboard]\nage-mn = 3\n"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dashboard.age-mn")
}

func TestLoadConfigInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[data\n"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode config")
}

func TestXDGPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/cfg")
	t.Setenv("XDG_DATA_HOME", "/tmp/data")

	assert.Equal(t, filepath.Join("/tmp/cfg", "injurydash", "config.toml"), DefaultConfigPath())
	assert.Equal(t, filepath.Join("/tmp/data", "injurydash", "injurydash.db"), DefaultDBPath())
}

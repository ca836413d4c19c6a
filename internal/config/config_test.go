package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8090", cfg.Server.Address())
	assert.Equal(t, "./data/telesearch.db", cfg.Database.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 10, cfg.Search.PageSize)
	assert.Equal(t, "https://api.themoviedb.org/3", cfg.TMDB.BaseURL)
	assert.Empty(t, cfg.TMDB.APIKey)
	assert.Equal(t, 90, cfg.History.RetentionDays)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TELESEARCH_SERVER_PORT", "9999")
	t.Setenv("TELESEARCH_SEARCH_BASE_URL", "http://search.internal:8095")
	t.Setenv("TELESEARCH_TMDB_API_KEY", "secret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "http://search.internal:8095", cfg.Search.BaseURL)
	assert.Equal(t, "secret", cfg.TMDB.APIKey)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 7070
search:
  page_size: 25
download:
  base_url: http://files.internal
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 25, cfg.Search.PageSize)
	assert.Equal(t, "http://files.internal", cfg.Download.BaseURL)
	// Untouched keys keep their defaults.
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_MissingConfigFileFails(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	require.Error(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, int32(10), cfg.Store.MaxConns)
	assert.Equal(t, int32(2), cfg.Store.MinConns)
	assert.Equal(t, "./data", cfg.Ingest.DataDir)
	assert.Equal(t, 1, cfg.Ingest.Workers)
	assert.Equal(t, "https://cricsheet.org/downloads/ipl.zip", cfg.Cricsheet.ArchiveURL)
	assert.Empty(t, cfg.Store.DatabaseURL)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
store:
  database_url: postgres://localhost/cricket
  max_conns: 4
ingest:
  data_dir: /srv/cricsheet
  workers: 8
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))
	t.Chdir(dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/cricket", cfg.Store.DatabaseURL)
	assert.Equal(t, int32(4), cfg.Store.MaxConns)
	assert.Equal(t, int32(2), cfg.Store.MinConns) // default survives partial file
	assert.Equal(t, "/srv/cricsheet", cfg.Ingest.DataDir)
	assert.Equal(t, 8, cfg.Ingest.Workers)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CRICKET_STORE_DATABASE_URL", "postgres://env/cricket")
	t.Setenv("CRICKET_INGEST_WORKERS", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://env/cricket", cfg.Store.DatabaseURL)
	assert.Equal(t, 3, cfg.Ingest.Workers)
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("store: [not a map"), 0o644))
	t.Chdir(dir)

	_, err := Load()
	require.Error(t, err)
}

func TestInitLogger_BadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "chatty", Format: "json"})
	require.Error(t, err)
}

func TestInitLogger_Console(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
}

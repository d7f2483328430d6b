package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, int64(64*1024), cfg.Server.MaxMessageSize)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, int32(10), cfg.Database.MaxConns)
	assert.Equal(t, "data/moves.json", cfg.Data.MovesPath)
	assert.Equal(t, "data/species.json", cfg.Data.SpeciesPath)
	assert.Equal(t, "data/type_chart.json", cfg.Data.TypeChartPath)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  address: ":9090"
  ping_interval: 30s
logging:
  level: debug
  format: console
database:
  url: postgres://game:game@db:5432/pokewilds
  max_conns: 25
data:
  moves_path: /srv/data/moves.json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, 30*time.Second, cfg.Server.PingInterval)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "postgres://game:game@db:5432/pokewilds", cfg.Database.URL)
	assert.Equal(t, int32(25), cfg.Database.MaxConns)
	assert.Equal(t, "/srv/data/moves.json", cfg.Data.MovesPath)

	// Unset keys keep their defaults.
	assert.Equal(t, 60*time.Second, cfg.Server.PongTimeout)
	assert.Equal(t, int32(2), cfg.Database.MinConns)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not: valid"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

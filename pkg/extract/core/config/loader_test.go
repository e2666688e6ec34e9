package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.Extract.Engine.DefaultLimit)
	assert.Equal(t, 100, cfg.Extract.Engine.DefaultBatchSize)
	assert.True(t, cfg.Extract.Engine.HeartbeatDetails)
	assert.Equal(t, "INFO", cfg.Extract.Logging.Level)
	assert.Equal(t, "metadata", cfg.Extract.Infrastructure.RepositoryDBRef)
}

func TestLoadConfigMergesEmbeddedYAML(t *testing.T) {
	raw := []byte(`
extract:
  engine:
    default_limit: 500
    default_batch_size: 50
  logging:
    level: DEBUG
  metrics:
    enabled: true
    listen_addr: ":9191"
  infrastructure:
    repository_db_ref: primary
  database:
    primary:
      type: sqlite
      database: ":memory:"
  sources:
    warehouse:
      type: database
      database_ref: primary
`)
	cfg, err := LoadConfig("", raw)
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Extract.Engine.DefaultLimit)
	assert.Equal(t, 50, cfg.Extract.Engine.DefaultBatchSize)
	assert.Equal(t, "DEBUG", cfg.Extract.Logging.Level)
	assert.Equal(t, ":9191", cfg.Extract.Metrics.ListenAddr)
	assert.Equal(t, "primary", cfg.Extract.Infrastructure.RepositoryDBRef)
	assert.Contains(t, cfg.Extract.DatabaseConfigs, "primary")
	assert.Contains(t, cfg.Extract.SourceConfigs, "warehouse")
}

func TestLoadConfigKeepsDefaultsForAbsentKeys(t *testing.T) {
	// A config that never mentions metrics must not flip the enabled default.
	raw := []byte(`
extract:
  engine:
    default_limit: 500
  logging:
    level: DEBUG
`)
	cfg, err := LoadConfig("", raw)
	require.NoError(t, err)

	assert.True(t, cfg.Extract.Metrics.Enabled)
	assert.Equal(t, 500, cfg.Extract.Engine.DefaultLimit)
	assert.Equal(t, 100, cfg.Extract.Engine.DefaultBatchSize)
	assert.True(t, cfg.Extract.Engine.HeartbeatDetails)
	assert.Equal(t, "metadata", cfg.Extract.Infrastructure.RepositoryDBRef)
}

func TestLoadConfigExpandsEnv(t *testing.T) {
	t.Setenv("EXTRACT_TEST_LIMIT", "250")

	raw := []byte(`
extract:
  engine:
    default_limit: ${EXTRACT_TEST_LIMIT}
    default_batch_size: ${EXTRACT_TEST_BATCH:-25}
  metrics:
    enabled: false
  logging:
    level: ${EXTRACT_TEST_UNSET_LEVEL:-WARN}
`)
	cfg, err := LoadConfig("", raw)
	require.NoError(t, err)

	assert.Equal(t, 250, cfg.Extract.Engine.DefaultLimit)
	// Unset variables fall back to their declared defaults.
	assert.Equal(t, 25, cfg.Extract.Engine.DefaultBatchSize)
	assert.Equal(t, "WARN", cfg.Extract.Logging.Level)
	assert.False(t, cfg.Extract.Metrics.Enabled)
}

func TestLoadConfigValidation(t *testing.T) {
	_, err := LoadConfig("", []byte(`
extract:
  engine:
    default_limit: 10
    default_batch_size: 50
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not exceed")
}

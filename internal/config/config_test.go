package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, int64(5), cfg.Rewards.HubThreshold)
	assert.Equal(t, int64(50), cfg.Rewards.HubBonus.XP)
	assert.Equal(t, int64(10), cfg.Rewards.HubBonus.SPThinking)
	assert.Equal(t, 7, cfg.Rewards.QualityThreshold)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.False(t, cfg.AI.Enabled())
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
rewards:
  hub_threshold: 3
  scholar_bonus:
    xp: 30
`), 0o644))

	t.Setenv("CODEX_AUTH_JWT_SECRET", "s3cret")
	t.Setenv("CODEX_DATABASE_URL", "postgres://u:p@db:5432/codex")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, int64(3), cfg.Rewards.HubThreshold)
	assert.Equal(t, int64(30), cfg.Rewards.ScholarBonus.XP)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, "postgres://u:p@db:5432/codex", cfg.Database.DSN())
}

func TestLoadRejectsInvalidRewards(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rewards:\n  hub_threshold: 0\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestKeywordDSN(t *testing.T) {
	cfg := Default()
	assert.Contains(t, cfg.Database.DSN(), "host=localhost port=5432")
}

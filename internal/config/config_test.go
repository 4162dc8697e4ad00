package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playmatatu/brickduel/internal/game"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("BROADCAST_HZ", "")
	t.Setenv("MATCH_SEED", "")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 30, cfg.BroadcastHz)
	assert.Equal(t, uint64(0), cfg.MatchSeed)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("BROADCAST_HZ", "60")
	t.Setenv("MATCH_SEED", "1234")
	t.Setenv("MIGRATE_ON_START", "false")
	t.Setenv("SESSION_IDLE_SECONDS", "not-a-number")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 60, cfg.BroadcastHz)
	assert.Equal(t, uint64(1234), cfg.MatchSeed)
	assert.False(t, cfg.MigrateOnStart)
	assert.Equal(t, 120, cfg.SessionIdleSeconds, "invalid values fall back to the default")
}

func TestLoadTuningOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("arena_width: 600\nmax_speed: 700\nbrick_rows: 4\n"), 0o644))

	tuning, err := LoadTuning(path)
	require.NoError(t, err)

	def := game.DefaultTuning()
	assert.Equal(t, 600.0, tuning.ArenaWidth)
	assert.Equal(t, 700.0, tuning.MaxSpeed)
	assert.Equal(t, 4, tuning.BrickRows)
	assert.Equal(t, def.ArenaHeight, tuning.ArenaHeight)
	assert.Equal(t, def.CornerSegments, tuning.CornerSegments)
}

func TestLoadTuningErrors(t *testing.T) {
	_, err := LoadTuning(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("arena_width: [1, 2\n"), 0o644))
	_, err = LoadTuning(path)
	assert.Error(t, err)

	tuning, err := LoadTuning("")
	require.NoError(t, err)
	assert.Equal(t, game.DefaultTuning(), tuning)
}

func TestSettingsFromConfig(t *testing.T) {
	cfg := &Config{}
	s, err := cfg.Settings()
	require.NoError(t, err)
	assert.Equal(t, game.DefaultTuning().ArenaWidth, s.ArenaWidth)
	assert.Positive(t, s.HumanPaddleY)
}

package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shirtful/wareneingang/server/internal/config"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := config.FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, 500*time.Millisecond, cfg.InputTimeout())
	assert.Equal(t, time.Second, cfg.MinScanInterval())
	assert.Equal(t, 5*time.Minute, cfg.DuplicateWindow())
	assert.Equal(t, 8, cfg.TagLengthMin)
	assert.Equal(t, 12, cfg.TagLengthMax)
	assert.Equal(t, 64, cfg.MaxBufferLength)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("WARENEINGANG_ENV", "PROD")
	t.Setenv("WARENEINGANG_DUPLICATE_WINDOW_MINUTES", "10")
	t.Setenv("WARENEINGANG_TAG_LENGTH_MIN", "10")
	t.Setenv("WARENEINGANG_TAG_LENGTH_MAX", "16")

	cfg, err := config.FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, 10*time.Minute, cfg.DuplicateWindow())
	assert.Equal(t, 10, cfg.TagLengthMin)
	assert.Equal(t, 16, cfg.TagLengthMax)
}

func TestFromEnv_ClampsAndFailSoft(t *testing.T) {
	t.Setenv("WARENEINGANG_ENV", "staging")
	t.Setenv("WARENEINGANG_TAG_LENGTH_MIN", "2")
	t.Setenv("WARENEINGANG_TAG_LENGTH_MAX", "99")
	t.Setenv("WARENEINGANG_MAX_BUFFER_LENGTH", "4")
	t.Setenv("WARENEINGANG_DUPLICATE_WINDOW_MINUTES", "0")

	cfg, err := config.FromEnv()
	require.NoError(t, err)

	// Unknown env is treated as dev rather than failing startup.
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, config.TagLengthFloor, cfg.TagLengthMin)
	assert.Equal(t, config.TagLengthCeil, cfg.TagLengthMax)
	// The buffer can never be smaller than the longest accepted tag.
	assert.Equal(t, cfg.TagLengthMax, cfg.MaxBufferLength)
	assert.Equal(t, 5*time.Minute, cfg.DuplicateWindow())
}

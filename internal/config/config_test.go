package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/codechunk-mcp/pkg/types"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "codechunk.db", cfg.DBPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 4, cfg.MaxConcurrency)

	seg := cfg.Segmentation()
	assert.Equal(t, 50, seg.MinChunkSize)
	assert.Equal(t, 2000, seg.MaxChunkSize)
	assert.Equal(t, types.NestedFull, seg.NestedPolicy)
	assert.Equal(t, types.OverlapAuto, seg.OverlapStrategy)
	assert.Equal(t, 15*time.Minute, seg.CacheTTL)
	assert.NoError(t, seg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CODECHUNK_MAX_CHUNK_SIZE", "500")
	t.Setenv("CODECHUNK_NESTED_POLICY", "signature")
	t.Setenv("CODECHUNK_OVERLAP_ENABLED", "false")
	t.Setenv("CODECHUNK_CACHE_TTL", "1m")
	t.Setenv("CODECHUNK_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	seg := cfg.Segmentation()
	assert.Equal(t, 500, seg.MaxChunkSize)
	assert.Equal(t, types.NestedSignature, seg.NestedPolicy)
	assert.False(t, seg.OverlapEnabled)
	assert.Equal(t, time.Minute, seg.CacheTTL)
}

func TestLoad_InvalidBoundsRejected(t *testing.T) {
	t.Setenv("CODECHUNK_MIN_CHUNK_SIZE", "5000")
	t.Setenv("CODECHUNK_MAX_CHUNK_SIZE", "100")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidConcurrencyRejected(t *testing.T) {
	t.Setenv("CODECHUNK_MAX_CONCURRENCY", "0")

	_, err := Load()
	assert.Error(t, err)
}

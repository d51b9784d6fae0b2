package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/codechunk-mcp/pkg/types"
)

func sampleChunks() []types.Chunk {
	c := types.Chunk{
		Content:   "func a() {\n\treturn\n}",
		StartLine: 1,
		EndLine:   3,
		Language:  "go",
		Type:      types.ChunkFunction,
	}
	c.Finalize()
	return []types.Chunk{c}
}

func TestCache_SetGet(t *testing.T) {
	c := New(8, time.Minute)
	key := KeyFor("func a() {}", "go", "a.go")

	_, ok := c.Get(key)
	assert.False(t, ok)

	c.Set(key, sampleChunks())
	got, ok := c.Get(key)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "func a() {\n\treturn\n}", got[0].Content)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Entries)
}

func TestCache_KeyIncludesLanguageAndPath(t *testing.T) {
	c := New(8, time.Minute)
	content := "same content"

	c.Set(KeyFor(content, "go", "a.go"), sampleChunks())

	_, ok := c.Get(KeyFor(content, "python", "a.go"))
	assert.False(t, ok, "different language must miss")

	_, ok = c.Get(KeyFor(content, "go", "b.go"))
	assert.False(t, ok, "different path must miss")

	_, ok = c.Get(KeyFor(content, "go", "a.go"))
	assert.True(t, ok)
}

func TestCache_GetReturnsCopy(t *testing.T) {
	c := New(8, time.Minute)
	key := KeyFor("content", "go", "a.go")
	c.Set(key, sampleChunks())

	first, ok := c.Get(key)
	require.True(t, ok)
	first[0].Content = "mutated"

	second, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, "func a() {\n\treturn\n}", second[0].Content)
}

func TestCache_CapacityEviction(t *testing.T) {
	c := New(2, time.Minute)
	for i := 0; i < 5; i++ {
		c.Set(KeyFor(fmt.Sprintf("content-%d", i), "go", "a.go"), sampleChunks())
	}
	assert.LessOrEqual(t, c.Stats().Entries, 2)
}

func TestCache_Purge(t *testing.T) {
	c := New(8, time.Minute)
	c.Set(KeyFor("content", "go", "a.go"), sampleChunks())
	c.Purge()
	assert.Equal(t, 0, c.Stats().Entries)
}

// Package cache provides a bounded TTL cache for segmentation results keyed
// by content identity. Identical input must produce identical output, so a
// hit replays the previous result without re-running any strategy.
package cache

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/dshills/codechunk-mcp/pkg/types"
)

// Key identifies one segmentation request. Content participates via its
// hash so the key stays small regardless of input size.
type Key struct {
	ContentHash string
	Language    string
	FilePath    string
}

func (k Key) String() string {
	return fmt.Sprintf("%s|%s|%s", k.ContentHash, k.Language, k.FilePath)
}

// KeyFor builds the cache key for a segmentation request.
func KeyFor(content, language, filePath string) Key {
	return Key{
		ContentHash: types.HashContent(content),
		Language:    language,
		FilePath:    filePath,
	}
}

// Stats reports cache effectiveness counters.
type Stats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int   `json:"entries"`
}

// ChunkCache is an LRU with per-entry TTL. All methods are safe for
// concurrent use.
type ChunkCache struct {
	lru    *expirable.LRU[string, []types.Chunk]
	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a cache holding up to capacity entries, each expiring after
// ttl. A ttl of zero disables expiry.
func New(capacity int, ttl time.Duration) *ChunkCache {
	return &ChunkCache{
		lru: expirable.NewLRU[string, []types.Chunk](capacity, nil, ttl),
	}
}

// Get returns the cached chunks for key. The returned slice is a copy;
// callers may modify it freely.
func (c *ChunkCache) Get(key Key) ([]types.Chunk, bool) {
	chunks, ok := c.lru.Get(key.String())
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return copyChunks(chunks), true
}

// Set stores chunks under key. Storage is best effort: the write can be
// evicted at any time and the caller never depends on it.
func (c *ChunkCache) Set(key Key, chunks []types.Chunk) {
	c.lru.Add(key.String(), copyChunks(chunks))
}

// Purge drops every entry.
func (c *ChunkCache) Purge() {
	c.lru.Purge()
}

// Stats returns hit/miss counters and the current entry count.
func (c *ChunkCache) Stats() Stats {
	return Stats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: c.lru.Len(),
	}
}

func copyChunks(chunks []types.Chunk) []types.Chunk {
	out := make([]types.Chunk, len(chunks))
	copy(out, chunks)
	return out
}

// Package store persists segmentation results in SQLite so repeated
// indexing runs can skip unchanged files and serve chunk queries without
// re-segmenting.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/dshills/codechunk-mcp/pkg/types"
)

// ErrNotFound is returned when a requested entity doesn't exist.
var ErrNotFound = errors.New("not found")

// File is one indexed source file.
type File struct {
	ID          int64     `json:"id"`
	FilePath    string    `json:"file_path"`
	Language    string    `json:"language"`
	ContentHash string    `json:"content_hash"`
	SizeBytes   int64     `json:"size_bytes"`
	ModTime     time.Time `json:"mod_time"`
	ChunkCount  int       `json:"chunk_count"`
	Fallback    bool      `json:"fallback"`
	IndexedAt   time.Time `json:"indexed_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ChunkRecord is a persisted chunk row joined back to its file.
type ChunkRecord struct {
	ID        int64       `json:"id"`
	FileID    int64       `json:"file_id"`
	Chunk     types.Chunk `json:"chunk"`
	CreatedAt time.Time   `json:"created_at"`
}

// SearchResult pairs a matching chunk with its relevance rank. Lower rank
// is a better match.
type SearchResult struct {
	Record ChunkRecord `json:"record"`
	Rank   float64     `json:"rank"`
}

// Status summarizes index contents and health.
type Status struct {
	FilesCount    int       `json:"files_count"`
	ChunksCount   int       `json:"chunks_count"`
	FallbackFiles int       `json:"fallback_files"`
	IndexSizeMB   float64   `json:"index_size_mb"`
	LastIndexedAt time.Time `json:"last_indexed_at,omitempty"`
	SchemaVersion string    `json:"schema_version"`
}

// Store is the persistence contract for indexed files and their chunks.
type Store interface {
	UpsertFile(ctx context.Context, file *File) error
	GetFile(ctx context.Context, filePath string) (*File, error)
	ListFiles(ctx context.Context) ([]*File, error)
	DeleteFile(ctx context.Context, fileID int64) error

	// ReplaceChunks swaps a file's chunk set atomically.
	ReplaceChunks(ctx context.Context, fileID int64, chunks []types.Chunk) error
	ListChunksByFile(ctx context.Context, fileID int64) ([]*ChunkRecord, error)
	SearchChunks(ctx context.Context, query string, limit int) ([]SearchResult, error)

	GetStatus(ctx context.Context) (*Status, error)
	Close() error
}

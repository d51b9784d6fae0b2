package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/codechunk-mcp/pkg/types"
)

var _ Store = (*SQLite)(nil)

func testStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testChunk(content string, start int) types.Chunk {
	c := types.Chunk{
		Content:   content,
		StartLine: start,
		EndLine:   start + types.CountLines(content) - 1,
		Language:  "go",
		FilePath:  "main.go",
		Type:      types.ChunkFunction,
	}
	c.Finalize()
	return c
}

func TestUpsertFile_InsertAndUpdate(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	file := &File{
		FilePath:    "main.go",
		Language:    "go",
		ContentHash: "abc123",
		SizeBytes:   100,
		ModTime:     time.Now(),
	}
	require.NoError(t, s.UpsertFile(ctx, file))
	assert.NotZero(t, file.ID)

	// Same path updates in place.
	again := &File{
		FilePath:    "main.go",
		Language:    "go",
		ContentHash: "def456",
		SizeBytes:   120,
	}
	require.NoError(t, s.UpsertFile(ctx, again))
	assert.Equal(t, file.ID, again.ID)

	got, err := s.GetFile(ctx, "main.go")
	require.NoError(t, err)
	assert.Equal(t, "def456", got.ContentHash)
}

func TestGetFile_NotFound(t *testing.T) {
	s := testStore(t)
	_, err := s.GetFile(context.Background(), "missing.go")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReplaceChunks_RoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	file := &File{FilePath: "main.go", Language: "go", ContentHash: "h1"}
	require.NoError(t, s.UpsertFile(ctx, file))

	first := testChunk("func a() {\n\treturn\n}", 1)
	first.Overlap = &types.OverlapInfo{
		Content:   "}",
		LineCount: 1,
		Strategy:  "semantic",
		Quality:   0.9,
		Ratio:     0.1,
	}
	second := testChunk("func b() {\n\tpanic(nil)\n}", 5)

	require.NoError(t, s.ReplaceChunks(ctx, file.ID, []types.Chunk{first, second}))

	records, err := s.ListChunksByFile(ctx, file.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, first.Content, records[0].Chunk.Content)
	assert.Equal(t, types.ChunkFunction, records[0].Chunk.Type)
	require.NotNil(t, records[0].Chunk.Overlap)
	assert.Equal(t, "semantic", records[0].Chunk.Overlap.Strategy)
	assert.Nil(t, records[1].Chunk.Overlap)

	// Replacing again swaps the set.
	require.NoError(t, s.ReplaceChunks(ctx, file.ID, []types.Chunk{second}))
	records, err = s.ListChunksByFile(ctx, file.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, second.Content, records[0].Chunk.Content)
}

func TestReplaceChunks_SameSpanDifferentContent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	file := &File{FilePath: "data.txt", ContentHash: "h1"}
	require.NoError(t, s.UpsertFile(ctx, file))

	// Character-split pieces share one line span.
	a := testChunk("aaaaaaaaaa", 1)
	b := testChunk("bbbbbbbbbb", 1)
	a.Type, b.Type = types.ChunkLine, types.ChunkLine

	require.NoError(t, s.ReplaceChunks(ctx, file.ID, []types.Chunk{a, b}))

	records, err := s.ListChunksByFile(ctx, file.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, a.Content, records[0].Chunk.Content, "emission order preserved")
	assert.Equal(t, b.Content, records[1].Chunk.Content)
}

func TestReplaceChunks_IdenticalSplitPieces(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	file := &File{FilePath: "data.txt", ContentHash: "h1"}
	require.NoError(t, s.UpsertFile(ctx, file))

	// Pieces of one repeated-character line share span, content, and hash;
	// every row must still persist.
	piece := testChunk("xxxxxxxxxx", 1)
	piece.Type = types.ChunkLine
	pieces := []types.Chunk{piece, piece, piece}

	require.NoError(t, s.ReplaceChunks(ctx, file.ID, pieces))

	records, err := s.ListChunksByFile(ctx, file.ID)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestDeleteFile_CascadesChunks(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	file := &File{FilePath: "main.go", ContentHash: "h1"}
	require.NoError(t, s.UpsertFile(ctx, file))
	require.NoError(t, s.ReplaceChunks(ctx, file.ID, []types.Chunk{testChunk("func a() {\n\treturn\n}", 1)}))

	require.NoError(t, s.DeleteFile(ctx, file.ID))

	records, err := s.ListChunksByFile(ctx, file.ID)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSearchChunks_FTS(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	file := &File{FilePath: "main.go", ContentHash: "h1"}
	require.NoError(t, s.UpsertFile(ctx, file))
	require.NoError(t, s.ReplaceChunks(ctx, file.ID, []types.Chunk{
		testChunk("func parseConfig() error {\n\treturn nil\n}", 1),
		testChunk("func writeOutput() error {\n\treturn nil\n}", 5),
	}))

	results, err := s.SearchChunks(ctx, "parseConfig", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Record.Chunk.Content, "parseConfig")
}

func TestGetStatus(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	status, err := s.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, status.FilesCount)
	assert.Equal(t, CurrentSchemaVersion, status.SchemaVersion)

	file := &File{FilePath: "main.go", ContentHash: "h1"}
	require.NoError(t, s.UpsertFile(ctx, file))
	require.NoError(t, s.ReplaceChunks(ctx, file.ID, []types.Chunk{testChunk("func a() {\n\treturn\n}", 1)}))

	status, err = s.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, status.FilesCount)
	assert.Equal(t, 1, status.ChunksCount)
	assert.False(t, status.LastIndexedAt.IsZero())
}

func TestMigrations_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := New(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Reopening applies no duplicate migrations.
	s2, err := New(path)
	require.NoError(t, err)
	defer func() { _ = s2.Close() }()

	status, err := s2.GetStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, status.SchemaVersion)
}

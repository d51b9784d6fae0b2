package mcp

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/codechunk-mcp/internal/config"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	t.Setenv("CODECHUNK_DB_PATH", filepath.Join(t.TempDir(), "test.db"))
	t.Setenv("CODECHUNK_MIN_CHUNK_SIZE", "10")
	t.Setenv("CODECHUNK_MIN_CHUNK_LINES", "1")

	cfg, err := config.Load()
	require.NoError(t, err)

	s, err := NewServer(cfg, log.New(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.store.Close() })
	return s
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &payload))
	return payload
}

func TestNewServer_Wiring(t *testing.T) {
	s := testServer(t)
	assert.NotNil(t, s.segmenter)
	assert.NotNil(t, s.indexer)
	assert.NotNil(t, s.store)
}

func TestHandleChunkText(t *testing.T) {
	s := testServer(t)

	res, err := s.handleChunkText(context.Background(), callRequest(map[string]interface{}{
		"content":  "package main\n\nfunc greet(name string) string {\n\tmsg := \"hello \" + name\n\treturn msg\n}\n",
		"language": "go",
	}))
	require.NoError(t, err)

	payload := resultText(t, res)
	assert.Equal(t, float64(1), payload["chunk_count"])

	chunks, ok := payload["chunks"].([]interface{})
	require.True(t, ok)
	chunk := chunks[0].(map[string]interface{})
	assert.Equal(t, "function", chunk["type"])
	assert.Equal(t, float64(3), chunk["start_line"])
}

func TestHandleChunkText_MissingContent(t *testing.T) {
	s := testServer(t)

	_, err := s.handleChunkText(context.Background(), callRequest(map[string]interface{}{}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestHandleChunkFile(t *testing.T) {
	s := testServer(t)
	path := filepath.Join(t.TempDir(), "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n\nfunc run() int {\n\tv := 1\n\treturn v\n}\n"), 0o644))

	res, err := s.handleChunkFile(context.Background(), callRequest(map[string]interface{}{
		"path": path,
	}))
	require.NoError(t, err)

	payload := resultText(t, res)
	assert.Equal(t, "go", payload["language"])
	assert.Equal(t, float64(1), payload["chunk_count"])
}

func TestHandleChunkFile_RelativePathRejected(t *testing.T) {
	s := testServer(t)

	_, err := s.handleChunkFile(context.Background(), callRequest(map[string]interface{}{
		"path": "relative/main.go",
	}))
	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestHandleIndexDirectoryAndStatus(t *testing.T) {
	s := testServer(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"),
		[]byte("package main\n\nfunc run() int {\n\tv := 1\n\treturn v\n}\n"), 0o644))

	res, err := s.handleIndexDirectory(context.Background(), callRequest(map[string]interface{}{
		"path": dir,
	}))
	require.NoError(t, err)

	payload := resultText(t, res)
	assert.Equal(t, true, payload["indexed"])
	assert.Equal(t, float64(1), payload["files_indexed"])

	statusRes, err := s.handleGetStatus(context.Background(), callRequest(map[string]interface{}{}))
	require.NoError(t, err)

	status := resultText(t, statusRes)
	index := status["index"].(map[string]interface{})
	assert.Equal(t, float64(1), index["files_count"])
	assert.GreaterOrEqual(t, index["chunks_count"].(float64), float64(1))
}

func TestHandleSearchChunks(t *testing.T) {
	s := testServer(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"),
		[]byte("package main\n\nfunc fetchRecords() int {\n\tv := 1\n\treturn v\n}\n"), 0o644))

	_, err := s.handleIndexDirectory(context.Background(), callRequest(map[string]interface{}{
		"path": dir,
	}))
	require.NoError(t, err)

	res, err := s.handleSearchChunks(context.Background(), callRequest(map[string]interface{}{
		"query": "fetchRecords",
	}))
	require.NoError(t, err)

	payload := resultText(t, res)
	assert.Equal(t, float64(1), payload["result_count"])
}

func TestHandleSearchChunks_EmptyQuery(t *testing.T) {
	s := testServer(t)

	_, err := s.handleSearchChunks(context.Background(), callRequest(map[string]interface{}{
		"query": "",
	}))
	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestIndexLock_Conflict(t *testing.T) {
	s := testServer(t)
	dir := t.TempDir()

	require.True(t, s.indexLock.TryAcquire())
	defer s.indexLock.Release()

	_, err := s.handleIndexDirectory(context.Background(), callRequest(map[string]interface{}{
		"path": dir,
	}))
	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeIndexingInProgress, mcpErr.Code)
}

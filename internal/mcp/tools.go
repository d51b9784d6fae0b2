package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/codechunk-mcp/internal/indexer"
	"github.com/dshills/codechunk-mcp/internal/parser"
)

// MCP error codes
const (
	ErrorCodeInvalidParams      = -32602 // Invalid method parameters
	ErrorCodeInternalError      = -32603 // Internal JSON-RPC error
	ErrorCodeIndexingInProgress = -32002 // Another indexing operation is already running
	ErrorCodeFileTooLarge       = -32004 // Input exceeds the configured size limit
)

// handleChunkText handles the chunk_text tool invocation
func (s *Server) handleChunkText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	content, ok := args["content"].(string)
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "content parameter is required", map[string]interface{}{
			"param":  "content",
			"reason": "missing",
		})
	}

	language := getStringDefault(args, "language", "")
	filePath := getStringDefault(args, "file_path", "")

	if max := s.cfg.MaxFileSize; max > 0 && len(content) > max {
		return nil, newMCPError(ErrorCodeFileTooLarge, "content exceeds maximum size", map[string]interface{}{
			"size_bytes": len(content),
			"max_bytes":  max,
		})
	}

	chunks := s.segmenter.Split(ctx, content, filePath, language)
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"chunk_count": len(chunks),
		"chunks":      chunks,
	})), nil
}

// handleChunkFile handles the chunk_file tool invocation
func (s *Server) handleChunkFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}
	if err := validateFilePath(path); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to stat file", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if max := s.cfg.MaxFileSize; max > 0 && info.Size() > int64(max) {
		return nil, newMCPError(ErrorCodeFileTooLarge, "file exceeds maximum size", map[string]interface{}{
			"size_bytes": info.Size(),
			"max_bytes":  max,
		})
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to read file", map[string]interface{}{
			"error": err.Error(),
		})
	}

	language := getStringDefault(args, "language", "")
	if language == "" {
		language = parser.DetectLanguage(path)
	}

	chunks := s.segmenter.Split(ctx, string(content), path, language)
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"file_path":   path,
		"language":    language,
		"chunk_count": len(chunks),
		"chunks":      chunks,
	})), nil
}

// handleIndexDirectory handles the index_directory tool invocation
func (s *Server) handleIndexDirectory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}
	if err := validateDirPath(path); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	if !s.indexLock.TryAcquire() {
		return nil, newMCPError(ErrorCodeIndexingInProgress, "an indexing operation is already running", nil)
	}
	defer s.indexLock.Release()

	cfg := &indexer.Config{
		Workers:      s.cfg.MaxConcurrency,
		MaxFileSize:  int64(s.cfg.MaxFileSize),
		SkipHidden:   getBoolDefault(args, "skip_hidden", true),
		ForceReindex: getBoolDefault(args, "force_reindex", false),
	}

	stats, err := s.indexer.IndexDirectory(ctx, path, cfg)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "indexing failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"indexed":        true,
		"files_indexed":  stats.FilesIndexed,
		"files_skipped":  stats.FilesSkipped,
		"files_failed":   stats.FilesFailed,
		"chunks_created": stats.ChunksCreated,
		"duration_ms":    stats.Duration.Milliseconds(),
	}
	if len(stats.ErrorMessages) > 0 {
		errorCount := len(stats.ErrorMessages)
		if errorCount > 5 {
			response["errors"] = stats.ErrorMessages[:5]
			response["error_count"] = errorCount
		} else {
			response["errors"] = stats.ErrorMessages
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSearchChunks handles the search_chunks tool invocation
func (s *Server) handleSearchChunks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	limit := getIntDefault(args, "limit", 10)
	if limit < 1 || limit > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	results, err := s.store.SearchChunks(ctx, query, limit)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"query":        query,
		"result_count": len(results),
		"results":      results,
	})), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := s.store.GetStatus(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	cacheStats := s.segmenter.CacheStats()
	seg := s.segmenter.Config()

	response := map[string]interface{}{
		"server": map[string]interface{}{
			"name":    ServerName,
			"version": ServerVersion,
		},
		"index": map[string]interface{}{
			"files_count":    status.FilesCount,
			"chunks_count":   status.ChunksCount,
			"fallback_files": status.FallbackFiles,
			"index_size_mb":  fmt.Sprintf("%.2f", status.IndexSizeMB),
			"schema_version": status.SchemaVersion,
		},
		"cache": map[string]interface{}{
			"enabled": seg.CacheEnabled,
			"hits":    cacheStats.Hits,
			"misses":  cacheStats.Misses,
			"entries": cacheStats.Entries,
		},
		"segmentation": map[string]interface{}{
			"min_chunk_size":   seg.MinChunkSize,
			"max_chunk_size":   seg.MaxChunkSize,
			"nesting_enabled":  seg.EnableNesting,
			"nested_policy":    string(seg.NestedPolicy),
			"overlap_enabled":  seg.OverlapEnabled,
			"overlap_strategy": string(seg.OverlapStrategy),
			"merge_enabled":    seg.MergeEnabled,
		},
	}
	if !status.LastIndexedAt.IsZero() {
		response["index"].(map[string]interface{})["last_indexed_at"] = status.LastIndexedAt.Format("2006-01-02T15:04:05Z07:00")
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// Validation helpers

var (
	ErrPathRequired    = errors.New("path is required")
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrNotDirectory    = errors.New("path is not a directory")
	ErrNotFile         = errors.New("path is not a regular file")
)

// validateDirPath checks that a path exists and is a readable directory.
func validateDirPath(path string) error {
	if path == "" {
		return ErrPathRequired
	}
	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}
	if !info.IsDir() {
		return ErrNotDirectory
	}

	f, err := os.Open(path)
	if err != nil {
		return ErrPathNotReadable
	}
	_ = f.Close()
	return nil
}

// validateFilePath checks that a path exists and is a regular file.
func validateFilePath(path string) error {
	if path == "" {
		return ErrPathRequired
	}
	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}
	if info.IsDir() || !info.Mode().IsRegular() {
		return ErrNotFile
	}
	return nil
}

// formatJSON formats a value as indented JSON
func formatJSON(data interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

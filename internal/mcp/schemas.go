package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// chunkTextTool returns the tool definition for chunk_text
func chunkTextTool() mcp.Tool {
	return mcp.Tool{
		Name:        "chunk_text",
		Description: "Split source text into bounded chunks suitable for embedding",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"content": map[string]interface{}{
					"type":        "string",
					"description": "Source text to segment",
				},
				"language": map[string]interface{}{
					"type":        "string",
					"description": "Language hint (go, python, typescript, html, ...). Detected from file_path when omitted",
				},
				"file_path": map[string]interface{}{
					"type":        "string",
					"description": "Logical file path, used for language detection and chunk metadata",
				},
			},
			Required: []string{"content"},
		},
	}
}

// chunkFileTool returns the tool definition for chunk_file
func chunkFileTool() mcp.Tool {
	return mcp.Tool{
		Name:        "chunk_file",
		Description: "Read a file from disk and split it into bounded chunks",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the file to segment",
				},
				"language": map[string]interface{}{
					"type":        "string",
					"description": "Language hint; detected from the path when omitted",
				},
			},
			Required: []string{"path"},
		},
	}
}

// indexDirectoryTool returns the tool definition for index_directory
func indexDirectoryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_directory",
		Description: "Segment every supported file under a directory and persist the chunks",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the directory root",
				},
				"force_reindex": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, re-segment all files ignoring stored content hashes",
					"default":     false,
				},
				"skip_hidden": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, skip dot-files and dot-directories",
					"default":     true,
				},
			},
			Required: []string{"path"},
		},
	}
}

// searchChunksTool returns the tool definition for search_chunks
func searchChunksTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_chunks",
		Description: "Full-text search over indexed chunk content",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query (FTS5 syntax)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
			},
			Required: []string{"query"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report index statistics, cache effectiveness, and active segmentation settings",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

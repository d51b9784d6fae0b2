// Package types provides shared type definitions for the CodeChunk MCP server.
//
// This package defines the domain types used across segmentation components:
// chunks, intermediate structures, overlap results, and the segmentation
// config.
//
// # Core Types
//
// Chunk represents a bounded content slice emitted for embedding and search:
//
//	chunk := &types.Chunk{
//	    Content:   functionBody,
//	    StartLine: 10,
//	    EndLine:   24,
//	    Language:  "go",
//	    Type:      types.ChunkFunction,
//	}
//	chunk.Finalize() // derives size, line count, content hash
//
// Structure is the intermediate representation produced by structure
// discovery before validation and conversion into chunks.
//
// OverlapResult is the per-pair outcome of overlap computation; a result
// with IsDuplicate set carries no content and must be skipped.
//
// # Invariants
//
// Validate enforces the chunk invariants relied on downstream:
//
//	EndLine >= StartLine
//	SizeChars == len(Content)
//	LineCount == CountLines(Content)
//
// # Fallback Chunks
//
// A chunk produced after structure discovery failed has the same shape as a
// normal chunk and is distinguished only by the Fallback flag and
// FallbackReason, so consumers can reprocess or deprioritize it without a
// separate error path.
package types

// Package mcp implements the Model Context Protocol (MCP) server for the
// chunking engine.
//
// The server exposes five tools to AI coding assistants:
//   - chunk_text: Split source text into bounded chunks
//   - chunk_file: Read a file from disk and split it
//   - index_directory: Segment a whole directory tree and persist the chunks
//   - search_chunks: Full-text search over indexed chunk content
//   - get_status: Report index statistics and active segmentation settings
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// The server communicates on standard input/output; all logging goes to
// stderr so stdout stays clean for protocol frames.
//
// # Tool: chunk_text
//
//	Request:
//	{
//	  "name": "chunk_text",
//	  "arguments": {
//	    "content": "package main\n\nfunc main() {}\n",
//	    "language": "go"
//	  }
//	}
//
// The response carries the chunk list with per-chunk metadata: line span,
// type, complexity, overlap, and fallback tagging.
//
// # Error Codes
//
// Tool failures use JSON-RPC error codes: -32602 for invalid parameters,
// -32603 for internal failures, -32002 when an indexing run is already in
// progress, and -32004 when input exceeds the configured size limit.
package mcp

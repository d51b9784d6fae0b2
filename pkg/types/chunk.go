package types

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// ChunkType classifies the kind of source construct a chunk covers.
// The enum values are a stable external contract consumed by downstream
// embedding, indexing, and retrieval components.
type ChunkType string

const (
	ChunkFunction  ChunkType = "function"
	ChunkClass     ChunkType = "class"
	ChunkMethod    ChunkType = "method"
	ChunkImport    ChunkType = "import"
	ChunkExport    ChunkType = "export"
	ChunkGeneric   ChunkType = "generic"
	ChunkComment   ChunkType = "comment"
	ChunkDoc       ChunkType = "doc"
	ChunkVariable  ChunkType = "variable"
	ChunkInterface ChunkType = "interface"
	ChunkTypeDecl  ChunkType = "type"
	ChunkEnum      ChunkType = "enum"
	ChunkModule    ChunkType = "module"
	ChunkBlock     ChunkType = "block"
	ChunkLine      ChunkType = "line"
)

// validChunkTypes is the closed set accepted by Chunk.Validate.
var validChunkTypes = map[ChunkType]struct{}{
	ChunkFunction: {}, ChunkClass: {}, ChunkMethod: {}, ChunkImport: {},
	ChunkExport: {}, ChunkGeneric: {}, ChunkComment: {}, ChunkDoc: {},
	ChunkVariable: {}, ChunkInterface: {}, ChunkTypeDecl: {}, ChunkEnum: {},
	ChunkModule: {}, ChunkBlock: {}, ChunkLine: {},
}

// OverlapInfo records the trailing content a chunk shares with its successor.
type OverlapInfo struct {
	Content   string  `json:"content"`
	LineCount int     `json:"line_count"`
	Strategy  string  `json:"strategy"`
	Quality   float64 `json:"quality"`
	Ratio     float64 `json:"ratio"`
}

// Chunk is a contiguous content slice plus metadata, the unit emitted for
// downstream embedding and indexing. Field names form a stable contract.
type Chunk struct {
	Content   string    `json:"content"`
	StartLine int       `json:"start_line"`
	EndLine   int       `json:"end_line"`
	Language  string    `json:"language"`
	FilePath  string    `json:"file_path,omitempty"`
	Type      ChunkType `json:"type"`

	Complexity  int    `json:"complexity"`
	SizeChars   int    `json:"size_chars"`
	LineCount   int    `json:"line_count"`
	ContentHash string `json:"content_hash,omitempty"`

	NestingLevel  int          `json:"nesting_level,omitempty"`
	SignatureOnly bool         `json:"signature_only,omitempty"`
	Overlap       *OverlapInfo `json:"overlap,omitempty"`

	// Fallback marks a chunk produced after structure discovery failed or
	// found nothing. A fallback chunk has the same shape as a normal chunk;
	// downstream systems decide whether to reprocess or deprioritize it.
	Fallback       bool   `json:"fallback,omitempty"`
	FallbackReason string `json:"fallback_reason,omitempty"`

	// OpenTags records the unclosed tag stack observed by the markup
	// segmenter at the time this chunk was emitted.
	OpenTags []string `json:"open_tags,omitempty"`
}

// CountLines returns the number of lines in s. The empty string has zero
// lines; otherwise a trailing newline does not start a new line.
func CountLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n") + 1
	if strings.HasSuffix(s, "\n") {
		n--
	}
	return n
}

// HashContent returns the hex-encoded SHA-256 digest of content.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Finalize derives SizeChars, LineCount, and ContentHash from Content.
// Call after any mutation of Content to keep the invariants
// SizeChars == len(Content) and LineCount == CountLines(Content).
func (c *Chunk) Finalize() {
	c.SizeChars = len(c.Content)
	c.LineCount = CountLines(c.Content)
	c.ContentHash = HashContent(c.Content)
}

// Validate checks the structural invariants of the chunk.
func (c *Chunk) Validate() error {
	if c.Content == "" {
		return errors.New("chunk content cannot be empty")
	}
	if c.StartLine <= 0 || c.EndLine <= 0 {
		return errors.New("line numbers must be positive")
	}
	if c.StartLine > c.EndLine {
		return errors.New("start line must be before or equal to end line")
	}
	if c.SizeChars != len(c.Content) {
		return errors.New("size_chars does not match content length")
	}
	if c.LineCount != CountLines(c.Content) {
		return errors.New("line_count does not match content")
	}
	if _, ok := validChunkTypes[c.Type]; !ok {
		return errors.New("invalid chunk type")
	}
	return nil
}

// IsStructural reports whether the chunk covers a named code structure
// (function, method, or class-like construct) rather than a heuristic slice.
func (c *Chunk) IsStructural() bool {
	switch c.Type {
	case ChunkFunction, ChunkMethod, ChunkClass, ChunkInterface:
		return true
	default:
		return false
	}
}

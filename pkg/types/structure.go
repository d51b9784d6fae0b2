package types

// Structure is an intermediate, pre-chunk representation of a detected
// syntactic unit. Structures are created during one traversal, consumed into
// chunks, and never mutated afterward.
type Structure struct {
	Type         ChunkType
	Content      string
	StartLine    int
	EndLine      int
	NestingLevel int
	Name         string
}

// OverlapResult is the ephemeral outcome of one overlap computation for an
// adjacent chunk pair.
type OverlapResult struct {
	Content   string
	LineCount int
	Strategy  OverlapStrategy
	// Quality scores how well the overlap landed on a natural boundary,
	// in [0, 1].
	Quality float64
	// Ratio is len(Content) relative to the source chunk's content length.
	Ratio float64
	// IsDuplicate marks an overlap rejected because its content is a
	// near-duplicate of content already present in the successor chunk.
	// A duplicate result carries empty content and must not be applied.
	IsDuplicate bool
}

// OverlapStrategy selects how trailing overlap between adjacent chunks is
// computed.
type OverlapStrategy string

const (
	// OverlapAuto picks the first applicable strategy in precedence order:
	// semantic, syntactic, size-based.
	OverlapAuto OverlapStrategy = "auto"
	// OverlapSemantic scans backward from the chunk end for a natural
	// boundary: blank line, depth-zero closing brace, or statement end.
	OverlapSemantic OverlapStrategy = "semantic"
	// OverlapSyntactic extends to the minimal balanced-bracket suffix.
	OverlapSyntactic OverlapStrategy = "syntactic"
	// OverlapSize takes a fixed trailing slice of characters and lines.
	OverlapSize OverlapStrategy = "size"
	// OverlapHybrid tries semantic first and falls back to size-based.
	OverlapHybrid OverlapStrategy = "hybrid"
)

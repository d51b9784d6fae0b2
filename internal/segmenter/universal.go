package segmenter

import (
	"strings"

	"github.com/dshills/codechunk-mcp/pkg/types"
)

// universalStrategy is the guaranteed terminal fallback: it handles any
// input and always produces at least one chunk. Lines accumulate into
// blocks up to the size bounds; a single line longer than the maximum is
// split by characters so the bound holds even without newlines.
type universalStrategy struct{}

func newUniversalStrategy() *universalStrategy { return &universalStrategy{} }

func (s *universalStrategy) Name() string         { return "universal" }
func (s *universalStrategy) Priority() int        { return 100 }
func (s *universalStrategy) Languages() []string  { return []string{"*"} }
func (s *universalStrategy) CanHandle(*Context) bool { return true }

func (s *universalStrategy) Execute(sc *Context) ([]types.Chunk, error) {
	cfg := sc.Config
	lines := strings.Split(sc.Content, "\n")

	var chunks []types.Chunk
	size := 0
	start := 0

	flush := func(end int) {
		if end < start {
			return
		}
		c := buildChunk(lines, start, end, sc, types.ChunkBlock)
		if c.Content != "" {
			chunks = append(chunks, c)
		}
		size = 0
		start = end + 1
	}

	for i, line := range lines {
		if cfg.MaxChunkSize > 0 && len(line) > cfg.MaxChunkSize {
			// The oversized line gets its own character-split chunks.
			flush(i - 1)
			chunks = append(chunks, splitLine(line, i+1, sc)...)
			start = i + 1
			continue
		}
		if size+len(line)+1 > cfg.MaxChunkSize {
			flush(i - 1)
		}

		size += len(line) + 1
		if i-start+1 >= cfg.MaxChunkLines {
			flush(i)
		}
	}
	if start < len(lines) {
		flush(len(lines) - 1)
	}

	return chunks, nil
}

// splitLine cuts one line into ceil(len/max) pieces of at most max
// characters. The pieces tile the line: no gaps, no overlap.
func splitLine(line string, lineNo int, sc *Context) []types.Chunk {
	maxSize := sc.Config.MaxChunkSize
	var chunks []types.Chunk
	for off := 0; off < len(line); off += maxSize {
		end := off + maxSize
		if end > len(line) {
			end = len(line)
		}
		c := types.Chunk{
			Content:   line[off:end],
			StartLine: lineNo,
			EndLine:   lineNo,
			Language:  sc.Language,
			FilePath:  sc.FilePath,
			Type:      types.ChunkLine,
		}
		c.Finalize()
		chunks = append(chunks, c)
	}
	return chunks
}

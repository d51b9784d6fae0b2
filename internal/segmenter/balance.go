package segmenter

import (
	"strings"

	"github.com/dshills/codechunk-mcp/internal/parser"
	"github.com/dshills/codechunk-mcp/pkg/types"
)

// balanceStrategy splits code on bracket-balance boundaries. It tracks net
// depth across (), {}, and [] line by line and cuts when the text returns
// to balance with the size minimums met. Used when no grammar is available
// or AST extraction declined the input.
type balanceStrategy struct{}

func newBalanceStrategy() *balanceStrategy { return &balanceStrategy{} }

func (s *balanceStrategy) Name() string        { return "balance" }
func (s *balanceStrategy) Priority() int       { return 20 }
func (s *balanceStrategy) Languages() []string { return []string{"*"} }

func (s *balanceStrategy) CanHandle(sc *Context) bool {
	return !parser.IsMarkup(sc.Language)
}

func (s *balanceStrategy) Execute(sc *Context) ([]types.Chunk, error) {
	cfg := sc.Config
	lines := strings.Split(sc.Content, "\n")

	var chunks []types.Chunk
	depth := 0
	size := 0
	start := 0 // index of first line in the pending chunk

	flush := func(end int) {
		c := buildChunk(lines, start, end, sc, types.ChunkBlock)
		if c.Content != "" {
			chunks = append(chunks, c)
		}
		// State resets per chunk: residual imbalance never leaks forward.
		depth = 0
		size = 0
		start = end + 1
	}

	for i, line := range lines {
		if len(line) > cfg.MaxChunkSize {
			// A single line over the limit defeats line accumulation;
			// split it by characters so the size bound holds.
			flush(i - 1)
			chunks = append(chunks, splitLine(line, i+1, sc)...)
			start = i + 1
			continue
		}
		if size+len(line)+1 > cfg.MaxChunkSize {
			// Hard bound: cut even mid-structure.
			flush(i - 1)
		}

		depth += strings.Count(line, "(") + strings.Count(line, "{") + strings.Count(line, "[")
		depth -= strings.Count(line, ")") + strings.Count(line, "}") + strings.Count(line, "]")
		size += len(line) + 1
		pending := i - start + 1

		switch {
		case depth == 0 && size >= cfg.MinChunkSize && pending >= cfg.MinChunkLines:
			flush(i)
		case pending >= cfg.MaxChunkLines:
			flush(i)
		case cfg.ImbalanceTolerance > 0 && absInt(depth) > cfg.ImbalanceTolerance:
			// Runaway imbalance, likely broken input. Cut and restart.
			flush(i)
		}
	}
	if start < len(lines) {
		flush(len(lines) - 1)
	}

	return chunks, nil
}

// buildChunk assembles a chunk from the inclusive line range [start, end].
func buildChunk(lines []string, start, end int, sc *Context, typ types.ChunkType) types.Chunk {
	content := strings.Join(lines[start:end+1], "\n")
	c := types.Chunk{
		Content:   content,
		StartLine: start + 1,
		EndLine:   end + 1,
		Language:  sc.Language,
		FilePath:  sc.FilePath,
		Type:      typ,
	}
	c.Finalize()
	return c
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

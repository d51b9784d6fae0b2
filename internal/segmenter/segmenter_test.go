package segmenter

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/codechunk-mcp/internal/parser"
	"github.com/dshills/codechunk-mcp/pkg/types"
)

func testSegmenter(t *testing.T, mutate func(*types.SegmentationConfig)) *Segmenter {
	t.Helper()
	cfg := types.DefaultSegmentationConfig()
	cfg.MinChunkSize = 10
	cfg.MinChunkLines = 1
	if mutate != nil {
		mutate(&cfg)
	}
	return New(cfg, parser.NewTreeSitter(), log.New(io.Discard))
}

func TestSplit_EmptyInput(t *testing.T) {
	s := testSegmenter(t, nil)
	assert.Empty(t, s.Split(context.Background(), "", "a.go", "go"))
	assert.Empty(t, s.Split(context.Background(), "   \n\t\n", "a.go", "go"))
}

func TestSplit_GoFunctionsViaAST(t *testing.T) {
	src := `package main

func first(a int) int {
	result := a * 2
	return result
}

func second(b int) int {
	result := b + 1
	return result
}
`
	s := testSegmenter(t, func(cfg *types.SegmentationConfig) {
		cfg.MergeEnabled = false
	})
	chunks := s.Split(context.Background(), src, "main.go", "go")

	require.Len(t, chunks, 2)
	assert.Equal(t, types.ChunkFunction, chunks[0].Type)
	assert.Equal(t, 3, chunks[0].StartLine)
	assert.Equal(t, 6, chunks[0].EndLine)
	assert.Equal(t, 8, chunks[1].StartLine)
	assert.Equal(t, 11, chunks[1].EndLine)

	// Overlap is attached forward-only and ends at a natural boundary.
	require.NotNil(t, chunks[0].Overlap)
	assert.Equal(t, "semantic", chunks[0].Overlap.Strategy)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(chunks[0].Overlap.Content), "}"))
	assert.Nil(t, chunks[1].Overlap)
}

func TestSplit_SingleLongLineCharacterSplit(t *testing.T) {
	content := strings.Repeat("x", 10000)

	s := testSegmenter(t, func(cfg *types.SegmentationConfig) {
		cfg.MaxChunkSize = 2000
	})
	chunks := s.Split(context.Background(), content, "data.txt", "")

	require.Len(t, chunks, 5)
	total := 0
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c.Content), 2000)
		assert.Equal(t, types.ChunkLine, c.Type)
		total += len(c.Content)
	}
	// Full coverage, no gaps and no duplicated characters.
	assert.Equal(t, len(content), total)
}

func TestSplit_MalformedMarkupDoesNotFail(t *testing.T) {
	content := "<a><b></a></b>"

	s := testSegmenter(t, nil)
	var chunks []types.Chunk
	assert.NotPanics(t, func() {
		chunks = s.Split(context.Background(), content, "page.html", "html")
	})

	require.NotEmpty(t, chunks)
	assert.Equal(t, content, chunks[0].Content)
	assert.Empty(t, chunks[0].OpenTags, "interleaved closers resolve tolerantly")
}

func TestSplit_UnterminatedTagRecorded(t *testing.T) {
	content := "<section>\n<p>text</p>\n"

	s := testSegmenter(t, nil)
	chunks := s.Split(context.Background(), content, "page.html", "html")

	require.NotEmpty(t, chunks)
	assert.Contains(t, chunks[0].OpenTags, "section")
}

func TestSplit_NearIdenticalAdjacentFunctionsMerge(t *testing.T) {
	src := `package main

func emitAlpha() string {
	payload := buildPayload(config, settings, "alpha")
	return formatPayload(payload)
}

func emitBeta() string {
	payload := buildPayload(config, settings, "beta")
	return formatPayload(payload)
}
`
	s := testSegmenter(t, func(cfg *types.SegmentationConfig) {
		cfg.OverlapEnabled = false
	})
	chunks := s.Split(context.Background(), src, "emit.go", "go")

	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0].Content, "alpha")
	assert.Contains(t, chunks[0].Content, "beta")
}

func TestSplit_Deterministic(t *testing.T) {
	src := `package main

func alpha() int {
	x := compute()
	return x
}

func beta() int {
	y := recompute()
	return y
}
`
	s := testSegmenter(t, nil)
	first := s.Split(context.Background(), src, "main.go", "go")
	second := s.Split(context.Background(), src, "main.go", "go")
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ContentHash, second[i].ContentHash)
		assert.Equal(t, first[i].StartLine, second[i].StartLine)
	}
}

func TestSplit_CacheHitReplays(t *testing.T) {
	src := "func a() int {\n\treturn 1\n}\n"
	s := testSegmenter(t, nil)

	s.Split(context.Background(), src, "a.go", "go")
	s.Split(context.Background(), src, "a.go", "go")

	stats := s.CacheStats()
	assert.Equal(t, int64(1), stats.Hits)
}

func TestSplit_UnknownLanguageFallsBack(t *testing.T) {
	content := "some plain text\nwith a few lines\nand nothing else\n"

	s := testSegmenter(t, nil)
	chunks := s.Split(context.Background(), content, "notes.dat", "")

	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c.Content), s.Config().MaxChunkSize)
	}
}

func TestSplit_DetectsLanguageFromPath(t *testing.T) {
	src := `package main

func only() int {
	v := 42
	return v
}
`
	s := testSegmenter(t, nil)
	chunks := s.Split(context.Background(), src, "main.go", "")

	require.NotEmpty(t, chunks)
	assert.Equal(t, "go", chunks[0].Language)
}

func TestRegistry_PriorityOrder(t *testing.T) {
	s := testSegmenter(t, nil)
	strategies := s.registry.Strategies()
	require.NotEmpty(t, strategies)
	for i := 1; i < len(strategies); i++ {
		assert.LessOrEqual(t, strategies[i-1].Priority(), strategies[i].Priority())
	}
	assert.Equal(t, "ast", strategies[0].Name())
	assert.Equal(t, "universal", strategies[len(strategies)-1].Name())
}

func TestSplit_ChunksSortedAndBounded(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("package main\n\n")
	for i := 0; i < 6; i++ {
		sb.WriteString("func handler")
		sb.WriteByte(byte('A' + i))
		sb.WriteString("() int {\n\tv := compute()\n\treturn v\n}\n\n")
	}

	s := testSegmenter(t, func(cfg *types.SegmentationConfig) {
		cfg.MergeEnabled = false
	})
	chunks := s.Split(context.Background(), sb.String(), "handlers.go", "go")

	require.NotEmpty(t, chunks)
	for i := 1; i < len(chunks); i++ {
		assert.LessOrEqual(t, chunks[i-1].StartLine, chunks[i].StartLine)
	}
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c.Content), s.Config().MaxChunkSize)
	}
}

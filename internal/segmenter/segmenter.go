// Package segmenter is the chunk-boundary decision engine. It turns one
// source file into an ordered list of bounded chunks by selecting among
// registered strategies, then enriching the result with complexity scores,
// overlap metadata, and merge consolidation.
//
// Split never returns an error: any unrecoverable failure degrades to a
// single whole-file chunk tagged as fallback.
package segmenter

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/dshills/codechunk-mcp/internal/cache"
	"github.com/dshills/codechunk-mcp/internal/merge"
	"github.com/dshills/codechunk-mcp/internal/overlap"
	"github.com/dshills/codechunk-mcp/internal/parser"
	"github.com/dshills/codechunk-mcp/internal/score"
	"github.com/dshills/codechunk-mcp/internal/similarity"
	"github.com/dshills/codechunk-mcp/pkg/types"
)

// Fallback reasons recorded on the whole-file chunk.
const (
	ReasonStrategyPanic = "strategy_panic"
	ReasonStrategyError = "strategy_error"
	ReasonNoStrategy    = "no_strategy_produced_chunks"
)

// Segmenter orchestrates the full segmentation pipeline.
type Segmenter struct {
	cfg      types.SegmentationConfig
	registry *Registry
	overlaps *overlap.Engine
	merger   *merge.Merger
	cache    *cache.ChunkCache
	logger   *log.Logger
}

// New builds a segmenter with the standard strategy set: AST extraction,
// bracket balance, markup tag balance, and the universal fallback.
func New(cfg types.SegmentationConfig, svc parser.Service, logger *log.Logger) *Segmenter {
	oracle := &similarity.Oracle{}

	registry := NewRegistry()
	registry.Register(newASTStrategy(svc))
	registry.Register(newBalanceStrategy())
	registry.Register(newMarkupStrategy())
	registry.Register(newUniversalStrategy())

	var chunkCache *cache.ChunkCache
	if cfg.CacheEnabled {
		chunkCache = cache.New(cfg.CacheCapacity, cfg.CacheTTL)
	}

	return &Segmenter{
		cfg:      cfg,
		registry: registry,
		overlaps: overlap.New(oracle),
		merger:   merge.New(oracle),
		cache:    chunkCache,
		logger:   logger.With("component", "segmenter"),
	}
}

// Config returns the active segmentation profile.
func (s *Segmenter) Config() types.SegmentationConfig {
	return s.cfg
}

// CacheStats reports cache counters; zero-valued when caching is disabled.
func (s *Segmenter) CacheStats() cache.Stats {
	if s.cache == nil {
		return cache.Stats{}
	}
	return s.cache.Stats()
}

// Split segments content into chunks. Empty or whitespace-only input yields
// an empty slice. The call never fails: catastrophic strategy failures
// degrade to a single whole-file fallback chunk. Identical input produces
// identical output.
func (s *Segmenter) Split(ctx context.Context, content, filePath, language string) []types.Chunk {
	if strings.TrimSpace(content) == "" {
		return []types.Chunk{}
	}

	if language == "" {
		language = parser.DetectLanguage(filePath)
	}

	var key cache.Key
	if s.cache != nil {
		key = cache.KeyFor(content, language, filePath)
		if chunks, ok := s.cache.Get(key); ok {
			return chunks
		}
	}

	sc := &Context{
		Ctx:      ctx,
		Content:  content,
		FilePath: filePath,
		Language: language,
		Config:   s.cfg,
	}

	chunks := s.run(sc)
	chunks = s.enrich(chunks)

	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].StartLine < chunks[j].StartLine
	})

	if s.cfg.OverlapEnabled && len(chunks) > 1 {
		out, err := s.overlaps.AddOverlap(ctx, chunks, overlap.DefaultOptions(s.cfg))
		if err != nil {
			// Overlap is enrichment only; the chunk stream stands without it.
			s.logger.Warn("overlap pass failed", "file", filePath, "error", err)
		} else {
			chunks = out
		}
	}

	if s.cfg.MergeEnabled && len(chunks) > 1 {
		out, err := s.merger.IntelligentMerge(ctx, chunks, s.cfg.MaxChunkSize)
		if err != nil {
			s.logger.Warn("merge pass failed", "file", filePath, "error", err)
		} else {
			chunks = out
		}
	}

	if s.cache != nil {
		s.cache.Set(key, chunks)
	}

	return chunks
}

// run executes the first eligible strategy that yields chunks. A panic in
// any strategy is contained here and degrades to the fallback chunk.
func (s *Segmenter) run(sc *Context) (chunks []types.Chunk) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("strategy panicked", "file", sc.FilePath, "panic", r)
			chunks = []types.Chunk{s.fallbackChunk(sc, ReasonStrategyPanic)}
		}
	}()

	for _, strat := range s.registry.Candidates(sc) {
		out, err := strat.Execute(sc)
		if err != nil {
			if errors.Is(err, types.ErrParseUnavailable) || errors.Is(err, types.ErrUnsupportedLanguage) {
				s.logger.Debug("strategy unavailable",
					"strategy", strat.Name(), "file", sc.FilePath, "error", err)
				continue
			}
			s.logger.Warn("strategy failed",
				"strategy", strat.Name(), "file", sc.FilePath, "error", err)
			return []types.Chunk{s.fallbackChunk(sc, ReasonStrategyError)}
		}
		if len(out) > 0 {
			s.logger.Debug("strategy selected",
				"strategy", strat.Name(), "file", sc.FilePath, "chunks", len(out))
			return out
		}
	}

	// The universal strategy should have produced output; guard anyway.
	return []types.Chunk{s.fallbackChunk(sc, ReasonNoStrategy)}
}

// enrich fills complexity and derived fields on chunks that lack them.
func (s *Segmenter) enrich(chunks []types.Chunk) []types.Chunk {
	for i := range chunks {
		if chunks[i].Complexity == 0 {
			chunks[i].Complexity = score.Score(chunks[i].Content, chunks[i].Type)
		}
		if chunks[i].ContentHash == "" {
			chunks[i].Finalize()
		}
	}
	return chunks
}

// fallbackChunk wraps the entire input in one generic chunk.
func (s *Segmenter) fallbackChunk(sc *Context, reason string) types.Chunk {
	c := types.Chunk{
		Content:        sc.Content,
		StartLine:      1,
		EndLine:        maxOf(types.CountLines(sc.Content), 1),
		Language:       sc.Language,
		FilePath:       sc.FilePath,
		Type:           types.ChunkGeneric,
		Fallback:       true,
		FallbackReason: reason,
	}
	c.Complexity = score.Score(c.Content, c.Type)
	c.Finalize()
	return c
}

func maxOf(a, b int) int {
	if a > b {
		return a
	}
	return b
}

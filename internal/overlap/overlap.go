// Package overlap computes bounded, quality-scored trailing overlap between
// adjacent chunks so retrieval preserves context across chunk boundaries.
//
// Overlap is strictly forward-only: the computed region is the trailing
// slice of the earlier chunk, attached to that chunk as metadata. The later
// chunk is never mutated; consumers project the overlap into the successor's
// retrieval context. The computation is pure given fixed inputs.
package overlap

import (
	"context"
	"strings"

	"github.com/dshills/codechunk-mcp/pkg/types"
)

// duplicateThreshold is the similarity above which an overlap candidate is
// judged a near-duplicate of the successor's content and rejected.
const duplicateThreshold = 0.85

// Oracle scores text similarity in [0, 1].
type Oracle interface {
	Score(ctx context.Context, a, b string) (float64, error)
}

// Options bounds one overlap computation.
type Options struct {
	MaxSize     int
	MaxLines    int
	MaxRatio    float64
	TargetRatio float64
	Strategy    types.OverlapStrategy
}

// DefaultOptions derives overlap options from a segmentation config.
func DefaultOptions(cfg types.SegmentationConfig) Options {
	return Options{
		MaxSize:     cfg.OverlapMaxSize,
		MaxLines:    cfg.OverlapMaxLines,
		MaxRatio:    cfg.OverlapMaxRatio,
		TargetRatio: cfg.OverlapMaxRatio / 2,
		Strategy:    cfg.OverlapStrategy,
	}
}

// Engine computes overlap between adjacent chunk pairs.
type Engine struct {
	oracle Oracle
}

// New creates an overlap engine using the given similarity oracle.
func New(oracle Oracle) *Engine {
	return &Engine{oracle: oracle}
}

// Calculate computes the optimal overlap for the adjacent pair (a, b).
// The result content is a trailing slice of a's content ending at a natural
// boundary when one is found. A result with IsDuplicate set carries empty
// content and must not be applied.
func (e *Engine) Calculate(ctx context.Context, a, b *types.Chunk, opts Options) (types.OverlapResult, error) {
	if opts.MaxSize <= 0 || opts.MaxLines <= 0 || opts.MaxRatio <= 0 {
		return types.OverlapResult{}, nil
	}

	strategy := opts.Strategy
	if strategy == "" {
		strategy = types.OverlapAuto
	}

	var content string
	var used types.OverlapStrategy

	switch strategy {
	case types.OverlapSemantic:
		content, used = e.semantic(a, b, opts), types.OverlapSemantic
	case types.OverlapSyntactic:
		content, used = e.syntactic(a, opts), types.OverlapSyntactic
	case types.OverlapSize:
		content, used = e.sizeBased(a, opts), types.OverlapSize
	case types.OverlapHybrid:
		content = e.semantic(a, b, opts)
		used = types.OverlapSemantic
		if content == "" {
			content, used = e.sizeBased(a, opts), types.OverlapSize
		}
		used = markHybrid(used)
	default: // auto: first applicable wins
		switch {
		case a.IsStructural() && b.IsStructural() && Adjacent(a, b):
			content, used = e.semantic(a, b, opts), types.OverlapSemantic
		case a.NestingLevel > 0 || b.NestingLevel > 0 || a.SignatureOnly || b.SignatureOnly:
			content, used = e.syntactic(a, opts), types.OverlapSyntactic
		}
		if content == "" {
			content, used = e.sizeBased(a, opts), types.OverlapSize
		}
	}

	if content == "" {
		return types.OverlapResult{Strategy: used}, nil
	}

	content = clampRatio(content, a.Content, opts.MaxRatio)
	if content == "" {
		return types.OverlapResult{Strategy: used}, nil
	}

	ratio := float64(len(content)) / float64(max(len(a.Content), 1))

	// Reject overlaps that would duplicate content already in the successor.
	head := b.Content
	if len(head) > len(content)*2 {
		head = head[:len(content)*2]
	}
	sim, err := e.oracle.Score(ctx, content, head)
	if err != nil {
		return types.OverlapResult{}, err
	}
	if sim >= duplicateThreshold {
		return types.OverlapResult{
			Strategy:    used,
			IsDuplicate: true,
		}, nil
	}

	return types.OverlapResult{
		Content:   content,
		LineCount: types.CountLines(content),
		Strategy:  used,
		Quality:   quality(used, ratio, opts.TargetRatio),
		Ratio:     ratio,
	}, nil
}

// AddOverlap applies overlap pairwise over chunks in line order. Forward-only:
// chunk i gains overlap metadata describing its trailing shared region; chunk
// i+1 is never mutated. The input must already be sorted by start line.
func (e *Engine) AddOverlap(ctx context.Context, chunks []types.Chunk, opts Options) ([]types.Chunk, error) {
	for i := 0; i+1 < len(chunks); i++ {
		r, err := e.Calculate(ctx, &chunks[i], &chunks[i+1], opts)
		if err != nil {
			return chunks, err
		}
		if r.IsDuplicate || r.Content == "" {
			continue
		}
		chunks[i].Overlap = &types.OverlapInfo{
			Content:   r.Content,
			LineCount: r.LineCount,
			Strategy:  string(r.Strategy),
			Quality:   r.Quality,
			Ratio:     r.Ratio,
		}
	}
	return chunks, nil
}

// Adjacent reports whether b directly follows a, allowing one separating
// blank line, or the two spans intersect.
func Adjacent(a, b *types.Chunk) bool {
	if b.StartLine <= a.EndLine {
		return b.EndLine >= a.StartLine
	}
	return b.StartLine-a.EndLine <= 2
}

// semantic scans backward from a's end for a natural boundary within the
// line and size budgets. Returns "" when no boundary lands in the window.
func (e *Engine) semantic(a, b *types.Chunk, opts Options) string {
	lines := strings.Split(a.Content, "\n")
	windowStart := len(lines) - opts.MaxLines
	if windowStart < 0 {
		windowStart = 0
	}

	boundary := -1
	for i := len(lines) - 1; i >= windowStart; i-- {
		if isNaturalBoundary(lines[i]) {
			boundary = i
			break
		}
	}
	if boundary < 0 {
		return ""
	}

	start := boundary + 1 - opts.MaxLines
	if start < 0 {
		start = 0
	}
	return trimToSize(lines[start:boundary+1], opts.MaxSize)
}

// syntactic extends backward to the minimal balanced-bracket suffix so the
// overlap is itself syntactically self-consistent.
func (e *Engine) syntactic(a *types.Chunk, opts Options) string {
	lines := strings.Split(a.Content, "\n")
	depth := 0
	for k := 1; k <= opts.MaxLines && k <= len(lines); k++ {
		line := lines[len(lines)-k]
		depth += strings.Count(line, "{") + strings.Count(line, "(") + strings.Count(line, "[")
		depth -= strings.Count(line, "}") + strings.Count(line, ")") + strings.Count(line, "]")
		if depth == 0 {
			return trimToSize(lines[len(lines)-k:], opts.MaxSize)
		}
	}
	return ""
}

// sizeBased takes a fixed trailing slice bounded by lines and characters.
func (e *Engine) sizeBased(a *types.Chunk, opts Options) string {
	lines := strings.Split(a.Content, "\n")
	start := len(lines) - opts.MaxLines
	if start < 0 {
		start = 0
	}
	return trimToSize(lines[start:], opts.MaxSize)
}

// trimToSize drops whole lines from the front until the joined slice fits.
func trimToSize(lines []string, maxSize int) string {
	for len(lines) > 0 {
		joined := strings.Join(lines, "\n")
		if len(joined) <= maxSize {
			return joined
		}
		lines = lines[1:]
	}
	return ""
}

// clampRatio drops leading lines until the overlap-to-chunk ratio fits.
func clampRatio(content, chunkContent string, maxRatio float64) string {
	total := len(chunkContent)
	if total == 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	for len(lines) > 0 {
		joined := strings.Join(lines, "\n")
		if float64(len(joined))/float64(total) <= maxRatio {
			return joined
		}
		lines = lines[1:]
	}
	return ""
}

// isNaturalBoundary reports whether a line is a clean stopping point: a
// blank line, a depth-zero closing brace, or a statement end.
func isNaturalBoundary(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return true
	}
	if trimmed == "}" || trimmed == "};" || trimmed == "end" {
		return true
	}
	return strings.HasSuffix(trimmed, ";")
}

// quality combines the boundary-type score with how close the realized
// ratio lands to the target.
func quality(strategy types.OverlapStrategy, ratio, target float64) float64 {
	var boundaryScore float64
	switch strategy {
	case types.OverlapSemantic, "hybrid-semantic":
		boundaryScore = 1.0
	case types.OverlapSyntactic:
		boundaryScore = 0.8
	default:
		boundaryScore = 0.5
	}

	closeness := 1.0
	if target > 0 {
		closeness -= abs(ratio-target) / max64(target, 1-target)
		if closeness < 0 {
			closeness = 0
		}
	}

	q := 0.6*boundaryScore + 0.4*closeness
	if q > 1 {
		q = 1
	}
	return q
}

func markHybrid(s types.OverlapStrategy) types.OverlapStrategy {
	if s == types.OverlapSemantic {
		return "hybrid-semantic"
	}
	return "hybrid-size"
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func max64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

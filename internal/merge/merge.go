// Package merge consolidates small or near-identical adjacent chunks so the
// final chunk stream stays within size bounds without fragmenting related
// code across embeddings.
package merge

import (
	"context"
	"strings"

	"github.com/dshills/codechunk-mcp/internal/score"
	"github.com/dshills/codechunk-mcp/pkg/types"
)

// groupThreshold is the similarity above which adjacent chunks join the
// same merge group during the intelligent pass.
const groupThreshold = 0.6

// Oracle scores text similarity in [0, 1].
type Oracle interface {
	Score(ctx context.Context, a, b string) (float64, error)
}

// Merger decides and performs chunk consolidation.
type Merger struct {
	oracle Oracle
}

// New creates a merger using the given similarity oracle.
func New(oracle Oracle) *Merger {
	return &Merger{oracle: oracle}
}

// IsDuplicate reports whether two chunks carry identical content or cover
// the identical line span. Content equality uses the content hash.
func IsDuplicate(a, b *types.Chunk) bool {
	if a.ContentHash != "" && a.ContentHash == b.ContentHash {
		return true
	}
	if a.Content == b.Content {
		return true
	}
	return a.StartLine == b.StartLine && a.EndLine == b.EndLine
}

// AdjacentOrOverlapping reports whether b directly follows a or the two
// line spans intersect.
func AdjacentOrOverlapping(a, b *types.Chunk) bool {
	if b.StartLine == a.EndLine+1 {
		return true
	}
	return b.StartLine <= a.EndLine && b.EndLine >= a.StartLine
}

// CanMerge reports whether the pair is both similar enough and positionally
// adjacent or overlapping. Similarity alone never merges distant chunks.
func (m *Merger) CanMerge(ctx context.Context, a, b *types.Chunk, threshold float64) (bool, error) {
	if !AdjacentOrOverlapping(a, b) {
		return false, nil
	}
	sim, err := m.oracle.Score(ctx, a.Content, b.Content)
	if err != nil {
		return false, err
	}
	return sim >= threshold, nil
}

// MergeTwo combines two chunks into one covering the union of their spans.
// When the spans overlap, the duplicated trailing lines of a are spliced
// out before concatenation so no line appears twice.
func MergeTwo(a, b types.Chunk) types.Chunk {
	content := a.Content
	overlapLines := a.StartLine + a.LineCount - b.StartLine
	if overlapLines > 0 {
		content = dropTrailingLines(content, overlapLines)
	}
	if content != "" && b.Content != "" {
		content += "\n"
	}
	content += b.Content

	typ := a.Type
	if typ != b.Type {
		typ = types.ChunkGeneric
	}

	merged := types.Chunk{
		Content:      content,
		StartLine:    minInt(a.StartLine, b.StartLine),
		EndLine:      maxInt(a.EndLine, b.EndLine),
		Language:     a.Language,
		FilePath:     a.FilePath,
		Type:         typ,
		NestingLevel: minInt(a.NestingLevel, b.NestingLevel),
		Fallback:     a.Fallback || b.Fallback,
	}
	merged.Complexity = score.Score(merged.Content, merged.Type)
	merged.Finalize()
	return merged
}

// IntelligentMerge greedily groups chunks left to right: a chunk joins the
// current group while its similarity to the group's last member stays at or
// above the threshold and the combined size stays under maxSize. Each group
// collapses to a single chunk. Single pass, order preserved.
func (m *Merger) IntelligentMerge(ctx context.Context, chunks []types.Chunk, maxSize int) ([]types.Chunk, error) {
	if len(chunks) < 2 {
		return chunks, nil
	}

	out := make([]types.Chunk, 0, len(chunks))
	current := chunks[0]
	// Similarity compares against the last member, not the accumulated
	// content. Nothing is dropped: identical neighbors collapse through
	// MergeTwo's splice, or stand when the size cap blocks the join.
	last := chunks[0]

	for i := 1; i < len(chunks); i++ {
		next := chunks[i]

		join := false
		if len(current.Content)+len(next.Content) <= maxSize {
			sim, err := m.oracle.Score(ctx, last.Content, next.Content)
			if err != nil {
				return chunks, err
			}
			join = sim >= groupThreshold
		}

		if join {
			current = MergeTwo(current, next)
			last = next
			continue
		}
		out = append(out, current)
		current = next
		last = next
	}

	return append(out, current), nil
}

// ShouldCreateOverlap reports whether a candidate overlap region is worth
// keeping against already-emitted chunks. Exact duplicates are checked by
// hash before paying for a similarity call.
func (m *Merger) ShouldCreateOverlap(ctx context.Context, candidate *types.Chunk, existing []types.Chunk, threshold float64) (bool, error) {
	for i := range existing {
		if IsDuplicate(candidate, &existing[i]) {
			return false, nil
		}
		sim, err := m.oracle.Score(ctx, candidate.Content, existing[i].Content)
		if err != nil {
			return false, err
		}
		if sim >= threshold {
			return false, nil
		}
	}
	return true, nil
}

// dropTrailingLines removes the last n lines from content.
func dropTrailingLines(content string, n int) string {
	if n <= 0 {
		return content
	}
	end := len(content)
	for i := 0; i < n; i++ {
		idx := strings.LastIndexByte(content[:end], '\n')
		if idx < 0 {
			return ""
		}
		end = idx
	}
	return content[:end]
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

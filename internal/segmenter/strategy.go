package segmenter

import (
	"context"
	"sort"

	"github.com/dshills/codechunk-mcp/pkg/types"
)

// Context carries one segmentation request through the strategy pipeline.
type Context struct {
	Ctx      context.Context
	Content  string
	FilePath string
	Language string
	Config   types.SegmentationConfig
}

// Strategy is one way of splitting content into chunks. Strategies declare
// what they can handle; the registry consults them in priority order and
// the first one to produce chunks wins.
//
// Execute returns types.ErrParseUnavailable (wrapped or bare) to signal a
// recoverable failure: the pipeline moves on to the next strategy. Any other
// error aborts the pipeline into whole-file fallback.
type Strategy interface {
	Name() string
	Priority() int
	Languages() []string
	CanHandle(sc *Context) bool
	Execute(sc *Context) ([]types.Chunk, error)
}

// Registry holds strategies sorted by ascending priority. Lower priority
// values run first.
type Registry struct {
	strategies []Strategy
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a strategy, keeping the priority order stable for equal
// priorities.
func (r *Registry) Register(s Strategy) {
	r.strategies = append(r.strategies, s)
	sort.SliceStable(r.strategies, func(i, j int) bool {
		return r.strategies[i].Priority() < r.strategies[j].Priority()
	})
}

// Candidates returns the strategies eligible for the request, in priority
// order. Eligibility is language match plus the strategy's own CanHandle.
func (r *Registry) Candidates(sc *Context) []Strategy {
	var out []Strategy
	for _, s := range r.strategies {
		if !languageMatch(s.Languages(), sc.Language) {
			continue
		}
		if !s.CanHandle(sc) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Strategies returns all registered strategies in priority order.
func (r *Registry) Strategies() []Strategy {
	return r.strategies
}

func languageMatch(supported []string, language string) bool {
	for _, l := range supported {
		if l == "*" || l == language {
			return true
		}
	}
	return false
}

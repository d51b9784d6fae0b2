package segmenter

import (
	"context"
	"fmt"

	"github.com/dshills/codechunk-mcp/internal/extractor"
	"github.com/dshills/codechunk-mcp/internal/parser"
	"github.com/dshills/codechunk-mcp/pkg/types"
)

// astStrategy extracts structural chunks from a syntax tree. Highest
// precedence: when a grammar exists for the language and the file is within
// the parse budget, structure beats heuristics.
type astStrategy struct {
	svc parser.Service
}

func newASTStrategy(svc parser.Service) *astStrategy {
	return &astStrategy{svc: svc}
}

func (s *astStrategy) Name() string        { return "ast" }
func (s *astStrategy) Priority() int       { return 10 }
func (s *astStrategy) Languages() []string { return []string{"*"} }

func (s *astStrategy) CanHandle(sc *Context) bool {
	if !s.svc.SupportsAST(sc.Language) {
		return false
	}
	return sc.Config.MaxFileSize <= 0 || len(sc.Content) <= sc.Config.MaxFileSize
}

func (s *astStrategy) Execute(sc *Context) ([]types.Chunk, error) {
	ctx := sc.Ctx
	if sc.Config.MaxParseTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, sc.Config.MaxParseTime)
		defer cancel()
	}

	tree, err := s.svc.Parse(ctx, []byte(sc.Content), sc.Language)
	if err != nil {
		// Recoverable: the next strategy gets its turn.
		return nil, fmt.Errorf("%w: %v", types.ErrParseUnavailable, err)
	}
	defer tree.Close()

	ext := extractor.New(sc.Config)
	return ext.Extract(tree, []byte(sc.Content), sc.FilePath, sc.Language), nil
}

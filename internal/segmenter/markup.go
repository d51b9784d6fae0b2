package segmenter

import (
	"regexp"
	"strings"

	"github.com/dshills/codechunk-mcp/internal/parser"
	"github.com/dshills/codechunk-mcp/pkg/types"
)

// markupStrategy splits markup on tag-balance boundaries. It keeps a named
// open-tag stack and cuts when the stack empties with the minimums met.
// Mismatched closers pop the nearest matching open tag searching from the
// top of the stack, so interleaved tags degrade instead of failing.
type markupStrategy struct{}

func newMarkupStrategy() *markupStrategy { return &markupStrategy{} }

func (s *markupStrategy) Name() string        { return "markup" }
func (s *markupStrategy) Priority() int       { return 20 }
func (s *markupStrategy) Languages() []string {
	return []string{"html", "xml", "vue", "svelte", "markdown"}
}

func (s *markupStrategy) CanHandle(sc *Context) bool {
	return parser.IsMarkup(sc.Language)
}

var tagPattern = regexp.MustCompile(`<(/?)([A-Za-z][A-Za-z0-9:-]*)(?:[^<>]*?)(/?)>`)

// voidTags never take a closing tag in HTML.
var voidTags = map[string]struct{}{
	"area": {}, "base": {}, "br": {}, "col": {}, "embed": {}, "hr": {},
	"img": {}, "input": {}, "link": {}, "meta": {}, "source": {},
	"track": {}, "wbr": {},
}

func (s *markupStrategy) Execute(sc *Context) ([]types.Chunk, error) {
	cfg := sc.Config
	lines := strings.Split(sc.Content, "\n")

	var chunks []types.Chunk
	var stack []string
	size := 0
	start := 0

	flush := func(end int) {
		c := buildChunk(lines, start, end, sc, types.ChunkBlock)
		if c.Content != "" {
			// Record whatever is still open so consumers see the
			// unterminated context instead of a silent failure.
			c.OpenTags = append([]string(nil), stack...)
			c.Finalize()
			chunks = append(chunks, c)
		}
		stack = stack[:0]
		size = 0
		start = end + 1
	}

	for i, line := range lines {
		if len(line) > cfg.MaxChunkSize {
			flush(i - 1)
			chunks = append(chunks, splitLine(line, i+1, sc)...)
			start = i + 1
			continue
		}
		if size+len(line)+1 > cfg.MaxChunkSize {
			flush(i - 1)
		}

		for _, m := range tagPattern.FindAllStringSubmatch(line, -1) {
			closing, name, selfClosed := m[1] == "/", strings.ToLower(m[2]), m[3] == "/"
			switch {
			case closing:
				popTag(&stack, name)
			case selfClosed:
				// No stack effect.
			default:
				if _, void := voidTags[name]; !void {
					stack = append(stack, name)
				}
			}
		}
		size += len(line) + 1
		pending := i - start + 1

		switch {
		case len(stack) == 0 && size >= cfg.MinChunkSize && pending >= cfg.MinChunkLines:
			flush(i)
		case pending >= cfg.MaxChunkLines:
			flush(i)
		case cfg.ImbalanceTolerance > 0 && len(stack) > cfg.ImbalanceTolerance:
			flush(i)
		}
	}
	if start < len(lines) {
		flush(len(lines) - 1)
	}

	return chunks, nil
}

// popTag removes the nearest matching open tag, searching top-down. An
// unmatched closer is ignored.
func popTag(stack *[]string, name string) {
	s := *stack
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == name {
			*stack = append(s[:i], s[i+1:]...)
			return
		}
	}
}

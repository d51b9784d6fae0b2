// Package score implements the pure complexity scoring used to enrich and
// validate chunks. Identical (content, type) inputs always yield an identical
// score; cache correctness depends on that determinism.
package score

import (
	"math"
	"strings"

	"github.com/dshills/codechunk-mcp/pkg/types"
)

const (
	// baseLineCap bounds the lineCount/10 base term.
	baseLineCap = 10.0
)

// controlKeywords are counted as control-flow complexity across languages.
var controlKeywords = []string{
	"if", "else", "for", "while", "switch", "case", "catch", "try",
	"select", "defer", "go", "return", "break", "continue", "match",
}

// definitionKeywords are counted as definition density.
var definitionKeywords = []string{
	"func", "function", "def", "class", "type", "interface", "struct",
	"enum", "impl", "trait", "module", "namespace",
}

// typeWeights tunes keyword contribution per chunk type. Class-like chunks
// weight definitions higher; function-like chunks weight control flow higher.
type weights struct {
	control    float64
	definition float64
	bracket    float64
}

func weightsFor(chunkType types.ChunkType) weights {
	switch chunkType {
	case types.ChunkFunction, types.ChunkMethod:
		return weights{control: 1.5, definition: 0.5, bracket: 0.2}
	case types.ChunkClass, types.ChunkInterface, types.ChunkModule:
		return weights{control: 0.8, definition: 1.5, bracket: 0.2}
	case types.ChunkTypeDecl, types.ChunkEnum, types.ChunkVariable:
		return weights{control: 0.5, definition: 1.0, bracket: 0.1}
	default:
		return weights{control: 1.0, definition: 1.0, bracket: 0.15}
	}
}

// Score computes the complexity of content for a given chunk type. Pure and
// deterministic; the result is a non-negative integer.
func Score(content string, chunkType types.ChunkType) int {
	if strings.TrimSpace(content) == "" {
		return 0
	}

	lines := strings.Split(content, "\n")
	lineCount := float64(len(lines))

	base := math.Min(lineCount/10.0, baseLineCap)

	w := weightsFor(chunkType)
	tokens := tokenize(content)

	var control, definition float64
	for _, tok := range tokens {
		if containsWord(controlKeywords, tok) {
			control++
		}
		if containsWord(definitionKeywords, tok) {
			definition++
		}
	}

	brackets := float64(strings.Count(content, "{") + strings.Count(content, "}") +
		strings.Count(content, "(") + strings.Count(content, ")"))

	lengthTerm := math.Log10(float64(len(content)) + 1)

	raw := base +
		control*w.control +
		definition*w.definition +
		brackets*w.bracket +
		lengthTerm

	// Penalize content dominated by blank or comment lines.
	blank, comment := 0, 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			blank++
		case isCommentLine(trimmed):
			comment++
		}
	}
	if lineCount > 0 {
		if float64(blank)/lineCount > 0.3 {
			raw *= 0.8
		}
		if float64(comment)/lineCount > 0.5 {
			raw *= 0.7
		}
	}

	if raw < 0 {
		raw = 0
	}
	return int(math.Round(raw))
}

// tokenize splits content on non-identifier characters.
func tokenize(content string) []string {
	return strings.FieldsFunc(content, func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			return false
		case r >= '0' && r <= '9':
			return false
		case r == '_':
			return false
		}
		return true
	})
}

func containsWord(words []string, tok string) bool {
	for _, w := range words {
		if tok == w {
			return true
		}
	}
	return false
}

func isCommentLine(trimmed string) bool {
	return strings.HasPrefix(trimmed, "//") ||
		strings.HasPrefix(trimmed, "#") ||
		strings.HasPrefix(trimmed, "/*") ||
		strings.HasPrefix(trimmed, "*") ||
		strings.HasPrefix(trimmed, "--")
}

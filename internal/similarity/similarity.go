// Package similarity implements the text similarity oracle consumed by the
// overlap engine and chunk merger. The oracle is stateless and safe for
// concurrent use across file pipelines.
package similarity

import (
	"context"
	"strings"
	"unicode"
)

// Oracle scores how similar two pieces of text are. Scores are in [0, 1],
// symmetric, and reflexive (identical inputs score 1.0). No triangle
// inequality is guaranteed.
type Oracle struct{}

// New returns a similarity oracle.
func New() *Oracle {
	return &Oracle{}
}

// Score computes token-set similarity between a and b. The context is
// honored for cancellation since callers may issue many comparisons per run.
func (o *Oracle) Score(ctx context.Context, a, b string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return Jaccard(a, b), nil
}

// Jaccard computes the Jaccard index over identifier-style tokens, weighted
// by a length-balance factor so a short fragment embedded in a long text does
// not score as near-identical.
func Jaccard(a, b string) float64 {
	if a == b {
		return 1.0
	}

	ta := tokenSet(a)
	tb := tokenSet(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 1.0
	}
	if len(ta) == 0 || len(tb) == 0 {
		return 0.0
	}

	intersection := 0
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			intersection++
		}
	}
	union := len(ta) + len(tb) - intersection
	jaccard := float64(intersection) / float64(union)

	// Length balance: texts of very different sizes cannot be near-identical
	// even with full token overlap.
	la, lb := len(a), len(b)
	shorter, longer := la, lb
	if shorter > longer {
		shorter, longer = longer, shorter
	}
	balance := float64(shorter) / float64(longer)

	return jaccard * (0.5 + 0.5*balance)
}

// tokenSet lowercases and splits text into identifier tokens.
func tokenSet(text string) map[string]struct{} {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[strings.ToLower(f)] = struct{}{}
	}
	return set
}

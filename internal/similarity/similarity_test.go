package similarity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore_Reflexive(t *testing.T) {
	o := New()
	inputs := []string{
		"",
		"func main() {}",
		"the quick brown fox",
	}
	for _, in := range inputs {
		got, err := o.Score(context.Background(), in, in)
		require.NoError(t, err)
		assert.Equal(t, 1.0, got)
	}
}

func TestScore_Symmetric(t *testing.T) {
	o := New()
	a := "func add(a, b int) int { return a + b }"
	b := "func sub(a, b int) int { return a - b }"

	ab, err := o.Score(context.Background(), a, b)
	require.NoError(t, err)
	ba, err := o.Score(context.Background(), b, a)
	require.NoError(t, err)
	assert.Equal(t, ab, ba)
}

func TestScore_Bounds(t *testing.T) {
	o := New()
	pairs := [][2]string{
		{"alpha beta", "gamma delta"},
		{"alpha beta", "alpha beta gamma"},
		{"", "something"},
		{"x", ""},
	}
	for _, p := range pairs {
		got, err := o.Score(context.Background(), p[0], p[1])
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 1.0)
	}
}

func TestScore_DisjointTokensScoreZero(t *testing.T) {
	o := New()
	got, err := o.Score(context.Background(), "alpha beta gamma", "delta epsilon zeta")
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestScore_NearIdenticalScoresHigh(t *testing.T) {
	o := New()
	a := `func process(items []string) error {
	for _, item := range items {
		handle(item, 10)
	}
	return nil
}`
	// Same structure, one literal changed.
	b := `func process(items []string) error {
	for _, item := range items {
		handle(item, 20)
	}
	return nil
}`
	got, err := o.Score(context.Background(), a, b)
	require.NoError(t, err)
	assert.Greater(t, got, 0.6)
}

func TestScore_CanceledContext(t *testing.T) {
	o := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := o.Score(ctx, "a", "b")
	assert.Error(t, err)
}

func TestJaccard_EmptyVersusNonEmpty(t *testing.T) {
	assert.Equal(t, 0.0, Jaccard("", "content"))
	assert.Equal(t, 1.0, Jaccard("", ""))
}

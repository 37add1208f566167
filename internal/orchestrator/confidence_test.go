package orchestrator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biodoia/intellidoc/internal/providers"
)

func response(provider, text string) *providers.ModelResponse {
	return &providers.ModelResponse{Provider: provider, Text: text}
}

func TestScore_EmptySet(t *testing.T) {
	scorer := NewScorer(DefaultScorerConfig())
	assert.Equal(t, 0.0, scorer.Score(nil, 3))
}

func TestScore_AlwaysInUnitInterval(t *testing.T) {
	scorer := NewScorer(DefaultScorerConfig())

	cases := [][]*providers.ModelResponse{
		{response("a", "x")},
		{response("a", ""), response("b", "")},
		{response("a", strings.Repeat("word ", 500)), response("b", "short")},
		{response("a", "same text"), response("b", "same text"), response("c", "same text")},
	}
	for _, responses := range cases {
		score := scorer.Score(responses, 4)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	}
}

func TestScore_SingleResponseUsesNeutralAgreement(t *testing.T) {
	scorer := NewScorer(DefaultScorerConfig())
	text := strings.Repeat("A thorough explanation of the function. ", 10)

	lone := scorer.Score([]*providers.ModelResponse{response("a", text)}, 1)
	pair := scorer.Score([]*providers.ModelResponse{response("a", text), response("b", text)}, 2)

	// Identical texts agree fully; a lone response only gets the neutral
	// default, so corroboration must raise the score.
	assert.Less(t, lone, pair)
	assert.Greater(t, lone, 0.0)
}

func TestScore_PartialFailureMonotonicity(t *testing.T) {
	scorer := NewScorer(DefaultScorerConfig())
	text := strings.Repeat("Consistent documentation output for the helper. ", 8)

	const totalEnabled = 4
	var prev float64
	for k := 1; k <= totalEnabled; k++ {
		responses := make([]*providers.ModelResponse, k)
		for i := range responses {
			responses[i] = response(string(rune('a'+i)), text)
		}
		score := scorer.Score(responses, totalEnabled)
		assert.GreaterOrEqual(t, score, prev,
			"confidence with %d successes must not drop below %d successes", k, k-1)
		prev = score
	}
}

func TestScore_PartialFailurePenalized(t *testing.T) {
	scorer := NewScorer(DefaultScorerConfig())
	text := strings.Repeat("Stable identical answer from every model. ", 8)
	responses := []*providers.ModelResponse{response("a", text), response("b", text)}

	full := scorer.Score(responses, 2)
	partial := scorer.Score(responses, 4)
	assert.Less(t, partial, full)
}

func TestQuality_Components(t *testing.T) {
	scorer := NewScorer(DefaultScorerConfig())

	tests := []struct {
		name string
		a    string
		b    string
	}{
		{
			name: "longer beats shorter",
			a:    strings.Repeat("Detailed explanation of behavior. ", 10),
			b:    "Does stuff.",
		},
		{
			name: "structured beats flat",
			a:    "Summary.\n\n## Parameters\n\n- x: input\n\n## Returns\n\nA value.\n\n## Examples\n\nf(1)" + strings.Repeat(" pad", 60),
			b:    "Summary only with no sections at all." + strings.Repeat(" pad", 60),
		},
		{
			name: "complete beats truncated",
			a:    strings.Repeat("Full sentence output here. ", 12),
			b:    strings.TrimSpace(strings.Repeat("Full sentence output here. ", 12)) + "...",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Greater(t, scorer.Quality(tt.a), scorer.Quality(tt.b))
		})
	}
}

func TestQuality_UnclosedCodeFenceIsTruncation(t *testing.T) {
	scorer := NewScorer(DefaultScorerConfig())
	complete := "## Examples\n\n```go\nf()\n```\n" + strings.Repeat("word ", 80)
	truncated := "## Examples\n\n```go\nf()\n" + strings.Repeat("word ", 80)

	assert.Greater(t, scorer.Quality(complete), scorer.Quality(truncated))
}

func TestPairwiseAgreement(t *testing.T) {
	identical := pairwiseAgreement([]string{"the same words", "the same words"})
	assert.InDelta(t, 1.0, identical, 1e-9)

	disjoint := pairwiseAgreement([]string{"alpha beta gamma", "delta epsilon zeta"})
	assert.Less(t, disjoint, 0.2)

	partial := pairwiseAgreement([]string{
		"computes the factorial of n recursively",
		"computes the factorial of n iteratively",
	})
	require.Greater(t, partial, disjoint)
	require.Less(t, partial, identical)
}

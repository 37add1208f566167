package orchestrator

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Two plain texts of equal length, no structure and no truncation have
// identical quality scores, leaving only the lower tie-break levels.
var (
	votingTextA = strings.TrimSpace(strings.Repeat("Adds the given numbers together. ", 12))
	votingTextB = strings.TrimSpace(strings.Repeat("Sums the provided values as one. ", 12))
)

func TestVoting_SelectsWinnerVerbatim(t *testing.T) {
	a := newMockProvider("a", "Short.")
	b := newMockProvider("b", votingTextB)
	o := newTestOrchestrator(t, StrategyVoting, a, b)

	result, err := o.GenerateDocumentation(context.Background(), NewTask("def f(): pass", "python"))
	require.NoError(t, err)

	// Higher quality wins; no merge touches the text.
	assert.Equal(t, votingTextB, result.Documentation)
	// All successful candidates still contribute to confidence.
	assert.Len(t, result.Contributing, 2)
}

func TestVoting_TieBreaksOnLatency(t *testing.T) {
	a := newMockProvider("a", votingTextA)
	a.latency = 80 * time.Millisecond
	b := newMockProvider("b", votingTextB)
	b.latency = 20 * time.Millisecond
	o := newTestOrchestrator(t, StrategyVoting, a, b)

	result, err := o.GenerateDocumentation(context.Background(), NewTask("def f(): pass", "python"))
	require.NoError(t, err)

	assert.Equal(t, votingTextB, result.Documentation)
}

func TestVoting_TieBreaksOnConfigurationOrder(t *testing.T) {
	a := newMockProvider("a", votingTextA)
	a.latency = 20 * time.Millisecond
	b := newMockProvider("b", votingTextB)
	b.latency = 20 * time.Millisecond
	o := newTestOrchestrator(t, StrategyVoting, a, b)

	// Repeated runs must keep resolving to the first configured provider,
	// regardless of goroutine completion order.
	for i := 0; i < 5; i++ {
		result, err := o.GenerateDocumentation(context.Background(), NewTask("def f(): pass", "python"))
		require.NoError(t, err)
		assert.Equal(t, votingTextA, result.Documentation)
	}
}

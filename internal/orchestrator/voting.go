package orchestrator

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/biodoia/intellidoc/internal/providers"
)

// runVoting generates independently from the identical prompt everywhere
// and selects the single highest-quality response verbatim. The order is
// total and deterministic: quality score descending, then latency
// ascending, then provider configuration order. Never arrival order.
func (o *Orchestrator) runVoting(ctx context.Context, task *DocumentationTask, enabled []providers.Provider) (*strategyOutcome, error) {
	req := buildRequest(task)

	calls := make([]providerCall, len(enabled))
	for i, p := range enabled {
		calls[i] = providerCall{key: p.Name(), provider: p, req: req}
	}

	results := o.fanOut(ctx, calls)

	var (
		successes []*providers.ModelResponse
		failures  []error
	)
	for _, p := range enabled {
		res := results[p.Name()]
		if res.err != nil {
			failures = append(failures, res.err)
			continue
		}
		successes = append(successes, res.resp)
	}

	if len(successes) == 0 {
		return nil, &StrategyError{Strategy: StrategyVoting, Failures: failures}
	}

	// successes is already in configuration order, so keeping the
	// incumbent on a full tie resolves the last tie-break level.
	winner := successes[0]
	winnerQuality := o.scorer.Quality(winner.Text)
	for _, cand := range successes[1:] {
		q := o.scorer.Quality(cand.Text)
		if q > winnerQuality || (q == winnerQuality && cand.Latency < winner.Latency) {
			winner = cand
			winnerQuality = q
		}
	}

	log.Debug().
		Str("winner", winner.Provider).
		Float64("quality", winnerQuality).
		Int("candidates", len(successes)).
		Msg("Voting selected a winner")

	return &strategyOutcome{
		text:      winner.Text,
		responses: successes,
	}, nil
}

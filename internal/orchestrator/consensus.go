package orchestrator

import (
	"context"

	"github.com/biodoia/intellidoc/internal/providers"
)

// runConsensus sends the identical prompt to every enabled provider and
// merges all successful answers. Partial success is fine; one survivor is
// enough.
func (o *Orchestrator) runConsensus(ctx context.Context, task *DocumentationTask, enabled []providers.Provider) (*strategyOutcome, error) {
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
		return nil, &StrategyError{Strategy: StrategyConsensus, Failures: failures}
	}

	candidates := make([]Candidate, len(successes))
	for i, r := range successes {
		candidates[i] = Candidate{Provider: r.Provider, Text: r.Text, Weight: 1.0}
	}

	return &strategyOutcome{
		text:      Merge(candidates),
		responses: successes,
	}, nil
}

package orchestrator

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/biodoia/intellidoc/internal/providers"
)

// primaryWeight biases the review merge so the primary draft's structure
// is retained; critiques act as edits, not independent candidates.
const primaryWeight = 2.0

// runReview has the primary provider draft the documentation, the
// remaining providers critique it, and folds the critiques back into the
// draft. If the primary fails, the first successful remaining response is
// promoted to primary and the critique pass is retried once against it.
func (o *Orchestrator) runReview(ctx context.Context, task *DocumentationTask, enabled []providers.Provider) (*strategyOutcome, error) {
	primary := o.pickPrimary(enabled)
	var failures []error
	failed := make(map[string]bool)

	draft, err := o.callProvider(ctx, providerCall{
		key:      primary.Name(),
		provider: primary,
		req:      buildRequest(task),
	})
	if err != nil {
		failures = append(failures, err)
		failed[primary.Name()] = true
		log.Debug().
			Err(err).
			Str("primary", primary.Name()).
			Msg("Review primary failed, promoting a fallback")

		draft, primary, err = o.promoteFallback(ctx, task, enabled, failed, &failures)
		if err != nil {
			return nil, err
		}
	}

	// A provider that already failed this call stays failed: it is never
	// asked again as a reviewer.
	reviewers := reviewersFor(enabled, primary.Name(), failed)
	critiques := o.critiquePass(ctx, task, draft.Text, reviewers, &failures)

	responses := append([]*providers.ModelResponse{draft}, critiques...)

	// A draft with no surviving critiques passes through verbatim.
	if len(critiques) == 0 {
		return &strategyOutcome{text: draft.Text, responses: responses}, nil
	}

	candidates := make([]Candidate, 0, len(responses))
	candidates = append(candidates, Candidate{Provider: draft.Provider, Text: draft.Text, Weight: primaryWeight})
	for _, c := range critiques {
		candidates = append(candidates, Candidate{Provider: c.Provider, Text: c.Text, Weight: 1.0})
	}

	return &strategyOutcome{
		text:      Merge(candidates),
		responses: responses,
	}, nil
}

// promoteFallback runs the draft prompt against the not-yet-failed
// providers and promotes the first success (configuration order) to
// primary, marking the rest failed.
func (o *Orchestrator) promoteFallback(ctx context.Context, task *DocumentationTask, enabled []providers.Provider, failed map[string]bool, failures *[]error) (*providers.ModelResponse, providers.Provider, error) {
	remaining := reviewersFor(enabled, "", failed)
	if len(remaining) == 0 {
		return nil, nil, &StrategyError{Strategy: StrategyReview, Failures: *failures}
	}

	req := buildRequest(task)
	calls := make([]providerCall, len(remaining))
	for i, p := range remaining {
		calls[i] = providerCall{key: p.Name(), provider: p, req: req}
	}
	results := o.fanOut(ctx, calls)

	var promoted providers.Provider
	var draft *providers.ModelResponse
	for _, p := range remaining {
		res := results[p.Name()]
		if res.err != nil {
			failed[p.Name()] = true
			*failures = append(*failures, res.err)
			continue
		}
		if promoted == nil {
			promoted = p
			draft = res.resp
		}
	}

	if promoted == nil {
		return nil, nil, &StrategyError{Strategy: StrategyReview, Failures: *failures}
	}

	log.Info().
		Str("primary", promoted.Name()).
		Msg("Promoted fallback primary for review")
	return draft, promoted, nil
}

// critiquePass fans the draft out to the reviewers. Reviewer failures are
// tolerated; the draft alone satisfies the strategy's minimum.
func (o *Orchestrator) critiquePass(ctx context.Context, task *DocumentationTask, draft string, reviewers []providers.Provider, failures *[]error) []*providers.ModelResponse {
	if len(reviewers) == 0 {
		return nil
	}

	req := buildReviewRequest(task, draft)
	calls := make([]providerCall, len(reviewers))
	for i, p := range reviewers {
		calls[i] = providerCall{key: p.Name(), provider: p, req: req}
	}
	results := o.fanOut(ctx, calls)

	var critiques []*providers.ModelResponse
	for _, p := range reviewers {
		res := results[p.Name()]
		if res.err != nil {
			*failures = append(*failures, res.err)
			continue
		}
		critiques = append(critiques, res.resp)
	}
	return critiques
}

// pickPrimary returns the configured primary when it is enabled, else the
// first enabled provider.
func (o *Orchestrator) pickPrimary(enabled []providers.Provider) providers.Provider {
	if o.primary != "" {
		for _, p := range enabled {
			if p.Name() == o.primary {
				return p
			}
		}
		log.Warn().
			Str("primary", o.primary).
			Msg("Configured review primary is not enabled, using first provider")
	}
	return enabled[0]
}

// reviewersFor filters the enabled providers down to those that are
// neither the named primary nor already failed this call.
func reviewersFor(enabled []providers.Provider, primary string, failed map[string]bool) []providers.Provider {
	out := make([]providers.Provider, 0, len(enabled))
	for _, p := range enabled {
		if p.Name() != primary && !failed[p.Name()] {
			out = append(out, p)
		}
	}
	return out
}

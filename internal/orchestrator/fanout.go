package orchestrator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/biodoia/intellidoc/internal/providers"
)

// providerCall is one outbound request within a fan-out. The key is
// unique per call: the provider name for identical-prompt strategies, a
// role-qualified key when the same provider serves several roles.
type providerCall struct {
	key      string
	provider providers.Provider
	req      *providers.GenerateRequest
}

// callResult is the terminal state of one providerCall.
type callResult struct {
	resp *providers.ModelResponse
	err  error
}

// fanOut runs every call concurrently through the retry policy and waits
// for all of them to complete or be cancelled. The result map is keyed by
// call key, never by completion order, so downstream assembly is
// reproducible regardless of which provider answers first. No goroutine
// outlives the call.
func (o *Orchestrator) fanOut(ctx context.Context, calls []providerCall) map[string]callResult {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = make(map[string]callResult, len(calls))
	)

	for _, call := range calls {
		wg.Add(1)
		go func(call providerCall) {
			defer wg.Done()

			resp, err := o.callProvider(ctx, call)

			mu.Lock()
			results[call.key] = callResult{resp: resp, err: err}
			mu.Unlock()
		}(call)
	}

	wg.Wait()
	return results
}

// callProvider executes a single provider call through the retry policy,
// stamping the attempt count onto the surfaced error.
func (o *Orchestrator) callProvider(ctx context.Context, call providerCall) (*providers.ModelResponse, error) {
	var (
		resp     *providers.ModelResponse
		attempts int
	)

	start := time.Now()
	err := o.retry.Do(ctx, func() error {
		attempts++
		r, callErr := call.provider.Generate(ctx, call.req)
		if callErr != nil {
			return callErr
		}
		resp = r
		return nil
	})
	latency := time.Since(start)

	name := call.provider.Name()
	if err != nil {
		var pe *providers.ProviderError
		if errors.As(err, &pe) {
			pe.Attempts = attempts
		}
		o.registry.RecordFailure(name)
		if o.collector != nil {
			o.collector.RecordProviderCall(name, false, latency, 0)
		}
		log.Debug().
			Err(err).
			Str("provider", name).
			Int("attempts", attempts).
			Msg("Provider call failed")
		return nil, err
	}

	o.registry.RecordSuccess(name, resp.Latency)
	if o.collector != nil {
		o.collector.RecordProviderCall(name, true, latency, resp.TokensUsed)
	}
	log.Debug().
		Str("provider", name).
		Int("tokens", resp.TokensUsed).
		Dur("latency", resp.Latency).
		Msg("Provider call succeeded")
	return resp, nil
}

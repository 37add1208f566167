// Package orchestrator is the multi-model collaboration core: it fans a
// documentation task out to several AI providers concurrently, combines
// their answers according to the active strategy, and attaches a
// deterministic confidence estimate to the result.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/biodoia/intellidoc/internal/providers"
	"github.com/biodoia/intellidoc/internal/stats"
	"github.com/biodoia/intellidoc/pkg/resilience"
)

// Orchestrator owns the provider set and the active strategy. Constructed
// once and reused across tasks so adapters keep their connections.
type Orchestrator struct {
	registry    *providers.Registry
	strategy    Strategy
	retry       *resilience.Retry
	scorer      *Scorer
	collector   *stats.Collector
	primary     string
	taskTimeout time.Duration
}

// Option configures an Orchestrator at construction time.
type Option func(*Orchestrator)

// WithTaskTimeout bounds one documentation call end to end. When it
// elapses, outstanding provider calls are cancelled and the strategy
// proceeds with whatever succeeded.
func WithTaskTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.taskTimeout = d }
}

// WithPrimaryProvider names the review-strategy primary explicitly.
func WithPrimaryProvider(name string) Option {
	return func(o *Orchestrator) { o.primary = name }
}

// WithRetryConfig overrides the per-provider retry policy.
func WithRetryConfig(cfg resilience.Config) Option {
	return func(o *Orchestrator) { o.retry = newProviderRetry(cfg) }
}

// WithScorerConfig overrides the confidence scoring policy.
func WithScorerConfig(cfg ScorerConfig) Option {
	return func(o *Orchestrator) { o.scorer = NewScorer(cfg) }
}

// WithCollector attaches a telemetry collector.
func WithCollector(c *stats.Collector) Option {
	return func(o *Orchestrator) { o.collector = c }
}

// New validates the provider set and builds an orchestrator. At least one
// enabled, available provider must exist.
func New(registry *providers.Registry, strategy Strategy, opts ...Option) (*Orchestrator, error) {
	if !strategy.Valid() {
		return nil, fmt.Errorf("unknown collaboration strategy %q", strategy)
	}

	o := &Orchestrator{
		registry:    registry,
		strategy:    strategy,
		retry:       newProviderRetry(resilience.DefaultConfig()),
		scorer:      NewScorer(DefaultScorerConfig()),
		taskTimeout: 180 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}

	if len(registry.Enabled()) == 0 {
		return nil, ErrNoProvidersConfigured
	}
	return o, nil
}

// newProviderRetry wires the retry policy to the provider error taxonomy:
// transient kinds are retried, AuthFailure and Malformed surface
// immediately.
func newProviderRetry(cfg resilience.Config) *resilience.Retry {
	cfg.RetryableChecker = func(err error) bool {
		var pe *providers.ProviderError
		if errors.As(err, &pe) {
			return pe.Transient()
		}
		return false
	}
	return resilience.New(cfg)
}

// Strategy returns the active collaboration strategy.
func (o *Orchestrator) Strategy() Strategy {
	return o.strategy
}

// GenerateDocumentation runs one task through the active strategy and
// returns the combined result with its confidence estimate.
func (o *Orchestrator) GenerateDocumentation(ctx context.Context, task *DocumentationTask) (*CollaborationResult, error) {
	if task == nil || task.Code == "" {
		return nil, ErrEmptyTask
	}

	enabled := o.registry.Enabled()
	if len(enabled) == 0 {
		return nil, ErrNoProvidersConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, o.taskTimeout)
	defer cancel()

	requestID := uuid.NewString()
	start := time.Now()

	log.Info().
		Str("request_id", requestID).
		Str("strategy", string(o.strategy)).
		Str("language", task.Language).
		Int("providers", len(enabled)).
		Msg("Dispatching documentation task")

	outcome, err := o.dispatch(ctx, task, enabled)
	latency := time.Since(start)

	if err != nil {
		if o.collector != nil {
			o.collector.RecordTask(string(o.strategy), latency, 0, true)
		}
		var se *StrategyError
		if errors.As(err, &se) {
			log.Warn().
				Str("request_id", requestID).
				Err(err).
				Msg("Strategy produced no candidates")
			return nil, fmt.Errorf("%w: %w", ErrAllProvidersFailed, err)
		}
		return nil, err
	}

	confidence := o.scorer.Score(outcome.responses, len(enabled))

	totalTokens := 0
	for _, r := range outcome.responses {
		totalTokens += r.TokensUsed
	}

	result := &CollaborationResult{
		RequestID:     requestID,
		Documentation: outcome.text,
		Confidence:    confidence,
		Contributing:  outcome.responses,
		Strategy:      o.strategy,
		TotalLatency:  latency,
		TotalTokens:   totalTokens,
	}

	if o.collector != nil {
		o.collector.RecordTask(string(o.strategy), latency, confidence, false)
	}

	log.Info().
		Str("request_id", requestID).
		Float64("confidence", confidence).
		Int("contributing", len(result.Contributing)).
		Int("tokens", totalTokens).
		Dur("latency", latency).
		Msg("Documentation task complete")

	return result, nil
}

// dispatch is the exhaustive strategy switch. New's validation guarantees
// the default branch is unreachable.
func (o *Orchestrator) dispatch(ctx context.Context, task *DocumentationTask, enabled []providers.Provider) (*strategyOutcome, error) {
	switch o.strategy {
	case StrategyConsensus:
		return o.runConsensus(ctx, task, enabled)
	case StrategySpecialization:
		return o.runSpecialization(ctx, task, enabled)
	case StrategyReview:
		return o.runReview(ctx, task, enabled)
	case StrategyVoting:
		return o.runVoting(ctx, task, enabled)
	default:
		return nil, fmt.Errorf("unknown collaboration strategy %q", o.strategy)
	}
}

package orchestrator

import (
	"fmt"
	"strings"
)

// Sentinel errors surfaced by the orchestrator.
var (
	// ErrNoProvidersConfigured means no enabled, available provider
	// exists. A configuration mistake, not a transient outage.
	ErrNoProvidersConfigured = fmt.Errorf("no providers configured")

	// ErrAllProvidersFailed means the active strategy could not produce
	// a single candidate. Never returned on partial failure.
	ErrAllProvidersFailed = fmt.Errorf("all providers failed")

	// ErrEmptyTask means the task carries no source code.
	ErrEmptyTask = fmt.Errorf("documentation task has no source code")
)

// StrategyError reports that a strategy could not satisfy its
// minimum-success requirement. Failures holds the per-provider errors so
// callers can tell configuration mistakes from outages.
type StrategyError struct {
	Strategy Strategy
	Failures []error
}

func (e *StrategyError) Error() string {
	if len(e.Failures) == 0 {
		return fmt.Sprintf("strategy %s produced no candidates", e.Strategy)
	}
	msgs := make([]string, len(e.Failures))
	for i, err := range e.Failures {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("strategy %s produced no candidates: %s", e.Strategy, strings.Join(msgs, "; "))
}

// Unwrap exposes the per-provider failures to errors.Is / errors.As.
func (e *StrategyError) Unwrap() []error {
	return e.Failures
}

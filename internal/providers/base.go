package providers

import (
	"context"
	"fmt"
	"time"
)

// Provider is the capability surface every AI backend exposes to the
// orchestration layer. Implementations must be safe for concurrent use:
// a single adapter instance is shared across strategy fan-outs.
type Provider interface {
	// Generate produces documentation text for a single prompt.
	// Failures are reported as *ProviderError.
	Generate(ctx context.Context, req *GenerateRequest) (*ModelResponse, error)

	// Name returns the provider identifier used in results and telemetry.
	Name() string

	// Available reports whether the adapter is usable with its current
	// configuration (credential present, endpoint configured).
	Available() bool
}

// GenerateRequest is a single documentation request sent to a provider.
type GenerateRequest struct {
	// Prompt is the full instruction, including the source code.
	Prompt string

	// Context is optional background material (project notes, parsed
	// element summaries). Sent as the system message where supported.
	Context string
}

// ModelResponse is the outcome of one successful provider call. It is
// created once by the adapter and never mutated afterwards.
type ModelResponse struct {
	Provider   string        `json:"provider"`
	Model      string        `json:"model"`
	Text       string        `json:"text"`
	TokensUsed int           `json:"tokens_used"`
	Latency    time.Duration `json:"latency"`
}

// ErrorKind classifies provider failures. Transient kinds are retried by
// the resilience layer; permanent kinds surface immediately.
type ErrorKind string

const (
	ErrRateLimited ErrorKind = "rate_limited"
	ErrTimeout     ErrorKind = "timeout"
	ErrUnavailable ErrorKind = "unavailable"
	ErrAuthFailure ErrorKind = "auth_failure"
	ErrMalformed   ErrorKind = "malformed"
)

// ProviderError is the typed failure returned by every adapter. Attempts
// is stamped by the caller after retries are exhausted so that surfaced
// errors distinguish a transient outage from a configuration mistake.
type ProviderError struct {
	Provider string
	Kind     ErrorKind
	Attempts int
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Attempts > 1 {
		return fmt.Sprintf("provider %s: %s after %d attempts: %v", e.Provider, e.Kind, e.Attempts, e.Err)
	}
	return fmt.Sprintf("provider %s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Transient reports whether the failure is worth retrying.
func (e *ProviderError) Transient() bool {
	switch e.Kind {
	case ErrRateLimited, ErrTimeout, ErrUnavailable:
		return true
	}
	return false
}

// NewError builds a ProviderError with a formatted cause.
func NewError(provider string, kind ErrorKind, format string, args ...interface{}) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Kind:     kind,
		Err:      fmt.Errorf(format, args...),
	}
}

// WrapError builds a ProviderError around an underlying error.
func WrapError(provider string, kind ErrorKind, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: kind, Err: err}
}

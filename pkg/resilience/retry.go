// Package resilience provides retry logic with exponential backoff used to
// wrap individual provider calls.
package resilience

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrMaxAttemptsExceeded is joined onto the last error once retries are
// exhausted.
var ErrMaxAttemptsExceeded = errors.New("max attempts exceeded")

// Config controls retry behavior for a single wrapped call.
type Config struct {
	// MaxAttempts is the total number of tries, including the first
	// (1 = no retry).
	MaxAttempts int

	// BaseDelay is the backoff before the first retry.
	BaseDelay time.Duration

	// MaxDelay caps the exponential backoff.
	MaxDelay time.Duration

	// Multiplier is the exponential growth factor per attempt.
	Multiplier float64

	// JitterFraction adds bounded random jitter: delay ± delay*fraction.
	JitterFraction float64

	// RetryableChecker decides whether an error is worth retrying.
	// When nil every error is retried.
	RetryableChecker func(error) bool

	// OnRetry is invoked before each retry sleep.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// DefaultConfig returns the retry defaults used by the orchestrator.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    3,
		BaseDelay:      200 * time.Millisecond,
		MaxDelay:       10 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

// Retry executes functions with exponential backoff and jitter.
type Retry struct {
	config Config
	mu     sync.Mutex
	rng    *rand.Rand
}

// New creates a retry handler, normalizing out-of-range config values.
func New(config Config) *Retry {
	def := DefaultConfig()
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	if config.BaseDelay <= 0 {
		config.BaseDelay = def.BaseDelay
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = def.MaxDelay
	}
	if config.Multiplier <= 1 {
		config.Multiplier = def.Multiplier
	}
	if config.JitterFraction < 0 || config.JitterFraction > 1 {
		config.JitterFraction = def.JitterFraction
	}

	return &Retry{
		config: config,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Do executes fn until it succeeds, returns a non-retryable error, the
// attempt budget is exhausted, or the context is cancelled.
func (r *Retry) Do(ctx context.Context, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt < r.config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !r.isRetryable(err) {
			log.Debug().
				Err(err).
				Msg("Error is not retryable, stopping")
			return err
		}

		if attempt == r.config.MaxAttempts-1 {
			log.Warn().
				Err(err).
				Int("attempts", attempt+1).
				Msg("Retry budget exhausted")
			return errors.Join(ErrMaxAttemptsExceeded, err)
		}

		delay := r.delayFor(attempt)
		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt+1, err, delay)
		}

		log.Debug().
			Err(err).
			Int("attempt", attempt+1).
			Int("max_attempts", r.config.MaxAttempts).
			Dur("delay", delay).
			Msg("Retrying after error")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return lastErr
}

// delayFor computes the backoff for a given attempt index.
func (r *Retry) delayFor(attempt int) time.Duration {
	delay := float64(r.config.BaseDelay) * math.Pow(r.config.Multiplier, float64(attempt))
	if delay > float64(r.config.MaxDelay) {
		delay = float64(r.config.MaxDelay)
	}
	if r.config.JitterFraction > 0 {
		r.mu.Lock()
		jitter := delay * r.config.JitterFraction * (r.rng.Float64()*2 - 1)
		r.mu.Unlock()
		delay += jitter
	}
	return time.Duration(delay)
}

func (r *Retry) isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if r.config.RetryableChecker != nil {
		return r.config.RetryableChecker(err)
	}
	return true
}

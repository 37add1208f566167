package providers

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	ErrProviderNotFound      = errors.New("provider not found")
	ErrProviderAlreadyExists = errors.New("provider already exists")
	ErrNoProvidersAvailable  = errors.New("no providers available")
)

// Registry holds the constructed provider adapters for one orchestrator
// instance. Registration order is preserved: the voting tie-break and the
// specialization role assignment both depend on configuration order.
type Registry struct {
	mu        sync.RWMutex
	order     []string
	providers map[string]Provider
	metadata  map[string]*Metadata
}

// Metadata tracks read-only usage counters per provider. The counters are
// telemetry, not correctness: strategies never branch on them.
type Metadata struct {
	Name         string
	Model        string
	RegisteredAt time.Time
	SuccessCount int64
	ErrorCount   int64
	TotalLatency time.Duration
}

// AvgLatency returns the mean latency of successful calls.
func (m *Metadata) AvgLatency() time.Duration {
	if m.SuccessCount == 0 {
		return 0
	}
	return m.TotalLatency / time.Duration(m.SuccessCount)
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
		metadata:  make(map[string]*Metadata),
	}
}

// Register adds a provider under its configured identifier.
func (r *Registry) Register(name string, provider Provider, model string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("%w: %s", ErrProviderAlreadyExists, name)
	}

	r.order = append(r.order, name)
	r.providers[name] = provider
	r.metadata[name] = &Metadata{
		Name:         name,
		Model:        model,
		RegisteredAt: time.Now(),
	}

	log.Info().
		Str("provider", name).
		Str("model", model).
		Msg("Provider registered")

	return nil
}

// Get returns a provider by identifier.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, exists := r.providers[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, name)
	}
	return provider, nil
}

// Enabled returns the providers that report themselves available, in
// registration order.
func (r *Registry) Enabled() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	enabled := make([]Provider, 0, len(r.order))
	for _, name := range r.order {
		if p := r.providers[name]; p.Available() {
			enabled = append(enabled, p)
		}
	}
	return enabled
}

// Names returns all registered identifiers in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Count returns the number of registered providers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}

// Position returns the registration index of a provider. Unknown names
// sort last.
func (r *Registry) Position(name string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i, n := range r.order {
		if n == name {
			return i
		}
	}
	return len(r.order)
}

// RecordSuccess updates usage counters after a successful call.
func (r *Registry) RecordSuccess(name string, latency time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if md, ok := r.metadata[name]; ok {
		md.SuccessCount++
		md.TotalLatency += latency
	}
}

// RecordFailure updates usage counters after a failed call.
func (r *Registry) RecordFailure(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if md, ok := r.metadata[name]; ok {
		md.ErrorCount++
	}
}

// GetMetadata returns a copy of a provider's usage counters.
func (r *Registry) GetMetadata(name string) (Metadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	md, exists := r.metadata[name]
	if !exists {
		return Metadata{}, fmt.Errorf("%w: %s", ErrProviderNotFound, name)
	}
	return *md, nil
}

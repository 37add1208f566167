// Package factory constructs provider adapters from configuration and
// assembles them into a registry.
package factory

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/biodoia/intellidoc/internal/providers"
	"github.com/biodoia/intellidoc/internal/providers/anthropic"
	"github.com/biodoia/intellidoc/internal/providers/openai"
	"github.com/biodoia/intellidoc/pkg/config"
)

const (
	openRouterBaseURL = "https://openrouter.ai/api/v1"
	ollamaBaseURL     = "http://localhost:11434/v1"
)

// BuildRegistry constructs one adapter per enabled model entry. Disabled
// entries are skipped entirely: they never participate in fan-out and do
// not count toward the partial-failure penalty.
func BuildRegistry(cfg *config.Config) (*providers.Registry, error) {
	registry := providers.NewRegistry()

	for _, m := range cfg.EnabledModels() {
		provider, err := build(m)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(m.Name, provider, m.Model); err != nil {
			return nil, err
		}
		if !provider.Available() {
			log.Warn().
				Str("provider", m.Name).
				Msg("Provider registered but unavailable (missing credential?)")
		}
	}

	return registry, nil
}

func build(m config.ModelConfig) (providers.Provider, error) {
	switch strings.ToLower(m.Provider) {
	case "openai":
		return openai.New(openai.Config{
			Name:              m.Name,
			Model:             m.Model,
			APIKey:            m.APIKey,
			BaseURL:           m.BaseURL,
			Temperature:       m.Temperature,
			MaxTokens:         m.MaxTokens,
			Timeout:           m.Timeout,
			RequestsPerMinute: m.RequestsPerMinute,
		}), nil

	case "openrouter":
		baseURL := m.BaseURL
		if baseURL == "" {
			baseURL = openRouterBaseURL
		}
		return openai.New(openai.Config{
			Name:              m.Name,
			Model:             m.Model,
			APIKey:            m.APIKey,
			BaseURL:           baseURL,
			Temperature:       m.Temperature,
			MaxTokens:         m.MaxTokens,
			Timeout:           m.Timeout,
			RequestsPerMinute: m.RequestsPerMinute,
		}), nil

	case "ollama":
		baseURL := m.BaseURL
		if baseURL == "" {
			baseURL = ollamaBaseURL
		}
		return openai.New(openai.Config{
			Name:              m.Name,
			Model:             m.Model,
			APIKey:            m.APIKey,
			BaseURL:           baseURL,
			Temperature:       m.Temperature,
			MaxTokens:         m.MaxTokens,
			Timeout:           m.Timeout,
			RequestsPerMinute: m.RequestsPerMinute,
			Anonymous:         true,
		}), nil

	case "anthropic":
		return anthropic.New(anthropic.Config{
			Name:              m.Name,
			Model:             m.Model,
			APIKey:            m.APIKey,
			BaseURL:           m.BaseURL,
			Temperature:       m.Temperature,
			MaxTokens:         m.MaxTokens,
			Timeout:           m.Timeout,
			RequestsPerMinute: m.RequestsPerMinute,
		}), nil

	default:
		return nil, fmt.Errorf("unknown provider type %q for model %q", m.Provider, m.Name)
	}
}

// Package config loads the IntelliDoc configuration: the participating
// model providers, the active collaboration strategy and retry policy.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

var (
	ErrNoModels        = errors.New("no models configured")
	ErrUnknownStrategy = errors.New("unknown collaboration strategy")
)

// Strategies accepted by the orchestrator.
var validStrategies = map[string]bool{
	"consensus":      true,
	"specialization": true,
	"review":         true,
	"voting":         true,
}

// Config is the complete application configuration.
type Config struct {
	// Strategy selects the collaboration strategy:
	// consensus, specialization, review or voting.
	Strategy string `yaml:"strategy" mapstructure:"strategy"`

	// TaskTimeout bounds one documentation call end to end.
	TaskTimeout time.Duration `yaml:"task_timeout" mapstructure:"task_timeout"`

	// PrimaryProvider optionally names the review-strategy primary.
	PrimaryProvider string `yaml:"primary_provider" mapstructure:"primary_provider"`

	Models  []ModelConfig `yaml:"models" mapstructure:"models"`
	Retry   RetryConfig   `yaml:"retry" mapstructure:"retry"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
}

// ModelConfig describes one participating provider. Immutable after load;
// one adapter is constructed per entry.
type ModelConfig struct {
	// Provider is the backend type: openai, anthropic, openrouter, ollama.
	Provider string `yaml:"provider" mapstructure:"provider"`

	// Name is the unique identifier used in results and telemetry.
	// Defaults to the provider type.
	Name string `yaml:"name" mapstructure:"name"`

	Model       string        `yaml:"model" mapstructure:"model"`
	Temperature float64       `yaml:"temperature" mapstructure:"temperature"`
	MaxTokens   int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
	Enabled     bool          `yaml:"enabled" mapstructure:"enabled"`

	// APIKey supports ${ENV_VAR} expansion.
	APIKey  string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// RequestsPerMinute enables a client-side rate limiter when > 0.
	RequestsPerMinute int `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
}

// RetryConfig mirrors the resilience layer settings.
type RetryConfig struct {
	MaxAttempts    int           `yaml:"max_attempts" mapstructure:"max_attempts"`
	BaseDelay      time.Duration `yaml:"base_delay" mapstructure:"base_delay"`
	MaxDelay       time.Duration `yaml:"max_delay" mapstructure:"max_delay"`
	JitterFraction float64       `yaml:"jitter_fraction" mapstructure:"jitter_fraction"`
}

// LoggingConfig controls zerolog output.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // "json" or "console"
}

// Load reads the configuration from a file, the environment and defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("intellidoc")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvPrefix("INTELLIDOC")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("strategy", "consensus")
	v.SetDefault("task_timeout", "180s")
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.base_delay", "200ms")
	v.SetDefault("retry.max_delay", "10s")
	v.SetDefault("retry.jitter_fraction", 0.1)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// applyDefaults fills per-model fallbacks and expands credential env vars.
func (c *Config) applyDefaults() {
	if c.TaskTimeout <= 0 {
		c.TaskTimeout = 180 * time.Second
	}
	for i := range c.Models {
		m := &c.Models[i]
		if m.Name == "" {
			m.Name = m.Provider
		}
		if m.Temperature == 0 {
			m.Temperature = 0.7
		}
		if m.MaxTokens == 0 {
			m.MaxTokens = 2048
		}
		if m.Timeout == 0 {
			m.Timeout = 60 * time.Second
		}
		m.APIKey = os.ExpandEnv(m.APIKey)
	}
}

// Validate checks the loaded configuration for mistakes that would only
// surface later as runtime failures.
func (c *Config) Validate() error {
	if !validStrategies[c.Strategy] {
		return fmt.Errorf("%w: %q", ErrUnknownStrategy, c.Strategy)
	}

	enabled := 0
	seen := make(map[string]bool)
	for _, m := range c.Models {
		if m.Provider == "" {
			return fmt.Errorf("model %q: provider type is required", m.Name)
		}
		if seen[m.Name] {
			return fmt.Errorf("duplicate model name %q", m.Name)
		}
		seen[m.Name] = true
		if m.Enabled {
			enabled++
		}
	}
	if enabled == 0 {
		return ErrNoModels
	}
	return nil
}

// EnabledModels returns the enabled model entries in configuration order.
func (c *Config) EnabledModels() []ModelConfig {
	out := make([]ModelConfig, 0, len(c.Models))
	for _, m := range c.Models {
		if m.Enabled {
			out = append(out, m)
		}
	}
	return out
}

// starterConfig is the template written by `intellidoc config init`.
// Durations stay as strings so the file remains hand-editable.
const starterConfig = `strategy: consensus
task_timeout: 180s

models:
  - provider: openai
    name: openai
    model: gpt-4o-mini
    temperature: 0.7
    max_tokens: 2048
    timeout: 60s
    enabled: true
    api_key: ${OPENAI_API_KEY}
  - provider: anthropic
    name: anthropic
    model: claude-3-5-sonnet-20241022
    temperature: 0.7
    max_tokens: 2048
    timeout: 60s
    enabled: true
    api_key: ${ANTHROPIC_API_KEY}
  - provider: ollama
    name: ollama
    model: llama3
    enabled: false

retry:
  max_attempts: 3
  base_delay: 200ms
  max_delay: 10s
  jitter_fraction: 0.1

logging:
  level: info
  format: console
`

// WriteDefault writes a starter configuration file.
func WriteDefault(path string) error {
	if err := os.WriteFile(path, []byte(starterConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "intellidoc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "sk-test-123")

	path := writeConfig(t, `
strategy: voting
task_timeout: 90s
primary_provider: fast
models:
  - provider: openai
    name: fast
    model: gpt-4o-mini
    api_key: ${TEST_OPENAI_KEY}
    enabled: true
  - provider: ollama
    model: llama3
    enabled: true
retry:
  max_attempts: 5
  base_delay: 100ms
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "voting", cfg.Strategy)
	assert.Equal(t, 90*time.Second, cfg.TaskTimeout)
	assert.Equal(t, "fast", cfg.PrimaryProvider)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, 100*time.Millisecond, cfg.Retry.BaseDelay)

	require.Len(t, cfg.Models, 2)
	assert.Equal(t, "sk-test-123", cfg.Models[0].APIKey)
	// Unnamed models default to the provider type.
	assert.Equal(t, "ollama", cfg.Models[1].Name)
	// Per-model fallbacks.
	assert.Equal(t, 0.7, cfg.Models[1].Temperature)
	assert.Equal(t, 2048, cfg.Models[1].MaxTokens)
	assert.Equal(t, 60*time.Second, cfg.Models[1].Timeout)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
models:
  - provider: ollama
    enabled: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "consensus", cfg.Strategy)
	assert.Equal(t, 180*time.Second, cfg.TaskTimeout)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestValidate_UnknownStrategy(t *testing.T) {
	path := writeConfig(t, `
strategy: roundtable
models:
  - provider: ollama
    enabled: true
`)

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestValidate_NoEnabledModels(t *testing.T) {
	path := writeConfig(t, `
models:
  - provider: openai
    enabled: false
`)

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrNoModels)
}

func TestValidate_DuplicateModelNames(t *testing.T) {
	path := writeConfig(t, `
models:
  - provider: openai
    name: same
    enabled: true
  - provider: anthropic
    name: same
    enabled: true
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate model name")
}

func TestValidate_MissingProviderType(t *testing.T) {
	path := writeConfig(t, `
models:
  - name: mystery
    enabled: true
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider type is required")
}

func TestEnabledModels(t *testing.T) {
	cfg := &Config{
		Models: []ModelConfig{
			{Provider: "openai", Name: "a", Enabled: true},
			{Provider: "anthropic", Name: "b", Enabled: false},
			{Provider: "ollama", Name: "c", Enabled: true},
		},
	}

	enabled := cfg.EnabledModels()
	require.Len(t, enabled, 2)
	assert.Equal(t, "a", enabled[0].Name)
	assert.Equal(t, "c", enabled[1].Name)
}

func TestWriteDefault_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "starter.yaml")
	require.NoError(t, WriteDefault(path))

	// The template must be well-formed YAML before viper gets near it.
	var doc map[string]any
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, yaml.Unmarshal(data, &doc))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "consensus", cfg.Strategy)
	require.Len(t, cfg.Models, 3)
	assert.Equal(t, "openai", cfg.Models[0].Provider)
	assert.Equal(t, "anthropic", cfg.Models[1].Provider)
	assert.False(t, cfg.Models[2].Enabled)
}

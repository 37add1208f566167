// Package openai implements the provider adapter for OpenAI-compatible
// chat completion APIs (OpenAI, OpenRouter, local Ollama endpoints).
package openai

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/biodoia/intellidoc/internal/providers"
)

const DefaultBaseURL = "https://api.openai.com/v1"

// Config holds the transport settings for one OpenAI-compatible backend.
type Config struct {
	// Name is the provider identifier reported in responses.
	Name string

	// Model is the model name sent with every request.
	Model string

	APIKey  string
	BaseURL string

	Temperature float64
	MaxTokens   int
	Timeout     time.Duration

	// RequestsPerMinute enables a client-side rate limiter when > 0.
	RequestsPerMinute int

	// Anonymous marks backends that need no credential (local Ollama).
	Anonymous bool
}

// Client is an OpenAI-compatible provider adapter.
type Client struct {
	config  Config
	http    *resty.Client
	limiter *rate.Limiter
}

// New creates a configured client. The adapter is reused across tasks, so
// the underlying HTTP client keeps its connection pool.
func New(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Model == "" {
		config.Model = "gpt-4o-mini"
	}
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = 2048
	}

	c := &Client{config: config}
	if config.RequestsPerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(config.RequestsPerMinute)), 1)
	}

	// Retries are handled by the resilience layer, not the HTTP client.
	c.http = resty.New().
		SetBaseURL(config.BaseURL).
		SetTimeout(config.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	if config.APIKey != "" {
		c.http.SetHeader("Authorization", "Bearer "+config.APIKey)
	}

	c.http.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		log.Debug().
			Str("provider", c.config.Name).
			Int("status", resp.StatusCode()).
			Dur("duration", resp.Time()).
			Msg("OpenAI API response")
		return nil
	})

	return c
}

// Name returns the provider identifier.
func (c *Client) Name() string {
	return c.config.Name
}

// Available reports whether a credential is configured.
func (c *Client) Available() bool {
	return c.config.Anonymous || c.config.APIKey != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Generate sends one chat completion request and returns the response text
// with its usage metadata.
func (c *Client) Generate(ctx context.Context, req *providers.GenerateRequest) (*providers.ModelResponse, error) {
	if !c.Available() {
		return nil, providers.NewError(c.config.Name, providers.ErrAuthFailure, "no API key configured")
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, providers.WrapError(c.config.Name, providers.ErrTimeout, err)
		}
	}

	messages := make([]chatMessage, 0, 2)
	if req.Context != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.Context})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	body := chatRequest{
		Model:       c.config.Model,
		Messages:    messages,
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
	}

	var (
		result chatResponse
		apiErr apiError
	)

	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		SetError(&apiErr).
		Post("/chat/completions")
	latency := time.Since(start)

	if err != nil {
		return nil, transportError(c.config.Name, err)
	}
	if resp.IsError() {
		return nil, statusError(c.config.Name, resp.StatusCode(), apiErr.Error.Message)
	}
	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		return nil, providers.NewError(c.config.Name, providers.ErrMalformed, "empty completion in response")
	}

	return &providers.ModelResponse{
		Provider:   c.config.Name,
		Model:      c.config.Model,
		Text:       result.Choices[0].Message.Content,
		TokensUsed: result.Usage.TotalTokens,
		Latency:    latency,
	}, nil
}

// transportError maps network-level failures to provider error kinds.
func transportError(name string, err error) *providers.ProviderError {
	if errors.Is(err, context.DeadlineExceeded) {
		return providers.WrapError(name, providers.ErrTimeout, err)
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return providers.WrapError(name, providers.ErrTimeout, err)
	}
	return providers.WrapError(name, providers.ErrUnavailable, err)
}

// statusError maps HTTP status codes to provider error kinds.
func statusError(name string, status int, message string) *providers.ProviderError {
	if message == "" {
		message = http.StatusText(status)
	}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return providers.NewError(name, providers.ErrAuthFailure, "status %d: %s", status, message)
	case status == http.StatusTooManyRequests:
		return providers.NewError(name, providers.ErrRateLimited, "status %d: %s", status, message)
	case status == http.StatusRequestTimeout:
		return providers.NewError(name, providers.ErrTimeout, "status %d: %s", status, message)
	case status >= 500:
		return providers.NewError(name, providers.ErrUnavailable, "status %d: %s", status, message)
	default:
		return providers.NewError(name, providers.ErrMalformed, "status %d: %s", status, message)
	}
}

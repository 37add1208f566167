// Package anthropic implements the provider adapter for the Anthropic
// Messages API.
package anthropic

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/biodoia/intellidoc/internal/providers"
)

const (
	DefaultBaseURL    = "https://api.anthropic.com"
	DefaultAPIVersion = "2023-06-01"
)

// Config holds the transport settings for an Anthropic backend.
type Config struct {
	Name  string
	Model string

	APIKey     string
	BaseURL    string
	APIVersion string

	Temperature float64
	MaxTokens   int
	Timeout     time.Duration

	RequestsPerMinute int
}

// Client is an Anthropic Messages provider adapter.
type Client struct {
	config  Config
	http    *resty.Client
	limiter *rate.Limiter
}

// New creates a configured client.
func New(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.APIVersion == "" {
		config.APIVersion = DefaultAPIVersion
	}
	if config.Model == "" {
		config.Model = "claude-3-5-sonnet-20241022"
	}
	if config.Timeout <= 0 {
		config.Timeout = 120 * time.Second
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = 2048
	}

	c := &Client{config: config}
	if config.RequestsPerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(config.RequestsPerMinute)), 1)
	}

	c.http = resty.New().
		SetBaseURL(config.BaseURL).
		SetTimeout(config.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("anthropic-version", config.APIVersion)

	if config.APIKey != "" {
		c.http.SetHeader("x-api-key", config.APIKey)
	}

	c.http.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		log.Debug().
			Str("provider", c.config.Name).
			Int("status", resp.StatusCode()).
			Dur("duration", resp.Time()).
			Msg("Anthropic API response")
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
	return c.config.APIKey != ""
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	System      string    `json:"system,omitempty"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Generate sends one Messages request and returns the concatenated text
// blocks with usage metadata.
func (c *Client) Generate(ctx context.Context, req *providers.GenerateRequest) (*providers.ModelResponse, error) {
	if !c.Available() {
		return nil, providers.NewError(c.config.Name, providers.ErrAuthFailure, "no API key configured")
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, providers.WrapError(c.config.Name, providers.ErrTimeout, err)
		}
	}

	body := messagesRequest{
		Model:       c.config.Model,
		Messages:    []message{{Role: "user", Content: req.Prompt}},
		System:      req.Context,
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
	}

	var (
		result messagesResponse
		apiErr apiError
	)

	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		SetError(&apiErr).
		Post("/v1/messages")
	latency := time.Since(start)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, providers.WrapError(c.config.Name, providers.ErrTimeout, err)
		}
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, providers.WrapError(c.config.Name, providers.ErrTimeout, err)
		}
		return nil, providers.WrapError(c.config.Name, providers.ErrUnavailable, err)
	}
	if resp.IsError() {
		return nil, c.statusError(resp.StatusCode(), apiErr)
	}

	var sb strings.Builder
	for _, block := range result.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return nil, providers.NewError(c.config.Name, providers.ErrMalformed, "no text content in response")
	}

	return &providers.ModelResponse{
		Provider:   c.config.Name,
		Model:      c.config.Model,
		Text:       sb.String(),
		TokensUsed: result.Usage.InputTokens + result.Usage.OutputTokens,
		Latency:    latency,
	}, nil
}

func (c *Client) statusError(status int, apiErr apiError) *providers.ProviderError {
	message := apiErr.Error.Message
	if message == "" {
		message = http.StatusText(status)
	}

	// The API reports overload as a typed error alongside 529.
	if apiErr.Error.Type == "overloaded_error" {
		return providers.NewError(c.config.Name, providers.ErrUnavailable, "status %d: %s", status, message)
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return providers.NewError(c.config.Name, providers.ErrAuthFailure, "status %d: %s", status, message)
	case status == http.StatusTooManyRequests:
		return providers.NewError(c.config.Name, providers.ErrRateLimited, "status %d: %s", status, message)
	case status >= 500:
		return providers.NewError(c.config.Name, providers.ErrUnavailable, "status %d: %s", status, message)
	default:
		return providers.NewError(c.config.Name, providers.ErrMalformed, "status %d: %s", status, message)
	}
}

package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/biodoia/intellidoc/internal/providers"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return New(Config{
		Name:    "test-anthropic",
		Model:   "claude-3-5-sonnet-20241022",
		APIKey:  "sk-ant-test",
		BaseURL: server.URL,
	})
}

func TestGenerate_Success(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("x-api-key"); got != "sk-ant-test" {
			t.Errorf("Unexpected api key header: %q", got)
		}
		if got := r.Header.Get("anthropic-version"); got != DefaultAPIVersion {
			t.Errorf("Unexpected version header: %q", got)
		}

		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["system"] != "project background" {
			t.Errorf("Unexpected system prompt: %v", body["system"])
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{
				{"type": "text", "text": "Part one. "},
				{"type": "text", "text": "Part two."},
			},
			"stop_reason": "end_turn",
			"usage":       map[string]int{"input_tokens": 12, "output_tokens": 8},
		})
	})

	resp, err := client.Generate(context.Background(), &providers.GenerateRequest{
		Prompt:  "document this",
		Context: "project background",
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	// Text blocks concatenate in order.
	if resp.Text != "Part one. Part two." {
		t.Errorf("Text = %q", resp.Text)
	}
	if resp.TokensUsed != 20 {
		t.Errorf("TokensUsed = %d, want 20", resp.TokensUsed)
	}
}

func TestGenerate_OverloadedError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(529)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"type": "overloaded_error", "message": "Overloaded"},
		})
	})

	_, err := client.Generate(context.Background(), &providers.GenerateRequest{Prompt: "x"})
	var pe *providers.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("Expected *ProviderError, got %v", err)
	}
	if pe.Kind != providers.ErrUnavailable {
		t.Errorf("Kind = %s, want %s", pe.Kind, providers.ErrUnavailable)
	}
	if !pe.Transient() {
		t.Error("Overload must be retryable")
	}
}

func TestGenerate_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   providers.ErrorKind
	}{
		{http.StatusUnauthorized, providers.ErrAuthFailure},
		{http.StatusTooManyRequests, providers.ErrRateLimited},
		{http.StatusInternalServerError, providers.ErrUnavailable},
		{http.StatusBadRequest, providers.ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]string{"type": "api_error", "message": "nope"},
				})
			})

			_, err := client.Generate(context.Background(), &providers.GenerateRequest{Prompt: "x"})
			var pe *providers.ProviderError
			if !errors.As(err, &pe) {
				t.Fatalf("Expected *ProviderError, got %v", err)
			}
			if pe.Kind != tt.want {
				t.Errorf("Kind = %s, want %s", pe.Kind, tt.want)
			}
		})
	}
}

func TestGenerate_NoTextContent(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"type": "tool_use"}},
		})
	})

	_, err := client.Generate(context.Background(), &providers.GenerateRequest{Prompt: "x"})
	var pe *providers.ProviderError
	if !errors.As(err, &pe) || pe.Kind != providers.ErrMalformed {
		t.Errorf("Expected malformed error, got %v", err)
	}
}

func TestAvailable_RequiresKey(t *testing.T) {
	if New(Config{Name: "bare"}).Available() {
		t.Error("Client without API key should be unavailable")
	}
}

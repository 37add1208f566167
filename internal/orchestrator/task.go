package orchestrator

import (
	"time"

	"github.com/biodoia/intellidoc/internal/providers"
)

// DocumentationTask is one immutable unit of work: the source code to
// document plus optional free-text focus. Created per invocation and
// discarded once the result is returned.
type DocumentationTask struct {
	// Code is the source text to document.
	Code string

	// Language is the language tag ("python", "go", ...). Used for prompt
	// construction and structural parsing; an unknown tag degrades to a
	// generic prompt.
	Language string

	// Context is optional background the caller wants reflected in the
	// documentation.
	Context string

	// DocType selects the documentation style ("general", "api",
	// "tutorial"). Empty means "general".
	DocType string
}

// NewTask creates a task with the default documentation type.
func NewTask(code, language string) *DocumentationTask {
	return &DocumentationTask{
		Code:     code,
		Language: language,
		DocType:  "general",
	}
}

func (t *DocumentationTask) docType() string {
	if t.DocType == "" {
		return "general"
	}
	return t.DocType
}

// CollaborationResult is the externally visible artifact of one call.
// Immutable once built; always backed by at least one successful
// ModelResponse.
type CollaborationResult struct {
	// RequestID uniquely identifies this call in logs and telemetry.
	RequestID string `json:"request_id"`

	// Documentation is the final combined text.
	Documentation string `json:"documentation"`

	// Confidence is the scorer's estimate in [0,1].
	Confidence float64 `json:"confidence"`

	// Contributing lists the successful responses that fed the result,
	// in provider configuration order. Provider identifiers are unique.
	Contributing []*providers.ModelResponse `json:"contributing"`

	// Strategy is the collaboration strategy that produced the result.
	Strategy Strategy `json:"strategy"`

	TotalLatency time.Duration `json:"total_latency"`
	TotalTokens  int           `json:"total_tokens"`
}

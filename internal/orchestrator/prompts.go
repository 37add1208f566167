package orchestrator

import (
	"fmt"
	"strings"

	"github.com/biodoia/intellidoc/internal/parser"
	"github.com/biodoia/intellidoc/internal/providers"
)

// buildRequest renders the base documentation prompt for a task. The
// parsed element summary rides along as system context so every provider
// sees the same structural view of the code.
func buildRequest(task *DocumentationTask) *providers.GenerateRequest {
	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Write %s documentation for the following %s code.\n\n", task.docType(), languageLabel(task))
	prompt.WriteString("Cover, where applicable: a summary of what the code does, ")
	prompt.WriteString("parameters, return values, usage examples, and notable caveats.\n")
	prompt.WriteString("Use Markdown headings for each section.\n\n")
	writeCodeBlock(&prompt, task)

	return &providers.GenerateRequest{
		Prompt:  prompt.String(),
		Context: taskContext(task),
	}
}

// buildRoleRequest renders the role-specific prompt variant used by the
// specialization strategy.
func buildRoleRequest(task *DocumentationTask, role Role) *providers.GenerateRequest {
	var instruction string
	switch role {
	case RoleOverview:
		instruction = "Write a concise high-level overview of what the following %s code does and why it exists. " +
			"Do not describe individual parameters or include code examples."
	case RoleTechnical:
		instruction = "Document the technical details of the following %s code: parameters, return values, " +
			"error conditions and complexity. Be precise; skip the high-level overview."
	case RoleExamples:
		instruction = "Write practical usage examples for the following %s code, as runnable snippets with " +
			"short explanations. Do not restate what the code does."
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, instruction+"\n\n", languageLabel(task))
	writeCodeBlock(&prompt, task)

	return &providers.GenerateRequest{
		Prompt:  prompt.String(),
		Context: taskContext(task),
	}
}

// buildReviewRequest renders the critique prompt: the reviewer sees the
// primary's draft next to the original task and returns a revision.
func buildReviewRequest(task *DocumentationTask, draft string) *providers.GenerateRequest {
	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Below is %s code and a draft of its documentation written by another model.\n", languageLabel(task))
	prompt.WriteString("Review the draft for accuracy, completeness and clarity. ")
	prompt.WriteString("Return an improved revision of the documentation, keeping its overall structure. ")
	prompt.WriteString("Correct mistakes and fill gaps; do not start from scratch.\n\n")
	writeCodeBlock(&prompt, task)
	prompt.WriteString("\nDraft documentation:\n\n")
	prompt.WriteString(draft)
	prompt.WriteString("\n")

	return &providers.GenerateRequest{
		Prompt:  prompt.String(),
		Context: taskContext(task),
	}
}

func writeCodeBlock(sb *strings.Builder, task *DocumentationTask) {
	sb.WriteString("Code:\n```")
	sb.WriteString(task.Language)
	sb.WriteString("\n")
	sb.WriteString(task.Code)
	if !strings.HasSuffix(task.Code, "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString("```\n")
}

// taskContext combines the caller-supplied context with the parsed
// element summary.
func taskContext(task *DocumentationTask) string {
	parts := make([]string, 0, 2)
	if task.Context != "" {
		parts = append(parts, task.Context)
	}
	if summary := parser.Summarize(parser.Parse(task.Code, parser.Language(task.Language))); summary != "" {
		parts = append(parts, summary)
	}
	return strings.Join(parts, "\n\n")
}

func languageLabel(task *DocumentationTask) string {
	if task.Language == "" {
		return "source"
	}
	return task.Language
}

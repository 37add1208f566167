// Package parser extracts structural code elements from source text. The
// orchestration layer consumes it as a pure function when building
// prompts; it keeps no state between calls.
package parser

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Language is a supported source language tag.
type Language string

const (
	Python     Language = "python"
	JavaScript Language = "javascript"
	TypeScript Language = "typescript"
	Java       Language = "java"
	Go         Language = "go"
	Ruby       Language = "ruby"
	Rust       Language = "rust"
)

// extensions maps file extensions to language tags.
var extensions = map[string]Language{
	".py":   Python,
	".js":   JavaScript,
	".jsx":  JavaScript,
	".mjs":  JavaScript,
	".ts":   TypeScript,
	".tsx":  TypeScript,
	".java": Java,
	".go":   Go,
	".rb":   Ruby,
	".rs":   Rust,
}

// DetectLanguage infers the language from a filename extension.
func DetectLanguage(filename string) (Language, bool) {
	lang, ok := extensions[strings.ToLower(filepath.Ext(filename))]
	return lang, ok
}

// CodeElement is one structural unit found in the source: a function,
// method, class or type declaration.
type CodeElement struct {
	Type      string // "function", "class", "type"
	Name      string
	Signature string
	Line      int
}

// Per-language declaration patterns. Line-based heuristics: good enough
// for prompt construction, not a real parser.
var patterns = map[Language][]elementPattern{
	Python: {
		{re: regexp.MustCompile(`^\s*def\s+([A-Za-z_]\w*)\s*\(`), kind: "function"},
		{re: regexp.MustCompile(`^\s*class\s+([A-Za-z_]\w*)\s*[(:]`), kind: "class"},
	},
	JavaScript: {
		{re: regexp.MustCompile(`^\s*(?:export\s+)?(?:async\s+)?function\s+([A-Za-z_$][\w$]*)\s*\(`), kind: "function"},
		{re: regexp.MustCompile(`^\s*(?:export\s+)?class\s+([A-Za-z_$][\w$]*)`), kind: "class"},
		{re: regexp.MustCompile(`^\s*(?:export\s+)?(?:const|let)\s+([A-Za-z_$][\w$]*)\s*=\s*(?:async\s*)?\(`), kind: "function"},
	},
	TypeScript: {
		{re: regexp.MustCompile(`^\s*(?:export\s+)?(?:async\s+)?function\s+([A-Za-z_$][\w$]*)\s*\(`), kind: "function"},
		{re: regexp.MustCompile(`^\s*(?:export\s+)?class\s+([A-Za-z_$][\w$]*)`), kind: "class"},
		{re: regexp.MustCompile(`^\s*(?:export\s+)?interface\s+([A-Za-z_$][\w$]*)`), kind: "type"},
	},
	Java: {
		{re: regexp.MustCompile(`^\s*(?:public|protected|private)?\s*(?:static\s+)?(?:final\s+)?class\s+([A-Za-z_$][\w$]*)`), kind: "class"},
		{re: regexp.MustCompile(`^\s*(?:public|protected|private)\s+(?:static\s+)?[\w<>\[\],\s]+\s+([A-Za-z_$][\w$]*)\s*\(`), kind: "function"},
	},
	Go: {
		{re: regexp.MustCompile(`^func\s+(?:\([^)]+\)\s+)?([A-Za-z_]\w*)\s*\(`), kind: "function"},
		{re: regexp.MustCompile(`^type\s+([A-Za-z_]\w*)\s+`), kind: "type"},
	},
	Ruby: {
		{re: regexp.MustCompile(`^\s*def\s+([A-Za-z_]\w*[?!]?)`), kind: "function"},
		{re: regexp.MustCompile(`^\s*class\s+([A-Z]\w*)`), kind: "class"},
	},
	Rust: {
		{re: regexp.MustCompile(`^\s*(?:pub\s+)?(?:async\s+)?fn\s+([A-Za-z_]\w*)`), kind: "function"},
		{re: regexp.MustCompile(`^\s*(?:pub\s+)?struct\s+([A-Za-z_]\w*)`), kind: "type"},
		{re: regexp.MustCompile(`^\s*(?:pub\s+)?enum\s+([A-Za-z_]\w*)`), kind: "type"},
	},
}

type elementPattern struct {
	re   *regexp.Regexp
	kind string
}

// Parse scans source text for declarations of the given language.
// Unknown languages yield no elements.
func Parse(code string, lang Language) []CodeElement {
	pats, ok := patterns[lang]
	if !ok {
		return nil
	}

	var elements []CodeElement
	for i, line := range strings.Split(code, "\n") {
		for _, p := range pats {
			m := p.re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			elements = append(elements, CodeElement{
				Type:      p.kind,
				Name:      m[1],
				Signature: strings.TrimSpace(line),
				Line:      i + 1,
			})
			break
		}
	}
	return elements
}

// Summarize renders a compact element listing for prompt context.
func Summarize(elements []CodeElement) string {
	if len(elements) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("Code elements:\n")
	for _, el := range elements {
		sb.WriteString("- ")
		sb.WriteString(el.Type)
		sb.WriteString(" ")
		sb.WriteString(el.Name)
		sb.WriteString(": ")
		sb.WriteString(el.Signature)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

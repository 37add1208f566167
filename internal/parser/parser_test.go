package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		filename string
		want     Language
		ok       bool
	}{
		{"main.py", Python, true},
		{"app.js", JavaScript, true},
		{"component.tsx", TypeScript, true},
		{"Server.java", Java, true},
		{"handler.go", Go, true},
		{"model.rb", Ruby, true},
		{"lib.rs", Rust, true},
		{"UPPER.PY", Python, true},
		{"notes.txt", "", false},
		{"Makefile", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			lang, ok := DetectLanguage(tt.filename)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, lang)
			}
		})
	}
}

func TestParse_Python(t *testing.T) {
	code := `import os

class Widget:
    def __init__(self, name):
        self.name = name

    def render(self):
        return self.name

def main():
    pass
`
	elements := Parse(code, Python)
	require.Len(t, elements, 4)

	assert.Equal(t, "class", elements[0].Type)
	assert.Equal(t, "Widget", elements[0].Name)
	assert.Equal(t, 3, elements[0].Line)

	assert.Equal(t, "function", elements[1].Type)
	assert.Equal(t, "__init__", elements[1].Name)

	assert.Equal(t, "main", elements[3].Name)
	assert.Equal(t, "def main():", elements[3].Signature)
}

func TestParse_Go(t *testing.T) {
	code := `package widget

type Widget struct {
	Name string
}

func New(name string) *Widget {
	return &Widget{Name: name}
}

func (w *Widget) Render() string {
	return w.Name
}
`
	elements := Parse(code, Go)
	require.Len(t, elements, 3)

	assert.Equal(t, "type", elements[0].Type)
	assert.Equal(t, "Widget", elements[0].Name)
	assert.Equal(t, "function", elements[1].Type)
	assert.Equal(t, "New", elements[1].Name)
	// Receiver methods resolve to the method name, not the receiver.
	assert.Equal(t, "Render", elements[2].Name)
}

func TestParse_UnknownLanguage(t *testing.T) {
	assert.Nil(t, Parse("def f(): pass", Language("cobol")))
}

func TestSummarize(t *testing.T) {
	assert.Empty(t, Summarize(nil))

	summary := Summarize([]CodeElement{
		{Type: "function", Name: "add", Signature: "def add(a, b):", Line: 1},
		{Type: "class", Name: "Calc", Signature: "class Calc:", Line: 4},
	})
	assert.Contains(t, summary, "Code elements:")
	assert.Contains(t, summary, "- function add: def add(a, b):")
	assert.Contains(t, summary, "- class Calc: class Calc:")
}

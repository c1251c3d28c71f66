package errors

import (
	"testing"

	"github.com/pas32/pas32c/pkg/token"
	"github.com/stretchr/testify/assert"
)

func TestErrorWireFormat(t *testing.T) {
	err := New(Syntax, token.Position{Line: 3, Column: 7}, "begni", "expected 'begin'")
	assert.Equal(t, "3:7 ERROR at 'begni': expected 'begin'", err.Error())
}

func TestFormatFallsBackToWireFormatWithoutSource(t *testing.T) {
	err := New(Semantic, token.Position{Line: 1, Column: 1}, "x", "identifier not found")
	assert.Equal(t, err.Error(), err.Format(false))
}

func TestFormatRendersSourceLineAndCaret(t *testing.T) {
	src := "var x: Integer;\nbegin\n  y := 1\nend."
	err := New(Semantic, token.Position{Line: 3, Column: 3}, "y", "identifier not found").
		WithSource(src, "prog.pas")

	out := err.Format(false)
	assert.Contains(t, out, "Error in prog.pas:3:3")
	assert.Contains(t, out, "  y := 1")
	assert.Contains(t, out, "identifier not found")
}

func TestFormatCaretColumnAlignsWithOffendingLexeme(t *testing.T) {
	src := "abc"
	err := New(Lexical, token.Position{Line: 1, Column: 1}, "a", "illegal character").
		WithSource(src, "")

	out := err.Format(false)
	lines := splitLines(out)
	sourceLine := lines[1]
	caretLine := lines[2]
	assert.Equal(t, "   1 | abc", sourceLine)
	assert.Contains(t, caretLine, "^")
}

func TestFormatColorWrapsAnsiCodes(t *testing.T) {
	err := New(Generator, token.Position{Line: 1, Column: 1}, "x", "unreachable").
		WithSource("x", "")
	out := err.Format(true)
	assert.Contains(t, out, "\033[1;31m")
	assert.Contains(t, out, "\033[0m")
}

func TestFormatErrorsEmpty(t *testing.T) {
	assert.Equal(t, "", FormatErrors(nil, false))
}

func TestFormatErrorsSingleDelegatesToFormat(t *testing.T) {
	err := New(Syntax, token.Position{Line: 1, Column: 1}, "x", "boom")
	assert.Equal(t, err.Format(false), FormatErrors([]*CompilerError{err}, false))
}

func TestFormatErrorsMultipleAreNumbered(t *testing.T) {
	errs := []*CompilerError{
		New(Syntax, token.Position{Line: 1, Column: 1}, "a", "first"),
		New(Syntax, token.Position{Line: 2, Column: 1}, "b", "second"),
	}
	out := FormatErrors(errs, false)
	assert.Contains(t, out, "compilation failed with 2 error(s)")
	assert.Contains(t, out, "[error 1 of 2]")
	assert.Contains(t, out, "[error 2 of 2]")
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	lines = append(lines, s[start:])
	return lines
}

// Package errors formats the compiler's single diagnostic kind: a
// compilation error carrying a source coordinate, the offending lexeme and
// a message, plus optional surrounding source for context rendering.
package errors

import (
	"fmt"
	"strings"

	"github.com/pas32/pas32c/pkg/token"
)

// Class labels which stage raised a CompilerError. It is informational
// only: neither Error, Format nor FormatErrors renders or groups by it.
type Class string

const (
	IO       Class = "io"
	Lexical  Class = "lexical"
	Syntax   Class = "syntax"
	Semantic Class = "semantic"
	Generator Class = "generator"
)

// CompilerError is the one diagnostic type every compiler stage returns.
type CompilerError struct {
	Class   Class
	Message string
	Lexeme  string
	Source  string
	File    string
	Pos     token.Position
}

// New builds a CompilerError. Source and File may be empty; when Source is
// empty, Format falls back to the one-line wire format.
func New(class Class, pos token.Position, lexeme, message string) *CompilerError {
	return &CompilerError{Class: class, Pos: pos, Lexeme: lexeme, Message: message}
}

// WithSource attaches the full source text and file name, enabling
// Format's caret rendering.
func (e *CompilerError) WithSource(source, file string) *CompilerError {
	e.Source = source
	e.File = file
	return e
}

// Error implements the error interface using the compiler's user-visible
// wire format: line:col ERROR at 'lexeme': message.
func (e *CompilerError) Error() string {
	return fmt.Sprintf("%d:%d ERROR at '%s': %s", e.Pos.Line, e.Pos.Column, e.Lexeme, e.Message)
}

// Format renders the error with a source line and caret, falling back to
// Error's one-liner when no source text is attached. Mirrors the shape of
// interactive compiler diagnostics: a header, the offending line, a caret,
// and the message.
func (e *CompilerError) Format(color bool) string {
	if e.Source == "" {
		return e.Error()
	}

	var sb strings.Builder

	if e.File != "" {
		fmt.Fprintf(&sb, "Error in %s:%d:%d\n", e.File, e.Pos.Line, e.Pos.Column)
	} else {
		fmt.Fprintf(&sb, "Error at line %d:%d\n", e.Pos.Line, e.Pos.Column)
	}

	if line := e.sourceLine(e.Pos.Line); line != "" {
		lineNumStr := fmt.Sprintf("%4d | ", e.Pos.Line)
		sb.WriteString(lineNumStr)
		sb.WriteString(line)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat(" ", len(lineNumStr)+max(e.Pos.Column-1, 0)))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m")
		}
		sb.WriteString("\n")
	}

	if color {
		sb.WriteString("\033[1m")
	}
	sb.WriteString(e.Message)
	if color {
		sb.WriteString("\033[0m")
	}

	return sb.String()
}

func (e *CompilerError) sourceLine(n int) string {
	lines := strings.Split(e.Source, "\n")
	if n < 1 || n > len(lines) {
		return ""
	}
	return lines[n-1]
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// FormatErrors renders a batch of diagnostics, one per stage run that did
// not stop at the first error (used by tests exercising several disjoint
// failures; the CLI itself is fail-fast and only ever sees one).
func FormatErrors(errs []*CompilerError, color bool) string {
	if len(errs) == 0 {
		return ""
	}
	if len(errs) == 1 {
		return errs[0].Format(color)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "compilation failed with %d error(s):\n\n", len(errs))
	for i, e := range errs {
		fmt.Fprintf(&sb, "[error %d of %d]\n", i+1, len(errs))
		sb.WriteString(e.Format(color))
		if i < len(errs)-1 {
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}

// Package ast defines the typed abstract syntax tree built by the parser.
// Every node exposes a pretty-printer, a type projection, and an l-value
// predicate; nodes divide into expressions (which produce a value) and
// statements (which perform an action). Children are owned by their
// syntactic parent; the root is owned by the compilation unit.
package ast

import (
	"strings"

	"github.com/pas32/pas32c/internal/symbols"
	"github.com/pas32/pas32c/pkg/token"
)

// Node is the interface every AST node implements.
type Node interface {
	// String renders the node as one line plus indented children: the
	// node's mnemonic and, in brackets, its static type, followed by its
	// children at one deeper indent level. This is the pretty-printer the
	// test suite snapshots.
	String() string
	// Pos returns the source coordinate of the node's leading token.
	Pos() token.Position
}

// Expression is a node that produces a value.
type Expression interface {
	Node
	// Type returns the node's static type. Never nil.
	Type() *symbols.Type
	// IsLValue reports whether the expression denotes an addressable
	// storage location.
	IsLValue() bool
	expressionNode()
}

// Statement is a node that performs an action but produces no value.
type Statement interface {
	Node
	statementNode()
}

// Program is the root of the tree: the top-level main block, plus the
// top-level scope the parser built alongside it.
type Program struct {
	Body  *BlockStatement
	Scope *symbols.Scope
}

func (p *Program) String() string { return p.Body.String() }

// indent returns s with every line after the first prefixed by two
// spaces, the convention every composite node's String uses for its
// children.
func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i := 1; i < len(lines); i++ {
		lines[i] = "  " + lines[i]
	}
	return strings.Join(lines, "\n")
}

func indentChild(n Node) string {
	return "  " + indent(n.String())
}

func typeTag(t *symbols.Type) string {
	if t == nil {
		return "untyped"
	}
	return t.String()
}

package ast

import (
	"fmt"
	"strings"

	"github.com/pas32/pas32c/pkg/token"
)

// Assignment is `lhs := rhs`: Lhs is checked to be an l-value and Rhs's
// type is checked (with implicit int->real promotion already applied) to
// match Lhs's type at construction.
type Assignment struct {
	Token token.Token
	Lhs   Expression
	Rhs   Expression
}

func (n *Assignment) statementNode()     {}
func (n *Assignment) Pos() token.Position { return n.Token.Pos }
func (n *Assignment) String() string {
	var sb strings.Builder
	sb.WriteString("Assignment\n")
	sb.WriteString(indentChild(n.Lhs))
	sb.WriteString("\n")
	sb.WriteString(indentChild(n.Rhs))
	return sb.String()
}

// BlockStatement is a sequential `begin ... end` run of statements.
type BlockStatement struct {
	Token      token.Token
	Statements []Statement
}

func (n *BlockStatement) statementNode()     {}
func (n *BlockStatement) Pos() token.Position { return n.Token.Pos }
func (n *BlockStatement) String() string {
	var sb strings.Builder
	sb.WriteString("Block")
	for _, s := range n.Statements {
		sb.WriteString("\n")
		sb.WriteString(indentChild(s))
	}
	return sb.String()
}

// ExpressionStatement is an expression evaluated for its side effect
// alone: in this language, only a procedure or write/writeln call.
type ExpressionStatement struct {
	Token token.Token
	Expr  Expression
}

func (n *ExpressionStatement) statementNode()     {}
func (n *ExpressionStatement) Pos() token.Position { return n.Token.Pos }
func (n *ExpressionStatement) String() string {
	return "ExpressionStatement\n" + indentChild(n.Expr)
}

// ForStatement is `for var := low to/downto high do body`. Descending
// reports whether this is a `downto` loop; the generator picks inc/dec
// and the matching comparison accordingly.
type ForStatement struct {
	Token      token.Token
	Variable   Expression
	Low        Expression
	High       Expression
	Descending bool
	Body       Statement
}

func (n *ForStatement) statementNode()     {}
func (n *ForStatement) Pos() token.Position { return n.Token.Pos }
func (n *ForStatement) String() string {
	dir := "to"
	if n.Descending {
		dir = "downto"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "For(%s)", dir)
	sb.WriteString("\n")
	sb.WriteString(indentChild(n.Variable))
	sb.WriteString("\n")
	sb.WriteString(indentChild(n.Low))
	sb.WriteString("\n")
	sb.WriteString(indentChild(n.High))
	sb.WriteString("\n")
	sb.WriteString(indentChild(n.Body))
	return sb.String()
}

// WhileStatement is `while cond do body`: the condition is tested before
// each iteration.
type WhileStatement struct {
	Token     token.Token
	Condition Expression
	Body      Statement
}

func (n *WhileStatement) statementNode()     {}
func (n *WhileStatement) Pos() token.Position { return n.Token.Pos }
func (n *WhileStatement) String() string {
	var sb strings.Builder
	sb.WriteString("While\n")
	sb.WriteString(indentChild(n.Condition))
	sb.WriteString("\n")
	sb.WriteString(indentChild(n.Body))
	return sb.String()
}

// RepeatStatement is `repeat body until cond`: the condition is tested
// after each iteration, so the body always runs at least once.
type RepeatStatement struct {
	Token     token.Token
	Body      []Statement
	Condition Expression
}

func (n *RepeatStatement) statementNode()     {}
func (n *RepeatStatement) Pos() token.Position { return n.Token.Pos }
func (n *RepeatStatement) String() string {
	var sb strings.Builder
	sb.WriteString("Repeat")
	for _, s := range n.Body {
		sb.WriteString("\n")
		sb.WriteString(indentChild(s))
	}
	sb.WriteString("\n")
	sb.WriteString(indentChild(n.Condition))
	return sb.String()
}

// IfStatement is `if cond then then-branch [else else-branch]`. Else is
// nil when there is no else clause.
type IfStatement struct {
	Token     token.Token
	Condition Expression
	Then      Statement
	Else      Statement
}

func (n *IfStatement) statementNode()     {}
func (n *IfStatement) Pos() token.Position { return n.Token.Pos }
func (n *IfStatement) String() string {
	var sb strings.Builder
	sb.WriteString("If\n")
	sb.WriteString(indentChild(n.Condition))
	sb.WriteString("\n")
	sb.WriteString(indentChild(n.Then))
	if n.Else != nil {
		sb.WriteString("\n")
		sb.WriteString(indentChild(n.Else))
	}
	return sb.String()
}

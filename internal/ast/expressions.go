package ast

import (
	"fmt"
	"strings"

	"github.com/pas32/pas32c/internal/symbols"
	"github.com/pas32/pas32c/pkg/token"
)

// IntegerLiteral is a scanned INT_CONST or HEX_CONST.
type IntegerLiteral struct {
	Token token.Token
	Value int64
}

func (n *IntegerLiteral) expressionNode()     {}
func (n *IntegerLiteral) Pos() token.Position { return n.Token.Pos }
func (n *IntegerLiteral) Type() *symbols.Type { return symbols.Integer }
func (n *IntegerLiteral) IsLValue() bool      { return false }
func (n *IntegerLiteral) String() string {
	return fmt.Sprintf("IntegerLiteral(%d) [Integer]", n.Value)
}

// RealLiteral is a scanned REAL_CONST. An integer promoted to real is an
// IntToRealConversion, not a RealLiteral.
type RealLiteral struct {
	Token token.Token
	Value float64
}

func (n *RealLiteral) expressionNode()     {}
func (n *RealLiteral) Pos() token.Position { return n.Token.Pos }
func (n *RealLiteral) Type() *symbols.Type { return symbols.Real }
func (n *RealLiteral) IsLValue() bool      { return false }
func (n *RealLiteral) String() string {
	return fmt.Sprintf("RealLiteral(%g) [Real]", n.Value)
}

// StringLiteral is a scanned STRING_CONST: a quoted-run/#code
// concatenation, already decoded to its runtime value by the scanner.
type StringLiteral struct {
	Token token.Token
	Value string
}

func (n *StringLiteral) expressionNode()     {}
func (n *StringLiteral) Pos() token.Position { return n.Token.Pos }
func (n *StringLiteral) Type() *symbols.Type { return symbols.Untyped }
func (n *StringLiteral) IsLValue() bool      { return false }
func (n *StringLiteral) String() string {
	return fmt.Sprintf("StringLiteral(%q) [untyped]", n.Value)
}

// VariableRef is a reference to a constant, parameter, global or local
// symbol by name.
type VariableRef struct {
	Token  token.Token
	Symbol *symbols.Symbol
}

func (n *VariableRef) expressionNode()     {}
func (n *VariableRef) Pos() token.Position { return n.Token.Pos }
func (n *VariableRef) Type() *symbols.Type { return n.Symbol.Type }
func (n *VariableRef) IsLValue() bool      { return n.Symbol.IsLValueSource() }
func (n *VariableRef) String() string {
	return fmt.Sprintf("VariableRef(%s) [%s]", n.Symbol.Name, typeTag(n.Symbol.Type))
}

// UnaryOp is a prefix operator: -x, +x, not x.
type UnaryOp struct {
	Token    token.Token
	Operator string
	Operand  Expression
	Static   *symbols.Type
}

func (n *UnaryOp) expressionNode()     {}
func (n *UnaryOp) Pos() token.Position { return n.Token.Pos }
func (n *UnaryOp) Type() *symbols.Type { return n.Static }
func (n *UnaryOp) IsLValue() bool      { return false }
func (n *UnaryOp) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "UnaryOp(%s) [%s]", n.Operator, typeTag(n.Static))
	sb.WriteString("\n")
	sb.WriteString(indentChild(n.Operand))
	return sb.String()
}

// BinaryOp is an infix operator: both operands, after any implicit
// int->real promotion injected by the parser, have identical actual
// types.
type BinaryOp struct {
	Token    token.Token
	Operator string
	Left     Expression
	Right    Expression
	Static   *symbols.Type
}

func (n *BinaryOp) expressionNode()     {}
func (n *BinaryOp) Pos() token.Position { return n.Token.Pos }
func (n *BinaryOp) Type() *symbols.Type { return n.Static }
func (n *BinaryOp) IsLValue() bool      { return false }
func (n *BinaryOp) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "BinaryOp(%s) [%s]", n.Operator, typeTag(n.Static))
	sb.WriteString("\n")
	sb.WriteString(indentChild(n.Left))
	sb.WriteString("\n")
	sb.WriteString(indentChild(n.Right))
	return sb.String()
}

// IntToRealConversion wraps an integer-typed expression, marking the spot
// the parser injected an implicit promotion so both sides of a binary op
// or assignment end up with identical actual types.
type IntToRealConversion struct {
	Operand Expression
}

func (n *IntToRealConversion) expressionNode()     {}
func (n *IntToRealConversion) Pos() token.Position { return n.Operand.Pos() }
func (n *IntToRealConversion) Type() *symbols.Type { return symbols.Real }
func (n *IntToRealConversion) IsLValue() bool      { return false }
func (n *IntToRealConversion) String() string {
	return "IntToReal [Real]\n" + indentChild(n.Operand)
}

// ArrayIndex is `arr[index]`: Array has array type, Index has integer
// type, enforced at construction.
type ArrayIndex struct {
	Token token.Token
	Array Expression
	Index Expression
}

func (n *ArrayIndex) expressionNode()     {}
func (n *ArrayIndex) Pos() token.Position { return n.Token.Pos }
func (n *ArrayIndex) IsLValue() bool      { return true }
func (n *ArrayIndex) Type() *symbols.Type {
	return n.Array.Type().Actual().Element
}
func (n *ArrayIndex) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "ArrayIndex [%s]", typeTag(n.Type()))
	sb.WriteString("\n")
	sb.WriteString(indentChild(n.Array))
	sb.WriteString("\n")
	sb.WriteString(indentChild(n.Index))
	return sb.String()
}

// FieldAccess is `record.field`: Field names a symbol that exists in the
// record's declared field scope, verified at construction.
type FieldAccess struct {
	Token  token.Token
	Record Expression
	Field  *symbols.Symbol
}

func (n *FieldAccess) expressionNode()     {}
func (n *FieldAccess) Pos() token.Position { return n.Token.Pos }
func (n *FieldAccess) IsLValue() bool      { return true }
func (n *FieldAccess) Type() *symbols.Type { return n.Field.Type }
func (n *FieldAccess) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "FieldAccess(.%s) [%s]", n.Field.Name, typeTag(n.Field.Type))
	sb.WriteString("\n")
	sb.WriteString(indentChild(n.Record))
	return sb.String()
}

// Call invokes a user-declared procedure or function. Argument count and
// types are checked against the callee's parameters at construction;
// by-reference formals require l-value arguments.
type Call struct {
	Token    token.Token
	Callee   *symbols.Symbol
	Args     []Expression
}

func (n *Call) expressionNode()     {}
func (n *Call) Pos() token.Position { return n.Token.Pos }
func (n *Call) IsLValue() bool      { return false }
func (n *Call) Type() *symbols.Type {
	if n.Callee.Is(symbols.KindFunction) {
		return n.Callee.Type
	}
	return symbols.Untyped
}
func (n *Call) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Call(%s) [%s]", n.Callee.Name, typeTag(n.Type()))
	for _, a := range n.Args {
		sb.WriteString("\n")
		sb.WriteString(indentChild(a))
	}
	return sb.String()
}

// WriteCall is the built-in `write`/`writeln` call: each argument is
// dispatched to printf by its own type, so WriteCall carries no callee
// symbol (there is none — it is a compiler intrinsic).
type WriteCall struct {
	Token   token.Token
	Newline bool
	Args    []Expression
}

func (n *WriteCall) expressionNode()     {}
func (n *WriteCall) Pos() token.Position { return n.Token.Pos }
func (n *WriteCall) IsLValue() bool      { return false }
func (n *WriteCall) Type() *symbols.Type { return symbols.Untyped }
func (n *WriteCall) String() string {
	name := "write"
	if n.Newline {
		name = "writeln"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "WriteCall(%s) [untyped]", name)
	for _, a := range n.Args {
		sb.WriteString("\n")
		sb.WriteString(indentChild(a))
	}
	return sb.String()
}

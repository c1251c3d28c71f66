package parser

import (
	"strconv"
	"strings"

	"github.com/pas32/pas32c/internal/ast"
	"github.com/pas32/pas32c/internal/errors"
	"github.com/pas32/pas32c/internal/symbols"
	"github.com/pas32/pas32c/pkg/token"
)

var relationalOps = map[token.Type]bool{
	token.EQ: true, token.NE: true, token.LT: true,
	token.GT: true, token.LE: true, token.GE: true,
}

var additiveOps = map[token.Type]bool{
	token.PLUS: true, token.MINUS: true, token.OR: true, token.XOR: true,
}

var multiplicativeOps = map[token.Type]bool{
	token.STAR: true, token.SLASH: true, token.DIV: true,
	token.MOD: true, token.AND: true, token.SHL: true, token.SHR: true,
}

// parseExpression parses a full expression at the relational precedence
// level, the lowest in the grammar.
func (p *Parser) parseExpression() (ast.Expression, error) {
	return p.parseRelational()
}

func (p *Parser) parseRelational() (ast.Expression, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for relationalOps[p.curToken.Type] {
		opTok := p.curToken
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left, err = p.buildBinaryOp(opTok, left, right)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *Parser) parseAdditive() (ast.Expression, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for additiveOps[p.curToken.Type] {
		opTok := p.curToken
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left, err = p.buildBinaryOp(opTok, left, right)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (ast.Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for multiplicativeOps[p.curToken.Type] {
		opTok := p.curToken
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left, err = p.buildBinaryOp(opTok, left, right)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *Parser) parseUnary() (ast.Expression, error) {
	switch p.curToken.Type {
	case token.PLUS, token.MINUS, token.NOT:
		opTok := p.curToken
		if err := p.next(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if operand.Type().Actual().Kind != symbols.TypeInteger && operand.Type().Actual().Kind != symbols.TypeReal {
			return nil, errors.New(errors.Semantic, opTok.Pos, opTok.Literal, "integer or real expression expected")
		}
		return &ast.UnaryOp{Token: opTok, Operator: opTok.Literal, Operand: operand, Static: operand.Type()}, nil
	default:
		return p.parseFactor()
	}
}

// buildBinaryOp enforces the single shared invariant for every binary
// operator: both operands end up with identical actual types, promoting
// int->real on exactly one side first if that alone would fix a mismatch.
func (p *Parser) buildBinaryOp(opTok token.Token, left, right ast.Expression) (ast.Expression, error) {
	left, right, resultType, err := p.unifyOperandTypes(opTok, left, right)
	if err != nil {
		return nil, err
	}
	if relationalOps[opTok.Type] {
		resultType = symbols.Integer
	}
	return &ast.BinaryOp{Token: opTok, Operator: opTok.Literal, Left: left, Right: right, Static: resultType}, nil
}

// unifyOperandTypes promotes int->real on exactly one side when doing so
// makes both operands' actual types identical, and fails otherwise.
// `/` is always real division, so both operands are forced to Real
// regardless of whether they already agree: there is no integer `/`
// operator to fall back to, unlike `div`.
func (p *Parser) unifyOperandTypes(opTok token.Token, left, right ast.Expression) (ast.Expression, ast.Expression, *symbols.Type, error) {
	if opTok.Type == token.SLASH {
		if left.Type().Actual().Kind != symbols.TypeReal {
			left = &ast.IntToRealConversion{Operand: left}
		}
		if right.Type().Actual().Kind != symbols.TypeReal {
			right = &ast.IntToRealConversion{Operand: right}
		}
		return left, right, symbols.Real, nil
	}

	lt, rt := left.Type().Actual(), right.Type().Actual()
	if lt.Equals(rt) {
		return left, right, left.Type(), nil
	}
	if lt.Kind == symbols.TypeInteger && rt.Kind == symbols.TypeReal {
		return &ast.IntToRealConversion{Operand: left}, right, symbols.Real, nil
	}
	if lt.Kind == symbols.TypeReal && rt.Kind == symbols.TypeInteger {
		return left, &ast.IntToRealConversion{Operand: right}, symbols.Real, nil
	}
	return nil, nil, nil, errors.New(errors.Semantic, opTok.Pos, opTok.Literal,
		"incompatible types: "+lt.String()+" and "+rt.String())
}

// parseFactor parses a literal, a parenthesised expression, or an
// identifier-led primary (variable, call, indexed access, field access),
// with postfix `.field` / `[index,...]` chaining.
func (p *Parser) parseFactor() (ast.Expression, error) {
	switch p.curToken.Type {
	case token.INT:
		return p.parseIntLiteral()
	case token.HEX:
		return p.parseHexLiteral()
	case token.FLOAT:
		return p.parseRealLiteral()
	case token.STRING:
		return p.parseStringLiteral()
	case token.LPAREN:
		if err := p.next(); err != nil {
			return nil, err
		}
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return expr, nil
	case token.IDENT:
		return p.parseIdentifierLed()
	default:
		return nil, p.errorf("unexpected token '%s'", p.curToken.Literal)
	}
}

func (p *Parser) parseIntLiteral() (ast.Expression, error) {
	tok := p.curToken
	v, err := strconv.ParseInt(tok.Literal, 10, 64)
	if err != nil {
		return nil, p.errorf("malformed integer literal '%s'", tok.Literal)
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	return &ast.IntegerLiteral{Token: tok, Value: v}, nil
}

func (p *Parser) parseHexLiteral() (ast.Expression, error) {
	tok := p.curToken
	v, err := strconv.ParseInt(strings.TrimPrefix(tok.Literal, "$"), 16, 64)
	if err != nil {
		return nil, p.errorf("malformed hex literal '%s'", tok.Literal)
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	return &ast.IntegerLiteral{Token: tok, Value: v}, nil
}

func (p *Parser) parseRealLiteral() (ast.Expression, error) {
	tok := p.curToken
	v, err := strconv.ParseFloat(tok.Literal, 64)
	if err != nil {
		return nil, p.errorf("malformed real literal '%s'", tok.Literal)
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	return &ast.RealLiteral{Token: tok, Value: v}, nil
}

func (p *Parser) parseStringLiteral() (ast.Expression, error) {
	tok := p.curToken
	if err := p.next(); err != nil {
		return nil, err
	}
	return &ast.StringLiteral{Token: tok, Value: tok.Literal}, nil
}

// parseIdentifierLed parses an identifier-anchored primary: the built-in
// write/writeln call, a user call, or a variable reference with any
// number of chained `.field` / `[index,...]` postfixes.
func (p *Parser) parseIdentifierLed() (ast.Expression, error) {
	nameTok := p.curToken

	if nameTok.Canonical == "write" || nameTok.Canonical == "writeln" {
		return p.parseWriteCall(nameTok)
	}

	sym, ok := p.scopes.Lookup(nameTok.Canonical)
	if !ok {
		return nil, errors.New(errors.Semantic, nameTok.Pos, nameTok.Literal, "identifier not found: '"+nameTok.Literal+"'")
	}
	if err := p.next(); err != nil {
		return nil, err
	}

	var expr ast.Expression
	if sym.IsCallable() {
		call, err := p.parseCallArgs(nameTok, sym)
		if err != nil {
			return nil, err
		}
		expr = call
	} else if sym.IsType() {
		return nil, errors.New(errors.Semantic, nameTok.Pos, nameTok.Literal, "'"+nameTok.Literal+"' is a type, not a value")
	} else {
		expr = &ast.VariableRef{Token: nameTok, Symbol: sym}
	}

	for {
		switch p.curToken.Type {
		case token.LBRACK:
			var err error
			expr, err = p.parseArrayIndex(expr)
			if err != nil {
				return nil, err
			}
		case token.DOT:
			var err error
			expr, err = p.parseFieldAccess(expr)
			if err != nil {
				return nil, err
			}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parseArrayIndex(arr ast.Expression) (ast.Expression, error) {
	tok := p.curToken
	if err := p.next(); err != nil { // past '['
		return nil, err
	}
	if arr.Type().Actual().Kind != symbols.TypeArray {
		return nil, errors.New(errors.Semantic, tok.Pos, tok.Literal, "'[' applied to a non-array expression")
	}
	index, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if index.Type().Actual().Kind != symbols.TypeInteger {
		return nil, errors.New(errors.Semantic, tok.Pos, tok.Literal, "integer expression expected")
	}
	if err := p.expect(token.RBRACK); err != nil {
		return nil, err
	}
	return &ast.ArrayIndex{Token: tok, Array: arr, Index: index}, nil
}

func (p *Parser) parseFieldAccess(rec ast.Expression) (ast.Expression, error) {
	tok := p.curToken
	if err := p.next(); err != nil { // past '.'
		return nil, err
	}
	if rec.Type().Actual().Kind != symbols.TypeRecord {
		return nil, errors.New(errors.Semantic, tok.Pos, tok.Literal, "'.' applied to a non-record expression")
	}
	if p.curToken.Type != token.IDENT {
		return nil, p.errorf("expected field name, found '%s'", p.curToken.Literal)
	}
	fieldTok := p.curToken
	field, ok := rec.Type().Actual().Fields.Lookup(fieldTok.Canonical)
	if !ok {
		return nil, errors.New(errors.Semantic, fieldTok.Pos, fieldTok.Literal, "unknown record field '"+fieldTok.Literal+"'")
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	return &ast.FieldAccess{Token: tok, Record: rec, Field: field}, nil
}

// parseCallArgs parses a call's argument list (the parenthesis pair may be
// omitted entirely for a zero-argument call), matching count and types
// positionally against the callee's formals.
func (p *Parser) parseCallArgs(nameTok token.Token, callee *symbols.Symbol) (ast.Expression, error) {
	var args []ast.Expression
	if p.curToken.Type == token.LPAREN {
		if err := p.next(); err != nil {
			return nil, err
		}
		for p.curToken.Type != token.RPAREN {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.curToken.Type == token.COMMA {
				if err := p.next(); err != nil {
					return nil, err
				}
			} else if p.curToken.Type != token.RPAREN {
				return nil, p.errorf("expected ',' or ')', found '%s'", p.curToken.Literal)
			}
		}
		if err := p.next(); err != nil { // past ')'
			return nil, err
		}
	}

	if len(args) < len(callee.Params) {
		return nil, errors.New(errors.Semantic, nameTok.Pos, nameTok.Literal, "too few actual parameters")
	}
	if len(args) > len(callee.Params) {
		return nil, errors.New(errors.Semantic, nameTok.Pos, nameTok.Literal, "too many actual parameters")
	}
	for i, formal := range callee.Params {
		actual := args[i]
		if !actual.Type().Actual().Equals(formal.Type.Actual()) {
			if formal.Type.Actual().Kind == symbols.TypeReal && actual.Type().Actual().Kind == symbols.TypeInteger {
				args[i] = &ast.IntToRealConversion{Operand: actual}
				continue
			}
			return nil, errors.New(errors.Semantic, nameTok.Pos, nameTok.Literal,
				"incompatible types: "+formal.Type.String()+" and "+actual.Type().String())
		}
		if formal.ByRef && !actual.IsLValue() {
			return nil, errors.New(errors.Semantic, nameTok.Pos, nameTok.Literal, "l-value expected")
		}
	}

	return &ast.Call{Token: nameTok, Callee: callee, Args: args}, nil
}

// parseWriteCall parses the built-in `write(args...)` / `writeln(args...)`
// intrinsic, which accepts any number of integer, real, or string
// arguments and has no declared symbol of its own.
func (p *Parser) parseWriteCall(nameTok token.Token) (ast.Expression, error) {
	if err := p.next(); err != nil {
		return nil, err
	}
	var args []ast.Expression
	if p.curToken.Type == token.LPAREN {
		if err := p.next(); err != nil {
			return nil, err
		}
		for p.curToken.Type != token.RPAREN {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.curToken.Type == token.COMMA {
				if err := p.next(); err != nil {
					return nil, err
				}
			} else if p.curToken.Type != token.RPAREN {
				return nil, p.errorf("expected ',' or ')', found '%s'", p.curToken.Literal)
			}
		}
		if err := p.next(); err != nil {
			return nil, err
		}
	}
	return &ast.WriteCall{Token: nameTok, Newline: nameTok.Canonical == "writeln", Args: args}, nil
}

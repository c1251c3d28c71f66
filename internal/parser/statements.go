package parser

import (
	"github.com/pas32/pas32c/internal/ast"
	"github.com/pas32/pas32c/internal/errors"
	"github.com/pas32/pas32c/internal/symbols"
	"github.com/pas32/pas32c/pkg/token"
)

// parseStatement dispatches on curToken to one of the five statement
// shapes, or falls back to assignment / expression-statement for anything
// identifier-led.
func (p *Parser) parseStatement() (ast.Statement, error) {
	switch p.curToken.Type {
	case token.BEGIN:
		return p.parseBlock()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.FOR:
		return p.parseFor()
	case token.REPEAT:
		return p.parseRepeat()
	default:
		return p.parseSimpleStatement()
	}
}

// parseSimpleStatement parses an assignment or an expression-as-statement
// (in this language, only a procedure or write/writeln call).
func (p *Parser) parseSimpleStatement() (ast.Statement, error) {
	tok := p.curToken
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if p.curToken.Type == token.ASSIGN {
		if !expr.IsLValue() {
			return nil, errors.New(errors.Semantic, tok.Pos, tok.Literal, "l-value expected")
		}
		if err := p.next(); err != nil { // past ':='
			return nil, err
		}
		rhsTok := p.curToken
		rhs, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		rhs, err = p.coerceAssignment(rhsTok, expr.Type(), rhs)
		if err != nil {
			return nil, err
		}
		return &ast.Assignment{Token: tok, Lhs: expr, Rhs: rhs}, nil
	}

	return &ast.ExpressionStatement{Token: tok, Expr: expr}, nil
}

// coerceAssignment enforces the assignment type invariant: rhs's actual
// type must match lhsType after at most one implicit int->real promotion.
func (p *Parser) coerceAssignment(tok token.Token, lhsType *symbols.Type, rhs ast.Expression) (ast.Expression, error) {
	lt, rt := lhsType.Actual(), rhs.Type().Actual()
	if lt.Equals(rt) {
		return rhs, nil
	}
	if lt.Kind == symbols.TypeReal && rt.Kind == symbols.TypeInteger {
		return &ast.IntToRealConversion{Operand: rhs}, nil
	}
	return nil, errors.New(errors.Semantic, tok.Pos, tok.Literal,
		"incompatible types: "+lt.String()+" and "+rt.String())
}

// parseIf parses `if cond then then-branch [else else-branch]`.
func (p *Parser) parseIf() (ast.Statement, error) {
	tok := p.curToken
	if err := p.next(); err != nil { // past 'if'
		return nil, err
	}
	condTok := p.curToken
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if cond.Type().Actual().Kind != symbols.TypeInteger {
		return nil, errors.New(errors.Semantic, condTok.Pos, condTok.Literal, "integer expression expected")
	}
	if err := p.expect(token.THEN); err != nil {
		return nil, err
	}
	thenStmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	var elseStmt ast.Statement
	if p.curToken.Type == token.ELSE {
		if err := p.next(); err != nil {
			return nil, err
		}
		elseStmt, err = p.parseStatement()
		if err != nil {
			return nil, err
		}
	}
	return &ast.IfStatement{Token: tok, Condition: cond, Then: thenStmt, Else: elseStmt}, nil
}

// parseWhile parses `while cond do body`.
func (p *Parser) parseWhile() (ast.Statement, error) {
	tok := p.curToken
	if err := p.next(); err != nil { // past 'while'
		return nil, err
	}
	condTok := p.curToken
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if cond.Type().Actual().Kind != symbols.TypeInteger {
		return nil, errors.New(errors.Semantic, condTok.Pos, condTok.Literal, "integer expression expected")
	}
	if err := p.expect(token.DO); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStatement{Token: tok, Condition: cond, Body: body}, nil
}

// parseRepeat parses `repeat S1; S2; ... until cond`: a statement list
// (not a single block node, since there is no `begin`/`end` delimiting it)
// terminated by `until`.
func (p *Parser) parseRepeat() (ast.Statement, error) {
	tok := p.curToken
	if err := p.next(); err != nil { // past 'repeat'
		return nil, err
	}
	var body []ast.Statement
	for p.curToken.Type != token.UNTIL {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
		if p.curToken.Type == token.SEMI {
			if err := p.next(); err != nil {
				return nil, err
			}
		} else if p.curToken.Type != token.UNTIL {
			return nil, p.errorf("expected ';' or 'until', found '%s'", p.curToken.Literal)
		}
	}
	if err := p.next(); err != nil { // past 'until'
		return nil, err
	}
	condTok := p.curToken
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if cond.Type().Actual().Kind != symbols.TypeInteger {
		return nil, errors.New(errors.Semantic, condTok.Pos, condTok.Literal, "integer expression expected")
	}
	return &ast.RepeatStatement{Token: tok, Body: body, Condition: cond}, nil
}

// parseFor parses `for i := A to/downto B do S`, requiring `i` to already
// be an in-scope integer variable.
func (p *Parser) parseFor() (ast.Statement, error) {
	tok := p.curToken
	if err := p.next(); err != nil { // past 'for'
		return nil, err
	}
	if p.curToken.Type != token.IDENT {
		return nil, p.errorf("expected loop variable, found '%s'", p.curToken.Literal)
	}
	nameTok := p.curToken
	sym, ok := p.scopes.Lookup(nameTok.Canonical)
	if !ok {
		return nil, errors.New(errors.Semantic, nameTok.Pos, nameTok.Literal, "identifier not found: '"+nameTok.Literal+"'")
	}
	if !sym.IsLValueSource() || sym.Type.Actual().Kind != symbols.TypeInteger {
		return nil, errors.New(errors.Semantic, nameTok.Pos, nameTok.Literal, "integer variable expected")
	}
	variable := &ast.VariableRef{Token: nameTok, Symbol: sym}
	if err := p.next(); err != nil {
		return nil, err
	}

	if err := p.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	lowTok := p.curToken
	low, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if low.Type().Actual().Kind != symbols.TypeInteger {
		return nil, errors.New(errors.Semantic, lowTok.Pos, lowTok.Literal, "integer expression expected")
	}

	descending := false
	switch p.curToken.Type {
	case token.TO:
		descending = false
	case token.DOWNTO:
		descending = true
	default:
		return nil, p.errorf("expected 'to' or 'downto', found '%s'", p.curToken.Literal)
	}
	if err := p.next(); err != nil {
		return nil, err
	}

	highTok := p.curToken
	high, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if high.Type().Actual().Kind != symbols.TypeInteger {
		return nil, errors.New(errors.Semantic, highTok.Pos, highTok.Literal, "integer expression expected")
	}

	if err := p.expect(token.DO); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}

	return &ast.ForStatement{
		Token: tok, Variable: variable, Low: low, High: high,
		Descending: descending, Body: body,
	}, nil
}

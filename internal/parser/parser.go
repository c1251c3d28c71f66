// Package parser implements the recursive-descent parser described in the
// language reference: one token of lookahead, parsing and type-checking
// fused into a single pass that builds the typed AST and the scope stack
// simultaneously.
package parser

import (
	"fmt"

	"github.com/pas32/pas32c/internal/ast"
	"github.com/pas32/pas32c/internal/errors"
	"github.com/pas32/pas32c/internal/lexer"
	"github.com/pas32/pas32c/internal/symbols"
	"github.com/pas32/pas32c/pkg/token"
)

// Parser consumes tokens from a Lexer and builds an ast.Program plus the
// scope stack it type-checked against. A Parser is single-use: construct
// one per compilation unit.
type Parser struct {
	l *lexer.Lexer

	curToken  token.Token
	peekToken token.Token

	scopes *symbols.Stack
}

// New constructs a Parser and primes its two-token lookahead window.
func New(l *lexer.Lexer) (*Parser, error) {
	p := &Parser{l: l, scopes: symbols.NewStack()}
	if err := p.next(); err != nil {
		return nil, err
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	return p, nil
}

// next shifts the lookahead window forward by one token.
func (p *Parser) next() error {
	p.curToken = p.peekToken
	tok, err := p.l.Advance()
	if err != nil {
		return err
	}
	p.peekToken = tok
	return nil
}

func (p *Parser) errorf(format string, args ...any) error {
	return errors.New(errors.Syntax, p.curToken.Pos, p.curToken.Literal, fmt.Sprintf(format, args...))
}

// expect checks curToken's type, advances past it, and fails otherwise.
func (p *Parser) expect(tt token.Type) error {
	if p.curToken.Type != tt {
		return p.errorf("expected '%s', found '%s'", tt.String(), p.curToken.Literal)
	}
	return p.next()
}

// ParseProgram is the top-level entry: declarations in any order, any
// number, followed by the mandatory `begin ... end.` main block.
func ParseProgram(l *lexer.Lexer) (*ast.Program, error) {
	p, err := New(l)
	if err != nil {
		return nil, err
	}
	return p.parseProgram()
}

func (p *Parser) parseProgram() (*ast.Program, error) {
	top := p.scopes.Top()

	for p.curToken.Type == token.VAR || p.curToken.Type == token.TYPE ||
		p.curToken.Type == token.PROCEDURE || p.curToken.Type == token.FUNCTION {
		if err := p.parseDeclaration(true); err != nil {
			return nil, err
		}
	}

	if p.curToken.Type != token.BEGIN {
		return nil, p.errorf("expected 'begin', found '%s'", p.curToken.Literal)
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.DOT); err != nil {
		return nil, err
	}
	if p.curToken.Type != token.EOF {
		return nil, p.errorf("unexpected token '%s' after final '.'", p.curToken.Literal)
	}

	return &ast.Program{Body: body, Scope: top}, nil
}

// parseDeclaration dispatches on curToken for one `var`/`type`/`procedure`/
// `function` declaration, at either top level (global=true) or inside a
// routine body (global=false, declaring locals).
func (p *Parser) parseDeclaration(global bool) error {
	switch p.curToken.Type {
	case token.VAR:
		return p.parseVarSection(global)
	case token.TYPE:
		return p.parseTypeSection()
	case token.PROCEDURE:
		return p.parseProcedure()
	case token.FUNCTION:
		return p.parseFunction()
	default:
		return p.errorf("expected declaration, found '%s'", p.curToken.Literal)
	}
}

// parseVarSection parses one or more `name[, name...] : type;` groups
// following a `var` keyword, declaring each as a global or a local
// depending on the current scope.
func (p *Parser) parseVarSection(global bool) error {
	if err := p.next(); err != nil { // past 'var'
		return err
	}
	for p.curToken.Type == token.IDENT {
		var names []token.Token
		for {
			if p.curToken.Type != token.IDENT {
				return p.errorf("expected identifier, found '%s'", p.curToken.Literal)
			}
			names = append(names, p.curToken)
			if err := p.next(); err != nil {
				return err
			}
			if p.curToken.Type != token.COMMA {
				break
			}
			if err := p.next(); err != nil {
				return err
			}
		}
		if err := p.expect(token.COLON); err != nil {
			return err
		}
		t, err := p.parseTypeRef()
		if err != nil {
			return err
		}
		if err := p.expect(token.SEMI); err != nil {
			return err
		}
		for _, nameTok := range names {
			if err := p.declareVariable(nameTok, t, global); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Parser) declareVariable(nameTok token.Token, t *symbols.Type, global bool) error {
	scope := p.scopes.Top()
	var err error
	if global {
		_, err = scope.DeclareGlobal(nameTok.Canonical, t, dataLabel(nameTok.Canonical))
	} else {
		_, err = scope.DeclareLocal(nameTok.Canonical, t)
	}
	if err != nil {
		return errors.New(errors.Syntax, nameTok.Pos, nameTok.Literal, err.Error())
	}
	return nil
}

func dataLabel(name string) string { return "g_" + name }

// parseTypeSection parses one or more `Name = typeref;` declarations
// following a `type` keyword.
func (p *Parser) parseTypeSection() error {
	if err := p.next(); err != nil { // past 'type'
		return err
	}
	for p.curToken.Type == token.IDENT {
		nameTok := p.curToken
		if err := p.next(); err != nil {
			return err
		}
		if err := p.expect(token.EQ); err != nil {
			return err
		}
		target, err := p.parseTypeRef()
		if err != nil {
			return err
		}
		if err := p.expect(token.SEMI); err != nil {
			return err
		}
		alias := symbols.NewAliasType(nameTok.Canonical, target)
		if _, err := p.scopes.Top().DeclareType(nameTok.Canonical, alias); err != nil {
			return errors.New(errors.Syntax, nameTok.Pos, nameTok.Literal, err.Error())
		}
	}
	return nil
}

// parseTypeRef parses a type reference: a named type, an array type, a
// record type, or a reserved pointer type.
func (p *Parser) parseTypeRef() (*symbols.Type, error) {
	switch p.curToken.Type {
	case token.IDENT, token.STRINGKW:
		nameTok := p.curToken
		if err := p.next(); err != nil {
			return nil, err
		}
		sym, err := p.scopes.LookupOrError(nameTok.Canonical, symbols.KindType)
		if err != nil {
			return nil, errors.New(errors.Semantic, nameTok.Pos, nameTok.Literal, err.Error())
		}
		return sym.Type, nil
	case token.ARRAY:
		return p.parseArrayType()
	case token.RECORD:
		return p.parseRecordType()
	case token.CARET:
		return nil, p.errorf("pointers not implemented")
	default:
		return nil, p.errorf("expected type, found '%s'", p.curToken.Literal)
	}
}

func (p *Parser) parseArrayType() (*symbols.Type, error) {
	if err := p.next(); err != nil { // past 'array'
		return nil, err
	}
	if err := p.expect(token.LBRACK); err != nil {
		return nil, err
	}
	lowTok := p.curToken
	low, err := p.parseIntConst()
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.DOTDOT); err != nil {
		return nil, err
	}
	high, err := p.parseIntConst()
	if err != nil {
		return nil, err
	}
	if high < low {
		return nil, errors.New(errors.Semantic, lowTok.Pos, lowTok.Literal, "array high bound must not be less than low bound")
	}
	if err := p.expect(token.RBRACK); err != nil {
		return nil, err
	}
	if err := p.expect(token.OF); err != nil {
		return nil, err
	}
	elem, err := p.parseTypeRef()
	if err != nil {
		return nil, err
	}
	return symbols.NewArrayType(elem, low, high), nil
}

func (p *Parser) parseIntConst() (int, error) {
	if p.curToken.Type != token.INT {
		return 0, p.errorf("non-integer array bounds")
	}
	v, err := parseDecimal(p.curToken.Literal)
	if err != nil {
		return 0, p.errorf("non-integer array bounds")
	}
	return v, p.next()
}

func (p *Parser) parseRecordType() (*symbols.Type, error) {
	if err := p.next(); err != nil { // past 'record'
		return nil, err
	}
	fields := symbols.NewScope()
	for p.curToken.Type == token.IDENT {
		var names []token.Token
		for {
			names = append(names, p.curToken)
			if err := p.next(); err != nil {
				return nil, err
			}
			if p.curToken.Type != token.COMMA {
				break
			}
			if err := p.next(); err != nil {
				return nil, err
			}
		}
		if err := p.expect(token.COLON); err != nil {
			return nil, err
		}
		t, err := p.parseTypeRef()
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.SEMI); err != nil {
			return nil, err
		}
		for _, nameTok := range names {
			if _, err := fields.DeclareLocal(nameTok.Canonical, t); err != nil {
				return nil, errors.New(errors.Syntax, nameTok.Pos, nameTok.Literal, err.Error())
			}
		}
	}
	if err := p.expect(token.END); err != nil {
		return nil, err
	}
	return symbols.NewRecordType("", fields), nil
}

// parseBlock parses a `begin ... end` sequential statement list.
func (p *Parser) parseBlock() (*ast.BlockStatement, error) {
	beginTok := p.curToken
	if err := p.next(); err != nil { // past 'begin'
		return nil, err
	}
	block := &ast.BlockStatement{Token: beginTok}
	for p.curToken.Type != token.END {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Statements = append(block.Statements, stmt)
		if p.curToken.Type == token.SEMI {
			if err := p.next(); err != nil {
				return nil, err
			}
		} else if p.curToken.Type != token.END {
			return nil, p.errorf("expected ';' or 'end', found '%s'", p.curToken.Literal)
		}
	}
	if err := p.next(); err != nil { // past 'end'
		return nil, err
	}
	return block, nil
}

func parseDecimal(s string) (int, error) {
	var v int
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("not a decimal integer: %s", s)
		}
		v = v*10 + int(r-'0')
	}
	return v, nil
}

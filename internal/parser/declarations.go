package parser

import (
	"github.com/pas32/pas32c/internal/ast"
	"github.com/pas32/pas32c/internal/errors"
	"github.com/pas32/pas32c/internal/symbols"
	"github.com/pas32/pas32c/pkg/token"
)

// parseProcedure parses a full `procedure Name(params); var...; begin...end;`
// declaration, pushing a fresh inner scope before the formals and body and
// popping it after the terminating ';'.
func (p *Parser) parseProcedure() error {
	if err := p.next(); err != nil { // past 'procedure'
		return err
	}
	if p.curToken.Type != token.IDENT {
		return p.errorf("expected procedure name, found '%s'", p.curToken.Literal)
	}
	nameTok := p.curToken
	if err := p.next(); err != nil {
		return err
	}

	inner := p.scopes.PushNew()
	params, err := p.parseFormals()
	if err != nil {
		p.scopes.Pop()
		return err
	}
	if err := p.expect(token.SEMI); err != nil {
		p.scopes.Pop()
		return err
	}

	sym, err := p.scopes.Bottom().DeclareProcedure(nameTok.Canonical, params, inner)
	if err != nil {
		p.scopes.Pop()
		return errors.New(errors.Syntax, nameTok.Pos, nameTok.Literal, err.Error())
	}
	// Declared in the immortal bottom scope before the body is parsed, so
	// the routine can call itself and every routine declared after it can
	// call it. A routine declared later is not yet visible here: there are
	// no forward declarations.

	body, err := p.parseRoutineBody()
	if err != nil {
		p.scopes.Pop()
		return err
	}
	sym.Body = body
	p.scopes.Pop()
	return nil
}

// parseFunction parses `function Name(params): resultType; var...; begin...end;`,
// synthesising the implicit `Result` local slot in the routine's inner scope.
func (p *Parser) parseFunction() error {
	if err := p.next(); err != nil { // past 'function'
		return err
	}
	if p.curToken.Type != token.IDENT {
		return p.errorf("expected function name, found '%s'", p.curToken.Literal)
	}
	nameTok := p.curToken
	if err := p.next(); err != nil {
		return err
	}

	inner := p.scopes.PushNew()
	params, err := p.parseFormals()
	if err != nil {
		p.scopes.Pop()
		return err
	}
	if err := p.expect(token.COLON); err != nil {
		p.scopes.Pop()
		return err
	}
	resultType, err := p.parseTypeRef()
	if err != nil {
		p.scopes.Pop()
		return err
	}
	if err := p.expect(token.SEMI); err != nil {
		p.scopes.Pop()
		return err
	}

	if _, err := inner.DeclareLocal("result", resultType); err != nil {
		p.scopes.Pop()
		return errors.New(errors.Syntax, nameTok.Pos, nameTok.Literal, err.Error())
	}

	sym, err := p.scopes.Bottom().DeclareFunction(nameTok.Canonical, params, inner, resultType)
	if err != nil {
		p.scopes.Pop()
		return errors.New(errors.Syntax, nameTok.Pos, nameTok.Literal, err.Error())
	}

	body, err := p.parseRoutineBody()
	if err != nil {
		p.scopes.Pop()
		return err
	}
	sym.Body = body
	p.scopes.Pop()
	return nil
}

// parseFormals parses an optional `(name[, name...]: type; ...)` parameter
// list, declaring each into the already-pushed inner scope.
func (p *Parser) parseFormals() ([]*symbols.Symbol, error) {
	if p.curToken.Type != token.LPAREN {
		return nil, nil
	}
	if err := p.next(); err != nil { // past '('
		return nil, err
	}

	var params []*symbols.Symbol
	for p.curToken.Type != token.RPAREN {
		byRef := false
		if p.curToken.Type == token.VAR {
			byRef = true
			if err := p.next(); err != nil {
				return nil, err
			}
		}
		var names []token.Token
		for {
			if p.curToken.Type != token.IDENT {
				return nil, p.errorf("expected parameter name, found '%s'", p.curToken.Literal)
			}
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
		for _, nameTok := range names {
			sym, err := p.scopes.Top().DeclareParameter(nameTok.Canonical, t, byRef)
			if err != nil {
				return nil, errors.New(errors.Syntax, nameTok.Pos, nameTok.Literal, err.Error())
			}
			params = append(params, sym)
		}
		if p.curToken.Type == token.SEMI {
			if err := p.next(); err != nil {
				return nil, err
			}
		} else if p.curToken.Type != token.RPAREN {
			return nil, p.errorf("expected ';' or ')', found '%s'", p.curToken.Literal)
		}
	}
	return params, p.next()
}

// parseRoutineBody parses the `var`/`type` locals section and the
// mandatory `begin...end` block making up a routine's body, terminated by
// the declaration's trailing ';'.
func (p *Parser) parseRoutineBody() (*ast.BlockStatement, error) {
	for p.curToken.Type == token.VAR || p.curToken.Type == token.TYPE {
		if err := p.parseDeclaration(false); err != nil {
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
	if err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	return body, nil
}

// Package printer implements the three pretty-printers the language
// reference requires as observation hooks: the token stream, the symbol
// table, and the AST. None of the three participate in compilation; they
// exist for the testsuite to snapshot.
package printer

import (
	"fmt"
	"strings"

	"github.com/pas32/pas32c/internal/ast"
	"github.com/pas32/pas32c/internal/lexer"
	"github.com/pas32/pas32c/internal/symbols"
	"github.com/pas32/pas32c/pkg/token"
)

// Tokens scans src to completion and renders one line per token: `line:col
// CATEGORY value`. It stops at the first lexical error, which it renders
// as the final line instead of a token.
func Tokens(src string) string {
	l := lexer.New(src)
	var sb strings.Builder
	for {
		tok, err := l.Advance()
		if err != nil {
			sb.WriteString(err.Error())
			sb.WriteString("\n")
			break
		}
		fmt.Fprintf(&sb, "%d:%d %s %s\n", tok.Pos.Line, tok.Pos.Column, tok.Type.Category(), tok.Canonical)
		if tok.Type == token.EOF {
			break
		}
	}
	return sb.String()
}

// AST renders program's body as one node per line, two-space indent per
// level, mnemonic and bracketed static type, exactly as ast.Node.String
// produces it.
func AST(program *ast.Program) string {
	return program.String() + "\n"
}

// SymbolTable renders every symbol in scope, indented by scope depth,
// expanding each type's internal structure on first appearance.
func SymbolTable(scope *symbols.Scope) string {
	sp := &symbolPrinter{seen: make(map[string]bool)}
	sp.printScope(scope, 0)
	return sp.sb.String()
}

type symbolPrinter struct {
	sb   strings.Builder
	seen map[string]bool
}

func (sp *symbolPrinter) indent(depth int) string { return strings.Repeat("  ", depth) }

func (sp *symbolPrinter) printScope(scope *symbols.Scope, depth int) {
	for _, sym := range scope.Symbols() {
		sp.printSymbol(sym, depth)
	}
}

func (sp *symbolPrinter) printSymbol(sym *symbols.Symbol, depth int) {
	switch {
	case sym.Is(symbols.KindType):
		fmt.Fprintf(&sp.sb, "%s%s: %s\n", sp.indent(depth), sym.Name, sp.typeDetail(sym.Type))
	case sym.Is(symbols.KindConst):
		fmt.Fprintf(&sp.sb, "%s%s: const %s = %v\n", sp.indent(depth), sym.Name, sym.Type.String(), sym.ConstValue)
	case sym.Is(symbols.KindGlobal):
		fmt.Fprintf(&sp.sb, "%s%s: %s (global, label %s)\n", sp.indent(depth), sym.Name, sym.Type.String(), sym.Label)
	case sym.Is(symbols.KindLocal):
		fmt.Fprintf(&sp.sb, "%s%s: %s (local, offset %d)\n", sp.indent(depth), sym.Name, sym.Type.String(), sym.Offset)
	case sym.Is(symbols.KindParameter):
		qualifier := "by-value"
		if sym.ByRef {
			qualifier = "by-ref"
		}
		fmt.Fprintf(&sp.sb, "%s%s: %s (param, %s, offset %d)\n", sp.indent(depth), sym.Name, sym.Type.String(), qualifier, sym.Offset)
	case sym.Is(symbols.KindRoutine):
		kind := "procedure"
		ret := ""
		if sym.Is(symbols.KindFunction) {
			kind = "function"
			ret = ": " + sym.Type.String()
		}
		fmt.Fprintf(&sp.sb, "%s%s %s(...)%s\n", sp.indent(depth), kind, sym.Name, ret)
		sp.printScope(sym.Inner, depth+1)
	}
}

// typeDetail expands a type's internal structure the first time its name
// is seen; later references to the same name print only the name.
func (sp *symbolPrinter) typeDetail(t *symbols.Type) string {
	if t.Name != "" {
		if sp.seen[t.Name] {
			return t.Name
		}
		sp.seen[t.Name] = true
	}
	switch t.Kind {
	case symbols.TypeAlias:
		return t.Name + " = " + sp.typeDetail(t.Target)
	case symbols.TypeArray, symbols.TypeRecord, symbols.TypePointer:
		return t.String()
	default:
		return t.Name
	}
}

package printer

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/pas32/pas32c/internal/ast"
	"github.com/pas32/pas32c/internal/lexer"
	"github.com/pas32/pas32c/internal/parser"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	m.Run()
	snaps.Clean(m)
}

func parseFixture(t *testing.T, src string) *ast.Program {
	t.Helper()
	l := lexer.New(src)
	program, err := parser.ParseProgram(l)
	require.NoError(t, err)
	return program
}

func TestTokensRendersOneLinePerToken(t *testing.T) {
	out := Tokens("var x: Integer;\nbegin x := 1 end.")
	snaps.MatchSnapshot(t, out)
}

func TestTokensStopsAtLexicalError(t *testing.T) {
	out := Tokens("var x ? Integer;")
	snaps.MatchSnapshot(t, out)
}

func TestASTRendersProgramBody(t *testing.T) {
	program := parseFixture(t, `
		var x: Integer;
		begin
			x := 1 + 2
		end.`)
	snaps.MatchSnapshot(t, AST(program))
}

func TestSymbolTableExpandsTypeOnFirstAppearance(t *testing.T) {
	program := parseFixture(t, `
		type TPoint = record x, y: Integer; end;
		var p, q: TPoint;
		begin end.`)
	snaps.MatchSnapshot(t, SymbolTable(program.Scope))
}

func TestSymbolTableNestsRoutineLocals(t *testing.T) {
	program := parseFixture(t, `
		function Square(x: Integer): Integer;
		begin
			Result := x * x
		end;
		begin end.`)
	snaps.MatchSnapshot(t, SymbolTable(program.Scope))
}

package parser

import (
	"testing"

	"github.com/pas32/pas32c/internal/ast"
	"github.com/pas32/pas32c/internal/lexer"
	"github.com/pas32/pas32c/internal/symbols"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseSrc(t *testing.T, src string) *ast.Program {
	t.Helper()
	l := lexer.New(src)
	program, err := ParseProgram(l)
	require.NoError(t, err)
	return program
}

func parseSrcErr(t *testing.T, src string) error {
	t.Helper()
	l := lexer.New(src)
	_, err := ParseProgram(l)
	require.Error(t, err)
	return err
}

func TestParseEmptyProgram(t *testing.T) {
	program := parseSrc(t, "begin end.")
	assert.Empty(t, program.Body.Statements)
}

func TestParseVarSectionDeclaresGlobals(t *testing.T) {
	program := parseSrc(t, `
		var x, y: Integer;
		begin end.`)
	sym, ok := program.Scope.Lookup("x")
	require.True(t, ok)
	assert.True(t, sym.Is(symbols.KindGlobal))
	assert.Equal(t, "g_x", sym.Label)

	sym, ok = program.Scope.Lookup("y")
	require.True(t, ok)
	assert.True(t, sym.Is(symbols.KindGlobal))
}

func TestParseMissingBeginIsASyntaxError(t *testing.T) {
	err := parseSrcErr(t, "var x: Integer;")
	assert.Contains(t, err.Error(), "expected 'begin'")
}

func TestParseDuplicateGlobalIsAnError(t *testing.T) {
	err := parseSrcErr(t, `
		var x: Integer;
		var x: Real;
		begin end.`)
	assert.Contains(t, err.Error(), "duplicate identifier")
}

func TestParseArrayTypeDeclarationAndUse(t *testing.T) {
	program := parseSrc(t, `
		type TNums = array[1..10] of Integer;
		var a: TNums;
		begin
			a[1] := 5
		end.`)
	sym, ok := program.Scope.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, symbols.TypeArray, sym.Type.Actual().Kind)
	assert.Equal(t, 1, sym.Type.Actual().Low)
	assert.Equal(t, 10, sym.Type.Actual().High)
}

func TestParseArrayHighLessThanLowIsAnError(t *testing.T) {
	err := parseSrcErr(t, `
		type T = array[10..1] of Integer;
		begin end.`)
	assert.Contains(t, err.Error(), "array high bound must not be less than low bound")
}

func TestParseRecordTypeAndFieldAccess(t *testing.T) {
	program := parseSrc(t, `
		type TPoint = record
			x, y: Integer;
		end;
		var p: TPoint;
		begin
			p.x := 1;
			p.y := 2
		end.`)
	sym, ok := program.Scope.Lookup("p")
	require.True(t, ok)
	rec := sym.Type.Actual()
	assert.Equal(t, symbols.TypeRecord, rec.Kind)
	_, ok = rec.Fields.Lookup("x")
	assert.True(t, ok)
}

func TestParseUnknownRecordFieldIsAnError(t *testing.T) {
	err := parseSrcErr(t, `
		type TPoint = record x: Integer; end;
		var p: TPoint;
		begin
			p.z := 1
		end.`)
	assert.Contains(t, err.Error(), "unknown record field")
}

func TestParseIdentifierNotFoundIsAnError(t *testing.T) {
	err := parseSrcErr(t, `begin x := 1 end.`)
	assert.Contains(t, err.Error(), "identifier not found")
}

func TestParseAssignmentTypeMismatchIsAnError(t *testing.T) {
	err := parseSrcErr(t, `
		var x: Integer;
		var r: Real;
		begin x := r end.`)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "incompatible types: Integer and Real")
}

func TestParseIntToRealPromotionOnAssignment(t *testing.T) {
	program := parseSrc(t, `
		var r: Real;
		begin r := 5 end.`)
	assign, ok := program.Body.Statements[0].(*ast.Assignment)
	require.True(t, ok)
	_, ok = assign.Rhs.(*ast.IntToRealConversion)
	assert.True(t, ok, "assigning an integer literal to a Real lvalue should be wrapped in a promotion node")
}

func TestParseBinaryOpPromotesMixedOperands(t *testing.T) {
	program := parseSrc(t, `
		var r: Real;
		begin r := 1 + 2.0 end.`)
	assign := program.Body.Statements[0].(*ast.Assignment)
	bin := assign.Rhs.(*ast.BinaryOp)
	_, ok := bin.Left.(*ast.IntToRealConversion)
	assert.True(t, ok)
	assert.Equal(t, symbols.Real, bin.Type().Actual())
}

func TestParseSlashForcesRealDivisionOnIntegerOperands(t *testing.T) {
	program := parseSrc(t, `
		var a: Real;
		begin a := 4 / 2 end.`)
	assign := program.Body.Statements[0].(*ast.Assignment)
	bin, ok := assign.Rhs.(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, "/", bin.Operator)
	_, leftOk := bin.Left.(*ast.IntToRealConversion)
	_, rightOk := bin.Right.(*ast.IntToRealConversion)
	assert.True(t, leftOk, "/ forces its left operand to Real even though both sides are integer literals")
	assert.True(t, rightOk, "/ forces its right operand to Real even though both sides are integer literals")
	assert.Equal(t, symbols.Real, bin.Type().Actual())
}

func TestParseIncompatibleTypesInBinaryOpIsAnError(t *testing.T) {
	err := parseSrcErr(t, `
		var a: array[1..2] of Integer;
		begin a[1] := a + 1 end.`)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "incompatible types")
}

func TestParseRelationalResultIsAlwaysInteger(t *testing.T) {
	program := parseSrc(t, `
		var a, b: Integer;
		begin
			if a < b then a := 1
		end.`)
	ifStmt := program.Body.Statements[0].(*ast.IfStatement)
	assert.Equal(t, symbols.Integer, ifStmt.Condition.Type().Actual())
}

func TestParseForLoopRequiresPredeclaredIntegerVariable(t *testing.T) {
	err := parseSrcErr(t, `begin for i := 1 to 10 do i := i end. `)
	assert.Error(t, err)
}

func TestParseForLoopDescendingFlag(t *testing.T) {
	program := parseSrc(t, `
		var i: Integer;
		begin for i := 10 downto 1 do i := i - 1 end.`)
	forStmt := program.Body.Statements[0].(*ast.ForStatement)
	assert.True(t, forStmt.Descending)
}

func TestParseWhileAndRepeat(t *testing.T) {
	program := parseSrc(t, `
		var i: Integer;
		begin
			while i < 10 do i := i + 1;
			repeat i := i - 1 until i = 0
		end.`)
	_, ok := program.Body.Statements[0].(*ast.WhileStatement)
	assert.True(t, ok)
	_, ok = program.Body.Statements[1].(*ast.RepeatStatement)
	assert.True(t, ok)
}

func TestParseIfElse(t *testing.T) {
	program := parseSrc(t, `
		var a: Integer;
		begin
			if a = 0 then a := 1 else a := 2
		end.`)
	ifStmt := program.Body.Statements[0].(*ast.IfStatement)
	assert.NotNil(t, ifStmt.Else)
}

func TestParseProcedureDeclarationAndCall(t *testing.T) {
	program := parseSrc(t, `
		procedure Bump(var x: Integer);
		begin
			x := x + 1
		end;
		var n: Integer;
		begin
			Bump(n)
		end.`)
	sym, ok := program.Scope.Lookup("bump")
	require.True(t, ok)
	assert.True(t, sym.Is(symbols.KindProcedure))
	assert.Len(t, sym.Params, 1)
	assert.True(t, sym.Params[0].ByRef)
}

func TestParseCallWrongArityIsAnError(t *testing.T) {
	err := parseSrcErr(t, `
		procedure P(x: Integer);
		begin end;
		begin P(1, 2) end.`)
	assert.Contains(t, err.Error(), "too many actual parameters")
}

func TestParseByRefArgumentRequiresLValue(t *testing.T) {
	err := parseSrcErr(t, `
		procedure P(var x: Integer);
		begin end;
		begin P(1) end.`)
	assert.Contains(t, err.Error(), "l-value expected")
}

func TestParseFunctionSynthesizesResultLocal(t *testing.T) {
	program := parseSrc(t, `
		function Square(x: Integer): Integer;
		begin
			Result := x * x
		end;
		begin end.`)
	sym, ok := program.Scope.Lookup("square")
	require.True(t, ok)
	assert.True(t, sym.Is(symbols.KindFunction))
	_, ok = sym.Inner.Lookup("result")
	assert.True(t, ok)
}

func TestParseRoutineVisibleToItselfAndToLaterRoutines(t *testing.T) {
	program := parseSrc(t, `
		function IsOdd(n: Integer): Integer;
		begin
			Result := IsOdd(n)
		end;
		function IsEven(n: Integer): Integer;
		begin
			Result := IsOdd(n)
		end;
		begin end.`)
	_, ok := program.Scope.Lookup("isodd")
	assert.True(t, ok, "a routine must be visible to its own body and to routines declared after it")
}

func TestParseWriteAndWritelnAcceptAnyArgumentTypes(t *testing.T) {
	program := parseSrc(t, `
		var i: Integer;
		var r: Real;
		begin
			writeln('x = ', i, ' y = ', r)
		end.`)
	stmt := program.Body.Statements[0].(*ast.ExpressionStatement)
	call := stmt.Expr.(*ast.WriteCall)
	assert.True(t, call.Newline)
	assert.Len(t, call.Args, 4)
}

package codegen

import (
	"testing"

	"github.com/pas32/pas32c/internal/config"
	"github.com/pas32/pas32c/internal/lexer"
	"github.com/pas32/pas32c/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generate(t *testing.T, src string) string {
	t.Helper()
	l := lexer.New(src)
	program, err := parser.ParseProgram(l)
	require.NoError(t, err)
	prog, err := Generate(program, nil)
	require.NoError(t, err)
	return prog.Render(true)
}

func TestGenerateEmptyProgramHasMainAndRet(t *testing.T) {
	out := generate(t, "begin end.")
	assert.Contains(t, out, "main:")
	assert.Contains(t, out, "\tret")
}

func TestGenerateGlobalReservesDataSpace(t *testing.T) {
	out := generate(t, `
		var x: Integer;
		begin end.`)
	assert.Contains(t, out, "g_x:\n\t.space 4")
}

func TestGenerateAssignmentPushesThenStores(t *testing.T) {
	out := generate(t, `
		var x: Integer;
		begin x := 5 end.`)
	assert.Contains(t, out, "pushl $5")
	assert.Contains(t, out, "leal g_x, %eax")
}

func TestGenerateForLoopUsesConfiguredLabelPrefixes(t *testing.T) {
	out := generate(t, `
		var i: Integer;
		begin for i := 1 to 10 do i := i end.`)
	assert.Contains(t, out, "for_check_")
	assert.Contains(t, out, "for_body_")
	assert.Contains(t, out, "fin_")
}

func TestGenerateForLoopRespectsCustomLabelPrefix(t *testing.T) {
	l := lexer.New(`
		var i: Integer;
		begin for i := 1 to 10 do i := i end.`)
	program, err := parser.ParseProgram(l)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Codegen.ForLabelPrefix = "loop"
	prog, err := Generate(program, cfg)
	require.NoError(t, err)

	out := prog.Render(true)
	assert.Contains(t, out, "loop_check_")
	assert.Contains(t, out, "loop_body_")
}

func TestGenerateWhileUsesJzToFin(t *testing.T) {
	out := generate(t, `
		var i: Integer;
		begin while i < 10 do i := i + 1 end.`)
	assert.Contains(t, out, "while_check_")
	assert.Contains(t, out, "jz")
}

func TestGenerateRepeatTestsAfterBody(t *testing.T) {
	out := generate(t, `
		var i: Integer;
		begin repeat i := i - 1 until i = 0 end.`)
	assert.Contains(t, out, "repeat_start_")
	assert.Contains(t, out, "sete")
}

func TestGenerateIfElseEmitsBothLabels(t *testing.T) {
	out := generate(t, `
		var a: Integer;
		begin if a = 0 then a := 1 else a := 2 end.`)
	assert.Contains(t, out, "else_")
	assert.Contains(t, out, "fin_")
}

func TestGenerateProcedureCallPushesArgumentsRightToLeft(t *testing.T) {
	out := generate(t, `
		procedure P(a, b: Integer);
		begin end;
		begin P(1, 2) end.`)
	idxA := indexOf(out, "pushl $1")
	idxB := indexOf(out, "pushl $2")
	require.GreaterOrEqual(t, idxA, 0)
	require.GreaterOrEqual(t, idxB, 0)
	assert.Less(t, idxB, idxA, "the second formal's value must be pushed before the first, so it lands closest to +8")
}

func TestGenerateFunctionCallReservesAndReclaimsResultSlot(t *testing.T) {
	out := generate(t, `
		function Square(x: Integer): Integer;
		begin
			Result := x * x
		end;
		var y: Integer;
		begin y := Square(3) end.`)
	assert.Contains(t, out, "subl $4, %esp")
	assert.Contains(t, out, "call proc_square")
	assert.Contains(t, out, "addl $4, %esp")
}

func TestGenerateFunctionEpilogueClampsNegativePop(t *testing.T) {
	out := generate(t, `
		function Zero: Integer;
		begin
			Result := 0
		end;
		var y: Integer;
		begin y := Zero end.`)
	assert.Contains(t, out, "proc_zero:")
	// A parameterless function's epilogue has nothing to pop beyond ebp.
	assert.Contains(t, out, "popl %ebp\n\tret\n")
}

func TestGenerateByRefArgumentPushesAddress(t *testing.T) {
	out := generate(t, `
		procedure Bump(var x: Integer);
		begin x := x + 1 end;
		var n: Integer;
		begin Bump(n) end.`)
	assert.Contains(t, out, "leal g_n, %eax")
}

func TestGenerateIntegerSlashLowersThroughRealDivision(t *testing.T) {
	out := generate(t, `
		var a: Real;
		begin a := 4 / 2 end.`)
	assert.Contains(t, out, "fdivp")
}

func TestGenerateForLoopDescendingWithLowBelowHighRunsZeroIterations(t *testing.T) {
	// `for i := 1 downto 5` must never enter the body: the check comes
	// before the first body label, so a pre-satisfied exit condition
	// (descending start already below the bound) falls straight through
	// to fin without ever jumping back to the body.
	out := generate(t, `
		var i: Integer;
		begin for i := 1 downto 5 do i := i end.`)
	// The only freshLabel calls before this one come from genFor itself,
	// so the counter sequence is deterministic: check, body, fin.
	jmpToCheckIdx := indexOf(out, "jmp for_check_1")
	bodyLabelIdx := indexOf(out, "for_body_2:")
	jgeIdx := indexOf(out, "jge for_body_2")
	require.GreaterOrEqual(t, jmpToCheckIdx, 0)
	require.GreaterOrEqual(t, bodyLabelIdx, 0)
	require.GreaterOrEqual(t, jgeIdx, 0)
	// The unconditional jump to the check must precede the body label,
	// so a loop whose bound is never satisfied skips the body entirely
	// on the first pass and never takes the jge back-edge.
	assert.Less(t, jmpToCheckIdx, bodyLabelIdx)
}

func TestGenerateWriteCallUsesPrintfPerArgument(t *testing.T) {
	out := generate(t, `
		var i: Integer;
		begin writeln('n = ', i) end.`)
	assert.Contains(t, out, "call printf")
	assert.Contains(t, out, "fmt_nl:")
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}

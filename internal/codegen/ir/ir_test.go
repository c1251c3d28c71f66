package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperandStringForms(t *testing.T) {
	assert.Equal(t, "%eax", Reg("eax").String())
	assert.Equal(t, "$5", Imm(5).String())
	assert.Equal(t, "-4(%ebp)", Mem("ebp", -4).String())
	assert.Equal(t, "8(%ebp,%eax,4)", MemIndexed("ebp", 8, "eax", 4).String())
	assert.Equal(t, "L1", LabelOperand("L1").String())
	assert.Equal(t, "g_x", Global("g_x").String())
	assert.Equal(t, "$L1", ImmediateLabel("L1").String())
}

func TestMemoryOperandOmitsZeroDisplacement(t *testing.T) {
	assert.Equal(t, "(%ebp)", Mem("ebp", 0).String())
}

func TestDataStringPerKind(t *testing.T) {
	assert.Equal(t, "g_x:\n\t.space 4", Data{Label: "g_x", Kind: DataSpace, Bytes: 4}.String())
	assert.Equal(t, "L1:\n\t.long 42", Data{Label: "L1", Kind: DataLong, Long: 42}.String())
	assert.Equal(t, "L1:\n\t.float 3.5", Data{Label: "L1", Kind: DataFloat, Float: 3.5}.String())
	assert.Equal(t, `L1:
	.string "hi"`, Data{Label: "L1", Kind: DataString, Text: "hi"}.String())
}

func TestCommandRenderIndentToggle(t *testing.T) {
	cmd := Insn("mov", "l", Reg("eax"), Reg("ebx"))
	assert.Equal(t, "\tmovl %eax, %ebx", cmd.render(true))
	assert.Equal(t, "movl %eax, %ebx", cmd.render(false))
}

func TestCommandLabelNeverIndented(t *testing.T) {
	assert.Equal(t, "start:", Label("start").render(true))
	assert.Equal(t, "start:", Label("start").render(false))
}

func TestCommandZeroOperandInstruction(t *testing.T) {
	cmd := Insn("ret", "")
	assert.Equal(t, "\tret", cmd.String())
}

func TestProgramRenderSectionsAndIndent(t *testing.T) {
	p := &Program{}
	p.AddData(Data{Label: "g_x", Kind: DataSpace, Bytes: 4})
	p.Emit(Label("main"))
	p.Emit(Insn("ret", ""))

	indented := p.Render(true)
	assert.Contains(t, indented, "\t.data\n")
	assert.Contains(t, indented, "g_x:\n\t.space 4\n")
	assert.Contains(t, indented, "\t.text\n")
	assert.Contains(t, indented, "main:\n")
	assert.Contains(t, indented, "\tret\n")

	flush := p.Render(false)
	assert.Contains(t, flush, "ret\n")
	assert.NotContains(t, flush, "\tret\n")
}

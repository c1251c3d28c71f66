// Package ir defines the in-memory assembly representation the generator
// lowers the typed AST into: an ordered list of data declarations and an
// ordered list of commands. The IR only serialises what it is given — it
// performs no validation of operand shapes or instruction legality.
package ir

import (
	"fmt"
	"strings"
)

// DataKind discriminates the variant carried by a Data declaration.
type DataKind int

const (
	DataSpace DataKind = iota
	DataLong
	DataFloat
	DataString
)

// Data is one `.data` section entry: a labelled reservation or constant.
type Data struct {
	Label string
	Kind  DataKind
	Bytes int     // DataSpace: reserved size in bytes
	Long  int64   // DataLong: the constant value
	Float float64 // DataFloat
	Text  string  // DataString: the raw (undecorated) string value
}

func (d Data) String() string {
	switch d.Kind {
	case DataSpace:
		return fmt.Sprintf("%s:\n\t.space %d", d.Label, d.Bytes)
	case DataLong:
		return fmt.Sprintf("%s:\n\t.long %d", d.Label, d.Long)
	case DataFloat:
		return fmt.Sprintf("%s:\n\t.float %g", d.Label, d.Float)
	case DataString:
		return fmt.Sprintf("%s:\n\t.string %q", d.Label, d.Text)
	default:
		return fmt.Sprintf("%s:\n\t; unknown data kind", d.Label)
	}
}

// OperandKind discriminates the variant carried by an Operand.
type OperandKind int

const (
	OperandRegister OperandKind = iota
	OperandImmediate
	OperandMemory
	OperandLabelRef
	OperandGlobal
	OperandImmediateLabel
)

// Operand is a command argument: a register, an immediate constant, a
// memory reference (base register + displacement + optional index
// register and scale), or a bare label reference (for call targets and
// jump targets, which are not memory operands in AT&T syntax).
type Operand struct {
	Kind OperandKind

	Register string // OperandRegister, and the base/index of OperandMemory

	Immediate int64 // OperandImmediate

	Displacement int    // OperandMemory
	Index        string // OperandMemory: optional index register, "" if none
	Scale        int    // OperandMemory: 1, 2, 4 or 8; meaningless if Index == ""

	Label string // OperandLabelRef
}

// Reg builds a bare register operand: %eax, %ebx, and so on.
func Reg(name string) Operand { return Operand{Kind: OperandRegister, Register: name} }

// Imm builds an immediate operand: $n.
func Imm(n int64) Operand { return Operand{Kind: OperandImmediate, Immediate: n} }

// Mem builds a memory operand: disp(base).
func Mem(base string, disp int) Operand {
	return Operand{Kind: OperandMemory, Register: base, Displacement: disp}
}

// MemIndexed builds a memory operand with a scaled index: disp(base,index,scale).
func MemIndexed(base string, disp int, index string, scale int) Operand {
	return Operand{Kind: OperandMemory, Register: base, Displacement: disp, Index: index, Scale: scale}
}

// LabelOperand builds a bare label reference, used as a call/jump target.
func LabelOperand(label string) Operand { return Operand{Kind: OperandLabelRef, Label: label} }

// Global builds a direct reference to a `.data` label, as used to address
// a global variable's storage.
func Global(label string) Operand { return Operand{Kind: OperandGlobal, Label: label} }

// ImmediateLabel builds `$label`, a label's address used as an immediate
// (pushing a string literal's address, taking a routine's address).
func ImmediateLabel(label string) Operand { return Operand{Kind: OperandImmediateLabel, Label: label} }

func (o Operand) String() string {
	switch o.Kind {
	case OperandRegister:
		return "%" + o.Register
	case OperandImmediate:
		return fmt.Sprintf("$%d", o.Immediate)
	case OperandLabelRef, OperandGlobal:
		return o.Label
	case OperandImmediateLabel:
		return "$" + o.Label
	case OperandMemory:
		var sb strings.Builder
		if o.Displacement != 0 {
			fmt.Fprintf(&sb, "%d", o.Displacement)
		}
		sb.WriteString("(")
		sb.WriteString("%" + o.Register)
		if o.Index != "" {
			fmt.Fprintf(&sb, ",%%%s,%d", o.Index, o.Scale)
		}
		sb.WriteString(")")
		return sb.String()
	default:
		return "?"
	}
}

// CommandKind discriminates the variant carried by a Command.
type CommandKind int

const (
	CmdLabel CommandKind = iota
	CmdRaw
	CmdInsn
)

// Command is one `.text` section entry.
type Command struct {
	Kind CommandKind

	// CmdLabel
	LabelName string

	// CmdRaw: emitted verbatim, already indented by the caller if needed.
	Raw string

	// CmdInsn
	Mnemonic string
	Suffix   string // "", "b", "s", "l", "q"
	Operands []Operand
}

// Label builds a `name:` command.
func Label(name string) Command { return Command{Kind: CmdLabel, LabelName: name} }

// Raw builds a verbatim text line.
func Raw(text string) Command { return Command{Kind: CmdRaw, Raw: text} }

// Insn builds a zero-, one-, or two-operand mnemonic with an optional
// operand-size suffix.
func Insn(mnemonic, suffix string, operands ...Operand) Command {
	return Command{Kind: CmdInsn, Mnemonic: mnemonic, Suffix: suffix, Operands: operands}
}

func (c Command) String() string { return c.render(true) }

func (c Command) render(indent bool) string {
	tab := "\t"
	if !indent {
		tab = ""
	}
	switch c.Kind {
	case CmdLabel:
		return c.LabelName + ":"
	case CmdRaw:
		return tab + c.Raw
	case CmdInsn:
		parts := make([]string, len(c.Operands))
		for i, o := range c.Operands {
			parts[i] = o.String()
		}
		name := c.Mnemonic + c.Suffix
		if len(parts) == 0 {
			return tab + name
		}
		return tab + name + " " + strings.Join(parts, ", ")
	default:
		return ""
	}
}

// Program is the complete output of one compilation unit: every data
// declaration accumulated during generation, followed by every command,
// terminated implicitly by the code generator's final `ret`.
type Program struct {
	Data     []Data
	Commands []Command
}

// AddData appends a data declaration (the generator keeps the label it
// chose for it).
func (p *Program) AddData(d Data) { p.Data = append(p.Data, d) }

// Emit appends one command.
func (p *Program) Emit(c Command) { p.Commands = append(p.Commands, c) }

// String renders the full `.data`/`.text` listing with indented
// instructions.
func (p *Program) String() string { return p.Render(true) }

// Render renders the full `.data`/`.text` listing, indenting instruction
// lines with a tab when indent is true and leaving them flush otherwise.
func (p *Program) Render(indent bool) string {
	var sb strings.Builder
	sb.WriteString("\t.data\n")
	for _, d := range p.Data {
		sb.WriteString(d.String())
		sb.WriteString("\n")
	}
	sb.WriteString("\t.text\n")
	for _, c := range p.Commands {
		sb.WriteString(c.render(indent))
		sb.WriteString("\n")
	}
	return sb.String()
}

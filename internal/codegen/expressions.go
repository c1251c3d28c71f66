package codegen

import (
	"github.com/pas32/pas32c/internal/ast"
	"github.com/pas32/pas32c/internal/codegen/ir"
	"github.com/pas32/pas32c/internal/errors"
	"github.com/pas32/pas32c/internal/symbols"
)

// genValue leaves a value of size size-of(type-of(e)) on top of the
// stack. Aggregates are lowered through genLValue plus a block copy;
// scalars are pushed directly.
func (g *Generator) genValue(e ast.Expression) error {
	switch n := e.(type) {
	case *ast.IntegerLiteral:
		g.prog.Emit(ir.Insn("push", "l", ir.Imm(n.Value)))
		return nil

	case *ast.RealLiteral:
		label := g.freshLabel(g.cfg.Codegen.FloatLabelPrefix)
		g.prog.AddData(ir.Data{Label: label, Kind: ir.DataFloat, Float: n.Value})
		g.prog.Emit(ir.Insn("push", "l", ir.Global(label)))
		return nil

	case *ast.StringLiteral:
		label := g.freshLabel(g.cfg.Codegen.StringLabelPrefix)
		g.prog.AddData(ir.Data{Label: label, Kind: ir.DataString, Text: n.Value})
		g.prog.Emit(ir.Insn("push", "l", ir.ImmediateLabel(label)))
		return nil

	case *ast.VariableRef:
		return g.genVariableValue(n)

	case *ast.UnaryOp:
		return g.genUnaryOp(n)

	case *ast.BinaryOp:
		return g.genBinaryOp(n)

	case *ast.IntToRealConversion:
		if err := g.genValue(n.Operand); err != nil {
			return err
		}
		top := ir.Mem("esp", 0)
		g.prog.Emit(ir.Insn("fild", "l", top))
		g.prog.Emit(ir.Insn("fstp", "s", top))
		return nil

	case *ast.ArrayIndex, *ast.FieldAccess:
		return g.genAggregateOrScalarValue(n)

	case *ast.Call:
		return g.genCall(n)

	case *ast.WriteCall:
		return g.genWriteCall(n)

	default:
		return errors.New(errors.Generator, e.Pos(), "", "unsupported expression in value position")
	}
}

func (g *Generator) genAggregateOrScalarValue(e ast.Expression) error {
	t := e.Type().Actual()
	if t.Kind == symbols.TypeArray || t.Kind == symbols.TypeRecord {
		if err := g.genLValue(e); err != nil {
			return err
		}
		return g.blockPushFromAddress(t.Size())
	}
	if err := g.genLValue(e); err != nil {
		return err
	}
	g.prog.Emit(ir.Insn("pop", "l", ir.Reg("eax")))
	g.prog.Emit(ir.Insn("push", "l", ir.Mem("eax", 0)))
	return nil
}

// blockPushFromAddress pops an address off the stack into %esi and pushes
// size bytes from that address in word-sized chunks, high offset first,
// so the low address ends up on top of the stack.
func (g *Generator) blockPushFromAddress(size int) error {
	g.prog.Emit(ir.Insn("pop", "l", ir.Reg("esi")))
	for off := size - 4; off >= 0; off -= 4 {
		g.prog.Emit(ir.Insn("push", "l", ir.Mem("esi", off)))
	}
	return nil
}

func (g *Generator) genVariableValue(ref *ast.VariableRef) error {
	sym := ref.Symbol
	t := sym.Type.Actual()

	if sym.Is(symbols.KindConst) {
		return g.genConstValue(ref)
	}

	if t.Kind == symbols.TypeArray || t.Kind == symbols.TypeRecord {
		if err := g.genLValue(ref); err != nil {
			return err
		}
		return g.blockPushFromAddress(t.Size())
	}

	switch {
	case sym.Is(symbols.KindGlobal):
		g.prog.Emit(ir.Insn("push", "l", ir.Global(sym.Label)))
	case sym.Is(symbols.KindLocal):
		g.prog.Emit(ir.Insn("push", "l", localMem(sym, sym.Type.Size())))
	case sym.Is(symbols.KindParameter) && !sym.ByRef:
		g.prog.Emit(ir.Insn("push", "l", ir.Mem("ebp", sym.Offset)))
	case sym.Is(symbols.KindParameter) && sym.ByRef:
		g.prog.Emit(ir.Insn("mov", "l", ir.Mem("ebp", sym.Offset), ir.Reg("eax")))
		g.prog.Emit(ir.Insn("push", "l", ir.Mem("eax", 0)))
	default:
		return errors.New(errors.Generator, ref.Pos(), ref.Symbol.Name, "variable has no recognised storage class")
	}
	return nil
}

func (g *Generator) genConstValue(ref *ast.VariableRef) error {
	switch v := ref.Symbol.ConstValue.(type) {
	case int64:
		g.prog.Emit(ir.Insn("push", "l", ir.Imm(v)))
	case float64:
		label := g.freshLabel(g.cfg.Codegen.FloatLabelPrefix)
		g.prog.AddData(ir.Data{Label: label, Kind: ir.DataFloat, Float: v})
		g.prog.Emit(ir.Insn("push", "l", ir.Global(label)))
	default:
		return errors.New(errors.Generator, ref.Pos(), ref.Symbol.Name, "constant has no recognised value type")
	}
	return nil
}

// localMem computes the frame-relative memory operand for a local
// variable of the given size: address = %ebp - offset - size, per the
// convention that locals grow downward from %ebp starting at offset 0.
func localMem(sym *symbols.Symbol, size int) ir.Operand {
	return ir.Mem("ebp", -(sym.Offset + size))
}

// genLValue leaves the address of the object denoted by e on top of the
// stack.
func (g *Generator) genLValue(e ast.Expression) error {
	switch n := e.(type) {
	case *ast.VariableRef:
		return g.genVariableLValue(n)
	case *ast.ArrayIndex:
		return g.genArrayLValue(n)
	case *ast.FieldAccess:
		return g.genFieldLValue(n)
	default:
		return errors.New(errors.Generator, e.Pos(), "", "expression has no l-value")
	}
}

func (g *Generator) genVariableLValue(ref *ast.VariableRef) error {
	sym := ref.Symbol
	if !sym.IsLValueSource() {
		return errors.New(errors.Generator, ref.Pos(), sym.Name, "constants have no l-value")
	}
	switch {
	case sym.Is(symbols.KindGlobal):
		g.prog.Emit(ir.Insn("lea", "l", ir.Global(sym.Label), ir.Reg("eax")))
		g.prog.Emit(ir.Insn("push", "l", ir.Reg("eax")))
	case sym.Is(symbols.KindLocal):
		g.prog.Emit(ir.Insn("lea", "l", localMem(sym, sym.Type.Size()), ir.Reg("eax")))
		g.prog.Emit(ir.Insn("push", "l", ir.Reg("eax")))
	case sym.Is(symbols.KindParameter) && sym.ByRef:
		g.prog.Emit(ir.Insn("push", "l", ir.Mem("ebp", sym.Offset)))
	case sym.Is(symbols.KindParameter) && !sym.ByRef:
		g.prog.Emit(ir.Insn("lea", "l", ir.Mem("ebp", sym.Offset), ir.Reg("eax")))
		g.prog.Emit(ir.Insn("push", "l", ir.Reg("eax")))
	default:
		return errors.New(errors.Generator, ref.Pos(), sym.Name, "variable has no recognised storage class")
	}
	return nil
}

// genArrayLValue evaluates the array's l-value and the index, subtracts
// the declared low bound, multiplies by the element size, and adds to the
// base address.
func (g *Generator) genArrayLValue(n *ast.ArrayIndex) error {
	arrType := n.Array.Type().Actual()
	if err := g.genLValue(n.Array); err != nil {
		return err
	}
	if err := g.genValue(n.Index); err != nil {
		return err
	}
	g.prog.Emit(ir.Insn("pop", "l", ir.Reg("eax"))) // index
	g.prog.Emit(ir.Insn("pop", "l", ir.Reg("ebx"))) // base address
	if arrType.Low != 0 {
		g.prog.Emit(ir.Insn("sub", "l", ir.Imm(int64(arrType.Low)), ir.Reg("eax")))
	}
	elemSize := arrType.Element.Size()
	g.prog.Emit(ir.Insn("imul", "l", ir.Imm(int64(elemSize)), ir.Reg("eax")))
	g.prog.Emit(ir.Insn("add", "l", ir.Reg("eax"), ir.Reg("ebx")))
	g.prog.Emit(ir.Insn("push", "l", ir.Reg("ebx")))
	return nil
}

// genFieldLValue evaluates the record's l-value and adds the field's
// byte offset.
func (g *Generator) genFieldLValue(n *ast.FieldAccess) error {
	if err := g.genLValue(n.Record); err != nil {
		return err
	}
	if n.Field.Offset != 0 {
		g.prog.Emit(ir.Insn("pop", "l", ir.Reg("eax")))
		g.prog.Emit(ir.Insn("add", "l", ir.Imm(int64(n.Field.Offset)), ir.Reg("eax")))
		g.prog.Emit(ir.Insn("push", "l", ir.Reg("eax")))
	}
	return nil
}

func (g *Generator) genUnaryOp(n *ast.UnaryOp) error {
	if err := g.genValue(n.Operand); err != nil {
		return err
	}
	g.prog.Emit(ir.Insn("pop", "l", ir.Reg("eax")))
	switch n.Operator {
	case "-":
		g.prog.Emit(ir.Insn("neg", "l", ir.Reg("eax")))
	case "not":
		g.prog.Emit(ir.Insn("not", "l", ir.Reg("eax")))
	case "+":
		// no-op: unary plus does not change the value.
	default:
		return errors.New(errors.Generator, n.Pos(), n.Operator, "unsupported unary operator")
	}
	g.prog.Emit(ir.Insn("push", "l", ir.Reg("eax")))
	return nil
}

var relationalSetcc = map[string]string{
	"=": "sete", "<>": "setne", "<": "setl", ">": "setg", "<=": "setle", ">=": "setge",
}

func (g *Generator) genBinaryOp(n *ast.BinaryOp) error {
	if n.Left.Type().Actual().Kind == symbols.TypeReal || n.Right.Type().Actual().Kind == symbols.TypeReal {
		return g.genRealBinaryOp(n)
	}

	if err := g.genValue(n.Left); err != nil {
		return err
	}
	if err := g.genValue(n.Right); err != nil {
		return err
	}
	g.prog.Emit(ir.Insn("pop", "l", ir.Reg("ebx")))
	g.prog.Emit(ir.Insn("pop", "l", ir.Reg("eax")))

	if setcc, ok := relationalSetcc[n.Operator]; ok {
		g.prog.Emit(ir.Insn("cmp", "l", ir.Reg("ebx"), ir.Reg("eax")))
		g.prog.Emit(ir.Insn(setcc, "", ir.Reg("al")))
		g.prog.Emit(ir.Insn("movzb", "l", ir.Reg("al"), ir.Reg("eax")))
		g.prog.Emit(ir.Insn("push", "l", ir.Reg("eax")))
		return nil
	}

	switch n.Operator {
	case "+":
		g.prog.Emit(ir.Insn("add", "l", ir.Reg("ebx"), ir.Reg("eax")))
	case "-":
		g.prog.Emit(ir.Insn("sub", "l", ir.Reg("ebx"), ir.Reg("eax")))
	case "or":
		g.prog.Emit(ir.Insn("or", "l", ir.Reg("ebx"), ir.Reg("eax")))
	case "xor":
		g.prog.Emit(ir.Insn("xor", "l", ir.Reg("ebx"), ir.Reg("eax")))
	case "*":
		g.prog.Emit(ir.Insn("imul", "l", ir.Reg("ebx"), ir.Reg("eax")))
	case "and":
		g.prog.Emit(ir.Insn("and", "l", ir.Reg("ebx"), ir.Reg("eax")))
	case "shl":
		g.prog.Emit(ir.Insn("mov", "l", ir.Reg("ebx"), ir.Reg("ecx")))
		g.prog.Emit(ir.Insn("shl", "l", ir.Reg("cl"), ir.Reg("eax")))
	case "shr":
		g.prog.Emit(ir.Insn("mov", "l", ir.Reg("ebx"), ir.Reg("ecx")))
		g.prog.Emit(ir.Insn("shr", "l", ir.Reg("cl"), ir.Reg("eax")))
	case "div":
		g.prog.Emit(ir.Insn("cdq", ""))
		g.prog.Emit(ir.Insn("idiv", "l", ir.Reg("ebx")))
	case "mod":
		g.prog.Emit(ir.Insn("cdq", ""))
		g.prog.Emit(ir.Insn("idiv", "l", ir.Reg("ebx")))
		g.prog.Emit(ir.Insn("mov", "l", ir.Reg("edx"), ir.Reg("eax")))
	default:
		return errors.New(errors.Generator, n.Pos(), n.Operator, "unsupported binary operator")
	}
	g.prog.Emit(ir.Insn("push", "l", ir.Reg("eax")))
	return nil
}

// genRealBinaryOp lowers a real binary operator through the x87 stack, the
// reserved path the language reference calls out: operands are loaded
// with fld, the operator applied, and the result stored back to the
// integer-sized stack slot the rest of the generator expects.
func (g *Generator) genRealBinaryOp(n *ast.BinaryOp) error {
	if err := g.genValue(n.Left); err != nil {
		return err
	}
	if err := g.genValue(n.Right); err != nil {
		return err
	}
	top := ir.Mem("esp", 0)
	second := ir.Mem("esp", 4)
	g.prog.Emit(ir.Insn("fld", "s", top))
	g.prog.Emit(ir.Insn("fld", "s", second))

	var mnemonic string
	switch n.Operator {
	case "+":
		mnemonic = "faddp"
	case "-":
		mnemonic = "fsubp"
	case "*":
		mnemonic = "fmulp"
	case "/":
		mnemonic = "fdivp"
	default:
		return errors.New(errors.Generator, n.Pos(), n.Operator, "unsupported real binary operator")
	}
	g.prog.Emit(ir.Insn(mnemonic, "", ir.Reg("st(1)"), ir.Reg("st")))
	g.prog.Emit(ir.Insn("add", "l", ir.Imm(4), ir.Reg("esp")))
	g.prog.Emit(ir.Insn("fstp", "s", ir.Mem("esp", 0)))
	return nil
}

// genCall lowers a user-routine call per the cdecl convention: reserve
// space for a non-void result, push arguments right-to-left (so the
// first formal ends up closest to the return address, at +8), call, and
// — for a function — discard the un-reclaimed argument remnant the
// epilogue's reduced `ret` offset leaves sitting above the true result
// (none for a parameterless function, whose epilogue pops nothing).
func (g *Generator) genCall(n *ast.Call) error {
	callee := n.Callee
	resultSize := 0
	if callee.Is(symbols.KindFunction) {
		resultSize = callee.Type.Size()
	}

	if resultSize > 0 {
		g.prog.Emit(ir.Insn("sub", "l", ir.Imm(int64(resultSize)), ir.Reg("esp")))
	}

	for i := len(n.Args) - 1; i >= 0; i-- {
		formal := callee.Params[i]
		arg := n.Args[i]
		if formal.ByRef {
			if err := g.genLValue(arg); err != nil {
				return err
			}
			continue
		}
		if err := g.genValue(arg); err != nil {
			return err
		}
	}

	g.prog.Emit(ir.Insn("call", "", ir.LabelOperand(g.routineLabels[callee])))

	if resultSize > 0 {
		popped := callee.Inner.ParamsSize - resultSize
		if popped < 0 {
			popped = 0
		}
		if remnant := callee.Inner.ParamsSize - popped; remnant > 0 {
			g.prog.Emit(ir.Insn("add", "l", ir.Imm(int64(remnant)), ir.Reg("esp")))
		}
	}
	return nil
}

// formatForType picks the printf conversion for write/writeln's built-in
// type dispatch.
func formatForType(t *symbols.Type) (string, string) {
	switch t.Actual().Kind {
	case symbols.TypeReal:
		return "fmt_real", "%f\x00"
	case symbols.TypeUntyped:
		return "fmt_str", "%s\x00"
	default:
		return "fmt_int", "%d\x00"
	}
}

// genWriteCall lowers the built-in write/writeln intrinsic: each argument
// is evaluated and handed to printf individually, with cdecl cleanup
// after every call.
func (g *Generator) genWriteCall(n *ast.WriteCall) error {
	for _, arg := range n.Args {
		label, text := formatForType(arg.Type())
		if !g.dataExists(label) {
			g.prog.AddData(ir.Data{Label: label, Kind: ir.DataString, Text: text})
		}
		if err := g.genValue(arg); err != nil {
			return err
		}
		g.prog.Emit(ir.Insn("push", "l", ir.ImmediateLabel(label)))
		g.prog.Emit(ir.Insn("call", "", ir.LabelOperand("printf")))
		g.prog.Emit(ir.Insn("add", "l", ir.Imm(8), ir.Reg("esp")))
	}
	if n.Newline {
		label := "fmt_nl"
		if !g.dataExists(label) {
			g.prog.AddData(ir.Data{Label: label, Kind: ir.DataString, Text: "\n\x00"})
		}
		g.prog.Emit(ir.Insn("push", "l", ir.ImmediateLabel(label)))
		g.prog.Emit(ir.Insn("call", "", ir.LabelOperand("printf")))
		g.prog.Emit(ir.Insn("add", "l", ir.Imm(4), ir.Reg("esp")))
	}
	return nil
}

func (g *Generator) dataExists(label string) bool {
	for _, d := range g.prog.Data {
		if d.Label == label {
			return true
		}
	}
	return false
}

package codegen

import (
	"github.com/pas32/pas32c/internal/ast"
	"github.com/pas32/pas32c/internal/codegen/ir"
	"github.com/pas32/pas32c/internal/errors"
)

func (g *Generator) genStatement(s ast.Statement) error {
	switch n := s.(type) {
	case *ast.BlockStatement:
		return g.genBlock(n)
	case *ast.Assignment:
		return g.genAssignment(n)
	case *ast.ExpressionStatement:
		return g.genExpressionStatement(n)
	case *ast.ForStatement:
		return g.genFor(n)
	case *ast.WhileStatement:
		return g.genWhile(n)
	case *ast.RepeatStatement:
		return g.genRepeat(n)
	case *ast.IfStatement:
		return g.genIf(n)
	default:
		return errors.New(errors.Generator, s.Pos(), "", "unsupported statement")
	}
}

func (g *Generator) genBlock(n *ast.BlockStatement) error {
	for _, stmt := range n.Statements {
		if err := g.genStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

// genAssignment: gen-value(rhs), gen-lvalue(lhs), block-move rhs bytes
// through lhs.
func (g *Generator) genAssignment(n *ast.Assignment) error {
	if err := g.genValue(n.Rhs); err != nil {
		return err
	}
	if err := g.genLValue(n.Lhs); err != nil {
		return err
	}
	return g.blockMoveStackToAddress(n.Lhs.Type().Size())
}

// blockMoveStackToAddress pops a destination address into %edi, then
// copies size bytes from the stack (value pushed immediately below the
// address, low address on top per the value convention) into that
// address, four bytes at a time, and discards the source bytes.
func (g *Generator) blockMoveStackToAddress(size int) error {
	g.prog.Emit(ir.Insn("pop", "l", ir.Reg("edi")))
	for off := 0; off < size; off += 4 {
		g.prog.Emit(ir.Insn("pop", "l", ir.Reg("eax")))
		g.prog.Emit(ir.Insn("mov", "l", ir.Reg("eax"), ir.Mem("edi", off)))
	}
	return nil
}

// genExpressionStatement evaluates an expression purely for its side
// effect, discarding whatever bytes it leaves on the stack.
func (g *Generator) genExpressionStatement(n *ast.ExpressionStatement) error {
	if err := g.genValue(n.Expr); err != nil {
		return err
	}
	size := n.Expr.Type().Size()
	if size > 0 {
		g.prog.Emit(ir.Insn("add", "l", ir.Imm(int64(size)), ir.Reg("esp")))
	}
	return nil
}

// genFor lowers `for i := A to/downto B do S`: synthesise `i := A`,
// evaluate B once and keep it on the stack as the loop bound, then check
// before every body entry so `a > b` (ascending) or `a < b` (descending)
// executes the body zero times.
func (g *Generator) genFor(n *ast.ForStatement) error {
	if err := g.genValue(n.Low); err != nil {
		return err
	}
	if err := g.genLValue(n.Variable); err != nil {
		return err
	}
	if err := g.blockMoveStackToAddress(4); err != nil {
		return err
	}

	if err := g.genValue(n.High); err != nil {
		return err
	}

	checkLabel := g.freshLabel(g.cfg.Codegen.ForLabelPrefix + "_check")
	bodyLabel := g.freshLabel(g.cfg.Codegen.ForLabelPrefix + "_body")
	finLabel := g.freshLabel(g.cfg.Codegen.FinLabelPrefix)

	g.prog.Emit(ir.Insn("jmp", "", ir.LabelOperand(checkLabel)))
	g.prog.Emit(ir.Label(bodyLabel))
	if err := g.genStatement(n.Body); err != nil {
		return err
	}

	if err := g.genLValue(n.Variable); err != nil {
		return err
	}
	g.prog.Emit(ir.Insn("pop", "l", ir.Reg("eax")))
	if n.Descending {
		g.prog.Emit(ir.Insn("decl", "", ir.Mem("eax", 0)))
	} else {
		g.prog.Emit(ir.Insn("incl", "", ir.Mem("eax", 0)))
	}

	g.prog.Emit(ir.Label(checkLabel))
	if err := g.genValue(n.Variable); err != nil {
		return err
	}
	g.prog.Emit(ir.Insn("pop", "l", ir.Reg("eax")))
	g.prog.Emit(ir.Insn("cmp", "l", ir.Mem("esp", 0), ir.Reg("eax")))
	if n.Descending {
		g.prog.Emit(ir.Insn("jge", "", ir.LabelOperand(bodyLabel)))
	} else {
		g.prog.Emit(ir.Insn("jle", "", ir.LabelOperand(bodyLabel)))
	}

	g.prog.Emit(ir.Label(finLabel))
	g.prog.Emit(ir.Insn("add", "l", ir.Imm(4), ir.Reg("esp")))
	return nil
}

// genWhile lowers `while cond do S`: condition tested before every
// iteration.
func (g *Generator) genWhile(n *ast.WhileStatement) error {
	checkLabel := g.freshLabel(g.cfg.Codegen.WhileLabelPrefix + "_check")
	finLabel := g.freshLabel(g.cfg.Codegen.FinLabelPrefix)

	g.prog.Emit(ir.Label(checkLabel))
	if err := g.genValue(n.Condition); err != nil {
		return err
	}
	g.prog.Emit(ir.Insn("pop", "l", ir.Reg("eax")))
	g.prog.Emit(ir.Insn("test", "l", ir.Reg("eax"), ir.Reg("eax")))
	g.prog.Emit(ir.Insn("jz", "", ir.LabelOperand(finLabel)))

	if err := g.genStatement(n.Body); err != nil {
		return err
	}
	g.prog.Emit(ir.Insn("jmp", "", ir.LabelOperand(checkLabel)))
	g.prog.Emit(ir.Label(finLabel))
	return nil
}

// genRepeat lowers `repeat S until cond`: the body always runs at least
// once, since the condition is tested after it.
func (g *Generator) genRepeat(n *ast.RepeatStatement) error {
	startLabel := g.freshLabel(g.cfg.Codegen.RepeatLabelPrefix + "_start")
	g.prog.Emit(ir.Label(startLabel))
	for _, stmt := range n.Body {
		if err := g.genStatement(stmt); err != nil {
			return err
		}
	}
	if err := g.genValue(n.Condition); err != nil {
		return err
	}
	g.prog.Emit(ir.Insn("pop", "l", ir.Reg("eax")))
	g.prog.Emit(ir.Insn("test", "l", ir.Reg("eax"), ir.Reg("eax")))
	g.prog.Emit(ir.Insn("jz", "", ir.LabelOperand(startLabel)))
	return nil
}

// genIf lowers `if cond then S [else T]`. The else label is always
// followed (after T, if there is an else branch) by a jump to fin that
// immediately falls through to it — harmless but redundant, matching the
// behaviour of the source this generator is modelled on.
func (g *Generator) genIf(n *ast.IfStatement) error {
	elseLabel := g.freshLabel(g.cfg.Codegen.ElseLabelPrefix)
	finLabel := g.freshLabel(g.cfg.Codegen.FinLabelPrefix)

	if err := g.genValue(n.Condition); err != nil {
		return err
	}
	g.prog.Emit(ir.Insn("pop", "l", ir.Reg("eax")))
	g.prog.Emit(ir.Insn("test", "l", ir.Reg("eax"), ir.Reg("eax")))
	g.prog.Emit(ir.Insn("jz", "", ir.LabelOperand(elseLabel)))

	if err := g.genStatement(n.Then); err != nil {
		return err
	}
	g.prog.Emit(ir.Insn("jmp", "", ir.LabelOperand(finLabel)))

	g.prog.Emit(ir.Label(elseLabel))
	if n.Else != nil {
		if err := g.genStatement(n.Else); err != nil {
			return err
		}
	}
	g.prog.Emit(ir.Insn("jmp", "", ir.LabelOperand(finLabel)))
	g.prog.Emit(ir.Label(finLabel))
	return nil
}

// Package codegen lowers the typed AST produced by the parser into the
// assembly IR, following the stack-based evaluation model and the cdecl
// frame conventions described in the language reference.
package codegen

import (
	"fmt"
	"strings"

	"github.com/pas32/pas32c/internal/ast"
	"github.com/pas32/pas32c/internal/codegen/ir"
	"github.com/pas32/pas32c/internal/config"
	"github.com/pas32/pas32c/internal/errors"
	"github.com/pas32/pas32c/internal/symbols"
	"github.com/pas32/pas32c/pkg/token"
)

// Generator walks a typed ast.Program and lowers it into an ir.Program. A
// Generator is single-use: construct one per compilation unit.
type Generator struct {
	prog *ir.Program
	cfg  *config.Config

	labelCounter int

	routineLabels map[*symbols.Symbol]string
}

// New constructs an empty Generator. A nil cfg uses config.Default().
func New(cfg *config.Config) *Generator {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Generator{prog: &ir.Program{}, cfg: cfg, routineLabels: make(map[*symbols.Symbol]string)}
}

// Generate lowers program to a complete ir.Program: the top-level
// routines' bodies followed by the main block, terminated by a final
// `ret` for the implicit entry point.
func Generate(program *ast.Program, cfg *config.Config) (*ir.Program, error) {
	g := New(cfg)
	return g.generate(program)
}

func (g *Generator) generate(program *ast.Program) (*ir.Program, error) {
	for _, sym := range program.Scope.Routines() {
		g.routineLabels[sym] = g.routineLabel(sym)
	}
	for _, sym := range program.Scope.Symbols() {
		if sym.Is(symbols.KindGlobal) {
			g.allocateGlobal(sym)
		}
	}

	for _, sym := range program.Scope.Routines() {
		if err := g.genRoutine(sym); err != nil {
			return nil, err
		}
	}

	g.prog.Emit(ir.Label("main"))
	if err := g.genStatement(program.Body); err != nil {
		return nil, err
	}
	g.prog.Emit(ir.Insn("ret", ""))

	return g.prog, nil
}

func (g *Generator) freshLabel(prefix string) string {
	g.labelCounter++
	return fmt.Sprintf("%s_%d", prefix, g.labelCounter)
}

func (g *Generator) routineLabel(sym *symbols.Symbol) string {
	return "proc_" + strings.ToLower(sym.Name)
}

// allocateGlobal reserves `.data` storage for a global variable. Scalars
// reserve 4 bytes; aggregates reserve their full size.
func (g *Generator) allocateGlobal(sym *symbols.Symbol) {
	g.prog.AddData(ir.Data{Label: sym.Label, Kind: ir.DataSpace, Bytes: sym.Type.Size()})
}

// genRoutine lowers one procedure or function body: prologue, body,
// epilogue. The routine's own locals/params accounting lives in its
// Inner scope, built by the parser.
func (g *Generator) genRoutine(sym *symbols.Symbol) error {
	label := g.routineLabels[sym]
	g.prog.Emit(ir.Label(label))
	g.prog.Emit(ir.Insn("push", "l", ir.Reg("ebp")))
	g.prog.Emit(ir.Insn("mov", "l", ir.Reg("esp"), ir.Reg("ebp")))
	if sym.Inner.LocalsSize > 0 {
		g.prog.Emit(ir.Insn("sub", "l", ir.Imm(int64(sym.Inner.LocalsSize)), ir.Reg("esp")))
	}

	body, _ := sym.Body.(ast.Statement)
	if body == nil {
		return errors.New(errors.Generator, token.Position{}, sym.Name, "routine has no body")
	}
	if err := g.genStatement(body); err != nil {
		return err
	}

	resultSize := 0
	if sym.Is(symbols.KindFunction) {
		resultSize = sym.Type.Size()
		g.genResultCopy(sym, resultSize)
	}

	g.prog.Emit(ir.Insn("mov", "l", ir.Reg("ebp"), ir.Reg("esp")))
	g.prog.Emit(ir.Insn("pop", "l", ir.Reg("ebp")))

	// ret pops params - result bytes of arguments, leaving the rest of the
	// arguments and the reserved result slot for genCall to reclaim; when
	// params < result (a parameterless function, for one) this would be
	// negative, so it is clamped at zero.
	popBytes := sym.Inner.ParamsSize - resultSize
	if popBytes < 0 {
		popBytes = 0
	}
	if popBytes > 0 {
		g.prog.Emit(ir.Insn("ret", "", ir.Imm(int64(popBytes))))
	} else {
		g.prog.Emit(ir.Insn("ret", ""))
	}
	return nil
}

// genResultCopy copies the callee's Result local (always the first local,
// at offset 0) into the caller-reserved slot at %ebp+8+ParamsSize before
// the frame is torn down.
func (g *Generator) genResultCopy(sym *symbols.Symbol, resultSize int) {
	resultScope, _ := sym.Inner.Lookup("result")
	if resultScope == nil {
		return
	}
	destBase := 8 + sym.Inner.ParamsSize
	for off := 0; off < resultSize; off += 4 {
		g.prog.Emit(ir.Insn("mov", "l", localMem2(resultScope, resultSize, off), ir.Reg("eax")))
		g.prog.Emit(ir.Insn("mov", "l", ir.Reg("eax"), ir.Mem("ebp", destBase+off)))
	}
}

// localMem2 is localMem generalised to address byte off within a
// multi-word local.
func localMem2(sym *symbols.Symbol, size, off int) ir.Operand {
	return ir.Mem("ebp", -(sym.Offset+size)+off)
}

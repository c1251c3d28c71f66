package symbols

// Kind is a bitmask over a symbol's discriminated variant, letting callers
// test capabilities ("is this a type", "is this callable", "can this be
// the source of an l-value") without a full type switch.
type Kind uint

const (
	KindType Kind = 1 << iota
	KindConst
	KindParameter
	KindGlobal
	KindLocal
	KindProcedure
	KindFunction
)

// Variable-shaped kinds: anything that owns a byte-addressable storage
// slot. Constants are excluded — they have a value but no address.
const KindVariable = KindParameter | KindGlobal | KindLocal

// Routine-shaped kinds.
const KindRoutine = KindProcedure | KindFunction

// Symbol is a named declaration in some Scope: a type, a variable of some
// storage class, or a routine. Every symbol is owned by the Scope that
// declared it for the lifetime of the compilation unit; the AST holds only
// non-owning references to symbols.
type Symbol struct {
	Name string
	Kind Kind

	// Declared type. For KindType, Type *is* the declared type. For
	// variables, it is the variable's type. For KindFunction, it is the
	// function's result type (procedures leave this nil).
	Type *Type

	// Variable fields.
	ByRef      bool // KindParameter only: passed by reference
	Offset     int  // KindParameter: positive, from +8. KindLocal: distance below %ebp, from 0.
	Label      string // KindGlobal: the data label emitted for this symbol
	ConstValue any  // KindConst: the compile-time constant value

	// Routine fields.
	Params []*Symbol // ordered formal parameters
	Inner  *Scope    // the routine's own scope: params, locals, and for
	// functions a synthesized Result slot shaped like a local of the
	// result type
	Body any // the routine's body statement; asserted to ast.Statement by
	// the generator. Declared as `any` here to avoid a symbols<->ast
	// import cycle (ast.Node carries *symbols.Type, so symbols cannot
	// import ast back).
}

// Is reports whether any of the bits in mask are set in s.Kind.
func (s *Symbol) Is(mask Kind) bool { return s.Kind&mask != 0 }

// IsType reports whether the symbol names a type.
func (s *Symbol) IsType() bool { return s.Is(KindType) }

// IsCallable reports whether the symbol can appear in call position.
func (s *Symbol) IsCallable() bool { return s.Is(KindRoutine) }

// IsLValueSource reports whether a reference to this symbol, on its own,
// is an l-value (constants and routines are not; storage-backed variables
// are).
func (s *Symbol) IsLValueSource() bool { return s.Is(KindVariable) }

// Size returns the symbol's byte footprint: 4 for scalars, references, and
// by-reference parameters; the full value size for by-value aggregates;
// the result type's size for functions; 0 for procedures, constants, and
// types (which have no runtime storage of their own).
func (s *Symbol) Size() int {
	switch {
	case s.Is(KindType):
		return 0
	case s.Is(KindParameter) && s.ByRef:
		return 4
	case s.Is(KindVariable):
		return s.Type.Size()
	case s.Is(KindFunction):
		return s.Type.Size()
	default:
		return 0
	}
}

// NewTypeSymbol wraps a declared type as a symbol, as happens for every
// `type Name = ...` declaration and for the three built-ins seeded into
// the bottom scope.
func NewTypeSymbol(name string, t *Type) *Symbol {
	return &Symbol{Name: name, Kind: KindType, Type: t}
}

// NewConstSymbol declares a compile-time constant.
func NewConstSymbol(name string, t *Type, value any) *Symbol {
	return &Symbol{Name: name, Kind: KindConst, Type: t, ConstValue: value}
}

// NewParameterSymbol declares a formal parameter at the given frame
// offset (assigned by the scope that owns the routine as parameters are
// inserted, growing from +8).
func NewParameterSymbol(name string, t *Type, byRef bool, offset int) *Symbol {
	return &Symbol{Name: name, Kind: KindParameter, Type: t, ByRef: byRef, Offset: offset}
}

// NewGlobalSymbol declares a top-level variable backed by a data label.
func NewGlobalSymbol(name string, t *Type, label string) *Symbol {
	return &Symbol{Name: name, Kind: KindGlobal, Type: t, Label: label}
}

// NewLocalSymbol declares a routine-local variable at the given
// non-negative offset below the frame pointer (the generator addresses it
// as %ebp - offset - size).
func NewLocalSymbol(name string, t *Type, offset int) *Symbol {
	return &Symbol{Name: name, Kind: KindLocal, Type: t, Offset: offset}
}

// NewProcedureSymbol declares a procedure: its formal parameters and its
// own inner scope (already populated with those parameters). Body is left
// nil; the parser sets it once the body has been parsed.
func NewProcedureSymbol(name string, params []*Symbol, inner *Scope) *Symbol {
	return &Symbol{Name: name, Kind: KindProcedure, Params: params, Inner: inner}
}

// NewFunctionSymbol declares a function: like a procedure, but with a
// result type and a synthesized Result slot already present in inner
// (shaped like a local of resultType, per the language's implicit-Result
// convention).
func NewFunctionSymbol(name string, params []*Symbol, inner *Scope, resultType *Type) *Symbol {
	return &Symbol{Name: name, Kind: KindFunction, Type: resultType, Params: params, Inner: inner}
}

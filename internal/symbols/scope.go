package symbols

import (
	"fmt"
	"strings"
)

// Scope is an insertion-ordered mapping from canonical (lowercased) name
// to symbol, plus the running byte totals the generator needs to lay out
// a stack frame: bytes of parameters and bytes of locals declared so far.
// A record type's field scope reuses the "locals" counter as a running
// field-offset allocator, since both are just "next free offset from the
// start of this scope's storage".
type Scope struct {
	order   []string
	symbols map[string]*Symbol

	ParamsSize int
	LocalsSize int

	nextParamOffset int // starts at 8, per cdecl: return address + saved ebp
	nextLocalOffset int // starts at 0
}

// NewScope constructs an empty scope with parameter offsets starting at
// the first argument slot above the frame (+8: return address, saved ebp).
func NewScope() *Scope {
	return &Scope{symbols: make(map[string]*Symbol), nextParamOffset: 8}
}

// Insert adds a fully-formed symbol (as built by one of the constructors
// in symbol.go) into the scope, rejecting a duplicate name. It does not
// assign offsets or update totals — callers needing offset assignment
// should use the Declare* helpers below, which call Insert internally.
func (s *Scope) Insert(sym *Symbol) error {
	key := strings.ToLower(sym.Name)
	if _, exists := s.symbols[key]; exists {
		return fmt.Errorf("duplicate identifier '%s'", sym.Name)
	}
	s.symbols[key] = sym
	s.order = append(s.order, key)
	return nil
}

// Lookup searches only this scope.
func (s *Scope) Lookup(name string) (*Symbol, bool) {
	sym, ok := s.symbols[strings.ToLower(name)]
	return sym, ok
}

// Symbols returns the scope's contents in declaration order.
func (s *Scope) Symbols() []*Symbol {
	out := make([]*Symbol, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.symbols[key])
	}
	return out
}

// Routines returns, in declaration order, every procedure/function symbol
// directly declared in this scope — the order the generator emits routine
// bodies in, so output is stable across runs.
func (s *Scope) Routines() []*Symbol {
	var out []*Symbol
	for _, key := range s.order {
		if sym := s.symbols[key]; sym.Is(KindRoutine) {
			out = append(out, sym)
		}
	}
	return out
}

// DeclareType inserts a named type symbol.
func (s *Scope) DeclareType(name string, t *Type) (*Symbol, error) {
	sym := NewTypeSymbol(name, t)
	if err := s.Insert(sym); err != nil {
		return nil, err
	}
	return sym, nil
}

// DeclareConst inserts a compile-time constant.
func (s *Scope) DeclareConst(name string, t *Type, value any) (*Symbol, error) {
	sym := NewConstSymbol(name, t, value)
	if err := s.Insert(sym); err != nil {
		return nil, err
	}
	return sym, nil
}

// DeclareParameter inserts a formal parameter, assigning it the next
// positive frame offset and growing ParamsSize by its size (4 for a
// by-reference parameter or any scalar; the full value size for a
// by-value aggregate).
func (s *Scope) DeclareParameter(name string, t *Type, byRef bool) (*Symbol, error) {
	sym := NewParameterSymbol(name, t, byRef, s.nextParamOffset)
	size := sym.Size()
	if err := s.Insert(sym); err != nil {
		return nil, err
	}
	s.nextParamOffset += size
	s.ParamsSize += size
	return sym, nil
}

// DeclareLocal inserts a routine-local variable (or, when this Scope backs
// a record type, a field), assigning it the next offset and growing
// LocalsSize by its size.
func (s *Scope) DeclareLocal(name string, t *Type) (*Symbol, error) {
	sym := NewLocalSymbol(name, t, s.nextLocalOffset)
	size := t.Size()
	if err := s.Insert(sym); err != nil {
		return nil, err
	}
	s.nextLocalOffset += size
	s.LocalsSize += size
	return sym, nil
}

// DeclareGlobal inserts a top-level variable backed by a fresh data label.
func (s *Scope) DeclareGlobal(name string, t *Type, label string) (*Symbol, error) {
	sym := NewGlobalSymbol(name, t, label)
	if err := s.Insert(sym); err != nil {
		return nil, err
	}
	return sym, nil
}

// DeclareProcedure inserts a procedure symbol.
func (s *Scope) DeclareProcedure(name string, params []*Symbol, inner *Scope) (*Symbol, error) {
	sym := NewProcedureSymbol(name, params, inner)
	if err := s.Insert(sym); err != nil {
		return nil, err
	}
	return sym, nil
}

// DeclareFunction inserts a function symbol.
func (s *Scope) DeclareFunction(name string, params []*Symbol, inner *Scope, resultType *Type) (*Symbol, error) {
	sym := NewFunctionSymbol(name, params, inner, resultType)
	if err := s.Insert(sym); err != nil {
		return nil, err
	}
	return sym, nil
}

// Stack is a stack of lexical scopes: program-level (immortal, seeded with
// the built-in types), and one pushed per routine body. A record's field
// scope is built with NewScope and is never pushed.
type Stack struct {
	scopes []*Scope
}

// NewStack builds a stack with a single bottom scope seeded with the
// built-in types Integer, Real and untyped.
func NewStack() *Stack {
	bottom := NewScope()
	bottom.Insert(NewTypeSymbol("Integer", Integer))
	bottom.Insert(NewTypeSymbol("Real", Real))
	bottom.Insert(NewTypeSymbol("untyped", Untyped))
	return &Stack{scopes: []*Scope{bottom}}
}

// Push introduces a new innermost scope.
func (st *Stack) Push(s *Scope) { st.scopes = append(st.scopes, s) }

// PushNew introduces and returns a fresh innermost scope.
func (st *Stack) PushNew() *Scope {
	s := NewScope()
	st.Push(s)
	return s
}

// Pop discards the innermost scope.
func (st *Stack) Pop() { st.scopes = st.scopes[:len(st.scopes)-1] }

// Top returns the innermost scope.
func (st *Stack) Top() *Scope { return st.scopes[len(st.scopes)-1] }

// Bottom returns the immortal program-level scope.
func (st *Stack) Bottom() *Scope { return st.scopes[0] }

// Lookup searches from innermost to outermost scope, returning the first
// match.
func (st *Stack) Lookup(name string) (*Symbol, bool) {
	for i := len(st.scopes) - 1; i >= 0; i-- {
		if sym, ok := st.scopes[i].Lookup(name); ok {
			return sym, true
		}
	}
	return nil, false
}

// LookupOrError looks up name and asserts that the result's kind
// intersects required; both the "not found" and "wrong kind" failures are
// reported through the single returned error so callers can propagate it
// directly as a diagnostic.
func (st *Stack) LookupOrError(name string, required Kind) (*Symbol, error) {
	sym, ok := st.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("identifier not found: '%s'", name)
	}
	if !sym.Is(required) {
		return nil, fmt.Errorf("'%s' cannot be used here", name)
	}
	return sym, nil
}

package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeDeclareParameterOffsetsGrowFromEight(t *testing.T) {
	s := NewScope()
	p1, err := s.DeclareParameter("a", Integer, false)
	require.NoError(t, err)
	p2, err := s.DeclareParameter("b", Integer, false)
	require.NoError(t, err)

	assert.Equal(t, 8, p1.Offset)
	assert.Equal(t, 12, p2.Offset)
	assert.Equal(t, 8, s.ParamsSize)
}

func TestScopeDeclareParameterByRefIsAlwaysFourBytes(t *testing.T) {
	s := NewScope()
	arr := NewArrayType(Integer, 1, 100)
	p, err := s.DeclareParameter("a", arr, true)
	require.NoError(t, err)
	assert.Equal(t, 4, p.Size())
	assert.Equal(t, 4, s.ParamsSize)
}

func TestScopeDeclareLocalOffsetsGrowFromZero(t *testing.T) {
	s := NewScope()
	l1, err := s.DeclareLocal("x", Integer)
	require.NoError(t, err)
	l2, err := s.DeclareLocal("y", Integer)
	require.NoError(t, err)

	assert.Equal(t, 0, l1.Offset)
	assert.Equal(t, 4, l2.Offset)
	assert.Equal(t, 8, s.LocalsSize)
}

func TestScopeInsertRejectsDuplicateNamesCaseInsensitively(t *testing.T) {
	s := NewScope()
	_, err := s.DeclareLocal("Count", Integer)
	require.NoError(t, err)
	_, err = s.DeclareLocal("count", Integer)
	assert.Error(t, err)
}

func TestScopeSymbolsPreservesDeclarationOrder(t *testing.T) {
	s := NewScope()
	s.DeclareLocal("first", Integer)
	s.DeclareLocal("second", Integer)
	s.DeclareLocal("third", Integer)

	var names []string
	for _, sym := range s.Symbols() {
		names = append(names, sym.Name)
	}
	assert.Equal(t, []string{"first", "second", "third"}, names)
}

func TestScopeRoutinesFiltersNonRoutineSymbols(t *testing.T) {
	s := NewScope()
	s.DeclareLocal("x", Integer)
	inner := NewScope()
	s.DeclareProcedure("DoThing", nil, inner)
	s.DeclareConst("Limit", Integer, int64(10))

	routines := s.Routines()
	require.Len(t, routines, 1)
	assert.Equal(t, "DoThing", routines[0].Name)
}

func TestStackLookupSearchesInnermostFirst(t *testing.T) {
	st := NewStack()
	st.Bottom().DeclareGlobal("x", Integer, "g_x")
	inner := st.PushNew()
	inner.DeclareLocal("x", Real)

	sym, ok := st.Lookup("x")
	require.True(t, ok)
	assert.True(t, sym.Is(KindLocal))

	st.Pop()
	sym, ok = st.Lookup("x")
	require.True(t, ok)
	assert.True(t, sym.Is(KindGlobal))
}

func TestStackLookupOrErrorReportsMissingAndWrongKind(t *testing.T) {
	st := NewStack()
	st.Bottom().DeclareConst("Pi", Real, 3.14)

	_, err := st.LookupOrError("Nope", KindVariable)
	assert.ErrorContains(t, err, "not found")

	_, err = st.LookupOrError("Pi", KindRoutine)
	assert.Error(t, err)
}

func TestSymbolSizeByKind(t *testing.T) {
	intSym := NewLocalSymbol("x", Integer, 0)
	assert.Equal(t, 4, intSym.Size())

	arr := NewArrayType(Integer, 1, 5)
	arrSym := NewLocalSymbol("a", arr, 0)
	assert.Equal(t, 20, arrSym.Size())

	byRef := NewParameterSymbol("p", arr, true, 8)
	assert.Equal(t, 4, byRef.Size())

	typeSym := NewTypeSymbol("T", Integer)
	assert.Equal(t, 0, typeSym.Size())
}

func TestSymbolIsLValueSource(t *testing.T) {
	assert.True(t, NewLocalSymbol("x", Integer, 0).IsLValueSource())
	assert.True(t, NewGlobalSymbol("x", Integer, "g_x").IsLValueSource())
	assert.False(t, NewConstSymbol("x", Integer, int64(1)).IsLValueSource())
	assert.False(t, NewProcedureSymbol("p", nil, NewScope()).IsLValueSource())
}

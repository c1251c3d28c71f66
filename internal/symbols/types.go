// Package symbols implements the typed symbol model and lexically scoped
// symbol table shared by the parser (which populates it) and the code
// generator (which reads offsets and labels back out of it).
package symbols

// TypeKind discriminates the variant carried by a Type.
type TypeKind int

const (
	TypeInteger TypeKind = iota
	TypeReal
	TypeUntyped
	TypeArray
	TypeRecord
	TypeAlias
	TypePointer // reserved; parses but is rejected before it reaches codegen
)

// Type is a discriminated union over the language's type variants. Scalars
// (Integer, Real, untyped) are singletons; arrays, records, aliases and
// pointers are allocated per declaration.
type Type struct {
	Kind TypeKind
	Name string

	// TypeArray
	Element *Type
	Low     int
	High    int

	// TypeRecord
	Fields *Scope

	// TypeAlias, TypePointer
	Target *Type
}

// Built-in singleton types, seeded into the bottom (immortal) scope.
var (
	Integer = &Type{Kind: TypeInteger, Name: "Integer"}
	Real    = &Type{Kind: TypeReal, Name: "Real"}
	Untyped = &Type{Kind: TypeUntyped, Name: "untyped"}
)

// Actual resolves alias chains, returning the first non-alias type
// reached. All structural equality checks in the compiler compare Actual
// types, never raw Type pointers, so that `type T = Integer` behaves
// exactly like Integer everywhere.
func (t *Type) Actual() *Type {
	for t != nil && t.Kind == TypeAlias {
		t = t.Target
	}
	return t
}

// Equals compares two types by actual-type identity: scalars compare by
// pointer (there is exactly one Integer and one Real), arrays compare
// structurally on element type and bounds, records compare by pointer
// (each record declaration introduces a distinct type), pointers compare
// on target type.
func (t *Type) Equals(other *Type) bool {
	a, b := t.Actual(), other.Actual()
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case TypeArray:
		return a.Low == b.Low && a.High == b.High && a.Element.Equals(b.Element)
	case TypePointer:
		return a.Target.Equals(b.Target)
	default:
		return false
	}
}

// Size returns the byte size of a value of this type: 4 for scalars and
// references (pointers, by-ref slots), element-size*length for arrays, the
// sum of field sizes for records, 0 for untyped.
func (t *Type) Size() int {
	a := t.Actual()
	switch a.Kind {
	case TypeInteger, TypeReal, TypePointer:
		return 4
	case TypeUntyped:
		return 0
	case TypeArray:
		return (a.High - a.Low + 1) * a.Element.Size()
	case TypeRecord:
		return a.Fields.LocalsSize
	default:
		return 0
	}
}

// NewArrayType builds an array[low..high] of element type.
func NewArrayType(element *Type, low, high int) *Type {
	return &Type{Kind: TypeArray, Element: element, Low: low, High: high}
}

// NewRecordType builds a record type over the given field scope. fields is
// owned by the returned type for the rest of the compilation unit.
func NewRecordType(name string, fields *Scope) *Type {
	return &Type{Kind: TypeRecord, Name: name, Fields: fields}
}

// NewAliasType builds `type Name = target`.
func NewAliasType(name string, target *Type) *Type {
	return &Type{Kind: TypeAlias, Name: name, Target: target}
}

// NewPointerType builds a reserved, unimplemented pointer-to-target type.
func NewPointerType(target *Type) *Type {
	return &Type{Kind: TypePointer, Target: target}
}

// String renders the type the way the symbol-table pretty-printer expects:
// the declared name for named types, a structural description otherwise.
func (t *Type) String() string {
	switch t.Kind {
	case TypeInteger, TypeReal, TypeUntyped:
		return t.Name
	case TypeArray:
		return "array[" + itoa(t.Low) + ".." + itoa(t.High) + "] of " + t.Element.String()
	case TypeRecord:
		return "record " + t.Name
	case TypeAlias:
		return t.Name + " = " + t.Target.String()
	case TypePointer:
		return "^" + t.Target.String()
	default:
		return "?"
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Package ctypes defines the C type representation built by declarator
// resolution. Types are recursive values compared structurally; typedef
// names are resolved to their underlying type during parsing and never
// appear as a distinct variant.
package ctypes

import (
	"fmt"
	"strings"
)

// Type is the interface for all C types
type Type interface {
	implType()
	String() string
}

// Signedness represents signed/unsigned for integer types
type Signedness int

const (
	Signed Signedness = iota
	Unsigned
)

func (s Signedness) String() string {
	if s == Signed {
		return "signed"
	}
	return "unsigned"
}

// Rank orders the integer conversion ranks
type Rank int

const (
	RankBool Rank = iota
	RankChar
	RankShort
	RankInt
	RankLong
	RankLongLong
)

func (r Rank) String() string {
	names := []string{"_Bool", "char", "short", "int", "long", "long long"}
	if int(r) < len(names) {
		return names[r]
	}
	return "?"
}

// FloatSize represents the size of floating-point types
type FloatSize int

const (
	F32 FloatSize = iota
	F64
	F80 // long double
)

func (s FloatSize) String() string {
	switch s {
	case F32:
		return "float"
	case F64:
		return "double"
	}
	return "long double"
}

// Qual is a set of type qualifiers
type Qual uint8

const (
	QConst Qual = 1 << iota
	QVolatile
	QRestrict
)

func (q Qual) String() string {
	var parts []string
	if q&QConst != 0 {
		parts = append(parts, "const")
	}
	if q&QVolatile != 0 {
		parts = append(parts, "volatile")
	}
	if q&QRestrict != 0 {
		parts = append(parts, "restrict")
	}
	return strings.Join(parts, " ")
}

// ArrayKind distinguishes how an array's length is known
type ArrayKind int

const (
	// ArrayFixed has a compile-time constant length.
	ArrayFixed ArrayKind = iota
	// ArrayVLA has a runtime length expression; the expression is held
	// opaquely in Tarray.LenExpr and is never folded.
	ArrayVLA
	// ArrayIncomplete has no length at all, as in `int a[]`.
	ArrayIncomplete
)

// SizeExpr holds a VLA length expression. It is an opaque reference to an
// AST expression node; ctypes does not inspect it.
type SizeExpr interface{}

// Tvoid represents the void type
type Tvoid struct{}

// Tint represents integer types of every rank, including _Bool
type Tint struct {
	Rank Rank
	Sign Signedness
}

// Tfloat represents floating-point types
type Tfloat struct {
	Size FloatSize
}

// Tpointer represents pointer types. Quals qualify the pointer itself
// (`int *const p`), not the pointee.
type Tpointer struct {
	Elem  Type
	Quals Qual
}

// Tarray represents array types. For parameter arrays, Static records a
// `[static n]` annotation and Quals any qualifiers inside the brackets;
// both are bookkeeping only, since parameter arrays decay to pointers for
// compatibility purposes.
type Tarray struct {
	Elem    Type
	Kind    ArrayKind
	Len     int64    // meaningful only for ArrayFixed
	LenExpr SizeExpr // meaningful only for ArrayVLA
	Quals   Qual
	Static  bool
}

// Param is a function parameter; the name may be empty in prototypes
type Param struct {
	Name string
	Type Type
}

// Tfunction represents function types. Unspecified marks an old-style
// empty parameter list `()`, which is compatible with any parameter list.
type Tfunction struct {
	Params      []Param
	Return      Type
	Variadic    bool
	Unspecified bool
}

// Field is a struct or union member. Aggregate members form their own
// namespace owned by the aggregate; FieldByName is the lookup into it.
type Field struct {
	Name string
	Type Type
}

// Tstruct represents struct types. ID is a parse-session-unique identity
// used for comparison; anonymous structs have an empty Tag but still carry
// a distinct ID.
type Tstruct struct {
	Tag      string
	ID       int
	Fields   []Field
	Complete bool
}

// Tunion represents union types; see Tstruct for Tag/ID semantics
type Tunion struct {
	Tag      string
	ID       int
	Fields   []Field
	Complete bool
}

// EnumMember is one enumerator. Value is the folded constant when the
// initializing expression was foldable; otherwise Known is false.
type EnumMember struct {
	Name  string
	Value int64
	Known bool
}

// Tenum represents enum types
type Tenum struct {
	Tag      string
	ID       int
	Members  []EnumMember
	Complete bool
}

// Tqual wraps a type with qualifiers, as in `const int`
type Tqual struct {
	Quals Qual
	Elem  Type
}

// Marker methods for Type interface
func (Tvoid) implType()     {}
func (Tint) implType()      {}
func (Tfloat) implType()    {}
func (*Tpointer) implType() {}
func (*Tarray) implType()   {}
func (*Tfunction) implType() {}
func (*Tstruct) implType()  {}
func (*Tunion) implType()   {}
func (*Tenum) implType()    {}
func (*Tqual) implType()    {}

// String methods for types

func (Tvoid) String() string { return "void" }

func (t Tint) String() string {
	if t.Rank == RankBool {
		return "_Bool"
	}
	if t.Sign == Unsigned {
		return "unsigned " + t.Rank.String()
	}
	if t.Rank == RankChar {
		return "char"
	}
	return t.Rank.String()
}

func (t Tfloat) String() string {
	return t.Size.String()
}

func (t *Tpointer) String() string {
	s := t.Elem.String() + " *"
	if t.Quals != 0 {
		s += t.Quals.String()
	}
	return s
}

func (t *Tarray) String() string {
	switch t.Kind {
	case ArrayVLA:
		return t.Elem.String() + "[*]"
	case ArrayIncomplete:
		return t.Elem.String() + "[]"
	}
	return fmt.Sprintf("%s[%d]", t.Elem, t.Len)
}

func (t *Tfunction) String() string {
	var b strings.Builder
	b.WriteString(t.Return.String())
	b.WriteString(" (")
	if t.Unspecified {
		b.WriteString(")")
		return b.String()
	}
	for i, p := range t.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Type.String())
	}
	if t.Variadic {
		if len(t.Params) > 0 {
			b.WriteString(", ")
		}
		b.WriteString("...")
	}
	b.WriteString(")")
	return b.String()
}

func (t *Tstruct) String() string {
	if t.Tag == "" {
		return "struct <anonymous>"
	}
	return "struct " + t.Tag
}

func (t *Tunion) String() string {
	if t.Tag == "" {
		return "union <anonymous>"
	}
	return "union " + t.Tag
}

func (t *Tenum) String() string {
	if t.Tag == "" {
		return "enum <anonymous>"
	}
	return "enum " + t.Tag
}

func (t *Tqual) String() string {
	return t.Quals.String() + " " + t.Elem.String()
}

// FieldByName looks up a member in the struct's own member namespace
func (t *Tstruct) FieldByName(name string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FieldByName looks up a member in the union's own member namespace
func (t *Tunion) FieldByName(name string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Common type constructors

// Int returns the plain int type
func Int() Type { return Tint{Rank: RankInt, Sign: Signed} }

// UInt returns the unsigned int type
func UInt() Type { return Tint{Rank: RankInt, Sign: Unsigned} }

// Char returns the plain char type
func Char() Type { return Tint{Rank: RankChar, Sign: Signed} }

// Bool returns the _Bool type
func Bool() Type { return Tint{Rank: RankBool, Sign: Unsigned} }

// Long returns the signed long type
func Long() Type { return Tint{Rank: RankLong, Sign: Signed} }

// Float returns the float type
func Float() Type { return Tfloat{Size: F32} }

// Double returns the double type
func Double() Type { return Tfloat{Size: F64} }

// Void returns the void type
func Void() Type { return Tvoid{} }

// Pointer returns an unqualified pointer to elem
func Pointer(elem Type) Type { return &Tpointer{Elem: elem} }

// Array returns a fixed-length array type
func Array(elem Type, n int64) Type {
	return &Tarray{Elem: elem, Kind: ArrayFixed, Len: n}
}

// Unqualified strips any Tqual wrapper
func Unqualified(t Type) Type {
	if q, ok := t.(*Tqual); ok {
		return Unqualified(q.Elem)
	}
	return t
}

// Equal checks two types for structural equality. Aggregate and enum types
// compare by definition identity (their parse-session ID), matching C's
// one-definition-per-scope rule inside a single translation unit.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch ta := a.(type) {
	case Tvoid:
		_, ok := b.(Tvoid)
		return ok
	case Tint:
		tb, ok := b.(Tint)
		return ok && ta.Rank == tb.Rank && ta.Sign == tb.Sign
	case Tfloat:
		tb, ok := b.(Tfloat)
		return ok && ta.Size == tb.Size
	case *Tpointer:
		tb, ok := b.(*Tpointer)
		return ok && ta.Quals == tb.Quals && Equal(ta.Elem, tb.Elem)
	case *Tarray:
		tb, ok := b.(*Tarray)
		if !ok || ta.Kind != tb.Kind || !Equal(ta.Elem, tb.Elem) {
			return false
		}
		return ta.Kind != ArrayFixed || ta.Len == tb.Len
	case *Tstruct:
		tb, ok := b.(*Tstruct)
		return ok && ta.ID == tb.ID
	case *Tunion:
		tb, ok := b.(*Tunion)
		return ok && ta.ID == tb.ID
	case *Tenum:
		tb, ok := b.(*Tenum)
		return ok && ta.ID == tb.ID
	case *Tqual:
		tb, ok := b.(*Tqual)
		return ok && ta.Quals == tb.Quals && Equal(ta.Elem, tb.Elem)
	case *Tfunction:
		tb, ok := b.(*Tfunction)
		if !ok || ta.Variadic != tb.Variadic || ta.Unspecified != tb.Unspecified ||
			len(ta.Params) != len(tb.Params) || !Equal(ta.Return, tb.Return) {
			return false
		}
		for i, p := range ta.Params {
			if !Equal(p.Type, tb.Params[i].Type) {
				return false
			}
		}
		return true
	}
	return false
}

// Decay applies the parameter adjustments of C: array-of-T becomes
// pointer-to-T (qualifiers inside the brackets move to the pointer) and
// function types become pointers to themselves.
func Decay(t Type) Type {
	switch tt := Unqualified(t).(type) {
	case *Tarray:
		return &Tpointer{Elem: tt.Elem, Quals: tt.Quals}
	case *Tfunction:
		return &Tpointer{Elem: tt}
	}
	return t
}

// Compatible checks type compatibility for redeclaration merging. It is
// looser than Equal: qualifiers are ignored, parameter types are compared
// after decay, and an unspecified parameter list `()` is compatible with
// any parameter list.
func Compatible(a, b Type) bool {
	a = Unqualified(a)
	b = Unqualified(b)
	switch ta := a.(type) {
	case *Tpointer:
		tb, ok := b.(*Tpointer)
		return ok && Compatible(ta.Elem, tb.Elem)
	case *Tarray:
		tb, ok := b.(*Tarray)
		if !ok || !Compatible(ta.Elem, tb.Elem) {
			return false
		}
		// An incomplete array is compatible with any length.
		if ta.Kind == ArrayIncomplete || tb.Kind == ArrayIncomplete {
			return true
		}
		if ta.Kind == ArrayVLA || tb.Kind == ArrayVLA {
			return true
		}
		return ta.Len == tb.Len
	case *Tfunction:
		tb, ok := b.(*Tfunction)
		if !ok || !Compatible(ta.Return, tb.Return) {
			return false
		}
		if ta.Unspecified || tb.Unspecified {
			return true
		}
		if ta.Variadic != tb.Variadic || len(ta.Params) != len(tb.Params) {
			return false
		}
		for i, p := range ta.Params {
			if !Compatible(Decay(p.Type), Decay(tb.Params[i].Type)) {
				return false
			}
		}
		return true
	default:
		return Equal(a, b)
	}
}

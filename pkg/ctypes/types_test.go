package ctypes

import "testing"

func TestTypeStrings(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{Int(), "int"},
		{UInt(), "unsigned int"},
		{Char(), "char"},
		{Bool(), "_Bool"},
		{Tint{Rank: RankLongLong, Sign: Unsigned}, "unsigned long long"},
		{Tfloat{Size: F80}, "long double"},
		{Pointer(Int()), "int *"},
		{Array(Int(), 3), "int[3]"},
		{&Tarray{Elem: Char(), Kind: ArrayIncomplete}, "char[]"},
		{&Tarray{Elem: Int(), Kind: ArrayVLA}, "int[*]"},
		{Array(Pointer(Int()), 3), "int *[3]"},
		{Pointer(Array(Int(), 3)), "int[3] *"},
		{&Tfunction{Return: Int(), Unspecified: true}, "int ()"},
		{&Tfunction{Return: Void(), Params: []Param{{Type: Int()}, {Type: Char()}}, Variadic: true}, "void (int, char, ...)"},
		{&Tstruct{Tag: "s"}, "struct s"},
		{&Tstruct{}, "struct <anonymous>"},
		{&Tenum{Tag: "color"}, "enum color"},
		{&Tqual{Quals: QConst, Elem: Int()}, "const int"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestEqual(t *testing.T) {
	if !Equal(Int(), Int()) {
		t.Error("int == int")
	}
	if Equal(Int(), UInt()) {
		t.Error("int != unsigned int")
	}
	if !Equal(Pointer(Char()), Pointer(Char())) {
		t.Error("char* == char*")
	}
	if Equal(Array(Int(), 2), Array(Int(), 3)) {
		t.Error("lengths distinguish fixed arrays")
	}

	// Aggregates compare by definition identity, not shape.
	a := &Tstruct{Tag: "p", ID: 1, Fields: []Field{{Name: "x", Type: Int()}}}
	b := &Tstruct{Tag: "p", ID: 2, Fields: []Field{{Name: "x", Type: Int()}}}
	if Equal(a, b) {
		t.Error("distinct struct definitions are distinct types")
	}
	if !Equal(a, a) {
		t.Error("a struct equals itself")
	}
}

func TestDecay(t *testing.T) {
	got := Decay(Array(Int(), 4))
	ptr, ok := got.(*Tpointer)
	if !ok || !Equal(ptr.Elem, Int()) {
		t.Errorf("int[4] decays to %s, want int *", got)
	}

	// Qualifiers inside the brackets move to the pointer.
	qarr := &Tarray{Elem: Char(), Kind: ArrayIncomplete, Quals: QConst}
	ptr = Decay(qarr).(*Tpointer)
	if ptr.Quals != QConst {
		t.Error("array qualifiers should survive decay onto the pointer")
	}

	fn := &Tfunction{Return: Void()}
	if _, ok := Decay(fn).(*Tpointer); !ok {
		t.Error("a function type decays to a pointer to itself")
	}

	if !Equal(Decay(Int()), Int()) {
		t.Error("non-array, non-function types pass through")
	}
}

func TestCompatible(t *testing.T) {
	// () matches any parameter list; (void) matches only empty.
	unspec := &Tfunction{Return: Int(), Unspecified: true}
	withParams := &Tfunction{Return: Int(), Params: []Param{{Type: Int()}}}
	if !Compatible(unspec, withParams) {
		t.Error("int () should be compatible with int (int)")
	}

	// Parameter arrays decay before comparison.
	arrParam := &Tfunction{Return: Int(), Params: []Param{{Type: &Tarray{Elem: Int(), Kind: ArrayIncomplete}}}}
	ptrParam := &Tfunction{Return: Int(), Params: []Param{{Type: Pointer(Int())}}}
	if !Compatible(arrParam, ptrParam) {
		t.Error("int (int[]) should be compatible with int (int *)")
	}

	// Qualifiers are ignored.
	if !Compatible(&Tqual{Quals: QConst, Elem: Int()}, Int()) {
		t.Error("const int should be compatible with int")
	}

	// An incomplete array is compatible with any length.
	if !Compatible(&Tarray{Elem: Int(), Kind: ArrayIncomplete}, Array(Int(), 8)) {
		t.Error("int[] should be compatible with int[8]")
	}

	if Compatible(Int(), Pointer(Int())) {
		t.Error("int and int * are not compatible")
	}
}

func TestUnqualified(t *testing.T) {
	q := &Tqual{Quals: QConst | QVolatile, Elem: Int()}
	if !Equal(Unqualified(q), Int()) {
		t.Error("Unqualified should strip the wrapper")
	}
	if !Equal(Unqualified(Int()), Int()) {
		t.Error("Unqualified of a bare type is itself")
	}
}

func TestFieldByName(t *testing.T) {
	st := &Tstruct{Tag: "pt", ID: 1, Fields: []Field{
		{Name: "x", Type: Int()},
		{Name: "y", Type: Int()},
	}, Complete: true}
	if f, ok := st.FieldByName("y"); !ok || f.Name != "y" {
		t.Error("y should be found")
	}
	if _, ok := st.FieldByName("z"); ok {
		t.Error("z should not be found")
	}
}

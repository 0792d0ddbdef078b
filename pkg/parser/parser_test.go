package parser

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/frontc/frontc/pkg/cabs"
	"github.com/frontc/frontc/pkg/ctypes"
	"github.com/frontc/frontc/pkg/symtab"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gopkg.in/yaml.v3"
)

// TestSpec is one test case from parse.yaml
type TestSpec struct {
	Name    string            `yaml:"name"`
	Input   string            `yaml:"input"`
	Error   string            `yaml:"error,omitempty"`
	Symbols map[string]string `yaml:"symbols,omitempty"`
	Tags    map[string]string `yaml:"tags,omitempty"`
	Dump    string            `yaml:"dump,omitempty"`
}

// TestFile is the parse.yaml file structure
type TestFile struct {
	Tests []TestSpec `yaml:"tests"`
}

func TestParseYAML(t *testing.T) {
	data, err := os.ReadFile("../../testdata/parse.yaml")
	if err != nil {
		t.Fatalf("failed to read parse.yaml: %v", err)
	}

	var testFile TestFile
	if err := yaml.Unmarshal(data, &testFile); err != nil {
		t.Fatalf("failed to parse parse.yaml: %v", err)
	}

	for _, tc := range testFile.Tests {
		t.Run(tc.Name, func(t *testing.T) {
			tu, tab, err := Parse(tc.Input)

			if tc.Error != "" {
				var diag *Diagnostic
				if !errors.As(err, &diag) {
					t.Fatalf("expected a %s diagnostic, got %v", tc.Error, err)
				}
				if diag.Kind.String() != tc.Error {
					t.Fatalf("diagnostic kind = %s, want %s (%v)", diag.Kind, tc.Error, diag)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}

			scope := tab.FileScope()
			for name, wantType := range tc.Symbols {
				sym := findSymbol(scope, name)
				if sym == nil {
					t.Errorf("file scope does not bind %q", name)
					continue
				}
				if got := sym.Type.String(); got != wantType {
					t.Errorf("%s: type = %q, want %q", name, got, wantType)
				}
			}
			for name, wantKind := range tc.Tags {
				tag := findTag(scope, name)
				if tag == nil {
					t.Errorf("file scope does not bind tag %q", name)
					continue
				}
				if got := tag.Kind.String(); got != wantKind {
					t.Errorf("tag %s: kind = %q, want %q", name, got, wantKind)
				}
			}

			if tc.Dump != "" {
				var buf bytes.Buffer
				cabs.NewPrinter(&buf).PrintTranslationUnit(tu)
				got := strings.TrimRight(buf.String(), "\n")
				want := strings.TrimRight(tc.Dump, "\n")
				if got != want {
					t.Errorf("dump mismatch:\n--- got ---\n%s\n--- want ---\n%s", got, want)
				}
			}
		})
	}
}

func findSymbol(scope *symtab.Scope, name string) *symtab.Symbol {
	for _, sym := range scope.Ordinary() {
		if sym.Name == name {
			return sym
		}
	}
	return nil
}

func findTag(scope *symtab.Scope, name string) *symtab.Tag {
	for _, tag := range scope.Tags() {
		if tag.Name == name {
			return tag
		}
	}
	return nil
}

// ignoreRefs drops the non-owning symbol bindings when comparing trees
var ignoreRefs = cmpopts.IgnoreFields(cabs.Variable{}, "Ref")

// firstBodyItems parses src and returns the body items of its first
// function definition
func firstBodyItems(t *testing.T, src string) []cabs.Stmt {
	t.Helper()
	tu, _, err := Parse(src)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	for _, def := range tu.Defs {
		if fd, ok := def.(cabs.FunDef); ok {
			return fd.Body.Items
		}
	}
	t.Fatal("no function definition in input")
	return nil
}

func TestExpressionPrecedence(t *testing.T) {
	items := firstBodyItems(t, "int f(void) { return 1 + 2 * 3; }")

	want := cabs.Return{Expr: cabs.Binary{
		Op:   cabs.OpAdd,
		Left: cabs.Constant{Value: 1, Text: "1"},
		Right: cabs.Binary{
			Op:    cabs.OpMul,
			Left:  cabs.Constant{Value: 2, Text: "2"},
			Right: cabs.Constant{Value: 3, Text: "3"},
		},
	}}
	if diff := cmp.Diff(want, items[0], ignoreRefs); diff != "" {
		t.Errorf("AST mismatch (-want +got):\n%s", diff)
	}
}

func TestAssignmentIsRightAssociative(t *testing.T) {
	items := firstBodyItems(t, "int f(int a, int b) { a = b = 1; return a; }")

	want := cabs.ExprStmt{Expr: cabs.Binary{
		Op:   cabs.OpAssign,
		Left: cabs.Variable{Name: "a"},
		Right: cabs.Binary{
			Op:    cabs.OpAssign,
			Left:  cabs.Variable{Name: "b"},
			Right: cabs.Constant{Value: 1, Text: "1"},
		},
	}}
	if diff := cmp.Diff(want, items[0], ignoreRefs); diff != "" {
		t.Errorf("AST mismatch (-want +got):\n%s", diff)
	}
}

func TestConditionalAndComma(t *testing.T) {
	items := firstBodyItems(t, "int f(int x) { return x > 0 ? x : -x, 0; }")

	ret := items[0].(cabs.Return)
	comma, ok := ret.Expr.(cabs.Binary)
	if !ok || comma.Op != cabs.OpComma {
		t.Fatalf("expected comma expression, got %#v", ret.Expr)
	}
	if _, ok := comma.Left.(cabs.Conditional); !ok {
		t.Errorf("left of comma should be the conditional, got %T", comma.Left)
	}
}

func TestReversedSubscript(t *testing.T) {
	// 2[a] is the same subscript as a[2]; the parser keeps what was written.
	items := firstBodyItems(t, "int f(int *a) { return 2[a]; }")

	ret := items[0].(cabs.Return)
	idx, ok := ret.Expr.(cabs.Index)
	if !ok {
		t.Fatalf("expected Index, got %T", ret.Expr)
	}
	if _, ok := idx.Array.(cabs.Constant); !ok {
		t.Errorf("array operand should be the constant, got %T", idx.Array)
	}
}

func TestSizeofForms(t *testing.T) {
	items := firstBodyItems(t, "int f(void) { int a[4]; a[0] = 0; return sizeof a / sizeof(int); }")

	ret := items[2].(cabs.Return)
	div := ret.Expr.(cabs.Binary)
	if div.Op != cabs.OpDiv {
		t.Fatalf("expected division, got %s", div.Op)
	}
	if _, ok := div.Left.(cabs.SizeofExpr); !ok {
		t.Errorf("sizeof a should be SizeofExpr, got %T", div.Left)
	}
	st, ok := div.Right.(cabs.SizeofType)
	if !ok {
		t.Fatalf("sizeof(int) should be SizeofType, got %T", div.Right)
	}
	if !ctypes.Equal(st.Type, ctypes.Int()) {
		t.Errorf("sizeof type = %s, want int", st.Type)
	}
}

func TestSizeofParenthesizedExpr(t *testing.T) {
	// sizeof(x) with x an object is the expression form, not the type form.
	items := firstBodyItems(t, "int f(int x) { return sizeof(x); }")

	ret := items[0].(cabs.Return)
	if _, ok := ret.Expr.(cabs.SizeofExpr); !ok {
		t.Errorf("expected SizeofExpr, got %T", ret.Expr)
	}
}

func TestVLADetection(t *testing.T) {
	items := firstBodyItems(t, "void g(int n) { int x[n]; int fixed[2*2]; x[0] = fixed[0]; }")

	vla := items[0].(cabs.DeclStmt).Decls[0].Type.(*ctypes.Tarray)
	if vla.Kind != ctypes.ArrayVLA {
		t.Errorf("x: kind = %v, want ArrayVLA", vla.Kind)
	}
	if vla.LenExpr == nil {
		t.Error("x: VLA should keep its length expression")
	}

	fixed := items[1].(cabs.DeclStmt).Decls[0].Type.(*ctypes.Tarray)
	if fixed.Kind != ctypes.ArrayFixed || fixed.Len != 4 {
		t.Errorf("fixed: got kind %v len %d, want fixed length 4", fixed.Kind, fixed.Len)
	}
}

func TestTypedefShadowedByVariable(t *testing.T) {
	// After `int t = 3;` the spelling t is a variable, so `t * 2` is a
	// multiplication, not a declaration of a pointer.
	items := firstBodyItems(t, "typedef int t; int main(void) { int t = 3; int b = t * 2; return b; }")

	decl := items[1].(cabs.DeclStmt).Decls[0]
	if decl.Name != "b" {
		t.Fatalf("expected declaration of b, got %q", decl.Name)
	}
	mul, ok := decl.Init.(cabs.Binary)
	if !ok || mul.Op != cabs.OpMul {
		t.Fatalf("initializer should be a multiplication, got %#v", decl.Init)
	}
}

func TestTypedefDeclaredAsPointerStatement(t *testing.T) {
	// With t still a typedef, `t * q;` declares q as a pointer.
	items := firstBodyItems(t, "typedef int t; int main(void) { t * q; q = 0; return 0; }")

	decl := items[0].(cabs.DeclStmt).Decls[0]
	if decl.Name != "q" {
		t.Fatalf("expected declaration of q, got %q", decl.Name)
	}
	if _, ok := decl.Type.(*ctypes.Tpointer); !ok {
		t.Errorf("q should be a pointer, got %s", decl.Type)
	}
}

func TestDesignatedInitializers(t *testing.T) {
	tu, _, err := Parse("struct P { int x; int y; }; struct P p = { .y = 2, .x = 1 };")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	decl := tu.Defs[1].(*cabs.Decl)
	il, ok := decl.Init.(cabs.InitList)
	if !ok {
		t.Fatalf("initializer should be an InitList, got %T", decl.Init)
	}
	if len(il.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(il.Items))
	}
	first := il.Items[0].Designators[0].(cabs.FieldDesignator)
	if first.Name != "y" {
		t.Errorf("first designator = %q, want y", first.Name)
	}
}

func TestNestedArrayDesignators(t *testing.T) {
	tu, _, err := Parse("int grid[2][2] = { [1] = { [0] = 7 } };")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	il := tu.Defs[0].(*cabs.Decl).Init.(cabs.InitList)
	outer := il.Items[0].Designators[0].(cabs.IndexDesignator)
	if v, ok := foldConst(outer.Index); !ok || v != 1 {
		t.Errorf("outer designator index = %v, want 1", outer.Index)
	}
	inner, ok := il.Items[0].Value.(cabs.InitList)
	if !ok {
		t.Fatalf("nested initializer should be an InitList, got %T", il.Items[0].Value)
	}
	if len(inner.Items) != 1 {
		t.Errorf("inner list has %d items, want 1", len(inner.Items))
	}
}

func TestCompoundLiteral(t *testing.T) {
	items := firstBodyItems(t, "int main(void) { int *p = (int[]){2, 4}; return p[0]; }")

	decl := items[0].(cabs.DeclStmt).Decls[0]
	lit, ok := decl.Init.(cabs.CompoundLiteral)
	if !ok {
		t.Fatalf("initializer should be a CompoundLiteral, got %T", decl.Init)
	}
	arr, ok := lit.Type.(*ctypes.Tarray)
	if !ok || arr.Kind != ctypes.ArrayIncomplete {
		t.Errorf("literal type = %s, want int[]", lit.Type)
	}
	if lit.FileScope {
		t.Error("a literal inside a function body is not file scope")
	}
	if len(lit.Init.Items) != 2 {
		t.Errorf("literal has %d items, want 2", len(lit.Init.Items))
	}
}

func TestEnumeratorValues(t *testing.T) {
	_, tab, err := Parse("enum day { Mon, Tue, Fri = 100, Sat, Sun };")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	wants := map[string]int64{"Mon": 0, "Tue": 1, "Fri": 100, "Sat": 101, "Sun": 102}
	for name, want := range wants {
		sym := findSymbol(tab.FileScope(), name)
		if sym == nil {
			t.Fatalf("enumerator %s not declared", name)
		}
		if sym.Kind != symtab.SymEnumerator {
			t.Errorf("%s: kind = %s, want enumerator", name, sym.Kind)
		}
		if !sym.HasEnumValue || sym.EnumValue != want {
			t.Errorf("%s = %d (known=%v), want %d", name, sym.EnumValue, sym.HasEnumValue, want)
		}
	}
}

func TestEnumConstantAsArrayLength(t *testing.T) {
	tu, _, err := Parse("enum { N = 4 }; int buf[N];")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	arr := tu.Defs[1].(*cabs.Decl).Type.(*ctypes.Tarray)
	if arr.Kind != ctypes.ArrayFixed || arr.Len != 4 {
		t.Errorf("buf: got kind %v len %d, want fixed length 4", arr.Kind, arr.Len)
	}
}

func TestImplicitFunctionCall(t *testing.T) {
	items := firstBodyItems(t, "int main(void) { return abs(0); }")

	call := items[0].(cabs.Return).Expr.(cabs.Call)
	fn, ok := call.Func.(cabs.Variable)
	if !ok {
		t.Fatalf("callee should be a Variable, got %T", call.Func)
	}
	if fn.Ref != nil {
		t.Error("an undeclared callee has no binding")
	}
}

func TestResolvedVariableBinding(t *testing.T) {
	items := firstBodyItems(t, "int g; int main(void) { return g; }")

	v := items[0].(cabs.Return).Expr.(cabs.Variable)
	if v.Ref == nil {
		t.Fatal("g should resolve to its file-scope symbol")
	}
	if v.Ref.Name != "g" || !ctypes.Equal(v.Ref.Type, ctypes.Int()) {
		t.Errorf("binding = %s %s, want int g", v.Ref.Type, v.Ref.Name)
	}
}

func TestForInitScope(t *testing.T) {
	// The i declared in the for header must not leak: a second loop can
	// redeclare it.
	src := `int main(void) {
		int sum = 0;
		for (int i = 0; i < 3; i++) { sum += i; }
		for (int i = 9; i > 0; i--) { sum += i; }
		return sum;
	}`
	if _, _, err := Parse(src); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
}

func TestLabelsOnFunDef(t *testing.T) {
	tu, _, err := Parse("int main(void) { goto out; out: return 0; }")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	fd := tu.Defs[0].(cabs.FunDef)
	l := fd.Labels["out"]
	if l == nil || !l.Defined || !l.Used {
		t.Errorf("label out not finalized on the definition: %+v", l)
	}
}

func TestLabelNamespaceIsPerFunction(t *testing.T) {
	src := `
	void a(void) { goto done; done: return; }
	void b(void) { goto done; done: return; }
	`
	if _, _, err := Parse(src); err != nil {
		t.Fatalf("the same label name in two functions must not clash: %v", err)
	}
}

func TestParserIsSingleUse(t *testing.T) {
	p := New("int x;")
	if _, err := p.ParseTranslationUnit(); err != nil {
		t.Fatal(err)
	}
	if _, err := p.ParseTranslationUnit(); err == nil {
		t.Error("a second parse on the same Parser should fail")
	}
}

func TestDiagnosticFormat(t *testing.T) {
	_, _, err := Parse("int f(void) {\n  int x;\n  int x;\n}")
	var diag *Diagnostic
	if !errors.As(err, &diag) {
		t.Fatalf("expected a Diagnostic, got %v", err)
	}
	if diag.Kind != ErrRedeclaration {
		t.Errorf("kind = %s, want RedeclarationError", diag.Kind)
	}
	if diag.Pos.Line != 3 {
		t.Errorf("position line = %d, want 3", diag.Pos.Line)
	}
	if !strings.Contains(diag.Error(), "RedeclarationError") {
		t.Errorf("message %q should name the kind", diag.Error())
	}
}

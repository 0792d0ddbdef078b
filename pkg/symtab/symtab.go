// Package symtab implements the scope-aware symbol table for the parser.
//
// C has four independent identifier namespaces: ordinary identifiers
// (variables, functions, enumerators, typedef names), tags (struct, union,
// enum names), labels (flat, per function) and struct/union members (owned
// by the aggregate type itself, see ctypes). The table is a push-down stack
// of scopes; shadowing across scopes is always legal except for labels.
//
// A Table is owned by a single parse session. Independent sessions never
// share a table, so concurrent parses in one process are safe.
package symtab

import (
	"fmt"
	"sort"

	"github.com/frontc/frontc/pkg/ctypes"
	"github.com/frontc/frontc/pkg/lexer"
)

// SymbolKind classifies an ordinary-namespace binding
type SymbolKind int

const (
	SymVar SymbolKind = iota
	SymFunc
	SymTypedef
	SymEnumerator
)

func (k SymbolKind) String() string {
	switch k {
	case SymVar:
		return "variable"
	case SymFunc:
		return "function"
	case SymTypedef:
		return "typedef"
	case SymEnumerator:
		return "enumerator"
	}
	return "unknown"
}

// StorageClass is the declared storage class of an ordinary symbol
type StorageClass int

const (
	StorageNone StorageClass = iota
	StorageStatic
	StorageExtern
	StorageTypedef
)

func (s StorageClass) String() string {
	switch s {
	case StorageStatic:
		return "static"
	case StorageExtern:
		return "extern"
	case StorageTypedef:
		return "typedef"
	}
	return ""
}

// Symbol is an ordinary-namespace binding
type Symbol struct {
	Name    string
	Kind    SymbolKind
	Type    ctypes.Type
	Storage StorageClass
	// EnumValue is meaningful only for SymEnumerator bindings whose value
	// could be folded to a constant.
	EnumValue    int64
	HasEnumValue bool
	Pos          lexer.Position
}

// TagKind classifies a tag-namespace binding
type TagKind int

const (
	TagStruct TagKind = iota
	TagUnion
	TagEnum
)

func (k TagKind) String() string {
	switch k {
	case TagStruct:
		return "struct"
	case TagUnion:
		return "union"
	}
	return "enum"
}

// Tag is a tag-namespace binding
type Tag struct {
	Name string
	Kind TagKind
	Type ctypes.Type
	Pos  lexer.Position
}

// Label is a label-namespace entry. Labels live in a flat, per-function
// namespace; forward gotos are legal, so entries may exist in either order.
type Label struct {
	Name    string
	Defined bool
	Used    bool
	Pos     lexer.Position
}

// RedeclarationError reports an incompatible redeclaration within one scope
// and namespace.
type RedeclarationError struct {
	Name string
	Msg  string
	Pos  lexer.Position
}

func (e *RedeclarationError) Error() string {
	return fmt.Sprintf("%d:%d: redeclaration of %q: %s", e.Pos.Line, e.Pos.Column, e.Name, e.Msg)
}

// GotoTargetError reports a dangling goto or an unreferenced label,
// detected when a function body completes.
type GotoTargetError struct {
	Label string
	Msg   string
	Pos   lexer.Position
}

func (e *GotoTargetError) Error() string {
	return fmt.Sprintf("%d:%d: label %q: %s", e.Pos.Line, e.Pos.Column, e.Label, e.Msg)
}

// Scope holds the ordinary and tag bindings introduced at one nesting level
type Scope struct {
	ordinary map[string]*Symbol
	tags     map[string]*Tag
}

func newScope() *Scope {
	return &Scope{
		ordinary: make(map[string]*Symbol),
		tags:     make(map[string]*Tag),
	}
}

// Table is the symbol table for one translation unit
type Table struct {
	scopes []*Scope
	// labels is non-nil while a function body is being parsed. Label
	// declarations target this map regardless of block nesting depth.
	labels map[string]*Label
}

// NewTable creates a table holding only the file scope
func NewTable() *Table {
	return &Table{scopes: []*Scope{newScope()}}
}

// EnterScope pushes a new innermost scope. Every EnterScope must be matched
// by exactly one LeaveScope.
func (t *Table) EnterScope() {
	t.scopes = append(t.scopes, newScope())
}

// LeaveScope pops the innermost scope. Leaving the file scope is an
// invariant violation and panics.
func (t *Table) LeaveScope() {
	if len(t.scopes) <= 1 {
		panic("symtab: LeaveScope without matching EnterScope")
	}
	t.scopes = t.scopes[:len(t.scopes)-1]
}

// Depth returns the current scope nesting depth; file scope is depth 1.
func (t *Table) Depth() int {
	return len(t.scopes)
}

// AtFileScope reports whether the innermost scope is the file scope
func (t *Table) AtFileScope() bool {
	return len(t.scopes) == 1
}

func (t *Table) innermost() *Scope {
	return t.scopes[len(t.scopes)-1]
}

// FileScope returns the root scope, which outlives the parse and is handed
// to consumers together with the AST.
func (t *Table) FileScope() *Scope {
	return t.scopes[0]
}

// Ordinary returns the scope's ordinary-namespace bindings sorted by name
func (s *Scope) Ordinary() []*Symbol {
	syms := make([]*Symbol, 0, len(s.ordinary))
	for _, sym := range s.ordinary {
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool { return syms[i].Name < syms[j].Name })
	return syms
}

// Tags returns the scope's tag-namespace bindings sorted by name
func (s *Scope) Tags() []*Tag {
	tags := make([]*Tag, 0, len(s.tags))
	for _, tag := range s.tags {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags
}

// IsTypeName reports whether name is bound as a typedef in the nearest
// scope that binds it. This is the lexer's classification callback; it is
// read-only.
func (t *Table) IsTypeName(name string) bool {
	sym := t.LookupOrdinary(name)
	return sym != nil && sym.Kind == SymTypedef
}

// LookupOrdinary searches the ordinary namespace innermost-to-outermost
func (t *Table) LookupOrdinary(name string) *Symbol {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if sym, ok := t.scopes[i].ordinary[name]; ok {
			return sym
		}
	}
	return nil
}

// LookupTag searches the tag namespace innermost-to-outermost
func (t *Table) LookupTag(name string) *Tag {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if tag, ok := t.scopes[i].tags[name]; ok {
			return tag
		}
	}
	return nil
}

// LookupTagCurrent searches the tag namespace in the innermost scope only
func (t *Table) LookupTagCurrent(name string) *Tag {
	tag, ok := t.innermost().tags[name]
	if !ok {
		return nil
	}
	return tag
}

// DeclareOrdinary inserts a binding into the innermost scope's ordinary
// namespace. Compatible redeclarations are merged: repeated extern or
// function declarations with compatible types, and repeated typedefs of an
// identical type. Anything else in the same scope is a RedeclarationError.
func (t *Table) DeclareOrdinary(sym *Symbol) (*Symbol, error) {
	scope := t.innermost()
	prev, ok := scope.ordinary[sym.Name]
	if !ok {
		scope.ordinary[sym.Name] = sym
		return sym, nil
	}

	if prev.Kind != sym.Kind {
		return nil, &RedeclarationError{
			Name: sym.Name,
			Msg:  fmt.Sprintf("declared as %s, previously declared as %s in the same scope", sym.Kind, prev.Kind),
			Pos:  sym.Pos,
		}
	}

	switch sym.Kind {
	case SymTypedef:
		if ctypes.Equal(prev.Type, sym.Type) {
			return prev, nil
		}
		return nil, &RedeclarationError{Name: sym.Name, Msg: "typedef redefined with a different type", Pos: sym.Pos}
	case SymFunc:
		if ctypes.Compatible(prev.Type, sym.Type) {
			return prev, nil
		}
		return nil, &RedeclarationError{Name: sym.Name, Msg: "conflicting function declarations", Pos: sym.Pos}
	case SymVar:
		// Repeated declarations are fine when at least one is extern and
		// the types are compatible (tentative definitions merge too at
		// file scope).
		if (prev.Storage == StorageExtern || sym.Storage == StorageExtern || t.AtFileScope()) &&
			ctypes.Compatible(prev.Type, sym.Type) {
			return prev, nil
		}
		return nil, &RedeclarationError{Name: sym.Name, Msg: "variable redeclared in the same scope", Pos: sym.Pos}
	default:
		return nil, &RedeclarationError{Name: sym.Name, Msg: "enumerator redeclared in the same scope", Pos: sym.Pos}
	}
}

// DeclareTag inserts a tag into the innermost scope's tag namespace.
// Redeclaring a tag with the same kind refers to (or completes) the prior
// declaration; redeclaring with a different kind (struct vs union vs enum)
// is a RedeclarationError even though the tag namespace is shared.
func (t *Table) DeclareTag(tag *Tag) (*Tag, error) {
	scope := t.innermost()
	prev, ok := scope.tags[tag.Name]
	if !ok {
		scope.tags[tag.Name] = tag
		return tag, nil
	}
	if prev.Kind != tag.Kind {
		return nil, &RedeclarationError{
			Name: tag.Name,
			Msg:  fmt.Sprintf("declared as %s, previously declared as %s in the same scope", tag.Kind, prev.Kind),
			Pos:  tag.Pos,
		}
	}
	return prev, nil
}

// BeginFunction opens the per-function label namespace. Functions do not
// nest in C, so calling this with a function already open is an invariant
// violation.
func (t *Table) BeginFunction() {
	if t.labels != nil {
		panic("symtab: BeginFunction while a function is already open")
	}
	t.labels = make(map[string]*Label)
}

// DeclareLabel records a label definition. The label namespace is flat per
// function: defining the same label twice is a RedeclarationError no matter
// how the blocks nest.
func (t *Table) DeclareLabel(name string, pos lexer.Position) error {
	if t.labels == nil {
		return &RedeclarationError{Name: name, Msg: "label outside of a function", Pos: pos}
	}
	if l, ok := t.labels[name]; ok {
		if l.Defined {
			return &RedeclarationError{Name: name, Msg: "duplicate label in function", Pos: pos}
		}
		l.Defined = true
		l.Pos = pos
		return nil
	}
	t.labels[name] = &Label{Name: name, Defined: true, Pos: pos}
	return nil
}

// UseLabel records a goto reference. Forward references are legal; the
// label need not be defined yet.
func (t *Table) UseLabel(name string, pos lexer.Position) {
	if l, ok := t.labels[name]; ok {
		l.Used = true
		return
	}
	t.labels[name] = &Label{Name: name, Used: true, Pos: pos}
}

// EndFunction closes the label namespace and checks that every goto target
// was defined and every defined label referenced. The returned map is the
// function's finalized label table.
func (t *Table) EndFunction() (map[string]*Label, error) {
	if t.labels == nil {
		panic("symtab: EndFunction without BeginFunction")
	}
	labels := t.labels
	t.labels = nil
	for _, l := range labels {
		if !l.Defined {
			return nil, &GotoTargetError{Label: l.Name, Msg: "goto target is never defined", Pos: l.Pos}
		}
		if !l.Used {
			return nil, &GotoTargetError{Label: l.Name, Msg: "label is defined but never used", Pos: l.Pos}
		}
	}
	return labels, nil
}

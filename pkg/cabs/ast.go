// Package cabs defines the abstract syntax tree produced by the parser.
//
// The tree owns all of its children exclusively; the only back-references
// are the non-owning symbol bindings on Variable nodes, which record what
// the name resolved to at parse time.
package cabs

import (
	"github.com/frontc/frontc/pkg/ctypes"
	"github.com/frontc/frontc/pkg/lexer"
	"github.com/frontc/frontc/pkg/symtab"
)

// Node is the base interface for all AST nodes
type Node interface {
	implCabsNode()
}

// Expr is the interface for all expression nodes
type Expr interface {
	Node
	implCabsExpr()
}

// Stmt is the interface for all statement nodes
type Stmt interface {
	Node
	implCabsStmt()
}

// Definition is the interface for top-level definitions
type Definition interface {
	Node
	implDefinition()
}

// BinaryOp represents binary operators
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpLt
	OpLe
	OpGt
	OpGe
	OpEq
	OpNe
	OpAnd // &&
	OpOr  // ||
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl // <<
	OpShr // >>
	OpAssign
	OpAddAssign
	OpSubAssign
	OpMulAssign
	OpDivAssign
	OpModAssign
	OpAndAssign
	OpOrAssign
	OpXorAssign
	OpShlAssign
	OpShrAssign
	OpComma
)

func (op BinaryOp) String() string {
	names := []string{
		"+", "-", "*", "/", "%", "<", "<=", ">", ">=", "==", "!=",
		"&&", "||", "&", "|", "^", "<<", ">>",
		"=", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<=", ">>=",
		",",
	}
	if int(op) < len(names) {
		return names[op]
	}
	return "?"
}

// UnaryOp represents unary operators
type UnaryOp int

const (
	OpNeg     UnaryOp = iota // -
	OpPlus                   // +
	OpNot                    // !
	OpBitNot                 // ~
	OpAddrOf                 // &
	OpDeref                  // *
	OpPreInc                 // ++x
	OpPreDec                 // --x
	OpPostInc                // x++
	OpPostDec                // x--
)

func (op UnaryOp) String() string {
	names := []string{"-", "+", "!", "~", "&", "*", "++", "--", "++", "--"}
	if int(op) < len(names) {
		return names[op]
	}
	return "?"
}

// Postfix reports whether the operator binds after its operand
func (op UnaryOp) Postfix() bool {
	return op == OpPostInc || op == OpPostDec
}

// ── Expressions ──

// Constant represents an integer constant
type Constant struct {
	Value int64
	Text  string // original spelling, e.g. "0x2a"
}

// FloatConstant represents a floating constant. The original spelling is
// kept because decimal re-rendering loses information.
type FloatConstant struct {
	Value float64
	Text  string
}

// CharLiteral represents a character constant; Text is the body between
// the quotes with escapes intact
type CharLiteral struct {
	Value int64
	Text  string
}

// StringLiteral represents a string literal; Value keeps escapes intact
type StringLiteral struct {
	Value string
}

// Variable represents an identifier expression. Ref is a non-owning
// reference to the symbol the name resolved to at parse time; it is nil
// for implicitly declared functions.
type Variable struct {
	Name string
	Ref  *symtab.Symbol
}

// Unary represents a unary expression
type Unary struct {
	Op   UnaryOp
	Expr Expr
}

// Binary represents a binary expression; assignment and comma are binary
// operators here, as in the C grammar
type Binary struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
}

// Paren represents a parenthesized expression
type Paren struct {
	Expr Expr
}

// Conditional represents the ternary operator: cond ? then : else
type Conditional struct {
	Cond Expr
	Then Expr
	Else Expr
}

// Call represents a function call
type Call struct {
	Func Expr
	Args []Expr
}

// Index represents array subscript access: arr[idx]
type Index struct {
	Array Expr
	Index Expr
}

// Member represents member access: s.x or p->x
type Member struct {
	Expr    Expr
	Name    string
	IsArrow bool
}

// Cast represents an explicit conversion: (type)expr
type Cast struct {
	Type ctypes.Type
	Expr Expr
}

// CompoundLiteral represents (type){init}. FileScope records whether the
// literal appeared at file scope and therefore has static storage.
type CompoundLiteral struct {
	Type      ctypes.Type
	Init      InitList
	FileScope bool
}

// SizeofExpr represents sizeof expr
type SizeofExpr struct {
	Expr Expr
}

// SizeofType represents sizeof(type)
type SizeofType struct {
	Type ctypes.Type
}

// ── Initializers ──

// Designator addresses a position inside a braced initializer
type Designator interface {
	Node
	implDesignator()
}

// FieldDesignator is `.name =`
type FieldDesignator struct {
	Name string
}

// IndexDesignator is `[expr] =`
type IndexDesignator struct {
	Index Expr
}

// InitItem is one element of a braced initializer list. An element with no
// designators continues positionally from the position after the previous
// element.
type InitItem struct {
	Designators []Designator
	Value       Expr // plain expression or nested InitList
}

// InitList is a braced initializer list. It implements Expr so it can sit
// anywhere an initializer or compound-literal body is expected.
type InitList struct {
	Items []InitItem
}

// ── Statements ──

// Block represents a compound statement; declarations appear as DeclStmt
// items interleaved with statements
type Block struct {
	Items []Stmt
}

// DeclStmt wraps the declarations introduced by one declaration line
type DeclStmt struct {
	Decls []*Decl
}

// ExprStmt is an expression statement
type ExprStmt struct {
	Expr Expr
}

// Null is the empty statement `;`
type Null struct{}

// If represents if/else
type If struct {
	Cond Expr
	Then Stmt
	Else Stmt // nil when absent
}

// Switch represents a switch statement; case and default labels appear as
// Case/Default statements inside the body
type Switch struct {
	Cond Expr
	Body Stmt
}

// Case is a case label and the statement it prefixes. The expression is
// stored unevaluated; constant folding is the consumer's concern.
type Case struct {
	Expr Expr
	Stmt Stmt
}

// Default is a default label and the statement it prefixes
type Default struct {
	Stmt Stmt
}

// While represents a while loop
type While struct {
	Cond Expr
	Body Stmt
}

// DoWhile represents a do-while loop
type DoWhile struct {
	Body Stmt
	Cond Expr
}

// For represents a for loop. Init is either a DeclStmt (C99 declaration,
// scoped to the loop), an ExprStmt, or nil.
type For struct {
	Init Stmt
	Cond Expr // nil when absent
	Post Expr // nil when absent
	Body Stmt
}

// Goto represents goto label
type Goto struct {
	Label string
}

// Labeled represents label: stmt
type Labeled struct {
	Label string
	Stmt  Stmt
}

// Return represents a return statement
type Return struct {
	Expr Expr // nil for bare return
}

// Break represents a break statement
type Break struct{}

// Continue represents a continue statement
type Continue struct{}

// ── Declarations and top level ──

// Decl is one declared name with its fully resolved type. A Decl with an
// empty Name declares only a tag, as in `struct s {int x;};`.
type Decl struct {
	Name    string
	Type    ctypes.Type
	Storage symtab.StorageClass
	Init    Expr // nil, plain expression, or InitList
	Align   Expr // _Alignas argument, nil when absent
	Pos     lexer.Position
}

// FunDef represents a function definition. Labels is the function's
// finalized label table.
type FunDef struct {
	Name    string
	Type    *ctypes.Tfunction
	Storage symtab.StorageClass
	Body    *Block
	Labels  map[string]*symtab.Label
	Pos     lexer.Position
}

// TranslationUnit is the root of the tree
type TranslationUnit struct {
	Defs []Definition
}

// Marker methods for interface implementation
func (Constant) implCabsNode()      {}
func (Constant) implCabsExpr()      {}
func (FloatConstant) implCabsNode() {}
func (FloatConstant) implCabsExpr() {}
func (CharLiteral) implCabsNode()   {}
func (CharLiteral) implCabsExpr()   {}
func (StringLiteral) implCabsNode() {}
func (StringLiteral) implCabsExpr() {}

func (Variable) implCabsNode()        {}
func (Variable) implCabsExpr()        {}
func (Unary) implCabsNode()           {}
func (Unary) implCabsExpr()           {}
func (Binary) implCabsNode()          {}
func (Binary) implCabsExpr()          {}
func (Paren) implCabsNode()           {}
func (Paren) implCabsExpr()           {}
func (Conditional) implCabsNode()     {}
func (Conditional) implCabsExpr()     {}
func (Call) implCabsNode()            {}
func (Call) implCabsExpr()            {}
func (Index) implCabsNode()           {}
func (Index) implCabsExpr()           {}
func (Member) implCabsNode()          {}
func (Member) implCabsExpr()          {}
func (Cast) implCabsNode()            {}
func (Cast) implCabsExpr()            {}
func (CompoundLiteral) implCabsNode() {}
func (CompoundLiteral) implCabsExpr() {}
func (SizeofExpr) implCabsNode()      {}
func (SizeofExpr) implCabsExpr()      {}
func (SizeofType) implCabsNode()      {}
func (SizeofType) implCabsExpr()      {}
func (InitList) implCabsNode()        {}
func (InitList) implCabsExpr()        {}

func (FieldDesignator) implCabsNode()    {}
func (FieldDesignator) implDesignator()  {}
func (IndexDesignator) implCabsNode()    {}
func (IndexDesignator) implDesignator()  {}

func (Block) implCabsNode()    {}
func (Block) implCabsStmt()    {}
func (DeclStmt) implCabsNode() {}
func (DeclStmt) implCabsStmt() {}
func (ExprStmt) implCabsNode() {}
func (ExprStmt) implCabsStmt() {}
func (Null) implCabsNode()     {}
func (Null) implCabsStmt()     {}
func (If) implCabsNode()       {}
func (If) implCabsStmt()       {}
func (Switch) implCabsNode()   {}
func (Switch) implCabsStmt()   {}
func (Case) implCabsNode()     {}
func (Case) implCabsStmt()     {}
func (Default) implCabsNode()  {}
func (Default) implCabsStmt()  {}
func (While) implCabsNode()    {}
func (While) implCabsStmt()    {}
func (DoWhile) implCabsNode()  {}
func (DoWhile) implCabsStmt()  {}
func (For) implCabsNode()      {}
func (For) implCabsStmt()      {}
func (Goto) implCabsNode()     {}
func (Goto) implCabsStmt()     {}
func (Labeled) implCabsNode()  {}
func (Labeled) implCabsStmt()  {}
func (Return) implCabsNode()   {}
func (Return) implCabsStmt()   {}
func (Break) implCabsNode()    {}
func (Break) implCabsStmt()    {}
func (Continue) implCabsNode() {}
func (Continue) implCabsStmt() {}

func (*Decl) implCabsNode()   {}
func (*Decl) implDefinition() {}
func (FunDef) implCabsNode()   {}
func (FunDef) implDefinition() {}

func (TranslationUnit) implCabsNode() {}

// Package parser implements a recursive descent parser for C99.
//
// The parser owns one symbol table per translation unit and feeds it back
// to the lexer for typedef classification. Parsing is single-threaded and
// all-or-nothing: the first error aborts the translation unit and is
// returned as a single Diagnostic; no partial AST escapes.
package parser

import (
	"errors"
	"fmt"

	"github.com/frontc/frontc/pkg/cabs"
	"github.com/frontc/frontc/pkg/lexer"
	"github.com/frontc/frontc/pkg/symtab"
)

// ErrorKind is the diagnostic taxonomy
type ErrorKind int

const (
	ErrLex ErrorKind = iota
	ErrSyntax
	ErrRedeclaration
	ErrGotoTarget
	ErrTypeResolution
)

func (k ErrorKind) String() string {
	switch k {
	case ErrLex:
		return "LexError"
	case ErrSyntax:
		return "SyntaxError"
	case ErrRedeclaration:
		return "RedeclarationError"
	case ErrGotoTarget:
		return "GotoTargetError"
	case ErrTypeResolution:
		return "TypeResolutionError"
	}
	return "Error"
}

// Diagnostic is the single structured error surfaced on a failed parse
type Diagnostic struct {
	Kind ErrorKind
	Msg  string
	Pos  lexer.Position
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%d:%d: %s: %s", d.Pos.Line, d.Pos.Column, d.Kind, d.Msg)
}

// bailout aborts deep grammar recursion; it is recovered at the public
// API boundary and never escapes the package.
type bailout struct {
	diag *Diagnostic
}

// Parser parses one translation unit. A Parser is single-use: create one
// per source text. Independent Parsers share nothing, so concurrent parses
// in one process are safe.
type Parser struct {
	lx  *lexer.Lexer
	tab *symtab.Table

	cur lexer.Token
	// buf is a one-slot pushback used for label detection; the token it
	// holds was already lexed, so no typedef reclassification happens.
	buf *lexer.Token

	// nextID numbers struct/union/enum definitions within the session,
	// giving anonymous tags a unique identity.
	nextID int

	done bool
}

// New creates a Parser for the given preprocessed source text. The symbol
// table is created here so the lexer can query it while tokens are pulled.
func New(src string) *Parser {
	p := &Parser{tab: symtab.NewTable()}
	p.lx = lexer.New(src, p.tab)
	return p
}

// Table returns the parser's symbol table. After a successful parse it
// holds the finalized file scope and is read-only for consumers.
func (p *Parser) Table() *symtab.Table {
	return p.tab
}

// ParseTranslationUnit parses the whole input. On failure the returned
// error is a *Diagnostic and the AST is nil.
func (p *Parser) ParseTranslationUnit() (tu *cabs.TranslationUnit, err error) {
	if p.done {
		return nil, errors.New("parser: translation unit already consumed")
	}
	p.done = true

	defer func() {
		if e := recover(); e != nil {
			b, ok := e.(bailout)
			if !ok {
				panic(e) // not ours, re-raise
			}
			tu = nil
			err = b.diag
		}
	}()

	p.advance() // load first token

	tu = &cabs.TranslationUnit{}
	for !p.curIs(lexer.TokenEOF) {
		tu.Defs = append(tu.Defs, p.parseExternalDeclaration()...)
	}
	return tu, nil
}

// Parse is the convenience entry point: one call parses one translation
// unit and returns the AST together with its symbol table.
func Parse(src string) (*cabs.TranslationUnit, *symtab.Table, error) {
	p := New(src)
	tu, err := p.ParseTranslationUnit()
	if err != nil {
		return nil, nil, err
	}
	return tu, p.Table(), nil
}

// ── token plumbing ──

// advance consumes the current token. The next token is lexed here, after
// everything before it has been parsed and declared, which is what makes
// the lexer's typedef classification see a current symbol table.
func (p *Parser) advance() {
	if p.buf != nil {
		p.cur = *p.buf
		p.buf = nil
		return
	}
	tok, err := p.lx.NextToken()
	if err != nil {
		p.failLex(err)
	}
	p.cur = tok
}

// pushback restores tok as the current token and stashes the present one.
// Both tokens were already lexed; this never re-runs classification.
func (p *Parser) pushback(tok lexer.Token) {
	if p.buf != nil {
		panic("parser: double pushback")
	}
	saved := p.cur
	p.buf = &saved
	p.cur = tok
}

func (p *Parser) curIs(t lexer.TokenType) bool {
	return p.cur.Type == t
}

// expect consumes the current token, failing unless it has the given type
func (p *Parser) expect(t lexer.TokenType) lexer.Token {
	if !p.curIs(t) {
		p.syntaxErrorf("expected %s, got %s", t, p.describeCur())
	}
	tok := p.cur
	p.advance()
	return tok
}

// accept consumes the current token if it has the given type
func (p *Parser) accept(t lexer.TokenType) bool {
	if p.curIs(t) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) describeCur() string {
	switch p.cur.Type {
	case lexer.TokenEOF:
		return "end of input"
	case lexer.TokenIdent, lexer.TokenTypeName, lexer.TokenInt, lexer.TokenFloat,
		lexer.TokenChar, lexer.TokenString:
		return fmt.Sprintf("%s %q", p.cur.Type, p.cur.Literal)
	}
	return fmt.Sprintf("%q", p.cur.Literal)
}

// ── failure paths ──

func (p *Parser) syntaxErrorf(format string, args ...any) {
	panic(bailout{&Diagnostic{
		Kind: ErrSyntax,
		Msg:  fmt.Sprintf(format, args...),
		Pos:  p.cur.Pos,
	}})
}

func (p *Parser) typeErrorf(pos lexer.Position, format string, args ...any) {
	panic(bailout{&Diagnostic{
		Kind: ErrTypeResolution,
		Msg:  fmt.Sprintf(format, args...),
		Pos:  pos,
	}})
}

func (p *Parser) failLex(err error) {
	var le *lexer.LexError
	if errors.As(err, &le) {
		panic(bailout{&Diagnostic{Kind: ErrLex, Msg: le.Msg, Pos: le.Pos}})
	}
	panic(bailout{&Diagnostic{Kind: ErrLex, Msg: err.Error()}})
}

// fail converts a symbol table error into the matching diagnostic kind
func (p *Parser) fail(err error) {
	var rd *symtab.RedeclarationError
	if errors.As(err, &rd) {
		panic(bailout{&Diagnostic{Kind: ErrRedeclaration, Msg: err.Error(), Pos: rd.Pos}})
	}
	var gt *symtab.GotoTargetError
	if errors.As(err, &gt) {
		panic(bailout{&Diagnostic{Kind: ErrGotoTarget, Msg: err.Error(), Pos: gt.Pos}})
	}
	panic(bailout{&Diagnostic{Kind: ErrSyntax, Msg: err.Error(), Pos: p.cur.Pos}})
}

func (p *Parser) newTagID() int {
	p.nextID++
	return p.nextID
}

package parser

import (
	"github.com/frontc/frontc/pkg/cabs"
	"github.com/frontc/frontc/pkg/ctypes"
	"github.com/frontc/frontc/pkg/lexer"
	"github.com/frontc/frontc/pkg/symtab"
)

// declSpecs is the result of parsing one run of declaration specifiers
type declSpecs struct {
	storage symtab.StorageClass
	inline  bool
	align   cabs.Expr
	base    ctypes.Type
	pos     lexer.Position
}

// isTypeStart reports whether a token can begin a type specifier, which is
// the decision the parser makes after '(' to tell casts and compound
// literals from parenthesized expressions.
func isTypeStart(t lexer.TokenType) bool {
	switch t {
	case lexer.TokenVoid, lexer.TokenChar_, lexer.TokenShort, lexer.TokenInt_,
		lexer.TokenLong, lexer.TokenFloat_, lexer.TokenDouble, lexer.TokenSigned,
		lexer.TokenUnsigned, lexer.TokenBool, lexer.TokenStruct, lexer.TokenUnion,
		lexer.TokenEnum, lexer.TokenConst, lexer.TokenVolatile, lexer.TokenRestrict,
		lexer.TokenTypeName:
		return true
	}
	return false
}

// isDeclStart reports whether a token can begin a declaration
func isDeclStart(t lexer.TokenType) bool {
	switch t {
	case lexer.TokenTypedef, lexer.TokenStatic, lexer.TokenExtern, lexer.TokenAuto,
		lexer.TokenRegister, lexer.TokenInline, lexer.TokenAlignas:
		return true
	}
	return isTypeStart(t)
}

// parseDeclSpecs parses declaration specifiers: storage classes, qualifiers
// and type specifiers in any order, combined into one base type. Multi-word
// specifiers like `unsigned long long` accumulate before combining.
func (p *Parser) parseDeclSpecs() declSpecs {
	specs := declSpecs{pos: p.cur.Pos}

	var (
		quals     ctypes.Qual
		tagType   ctypes.Type // struct/union/enum specifier or typedef expansion
		sawVoid   bool
		sawBool   bool
		sawChar   bool
		sawShort  bool
		sawInt    bool
		sawFloat  bool
		sawDouble bool
		longCount int
		signSeen  bool
		sign      ctypes.Signedness
	)
	hasType := func() bool {
		return tagType != nil || sawVoid || sawBool || sawChar || sawShort ||
			sawInt || sawFloat || sawDouble || longCount > 0 || signSeen
	}

loop:
	for {
		switch p.cur.Type {
		case lexer.TokenTypedef:
			p.setStorage(&specs, symtab.StorageTypedef)
		case lexer.TokenStatic:
			p.setStorage(&specs, symtab.StorageStatic)
		case lexer.TokenExtern:
			p.setStorage(&specs, symtab.StorageExtern)
		case lexer.TokenAuto, lexer.TokenRegister:
			// Accepted and dropped: neither survives into the symbol table.
		case lexer.TokenInline:
			specs.inline = true
		case lexer.TokenConst:
			quals |= ctypes.QConst
		case lexer.TokenVolatile:
			quals |= ctypes.QVolatile
		case lexer.TokenRestrict:
			quals |= ctypes.QRestrict
		case lexer.TokenAlignas:
			p.advance()
			specs.align = p.parseAlignasArg()
			continue
		case lexer.TokenVoid:
			sawVoid = true
		case lexer.TokenBool:
			sawBool = true
		case lexer.TokenChar_:
			sawChar = true
		case lexer.TokenShort:
			sawShort = true
		case lexer.TokenInt_:
			sawInt = true
		case lexer.TokenLong:
			longCount++
		case lexer.TokenFloat_:
			sawFloat = true
		case lexer.TokenDouble:
			sawDouble = true
		case lexer.TokenSigned:
			signSeen = true
			sign = ctypes.Signed
		case lexer.TokenUnsigned:
			signSeen = true
			sign = ctypes.Unsigned
		case lexer.TokenStruct:
			if hasType() {
				p.syntaxErrorf("struct specifier after another type specifier")
			}
			tagType = p.parseTagSpecifier(symtab.TagStruct)
			continue
		case lexer.TokenUnion:
			if hasType() {
				p.syntaxErrorf("union specifier after another type specifier")
			}
			tagType = p.parseTagSpecifier(symtab.TagUnion)
			continue
		case lexer.TokenEnum:
			if hasType() {
				p.syntaxErrorf("enum specifier after another type specifier")
			}
			tagType = p.parseEnumSpecifier()
			continue
		case lexer.TokenTypeName:
			// A typedef name is a type specifier only when no other type
			// specifier was seen; otherwise it is the declarator name
			// shadowing the typedef, and the declarator parses it.
			if hasType() {
				break loop
			}
			sym := p.tab.LookupOrdinary(p.cur.Literal)
			if sym == nil || sym.Kind != symtab.SymTypedef {
				p.typeErrorf(p.cur.Pos, "%q is not a type name", p.cur.Literal)
			}
			tagType = sym.Type
		default:
			break loop
		}
		p.advance()
	}

	switch {
	case tagType != nil:
		specs.base = tagType
	case sawVoid:
		specs.base = ctypes.Tvoid{}
	case sawBool:
		specs.base = ctypes.Tint{Rank: ctypes.RankBool, Sign: ctypes.Unsigned}
	case sawDouble:
		if longCount > 0 {
			specs.base = ctypes.Tfloat{Size: ctypes.F80}
		} else {
			specs.base = ctypes.Tfloat{Size: ctypes.F64}
		}
	case sawFloat:
		specs.base = ctypes.Tfloat{Size: ctypes.F32}
	case sawChar:
		specs.base = ctypes.Tint{Rank: ctypes.RankChar, Sign: sign}
	case sawShort:
		specs.base = ctypes.Tint{Rank: ctypes.RankShort, Sign: sign}
	case longCount >= 2:
		specs.base = ctypes.Tint{Rank: ctypes.RankLongLong, Sign: sign}
	case longCount == 1:
		specs.base = ctypes.Tint{Rank: ctypes.RankLong, Sign: sign}
	case sawInt || signSeen:
		specs.base = ctypes.Tint{Rank: ctypes.RankInt, Sign: sign}
	default:
		p.syntaxErrorf("expected type specifier, got %s", p.describeCur())
	}

	if quals != 0 {
		specs.base = &ctypes.Tqual{Quals: quals, Elem: specs.base}
	}
	return specs
}

func (p *Parser) setStorage(specs *declSpecs, sc symtab.StorageClass) {
	if specs.storage != symtab.StorageNone && specs.storage != sc {
		p.syntaxErrorf("multiple storage classes in declaration")
	}
	specs.storage = sc
}

// parseAlignasArg parses the parenthesized argument of _Alignas. A type
// argument is recorded as a sizeof node so the alignment request stays an
// expression on the declaration.
func (p *Parser) parseAlignasArg() cabs.Expr {
	p.expect(lexer.TokenLParen)
	var arg cabs.Expr
	if isTypeStart(p.cur.Type) {
		arg = cabs.SizeofType{Type: p.parseTypeName()}
	} else {
		arg = p.parseConditionalExpr()
	}
	p.expect(lexer.TokenRParen)
	return arg
}

// parseTagSpecifier parses a struct or union specifier: a reference to a
// tag, a forward declaration, or a full member-list definition.
func (p *Parser) parseTagSpecifier(kind symtab.TagKind) ctypes.Type {
	pos := p.cur.Pos
	p.advance() // struct | union

	var tagName string
	if p.curIs(lexer.TokenIdent) || p.curIs(lexer.TokenTypeName) {
		tagName = p.cur.Literal
		p.advance()
	}

	if !p.curIs(lexer.TokenLBrace) {
		if tagName == "" {
			p.syntaxErrorf("expected tag name or member list after %s", kind)
		}
		return p.referTag(kind, tagName, pos)
	}

	// Definition. The tag is declared incomplete before the member list so
	// self-referential members resolve to it.
	typ := p.newAggregate(kind, tagName)
	if tagName != "" {
		typ = p.defineTag(kind, tagName, typ, pos)
	}
	fields := p.parseMemberList()
	switch t := typ.(type) {
	case *ctypes.Tstruct:
		if t.Complete {
			p.fail(&symtab.RedeclarationError{Name: tagName, Msg: "struct redefined in the same scope", Pos: pos})
		}
		t.Fields = fields
		t.Complete = true
	case *ctypes.Tunion:
		if t.Complete {
			p.fail(&symtab.RedeclarationError{Name: tagName, Msg: "union redefined in the same scope", Pos: pos})
		}
		t.Fields = fields
		t.Complete = true
	}
	return typ
}

func (p *Parser) newAggregate(kind symtab.TagKind, tag string) ctypes.Type {
	if kind == symtab.TagStruct {
		return &ctypes.Tstruct{Tag: tag, ID: p.newTagID()}
	}
	return &ctypes.Tunion{Tag: tag, ID: p.newTagID()}
}

// referTag resolves `struct foo` (no member list) against the tag
// namespace, forward-declaring struct and union tags that are not yet
// known. Enums cannot be forward-declared; their reference path lives in
// parseEnumSpecifier.
func (p *Parser) referTag(kind symtab.TagKind, name string, pos lexer.Position) ctypes.Type {
	if tg := p.tab.LookupTagCurrent(name); tg != nil {
		if tg.Kind != kind {
			p.fail(&symtab.RedeclarationError{
				Name: name,
				Msg:  "used as " + kind.String() + ", previously declared as " + tg.Kind.String() + " in the same scope",
				Pos:  pos,
			})
		}
		return tg.Type
	}
	// A match in an outer scope is used only if the kind agrees; a
	// different kind means this reference introduces a fresh tag here.
	if tg := p.tab.LookupTag(name); tg != nil && tg.Kind == kind {
		return tg.Type
	}
	typ := p.newAggregate(kind, name)
	if _, err := p.tab.DeclareTag(&symtab.Tag{Name: name, Kind: kind, Type: typ, Pos: pos}); err != nil {
		p.fail(err)
	}
	return typ
}

// defineTag binds a definition's tag in the current scope, reusing a prior
// incomplete declaration of the same kind so its references stay valid.
func (p *Parser) defineTag(kind symtab.TagKind, name string, typ ctypes.Type, pos lexer.Position) ctypes.Type {
	if prev := p.tab.LookupTagCurrent(name); prev != nil {
		if prev.Kind != kind {
			p.fail(&symtab.RedeclarationError{
				Name: name,
				Msg:  "defined as " + kind.String() + ", previously declared as " + prev.Kind.String() + " in the same scope",
				Pos:  pos,
			})
		}
		return prev.Type
	}
	if _, err := p.tab.DeclareTag(&symtab.Tag{Name: name, Kind: kind, Type: typ, Pos: pos}); err != nil {
		p.fail(err)
	}
	return typ
}

// parseMemberList parses `{ member-declarations }`. The body is its own
// scope; member names go into the aggregate's field list, which is the
// member namespace, never into the ordinary namespace.
func (p *Parser) parseMemberList() []ctypes.Field {
	p.expect(lexer.TokenLBrace)
	p.tab.EnterScope()
	var fields []ctypes.Field
	for !p.curIs(lexer.TokenRBrace) {
		specs := p.parseDeclSpecs()
		for {
			name, pos, typ := p.parseDeclarator(specs.base)
			if name == "" {
				p.syntaxErrorf("expected member name")
			}
			for _, f := range fields {
				if f.Name == name {
					p.fail(&symtab.RedeclarationError{Name: name, Msg: "duplicate member", Pos: pos})
				}
			}
			fields = append(fields, ctypes.Field{Name: name, Type: typ})
			if !p.accept(lexer.TokenComma) {
				break
			}
		}
		p.expect(lexer.TokenSemicolon)
	}
	p.tab.LeaveScope()
	p.expect(lexer.TokenRBrace)
	return fields
}

// parseEnumSpecifier parses an enum specifier. Enumerators are declared
// into the ordinary namespace as they appear; values increment from the
// previous enumerator and reset at each folded initializer.
func (p *Parser) parseEnumSpecifier() ctypes.Type {
	pos := p.cur.Pos
	p.advance() // enum

	var tagName string
	if p.curIs(lexer.TokenIdent) || p.curIs(lexer.TokenTypeName) {
		tagName = p.cur.Literal
		p.advance()
	}

	if !p.curIs(lexer.TokenLBrace) {
		if tagName == "" {
			p.syntaxErrorf("expected tag name or enumerator list after enum")
		}
		if tg := p.tab.LookupTag(tagName); tg != nil {
			if tg.Kind != symtab.TagEnum {
				p.fail(&symtab.RedeclarationError{
					Name: tagName,
					Msg:  "used as enum, previously declared as " + tg.Kind.String(),
					Pos:  pos,
				})
			}
			return tg.Type
		}
		p.typeErrorf(pos, "enum %q is not defined", tagName)
	}

	et := &ctypes.Tenum{Tag: tagName, ID: p.newTagID()}
	if tagName != "" {
		bound := p.defineTag(symtab.TagEnum, tagName, et, pos)
		prev := bound.(*ctypes.Tenum)
		if prev.Complete {
			p.fail(&symtab.RedeclarationError{Name: tagName, Msg: "enum redefined in the same scope", Pos: pos})
		}
		et = prev
	}

	p.expect(lexer.TokenLBrace)
	next := int64(0)
	known := true
	for !p.curIs(lexer.TokenRBrace) {
		nameTok := p.cur
		if !p.curIs(lexer.TokenIdent) && !p.curIs(lexer.TokenTypeName) {
			p.syntaxErrorf("expected enumerator name, got %s", p.describeCur())
		}
		p.advance()
		if p.accept(lexer.TokenAssign) {
			e := p.parseConditionalExpr()
			if v, ok := foldConst(e); ok {
				next = v
				known = true
			} else {
				known = false
			}
		}
		et.Members = append(et.Members, ctypes.EnumMember{Name: nameTok.Literal, Value: next, Known: known})
		_, err := p.tab.DeclareOrdinary(&symtab.Symbol{
			Name:         nameTok.Literal,
			Kind:         symtab.SymEnumerator,
			Type:         et,
			EnumValue:    next,
			HasEnumValue: known,
			Pos:          nameTok.Pos,
		})
		if err != nil {
			p.fail(err)
		}
		if known {
			next++
		}
		if !p.accept(lexer.TokenComma) {
			break
		}
	}
	p.expect(lexer.TokenRBrace)
	et.Complete = true
	return et
}

// parseExternalDeclaration parses one file-scope declaration or function
// definition. One declaration line can introduce several names.
func (p *Parser) parseExternalDeclaration() []cabs.Definition {
	decls, fd := p.parseDeclarationLine(true)
	if fd != nil {
		return []cabs.Definition{*fd}
	}
	defs := make([]cabs.Definition, len(decls))
	for i, d := range decls {
		defs[i] = d
	}
	return defs
}

// parseDeclarationLine parses specifiers followed by a declarator list up
// to and including the semicolon. At file scope, a single declarator with
// a function type followed by `{` continues as a function definition.
func (p *Parser) parseDeclarationLine(allowFunDef bool) ([]*cabs.Decl, *cabs.FunDef) {
	specs := p.parseDeclSpecs()

	if p.curIs(lexer.TokenSemicolon) {
		// Tag-only declaration, e.g. `struct s { int x; };`
		p.advance()
		return []*cabs.Decl{{Type: specs.base, Storage: specs.storage, Pos: specs.pos}}, nil
	}

	var decls []*cabs.Decl
	first := true
	for {
		name, pos, typ := p.parseDeclarator(specs.base)
		if name == "" {
			p.syntaxErrorf("expected declarator name")
		}

		if ft, ok := ctypes.Unqualified(typ).(*ctypes.Tfunction); ok && p.curIs(lexer.TokenLBrace) {
			if !allowFunDef || !first || specs.storage == symtab.StorageTypedef {
				p.syntaxErrorf("function definition is not allowed here")
			}
			fd := p.parseFunctionDefinition(name, ft, specs, pos)
			return nil, &fd
		}
		first = false

		p.declareName(name, typ, specs, pos)
		decl := &cabs.Decl{Name: name, Type: typ, Storage: specs.storage, Align: specs.align, Pos: pos}
		if p.accept(lexer.TokenAssign) {
			decl.Init = p.parseInitializer()
		}
		decls = append(decls, decl)
		if !p.accept(lexer.TokenComma) {
			break
		}
	}
	p.expect(lexer.TokenSemicolon)
	return decls, nil
}

// declareName inserts one declarator's binding into the ordinary namespace.
// The binding is made before the initializer or the statement terminator is
// consumed, so a typedef name classifies correctly on the very next token.
func (p *Parser) declareName(name string, typ ctypes.Type, specs declSpecs, pos lexer.Position) *symtab.Symbol {
	kind := symtab.SymVar
	if specs.storage == symtab.StorageTypedef {
		kind = symtab.SymTypedef
	} else if _, ok := ctypes.Unqualified(typ).(*ctypes.Tfunction); ok {
		kind = symtab.SymFunc
	}
	sym, err := p.tab.DeclareOrdinary(&symtab.Symbol{
		Name:    name,
		Kind:    kind,
		Type:    typ,
		Storage: specs.storage,
		Pos:     pos,
	})
	if err != nil {
		p.fail(err)
	}
	return sym
}

// parseFunctionDefinition parses a function body. The function name is
// declared at file scope first so recursive calls resolve; parameters are
// redeclared inside the body scope; the label namespace opens and closes
// with the body.
func (p *Parser) parseFunctionDefinition(name string, ft *ctypes.Tfunction, specs declSpecs, pos lexer.Position) cabs.FunDef {
	if _, err := p.tab.DeclareOrdinary(&symtab.Symbol{
		Name:    name,
		Kind:    symtab.SymFunc,
		Type:    ft,
		Storage: specs.storage,
		Pos:     pos,
	}); err != nil {
		p.fail(err)
	}

	p.tab.BeginFunction()
	p.tab.EnterScope()
	for _, prm := range ft.Params {
		if prm.Name == "" {
			continue
		}
		if _, err := p.tab.DeclareOrdinary(&symtab.Symbol{
			Name: prm.Name,
			Kind: symtab.SymVar,
			Type: prm.Type,
			Pos:  pos,
		}); err != nil {
			p.fail(err)
		}
	}

	body := p.parseBlockInCurrentScope()

	labels, err := p.tab.EndFunction()
	if err != nil {
		p.fail(err)
	}
	p.tab.LeaveScope()

	return cabs.FunDef{
		Name:    name,
		Type:    ft,
		Storage: specs.storage,
		Body:    body,
		Labels:  labels,
		Pos:     pos,
	}
}

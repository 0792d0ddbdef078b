package parser

import (
	"github.com/frontc/frontc/pkg/ctypes"
	"github.com/frontc/frontc/pkg/lexer"
	"github.com/frontc/frontc/pkg/symtab"
)

// typeWrap is a pending type derivation. Declarators read inside-out, so
// each syntactic layer is parsed into a wrap and the wraps compose; the
// base type from the specifiers is plugged in only at the very end.
type typeWrap func(ctypes.Type) ctypes.Type

func identityWrap(t ctypes.Type) ctypes.Type { return t }

// parseDeclarator parses a (possibly abstract) declarator and applies it to
// the specifier base type. The returned name is empty for an abstract
// declarator.
func (p *Parser) parseDeclarator(base ctypes.Type) (string, lexer.Position, ctypes.Type) {
	name, pos, wrap := p.parseDeclaratorParts()
	return name, pos, wrap(base)
}

// parseDeclaratorParts handles the pointer prefix. A `*` layer binds more
// loosely than the suffixes of the direct declarator it precedes, which is
// why the recursion wraps the pointer before handing off.
func (p *Parser) parseDeclaratorParts() (string, lexer.Position, typeWrap) {
	if p.curIs(lexer.TokenStar) {
		p.advance()
		quals := p.parseQualifiers()
		name, pos, inner := p.parseDeclaratorParts()
		return name, pos, func(t ctypes.Type) ctypes.Type {
			return inner(&ctypes.Tpointer{Elem: t, Quals: quals})
		}
	}
	return p.parseDirectDeclaratorParts()
}

// parseDirectDeclaratorParts parses the name (or a parenthesized inner
// declarator, or nothing for abstract declarators) and any array/function
// suffixes. Suffixes bind tighter than pointers: in `int *a[3]`, a is an
// array of pointers; in `int (*p)[3]`, p is a pointer to an array.
func (p *Parser) parseDirectDeclaratorParts() (string, lexer.Position, typeWrap) {
	var name string
	pos := p.cur.Pos
	inner := identityWrap

	switch {
	case p.curIs(lexer.TokenIdent) || p.curIs(lexer.TokenTypeName):
		// A typedef name is accepted here: in a declarator position it is
		// being redeclared, shadowing the typedef.
		name = p.cur.Literal
		p.advance()
	case p.curIs(lexer.TokenLParen):
		p.advance()
		if p.startsInnerDeclarator() {
			name, pos, inner = p.parseDeclaratorParts()
			p.expect(lexer.TokenRParen)
		} else {
			// The paren opened a parameter list of an unnamed function
			// declarator, as in the type name `int (void)`.
			fn := p.parseParamListBody()
			inner = func(t ctypes.Type) ctypes.Type {
				fnCopy := *fn
				fnCopy.Return = t
				return &fnCopy
			}
		}
	}

	suffix := p.parseDeclaratorSuffix()
	return name, pos, func(t ctypes.Type) ctypes.Type {
		return inner(suffix(t))
	}
}

// startsInnerDeclarator decides, on the token after '(', between a grouped
// declarator and a parameter list. A type specifier, a qualifier or ')'
// can only begin a parameter list; '*', '(' and a plain identifier can
// only begin a declarator.
func (p *Parser) startsInnerDeclarator() bool {
	switch p.cur.Type {
	case lexer.TokenStar, lexer.TokenLParen, lexer.TokenIdent:
		return true
	}
	return false
}

// parseDeclaratorSuffix parses zero or more array and parameter-list
// suffixes. The first suffix seen is the outermost type derivation.
func (p *Parser) parseDeclaratorSuffix() typeWrap {
	wrap := identityWrap
	for {
		switch {
		case p.accept(lexer.TokenLBracket):
			aw := p.parseArraySuffix()
			outer := wrap
			wrap = func(t ctypes.Type) ctypes.Type { return outer(aw(t)) }
		case p.curIs(lexer.TokenLParen):
			p.advance()
			fn := p.parseParamListBody()
			outer := wrap
			wrap = func(t ctypes.Type) ctypes.Type {
				fnCopy := *fn
				fnCopy.Return = t
				return outer(&fnCopy)
			}
		default:
			return wrap
		}
	}
}

// parseArraySuffix parses the inside of `[...]` after the opening bracket.
// A length expression that folds to a constant gives a fixed array; any
// other expression marks a VLA and is kept unevaluated on the type.
func (p *Parser) parseArraySuffix() typeWrap {
	var quals ctypes.Qual
	isStatic := false
	for {
		switch p.cur.Type {
		case lexer.TokenConst:
			quals |= ctypes.QConst
		case lexer.TokenVolatile:
			quals |= ctypes.QVolatile
		case lexer.TokenRestrict:
			quals |= ctypes.QRestrict
		case lexer.TokenStatic:
			isStatic = true
		default:
			goto done
		}
		p.advance()
	}
done:
	arr := &ctypes.Tarray{Quals: quals, Static: isStatic}
	switch {
	case p.curIs(lexer.TokenRBracket):
		arr.Kind = ctypes.ArrayIncomplete
	case p.curIs(lexer.TokenStar):
		// `[*]` (VLA of unspecified length, prototypes only) unless the
		// star begins a dereference expression.
		star := p.cur
		p.advance()
		if p.curIs(lexer.TokenRBracket) {
			arr.Kind = ctypes.ArrayVLA
			break
		}
		p.pushback(star)
		fallthrough
	default:
		e := p.parseAssignmentExpr()
		if v, ok := foldConst(e); ok {
			arr.Kind = ctypes.ArrayFixed
			arr.Len = v
		} else {
			arr.Kind = ctypes.ArrayVLA
			arr.LenExpr = e
		}
	}
	p.expect(lexer.TokenRBracket)
	return func(t ctypes.Type) ctypes.Type {
		a := *arr
		a.Elem = t
		return &a
	}
}

// parseParamListBody parses a parameter list after its '(' has been
// consumed, through the closing ')'. Parameters live in a prototype scope
// so a later parameter's VLA length can refer to an earlier parameter; the
// scope is discarded here and rebuilt by function definitions.
func (p *Parser) parseParamListBody() *ctypes.Tfunction {
	fn := &ctypes.Tfunction{}
	if p.accept(lexer.TokenRParen) {
		// `()` leaves the parameters unspecified, unlike `(void)`.
		fn.Unspecified = true
		return fn
	}

	if p.curIs(lexer.TokenVoid) {
		void := p.cur
		p.advance()
		if p.curIs(lexer.TokenRParen) {
			p.advance()
			return fn
		}
		p.pushback(void)
	}

	p.tab.EnterScope()
	for {
		if p.accept(lexer.TokenEllipsis) {
			fn.Variadic = true
			break
		}
		specs := p.parseDeclSpecs()
		name, pos, typ := p.parseDeclarator(specs.base)
		fn.Params = append(fn.Params, ctypes.Param{Name: name, Type: typ})
		if name != "" {
			if _, err := p.tab.DeclareOrdinary(&symtab.Symbol{
				Name: name,
				Kind: symtab.SymVar,
				Type: typ,
				Pos:  pos,
			}); err != nil {
				p.fail(err)
			}
		}
		if !p.accept(lexer.TokenComma) {
			break
		}
	}
	p.tab.LeaveScope()
	p.expect(lexer.TokenRParen)
	return fn
}

// parseQualifiers consumes a run of type qualifiers
func (p *Parser) parseQualifiers() ctypes.Qual {
	var quals ctypes.Qual
	for {
		switch p.cur.Type {
		case lexer.TokenConst:
			quals |= ctypes.QConst
		case lexer.TokenVolatile:
			quals |= ctypes.QVolatile
		case lexer.TokenRestrict:
			quals |= ctypes.QRestrict
		default:
			return quals
		}
		p.advance()
	}
}

// parseTypeName parses a type-name: specifiers plus an abstract declarator,
// as used by casts, sizeof and compound literals.
func (p *Parser) parseTypeName() ctypes.Type {
	specs := p.parseDeclSpecs()
	name, _, typ := p.parseDeclarator(specs.base)
	if name != "" {
		p.syntaxErrorf("unexpected name %q in type name", name)
	}
	return typ
}

package parser

import (
	"github.com/frontc/frontc/pkg/cabs"
	"github.com/frontc/frontc/pkg/lexer"
)

// parseInitializer parses the right side of `=` in a declaration: either a
// plain assignment expression or a braced list.
func (p *Parser) parseInitializer() cabs.Expr {
	if p.curIs(lexer.TokenLBrace) {
		return p.parseInitList()
	}
	return p.parseAssignmentExpr()
}

// parseInitList parses a braced initializer list with optional designators.
// Elements without designators continue positionally after the previous
// element; the parser records the shape and leaves layout to consumers.
func (p *Parser) parseInitList() cabs.InitList {
	p.expect(lexer.TokenLBrace)
	var items []cabs.InitItem
	for !p.curIs(lexer.TokenRBrace) {
		items = append(items, p.parseInitItem())
		if !p.accept(lexer.TokenComma) {
			break
		}
	}
	p.expect(lexer.TokenRBrace)
	return cabs.InitList{Items: items}
}

func (p *Parser) parseInitItem() cabs.InitItem {
	var des []cabs.Designator
	for {
		if p.accept(lexer.TokenDot) {
			if !p.curIs(lexer.TokenIdent) && !p.curIs(lexer.TokenTypeName) {
				p.syntaxErrorf("expected field name in designator, got %s", p.describeCur())
			}
			des = append(des, cabs.FieldDesignator{Name: p.cur.Literal})
			p.advance()
			continue
		}
		if p.accept(lexer.TokenLBracket) {
			idx := p.parseConditionalExpr()
			p.expect(lexer.TokenRBracket)
			des = append(des, cabs.IndexDesignator{Index: idx})
			continue
		}
		break
	}
	if len(des) > 0 {
		p.expect(lexer.TokenAssign)
	}
	return cabs.InitItem{Designators: des, Value: p.parseInitializer()}
}

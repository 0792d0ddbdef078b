package parser

import (
	"github.com/frontc/frontc/pkg/cabs"
	"github.com/frontc/frontc/pkg/lexer"
)

func (p *Parser) parseStatement() cabs.Stmt {
	switch p.cur.Type {
	case lexer.TokenLBrace:
		return p.parseBlock()
	case lexer.TokenSemicolon:
		p.advance()
		return cabs.Null{}
	case lexer.TokenReturn:
		p.advance()
		var e cabs.Expr
		if !p.curIs(lexer.TokenSemicolon) {
			e = p.parseExpr()
		}
		p.expect(lexer.TokenSemicolon)
		return cabs.Return{Expr: e}
	case lexer.TokenIf:
		return p.parseIf()
	case lexer.TokenSwitch:
		p.advance()
		p.expect(lexer.TokenLParen)
		cond := p.parseExpr()
		p.expect(lexer.TokenRParen)
		return cabs.Switch{Cond: cond, Body: p.parseStatement()}
	case lexer.TokenCase:
		p.advance()
		// A case expression is a constant expression; it is stored as
		// written, not folded.
		e := p.parseConditionalExpr()
		p.expect(lexer.TokenColon)
		return cabs.Case{Expr: e, Stmt: p.parseStatement()}
	case lexer.TokenDefault:
		p.advance()
		p.expect(lexer.TokenColon)
		return cabs.Default{Stmt: p.parseStatement()}
	case lexer.TokenWhile:
		p.advance()
		p.expect(lexer.TokenLParen)
		cond := p.parseExpr()
		p.expect(lexer.TokenRParen)
		return cabs.While{Cond: cond, Body: p.parseStatement()}
	case lexer.TokenDo:
		p.advance()
		body := p.parseStatement()
		p.expect(lexer.TokenWhile)
		p.expect(lexer.TokenLParen)
		cond := p.parseExpr()
		p.expect(lexer.TokenRParen)
		p.expect(lexer.TokenSemicolon)
		return cabs.DoWhile{Body: body, Cond: cond}
	case lexer.TokenFor:
		return p.parseFor()
	case lexer.TokenBreak:
		p.advance()
		p.expect(lexer.TokenSemicolon)
		return cabs.Break{}
	case lexer.TokenContinue:
		p.advance()
		p.expect(lexer.TokenSemicolon)
		return cabs.Continue{}
	case lexer.TokenGoto:
		return p.parseGoto()
	case lexer.TokenIdent, lexer.TokenTypeName:
		return p.parseIdentStatement()
	}
	if isDeclStart(p.cur.Type) {
		return p.parseDeclStmt()
	}
	e := p.parseExpr()
	p.expect(lexer.TokenSemicolon)
	return cabs.ExprStmt{Expr: e}
}

// parseIdentStatement resolves the statement-level ambiguity of a leading
// identifier: a label if a colon follows, a declaration if the identifier
// is a typedef name, an expression statement otherwise. The identifier is
// handed back before reparsing; the colon check never outruns the lexer by
// more than the one token it already pulled.
func (p *Parser) parseIdentStatement() cabs.Stmt {
	tok := p.cur
	p.advance()
	if p.curIs(lexer.TokenColon) {
		p.advance()
		if err := p.tab.DeclareLabel(tok.Literal, tok.Pos); err != nil {
			p.fail(err)
		}
		return cabs.Labeled{Label: tok.Literal, Stmt: p.parseStatement()}
	}
	p.pushback(tok)
	if tok.Type == lexer.TokenTypeName {
		return p.parseDeclStmt()
	}
	e := p.parseExpr()
	p.expect(lexer.TokenSemicolon)
	return cabs.ExprStmt{Expr: e}
}

func (p *Parser) parseIf() cabs.Stmt {
	p.advance() // if
	p.expect(lexer.TokenLParen)
	cond := p.parseExpr()
	p.expect(lexer.TokenRParen)
	then := p.parseStatement()
	var els cabs.Stmt
	if p.accept(lexer.TokenElse) {
		els = p.parseStatement()
	}
	return cabs.If{Cond: cond, Then: then, Else: els}
}

// parseFor parses a for statement. The whole statement gets its own scope
// so a declaration in the init clause is visible in the condition, the
// post expression and the body, and nowhere outside.
func (p *Parser) parseFor() cabs.Stmt {
	p.advance() // for
	p.expect(lexer.TokenLParen)
	p.tab.EnterScope()

	var init cabs.Stmt
	switch {
	case p.accept(lexer.TokenSemicolon):
	case isDeclStart(p.cur.Type):
		init = p.parseDeclStmt() // consumes the semicolon
	default:
		e := p.parseExpr()
		p.expect(lexer.TokenSemicolon)
		init = cabs.ExprStmt{Expr: e}
	}

	var cond cabs.Expr
	if !p.curIs(lexer.TokenSemicolon) {
		cond = p.parseExpr()
	}
	p.expect(lexer.TokenSemicolon)

	var post cabs.Expr
	if !p.curIs(lexer.TokenRParen) {
		post = p.parseExpr()
	}
	p.expect(lexer.TokenRParen)

	body := p.parseStatement()
	p.tab.LeaveScope()
	return cabs.For{Init: init, Cond: cond, Post: post, Body: body}
}

func (p *Parser) parseGoto() cabs.Stmt {
	p.advance() // goto
	if !p.curIs(lexer.TokenIdent) && !p.curIs(lexer.TokenTypeName) {
		p.syntaxErrorf("expected label after goto, got %s", p.describeCur())
	}
	name := p.cur.Literal
	p.tab.UseLabel(name, p.cur.Pos)
	p.advance()
	p.expect(lexer.TokenSemicolon)
	return cabs.Goto{Label: name}
}

// parseBlock parses a compound statement in a fresh scope
func (p *Parser) parseBlock() *cabs.Block {
	p.tab.EnterScope()
	b := p.parseBlockInCurrentScope()
	p.tab.LeaveScope()
	return b
}

// parseBlockInCurrentScope parses `{ items }` without pushing a scope.
// Function bodies use it directly: their parameters already live in the
// scope the body items share.
func (p *Parser) parseBlockInCurrentScope() *cabs.Block {
	p.expect(lexer.TokenLBrace)
	b := &cabs.Block{}
	for !p.curIs(lexer.TokenRBrace) {
		if p.curIs(lexer.TokenEOF) {
			p.syntaxErrorf("unexpected end of input in block")
		}
		b.Items = append(b.Items, p.parseStatement())
	}
	p.expect(lexer.TokenRBrace)
	return b
}

func (p *Parser) parseDeclStmt() cabs.Stmt {
	decls, _ := p.parseDeclarationLine(false)
	return cabs.DeclStmt{Decls: decls}
}

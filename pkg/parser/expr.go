package parser

import (
	"strconv"
	"strings"

	"github.com/frontc/frontc/pkg/cabs"
	"github.com/frontc/frontc/pkg/lexer"
)

// binaryOps maps operator tokens to precedence levels for the climbing
// loop. Assignment, conditional and comma are handled structurally and do
// not appear here.
var binaryOps = map[lexer.TokenType]struct {
	prec int
	op   cabs.BinaryOp
}{
	lexer.TokenOr:        {1, cabs.OpOr},
	lexer.TokenAnd:       {2, cabs.OpAnd},
	lexer.TokenPipe:      {3, cabs.OpBitOr},
	lexer.TokenCaret:     {4, cabs.OpBitXor},
	lexer.TokenAmpersand: {5, cabs.OpBitAnd},
	lexer.TokenEq:        {6, cabs.OpEq},
	lexer.TokenNe:        {6, cabs.OpNe},
	lexer.TokenLt:        {7, cabs.OpLt},
	lexer.TokenLe:        {7, cabs.OpLe},
	lexer.TokenGt:        {7, cabs.OpGt},
	lexer.TokenGe:        {7, cabs.OpGe},
	lexer.TokenShl:       {8, cabs.OpShl},
	lexer.TokenShr:       {8, cabs.OpShr},
	lexer.TokenPlus:      {9, cabs.OpAdd},
	lexer.TokenMinus:     {9, cabs.OpSub},
	lexer.TokenStar:      {10, cabs.OpMul},
	lexer.TokenSlash:     {10, cabs.OpDiv},
	lexer.TokenPercent:   {10, cabs.OpMod},
}

var assignOps = map[lexer.TokenType]cabs.BinaryOp{
	lexer.TokenAssign:        cabs.OpAssign,
	lexer.TokenPlusAssign:    cabs.OpAddAssign,
	lexer.TokenMinusAssign:   cabs.OpSubAssign,
	lexer.TokenStarAssign:    cabs.OpMulAssign,
	lexer.TokenSlashAssign:   cabs.OpDivAssign,
	lexer.TokenPercentAssign: cabs.OpModAssign,
	lexer.TokenAndAssign:     cabs.OpAndAssign,
	lexer.TokenOrAssign:      cabs.OpOrAssign,
	lexer.TokenXorAssign:     cabs.OpXorAssign,
	lexer.TokenShlAssign:     cabs.OpShlAssign,
	lexer.TokenShrAssign:     cabs.OpShrAssign,
}

// parseExpr parses a full expression, including the comma operator
func (p *Parser) parseExpr() cabs.Expr {
	e := p.parseAssignmentExpr()
	for p.accept(lexer.TokenComma) {
		right := p.parseAssignmentExpr()
		e = cabs.Binary{Op: cabs.OpComma, Left: e, Right: right}
	}
	return e
}

// parseAssignmentExpr parses an assignment expression. Assignment is
// right-associative; whether the left operand is assignable is a semantic
// question the parser does not ask.
func (p *Parser) parseAssignmentExpr() cabs.Expr {
	left := p.parseConditionalExpr()
	if op, ok := assignOps[p.cur.Type]; ok {
		p.advance()
		right := p.parseAssignmentExpr()
		return cabs.Binary{Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseConditionalExpr() cabs.Expr {
	cond := p.parseBinaryExpr(1)
	if !p.accept(lexer.TokenQuestion) {
		return cond
	}
	then := p.parseExpr()
	p.expect(lexer.TokenColon)
	els := p.parseConditionalExpr()
	return cabs.Conditional{Cond: cond, Then: then, Else: els}
}

// parseBinaryExpr is the precedence climbing loop. All binary operators in
// the table are left-associative.
func (p *Parser) parseBinaryExpr(minPrec int) cabs.Expr {
	left := p.parseCastExpr()
	for {
		info, ok := binaryOps[p.cur.Type]
		if !ok || info.prec < minPrec {
			return left
		}
		p.advance()
		right := p.parseBinaryExpr(info.prec + 1)
		left = cabs.Binary{Op: info.op, Left: left, Right: right}
	}
}

// parseCastExpr disambiguates `(` between a cast or compound literal and a
// parenthesized expression by looking at the token after it: only a type
// specifier can begin a type name. On the expression path the paren is
// handed back and reparsed as a primary.
func (p *Parser) parseCastExpr() cabs.Expr {
	if p.curIs(lexer.TokenLParen) {
		lparen := p.cur
		p.advance()
		if isTypeStart(p.cur.Type) {
			typ := p.parseTypeName()
			p.expect(lexer.TokenRParen)
			if p.curIs(lexer.TokenLBrace) {
				lit := cabs.CompoundLiteral{
					Type:      typ,
					Init:      p.parseInitList(),
					FileScope: p.tab.AtFileScope(),
				}
				return p.parsePostfixOps(lit)
			}
			return cabs.Cast{Type: typ, Expr: p.parseCastExpr()}
		}
		p.pushback(lparen)
	}
	return p.parseUnaryExpr()
}

func (p *Parser) parseUnaryExpr() cabs.Expr {
	switch p.cur.Type {
	case lexer.TokenMinus:
		p.advance()
		return cabs.Unary{Op: cabs.OpNeg, Expr: p.parseCastExpr()}
	case lexer.TokenPlus:
		p.advance()
		return cabs.Unary{Op: cabs.OpPlus, Expr: p.parseCastExpr()}
	case lexer.TokenNot:
		p.advance()
		return cabs.Unary{Op: cabs.OpNot, Expr: p.parseCastExpr()}
	case lexer.TokenTilde:
		p.advance()
		return cabs.Unary{Op: cabs.OpBitNot, Expr: p.parseCastExpr()}
	case lexer.TokenAmpersand:
		p.advance()
		return cabs.Unary{Op: cabs.OpAddrOf, Expr: p.parseCastExpr()}
	case lexer.TokenStar:
		p.advance()
		return cabs.Unary{Op: cabs.OpDeref, Expr: p.parseCastExpr()}
	case lexer.TokenIncrement:
		p.advance()
		return cabs.Unary{Op: cabs.OpPreInc, Expr: p.parseUnaryExpr()}
	case lexer.TokenDecrement:
		p.advance()
		return cabs.Unary{Op: cabs.OpPreDec, Expr: p.parseUnaryExpr()}
	case lexer.TokenSizeof:
		return p.parseSizeof()
	}
	return p.parsePostfixExpr()
}

// parseSizeof parses both forms: `sizeof unary-expr` and `sizeof(type)`.
// The parenthesized form is a type exactly when a type specifier follows
// the paren, same rule as casts.
func (p *Parser) parseSizeof() cabs.Expr {
	p.advance() // sizeof
	if p.curIs(lexer.TokenLParen) {
		lparen := p.cur
		p.advance()
		if isTypeStart(p.cur.Type) {
			typ := p.parseTypeName()
			p.expect(lexer.TokenRParen)
			if p.curIs(lexer.TokenLBrace) {
				// sizeof of a compound literal.
				lit := cabs.CompoundLiteral{
					Type:      typ,
					Init:      p.parseInitList(),
					FileScope: p.tab.AtFileScope(),
				}
				return cabs.SizeofExpr{Expr: p.parsePostfixOps(lit)}
			}
			return cabs.SizeofType{Type: typ}
		}
		p.pushback(lparen)
	}
	return cabs.SizeofExpr{Expr: p.parseUnaryExpr()}
}

func (p *Parser) parsePostfixExpr() cabs.Expr {
	return p.parsePostfixOps(p.parsePrimaryExpr())
}

func (p *Parser) parsePostfixOps(e cabs.Expr) cabs.Expr {
	for {
		switch p.cur.Type {
		case lexer.TokenLBracket:
			p.advance()
			idx := p.parseExpr()
			p.expect(lexer.TokenRBracket)
			e = cabs.Index{Array: e, Index: idx}
		case lexer.TokenLParen:
			p.advance()
			e = cabs.Call{Func: e, Args: p.parseCallArgs()}
		case lexer.TokenDot:
			p.advance()
			e = cabs.Member{Expr: e, Name: p.parseMemberName()}
		case lexer.TokenArrow:
			p.advance()
			e = cabs.Member{Expr: e, Name: p.parseMemberName(), IsArrow: true}
		case lexer.TokenIncrement:
			p.advance()
			e = cabs.Unary{Op: cabs.OpPostInc, Expr: e}
		case lexer.TokenDecrement:
			p.advance()
			e = cabs.Unary{Op: cabs.OpPostDec, Expr: e}
		default:
			return e
		}
	}
}

func (p *Parser) parseMemberName() string {
	if !p.curIs(lexer.TokenIdent) && !p.curIs(lexer.TokenTypeName) {
		p.syntaxErrorf("expected member name, got %s", p.describeCur())
	}
	name := p.cur.Literal
	p.advance()
	return name
}

func (p *Parser) parseCallArgs() []cabs.Expr {
	var args []cabs.Expr
	if p.accept(lexer.TokenRParen) {
		return args
	}
	for {
		args = append(args, p.parseAssignmentExpr())
		if !p.accept(lexer.TokenComma) {
			break
		}
	}
	p.expect(lexer.TokenRParen)
	return args
}

func (p *Parser) parsePrimaryExpr() cabs.Expr {
	switch p.cur.Type {
	case lexer.TokenInt:
		tok := p.cur
		p.advance()
		return cabs.Constant{Value: p.intValue(tok), Text: tok.Literal}
	case lexer.TokenFloat:
		tok := p.cur
		p.advance()
		return cabs.FloatConstant{Value: floatValue(tok.Literal), Text: tok.Literal}
	case lexer.TokenChar:
		tok := p.cur
		p.advance()
		return cabs.CharLiteral{Value: charValue(tok.Literal), Text: tok.Literal}
	case lexer.TokenString:
		// Adjacent string literals concatenate.
		var b strings.Builder
		for p.curIs(lexer.TokenString) {
			b.WriteString(p.cur.Literal)
			p.advance()
		}
		return cabs.StringLiteral{Value: b.String()}
	case lexer.TokenIdent:
		tok := p.cur
		p.advance()
		// An unresolved name is kept with a nil binding: calling an
		// undeclared function is an implicit declaration in C89 style and
		// still common in practice.
		return cabs.Variable{Name: tok.Literal, Ref: p.tab.LookupOrdinary(tok.Literal)}
	case lexer.TokenLParen:
		p.advance()
		e := p.parseExpr()
		p.expect(lexer.TokenRParen)
		return cabs.Paren{Expr: e}
	}
	p.syntaxErrorf("expected expression, got %s", p.describeCur())
	return nil
}

// intValue evaluates an integer constant token. Base prefixes follow the
// spelling; suffixes only affect the type, which the parser does not track,
// so they are stripped.
func (p *Parser) intValue(tok lexer.Token) int64 {
	s := strings.TrimRight(tok.Literal, "uUlL")
	v, err := strconv.ParseInt(s, 0, 64)
	if err == nil {
		return v
	}
	u, uerr := strconv.ParseUint(s, 0, 64)
	if uerr != nil {
		p.syntaxErrorf("invalid integer constant %q", tok.Literal)
	}
	return int64(u)
}

func floatValue(lit string) float64 {
	s := strings.TrimRight(lit, "fFlL")
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

// charValue evaluates a character constant body (quotes already stripped,
// escapes intact). Multi-character constants take the value of their first
// character.
func charValue(text string) int64 {
	if text == "" {
		return 0
	}
	if text[0] != '\\' {
		return int64(text[0])
	}
	if len(text) < 2 {
		return '\\'
	}
	switch text[1] {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case 'v':
		return '\v'
	case 'f':
		return '\f'
	case 'b':
		return '\b'
	case 'a':
		return '\a'
	case '\\', '\'', '"', '?':
		return int64(text[1])
	case 'x':
		v, _ := strconv.ParseInt(text[2:], 16, 64)
		return v
	default:
		// Octal escape.
		v, _ := strconv.ParseInt(text[1:], 8, 64)
		return v
	}
}

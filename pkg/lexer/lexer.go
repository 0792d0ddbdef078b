// Package lexer tokenizes preprocessed C source code.
//
// The lexer is pulled one token at a time by the parser. Identifier-shaped
// lexemes are classified as keyword, typedef name or plain identifier; the
// typedef classification requires a live query into the parser's symbol
// table (the "lexer hack"), supplied through the TypeNames interface.
package lexer

import (
	"fmt"
	"unicode"
)

// TypeNames is the read-only symbol table query the lexer uses to decide
// whether an identifier is a typedef name in the current scope. The lexer
// only ever reads through this interface, never writes.
type TypeNames interface {
	IsTypeName(name string) bool
}

// LexError is a malformed-token error. It aborts the whole parse.
type LexError struct {
	Msg string
	Pos Position
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%d:%d: lex error: %s", e.Pos.Line, e.Pos.Column, e.Msg)
}

// Lexer tokenizes C source code
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // next reading position
	ch      byte // current character
	line    int
	column  int
	types   TypeNames
}

// New creates a new Lexer for the given input. types may be nil, in which
// case every non-keyword identifier lexes as TokenIdent.
func New(input string, types TypeNames) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0, types: types}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
	l.column++

	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
}

func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) peekChar2() byte {
	if l.readPos+1 >= len(l.input) {
		return 0
	}
	return l.input[l.readPos+1]
}

func (l *Lexer) position() Position {
	return Position{Line: l.line, Column: l.column, Offset: l.pos}
}

func (l *Lexer) errorf(pos Position, format string, args ...any) (Token, error) {
	return Token{Type: TokenIllegal, Pos: pos}, &LexError{Msg: fmt.Sprintf(format, args...), Pos: pos}
}

// NextToken returns the next token from the input. The final token has type
// TokenEOF; pulling past it keeps returning TokenEOF.
func (l *Lexer) NextToken() (Token, error) {
	if err := l.skipWhitespaceAndComments(); err != nil {
		return Token{Type: TokenIllegal}, err
	}

	tok := Token{Pos: l.position()}

	switch l.ch {
	case 0:
		tok.Type = TokenEOF
		tok.Literal = ""
		return tok, nil
	case '+':
		switch l.peekChar() {
		case '+':
			return l.twoCharToken(TokenIncrement, tok), nil
		case '=':
			return l.twoCharToken(TokenPlusAssign, tok), nil
		default:
			tok = l.newToken(TokenPlus, l.ch)
		}
	case '-':
		switch l.peekChar() {
		case '>':
			return l.twoCharToken(TokenArrow, tok), nil
		case '-':
			return l.twoCharToken(TokenDecrement, tok), nil
		case '=':
			return l.twoCharToken(TokenMinusAssign, tok), nil
		default:
			tok = l.newToken(TokenMinus, l.ch)
		}
	case '*':
		if l.peekChar() == '=' {
			return l.twoCharToken(TokenStarAssign, tok), nil
		}
		tok = l.newToken(TokenStar, l.ch)
	case '/':
		if l.peekChar() == '=' {
			return l.twoCharToken(TokenSlashAssign, tok), nil
		}
		tok = l.newToken(TokenSlash, l.ch)
	case '%':
		if l.peekChar() == '=' {
			return l.twoCharToken(TokenPercentAssign, tok), nil
		}
		tok = l.newToken(TokenPercent, l.ch)
	case '=':
		if l.peekChar() == '=' {
			return l.twoCharToken(TokenEq, tok), nil
		}
		tok = l.newToken(TokenAssign, l.ch)
	case '!':
		if l.peekChar() == '=' {
			return l.twoCharToken(TokenNe, tok), nil
		}
		tok = l.newToken(TokenNot, l.ch)
	case '<':
		switch l.peekChar() {
		case '=':
			return l.twoCharToken(TokenLe, tok), nil
		case '<':
			if l.peekChar2() == '=' {
				return l.threeCharToken(TokenShlAssign, tok), nil
			}
			return l.twoCharToken(TokenShl, tok), nil
		default:
			tok = l.newToken(TokenLt, l.ch)
		}
	case '>':
		switch l.peekChar() {
		case '=':
			return l.twoCharToken(TokenGe, tok), nil
		case '>':
			if l.peekChar2() == '=' {
				return l.threeCharToken(TokenShrAssign, tok), nil
			}
			return l.twoCharToken(TokenShr, tok), nil
		default:
			tok = l.newToken(TokenGt, l.ch)
		}
	case '&':
		switch l.peekChar() {
		case '&':
			return l.twoCharToken(TokenAnd, tok), nil
		case '=':
			return l.twoCharToken(TokenAndAssign, tok), nil
		default:
			tok = l.newToken(TokenAmpersand, l.ch)
		}
	case '|':
		switch l.peekChar() {
		case '|':
			return l.twoCharToken(TokenOr, tok), nil
		case '=':
			return l.twoCharToken(TokenOrAssign, tok), nil
		default:
			tok = l.newToken(TokenPipe, l.ch)
		}
	case '^':
		if l.peekChar() == '=' {
			return l.twoCharToken(TokenXorAssign, tok), nil
		}
		tok = l.newToken(TokenCaret, l.ch)
	case '~':
		tok = l.newToken(TokenTilde, l.ch)
	case '?':
		tok = l.newToken(TokenQuestion, l.ch)
	case ':':
		tok = l.newToken(TokenColon, l.ch)
	case '(':
		tok = l.newToken(TokenLParen, l.ch)
	case ')':
		tok = l.newToken(TokenRParen, l.ch)
	case '{':
		tok = l.newToken(TokenLBrace, l.ch)
	case '}':
		tok = l.newToken(TokenRBrace, l.ch)
	case '[':
		tok = l.newToken(TokenLBracket, l.ch)
	case ']':
		tok = l.newToken(TokenRBracket, l.ch)
	case ';':
		tok = l.newToken(TokenSemicolon, l.ch)
	case ',':
		tok = l.newToken(TokenComma, l.ch)
	case '.':
		if l.peekChar() == '.' && l.peekChar2() == '.' {
			return l.threeCharToken(TokenEllipsis, tok), nil
		}
		if isDigit(l.peekChar()) {
			return l.readNumber(tok)
		}
		tok = l.newToken(TokenDot, l.ch)
	case '"':
		return l.readString(tok)
	case '\'':
		return l.readCharLit(tok)
	default:
		if isLetter(l.ch) {
			tok.Literal = l.readIdentifier()
			tok.Type = l.classify(tok.Literal)
			return tok, nil
		} else if isDigit(l.ch) {
			return l.readNumber(tok)
		}
		return l.errorf(tok.Pos, "unexpected character %q", string(rune(l.ch)))
	}

	l.readChar()
	return tok, nil
}

// classify decides between keyword, typedef name and ordinary identifier.
// Typedef classification consults the symbol table synchronously; the grammar
// is ambiguous without it.
func (l *Lexer) classify(ident string) TokenType {
	if t := LookupKeyword(ident); t != TokenIdent {
		return t
	}
	if l.types != nil && l.types.IsTypeName(ident) {
		return TokenTypeName
	}
	return TokenIdent
}

func (l *Lexer) newToken(tokenType TokenType, ch byte) Token {
	return Token{Type: tokenType, Literal: string(ch), Pos: l.position()}
}

func (l *Lexer) twoCharToken(tokenType TokenType, tok Token) Token {
	lit := l.input[l.pos : l.pos+2]
	l.readChar()
	l.readChar()
	return Token{Type: tokenType, Literal: lit, Pos: tok.Pos}
}

func (l *Lexer) threeCharToken(tokenType TokenType, tok Token) Token {
	lit := l.input[l.pos : l.pos+3]
	l.readChar()
	l.readChar()
	l.readChar()
	return Token{Type: tokenType, Literal: lit, Pos: tok.Pos}
}

func (l *Lexer) skipWhitespaceAndComments() error {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
			l.readChar()
		}
		if l.ch != '/' {
			return nil
		}
		if l.peekChar() == '/' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		} else if l.peekChar() == '*' {
			pos := l.position()
			l.readChar() // consume /
			l.readChar() // consume *
			for {
				if l.ch == 0 {
					return &LexError{Msg: "unterminated comment", Pos: pos}
				}
				if l.ch == '*' && l.peekChar() == '/' {
					l.readChar()
					l.readChar()
					break
				}
				l.readChar()
			}
		} else {
			return nil
		}
	}
}

func (l *Lexer) readIdentifier() string {
	pos := l.pos
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[pos:l.pos]
}

// readNumber scans integer and floating constants: decimal, hex and octal
// integers with optional u/l suffixes, and floats with fraction, exponent
// and optional f/l suffix.
func (l *Lexer) readNumber(tok Token) (Token, error) {
	start := l.pos
	isFloat := false

	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		l.readChar()
		l.readChar()
		if !isHexDigit(l.ch) {
			return l.errorf(tok.Pos, "malformed hex constant")
		}
		for isHexDigit(l.ch) {
			l.readChar()
		}
	} else {
		for isDigit(l.ch) {
			l.readChar()
		}
		if l.ch == '.' {
			isFloat = true
			l.readChar()
			for isDigit(l.ch) {
				l.readChar()
			}
		}
		if l.ch == 'e' || l.ch == 'E' {
			next := l.peekChar()
			if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peekChar2())) {
				isFloat = true
				l.readChar() // e
				if l.ch == '+' || l.ch == '-' {
					l.readChar()
				}
				for isDigit(l.ch) {
					l.readChar()
				}
			}
		}
	}

	// Suffixes: uUlL for integers, fFlL for floats.
	for l.ch == 'u' || l.ch == 'U' || l.ch == 'l' || l.ch == 'L' || (isFloat && (l.ch == 'f' || l.ch == 'F')) {
		l.readChar()
	}

	if isLetter(l.ch) {
		return l.errorf(tok.Pos, "malformed numeric constant %q", l.input[start:l.pos+1])
	}

	tok.Literal = l.input[start:l.pos]
	if isFloat {
		tok.Type = TokenFloat
	} else {
		tok.Type = TokenInt
	}
	return tok, nil
}

func (l *Lexer) readString(tok Token) (Token, error) {
	l.readChar() // consume opening quote
	pos := l.pos
	for l.ch != '"' {
		if l.ch == 0 || l.ch == '\n' {
			return l.errorf(tok.Pos, "unterminated string literal")
		}
		if l.ch == '\\' {
			l.readChar()
			if !validEscape(l.ch) {
				return l.errorf(tok.Pos, "invalid escape sequence \\%s", string(rune(l.ch)))
			}
		}
		l.readChar()
	}
	tok.Type = TokenString
	tok.Literal = l.input[pos:l.pos]
	l.readChar() // consume closing quote
	return tok, nil
}

func (l *Lexer) readCharLit(tok Token) (Token, error) {
	l.readChar() // consume opening quote
	pos := l.pos
	if l.ch == '\'' {
		return l.errorf(tok.Pos, "empty character constant")
	}
	for l.ch != '\'' {
		if l.ch == 0 || l.ch == '\n' {
			return l.errorf(tok.Pos, "unterminated character constant")
		}
		if l.ch == '\\' {
			l.readChar()
			if !validEscape(l.ch) {
				return l.errorf(tok.Pos, "invalid escape sequence \\%s", string(rune(l.ch)))
			}
		}
		l.readChar()
	}
	tok.Type = TokenChar
	tok.Literal = l.input[pos:l.pos]
	l.readChar() // consume closing quote
	return tok, nil
}

func validEscape(ch byte) bool {
	switch ch {
	case 'n', 't', 'r', 'v', 'f', 'b', 'a', '0', '\\', '\'', '"', '?', 'x':
		return true
	}
	// Octal escapes beyond \0.
	return ch >= '1' && ch <= '7'
}

func isLetter(ch byte) bool {
	return unicode.IsLetter(rune(ch)) || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}

package lexer

import (
	"strings"
	"testing"
)

// typeNameSet is a canned symbol-table stand-in for classification tests
type typeNameSet map[string]bool

func (s typeNameSet) IsTypeName(name string) bool { return s[name] }

func TestNextToken(t *testing.T) {
	input := `int main(void) { return 42; }`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{TokenInt_, "int"},
		{TokenIdent, "main"},
		{TokenLParen, "("},
		{TokenVoid, "void"},
		{TokenRParen, ")"},
		{TokenLBrace, "{"},
		{TokenReturn, "return"},
		{TokenInt, "42"},
		{TokenSemicolon, ";"},
		{TokenRBrace, "}"},
		{TokenEOF, ""},
	}

	l := New(input, nil)

	for i, tt := range tests {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("tests[%d] - unexpected error: %v", i, err)
		}
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q",
				i, tt.expectedType, tok.Type)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestOperators(t *testing.T) {
	input := `+ - * / % == != < <= > >= && || ! & | ^ ~ << >> <<= >>= += -= *= /= %= &= |= ^= ++ -- -> . ... ? :`

	expected := []TokenType{
		TokenPlus, TokenMinus, TokenStar, TokenSlash, TokenPercent,
		TokenEq, TokenNe, TokenLt, TokenLe, TokenGt, TokenGe,
		TokenAnd, TokenOr, TokenNot, TokenAmpersand, TokenPipe, TokenCaret, TokenTilde,
		TokenShl, TokenShr, TokenShlAssign, TokenShrAssign,
		TokenPlusAssign, TokenMinusAssign, TokenStarAssign, TokenSlashAssign, TokenPercentAssign,
		TokenAndAssign, TokenOrAssign, TokenXorAssign,
		TokenIncrement, TokenDecrement, TokenArrow, TokenDot, TokenEllipsis,
		TokenQuestion, TokenColon,
		TokenEOF,
	}

	l := New(input, nil)
	for i, want := range expected {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("token %d: unexpected error: %v", i, err)
		}
		if tok.Type != want {
			t.Fatalf("token %d: expected %q, got %q (%q)", i, want, tok.Type, tok.Literal)
		}
	}
}

func TestNumericConstants(t *testing.T) {
	tests := []struct {
		input   string
		typ     TokenType
		literal string
	}{
		{"42", TokenInt, "42"},
		{"0x2a", TokenInt, "0x2a"},
		{"052", TokenInt, "052"},
		{"42u", TokenInt, "42u"},
		{"42UL", TokenInt, "42UL"},
		{"123456789012345ll", TokenInt, "123456789012345ll"},
		{"3.14", TokenFloat, "3.14"},
		{".5", TokenFloat, ".5"},
		{"1e0", TokenFloat, "1e0"},
		{"1.5e-3", TokenFloat, "1.5e-3"},
		{"2.0f", TokenFloat, "2.0f"},
		{"1e10L", TokenFloat, "1e10L"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			l := New(tt.input, nil)
			tok, err := l.NextToken()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tok.Type != tt.typ || tok.Literal != tt.literal {
				t.Errorf("got (%s, %q), want (%s, %q)", tok.Type, tok.Literal, tt.typ, tt.literal)
			}
		})
	}
}

func TestCharAndStringLiterals(t *testing.T) {
	tests := []struct {
		input   string
		typ     TokenType
		literal string
	}{
		{`'a'`, TokenChar, "a"},
		{`'\n'`, TokenChar, `\n`},
		{`'\032'`, TokenChar, `\032`},
		{`'\''`, TokenChar, `\'`},
		{`"hello"`, TokenString, "hello"},
		{`"a\tb\n"`, TokenString, `a\tb\n`},
		{`""`, TokenString, ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			l := New(tt.input, nil)
			tok, err := l.NextToken()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tok.Type != tt.typ || tok.Literal != tt.literal {
				t.Errorf("got (%s, %q), want (%s, %q)", tok.Type, tok.Literal, tt.typ, tt.literal)
			}
		})
	}
}

func TestTypedefClassification(t *testing.T) {
	// The same spelling lexes differently depending on what the symbol
	// table answers at the moment the token is pulled.
	l := New("size_t foo size_t", typeNameSet{"size_t": true})

	tok, _ := l.NextToken()
	if tok.Type != TokenTypeName {
		t.Errorf("size_t: expected TYPENAME, got %s", tok.Type)
	}
	tok, _ = l.NextToken()
	if tok.Type != TokenIdent {
		t.Errorf("foo: expected IDENT, got %s", tok.Type)
	}
	tok, _ = l.NextToken()
	if tok.Type != TokenTypeName {
		t.Errorf("second size_t: expected TYPENAME, got %s", tok.Type)
	}
}

func TestKeywordsNotClassifiedAsTypeNames(t *testing.T) {
	// A keyword always wins even if something strange sits in the table.
	l := New("int", typeNameSet{"int": true})
	tok, _ := l.NextToken()
	if tok.Type != TokenInt_ {
		t.Errorf("expected int keyword, got %s", tok.Type)
	}
}

func TestComments(t *testing.T) {
	input := "a // line comment\n /* block\n comment */ b"
	l := New(input, nil)
	tok, _ := l.NextToken()
	if tok.Type != TokenIdent || tok.Literal != "a" {
		t.Fatalf("expected a, got %q", tok.Literal)
	}
	tok, _ = l.NextToken()
	if tok.Type != TokenIdent || tok.Literal != "b" {
		t.Fatalf("expected b, got %q", tok.Literal)
	}
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"unterminated comment", "/* never closed", "unterminated comment"},
		{"unterminated string", `"abc`, "unterminated string"},
		{"empty char", "''", "empty character constant"},
		{"bad hex", "0x", "malformed hex"},
		{"bad suffix", "123abc", "malformed numeric"},
		{"bad escape", `"\q"`, "invalid escape"},
		{"stray char", "@", "unexpected character"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(tt.input, nil)
			var err error
			for i := 0; i < 4 && err == nil; i++ {
				var tok Token
				tok, err = l.NextToken()
				if err == nil && tok.Type == TokenEOF {
					break
				}
			}
			if err == nil {
				t.Fatalf("expected an error for %q", tt.input)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestPositions(t *testing.T) {
	l := New("int\n  x;", nil)
	tok, _ := l.NextToken()
	if tok.Pos.Line != 1 || tok.Pos.Column != 1 {
		t.Errorf("int at %d:%d, want 1:1", tok.Pos.Line, tok.Pos.Column)
	}
	tok, _ = l.NextToken()
	if tok.Pos.Line != 2 || tok.Pos.Column != 3 {
		t.Errorf("x at %d:%d, want 2:3", tok.Pos.Line, tok.Pos.Column)
	}
}

func TestEOFIsSticky(t *testing.T) {
	l := New("", nil)
	for i := 0; i < 3; i++ {
		tok, err := l.NextToken()
		if err != nil || tok.Type != TokenEOF {
			t.Fatalf("pull %d: got (%s, %v), want EOF", i, tok.Type, err)
		}
	}
}

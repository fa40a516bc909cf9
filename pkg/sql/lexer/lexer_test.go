// pkg/sql/lexer/lexer_test.go
package lexer

import "testing"

func lexAll(t *testing.T, input string) []Token {
	t.Helper()
	l := New(input)
	var toks []Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("NextToken: %v", err)
		}
		toks = append(toks, tok)
		if tok.Type == EOF {
			break
		}
	}
	return toks
}

func TestKeywordsCaseInsensitive(t *testing.T) {
	toks := lexAll(t, "select From WhErE")
	want := []TokenType{SELECT, FROM, WHERE, EOF}
	for i, w := range want {
		if toks[i].Type != w {
			t.Errorf("token %d: got %v, want %v", i, toks[i].Type, w)
		}
	}
}

func TestIdentifierPreservesCase(t *testing.T) {
	toks := lexAll(t, "MyTable")
	if toks[0].Type != IDENT || toks[0].Literal != "MyTable" {
		t.Errorf("expected IDENT MyTable, got %v %q", toks[0].Type, toks[0].Literal)
	}
}

func TestPunctuationAndOperators(t *testing.T) {
	toks := lexAll(t, "(),;= < > <= >= != <> + - * / %")
	want := []TokenType{LPAREN, RPAREN, COMMA, SEMICOLON, EQ, LT, GT, LTE, GTE, NEQ, NEQ, PLUS, MINUS, STAR, SLASH, PERCENT, EOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(want))
	}
	for i, w := range want {
		if toks[i].Type != w {
			t.Errorf("token %d: got %v, want %v", i, toks[i].Type, w)
		}
	}
}

func TestSingleAndDoubleQuotedStrings(t *testing.T) {
	toks := lexAll(t, `'it''s' "quote""d"`)
	if toks[0].Type != STRING || toks[0].Literal != "it's" {
		t.Errorf("expected STRING it's, got %v %q", toks[0].Type, toks[0].Literal)
	}
	if toks[1].Type != STRING || toks[1].Literal != `quote"d` {
		t.Errorf("expected STRING quote\"d, got %v %q", toks[1].Type, toks[1].Literal)
	}
}

func TestLineComment(t *testing.T) {
	toks := lexAll(t, "SELECT -- comment here\nFROM")
	want := []TokenType{SELECT, FROM, EOF}
	for i, w := range want {
		if toks[i].Type != w {
			t.Errorf("token %d: got %v, want %v", i, toks[i].Type, w)
		}
	}
}

func TestUnterminatedStringIsLexError(t *testing.T) {
	l := New("'oops")
	_, err := l.NextToken()
	if err == nil {
		t.Fatal("expected lex error for unterminated string")
	}
}

func TestUnknownCharacterIsLexError(t *testing.T) {
	l := New("SELECT @")
	if _, err := l.NextToken(); err != nil {
		t.Fatalf("unexpected error on SELECT: %v", err)
	}
	_, err := l.NextToken()
	if err == nil {
		t.Fatal("expected lex error for '@'")
	}
}

func TestIntegerLiteral(t *testing.T) {
	toks := lexAll(t, "42")
	if toks[0].Type != INT || toks[0].Literal != "42" {
		t.Errorf("expected INT 42, got %v %q", toks[0].Type, toks[0].Literal)
	}
}

// pkg/sql/lexer/lexer.go
package lexer

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"tur/pkg/dberrors"
)

// foldKeyword upper-cases a candidate keyword for case-insensitive
// matching. Unlike strings.ToUpper this is Unicode-locale-aware; source
// SQL here is ASCII in practice, but nothing downstream assumes that.
var foldKeyword = cases.Upper(language.Und).String

// Lexer tokenizes SQL input, one byte at a time (statements are ASCII or
// UTF-8 identifiers/text; only keyword folding needs to be Unicode-aware).
type Lexer struct {
	input   string
	pos     int
	readPos int
	ch      byte
}

// New creates a Lexer over the given input.
func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
}

func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

// NextToken returns the next token from the input, or a tagged Lex error
// for an unknown character or unterminated string (spec.md §4.1).
func (l *Lexer) NextToken() (Token, error) {
	l.skipWhitespaceAndComments()

	startPos := l.pos

	switch l.ch {
	case '+':
		return l.single(PLUS, "+"), nil
	case '-':
		return l.single(MINUS, "-"), nil
	case '*':
		return l.single(STAR, "*"), nil
	case '/':
		return l.single(SLASH, "/"), nil
	case '%':
		return l.single(PERCENT, "%"), nil
	case '=':
		return l.single(EQ, "="), nil
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			tok := Token{Type: LTE, Literal: "<=", Pos: startPos}
			l.readChar()
			return tok, nil
		}
		if l.peekChar() == '>' {
			l.readChar()
			tok := Token{Type: NEQ, Literal: "<>", Pos: startPos}
			l.readChar()
			return tok, nil
		}
		return l.single(LT, "<"), nil
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok := Token{Type: GTE, Literal: ">=", Pos: startPos}
			l.readChar()
			return tok, nil
		}
		return l.single(GT, ">"), nil
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok := Token{Type: NEQ, Literal: "!=", Pos: startPos}
			l.readChar()
			return tok, nil
		}
		return Token{}, dberrors.New(dberrors.Lex, "unknown character %q at offset %d", "!", startPos)
	case ',':
		return l.single(COMMA, ","), nil
	case ';':
		return l.single(SEMICOLON, ";"), nil
	case '(':
		return l.single(LPAREN, "("), nil
	case ')':
		return l.single(RPAREN, ")"), nil
	case '\'', '"':
		return l.readStringToken(startPos)
	case 0:
		return Token{Type: EOF, Pos: startPos}, nil
	default:
		if isLetter(l.ch) || l.ch == '_' {
			lit := l.readIdentifier()
			return Token{Type: LookupIdent(foldKeyword(lit)), Literal: lit, Pos: startPos}, nil
		}
		if isDigit(l.ch) {
			lit := l.readNumber()
			return Token{Type: INT, Literal: lit, Pos: startPos}, nil
		}
		ch := string(l.ch)
		l.readChar()
		return Token{}, dberrors.New(dberrors.Lex, "unknown character %q at offset %d", ch, startPos)
	}
}

func (l *Lexer) single(typ TokenType, lit string) Token {
	tok := Token{Type: typ, Literal: lit, Pos: l.pos}
	l.readChar()
	return tok
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
			l.readChar()
		}
		if l.ch == '-' && l.peekChar() == '-' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}
		break
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	return l.input[start:l.pos]
}

func (l *Lexer) readNumber() string {
	start := l.pos
	for isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readStringToken reads a single- or double-quoted string literal. A
// doubled quote character escapes itself; reaching EOF before the
// closing quote is a Lex error with the opening quote's offset.
func (l *Lexer) readStringToken(startPos int) (Token, error) {
	quote := l.ch
	var sb strings.Builder
	l.readChar() // consume opening quote

	for {
		if l.ch == 0 {
			return Token{}, dberrors.New(dberrors.Lex, "unterminated string literal starting at offset %d", startPos)
		}
		if l.ch == quote {
			if l.peekChar() == quote {
				sb.WriteByte(quote)
				l.readChar()
				l.readChar()
				continue
			}
			l.readChar() // consume closing quote
			break
		}
		sb.WriteByte(l.ch)
		l.readChar()
	}

	return Token{Type: STRING, Literal: sb.String(), Pos: startPos}, nil
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

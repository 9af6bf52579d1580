package dsl

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

type tokenType int

const (
	tokEOF tokenType = iota
	tokIdent
	tokNumber
	tokString
	tokLBrace
	tokRBrace
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokComma
	tokEquals
)

func (t tokenType) String() string {
	switch t {
	case tokEOF:
		return "end of input"
	case tokIdent:
		return "identifier"
	case tokNumber:
		return "number"
	case tokString:
		return "string"
	case tokLBrace:
		return `"{"`
	case tokRBrace:
		return `"}"`
	case tokLParen:
		return `"("`
	case tokRParen:
		return `")"`
	case tokLBracket:
		return `"["`
	case tokRBracket:
		return `"]"`
	case tokComma:
		return `","`
	case tokEquals:
		return `"="`
	default:
		return "unknown token"
	}
}

type token struct {
	typ  tokenType
	text string
	num  float64
	line int
	col  int
}

// describe renders a token for expected-vs-found error messages.
func (t token) describe() string {
	switch t.typ {
	case tokEOF:
		return "end of input"
	case tokIdent, tokNumber:
		return fmt.Sprintf("%q", t.text)
	case tokString:
		return fmt.Sprintf("string %q", t.text)
	default:
		return fmt.Sprintf("%q", t.text)
	}
}

// lexer is a hand-rolled scanner with 1-based line/column tracking.
// "//" starts a comment running to end of line.
type lexer struct {
	src  string
	pos  int
	line int
	col  int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1, col: 1}
}

func (l *lexer) peekByte() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) advance() byte {
	c := l.src[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return c
}

func (l *lexer) skipSpaceAndComments() {
	for l.pos < len(l.src) {
		c := l.peekByte()
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.advance()
		case c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/':
			for l.pos < len(l.src) && l.peekByte() != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

// next scans one token. The only scan-level failures are an unterminated
// string, a malformed number, and a stray character.
func (l *lexer) next() (token, *CompileError) {
	l.skipSpaceAndComments()

	line, col := l.line, l.col
	if l.pos >= len(l.src) {
		return token{typ: tokEOF, line: line, col: col}, nil
	}

	c := l.peekByte()
	switch c {
	case '{':
		l.advance()
		return token{typ: tokLBrace, text: "{", line: line, col: col}, nil
	case '}':
		l.advance()
		return token{typ: tokRBrace, text: "}", line: line, col: col}, nil
	case '(':
		l.advance()
		return token{typ: tokLParen, text: "(", line: line, col: col}, nil
	case ')':
		l.advance()
		return token{typ: tokRParen, text: ")", line: line, col: col}, nil
	case '[':
		l.advance()
		return token{typ: tokLBracket, text: "[", line: line, col: col}, nil
	case ']':
		l.advance()
		return token{typ: tokRBracket, text: "]", line: line, col: col}, nil
	case ',':
		l.advance()
		return token{typ: tokComma, text: ",", line: line, col: col}, nil
	case '=':
		l.advance()
		return token{typ: tokEquals, text: "=", line: line, col: col}, nil
	case '"':
		return l.scanString(line, col)
	}

	if isDigit(c) || ((c == '-' || c == '+') && l.pos+1 < len(l.src) && isNumberStart(l.src[l.pos+1])) {
		return l.scanNumber(line, col)
	}
	if isIdentStart(rune(c)) {
		return l.scanIdent(line, col), nil
	}

	return token{}, &CompileError{
		Line:     line,
		Col:      col,
		Expected: "a declaration, value, or punctuation",
		Found:    fmt.Sprintf("%q", string(c)),
	}
}

func (l *lexer) scanString(line, col int) (token, *CompileError) {
	l.advance() // opening quote
	var b strings.Builder
	for l.pos < len(l.src) {
		c := l.advance()
		if c == '"' {
			return token{typ: tokString, text: b.String(), line: line, col: col}, nil
		}
		if c == '\n' {
			break
		}
		b.WriteByte(c)
	}
	return token{}, &CompileError{Line: line, Col: col, Expected: "closing quote", Found: "end of line"}
}

func (l *lexer) scanNumber(line, col int) (token, *CompileError) {
	start := l.pos
	if c := l.peekByte(); c == '-' || c == '+' {
		l.advance()
	}
	for l.pos < len(l.src) {
		c := l.peekByte()
		if isDigit(c) || c == '.' || c == 'e' || c == 'E' {
			l.advance()
			continue
		}
		if (c == '-' || c == '+') && (l.src[l.pos-1] == 'e' || l.src[l.pos-1] == 'E') {
			l.advance()
			continue
		}
		break
	}
	text := l.src[start:l.pos]
	num, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return token{}, &CompileError{Line: line, Col: col, Expected: "number", Found: fmt.Sprintf("%q", text)}
	}
	return token{typ: tokNumber, text: text, num: num, line: line, col: col}, nil
}

func (l *lexer) scanIdent(line, col int) token {
	start := l.pos
	for l.pos < len(l.src) && isIdentPart(rune(l.peekByte())) {
		l.advance()
	}
	return token{typ: tokIdent, text: l.src[start:l.pos], line: line, col: col}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isNumberStart(c byte) bool { return isDigit(c) || c == '.' }

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

package udmf

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// LexError reports text that is not a valid token.
type LexError struct {
	Pos Pos
	Msg string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("udmf: %s: %s", e.Pos, e.Msg)
}

// Lexer turns UDMF source into tokens in a single forward pass.
type Lexer struct {
	src  []byte
	off  int
	line int
	col  int
}

// NewLexer returns a lexer over src.
func NewLexer(src []byte) *Lexer {
	return &Lexer{src: src, line: 1, col: 1}
}

// Lex reads all of r and returns its tokens, ending with a TokenEOF.
func Lex(r io.Reader) ([]Token, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading udmf source")
	}
	return NewLexer(src).All()
}

// All returns the remaining tokens, ending with a TokenEOF.
func (l *Lexer) All() ([]Token, error) {
	var tokens []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == TokenEOF {
			return tokens, nil
		}
	}
}

// Next returns the next token. After the end of input it keeps returning
// TokenEOF.
func (l *Lexer) Next() (Token, error) {
	if err := l.skipSpaceAndComments(); err != nil {
		return Token{}, err
	}
	pos := l.pos()
	if l.off >= len(l.src) {
		return Token{Kind: TokenEOF, Pos: pos}, nil
	}

	c := l.src[l.off]
	switch {
	case c == '{':
		return l.symbol(TokenLBrace, pos), nil
	case c == '}':
		return l.symbol(TokenRBrace, pos), nil
	case c == '=':
		return l.symbol(TokenEquals, pos), nil
	case c == ';':
		return l.symbol(TokenSemicolon, pos), nil
	case c == '"':
		return l.lexString(pos)
	case isIdentStart(c):
		return l.lexIdentifier(pos), nil
	case isDigit(c) || c == '.' || c == '+' || c == '-':
		return l.lexNumber(pos)
	}
	return Token{}, &LexError{Pos: pos, Msg: fmt.Sprintf("unexpected character %q", c)}
}

func (l *Lexer) pos() Pos {
	return Pos{Line: l.line, Column: l.col}
}

func (l *Lexer) peek(ahead int) byte {
	if l.off+ahead >= len(l.src) {
		return 0
	}
	return l.src[l.off+ahead]
}

func (l *Lexer) advance() {
	if l.src[l.off] == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	l.off++
}

func (l *Lexer) symbol(kind TokenKind, pos Pos) Token {
	text := string(l.src[l.off])
	l.advance()
	return Token{Kind: kind, Text: text, Value: text, Pos: pos}
}

func (l *Lexer) skipSpaceAndComments() error {
	for l.off < len(l.src) {
		c := l.src[l.off]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == '\v':
			l.advance()
		case c == '/' && l.peek(1) == '/':
			for l.off < len(l.src) && l.src[l.off] != '\n' {
				l.advance()
			}
		case c == '/' && l.peek(1) == '*':
			start := l.pos()
			l.advance()
			l.advance()
			for {
				if l.off >= len(l.src) {
					return &LexError{Pos: start, Msg: "unterminated block comment"}
				}
				if l.src[l.off] == '*' && l.peek(1) == '/' {
					l.advance()
					l.advance()
					break
				}
				l.advance()
			}
		default:
			return nil
		}
	}
	return nil
}

func (l *Lexer) lexIdentifier(pos Pos) Token {
	start := l.off
	for l.off < len(l.src) && isIdentPart(l.src[l.off]) {
		l.advance()
	}
	text := string(l.src[start:l.off])
	kind := TokenIdentifier
	if strings.EqualFold(text, "true") || strings.EqualFold(text, "false") {
		kind = TokenBool
	}
	return Token{Kind: kind, Text: text, Value: text, Pos: pos}
}

func (l *Lexer) lexString(pos Pos) (Token, error) {
	start := l.off
	l.advance() // opening quote
	var value strings.Builder
	for {
		if l.off >= len(l.src) {
			return Token{}, &LexError{Pos: pos, Msg: "unterminated string"}
		}
		c := l.src[l.off]
		switch c {
		case '"':
			l.advance()
			text := string(l.src[start:l.off])
			return Token{Kind: TokenString, Text: text, Value: value.String(), Pos: pos}, nil
		case '\\':
			l.advance()
			if l.off >= len(l.src) {
				return Token{}, &LexError{Pos: pos, Msg: "unterminated string"}
			}
			value.WriteByte(l.src[l.off])
			l.advance()
		default:
			value.WriteByte(c)
			l.advance()
		}
	}
}

func (l *Lexer) lexNumber(pos Pos) (Token, error) {
	start := l.off
	if c := l.src[l.off]; c == '+' || c == '-' {
		l.advance()
	}

	// Hexadecimal integer
	if l.peek(0) == '0' && (l.peek(1) == 'x' || l.peek(1) == 'X') {
		l.advance()
		l.advance()
		digits := l.skipWhile(isHexDigit)
		if digits == 0 {
			return Token{}, &LexError{Pos: pos, Msg: "hexadecimal number without digits"}
		}
		return l.finishNumber(TokenInteger, start, pos)
	}

	kind := TokenInteger
	digits := l.skipWhile(isDigit)
	if l.peek(0) == '.' {
		kind = TokenFloat
		l.advance()
		digits += l.skipWhile(isDigit)
	}
	if digits == 0 {
		return Token{}, &LexError{Pos: pos, Msg: fmt.Sprintf("malformed number %q", l.src[start:l.off])}
	}
	if c := l.peek(0); c == 'e' || c == 'E' {
		kind = TokenFloat
		l.advance()
		if c := l.peek(0); c == '+' || c == '-' {
			l.advance()
		}
		if l.skipWhile(isDigit) == 0 {
			return Token{}, &LexError{Pos: pos, Msg: fmt.Sprintf("malformed exponent in %q", l.src[start:l.off])}
		}
	}
	return l.finishNumber(kind, start, pos)
}

// finishNumber rejects a number that runs straight into an identifier, like 12ab.
func (l *Lexer) finishNumber(kind TokenKind, start int, pos Pos) (Token, error) {
	if l.off < len(l.src) && (isIdentPart(l.src[l.off]) || l.src[l.off] == '.') {
		return Token{}, &LexError{Pos: l.pos(), Msg: fmt.Sprintf("unexpected character %q after number", l.src[l.off])}
	}
	text := string(l.src[start:l.off])
	return Token{Kind: kind, Text: text, Value: text, Pos: pos}, nil
}

func (l *Lexer) skipWhile(pred func(byte) bool) int {
	n := 0
	for l.off < len(l.src) && pred(l.src[l.off]) {
		l.advance()
		n++
	}
	return n
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

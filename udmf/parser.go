package udmf

import (
	"fmt"
	"io"
)

// Expr is a top-level UDMF expression: an *Assignment or a *Block.
type Expr interface {
	Position() Pos
}

// Assignment is identifier = value;
type Assignment struct {
	Name  string
	Value Token
	Pos   Pos
}

func (a *Assignment) Position() Pos { return a.Pos }

// Block is identifier { assignment* }
type Block struct {
	Name        string
	Assignments []*Assignment
	Pos         Pos
}

func (b *Block) Position() Pos { return b.Pos }

// SyntaxError reports a token that does not fit the grammar.
type SyntaxError struct {
	Pos      Pos
	Expected string
	Got      Token
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("udmf: %s: expected %s, got %s", e.Pos, e.Expected, e.Got)
}

type parser struct {
	tokens []Token
	pos    int
}

// Parse builds the expression list from a token sequence. A missing trailing
// TokenEOF is tolerated.
func Parse(tokens []Token) ([]Expr, error) {
	p := &parser{tokens: tokens}
	var exprs []Expr
	for p.peek().Kind != TokenEOF {
		name, err := p.expect(TokenIdentifier, "identifier")
		if err != nil {
			return nil, err
		}
		switch next := p.next(); next.Kind {
		case TokenEquals:
			a, err := p.assignmentValue(name)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, a)
		case TokenLBrace:
			b, err := p.blockBody(name)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, b)
		default:
			return nil, &SyntaxError{Pos: next.Pos, Expected: "'=' or '{'", Got: next}
		}
	}
	return exprs, nil
}

// ParseReader lexes and parses r.
func ParseReader(r io.Reader) ([]Expr, error) {
	tokens, err := Lex(r)
	if err != nil {
		return nil, err
	}
	return Parse(tokens)
}

func (p *parser) peek() Token {
	if p.pos >= len(p.tokens) {
		var pos Pos
		if n := len(p.tokens); n > 0 {
			pos = p.tokens[n-1].Pos
		}
		return Token{Kind: TokenEOF, Pos: pos}
	}
	return p.tokens[p.pos]
}

func (p *parser) next() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *parser) expect(kind TokenKind, what string) (Token, error) {
	tok := p.next()
	if tok.Kind != kind {
		return tok, &SyntaxError{Pos: tok.Pos, Expected: what, Got: tok}
	}
	return tok, nil
}

// assignmentValue parses the part of an assignment after '='.
func (p *parser) assignmentValue(name Token) (*Assignment, error) {
	value := p.next()
	if !value.Kind.IsValue() {
		return nil, &SyntaxError{Pos: value.Pos, Expected: "value", Got: value}
	}
	if _, err := p.expect(TokenSemicolon, "';'"); err != nil {
		return nil, err
	}
	return &Assignment{Name: name.Text, Value: value, Pos: name.Pos}, nil
}

// blockBody parses the assignments of a block after '{' up to '}'.
func (p *parser) blockBody(name Token) (*Block, error) {
	b := &Block{Name: name.Text, Pos: name.Pos}
	for {
		tok := p.next()
		switch tok.Kind {
		case TokenRBrace:
			return b, nil
		case TokenIdentifier:
			if _, err := p.expect(TokenEquals, "'='"); err != nil {
				return nil, err
			}
			a, err := p.assignmentValue(tok)
			if err != nil {
				return nil, err
			}
			b.Assignments = append(b.Assignments, a)
		default:
			return nil, &SyntaxError{Pos: tok.Pos, Expected: "identifier or '}'", Got: tok}
		}
	}
}

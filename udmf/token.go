package udmf

import "fmt"

// TokenKind identifies the type of a lexical token.
type TokenKind int

const (
	TokenEOF        TokenKind = iota
	TokenIdentifier           // [A-Za-z_][A-Za-z0-9_]*
	TokenInteger              // decimal, octal or 0x hex, optional sign
	TokenFloat                // needs a '.' or an exponent
	TokenBool                 // true, false
	TokenString               // "..." with backslash escapes
	TokenLBrace               // {
	TokenRBrace               // }
	TokenEquals               // =
	TokenSemicolon            // ;
)

var tokenNames = map[TokenKind]string{
	TokenEOF:        "EOF",
	TokenIdentifier: "identifier",
	TokenInteger:    "integer",
	TokenFloat:      "float",
	TokenBool:       "boolean",
	TokenString:     "string",
	TokenLBrace:     "'{'",
	TokenRBrace:     "'}'",
	TokenEquals:     "'='",
	TokenSemicolon:  "';'",
}

func (k TokenKind) String() string {
	if name, ok := tokenNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsValue reports whether tokens of this kind can stand on the right of '='.
func (k TokenKind) IsValue() bool {
	switch k {
	case TokenInteger, TokenFloat, TokenBool, TokenString:
		return true
	}
	return false
}

// Pos is a 1-based line and column (in bytes) in the source text.
type Pos struct {
	Line, Column int
}

func (p Pos) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Kind TokenKind
	Text string // exact source text, quotes and escapes included
	// Value is the decoded content of a string token; for every other kind it
	// equals Text.
	Value string
	Pos   Pos
}

func (t Token) String() string {
	if t.Kind == TokenEOF {
		return "EOF"
	}
	return fmt.Sprintf("%s %q", t.Kind, t.Text)
}

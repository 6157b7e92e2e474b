package udmf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	src := `
namespace = "doom";
linedef
{
	v1 = 0;
	blocking = true;
}
empty {}
comment = "done";
`
	exprs, err := ParseReader(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, exprs, 4)

	ns, ok := exprs[0].(*Assignment)
	require.True(t, ok)
	assert.Equal(t, "namespace", ns.Name)
	assert.Equal(t, "doom", ns.Value.Value)
	assert.Equal(t, Pos{Line: 2, Column: 1}, ns.Position())

	line, ok := exprs[1].(*Block)
	require.True(t, ok)
	assert.Equal(t, "linedef", line.Name)
	assert.Equal(t, Pos{Line: 3, Column: 1}, line.Position())
	require.Len(t, line.Assignments, 2)
	assert.Equal(t, "v1", line.Assignments[0].Name)
	assert.Equal(t, TokenInteger, line.Assignments[0].Value.Kind)
	assert.Equal(t, "blocking", line.Assignments[1].Name)
	assert.Equal(t, TokenBool, line.Assignments[1].Value.Kind)

	empty, ok := exprs[2].(*Block)
	require.True(t, ok)
	assert.Empty(t, empty.Assignments)

	assert.IsType(t, &Assignment{}, exprs[3])
}

func TestParse_Empty(t *testing.T) {
	exprs, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, exprs)
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		src      string
		expected string
		got      TokenKind
	}{
		{"missing equals", `namespace "doom";`, "'=' or '{'", TokenString},
		{"missing value", "x = ;", "value", TokenSemicolon},
		{"identifier as value", "x = y;", "value", TokenIdentifier},
		{"missing semicolon", "x = 1", "';'", TokenEOF},
		{"leading value", "= 1;", "identifier", TokenEquals},
		{"unclosed block", "thing { x = 1;", "identifier or '}'", TokenEOF},
		{"nested block", "a { b { } }", "'='", TokenLBrace},
		{"stray brace", "}", "identifier", TokenRBrace},
		{"missing equals in block", "a { b 1; }", "'='", TokenInteger},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseReader(strings.NewReader(tt.src))
			var syntaxErr *SyntaxError
			require.ErrorAs(t, err, &syntaxErr)
			assert.Equal(t, tt.expected, syntaxErr.Expected)
			assert.Equal(t, tt.got, syntaxErr.Got.Kind)
			assert.Contains(t, err.Error(), "expected "+tt.expected)
		})
	}
}

func TestParse_LexErrorPassesThrough(t *testing.T) {
	_, err := ParseReader(strings.NewReader(`x = "open`))
	assert.ErrorAs(t, err, new(*LexError))
}

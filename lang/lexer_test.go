package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(toks []token) []tokenKind {
	out := make([]tokenKind, len(toks))
	for i, t := range toks {
		out[i] = t.kind
	}

	return out
}

func TestLex_Tokens(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []tokenKind
	}{
		{"empty", "", []tokenKind{tokEOF}},
		{"variable", "x = 1;", []tokenKind{tokWord, tokEquals, tokWord, tokSemicolon, tokEOF}},
		{
			"invocation",
			`Op(a = "b", c = d){ X(); };`,
			[]tokenKind{
				tokWord, tokLParen,
				tokWord, tokEquals, tokString, tokComma,
				tokWord, tokEquals, tokWord,
				tokRParen, tokBlock, tokSemicolon, tokEOF,
			},
		},
		{
			"qualifier",
			"let: f(p){};",
			[]tokenKind{
				tokWord, tokColon, tokWord, tokLParen, tokWord, tokRParen,
				tokBlock, tokSemicolon, tokEOF,
			},
		},
		{"colon in payload", "u = http://host;", []tokenKind{tokWord, tokEquals, tokWord, tokSemicolon, tokEOF}},
		{"comment", "# (\nx", []tokenKind{tokWord, tokEOF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fb Feedback

			toks := lex(tt.src, Position{}, &fb)

			assert.Equal(t, tt.want, kinds(toks))
			assert.False(t, fb.HasErrors(), "%v", fb.Messages())
		})
	}
}

func TestLex_Block(t *testing.T) {
	var fb Feedback

	src := "A(){\n  B(x = \"}\"); # }\n  C(){ D(); };\n};"
	toks := lex(src, Position{}, &fb)

	require.False(t, fb.HasErrors(), "%v", fb.Messages())
	require.Equal(t, tokBlock, toks[3].kind)

	blk := toks[3]
	assert.Equal(t, "\n  B(x = \"}\"); # }\n  C(){ D(); };\n", blk.text)
	assert.Equal(t, Position{Offset: 4, Line: 1, Column: 5}, blk.inner)

	// Re-lexing the block keeps absolute positions.
	inner := lex(blk.text, blk.inner, &fb)
	assert.Equal(t, Position{Offset: 7, Line: 2, Column: 3}, inner[0].pos)
}

func TestLex_Positions(t *testing.T) {
	var fb Feedback

	toks := lex("a\r\n  bb = 'c';", Position{}, &fb)

	assert.Equal(t, Position{Offset: 0, Line: 1, Column: 1}, toks[0].pos)
	assert.Equal(t, Position{Offset: 5, Line: 2, Column: 3}, toks[1].pos)
	assert.Equal(t, Position{Offset: 8, Line: 2, Column: 6}, toks[2].pos)
	assert.Equal(t, "c", toks[3].text)
}

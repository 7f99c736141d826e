package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubstitute_Idempotent(t *testing.T) {
	var fb Feedback

	stmts := parse(`a = b; b = c; c = "done"; Op(k = a, a = v, b = "a"){ x = 1; };`,
		Position{}, &fb)
	require.Len(t, stmts, 4)

	x := &expander{fb: &fb}
	frame := &scope{}

	for _, s := range stmts[:3] {
		x.define(frame, s.(*VarDef))
	}

	inv := stmts[3].(*Invocation)

	assert.Positive(t, x.substitute(frame, inv.Pos, inv.fields()...))

	before := append([]Arg(nil), inv.Args...)

	assert.Zero(t, x.substitute(frame, inv.Pos, inv.fields()...))
	assert.Equal(t, before, inv.Args)
	assert.Equal(t, "done", inv.Args[0].Value.Value)
	assert.Equal(t, "done", inv.Args[1].Key.Value)
	assert.Equal(t, "a", inv.Args[2].Value.Value)
	assert.False(t, fb.HasErrors())
}

func TestExpand_Idempotent(t *testing.T) {
	var fb Feedback

	src := `v = 1; let: f(p = v){ Op(k = p); }; f(); Op(k = v){ Op(k = v); };`

	first := (&expander{fb: &fb}).expand(parse(src, Position{}, &fb), nil, 0, 0)
	require.False(t, fb.HasErrors(), "%v", fb.Messages())

	// Expanding the expanded tree, with the same definitions in scope,
	// changes nothing.
	frame := &scope{}
	x := &expander{fb: &fb}

	for _, s := range parse(src, Position{}, &fb) {
		if d, ok := s.(*VarDef); ok {
			x.define(frame, d)
		}
	}

	var walk func([]*Invocation)

	walk = func(invs []*Invocation) {
		for _, inv := range invs {
			assert.Zero(t, x.substitute(frame, inv.Pos, inv.fields()...))
			walk(inv.Children)
		}
	}

	walk(first)

	require.Len(t, first, 2)
	assert.Equal(t, "1", first[0].Args[0].Value.Value)
	assert.Equal(t, "1", first[1].Children[0].Args[0].Value.Value)
}

func TestScope_Visibility(t *testing.T) {
	outer := &scope{vars: []binding{
		{name: "v", value: Text{Value: "outer"}, at: Position{Offset: 5, Line: 1, Column: 6}},
	}}
	inner := &scope{parent: outer, vars: []binding{
		{name: "v", value: Text{Value: "inner"}, at: Position{Offset: 20, Line: 1, Column: 21}},
	}}

	_, ok := inner.variable("v", 5)
	assert.False(t, ok)

	b, ok := inner.variable("v", 10)
	require.True(t, ok)
	assert.Equal(t, "outer", b.value.Value)

	b, ok = inner.variable("v", 21)
	require.True(t, ok)
	assert.Equal(t, "inner", b.value.Value)
}

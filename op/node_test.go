package op

import (
	"encoding/json"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgs_PreservesInsertionOrder(t *testing.T) {
	a := MakeArgs("b", "2", "a", "1")
	a.Set("b", "3")
	a.Set("c", "4")

	assert.Equal(t, []string{"b", "a", "c"}, a.Keys())
	assert.Equal(t, map[string]string{"a": "1", "b": "3", "c": "4"}, a.Map())

	assert.False(t, a.Insert("a", "x"))
	assert.True(t, a.Insert("d", "5"))

	a.Delete("a")
	assert.Equal(t, []string{"b", "c", "d"}, a.Keys())
}

func TestArgs_ZeroValueAndClone(t *testing.T) {
	var a Args

	_, ok := a.Get("x")
	assert.False(t, ok)
	assert.Equal(t, 0, a.Len())

	a.Set("x", "1")
	c := a.Clone()
	c.Set("x", "2")
	c.Set("y", "3")

	v, _ := a.Get("x")
	assert.Equal(t, "1", v)
	assert.Equal(t, 1, a.Len())
}

func TestNode_MarshalJSON_OrderedArgs(t *testing.T) {
	n := NewNode("And", MakeArgs("z", "1", "a", "2"), NewNode("True", Args{}))

	b, err := json.Marshal(n)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"name":"And","args":{"z":"1","a":"2"},"children":[{"name":"True"}]}`,
		string(b),
	)
	assert.Contains(t, string(b), `"z":"1","a":"2"`)
}

func TestNode_MarshalYAML_OrderedArgs(t *testing.T) {
	n := NewNode("Repeat", MakeArgs("N", "3"), NewNode("True", Args{}))

	b, err := yaml.Marshal(n)
	require.NoError(t, err)

	var back map[string]any
	require.NoError(t, yaml.Unmarshal(b, &back))
	assert.Equal(t, "Repeat", back["name"])
	assert.Equal(t, map[string]any{"N": "3"}, back["args"])
}

func TestNode_String(t *testing.T) {
	n := NewNode("IfElse", Args{},
		NewNode("Expr", MakeArgs("Expression", `count > 0`)),
		NewNode("True", Args{}),
	)

	assert.Equal(t,
		`IfElse(){ Expr(Expression = "count > 0"); True(); }`,
		n.String(),
	)
}

func TestQuote(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", `""`},
		{"plain", `"plain"`},
		{"a\tb\nc", "\"a\tb\nc\""},
		{`say "hi"`, `"say \"hi\""`},
		{`C:\dir`, `"C:\\dir"`},
		{"ünï", `"ünï"`},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Quote(tt.in), "Quote(%q)", tt.in)
	}
}

func TestNode_Clone_IsDeep(t *testing.T) {
	n := NewNode("And", MakeArgs("a", "1"), NewNode("True", Args{}))
	c := n.Clone()

	c.Args.Set("a", "2")
	c.Children[0].Name = "False"

	v, _ := n.Args.Get("a")
	assert.Equal(t, "1", v)
	assert.Equal(t, "True", n.Children[0].Name)
}

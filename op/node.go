package op

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
)

// Node is one compiled operation: a canonical name, its bound arguments, and
// the child operations it sequences.
type Node struct {
	Name     string
	Args     Args
	Children []*Node
}

// NewNode returns a node named name with the given children.
func NewNode(name string, args Args, children ...*Node) *Node {
	return &Node{Name: name, Args: args, Children: children}
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}

	out := &Node{Name: n.Name, Args: n.Args.Clone()}

	if n.Children != nil {
		out.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = c.Clone()
		}
	}

	return out
}

// String renders n back into script syntax.
func (n *Node) String() string {
	var sb strings.Builder

	n.write(&sb)

	return sb.String()
}

func (n *Node) write(sb *strings.Builder) {
	sb.WriteString(n.Name)
	sb.WriteByte('(')

	for i, k := range n.Args.Keys() {
		if i > 0 {
			sb.WriteString(", ")
		}

		v, _ := n.Args.Get(k)
		sb.WriteString(k)
		sb.WriteString(" = ")
		sb.WriteString(Quote(v))
	}

	sb.WriteByte(')')

	if len(n.Children) > 0 {
		sb.WriteString("{ ")

		for _, c := range n.Children {
			c.write(sb)
			sb.WriteString("; ")
		}

		sb.WriteByte('}')
	}
}

// Quote returns s as a double-quoted script string. Only backslash and the
// quote character are escaped, so every other byte reads back unchanged.
func Quote(s string) string {
	var sb strings.Builder

	sb.Grow(len(s) + 2)
	sb.WriteByte('"')

	for i := 0; i < len(s); i++ {
		if s[i] == '\\' || s[i] == '"' {
			sb.WriteByte('\\')
		}

		sb.WriteByte(s[i])
	}

	sb.WriteByte('"')

	return sb.String()
}

// MarshalJSON encodes n with its arguments in call-site order.
func (n *Node) MarshalJSON() ([]byte, error) {
	type node struct {
		Name     string  `json:"name"`
		Args     *Args   `json:"args,omitempty"`
		Children []*Node `json:"children,omitempty"`
	}

	out := node{Name: n.Name, Children: n.Children}
	if n.Args.Len() > 0 {
		out.Args = &n.Args
	}

	return json.Marshal(out)
}

// MarshalYAML encodes n with its arguments in call-site order.
func (n *Node) MarshalYAML() (any, error) {
	out := yaml.MapSlice{{Key: "name", Value: n.Name}}

	if n.Args.Len() > 0 {
		out = append(out, yaml.MapItem{Key: "args", Value: n.Args.MapSlice()})
	}

	if len(n.Children) > 0 {
		out = append(out, yaml.MapItem{Key: "children", Value: n.Children})
	}

	return out, nil
}

// Args is an ordered string-to-string argument map. The zero value is an
// empty map ready to use.
type Args struct {
	keys []string
	vals map[string]string
}

// MakeArgs builds Args from alternating keys and values. A trailing key
// without a value is bound to the empty string.
func MakeArgs(kv ...string) Args {
	var a Args

	for i := 0; i < len(kv); i += 2 {
		v := ""
		if i+1 < len(kv) {
			v = kv[i+1]
		}

		a.Set(kv[i], v)
	}

	return a
}

// Len returns the number of arguments.
func (a Args) Len() int { return len(a.keys) }

// Keys returns the argument names in insertion order.
func (a Args) Keys() []string { return slices.Clone(a.keys) }

// Get returns the value bound to key.
func (a Args) Get(key string) (string, bool) {
	v, ok := a.vals[key]

	return v, ok
}

// Has reports whether key is bound.
func (a Args) Has(key string) bool {
	_, ok := a.vals[key]

	return ok
}

// Set binds key to val, keeping the original position of an existing key.
func (a *Args) Set(key, val string) {
	if a.vals == nil {
		a.vals = make(map[string]string)
	}

	if _, ok := a.vals[key]; !ok {
		a.keys = append(a.keys, key)
	}

	a.vals[key] = val
}

// Insert binds key to val only if key is not yet bound.
func (a *Args) Insert(key, val string) bool {
	if a.Has(key) {
		return false
	}

	a.Set(key, val)

	return true
}

// Delete removes key.
func (a *Args) Delete(key string) {
	if !a.Has(key) {
		return
	}

	delete(a.vals, key)
	a.keys = slices.DeleteFunc(a.keys, func(k string) bool { return k == key })
}

// Clone returns an independent copy of a.
func (a Args) Clone() Args {
	out := Args{keys: slices.Clone(a.keys)}

	if a.vals != nil {
		out.vals = make(map[string]string, len(a.vals))
		for k, v := range a.vals {
			out.vals[k] = v
		}
	}

	return out
}

// Map returns the arguments as a plain map.
func (a Args) Map() map[string]string {
	out := make(map[string]string, len(a.keys))
	for _, k := range a.keys {
		out[k] = a.vals[k]
	}

	return out
}

// MapSlice returns the arguments as an ordered YAML mapping.
func (a Args) MapSlice() yaml.MapSlice {
	out := make(yaml.MapSlice, 0, len(a.keys))
	for _, k := range a.keys {
		out = append(out, yaml.MapItem{Key: k, Value: a.vals[k]})
	}

	return out
}

// MarshalJSON encodes a as an object in insertion order.
func (a Args) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, k := range a.keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}

		vb, err := json.Marshal(a.vals[k])
		if err != nil {
			return nil, err
		}

		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// MarshalYAML encodes a as a mapping in insertion order.
func (a Args) MarshalYAML() (any, error) { return a.MapSlice(), nil }

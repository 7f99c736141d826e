package lang

import (
	"io"
	"strings"

	"github.com/ardnew/automaton/op"
)

// Stmt is one parsed statement: a *VarDef, *FuncDef or *Invocation.
type Stmt interface {
	Position() Position
	Print(w io.Writer, indent int)
	stmt()
}

// Text is a substitutable field. Literal text came from a quoted string or
// a brace block and is never replaced by a variable's value.
type Text struct {
	Value   string
	Literal bool
	Pos     Position
}

// Arg is one "key = value" pair of an argument list. Key is empty for an
// unnamed argument.
type Arg struct {
	Key   Text
	Value Text
}

// Body is the unparsed text of a brace block.
type Body struct {
	Source string
	Pos    Position
}

// VarDef binds Name to Value for the statements that follow it.
type VarDef struct {
	Pos   Position
	Name  string
	Value Text
}

// Param is a function parameter with an optional default.
type Param struct {
	Name       string
	Default    Text
	HasDefault bool
	Pos        Position
}

// FuncDef is a "let:" function definition. Its body is re-parsed at each
// call site.
type FuncDef struct {
	Pos    Position
	Name   string
	Params []Param
	Body   Body
}

// Invocation calls an operation or a defined function. Children holds the
// expanded statements of its body.
type Invocation struct {
	Pos      Position
	Name     Text
	Args     []Arg
	Body     *Body
	Children []*Invocation
}

func (s *VarDef) Position() Position     { return s.Pos }
func (s *FuncDef) Position() Position    { return s.Pos }
func (s *Invocation) Position() Position { return s.Pos }

func (*VarDef) stmt()     {}
func (*FuncDef) stmt()    {}
func (*Invocation) stmt() {}

func writer(w io.Writer) func(eol string, item ...string) {
	return func(eol string, item ...string) {
		_, _ = io.WriteString(w, strings.Join(item, ": ")+eol)
	}
}

func quote(t Text) string {
	if t.Literal {
		return op.Quote(t.Value)
	}

	return "'" + t.Value + "'"
}

// Print writes a formatted representation of the variable definition.
func (s *VarDef) Print(w io.Writer, indent int) {
	prefix := strings.Repeat("  ", indent)
	put := writer(w)
	put("\n", prefix+"Variable", s.Name)
	put("\n", prefix+"  Value", quote(s.Value))
}

// Print writes a formatted representation of the function definition.
func (s *FuncDef) Print(w io.Writer, indent int) {
	prefix := strings.Repeat("  ", indent)
	put := writer(w)
	put("\n", prefix+"Function", s.Name)

	for _, p := range s.Params {
		if p.HasDefault {
			put("\n", prefix+"  Parameter", p.Name+" = "+quote(p.Default))
		} else {
			put("\n", prefix+"  Parameter", p.Name)
		}
	}
}

// Print writes a formatted representation of the invocation and its
// expanded children.
func (s *Invocation) Print(w io.Writer, indent int) {
	prefix := strings.Repeat("  ", indent)
	put := writer(w)
	put("\n", prefix+"Operation", quote(s.Name))

	for _, a := range s.Args {
		put("\n", prefix+"  Argument", quote(a.Key)+" = "+quote(a.Value))
	}

	if len(s.Children) > 0 {
		put(":\n", prefix+"  Children")

		for _, c := range s.Children {
			c.Print(w, indent+2)
		}
	}
}

// isIdentifier reports whether s is a non-empty run of letters, digits,
// '.', '-' and '_'.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.', r == '-', r == '_':
		default:
			return false
		}
	}

	return true
}

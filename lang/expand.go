package lang

import (
	"slices"
)

const (
	// MaxDepth bounds the nesting of operation bodies.
	MaxDepth = 20
	// MaxSubstitutions bounds the replacement passes over one statement.
	MaxSubstitutions = 100
	// MaxInlining bounds nested function inlining.
	MaxInlining = 10
)

type binding struct {
	name  string
	value Text
	at    Position
}

type function struct {
	def   *FuncDef
	scope *scope
}

// scope is one frame of definitions. A definition is visible only to
// statements starting at a strictly greater offset, in its own frame or a
// nested one.
type scope struct {
	parent *scope
	vars   []binding
	funcs  []function
}

func (s *scope) variable(name string, at int) (binding, bool) {
	for f := s; f != nil; f = f.parent {
		for i := len(f.vars) - 1; i >= 0; i-- {
			if b := f.vars[i]; b.name == name && b.at.Offset < at {
				return b, true
			}
		}
	}

	return binding{}, false
}

func (s *scope) function(name string, at int) (function, bool) {
	for f := s; f != nil; f = f.parent {
		for i := len(f.funcs) - 1; i >= 0; i-- {
			if fn := f.funcs[i]; fn.def.Name == name && fn.def.Pos.Offset < at {
				return fn, true
			}
		}
	}

	return function{}, false
}

// expander rewrites parsed statements into a tree of invocations with all
// variables substituted and all functions inlined.
type expander struct {
	fb *Feedback
}

func (e *expander) expand(stmts []Stmt, parent *scope, depth, inlined int) []*Invocation {
	if depth > MaxDepth {
		at := Position{}
		if len(stmts) > 0 {
			at = stmts[0].Position()
		}

		e.fb.errorf(at, "Exceeded maximum statement recursion depth (%d).", MaxDepth)

		return nil
	}

	frame := &scope{parent: parent}

	var out []*Invocation

	for _, s := range stmts {
		switch s := s.(type) {
		case *VarDef:
			e.define(frame, s)
		case *FuncDef:
			e.declare(frame, s)
		case *Invocation:
			out = append(out, e.invoke(frame, s, depth, inlined)...)
		}
	}

	return out
}

func (e *expander) define(frame *scope, s *VarDef) {
	if e.substitute(frame, s.Pos, &s.Value) < 0 {
		return
	}

	for _, b := range frame.vars {
		if b.name == s.Name {
			e.fb.warnf(s.Pos,
				"Duplicate variable assignment (previously assigned on line %d).",
				b.at.Line)

			break
		}
	}

	if frame.parent != nil {
		if b, ok := frame.parent.variable(s.Name, s.Pos.Offset); ok {
			e.fb.warnf(s.Pos,
				"Variable declaration supersedes earlier definition (on line %d).",
				b.at.Line)
		}
	}

	frame.vars = append(frame.vars, binding{name: s.Name, value: s.Value, at: s.Pos})
}

func (e *expander) declare(frame *scope, s *FuncDef) {
	for _, f := range frame.funcs {
		if f.def.Name == s.Name {
			e.fb.warnf(s.Pos,
				"Duplicate function definition (previously defined on line %d).",
				f.def.Pos.Line)

			break
		}
	}

	frame.funcs = append(frame.funcs, function{def: s, scope: frame})
}

// substitute replaces the given fields with variable values until none of
// them names a visible variable. It returns the number of passes that made
// a replacement, or -1 if the limit was reached.
func (e *expander) substitute(frame *scope, at Position, fields ...*Text) int {
	for pass := 0; ; pass++ {
		replaced := false

		for _, f := range fields {
			if f.Literal || f.Value == "" {
				continue
			}

			if b, ok := frame.variable(f.Value, at.Offset); ok {
				*f = Text{Value: b.value.Value, Literal: b.value.Literal, Pos: f.Pos}
				replaced = true
			}
		}

		if !replaced {
			return pass
		}

		if pass+1 >= MaxSubstitutions {
			e.fb.errorf(at,
				"Variable replacement exceeded %d replacement iterations.",
				MaxSubstitutions)

			return -1
		}
	}
}

func (s *Invocation) fields() []*Text {
	out := make([]*Text, 0, 1+2*len(s.Args))
	out = append(out, &s.Name)

	for i := range s.Args {
		out = append(out, &s.Args[i].Key, &s.Args[i].Value)
	}

	return out
}

func (e *expander) invoke(frame *scope, s *Invocation, depth, inlined int) []*Invocation {
	if e.substitute(frame, s.Pos, s.fields()...) < 0 {
		return nil
	}

	if fn, ok := frame.function(s.Name.Value, s.Pos.Offset); ok && !s.Name.Literal {
		return e.inline(s, fn, depth, inlined)
	}

	valid := true

	if !isIdentifier(s.Name.Value) {
		e.fb.errorf(s.Name.Pos, "Operation contains forbidden identifier characters.")

		valid = false
	}

	args := make([]Arg, 0, len(s.Args))

	for _, a := range s.Args {
		switch {
		case a.Key.Value == "":
			e.fb.errorf(a.Key.Pos, "Argument is unnamed.")

			valid = false

			continue
		case !isIdentifier(a.Key.Value):
			e.fb.errorf(a.Key.Pos,
				"Operation argument name contains forbidden identifier characters.")

			valid = false

			continue
		}

		if i := slices.IndexFunc(args, func(b Arg) bool {
			return b.Key.Value == a.Key.Value
		}); i >= 0 {
			e.fb.warnf(a.Key.Pos,
				"Duplicate function argument specified (duplicated from line %d).",
				args[i].Key.Pos.Line)

			args = slices.Delete(args, i, i+1)
		}

		args = append(args, a)
	}

	s.Args = args

	if s.Body != nil {
		body := parse(s.Body.Source, s.Body.Pos, e.fb)
		s.Children = e.expand(body, frame, depth+1, inlined)
	}

	if !valid {
		return nil
	}

	return []*Invocation{s}
}

// inline replaces a call with the expanded body of fn. Parameters are
// bound in a frame that sits in the definition's scope, so the body sees
// what was visible where fn was defined, plus its parameters.
func (e *expander) inline(s *Invocation, fn function, depth, inlined int) []*Invocation {
	def := fn.def

	if inlined >= MaxInlining {
		e.fb.errorf(s.Pos,
			"Function inlining of '%s' exceeded %d iterations.", def.Name, MaxInlining)

		return nil
	}

	if s.Body != nil {
		e.fb.warnf(s.Pos,
			"Function invocation '%s' cannot accept children. Children will be discarded.",
			def.Name)
	}

	bound := &scope{parent: fn.scope}
	ok := true

	for _, p := range def.Params {
		i := slices.IndexFunc(s.Args, func(a Arg) bool { return a.Key.Value == p.Name })

		var v Text

		switch {
		case i >= 0:
			v = s.Args[i].Value
		case p.HasDefault:
			v = p.Default
		default:
			e.fb.errorf(s.Pos,
				"Function '%s' requires argument '%s'.", def.Name, p.Name)

			ok = false

			continue
		}

		bound.vars = append(bound.vars, binding{name: p.Name, value: v, at: def.Pos})
	}

	for _, a := range s.Args {
		if !slices.ContainsFunc(def.Params, func(p Param) bool {
			return p.Name == a.Key.Value
		}) {
			e.fb.warnf(a.Key.Pos,
				"Function '%s' has no parameter '%s'. Argument will be ignored.",
				def.Name, a.Key.Value)
		}
	}

	if !ok {
		return nil
	}

	body := parse(def.Body.Source, def.Body.Pos, e.fb)

	return e.expand(body, bound, depth, inlined+1)
}

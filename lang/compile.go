package lang

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/ardnew/automaton/log"
	"github.com/ardnew/automaton/op"
)

// Script is a compiled program: the top-level operations in source order
// and the feedback gathered while compiling them.
type Script struct {
	Ops      []*op.Node `json:"operations"         yaml:"operations"`
	Feedback []Message  `json:"feedback,omitempty" yaml:"feedback,omitempty"`

	failed bool
	parsed bool
}

// Parsed reports whether the script parsed without error, whether or not it
// went on to compile.
func (s *Script) Parsed() bool { return s.parsed }

// HasErrors reports whether compilation raised an error.
func (s *Script) HasErrors() bool {
	return s.failed || slices.ContainsFunc(s.Feedback, func(m Message) bool {
		return m.Severity >= SeverityError
	})
}

type options struct {
	registry *op.Registry
	logger   log.Logger
}

// Option configures compilation.
type Option func(*options)

// WithRegistry sets the operations a script may name. It is required.
func WithRegistry(r *op.Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithLogger sets the logger for compiler trace output.
func WithLogger(l log.Logger) Option {
	return func(o *options) { o.logger = l }
}

func makeOptions(opts ...Option) options {
	var o options

	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// Compile compiles a script. Diagnostics are reported in the returned
// Script even when compilation fails, in which case the error matches
// [ErrCompile] and Ops is nil.
func Compile(ctx context.Context, src string, opts ...Option) (*Script, error) {
	o := makeOptions(opts...)
	if o.registry == nil {
		return nil, ErrRegistry
	}

	fb := &Feedback{}

	o.logger.TraceContext(ctx, "parse", slog.Int("source_bytes", len(src)))

	stmts := parse(src, Position{Line: 1, Column: 1}, fb)
	x := &expander{fb: fb}
	tree := x.expand(stmts, nil, 0, 0)

	var ast strings.Builder
	for _, inv := range tree {
		inv.Print(&ast, 1)
	}

	fb.debugf(Position{}, "AST:\n%s", ast.String())

	parsed := !fb.HasErrors()
	if parsed {
		fb.infof(Position{}, "Parsing: OK")
	}

	c := newCompiler(o.registry, fb)
	ops := make([]*op.Node, 0, len(tree))

	for _, inv := range tree {
		if n, ok := c.node(inv); ok {
			ops = append(ops, n)
		}
	}

	fb.debugf(Position{}, "Compiled %d top-level operations.", len(ops))

	if fb.HasErrors() {
		script := &Script{Feedback: fb.Messages(), failed: true, parsed: parsed}

		o.logger.DebugContext(ctx, "compile failed",
			slog.Bool("parsed", parsed),
			slog.Int("feedback", len(script.Feedback)),
		)

		return script, ErrCompile.With(slog.Int("feedback", len(script.Feedback)))
	}

	fb.infof(Position{}, "Compilation: OK")

	o.logger.TraceContext(ctx, "compiled", slog.Int("operations", len(ops)))

	return &Script{Ops: ops, Feedback: fb.Messages(), parsed: true}, nil
}

// compiler resolves expanded invocations against a registry.
type compiler struct {
	reg     *op.Registry
	lexicon map[string]string
	names   []string
	fb      *Feedback
}

func newCompiler(reg *op.Registry, fb *Feedback) *compiler {
	lexicon := reg.Lexicon()

	return &compiler{
		reg:     reg,
		lexicon: lexicon,
		names:   slices.Sorted(maps.Keys(lexicon)),
		fb:      fb,
	}
}

func (c *compiler) resolve(t Text, candidates []string, kind string) (string, bool) {
	m, ok := Best(t.Value, candidates)

	switch {
	case !ok || m.Score < Accept:
		c.fb.errorf(t.Pos, "%s '%s' not understood.", kind, t.Value)

		return "", false
	case m.Score < Exact:
		c.fb.warnf(t.Pos, "Selecting %s '%s' because '%s' not understood.",
			strings.ToLower(kind), m.Name, t.Value)
	}

	return m.Name, true
}

// node compiles inv and its children. Every problem is reported before
// giving up, so one pass surfaces as many as possible.
func (c *compiler) node(inv *Invocation) (*op.Node, bool) {
	ok := true

	var (
		name string
		args op.Args
	)

	if spelled, found := c.resolve(inv.Name, c.names, "Operation"); !found {
		ok = false
	} else {
		name = c.lexicon[spelled]
		o, _ := c.reg.Lookup(name)
		ok = c.args(inv, o.Doc, &args) && ok
	}

	children := make([]*op.Node, 0, len(inv.Children))

	for _, child := range inv.Children {
		n, cok := c.node(child)
		if !cok {
			c.fb.errorf(child.Pos, "Nested statement could not be compiled.")

			ok = false

			continue
		}

		children = append(children, n)
	}

	if !ok {
		return nil, false
	}

	return op.NewNode(name, args, children...), true
}

func (c *compiler) args(inv *Invocation, doc op.Doc, args *op.Args) bool {
	if len(doc.Args) == 0 {
		if len(inv.Args) > 0 {
			c.fb.warnf(inv.Args[0].Key.Pos,
				"This operation does not accept arguments. Arguments will be ignored.")
		}

		return true
	}

	names := doc.ArgNames()
	c.fb.debugf(inv.Name.Pos, "Available parameters: %s", strings.Join(names, " "))

	ok := true

	for _, a := range inv.Args {
		name, found := c.resolve(a.Key, names, "Parameter")
		if !found {
			ok = false

			continue
		}

		if ad, _ := doc.Arg(name); ad.Exhaustive {
			c.fb.debugf(a.Value.Pos, "Accepted options: %s", strings.Join(ad.Examples, " "))
		}

		if !args.Insert(name, a.Value.Value) {
			c.fb.errorf(a.Key.Pos,
				"Parameter '%s' not accepted. It was already given as '%s'.",
				a.Key.Value, name)

			ok = false
		}
	}

	return ok
}

package op

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ardnew/automaton/log"
	"github.com/ardnew/automaton/state"
)

// Dispatcher runs compiled operation trees against shared state.
type Dispatcher struct {
	reg       *Registry
	logger    log.Logger
	verbosity *Verbosity
	loader    state.Loader
	forks     sync.WaitGroup
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the base logger. Its level seeds the dispatcher's
// verbosity.
func WithLogger(l log.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithLoader sets the loader used by operations that read files.
func WithLoader(l state.Loader) Option {
	return func(d *Dispatcher) { d.loader = l }
}

// NewDispatcher returns a dispatcher resolving operations in reg.
func NewDispatcher(reg *Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{reg: reg}

	for _, opt := range opts {
		opt(d)
	}

	if d.logger.Logger == nil {
		d.logger = log.Default()
	}

	if d.loader == nil {
		d.loader = state.NewFileLoader(state.WithLogger(d.logger))
	}

	d.verbosity = NewVerbosity(d.logger.Level())
	d.logger = d.logger.Wrap(log.WithLevelVar(d.verbosity.Var()))

	return d
}

// Registry returns the registry operations are resolved in.
func (d *Dispatcher) Registry() *Registry { return d.reg }

// Logger returns the dispatcher's logger, which follows its verbosity.
func (d *Dispatcher) Logger() log.Logger { return d.logger }

// Verbosity returns the threshold shared by the dispatcher's loggers.
func (d *Dispatcher) Verbosity() *Verbosity { return d.verbosity }

// Loader returns the file loader.
func (d *Dispatcher) Loader() state.Loader { return d.loader }

// Dispatch runs nodes in order against st and params, stopping at the first
// outcome that is not a success.
func (d *Dispatcher) Dispatch(
	ctx context.Context,
	st *state.State,
	params state.Params,
	nodes ...*Node,
) Outcome {
	for _, n := range nodes {
		if o := d.invoke(ctx, st, params, n); !o.OK() {
			return o
		}
	}

	return Succeeded()
}

// Wait blocks until every background unit started by Fork has returned.
func (d *Dispatcher) Wait() { d.forks.Wait() }

func (d *Dispatcher) invoke(
	ctx context.Context,
	st *state.State,
	params state.Params,
	n *Node,
) Outcome {
	if err := ctx.Err(); err != nil {
		return Errored(err)
	}

	o, ok := d.reg.Lookup(n.Name)
	if !ok {
		return Errored(ErrUnknownOperation.With(slog.String("operation", n.Name)))
	}

	args := n.Args.Clone()

	for _, a := range o.Doc.Args {
		if a.Expected {
			args.Insert(a.Name, a.Default)
		}
	}

	x := &Exec{
		State:    st,
		Params:   params,
		Args:     args,
		Children: n.Children,
		Node:     n,
		d:        d,
	}

	d.logger.TraceContext(ctx, "invoke",
		slog.String("operation", o.Doc.Name),
		slog.Int("children", len(n.Children)),
	)

	out := o.Run(ctx, x)

	if out.IsError() {
		d.logger.DebugContext(ctx, "operation error",
			slog.String("operation", o.Doc.Name),
			slog.Any("error", out.Err()),
		)
	}

	return out
}

// Exec is the context a handler runs in.
type Exec struct {
	// State is the shared state, mutable in place.
	State *state.State
	// Params is the parameter table, mutable in place.
	Params state.Params
	// Args holds the call-site arguments plus defaults of expected ones.
	Args Args
	// Children are the nested operations, not yet run.
	Children []*Node
	// Node is the compiled node being run.
	Node *Node

	d *Dispatcher
}

// Run dispatches nodes against the handler's own state and parameters.
func (x *Exec) Run(ctx context.Context, nodes ...*Node) Outcome {
	return x.d.Dispatch(ctx, x.State, x.Params, nodes...)
}

// RunOn dispatches nodes against the given state and parameters.
func (x *Exec) RunOn(
	ctx context.Context,
	st *state.State,
	params state.Params,
	nodes ...*Node,
) Outcome {
	return x.d.Dispatch(ctx, st, params, nodes...)
}

// Logger returns the dispatcher's logger tagged with the operation name.
func (x *Exec) Logger() log.Logger {
	return x.d.logger.With(slog.String("operation", x.Node.Name))
}

// Verbosity returns the dispatcher's shared threshold.
func (x *Exec) Verbosity() *Verbosity { return x.d.verbosity }

// Loader returns the dispatcher's file loader.
func (x *Exec) Loader() state.Loader { return x.d.loader }

// Registry returns the registry the dispatcher resolves operations in.
func (x *Exec) Registry() *Registry { return x.d.reg }

// Lexicon returns the canonical operation names.
func (x *Exec) Lexicon() []string { return x.d.reg.Names() }

// Spawn runs fn in the background, detached from ctx cancellation.
// [Dispatcher.Wait] joins it.
func (x *Exec) Spawn(ctx context.Context, fn func(context.Context)) {
	x.d.forks.Add(1)

	go func() {
		defer x.d.forks.Done()

		fn(context.WithoutCancel(ctx))
	}()
}

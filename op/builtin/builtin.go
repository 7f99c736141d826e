package builtin

import (
	"context"
	"log/slog"

	"github.com/ardnew/automaton/op"
)

var (
	ErrFilesystem   = op.NewError("too many filesystem errors")
	ErrNotDirectory = op.NewError("not a directory")
	ErrExpression   = op.NewError("invalid expression")
	ErrLoad         = op.NewError("failed to load files")
	ErrScript       = op.NewError("failed to compile script")
)

// Operations returns every built-in operation.
func Operations() []op.Operation {
	return []op.Operation{
		And, Or, Not, AnyOf, NoneOf, IfElse, Ignore,
		While, Repeat, Sleep, Time,
		Fork, Transaction, MaskParameters, MaskVerbosity,
		ForEachDistinct, ForEachRTPlan, PollDirectories,
		True, False, Throw, Expr, DefineParameter, Echo, LoadFiles, Summarize,
		CompileScript,
	}
}

// Registry returns a new registry holding the built-in operations plus
// extra.
func Registry(extra ...op.Operation) (*op.Registry, error) {
	return op.NewRegistry(append(Operations(), extra...)...)
}

// childCount returns an error outcome unless the node has between lo and
// hi children. A negative hi means no upper bound.
func childCount(x *op.Exec, lo, hi int) (op.Outcome, bool) {
	n := len(x.Children)
	if n >= lo && (hi < 0 || n <= hi) {
		return op.Outcome{}, true
	}

	return op.Errored(op.ErrChildren.With(
		slog.String("operation", x.Node.Name),
		slog.Int("children", n),
		slog.Int("min", lo),
		slog.Int("max", hi),
	)), false
}

// childFailed converts a non-success child outcome into a hard error.
func childFailed(x *op.Exec, o op.Outcome, attrs ...slog.Attr) op.Outcome {
	err := op.ErrChildFailed.With(slog.String("operation", x.Node.Name)).With(attrs...)
	if o.Err() != nil {
		err = err.Wrap(o.Err())
	}

	return op.Errored(err)
}

// swallow logs a discarded child outcome. It reports false if ctx is done,
// in which case the caller must stop.
func swallow(ctx context.Context, x *op.Exec, o op.Outcome) bool {
	if o.IsError() {
		x.Logger().DebugContext(ctx, "ignoring child error", slog.Any("error", o.Err()))
	}

	return ctx.Err() == nil
}

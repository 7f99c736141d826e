package builtin

import (
	"context"

	"github.com/ardnew/automaton/op"
)

var And = op.Operation{
	Doc: op.Doc{
		Name:    "And",
		Aliases: []string{"AllOf"},
		Desc: "Runs child operations in order, stopping at the first one that" +
			" does not succeed. Succeeds when every child succeeds.",
		Notes: []string{"An empty And succeeds."},
	},
	Run: func(ctx context.Context, x *op.Exec) op.Outcome {
		return x.Run(ctx, x.Children...)
	},
}

var Or = op.Operation{
	Doc: op.Doc{
		Name:    "Or",
		Aliases: []string{"Coalesce"},
		Desc: "Runs child operations in order until one succeeds. Failures and" +
			" errors of the children are ignored.",
		Notes: []string{"Fails when no child succeeds, including when there are none."},
	},
	Run: firstSuccess,
}

var AnyOf = op.Operation{
	Doc: op.Doc{
		Name: "AnyOf",
		Desc: "Like Or, but at least one child operation is required.",
	},
	Run: func(ctx context.Context, x *op.Exec) op.Outcome {
		if o, ok := childCount(x, 1, -1); !ok {
			return o
		}

		return firstSuccess(ctx, x)
	},
}

func firstSuccess(ctx context.Context, x *op.Exec) op.Outcome {
	for _, c := range x.Children {
		o := x.Run(ctx, c)
		if o.OK() {
			return o
		}

		if !swallow(ctx, x, o) {
			return op.Errored(ctx.Err())
		}
	}

	return op.Failed()
}

var Not = op.Operation{
	Doc: op.Doc{
		Name: "Not",
		Desc: "Runs child operations in order and fails if any of them succeeds." +
			" Children that fail or raise errors count as not succeeding.",
		Notes: []string{"A Not without children succeeds."},
	},
	Run: noSuccess,
}

var NoneOf = op.Operation{
	Doc: op.Doc{
		Name:    "NoneOf",
		Aliases: []string{"Negate"},
		Desc: "Succeeds only if every child operation fails. At least one child" +
			" operation is required.",
	},
	Run: func(ctx context.Context, x *op.Exec) op.Outcome {
		if o, ok := childCount(x, 1, -1); !ok {
			return o
		}

		return noSuccess(ctx, x)
	},
}

func noSuccess(ctx context.Context, x *op.Exec) op.Outcome {
	for _, c := range x.Children {
		o := x.Run(ctx, c)
		if o.OK() {
			return op.Failed()
		}

		if !swallow(ctx, x, o) {
			return op.Errored(ctx.Err())
		}
	}

	return op.Succeeded()
}

var IfElse = op.Operation{
	Doc: op.Doc{
		Name: "IfElse",
		Desc: "Runs the first child operation as a condition. If it succeeds the" +
			" second child runs, otherwise the optional third child runs.",
		Notes: []string{
			"Exactly two or three child operations are required.",
			"An error raised by the condition is propagated.",
			"A failure of the selected branch is an error.",
		},
	},
	Run: func(ctx context.Context, x *op.Exec) op.Outcome {
		if o, ok := childCount(x, 2, 3); !ok {
			return o
		}

		cond := x.Run(ctx, x.Children[0])
		if cond.IsError() {
			return cond
		}

		branch := 1
		if !cond.OK() {
			if len(x.Children) < 3 {
				return op.Succeeded()
			}

			branch = 2
		}

		if o := x.Run(ctx, x.Children[branch]); !o.OK() {
			return childFailed(x, o)
		}

		return op.Succeeded()
	},
}

var Ignore = op.Operation{
	Doc: op.Doc{
		Name:    "Ignore",
		Aliases: []string{"Always"},
		Desc:    "Runs every child operation regardless of outcome and succeeds.",
	},
	Run: func(ctx context.Context, x *op.Exec) op.Outcome {
		for _, c := range x.Children {
			if !swallow(ctx, x, x.Run(ctx, c)) {
				break
			}
		}

		return op.Succeeded()
	},
}

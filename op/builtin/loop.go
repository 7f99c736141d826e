package builtin

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ardnew/automaton/op"
)

var While = op.Operation{
	Doc: op.Doc{
		Name: "While",
		Desc: "Repeatedly runs the first child operation as a condition and, while" +
			" it succeeds, runs the remaining child operations.",
		Notes: []string{
			"At least two child operations are required.",
			"A body that does not succeed ends the loop, and While succeeds.",
			"An error raised by the condition is propagated.",
		},
		Args: []op.ArgDoc{{
			Name: "N",
			Desc: "The maximum number of iterations. If the condition still holds" +
				" after N iterations, While fails. Negative values remove the limit.",
			Default:  "-1",
			Examples: []string{"-1", "0", "10"},
			Expected: true,
		}},
	},
	Run: func(ctx context.Context, x *op.Exec) op.Outcome {
		if o, ok := childCount(x, 2, -1); !ok {
			return o
		}

		n, err := x.Args.Int("N")
		if err != nil {
			return op.Errored(err)
		}

		cond, body := x.Children[0], x.Children[1:]

		for i := 0; ; i++ {
			c := x.Run(ctx, cond)
			if c.IsError() {
				return c
			}

			if !c.OK() {
				return op.Succeeded()
			}

			if n >= 0 && i >= n {
				x.Logger().DebugContext(ctx, "iteration limit reached", slog.Int("n", n))

				return op.Failed()
			}

			if o := x.Run(ctx, body...); !o.OK() {
				if err := ctx.Err(); err != nil {
					return op.Errored(err)
				}

				x.Logger().DebugContext(ctx, "body did not succeed, leaving loop",
					slog.Int("iteration", i),
					slog.String("outcome", o.String()),
				)

				return op.Succeeded()
			}
		}
	},
}

var Repeat = op.Operation{
	Doc: op.Doc{
		Name: "Repeat",
		Desc: "Runs all child operations, in order, N times.",
		Notes: []string{
			"Any child that does not succeed is an error.",
		},
		Args: []op.ArgDoc{{
			Name:     "N",
			Desc:     "The number of repetitions. Must not be negative.",
			Default:  "1",
			Examples: []string{"0", "1", "5"},
			Expected: true,
		}},
	},
	Run: func(ctx context.Context, x *op.Exec) op.Outcome {
		n, err := x.Args.Int("N")
		if err != nil {
			return op.Errored(err)
		}

		if n < 0 {
			return op.Errored(op.ErrInvalidArgument.With(
				slog.String("argument", "N"),
				slog.Int("value", n),
			).Wrap(errors.New("negative repetition count")))
		}

		for i := range n {
			if o := x.Run(ctx, x.Children...); !o.OK() {
				return childFailed(x, o, slog.Int("iteration", i))
			}
		}

		return op.Succeeded()
	},
}

var Sleep = op.Operation{
	Doc: op.Doc{
		Name: "Sleep",
		Desc: "Waits, then runs child operations in order as And does.",
		Args: []op.ArgDoc{{
			Name:     "Seconds",
			Desc:     "The time to wait, in seconds. Fractions are allowed.",
			Default:  "1.0",
			Examples: []string{"0.5", "1", "60"},
			Expected: true,
		}},
	},
	Run: func(ctx context.Context, x *op.Exec) op.Outcome {
		d, err := x.Args.Seconds("Seconds")
		if err != nil {
			return op.Errored(err)
		}

		if d < 0 {
			return op.Errored(op.ErrInvalidArgument.With(
				slog.String("argument", "Seconds"),
				slog.Duration("value", d),
			))
		}

		t := time.NewTimer(d)
		defer t.Stop()

		select {
		case <-ctx.Done():
			return op.Errored(ctx.Err())
		case <-t.C:
		}

		return x.Run(ctx, x.Children...)
	},
}

var Time = op.Operation{
	Doc: op.Doc{
		Name: "Time",
		Desc: "Runs child operations in order as And does and reports the elapsed" +
			" wall time.",
	},
	Run: func(ctx context.Context, x *op.Exec) op.Outcome {
		start := time.Now()
		o := x.Run(ctx, x.Children...)

		x.Logger().InfoContext(ctx, "elapsed",
			slog.Duration("time", time.Since(start)),
			slog.String("outcome", o.Status.String()),
		)

		return o
	},
}

package builtin

import (
	"context"
	"log/slog"

	"github.com/ardnew/automaton/op"
)

var Fork = op.Operation{
	Doc: op.Doc{
		Name:    "Fork",
		Aliases: []string{"Spawn"},
		Desc: "Runs child operations in the background against a snapshot of" +
			" the current state and parameters, and succeeds immediately.",
		Notes: []string{
			"Changes made by the children are not visible to the caller.",
			"The outcome of the children is logged and otherwise discarded.",
		},
	},
	Run: func(ctx context.Context, x *op.Exec) op.Outcome {
		st, params, children := x.State.Clone(), x.Params.Clone(), x.Children
		logger := x.Logger()

		x.Spawn(ctx, func(ctx context.Context) {
			o := x.RunOn(ctx, st, params, children...)

			logger.DebugContext(ctx, "background operations finished",
				slog.String("outcome", o.String()),
			)
		})

		return op.Succeeded()
	},
}

var Transaction = op.Operation{
	Doc: op.Doc{
		Name: "Transaction",
		Desc: "Runs child operations in order as And does. If they do not all" +
			" succeed, the state and parameters are restored to what they were" +
			" before.",
	},
	Run: func(ctx context.Context, x *op.Exec) op.Outcome {
		st, params := x.State.Clone(), x.Params.Clone()

		o := x.Run(ctx, x.Children...)
		if !o.OK() {
			x.Logger().DebugContext(ctx, "rolling back",
				slog.String("outcome", o.String()),
			)

			x.State.Replace(st)
			x.Params.Replace(params)
		}

		return o
	},
}

const (
	maskReset       = "reset"
	maskRetain      = "retain"
	maskTransaction = "transaction"
)

var MaskParameters = op.Operation{
	Doc: op.Doc{
		Name: "MaskParameters",
		Desc: "Runs child operations in order as And does, using a private copy" +
			" of the parameters.",
		Args: []op.ArgDoc{{
			Name: "Behaviour",
			Desc: "What happens to parameter changes made by the children." +
				" 'reset' discards them, 'retain' keeps them, and 'transaction'" +
				" keeps them only if every child succeeds.",
			Default:    maskReset,
			Examples:   []string{maskReset, maskRetain, maskTransaction},
			Exhaustive: true,
			Expected:   true,
		}},
	},
	Run: func(ctx context.Context, x *op.Exec) op.Outcome {
		mode, err := x.Args.Choice("Behaviour", maskReset, maskRetain, maskTransaction)
		if err != nil {
			return op.Errored(err)
		}

		work := x.Params.Clone()
		o := x.RunOn(ctx, x.State, work, x.Children...)

		switch {
		case mode == maskRetain, mode == maskTransaction && o.OK():
			x.Params.Replace(work)
		}

		return o
	},
}

var MaskVerbosity = op.Operation{
	Doc: op.Doc{
		Name: "MaskVerbosity",
		Aliases: []string{
			"AdjustVerbosity",
			"MaskWarnings",
			"MaskLogs",
			"MaskNotifications",
			"SilenceWarnings",
		},
		Desc: "Runs child operations in order as And does, with the logging" +
			" threshold moved one level.",
		Args: []op.ArgDoc{
			{
				Name:       "Verbosity",
				Desc:       "Whether to show fewer or more messages.",
				Default:    "decrease",
				Examples:   []string{"decrease", "increase"},
				Exhaustive: true,
				Expected:   true,
			},
			{
				Name:     "Permanent",
				Desc:     "Keep the adjusted threshold after the children finish.",
				Default:  "false",
				Examples: []string{"true", "false"},
				Expected: true,
			},
		},
	},
	Run: func(ctx context.Context, x *op.Exec) op.Outcome {
		dir, err := x.Args.Choice("Verbosity", "decrease", "increase")
		if err != nil {
			return op.Errored(err)
		}

		permanent, err := x.Args.Bool("Permanent")
		if err != nil {
			return op.Errored(err)
		}

		var restore func()
		if dir == "increase" {
			restore = x.Verbosity().Louder()
		} else {
			restore = x.Verbosity().Quieter()
		}

		if !permanent {
			defer restore()
		}

		return x.Run(ctx, x.Children...)
	},
}

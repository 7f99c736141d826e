package builtin

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"slices"

	"github.com/ardnew/automaton/log"
	"github.com/ardnew/automaton/op"
)

var True = op.Operation{
	Doc: op.Doc{
		Name:    "True",
		Aliases: []string{"Succeed", "NoOp", "Pass"},
		Desc:    "Does nothing and succeeds.",
	},
	Run: func(context.Context, *op.Exec) op.Outcome { return op.Succeeded() },
}

var False = op.Operation{
	Doc: op.Doc{
		Name:    "False",
		Aliases: []string{"Fail"},
		Desc:    "Does nothing and fails.",
	},
	Run: func(context.Context, *op.Exec) op.Outcome { return op.Failed() },
}

var Throw = op.Operation{
	Doc: op.Doc{
		Name:    "Throw",
		Aliases: []string{"Abort", "Raise"},
		Desc:    "Raises an error, ending the script unless a combinator ignores it.",
		Args: []op.ArgDoc{{
			Name:     "Message",
			Desc:     "Text carried by the error.",
			Examples: []string{"'unexpected input'"},
			Expected: true,
		}},
	},
	Run: func(_ context.Context, x *op.Exec) op.Outcome {
		err := op.ErrThrown.With(slog.String("operation", x.Node.Name))

		if msg, _ := x.Args.Get("Message"); msg != "" {
			err = err.Wrap(errors.New(msg))
		}

		return op.Errored(err)
	},
}

var Expr = op.Operation{
	Doc: op.Doc{
		Name:    "Expr",
		Aliases: []string{"Evaluate", "Condition"},
		Desc: "Evaluates a boolean expression and succeeds if it holds. The" +
			" expression sees 'params' (the parameter table), 'count' (the number" +
			" of items), 'kinds' (item counts by kind), and 'items' (each with" +
			" kind, id, refs, metadata, and source).",
		Args: []op.ArgDoc{{
			Name: "Expression",
			Desc: "An expression in the expr language yielding true or false.",
			Examples: []string{
				"'count > 0'",
				"'kinds[\"plan\"] == 1'",
				"'params[\"mode\"] == \"fast\"'",
				"'all(items, .kind != \"file\")'",
			},
		}},
	},
	Run: func(ctx context.Context, x *op.Exec) op.Outcome {
		source, ok := x.Args.Get("Expression")
		if !ok {
			return op.Errored(op.ErrMissingArgument.With(slog.String("argument", "Expression")))
		}

		holds, err := evalExpr(source, x.State, x.Params)
		if err != nil {
			return op.Errored(err)
		}

		x.Logger().TraceContext(ctx, "evaluated",
			slog.String("expression", source),
			slog.Bool("result", holds),
		)

		return op.Result(holds)
	},
}

var DefineParameter = op.Operation{
	Doc: op.Doc{
		Name:    "DefineParameter",
		Aliases: []string{"SetParameter"},
		Desc:    "Sets an entry of the parameter table.",
		Args: []op.ArgDoc{
			{
				Name:     "Key",
				Desc:     "The parameter name.",
				Examples: []string{"mode", "output_dir"},
			},
			{
				Name:     "Value",
				Desc:     "The value to store.",
				Default:  "",
				Examples: []string{"fast", "'/tmp/out'"},
				Expected: true,
			},
		},
	},
	Run: func(ctx context.Context, x *op.Exec) op.Outcome {
		key, ok := x.Args.Get("Key")
		if !ok || key == "" {
			return op.Errored(op.ErrMissingArgument.With(slog.String("argument", "Key")))
		}

		val, _ := x.Args.Get("Value")
		x.Params[key] = val

		x.Logger().DebugContext(ctx, "parameter set",
			slog.String("key", key),
			slog.String("value", val),
		)

		return op.Succeeded()
	},
}

var Echo = op.Operation{
	Doc: op.Doc{
		Name:    "Echo",
		Aliases: []string{"Print", "Notify"},
		Desc:    "Logs a message.",
		Args: []op.ArgDoc{
			{
				Name:     "Message",
				Desc:     "The text to log.",
				Examples: []string{"'starting'"},
				Expected: true,
			},
			{
				Name:       "Level",
				Desc:       "The level to log at.",
				Default:    "info",
				Examples:   slices.Collect(log.Levels()),
				Exhaustive: true,
				Expected:   true,
			},
		},
	},
	Run: func(ctx context.Context, x *op.Exec) op.Outcome {
		msg, _ := x.Args.Get("Message")
		lvl, _ := x.Args.Get("Level")

		x.Logger().Log(ctx, log.ParseLevel(lvl), msg)

		return op.Succeeded()
	},
}

var LoadFiles = op.Operation{
	Doc: op.Doc{
		Name: "LoadFiles",
		Desc: "Loads files and directories and appends the resulting items to" +
			" the state. YAML and JSON files describe items; other files become" +
			" items of kind 'file'.",
		Args: []op.ArgDoc{{
			Name:     "Filenames",
			Desc:     "Paths to load, separated by ';'. Directories are searched recursively.",
			Examples: []string{"plan.yaml", "'/data/in;/data/extra.json'"},
		}},
	},
	Run: func(ctx context.Context, x *op.Exec) op.Outcome {
		paths, err := x.Args.List("Filenames")
		if err != nil {
			return op.Errored(err)
		}

		st, err := x.Loader().Load(ctx, paths)
		if err != nil {
			return op.Errored(ErrLoad.Wrap(err))
		}

		x.Logger().InfoContext(ctx, "loaded", slog.Int("items", st.Len()))
		x.State.Merge(st)

		return op.Succeeded()
	},
}

var Summarize = op.Operation{
	Doc: op.Doc{
		Name:    "Summarize",
		Aliases: []string{"DroverDebug"},
		Desc:    "Logs the number of items of each kind and the parameter table.",
		Args: []op.ArgDoc{{
			Name:       "IncludeMetadata",
			Desc:       "Also log the metadata of every item.",
			Default:    "false",
			Examples:   []string{"true", "false"},
			Exhaustive: true,
			Expected:   true,
		}},
	},
	Run: func(ctx context.Context, x *op.Exec) op.Outcome {
		verbose, err := x.Args.Bool("IncludeMetadata")
		if err != nil {
			return op.Errored(err)
		}

		logger := x.Logger()
		kinds := x.State.Kinds()

		attrs := make([]any, 0, len(kinds))
		for _, k := range slices.Sorted(maps.Keys(kinds)) {
			attrs = append(attrs, slog.Int(k, kinds[k]))
		}

		params := make([]any, 0, len(x.Params))
		for _, k := range x.Params.Keys() {
			params = append(params, slog.String(k, x.Params[k]))
		}

		logger.InfoContext(ctx, "state",
			slog.Int("items", x.State.Len()),
			slog.Group("kinds", attrs...),
			slog.Group("params", params...),
		)

		if verbose {
			for i, it := range x.State.Items {
				md := make([]any, 0, len(it.Metadata))
				for _, k := range slices.Sorted(maps.Keys(it.Metadata)) {
					md = append(md, slog.String(k, it.Metadata[k]))
				}

				logger.InfoContext(ctx, "item",
					slog.Int("index", i),
					slog.String("kind", it.Kind),
					slog.String("id", it.ID),
					slog.Any("refs", it.Refs),
					slog.Int("elements", len(it.Elements)),
					slog.Group("metadata", md...),
				)
			}
		}

		return op.Succeeded()
	},
}

package builtin

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/ardnew/automaton/lang"
	"github.com/ardnew/automaton/op"
)

// maxScriptDepth bounds how deeply CompileScript may run scripts that
// themselves run scripts.
const maxScriptDepth = 32

type scriptDepthKey struct{}

var CompileScript = op.Operation{
	Doc: op.Doc{
		Name: "CompileScript",
		Desc: "Parses a script file and optionally validates or runs it against" +
			" the current state.",
		Args: []op.ArgDoc{
			{
				Name:     "Filename",
				Desc:     "The file containing the script.",
				Examples: []string{"script.atm", "/path/to/script.atm"},
				Expected: true,
			},
			{
				Name: "Actions",
				Desc: "What to do with the script. 'parse' succeeds if the script" +
					" parses and reports nothing. 'validate' also compiles it and" +
					" logs the feedback; warnings do not fail it. 'run' validates" +
					" the script and then dispatches it. 'lint' and 'compile' are" +
					" synonyms for 'validate', 'execute' for 'run'.",
				Default:    "validate",
				Examples:   []string{"parse", "validate", "lint", "compile", "run", "execute"},
				Exhaustive: true,
				Expected:   true,
			},
		},
	},
	Run: func(ctx context.Context, x *op.Exec) op.Outcome {
		action, err := x.Args.Choice("Actions",
			"parse", "validate", "lint", "compile", "run", "execute")
		if err != nil {
			return op.Errored(err)
		}

		name, _ := x.Args.Get("Filename")
		if name == "" {
			return op.Errored(op.ErrMissingArgument.With(slog.String("argument", "Filename")))
		}

		f, err := os.Open(name)
		if err != nil {
			return op.Errored(ErrScript.Wrap(err).With(slog.String("path", name)))
		}
		defer f.Close()

		script, err := lang.CompileReader(ctx, f,
			lang.WithRegistry(x.Registry()),
			lang.WithLogger(x.Logger()),
		)
		if err != nil && !errors.Is(err, lang.ErrCompile) {
			return op.Errored(ErrScript.Wrap(err).With(slog.String("path", name)))
		}

		if action == "parse" {
			return op.Result(script.Parsed())
		}

		logger := x.Logger().With(slog.String("path", name))
		logger.InfoContext(ctx, "loaded script", slog.Int("operations", len(script.Ops)))

		for _, m := range script.Feedback {
			logger.Log(ctx, m.Severity.Level(), m.Text, slog.String("position", m.Pos.String()))
		}

		if err != nil {
			return op.Failed()
		}

		switch action {
		case "run", "execute":
			depth, _ := ctx.Value(scriptDepthKey{}).(int)
			if depth >= maxScriptDepth {
				return op.Errored(ErrScript.With(
					slog.String("path", name),
					slog.Int("depth", depth),
				))
			}

			return x.Run(context.WithValue(ctx, scriptDepthKey{}, depth+1), script.Ops...)
		default:
			return op.Succeeded()
		}
	},
}

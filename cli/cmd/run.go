package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ardnew/automaton/lang"
	"github.com/ardnew/automaton/log"
	"github.com/ardnew/automaton/pkg"
	"github.com/ardnew/automaton/state"
)

// Run compiles and dispatches scripts.
//
// Every input is compiled. Inputs that compile are run in order against a
// single shared state; inputs that do not compile and lack the script
// marker are loaded into that state as data before the first script runs.
type Run struct {
	Param         map[string]string `help:"Seed a parameter (repeatable)"             mapsep:"none" placeholder:"KEY=VALUE" short:"P"`
	WaitForks     bool              `default:"true"                                  help:"Wait for forked operations before exiting" negatable:""`
	PrintFeedback bool              `help:"Print compiler feedback"                  short:"F"`
	Severity      string            `default:"warning"                               enum:"debug,info,warning,error"                 help:"Minimum severity of printed feedback"`
	Files         []string          `arg:""                                          help:"Script and data files ('-' for stdin)"    name:"file" optional:""`
}

// Run executes the run command.
func (r *Run) Run(ctx context.Context) error {
	return r.run(ctx, os.Stderr, log.Default())
}

func (r *Run) run(ctx context.Context, w io.Writer, logger log.Logger) error {
	srcs, err := readSources(ctx, r.Files)
	if err != nil {
		return err
	}

	s, err := newSession(logger)
	if err != nil {
		return err
	}

	if r.WaitForks {
		defer s.dispatcher.Wait()
	}

	fp := newFeedbackPrinter(w, parseSeverity(r.Severity))

	type compiled struct {
		src    source
		script *lang.Script
	}

	var (
		scripts []compiled
		data    []string
		errs    []error
	)

	for _, src := range srcs {
		script, err := s.compile(ctx, src)

		if r.PrintFeedback && script != nil {
			fp.print(src.name, script.Feedback)
		}

		switch {
		case err == nil:
			scripts = append(scripts, compiled{src, script})

		case src.path != "" && !src.isScript():
			logger.DebugContext(ctx, "loading input as data", src.attr())

			data = append(data, src.path)

		default:
			if !r.PrintFeedback && script != nil {
				fp.print(src.name, script.Feedback)
			}

			errs = append(errs, ErrCompile.With(src.attr()).Wrap(err))
		}
	}

	if len(errs) > 0 {
		return pkg.MakeError(errs...)
	}

	params, err := r.params()
	if err != nil {
		return err
	}

	st := state.New()

	if len(data) > 0 {
		loaded, err := s.dispatcher.Loader().Load(ctx, data)
		if err != nil {
			return ErrLoad.Wrap(err)
		}

		st.Merge(loaded)
	}

	for _, c := range scripts {
		out := s.dispatcher.Dispatch(ctx, st, params, c.script.Ops...)

		logger.DebugContext(ctx, "script finished",
			c.src.attr(),
			slog.String("outcome", out.Status.String()),
			slog.Int("items", st.Len()),
		)

		switch {
		case out.IsError():
			return ErrDispatch.With(c.src.attr()).Wrap(out.Err())
		case !out.OK():
			return ErrFailed.With(c.src.attr())
		}
	}

	return nil
}

func (r *Run) params() (state.Params, error) {
	params := make(state.Params, len(r.Param))

	for k, v := range r.Param {
		if k = strings.TrimSpace(k); k == "" {
			return nil, ErrInvalidParam.With(slog.String("value", v))
		}

		params[k] = v
	}

	return params, nil
}

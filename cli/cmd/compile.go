package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ardnew/automaton/lang"
	"github.com/ardnew/automaton/log"
	"github.com/ardnew/automaton/pkg"
)

// Compile prints the compiled operation tree of each script.
type Compile struct {
	Format string   `default:"native" enum:"native,json,yaml" help:"Output format"                short:"f"`
	Indent int      `default:"2"                              help:"Indentation width"            short:"i"`
	Files  []string `arg:""                                   help:"Script files ('-' for stdin)" name:"file"`
}

// Run executes the compile command.
func (c *Compile) Run(ctx context.Context) error {
	return c.run(ctx, os.Stdout, os.Stderr, log.Default())
}

func (c *Compile) run(ctx context.Context, w, ew io.Writer, logger log.Logger) error {
	srcs, err := readSources(ctx, c.Files)
	if err != nil {
		return err
	}

	s, err := newSession(logger)
	if err != nil {
		return err
	}

	fp := newFeedbackPrinter(ew, lang.SeverityError)

	var errs []error

	for _, src := range srcs {
		script, err := s.compile(ctx, src)
		if err != nil {
			if script != nil {
				fp.print(src.name, script.Feedback)
			}

			errs = append(errs, ErrCompile.With(src.attr()).Wrap(err))

			continue
		}

		if len(srcs) > 1 && c.Format == "native" {
			fmt.Fprintf(w, "# %s\n", src.name)
		}

		if err := c.format(ctx, w, script); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return pkg.MakeError(errs...)
	}

	return nil
}

func (c *Compile) format(ctx context.Context, w io.Writer, script *lang.Script) error {
	switch c.Format {
	case "json":
		if err := script.FormatJSON(ctx, w, c.Indent); err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

	case "yaml":
		if err := script.FormatYAML(ctx, w, c.Indent); err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

	default:
		return script.Format(ctx, w, c.Indent)
	}

	return nil
}

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ardnew/automaton/log"
)

// Check compiles scripts and prints their feedback without running them.
type Check struct {
	Severity string   `default:"info" enum:"debug,info,warning,error" help:"Minimum severity of printed feedback" short:"s"`
	Files    []string `arg:""         help:"Script files ('-' for stdin)"     name:"file"`
}

// Run executes the check command.
func (c *Check) Run(ctx context.Context) error {
	return c.run(ctx, os.Stdout, log.Default())
}

func (c *Check) run(ctx context.Context, w io.Writer, logger log.Logger) error {
	srcs, err := readSources(ctx, c.Files)
	if err != nil {
		return err
	}

	s, err := newSession(logger)
	if err != nil {
		return err
	}

	fp := newFeedbackPrinter(w, parseSeverity(c.Severity))
	failed := 0

	for _, src := range srcs {
		script, err := s.compile(ctx, src)
		if script == nil {
			return ErrCompile.With(src.attr()).Wrap(err)
		}

		if fp.print(src.name, script.Feedback) == 0 {
			status := "OK"
			if err != nil {
				status = "FAILED"
			}

			fmt.Fprintf(w, "%s: %s\n", fp.file.Render(src.name), status)
		}

		if err != nil {
			failed++
		}
	}

	if failed > 0 {
		return ErrCheck.With(slog.Int("failed", failed), slog.Int("checked", len(srcs)))
	}

	return nil
}

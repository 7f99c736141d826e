package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/automaton/lang"
	"github.com/ardnew/automaton/log"
	"github.com/ardnew/automaton/op"
)

// maxSuggestions bounds the names offered when an operation is not found.
const maxSuggestions = 3

// Ops documents the available operations.
type Ops struct {
	Format string `default:"text" enum:"text,json,yaml" help:"Output format" short:"f"`
	Indent int    `default:"2"                          help:"Indentation width for json and yaml"`
	Name   string `arg:""        help:"Operation to describe (all when omitted)" optional:""`
}

// Run executes the ops command.
func (o *Ops) Run(ctx context.Context) error {
	return o.run(ctx, os.Stdout, log.Default())
}

func (o *Ops) run(ctx context.Context, w io.Writer, logger log.Logger) error {
	s, err := newSession(logger)
	if err != nil {
		return err
	}

	docs, err := o.lookup(ctx, w, s)
	if err != nil {
		return err
	}

	switch o.Format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", strings.Repeat(" ", o.Indent))

		if err := enc.Encode(docs); err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

	case "yaml":
		b, err := yaml.MarshalWithOptions(docs, yaml.Indent(o.Indent))
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

		_, err = w.Write(b)

		return err

	default:
		newDocPrinter(w).print(docs...)
	}

	return nil
}

// lookup returns the documentation to print: every operation, or the one
// Name resolves to. A resolution that is not exact is announced on w.
func (o *Ops) lookup(ctx context.Context, w io.Writer, s *session) ([]op.Doc, error) {
	reg := s.registry

	if o.Name == "" {
		docs := make([]op.Doc, 0, len(reg.Names()))

		for _, name := range reg.Names() {
			if x, ok := reg.Lookup(name); ok {
				docs = append(docs, x.Doc)
			}
		}

		return docs, nil
	}

	lexicon := reg.Lexicon()
	matches := lang.Resolve(o.Name, slices.Sorted(maps.Keys(lexicon)))

	if len(matches) == 0 || matches[0].Score < lang.Accept {
		var suggest []string

		for _, m := range matches[:min(maxSuggestions, len(matches))] {
			suggest = append(suggest, lexicon[m.Name])
		}

		err := ErrUnknownOp.With(slog.String("name", o.Name))
		if suggest = slices.Compact(suggest); len(suggest) > 0 {
			err = err.Wrap(fmt.Errorf("%q: did you mean %s?", o.Name, strings.Join(suggest, ", ")))
		}

		return nil, err
	}

	best := matches[0]
	if best.Score < lang.Exact && o.Format == "text" {
		fmt.Fprintf(w, "Selecting operation '%s' because '%s' not understood.\n\n",
			best.Name, o.Name)
	}

	s.logger.DebugContext(ctx, "resolved operation",
		slog.String("query", o.Name),
		slog.String("name", best.Name),
		slog.Float64("score", best.Score),
	)

	x, _ := reg.Lookup(best.Name)

	return []op.Doc{x.Doc}, nil
}

type docPrinter struct {
	w    io.Writer
	name lipgloss.Style
	arg  lipgloss.Style
	dim  lipgloss.Style
}

func newDocPrinter(w io.Writer) *docPrinter {
	r := lipgloss.NewRenderer(w)

	return &docPrinter{
		w:    w,
		name: r.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		arg:  r.NewStyle().Foreground(lipgloss.Color("3")),
		dim:  r.NewStyle().Faint(true),
	}
}

func (p *docPrinter) print(docs ...op.Doc) {
	for i, d := range docs {
		if i > 0 {
			fmt.Fprintln(p.w)
		}

		head := p.name.Render(d.Name)
		if len(d.Aliases) > 0 {
			head += p.dim.Render(" (" + strings.Join(d.Aliases, ", ") + ")")
		}

		fmt.Fprintln(p.w, head)

		if d.Desc != "" {
			fmt.Fprintln(p.w, "  "+d.Desc)
		}

		for _, a := range d.Args {
			p.printArg(a)
		}

		for _, n := range d.Notes {
			fmt.Fprintln(p.w, p.dim.Render("  Note: "+n))
		}
	}
}

func (p *docPrinter) printArg(a op.ArgDoc) {
	line := "    " + p.arg.Render(a.Name)

	var meta []string

	if a.Default != "" {
		meta = append(meta, fmt.Sprintf("default %q", a.Default))
	}

	if a.Expected {
		meta = append(meta, "expected")
	}

	if len(a.Examples) > 0 {
		sep, label := ", ", "e.g. "
		if a.Exhaustive {
			sep, label = "|", "one of "
		}

		meta = append(meta, label+strings.Join(a.Examples, sep))
	}

	if len(meta) > 0 {
		line += p.dim.Render("  [" + strings.Join(meta, "; ") + "]")
	}

	fmt.Fprintln(p.w, line)

	if a.Desc != "" {
		fmt.Fprintln(p.w, "        "+a.Desc)
	}
}

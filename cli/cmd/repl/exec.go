package repl

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/ardnew/automaton/lang"
	"github.com/ardnew/automaton/log"
	"github.com/ardnew/automaton/op"
	"github.com/ardnew/automaton/state"
)

// Session is the persistent context statements run in. State and Params
// carry over from one statement to the next.
type Session struct {
	Dispatcher *op.Dispatcher
	State      *state.State
	Params     state.Params
	Logger     log.Logger
	// CacheDir holds the history file. Empty keeps history in memory.
	CacheDir string
	// Severity is the lowest feedback severity shown after a statement.
	Severity lang.Severity
}

// result is what running one statement produced.
type result struct {
	feedback []lang.Message
	err      error // compile error, or nil
	outcome  op.Outcome
	items    int
	elapsed  time.Duration
}

// exec compiles src and dispatches it against the session state.
func (s *Session) exec(ctx context.Context, src string) result {
	script, err := lang.Compile(ctx, src,
		lang.WithRegistry(s.Dispatcher.Registry()),
		lang.WithLogger(s.Logger),
	)

	var r result

	if script != nil {
		for _, m := range script.Feedback {
			if m.Severity >= s.Severity {
				r.feedback = append(r.feedback, m)
			}
		}
	}

	if err != nil {
		r.err = err

		return r
	}

	start := time.Now()
	r.outcome = s.Dispatcher.Dispatch(ctx, s.State, s.Params, script.Ops...)
	r.elapsed = time.Since(start)
	r.items = s.State.Len()

	s.Logger.TraceContext(ctx, "repl statement",
		slog.String("outcome", r.outcome.Status.String()),
		slog.Duration("elapsed", r.elapsed),
	)

	return r
}

// render formats the result for printing above the prompt.
func (r result) render() string {
	lines := make([]string, 0, len(r.feedback)+1)

	for _, m := range r.feedback {
		style := hintStyle
		if m.Severity >= lang.SeverityWarning {
			style = errorStyle
		}

		lines = append(lines, style.Render(m.String()))
	}

	switch {
	case r.err != nil:
		lines = append(lines, errorStyle.Render("✘ "+r.err.Error()))
	case r.outcome.IsError():
		lines = append(lines, errorStyle.Render("✘ error: "+r.outcome.Err().Error()))
	case r.outcome.OK():
		lines = append(lines, resultStyle.Render(fmt.Sprintf("✔ success (%d items, %s)",
			r.items, r.elapsed.Round(time.Millisecond))))
	default:
		lines = append(lines, failureStyle.Render(fmt.Sprintf("✘ failure (%d items, %s)",
			r.items, r.elapsed.Round(time.Millisecond))))
	}

	return strings.Join(lines, "\n")
}

// describeState lists the item count per kind.
func (s *Session) describeState() string {
	kinds := s.State.Kinds()
	if len(kinds) == 0 {
		return hintStyle.Render("  (empty)")
	}

	var b strings.Builder

	fmt.Fprintf(&b, "  %d items\n", s.State.Len())

	for _, k := range slices.Sorted(maps.Keys(kinds)) {
		fmt.Fprintf(&b, "  %-16s %s\n", k, hintStyle.Render(fmt.Sprint(kinds[k])))
	}

	return strings.TrimRight(b.String(), "\n")
}

// describeParams lists the parameter table.
func (s *Session) describeParams() string {
	if len(s.Params) == 0 {
		return hintStyle.Render("  (none)")
	}

	var b strings.Builder

	for _, k := range s.Params.Keys() {
		fmt.Fprintf(&b, "  %s = %s\n", k, hintStyle.Render(s.Params[k]))
	}

	return strings.TrimRight(b.String(), "\n")
}

// describeOps lists every operation, or documents the one query resolves
// to.
func (s *Session) describeOps(query string) string {
	reg := s.Dispatcher.Registry()

	if query == "" {
		var b strings.Builder

		for _, name := range reg.Names() {
			x, _ := reg.Lookup(name)

			b.WriteString("  " + name)

			if len(x.Doc.Aliases) > 0 {
				b.WriteString(hintStyle.Render(" (" + strings.Join(x.Doc.Aliases, ", ") + ")"))
			}

			b.WriteString("\n")
		}

		return strings.TrimRight(b.String(), "\n")
	}

	best, ok := lang.Best(query, slices.Collect(maps.Keys(reg.Lexicon())))
	if !ok || best.Score < lang.Accept {
		return errorStyle.Render("Operation '" + query + "' not understood.")
	}

	x, _ := reg.Lookup(best.Name)

	var b strings.Builder

	b.WriteString(renderSignatureHint(x.Doc, invocation{argIndex: -1}))

	if x.Doc.Desc != "" {
		b.WriteString("\n  " + x.Doc.Desc)
	}

	for _, a := range x.Doc.Args {
		b.WriteString("\n    " + formatArg(a))

		if a.Desc != "" {
			b.WriteString(hintStyle.Render("  " + a.Desc))
		}
	}

	return b.String()
}

// reset empties the state and the parameter table.
func (s *Session) reset() {
	s.State.Replace(state.New())
	clear(s.Params)
}

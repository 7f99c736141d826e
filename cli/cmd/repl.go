package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/automaton/cli/cmd/repl"
	"github.com/ardnew/automaton/log"
	"github.com/ardnew/automaton/pkg"
	"github.com/ardnew/automaton/state"
)

// Repl runs statements interactively against a persistent state.
type Repl struct {
	Param    map[string]string `help:"Seed a parameter (repeatable)"               mapsep:"none"                   placeholder:"KEY=VALUE" short:"P"`
	Severity string            `default:"warning"                                 enum:"debug,info,warning,error" help:"Minimum severity of printed feedback"`
	Files    []string          `arg:""                                            help:"Data files loaded into the initial state" name:"file" optional:"" type:"path"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) error {
	logger := log.Default()

	s, err := newSession(logger)
	if err != nil {
		return err
	}

	params, err := (&Run{Param: r.Param}).params()
	if err != nil {
		return err
	}

	st := state.New()

	if len(r.Files) > 0 {
		loaded, err := s.dispatcher.Loader().Load(ctx, r.Files)
		if err != nil {
			return ErrLoad.Wrap(err)
		}

		st.Merge(loaded)

		logger.DebugContext(ctx, "repl state loaded", slog.Int("items", st.Len()))
	}

	defer s.dispatcher.Wait()

	return repl.Run(ctx, &repl.Session{
		Dispatcher: s.dispatcher,
		State:      st,
		Params:     params,
		Logger:     logger,
		CacheDir:   cacheDir(ctx),
		Severity:   parseSeverity(r.Severity),
	})
}

// cacheDir returns the cache directory named by the kong variables, or
// the default one when there is no kong context.
func cacheDir(ctx context.Context) string {
	if ktx := kongContextFrom(ctx); ktx != nil {
		if dir, ok := ktx.Model.Vars()[CacheIdentifier]; ok {
			return dir
		}
	}

	return pkg.CacheDir()
}

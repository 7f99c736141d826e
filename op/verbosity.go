package op

import (
	"log/slog"
	"sync"

	"github.com/ardnew/automaton/log"
)

// Verbosity is the logging threshold shared by every logger the dispatcher
// hands out. Adjustments are scoped: each returns a function restoring the
// previous threshold.
type Verbosity struct {
	mu  sync.Mutex
	lvl *slog.LevelVar
}

// NewVerbosity returns a Verbosity starting at level.
func NewVerbosity(level log.Level) *Verbosity {
	v := &Verbosity{lvl: new(slog.LevelVar)}
	v.lvl.Set(slog.Level(level))

	return v
}

// Var returns the underlying level variable.
func (v *Verbosity) Var() *slog.LevelVar { return v.lvl }

// Level returns the current threshold.
func (v *Verbosity) Level() log.Level { return log.Level(v.lvl.Level()) }

// Set replaces the threshold.
func (v *Verbosity) Set(level log.Level) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.lvl.Set(slog.Level(level))
}

// Push sets the threshold to level and returns a function restoring the
// previous one. Calling restore more than once has no further effect.
func (v *Verbosity) Push(level log.Level) (restore func()) {
	v.mu.Lock()
	prev := v.lvl.Level()
	v.lvl.Set(slog.Level(level))
	v.mu.Unlock()

	return sync.OnceFunc(func() { v.Set(log.Level(prev)) })
}

// Quieter raises the threshold one level.
func (v *Verbosity) Quieter() (restore func()) {
	return v.Push(v.Level().Quieter())
}

// Louder lowers the threshold one level.
func (v *Verbosity) Louder() (restore func()) {
	return v.Push(v.Level().Louder())
}

package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/automaton/lang"
	"github.com/ardnew/automaton/log"
	"github.com/ardnew/automaton/op"
	"github.com/ardnew/automaton/op/builtin"
	"github.com/ardnew/automaton/pkg"
	"github.com/ardnew/automaton/state"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type searchPathKey struct{}

// WithSearchPath returns a new context.Context carrying the directories
// searched for input files given by relative path.
func WithSearchPath(ctx context.Context, dirs []string) context.Context {
	return context.WithValue(ctx, searchPathKey{}, dirs)
}

func searchPathFrom(ctx context.Context) []string {
	dirs, _ := ctx.Value(searchPathKey{}).([]string)

	return dirs
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// source is one input file read into memory.
type source struct {
	name string // as given on the command line
	path string // resolved path, empty for stdin
	data []byte
}

func (s source) attr() slog.Attr { return slog.String("file", s.name) }

// isScript reports whether the first line of the source carries the
// script marker: a comment naming the program.
func (s source) isScript() bool {
	line, _, _ := bytes.Cut(s.data, []byte("\n"))

	return bytes.HasPrefix(line, []byte("#")) &&
		bytes.Contains(bytes.ToLower(line), []byte(pkg.Name))
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// readSources reads every named input in order.
//
// Relative names that do not exist are looked up in the search path stored
// in ctx. Duplicates are dropped by comparing device/inode pairs after
// resolving symlinks. All occurrences of "-" collapse into a single stdin
// source placed last.
func readSources(ctx context.Context, names []string) ([]source, error) {
	if len(names) == 0 {
		return nil, ErrNoInput
	}

	var (
		srcs     []source
		errs     []error
		hasStdin bool
	)

	seen := make(map[fileKey]struct{})
	dirs := searchPathFrom(ctx)

	for _, name := range names {
		if name == stdinSource {
			hasStdin = true

			continue
		}

		path, err := locate(name, dirs)
		if err != nil {
			errs = append(errs, ErrReadInput.With(slog.String("file", name)).Wrap(err))

			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			errs = append(errs, ErrReadInput.With(slog.String("file", name)).Wrap(err))

			continue
		}

		if key, ok := makeFileKey(info); ok {
			if _, dup := seen[key]; dup {
				log.TraceContext(ctx, "skip duplicate input", slog.String("file", name))

				continue
			}

			seen[key] = struct{}{}
		}

		data, err := os.ReadFile(path)
		if err != nil {
			errs = append(errs, ErrReadInput.With(slog.String("file", name)).Wrap(err))

			continue
		}

		srcs = append(srcs, source{name: name, path: path, data: data})
	}

	if hasStdin {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			errs = append(errs, ErrReadInput.With(slog.String("file", stdinSource)).Wrap(err))
		} else {
			srcs = append(srcs, source{name: stdinSource, data: data})
		}
	}

	if len(errs) > 0 {
		return nil, pkg.MakeError(errs...)
	}

	return srcs, nil
}

// locate resolves name to an existing file, trying the search path for
// relative names that are not found as given.
func locate(name string, dirs []string) (string, error) {
	resolved, err := resolve(name)
	if err == nil || filepath.IsAbs(name) || !errors.Is(err, fs.ErrNotExist) {
		return resolved, err
	}

	for _, dir := range dirs {
		if resolved, rerr := resolve(filepath.Join(dir, name)); rerr == nil {
			return resolved, nil
		}
	}

	return "", err
}

// resolve returns the absolute, symlink-free form of path.
func resolve(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	return filepath.EvalSymlinks(abs)
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: stat.Dev, ino: stat.Ino}, true
}

// session bundles what every command needs to compile and run scripts.
type session struct {
	registry   *op.Registry
	dispatcher *op.Dispatcher
	logger     log.Logger
}

func newSession(logger log.Logger) (*session, error) {
	reg, err := builtin.Registry()
	if err != nil {
		return nil, err
	}

	loader := state.NewFileLoader(state.WithLogger(logger))

	return &session{
		registry: reg,
		dispatcher: op.NewDispatcher(reg,
			op.WithLogger(logger),
			op.WithLoader(loader),
		),
		logger: logger,
	}, nil
}

func (s *session) compile(ctx context.Context, src source) (*lang.Script, error) {
	return lang.CompileReader(ctx, bytes.NewReader(src.data),
		lang.WithRegistry(s.registry),
		lang.WithLogger(s.logger.With(src.attr())),
	)
}

// parseSeverity maps a severity name to its value, case-insensitively.
func parseSeverity(name string) lang.Severity {
	for _, sev := range []lang.Severity{
		lang.SeverityDebug, lang.SeverityInfo, lang.SeverityWarning, lang.SeverityError,
	} {
		if strings.EqualFold(sev.String(), name) {
			return sev
		}
	}

	return lang.SeverityInfo
}

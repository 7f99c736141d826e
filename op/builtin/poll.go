package builtin

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/ardnew/automaton/log"
	"github.com/ardnew/automaton/op"
)

// maxPollErrors is the number of enumeration errors tolerated before
// PollDirectories gives up.
const maxPollErrors = 20

const (
	groupSeparate     = "separate"
	groupSubdirectory = "subdirectory"
	groupTogether     = "together"
)

var PollDirectories = op.Operation{
	Doc: op.Doc{
		Name: "PollDirectories",
		Desc: "Watches directories for new files. Once a file has stopped" +
			" changing size it is loaded, alone or with others, and child" +
			" operations run on the loaded items. Runs until cancelled or until" +
			" loading or a child fails.",
		Notes: []string{
			"Directories are searched recursively. Files are never modified.",
			"A processed file that changes size is processed again.",
			"Each batch is run on a fresh state and appended to the current" +
				" state afterwards.",
		},
		Args: []op.ArgDoc{
			{
				Name:     "Directories",
				Desc:     "Directories to watch, separated by ';'.",
				Default:  "./",
				Examples: []string{"./", "/incoming;/spool"},
				Expected: true,
			},
			{
				Name:     "PollInterval",
				Desc:     "Seconds between directory scans.",
				Default:  "5.0",
				Examples: []string{"1", "5.0", "30"},
				Expected: true,
			},
			{
				Name: "SettleDelay",
				Desc: "Seconds a file's size must stay unchanged before it is" +
					" considered complete.",
				Default:  "60.0",
				Examples: []string{"0", "10", "60.0"},
				Expected: true,
			},
			{
				Name: "Grouping",
				Desc: "How ready files are batched: each on its own, per" +
					" subdirectory, or all together. Batches form only once every" +
					" pending file in the group is ready.",
				Default:    groupTogether,
				Examples:   []string{groupSeparate, groupSubdirectory, groupTogether},
				Exhaustive: true,
			},
			{
				Name: "HonourDirectories",
				Desc: "Deprecated. 'true' selects subdirectory grouping when" +
					" Grouping is not given.",
				Examples: []string{"true", "false"},
			},
		},
	},
	Run: pollDirectories,
}

func pollDirectories(ctx context.Context, x *op.Exec) op.Outcome {
	w, interval, err := configureWatcher(ctx, x)
	if err != nil {
		return op.Errored(err)
	}

	failures := 0

	for {
		select {
		case <-ctx.Done():
			return op.Errored(ctx.Err())
		case <-time.After(interval):
		}

		if errs := w.scan(); len(errs) > 0 {
			for _, e := range errs {
				w.logger.WarnContext(ctx, "scan failed", slog.Any("error", e))
			}

			if failures += len(errs); failures > maxPollErrors {
				return op.Errored(ErrFilesystem.Wrap(errors.Join(errs...)).With(
					slog.Int("errors", failures),
				))
			}
		}

		for _, batch := range w.batches() {
			if o := runBatch(ctx, x, batch); !o.OK() {
				return o
			}

			w.done(batch)
		}

		pending, ready, processed := w.counts()
		w.logger.DebugContext(ctx, "Poll results",
			slog.Int("pending", pending),
			slog.Int("ready", ready),
			slog.Int("processed", processed),
		)
	}
}

func runBatch(ctx context.Context, x *op.Exec, batch []string) op.Outcome {
	x.Logger().InfoContext(ctx, "processing batch", slog.Int("files", len(batch)))

	st, err := x.Loader().Load(ctx, batch)
	if err != nil {
		return op.Errored(ErrLoad.Wrap(err))
	}

	o := x.RunOn(ctx, st, x.Params, x.Children...)
	x.State.Merge(st)

	return o
}

func configureWatcher(ctx context.Context, x *op.Exec) (*watcher, time.Duration, error) {
	dirs, err := x.Args.List("Directories")
	if err != nil {
		return nil, 0, err
	}

	if len(dirs) == 0 {
		return nil, 0, op.ErrInvalidArgument.With(slog.String("argument", "Directories"))
	}

	for _, d := range dirs {
		fi, err := os.Stat(d)
		if err != nil {
			return nil, 0, ErrNotDirectory.Wrap(err).With(slog.String("path", d))
		}

		if !fi.IsDir() {
			return nil, 0, ErrNotDirectory.With(slog.String("path", d))
		}
	}

	interval, err := x.Args.Seconds("PollInterval")
	if err != nil {
		return nil, 0, err
	}

	settle, err := x.Args.Seconds("SettleDelay")
	if err != nil {
		return nil, 0, err
	}

	if interval < 0 || settle < 0 {
		return nil, 0, op.ErrInvalidArgument.With(
			slog.Duration("interval", interval),
			slog.Duration("settle", settle),
		)
	}

	logger := x.Logger()

	if settle < interval {
		logger.WarnContext(ctx, "Settle delay is shorter than polling interval."+
			" Files may be processed before they are complete.")
	}

	grouping := groupTogether

	switch {
	case x.Args.Has("Grouping"):
		grouping, err = x.Args.Choice("Grouping", groupSeparate, groupSubdirectory, groupTogether)
		if err != nil {
			return nil, 0, err
		}

	case x.Args.Has("HonourDirectories"):
		honour, err := x.Args.Bool("HonourDirectories")
		if err != nil {
			return nil, 0, err
		}

		if honour {
			grouping = groupSubdirectory
		}
	}

	logger.InfoContext(ctx, "watching",
		slog.Any("directories", dirs),
		slog.Duration("interval", interval),
		slog.Duration("settle", settle),
		slog.String("grouping", grouping),
	)

	return newWatcher(dirs, settle, grouping, logger), interval, nil
}

// fileEntry tracks one file between scans.
type fileEntry struct {
	size      int64
	changed   time.Time
	present   bool
	ready     bool
	processed bool
}

// watcher remembers the files seen under a set of directories, keyed by
// parent directory and then by path.
type watcher struct {
	dirs     []string
	settle   time.Duration
	grouping string
	now      func() time.Time
	cache    map[string]map[string]*fileEntry
	logger   log.Logger
}

func newWatcher(dirs []string, settle time.Duration, grouping string, logger log.Logger) *watcher {
	return &watcher{
		dirs:     dirs,
		settle:   settle,
		grouping: grouping,
		now:      time.Now,
		cache:    make(map[string]map[string]*fileEntry),
		logger:   logger,
	}
}

// scan walks every directory and updates the cache. Files that vanished
// are forgotten. The returned errors do not stop the walk.
func (w *watcher) scan() []error {
	now := w.now()

	for _, files := range w.cache {
		for _, e := range files {
			e.present = false
		}
	}

	var errs []error

	for _, dir := range w.dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				errs = append(errs, err)

				if d != nil && d.IsDir() && path != dir {
					return fs.SkipDir
				}

				return nil
			}

			if !d.Type().IsRegular() {
				return nil
			}

			fi, err := d.Info()
			if err != nil {
				errs = append(errs, err)

				return nil
			}

			w.observe(filepath.Dir(path), path, fi.Size(), now)

			return nil
		})
		if err != nil {
			errs = append(errs, err)
		}
	}

	for parent, files := range w.cache {
		maps.DeleteFunc(files, func(_ string, e *fileEntry) bool { return !e.present })

		if len(files) == 0 {
			delete(w.cache, parent)
		}
	}

	return errs
}

func (w *watcher) observe(parent, path string, size int64, now time.Time) {
	files, ok := w.cache[parent]
	if !ok {
		files = make(map[string]*fileEntry)
		w.cache[parent] = files
	}

	e, ok := files[path]
	if !ok {
		files[path] = &fileEntry{size: size, changed: now, present: true}

		return
	}

	e.present = true

	if e.size != size {
		e.size, e.changed, e.ready = size, now, false

		if e.processed {
			w.logger.Debug("processed file changed, queueing again", slog.String("path", path))

			e.processed = false
		}

		return
	}

	if !e.ready && now.Sub(e.changed) >= w.settle {
		e.ready = true
	}
}

// batches returns the groups of ready files to process now. A group is
// withheld while any of its unprocessed files is still settling.
func (w *watcher) batches() [][]string {
	switch w.grouping {
	case groupSeparate:
		var out [][]string

		for _, path := range w.paths(nil, func(e *fileEntry) bool { return e.ready && !e.processed }) {
			out = append(out, []string{path})
		}

		return out

	case groupSubdirectory:
		var out [][]string

		for _, parent := range slices.Sorted(maps.Keys(w.cache)) {
			if b := w.group([]string{parent}); len(b) > 0 {
				out = append(out, b)
			}
		}

		return out

	default:
		if b := w.group(nil); len(b) > 0 {
			return [][]string{b}
		}

		return nil
	}
}

func (w *watcher) group(parents []string) []string {
	pending := w.paths(parents, func(e *fileEntry) bool { return !e.processed })
	if len(pending) == 0 {
		return nil
	}

	ready := w.paths(parents, func(e *fileEntry) bool { return e.ready && !e.processed })
	if len(ready) != len(pending) {
		return nil
	}

	return ready
}

// paths returns the sorted paths under parents (every parent if nil)
// whose entries satisfy keep.
func (w *watcher) paths(parents []string, keep func(*fileEntry) bool) []string {
	if parents == nil {
		parents = slices.Collect(maps.Keys(w.cache))
	}

	var out []string

	for _, parent := range parents {
		for path, e := range w.cache[parent] {
			if keep(e) {
				out = append(out, path)
			}
		}
	}

	slices.Sort(out)

	return out
}

func (w *watcher) done(batch []string) {
	for _, path := range batch {
		if e, ok := w.cache[filepath.Dir(path)][path]; ok {
			e.processed = true
		}
	}
}

func (w *watcher) counts() (pending, ready, processed int) {
	for _, files := range w.cache {
		for _, e := range files {
			switch {
			case e.processed:
				processed++
			case e.ready:
				ready++
			default:
				pending++
			}
		}
	}

	return pending, ready, processed
}

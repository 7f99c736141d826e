package state

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"

	"github.com/ardnew/automaton/log"
)

// Loader turns a list of paths into state items.
type Loader interface {
	Load(ctx context.Context, paths []string) (*State, error)
}

// FileLoader loads files from the local filesystem. YAML and JSON files
// describe items directly; any other file becomes a single item of kind
// [KindFile] carrying its name, size, extension and content hash.
type FileLoader struct {
	logger log.Logger
	limit  int
}

// LoaderOption configures a FileLoader.
type LoaderOption func(*FileLoader)

// WithLogger sets the logger used for load progress.
func WithLogger(l log.Logger) LoaderOption {
	return func(f *FileLoader) { f.logger = l }
}

// WithConcurrency bounds the number of files read at once.
// Values below 1 select the number of CPUs.
func WithConcurrency(n int) LoaderOption {
	return func(f *FileLoader) { f.limit = n }
}

// NewFileLoader returns a FileLoader configured by opts.
func NewFileLoader(opts ...LoaderOption) *FileLoader {
	f := &FileLoader{}

	for _, opt := range opts {
		opt(f)
	}

	if f.limit < 1 {
		f.limit = runtime.NumCPU()
	}

	return f
}

// Load reads every path, expanding directories recursively, and returns the
// items in path order. Files are read concurrently; the first failure cancels
// the rest.
func (f *FileLoader) Load(ctx context.Context, paths []string) (*State, error) {
	files, err := expand(paths)
	if err != nil {
		return nil, err
	}

	results := make([][]*Item, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.limit)

	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			items, err := f.loadFile(path)
			if err != nil {
				return err
			}

			results[i] = items

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := New()
	for _, items := range results {
		out.Items = append(out.Items, items...)
	}

	f.logger.DebugContext(ctx, "loaded files",
		slog.Int("files", len(files)),
		slog.Int("items", out.Len()),
	)

	return out, nil
}

func expand(paths []string) ([]string, error) {
	var out []string

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, ErrNotFound.With(slog.String("path", p))
			}

			return nil, ErrReadFile.Wrap(err).With(slog.String("path", p))
		}

		if !info.IsDir() {
			out = append(out, p)

			continue
		}

		var found []string

		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.Type().IsRegular() {
				found = append(found, path)
			}

			return nil
		})
		if err != nil {
			return nil, ErrReadFile.Wrap(err).With(slog.String("path", p))
		}

		slices.Sort(found)
		out = append(out, found...)
	}

	return out, nil
}

func (f *FileLoader) loadFile(path string) ([]*Item, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, ErrReadFile.Wrap(err).With(slog.String("path", path))
	}
	defer file.Close()

	ra := readahead.NewReader(file)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadFile.Wrap(err).With(slog.String("path", path))
	}

	f.logger.Trace("read file",
		slog.String("path", path),
		slog.Int("bytes", len(data)),
	)

	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".yaml", ".yml", ".json":
		items, err := parseDocuments(data)
		if err != nil {
			return nil, ErrParseFile.Wrap(err).With(slog.String("path", path))
		}

		for _, it := range items {
			it.Source = path
		}

		return items, nil
	}

	return []*Item{{
		Kind: KindFile,
		Metadata: Metadata{
			"Filename":  path,
			"Size":      strconv.Itoa(len(data)),
			"Extension": ext,
			"Hash":      strconv.FormatUint(xxh3.Hash(data), 16),
		},
		Source: path,
	}}, nil
}

// document is the YAML/JSON shape of one item.
type document struct {
	Kind     string           `yaml:"kind"`
	ID       string           `yaml:"id"`
	Refs     []string         `yaml:"refs"`
	Metadata map[string]any   `yaml:"metadata"`
	Elements []map[string]any `yaml:"elements"`
}

var documentKeys = []string{"kind", "id", "refs", "metadata", "elements"}

// parseDocuments accepts a single mapping or a sequence of mappings. A
// mapping using none of the document keys is taken as the metadata of a
// single table item.
func parseDocuments(data []byte) ([]*Item, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	var entries []map[string]any

	switch v := raw.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		entries = append(entries, v)
	case []any:
		for i, e := range v {
			m, ok := e.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("entry %d is not a mapping", i)
			}

			entries = append(entries, m)
		}
	default:
		return nil, fmt.Errorf("unsupported document type %T", raw)
	}

	items := make([]*Item, 0, len(entries))

	for _, m := range entries {
		it, err := toItem(m)
		if err != nil {
			return nil, err
		}

		items = append(items, it)
	}

	return items, nil
}

func toItem(m map[string]any) (*Item, error) {
	structured := slices.ContainsFunc(documentKeys, func(k string) bool {
		_, ok := m[k]

		return ok
	})

	if !structured {
		return &Item{Kind: KindTable, Metadata: flatten(m)}, nil
	}

	// Round-trip through YAML to decode into the typed shape.
	b, err := yaml.Marshal(m)
	if err != nil {
		return nil, err
	}

	var doc document
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, err
	}

	it := &Item{
		Kind:     doc.Kind,
		ID:       doc.ID,
		Refs:     doc.Refs,
		Metadata: flatten(doc.Metadata),
	}

	if it.Kind == "" {
		it.Kind = KindTable
	}

	for _, e := range doc.Elements {
		it.Elements = append(it.Elements, flatten(e))
	}

	return it, nil
}

func flatten(m map[string]any) Metadata {
	if m == nil {
		return Metadata{}
	}

	out := make(Metadata, len(m))

	for k, v := range m {
		switch tv := v.(type) {
		case string:
			out[k] = tv
		case nil:
			out[k] = ""
		case map[string]any, []any:
			b, err := yaml.MarshalWithOptions(tv, yaml.Flow(true))
			if err != nil {
				out[k] = fmt.Sprint(tv)
			} else {
				out[k] = strings.TrimSpace(string(b))
			}
		default:
			out[k] = fmt.Sprint(tv)
		}
	}

	return out
}

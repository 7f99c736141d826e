package lang

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"

	"github.com/ardnew/automaton/op"
)

// globalCache stores compiled scripts keyed by source hash and registry.
var globalCache sync.Map

type entry struct {
	once   sync.Once
	script *Script
	err    error
}

// CompileReader reads a whole script from r and compiles it. Results are
// cached per source text and registry, so recompiling an unchanged script
// is cheap.
func CompileReader(ctx context.Context, r io.Reader, opts ...Option) (*Script, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).With(slog.String("source", "reader"))
	}

	return compileCached(ctx, string(data), opts...)
}

func compileCached(ctx context.Context, source string, opts ...Option) (*Script, error) {
	o := makeOptions(opts...)
	if o.registry == nil {
		return nil, ErrRegistry
	}

	hash := xxh3.HashString(source)
	key := strconv.FormatUint(hash, 36) + ":" + fmt.Sprintf("%p", o.registry)

	value, hit := globalCache.LoadOrStore(key, new(entry))
	e := value.(*entry)

	o.logger.TraceContext(ctx, "cache lookup",
		slog.String("source_hash", strconv.FormatUint(hash, 16)),
		slog.Bool("cache_hit", hit),
	)

	e.once.Do(func() { e.script, e.err = Compile(ctx, source, opts...) })

	if e.script == nil {
		return nil, e.err
	}

	// Callers own the returned nodes.
	out := &Script{
		Feedback: e.script.Feedback,
		failed:   e.script.failed,
		parsed:   e.script.parsed,
	}
	if e.script.Ops != nil {
		out.Ops = make([]*op.Node, len(e.script.Ops))
		for i, n := range e.script.Ops {
			out.Ops[i] = n.Clone()
		}
	}

	return out, e.err
}

// ClearCache removes all cached scripts.
func ClearCache() {
	globalCache.Clear()
}

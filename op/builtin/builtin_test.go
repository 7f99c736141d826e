package builtin

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/automaton/lang"
	"github.com/ardnew/automaton/log"
	"github.com/ardnew/automaton/op"
	"github.com/ardnew/automaton/state"
)

// recorder registers test operations that log their invocations.
type recorder struct {
	mu    sync.Mutex
	calls []string
	sizes []int
}

func (r *recorder) record(name string, x *op.Exec) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, name)
	r.sizes = append(r.sizes, x.State.Len())
}

func (r *recorder) count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0

	for _, c := range r.calls {
		if c == name {
			n++
		}
	}

	return n
}

// ops returns Count and Body, which succeed, Miss, which fails, and Mutate,
// which adds an item and a parameter and then fails.
func (r *recorder) ops() []op.Operation {
	return []op.Operation{
		{
			Doc: op.Doc{Name: "Count"},
			Run: func(_ context.Context, x *op.Exec) op.Outcome {
				r.record("Count", x)

				return op.Succeeded()
			},
		},
		{
			Doc: op.Doc{Name: "Body"},
			Run: func(_ context.Context, x *op.Exec) op.Outcome {
				r.record("Body", x)

				return op.Succeeded()
			},
		},
		{
			Doc: op.Doc{Name: "Miss"},
			Run: func(_ context.Context, x *op.Exec) op.Outcome {
				r.record("Miss", x)

				return op.Failed()
			},
		},
		{
			Doc: op.Doc{Name: "Mutate"},
			Run: func(_ context.Context, x *op.Exec) op.Outcome {
				r.record("Mutate", x)
				x.State.Items = append(x.State.Items, &state.Item{Kind: "scratch"})
				x.Params["touched"] = "yes"

				return op.Failed()
			},
		},
	}
}

type harness struct {
	t   *testing.T
	rec *recorder
	reg *op.Registry
	d   *op.Dispatcher
	log *bytes.Buffer
}

func newHarness(t *testing.T, extra ...op.Operation) *harness {
	t.Helper()

	h := &harness{t: t, rec: &recorder{}, log: &bytes.Buffer{}}

	reg, err := Registry(append(h.rec.ops(), extra...)...)
	require.NoError(t, err)

	h.reg = reg
	h.d = op.NewDispatcher(reg, op.WithLogger(
		log.Make(h.log, log.WithLevel(log.LevelDebug), log.WithPretty(false)),
	))

	return h
}

// run compiles src and dispatches it against st and params.
func (h *harness) run(src string, st *state.State, params state.Params) op.Outcome {
	h.t.Helper()

	return h.runContext(context.Background(), src, st, params)
}

func (h *harness) runContext(
	ctx context.Context,
	src string,
	st *state.State,
	params state.Params,
) op.Outcome {
	h.t.Helper()

	s, err := lang.Compile(ctx, src, lang.WithRegistry(h.reg))
	require.NoError(h.t, err, "%v", s.Feedback)

	if st == nil {
		st = state.New()
	}

	if params == nil {
		params = state.Params{}
	}

	return h.d.Dispatch(ctx, st, params, s.Ops...)
}

func TestRegistry_AllOperations(t *testing.T) {
	reg, err := Registry()
	require.NoError(t, err)

	assert.Len(t, reg.Names(), len(Operations()))

	for _, name := range []string{
		"AllOf", "Coalesce", "Negate", "Always", "Spawn", "SilenceWarnings",
		"MaskLogs", "Succeed", "Fail", "Raise", "SetParameter", "DroverDebug",
	} {
		_, ok := reg.Lookup(name)
		assert.True(t, ok, name)
	}
}

func TestRegistry_Extra(t *testing.T) {
	_, err := Registry(op.Operation{Doc: op.Doc{Name: "and"}})
	require.ErrorIs(t, err, op.ErrDuplicate)
}

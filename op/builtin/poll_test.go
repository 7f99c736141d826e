package builtin

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/automaton/log"
	"github.com/ardnew/automaton/op"
	"github.com/ardnew/automaton/state"
)

func writeFile(t *testing.T, path, content string) string {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

type clock struct{ now time.Time }

func (c *clock) advance(d time.Duration) { c.now = c.now.Add(d) }

func testWatcher(t *testing.T, grouping string) (*watcher, *clock, string) {
	t.Helper()

	dir := t.TempDir()
	c := &clock{now: time.Unix(1_700_000_000, 0)}

	w := newWatcher([]string{dir}, time.Minute, grouping, log.Logger{})
	w.now = func() time.Time { return c.now }

	return w, c, dir
}

func TestWatcher_SettlesBeforeBatching(t *testing.T) {
	w, c, dir := testWatcher(t, groupTogether)

	a := writeFile(t, filepath.Join(dir, "a.dat"), "1")
	b := writeFile(t, filepath.Join(dir, "sub", "b.dat"), "2")

	require.Empty(t, w.scan())
	assert.Empty(t, w.batches())

	c.advance(30 * time.Second)
	require.Empty(t, w.scan())
	assert.Empty(t, w.batches())

	c.advance(31 * time.Second)
	require.Empty(t, w.scan())
	require.Equal(t, [][]string{{a, b}}, w.batches())

	w.done([]string{a, b})

	pending, ready, processed := w.counts()
	assert.Equal(t, [3]int{0, 0, 2}, [3]int{pending, ready, processed})

	c.advance(time.Hour)
	require.Empty(t, w.scan())
	assert.Empty(t, w.batches())
}

func TestWatcher_WithholdsGroupWhileSettling(t *testing.T) {
	w, c, dir := testWatcher(t, groupTogether)

	a := writeFile(t, filepath.Join(dir, "a.dat"), "1")
	w.scan()
	c.advance(2 * time.Minute)
	w.scan()

	b := writeFile(t, filepath.Join(dir, "b.dat"), "2")
	w.scan()
	assert.Empty(t, w.batches(), "b is still settling")

	c.advance(2 * time.Minute)
	w.scan()
	assert.Equal(t, [][]string{{a, b}}, w.batches())
}

func TestWatcher_Grouping(t *testing.T) {
	tests := []struct {
		grouping string
		want     func(a, b, c string) [][]string
	}{
		{groupSeparate, func(a, b, c string) [][]string { return [][]string{{a}, {b}, {c}} }},
		{groupSubdirectory, func(a, b, c string) [][]string { return [][]string{{a, b}, {c}} }},
		{groupTogether, func(a, b, c string) [][]string { return [][]string{{a, b, c}} }},
	}

	for _, tt := range tests {
		t.Run(tt.grouping, func(t *testing.T) {
			w, clk, dir := testWatcher(t, tt.grouping)

			a := writeFile(t, filepath.Join(dir, "a.dat"), "1")
			b := writeFile(t, filepath.Join(dir, "b.dat"), "2")
			c := writeFile(t, filepath.Join(dir, "z", "c.dat"), "3")

			w.scan()
			clk.advance(2 * time.Minute)
			w.scan()

			assert.Equal(t, tt.want(a, b, c), w.batches())
		})
	}

	t.Run("subdirectory waits per directory", func(t *testing.T) {
		w, clk, dir := testWatcher(t, groupSubdirectory)

		a := writeFile(t, filepath.Join(dir, "a.dat"), "1")
		w.scan()
		clk.advance(2 * time.Minute)

		writeFile(t, filepath.Join(dir, "z", "c.dat"), "3")
		w.scan()

		assert.Equal(t, [][]string{{a}}, w.batches())
	})
}

func TestWatcher_ChangedFileIsRequeued(t *testing.T) {
	w, c, dir := testWatcher(t, groupSeparate)

	a := writeFile(t, filepath.Join(dir, "a.dat"), "1")
	w.scan()
	c.advance(2 * time.Minute)
	w.scan()
	w.done([]string{a})

	writeFile(t, a, "grown")
	c.advance(time.Second)
	w.scan()
	assert.Empty(t, w.batches())

	pending, _, processed := w.counts()
	assert.Equal(t, 1, pending)
	assert.Zero(t, processed)

	c.advance(2 * time.Minute)
	w.scan()
	assert.Equal(t, [][]string{{a}}, w.batches())
}

func TestWatcher_ForgetsRemovedFiles(t *testing.T) {
	w, _, dir := testWatcher(t, groupTogether)

	a := writeFile(t, filepath.Join(dir, "sub", "a.dat"), "1")
	w.scan()
	require.Len(t, w.cache, 1)

	require.NoError(t, os.Remove(a))
	w.scan()
	assert.Empty(t, w.cache)
}

func TestPollDirectories_ProcessesUntilCancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.bin"), "alpha")
	writeFile(t, filepath.Join(dir, "b.bin"), "beta")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var batches []int

	capture := op.Operation{
		Doc: op.Doc{Name: "Capture"},
		Run: func(_ context.Context, x *op.Exec) op.Outcome {
			batches = append(batches, x.State.Len())
			cancel()

			return op.Succeeded()
		},
	}

	h := newHarness(t, capture)
	st := state.New()

	out := h.runContext(ctx,
		`PollDirectories(Directories = '`+dir+`', PollInterval = 0.01, SettleDelay = 0){ Capture(); };`,
		st, nil)

	require.True(t, out.IsError())
	require.ErrorIs(t, out.Err(), context.Canceled)
	assert.Equal(t, []int{2}, batches)
	assert.Equal(t, 2, st.Len())
	assert.Contains(t, h.log.String(), "Settle delay is shorter than polling interval")
}

func TestPollDirectories_ChildFailureEndsLoop(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.bin"), "alpha")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	h := newHarness(t)

	out := h.runContext(ctx,
		`PollDirectories(Directories = '`+dir+`', PollInterval = 0, SettleDelay = 0){ Miss(); };`,
		nil, nil)

	assert.Equal(t, op.StatusFailure, out.Status)
	assert.Equal(t, 1, h.rec.count("Miss"))
}

func TestPollDirectories_InvalidArguments(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, filepath.Join(dir, "f"), "x")

	tests := []struct {
		name string
		args string
		err  error
	}{
		{"not a directory", `Directories = '` + file + `'`, ErrNotDirectory},
		{"missing", `Directories = '` + filepath.Join(dir, "nope") + `'`, ErrNotDirectory},
		{"empty list", `Directories = ';'`, op.ErrInvalidArgument},
		{"negative interval", `Directories = '` + dir + `', PollInterval = -1`, op.ErrInvalidArgument},
		{"negative delay", `Directories = '` + dir + `', SettleDelay = -1`, op.ErrInvalidArgument},
		{"bad grouping", `Directories = '` + dir + `', Grouping = sometimes`, op.ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)

			out := h.run(`PollDirectories(`+tt.args+`){ Body(); };`, nil, nil)

			require.True(t, out.IsError())
			require.ErrorIs(t, out.Err(), tt.err)
		})
	}
}

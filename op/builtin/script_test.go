package builtin

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/automaton/lang"
	"github.com/ardnew/automaton/op"
)

func writeScript(t *testing.T, name, src string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))

	return path
}

func TestCompileScript(t *testing.T) {
	t.Cleanup(lang.ClearCache)

	good := writeScript(t, "good.atm", "Count(); Body();")
	unknown := writeScript(t, "unknown.atm", "Zzzzqqq();")
	broken := writeScript(t, "broken.atm", "Body(")

	tests := []struct {
		name   string
		path   string
		action string
		status op.Status
		calls  int
	}{
		{"run", good, "run", op.StatusSuccess, 2},
		{"execute", good, "execute", op.StatusSuccess, 2},
		{"run prefix", good, "r", op.StatusSuccess, 2},
		{"validate", good, "validate", op.StatusSuccess, 0},
		{"lint", good, "lint", op.StatusSuccess, 0},
		{"parse", good, "parse", op.StatusSuccess, 0},
		{"parse unknown", unknown, "parse", op.StatusSuccess, 0},
		{"validate unknown", unknown, "validate", op.StatusFailure, 0},
		{"run unknown", unknown, "run", op.StatusFailure, 0},
		{"parse broken", broken, "parse", op.StatusFailure, 0},
		{"bad action", good, "explode", op.StatusError, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)

			out := h.run(`CompileScript(Filename = `+op.Quote(tt.path)+
				`, Actions = `+tt.action+`);`, nil, nil)

			assert.Equal(t, tt.status, out.Status, out.String())
			assert.Equal(t, tt.calls, len(h.rec.calls))
		})
	}
}

func TestCompileScript_LogsFeedback(t *testing.T) {
	t.Cleanup(lang.ClearCache)

	h := newHarness(t)
	path := writeScript(t, "fuzzy.atm", "Bdy();")

	out := h.run(`CompileScript(Filename = `+op.Quote(path)+`);`, nil, nil)
	require.True(t, out.OK(), out.String())

	assert.Empty(t, h.rec.calls)
	assert.Contains(t, h.log.String(), "Compilation: OK")
	assert.Contains(t, h.log.String(), "Bdy")
}

func TestCompileScript_MissingFile(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "absent.atm")

	out := h.run(`CompileScript(Filename = `+op.Quote(path)+`, Actions = run);`, nil, nil)

	require.True(t, out.IsError())
	assert.ErrorIs(t, out.Err(), ErrScript)
	assert.ErrorIs(t, out.Err(), os.ErrNotExist)
}

func TestCompileScript_SelfReference(t *testing.T) {
	t.Cleanup(lang.ClearCache)

	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "self.atm")
	src := `Count(); CompileScript(Filename = ` + op.Quote(path) + `, Actions = run);`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))

	out := h.run(`CompileScript(Filename = `+op.Quote(path)+`, Actions = run);`, nil, nil)

	require.True(t, out.IsError())
	assert.ErrorIs(t, out.Err(), ErrScript)
	assert.Equal(t, maxScriptDepth, h.rec.count("Count"))
}

package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/automaton/op"
)

func TestLogic(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		status op.Status
		calls  []string
	}{
		{"and empty", `And();`, op.StatusSuccess, nil},
		{"and short circuit", `And(){ Miss(); Count(); };`, op.StatusFailure, []string{"Miss"}},
		{"and all", `AllOf(){ Count(); Body(); };`, op.StatusSuccess, []string{"Count", "Body"}},
		{"and error", `And(){ Throw(); Count(); };`, op.StatusError, nil},
		{"or", `Or(){ Miss(); Count(); };`, op.StatusSuccess, []string{"Miss", "Count"}},
		{"or first wins", `Or(){ Count(); Body(); };`, op.StatusSuccess, []string{"Count"}},
		{"or swallows error", `Coalesce(){ Throw(); Count(); };`, op.StatusSuccess, []string{"Count"}},
		{"or none", `Or(){ Miss(); Miss(); };`, op.StatusFailure, []string{"Miss", "Miss"}},
		{"or empty", `Or();`, op.StatusFailure, nil},
		{"anyof empty", `AnyOf();`, op.StatusError, nil},
		{"anyof", `AnyOf(){ Miss(); Body(); };`, op.StatusSuccess, []string{"Miss", "Body"}},
		{"not empty", `Not();`, op.StatusSuccess, nil},
		{"not success", `Not(){ Miss(); Count(); Body(); };`, op.StatusFailure, []string{"Miss", "Count"}},
		{"not failures", `Not(){ Miss(); Throw(); };`, op.StatusSuccess, []string{"Miss"}},
		{"noneof empty", `NoneOf();`, op.StatusError, nil},
		{"noneof", `Negate(){ Miss(); };`, op.StatusSuccess, []string{"Miss"}},
		{"ifelse then", `IfElse(){ Count(); Body(); Miss(); };`, op.StatusSuccess, []string{"Count", "Body"}},
		{"ifelse else", `IfElse(){ Miss(); Body(); Count(); };`, op.StatusSuccess, []string{"Miss", "Count"}},
		{"ifelse no else", `IfElse(){ Miss(); Body(); };`, op.StatusSuccess, []string{"Miss"}},
		{"ifelse branch fails", `IfElse(){ Count(); Miss(); };`, op.StatusError, []string{"Count", "Miss"}},
		{"ifelse condition error", `IfElse(){ Throw(); Body(); Count(); };`, op.StatusError, nil},
		{"ifelse one child", `IfElse(){ Count(); };`, op.StatusError, nil},
		{"ifelse four children", `IfElse(){ Count(); Count(); Count(); Count(); };`, op.StatusError, nil},
		{"ignore", `Ignore(){ Miss(); Throw(); Count(); };`, op.StatusSuccess, []string{"Miss", "Count"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)

			out := h.run(tt.src, nil, nil)

			assert.Equal(t, tt.status, out.Status, out.String())
			assert.Equal(t, tt.calls, h.rec.calls)
		})
	}
}

func TestIfElse_BranchFailureWrapsCause(t *testing.T) {
	h := newHarness(t)

	out := h.run(`IfElse(){ Count(); Throw(Message = 'boom'); };`, nil, nil)

	require.True(t, out.IsError())
	require.ErrorIs(t, out.Err(), op.ErrChildFailed)
	require.ErrorIs(t, out.Err(), op.ErrThrown)
	assert.ErrorContains(t, out.Err(), "boom")
}

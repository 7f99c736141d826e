package repl

import (
	"context"
	"strings"
	"testing"

	"github.com/ardnew/automaton/lang"
	"github.com/ardnew/automaton/log"
	"github.com/ardnew/automaton/op"
	"github.com/ardnew/automaton/op/builtin"
	"github.com/ardnew/automaton/state"
)

func newSession(t *testing.T) *Session {
	t.Helper()

	reg, err := builtin.Registry()
	if err != nil {
		t.Fatal(err)
	}

	return &Session{
		Dispatcher: op.NewDispatcher(reg),
		State:      state.New(),
		Params:     state.Params{},
		Logger:     log.Logger{},
		Severity:   lang.SeverityWarning,
	}
}

func TestSession_StatePersistsBetweenStatements(t *testing.T) {
	s := newSession(t)
	ctx := context.Background()

	r := s.exec(ctx, `DefineParameter(Key = mode, Value = fast);`)
	if !r.outcome.OK() {
		t.Fatalf("first statement: %v", r.outcome)
	}

	r = s.exec(ctx, `Expr(Expression = 'params["mode"] == "fast"');`)
	if !r.outcome.OK() {
		t.Fatalf("parameter did not persist: %v", r.outcome)
	}

	if !strings.Contains(r.render(), "success") {
		t.Errorf("render() = %q", r.render())
	}

	if !strings.Contains(s.describeParams(), "mode = fast") {
		t.Errorf("describeParams() = %q", s.describeParams())
	}

	s.reset()

	if len(s.Params) != 0 || s.State.Len() != 0 {
		t.Errorf("reset left params=%v items=%d", s.Params, s.State.Len())
	}
}

func TestSession_Outcomes(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"failure", `False();`, "failure"},
		{"error", `Throw(Message = boom);`, "boom"},
		{"compile error", `Fals(`, lang.ErrCompile.Error()},
		{"feedback", `Tru();`, "Selecting operation 'True'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSession(t)

			got := s.exec(context.Background(), tt.src).render()
			if !strings.Contains(got, tt.want) {
				t.Errorf("render() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestSession_CancelledStatement(t *testing.T) {
	s := newSession(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := s.exec(ctx, `Sleep(Seconds = 60);`)
	if !r.outcome.IsError() {
		t.Errorf("outcome = %v, want an error", r.outcome)
	}
}

func TestSession_Describe(t *testing.T) {
	s := newSession(t)

	if got := s.describeState(); !strings.Contains(got, "(empty)") {
		t.Errorf("describeState() = %q", got)
	}

	s.State.Merge(state.New(&state.Item{Kind: "image"}, &state.Item{Kind: "image"}))

	if got := s.describeState(); !strings.Contains(got, "2 items") || !strings.Contains(got, "image") {
		t.Errorf("describeState() = %q", got)
	}

	if got := s.describeOps(""); !strings.Contains(got, "ForEachDistinct") {
		t.Errorf("describeOps() = %q", got)
	}

	if got := s.describeOps("maskparam"); !strings.Contains(got, "Behaviour") {
		t.Errorf("describeOps(maskparam) = %q", got)
	}

	if got := s.describeOps("zzzz"); !strings.Contains(got, "not understood") {
		t.Errorf("describeOps(zzzz) = %q", got)
	}
}

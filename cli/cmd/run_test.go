package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ardnew/automaton/log"
)

// TestRunScriptWithData tests that a non-script input is loaded as data
// before the script runs.
func TestRunScriptWithData(t *testing.T) {
	dir := t.TempDir()
	script := writeTemp(t, dir, "check.atm",
		"# automaton\nExpr(Expression = 'count == 1 && params[\"mode\"] == \"fast\"');\n")
	blob := writeTemp(t, dir, "blob.bin", "not a script (\n")

	r := &Run{
		Param:     map[string]string{"mode": "fast"},
		WaitForks: true,
		Severity:  "warning",
		Files:     []string{blob, script},
	}

	var out bytes.Buffer
	if err := r.run(context.Background(), &out, log.Logger{}); err != nil {
		t.Fatalf("run() error = %v\n%s", err, out.String())
	}
}

func TestRunOutcomes(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr error
		wantOut string
	}{
		{name: "success", src: "# automaton\nTrue();"},
		{name: "failure", src: "# automaton\nFalse();", wantErr: ErrFailed},
		{name: "error", src: "# automaton\nThrow(Message = boom);", wantErr: ErrDispatch},
		{name: "compile error", src: "# automaton\nTrue(", wantErr: ErrCompile, wantOut: "Error:"},
		{name: "shared state", src: "# automaton\nDefineParameter(Key = a, Value = 1);\nExpr(Expression = 'params[\"a\"] == \"1\"');"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTemp(t, t.TempDir(), "s.atm", tt.src)

			r := &Run{WaitForks: true, Severity: "warning", Files: []string{path}}

			var out bytes.Buffer

			err := r.run(context.Background(), &out, log.Logger{})

			switch {
			case tt.wantErr == nil && err != nil:
				t.Fatalf("run() error = %v", err)
			case tt.wantErr != nil && !errors.Is(err, tt.wantErr):
				t.Fatalf("run() error = %v, want %v", err, tt.wantErr)
			}

			if !strings.Contains(out.String(), tt.wantOut) {
				t.Errorf("output %q does not contain %q", out.String(), tt.wantOut)
			}
		})
	}
}

// TestRunPrintFeedback tests that warnings are printed on request.
func TestRunPrintFeedback(t *testing.T) {
	path := writeTemp(t, t.TempDir(), "s.atm", "Tru();")

	r := &Run{PrintFeedback: true, Severity: "warning", Files: []string{path}}

	var out bytes.Buffer
	if err := r.run(context.Background(), &out, log.Logger{}); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	for _, want := range []string{path, "Warning: ", "Selecting operation 'True'"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output %q does not contain %q", out.String(), want)
		}
	}
}

func TestRunParams(t *testing.T) {
	params, err := (&Run{Param: map[string]string{" mode ": "fast"}}).params()
	if err != nil {
		t.Fatal(err)
	}

	if params["mode"] != "fast" {
		t.Errorf("params() = %v", params)
	}

	if _, err := (&Run{Param: map[string]string{"": "x"}}).params(); !errors.Is(err, ErrInvalidParam) {
		t.Errorf("params() error = %v, want ErrInvalidParam", err)
	}
}

package cli

import (
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

func resolveFlag(t *testing.T, r kong.Resolver, name string) any {
	t.Helper()

	val, err := r.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: name}})
	if err != nil {
		t.Fatalf("Resolve(%s) error = %v", name, err)
	}

	return val
}

func TestResolve(t *testing.T) {
	const conf = `
log_level: debug
log-format: text
log-pretty: false
include:
  - /opt/lib
  - 42
repl-param:
  mode: fast
  n: 3
pprof-mode:
`

	r, err := resolve(strings.NewReader(conf))
	if err != nil {
		t.Fatal(err)
	}

	for name, want := range map[string]any{
		"log-level":  "debug",
		"log-format": "text",
		"log-pretty": "false",
		"pprof-mode": nil,
		"missing":    nil,
	} {
		if got := resolveFlag(t, r, name); got != want {
			t.Errorf("%s = %#v, want %#v", name, got, want)
		}
	}

	inc, ok := resolveFlag(t, r, "include").([]any)
	if !ok || len(inc) != 2 || inc[0] != "/opt/lib" || inc[1] != "42" {
		t.Errorf("include = %#v", resolveFlag(t, r, "include"))
	}

	param, ok := resolveFlag(t, r, "repl-param").(map[string]any)
	if !ok || param["mode"] != "fast" || param["n"] != "3" {
		t.Errorf("repl-param = %#v", resolveFlag(t, r, "repl-param"))
	}
}

func TestResolveEmpty(t *testing.T) {
	r, err := resolve(strings.NewReader(""))
	if err != nil {
		t.Fatalf("resolve(empty) error = %v", err)
	}

	if got := resolveFlag(t, r, "log-level"); got != nil {
		t.Errorf("log-level = %v, want nil", got)
	}
}

func TestResolveInvalid(t *testing.T) {
	if _, err := resolve(strings.NewReader("log-level: [unterminated")); err == nil {
		t.Error("resolve() should reject malformed YAML")
	}
}

// TestRunWithConfig tests that configuration values reach the parsed flags
// and that the command line overrides them.
func TestRunWithConfig(t *testing.T) {
	var cli struct {
		Log  logConfig `embed:"" prefix:"log-"`
		Name string
	}

	conf := `log_time_layout: Kitchen
name: from-config
`

	r, err := resolve(strings.NewReader(conf))
	if err != nil {
		t.Fatal(err)
	}

	var l logConfig

	parser, err := kong.New(&cli, kong.Resolvers(r), l.vars(), kong.Exit(func(int) {}))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := parser.Parse([]string{"--name=from-args"}); err != nil {
		t.Fatal(err)
	}

	if cli.Log.TimeLayout != "Kitchen" {
		t.Errorf("TimeLayout = %q, want Kitchen", cli.Log.TimeLayout)
	}

	if cli.Name != "from-args" {
		t.Errorf("Name = %q, want from-args", cli.Name)
	}
}

package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeTemp writes content to name under dir and returns its path.
func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	return path
}

func names(srcs []source) []string {
	out := make([]string, len(srcs))
	for i, s := range srcs {
		out[i] = s.name
	}

	return out
}

// TestReadSourcesEmpty tests that an empty source list is an error.
func TestReadSourcesEmpty(t *testing.T) {
	_, err := readSources(context.Background(), nil)
	if !errors.Is(err, ErrNoInput) {
		t.Errorf("readSources(nil) error = %v, want ErrNoInput", err)
	}
}

// TestReadSourcesOrder tests that files are read in the order given.
func TestReadSourcesOrder(t *testing.T) {
	dir := t.TempDir()
	a := writeTemp(t, dir, "a.atm", "True();")
	b := writeTemp(t, dir, "b.atm", "False();")

	srcs, err := readSources(context.Background(), []string{b, a})
	if err != nil {
		t.Fatal(err)
	}

	if len(srcs) != 2 || string(srcs[0].data) != "False();" || string(srcs[1].data) != "True();" {
		t.Errorf("readSources() = %v", names(srcs))
	}
}

// TestReadSourcesDuplicates tests deduplication across repeated,
// relative/absolute, and symlinked paths.
func TestReadSourcesDuplicates(t *testing.T) {
	dir := t.TempDir()
	a := writeTemp(t, dir, "a.atm", "True();")

	link := filepath.Join(dir, "link.atm")
	if err := os.Symlink(a, link); err != nil {
		t.Skipf("symlink: %v", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	rel, err := filepath.Rel(wd, a)
	if err != nil {
		t.Fatal(err)
	}

	srcs, err := readSources(context.Background(), []string{a, a, rel, link})
	if err != nil {
		t.Fatal(err)
	}

	if len(srcs) != 1 || srcs[0].name != a {
		t.Errorf("readSources() = %v, want only %q", names(srcs), a)
	}
}

// TestReadSourcesSearchPath tests that relative names fall back to the
// search path.
func TestReadSourcesSearchPath(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	writeTemp(t, second, "lib/setup.atm", "True();")

	ctx := WithSearchPath(context.Background(), []string{first, second})

	srcs, err := readSources(ctx, []string{"lib/setup.atm"})
	if err != nil {
		t.Fatal(err)
	}

	want, _ := filepath.EvalSymlinks(filepath.Join(second, "lib", "setup.atm"))
	if len(srcs) != 1 || srcs[0].path != want {
		t.Errorf("readSources() path = %v, want %q", srcs, want)
	}

	if _, err := readSources(ctx, []string{"lib/missing.atm"}); !errors.Is(err, ErrReadInput) {
		t.Errorf("missing file error = %v, want ErrReadInput", err)
	}
}

// TestReadSourcesNonexistent tests that every unreadable file is reported.
func TestReadSourcesNonexistent(t *testing.T) {
	dir := t.TempDir()
	a := writeTemp(t, dir, "a.atm", "True();")

	_, err := readSources(context.Background(), []string{
		filepath.Join(dir, "x"), a, filepath.Join(dir, "y"),
	})
	if !errors.Is(err, ErrReadInput) {
		t.Fatalf("error = %v, want ErrReadInput", err)
	}

	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) || len(joined.Unwrap()) < 2 {
		t.Errorf("error %v should report both missing files", err)
	}
}

// TestSourceIsScript tests detection of the script marker line.
func TestSourceIsScript(t *testing.T) {
	tests := []struct {
		data string
		want bool
	}{
		{"# automaton script\nTrue();", true},
		{"#!/usr/bin/env AUTOMATON\n", true},
		{"# plain comment\nTrue();", false},
		{"True(); # automaton", false},
		{"", false},
		{"\n# automaton", false},
	}

	for _, tt := range tests {
		if got := (source{data: []byte(tt.data)}).isScript(); got != tt.want {
			t.Errorf("isScript(%q) = %v, want %v", tt.data, got, tt.want)
		}
	}
}

// TestParseSeverity tests severity names.
func TestParseSeverity(t *testing.T) {
	for name, want := range map[string]string{
		"debug":   "debug",
		"WARNING": "warning",
		"error":   "error",
		"bogus":   "info",
	} {
		if got := parseSeverity(name).String(); got != want {
			t.Errorf("parseSeverity(%q) = %s, want %s", name, got, want)
		}
	}
}

package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/automaton/lang"
	"github.com/ardnew/automaton/log"
	"github.com/ardnew/automaton/op"
)

const defaultEditor = "vi"

// editScriptCommand implements [tea.ExecCommand] for the edit-compile-retry
// loop. It writes the previous script to a temp file, opens the user's
// editor, and compiles the result. On compile errors the user is prompted
// to re-edit; declining discards the script.
type editScriptCommand struct {
	ctxFunc  func() context.Context
	registry *op.Registry
	logger   log.Logger
	content  string

	// Set by Run.
	source string
	script *lang.Script

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editScriptCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editScriptCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editScriptCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit-compile-retry loop.
func (c *editScriptCommand) Run() error {
	ctx := c.ctxFunc()

	f, err := os.CreateTemp(os.TempDir(), "automaton-repl-*.atm")
	if err != nil {
		return err
	}

	tmpPath := f.Name()

	defer os.Remove(tmpPath)

	f.Close()

	content := c.content

	for {
		if err := os.WriteFile(tmpPath, []byte(content), 0o600); err != nil {
			return err
		}

		data, err := runEditor(ctx, c.stdin, c.stdout, c.stderr, tmpPath)
		if err != nil {
			return err
		}

		// An emptied file cancels the edit.
		if strings.TrimSpace(string(data)) == "" {
			return nil
		}

		script, err := lang.Compile(ctx, string(data),
			lang.WithRegistry(c.registry),
			lang.WithLogger(c.logger),
		)

		c.logger.TraceContext(
			ctx,
			"editor compile attempt",
			slog.Int("content_length", len(data)),
			slog.Bool("success", err == nil),
		)

		c.source = string(data)

		if err == nil {
			c.script = script

			return nil
		}

		fmt.Fprintf(c.stderr, "\n%s\n", err)

		for _, m := range script.Feedback {
			if m.Severity >= lang.SeverityError {
				fmt.Fprintf(c.stderr, "  %s\n", m)
			}
		}

		fmt.Fprintf(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return nil
		}

		response := strings.TrimSpace(strings.ToLower(scanner.Text()))
		if response == "n" || response == "no" {
			return nil
		}

		content = c.source
	}
}

// runEditor launches the user's editor on the given file path and returns
// the edited file content.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) ([]byte, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	cmd := exec.CommandContext(ctx, editor, path)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return nil, err
	}

	return os.ReadFile(path)
}

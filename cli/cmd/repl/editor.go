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

	"github.com/goccy/go-yaml"

	"github.com/ardnew/holtzman/log"
)

const defaultEditor = "vi"

// editIndent is the indentation of the YAML document being edited.
const editIndent = 2

// editBindingsCommand implements [tea.ExecCommand] for the edit-decode-retry
// loop. It writes the bindings as YAML to a temp file, opens the user's
// editor, and decodes the result. On a decode error the user is prompted to
// re-edit; declining exits the program.
type editBindingsCommand struct {
	bindings map[string]any
	ctxFunc  func() context.Context
	result   map[string]any
	logger   log.Logger
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editBindingsCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editBindingsCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editBindingsCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit loop. A document left empty cancels the edit and
// leaves result nil. If the user declines to re-edit after an error, Run
// returns [ErrEditDeclined].
func (c *editBindingsCommand) Run() error {
	ctx := c.ctxFunc()

	data, err := yaml.MarshalContext(ctx, c.bindings, yaml.Indent(editIndent))
	if err != nil {
		return fmt.Errorf("marshal bindings: %w", err)
	}

	f, err := os.CreateTemp(os.TempDir(), "holtzman-bindings-*.yaml")
	if err != nil {
		return err
	}

	path := f.Name()

	defer os.Remove(path)

	if err := f.Close(); err != nil {
		return err
	}

	for {
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return err
		}

		if err := runEditor(ctx, c.stdin, c.stdout, c.stderr, path); err != nil {
			return err
		}

		if data, err = os.ReadFile(path); err != nil {
			return err
		}

		if strings.TrimSpace(string(data)) == "" {
			return nil
		}

		m, err := decodeBindings(ctx, data)

		c.logger.TraceContext(ctx, "editor decode attempt",
			slog.Int("content_length", len(data)),
			slog.Bool("success", err == nil))

		if err == nil {
			c.result = m

			return nil
		}

		fmt.Fprintf(c.stderr, "\nDecode error: %s\n", err)
		fmt.Fprint(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "n", "no":
			return ErrEditDeclined
		}
	}
}

// decodeBindings decodes a YAML mapping. Other documents are rejected.
func decodeBindings(ctx context.Context, data []byte) (map[string]any, error) {
	var v any
	if err := yaml.UnmarshalContext(ctx, data, &v); err != nil {
		return nil, err
	}

	m, ok := v.(map[string]any)
	if !ok {
		return nil, ErrNotMapping
	}

	return m, nil
}

// runEditor runs the user's editor on the file at path.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	cmd := exec.CommandContext(ctx, editor, path)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}

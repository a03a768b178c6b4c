package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ardnew/holtzman/log"
	"github.com/ardnew/holtzman/tmpl"
)

// Check compiles templates without rendering them and reports each error
// with the offending source line.
type Check struct {
	Templates []string `arg:"" default:"-" help:"Template files or '-' for stdin." name:"template"`
}

// Run executes the check command. Every template is checked; the command
// fails if any of them does.
func (c *Check) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	w := stdoutFrom(ctx)
	failed := 0

	for _, name := range c.Templates {
		report, ok := check(ctx, name)
		if !ok {
			failed++
		}

		if _, err := io.WriteString(w, report); err != nil {
			return ErrWriteOutput.Wrap(err)
		}
	}

	if failed > 0 {
		return ErrCheckFailed.With(
			slog.Int("failed", failed),
			slog.Int("total", len(c.Templates)),
		)
	}

	return nil
}

// check compiles the named template and returns a report of the result.
func check(ctx context.Context, name string) (report string, ok bool) {
	path, text, err := readTemplate(ctx, name)
	if err != nil {
		return fmt.Sprintf("%s: %v\n", path, err), false
	}

	t, err := tmpl.CompileString(ctx, text,
		tmpl.WithName(path),
		tmpl.WithLogger(log.Default()))
	if err != nil {
		log.DebugContext(ctx, "check failed", slog.Any("error", err))

		msg := tmpl.FormatError(err, text)
		if !strings.HasSuffix(msg, "\n") {
			msg += "\n"
		}

		return path + ":" + msg, false
	}

	vars := t.Variables()
	if len(vars) == 0 {
		return path + ": ok\n", true
	}

	return fmt.Sprintf("%s: ok (%s)\n", path, strings.Join(vars, ", ")), true
}

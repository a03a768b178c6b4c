package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/ardnew/holtzman/log"
	"github.com/ardnew/holtzman/tmpl"
)

// Render renders a template with bindings from data files and assignments.
type Render struct {
	Data `embed:""`

	Output string `help:"Write output to FILE instead of stdout." placeholder:"FILE" short:"o" type:"path"`
	Watch  bool   `help:"Render again whenever the template or a data file changes." short:"w"`

	Template string `arg:"" default:"-" help:"Template file or '-' for stdin." name:"template"`
}

// Run executes the render command.
// No output is written unless rendering succeeds.
//
// With --watch, failures are logged and the command keeps running until
// interrupted.
func (r *Render) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if !r.Watch {
		return r.render(ctx)
	}

	if r.Template == stdinSource || slices.Contains(r.Data.Data, stdinSource) {
		return ErrWatchStdin
	}

	path, err := findTemplate(ctx, r.Template)
	if err != nil {
		return err
	}

	rerender := func(ctx context.Context) {
		// Every edit is new source text; skip the cache so it does not grow.
		if err := r.render(ctx, tmpl.WithCache(false)); err != nil {
			log.ErrorContext(ctx, "render failed", slog.Any("error", err))
		}
	}

	rerender(ctx)

	return watch(ctx, append([]string{path}, r.Data.Data...), rerender)
}

// render compiles the template, loads the bindings and writes the output.
func (r *Render) render(ctx context.Context, opts ...tmpl.Option) error {
	t, err := compileTemplate(ctx, r.Template, opts...)
	if err != nil {
		return err
	}

	bindings, err := r.bindings(ctx)
	if err != nil {
		return err
	}

	out, err := t.RenderContext(ctx, bindings)
	if err != nil {
		return err
	}

	if r.Output != "" {
		if err := os.WriteFile(r.Output, []byte(out), 0o644); err != nil { //nolint:gosec
			return ErrWriteOutput.Wrap(err).With(slog.String("file", r.Output))
		}
	} else if _, err := io.WriteString(stdoutFrom(ctx), out); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	log.DebugContext(ctx, "rendered template",
		slog.String("template", t.Name()),
		slog.Int("bytes", len(out)))

	return nil
}

package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/holtzman/tmpl"
)

// Fmt compiles a template and writes it in the chosen form.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Format as canonical template syntax (default)."`
	JSON   JSON   `cmd:""                    help:"Dump the syntax tree as JSON."`
	YAML   YAML   `cmd:""                    help:"Dump the syntax tree as YAML."`
	AST    AST    `cmd:""                    help:"Print an outline of the syntax tree."`
}

// TemplateArg is the positional template argument shared by the fmt
// commands.
type TemplateArg struct {
	Template string `arg:"" default:"-" help:"Template file or '-' for stdin." name:"template"`
}

// compile compiles the template, annotating errors with the output format.
func (s *TemplateArg) compile(ctx context.Context, format string) (*tmpl.Template, error) {
	t, err := compileTemplate(ctx, s.Template)
	if err != nil {
		return nil, tmpl.WrapError(err).With(slog.String("format", format))
	}

	return t, nil
}

// Native formats a template in canonical syntax. Text is preserved with
// "\" and "{" escaped; tags are written with single spaces.
type Native struct {
	TemplateArg
}

// Run executes the native command.
func (n *Native) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	t, err := n.compile(ctx, "native")
	if err != nil {
		return err
	}

	if err := t.Format(stdoutFrom(ctx)); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}

// JSON dumps a template's syntax tree as JSON.
type JSON struct {
	Indent int `default:"2" help:"Indent width for JSON output (0 for compact)." short:"i"`

	TemplateArg
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	t, err := j.compile(ctx, "json")
	if err != nil {
		return err
	}

	if err := t.FormatJSON(stdoutFrom(ctx), j.Indent); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}

// YAML dumps a template's syntax tree as YAML.
type YAML struct {
	Indent int `default:"2" help:"Indent width for YAML output (0 for flow style)." short:"i"`

	TemplateArg
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	t, err := y.compile(ctx, "yaml")
	if err != nil {
		return err
	}

	if err := t.FormatYAML(ctx, stdoutFrom(ctx), y.Indent); err != nil {
		return ErrYAMLMarshal.Wrap(err)
	}

	return nil
}

// AST prints an indented outline of a template's syntax tree.
type AST struct {
	TemplateArg
}

// Run executes the ast command.
func (a *AST) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	t, err := a.compile(ctx, "ast")
	if err != nil {
		return err
	}

	if err := t.FormatTree(stdoutFrom(ctx)); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}

package tmpl

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/ardnew/holtzman/log"
)

// Template is a compiled template.
//
// A Template is immutable once compiled and may be rendered concurrently
// from multiple goroutines.
type Template struct {
	root   *RootNode
	name   string
	logger log.Logger
	cache  bool
}

func slogName(name string) slog.Attr { return slog.String("template", name) }

// Compile compiles the template read from r. Input is consumed one rune at a
// time and the result is never cached.
func Compile(ctx context.Context, r io.Reader, opts ...Option) (*Template, error) {
	t := newTemplate(opts...)

	t.logger.TraceContext(ctx, "compile start", slog.Bool("cached", false))

	root, err := parse(ctx, NewSource(r), t.logger)
	if err != nil {
		return nil, t.wrap(err)
	}

	t.root = root

	return t, nil
}

// CompileString compiles the template s.
//
// Unless disabled with [WithCache], the compiled tree is cached by the
// content of s, so compiling identical text again (even concurrently) parses
// it only once. Compile errors are cached too.
func CompileString(ctx context.Context, s string, opts ...Option) (*Template, error) {
	t := newTemplate(opts...)

	t.logger.TraceContext(ctx, "compile start", slog.Bool("cached", t.cache))

	var (
		root *RootNode
		err  error
	)

	if t.cache {
		root, err = compileCached(ctx, s, t.logger)
	} else {
		root, err = parse(ctx, NewSource(strings.NewReader(s)), t.logger)
	}

	if err != nil {
		return nil, t.wrap(err)
	}

	t.root = root

	return t, nil
}

// Must returns t if err is nil and panics otherwise.
// It is intended for templates known at init time.
func Must(t *Template, err error) *Template {
	if err != nil {
		panic(err)
	}

	return t
}

// wrap attaches the template name to err.
func (t *Template) wrap(err error) error {
	if t.name == "" {
		return err
	}

	return WrapError(err).With(slogName(t.name))
}

// Name returns the name the template was compiled with, if any.
func (t *Template) Name() string { return t.name }

// Root returns the root of the template's syntax tree.
// The tree must not be modified.
func (t *Template) Root() *RootNode { return t.root }

// Render renders the template with the given bindings.
//
// Bindings may be a map with string keys, a struct (or pointer to one), or a
// [Fielder]. No output is returned if rendering fails.
func (t *Template) Render(bindings any) (string, error) {
	return t.RenderContext(context.Background(), bindings)
}

// RenderContext is like [Template.Render]. ctx is used only for logging.
func (t *Template) RenderContext(ctx context.Context, bindings any) (string, error) {
	start := time.Now()

	r := renderer{scope: NewScope(bindings)}

	if err := r.render(t.root); err != nil {
		t.logger.DebugContext(ctx, "render failed", slog.Any("error", err))

		return "", t.wrap(err)
	}

	t.logger.TraceContext(ctx, "render complete",
		slog.Int("bytes", r.out.Len()),
		slog.Duration("elapsed", time.Since(start)))

	return r.out.String(), nil
}

// Execute renders the template with the given bindings and writes the output
// to w. Nothing is written if rendering fails.
func (t *Template) Execute(w io.Writer, bindings any) error {
	s, err := t.Render(bindings)
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, s)

	return err
}

// Variables returns the sorted, distinct root names of all paths referenced
// by the template, excluding names bound by an enclosing for loop.
func (t *Template) Variables() []string {
	seen := make(map[string]struct{})

	var visit func(n Node, bound []string)

	visit = func(n Node, bound []string) {
		var path Path

		switch n := n.(type) {
		case *VariableNode:
			path = n.Path

		case *IfNode:
			path = n.Path

		case *ForNode:
			path = n.Collection
		}

		if root := path.Root(); root != "" && !slices.Contains(bound, root) {
			seen[root] = struct{}{}
		}

		c, ok := n.(Container)
		if !ok {
			return
		}

		if f, ok := n.(*ForNode); ok {
			bound = append(slices.Clip(bound), f.Var)
		}

		for _, child := range c.Children() {
			visit(child, bound)
		}
	}

	visit(t.root, nil)

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

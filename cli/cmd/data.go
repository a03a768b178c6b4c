package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/holtzman/log"
	"github.com/ardnew/holtzman/tmpl"
)

// Data holds the flags that build a template's bindings.
type Data struct {
	Data []string `help:"YAML or JSON file of bindings, or '-' for stdin (repeatable)."        placeholder:"FILE"      sep:"none" short:"d"`
	Set  []string `help:"Set a binding; VALUE is an expression, else a string (repeatable)." placeholder:"KEY=VALUE" sep:"none" short:"s"`
}

// bindings loads the data files in order, merging each into the result, then
// applies each --set assignment.
func (d *Data) bindings(ctx context.Context) (map[string]any, error) {
	b := make(map[string]any)

	for _, path := range d.Data {
		m, err := readData(ctx, path)
		if err != nil {
			return nil, err
		}

		merge(b, m)
	}

	for _, s := range d.Set {
		if err := assign(b, s); err != nil {
			return nil, err
		}
	}

	log.TraceContext(ctx, "bindings loaded",
		slog.Int("files", len(d.Data)),
		slog.Int("assignments", len(d.Set)),
		slog.Int("keys", len(b)))

	return b, nil
}

// readData decodes the mapping stored in the named file. JSON is read as
// YAML.
func readData(ctx context.Context, path string) (map[string]any, error) {
	var (
		data []byte
		err  error
	)

	if path == stdinSource {
		data, err = io.ReadAll(stdinFrom(ctx))
	} else {
		data, err = os.ReadFile(path)
	}

	if err != nil {
		return nil, ErrReadData.Wrap(err).With(slog.String("file", path))
	}

	var m map[string]any
	if err := yaml.UnmarshalContext(ctx, data, &m); err != nil {
		return nil, ErrDecodeData.Wrap(err).With(slog.String("file", path))
	}

	return m, nil
}

// merge copies src into dst. Mappings present in both are merged
// recursively; any other value in src replaces the one in dst.
func merge(dst, src map[string]any) {
	for key, value := range src {
		sm, ok := value.(map[string]any)
		if !ok {
			dst[key] = value

			continue
		}

		dm, ok := dst[key].(map[string]any)
		if !ok {
			dm = make(map[string]any, len(sm))
			dst[key] = dm
		}

		merge(dm, sm)
	}
}

// assign applies a "KEY=VALUE" binding to b. KEY is a dotted path whose
// intermediate mappings are created as needed.
//
// VALUE is evaluated as an expression over the current bindings, so numbers,
// lists, and maps may be given literally and other bindings referenced by
// name. Values that do not compile as expressions are bound as strings.
func assign(b map[string]any, s string) error {
	key, value, ok := strings.Cut(s, "=")

	path := tmpl.ParsePath(strings.TrimSpace(key))
	if !ok || len(path) == 0 {
		return ErrInvalidBinding.With(slog.String("binding", s))
	}

	for _, name := range path {
		if name == "" {
			return ErrInvalidBinding.With(slog.String("binding", s))
		}
	}

	m := b
	for _, name := range path[:len(path)-1] {
		next, ok := m[name].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[name] = next
		}

		m = next
	}

	m[path[len(path)-1]] = evaluate(value, b)

	return nil
}

func evaluate(value string, env map[string]any) any {
	program, err := expr.Compile(value, expr.Env(env))
	if err != nil {
		return value
	}

	v, err := expr.Run(program, env)
	if err != nil {
		return value
	}

	return v
}

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/klauspost/readahead"

	"github.com/ardnew/holtzman/log"
	"github.com/ardnew/holtzman/tmpl"
)

// stdinName names templates read from standard input.
const stdinName = "<stdin>"

// compileTemplate compiles the named template. Standard input is compiled as
// it is read; files are compiled through the template cache unless opts
// disable it.
func compileTemplate(
	ctx context.Context,
	name string,
	opts ...tmpl.Option,
) (*tmpl.Template, error) {
	if name == stdinSource {
		return tmpl.Compile(ctx, stdinFrom(ctx),
			tmpl.WithName(stdinName),
			tmpl.WithLogger(log.Default()))
	}

	path, err := findTemplate(ctx, name)
	if err != nil {
		return nil, err
	}

	return tmpl.CompileFile(ctx, path,
		append([]tmpl.Option{tmpl.WithLogger(log.Default())}, opts...)...)
}

// readTemplate returns the display name and text of the named template.
func readTemplate(ctx context.Context, name string) (string, string, error) {
	if name == stdinSource {
		data, err := io.ReadAll(stdinFrom(ctx))
		if err != nil {
			return stdinName, "", ErrReadTemplate.Wrap(err)
		}

		return stdinName, string(data), nil
	}

	path, err := findTemplate(ctx, name)
	if err != nil {
		return name, "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return path, "", ErrReadTemplate.Wrap(err)
	}
	defer f.Close()

	ra := readahead.NewReader(f)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return path, "", ErrReadTemplate.Wrap(err)
	}

	return path, string(data), nil
}

package cmd

import (
	"context"
	"log/slog"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/holtzman/log"
)

// defaultConfigIndent is the number of spaces per indentation level in the
// generated configuration file.
const defaultConfigIndent = 2

// configFileMode is the permission mode of the generated configuration file.
const configFileMode os.FileMode = 0o600

// ignoredFlags are flag name prefixes never written to the configuration.
var ignoredFlags = []string{"help", "version", "pprof"}

// Init writes a configuration file containing the current global flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)
	if ktx == nil {
		panic("internal error: kong context undefined")
	}

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	if _, err := os.Stat(confPath); err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	data, err := yaml.MarshalContext(ctx, flagValues(ktx), yaml.Indent(defaultConfigIndent))
	if err != nil {
		return ErrYAMLMarshal.Wrap(err)
	}

	if err := os.WriteFile(confPath, data, configFileMode); err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	log.DebugContext(ctx, "initialized configuration file",
		slog.String("path", confPath))

	return nil
}

// flagValues returns the values of the application's global flags keyed by
// flag name. Unset strings and empty lists are omitted.
func flagValues(ktx *kong.Context) map[string]any {
	values := make(map[string]any)

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(ignoredFlags, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		if v, ok := configValue(ktx.FlagValue(flag)); ok {
			values[flag.Name] = v
		}
	}

	return values
}

// configValue converts a flag value to the form written to the
// configuration file.
func configValue(v any) (any, bool) {
	switch v := v.(type) {
	case nil:
		return nil, false

	case bool, int, int64, float64:
		return v, true

	case string:
		return v, v != ""

	case []string:
		return v, len(v) > 0
	}

	// Named string types, such as enumerated flag values.
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.String {
		return rv.String(), rv.Len() > 0
	}

	return nil, false
}

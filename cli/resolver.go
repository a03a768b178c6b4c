package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// resolve returns a [kong.ConfigurationLoader] for YAML configuration files.
//
// Keys name flags either directly ("log-level") or with underscores
// ("log_level"). Nested mappings are joined with hyphens, so these are
// equivalent:
//
//	log-level: debug
//
//	log:
//	  level: debug
//
// Sequences are joined into a single comma-separated value. Flags given on
// the command line override values from the file.
func resolve(ctx context.Context) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}

		if len(bytes.TrimSpace(data)) == 0 {
			return config{}, nil
		}

		var m map[string]any
		if err := yaml.UnmarshalContext(ctx, data, &m); err != nil {
			return nil, err
		}

		c := make(config)
		c.flatten("", m)

		return c, nil
	}
}

// config implements [kong.Resolver] over a flat map of flag values.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	if value, ok := c[flag.Name]; ok {
		return value, nil
	}

	if value, ok := c[strings.ReplaceAll(flag.Name, "-", "_")]; ok {
		return value, nil
	}

	return nil, nil //nolint:nilnil
}

func (c config) flatten(prefix string, m map[string]any) {
	for key, value := range m {
		if prefix != "" {
			key = prefix + "-" + key
		}

		if sub, ok := value.(map[string]any); ok {
			c.flatten(key, sub)

			continue
		}

		if value = scalar(value); value != nil {
			c[key] = value
		}
	}
}

// scalar converts a decoded YAML value to a form kong can map onto a flag.
// Numbers are formatted as strings and sequences are joined with commas.
func scalar(v any) any {
	switch v := v.(type) {
	case nil:
		return nil

	case bool, string:
		return v

	case int:
		return strconv.Itoa(v)

	case int64:
		return strconv.FormatInt(v, 10)

	case uint64:
		return strconv.FormatUint(v, 10)

	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)

	case []any:
		parts := make([]string, 0, len(v))
		for _, e := range v {
			if s := scalar(e); s != nil {
				parts = append(parts, fmt.Sprint(s))
			}
		}

		return strings.Join(parts, ",")

	default:
		return fmt.Sprint(v)
	}
}

package tmpl

import (
	"github.com/ardnew/holtzman/log"
)

// Option configures how a [Template] is compiled and rendered.
type Option func(*Template)

// WithName labels the template. The name is included in errors and logs.
func WithName(name string) Option {
	return func(t *Template) {
		t.name = name
	}
}

// WithLogger sets the logger used to trace compilation and rendering.
// The zero value [log.Logger] discards all records.
func WithLogger(logger log.Logger) Option {
	return func(t *Template) {
		t.logger = logger
	}
}

// WithCache enables or disables the compile cache for [CompileString] and
// [CompileFile]. The cache is enabled by default.
func WithCache(enable bool) Option {
	return func(t *Template) {
		t.cache = enable
	}
}

// applyDefaults sets the default options.
func applyDefaults(t *Template) {
	t.cache = true
}

// applyOptions applies functional options to t.
func applyOptions(t *Template, opts ...Option) {
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
}

func newTemplate(opts ...Option) *Template {
	t := new(Template)

	applyDefaults(t)
	applyOptions(t, opts...)

	if t.name != "" {
		t.logger = t.logger.With(slogName(t.name))
	}

	return t
}

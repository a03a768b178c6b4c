package cmd

import (
	"context"

	"github.com/ardnew/holtzman/cli/cmd/repl"
	"github.com/ardnew/holtzman/log"
	"github.com/ardnew/holtzman/pkg"
)

// Repl starts an interactive session that renders each line as a template.
type Repl struct {
	Data `embed:""`
}

// Run executes the repl command. History is stored in the cache directory.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	bindings, err := r.bindings(ctx)
	if err != nil {
		return err
	}

	return repl.Run(ctx, bindings, cacheDir(ctx), log.Default())
}

// cacheDir returns the cache directory named by the parser's variables,
// falling back to the package default.
func cacheDir(ctx context.Context) string {
	if ktx := kongContextFrom(ctx); ktx != nil {
		if dir := ktx.Model.Vars()[CacheIdentifier]; dir != "" {
			return dir
		}
	}

	return pkg.CacheDir()
}

package cmd

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/ardnew/mung"

	"github.com/ardnew/holtzman/pkg"
)

// stdinSource is the template name that reads from standard input.
const stdinSource = "-"

// searchPath returns the directories searched for templates: those given
// with --path, followed by those listed in the path environment variable.
// Directories that do not exist are omitted.
func searchPath(ctx context.Context) []string {
	prefix := searchPathFrom(ctx)

	dirs := make([]string, 0, len(prefix))
	for _, dir := range prefix {
		dirs = append(dirs, kong.ExpandPath(dir))
	}

	return filepath.SplitList(mung.Make(
		mung.WithSubjectItems(os.Getenv(pkg.EnvVar("path"))),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(dirs...),
		mung.WithFilter(isDir),
	).String())
}

// findTemplate returns the path of the named template file. Names that
// exist as given are returned unchanged. Otherwise relative names are looked
// up in each directory of the search path in order.
func findTemplate(ctx context.Context, name string) (string, error) {
	if isFile(name) {
		return name, nil
	}

	var dirs []string
	if !filepath.IsAbs(name) {
		dirs = searchPath(ctx)

		for _, dir := range dirs {
			if path := filepath.Join(dir, name); isFile(path) {
				return path, nil
			}
		}
	}

	return "", ErrTemplateNotFound.With(
		slog.String("name", name),
		slog.Any("search", dirs),
	)
}

func isDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}

func isFile(path string) bool {
	info, err := os.Stat(path)

	return err == nil && !info.IsDir()
}

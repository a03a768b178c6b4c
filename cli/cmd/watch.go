package cmd

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ardnew/holtzman/log"
)

// watchDebounce is how long file events must settle before fn is called.
const watchDebounce = 100 * time.Millisecond

// watch calls fn each time one of the files at paths is written or
// recreated, until ctx is done. A burst of events yields a single call.
//
// The parent directories are watched rather than the files themselves, so
// files replaced by rename (as many editors save) are still followed.
func watch(ctx context.Context, paths []string, fn func(context.Context)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return ErrWatch.Wrap(err)
	}
	defer func() { _ = w.Close() }()

	files := make(map[string]struct{}, len(paths))
	dirs := make(map[string]struct{})

	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return ErrWatch.Wrap(err).With(slog.String("file", path))
		}

		files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}

	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			return ErrWatch.Wrap(err).With(slog.String("dir", dir))
		}
	}

	log.DebugContext(ctx, "watching files", slog.Any("files", paths))

	timer := time.NewTimer(watchDebounce)
	timer.Stop()

	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			if _, ok := files[filepath.Clean(event.Name)]; !ok {
				continue
			}

			log.TraceContext(ctx, "watch event",
				slog.String("file", event.Name),
				slog.String("op", event.Op.String()))

			timer.Reset(watchDebounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}

			log.WarnContext(ctx, "watch error", slog.Any("error", err))

		case <-timer.C:
			fn(ctx)
		}
	}
}

package tmpl

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"

	"github.com/ardnew/holtzman/log"
)

// cache stores compiled trees keyed by the hash of their source text.
var cache sync.Map

// entry is a cached compilation. The tree is built at most once, by the
// first caller to reach it.
type entry struct {
	once sync.Once
	root *RootNode
	err  error
}

// compileCached returns the compiled tree of source, compiling it on first
// use.
func compileCached(
	ctx context.Context,
	source string,
	logger log.Logger,
) (*RootNode, error) {
	hash := xxh3.HashString(source)
	key := strconv.FormatUint(hash, 36) + ":" + strconv.Itoa(len(source))

	value, hit := cache.LoadOrStore(key, new(entry))

	e, ok := value.(*entry)
	if !ok {
		return nil, NewError("invalid cache entry").
			With(slog.String("key", key))
	}

	logger.TraceContext(ctx, "cache lookup",
		slog.String("source_hash", strconv.FormatUint(hash, 16)),
		slog.Bool("cache_hit", hit))

	e.once.Do(func() {
		e.root, e.err = parse(ctx, NewSource(strings.NewReader(source)), logger)
	})

	return e.root, e.err
}

// CompileFile compiles the template stored in the named file. The file is
// read through a read-ahead buffer and compiled via the cache, as with
// [CompileString]. If no name is given with [WithName], the file path is used.
func CompileFile(ctx context.Context, path string, opts ...Option) (*Template, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).With(slog.String("path", path))
	}
	defer f.Close()

	ra := readahead.NewReader(f)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).With(slog.String("path", path))
	}

	return CompileString(ctx, string(data), append([]Option{WithName(path)}, opts...)...)
}

// ClearCache removes all cached compilations.
func ClearCache() {
	cache.Clear()
}

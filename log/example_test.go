package log_test

import (
	"log/slog"
	"os"

	"github.com/ardnew/holtzman/log"
)

func Example() {
	logger := log.Make(os.Stdout, log.WithTimeLayout("none"))

	logger.Info("template rendered",
		slog.String("name", "greeting.tmpl"),
		slog.Int("bytes", 42))

	// Output:
	// level=INFO msg=template rendered name=greeting.tmpl bytes=42
}

func Example_plain() {
	logger := log.Make(os.Stdout,
		log.WithPretty(false),
		log.WithTimeLayout("none"),
		log.WithLevel(log.LevelWarn))

	logger.Info("not shown")
	logger.Warn("cache disabled", slog.Bool("cache", false))

	// Output:
	// level=WARN msg="cache disabled" cache=false
}

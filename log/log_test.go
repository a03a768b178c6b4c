package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestMake_Defaults(t *testing.T) {
	logger := Make(nil)

	if logger.Level() != DefaultLevel {
		t.Errorf("got level %v, want %v", logger.Level(), DefaultLevel)
	}

	if logger.Format() != DefaultFormat {
		t.Errorf("got format %v, want %v", logger.Format(), DefaultFormat)
	}

	if !logger.config.pretty || logger.config.caller {
		t.Errorf("unexpected defaults %+v", logger.config)
	}
}

func TestLogger_ZeroValue(t *testing.T) {
	var logger Logger

	// None of these may panic.
	logger.Info("dropped")
	logger.TraceContext(context.Background(), "dropped")
	logger = logger.With(slog.String("k", "v")).Wrap(WithLevel(LevelTrace))

	if logger.Logger != nil {
		t.Error("derived logger is not a no-op")
	}

	if logger.Enabled(context.Background(), LevelError) {
		t.Error("zero logger reports enabled")
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name   string
		log    func(Logger, string, ...slog.Attr)
		min    Level
		logged bool
	}{
		{"trace at trace", Logger.Trace, LevelTrace, true},
		{"trace at debug", Logger.Trace, LevelDebug, false},
		{"debug at info", Logger.Debug, LevelInfo, false},
		{"info at info", Logger.Info, LevelInfo, true},
		{"warn at error", Logger.Warn, LevelError, false},
		{"error at warn", Logger.Error, LevelWarn, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			tt.log(Make(&buf, WithLevel(tt.min)), "message")

			if got := buf.Len() > 0; got != tt.logged {
				t.Errorf("got logged=%v, want %v: %q", got, tt.logged, buf.String())
			}
		})
	}
}

func TestLogger_JSON(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf,
		WithFormat(FormatJSON),
		WithPretty(false),
		WithLevel(LevelTrace)).With(slog.String("component", "test"))

	logger.Trace("hello", slog.Int("n", 3))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}

	want := map[string]any{
		"level":     "TRACE",
		"msg":       "hello",
		"component": "test",
		"n":         float64(3),
	}

	for k, v := range want {
		if rec[k] != v {
			t.Errorf("%s: got %v, want %v", k, rec[k], v)
		}
	}
}

func TestLogger_Caller(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithCaller(true), WithPretty(false)).Info("where")

	if !strings.Contains(buf.String(), "log_test.go") {
		t.Errorf("caller not reported: %q", buf.String())
	}

	buf.Reset()
	Make(&buf, WithPretty(false)).Info("where")

	if strings.Contains(buf.String(), "source=") {
		t.Errorf("caller reported when disabled: %q", buf.String())
	}
}

func TestLogger_TimeLayout(t *testing.T) {
	tests := []struct {
		layout string
		want   string
	}{
		{"", ""},
		{"none", ""},
		{"RFC3339", "2006-01-02T15:04:05Z07:00"},
		{"rfc-3339 nano", "2006-01-02T15:04:05.999999999Z07:00"},
		{"Kitchen", "3:04PM"},
		{"ms", "Jan _2 15:04:05.000"},
		{"2006/01/02", "2006/01/02"},
	}

	for _, tt := range tests {
		t.Run(tt.layout, func(t *testing.T) {
			if got := resolveTimeLayout(tt.layout); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}

	var buf bytes.Buffer

	Make(&buf, WithTimeLayout("none"), WithPretty(false)).Info("untimed")

	if strings.Contains(buf.String(), "time=") {
		t.Errorf("timestamp written: %q", buf.String())
	}
}

func TestLogger_Wrap(t *testing.T) {
	var buf bytes.Buffer

	base := Make(&buf, WithLevel(LevelError), WithPretty(false))
	wrapped := base.Wrap(WithLevel(LevelDebug))

	base.Info("base")
	wrapped.Info("wrapped")

	if out := buf.String(); strings.Contains(out, "base") || !strings.Contains(out, "wrapped") {
		t.Errorf("unexpected output %q", out)
	}

	if base.Level() != LevelError || wrapped.Level() != LevelDebug {
		t.Errorf("got levels %v and %v", base.Level(), wrapped.Level())
	}
}

func TestLogger_Concurrent(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf)

	var wg sync.WaitGroup

	for i := range 50 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			logger.Info("concurrent", slog.Int("id", i))
		}()
	}

	wg.Wait()

	if lines := strings.Count(buf.String(), "\n"); lines != 50 {
		t.Errorf("got %d lines, want 50", lines)
	}
}

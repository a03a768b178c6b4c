package log

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles used to colorize pretty output. Styles are bound
// to a renderer for the output writer, so colors are dropped when the writer
// is not a terminal.
type palette struct {
	key    lipgloss.Style
	str    lipgloss.Style
	num    lipgloss.Style
	yes    lipgloss.Style
	no     lipgloss.Style
	time   lipgloss.Style
	null   lipgloss.Style
	levels map[Level]lipgloss.Style
}

func newPalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return palette{
		key:  fg("8"),
		str:  fg("6"),
		num:  fg("3"),
		yes:  fg("2"),
		no:   fg("1"),
		time: fg("4"),
		null: fg("8"),
		levels: map[Level]lipgloss.Style{
			LevelTrace: fg("8"),
			LevelDebug: fg("4"),
			LevelInfo:  fg("2").Bold(true),
			LevelWarn:  fg("3").Bold(true),
			LevelError: fg("1").Bold(true),
		},
	}
}

func (p palette) level(l Level) lipgloss.Style {
	best := LevelTrace

	for _, named := range levels {
		if l >= named {
			best = named
		}
	}

	return p.levels[best]
}

// field is a flattened attribute ready for output.
type field struct {
	key   string
	value slog.Value
	style *lipgloss.Style
}

// prettyHandler writes colorized records as aligned text or indented JSON.
type prettyHandler struct {
	opts       *slog.HandlerOptions
	mu         *sync.Mutex
	w          io.Writer
	asJSON     bool
	timeLayout string
	palette    palette
	fields     []field
	prefix     string
}

func newPrettyHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	timeLayout string,
	asJSON bool,
) *prettyHandler {
	return &prettyHandler{
		opts:       opts,
		mu:         &sync.Mutex{},
		w:          w,
		asJSON:     asJSON,
		timeLayout: timeLayout,
		palette:    newPalette(w),
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}

	return level >= minLevel
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.fields = slices.Clip(h.fields)

	for _, a := range attrs {
		c.fields = appendFields(c.fields, h.prefix, a)
	}

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix = h.prefix + name + "."

	return &c
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	var fields []field

	if h.timeLayout != "" && !r.Time.IsZero() {
		fields = append(fields, field{
			key:   slog.TimeKey,
			value: slog.StringValue(r.Time.Format(h.timeLayout)),
			style: &h.palette.time,
		})
	}

	levelStyle := h.palette.level(Level(r.Level))
	fields = append(fields, field{
		key:   slog.LevelKey,
		value: slog.StringValue(strings.ToUpper(Level(r.Level).String())),
		style: &levelStyle,
	})

	if h.opts.AddSource && r.PC != 0 {
		if src := r.Source(); src != nil {
			fields = append(fields, field{
				key:   slog.SourceKey,
				value: slog.StringValue(src.File + ":" + strconv.Itoa(src.Line)),
			})
		}
	}

	fields = append(fields, field{
		key:   slog.MessageKey,
		value: slog.StringValue(r.Message),
	})
	fields = append(fields, h.fields...)

	r.Attrs(func(a slog.Attr) bool {
		fields = appendFields(fields, h.prefix, a)

		return true
	})

	var buf bytes.Buffer

	if h.asJSON {
		h.writeJSON(&buf, fields)
	} else {
		h.writeText(&buf, fields)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

// appendFields flattens a into fields, joining group names with dots.
func appendFields(fields []field, prefix string, a slog.Attr) []field {
	a.Value = a.Value.Resolve()

	if a.Equal(slog.Attr{}) {
		return fields
	}

	if a.Value.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p += a.Key + "."
		}

		for _, g := range a.Value.Group() {
			fields = appendFields(fields, p, g)
		}

		return fields
	}

	return append(fields, field{key: prefix + a.Key, value: a.Value})
}

func (h *prettyHandler) writeText(buf *bytes.Buffer, fields []field) {
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(' ')
		}

		buf.WriteString(h.palette.key.Render(f.key + "="))
		buf.WriteString(h.render(f, f.value.String()))
	}

	buf.WriteByte('\n')
}

func (h *prettyHandler) writeJSON(buf *bytes.Buffer, fields []field) {
	buf.WriteString("{\n")

	for i, f := range fields {
		if i > 0 {
			buf.WriteString(",\n")
		}

		key, _ := json.Marshal(f.key)

		buf.WriteString("  ")
		buf.WriteString(h.palette.key.Render(string(key)))
		buf.WriteString(": ")
		buf.WriteString(h.render(f, jsonValue(f.value)))
	}

	buf.WriteString("\n}\n")
}

// render styles the formatted value s of f according to its kind.
func (h *prettyHandler) render(f field, s string) string {
	if f.style != nil {
		return f.style.Render(s)
	}

	switch f.value.Kind() {
	case slog.KindInt64, slog.KindUint64, slog.KindFloat64, slog.KindDuration:
		return h.palette.num.Render(s)

	case slog.KindBool:
		if f.value.Bool() {
			return h.palette.yes.Render(s)
		}

		return h.palette.no.Render(s)

	case slog.KindTime:
		return h.palette.time.Render(s)

	case slog.KindAny:
		if f.value.Any() == nil {
			return h.palette.null.Render(s)
		}

		return h.palette.str.Render(s)

	default:
		return h.palette.str.Render(s)
	}
}

// jsonValue returns the JSON encoding of v. Values that cannot be encoded
// are written as their string form.
func jsonValue(v slog.Value) string {
	var x any

	switch v.Kind() {
	case slog.KindString:
		x = v.String()

	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)

	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)

	case slog.KindFloat64:
		x = v.Float64()

	case slog.KindBool:
		return strconv.FormatBool(v.Bool())

	case slog.KindDuration:
		x = v.Duration().String()

	case slog.KindTime:
		x = v.Time().Format(time.RFC3339Nano)

	default:
		x = v.Any()
		if err, ok := x.(error); ok {
			x = err.Error()
		}
	}

	b, err := json.Marshal(x)
	if err != nil {
		b, _ = json.Marshal(v.String())
	}

	return string(b)
}

package tmpl

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Kind classifies an [Error].
type Kind int

const (
	// KindUnknown is the kind of errors that do not belong to either family,
	// e.g., I/O failures reading a template source.
	KindUnknown Kind = iota

	// KindInvalidTemplateString reports a malformed or unterminated
	// placeholder or tag.
	KindInvalidTemplateString

	// KindMissingEndStatement reports a block left open at end of input.
	KindMissingEndStatement

	// KindUnexpectedEndStatement reports an end tag with no open block.
	KindUnexpectedEndStatement

	// KindInvalidEscapeSequence reports a backslash not followed by '\' or '{'.
	KindInvalidEscapeSequence

	// KindEmptyVariableString reports a placeholder or tag with no name.
	KindEmptyVariableString

	// KindInvalidVariableName reports a malformed dotted name, or a dotted
	// name used as a loop variable.
	KindInvalidVariableName

	// KindInvalidForLoop reports a for tag missing its "in" keyword.
	KindInvalidForLoop

	// KindMissingVariable reports a render-time path that could not be
	// resolved in any scope frame.
	KindMissingVariable
)

// String returns a string representation of the error kind.
func (k Kind) String() string {
	switch k {
	case KindInvalidTemplateString:
		return "InvalidTemplateString"

	case KindMissingEndStatement:
		return "MissingEndStatement"

	case KindUnexpectedEndStatement:
		return "UnexpectedEndStatement"

	case KindInvalidEscapeSequence:
		return "InvalidEscapeSequence"

	case KindEmptyVariableString:
		return "EmptyVariableString"

	case KindInvalidVariableName:
		return "InvalidVariableName"

	case KindInvalidForLoop:
		return "InvalidForLoop"

	case KindMissingVariable:
		return "MissingVariable"

	default:
		return "Unknown"
	}
}

// IsCompile reports whether k belongs to the compile-time (structural)
// family of errors.
func (k Kind) IsCompile() bool {
	return k >= KindInvalidTemplateString && k <= KindInvalidForLoop
}

// Predefined errors (sentinel values).
//
// Errors returned by this package are derived from these values, and
// [errors.Is] matches any derived error against its sentinel by [Kind].
var (
	ErrInvalidTemplateString = newKindError(
		KindInvalidTemplateString, "invalid template string")
	ErrMissingEndStatement = newKindError(
		KindMissingEndStatement, "missing end statement")
	ErrUnexpectedEndStatement = newKindError(
		KindUnexpectedEndStatement, "unexpected end statement")
	ErrInvalidEscapeSequence = newKindError(
		KindInvalidEscapeSequence, "invalid escape sequence")
	ErrEmptyVariableString = newKindError(
		KindEmptyVariableString, "empty variable string")
	ErrInvalidVariableName = newKindError(
		KindInvalidVariableName, "invalid variable name")
	ErrInvalidForLoop = newKindError(
		KindInvalidForLoop, "invalid for loop")
	ErrMissingVariable = newKindError(
		KindMissingVariable, "missing variable")

	ErrReadInput = NewError("failed to read input")
)

// Error represents a template error with optional position, variable name,
// and structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	kind     Kind
	msg      string
	err      error // Wrapped error (for errors.Unwrap)
	pos      Position
	variable string
	attrs    []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

func newKindError(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<line>:<col>: <msg>: <err>"
	//   2. "<msg>: <variable>"
	//   3. "<msg>"
	//   4. "<err>"
	part := make([]string, 0, 3)

	if e.pos.IsValid() {
		part = append(part, e.pos.String())
	}

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.variable != "" {
		part = append(part, e.variable)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is a sentinel of the same kind as e.
// Errors of KindUnknown only match themselves.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	if e.kind == KindUnknown || t.kind == KindUnknown {
		return e == t || (e.kind == t.kind && e.msg == t.msg && t.msg != "")
	}

	return e.kind == t.kind
}

// Kind returns the error's classification.
func (e *Error) Kind() Kind { return e.kind }

// Position returns the source position the error is anchored at.
// The second result is false for errors without a position.
func (e *Error) Position() (Position, bool) {
	return e.pos, e.pos.IsValid()
}

// Variable returns the dotted variable name of a [KindMissingVariable] error.
func (e *Error) Variable() string { return e.variable }

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+5)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.kind != KindUnknown {
		attrs = append(attrs, slog.String("kind", e.kind.String()))
	}

	if e.pos.IsValid() {
		attrs = append(attrs,
			slog.Int("line", e.pos.Line),
			slog.Int("column", e.pos.Column))
	}

	if e.variable != "" {
		attrs = append(attrs, slog.String("variable", e.variable))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	c := *e
	c.err = err

	return &c
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	c := *e
	c.attrs = newAttrs

	return &c
}

// WithPosition returns a copy of the error anchored at pos.
func (e *Error) WithPosition(pos Position) *Error {
	c := *e
	c.pos = pos

	return &c
}

// WithVariable returns a copy of the error naming the given variable path.
func (e *Error) WithVariable(path Path) *Error {
	c := *e
	c.variable = path.String()

	return &c
}

// FormatError formats err with a snippet of source marking the position the
// error is anchored at. Errors without a position are formatted using their
// Error method alone.
func FormatError(err error, source string) string {
	ee := &Error{}
	if !errors.As(err, &ee) {
		return err.Error()
	}

	pos, ok := ee.Position()
	if !ok {
		return err.Error()
	}

	lines := strings.Split(source, "\n")

	var buf strings.Builder

	buf.WriteString(err.Error())
	buf.WriteRune('\n')

	// Show the offending line if within bounds
	if pos.Line <= len(lines) {
		line := lines[pos.Line-1]

		buf.WriteString("  ")
		buf.WriteString(strconv.Itoa(pos.Line))
		buf.WriteString(" | ")
		buf.WriteString(line)
		buf.WriteRune('\n')

		// +5 accounts for: 2 leading spaces + " | " (3 chars)
		width := len(strconv.Itoa(pos.Line)) + 5

		buf.WriteString(strings.Repeat(" ", width+pos.Column-1))
		buf.WriteString("^\n")
	}

	return buf.String()
}

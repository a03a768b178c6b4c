package tmpl

import (
	"bufio"
	"errors"
	"io"
	"strconv"
)

// EOF is the rune returned by [Source.Current] once input is exhausted.
const EOF rune = -1

// Position identifies a rune in template source. Line and Column are both
// 1-based; columns count runes, not bytes.
type Position struct {
	Line   int `json:"line"   yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

// IsValid reports whether p refers to an actual source location.
func (p Position) IsValid() bool {
	return p.Line > 0 && p.Column > 0
}

// String returns "line:column".
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Source is a one-rune-lookahead character stream over template input.
//
// In addition to the cursor, Source keeps a stack of bookmarked positions.
// The parser bookmarks the start of each construct so that errors can be
// anchored at an opening delimiter instead of wherever the cursor stopped.
type Source struct {
	reader    io.RuneReader
	current   rune
	pos       Position
	bookmarks []Position
	err       error
}

// NewSource returns a Source reading runes from r.
// The first rune is read immediately.
func NewSource(r io.Reader) *Source {
	rr, ok := r.(io.RuneReader)
	if !ok {
		rr = bufio.NewReader(r)
	}

	s := &Source{
		reader: rr,
		pos:    Position{Line: 1, Column: 1},
	}
	s.read()

	return s
}

// Current returns the rune at the cursor, or [EOF] at end of input.
func (s *Source) Current() rune { return s.current }

// Position returns the position of the rune at the cursor.
func (s *Source) Position() Position { return s.pos }

// Advance consumes the rune at the cursor. It has no effect at end of input.
func (s *Source) Advance() {
	if s.current == EOF {
		return
	}

	if s.current == '\n' {
		s.pos.Line++
		s.pos.Column = 1
	} else {
		s.pos.Column++
	}

	s.read()
}

// PushBookmark saves the current position on the bookmark stack.
func (s *Source) PushBookmark() {
	s.bookmarks = append(s.bookmarks, s.pos)
}

// PopBookmark discards the most recently saved position.
func (s *Source) PopBookmark() {
	if n := len(s.bookmarks); n > 0 {
		s.bookmarks = s.bookmarks[:n-1]
	}
}

// Bookmark returns the most recently saved position, or the current position
// if no bookmark is saved.
func (s *Source) Bookmark() Position {
	if n := len(s.bookmarks); n > 0 {
		return s.bookmarks[n-1]
	}

	return s.pos
}

// Err returns the first non-EOF error encountered reading input.
// A read error ends input just like EOF does.
func (s *Source) Err() error { return s.err }

func (s *Source) read() {
	r, _, err := s.reader.ReadRune()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			s.err = err
		}

		s.current = EOF

		return
	}

	s.current = r
}

package tmpl

import (
	"context"
	"log/slog"
	"strings"
	"unicode"

	"github.com/ardnew/holtzman/log"
)

// parser builds a syntax tree from a Source.
//
// Open blocks are tracked with an explicit stack: opening a block saves the
// enclosing container on the stack and makes the new block current; an end
// tag attaches the finished block to the container popped from the stack.
type parser struct {
	src     *Source
	text    strings.Builder
	textPos Position
	current Container
	stack   []Container
	logger  log.Logger
}

// parse reads the whole of src and returns the root of its syntax tree.
func parse(ctx context.Context, src *Source, logger log.Logger) (*RootNode, error) {
	root := &RootNode{nodeBase: nodeBase{pos: src.Position()}}

	p := &parser{
		src:     src,
		current: root,
		logger:  logger,
	}

	err := p.parseTemplate()
	if rerr := src.Err(); rerr != nil {
		return nil, ErrReadInput.Wrap(rerr)
	}

	if err != nil {
		return nil, err
	}

	p.logger.TraceContext(ctx, "parse complete",
		slog.Int("nodes", len(root.Body)),
		slog.String("end", src.Position().String()))

	return root, nil
}

// parseTemplate is the main loop. It dispatches on the current rune until
// end of input.
func (p *parser) parseTemplate() error {
	for {
		switch c := p.src.Current(); c {
		case EOF:
			p.flush()

			if len(p.stack) > 0 {
				return ErrMissingEndStatement.WithPosition(p.current.Pos())
			}

			return nil

		case '\\':
			if err := p.parseEscape(); err != nil {
				return err
			}

		case '{':
			if err := p.parseBrace(); err != nil {
				return err
			}

		default:
			p.appendText(c, p.src.Position())
			p.src.Advance()
		}
	}
}

// appendText adds r to the pending text. pos is the source position of r,
// recorded if r begins a new run of text.
func (p *parser) appendText(r rune, pos Position) {
	if p.text.Len() == 0 {
		p.textPos = pos
	}

	p.text.WriteRune(r)
}

// flush emits the pending text, if any, as a TextNode.
func (p *parser) flush() {
	if p.text.Len() == 0 {
		return
	}

	p.current.appendChild(&TextNode{
		nodeBase: nodeBase{pos: p.textPos},
		Text:     p.text.String(),
	})
	p.text.Reset()
}

// parseEscape handles a backslash, which must be followed by either another
// backslash or an opening brace.
func (p *parser) parseEscape() error {
	pos := p.src.Position()
	p.src.Advance()

	switch c := p.src.Current(); c {
	case '\\', '{':
		p.appendText(c, pos)
		p.src.Advance()

		return nil

	default:
		return ErrInvalidEscapeSequence.WithPosition(pos)
	}
}

// parseBrace handles an opening brace: a placeholder, a tag, or a literal.
func (p *parser) parseBrace() error {
	p.src.PushBookmark()
	p.src.Advance()

	switch p.src.Current() {
	case '{':
		p.src.Advance()
		p.flush()

		return p.parsePlaceholder()

	case '%':
		p.src.Advance()
		p.flush()

		return p.parseTag()

	default:
		// Not a delimiter. The following rune is left for the main loop.
		p.appendText('{', p.src.Bookmark())
		p.src.PopBookmark()

		return nil
	}
}

// fail returns e anchored at the most recent bookmark, which is discarded.
func (p *parser) fail(e *Error) *Error {
	pos := p.src.Bookmark()
	p.src.PopBookmark()

	return e.WithPosition(pos)
}

// parsePlaceholder parses the remainder of a placeholder after "{{".
func (p *parser) parsePlaceholder() error {
	p.skipSpace()

	path, err := p.parsePath()
	if err != nil {
		return err
	}

	if len(path) == 0 {
		return p.fail(ErrEmptyVariableString)
	}

	p.skipSpace()

	if !p.expect('}', '}') {
		return p.fail(ErrInvalidTemplateString)
	}

	p.current.appendChild(&VariableNode{
		nodeBase: nodeBase{pos: p.src.Bookmark()},
		Path:     path,
	})
	p.src.PopBookmark()

	return nil
}

// parseTag parses the remainder of a tag after "{%".
func (p *parser) parseTag() error {
	p.skipSpace()

	switch keyword := p.parseKeyword(); keyword {
	case "if":
		return p.parseIf()

	case "for":
		return p.parseFor()

	case "end":
		return p.parseEnd()

	default:
		return p.fail(ErrInvalidTemplateString.
			With(slog.String("keyword", keyword)))
	}
}

// parseIf parses the remainder of an if tag after its keyword.
func (p *parser) parseIf() error {
	if !p.requireSpace() {
		return p.fail(ErrInvalidTemplateString)
	}

	path, err := p.parseCondition()
	if err != nil {
		return err
	}

	p.open(&IfNode{
		nodeBase: nodeBase{pos: p.src.Bookmark()},
		Path:     path,
	})
	p.src.PopBookmark()

	return nil
}

// parseFor parses the remainder of a for tag after its keyword.
func (p *parser) parseFor() error {
	if !p.requireSpace() {
		return p.fail(ErrInvalidTemplateString)
	}

	p.src.PushBookmark()

	name := p.parseIdentifier()
	if p.src.Current() == '.' {
		return p.fail(ErrInvalidVariableName)
	}

	p.src.PopBookmark()

	if name == "" {
		return p.fail(ErrEmptyVariableString)
	}

	p.skipSpace()

	if p.parseIdentifier() != "in" {
		return p.fail(ErrInvalidForLoop.With(slog.String("var", name)))
	}

	if !p.requireSpace() {
		return p.fail(ErrInvalidTemplateString)
	}

	path, err := p.parseCondition()
	if err != nil {
		return err
	}

	p.open(&ForNode{
		nodeBase:   nodeBase{pos: p.src.Bookmark()},
		Var:        name,
		Collection: path,
	})
	p.src.PopBookmark()

	return nil
}

// parseCondition parses the dotted name ending an if or for tag, and the
// tag's closing delimiter.
func (p *parser) parseCondition() (Path, error) {
	path, err := p.parsePath()
	if err != nil {
		return nil, err
	}

	if len(path) == 0 {
		return nil, p.fail(ErrEmptyVariableString)
	}

	p.skipSpace()

	if !p.expect('%', '}') {
		return nil, p.fail(ErrInvalidTemplateString)
	}

	return path, nil
}

// parseEnd parses the remainder of an end tag after its keyword and closes
// the innermost open block.
func (p *parser) parseEnd() error {
	p.skipSpace()

	if !p.expect('%', '}') {
		return p.fail(ErrInvalidTemplateString)
	}

	n := len(p.stack)
	if n == 0 {
		return p.fail(ErrUnexpectedEndStatement)
	}

	parent := p.stack[n-1]
	p.stack = p.stack[:n-1]

	parent.appendChild(p.current)
	p.current = parent
	p.src.PopBookmark()

	return nil
}

// open makes block the current container.
func (p *parser) open(block Container) {
	p.stack = append(p.stack, p.current)
	p.current = block
}

// parsePath parses a dotted name. It returns an empty Path if no name is
// present at all, and InvalidVariableName, anchored at the start of the
// name, if any segment is empty.
func (p *parser) parsePath() (Path, error) {
	p.src.PushBookmark()

	var path Path

	for {
		seg := p.parseIdentifier()

		if seg == "" {
			if len(path) == 0 && p.src.Current() != '.' {
				p.src.PopBookmark()

				return nil, nil
			}

			return nil, p.fail(ErrInvalidVariableName)
		}

		path = append(path, seg)

		if p.src.Current() != '.' {
			break
		}

		p.src.Advance()
	}

	p.src.PopBookmark()

	return path, nil
}

// parseKeyword consumes and returns the run of non-whitespace runes that
// names a tag. A keyword runs into any adjacent delimiter, so "{% end%}" names
// the keyword "end%}".
func (p *parser) parseKeyword() string {
	var sb strings.Builder

	for r := p.src.Current(); r != EOF && !isSpace(r); r = p.src.Current() {
		sb.WriteRune(r)
		p.src.Advance()
	}

	return sb.String()
}

// parseIdentifier consumes and returns a run of identifier runes, which may
// be empty.
func (p *parser) parseIdentifier() string {
	var sb strings.Builder

	for isIdentifierRune(p.src.Current()) {
		sb.WriteRune(p.src.Current())
		p.src.Advance()
	}

	return sb.String()
}

// skipSpace consumes any whitespace.
func (p *parser) skipSpace() {
	for isSpace(p.src.Current()) {
		p.src.Advance()
	}
}

// requireSpace consumes whitespace and reports whether there was any.
func (p *parser) requireSpace() bool {
	if !isSpace(p.src.Current()) {
		return false
	}

	p.skipSpace()

	return true
}

// expect consumes the given runes in order, stopping at the first mismatch.
// It reports whether all of them were present.
func (p *parser) expect(runes ...rune) bool {
	for _, r := range runes {
		if p.src.Current() != r {
			return false
		}

		p.src.Advance()
	}

	return true
}

// isIdentifierRune reports whether r is an ASCII letter, digit, or underscore.
func isIdentifierRune(r rune) bool {
	return r == '_' ||
		'a' <= r && r <= 'z' ||
		'A' <= r && r <= 'Z' ||
		'0' <= r && r <= '9'
}

func isSpace(r rune) bool {
	return r != EOF && unicode.IsSpace(r)
}

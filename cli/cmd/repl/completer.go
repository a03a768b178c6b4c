package repl

import (
	"maps"
	"reflect"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/holtzman/tmpl"
)

// commands are the available command-mode commands.
var commands = []string{"help", "list", "vars", "tree", "edit", "clear", "quit"}

// keywords begin a {% tag %}.
var keywords = []string{"if", "for", "end"}

// isWordBoundary reports whether r delimits words for completion: space,
// the path separator, and the runes of template delimiters.
func isWordBoundary(r rune) bool {
	switch r {
	case '.', ' ', '\t', '{', '}', '%', '\\':
		return true
	}

	return false
}

func isIdentifierRune(r rune) bool {
	return r == '_' ||
		'a' <= r && r <= 'z' ||
		'A' <= r && r <= 'Z' ||
		'0' <= r && r <= '9'
}

// wordBounds returns the word containing cursor and its byte offsets within
// input. The word is empty when the cursor sits on a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(max(cursor, 0), len(input))

	for start = cursor; start > 0; {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	for end = cursor; end < len(input); {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// parentPath returns the dotted path immediately preceding the word that
// starts at wordStart, e.g. "user.address" for "{{ user.address.ci". It is
// empty unless the word directly follows a dot.
func parentPath(input string, wordStart int) string {
	prefix, ok := strings.CutSuffix(input[:wordStart], ".")
	if !ok {
		return ""
	}

	pos := len(prefix)
	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(prefix[:pos])
		if r != '.' && !isIdentifierRune(r) {
			break
		}

		pos -= size
	}

	return strings.Trim(prefix[pos:], ".")
}

// openTag locates the tag enclosing cursor. It returns the delimiter that
// opened it ("{{" or "{%") and the tag's text up to cursor, or ok false if
// cursor is not inside an unclosed tag.
func openTag(input string, cursor int) (delim, text string, ok bool) {
	before := input[:min(max(cursor, 0), len(input))]

	i := max(strings.LastIndex(before, "{{"), strings.LastIndex(before, "{%"))
	if i < 0 || (i > 0 && before[i-1] == '\\') {
		return "", "", false
	}

	text = before[i+2:]
	if strings.Contains(text, "}}") || strings.Contains(text, "%}") {
		return "", "", false
	}

	return before[i : i+2], text, true
}

// tagCandidates returns the completions for the word starting at wordStart
// inside a tag opened with delim whose text up to the word is text.
func tagCandidates(bindings map[string]any, delim, text, parent string) []string {
	if delim == "{%" {
		switch fields := strings.Fields(text); {
		case len(fields) == 0:
			return keywords

		case len(fields) == 2 && fields[0] == "for" && parent == "":
			return []string{"in"}

		case fields[0] == "end":
			return nil
		}
	}

	if parent == "" {
		return slices.Sorted(maps.Keys(bindings))
	}

	v, ok := tmpl.NewScope(bindings).Resolve(tmpl.ParsePath(parent))
	if !ok {
		return nil
	}

	return childNames(v)
}

// childNames returns the sorted names that can follow v in a path: the
// string keys of a map or the exported fields of a struct.
func childNames(v any) []string {
	if m, ok := v.(map[string]any); ok {
		return slices.Sorted(maps.Keys(m))
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}

		rv = rv.Elem()
	}

	var names []string

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil
		}

		for _, k := range rv.MapKeys() {
			names = append(names, k.String())
		}

	case reflect.Struct:
		t := rv.Type()
		for i := range t.NumField() {
			if f := t.Field(i); f.IsExported() && !f.Anonymous {
				names = append(names, f.Name)
			}
		}

	default:
		return nil
	}

	slices.Sort(names)

	return names
}

// computeMatches returns the fuzzy matches for the word at the cursor,
// ranked best-first, and the word's byte offsets.
//
// In template mode, completions are offered only inside an unclosed tag.
// An empty word offers nothing, except directly after a dot, where every
// child of the parent path is offered.
func (m model) computeMatches() (matches fuzzy.Matches, wordStart, wordEnd int) {
	input := m.input.Value()
	cursor := m.input.Position()

	word, wordStart, wordEnd := wordBounds(input, cursor)

	var candidates []string

	if m.mode == modeCommand {
		if word == "" {
			return nil, wordStart, wordEnd
		}

		candidates = commands
	} else {
		delim, text, ok := openTag(input, wordStart)
		if !ok {
			return nil, wordStart, wordEnd
		}

		parent := parentPath(input, wordStart)
		candidates = tagCandidates(m.bindings, delim, text, parent)

		if word == "" {
			if parent == "" {
				return nil, wordStart, wordEnd
			}

			matches = make(fuzzy.Matches, len(candidates))
			for i, c := range candidates {
				matches[i] = fuzzy.Match{Str: c, Index: i}
			}

			return matches, wordStart, wordEnd
		}
	}

	if len(candidates) == 0 {
		return nil, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), wordStart, wordEnd
}

// renderCandidateBar builds the one-line completion bar, truncated with an
// ellipsis to fit width.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	ellipsis := hintStyle.Render("...")
	reserve := lipgloss.Width(sep) + lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		w := lipgloss.Width(rendered)
		if i > 0 {
			w += lipgloss.Width(sep)
		}

		last := i == len(matches)-1
		if i > 0 && (used+w > width || (!last && used+w+reserve > width)) {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += w
	}

	return b.String()
}

// renderCandidate renders a candidate with its matched runes highlighted.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base, highlight := suggestionStyle, matchStyle
	if selected {
		base, highlight = selectedStyle, selectedMatchStyle
	}

	var b strings.Builder

	for i, r := range match.Str {
		if slices.Contains(match.MatchedIndexes, i) {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	return b.String()
}

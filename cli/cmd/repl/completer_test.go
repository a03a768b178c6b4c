package repl

import (
	"slices"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		cursor int
		word   string
		start  int
		end    int
	}{
		{"path segment", "{{ user.na", 10, "na", 8, 10},
		{"whole input", "abc", 1, "abc", 0, 3},
		{"after space", "{{ ", 3, "", 3, 3},
		{"cursor clamped", "abc", 99, "abc", 0, 3},
		{"mid word", "{{ name }}", 5, "name", 3, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.word || start != tt.start || end != tt.end {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end, tt.word, tt.start, tt.end)
			}
		})
	}
}

func TestParentPath(t *testing.T) {
	tests := []struct {
		input     string
		wordStart int
		want      string
	}{
		{"{{ user.address.ci", 16, "user.address"},
		{"{{ user.", 8, "user"},
		{"{{ user", 3, ""},
		{"{% for x in items.", 18, "items"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parentPath(tt.input, tt.wordStart); got != tt.want {
				t.Errorf("parentPath(%q, %d) = %q, want %q",
					tt.input, tt.wordStart, got, tt.want)
			}
		})
	}
}

func TestOpenTag(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		cursor int
		delim  string
		text   string
		ok     bool
	}{
		{"variable", "{{ na", 5, "{{", " na", true},
		{"tag after closed variable", "{{ a }} {% if b", 15, "{%", " if b", true},
		{"closed", "{{ a }}", 7, "", "", false},
		{"escaped", `\{{ a`, 5, "", "", false},
		{"plain text", "plain", 5, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delim, text, ok := openTag(tt.input, tt.cursor)
			if delim != tt.delim || text != tt.text || ok != tt.ok {
				t.Errorf("openTag(%q, %d) = (%q, %q, %v), want (%q, %q, %v)",
					tt.input, tt.cursor, delim, text, ok, tt.delim, tt.text, tt.ok)
			}
		})
	}
}

func TestTagCandidates(t *testing.T) {
	bindings := map[string]any{
		"user": map[string]any{
			"name": "Ada",
			"age":  36,
		},
		"items": []any{1, 2},
	}

	tests := []struct {
		name   string
		delim  string
		text   string
		parent string
		want   []string
	}{
		{"keywords", "{%", " ", "", keywords},
		{"for in", "{%", " for x ", "", []string{"in"}},
		{"end", "{%", " end ", "", nil},
		{"if condition", "{%", " if ", "", []string{"items", "user"}},
		{"variable", "{{", " ", "", []string{"items", "user"}},
		{"children", "{{", " user.", "user", []string{"age", "name"}},
		{"missing parent", "{{", " nope.", "nope", nil},
		{"scalar parent", "{{", " user.name.", "user.name", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tagCandidates(bindings, tt.delim, tt.text, tt.parent)
			if !slices.Equal(got, tt.want) {
				t.Errorf("tagCandidates() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChildNames(t *testing.T) {
	type person struct {
		Name     string
		Email    string
		password string
	}

	tests := []struct {
		name string
		v    any
		want []string
	}{
		{"map any", map[string]any{"b": 1, "a": 2}, []string{"a", "b"}},
		{"typed map", map[string]int{"y": 1, "x": 2}, []string{"x", "y"}},
		{"non-string keys", map[int]int{1: 1}, nil},
		{"struct", person{}, []string{"Email", "Name"}},
		{"pointer", &person{}, []string{"Email", "Name"}},
		{"nil pointer", (*person)(nil), nil},
		{"scalar", 42, nil},
		{"nil", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := childNames(tt.v); !slices.Equal(got, tt.want) {
				t.Errorf("childNames(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestRenderCandidateBar(t *testing.T) {
	matches := fuzzy.Matches{
		{Str: "alpha"},
		{Str: "beta"},
		{Str: "gamma"},
	}

	t.Run("fits", func(t *testing.T) {
		bar := renderCandidateBar(matches, -1, false, 80)
		if w := lipgloss.Width(bar); w != len("alpha  beta  gamma") {
			t.Errorf("width = %d, want %d", w, len("alpha  beta  gamma"))
		}
	})

	t.Run("truncated", func(t *testing.T) {
		bar := renderCandidateBar(matches, -1, false, 12)
		if w := lipgloss.Width(bar); w != len("alpha  ...") {
			t.Errorf("width = %d, want %d", w, len("alpha  ..."))
		}
	})

	t.Run("empty", func(t *testing.T) {
		if bar := renderCandidateBar(nil, -1, false, 80); bar != "" {
			t.Errorf("bar = %q, want empty", bar)
		}
	})
}

package tmpl

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func mustCompile(t *testing.T, s string) *Template {
	t.Helper()

	tpl, err := CompileString(context.Background(), s, WithCache(false))
	if err != nil {
		t.Fatalf("compile %q failed: %v", s, err)
	}

	return tpl
}

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		bindings any
		want     string
	}{
		{
			name:  "plain text",
			input: "no tags here, just } and % and \n newlines",
			want:  "no tags here, just } and % and \n newlines",
		},
		{
			name:  "escaped brace",
			input: "\\{x",
			want:  "{x",
		},
		{
			name:  "escaped backslash",
			input: "\\\\x",
			want:  "\\x",
		},
		{
			name:  "dangling brace",
			input: "{ x }",
			want:  "{ x }",
		},
		{
			name:  "brace before escape",
			input: "{\\{",
			want:  "{{",
		},
		{
			name:     "substitution",
			input:    "hello {{ name }}!",
			bindings: map[string]any{"name": "world"},
			want:     "hello world!",
		},
		{
			name:     "nested path",
			input:    "{{a.b.c}}",
			bindings: map[string]any{"a": map[string]any{"b": map[string]int{"c": 7}}},
			want:     "7",
		},
		{
			name:     "if true",
			input:    "{% if v %}Y{% end %}",
			bindings: map[string]any{"v": true},
			want:     "Y",
		},
		{
			name:     "if false",
			input:    "{% if v %}Y{% end %}",
			bindings: map[string]any{"v": false},
			want:     "",
		},
		{
			name:     "if zero",
			input:    "{% if v %}Y{% end %}",
			bindings: map[string]any{"v": 0},
			want:     "",
		},
		{
			name:     "loop",
			input:    "{% for v in items %}{{ v }}{% end %}",
			bindings: map[string]any{"items": []string{"a", "b", "c"}},
			want:     "abc",
		},
		{
			name:     "empty loop",
			input:    "[{% for v in items %}{{ v }}{% end %}]",
			bindings: map[string]any{"items": []string{}},
			want:     "[]",
		},
		{
			name:     "loop over map keys",
			input:    "{% for k in m %}{{ k }};{% end %}",
			bindings: map[string]any{"m": map[string]int{"b": 2, "a": 1, "c": 3}},
			want:     "a;b;c;",
		},
		{
			name:     "loop over string",
			input:    "{% for r in s %}<{{ r }}>{% end %}",
			bindings: map[string]any{"s": "hé"},
			want:     "<h><é>",
		},
		{
			name:     "shadowing",
			input:    "{% for v in outer %}{% for v in inner %}{{ v }}{% end %}|{% end %}",
			bindings: map[string]any{"outer": []int{1, 2}, "inner": []string{"x", "y"}},
			want:     "xy|xy|",
		},
		{
			name:  "fallback to outer loop and root",
			input: "{% for a in as %}{% for b in bs %}{{ a }}{{ b }}{{ sep }}{% end %}{% end %}",
			bindings: map[string]any{
				"as": []int{1, 2}, "bs": []string{"x", "y"}, "sep": ",",
			},
			want: "1x,1y,2x,2y,",
		},
		{
			name:     "partial path falls through frame",
			input:    "{% for user in users %}{{ user.name }}{% end %}",
			bindings: map[string]any{"users": []any{map[string]any{}}, "user": map[string]any{"name": "root"}},
			want:     "root",
		},
		{
			name:  "struct bindings",
			input: "{{ Name }} is {{ age }}{% if Admin %} (admin){% end %}",
			bindings: &struct {
				Name  string
				Age   int `json:"age"`
				Admin bool
			}{Name: "ada", Age: 36, Admin: true},
			want: "ada is 36 (admin)",
		},
		{
			name:     "nil renders empty",
			input:    "[{{ v }}]",
			bindings: map[string]any{"v": nil},
			want:     "[]",
		},
		{
			name:     "float",
			input:    "{{ f }}",
			bindings: map[string]any{"f": 2.50},
			want:     "2.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := mustCompile(t, tt.input).Render(tt.bindings)
			if err != nil {
				t.Fatalf("render failed: %v", err)
			}

			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRender_MissingVariable(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		bindings any
		variable string
	}{
		{
			name:     "missing key",
			input:    "{{ name }}",
			bindings: map[string]any{},
			variable: "name",
		},
		{
			name:     "nil bindings",
			input:    "{% if x %}{% end %}",
			variable: "x",
		},
		{
			name:     "missing nested key",
			input:    "{{ a.b }}",
			bindings: map[string]any{"a": map[string]any{"c": 1}},
			variable: "a.b",
		},
		{
			name:     "sibling loop variable",
			input:    "{% for a in xs %}{% end %}{% for b in xs %}{{ a }}{% end %}",
			bindings: map[string]any{"xs": []int{1}},
			variable: "a",
		},
		{
			name:     "loop variable after loop",
			input:    "{% for a in xs %}{% end %}{{ a }}",
			bindings: map[string]any{"xs": []int{1}},
			variable: "a",
		},
		{
			name:     "not iterable",
			input:    "{% for a in n %}{% end %}",
			bindings: map[string]any{"n": 42},
			variable: "n",
		},
		{
			name:     "unexported field",
			input:    "{{ secret }}",
			bindings: struct{ secret string }{"x"},
			variable: "secret",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := mustCompile(t, tt.input).Render(tt.bindings)
			if !errors.Is(err, ErrMissingVariable) {
				t.Fatalf("got error %v, want missing variable", err)
			}

			if out != "" {
				t.Errorf("got partial output %q", out)
			}

			var ee *Error
			if !errors.As(err, &ee) || ee.Variable() != tt.variable {
				t.Errorf("got variable %q, want %q", ee.Variable(), tt.variable)
			}

			if ee.Kind().IsCompile() {
				t.Errorf("kind %v reported as compile error", ee.Kind())
			}
		})
	}
}

func TestRender_ScopeRestoredAfterError(t *testing.T) {
	tpl := mustCompile(t, "{% for a in xs %}{% for b in xs %}{{ missing }}{% end %}{% end %}")

	r := renderer{scope: NewScope(map[string]any{"xs": []int{1, 2}})}

	if err := r.render(tpl.Root()); !errors.Is(err, ErrMissingVariable) {
		t.Fatalf("got %v, want missing variable", err)
	}

	if d := r.scope.Depth(); d != 1 {
		t.Errorf("got scope depth %d after error, want 1", d)
	}
}

func TestRender_Idempotent(t *testing.T) {
	tpl := mustCompile(t, "{% for x in xs %}{{ x }}{% if flag %}!{% end %}{% end %}")
	bindings := map[string]any{"xs": []int{1, 2, 3}, "flag": true}

	first, err := tpl.Render(bindings)
	if err != nil {
		t.Fatal(err)
	}

	second, err := tpl.Render(bindings)
	if err != nil {
		t.Fatal(err)
	}

	if first != second || first != "1!2!3!" {
		t.Errorf("got %q then %q", first, second)
	}
}

func TestExecute(t *testing.T) {
	tpl := mustCompile(t, "a{{ x }}b")

	var sb strings.Builder
	if err := tpl.Execute(&sb, map[string]string{"x": "-"}); err != nil {
		t.Fatal(err)
	}

	if sb.String() != "a-b" {
		t.Errorf("got %q", sb.String())
	}

	sb.Reset()

	if err := tpl.Execute(&sb, nil); err == nil {
		t.Fatal("expected error")
	}

	if sb.Len() != 0 {
		t.Errorf("wrote %q on error", sb.String())
	}
}

func TestRender_Concurrent(t *testing.T) {
	tpl := mustCompile(t, "{% for x in xs %}{{ x }}{% end %}")

	done := make(chan string)

	for i := range 8 {
		go func() {
			out, err := tpl.Render(map[string]any{"xs": []int{i, i}})
			if err != nil {
				out = err.Error()
			}

			done <- out
		}()
	}

	for range 8 {
		if out := <-done; len(out) != 2 || out[0] != out[1] {
			t.Errorf("unexpected output %q", out)
		}
	}
}

func TestTemplate_Variables(t *testing.T) {
	tpl := mustCompile(t,
		"{{ b.x }}{% for i in items %}{{ i.name }}{{ a }}{% end %}{% if i %}{% end %}{{ b }}")

	got := strings.Join(tpl.Variables(), ",")
	if got != "a,b,i,items" {
		t.Errorf("got %q", got)
	}
}

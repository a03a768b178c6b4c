package tmpl

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
)

func TestTemplate_Format(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "canonical spacing",
			input: "{{a.b}}{%if  x%}{%   end %}",
			want:  "{{ a.b }}{% if x %}{% end %}",
		},
		{
			name:  "escapes",
			input: "\\\\ \\{ { x",
			want:  "\\\\ \\{ \\{ x",
		},
		{
			name:  "loop",
			input: "{%for i in xs%}-{{ i }}{%end %}",
			want:  "{% for i in xs %}-{{ i }}{% end %}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := mustCompile(t, tt.input).Format(&buf); err != nil {
				t.Fatal(err)
			}

			if buf.String() != tt.want {
				t.Errorf("got %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestTemplate_FormatRoundTrip(t *testing.T) {
	source := "a { b \\\\ {% for x in xs %}{{ x }}\\{{% if x %}!{% end %}{% end %}\n"
	bindings := map[string]any{"xs": []any{1, 0, "z"}}

	tpl := mustCompile(t, source)
	again := mustCompile(t, tpl.String())

	want, err := tpl.Render(bindings)
	if err != nil {
		t.Fatal(err)
	}

	got, err := again.Render(bindings)
	if err != nil {
		t.Fatal(err)
	}

	if got != want {
		t.Errorf("round trip rendered %q, want %q", got, want)
	}
}

func TestTemplate_FormatJSON(t *testing.T) {
	tpl := mustCompile(t, "x{% if a %}{{ a.b }}{% end %}")

	var buf bytes.Buffer
	if err := tpl.FormatJSON(&buf, 2); err != nil {
		t.Fatal(err)
	}

	var tree struct {
		Type string `json:"type"`
		Body []struct {
			Type string `json:"type"`
			Path string `json:"path"`
			Body []struct {
				Type   string `json:"type"`
				Path   string `json:"path"`
				Column int    `json:"column"`
			} `json:"body"`
		} `json:"body"`
	}

	if err := json.Unmarshal(buf.Bytes(), &tree); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}

	if tree.Type != "root" || len(tree.Body) != 2 || tree.Body[1].Type != "if" {
		t.Fatalf("unexpected tree %+v", tree)
	}

	v := tree.Body[1].Body[0]
	if v.Type != "variable" || v.Path != "a.b" || v.Column != 12 {
		t.Errorf("unexpected variable node %+v", v)
	}
}

func TestTemplate_FormatYAML(t *testing.T) {
	tpl := mustCompile(t, "{% for i in xs %}{{ i }}{% end %}")

	for _, indent := range []int{0, 2} {
		var buf bytes.Buffer
		if err := tpl.FormatYAML(context.Background(), &buf, indent); err != nil {
			t.Fatal(err)
		}

		var tree map[string]any
		if err := yaml.Unmarshal(buf.Bytes(), &tree); err != nil {
			t.Fatalf("invalid YAML: %v\n%s", err, buf.String())
		}

		if tree["type"] != "root" {
			t.Errorf("indent %d: got type %v", indent, tree["type"])
		}

		if !strings.Contains(buf.String(), "collection") {
			t.Errorf("indent %d: missing for node in\n%s", indent, buf.String())
		}
	}
}

func TestTemplate_FormatTree(t *testing.T) {
	source := "a{% for x in xs %}{{ x }}{% end %}\n{% if ok %}b{% end %}"

	want := strings.Join([]string{
		`root 1:1`,
		`  text 1:1 "a"`,
		`  for 1:2 x in xs`,
		`    variable 1:19 x`,
		`  text 1:35 "\n"`,
		`  if 2:1 ok`,
		`    text 2:12 "b"`,
	}, "\n") + "\n"

	var buf bytes.Buffer
	if err := mustCompile(t, source).FormatTree(&buf); err != nil {
		t.Fatal(err)
	}

	if buf.String() != want {
		t.Errorf("got\n%s\nwant\n%s", buf.String(), want)
	}
}

package tmpl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// textEscaper escapes the runes that are not literal in template text.
var textEscaper = strings.NewReplacer(`\`, `\\`, `{`, `\{`)

// Format writes the template in canonical template syntax to w.
// Compiling the output yields a template that renders identically.
func (t *Template) Format(w io.Writer) error {
	_, err := io.WriteString(w, t.String())

	return err
}

// String returns the canonical template syntax of t.
func (t *Template) String() string {
	var sb strings.Builder

	formatNodes(&sb, t.root.Body)

	return sb.String()
}

func formatNodes(sb *strings.Builder, nodes []Node) {
	for _, n := range nodes {
		formatNode(sb, n)
	}
}

func formatNode(sb *strings.Builder, n Node) {
	switch n := n.(type) {
	case *TextNode:
		sb.WriteString(textEscaper.Replace(n.Text))

	case *VariableNode:
		sb.WriteString("{{ ")
		sb.WriteString(n.Path.String())
		sb.WriteString(" }}")

	case *IfNode:
		sb.WriteString("{% if ")
		sb.WriteString(n.Path.String())
		sb.WriteString(" %}")
		formatNodes(sb, n.Body)
		sb.WriteString("{% end %}")

	case *ForNode:
		fmt.Fprintf(sb, "{%% for %s in %s %%}", n.Var, n.Collection)
		formatNodes(sb, n.Body)
		sb.WriteString("{% end %}")

	case *RootNode:
		formatNodes(sb, n.Body)
	}
}

// FormatTree writes an outline of the template's syntax tree to w, one node
// per line, with children indented two spaces beneath their parent.
func (t *Template) FormatTree(w io.Writer) error {
	var sb strings.Builder

	formatTree(&sb, t.root, 0)

	_, err := io.WriteString(w, sb.String())

	return err
}

func formatTree(sb *strings.Builder, n Node, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))

	switch n := n.(type) {
	case *TextNode:
		fmt.Fprintf(sb, "text %s %q", n.pos, n.Text)

	case *VariableNode:
		fmt.Fprintf(sb, "variable %s %s", n.pos, n.Path)

	case *IfNode:
		fmt.Fprintf(sb, "if %s %s", n.pos, n.Path)

	case *ForNode:
		fmt.Fprintf(sb, "for %s %s in %s", n.pos, n.Var, n.Collection)

	case *RootNode:
		fmt.Fprintf(sb, "root %s", n.pos)
	}

	sb.WriteByte('\n')

	if c, ok := n.(Container); ok {
		for _, child := range c.Children() {
			formatTree(sb, child, depth+1)
		}
	}
}

// FormatJSON writes the template's syntax tree as JSON to w.
// If indent is positive, the output is indented by that many spaces per
// level.
func (t *Template) FormatJSON(w io.Writer, indent int) error {
	var (
		data []byte
		err  error
	)

	if indent > 0 {
		data, err = json.MarshalIndent(t.ToMap(), "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(t.ToMap())
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

// FormatYAML writes the template's syntax tree as YAML to w.
// If indent is positive, block style is used with that indentation;
// otherwise flow style is used.
func (t *Template) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, t.ToMap(), opts...)
	if err != nil {
		return err
	}

	_, err = w.Write(data)

	return err
}

// ToMap returns the template's syntax tree as nested maps and slices.
func (t *Template) ToMap() map[string]any {
	m := nodeMap(t.root)
	if t.name != "" {
		m["name"] = t.name
	}

	return m
}

func nodeMap(n Node) map[string]any {
	pos := n.Pos()
	m := map[string]any{
		"line":   pos.Line,
		"column": pos.Column,
	}

	switch n := n.(type) {
	case *TextNode:
		m["type"] = "text"
		m["text"] = n.Text

	case *VariableNode:
		m["type"] = "variable"
		m["path"] = n.Path.String()

	case *IfNode:
		m["type"] = "if"
		m["path"] = n.Path.String()

	case *ForNode:
		m["type"] = "for"
		m["var"] = n.Var
		m["collection"] = n.Collection.String()

	case *RootNode:
		m["type"] = "root"
	}

	if c, ok := n.(Container); ok {
		body := make([]any, 0, len(c.Children()))
		for _, child := range c.Children() {
			body = append(body, nodeMap(child))
		}

		m["body"] = body
	}

	return m
}

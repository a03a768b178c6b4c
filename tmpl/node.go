package tmpl

import (
	"iter"
	"strings"
)

// Path is a dotted variable name split into its segments.
// For example, "a.b.c" is Path{"a", "b", "c"}.
type Path []string

// ParsePath splits a dotted name into a Path.
// It does not validate the segments.
func ParsePath(s string) Path {
	if s == "" {
		return nil
	}

	return Path(strings.Split(s, "."))
}

// String returns the dotted form of p.
func (p Path) String() string { return strings.Join(p, ".") }

// Root returns the first segment of p, or "" if p is empty.
func (p Path) Root() string {
	if len(p) == 0 {
		return ""
	}

	return p[0]
}

// Node is an element of a compiled template's syntax tree.
//
// The set of node types is closed: [*TextNode], [*VariableNode], [*IfNode],
// [*ForNode], and [*RootNode].
type Node interface {
	// Pos returns the position of the first character of the construct.
	Pos() Position

	node()
}

// Container is a [Node] holding an ordered list of child nodes.
type Container interface {
	Node

	// Children returns the container's child nodes in document order.
	Children() []Node

	appendChild(n Node)
}

// nodeBase provides common Position handling for all nodes.
type nodeBase struct {
	pos Position
}

func (n *nodeBase) Pos() Position { return n.pos }
func (*nodeBase) node()           {}

// body provides child storage for container nodes.
type body struct {
	Body []Node
}

func (b *body) Children() []Node { return b.Body }

func (b *body) appendChild(n Node) { b.Body = append(b.Body, n) }

// TextNode is literal output text. Escapes are already resolved.
type TextNode struct {
	nodeBase

	Text string
}

// VariableNode is a {{ path }} placeholder.
type VariableNode struct {
	nodeBase

	Path Path
}

// IfNode is an {% if path %} block. Its body renders only if the value at
// Path is truthy.
type IfNode struct {
	nodeBase
	body

	Path Path
}

// ForNode is a {% for Var in Collection %} block. Its body renders once per
// element of the collection, with Var bound to the element.
type ForNode struct {
	nodeBase
	body

	Var        string
	Collection Path
}

// RootNode is the top level of a template.
type RootNode struct {
	nodeBase
	body
}

// Walk traverses the tree rooted at n depth-first in document order, calling
// fn for each node. If fn returns false, the children of that node are
// skipped.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}

	if c, ok := n.(Container); ok {
		for _, child := range c.Children() {
			Walk(child, fn)
		}
	}
}

// All returns an iterator over the tree rooted at n in the order Walk visits.
func All(n Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		stop := false

		Walk(n, func(n Node) bool {
			if stop {
				return false
			}

			if !yield(n) {
				stop = true

				return false
			}

			return true
		})
	}
}

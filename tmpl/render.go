package tmpl

import (
	"log/slog"
	"strings"
)

var notIterable = slog.String("reason", "not iterable")

// renderer evaluates a syntax tree against a Scope.
type renderer struct {
	scope *Scope
	out   strings.Builder
}

// render writes the output of n and its descendants to r.out.
func (r *renderer) render(n Node) error {
	switch n := n.(type) {
	case *TextNode:
		r.out.WriteString(n.Text)

	case *VariableNode:
		v, ok := r.scope.Resolve(n.Path)
		if !ok {
			return ErrMissingVariable.WithVariable(n.Path).WithPosition(n.pos)
		}

		r.out.WriteString(Text(v))

	case *IfNode:
		v, ok := r.scope.Resolve(n.Path)
		if !ok {
			return ErrMissingVariable.WithVariable(n.Path).WithPosition(n.pos)
		}

		if Truthy(v) {
			return r.renderAll(n.Body)
		}

	case *ForNode:
		return r.renderFor(n)

	case *RootNode:
		return r.renderAll(n.Body)
	}

	return nil
}

func (r *renderer) renderAll(nodes []Node) error {
	for _, child := range nodes {
		if err := r.render(child); err != nil {
			return err
		}
	}

	return nil
}

func (r *renderer) renderFor(n *ForNode) error {
	v, ok := r.scope.Resolve(n.Collection)
	if !ok {
		return ErrMissingVariable.WithVariable(n.Collection).WithPosition(n.pos)
	}

	seq, ok := Elements(v)
	if !ok {
		return ErrMissingVariable.WithVariable(n.Collection).WithPosition(n.pos).
			With(notIterable)
	}

	for elem := range seq {
		if err := r.renderIteration(n, elem); err != nil {
			return err
		}
	}

	return nil
}

// renderIteration renders one pass over the loop body with the loop
// variable bound to elem. The frame is popped even if rendering fails.
func (r *renderer) renderIteration(n *ForNode, elem any) error {
	r.scope.Push(n.Var, elem)
	defer r.scope.Pop()

	return r.renderAll(n.Body)
}

package tmpl

import "testing"

func TestScope_Resolve(t *testing.T) {
	s := NewScope(map[string]any{
		"x":    "root-x",
		"user": map[string]any{"name": "root-user"},
	})

	resolve := func(path string) any {
		t.Helper()

		v, ok := s.Resolve(ParsePath(path))
		if !ok {
			return "<missing>"
		}

		return v
	}

	if got := resolve("x"); got != "root-x" {
		t.Errorf("got %v", got)
	}

	s.Push("x", "loop-x")
	s.Push("user", map[string]any{"id": 1})

	if got := s.Depth(); got != 3 {
		t.Errorf("got depth %d, want 3", got)
	}

	if got := resolve("x"); got != "loop-x" {
		t.Errorf("got %v, want shadowed value", got)
	}

	// Inner frame binds user but not user.name.
	if got := resolve("user.name"); got != "root-user" {
		t.Errorf("got %v, want fallback to root", got)
	}

	if got := resolve("user.id"); got != 1 {
		t.Errorf("got %v, want 1", got)
	}

	if got := resolve("y"); got != "<missing>" {
		t.Errorf("got %v, want missing", got)
	}

	s.Pop()
	s.Pop()
	s.Pop() // root frame is never removed

	if got := s.Depth(); got != 1 {
		t.Errorf("got depth %d, want 1", got)
	}

	if got := resolve("x"); got != "root-x" {
		t.Errorf("got %v after pop", got)
	}

	if _, ok := s.Resolve(nil); ok {
		t.Error("empty path resolved")
	}
}

func TestParsePath(t *testing.T) {
	p := ParsePath("a.b.c")
	if len(p) != 3 || p.Root() != "a" || p.String() != "a.b.c" {
		t.Errorf("unexpected path %#v", p)
	}

	if ParsePath("") != nil || Path(nil).Root() != "" {
		t.Error("empty path not empty")
	}
}

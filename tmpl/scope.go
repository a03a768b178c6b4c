package tmpl

// Scope resolves dotted paths against a stack of variable frames.
//
// The root frame holds the bindings passed to a render. Each iteration of a
// for loop pushes a single-entry frame binding the loop variable, which
// shadows any same-named root in older frames until it is popped.
type Scope struct {
	frames []frame
}

// frame is one level of a Scope. A root frame stores arbitrary bindings; a
// loop frame stores exactly one named value.
type frame struct {
	name  string
	value any
	root  bool
}

// NewScope returns a Scope whose only frame is root.
func NewScope(root any) *Scope {
	return &Scope{frames: []frame{{value: root, root: true}}}
}

// Push adds a frame binding name to value.
func (s *Scope) Push(name string, value any) {
	s.frames = append(s.frames, frame{name: name, value: value})
}

// Pop removes the most recently pushed frame.
// The root frame is never removed.
func (s *Scope) Pop() {
	if n := len(s.frames); n > 1 {
		s.frames[n-1] = frame{}
		s.frames = s.frames[:n-1]
	}
}

// Depth returns the number of frames, including the root frame.
func (s *Scope) Depth() int { return len(s.frames) }

// Resolve returns the value at path. Frames are searched from the most
// recently pushed to the root, and each frame must resolve the entire path by
// itself: a frame that binds only a prefix of the path is skipped.
func (s *Scope) Resolve(path Path) (any, bool) {
	if len(path) == 0 {
		return nil, false
	}

	for i := len(s.frames) - 1; i >= 0; i-- {
		if v, ok := s.frames[i].resolve(path); ok {
			return v, true
		}
	}

	return nil, false
}

func (f frame) resolve(path Path) (any, bool) {
	var v any

	if f.root {
		var ok bool
		if v, ok = lookup(f.value, path[0]); !ok {
			return nil, false
		}
	} else {
		if path[0] != f.name {
			return nil, false
		}

		v = f.value
	}

	for _, name := range path[1:] {
		var ok bool
		if v, ok = lookup(v, name); !ok {
			return nil, false
		}
	}

	return v, true
}

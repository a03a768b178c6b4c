//go:build !pprof

package profile

import "testing"

func TestDisabled(t *testing.T) {
	if Enabled {
		t.Fatal("Enabled = true without pprof build tag")
	}

	if m := Modes(); len(m) != 0 {
		t.Errorf("Modes() = %v, want none", m)
	}

	s := New(WithMode("cpu")).Start()
	if _, ok := s.(nop); !ok {
		t.Fatalf("Start() = %T, want nop", s)
	}

	s.Stop()
}

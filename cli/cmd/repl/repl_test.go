package repl

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/holtzman/log"
)

func testModel(t *testing.T, bindings map[string]any) model {
	t.Helper()

	history := NewHistory(filepath.Join(t.TempDir(), baseHistory))

	return newModel(context.Background(), bindings, history, log.Make(io.Discard))
}

func TestModel_Render(t *testing.T) {
	m := testModel(t, map[string]any{"name": "Ada"})

	out, err := m.render("hi {{ name }}")
	if err != nil {
		t.Fatalf("render() error = %v", err)
	}

	if out != "hi Ada" {
		t.Errorf("render() = %q, want %q", out, "hi Ada")
	}

	if m.last == nil {
		t.Fatal("last template not kept")
	}

	if got := m.listVariables(); got != "name" {
		t.Errorf("listVariables() = %q, want %q", got, "name")
	}

	if _, err := m.render("{{ missing }}"); err == nil {
		t.Error("render() of unbound variable succeeded")
	}

	if _, err := m.render("{% if x %}"); err == nil {
		t.Error("render() of unterminated tag succeeded")
	}
}

func TestModel_ToggleMode(t *testing.T) {
	m := testModel(t, nil)

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != modeCommand {
		t.Fatalf("mode = %v, want command", m.mode)
	}

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != modeTemplate {
		t.Errorf("mode = %v, want template", m.mode)
	}
}

func TestModel_Complete(t *testing.T) {
	m := testModel(t, map[string]any{"name": "Ada", "other": 1})

	m.input.SetValue("{{ na")
	m.input.SetCursor(len("{{ na"))
	refreshMatches(&m, false)

	if len(m.matches) != 1 || m.matches[0].Str != "name" {
		t.Fatalf("matches = %v, want [name]", m.matches)
	}

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyTab})
	if got := m.input.Value(); got != "{{ name" {
		t.Errorf("input = %q, want %q", got, "{{ name")
	}

	if len(m.matches) != 0 {
		t.Errorf("matches = %v, want none", m.matches)
	}
}

func TestModel_HistoryMove(t *testing.T) {
	m := testModel(t, nil)

	if err := m.history.Add("{{ a }}", modeTemplate); err != nil {
		t.Fatal(err)
	}

	if err := m.history.Add("list", modeCommand); err != nil {
		t.Fatal(err)
	}

	m.historyIdx = m.history.Len()

	m = m.historyMove(-1)
	if m.input.Value() != "list" || m.mode != modeCommand {
		t.Errorf("got (%q, %v), want (list, command)", m.input.Value(), m.mode)
	}

	m = m.historyMove(-1)
	if m.input.Value() != "{{ a }}" || m.mode != modeTemplate {
		t.Errorf("got (%q, %v), want ({{ a }}, template)", m.input.Value(), m.mode)
	}

	// Already at the oldest entry.
	m = m.historyMove(-1)
	if m.historyIdx != 0 {
		t.Errorf("historyIdx = %d, want 0", m.historyIdx)
	}

	m = m.historyMove(1)
	m = m.historyMove(1)
	if m.input.Value() != "" || m.historyIdx != m.history.Len() {
		t.Errorf("got (%q, %d), want empty input past newest entry",
			m.input.Value(), m.historyIdx)
	}
}

func TestModel_ListBindings(t *testing.T) {
	m := testModel(t, map[string]any{
		"list": []any{1, 2, 3},
		"map":  map[string]any{"a": 1},
		"name": "Ada",
		"n":    7,
	})

	want := []string{
		"list = [ 3 items ]",
		"map = { 1 keys }",
		"n = 7",
		`name = "Ada"`,
	}

	if got := ansi.Strip(m.listBindings()); got != strings.Join(want, "\n") {
		t.Errorf("listBindings() =\n%s\nwant\n%s", got, strings.Join(want, "\n"))
	}
}

func TestPreview(t *testing.T) {
	long := strings.Repeat("x", 100)

	got := preview(long)
	if len(got) != previewLimit || !strings.HasSuffix(got, "...") {
		t.Errorf("preview() = %q, want %d bytes ending in ...", got, previewLimit)
	}
}

// Package repl implements an interactive template shell.
//
// Each line entered in template mode is compiled and rendered with the
// current bindings. Command mode (toggled with Esc) inspects the bindings
// and the last template, or opens the bindings in $EDITOR as YAML. Input
// inside {{ }} and {% %} tags is completed from binding names, and history
// is kept across sessions.
package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/holtzman/log"
	"github.com/ardnew/holtzman/tmpl"
)

// editBindingsMsg is sent when editing the bindings completes successfully.
type editBindingsMsg struct{ bindings map[string]any }

// editCancelledMsg is sent when the user cleared the editor content.
type editCancelledMsg struct{}

// editDeclinedMsg is sent when the user declined to re-edit after a decode
// error.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the edit process fails.
type editErrorMsg struct{ err error }

const (
	templatePrompt = "» "
	commandPrompt  = " :"
)

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode):

  help     Print this cruft
  list     List top-level bindings
  vars     List variables of the last template
  tree     Print the syntax tree of the last template
  edit     Edit bindings as YAML in $EDITOR
  clear    Clear screen
  quit     Exit REPL

Usage:
  Type a template to render it with the current bindings
  Inside {{ }} and {% %} tags, completions appear as you type
  Press Tab / Shift-Tab to cycle through candidates
  Press Esc to toggle between template and command modes
  Use Up/Down arrows for history navigation (mode switches automatically)
  Press Ctrl+C on empty line or Ctrl+D to exit
`
}

// inputMode represents the current input mode.
type inputMode int

const (
	modeTemplate inputMode = iota
	modeCommand
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	commandPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("5")).
				Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle      = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")).
			Bold(true)
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.Bold(true)
)

// echo formats the submitted input line with its prompt.
func echo(mode inputMode, input string) string {
	if mode == modeCommand {
		return commandPromptStyle.Render(commandPrompt) + inputStyle.Render(input)
	}

	return promptStyle.Render(templatePrompt) + inputStyle.Render(input)
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	input        textinput.Model
	bindings     map[string]any
	last         *tmpl.Template // most recently compiled template
	logger       log.Logger
	history      *History
	historyIdx   int
	matches      fuzzy.Matches // current fuzzy match results
	wordStart    int           // byte offset of current word start
	wordEnd      int           // byte offset of current word end
	suggIdx      int           // selected candidate index
	tabActive    bool          // whether user is tab-cycling
	preTabText   string        // input text before tab-cycling began
	preTabCursor int           // cursor position before tab-cycling began
	width        int           // terminal width for ellipsization
	quitting     bool
	mode         inputMode
}

// Run starts the REPL. Each line entered is compiled as a template and
// rendered with bindings. History is kept in cacheDir.
func Run(
	ctx context.Context,
	bindings map[string]any,
	cacheDir string,
	logger log.Logger,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if bindings == nil {
		bindings = make(map[string]any)
	}

	logger.TraceContext(ctx, "repl start",
		slog.String("cache_dir", cacheDir),
		slog.Int("binding_count", len(bindings)))

	history := NewHistory(filepath.Join(cacheDir, baseHistory))
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history", slog.Any("error", err))
	}

	logger.TraceContext(ctx, "repl history loaded",
		slog.Int("entry_count", history.Len()))

	_, err = tea.NewProgram(
		newModel(ctx, bindings, history, logger),
		tea.WithContext(ctx),
	).Run()

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	bindings map[string]any,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(templatePrompt)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		bindings:   bindings,
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
		mode:       modeTemplate,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(templatePrompt) - 2

		return m, nil

	case editBindingsMsg:
		m.bindings = msg.bindings
		m.logger.TraceContext(m.ctxFunc(), "repl edit complete",
			slog.Int("binding_count", len(m.bindings)))

		return m, tea.Println(resultStyle.Render("bindings updated"))

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("edit cancelled"))

	case editDeclinedMsg:
		m.quitting = true

		return m, tea.Quit

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("error: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	input := m.input.Value()

	switch {
	case m.historyIdx < m.history.Len():
		hint := fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len())
		b.WriteString(hintStyle.Render(hint))

	case strings.TrimSpace(input) == "":
		hint := "Type a template or press Esc for commands"
		if m.mode == modeCommand {
			hint = "Type: " + strings.Join(commands, ", ") + " (press Esc to return)"
		}

		b.WriteString(hintStyle.Render(hint))

	case len(m.matches) > 0:
		b.WriteString(renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width))
	}

	b.WriteString("\n")

	return b.String()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctxFunc(), "repl keypress",
		slog.String("key", msg.String()))

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		refreshMatches(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}

		// Lock in the current candidate without executing.
		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.historyMove(-1), nil

	case tea.KeyDown:
		return m.historyMove(1), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)

			return m, nil
		}

		return m.switchToMode(1 - m.mode), nil

	case tea.KeyRunes, tea.KeySpace:
		if m.tabActive && msg.Type == tea.KeySpace {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	// Any other key (backspace, delete, arrows, ...) edits without
	// auto-confirming a completion.
	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycle moves the selected candidate by step, wrapping around, and writes it
// into the input. A sole candidate is completed immediately.
func (m model) cycle(step int) model {
	n := len(m.matches)

	switch {
	case n == 0:
		return m

	case n == 1:
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m

	case m.tabActive:
		m.suggIdx = (m.suggIdx + step + n) % n

	default:
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()
		m.suggIdx = 0

		if step < 0 {
			m.suggIdx = n - 1
		}
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord replaces the current word in the input with replacement
// and moves the cursor to its end.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	cursor := m.wordStart + len(replacement)

	m.input.SetValue(input[:m.wordStart] + replacement + input[m.wordEnd:])
	m.input.SetCursor(cursor)

	m.wordEnd = cursor
}

// refreshMatches recomputes the matches for the current input. When
// autoConfirm is set and the typed word already equals the sole candidate,
// the completion is accepted.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if m.input.Value()[m.wordStart:m.wordEnd] == m.matches[0].Str {
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	raw := m.input.Value()

	input := strings.TrimSpace(raw)
	if input == "" {
		return m, nil
	}

	m.input.SetValue("")
	m.matches = nil
	m.tabActive = false

	if err := m.history.Add(input, m.mode); err != nil {
		m.logger.DebugContext(m.ctxFunc(), "history write failed",
			slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	if m.mode == modeCommand {
		return m.executeCommand(input)
	}

	echoCmd := tea.Println(echo(modeTemplate, raw))

	out, err := m.render(raw)
	if err != nil {
		return m, tea.Sequence(
			echoCmd,
			tea.Println(errorStyle.Render(strings.TrimRight(tmpl.FormatError(err, raw), "\n"))),
		)
	}

	return m, tea.Sequence(echoCmd, tea.Println(resultStyle.Render(out)))
}

// render compiles input as a template and renders it with the current
// bindings. A template that compiles is kept as the last template even if
// rendering fails.
func (m *model) render(input string) (string, error) {
	ctx := m.ctxFunc()

	t, err := tmpl.CompileString(ctx, input, tmpl.WithLogger(m.logger))
	if err != nil {
		m.logger.TraceContext(ctx, "repl compile failed", slog.Any("error", err))

		return "", err
	}

	m.last = t

	return t.RenderContext(ctx, m.bindings)
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	parts := strings.Fields(input)
	echoCmd := tea.Println(echo(modeCommand, input))

	m.logger.TraceContext(m.ctxFunc(), "repl command",
		slog.String("command", parts[0]),
		slog.Any("args", parts[1:]))

	switch parts[0] {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echoCmd, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echoCmd, tea.Println(helpMessage()))

	case "l", "list":
		return m, tea.Sequence(echoCmd, tea.Println(m.listBindings()))

	case "v", "vars":
		return m, tea.Sequence(echoCmd, tea.Println(m.listVariables()))

	case "t", "tree":
		return m, tea.Sequence(echoCmd, tea.Println(m.tree()))

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, tea.Sequence(echoCmd, m.edit())

	default:
		return m, tea.Println(
			errorStyle.Render("Unknown command: " + parts[0] + " (try 'help')"),
		)
	}
}

func (m model) edit() tea.Cmd {
	cmd := &editBindingsCommand{
		bindings: m.bindings,
		ctxFunc:  m.ctxFunc,
		logger:   m.logger,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		if errors.Is(err, ErrEditDeclined) {
			return editDeclinedMsg{}
		}

		if err != nil {
			return editErrorMsg{err: err}
		}

		if cmd.result == nil {
			return editCancelledMsg{}
		}

		return editBindingsMsg{bindings: cmd.result}
	})
}

// historyMove steps through history by step entries. Moving past the newest
// entry clears the input. The mode follows the recalled entry.
func (m model) historyMove(step int) model {
	i := m.historyIdx + step
	if i < 0 {
		return m
	}

	if i >= m.history.Len() {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		refreshMatches(&m, false)

		return m
	}

	entry, err := m.history.Entry(i)
	if err != nil {
		return m
	}

	m.historyIdx = i

	if m.mode != entry.Mode {
		m = m.switchToMode(entry.Mode)
	}

	m.input.SetValue(entry.Line)
	m.input.SetCursor(len(entry.Line))
	refreshMatches(&m, false)

	return m
}

func (m model) switchToMode(mode inputMode) model {
	m.mode = mode
	m.tabActive = false

	if mode == modeCommand {
		m.input.Prompt = commandPromptStyle.Render(commandPrompt)
	} else {
		m.input.Prompt = promptStyle.Render(templatePrompt)
	}

	refreshMatches(&m, false)

	return m
}

func (m model) listBindings() string {
	if len(m.bindings) == 0 {
		return hintStyle.Render("no bindings")
	}

	var sb strings.Builder

	for i, name := range slices.Sorted(maps.Keys(m.bindings)) {
		if i > 0 {
			sb.WriteByte('\n')
		}

		sb.WriteString(suggestionStyle.Render(name))
		sb.WriteString(hintStyle.Render(" = " + preview(m.bindings[name])))
	}

	return sb.String()
}

func (m model) listVariables() string {
	if m.last == nil {
		return hintStyle.Render("no template")
	}

	vars := m.last.Variables()
	if len(vars) == 0 {
		return hintStyle.Render("no variables")
	}

	return strings.Join(vars, "\n")
}

func (m model) tree() string {
	if m.last == nil {
		return hintStyle.Render("no template")
	}

	var sb strings.Builder

	_ = m.last.FormatTree(&sb)

	return strings.TrimRight(sb.String(), "\n")
}

// previewLimit is the maximum length of a value preview.
const previewLimit = 40

// preview returns a short description of v: the size of a collection, or
// the rendered text of anything else.
func preview(v any) string {
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Map:
		return fmt.Sprintf("{ %d keys }", rv.Len())

	case reflect.Slice, reflect.Array:
		return fmt.Sprintf("[ %d items ]", rv.Len())

	case reflect.String:
		s := strconv.Quote(rv.String())
		if len(s) > previewLimit {
			return s[:previewLimit-3] + "..."
		}

		return s
	}

	s := tmpl.Text(v)
	if len(s) > previewLimit {
		return s[:previewLimit-3] + "..."
	}

	return s
}

// Package tui implements the full-screen terminal interface: a scrolling
// story viewport, a numbered-option input line, and a status bar with the
// player's stats and fate reading.
package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hyluen/fateloom/engine"
	"github.com/hyluen/fateloom/engine/catalog"
	"github.com/hyluen/fateloom/engine/save"
	"github.com/hyluen/fateloom/engine/selector"
	"github.com/hyluen/fateloom/store"
)

// rawLine stores an unstyled output line with its classification,
// so we can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text     string
	kind     lineKind
	isInput  bool // true for echoed player input
	isSystem bool // true for system messages
}

// Model is the Bubble Tea model for the Fateloom TUI.
type Model struct {
	session *engine.Session
	catalog *catalog.Catalog
	saves   *store.Store // nil disables save slots

	// sessionOpts are reapplied when /load replaces the session.
	sessionOpts []engine.SessionOption

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine // accumulated narrative lines (unstyled, for re-wrapping)

	width    int
	height   int
	ready    bool
	quitting bool
	ended    bool // story exhausted or player defeated

	lastEventID string
}

// gameOutputMsg carries output from the engine into the Update loop.
type gameOutputMsg struct {
	input    string   // echoed player input (empty for intro)
	lines    []string // output lines
	isSystem bool     // true for meta-command output
}

// New creates a TUI model wired to the given session.
func New(sess *engine.Session, cat *catalog.Catalog, saves *store.Store, opts ...engine.SessionOption) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 64
	ti.PromptStyle = styleInputPrompt

	return Model{
		session:     sess,
		catalog:     cat,
		saves:       saves,
		sessionOpts: opts,
		input:       ti,
		history:     NewHistory(100),
	}
}

// Run starts the Bubble Tea program.
func Run(sess *engine.Session, cat *catalog.Catalog, saves *store.Store, opts ...engine.SessionOption) error {
	m := New(sess, cat, saves, opts...)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Init returns the initial command that produces the first event.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.initialOutput())
}

func (m Model) initialOutput() tea.Cmd {
	return func() tea.Msg {
		return gameOutputMsg{lines: m.advanceLines()}
	}
}

// advanceLines moves the session to the next event and returns its
// presentation: the event text followed by numbered options. Content
// exhaustion and defeat produce closing lines instead.
func (m Model) advanceLines() []string {
	if m.session.Over() {
		return []string{"[Game over.]"}
	}

	ev, log, err := m.session.Advance()
	if errors.Is(err, selector.ErrNoEligible) {
		return []string{"[The story finds no more paths for you. It ends here.]"}
	}
	if err != nil {
		return []string{fmt.Sprintf("[%v]", err)}
	}

	var lines []string
	for _, l := range log {
		lines = append(lines, "["+l+"]")
	}

	if ev.ID == m.lastEventID && m.session.State().Battle != nil {
		bs := m.session.State().Battle
		lines = append(lines, fmt.Sprintf("%s — %d/%d HP", bs.Enemy.Name, bs.Enemy.HP, bs.MaxHP))
	} else {
		lines = append(lines, ev.Text)
	}

	if len(ev.Options) == 0 {
		lines = append(lines, "", "(press Enter to continue)")
	} else {
		lines = append(lines, "")
		for i, text := range m.session.OptionTexts() {
			lines = append(lines, fmt.Sprintf("  %d) %s", i+1, text))
		}
	}
	return lines
}

// Update handles messages (key presses, window resize, game output).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - 2 // 1 status bar + 1 input line
		if vpHeight < 1 {
			vpHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}

		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
				m.history.ResetCursor()
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case gameOutputMsg:
		m = m.appendOutput(msg)
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	// Meta-commands work even after the story has ended.
	if strings.HasPrefix(input, "/") {
		m.history.Push(input)
		m.history.ResetCursor()
		output, quit := m.handleMeta(input)
		m = m.appendOutput(gameOutputMsg{input: input, lines: output, isSystem: true})
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	if m.ended {
		return m, nil
	}

	ev, active := m.session.Current()
	if !active {
		return m, nil
	}

	// Bare Enter acknowledges a terminal event; otherwise it is noise.
	if input == "" {
		if len(ev.Options) > 0 {
			return m, nil
		}
		res, err := m.session.Acknowledge()
		if err != nil {
			m = m.appendOutput(gameOutputMsg{lines: []string{err.Error()}, isSystem: true})
			return m, nil
		}
		m = m.resolveOutput("", res.Log)
		return m, nil
	}

	m.history.Push(input)
	m.history.ResetCursor()

	n, err := strconv.Atoi(input)
	if err != nil {
		m = m.appendOutput(gameOutputMsg{
			input:    input,
			lines:    []string{fmt.Sprintf("Enter an option number between 1 and %d.", len(ev.Options))},
			isSystem: true,
		})
		return m, nil
	}

	res, err := m.session.Choose(n - 1)
	var badChoice *engine.InvalidChoiceError
	if errors.As(err, &badChoice) {
		m = m.appendOutput(gameOutputMsg{
			input:    input,
			lines:    []string{fmt.Sprintf("Enter an option number between 1 and %d.", badChoice.Count)},
			isSystem: true,
		})
		return m, nil
	}
	if err != nil {
		m = m.appendOutput(gameOutputMsg{input: input, lines: []string{err.Error()}, isSystem: true})
		return m, nil
	}

	m = m.resolveOutput(input, res.Log)
	return m, nil
}

// resolveOutput appends the resolution log of a choice and immediately
// presents what follows: the next battle round or the next event.
func (m Model) resolveOutput(input string, log []string) Model {
	lines := make([]string, 0, len(log)+8)
	for _, l := range log {
		lines = append(lines, "["+l+"]")
	}

	if cur, ok := m.session.Current(); ok {
		m.lastEventID = cur.ID
	} else {
		m.lastEventID = ""
	}

	if m.session.Over() {
		m.ended = true
		lines = append(lines, "", "[Game over.]")
		return m.appendOutput(gameOutputMsg{input: input, lines: lines})
	}

	next := m.advanceLines()
	if len(next) == 1 && strings.HasPrefix(next[0], "[The story finds no more paths") {
		m.ended = true
	}
	lines = append(lines, "")
	lines = append(lines, next...)
	if cur, ok := m.session.Current(); ok {
		m.lastEventID = cur.ID
	}
	return m.appendOutput(gameOutputMsg{input: input, lines: lines})
}

// appendOutput adds lines to the narrative and refreshes the viewport.
func (m Model) appendOutput(msg gameOutputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{
			text: "> " + msg.input, isInput: true,
		})
	}

	for _, line := range msg.lines {
		rl := rawLine{text: line, isSystem: msg.isSystem}
		if !msg.isSystem {
			rl.kind = classifyLine(line)
		}
		m.rawLines = append(m.rawLines, rl)
	}

	// Blank line separator between turns.
	m.rawLines = append(m.rawLines, rawLine{})

	m.refreshViewport()

	return m
}

// refreshViewport re-wraps and re-styles all raw lines at the current width
// and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := m.width
	if width < 10 {
		width = 10
	}

	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}

		wrapped := wordWrap(rl.text, width)

		switch {
		case rl.isInput:
			styled = append(styled, stylePlayerInput.Render(wrapped))
		case rl.isSystem:
			styled = append(styled, styledSystemMsg(wrapped))
		default:
			styled = append(styled, renderLineKind(wrapped, rl.kind))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindOption:
		return styleOption.Render(line)
	case kindFate:
		return styleFate.Render(line)
	case kindBattle:
		return styleBattle.Render(line)
	case kindDanger:
		return styleDanger.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	default:
		return styleStory.Render(line)
	}
}

// wordWrap wraps text to fit within the given width, breaking at word
// boundaries. Preserves existing newlines within the text.
func wordWrap(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}

	var result strings.Builder
	words := strings.Fields(text)
	lineLen := 0

	for i, word := range words {
		wLen := len(word)

		if i == 0 {
			result.WriteString(word)
			lineLen = wLen
			continue
		}

		if lineLen+1+wLen > width {
			result.WriteString("\n")
			result.WriteString(word)
			lineLen = wLen
		} else {
			result.WriteString(" ")
			result.WriteString(word)
			lineLen += 1 + wLen
		}
	}

	return result.String()
}

// View renders the full TUI layout: viewport + status bar + input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// handleMeta dispatches meta-commands. Returns output lines and quit flag.
func (m *Model) handleMeta(input string) ([]string, bool) {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		return []string{"Goodbye."}, true

	case "/save":
		return m.cmdSave(arg), false

	case "/load":
		return m.cmdLoad(arg), false

	case "/saves":
		return m.cmdSaves(), false

	case "/state":
		return m.cmdState(), false

	case "/help":
		return m.cmdHelp(), false

	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
	}
}

func (m *Model) cmdSave(name string) []string {
	if m.saves == nil {
		return []string{"Saving is not available."}
	}
	if name == "" {
		name = "quicksave"
	}

	data, err := save.Serialize(m.session.State())
	if err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}
	if _, err := m.saves.Put(name, data, m.session.State().TurnCount); err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}
	return []string{fmt.Sprintf("Game saved to slot %q.", name)}
}

func (m *Model) cmdLoad(name string) []string {
	if m.saves == nil {
		return []string{"Saving is not available."}
	}
	if name == "" {
		name = "quicksave"
	}

	data, slot, err := m.saves.Get(name)
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}
	st, err := save.Deserialize(data)
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}

	m.session = engine.ResumeSession(m.catalog, st, m.sessionOpts...)
	m.lastEventID = ""
	m.ended = false

	output := []string{fmt.Sprintf("Game loaded from slot %q (turn %d).", name, slot.Turn)}
	output = append(output, m.advanceLines()...)
	if cur, ok := m.session.Current(); ok {
		m.lastEventID = cur.ID
	}
	return output
}

func (m *Model) cmdSaves() []string {
	if m.saves == nil {
		return []string{"Saving is not available."}
	}
	slots, err := m.saves.List()
	if err != nil {
		return []string{fmt.Sprintf("Listing saves failed: %v", err)}
	}
	if len(slots) == 0 {
		return []string{"No saves yet."}
	}
	var output []string
	for _, s := range slots {
		output = append(output, fmt.Sprintf("%-12s turn %-4d %s", s.Name, s.Turn, s.CreatedAt.Format("2006-01-02 15:04")))
	}
	return output
}

func (m *Model) cmdState() []string {
	s := m.session.State()
	output := []string{
		fmt.Sprintf("HP: %d  ATK: %d  DEF: %d  Fate: %d", s.Health, s.Atk, s.Def, s.Fate),
		fmt.Sprintf("Chapter: %d  Steps: %d  Turn: %d", s.Chapter, s.Steps, s.TurnCount),
		fmt.Sprintf("Inventory: %v", s.Inventory),
	}
	if len(s.Flags) > 0 {
		output = append(output, fmt.Sprintf("Flags: %v", s.Flags))
	}
	return output
}

func (m *Model) cmdHelp() []string {
	return []string{
		"System:",
		"  /save [name]  — Save game (default: quicksave)",
		"  /load [name]  — Load game (default: quicksave)",
		"  /saves        — List save slots",
		"  /state        — Show current stats",
		"  /quit         — Exit game",
		"  /help         — Show this help",
		"",
		"Play:",
		"  Type the number of an option to choose it.",
		"  Press Enter on an event without options to continue.",
		"",
		"Navigation: PgUp/PgDn to scroll, Up/Down for command history",
	}
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (we use those for input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}

// Package cli provides the line-based terminal shell: event presentation,
// numbered option input, and meta-command dispatch.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hyluen/fateloom/engine"
	"github.com/hyluen/fateloom/engine/catalog"
	"github.com/hyluen/fateloom/engine/journal"
	"github.com/hyluen/fateloom/engine/save"
	"github.com/hyluen/fateloom/engine/selector"
	"github.com/hyluen/fateloom/store"
	"github.com/hyluen/fateloom/types"
)

// CLI handles terminal interaction with the player.
type CLI struct {
	Session *engine.Session
	Catalog *catalog.Catalog
	Journal *journal.Journal
	Saves   *store.Store // nil disables save slots
	In      io.Reader
	Out     io.Writer

	// SessionOpts are reapplied when /load replaces the session.
	SessionOpts []engine.SessionOption

	EchoInput bool // echo each input line after the prompt (for script playback)

	lastEventID string
	reloaded    bool // /load replaced the session; the prompt loop must bail out
}

// New creates a CLI wired to the given session.
func New(sess *engine.Session, cat *catalog.Catalog) *CLI {
	return &CLI{
		Session: sess,
		Catalog: cat,
		Journal: journal.New(200),
		In:      os.Stdin,
		Out:     os.Stdout,
	}
}

// OpenSaves attaches a save-slot store under dir.
func (c *CLI) OpenSaves(dir string) error {
	st, err := store.Open(filepath.Join(dir, "saves.db"))
	if err != nil {
		return err
	}
	c.Saves = st
	return nil
}

// Run drives the session loop: advance → present → choose → resolve,
// until the player is defeated, the content runs out, or /quit.
func (c *CLI) Run() error {
	scanner := bufio.NewScanner(c.In)

	for !c.Session.Over() {
		ev, log, err := c.Session.Advance()
		if errors.Is(err, selector.ErrNoEligible) {
			c.printSystem("The story finds no more paths for you. It ends here.")
			return nil
		}
		if err != nil {
			return err
		}

		c.printLines(log, true)
		c.presentEvent(ev)

		if len(ev.Options) == 0 {
			c.print("(press Enter to continue) ")
			if !scanner.Scan() {
				return nil
			}
			if c.EchoInput {
				c.printLine(strings.TrimSpace(scanner.Text()))
			}
			res, err := c.Session.Acknowledge()
			if err != nil {
				return err
			}
			c.printLines(res.Log, true)
			continue
		}

		if quit := c.promptChoice(scanner, ev); quit {
			return nil
		}
	}

	c.printSystem("Game over.")
	return nil
}

// presentEvent prints the event text and options. When a battle event
// continues into another round, the text is not repeated; the enemy's
// condition is shown instead.
func (c *CLI) presentEvent(ev types.Event) {
	if ev.ID == c.lastEventID && c.Session.State().Battle != nil {
		bs := c.Session.State().Battle
		c.printLine(fmt.Sprintf("%s — %d/%d HP", bs.Enemy.Name, bs.Enemy.HP, bs.MaxHP))
	} else {
		c.printLine("")
		c.printLine(ev.Text)
		c.Journal.Add(ev.Text)
	}
	c.lastEventID = ev.ID

	for i, text := range c.Session.OptionTexts() {
		c.printLine(fmt.Sprintf("  %d) %s", i+1, text))
	}
}

// promptChoice reads input until a valid option resolves or a meta-command
// quits. Returns true if the game should exit.
func (c *CLI) promptChoice(scanner *bufio.Scanner, ev types.Event) bool {
	for {
		c.print("> ")
		if !scanner.Scan() {
			return true
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" || strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		if strings.HasPrefix(input, "/") {
			if c.handleMeta(input) {
				return true
			}
			if c.reloaded {
				// The restored session has no presented event; re-prompting
				// against the old one would strand the player here.
				c.reloaded = false
				return false
			}
			continue
		}

		n, err := strconv.Atoi(input)
		if err != nil {
			c.printSystem(fmt.Sprintf("Enter an option number between 1 and %d.", len(ev.Options)))
			continue
		}

		res, err := c.Session.Choose(n - 1)
		var badChoice *engine.InvalidChoiceError
		if errors.As(err, &badChoice) {
			c.printSystem(fmt.Sprintf("Enter an option number between 1 and %d.", badChoice.Count))
			continue
		}
		if err != nil {
			c.printSystem(err.Error())
			continue
		}

		c.printLines(res.Log, true)
		return false
	}
}

// handleMeta dispatches meta-commands. Returns true if the game should exit.
func (c *CLI) handleMeta(input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/save":
		c.cmdSave(arg)

	case "/load":
		c.cmdLoad(arg)

	case "/saves":
		c.cmdSaves()

	case "/state":
		c.cmdState()

	case "/journal":
		for _, e := range c.Journal.Entries() {
			c.printLine(e.Text)
		}

	case "/help":
		c.cmdHelp()

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func (c *CLI) cmdSave(name string) {
	if c.Saves == nil {
		c.printSystem("Saving is not available.")
		return
	}
	if name == "" {
		name = "quicksave"
	}

	data, err := save.Serialize(c.Session.State())
	if err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	if _, err := c.Saves.Put(name, data, c.Session.State().TurnCount); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Game saved to slot %q.", name))
}

func (c *CLI) cmdLoad(name string) {
	if c.Saves == nil {
		c.printSystem("Saving is not available.")
		return
	}
	if name == "" {
		name = "quicksave"
	}

	data, slot, err := c.Saves.Get(name)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	st, err := save.Deserialize(data)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}

	c.Session = engine.ResumeSession(c.Catalog, st, c.SessionOpts...)
	c.lastEventID = ""
	c.reloaded = true
	c.printSystem(fmt.Sprintf("Game loaded from slot %q (turn %d).", name, slot.Turn))
}

func (c *CLI) cmdSaves() {
	if c.Saves == nil {
		c.printSystem("Saving is not available.")
		return
	}
	slots, err := c.Saves.List()
	if err != nil {
		c.printSystem(fmt.Sprintf("Listing saves failed: %v", err))
		return
	}
	if len(slots) == 0 {
		c.printSystem("No saves yet.")
		return
	}
	for _, s := range slots {
		c.printLine(fmt.Sprintf("  %-12s turn %-4d %s", s.Name, s.Turn, s.CreatedAt.Format("2006-01-02 15:04")))
	}
}

func (c *CLI) cmdState() {
	s := c.Session.State()
	c.printSystem(fmt.Sprintf("HP: %d  ATK: %d  DEF: %d  Fate: %d", s.Health, s.Atk, s.Def, s.Fate))
	c.printSystem(fmt.Sprintf("Chapter: %d  Steps: %d  Turn: %d", s.Chapter, s.Steps, s.TurnCount))
	c.printSystem(fmt.Sprintf("Inventory: %v", s.Inventory))
	if len(s.Flags) > 0 {
		c.printSystem(fmt.Sprintf("Flags: %v", s.Flags))
	}
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /save [name]   — Save game (default: quicksave)",
		"  /load [name]   — Load game (default: quicksave)",
		"  /saves         — List save slots",
		"  /state         — Show current stats",
		"  /journal       — Replay the story journal",
		"  /quit          — Exit game",
		"  /help          — Show this help",
		"",
		"Play:",
		"  Type the number of an option to choose it.",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) printLines(lines []string, system bool) {
	for _, line := range lines {
		if system {
			c.printSystem(line)
			c.Journal.AddSystem(line)
		} else {
			c.printLine(line)
			c.Journal.Add(line)
		}
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}

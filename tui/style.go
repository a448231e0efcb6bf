package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleStory = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleOption = lipgloss.NewStyle().
			Foreground(lipgloss.Color("117"))

	styleFate = lipgloss.NewStyle().
			Foreground(lipgloss.Color("141"))

	styleBattle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208"))

	styleDanger = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindStory lineKind = iota
	kindOption
	kindFate
	kindBattle
	kindDanger
	kindSystem
)

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	trimmed := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case isNumberedOption(trimmed):
		return kindOption
	case strings.Contains(line, "fatal"),
		strings.HasPrefix(trimmed, "You died"):
		return kindDanger
	case strings.HasPrefix(trimmed, "Fate"),
		strings.Contains(line, "fate"):
		return kindFate
	case strings.Contains(line, "damage"),
		strings.Contains(line, "HP"),
		strings.HasPrefix(trimmed, "Battle begins"),
		strings.HasPrefix(trimmed, "You brace"),
		strings.HasPrefix(trimmed, "You break away"):
		return kindBattle
	default:
		return kindStory
	}
}

// isNumberedOption reports whether a line looks like "1) Take the rock".
func isNumberedOption(line string) bool {
	for i, r := range line {
		if r >= '0' && r <= '9' {
			continue
		}
		return i > 0 && r == ')'
	}
	return false
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}

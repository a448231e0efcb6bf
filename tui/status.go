package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hyluen/fateloom/engine/fate"
)

// renderStatusBar produces a full-width inverted status line showing
// player stats, the fate reading, chapter, and turn count.
func (m Model) renderStatusBar() string {
	s := m.session.State()

	left := fmt.Sprintf(" HP:%d ATK:%d DEF:%d | Fate:%d (%s) | Ch.%d",
		s.Health, s.Atk, s.Def, s.Fate, fate.Band(s.Fate), s.Chapter)
	right := fmt.Sprintf("T:%d ", s.TurnCount)

	// Show inventory items if they fit, otherwise just count.
	if n := len(s.Inventory); n > 0 {
		invStr := strings.Join(s.Inventory, ", ")
		candidate := fmt.Sprintf("Inv: %s | T:%d ", invStr, s.TurnCount)
		if lipgloss.Width(left)+lipgloss.Width(candidate)+2 < m.width {
			right = candidate
		} else {
			right = fmt.Sprintf("Inv: %d | T:%d ", n, s.TurnCount)
		}
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}

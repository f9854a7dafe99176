package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Style constructors, to avoid repeating lipgloss.NewStyle().Foreground().

func mutedStyle(t *Theme) lipgloss.Style  { return lipgloss.NewStyle().Foreground(t.FgDim) }
func accentStyle(t *Theme) lipgloss.Style { return lipgloss.NewStyle().Foreground(t.Accent) }
func fgStyle(t *Theme) lipgloss.Style     { return lipgloss.NewStyle().Foreground(t.Fg) }

// styledSep returns a " · " separator with a muted dot.
func styledSep(t *Theme) string {
	return " " + mutedStyle(t).Render("·") + " "
}

// cursorRow highlights a row as the cursor position using Reverse.
func cursorRow(row string, w int) string {
	return lipgloss.NewStyle().Reverse(true).Render(padRight(Truncate(stripANSI(row), w), w))
}

// padRight pads a possibly styled string with spaces to visual width w.
func padRight(s string, w int) string {
	if pad := w - lipgloss.Width(s); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}

// fitCell truncates then pads plain text to exactly w cells.
func fitCell(s string, w int) string {
	return padRight(Truncate(s, w), w)
}

// centerText centers a string within totalW.
func centerText(s string, totalW int) string {
	w := lipgloss.Width(s)
	if w >= totalW {
		return s
	}
	return strings.Repeat(" ", (totalW-w)/2) + s
}

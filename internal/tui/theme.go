package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/thobiasn/monui/internal/protocol"
)

// Theme holds all colors used by the TUI. Views reference theme fields,
// never raw color values.
type Theme struct {
	Fg       lipgloss.Color
	FgDim    lipgloss.Color
	Border   lipgloss.Color
	Accent   lipgloss.Color
	Healthy  lipgloss.Color // OK
	Warning  lipgloss.Color // WARNING
	Critical lipgloss.Color // CRITICAL, fetch errors
	Unknown  lipgloss.Color // UNKNOWN
	Pending  lipgloss.Color // PENDING and anything unrecognized
	Graph    lipgloss.Color
}

// TerminalTheme returns ANSI 0-15 defaults so the TUI inherits the
// terminal's palette.
func TerminalTheme() Theme {
	return Theme{
		Fg:       lipgloss.Color("7"),
		FgDim:    lipgloss.Color("8"),
		Border:   lipgloss.Color("8"),
		Accent:   lipgloss.Color("4"),
		Healthy:  lipgloss.Color("2"),
		Warning:  lipgloss.Color("3"),
		Critical: lipgloss.Color("1"),
		Unknown:  lipgloss.Color("5"),
		Pending:  lipgloss.Color("8"),
		Graph:    lipgloss.Color("12"),
	}
}

// StateColor returns the color of a service state. Matching is case
// insensitive since backends disagree on casing.
func (t Theme) StateColor(state string) lipgloss.Color {
	switch strings.ToUpper(state) {
	case protocol.StateOK:
		return t.Healthy
	case protocol.StateWarning:
		return t.Warning
	case protocol.StateCritical:
		return t.Critical
	case protocol.StateUnknown:
		return t.Unknown
	default:
		return t.Pending
	}
}

// StateIndicator returns a colored dot for a service state. Problem states
// use a filled dot.
func (t Theme) StateIndicator(state string) string {
	style := lipgloss.NewStyle().Foreground(t.StateColor(state))
	switch strings.ToUpper(state) {
	case protocol.StateOK, protocol.StatePending, "":
		return style.Render("○")
	default:
		return style.Render("●")
	}
}

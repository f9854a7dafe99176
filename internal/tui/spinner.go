package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Pulse frames shown while a region is loading.
var spinnerFrames = [...]string{"·  ", "·· ", "···", " ··", "  ·", "   "}

const spinnerTickInterval = 150 * time.Millisecond

// spinnerTickMsg advances the spinner frame.
type spinnerTickMsg struct{}

// spinnerTick returns a tea.Cmd that sends a spinnerTickMsg after the interval.
func spinnerTick() tea.Cmd {
	return tea.Tick(spinnerTickInterval, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

// SpinnerView returns a formatted "<frame> label" string with the frame
// styled in the theme's Accent color.
func SpinnerView(frame int, label string, theme *Theme) string {
	f := spinnerFrames[frame%len(spinnerFrames)]
	return lipgloss.NewStyle().Foreground(theme.Accent).Render(f) + " " + label
}

// SpinnerViewCentered returns a spinner view centered within the given
// width and height. Used for loading states inside Box panels.
func SpinnerViewCentered(frame int, label string, theme *Theme, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, SpinnerView(frame, label, theme))
}

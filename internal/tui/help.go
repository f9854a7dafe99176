package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// helpOverlay renders a centered help box listing every key binding.
func helpOverlay(keys keyMap, width, height int, theme *Theme) string {
	bright := fgStyle(theme)
	dim := mutedStyle(theme)

	var lines []string
	for i, g := range keys.helpGroups() {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, " "+accentStyle(theme).Render(g.title))
		for _, b := range g.bindings {
			h := b.Help()
			lines = append(lines, "   "+bright.Render(fitCell(h.Key, 8))+" "+dim.Render(h.Desc))
		}
	}

	boxW := 40
	if boxW > width-4 {
		boxW = width - 4
	}
	boxH := len(lines) + 2
	if boxH > height-2 {
		boxH = height - 2
	}

	overlay := Box("Help", strings.Join(lines, "\n"), boxW, boxH, theme)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, overlay)
}

// renderHelpBar renders the footer key hints.
func renderHelpBar(keys keyMap, theme *Theme) string {
	dim := mutedStyle(theme)
	bright := fgStyle(theme)

	var parts []string
	for _, b := range keys.footerBindings() {
		h := b.Help()
		parts = append(parts, bright.Render(h.Key)+" "+dim.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}

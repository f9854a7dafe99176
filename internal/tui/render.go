package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Box renders a bordered panel with a title using rounded Unicode corners.
// Content is padded to fill width×height (including borders).
func Box(title, content string, width, height int, theme *Theme) string {
	if width < 4 {
		width = 4
	}
	if height < 3 {
		height = 3
	}

	innerW := width - 2
	border := lipgloss.NewStyle().Foreground(theme.Border)

	var top string
	if title != "" {
		titleStr := " " + title + " "
		titleLen := lipgloss.Width(titleStr)
		if titleLen > innerW-2 {
			titleStr = TruncateStyled(titleStr, innerW-2)
			titleLen = lipgloss.Width(titleStr)
		}
		styled := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render(titleStr)
		// "╭" + leading "─" + title + trailing "─"s + "╮"
		trailing := innerW - 1 - titleLen
		if trailing < 0 {
			trailing = 0
		}
		top = border.Render("╭─") + styled + border.Render(strings.Repeat("─", trailing)+"╮")
	} else {
		top = border.Render("╭" + strings.Repeat("─", innerW) + "╮")
	}

	lines := strings.Split(content, "\n")
	innerH := height - 2
	for len(lines) < innerH {
		lines = append(lines, "")
	}
	if len(lines) > innerH {
		lines = lines[:innerH]
	}

	side := border.Render("│")
	var b strings.Builder
	b.WriteString(top)
	b.WriteByte('\n')
	for _, line := range lines {
		if lipgloss.Width(line) > innerW {
			line = TruncateStyled(line, innerW)
		}
		b.WriteString(side)
		b.WriteString(padRight(line, innerW))
		b.WriteString(side)
		b.WriteByte('\n')
	}
	b.WriteString(border.Render("╰" + strings.Repeat("─", innerW) + "╯"))

	return b.String()
}

// Sparkline renders a single row of braille characters representing data
// points, scaled between the series minimum and maximum. Each braille
// character encodes two data points (left and right columns).
func Sparkline(data []float64, width int, color lipgloss.Color) string {
	if width < 1 || len(data) == 0 {
		return ""
	}

	maxPoints := width * 2
	if len(data) > maxPoints {
		data = data[len(data)-maxPoints:]
	}

	minVal, maxVal := data[0], data[0]
	for _, v := range data {
		if v > maxVal {
			maxVal = v
		}
		if v < minVal {
			minVal = v
		}
	}
	// A flat series still shows as a baseline of one dot.
	span := maxVal - minVal

	heights := make([]int, len(data))
	for i, v := range data {
		h := 1
		if span > 0 {
			h = 1 + int((v-minVal)/span*3)
		}
		if h > 4 {
			h = 4
		}
		heights[i] = h
	}

	// Braille dot bits, filled from the bottom row up:
	//   row 3: 0x40 / 0x80, row 2: 0x04 / 0x20, row 1: 0x02 / 0x10, row 0: 0x01 / 0x08
	leftBits := [4]byte{0x40, 0x04, 0x02, 0x01}
	rightBits := [4]byte{0x80, 0x20, 0x10, 0x08}

	chars := make([]rune, 0, width)
	for i := 0; i < len(heights); i += 2 {
		var pattern byte
		for row := 0; row < heights[i]; row++ {
			pattern |= leftBits[row]
		}
		if i+1 < len(heights) {
			for row := 0; row < heights[i+1]; row++ {
				pattern |= rightBits[row]
			}
		}
		chars = append(chars, rune(0x2800+int(pattern)))
	}
	for len(chars) < width {
		chars = append(chars, 0x2800)
	}

	return lipgloss.NewStyle().Foreground(color).Render(string(chars))
}

// Truncate shortens a plain (non-styled) string to maxLen, appending … if truncated.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen == 1 {
		return "…"
	}
	return string(runes[:maxLen-1]) + "…"
}

// TruncateStyled shortens a string that may contain ANSI escape sequences.
func TruncateStyled(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= maxLen {
		return s
	}
	return ansi.Truncate(s, maxLen, "…")
}

// stripANSI removes ANSI escape sequences from a string.
func stripANSI(s string) string {
	return ansi.Strip(s)
}

// wrapText splits s into lines of at most width runes, breaking on spaces
// where possible.
func wrapText(s string, width int) []string {
	if width < 1 {
		return nil
	}
	var out []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := ""
		for _, w := range words {
			for len([]rune(w)) > width {
				if line != "" {
					out = append(out, line)
					line = ""
				}
				r := []rune(w)
				out = append(out, string(r[:width]))
				w = string(r[width:])
			}
			switch {
			case line == "":
				line = w
			case len([]rune(line))+1+len([]rune(w)) <= width:
				line += " " + w
			default:
				out = append(out, line)
				line = w
			}
		}
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

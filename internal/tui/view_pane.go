package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/thobiasn/monui/internal/journal"
	"github.com/thobiasn/monui/internal/protocol"
)

// tabLabel is the plain label of a tab. A tab whose last fetch failed
// carries a marker.
func (a *App) tabLabel(t paneTab) string {
	label := " " + tabNames[t]
	if a.tabStale(t) {
		label += " ✗"
	}
	return label + " "
}

func (a *App) tabStale(t paneTab) bool {
	switch t {
	case tabDetails:
		return a.st.Detail.stale()
	case tabGraphs:
		return a.st.Graphs.stale()
	case tabHistory:
		return a.st.History.stale()
	}
	return false
}

// tabAt maps an x offset inside the pane to the tab drawn there.
func (a *App) tabAt(x int) (paneTab, bool) {
	pos := 0
	for t := paneTab(0); t < tabCount; t++ {
		w := lipgloss.Width(a.tabLabel(t))
		if x >= pos && x < pos+w {
			return t, true
		}
		pos += w + 1
	}
	return 0, false
}

func renderTabBar(a *App) string {
	theme := &a.theme
	var parts []string
	for t := paneTab(0); t < tabCount; t++ {
		label := a.tabLabel(t)
		switch {
		case t == a.tab:
			parts = append(parts, lipgloss.NewStyle().Reverse(true).Bold(true).Render(label))
		case a.tabStale(t):
			parts = append(parts, lipgloss.NewStyle().Foreground(theme.Critical).Render(label))
		default:
			parts = append(parts, mutedStyle(theme).Render(label))
		}
	}
	return strings.Join(parts, " ")
}

// renderPane renders the right-hand panel: the tab bar and the active tab.
// Each tab reads only its own region of the state.
func renderPane(a *App, width, height int) string {
	if width < 4 {
		return ""
	}
	innerW := width - 2
	bodyH := max(height-3, 0)

	var body []string
	switch a.tab {
	case tabDetails:
		body = renderDetailsTab(a, innerW, bodyH)
	case tabGraphs:
		body = renderGraphsTab(a, innerW, bodyH)
	case tabHistory:
		body = renderHistoryTab(a, innerW, bodyH)
	}
	if len(body) > bodyH {
		body = body[:bodyH]
	}

	title := "No service selected"
	if a.st.Selected != "" {
		title = a.st.Selected
	}
	content := renderTabBar(a) + "\n" + strings.Join(body, "\n")
	return Box(title, content, width, height, &a.theme)
}

// regionBody renders the shared states of a per-selection region and
// delegates the rendered state to draw. A failed refresh keeps the last
// good content and appends the error.
func regionBody[T any](a *App, r *region[T], what string, innerW, h int, draw func(T) []string) []string {
	theme := &a.theme
	sel := a.st.Selected
	if sel == "" {
		return []string{"", centerText(mutedStyle(theme).Render("Select a service to see its "+what), innerW)}
	}

	if !r.showing(sel) {
		switch r.Phase {
		case PhaseLoading:
			return strings.Split(SpinnerViewCentered(a.frame, "loading "+what, theme, innerW, h), "\n")
		case PhaseFailed:
			return errorLines("Couldn't load "+what, r.Err, theme, innerW)
		}
		return nil
	}

	lines := draw(r.Data)
	if r.stale() {
		errLines := errorLines("refresh failed, showing previous "+what, r.Err, theme, innerW)
		if keep := h - len(errLines) - 1; len(lines) > keep {
			lines = lines[:max(keep, 0)]
		}
		lines = append(lines, "")
		lines = append(lines, errLines...)
	}
	return lines
}

func errorLines(headline string, err error, theme *Theme, innerW int) []string {
	lines := []string{" " + lipgloss.NewStyle().Foreground(theme.Critical).Render("✗ "+headline)}
	if err != nil {
		for _, l := range wrapText(err.Error(), innerW-3) {
			lines = append(lines, "   "+mutedStyle(theme).Render(l))
		}
	}
	return lines
}

func renderDetailsTab(a *App, innerW, h int) []string {
	return regionBody(a, &a.st.Detail, "details", innerW, h, func(d *protocol.ServiceDetail) []string {
		return renderDetailFields(d, &a.layout, &a.theme)
	})
}

// renderDetailFields lays out name/value pairs using the layout's name
// column. Long values wrap within the value column.
func renderDetailFields(d *protocol.ServiceDetail, l *Layout, theme *Theme) []string {
	if d == nil || len(d.Fields) == 0 {
		return []string{" " + mutedStyle(theme).Render("No details reported")}
	}
	indent := strings.Repeat(" ", l.NameCol+1)
	var lines []string
	for _, f := range d.Fields {
		name := mutedStyle(theme).Render(fitCell(f.Name, l.NameCol))
		vals := wrapText(f.Value, l.ValueCol)
		if len(vals) == 0 {
			vals = []string{""}
		}
		lines = append(lines, name+" "+fgStyle(theme).Render(vals[0]))
		for _, v := range vals[1:] {
			lines = append(lines, indent+fgStyle(theme).Render(v))
		}
	}
	return lines
}

func renderGraphsTab(a *App, innerW, h int) []string {
	return regionBody(a, &a.st.Graphs, "graphs", innerW, h, func(g []protocol.Graph) []string {
		return renderGraphs(g, &a.theme, innerW)
	})
}

func renderGraphs(graphs []protocol.Graph, theme *Theme, innerW int) []string {
	if len(graphs) == 0 {
		return []string{" " + mutedStyle(theme).Render("No graphs available")}
	}
	var lines []string
	for i, g := range graphs {
		if i > 0 {
			lines = append(lines, "")
		}
		title := " " + fgStyle(theme).Bold(true).Render(g.Title)
		if g.Unit != "" {
			title += " " + mutedStyle(theme).Render("("+g.Unit+")")
		}
		lines = append(lines, title)
		if len(g.Points) == 0 {
			lines = append(lines, " "+mutedStyle(theme).Render(Truncate(g.Image, innerW-1)))
			continue
		}
		lines = append(lines, " "+Sparkline(g.Points, innerW-2, theme.Graph))
		lo, hi := minMax(g.Points)
		stats := fmt.Sprintf("min %s  max %s  last %s",
			formatValue(lo, g.Unit), formatValue(hi, g.Unit), formatValue(g.Points[len(g.Points)-1], g.Unit))
		lines = append(lines, " "+mutedStyle(theme).Render(Truncate(stats, innerW-1)))
	}
	return lines
}

func minMax(v []float64) (float64, float64) {
	lo, hi := v[0], v[0]
	for _, x := range v[1:] {
		lo = min(lo, x)
		hi = max(hi, x)
	}
	return lo, hi
}

// formatValue prints a graph value; byte units get humanized sizes.
func formatValue(v float64, unit string) string {
	switch strings.ToUpper(unit) {
	case "B", "BYTES":
		if v >= 0 {
			return humanize.IBytes(uint64(v))
		}
	}
	return humanize.FtoaWithDigits(v, 2) + unit
}

func renderHistoryTab(a *App, innerW, h int) []string {
	if a.journal == nil {
		return []string{
			"",
			" " + mutedStyle(&a.theme).Render("State journal disabled."),
			" " + mutedStyle(&a.theme).Render("Set [journal] path in the config to record transitions."),
		}
	}
	return regionBody(a, &a.st.History, "history", innerW, h, func(rows []journal.Transition) []string {
		return renderHistory(rows, a.now(), &a.theme, innerW)
	})
}

func renderHistory(rows []journal.Transition, now time.Time, theme *Theme, innerW int) []string {
	if len(rows) == 0 {
		return []string{" " + mutedStyle(theme).Render("No transitions recorded yet")}
	}
	const whenW = 16
	var lines []string
	for _, r := range rows {
		when := fitCell(humanize.RelTime(time.Unix(r.Timestamp, 0), now, "ago", "from now"), whenW)
		state := theme.StateIndicator(r.State) + " " +
			lipgloss.NewStyle().Foreground(theme.StateColor(r.State)).Render(fitCell(r.State, stateColW-2))
		out := Truncate(firstLine(r.Output), max(innerW-whenW-stateColW-3, 0))
		lines = append(lines, " "+mutedStyle(theme).Render(when)+" "+state+" "+out)
	}
	return lines
}

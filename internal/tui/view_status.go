package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/thobiasn/monui/internal/protocol"
)

// latencySparkW is the width of the poll latency sparkline.
const latencySparkW = 12

// renderStatusPanel renders the services table. Column widths come from the
// layout on every render, so a new snapshot never resets them.
func renderStatusPanel(a *App, width, height int) string {
	theme := &a.theme
	st := a.st
	innerW := width - 2
	vis := a.visibleRows()

	lines := []string{renderStatusHeader(&a.layout, theme, innerW)}

	var body []string
	switch {
	case st.Poll == PhaseFailed:
		body = renderStatusError(st.PollErr, a.opts.Interval, theme, innerW)
	case st.Services == nil:
		body = strings.Split(SpinnerViewCentered(a.frame, "loading services", theme, innerW, vis), "\n")
	case len(st.Services) == 0:
		body = []string{"", centerText(mutedStyle(theme).Render("No services reported for "+st.Scope().String()), innerW)}
	default:
		body = renderStatusRows(a, innerW, vis)
	}
	for len(body) < vis {
		body = append(body, "")
	}
	lines = append(lines, body[:vis]...)
	lines = append(lines, renderStatusLine(a, innerW))

	title := "Services"
	if st.Poll == PhaseLoading && st.Services != nil {
		title += " " + spinnerFrames[a.frame%len(spinnerFrames)]
	}
	return Box(title, strings.Join(lines, "\n"), width, height, theme)
}

func renderStatusHeader(l *Layout, theme *Theme, innerW int) string {
	h := strings.Repeat(" ", markerColW) +
		fitCell("State", stateColW) + " " +
		fitCell("Service", l.ServiceCol) + " " +
		fitCell("Output", l.OutputCol)
	return mutedStyle(theme).Render(Truncate(h, innerW))
}

func renderStatusRows(a *App, innerW, vis int) []string {
	theme := &a.theme
	st := a.st
	l := &a.layout
	hl := st.Highlighted()
	off := a.tableOffset()

	var rows []string
	for i := off; i < len(st.Services) && i < off+vis; i++ {
		svc := st.Services[i]

		marker := strings.Repeat(" ", markerColW)
		service := fgStyle(theme).Render(fitCell(svc.Service, l.ServiceCol))
		if i == hl {
			marker = accentStyle(theme).Render("▶ ")
			service = accentStyle(theme).Bold(true).Render(fitCell(svc.Service, l.ServiceCol))
		}
		state := theme.StateIndicator(svc.State) + " " +
			lipgloss.NewStyle().Foreground(theme.StateColor(svc.State)).Render(fitCell(svc.State, stateColW-2))
		output := mutedStyle(theme).Render(fitCell(firstLine(svc.Output), l.OutputCol))

		row := marker + state + " " + service + " " + output
		if i == st.Cursor {
			row = cursorRow(row, innerW)
		}
		rows = append(rows, row)
	}
	return rows
}

// renderStatusError is the static error state that replaces the rows when
// a poll fails.
func renderStatusError(err error, interval time.Duration, theme *Theme, innerW int) []string {
	crit := lipgloss.NewStyle().Foreground(theme.Critical).Bold(true)
	lines := []string{
		"",
		centerText(crit.Render("✗ Couldn't load service status"), innerW),
		centerText(mutedStyle(theme).Render("no (valid) data received from the backend"), innerW),
		"",
	}
	if err != nil {
		for _, l := range wrapText(err.Error(), innerW-4) {
			lines = append(lines, "  "+mutedStyle(theme).Render(l))
		}
		lines = append(lines, "")
	}
	lines = append(lines, centerText(mutedStyle(theme).Render(fmt.Sprintf("retrying every %s, r to retry now", interval)), innerW))
	return lines
}

// renderStatusLine is the bottom line of the panel: latency sparkline,
// last update, and a per-state count.
func renderStatusLine(a *App, innerW int) string {
	theme := &a.theme
	st := a.st
	if st.LastPoll.IsZero() {
		return ""
	}

	var parts []string
	if lat := st.Latency.Data(); len(lat) > 0 {
		parts = append(parts, Sparkline(lat, latencySparkW, theme.Graph)+" "+
			mutedStyle(theme).Render(fmt.Sprintf("%.0fms", lat[len(lat)-1])))
	}
	parts = append(parts, mutedStyle(theme).Render("updated "+humanize.RelTime(st.LastPoll, a.now(), "ago", "from now")))
	if counts := stateCounts(st.Services, theme); counts != "" {
		parts = append(parts, counts)
	}
	return TruncateStyled(" "+strings.Join(parts, styledSep(theme)), innerW)
}

// stateCounts renders "2 OK 1 WARNING" style counts in severity order.
func stateCounts(services []protocol.ServiceStatus, theme *Theme) string {
	counts := make(map[string]int)
	for _, s := range services {
		counts[strings.ToUpper(s.State)]++
	}
	var parts []string
	for _, state := range []string{protocol.StateCritical, protocol.StateWarning, protocol.StateUnknown, protocol.StateOK, protocol.StatePending} {
		if n := counts[state]; n > 0 {
			parts = append(parts, lipgloss.NewStyle().Foreground(theme.StateColor(state)).Render(fmt.Sprintf("%d %s", n, state)))
		}
	}
	return strings.Join(parts, " ")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

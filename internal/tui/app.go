package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/thobiasn/monui/internal/protocol"
)

// paneTab is a tab of the right-hand panel.
type paneTab int

const (
	tabDetails paneTab = iota
	tabGraphs
	tabHistory
	tabCount
)

var tabNames = [tabCount]string{"Details", "Graphs", "History"}

// Options configures an App.
type Options struct {
	Interval time.Duration // status poll interval
	Timeout  time.Duration // per-request timeout
	Limits   LayoutLimits
	Theme    Theme
}

// App is the root Bubbletea model.
type App struct {
	st      *State
	fetch   Fetcher
	journal Journal // nil when the journal is disabled
	opts    Options
	keys    keyMap
	theme   Theme
	layout  Layout

	width    int
	height   int
	tab      paneTab
	showHelp bool
	dragging bool
	spinning bool
	frame    int

	now func() time.Time
}

// NewApp creates the root model for one scope. j may be nil.
func NewApp(scope protocol.Scope, f Fetcher, j Journal, opts Options) App {
	if opts.Interval <= 0 {
		opts.Interval = 30 * time.Second
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return App{
		st:      NewState(scope),
		fetch:   f,
		journal: j,
		opts:    opts,
		keys:    defaultKeyMap(),
		theme:   opts.Theme,
		layout:  NewLayout(opts.Limits),
		now:     time.Now,
	}
}

// State exposes the application state, mainly for tests and shutdown.
func (a App) State() *State { return a.st }

// Init issues the first poll right away and starts the timer.
func (a App) Init() tea.Cmd {
	return func() tea.Msg { return pollTickMsg{} }
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.layout.SetTotal(msg.Width)
		return a, nil

	case pollTickMsg:
		return a, tea.Batch(a.startPoll(), pollTick(a.opts.Interval))

	case statusMsg:
		return a, a.handleStatus(msg)

	case detailMsg:
		if a.st.ApplyDetail(msg.seq, msg.detail, msg.err) && msg.err != nil {
			logFetchError("detail", a.st.Selected, msg.err)
		}
		return a, nil

	case graphsMsg:
		if a.st.ApplyGraphs(msg.seq, msg.graphs, msg.err) && msg.err != nil {
			logFetchError("graphs", a.st.Selected, msg.err)
		}
		return a, nil

	case historyMsg:
		if a.st.ApplyHistory(msg.seq, msg.rows, msg.err) && msg.err != nil {
			logFetchError("history", a.st.Selected, msg.err)
		}
		return a, nil

	case journalDoneMsg:
		if msg.err != nil {
			slog.Warn("journal record failed", "error", msg.err)
			return a, nil
		}
		if msg.written > 0 {
			slog.Debug("journal recorded transitions", "count", msg.written)
			return a, a.refreshHistory()
		}
		return a, nil

	case spinnerTickMsg:
		if !a.loading() {
			a.spinning = false
			return a, nil
		}
		a.frame++
		return a, spinnerTick()

	case tea.MouseMsg:
		return a.handleMouse(msg)

	case tea.KeyMsg:
		return a.handleKey(msg)
	}
	return a, nil
}

// startPoll issues a status request unless one is already in flight.
func (a *App) startPoll() tea.Cmd {
	seq, ok := a.st.BeginPoll()
	if !ok {
		slog.Debug("poll skipped, previous request still in flight", "scope", a.st.Scope().String())
		return nil
	}
	slog.Debug("poll", "scope", a.st.Scope().String(), "seq", seq)
	return tea.Batch(pollCmd(a.fetch, a.st.Scope(), seq, a.opts.Timeout), a.startSpinner())
}

func (a *App) handleStatus(msg statusMsg) tea.Cmd {
	if !a.st.ApplyStatus(msg.seq, msg.services, msg.err, msg.at, msg.took) {
		return nil
	}
	if msg.err != nil {
		slog.Warn("status poll failed", "scope", a.st.Scope().String(), "error", msg.err)
		return nil
	}
	if a.journal == nil {
		return nil
	}
	return recordCmd(a.journal, a.st.Scope(), msg.services, msg.at, a.opts.Timeout)
}

// activate selects the service in row i and fans out the dependent fetches.
func (a *App) activate(i int) tea.Cmd {
	if i < 0 || i >= len(a.st.Services) {
		return nil
	}
	a.st.Cursor = i
	service := a.st.Services[i].Service
	ctx, seq := a.st.Select(service)
	scope := a.st.Scope()
	slog.Debug("select service", "scope", scope.String(), "service", service)

	cmds := []tea.Cmd{
		detailCmd(ctx, a.fetch, scope, service, seq, a.opts.Timeout),
		graphsCmd(ctx, a.fetch, scope, service, seq, a.opts.Timeout),
		a.startSpinner(),
	}
	if a.journal != nil {
		cmds = append(cmds, historyCmd(ctx, a.journal, scope, service, seq, a.opts.Timeout))
	} else {
		a.st.History.Phase = PhaseIdle
	}
	return tea.Batch(cmds...)
}

// refreshHistory re-reads the history of the selected service after the
// journal recorded new transitions.
func (a *App) refreshHistory() tea.Cmd {
	ctx, seq, ok := a.st.Selection()
	if !ok || a.journal == nil {
		return nil
	}
	return historyCmd(ctx, a.journal, a.st.Scope(), a.st.Selected, seq, a.opts.Timeout)
}

// startSpinner starts the spinner tick chain if it is not running.
func (a *App) startSpinner() tea.Cmd {
	if a.spinning {
		return nil
	}
	a.spinning = true
	return spinnerTick()
}

func (a *App) loading() bool {
	return a.st.Poll == PhaseLoading ||
		a.st.Detail.Phase == PhaseLoading ||
		a.st.Graphs.Phase == PhaseLoading ||
		a.st.History.Phase == PhaseLoading
}

func logFetchError(what, service string, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	slog.Warn(what+" fetch failed", "service", service, "error", err)
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := a.keys

	if key.Matches(msg, k.Quit) {
		a.st.Close()
		return a, tea.Quit
	}
	if key.Matches(msg, k.Help) {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		if msg.String() == "esc" {
			a.showHelp = false
		}
		return a, nil
	}

	switch {
	case key.Matches(msg, k.Up):
		a.st.MoveCursor(-1)
	case key.Matches(msg, k.Down):
		a.st.MoveCursor(1)
	case key.Matches(msg, k.Top):
		a.st.Cursor = 0
	case key.Matches(msg, k.Bottom):
		a.st.MoveCursor(len(a.st.Services))
	case key.Matches(msg, k.Select):
		return a, a.activate(a.st.Cursor)
	case key.Matches(msg, k.Refresh):
		return a, a.startPoll()
	case key.Matches(msg, k.NextTab):
		a.tab = (a.tab + 1) % tabCount
	case key.Matches(msg, k.PrevTab):
		a.tab = (a.tab + tabCount - 1) % tabCount
	case key.Matches(msg, k.TabDetails):
		a.tab = tabDetails
	case key.Matches(msg, k.TabGraphs):
		a.tab = tabGraphs
	case key.Matches(msg, k.TabHistory):
		a.tab = tabHistory
	case key.Matches(msg, k.MasterWider):
		a.layout.ResizeMaster(2)
	case key.Matches(msg, k.MasterNarrow):
		a.layout.ResizeMaster(-2)
	case key.Matches(msg, k.ServiceWider):
		a.layout.ResizeServiceCol(2)
	case key.Matches(msg, k.ServiceNarr):
		a.layout.ResizeServiceCol(-2)
	case key.Matches(msg, k.NameWider):
		a.layout.ResizeNameCol(2)
	case key.Matches(msg, k.NameNarrow):
		a.layout.ResizeNameCol(-2)
	}
	return a, nil
}

// Screen geometry shared by View and the mouse handler. The services
// table starts below the panel's top border and the header line.
const (
	tableFirstRowY = 2
	tabBarY        = 1
)

// visibleRows is the number of service rows that fit in the panel: the
// content height minus borders, header and the panel's status line.
func (a *App) visibleRows() int {
	return max(a.contentHeight()-4, 0)
}

func (a *App) contentHeight() int {
	return max(a.height-1, 1)
}

// tableOffset is the first service row drawn. The cursor stays in view.
func (a *App) tableOffset() int {
	vis := a.visibleRows()
	if vis == 0 || a.st.Cursor < vis {
		return 0
	}
	return a.st.Cursor - vis + 1
}

func (a App) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			if msg.Button == tea.MouseButtonWheelUp {
				a.st.MoveCursor(-1)
			} else if msg.Button == tea.MouseButtonWheelDown {
				a.st.MoveCursor(1)
			}
			return a, nil
		}
		if a.showHelp {
			a.showHelp = false
			return a, nil
		}
		if a.layout.OnBorder(msg.X) {
			a.dragging = true
			return a, nil
		}
		if msg.X < a.layout.Master {
			row := msg.Y - tableFirstRowY
			if row >= 0 && row < a.visibleRows() {
				return a, a.activate(a.tableOffset() + row)
			}
			return a, nil
		}
		if msg.Y == tabBarY {
			if t, ok := a.tabAt(msg.X - a.layout.PaneX() - 1); ok {
				a.tab = t
			}
		}
		return a, nil

	case tea.MouseActionMotion:
		if a.dragging {
			a.layout.SetMaster(msg.X + 1)
		}
		return a, nil

	case tea.MouseActionRelease:
		if a.dragging {
			a.layout.SetMaster(msg.X + 1)
			a.dragging = false
		}
		return a, nil
	}
	return a, nil
}

func (a App) View() string {
	if a.width == 0 || a.height == 0 {
		return "Loading..."
	}
	contentH := a.contentHeight()

	left := renderStatusPanel(&a, a.layout.Master, contentH)
	right := renderPane(&a, a.layout.Detail, contentH)
	gap := lipgloss.NewStyle().Width(a.layout.Margin()).Render("")
	var content string
	switch {
	case a.layout.Master == 0:
		content = right
	case a.layout.Detail == 0:
		content = left
	default:
		content = lipgloss.JoinHorizontal(lipgloss.Top, left, gap, right)
	}

	if a.showHelp {
		content = helpOverlay(a.keys, a.width, contentH, &a.theme)
	}
	return content + "\n" + a.renderFooter()
}

func (a *App) renderFooter() string {
	scope := accentStyle(&a.theme).Render(" " + a.st.Scope().String())
	every := mutedStyle(&a.theme).Render(fmt.Sprintf(" every %s", a.opts.Interval))
	return TruncateStyled(scope+every+"  "+renderHelpBar(a.keys, &a.theme), a.width)
}

package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/thobiasn/monui/internal/journal"
	"github.com/thobiasn/monui/internal/protocol"
)

// historyLimit is the number of transitions shown in the History tab.
const historyLimit = 50

// Journal is the subset of the state journal the client uses.
type Journal interface {
	Record(ctx context.Context, scope protocol.Scope, services []protocol.ServiceStatus, at time.Time) (int, error)
	History(ctx context.Context, scope protocol.Scope, service string, limit int) ([]journal.Transition, error)
}

// Messages produced by the commands below. Per-selection responses carry
// the selection sequence they were issued for; the poll carries its own.
type pollTickMsg struct{}

type statusMsg struct {
	seq      uint64
	services []protocol.ServiceStatus
	err      error
	at       time.Time
	took     time.Duration
}

type detailMsg struct {
	seq    uint64
	detail *protocol.ServiceDetail
	err    error
}

type graphsMsg struct {
	seq    uint64
	graphs []protocol.Graph
	err    error
}

type historyMsg struct {
	seq  uint64
	rows []journal.Transition
	err  error
}

type journalDoneMsg struct {
	written int
	err     error
}

// pollTick schedules the next status poll.
func pollTick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return pollTickMsg{}
	})
}

// pollCmd fetches one status snapshot.
func pollCmd(f Fetcher, scope protocol.Scope, seq uint64, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		start := time.Now()
		services, err := f.Status(ctx, scope)
		return statusMsg{seq: seq, services: services, err: err, at: time.Now(), took: time.Since(start)}
	}
}

// detailCmd fetches the detail record of the selected service. parent is
// the selection's context; selecting another service cancels it.
func detailCmd(parent context.Context, f Fetcher, scope protocol.Scope, service string, seq uint64, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		d, err := f.Detail(ctx, scope, service)
		return detailMsg{seq: seq, detail: d, err: err}
	}
}

// graphsCmd fetches the graph set of the selected service.
func graphsCmd(parent context.Context, f Fetcher, scope protocol.Scope, service string, seq uint64, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		g, err := f.Graphs(ctx, scope, service)
		return graphsMsg{seq: seq, graphs: g, err: err}
	}
}

// historyCmd reads the journal history of the selected service.
func historyCmd(parent context.Context, j Journal, scope protocol.Scope, service string, seq uint64, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		rows, err := j.History(ctx, scope, service, historyLimit)
		return historyMsg{seq: seq, rows: rows, err: err}
	}
}

// recordCmd appends the transitions of a snapshot to the journal.
func recordCmd(j Journal, scope protocol.Scope, services []protocol.ServiceStatus, at time.Time, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		n, err := j.Record(ctx, scope, services, at)
		return journalDoneMsg{written: n, err: err}
	}
}

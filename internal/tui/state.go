package tui

import (
	"context"
	"time"

	"github.com/thobiasn/monui/internal/journal"
	"github.com/thobiasn/monui/internal/protocol"
)

// RingBuffer is a fixed-size circular buffer. When full, new pushes
// overwrite the oldest entry.
type RingBuffer[T any] struct {
	buf   []T
	size  int
	head  int // next write position
	count int
}

// NewRingBuffer creates a ring buffer with the given capacity.
func NewRingBuffer[T any](size int) *RingBuffer[T] {
	return &RingBuffer[T]{
		buf:  make([]T, size),
		size: size,
	}
}

// Push adds a value to the buffer, overwriting the oldest if full.
func (r *RingBuffer[T]) Push(v T) {
	r.buf[r.head] = v
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// Data returns all stored values in insertion order (oldest first).
func (r *RingBuffer[T]) Data() []T {
	if r.count == 0 {
		return nil
	}
	out := make([]T, r.count)
	start := (r.head - r.count + r.size) % r.size
	for i := 0; i < r.count; i++ {
		out[i] = r.buf[(start+i)%r.size]
	}
	return out
}

// Len returns the number of stored values.
func (r *RingBuffer[T]) Len() int {
	return r.count
}

// latencyBufSize is the number of poll round trips kept for the sparkline.
const latencyBufSize = 120

// Phase is the lifecycle of one rendering region.
type Phase int

const (
	PhaseIdle     Phase = iota // nothing requested yet
	PhaseLoading               // request in flight
	PhaseRendered              // last request succeeded
	PhaseFailed                // last request failed
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseRendered:
		return "rendered"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// region is the state of a region that is filled by a per-selection fetch.
// A failed fetch keeps the previous content and only records the error.
type region[T any] struct {
	Phase Phase
	Data  T
	For   string // service Data belongs to
	Err   error
}

func (r *region[T]) apply(service string, data T, err error) {
	if err != nil {
		r.Phase = PhaseFailed
		r.Err = err
		return
	}
	r.Phase = PhaseRendered
	r.Data = data
	r.For = service
	r.Err = nil
}

// showing reports whether the region holds content for service.
func (r *region[T]) showing(service string) bool {
	return r.For != "" && r.For == service
}

// stale reports whether the region shows content from an earlier request
// because the latest one failed.
func (r *region[T]) stale() bool {
	return r.Phase == PhaseFailed
}

// State is the owned application state. All transitions happen on the
// bubbletea update loop, so it needs no locking.
type State struct {
	// Scope is fixed at construction and used for every request.
	scope protocol.Scope

	// Status poll.
	Poll      Phase
	Services  []protocol.ServiceStatus
	PollErr   error
	LastPoll  time.Time
	Latency   *RingBuffer[float64] // milliseconds
	pollSeq   uint64
	pollCount int

	// Selection. Selected is the identity of the highlighted service.
	Selected string
	Cursor   int
	selSeq   uint64
	selCtx   context.Context
	cancel   context.CancelFunc

	Detail  region[*protocol.ServiceDetail]
	Graphs  region[[]protocol.Graph]
	History region[[]journal.Transition]
}

// NewState creates the state for a scope.
func NewState(scope protocol.Scope) *State {
	return &State{
		scope:   scope,
		Latency: NewRingBuffer[float64](latencyBufSize),
	}
}

// Scope returns the immutable selection scope.
func (s *State) Scope() protocol.Scope { return s.scope }

// BeginPoll moves the poller to loading and returns the sequence number the
// response must carry. It refuses while a poll is in flight so every issued
// poll ends in exactly one render.
func (s *State) BeginPoll() (uint64, bool) {
	if s.Poll == PhaseLoading {
		return 0, false
	}
	s.pollSeq++
	s.Poll = PhaseLoading
	return s.pollSeq, true
}

// ApplyStatus finishes the poll with the given sequence number. A response
// for any other sequence is ignored and false is returned. On failure the
// rows are replaced by the error state; the selection is left untouched.
func (s *State) ApplyStatus(seq uint64, services []protocol.ServiceStatus, err error, at time.Time, took time.Duration) bool {
	if seq != s.pollSeq || s.Poll != PhaseLoading {
		return false
	}
	s.pollCount++
	s.LastPoll = at
	s.Latency.Push(float64(took) / float64(time.Millisecond))
	if err != nil {
		s.Poll = PhaseFailed
		s.PollErr = err
		s.Services = nil
		s.Cursor = 0
		return true
	}
	s.Poll = PhaseRendered
	s.PollErr = nil
	s.Services = services
	s.clampCursor()
	return true
}

// Highlighted returns the row index of the selected service in the current
// snapshot, or -1. Lookup is by identity, so a redraw with reordered rows
// keeps the highlight on the right service and at most one row matches.
func (s *State) Highlighted() int {
	if s.Selected == "" {
		return -1
	}
	for i, svc := range s.Services {
		if svc.Service == s.Selected {
			return i
		}
	}
	return -1
}

// MoveCursor moves the row cursor by delta within the snapshot.
func (s *State) MoveCursor(delta int) {
	s.Cursor += delta
	s.clampCursor()
}

func (s *State) clampCursor() {
	if s.Cursor >= len(s.Services) {
		s.Cursor = len(s.Services) - 1
	}
	if s.Cursor < 0 {
		s.Cursor = 0
	}
}

// Select makes service the selected identity and starts the per-selection
// regions loading. The previous selection's requests are cancelled through
// the returned context's parent. The returned sequence tags the responses.
func (s *State) Select(service string) (context.Context, uint64) {
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.selCtx = ctx
	s.cancel = cancel
	s.selSeq++
	s.Selected = service
	s.Detail.Phase = PhaseLoading
	s.Graphs.Phase = PhaseLoading
	s.History.Phase = PhaseLoading
	return ctx, s.selSeq
}

// Selection returns the context and sequence of the active selection, or
// false when nothing is selected.
func (s *State) Selection() (context.Context, uint64, bool) {
	if s.Selected == "" || s.selCtx == nil {
		return nil, 0, false
	}
	return s.selCtx, s.selSeq, true
}

// current reports whether a per-selection response still belongs to the
// active selection.
func (s *State) current(seq uint64) bool {
	return seq == s.selSeq
}

// ApplyDetail stores a detail response. Stale responses are dropped.
func (s *State) ApplyDetail(seq uint64, d *protocol.ServiceDetail, err error) bool {
	if !s.current(seq) {
		return false
	}
	s.Detail.apply(s.Selected, d, err)
	return true
}

// ApplyGraphs stores a graph response. Stale responses are dropped.
func (s *State) ApplyGraphs(seq uint64, g []protocol.Graph, err error) bool {
	if !s.current(seq) {
		return false
	}
	s.Graphs.apply(s.Selected, g, err)
	return true
}

// ApplyHistory stores a journal history response. Stale responses are dropped.
func (s *State) ApplyHistory(seq uint64, h []journal.Transition, err error) bool {
	if !s.current(seq) {
		return false
	}
	s.History.apply(s.Selected, h, err)
	return true
}

// Close cancels any in-flight per-selection requests.
func (s *State) Close() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.selCtx = nil
}

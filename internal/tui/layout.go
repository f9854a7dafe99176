package tui

// Fixed column widths inside the two tables.
const (
	markerColW  = 2  // "▶ " selection marker
	stateColW   = 10 // "● CRITICAL"
	minOutputW  = 8
	minServiceW = 6
	minNameW    = 6
	minValueW   = 8

	// minPanelW is the narrowest panel Box can draw. A master clamped
	// below it is hidden and the details panel takes the whole width.
	minPanelW = 4

	defaultMasterPct  = 60
	defaultServicePct = 40
	defaultNamePct    = 35
)

// LayoutLimits are the configured bounds of the panel layout.
type LayoutLimits struct {
	MasterWidth    int // initial master width, 0 = defaultMasterPct of the terminal
	MinMasterWidth int
	MinDetailWidth int
	Margin         int // gap between the two panels
}

// Layout keeps the widths of the master (services) panel, the sibling
// (details) panel, and the resizable columns nested inside each. Requested
// widths are remembered separately from the applied ones so a terminal that
// shrinks and grows again returns to what the user asked for.
type Layout struct {
	limits LayoutLimits

	total         int
	reqMaster     int
	reqServiceCol int
	reqNameCol    int

	// Applied widths, recomputed after every change.
	Master     int
	Detail     int
	ServiceCol int
	OutputCol  int
	NameCol    int
	ValueCol   int
}

// NewLayout creates a layout with the given limits. Widths are zero until
// SetTotal is called with the terminal width.
func NewLayout(limits LayoutLimits) Layout {
	if limits.MinMasterWidth < 1 {
		limits.MinMasterWidth = 1
	}
	if limits.MinDetailWidth < 1 {
		limits.MinDetailWidth = 1
	}
	if limits.Margin < 0 {
		limits.Margin = 0
	}
	return Layout{limits: limits, reqMaster: limits.MasterWidth}
}

// clamp bounds v to [lo, hi]. If the range is empty hi wins.
func clamp(v, lo, hi int) int {
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return v
}

// ClampMaster returns the master width for a requested width such that the
// sibling panel (total - master - margin) never drops below minDetail while
// the terminal is wide enough to hold it, and neither width goes negative.
// The master floor minMaster gives way to the sibling's floor.
func ClampMaster(total, requested, minMaster, minDetail, margin int) int {
	upper := total - minDetail - margin
	if upper < 0 {
		upper = 0
	}
	return clamp(requested, min(minMaster, upper), upper)
}

// splitColumn divides avail cells between a resizable column and the
// remaining one, honoring both floors the same way ClampMaster does.
func splitColumn(avail, requested, minCol, minRest int) (int, int) {
	if avail < 0 {
		avail = 0
	}
	upper := avail - minRest
	if upper < 0 {
		upper = 0
	}
	col := clamp(requested, min(minCol, upper), upper)
	return col, avail - col
}

// SetTotal applies a new terminal width.
func (l *Layout) SetTotal(total int) {
	l.total = total
	l.recompute()
}

// Total returns the terminal width the layout was computed for.
func (l *Layout) Total() int { return l.total }

// ResizeMaster grows or shrinks the master panel by delta cells.
func (l *Layout) ResizeMaster(delta int) {
	l.SetMaster(l.Master + delta)
}

// SetMaster sets the master panel width, as a mouse drag of its border does.
// The stored request is the clamped value so repeated presses at the limit
// do not accumulate.
func (l *Layout) SetMaster(width int) {
	l.reqMaster = ClampMaster(l.total, width, l.limits.MinMasterWidth, l.limits.MinDetailWidth, l.limits.Margin)
	l.recompute()
}

// ResizeServiceCol grows or shrinks the service name column of the status table.
func (l *Layout) ResizeServiceCol(delta int) {
	l.reqServiceCol, _ = splitColumn(l.serviceAvail(), l.ServiceCol+delta, minServiceW, minOutputW)
	l.recompute()
}

// ResizeNameCol grows or shrinks the name column of the details table.
func (l *Layout) ResizeNameCol(delta int) {
	l.reqNameCol, _ = splitColumn(l.nameAvail(), l.NameCol+delta, minNameW, minValueW)
	l.recompute()
}

// serviceAvail is the width shared by the service and output columns:
// master inner width minus borders, marker, state column and two gaps.
func (l *Layout) serviceAvail() int {
	return l.Master - 2 - markerColW - stateColW - 2
}

// nameAvail is the width shared by the name and value columns.
func (l *Layout) nameAvail() int {
	return l.Detail - 2 - 1
}

func (l *Layout) recompute() {
	req := l.reqMaster
	if req <= 0 {
		req = l.total * defaultMasterPct / 100
	}
	l.Master = ClampMaster(l.total, req, l.limits.MinMasterWidth, l.limits.MinDetailWidth, l.limits.Margin)
	if l.Master < minPanelW {
		l.Master = 0
	}
	l.Detail = l.total - l.PaneX()
	if l.Detail < 0 {
		l.Detail = 0
	}

	// Nested columns follow the panels they live in.
	avail := l.serviceAvail()
	req = l.reqServiceCol
	if req <= 0 {
		req = max(avail, 0) * defaultServicePct / 100
	}
	l.ServiceCol, l.OutputCol = splitColumn(avail, req, minServiceW, minOutputW)

	avail = l.nameAvail()
	req = l.reqNameCol
	if req <= 0 {
		req = max(avail, 0) * defaultNamePct / 100
	}
	l.NameCol, l.ValueCol = splitColumn(avail, req, minNameW, minValueW)
}

// Margin returns the gap between the panels.
func (l *Layout) Margin() int { return l.limits.Margin }

// PaneX is the terminal column where the details panel starts. With the
// master hidden there is no gap either.
func (l *Layout) PaneX() int {
	if l.Master == 0 {
		return 0
	}
	return l.Master + l.limits.Margin
}

// OnBorder reports whether terminal column x is on the draggable border
// between the panels: the master's right edge or the gap after it.
func (l *Layout) OnBorder(x int) bool {
	if l.Master == 0 {
		return false
	}
	return x >= l.Master-1 && x <= l.Master+max(l.limits.Margin, 1)-1
}

package tui

import "testing"

func testLimits() LayoutLimits {
	return LayoutLimits{MinMasterWidth: 20, MinDetailWidth: 30, Margin: 1}
}

func TestClampMaster(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		requested int
		want      int
	}{
		{"within bounds", 100, 50, 50},
		{"sibling floor wins", 100, 90, 69},
		{"master floor", 100, 5, 20},
		{"negative request", 100, -10, 20},
		{"narrow terminal gives way to sibling", 40, 30, 9},
		{"too narrow for sibling", 20, 10, 0},
		{"zero width", 0, 50, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClampMaster(tt.total, tt.requested, 20, 30, 1)
			if got != tt.want {
				t.Errorf("ClampMaster(%d, %d) = %d, want %d", tt.total, tt.requested, got, tt.want)
			}
		})
	}
}

func TestClampMasterSiblingNeverBelowMinimum(t *testing.T) {
	const minMaster, minDetail, margin = 20, 30, 1
	for total := margin; total <= 200; total++ {
		for req := -10; req <= 250; req += 3 {
			m := ClampMaster(total, req, minMaster, minDetail, margin)
			d := total - m - margin
			if m < 0 || d < 0 {
				t.Fatalf("total=%d req=%d: master=%d detail=%d", total, req, m, d)
			}
			if total >= minDetail+margin && d < minDetail {
				t.Fatalf("total=%d req=%d: detail=%d below minimum %d", total, req, d, minDetail)
			}
		}
	}
}

func TestLayoutDefaultSplit(t *testing.T) {
	l := NewLayout(testLimits())
	l.SetTotal(120)
	if l.Master != 72 || l.Detail != 47 {
		t.Fatalf("Master=%d Detail=%d, want 72/47", l.Master, l.Detail)
	}
	if l.Master+l.Margin()+l.Detail != l.Total() {
		t.Error("panels and margin should fill the terminal")
	}
}

func TestLayoutInitialMasterWidth(t *testing.T) {
	lim := testLimits()
	lim.MasterWidth = 40
	l := NewLayout(lim)
	l.SetTotal(120)
	if l.Master != 40 || l.Detail != 79 {
		t.Errorf("Master=%d Detail=%d, want 40/79", l.Master, l.Detail)
	}
}

func TestLayoutResizeMaster(t *testing.T) {
	l := NewLayout(testLimits())
	l.SetTotal(120)

	l.ResizeMaster(100)
	if l.Master != 89 || l.Detail != 30 {
		t.Fatalf("after widen: Master=%d Detail=%d, want 89/30", l.Master, l.Detail)
	}
	// Pressing again at the limit does not accumulate.
	l.ResizeMaster(10)
	l.ResizeMaster(-2)
	if l.Master != 87 {
		t.Errorf("Master = %d, want 87", l.Master)
	}

	l.ResizeMaster(-200)
	if l.Master != 20 || l.Detail != 99 {
		t.Errorf("after narrow: Master=%d Detail=%d, want 20/99", l.Master, l.Detail)
	}
}

func TestLayoutRemembersRequestAcrossTerminalResize(t *testing.T) {
	l := NewLayout(testLimits())
	l.SetTotal(120)
	l.SetMaster(80)

	l.SetTotal(60)
	if l.Master != 29 || l.Detail != 30 {
		t.Fatalf("shrunk: Master=%d Detail=%d, want 29/30", l.Master, l.Detail)
	}
	l.SetTotal(120)
	if l.Master != 80 {
		t.Errorf("grown again: Master=%d, want 80", l.Master)
	}
}

func TestLayoutColumns(t *testing.T) {
	l := NewLayout(testLimits())
	l.SetTotal(120)

	if got := l.ServiceCol + l.OutputCol; got != l.serviceAvail() {
		t.Errorf("service+output = %d, want %d", got, l.serviceAvail())
	}
	if l.ServiceCol != 22 || l.OutputCol != 34 {
		t.Errorf("ServiceCol=%d OutputCol=%d, want 22/34", l.ServiceCol, l.OutputCol)
	}
	if l.NameCol != 15 || l.ValueCol != 29 {
		t.Errorf("NameCol=%d ValueCol=%d, want 15/29", l.NameCol, l.ValueCol)
	}

	l.ResizeServiceCol(100)
	if l.OutputCol != minOutputW {
		t.Errorf("OutputCol = %d, want floor %d", l.OutputCol, minOutputW)
	}
	l.ResizeServiceCol(-100)
	if l.ServiceCol != minServiceW {
		t.Errorf("ServiceCol = %d, want floor %d", l.ServiceCol, minServiceW)
	}

	l.ResizeNameCol(100)
	if l.ValueCol != minValueW {
		t.Errorf("ValueCol = %d, want floor %d", l.ValueCol, minValueW)
	}

	// Columns follow the panel they live in.
	l.ResizeMaster(-30)
	if got := l.ServiceCol + l.OutputCol; got != l.serviceAvail() {
		t.Errorf("after master resize: service+output = %d, want %d", got, l.serviceAvail())
	}
	if got := l.NameCol + l.ValueCol; got != l.nameAvail() {
		t.Errorf("after master resize: name+value = %d, want %d", got, l.nameAvail())
	}
}

func TestSplitColumn(t *testing.T) {
	tests := []struct {
		avail, req, minCol, minRest int
		wantCol, wantRest           int
	}{
		{50, 20, 6, 8, 20, 30},
		{50, 48, 6, 8, 42, 8},
		{50, 1, 6, 8, 6, 44},
		{10, 5, 6, 8, 2, 8},
		{-4, 5, 6, 8, 0, 0},
	}
	for _, tt := range tests {
		col, rest := splitColumn(tt.avail, tt.req, tt.minCol, tt.minRest)
		if col != tt.wantCol || rest != tt.wantRest {
			t.Errorf("splitColumn(%d, %d, %d, %d) = %d, %d; want %d, %d",
				tt.avail, tt.req, tt.minCol, tt.minRest, col, rest, tt.wantCol, tt.wantRest)
		}
	}
}

func TestLayoutHidesMasterTooNarrowToDraw(t *testing.T) {
	l := NewLayout(testLimits())
	for _, total := range []int{31, 32, 33, 34} {
		l.SetTotal(total)
		if l.Master != 0 || l.Detail != total || l.PaneX() != 0 {
			t.Errorf("total=%d: Master=%d Detail=%d PaneX=%d, want 0/%d/0", total, l.Master, l.Detail, l.PaneX(), total)
		}
		if l.OnBorder(0) {
			t.Errorf("total=%d: no border without a master", total)
		}
	}
	l.SetTotal(35)
	if l.Master != minPanelW || l.Detail != 30 || l.PaneX() != 5 {
		t.Errorf("total=35: Master=%d Detail=%d PaneX=%d, want 4/30/5", l.Master, l.Detail, l.PaneX())
	}
}

func TestLayoutOnBorder(t *testing.T) {
	l := NewLayout(testLimits())
	l.SetTotal(120)
	for x, want := range map[int]bool{70: false, 71: true, 72: true, 73: false} {
		if got := l.OnBorder(x); got != want {
			t.Errorf("OnBorder(%d) = %v, want %v", x, got, want)
		}
	}
}

func TestNewLayoutFloorsLimits(t *testing.T) {
	l := NewLayout(LayoutLimits{Margin: -3})
	l.SetTotal(10)
	if l.Margin() != 0 {
		t.Errorf("Margin = %d, want 0", l.Margin())
	}
	if l.Detail < 1 {
		t.Errorf("Detail = %d, want at least 1", l.Detail)
	}
}

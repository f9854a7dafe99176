package tui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestStateColor(t *testing.T) {
	theme := TerminalTheme()
	tests := []struct {
		state string
		want  lipgloss.Color
	}{
		{"OK", theme.Healthy},
		{"ok", theme.Healthy},
		{"WARNING", theme.Warning},
		{"CRITICAL", theme.Critical},
		{"UNKNOWN", theme.Unknown},
		{"PENDING", theme.Pending},
		{"something else", theme.Pending},
	}
	for _, tt := range tests {
		if got := theme.StateColor(tt.state); got != tt.want {
			t.Errorf("StateColor(%q) = %v, want %v", tt.state, got, tt.want)
		}
	}
}

func TestStateIndicator(t *testing.T) {
	theme := TerminalTheme()
	tests := []struct {
		state    string
		wantChar string
	}{
		{"OK", "○"},
		{"PENDING", "○"},
		{"", "○"},
		{"WARNING", "●"},
		{"CRITICAL", "●"},
		{"UNKNOWN", "●"},
	}
	for _, tt := range tests {
		got := stripANSI(theme.StateIndicator(tt.state))
		if got != tt.wantChar {
			t.Errorf("StateIndicator(%q) = %q, want %q", tt.state, got, tt.wantChar)
		}
	}
}

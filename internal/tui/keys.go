package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds every binding of the client. The help overlay is generated
// from it.
type keyMap struct {
	Up           key.Binding
	Down         key.Binding
	Top          key.Binding
	Bottom       key.Binding
	Select       key.Binding
	Refresh      key.Binding
	NextTab      key.Binding
	PrevTab      key.Binding
	TabDetails   key.Binding
	TabGraphs    key.Binding
	TabHistory   key.Binding
	MasterWider  key.Binding
	MasterNarrow key.Binding
	ServiceWider key.Binding
	ServiceNarr  key.Binding
	NameWider    key.Binding
	NameNarrow   key.Binding
	Help         key.Binding
	Quit         key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:           key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "Move up")),
		Down:         key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "Move down")),
		Top:          key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "First service")),
		Bottom:       key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "Last service")),
		Select:       key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("Enter", "Select service")),
		Refresh:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "Refresh now")),
		NextTab:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("Tab", "Next tab")),
		PrevTab:      key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("S-Tab", "Previous tab")),
		TabDetails:   key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "Details")),
		TabGraphs:    key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "Graphs")),
		TabHistory:   key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "History")),
		MasterWider:  key.NewBinding(key.WithKeys(">"), key.WithHelp(">", "Widen services")),
		MasterNarrow: key.NewBinding(key.WithKeys("<"), key.WithHelp("<", "Narrow services")),
		ServiceWider: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "Widen service column")),
		ServiceNarr:  key.NewBinding(key.WithKeys("["), key.WithHelp("[", "Narrow service column")),
		NameWider:    key.NewBinding(key.WithKeys("}"), key.WithHelp("}", "Widen name column")),
		NameNarrow:   key.NewBinding(key.WithKeys("{"), key.WithHelp("{", "Narrow name column")),
		Help:         key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "Toggle help")),
		Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "Quit")),
	}
}

// helpGroups returns the bindings shown in the help overlay, by section.
func (k keyMap) helpGroups() []struct {
	title    string
	bindings []key.Binding
} {
	return []struct {
		title    string
		bindings []key.Binding
	}{
		{"Services", []key.Binding{k.Up, k.Down, k.Top, k.Bottom, k.Select, k.Refresh}},
		{"Tabs", []key.Binding{k.NextTab, k.PrevTab, k.TabDetails, k.TabGraphs, k.TabHistory}},
		{"Layout", []key.Binding{k.MasterNarrow, k.MasterWider, k.ServiceNarr, k.ServiceWider, k.NameNarrow, k.NameWider}},
		{"General", []key.Binding{k.Help, k.Quit}},
	}
}

// footerBindings are the hints shown in the footer line.
func (k keyMap) footerBindings() []key.Binding {
	return []key.Binding{k.Select, k.NextTab, k.Refresh, k.MasterNarrow, k.MasterWider, k.Help, k.Quit}
}

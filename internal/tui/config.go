package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/lipgloss"

	"github.com/thobiasn/monui/internal/protocol"
)

// Duration wraps time.Duration for TOML string parsing ("10s", "1m").
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	return nil
}

// BackendConfig describes how to reach the monitoring backend.
type BackendConfig struct {
	URL     string   `toml:"url"`
	Timeout Duration `toml:"timeout"`
}

// ScopeConfig is the host/component every request is bound to.
type ScopeConfig struct {
	Host      string `toml:"host"`
	Component string `toml:"component"`
	// ComponentScoping sends the component with every request. Off for
	// backends without components (oVirt). Defaults to true.
	ComponentScoping *bool `toml:"component_scoping"`
}

// RefreshConfig controls the status poll.
type RefreshConfig struct {
	Interval Duration `toml:"interval"`
}

// LayoutConfig holds the panel width limits, in terminal cells.
type LayoutConfig struct {
	MasterWidth    int `toml:"master_width"`
	MinMasterWidth int `toml:"min_master_width"`
	MinDetailWidth int `toml:"min_detail_width"`
	Margin         int `toml:"margin"`
}

// JournalConfig enables the local state-transition journal.
type JournalConfig struct {
	Path          string `toml:"path"`
	RetentionDays int    `toml:"retention_days"`
}

// LogConfig controls where slog output goes. The TUI owns the terminal,
// so logs are discarded unless a file is set.
type LogConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// ThemeConfig holds optional color overrides. Empty strings use ANSI defaults.
// Values can be ANSI numbers ("1"), 256-palette numbers ("196"), or hex ("#ff0000").
type ThemeConfig struct {
	Fg       string `toml:"fg"`
	FgDim    string `toml:"fg_dim"`
	Border   string `toml:"border"`
	Accent   string `toml:"accent"`
	Healthy  string `toml:"healthy"`
	Warning  string `toml:"warning"`
	Critical string `toml:"critical"`
	Unknown  string `toml:"unknown"`
	Pending  string `toml:"pending"`
	Graph    string `toml:"graph"`
}

// Config is the client configuration.
type Config struct {
	Backend BackendConfig `toml:"backend"`
	Scope   ScopeConfig   `toml:"scope"`
	Refresh RefreshConfig `toml:"refresh"`
	Layout  LayoutConfig  `toml:"layout"`
	Journal JournalConfig `toml:"journal"`
	Log     LogConfig     `toml:"log"`
	Theme   ThemeConfig   `toml:"theme"`
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/monui/config.toml,
// falling back to ~/.config/monui/config.toml if unset.
func DefaultConfigPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		dir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(dir, "monui", "config.toml")
}

const defaultConfigContent = `# monui configuration.
#
# [backend]
# url = "https://nagios.example.com/monitoring-ui/"
# timeout = "10s"
#
# [scope]
# host = "web01"
# component = "frontend"
# component_scoping = true   # set false for oVirt backends
#
# [refresh]
# interval = "30s"
#
# [layout]
# master_width = 0           # 0 = 60% of the terminal
# min_master_width = 20
# min_detail_width = 30
# margin = 1
#
# [journal]
# path = "~/.local/state/monui/journal.db"   # empty disables the History tab
# retention_days = 7
#
# [log]
# file = ""                  # empty discards logs
# level = "info"             # debug, info, warn, error
#
# [theme]
# Colors default to ANSI (0-15) so the TUI inherits your terminal theme.
# fg = "7"
# fg_dim = "8"
# border = "8"
# accent = "4"
# healthy = "2"
# warning = "3"
# critical = "1"
# unknown = "5"
# pending = "8"
# graph = "12"
`

// EnsureDefaultConfig creates the default config file if it does not exist.
// Returns the path to the config file.
func EnsureDefaultConfig(path string) (string, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigContent), 0o644); err != nil {
		return "", fmt.Errorf("write default config: %w", err)
	}
	return path, nil
}

// LoadConfig reads a TOML config file and fills in defaults. It does not
// validate, since command-line flags may still override fields; call
// Validate once they are applied.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.SetDefaults()
	return &cfg, nil
}

// SetDefaults fills zero values with defaults.
func (c *Config) SetDefaults() {
	if c.Backend.Timeout.Duration == 0 {
		c.Backend.Timeout.Duration = 10 * time.Second
	}
	if c.Scope.ComponentScoping == nil {
		on := true
		c.Scope.ComponentScoping = &on
	}
	if c.Refresh.Interval.Duration == 0 {
		c.Refresh.Interval.Duration = 30 * time.Second
	}
	if c.Layout.MinMasterWidth == 0 {
		c.Layout.MinMasterWidth = 20
	}
	if c.Layout.MinDetailWidth == 0 {
		c.Layout.MinDetailWidth = 30
	}
	if c.Layout.Margin == 0 {
		c.Layout.Margin = 1
	}
	if c.Journal.RetentionDays == 0 {
		c.Journal.RetentionDays = 7
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	c.Journal.Path = expandHome(c.Journal.Path)
	c.Log.File = expandHome(c.Log.File)
}

// Validate checks the config after defaults and overrides are applied.
func (c *Config) Validate() error {
	if c.Backend.URL == "" {
		return errors.New("backend url is required")
	}
	u, err := url.Parse(c.Backend.URL)
	if err != nil {
		return fmt.Errorf("backend url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend url scheme must be http or https, got %q", u.Scheme)
	}
	if c.Scope.Host == "" {
		return errors.New("scope host is required")
	}
	if c.Refresh.Interval.Duration < time.Second {
		return fmt.Errorf("refresh interval must be >= 1s, got %s", c.Refresh.Interval.Duration)
	}
	if c.Backend.Timeout.Duration <= 0 {
		return fmt.Errorf("backend timeout must be > 0, got %s", c.Backend.Timeout.Duration)
	}
	if c.Layout.MinMasterWidth < 1 || c.Layout.MinDetailWidth < 1 {
		return errors.New("layout minimum widths must be >= 1")
	}
	if c.Layout.Margin < 0 || c.Layout.MasterWidth < 0 {
		return errors.New("layout widths must not be negative")
	}
	if c.Journal.RetentionDays < 1 {
		return fmt.Errorf("journal retention_days must be >= 1, got %d", c.Journal.RetentionDays)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// ScopeComponent reports whether the component is sent with requests.
func (c *Config) ScopeComponent() bool {
	return c.Scope.ComponentScoping == nil || *c.Scope.ComponentScoping
}

// RequestScope is the scope requests are made for. Without component
// scoping the component is dropped, so the footer and the journal match
// what is sent.
func (c *Config) RequestScope() protocol.Scope {
	scope := protocol.Scope{Host: c.Scope.Host, Component: c.Scope.Component}
	if !c.ScopeComponent() {
		scope.Component = ""
	}
	return scope
}

// Limits returns the layout limits for NewLayout.
func (c *Config) Limits() LayoutLimits {
	return LayoutLimits{
		MasterWidth:    c.Layout.MasterWidth,
		MinMasterWidth: c.Layout.MinMasterWidth,
		MinDetailWidth: c.Layout.MinDetailWidth,
		Margin:         c.Layout.Margin,
	}
}

// ParseLevel maps a config level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log level: %w", err)
	}
	return l, nil
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		return filepath.Join(os.Getenv("HOME"), strings.TrimPrefix(p, "~"))
	}
	return p
}

// BuildTheme returns a Theme starting from ANSI defaults with any
// non-empty ThemeConfig fields applied as overrides.
func BuildTheme(tc ThemeConfig) Theme {
	t := TerminalTheme()
	override := func(dst *lipgloss.Color, src string) {
		if src != "" {
			*dst = lipgloss.Color(src)
		}
	}
	override(&t.Fg, tc.Fg)
	override(&t.FgDim, tc.FgDim)
	override(&t.Border, tc.Border)
	override(&t.Accent, tc.Accent)
	override(&t.Healthy, tc.Healthy)
	override(&t.Warning, tc.Warning)
	override(&t.Critical, tc.Critical)
	override(&t.Unknown, tc.Unknown)
	override(&t.Pending, tc.Pending)
	override(&t.Graph, tc.Graph)
	return t
}

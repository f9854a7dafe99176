package tui

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/thobiasn/monui/internal/protocol"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
[backend]
url = "https://mon.example.com/ui/"

[scope]
host = "web01"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Backend.Timeout.Duration != 10*time.Second {
		t.Errorf("timeout = %s, want 10s", cfg.Backend.Timeout.Duration)
	}
	if cfg.Refresh.Interval.Duration != 30*time.Second {
		t.Errorf("interval = %s, want 30s", cfg.Refresh.Interval.Duration)
	}
	if !cfg.ScopeComponent() {
		t.Error("component scoping should default to on")
	}
	want := LayoutLimits{MinMasterWidth: 20, MinDetailWidth: 30, Margin: 1}
	if cfg.Limits() != want {
		t.Errorf("Limits() = %+v, want %+v", cfg.Limits(), want)
	}
	if cfg.Journal.Path != "" || cfg.Journal.RetentionDays != 7 {
		t.Errorf("journal = %+v", cfg.Journal)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level = %q, want info", cfg.Log.Level)
	}
}

func TestLoadConfigFull(t *testing.T) {
	path := writeConfig(t, `
[backend]
url = "http://ovirt.example.com/monitoring-ui/?lang=en"
timeout = "3s"

[scope]
host = "vm-17"
component = "engine"
component_scoping = false

[refresh]
interval = "5s"

[layout]
master_width = 50
min_master_width = 10
min_detail_width = 40
margin = 2

[journal]
path = "~/monui/journal.db"
retention_days = 3

[log]
file = "/tmp/monui.log"
level = "debug"

[theme]
accent = "#ff8800"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.ScopeComponent() {
		t.Error("component_scoping = false should turn scoping off")
	}
	if cfg.Scope.Component != "engine" {
		t.Errorf("component = %q", cfg.Scope.Component)
	}
	if got := cfg.RequestScope(); got != (protocol.Scope{Host: "vm-17"}) {
		t.Errorf("RequestScope() = %+v, want host only", got)
	}
	if cfg.Backend.Timeout.Duration != 3*time.Second || cfg.Refresh.Interval.Duration != 5*time.Second {
		t.Errorf("durations = %s / %s", cfg.Backend.Timeout.Duration, cfg.Refresh.Interval.Duration)
	}
	if cfg.Limits() != (LayoutLimits{MasterWidth: 50, MinMasterWidth: 10, MinDetailWidth: 40, Margin: 2}) {
		t.Errorf("Limits() = %+v", cfg.Limits())
	}
	if strings.HasPrefix(cfg.Journal.Path, "~") {
		t.Errorf("journal path not expanded: %q", cfg.Journal.Path)
	}
	if !strings.HasSuffix(cfg.Journal.Path, filepath.Join("monui", "journal.db")) {
		t.Errorf("journal path = %q", cfg.Journal.Path)
	}
	if BuildTheme(cfg.Theme).Accent != lipgloss.Color("#ff8800") {
		t.Error("theme override not applied")
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := LoadConfig(writeConfig(t, "[refresh]\ninterval = \"soon\"\n")); err == nil {
		t.Error("expected error for bad duration")
	}
	if _, err := LoadConfig(writeConfig(t, "not toml ===")); err == nil {
		t.Error("expected error for malformed TOML")
	}
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := &Config{}
		c.Backend.URL = "https://mon.example.com/ui/"
		c.Scope.Host = "web01"
		c.SetDefaults()
		return c
	}
	tests := []struct {
		name   string
		modify func(*Config)
		errSub string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing url", func(c *Config) { c.Backend.URL = "" }, "url is required"},
		{"bad scheme", func(c *Config) { c.Backend.URL = "ftp://mon/" }, "scheme"},
		{"missing host", func(c *Config) { c.Scope.Host = "" }, "host is required"},
		{"interval too short", func(c *Config) { c.Refresh.Interval.Duration = 100 * time.Millisecond }, "interval"},
		{"negative timeout", func(c *Config) { c.Backend.Timeout.Duration = -time.Second }, "timeout"},
		{"negative margin", func(c *Config) { c.Layout.Margin = -1 }, "negative"},
		{"zero min detail", func(c *Config) { c.Layout.MinDetailWidth = -1 }, "minimum"},
		{"bad retention", func(c *Config) { c.Journal.RetentionDays = -2 }, "retention"},
		{"bad level", func(c *Config) { c.Log.Level = "chatty" }, "log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.modify(c)
			err := c.Validate()
			if tt.errSub == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errSub) {
				t.Errorf("err = %v, want containing %q", err, tt.errSub)
			}
		})
	}
}

func TestEnsureDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	got, err := EnsureDefaultConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != path {
		t.Errorf("path = %q, want %q", got, path)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("default config does not parse: %v", err)
	}
	if cfg.Backend.URL != "" {
		t.Error("default config should leave the backend unset")
	}

	// An existing file is left alone.
	if err := os.WriteFile(path, []byte("# mine\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := EnsureDefaultConfig(path); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "# mine\n" {
		t.Error("existing config was overwritten")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	if got := DefaultConfigPath(); got != filepath.Join("/xdg", "monui", "config.toml") {
		t.Errorf("DefaultConfigPath() = %q", got)
	}
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/home/op")
	if got := DefaultConfigPath(); got != filepath.Join("/home/op", ".config", "monui", "config.toml") {
		t.Errorf("DefaultConfigPath() = %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
}

func TestBuildThemeDefaults(t *testing.T) {
	if BuildTheme(ThemeConfig{}) != TerminalTheme() {
		t.Error("empty overrides should give the terminal theme")
	}
	got := BuildTheme(ThemeConfig{Critical: "196", Graph: "#00ff00"})
	if got.Critical != lipgloss.Color("196") || got.Graph != lipgloss.Color("#00ff00") {
		t.Errorf("overrides not applied: %+v", got)
	}
	if got.Healthy != TerminalTheme().Healthy {
		t.Error("unset fields should keep defaults")
	}
}

func TestRequestScope(t *testing.T) {
	on, off := true, false
	tests := []struct {
		name    string
		scoping *bool
		want    protocol.Scope
	}{
		{"default keeps component", nil, protocol.Scope{Host: "web01", Component: "frontend"}},
		{"scoping on", &on, protocol.Scope{Host: "web01", Component: "frontend"}},
		{"scoping off drops component", &off, protocol.Scope{Host: "web01"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{}
			c.Scope = ScopeConfig{Host: "web01", Component: "frontend", ComponentScoping: tt.scoping}
			if got := c.RequestScope(); got != tt.want {
				t.Errorf("RequestScope() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

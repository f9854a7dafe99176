package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/thobiasn/monui/internal/journal"
	"github.com/thobiasn/monui/internal/tui"
)

// version is set via -ldflags at build time.
var version = "dev"

func main() {
	if len(os.Args) >= 2 && os.Args[1] == "--version" {
		fmt.Println("monui " + version)
		return
	}

	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// cliOptions are the command-line overrides of the config file. Zero
// values leave the file's setting alone.
type cliOptions struct {
	configPath string
	url        string
	host       string
	component  string
	interval   time.Duration
	ovirt      bool
}

// parseArgs parses "monui [host] [flags]".
func parseArgs(args []string) (*cliOptions, error) {
	fs := flag.NewFlagSet("monui", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage:\n  monui [host] [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}
	var o cliOptions
	fs.StringVar(&o.configPath, "config", "", "path to config file")
	fs.StringVar(&o.url, "url", "", "monitoring backend URL")
	fs.StringVar(&o.host, "host", "", "host to monitor")
	fs.StringVar(&o.component, "component", "", "component of the host to scope requests to")
	fs.DurationVar(&o.interval, "interval", 0, "status refresh interval")
	fs.BoolVar(&o.ovirt, "ovirt", false, "oVirt backend: never send a component")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// The flag package stops at the first non-flag argument. Re-parse the
	// rest so "monui web01 --interval 10s" works.
	if rest := fs.Args(); len(rest) > 0 {
		if o.host != "" {
			return nil, fmt.Errorf("host given twice: %q and -host %q", rest[0], o.host)
		}
		o.host = rest[0]
		if err := fs.Parse(rest[1:]); err != nil {
			return nil, err
		}
		if fs.NArg() > 0 {
			return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
		}
	}
	return &o, nil
}

// applyOverrides copies non-zero command-line values into cfg.
func applyOverrides(cfg *tui.Config, o *cliOptions) {
	if o.url != "" {
		cfg.Backend.URL = o.url
	}
	if o.host != "" {
		cfg.Scope.Host = o.host
	}
	if o.component != "" {
		cfg.Scope.Component = o.component
	}
	if o.interval != 0 {
		cfg.Refresh.Interval.Duration = o.interval
	}
	if o.ovirt {
		off := false
		cfg.Scope.ComponentScoping = &off
	}
}

func loadConfig(o *cliOptions) (*tui.Config, error) {
	path, err := tui.EnsureDefaultConfig(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg, err := tui.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	applyOverrides(cfg, o)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// setupLogging points the default slog logger at the configured file, or
// discards output since the TUI owns the terminal.
func setupLogging(cfg tui.LogConfig) (io.Closer, error) {
	level, err := tui.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if cfg.File == "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		return io.NopCloser(nil), nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})))
	return f, nil
}

// openJournal opens and prunes the journal, or returns nil when disabled.
func openJournal(cfg tui.JournalConfig) (*journal.Journal, error) {
	if cfg.Path == "" {
		return nil, nil
	}
	j, err := journal.Open(cfg.Path)
	if err != nil {
		return nil, err
	}
	cutoff := time.Now().AddDate(0, 0, -cfg.RetentionDays)
	n, err := j.Prune(context.Background(), cutoff)
	if err != nil {
		slog.Warn("journal prune failed", "error", err)
	} else if n > 0 {
		slog.Info("journal pruned", "rows", n, "retention_days", cfg.RetentionDays)
	}
	return j, nil
}

func run(o *cliOptions) error {
	cfg, err := loadConfig(o)
	if err != nil {
		return err
	}

	logs, err := setupLogging(cfg.Log)
	if err != nil {
		return err
	}
	defer logs.Close()

	client, err := tui.NewClient(cfg.Backend.URL, cfg.ScopeComponent(), cfg.Backend.Timeout.Duration)
	if err != nil {
		return err
	}

	j, err := openJournal(cfg.Journal)
	if err != nil {
		return err
	}
	// Keep the interface nil when disabled; a typed nil would look enabled.
	var jr tui.Journal
	if j != nil {
		defer j.Close()
		jr = j
	}

	scope := cfg.RequestScope()
	slog.Info("starting", "version", version, "backend", cfg.Backend.URL, "scope", scope.String(),
		"interval", cfg.Refresh.Interval.Duration, "component_scoping", cfg.ScopeComponent())

	app := tui.NewApp(scope, client, jr, tui.Options{
		Interval: cfg.Refresh.Interval.Duration,
		Timeout:  cfg.Backend.Timeout.Duration,
		Limits:   cfg.Limits(),
		Theme:    tui.BuildTheme(cfg.Theme),
	})

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	model, err := p.Run()
	if final, ok := model.(tui.App); ok {
		final.State().Close()
	}
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

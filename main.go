package main

import (
	"context"
	"io"
	"time"

	bubble_tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/nulifyer/hoteldash/arger"
	"github.com/nulifyer/hoteldash/catalog"
	"github.com/nulifyer/hoteldash/config"
	"github.com/nulifyer/hoteldash/logger"
)

// -------------------------------
// Setup & CLI Flags
// --------------------------------
const (
	Flag_Config    = "config"
	Flag_API       = "api"
	Flag_Catalog   = "catalog"
	Flag_Theme     = "theme"
	Flag_NoColor   = "no-color"
	Flag_Verbosity = "verbosity"
	Flag_LogFile   = "log-file"
)

const (
	logRingLines   = 500
	preloadTimeout = 5 * time.Second
)

func registerFlags() {
	f := arger.StringFlag(Flag_Config)
	f.Aliases = []string{"-c", "--config"}
	f.Description = "Path to a YAML config file"
	arger.RegisterFlag(f)

	f = arger.StringFlag(Flag_API)
	f.Aliases = []string{"-a", "--api"}
	f.Description = "Base URL of the hotel API (omit to use the static catalog)"
	arger.RegisterFlag(f)

	f = arger.StringFlag(Flag_Catalog)
	f.Aliases = []string{"--catalog"}
	f.Description = "YAML file with static dropdown records"
	arger.RegisterFlag(f)

	f = arger.StringFlag(Flag_Theme)
	f.Aliases = []string{"-t", "--theme"}
	f.Description = "Color theme"
	f.ExpectedValues = validThemeNames
	arger.RegisterFlag(f)

	nc := arger.BoolFlag(Flag_NoColor)
	nc.Aliases = []string{"-nc", "--no-color"}
	nc.Description = "Disable colored output in the terminal"
	arger.RegisterFlag(nc)

	f = arger.StringFlag(Flag_Verbosity)
	f.Aliases = []string{"-v", "--verbose"}
	f.Description = "Set the logging verbosity level"
	f.ExpectedValues = []string{"none", "error", "err", "warn", "warning", "info", "debug", "dbg", "trace", "trc"}
	arger.RegisterFlag(f)

	f = arger.StringFlag(Flag_LogFile)
	f.Aliases = []string{"-l", "--log-file"}
	f.Description = "Also write logs to this file, rotated by size"
	arger.RegisterFlag(f)
}

// applyFlags overrides cfg with the flags actually given on the command line.
func applyFlags(cfg *config.Config, flags map[string]arger.IParsedFlag) {
	if v, ok := arger.Lookup[string](flags, Flag_API); ok {
		cfg.API.URL = v
	}
	if v, ok := arger.Lookup[string](flags, Flag_Catalog); ok {
		cfg.Catalog = v
	}
	if v, ok := arger.Lookup[string](flags, Flag_Theme); ok {
		cfg.Theme = v
	}
	if v, ok := arger.Lookup[bool](flags, Flag_NoColor); ok {
		cfg.NoColor = v
	}
	if v, ok := arger.Lookup[string](flags, Flag_Verbosity); ok {
		cfg.Log.Level = v
	}
	if v, ok := arger.Lookup[string](flags, Flag_LogFile); ok {
		cfg.Log.File = v
	}
}

func Init() config.Config {
	logger.SetColor(false)
	registerFlags()
	flags, _ := arger.Parse()

	path, _ := arger.Lookup[string](flags, Flag_Config)
	cfg, err := config.Load(path, config.DefaultEnvFiles...)
	if err != nil {
		logger.Fatal("Couldn't load configuration: %v", err)
	}
	applyFlags(&cfg, flags)
	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration:\n%v", err)
	}

	logger.SetLevel(logger.ParseLevel(cfg.Log.Level))
	logger.SetColor(!cfg.NoColor)
	theme := initTheme(cfg.Theme, cfg.NoColor)
	logger.Debug("Theme: %s", theme)

	return cfg
}

func loadStatic(cfg config.Config) catalog.Static {
	if cfg.Catalog == "" {
		return builtinStatic()
	}
	static, err := catalog.LoadStatic(cfg.Catalog)
	if err != nil {
		logger.Fatal("Couldn't load catalog: %v", err)
	}
	logger.Info("Loaded static catalog %s", cfg.Catalog)
	return static
}

func newClient(cfg config.Config) *catalog.Client {
	if cfg.API.URL == "" {
		return nil
	}
	client, err := catalog.NewClient(cfg.API.URL,
		catalog.WithToken(cfg.API.Token),
		catalog.WithTimeout(cfg.API.Timeout),
	)
	if err != nil {
		logger.Fatal("Couldn't set up API client: %v", err)
	}

	// warm-up only; the form loads its own lists
	ctx, cancel := context.WithTimeout(context.Background(), preloadTimeout)
	defer cancel()
	pages, err := client.Preload(ctx, catalog.Hotels, catalog.Thematics)
	if err != nil {
		logger.Warn("API %s not reachable yet: %v", client.BaseURL(), err)
		return client
	}
	for r, p := range pages {
		logger.Info("  [%s] %d record(s)", r, len(p.Items))
	}
	return client
}

// -------------------------------
// Main
// --------------------------------
func main() {
	cfg := Init()
	logger.Info("Starting HotelDash")

	client := newClient(cfg)
	static := loadStatic(cfg)

	ring := logger.NewRing(logRingLines)
	var out io.Writer = ring
	if cfg.Log.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   cfg.Log.File,
			MaxSize:    cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
		}
		defer rotating.Close()
		out = io.MultiWriter(ring, rotating)
	}

	zones := zone.New()
	defer zones.Close()

	m := NewModel(appOptions{
		client:   client,
		static:   static,
		zones:    zones,
		ring:     ring,
		dropdown: cfg.Dropdown,
	})

	logger.SetOutput(out)
	p := bubble_tea.NewProgram(m, bubble_tea.WithAltScreen(), bubble_tea.WithMouseCellMotion())
	final, err := p.Run()
	logger.SetOutput(nil)
	if fm, ok := final.(Model); ok {
		fm.shutdown()
	}
	if err != nil {
		logger.Fatal("Error running TUI: %v", err)
	}
}

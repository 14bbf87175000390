// Package config resolves console settings from defaults, a YAML file,
// .env files and the environment, in that order of increasing precedence.
// Command-line flags are applied on top by the caller.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/nulifyer/hoteldash/logger"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "HOTELDASH_"

// DefaultEnvFiles are read when present; missing ones are skipped.
var DefaultEnvFiles = []string{".env", ".env.local"}

type API struct {
	URL     string        `yaml:"url" env:"URL"`
	Token   string        `yaml:"token" env:"TOKEN"`
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

type Log struct {
	Level      string `yaml:"level" env:"LEVEL"`
	File       string `yaml:"file" env:"FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb" env:"MAX_SIZE_MB"`
	MaxBackups int    `yaml:"max_backups" env:"MAX_BACKUPS"`
}

type Dropdown struct {
	PopoverHeight    int    `yaml:"popover_height" env:"POPOVER_HEIGHT"`
	DisplayThreshold int    `yaml:"display_threshold" env:"DISPLAY_THRESHOLD"`
	Search           string `yaml:"search" env:"SEARCH"`
	Width            int    `yaml:"width" env:"WIDTH"`
}

type Config struct {
	API      API      `yaml:"api" envPrefix:"API_"`
	Catalog  string   `yaml:"catalog" env:"CATALOG"`
	Theme    string   `yaml:"theme" env:"THEME"`
	NoColor  bool     `yaml:"no_color" env:"NO_COLOR"`
	Log      Log      `yaml:"log" envPrefix:"LOG_"`
	Dropdown Dropdown `yaml:"dropdown" envPrefix:"DROPDOWN_"`
}

func Default() Config {
	return Config{
		API:   API{Timeout: 15 * time.Second},
		Theme: "auto",
		Log: Log{
			Level:      "warn",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Dropdown: Dropdown{
			PopoverHeight:    10,
			DisplayThreshold: 3,
			Search:           "substring",
			Width:            36,
		},
	}
}

// Load builds the configuration. path may be empty; a missing file at a
// non-empty path is an error. envFiles that do not exist are ignored.
func Load(path string, envFiles ...string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}

	n, err := LoadEnvFiles(envFiles...)
	if err != nil {
		return Config{}, err
	}
	if n > 0 {
		logger.Debug("config: loaded %d env file(s)", n)
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("reading environment: %w", err)
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	logger.Debug("config: merged %s", path)
	return nil
}

// LoadEnvFiles loads the files that exist into the process environment,
// without overriding variables already set. It returns how many it read.
func LoadEnvFiles(files ...string) (int, error) {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return 0, fmt.Errorf("loading env files: %w", err)
	}
	return len(existing), nil
}

var validLevels = []string{"none", "off", "error", "err", "warn", "warning", "info", "debug", "dbg", "trace", "trc"}

func (c Config) Validate() error {
	var errs []error
	if c.API.URL != "" {
		u, err := url.Parse(c.API.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("api.url %q must be an http(s) URL", c.API.URL))
		}
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout))
	}
	if !slices.Contains(validLevels, strings.ToLower(c.Log.Level)) {
		errs = append(errs, fmt.Errorf("log.level %q is not one of %s", c.Log.Level, strings.Join(validLevels, ", ")))
	}
	if c.Log.MaxSizeMB < 1 {
		errs = append(errs, fmt.Errorf("log.max_size_mb must be at least 1, got %d", c.Log.MaxSizeMB))
	}
	if c.Dropdown.PopoverHeight < 3 || c.Dropdown.PopoverHeight > 40 {
		errs = append(errs, fmt.Errorf("dropdown.popover_height must be within 3..40, got %d", c.Dropdown.PopoverHeight))
	}
	if c.Dropdown.DisplayThreshold < 1 {
		errs = append(errs, fmt.Errorf("dropdown.display_threshold must be at least 1, got %d", c.Dropdown.DisplayThreshold))
	}
	if c.Dropdown.Width < 12 {
		errs = append(errs, fmt.Errorf("dropdown.width must be at least 12, got %d", c.Dropdown.Width))
	}
	switch strings.ToLower(c.Dropdown.Search) {
	case "substring", "fuzzy":
	default:
		errs = append(errs, fmt.Errorf("dropdown.search %q must be substring or fuzzy", c.Dropdown.Search))
	}
	return errors.Join(errs...)
}

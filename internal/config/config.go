// ABOUTME: YAML configuration for trackr with XDG config paths.
// ABOUTME: Missing files fall back to defaults; values are validated on load.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/riegojerey/ExoidTrackr/internal/barcode"
	"github.com/riegojerey/ExoidTrackr/internal/export"
	"github.com/riegojerey/ExoidTrackr/internal/models"
	"gopkg.in/yaml.v3"
)

// Unknown-code policies.
const (
	UnknownReject = "reject"
	UnknownPrompt = "prompt"
)

// Config holds trackr settings.
type Config struct {
	// Catalog is the catalog opened by scan when no file is given.
	Catalog string `yaml:"catalog,omitempty"`

	// ExportDir is where ledger exports and barcode catalogs go by default.
	ExportDir string `yaml:"export_dir,omitempty"`

	// Mode is the starting scan mode: check-in or check-out.
	Mode string `yaml:"mode"`

	// UnknownCodes is reject (report an error) or prompt (ask for a
	// description, add to the catalog, and check in).
	UnknownCodes string `yaml:"unknown_codes"`

	Barcode BarcodeConfig `yaml:"barcode"`
	Log     LogConfig     `yaml:"log"`
}

type BarcodeConfig struct {
	ModuleWidth int     `yaml:"module_width"`
	Height      int     `yaml:"height"`
	RowHeight   float64 `yaml:"row_height"`
	ColumnWidth float64 `yaml:"column_width"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	exp := export.DefaultOptions()
	return &Config{
		Mode:         "check-in",
		UnknownCodes: UnknownReject,
		Barcode: BarcodeConfig{
			ModuleWidth: exp.Barcode.ModuleWidth,
			Height:      exp.Barcode.Height,
			RowHeight:   exp.RowHeight,
			ColumnWidth: exp.ColumnWidth,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Dir returns the configuration directory path.
func Dir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "trackr")
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Load reads the config at path, or Path() when empty. A missing file
// yields defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}
	cfg := Default()

	data, err := os.ReadFile(path) //nolint:gosec // Config path comes from the user
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, or Path() when empty.
func Save(path string, cfg *Config) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Exists reports whether a config file exists at path, or Path() when empty.
func Exists(path string) bool {
	if path == "" {
		path = Path()
	}
	_, err := os.Stat(path)
	return err == nil
}

// Validate checks enumerated fields and sizes.
func (c *Config) Validate() error {
	if _, err := models.ParseMode(c.Mode); err != nil {
		return fmt.Errorf("mode: %w", err)
	}
	switch c.UnknownCodes {
	case UnknownReject, UnknownPrompt:
	default:
		return fmt.Errorf("unknown_codes: must be %q or %q, got %q", UnknownReject, UnknownPrompt, c.UnknownCodes)
	}
	if c.Barcode.ModuleWidth <= 0 || c.Barcode.Height <= 0 {
		return errors.New("barcode: module_width and height must be positive")
	}
	if c.Barcode.RowHeight < 0 || c.Barcode.ColumnWidth < 0 {
		return errors.New("barcode: row_height and column_width cannot be negative")
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json", "logfmt":
	default:
		return fmt.Errorf("log.format: unsupported value %q", c.Log.Format)
	}
	return nil
}

// StartMode returns the parsed starting mode. Validate has already checked it.
func (c *Config) StartMode() models.Mode {
	m, _ := models.ParseMode(c.Mode)
	return m
}

// PromptUnknown reports whether unknown codes should be added interactively.
func (c *Config) PromptUnknown() bool {
	return c.UnknownCodes == UnknownPrompt
}

// ExportOptions converts the barcode section to exporter options.
func (c *Config) ExportOptions() export.Options {
	return export.Options{
		Barcode: barcode.Options{
			ModuleWidth: c.Barcode.ModuleWidth,
			Height:      c.Barcode.Height,
		},
		RowHeight:   c.Barcode.RowHeight,
		ColumnWidth: c.Barcode.ColumnWidth,
	}
}

// ExportPath resolves name against ExportDir unless name is already a path.
func (c *Config) ExportPath(name string) string {
	if name == "" || filepath.IsAbs(name) || strings.ContainsRune(name, filepath.Separator) || c.ExportDir == "" {
		return name
	}
	return filepath.Join(c.ExportDir, name)
}

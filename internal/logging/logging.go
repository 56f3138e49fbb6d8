// ABOUTME: Structured logger construction from configuration.
// ABOUTME: Wraps charmbracelet/log with level and formatter selection.

package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/riegojerey/ExoidTrackr/internal/config"
)

// New builds a logger writing to w (stderr when nil).
//
// Level values: "debug", "info", "warn", "error" (default: "info").
// Format values: "text", "json", "logfmt" (default: "text").
func New(cfg config.LogConfig, w io.Writer) (*log.Logger, error) {
	if w == nil {
		w = os.Stderr
	}

	level := log.InfoLevel
	if strings.TrimSpace(cfg.Level) != "" {
		parsed, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		level = parsed
	}

	var formatter log.Formatter
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", "text":
		formatter = log.TextFormatter
	case "json":
		formatter = log.JSONFormatter
	case "logfmt":
		formatter = log.LogfmtFormatter
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", cfg.Format)
	}

	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Formatter:       formatter,
		Prefix:          "trackr",
		ReportTimestamp: true,
	}), nil
}

// Discard returns a logger that drops everything, for tests and quiet commands.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

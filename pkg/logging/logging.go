package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Level is a slog level.
type Level = slog.Level

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Format selects the slog handler.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

var (
	// ErrInvalidLevel is returned by Parse for an unknown level name.
	ErrInvalidLevel = errors.New("invalid log level")

	// ErrInvalidFormat is returned by Parse for an unknown format name.
	ErrInvalidFormat = errors.New("invalid log format")
)

// Config holds logging configuration.
type Config struct {
	Level  Level
	Format Format

	// Outputs receive every record. None means os.Stderr.
	Outputs []io.Writer

	// AddSource adds source file and line to log entries.
	AddSource bool
}

// Parse builds a Config from the level and format names used in
// configuration files and flags. Empty names select info and text.
func Parse(level, format string) (Config, error) {
	lvl, ok := LookupLevel(level)
	if !ok {
		return Config{}, fmt.Errorf("%w %q: use debug, info, warn or error", ErrInvalidLevel, level)
	}
	f, ok := LookupFormat(format)
	if !ok {
		return Config{}, fmt.Errorf("%w %q: use text or json", ErrInvalidFormat, format)
	}
	return Config{Level: lvl, Format: f}, nil
}

// New creates a logger writing to every output of cfg.
func New(cfg Config) *slog.Logger {
	outputs := cfg.Outputs
	if len(outputs) == 0 {
		outputs = []io.Writer{os.Stderr}
	}
	if len(outputs) == 1 {
		return slog.New(cfg.handler(outputs[0]))
	}
	handlers := make([]slog.Handler, len(outputs))
	for i, w := range outputs {
		handlers[i] = cfg.handler(w)
	}
	return slog.New(NewMultiHandler(handlers...))
}

func (c Config) handler(w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{Level: c.Level, AddSource: c.AddSource}
	if c.Format == FormatJSON {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// Nop returns a logger that discards all output.
func Nop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// LookupLevel parses a level name, ignoring case, and reports whether it
// was recognized.
func LookupLevel(s string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, true
	case "info", "":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	default:
		return LevelInfo, false
	}
}

// LookupFormat parses a format name, ignoring case, and reports whether it
// was recognized.
func LookupFormat(s string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, true
	case "text", "":
		return FormatText, true
	default:
		return FormatText, false
	}
}

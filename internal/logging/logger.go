// Trailmark - Web Analytics Aggregation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailmark

package logging

import (
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// AppName is attached to every line written by the global logger.
const AppName = "trailmark"

// Config holds logging configuration.
type Config struct {
	// Level is the minimum level: trace, debug, info, warn or error.
	// Unknown or empty levels fall back to info.
	Level string

	// Format is json (default) or console.
	Format string

	// Caller adds file:line to every line.
	Caller bool

	// Output defaults to os.Stderr so report output on stdout stays clean.
	Output io.Writer
}

// DefaultConfig returns info level JSON on stderr.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "json",
		Output: os.Stderr,
	}
}

// global is swapped atomically; readers never block each other.
var global atomic.Pointer[zerolog.Logger]

//nolint:gochecknoinits // packages log before cmd/trailmark calls Init
func init() {
	Init(DefaultConfig())
}

// Init rebuilds the global logger from cfg. Calling it again reconfigures
// every package that logs through this one.
func Init(cfg Config) {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	ctx := zerolog.New(out).With().Timestamp().Str("app", AppName)
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	SetLogger(ctx.Logger())
}

// parseLevel accepts zerolog level names plus "warning".
func parseLevel(level string) zerolog.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		return zerolog.WarnLevel
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// Logger returns a copy of the global logger.
func Logger() zerolog.Logger {
	return *global.Load()
}

// SetLogger replaces the global logger. Tests use it to capture output.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func SetLogger(l zerolog.Logger) {
	global.Store(&l)
}

// With creates a child logger with additional context.
//
//	cacheLogger := logging.With().Str("cache", "daily_stats").Logger()
func With() zerolog.Context {
	return global.Load().With()
}

// Debug starts a debug level message.
func Debug() *zerolog.Event { return global.Load().Debug() }

// Info starts an info level message.
//
//	logging.Info().Str("input", path).Msg("Report started")
func Info() *zerolog.Event { return global.Load().Info() }

// Warn starts a warn level message.
func Warn() *zerolog.Event { return global.Load().Warn() }

// Error starts an error level message.
func Error() *zerolog.Event { return global.Load().Error() }

// Err starts an error level message carrying err.
//
//	logging.Err(err).Msg("Rollup failed")
func Err(err error) *zerolog.Event { return global.Load().Err(err) }

// NewTestLogger returns a JSON logger writing to w, without the app field.
func NewTestLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}

// Trailmark - Web Analytics Aggregation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailmark

// Package logging provides centralized zerolog-based structured logging for Trailmark.
//
// # Quick Start
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logging.Info().Str("input", path).Msg("Report started")
//	logging.Err(err).Msg("Rollup failed")
//
// # Configuration
//
// The logging section of the Trailmark configuration maps onto Config:
//
//	TRAILMARK_LOG_LEVEL   - trace, debug, info, warn, error (default: info)
//	TRAILMARK_LOG_FORMAT  - json, console (default: json)
//	TRAILMARK_LOG_CALLER  - include caller file:line (default: false)
//
// # Run IDs
//
// Every report invocation and every scheduled rollup gets a short run ID.
// Attach it to the context once and every log line written through Ctx
// carries it:
//
//	ctx = logging.ContextWithNewRunID(ctx)
//	logging.Ctx(ctx).Info().Int("records", n).Msg("Daily stats computed")
//
// # Supervisor Integration
//
// SlogHandler adapts zerolog to log/slog so sutureslog can report supervisor
// events through the same output:
//
//	handler := &sutureslog.Handler{Logger: logging.NewSlogLogger()}
//
// Always terminate log chains with .Msg() or .Send(); an unterminated event
// is never written.
package logging

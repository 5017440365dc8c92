// Trailmark - Web Analytics Aggregation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailmark

package services

import (
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// cronLogger routes robfig/cron's scheduler logs to zerolog. Scheduler
// chatter (wake, run, schedule) goes to debug.
type cronLogger struct {
	logger zerolog.Logger
}

var _ cron.Logger = cronLogger{}

//nolint:gocritic // zerolog.Logger is designed to be passed by value
func newCronLogger(logger zerolog.Logger) cronLogger {
	return cronLogger{logger: logger.With().Str("subsystem", "cron").Logger()}
}

// Info implements cron.Logger.
func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

// Error implements cron.Logger.
func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}

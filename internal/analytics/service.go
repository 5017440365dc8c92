// Trailmark - Web Analytics Aggregation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailmark

package analytics

import (
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/trailmark/internal/cache"
	"github.com/tomtom215/trailmark/internal/logging"
	"github.com/tomtom215/trailmark/internal/models"
)

// Defaults applied to zero-valued Config fields.
const (
	DefaultTopPagesLimit = 10
	DefaultCohortPeriods = 12
	DefaultCacheTTL      = 5 * time.Minute
)

// Cache names, used as metrics labels and in cache keys.
const (
	DailyCacheName  = "daily_stats"
	WeeklyCacheName = "weekly_stats"
)

// DailyCache memoizes ProcessDailyStats results.
type DailyCache = cache.Cache[[]models.DailyStats]

// WeeklyCache memoizes ProcessWeeklyStats results.
type WeeklyCache = cache.Cache[[]models.WeeklyStats]

// Config configures the aggregation service.
type Config struct {
	// TopPagesLimit caps DailyStats.TopPages.
	// Default: 10
	TopPagesLimit int

	// CohortPeriods is the number of retention periods tracked per cohort.
	// Default: 12
	CohortPeriods int

	// Location is the time zone timestamps are converted to before bucketing.
	// nil keeps each record's own location.
	Location *time.Location

	// CacheTTL is how long daily and weekly results stay cached.
	// Default: 5m
	CacheTTL time.Duration
}

// DefaultConfig returns the default service configuration.
func DefaultConfig() Config {
	return Config{
		TopPagesLimit: DefaultTopPagesLimit,
		CohortPeriods: DefaultCohortPeriods,
		CacheTTL:      DefaultCacheTTL,
	}
}

// Option customizes a Service.
type Option func(*Service)

// WithDailyCache memoizes daily stats in c.
func WithDailyCache(c *DailyCache) Option {
	return func(s *Service) {
		s.daily = c
	}
}

// WithWeeklyCache memoizes weekly stats in c.
func WithWeeklyCache(c *WeeklyCache) Option {
	return func(s *Service) {
		s.weekly = c
	}
}

// WithLogger sets the service logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// Service turns raw page views and interactions into traffic rollups, funnels
// and cohort retention curves.
//
// A Service is built once at startup and shared; it holds no per-call state.
// The aggregation methods only read their arguments and are safe for
// concurrent use. Without caches every call recomputes.
type Service struct {
	cfg    Config
	daily  *DailyCache
	weekly *WeeklyCache
	logger zerolog.Logger
}

// New creates an aggregation service. Zero-valued Config fields take their defaults.
func New(cfg Config, opts ...Option) (*Service, error) {
	if cfg.TopPagesLimit == 0 {
		cfg.TopPagesLimit = DefaultTopPagesLimit
	}
	if cfg.CohortPeriods == 0 {
		cfg.CohortPeriods = DefaultCohortPeriods
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}

	var err error
	switch {
	case cfg.TopPagesLimit < 0:
		err = fmt.Errorf("%w: top pages limit must be positive, got %d", ErrInvalidConfig, cfg.TopPagesLimit)
	case cfg.CohortPeriods < 0:
		err = fmt.Errorf("%w: cohort periods must be positive, got %d", ErrInvalidConfig, cfg.CohortPeriods)
	case cfg.CacheTTL < 0:
		err = fmt.Errorf("%w: cache ttl must be positive, got %s", ErrInvalidConfig, cfg.CacheTTL)
	}
	if err != nil {
		logging.Error().Err(err).Msg("Analytics service configuration rejected")
		return nil, err
	}

	s := &Service{
		cfg:    cfg,
		logger: logging.WithComponent("analytics"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NewCaches builds the daily and weekly result caches from one set of bounds.
// The sweepers are not started.
func NewCaches(base cache.Config, opts ...cache.Option) (*DailyCache, *WeeklyCache, error) {
	dailyCfg := base
	dailyCfg.Name = DailyCacheName
	daily, err := cache.New[[]models.DailyStats](dailyCfg, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("daily cache: %w", err)
	}

	weeklyCfg := base
	weeklyCfg.Name = WeeklyCacheName
	weekly, err := cache.New[[]models.WeeklyStats](weeklyCfg, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("weekly cache: %w", err)
	}
	return daily, weekly, nil
}

// Config returns the effective configuration.
func (s *Service) Config() Config {
	return s.cfg
}

// InvalidateCache drops every cached daily and weekly result. Call it after
// new records have been ingested.
func (s *Service) InvalidateCache() {
	if s.daily != nil {
		s.daily.Clear()
	}
	if s.weekly != nil {
		s.weekly.Clear()
	}
	s.logger.Debug().Msg("Aggregation caches invalidated")
}

// localTime converts t to the configured location.
func (s *Service) localTime(t time.Time) time.Time {
	if s.cfg.Location == nil {
		return t
	}
	return t.In(s.cfg.Location)
}

// locationName identifies the configured location in cache keys.
func (s *Service) locationName() string {
	if s.cfg.Location == nil {
		return ""
	}
	return s.cfg.Location.String()
}

// cloneDaily deep-copies daily rows so cached results never share memory
// with what callers receive.
func cloneDaily(days []models.DailyStats) []models.DailyStats {
	if days == nil {
		return nil
	}
	out := slices.Clone(days)
	for i := range out {
		out[i].TopPages = slices.Clone(out[i].TopPages)
	}
	return out
}

// cloneWeekly deep-copies weekly rows including their daily breakdown.
func cloneWeekly(weeks []models.WeeklyStats) []models.WeeklyStats {
	if weeks == nil {
		return nil
	}
	out := slices.Clone(weeks)
	for i := range out {
		out[i].DailyBreakdown = cloneDaily(out[i].DailyBreakdown)
	}
	return out
}

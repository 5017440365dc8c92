// Trailmark - Web Analytics Aggregation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailmark

package cache

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/trailmark/internal/logging"
	"github.com/tomtom215/trailmark/internal/metrics"
)

// Defaults applied to zero-valued Config fields.
const (
	DefaultMaxEntries          = 500
	DefaultEvictionTargetRatio = 0.9
	DefaultSweepInterval       = time.Minute
	DefaultTTL                 = 5 * time.Minute
)

// ErrInvalidConfig is returned by New for out-of-range configuration.
var ErrInvalidConfig = errors.New("invalid cache configuration")

// Config holds the bounds of a Cache.
type Config struct {
	// Name labels the cache in logs and metrics.
	Name string

	// MaxEntries is the entry count above which size eviction runs.
	// Default: 500
	MaxEntries int

	// EvictionTargetRatio is the fraction of MaxEntries the cache is shrunk to
	// once MaxEntries is exceeded. Must be in (0, 1], and
	// floor(MaxEntries*EvictionTargetRatio) must be at least 1 so the entry
	// just stored by Set always survives eviction.
	// Default: 0.9
	EvictionTargetRatio float64

	// SweepInterval is how often the background sweep removes expired entries.
	// Default: 1m
	SweepInterval time.Duration

	// DefaultTTL is used by Set when the given ttl is not positive.
	// Default: 5m
	DefaultTTL time.Duration
}

// DefaultConfig returns the default cache bounds.
func DefaultConfig() Config {
	return Config{
		Name:                "default",
		MaxEntries:          DefaultMaxEntries,
		EvictionTargetRatio: DefaultEvictionTargetRatio,
		SweepInterval:       DefaultSweepInterval,
		DefaultTTL:          DefaultTTL,
	}
}

// Option customizes a Cache.
type Option func(*options)

type options struct {
	now    func() time.Time
	logger *zerolog.Logger
}

// WithClock replaces time.Now, letting tests simulate the passage of time.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithLogger sets the logger used for sweep and eviction diagnostics.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = &logger
	}
}

// entry is a cached value with its absolute creation time.
// seq breaks createdAt ties so eviction order matches insertion order.
type entry[V any] struct {
	value     V
	createdAt time.Time
	ttl       time.Duration
	seq       uint64
}

func (e *entry[V]) expired(now time.Time) bool {
	return now.Sub(e.createdAt) > e.ttl
}

// Stats tracks cache performance counters.
type Stats struct {
	Hits          int64
	Misses        int64
	Expirations   int64
	SizeEvictions int64
	Invalidations int64
	Entries       int
	LastSweep     time.Time
}

// Cache is a size- and time-bounded key/value store.
//
// Every entry expires ttl after it was set. Expired entries are dropped lazily
// by Get and eagerly by Sweep. Whenever a Set or Sweep leaves more than
// MaxEntries entries, the oldest entries are evicted until at most
// floor(MaxEntries * EvictionTargetRatio) remain.
//
// Thread Safety: all operations are serialized by a single mutex.
//
// The background sweep is not started by New. Call Start (or hand the cache to
// a suture supervisor, since Cache implements Serve) and stop it with Destroy.
type Cache[V any] struct {
	mu      sync.Mutex
	entries map[string]*entry[V]
	seq     uint64
	stats   Stats

	cfg    Config
	now    func() time.Time
	logger zerolog.Logger

	// sweeper lifecycle, guarded by runMu
	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates an empty cache. Zero-valued Config fields take their defaults.
func New[V any](cfg Config, opts ...Option) (*Cache[V], error) {
	if cfg.Name == "" {
		cfg.Name = "default"
	}
	if cfg.MaxEntries == 0 {
		cfg.MaxEntries = DefaultMaxEntries
	}
	if cfg.EvictionTargetRatio == 0 {
		cfg.EvictionTargetRatio = DefaultEvictionTargetRatio
	}
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	if cfg.DefaultTTL == 0 {
		cfg.DefaultTTL = DefaultTTL
	}

	switch {
	case cfg.MaxEntries < 1:
		return nil, fmt.Errorf("%w: max entries must be positive, got %d", ErrInvalidConfig, cfg.MaxEntries)
	case cfg.EvictionTargetRatio <= 0 || cfg.EvictionTargetRatio > 1:
		return nil, fmt.Errorf("%w: eviction target ratio must be in (0,1], got %v", ErrInvalidConfig, cfg.EvictionTargetRatio)
	case EvictionTarget(cfg) < 1:
		return nil, fmt.Errorf("%w: eviction target floor(%d*%v) keeps no entries", ErrInvalidConfig, cfg.MaxEntries, cfg.EvictionTargetRatio)
	case cfg.SweepInterval < 0:
		return nil, fmt.Errorf("%w: sweep interval must be positive, got %s", ErrInvalidConfig, cfg.SweepInterval)
	case cfg.DefaultTTL < 0:
		return nil, fmt.Errorf("%w: default ttl must be positive, got %s", ErrInvalidConfig, cfg.DefaultTTL)
	}

	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	logger := logging.With().Str("component", "cache").Str("cache", cfg.Name).Logger()
	if o.logger != nil {
		logger = o.logger.With().Str("cache", cfg.Name).Logger()
	}

	return &Cache[V]{
		entries: make(map[string]*entry[V]),
		cfg:     cfg,
		now:     o.now,
		logger:  logger,
	}, nil
}

// Config returns the effective configuration.
func (c *Cache[V]) Config() Config {
	return c.cfg
}

// Set stores value under key for ttl (DefaultTTL when ttl <= 0), replacing
// any existing entry, then enforces the size bound.
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.cfg.DefaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	c.entries[key] = &entry[V]{
		value:     value,
		createdAt: c.now(),
		ttl:       ttl,
		seq:       c.seq,
	}
	c.enforceLimitLocked()
	c.updateSizeLocked()
}

// Get returns the value stored under key. An expired entry is deleted and
// reported as absent.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		metrics.RecordCacheMiss(c.cfg.Name)
		return zero, false
	}

	if e.expired(c.now()) {
		delete(c.entries, key)
		c.stats.Misses++
		c.stats.Expirations++
		metrics.RecordCacheMiss(c.cfg.Name)
		metrics.RecordCacheEvictions(c.cfg.Name, "expired", 1)
		c.updateSizeLocked()
		return zero, false
	}

	c.stats.Hits++
	metrics.RecordCacheHit(c.cfg.Name)
	return e.value, true
}

// Invalidate removes key. Missing keys are ignored.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok {
		return
	}
	delete(c.entries, key)
	c.stats.Invalidations++
	metrics.RecordCacheEvictions(c.cfg.Name, "invalidated", 1)
	c.updateSizeLocked()
}

// Clear removes every entry.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.entries)
	c.entries = make(map[string]*entry[V])
	c.stats.Invalidations += int64(n)
	metrics.RecordCacheEvictions(c.cfg.Name, "invalidated", n)
	c.updateSizeLocked()
}

// Len returns the number of stored entries, including expired entries not yet swept.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Sweep deletes every expired entry and then enforces the size bound.
// It returns the number of expired entries removed.
func (c *Cache[V]) Sweep() int {
	start := time.Now()

	c.mu.Lock()
	now := c.now()
	expired := 0
	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
			expired++
		}
	}
	c.stats.Expirations += int64(expired)
	c.stats.LastSweep = now
	evicted := c.enforceLimitLocked()
	c.updateSizeLocked()
	remaining := len(c.entries)
	c.mu.Unlock()

	metrics.RecordCacheEvictions(c.cfg.Name, "expired", expired)
	metrics.RecordCacheSweep(c.cfg.Name, time.Since(start))

	if expired > 0 || evicted > 0 {
		c.logger.Debug().
			Int("expired", expired).
			Int("evicted", evicted).
			Int("remaining", remaining).
			Msg("cache sweep removed entries")
	}
	return expired
}

// enforceLimitLocked evicts the oldest entries once the cache holds more than
// MaxEntries. Must be called with mu held. Returns the number evicted.
func (c *Cache[V]) enforceLimitLocked() int {
	if len(c.entries) <= c.cfg.MaxEntries {
		return 0
	}

	target := EvictionTarget(c.cfg)

	type aged struct {
		key       string
		createdAt time.Time
		seq       uint64
	}
	ordered := make([]aged, 0, len(c.entries))
	for k, e := range c.entries {
		ordered = append(ordered, aged{key: k, createdAt: e.createdAt, seq: e.seq})
	}
	sort.Slice(ordered, func(i, j int) bool {
		if !ordered[i].createdAt.Equal(ordered[j].createdAt) {
			return ordered[i].createdAt.Before(ordered[j].createdAt)
		}
		return ordered[i].seq < ordered[j].seq
	})

	evict := len(ordered) - target
	for _, a := range ordered[:evict] {
		delete(c.entries, a.key)
	}

	c.stats.SizeEvictions += int64(evict)
	metrics.RecordCacheEvictions(c.cfg.Name, "size", evict)
	return evict
}

// EvictionTarget is the entry count size eviction shrinks a cache with cfg to.
func EvictionTarget(cfg Config) int {
	return int(math.Floor(float64(cfg.MaxEntries)*cfg.EvictionTargetRatio + 1e-9))
}

// updateSizeLocked publishes the entry count. Must be called with mu held.
func (c *Cache[V]) updateSizeLocked() {
	c.stats.Entries = len(c.entries)
	metrics.UpdateCacheSize(c.cfg.Name, len(c.entries))
}

// Stats returns a snapshot of the cache counters.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// HitRate returns the cache hit rate as a percentage
func (c *Cache[V]) HitRate() float64 {
	stats := c.Stats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}

// Serve runs the periodic sweep until ctx is canceled. It implements
// suture.Service so a supervisor can own the sweep instead of Start.
func (c *Cache[V]) Serve(ctx context.Context) error {
	ticker := time.NewTicker(c.cfg.SweepInterval)
	defer ticker.Stop()

	c.logger.Debug().Dur("interval", c.cfg.SweepInterval).Msg("cache sweeper started")

	for {
		select {
		case <-ctx.Done():
			c.logger.Debug().Msg("cache sweeper stopped")
			return ctx.Err()
		case <-ticker.C:
			c.Sweep()
		}
	}
}

// String returns the service name for supervisor logging.
func (c *Cache[V]) String() string {
	return "cache-sweeper:" + c.cfg.Name
}

// Start launches the background sweep in a goroutine owned by the cache.
// Calling Start on a cache whose sweep is already running is a no-op.
func (c *Cache[V]) Start() {
	c.runMu.Lock()
	defer c.runMu.Unlock()

	if c.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done

	go func() {
		defer close(done)
		_ = c.Serve(ctx) //nolint:errcheck // only returns ctx.Err() on shutdown
	}()
}

// Running reports whether the background sweep started by Start is active.
func (c *Cache[V]) Running() bool {
	c.runMu.Lock()
	defer c.runMu.Unlock()
	return c.cancel != nil
}

// Destroy stops the background sweep, waits for it to exit and removes every
// entry. It is safe to call more than once.
func (c *Cache[V]) Destroy() {
	c.runMu.Lock()
	if c.cancel != nil {
		c.cancel()
		<-c.done
		c.cancel = nil
		c.done = nil
	}
	c.runMu.Unlock()

	c.Clear()
}

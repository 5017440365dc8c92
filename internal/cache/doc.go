// Trailmark - Web Analytics Aggregation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailmark

/*
Package cache provides a size- and time-bounded in-memory cache.

Cache[V] memoizes computed analytics results (daily and weekly stats) keyed by
a fingerprint of their input.

# Bounds

  - Every entry expires ttl after it was set (now - createdAt > ttl).
  - Expired entries are removed lazily on Get and eagerly by Sweep.
  - When a Set or Sweep leaves more than MaxEntries entries, the oldest entries
    are evicted until floor(MaxEntries * EvictionTargetRatio) remain.

# Lifecycle

New never starts a goroutine. The periodic sweep runs either under a suture
supervisor (Cache implements Serve and String) or in a goroutine owned by the
cache:

	c, err := cache.New[models.DailyStats](cache.Config{Name: "daily_stats"})
	if err != nil {
	    return err
	}
	c.Start()
	defer c.Destroy()

Destroy stops the sweep, waits for it to exit and clears the cache.

# Testing

WithClock injects a clock so expiry can be tested without sleeping:

	c, _ := cache.New[string](cfg, cache.WithClock(clock.Now))

# Keys

GenerateKey hashes a method name and a JSON-serializable parameter value into a
compact key:

	key := cache.GenerateKey("daily_stats", fingerprint)

# Metrics

Hits, misses, evictions (by reason) and size are exported per cache name via
the metrics package.
*/
package cache

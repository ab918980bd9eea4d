package metrics

import "sync/atomic"

// CacheMetric counts reuse of a memoized value.
type CacheMetric struct {
	name   string
	hits   atomic.Int64
	misses atomic.Int64
}

func newCacheMetric(name string) *CacheMetric {
	return &CacheMetric{name: name}
}

// Hit records a reuse.
func (c *CacheMetric) Hit() {
	if Enabled() {
		c.hits.Add(1)
	}
}

// Miss records a recomputation.
func (c *CacheMetric) Miss() {
	if Enabled() {
		c.misses.Add(1)
	}
}

// Stats returns the current counters.
func (c *CacheMetric) Stats() CacheStats {
	hits, misses := c.hits.Load(), c.misses.Load()
	var ratio float64
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return CacheStats{Name: c.name, Hits: hits, Misses: misses, HitRatio: ratio}
}

// Reset clears the counters.
func (c *CacheMetric) Reset() {
	c.hits.Store(0)
	c.misses.Store(0)
}

// CacheStats is a snapshot of a CacheMetric.
type CacheStats struct {
	Name     string  `json:"name"`
	Hits     int64   `json:"hits"`
	Misses   int64   `json:"misses"`
	HitRatio float64 `json:"hit_ratio"`
}

// Cache metrics for the engine's derivations.
var (
	IndexCache   = newCacheMetric("index")
	SearchCache  = newCacheMetric("search")
	VisibleCache = newCacheMetric("visible")
	WindowCache  = newCacheMetric("window")
)

// AllCacheMetrics returns all registered cache metrics.
func AllCacheMetrics() []*CacheMetric {
	return []*CacheMetric{IndexCache, SearchCache, VisibleCache, WindowCache}
}

// AllCacheStats returns stats for cache metrics that saw any traffic.
func AllCacheStats() []CacheStats {
	var stats []CacheStats
	for _, c := range AllCacheMetrics() {
		s := c.Stats()
		if s.Hits+s.Misses > 0 {
			stats = append(stats, s)
		}
	}
	return stats
}

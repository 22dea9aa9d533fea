package analytics

import (
	"sort"
	"sync"
	"time"
)

const maxTrackedQueries = 10000

// Aggregator maintains rolling search statistics in memory.
type Aggregator struct {
	mu           sync.RWMutex
	totalQueries int64
	zeroResults  int64
	cacheHits    int64
	latencies    []float64
	queryCounts  map[string]int64
	zeroQueries  map[string]int64
	since        time.Time
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		queryCounts: make(map[string]int64),
		zeroQueries: make(map[string]int64),
		since:       time.Now(),
	}
}

// Record folds one search event into the aggregates.
func (a *Aggregator) Record(event SearchEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.totalQueries++
	if event.CacheHit {
		a.cacheHits++
	}
	a.latencies = append(a.latencies, event.LatencyMs)
	if len(a.latencies) > maxTrackedQueries {
		a.latencies = a.latencies[len(a.latencies)-maxTrackedQueries:]
	}

	if len(a.queryCounts) < maxTrackedQueries || a.queryCounts[event.Query] > 0 {
		a.queryCounts[event.Query]++
	}
	if event.Total == 0 {
		a.zeroResults++
		if len(a.zeroQueries) < maxTrackedQueries || a.zeroQueries[event.Query] > 0 {
			a.zeroQueries[event.Query]++
		}
	}
}

// QueryCount is a query string with its occurrence count.
type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// Stats is a point-in-time aggregate report.
type Stats struct {
	Since            time.Time    `json:"since"`
	TotalQueries     int64        `json:"total_queries"`
	ZeroResultRate   float64      `json:"zero_result_rate"`
	CacheHitRate     float64      `json:"cache_hit_rate"`
	LatencyP50Ms     float64      `json:"latency_p50_ms"`
	LatencyP95Ms     float64      `json:"latency_p95_ms"`
	LatencyP99Ms     float64      `json:"latency_p99_ms"`
	TopQueries       []QueryCount `json:"top_queries"`
	ZeroResultTop    []QueryCount `json:"zero_result_queries"`
}

// Snapshot computes the current aggregates.
func (a *Aggregator) Snapshot() Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := Stats{
		Since:        a.since,
		TotalQueries: a.totalQueries,
	}
	if a.totalQueries > 0 {
		stats.ZeroResultRate = float64(a.zeroResults) / float64(a.totalQueries)
		stats.CacheHitRate = float64(a.cacheHits) / float64(a.totalQueries)
	}

	if len(a.latencies) > 0 {
		sorted := make([]float64, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Float64s(sorted)
		stats.LatencyP50Ms = percentile(sorted, 0.50)
		stats.LatencyP95Ms = percentile(sorted, 0.95)
		stats.LatencyP99Ms = percentile(sorted, 0.99)
	}

	stats.TopQueries = topN(a.queryCounts, 10)
	stats.ZeroResultTop = topN(a.zeroQueries, 10)
	return stats
}

// percentile reads the p-th percentile from an ascending slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(p * float64(len(sorted)-1))
	return sorted[idx]
}

func topN(counts map[string]int64, n int) []QueryCount {
	out := make([]QueryCount, 0, len(counts))
	for q, c := range counts {
		out = append(out, QueryCount{Query: q, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Query < out[j].Query
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

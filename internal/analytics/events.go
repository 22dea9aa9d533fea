// Package analytics collects search usage events, aggregates them in memory,
// and periodically snapshots aggregates to PostgreSQL. Events additionally
// flow to Kafka for downstream consumers.
package analytics

import "time"

// SearchEvent is emitted once per search request after execution.
type SearchEvent struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
	Query     string    `json:"query"`
	Terms     []string  `json:"terms"`
	ChannelID string    `json:"channel_id,omitempty"`
	Total     int       `json:"total"`
	Returned  int       `json:"returned"`
	LatencyMs float64   `json:"latency_ms"`
	CacheHit  bool      `json:"cache_hit"`
}

// IngestEvent is emitted once per video ingestion attempt.
type IngestEvent struct {
	Timestamp time.Time `json:"timestamp"`
	VideoID   string    `json:"video_id"`
	ChannelID string    `json:"channel_id"`
	Segments  int       `json:"segments"`
	Outcome   string    `json:"outcome"`
}

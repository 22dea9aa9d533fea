// Package ingestion defines the admin-facing ingest API: request payloads,
// validation, and the event types carried over Kafka from ingestd to searchd.
package ingestion

import (
	"time"

	"github.com/ppenja/youtube-transcript-archive/internal/archive"
)

// RegisterChannelRequest is the body of PUT /admin/channels/{id}.
type RegisterChannelRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// SegmentPayload is one transcript segment as submitted by the fetcher.
// Positions are assigned server-side from list order.
type SegmentPayload struct {
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Text     string  `json:"text"`
}

// IngestVideoRequest is the body of PUT /admin/videos/{id}: video metadata
// plus the complete ordered transcript. A resubmission fully replaces any
// prior transcript for the video.
type IngestVideoRequest struct {
	ChannelID    string           `json:"channel_id"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	PublishedAt  time.Time        `json:"published_at"`
	ThumbnailURL string           `json:"thumbnail_url"`
	Segments     []SegmentPayload `json:"segments"`
}

// IngestResponse reports the per-video outcome of an admin operation.
type IngestResponse struct {
	VideoID  string `json:"video_id,omitempty"`
	Status   string `json:"status"`
	Segments int    `json:"segments,omitempty"`
}

// Event operations carried on the transcript-ingest topic.
const (
	OpRegisterChannel = "register_channel"
	OpIngest          = "ingest"
	OpRemove          = "remove"
)

// TranscriptEvent is the wire format on the transcript-ingest topic. Exactly
// one of Channel or Video is meaningful depending on Op.
type TranscriptEvent struct {
	Op       string            `json:"op"`
	Channel  *archive.Channel  `json:"channel,omitempty"`
	Video    *archive.Video    `json:"video,omitempty"`
	Segments []archive.Segment `json:"segments,omitempty"`
}

// CacheInvalidateEvent is the wire format on the cache-invalidate topic.
type CacheInvalidateEvent struct {
	Reason  string `json:"reason"`
	VideoID string `json:"video_id,omitempty"`
}

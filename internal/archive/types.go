// Package archive defines the domain types shared across the transcript
// archive: channels, videos, transcript segments, and search hits.
package archive

import (
	"fmt"
	"time"
)

// VideoStatus tracks a video through the ingestion state machine.
type VideoStatus string

const (
	StatusIngesting VideoStatus = "ingesting"
	StatusAvailable VideoStatus = "available"
	StatusFailed    VideoStatus = "failed"
)

// Channel is an archived YouTube channel. VideoCount is derived from the
// catalog and recomputed on ingestion, never stored authoritatively.
type Channel struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnailUrl"`
	VideoCount   int    `json:"videoCount"`
}

// Video is an archived video's metadata. TranscriptAvailable flips true only
// once the video's full segment set has been indexed.
type Video struct {
	ID                  string    `json:"id"`
	ChannelID           string    `json:"channel_id"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	PublishedAt         time.Time `json:"published_at"`
	ThumbnailURL        string    `json:"thumbnail_url"`
	TranscriptAvailable bool      `json:"has_transcript"`
}

// Segment is one timestamped slice of a video transcript. Position is the
// zero-based order within the video and doubles as the segment ID in postings.
// Start offsets are strictly increasing within a video; durations are positive.
type Segment struct {
	Position int     `json:"position"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Text     string  `json:"text"`
}

// SearchHit is a ranked search result: a matched segment joined with its
// video and channel metadata for display.
type SearchHit struct {
	VideoID      string    `json:"video_id"`
	VideoTitle   string    `json:"video_title"`
	ChannelID    string    `json:"channel_id"`
	ChannelTitle string    `json:"channel_title"`
	PublishedAt  time.Time `json:"published_date"`
	ThumbnailURL string    `json:"thumbnail_url"`
	Text         string    `json:"text"`
	Score        float64   `json:"score"`
	Timestamp    float64   `json:"timestamp"`
	TimestampURL string    `json:"timestamp_url"`
}

// WatchURL builds a YouTube deep link that starts playback at the segment's
// start offset, truncated to whole seconds.
func WatchURL(videoID string, start float64) string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s&t=%d", videoID, int(start))
}

// Package validator checks admin ingest payloads before they are persisted
// or published.
package validator

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ppenja/youtube-transcript-archive/internal/ingestion"
	apperrors "github.com/ppenja/youtube-transcript-archive/pkg/errors"
)

// Validator enforces payload shape and per-video resource limits.
type Validator struct {
	maxSegmentsPerVideo int
	maxSegmentTextBytes int
}

func New(maxSegmentsPerVideo, maxSegmentTextBytes int) *Validator {
	return &Validator{
		maxSegmentsPerVideo: maxSegmentsPerVideo,
		maxSegmentTextBytes: maxSegmentTextBytes,
	}
}

// ValidationError carries per-field messages so the caller can fix all
// problems in one round trip.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func newValidationError(fields map[string]string) error {
	ve := &ValidationError{Fields: fields}
	return apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, ve.Error())
}

// ValidateChannel checks a channel registration payload.
func (v *Validator) ValidateChannel(channelID string, req ingestion.RegisterChannelRequest) error {
	fields := make(map[string]string)
	if strings.TrimSpace(channelID) == "" {
		fields["id"] = "channel id is required"
	}
	if strings.TrimSpace(req.Title) == "" {
		fields["title"] = "title is required"
	}
	if len(fields) > 0 {
		return newValidationError(fields)
	}
	return nil
}

// ValidateVideo checks an ingest payload: required metadata, segment count
// and text limits, strictly increasing start offsets, positive durations.
func (v *Validator) ValidateVideo(videoID string, req ingestion.IngestVideoRequest) error {
	fields := make(map[string]string)
	if strings.TrimSpace(videoID) == "" {
		fields["id"] = "video id is required"
	}
	if strings.TrimSpace(req.ChannelID) == "" {
		fields["channel_id"] = "channel id is required"
	}
	if strings.TrimSpace(req.Title) == "" {
		fields["title"] = "title is required"
	}
	if len(req.Segments) == 0 {
		fields["segments"] = "at least one segment is required"
	}
	if v.maxSegmentsPerVideo > 0 && len(req.Segments) > v.maxSegmentsPerVideo {
		fields["segments"] = fmt.Sprintf("segment count %d exceeds limit %d",
			len(req.Segments), v.maxSegmentsPerVideo)
	}

	prevStart := -1.0
	for i, seg := range req.Segments {
		key := fmt.Sprintf("segments[%d]", i)
		if strings.TrimSpace(seg.Text) == "" {
			fields[key+".text"] = "text is required"
		}
		if v.maxSegmentTextBytes > 0 && len(seg.Text) > v.maxSegmentTextBytes {
			fields[key+".text"] = fmt.Sprintf("text is %d bytes, limit is %d",
				len(seg.Text), v.maxSegmentTextBytes)
		}
		if seg.Start < 0 {
			fields[key+".start"] = "start must be non-negative"
		} else if seg.Start <= prevStart {
			fields[key+".start"] = "start offsets must be strictly increasing"
		}
		prevStart = seg.Start
		if seg.Duration <= 0 {
			fields[key+".duration"] = "duration must be positive"
		}
	}

	if len(fields) > 0 {
		return newValidationError(fields)
	}
	return nil
}

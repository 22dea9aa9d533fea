package validator

import (
	"errors"
	"strings"
	"testing"

	"github.com/ppenja/youtube-transcript-archive/internal/ingestion"
	apperrors "github.com/ppenja/youtube-transcript-archive/pkg/errors"
)

func validRequest() ingestion.IngestVideoRequest {
	return ingestion.IngestVideoRequest{
		ChannelID: "c1",
		Title:     "A video",
		Segments: []ingestion.SegmentPayload{
			{Start: 0, Duration: 4.2, Text: "first segment"},
			{Start: 4.2, Duration: 3.1, Text: "second segment"},
		},
	}
}

func TestValidateVideoAcceptsValid(t *testing.T) {
	v := New(100, 1024)
	if err := v.ValidateVideo("v1", validRequest()); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}
}

func TestValidateVideoRejections(t *testing.T) {
	v := New(3, 32)

	tests := []struct {
		name    string
		videoID string
		mutate  func(*ingestion.IngestVideoRequest)
		wantMsg string
	}{
		{
			name:    "missing video id",
			videoID: "  ",
			mutate:  func(r *ingestion.IngestVideoRequest) {},
			wantMsg: "video id is required",
		},
		{
			name:    "missing channel id",
			videoID: "v1",
			mutate:  func(r *ingestion.IngestVideoRequest) { r.ChannelID = "" },
			wantMsg: "channel id is required",
		},
		{
			name:    "missing title",
			videoID: "v1",
			mutate:  func(r *ingestion.IngestVideoRequest) { r.Title = "" },
			wantMsg: "title is required",
		},
		{
			name:    "no segments",
			videoID: "v1",
			mutate:  func(r *ingestion.IngestVideoRequest) { r.Segments = nil },
			wantMsg: "at least one segment",
		},
		{
			name:    "too many segments",
			videoID: "v1",
			mutate: func(r *ingestion.IngestVideoRequest) {
				r.Segments = make([]ingestion.SegmentPayload, 4)
				for i := range r.Segments {
					r.Segments[i] = ingestion.SegmentPayload{Start: float64(i), Duration: 1, Text: "x y"}
				}
			},
			wantMsg: "exceeds limit",
		},
		{
			name:    "empty segment text",
			videoID: "v1",
			mutate:  func(r *ingestion.IngestVideoRequest) { r.Segments[1].Text = "   " },
			wantMsg: "text is required",
		},
		{
			name:    "oversized segment text",
			videoID: "v1",
			mutate: func(r *ingestion.IngestVideoRequest) {
				r.Segments[0].Text = strings.Repeat("a", 33)
			},
			wantMsg: "limit is 32",
		},
		{
			name:    "negative start",
			videoID: "v1",
			mutate:  func(r *ingestion.IngestVideoRequest) { r.Segments[0].Start = -1 },
			wantMsg: "non-negative",
		},
		{
			name:    "non-increasing starts",
			videoID: "v1",
			mutate:  func(r *ingestion.IngestVideoRequest) { r.Segments[1].Start = 0 },
			wantMsg: "strictly increasing",
		},
		{
			name:    "zero duration",
			videoID: "v1",
			mutate:  func(r *ingestion.IngestVideoRequest) { r.Segments[0].Duration = 0 },
			wantMsg: "duration must be positive",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			err := v.ValidateVideo(tc.videoID, req)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, apperrors.ErrInvalidInput) {
				t.Errorf("error does not wrap ErrInvalidInput: %v", err)
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Errorf("error %q does not mention %q", err.Error(), tc.wantMsg)
			}
		})
	}
}

func TestValidateChannel(t *testing.T) {
	v := New(0, 0)
	if err := v.ValidateChannel("c1", ingestion.RegisterChannelRequest{Title: "Channel"}); err != nil {
		t.Fatalf("valid channel rejected: %v", err)
	}
	if err := v.ValidateChannel("c1", ingestion.RegisterChannelRequest{}); err == nil {
		t.Error("channel without title should be rejected")
	}
	if err := v.ValidateChannel("", ingestion.RegisterChannelRequest{Title: "x"}); err == nil {
		t.Error("channel without id should be rejected")
	}
}

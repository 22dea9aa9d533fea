package indexer

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/ppenja/youtube-transcript-archive/internal/archive"
	"github.com/ppenja/youtube-transcript-archive/internal/ingestion"
	"github.com/ppenja/youtube-transcript-archive/pkg/config"
)

func marshal(t *testing.T, event ingestion.TranscriptEvent) []byte {
	t.Helper()
	data, err := json.Marshal(event)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestEventHandlerDispatch(t *testing.T) {
	c, idx, store := newTestCoordinator(config.IndexConfig{})
	h := NewEventHandler(c)
	ctx := context.Background()

	err := h.Handle(ctx, []byte("c1"), marshal(t, ingestion.TranscriptEvent{
		Op:      ingestion.OpRegisterChannel,
		Channel: &archive.Channel{ID: "c1", Title: "Channel"},
	}))
	if err != nil {
		t.Fatalf("register event: %v", err)
	}
	if !store.HasChannel("c1") {
		t.Fatal("channel not registered")
	}

	err = h.Handle(ctx, []byte("v1"), marshal(t, ingestion.TranscriptEvent{
		Op:       ingestion.OpIngest,
		Video:    &archive.Video{ID: "v1", ChannelID: "c1"},
		Segments: segs("streamed transcript"),
	}))
	if err != nil {
		t.Fatalf("ingest event: %v", err)
	}
	if _, ok := idx.Video("v1"); !ok {
		t.Fatal("video not indexed from event")
	}

	err = h.Handle(ctx, []byte("v1"), marshal(t, ingestion.TranscriptEvent{
		Op:    ingestion.OpRemove,
		Video: &archive.Video{ID: "v1"},
	}))
	if err != nil {
		t.Fatalf("remove event: %v", err)
	}
	if _, ok := idx.Video("v1"); ok {
		t.Fatal("video still indexed after remove event")
	}
}

func TestEventHandlerOutOfOrderRegistration(t *testing.T) {
	c, idx, store := newTestCoordinator(config.IndexConfig{})
	h := NewEventHandler(c)
	ctx := context.Background()

	// Registration and ingest events are partitioned by different keys, so
	// the ingest can be consumed first. It must index the video rather than
	// error, which the consumer loop would log and discard.
	err := h.Handle(ctx, []byte("v1"), marshal(t, ingestion.TranscriptEvent{
		Op:       ingestion.OpIngest,
		Video:    &archive.Video{ID: "v1", ChannelID: "c1"},
		Segments: segs("consumed ahead of registration"),
	}))
	if err != nil {
		t.Fatalf("ingest before registration: %v", err)
	}
	if _, ok := idx.Video("v1"); !ok {
		t.Fatal("video dropped instead of indexed")
	}

	err = h.Handle(ctx, []byte("c1"), marshal(t, ingestion.TranscriptEvent{
		Op:      ingestion.OpRegisterChannel,
		Channel: &archive.Channel{ID: "c1", Title: "Late Channel"},
	}))
	if err != nil {
		t.Fatalf("late register event: %v", err)
	}
	ch, ok := store.Channel("c1")
	if !ok || ch.Title != "Late Channel" {
		t.Fatalf("channel metadata not filled in: ok=%v title=%q", ok, ch.Title)
	}
	if ch.VideoCount != 1 {
		t.Errorf("video count = %d, want 1", ch.VideoCount)
	}
}

func TestEventHandlerMalformedEvents(t *testing.T) {
	c, _, _ := newTestCoordinator(config.IndexConfig{})
	h := NewEventHandler(c)
	ctx := context.Background()

	// Garbage payloads are dropped, not retried.
	if err := h.Handle(ctx, []byte("k"), []byte("{not json")); err != nil {
		t.Errorf("malformed JSON should be dropped silently, got %v", err)
	}
	if err := h.Handle(ctx, []byte("k"), marshal(t, ingestion.TranscriptEvent{Op: ingestion.OpIngest})); err != nil {
		t.Errorf("ingest without video should be dropped, got %v", err)
	}
	if err := h.Handle(ctx, []byte("k"), marshal(t, ingestion.TranscriptEvent{Op: "unknown"})); err == nil {
		t.Error("unknown op should surface an error")
	}
}

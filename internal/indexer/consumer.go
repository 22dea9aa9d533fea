package indexer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ppenja/youtube-transcript-archive/internal/ingestion"
	"github.com/ppenja/youtube-transcript-archive/pkg/kafka"
)

// EventHandler adapts the transcript-ingest Kafka topic to Coordinator calls.
type EventHandler struct {
	coordinator *Coordinator
	logger      *slog.Logger
}

func NewEventHandler(coordinator *Coordinator) *EventHandler {
	return &EventHandler{
		coordinator: coordinator,
		logger:      slog.Default().With("component", "ingest-consumer"),
	}
}

// Handle is the kafka.MessageHandler for transcript events. Malformed events
// are logged and dropped rather than retried; they will never become valid.
func (h *EventHandler) Handle(ctx context.Context, key []byte, value []byte) error {
	event, err := kafka.DecodeJSON[ingestion.TranscriptEvent](value)
	if err != nil {
		h.logger.Error("dropping undecodable event", "key", string(key), "error", err)
		return nil
	}

	switch event.Op {
	case ingestion.OpRegisterChannel:
		if event.Channel == nil {
			h.logger.Error("register_channel event without channel", "key", string(key))
			return nil
		}
		return h.coordinator.RegisterChannel(ctx, *event.Channel)
	case ingestion.OpIngest:
		if event.Video == nil {
			h.logger.Error("ingest event without video", "key", string(key))
			return nil
		}
		return h.coordinator.IngestVideo(ctx, *event.Video, event.Segments)
	case ingestion.OpRemove:
		if event.Video == nil {
			h.logger.Error("remove event without video", "key", string(key))
			return nil
		}
		return h.coordinator.RemoveVideo(ctx, event.Video.ID)
	default:
		return fmt.Errorf("unknown transcript event op %q", event.Op)
	}
}

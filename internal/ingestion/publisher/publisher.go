// Package publisher is the write side of ingestd: it persists admin
// submissions to PostgreSQL and publishes them to Kafka for searchd to index.
package publisher

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ppenja/youtube-transcript-archive/internal/archive"
	"github.com/ppenja/youtube-transcript-archive/internal/catalog"
	"github.com/ppenja/youtube-transcript-archive/internal/ingestion"
	"github.com/ppenja/youtube-transcript-archive/pkg/kafka"
	"github.com/ppenja/youtube-transcript-archive/pkg/resilience"
)

// Publisher persists and fans out transcript operations. persister may be
// nil when PostgreSQL is unavailable; events still flow so searchd stays
// current, durability catches up on the next successful write.
type Publisher struct {
	persister  *catalog.Persister
	ingest     *kafka.Producer
	invalidate *kafka.Producer
	logger     *slog.Logger
}

func New(persister *catalog.Persister, ingest, invalidate *kafka.Producer) *Publisher {
	return &Publisher{
		persister:  persister,
		ingest:     ingest,
		invalidate: invalidate,
		logger:     slog.Default().With("component", "ingest-publisher"),
	}
}

// RegisterChannel durably records the channel and announces it.
func (p *Publisher) RegisterChannel(ctx context.Context, ch archive.Channel) error {
	if p.persister != nil {
		err := resilience.Retry(ctx, "upsert-channel", resilience.RetryConfig{}, func() error {
			return p.persister.UpsertChannel(ctx, ch)
		})
		if err != nil {
			return fmt.Errorf("persisting channel %s: %w", ch.ID, err)
		}
	}
	event := ingestion.TranscriptEvent{Op: ingestion.OpRegisterChannel, Channel: &ch}
	if err := p.publishIngest(ctx, ch.ID, event); err != nil {
		return err
	}
	p.logger.Info("channel published", "channel_id", ch.ID)
	return nil
}

// IngestVideo durably records the transcript and announces it. The Kafka key
// is the video ID so all operations for one video stay ordered within a
// partition.
func (p *Publisher) IngestVideo(ctx context.Context, video archive.Video, segments []archive.Segment) error {
	if p.persister != nil {
		err := resilience.Retry(ctx, "persist-video", resilience.RetryConfig{}, func() error {
			if err := p.persister.UpsertVideo(ctx, video, archive.StatusIngesting); err != nil {
				return err
			}
			return p.persister.ReplaceSegments(ctx, video.ID, segments)
		})
		if err != nil {
			return fmt.Errorf("persisting video %s: %w", video.ID, err)
		}
	}
	event := ingestion.TranscriptEvent{Op: ingestion.OpIngest, Video: &video, Segments: segments}
	if err := p.publishIngest(ctx, video.ID, event); err != nil {
		return err
	}
	p.invalidateCache(ctx, "ingest", video.ID)
	p.logger.Info("video published",
		"video_id", video.ID,
		"channel_id", video.ChannelID,
		"segments", len(segments),
	)
	return nil
}

// RemoveVideo durably deletes the transcript and announces the removal.
func (p *Publisher) RemoveVideo(ctx context.Context, videoID string) error {
	if p.persister != nil {
		err := resilience.Retry(ctx, "delete-video", resilience.RetryConfig{}, func() error {
			return p.persister.DeleteVideo(ctx, videoID)
		})
		if err != nil {
			return fmt.Errorf("deleting video %s: %w", videoID, err)
		}
	}
	event := ingestion.TranscriptEvent{Op: ingestion.OpRemove, Video: &archive.Video{ID: videoID}}
	if err := p.publishIngest(ctx, videoID, event); err != nil {
		return err
	}
	p.invalidateCache(ctx, "remove", videoID)
	p.logger.Info("video removal published", "video_id", videoID)
	return nil
}

func (p *Publisher) publishIngest(ctx context.Context, key string, event ingestion.TranscriptEvent) error {
	err := resilience.Retry(ctx, "publish-ingest", resilience.RetryConfig{}, func() error {
		return p.ingest.Publish(ctx, kafka.Event{Key: key, Value: event})
	})
	if err != nil {
		return fmt.Errorf("publishing %s event for %s: %w", event.Op, key, err)
	}
	return nil
}

// invalidateCache is best effort: a stale cache entry expires on its own TTL.
func (p *Publisher) invalidateCache(ctx context.Context, reason, videoID string) {
	if p.invalidate == nil {
		return
	}
	event := ingestion.CacheInvalidateEvent{Reason: reason, VideoID: videoID}
	if err := p.invalidate.Publish(ctx, kafka.Event{Key: videoID, Value: event}); err != nil {
		p.logger.Warn("failed to publish cache invalidation", "video_id", videoID, "error", err)
	}
}

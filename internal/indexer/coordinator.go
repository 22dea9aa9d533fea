// Package indexer coordinates transcript ingestion: it tokenises incoming
// segments, persists them to the durable catalog, and publishes the result
// to the in-memory index as one atomic generation swap per video.
package indexer

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/ppenja/youtube-transcript-archive/internal/archive"
	"github.com/ppenja/youtube-transcript-archive/internal/catalog"
	"github.com/ppenja/youtube-transcript-archive/internal/index"
	"github.com/ppenja/youtube-transcript-archive/internal/index/tokenizer"
	"github.com/ppenja/youtube-transcript-archive/pkg/config"
	apperrors "github.com/ppenja/youtube-transcript-archive/pkg/errors"
	"github.com/ppenja/youtube-transcript-archive/pkg/metrics"
	"github.com/ppenja/youtube-transcript-archive/pkg/resilience"
)

// lock stripes for per-video write exclusivity. Writes to distinct videos
// proceed in parallel; two writes to the same video serialise on its stripe.
const numLockStripes = 64

// Coordinator owns the ingestion write path. All mutations of the index and
// catalog for a given video go through its stripe lock, so a video is never
// concurrently rebuilt by two writers.
type Coordinator struct {
	idx       *index.Router
	store     *catalog.Store
	persister *catalog.Persister
	metrics   *metrics.Metrics
	limits    config.IndexConfig
	locks     [numLockStripes]sync.Mutex
	logger    *slog.Logger
}

// New creates a Coordinator. persister and m may be nil: without a persister
// the coordinator runs memory-only (tests, degraded mode), without metrics it
// skips instrumentation.
func New(idx *index.Router, store *catalog.Store, persister *catalog.Persister, m *metrics.Metrics, limits config.IndexConfig) *Coordinator {
	return &Coordinator{
		idx:       idx,
		store:     store,
		persister: persister,
		metrics:   m,
		limits:    limits,
		logger:    slog.Default().With("component", "ingestion-coordinator"),
	}
}

func (c *Coordinator) stripe(videoID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(videoID))
	return &c.locks[h.Sum32()%numLockStripes]
}

// RegisterChannel makes a channel known to the archive so its videos can be
// ingested. Re-registering updates the metadata in place.
func (c *Coordinator) RegisterChannel(ctx context.Context, ch archive.Channel) error {
	if ch.ID == "" {
		return apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "channel id is required")
	}
	if c.persister != nil {
		err := resilience.Retry(ctx, "upsert-channel", resilience.RetryConfig{}, func() error {
			return c.persister.UpsertChannel(ctx, ch)
		})
		if err != nil {
			return fmt.Errorf("persisting channel %s: %w", ch.ID, err)
		}
	}
	c.store.PutChannel(ch)
	c.logger.Info("channel registered", "channel_id", ch.ID, "title", ch.Title)
	return nil
}

// IngestVideo indexes a video's full transcript, replacing any previous
// generation. The swap is atomic: until the new generation is published,
// searches keep matching the prior one, and a failed attempt never downgrades
// a video that was already available.
func (c *Coordinator) IngestVideo(ctx context.Context, video archive.Video, segments []archive.Segment) error {
	if video.ID == "" {
		return apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "video id is required")
	}
	if video.ChannelID == "" {
		return apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "channel id is required")
	}
	// Ingest and registration events travel under different partition keys,
	// so an ingest can arrive before its channel's registration. A
	// placeholder channel keeps the video indexable; the registration event
	// fills in the metadata whenever it lands.
	if !c.store.HasChannel(video.ChannelID) {
		if err := c.RegisterChannel(ctx, archive.Channel{ID: video.ChannelID}); err != nil {
			return err
		}
	}
	if err := c.checkLimits(segments); err != nil {
		c.recordOutcome("failed")
		return err
	}

	mu := c.stripe(video.ID)
	mu.Lock()
	defer mu.Unlock()

	_, wasAvailable := c.idx.Video(video.ID)
	if !wasAvailable {
		c.store.PutVideo(video, archive.StatusIngesting)
	}

	// Tokenisation happens outside any shard lock; only the final publish
	// takes the shard's write lock.
	state, postings := buildIndexState(video, segments)

	if err := ctx.Err(); err != nil {
		c.restoreStatus(video, wasAvailable)
		c.recordOutcome("failed")
		return fmt.Errorf("ingestion of %s aborted: %w", video.ID, err)
	}

	if c.persister != nil {
		err := resilience.Retry(ctx, "persist-video", resilience.RetryConfig{}, func() error {
			if err := c.persister.UpsertVideo(ctx, video, archive.StatusIngesting); err != nil {
				return err
			}
			return c.persister.ReplaceSegments(ctx, video.ID, segments)
		})
		if err != nil {
			c.restoreStatus(video, wasAvailable)
			c.recordOutcome("failed")
			return apperrors.Newf(apperrors.ErrIngestionFailed, http.StatusInternalServerError,
				"persisting transcript for %s: %v", video.ID, err)
		}
	}

	if err := ctx.Err(); err != nil {
		c.restoreStatus(video, wasAvailable)
		c.recordOutcome("failed")
		return fmt.Errorf("ingestion of %s aborted before publish: %w", video.ID, err)
	}

	c.idx.ReplaceVideo(state, postings)
	c.store.PutVideo(video, archive.StatusAvailable)
	if c.persister != nil {
		if err := c.persister.SetVideoStatus(ctx, video.ID, archive.StatusAvailable); err != nil {
			c.logger.Warn("failed to persist available status", "video_id", video.ID, "error", err)
		}
	}

	c.recordOutcome("available")
	if c.metrics != nil {
		c.metrics.SegmentsIndexedTotal.Add(float64(len(segments)))
	}
	c.updateIndexGauges()
	c.logger.Info("video ingested",
		"video_id", video.ID,
		"channel_id", video.ChannelID,
		"segments", len(segments),
		"generation", state.Gen,
	)
	return nil
}

// RemoveVideo purges a video from the index, catalog, and durable store.
// Removing an unknown video is a no-op.
func (c *Coordinator) RemoveVideo(ctx context.Context, videoID string) error {
	if videoID == "" {
		return apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "video id is required")
	}
	mu := c.stripe(videoID)
	mu.Lock()
	defer mu.Unlock()

	existed := c.idx.RemoveVideo(videoID)
	c.store.RemoveVideo(videoID)
	if c.persister != nil {
		err := resilience.Retry(ctx, "delete-video", resilience.RetryConfig{}, func() error {
			return c.persister.DeleteVideo(ctx, videoID)
		})
		if err != nil {
			return fmt.Errorf("deleting video %s: %w", videoID, err)
		}
	}
	c.updateIndexGauges()
	c.logger.Info("video removed", "video_id", videoID, "was_indexed", existed)
	return nil
}

// Hydrate rebuilds the in-memory catalog and index from a durable snapshot.
// Called once at startup before the HTTP listener comes up, so it takes no
// stripe locks.
func (c *Coordinator) Hydrate(ctx context.Context, snap *catalog.Snapshot) error {
	for _, ch := range snap.Channels {
		c.store.PutChannel(ch)
	}
	for _, vs := range snap.Videos {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("hydration aborted: %w", err)
		}
		c.store.PutVideo(vs.Video, vs.Status)
		if vs.Status != archive.StatusAvailable {
			continue
		}
		state, postings := buildIndexState(vs.Video, vs.Segments)
		c.idx.ReplaceVideo(state, postings)
	}
	c.updateIndexGauges()
	c.logger.Info("index hydrated",
		"channels", len(snap.Channels),
		"videos", len(snap.Videos),
		"indexed", c.idx.VideoCount(),
	)
	return nil
}

func (c *Coordinator) checkLimits(segments []archive.Segment) error {
	if max := c.limits.MaxSegmentsPerVideo; max > 0 && len(segments) > max {
		return apperrors.Newf(apperrors.ErrResourceExhausted, http.StatusInsufficientStorage,
			"transcript has %d segments, limit is %d", len(segments), max)
	}
	if max := c.limits.MaxSegmentTextBytes; max > 0 {
		for _, seg := range segments {
			if len(seg.Text) > max {
				return apperrors.Newf(apperrors.ErrResourceExhausted, http.StatusInsufficientStorage,
					"segment %d text is %d bytes, limit is %d", seg.Position, len(seg.Text), max)
			}
		}
	}
	return nil
}

// restoreStatus records a failed attempt without downgrading a video whose
// prior generation is still being served.
func (c *Coordinator) restoreStatus(video archive.Video, wasAvailable bool) {
	if wasAvailable {
		return
	}
	c.store.SetVideoStatus(video.ID, archive.StatusFailed)
	if c.persister != nil {
		if err := c.persister.SetVideoStatus(context.Background(), video.ID, archive.StatusFailed); err != nil {
			c.logger.Warn("failed to persist failed status", "video_id", video.ID, "error", err)
		}
	}
}

func (c *Coordinator) recordOutcome(outcome string) {
	if c.metrics != nil {
		c.metrics.VideosIngestedTotal.WithLabelValues(outcome).Inc()
	}
}

func (c *Coordinator) updateIndexGauges() {
	if c.metrics == nil {
		return
	}
	c.metrics.VideosIndexed.Set(float64(c.idx.VideoCount()))
	for i, n := range c.idx.ShardVideoCounts() {
		c.metrics.IndexShardVideos.WithLabelValues(strconv.Itoa(i)).Set(float64(n))
	}
}

// buildIndexState tokenises a transcript into the per-video index state and
// posting lists, keyed by term. Pure function of its inputs.
func buildIndexState(video archive.Video, segments []archive.Segment) (*index.VideoState, map[string]index.PostingList) {
	state := &index.VideoState{
		Video:    video,
		Segments: make([]index.SegmentEntry, len(segments)),
	}
	postings := make(map[string]index.PostingList)
	for i, seg := range segments {
		tokens := tokenizer.Tokenize(seg.Text)
		state.Segments[i] = index.SegmentEntry{
			Segment:    seg,
			TokenCount: len(tokens),
		}
		freqs := make(map[string]int)
		for _, tok := range tokens {
			freqs[tok.Term]++
		}
		for term, freq := range freqs {
			postings[term] = append(postings[term], index.Posting{
				VideoID:   video.ID,
				SegmentID: seg.Position,
				TermFreq:  freq,
			})
		}
	}
	return state, postings
}

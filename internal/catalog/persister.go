package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/ppenja/youtube-transcript-archive/internal/archive"
	"github.com/ppenja/youtube-transcript-archive/pkg/postgres"
)

// Persister mirrors catalog writes into PostgreSQL. searchd replays the
// tables on startup to rebuild its in-memory catalog and index; ingestd
// writes through it before publishing events.
type Persister struct {
	pg     *postgres.Client
	logger *slog.Logger
}

func NewPersister(pg *postgres.Client) *Persister {
	return &Persister{
		pg:     pg,
		logger: slog.Default().With("component", "catalog-persister"),
	}
}

// UpsertChannel inserts or updates a channel row.
func (p *Persister) UpsertChannel(ctx context.Context, ch archive.Channel) error {
	_, err := p.pg.DB.ExecContext(ctx, `
		INSERT INTO channels (id, title, description, thumbnail_url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			thumbnail_url = EXCLUDED.thumbnail_url,
			updated_at = now()`,
		ch.ID, ch.Title, ch.Description, ch.ThumbnailURL)
	if err != nil {
		return fmt.Errorf("upserting channel %s: %w", ch.ID, err)
	}
	return nil
}

// UpsertVideo inserts or updates a video row together with its status.
func (p *Persister) UpsertVideo(ctx context.Context, v archive.Video, status archive.VideoStatus) error {
	_, err := p.pg.DB.ExecContext(ctx, `
		INSERT INTO videos (id, channel_id, title, description, published_at, thumbnail_url, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			channel_id = EXCLUDED.channel_id,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			published_at = EXCLUDED.published_at,
			thumbnail_url = EXCLUDED.thumbnail_url,
			status = EXCLUDED.status,
			updated_at = now()`,
		v.ID, v.ChannelID, v.Title, v.Description, v.PublishedAt, v.ThumbnailURL, string(status))
	if err != nil {
		return fmt.Errorf("upserting video %s: %w", v.ID, err)
	}
	return nil
}

// SetVideoStatus updates only the status column.
func (p *Persister) SetVideoStatus(ctx context.Context, videoID string, status archive.VideoStatus) error {
	_, err := p.pg.DB.ExecContext(ctx,
		`UPDATE videos SET status = $2, updated_at = now() WHERE id = $1`,
		videoID, string(status))
	if err != nil {
		return fmt.Errorf("updating video %s status: %w", videoID, err)
	}
	return nil
}

// ReplaceSegments swaps a video's full segment set inside one transaction so
// readers hydrating from the table never see a partial transcript.
func (p *Persister) ReplaceSegments(ctx context.Context, videoID string, segments []archive.Segment) error {
	return p.pg.InTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM transcript_segments WHERE video_id = $1`, videoID); err != nil {
			return fmt.Errorf("clearing segments for %s: %w", videoID, err)
		}
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO transcript_segments (video_id, position, start_seconds, duration_seconds, text)
			VALUES ($1, $2, $3, $4, $5)`)
		if err != nil {
			return fmt.Errorf("preparing segment insert: %w", err)
		}
		defer stmt.Close()
		for _, seg := range segments {
			if _, err := stmt.ExecContext(ctx, videoID, seg.Position, seg.Start, seg.Duration, seg.Text); err != nil {
				return fmt.Errorf("inserting segment %d for %s: %w", seg.Position, videoID, err)
			}
		}
		return nil
	})
}

// DeleteVideo removes the video row and its segments.
func (p *Persister) DeleteVideo(ctx context.Context, videoID string) error {
	return p.pg.InTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM transcript_segments WHERE video_id = $1`, videoID); err != nil {
			return fmt.Errorf("deleting segments for %s: %w", videoID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM videos WHERE id = $1`, videoID); err != nil {
			return fmt.Errorf("deleting video %s: %w", videoID, err)
		}
		return nil
	})
}

// Snapshot is everything needed to rebuild the in-memory catalog and index.
type Snapshot struct {
	Channels []archive.Channel
	Videos   []VideoSnapshot
}

// VideoSnapshot is one persisted video plus its full transcript.
type VideoSnapshot struct {
	Video    archive.Video
	Status   archive.VideoStatus
	Segments []archive.Segment
}

// LoadAll reads the full catalog from PostgreSQL for startup hydration.
// Segments are only loaded for videos whose status is available.
func (p *Persister) LoadAll(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}

	rows, err := p.pg.DB.QueryContext(ctx,
		`SELECT id, title, description, thumbnail_url FROM channels ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("loading channels: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var ch archive.Channel
		if err := rows.Scan(&ch.ID, &ch.Title, &ch.Description, &ch.ThumbnailURL); err != nil {
			return nil, fmt.Errorf("scanning channel: %w", err)
		}
		snap.Channels = append(snap.Channels, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating channels: %w", err)
	}

	vrows, err := p.pg.DB.QueryContext(ctx, `
		SELECT id, channel_id, title, description, published_at, thumbnail_url, status
		FROM videos ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("loading videos: %w", err)
	}
	defer vrows.Close()
	for vrows.Next() {
		var vs VideoSnapshot
		var status string
		if err := vrows.Scan(&vs.Video.ID, &vs.Video.ChannelID, &vs.Video.Title,
			&vs.Video.Description, &vs.Video.PublishedAt, &vs.Video.ThumbnailURL, &status); err != nil {
			return nil, fmt.Errorf("scanning video: %w", err)
		}
		vs.Status = archive.VideoStatus(status)
		vs.Video.TranscriptAvailable = vs.Status == archive.StatusAvailable
		snap.Videos = append(snap.Videos, vs)
	}
	if err := vrows.Err(); err != nil {
		return nil, fmt.Errorf("iterating videos: %w", err)
	}

	for i := range snap.Videos {
		if snap.Videos[i].Status != archive.StatusAvailable {
			continue
		}
		segs, err := p.loadSegments(ctx, snap.Videos[i].Video.ID)
		if err != nil {
			return nil, err
		}
		snap.Videos[i].Segments = segs
	}

	p.logger.Info("catalog snapshot loaded",
		"channels", len(snap.Channels),
		"videos", len(snap.Videos),
	)
	return snap, nil
}

func (p *Persister) loadSegments(ctx context.Context, videoID string) ([]archive.Segment, error) {
	rows, err := p.pg.DB.QueryContext(ctx, `
		SELECT position, start_seconds, duration_seconds, text
		FROM transcript_segments WHERE video_id = $1 ORDER BY position`, videoID)
	if err != nil {
		return nil, fmt.Errorf("loading segments for %s: %w", videoID, err)
	}
	defer rows.Close()
	var segs []archive.Segment
	for rows.Next() {
		var seg archive.Segment
		if err := rows.Scan(&seg.Position, &seg.Start, &seg.Duration, &seg.Text); err != nil {
			return nil, fmt.Errorf("scanning segment: %w", err)
		}
		segs = append(segs, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating segments for %s: %w", videoID, err)
	}
	return segs, nil
}

// Package executor runs query plans against the inverted index and ranks
// the matched segments.
package executor

import (
	"context"
	"sort"

	"github.com/ppenja/youtube-transcript-archive/internal/archive"
	"github.com/ppenja/youtube-transcript-archive/internal/catalog"
	"github.com/ppenja/youtube-transcript-archive/internal/index"
	"github.com/ppenja/youtube-transcript-archive/internal/search/parser"
	"github.com/ppenja/youtube-transcript-archive/pkg/tracing"
)

// Result is a ranked, paginated result page. Total is the number of matching
// segments before pagination, so it is stable across pages of the same query
// against an unchanged index.
type Result struct {
	Hits  []archive.SearchHit `json:"results"`
	Total int                 `json:"total"`
}

// Executor joins index postings with catalog metadata into ranked hits.
type Executor struct {
	idx   *index.Router
	store *catalog.Store
}

func New(idx *index.Router, store *catalog.Store) *Executor {
	return &Executor{idx: idx, store: store}
}

// candidate accumulates the score of one matched segment.
type candidate struct {
	state     *index.VideoState
	segmentID int
	score     float64
}

// Execute runs the plan and returns one result page. Matching is per term:
// a segment qualifies if it contains at least one query term, and each
// matching term adds termFreq/segmentTokenCount to the segment's score.
// Postings from superseded video generations are skipped, so a query never
// mixes segments from two generations of the same video.
func (e *Executor) Execute(ctx context.Context, plan parser.Plan, limit, offset int) (*Result, error) {
	if plan.Empty() {
		return &Result{Hits: []archive.SearchHit{}, Total: 0}, nil
	}

	_, span := tracing.StartChildSpan(ctx, "executor.execute")
	defer func() {
		span.End()
	}()
	span.SetAttr("terms", len(plan.Terms))

	states := make(map[string]*index.VideoState)
	scores := make(map[string]map[int]float64)

	for _, term := range plan.Terms {
		for _, posting := range e.idx.Lookup(term) {
			state, ok := states[posting.VideoID]
			if !ok {
				state, ok = e.idx.Video(posting.VideoID)
				if !ok {
					continue
				}
				states[posting.VideoID] = state
			}
			// A posting stamped with an older generation refers to a
			// transcript that has since been replaced.
			if posting.Gen != state.Gen {
				continue
			}
			if plan.ChannelID != "" && state.Video.ChannelID != plan.ChannelID {
				continue
			}
			entry, ok := state.Segment(posting.SegmentID)
			if !ok || entry.TokenCount == 0 {
				continue
			}
			if _, ok := scores[posting.VideoID]; !ok {
				scores[posting.VideoID] = make(map[int]float64)
			}
			scores[posting.VideoID][posting.SegmentID] += float64(posting.TermFreq) / float64(entry.TokenCount)
		}
	}

	candidates := make([]candidate, 0, len(scores))
	for videoID, segs := range scores {
		for segmentID, score := range segs {
			candidates = append(candidates, candidate{
				state:     states[videoID],
				segmentID: segmentID,
				score:     score,
			})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if !a.state.Video.PublishedAt.Equal(b.state.Video.PublishedAt) {
			return a.state.Video.PublishedAt.After(b.state.Video.PublishedAt)
		}
		if a.state.Video.ID != b.state.Video.ID {
			return a.state.Video.ID < b.state.Video.ID
		}
		segA, _ := a.state.Segment(a.segmentID)
		segB, _ := b.state.Segment(b.segmentID)
		return segA.Start < segB.Start
	})

	total := len(candidates)
	span.SetAttr("total", total)

	if offset >= total {
		return &Result{Hits: []archive.SearchHit{}, Total: total}, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}

	hits := make([]archive.SearchHit, 0, end-offset)
	for _, c := range candidates[offset:end] {
		hits = append(hits, e.buildHit(c))
	}
	return &Result{Hits: hits, Total: total}, nil
}

func (e *Executor) buildHit(c candidate) archive.SearchHit {
	video := c.state.Video
	entry, _ := c.state.Segment(c.segmentID)

	channelTitle := ""
	if ch, ok := e.store.Channel(video.ChannelID); ok {
		channelTitle = ch.Title
	}
	return archive.SearchHit{
		VideoID:      video.ID,
		VideoTitle:   video.Title,
		ChannelID:    video.ChannelID,
		ChannelTitle: channelTitle,
		PublishedAt:  video.PublishedAt,
		ThumbnailURL: video.ThumbnailURL,
		Text:         entry.Text,
		Score:        c.score,
		Timestamp:    entry.Start,
		TimestampURL: archive.WatchURL(video.ID, entry.Start),
	}
}

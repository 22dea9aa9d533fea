package index

import (
	"fmt"
	"sync"
	"testing"

	"github.com/ppenja/youtube-transcript-archive/internal/archive"
)

func testState(videoID string, segmentTexts ...string) (*VideoState, map[string]PostingList) {
	state := &VideoState{
		Video:    archive.Video{ID: videoID},
		Segments: make([]SegmentEntry, len(segmentTexts)),
	}
	postings := make(map[string]PostingList)
	for i, text := range segmentTexts {
		state.Segments[i] = SegmentEntry{
			Segment:    archive.Segment{Position: i, Text: text},
			TokenCount: 1,
		}
		postings[text] = append(postings[text], Posting{
			VideoID:   videoID,
			SegmentID: i,
			TermFreq:  1,
		})
	}
	return state, postings
}

func TestShardReplaceAndLookup(t *testing.T) {
	s := newShard()
	state, postings := testState("v1", "hello", "world")
	s.ReplaceVideo(state, postings)

	got := s.Lookup("hello")
	if len(got) != 1 {
		t.Fatalf("Lookup(hello) returned %d postings, want 1", len(got))
	}
	if got[0].VideoID != "v1" || got[0].SegmentID != 0 {
		t.Errorf("unexpected posting %+v", got[0])
	}
	if got[0].Gen != state.Gen {
		t.Errorf("posting gen = %d, state gen = %d", got[0].Gen, state.Gen)
	}
	if s.Lookup("absent") != nil {
		t.Error("Lookup of unknown term should return nil")
	}
}

func TestShardReplaceBumpsGeneration(t *testing.T) {
	s := newShard()

	first, firstPostings := testState("v1", "alpha")
	s.ReplaceVideo(first, firstPostings)
	if first.Gen != 1 {
		t.Fatalf("first generation = %d, want 1", first.Gen)
	}

	second, secondPostings := testState("v1", "beta")
	s.ReplaceVideo(second, secondPostings)
	if second.Gen != 2 {
		t.Fatalf("second generation = %d, want 2", second.Gen)
	}

	// The old term must be gone: no stale postings from generation 1.
	if got := s.Lookup("alpha"); got != nil {
		t.Errorf("stale postings for replaced term: %v", got)
	}
	got := s.Lookup("beta")
	if len(got) != 1 || got[0].Gen != 2 {
		t.Errorf("Lookup(beta) = %v, want one gen-2 posting", got)
	}

	state, ok := s.Video("v1")
	if !ok || state.Gen != 2 {
		t.Errorf("Video(v1) gen = %d, want 2", state.Gen)
	}
}

func TestShardRemoveVideo(t *testing.T) {
	s := newShard()
	state, postings := testState("v1", "hello")
	s.ReplaceVideo(state, postings)

	if !s.RemoveVideo("v1") {
		t.Error("RemoveVideo should report the video existed")
	}
	if s.RemoveVideo("v1") {
		t.Error("second RemoveVideo should be a no-op")
	}
	if got := s.Lookup("hello"); got != nil {
		t.Errorf("postings survived removal: %v", got)
	}
	if _, ok := s.Video("v1"); ok {
		t.Error("video state survived removal")
	}
	if s.VideoCount() != 0 || s.TermCount() != 0 {
		t.Errorf("counts after removal: videos=%d terms=%d", s.VideoCount(), s.TermCount())
	}
}

func TestShardLookupOrdering(t *testing.T) {
	s := newShard()
	for _, id := range []string{"v3", "v1", "v2"} {
		state, postings := testState(id, "common", "common")
		s.ReplaceVideo(state, postings)
	}
	got := s.Lookup("common")
	if len(got) != 6 {
		t.Fatalf("Lookup returned %d postings, want 6", len(got))
	}
	for i := 1; i < len(got); i++ {
		prev, cur := got[i-1], got[i]
		if prev.VideoID > cur.VideoID ||
			(prev.VideoID == cur.VideoID && prev.SegmentID >= cur.SegmentID) {
			t.Errorf("postings out of order at %d: %+v before %+v", i, prev, cur)
		}
	}
}

func TestShardConcurrentReadersAndWriters(t *testing.T) {
	s := newShard()
	var wg sync.WaitGroup

	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			videoID := fmt.Sprintf("v%d", w)
			for i := 0; i < 100; i++ {
				state, postings := testState(videoID, "shared", fmt.Sprintf("term%d", i))
				s.ReplaceVideo(state, postings)
			}
		}(w)
	}
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				for _, p := range s.Lookup("shared") {
					state, ok := s.Video(p.VideoID)
					if ok && p.Gen == state.Gen {
						if _, ok := state.Segment(p.SegmentID); !ok {
							t.Errorf("current-gen posting %+v points at missing segment", p)
						}
					}
				}
			}
		}()
	}
	wg.Wait()
}

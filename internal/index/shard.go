// Package index implements the in-memory inverted index and segment store
// backing transcript search. The index is split into shards; each shard owns
// both the posting lists and the video states for its videos under a single
// RWMutex, so a reader always observes a video's postings and segments from
// the same generation.
package index

import (
	"sort"
	"sync"
)

// Shard holds the postings and video states for a subset of videos.
type Shard struct {
	mu         sync.RWMutex
	terms      map[string]map[string]PostingList // term → videoID → postings
	videoTerms map[string]map[string]struct{}    // videoID → terms it appears under
	videos     map[string]*VideoState
}

func newShard() *Shard {
	return &Shard{
		terms:      make(map[string]map[string]PostingList),
		videoTerms: make(map[string]map[string]struct{}),
		videos:     make(map[string]*VideoState),
	}
}

// ReplaceVideo atomically installs a new generation for state.Video.ID: the
// prior posting set is removed and the new one published in one critical
// section. postings maps each term to this video's postings for it. The
// shard assigns the generation number and stamps it onto state and postings.
func (s *Shard) ReplaceVideo(state *VideoState, postings map[string]PostingList) {
	videoID := state.Video.ID

	s.mu.Lock()
	defer s.mu.Unlock()

	var gen uint64 = 1
	if prior, ok := s.videos[videoID]; ok {
		gen = prior.Gen + 1
	}
	state.Gen = gen

	s.removeLocked(videoID)

	termSet := make(map[string]struct{}, len(postings))
	for term, list := range postings {
		stamped := make(PostingList, len(list))
		for i, p := range list {
			p.Gen = gen
			stamped[i] = p
		}
		sort.Slice(stamped, func(i, j int) bool {
			return stamped[i].SegmentID < stamped[j].SegmentID
		})
		if _, ok := s.terms[term]; !ok {
			s.terms[term] = make(map[string]PostingList)
		}
		s.terms[term][videoID] = stamped
		termSet[term] = struct{}{}
	}
	s.videoTerms[videoID] = termSet
	s.videos[videoID] = state
}

// RemoveVideo purges all postings and state for videoID. Removing an absent
// video is a no-op.
func (s *Shard) RemoveVideo(videoID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, existed := s.videos[videoID]
	s.removeLocked(videoID)
	return existed
}

// removeLocked drops a video's postings and state. Caller holds s.mu.
func (s *Shard) removeLocked(videoID string) {
	for term := range s.videoTerms[videoID] {
		if byVideo, ok := s.terms[term]; ok {
			delete(byVideo, videoID)
			if len(byVideo) == 0 {
				delete(s.terms, term)
			}
		}
	}
	delete(s.videoTerms, videoID)
	delete(s.videos, videoID)
}

// Lookup returns all postings for the exact normalised term, sorted by
// (VideoID, SegmentID). No fuzzy matching happens at this layer.
func (s *Shard) Lookup(term string) PostingList {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byVideo, ok := s.terms[term]
	if !ok {
		return nil
	}
	result := make(PostingList, 0, len(byVideo))
	for _, list := range byVideo {
		result = append(result, list...)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].VideoID != result[j].VideoID {
			return result[i].VideoID < result[j].VideoID
		}
		return result[i].SegmentID < result[j].SegmentID
	})
	return result
}

// Video returns the current state for videoID. States are immutable after
// publication, so the returned pointer is safe to read without the lock.
func (s *Shard) Video(videoID string) (*VideoState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.videos[videoID]
	return state, ok
}

// VideoCount returns the number of videos currently indexed in this shard.
func (s *Shard) VideoCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.videos)
}

// TermCount returns the number of distinct terms in this shard.
func (s *Shard) TermCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.terms)
}

// Package catalog tracks the channels and videos known to the archive. The
// in-memory Store serves the browse APIs; the Persister mirrors the catalog
// into PostgreSQL so searchd can rehydrate on restart.
package catalog

import (
	"sort"
	"sync"

	"github.com/ppenja/youtube-transcript-archive/internal/archive"
)

type videoRecord struct {
	video  archive.Video
	status archive.VideoStatus
}

// Store is the in-memory catalog. It is the authority for channel and video
// metadata on the read path; channel video counts are derived from the videos
// that reached StatusAvailable.
type Store struct {
	mu        sync.RWMutex
	channels  map[string]archive.Channel
	videos    map[string]*videoRecord
	byChannel map[string]map[string]struct{}
}

func NewStore() *Store {
	return &Store{
		channels:  make(map[string]archive.Channel),
		videos:    make(map[string]*videoRecord),
		byChannel: make(map[string]map[string]struct{}),
	}
}

// PutChannel registers or updates a channel. The stored VideoCount is always
// derived, so the caller's value is ignored.
func (s *Store) PutChannel(ch archive.Channel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch.VideoCount = s.availableCountLocked(ch.ID)
	s.channels[ch.ID] = ch
	if _, ok := s.byChannel[ch.ID]; !ok {
		s.byChannel[ch.ID] = make(map[string]struct{})
	}
}

// Channel returns the channel with derived video count.
func (s *Store) Channel(id string) (archive.Channel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ch, ok := s.channels[id]
	return ch, ok
}

// HasChannel reports whether the channel is registered.
func (s *Store) HasChannel(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.channels[id]
	return ok
}

// Channels lists all channels sorted by title, then ID for stable order.
func (s *Store) Channels() []archive.Channel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]archive.Channel, 0, len(s.channels))
	for _, ch := range s.channels {
		out = append(out, ch)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// PutVideo records a video and its ingestion status. TranscriptAvailable on
// the stored video tracks the status.
func (s *Store) PutVideo(v archive.Video, status archive.VideoStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v.TranscriptAvailable = status == archive.StatusAvailable
	s.videos[v.ID] = &videoRecord{video: v, status: status}
	if _, ok := s.byChannel[v.ChannelID]; !ok {
		s.byChannel[v.ChannelID] = make(map[string]struct{})
	}
	s.byChannel[v.ChannelID][v.ID] = struct{}{}
	s.refreshChannelCountLocked(v.ChannelID)
}

// SetVideoStatus moves an existing video to a new status. Unknown videos are
// ignored.
func (s *Store) SetVideoStatus(videoID string, status archive.VideoStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.videos[videoID]
	if !ok {
		return
	}
	rec.status = status
	rec.video.TranscriptAvailable = status == archive.StatusAvailable
	s.refreshChannelCountLocked(rec.video.ChannelID)
}

// Video returns a video's metadata and status.
func (s *Store) Video(id string) (archive.Video, archive.VideoStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.videos[id]
	if !ok {
		return archive.Video{}, "", false
	}
	return rec.video, rec.status, true
}

// RemoveVideo drops a video from the catalog. Returns whether it existed.
func (s *Store) RemoveVideo(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.videos[id]
	if !ok {
		return false
	}
	delete(s.videos, id)
	if set, ok := s.byChannel[rec.video.ChannelID]; ok {
		delete(set, id)
	}
	s.refreshChannelCountLocked(rec.video.ChannelID)
	return true
}

// ChannelVideos lists a channel's videos sorted by published date descending,
// newest first, with ID as the tie-break.
func (s *Store) ChannelVideos(channelID string) []archive.Video {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids, ok := s.byChannel[channelID]
	if !ok {
		return nil
	}
	out := make([]archive.Video, 0, len(ids))
	for id := range ids {
		out = append(out, s.videos[id].video)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PublishedAt.Equal(out[j].PublishedAt) {
			return out[i].PublishedAt.After(out[j].PublishedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// VideoCount returns the number of videos tracked across all channels.
func (s *Store) VideoCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.videos)
}

func (s *Store) availableCountLocked(channelID string) int {
	n := 0
	for id := range s.byChannel[channelID] {
		if s.videos[id].status == archive.StatusAvailable {
			n++
		}
	}
	return n
}

func (s *Store) refreshChannelCountLocked(channelID string) {
	ch, ok := s.channels[channelID]
	if !ok {
		return
	}
	ch.VideoCount = s.availableCountLocked(channelID)
	s.channels[channelID] = ch
}

package catalog

import (
	"testing"
	"time"

	"github.com/ppenja/youtube-transcript-archive/internal/archive"
)

func TestStoreChannelVideoCountIsDerived(t *testing.T) {
	s := NewStore()
	s.PutChannel(archive.Channel{ID: "c1", Title: "Channel", VideoCount: 99})

	ch, ok := s.Channel("c1")
	if !ok {
		t.Fatal("channel not found")
	}
	if ch.VideoCount != 0 {
		t.Errorf("caller-supplied count must be ignored, got %d", ch.VideoCount)
	}

	s.PutVideo(archive.Video{ID: "v1", ChannelID: "c1"}, archive.StatusAvailable)
	s.PutVideo(archive.Video{ID: "v2", ChannelID: "c1"}, archive.StatusIngesting)
	s.PutVideo(archive.Video{ID: "v3", ChannelID: "c1"}, archive.StatusFailed)

	ch, _ = s.Channel("c1")
	if ch.VideoCount != 1 {
		t.Errorf("only available videos count, got %d", ch.VideoCount)
	}

	s.SetVideoStatus("v2", archive.StatusAvailable)
	ch, _ = s.Channel("c1")
	if ch.VideoCount != 2 {
		t.Errorf("count after status change = %d, want 2", ch.VideoCount)
	}

	s.RemoveVideo("v1")
	ch, _ = s.Channel("c1")
	if ch.VideoCount != 1 {
		t.Errorf("count after removal = %d, want 1", ch.VideoCount)
	}
}

func TestStoreTranscriptAvailableTracksStatus(t *testing.T) {
	s := NewStore()
	s.PutChannel(archive.Channel{ID: "c1"})
	s.PutVideo(archive.Video{ID: "v1", ChannelID: "c1", TranscriptAvailable: true}, archive.StatusIngesting)

	v, status, _ := s.Video("v1")
	if v.TranscriptAvailable || status != archive.StatusIngesting {
		t.Errorf("ingesting video reports transcript available")
	}

	s.SetVideoStatus("v1", archive.StatusAvailable)
	v, _, _ = s.Video("v1")
	if !v.TranscriptAvailable {
		t.Error("available video should report transcript available")
	}
}

func TestStoreChannelVideosSortedNewestFirst(t *testing.T) {
	s := NewStore()
	s.PutChannel(archive.Channel{ID: "c1"})
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.PutVideo(archive.Video{ID: "old", ChannelID: "c1", PublishedAt: base}, archive.StatusAvailable)
	s.PutVideo(archive.Video{ID: "new", ChannelID: "c1", PublishedAt: base.AddDate(0, 6, 0)}, archive.StatusAvailable)
	s.PutVideo(archive.Video{ID: "mid", ChannelID: "c1", PublishedAt: base.AddDate(0, 3, 0)}, archive.StatusAvailable)

	videos := s.ChannelVideos("c1")
	want := []string{"new", "mid", "old"}
	for i, v := range videos {
		if v.ID != want[i] {
			t.Errorf("position %d = %s, want %s", i, v.ID, want[i])
		}
	}
}

func TestStoreChannelsSorted(t *testing.T) {
	s := NewStore()
	s.PutChannel(archive.Channel{ID: "c2", Title: "Beta"})
	s.PutChannel(archive.Channel{ID: "c1", Title: "Alpha"})
	s.PutChannel(archive.Channel{ID: "c3", Title: "Alpha"})

	channels := s.Channels()
	if len(channels) != 3 {
		t.Fatalf("got %d channels, want 3", len(channels))
	}
	if channels[0].ID != "c1" || channels[1].ID != "c3" || channels[2].ID != "c2" {
		t.Errorf("order = %s, %s, %s", channels[0].ID, channels[1].ID, channels[2].ID)
	}
}

func TestStoreRemoveVideoIdempotent(t *testing.T) {
	s := NewStore()
	s.PutChannel(archive.Channel{ID: "c1"})
	s.PutVideo(archive.Video{ID: "v1", ChannelID: "c1"}, archive.StatusAvailable)

	if !s.RemoveVideo("v1") {
		t.Error("first removal should report existed")
	}
	if s.RemoveVideo("v1") {
		t.Error("second removal should report not found")
	}
	if s.VideoCount() != 0 {
		t.Errorf("VideoCount = %d, want 0", s.VideoCount())
	}
}

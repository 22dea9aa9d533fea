package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ppenja/youtube-transcript-archive/internal/archive"
	"github.com/ppenja/youtube-transcript-archive/internal/index"
)

const testChannelID = "UC1234567890abcdefghijkl"

func newBrowseServer(t *testing.T) (*httptest.Server, *Store, *index.Router) {
	t.Helper()
	store := NewStore()
	idx := index.NewRouter(2)

	store.PutChannel(archive.Channel{ID: testChannelID, Title: "Archived Channel"})
	store.PutVideo(archive.Video{
		ID:          "v1",
		ChannelID:   testChannelID,
		Title:       "A Video",
		PublishedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}, archive.StatusAvailable)

	state := &index.VideoState{
		Video: archive.Video{ID: "v1", ChannelID: testChannelID},
		Segments: []index.SegmentEntry{
			{Segment: archive.Segment{Position: 0, Start: 0, Duration: 5, Text: "hello"}, TokenCount: 1},
		},
	}
	idx.ReplaceVideo(state, map[string]index.PostingList{
		"hello": {{VideoID: "v1", SegmentID: 0, TermFreq: 1}},
	})

	mux := http.NewServeMux()
	NewHandler(store, idx).Register(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, store, idx
}

func get(t *testing.T, url string) (*http.Response, map[string]json.RawMessage) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	var body map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding %s: %v", url, err)
	}
	return resp, body
}

func TestResolveChannel(t *testing.T) {
	server, _, _ := newBrowseServer(t)

	resp, body := get(t, server.URL+"/api/channel?url=https://www.youtube.com/channel/"+testChannelID)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var title string
	_ = json.Unmarshal(body["title"], &title)
	if title != "Archived Channel" {
		t.Errorf("title = %q", title)
	}
	if _, ok := body["thumbnailUrl"]; !ok {
		t.Error("response missing thumbnailUrl field")
	}
}

func TestResolveChannelErrors(t *testing.T) {
	server, _, _ := newBrowseServer(t)

	resp, body := get(t, server.URL+"/api/channel?url=https://example.com/nope")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid URL status = %d, want 400", resp.StatusCode)
	}
	if _, ok := body["error"]; !ok {
		t.Error("error body missing")
	}

	resp, _ = get(t, server.URL+"/api/channel?url=https://www.youtube.com/channel/UCzzzzzzzzzzzzzzzzzzzzzz")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown channel status = %d, want 404", resp.StatusCode)
	}
}

func TestGetVideoWithTranscript(t *testing.T) {
	server, _, _ := newBrowseServer(t)

	resp, body := get(t, server.URL+"/api/videos/v1")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var segments []archive.Segment
	if err := json.Unmarshal(body["segments"], &segments); err != nil {
		t.Fatalf("decoding segments: %v", err)
	}
	if len(segments) != 1 || segments[0].Text != "hello" {
		t.Errorf("segments = %+v", segments)
	}

	resp, _ = get(t, server.URL+"/api/videos/unknown")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown video status = %d, want 404", resp.StatusCode)
	}
}

func TestListChannelVideos(t *testing.T) {
	server, _, _ := newBrowseServer(t)

	resp, body := get(t, server.URL+"/api/channels/"+testChannelID+"/videos")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var videos []archive.Video
	if err := json.Unmarshal(body["videos"], &videos); err != nil {
		t.Fatalf("decoding videos: %v", err)
	}
	if len(videos) != 1 || videos[0].ID != "v1" {
		t.Errorf("videos = %+v", videos)
	}

	resp, _ = get(t, server.URL+"/api/channels/UCzzzzzzzzzzzzzzzzzzzzzz/videos")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown channel status = %d, want 404", resp.StatusCode)
	}
}

func TestListChannels(t *testing.T) {
	server, _, _ := newBrowseServer(t)
	resp, body := get(t, server.URL+"/api/channels")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var total int
	_ = json.Unmarshal(body["total"], &total)
	if total != 1 {
		t.Errorf("total = %d, want 1", total)
	}
}

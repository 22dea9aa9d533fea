package archive

import "testing"

func TestParseChannelURL(t *testing.T) {
	const id = "UC1234567890abcdefghijkl"

	valid := []string{
		"https://www.youtube.com/channel/" + id,
		"http://youtube.com/channel/" + id,
		"https://m.youtube.com/channel/" + id,
		"www.youtube.com/channel/" + id,
		"https://www.youtube.com/channel/" + id + "/videos",
		id,
		"  " + id + "  ",
	}
	for _, raw := range valid {
		got, err := ParseChannelURL(raw)
		if err != nil {
			t.Errorf("ParseChannelURL(%q) error: %v", raw, err)
			continue
		}
		if got != id {
			t.Errorf("ParseChannelURL(%q) = %q, want %q", raw, got, id)
		}
	}

	invalid := []string{
		"",
		"   ",
		"https://www.youtube.com/@somehandle",
		"https://www.youtube.com/c/CustomName",
		"https://www.youtube.com/user/legacyname",
		"https://vimeo.com/channel/" + id,
		"https://www.youtube.com/watch?v=abc123",
		"not a url at all",
	}
	for _, raw := range invalid {
		if got, err := ParseChannelURL(raw); err == nil {
			t.Errorf("ParseChannelURL(%q) = %q, want error", raw, got)
		}
	}
}

func TestWatchURL(t *testing.T) {
	tests := []struct {
		videoID string
		start   float64
		want    string
	}{
		{"abc", 0, "https://www.youtube.com/watch?v=abc&t=0"},
		{"abc", 30, "https://www.youtube.com/watch?v=abc&t=30"},
		{"abc", 12.7, "https://www.youtube.com/watch?v=abc&t=12"},
		{"abc", 59.999, "https://www.youtube.com/watch?v=abc&t=59"},
	}
	for _, tc := range tests {
		if got := WatchURL(tc.videoID, tc.start); got != tc.want {
			t.Errorf("WatchURL(%q, %v) = %q, want %q", tc.videoID, tc.start, got, tc.want)
		}
	}
}

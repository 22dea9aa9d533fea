package archive

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var channelPathRe = regexp.MustCompile(`^/channel/([A-Za-z0-9_-]+)`)

// canonical channel IDs start with "UC" and are 24 characters long
var channelIDRe = regexp.MustCompile(`^UC[A-Za-z0-9_-]{22}$`)

// ParseChannelURL extracts the channel ID from a YouTube channel URL.
// Only the canonical /channel/<id> form and bare channel IDs are accepted;
// handle, /c/ and /user/ URLs need the external metadata service to resolve
// and are rejected here.
func ParseChannelURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("channel URL is empty")
	}
	if channelIDRe.MatchString(raw) {
		return raw, nil
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parsing channel URL: %w", err)
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if host != "youtube.com" && host != "m.youtube.com" {
		return "", fmt.Errorf("unrecognized host %q", u.Hostname())
	}

	if m := channelPathRe.FindStringSubmatch(u.Path); m != nil {
		return m[1], nil
	}
	if strings.HasPrefix(u.Path, "/@") || strings.HasPrefix(u.Path, "/c/") || strings.HasPrefix(u.Path, "/user/") {
		return "", fmt.Errorf("handle and custom URLs cannot be resolved without the YouTube API")
	}
	return "", fmt.Errorf("unrecognized channel URL format")
}

package index

import "github.com/ppenja/youtube-transcript-archive/internal/archive"

// SegmentEntry is a stored transcript segment plus its normalised token
// count, which the scorer divides term frequency by.
type SegmentEntry struct {
	archive.Segment
	TokenCount int
}

// VideoState is the complete indexed state of one video generation: metadata
// and the full segment set. States are immutable once published to a shard;
// re-ingestion installs a fresh state with a bumped Gen.
type VideoState struct {
	Video    archive.Video
	Gen      uint64
	Segments []SegmentEntry
}

// Segment returns the segment with the given ID (its position), or false if
// the ID is out of range for this generation.
func (s *VideoState) Segment(segmentID int) (SegmentEntry, bool) {
	if segmentID < 0 || segmentID >= len(s.Segments) {
		return SegmentEntry{}, false
	}
	return s.Segments[segmentID], true
}

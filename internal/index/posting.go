package index

// Posting links a normalised token to one occurrence site: a segment of a
// video, with the token's frequency inside that segment. Gen is the video
// generation the posting was indexed under; the read path discards postings
// whose generation no longer matches the video's current state.
type Posting struct {
	VideoID   string
	SegmentID int
	Gen       uint64
	TermFreq  int
}

// PostingList is an ordered list of postings for a single term, sorted by
// (VideoID, SegmentID).
type PostingList []Posting

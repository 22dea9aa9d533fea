package index

import (
	"hash/fnv"
	"sort"
)

// Router stripes videos across shards by hashing the video ID. All writes
// for one video land on one shard, which keeps that video's postings and
// state under a single lock; queries fan out across every shard.
type Router struct {
	shards []*Shard
}

// NewRouter creates a Router with numShards shards. A non-positive count
// falls back to a single shard.
func NewRouter(numShards int) *Router {
	if numShards < 1 {
		numShards = 1
	}
	shards := make([]*Shard, numShards)
	for i := range shards {
		shards[i] = newShard()
	}
	return &Router{shards: shards}
}

func (r *Router) shardFor(videoID string) *Shard {
	h := fnv.New32a()
	h.Write([]byte(videoID))
	return r.shards[h.Sum32()%uint32(len(r.shards))]
}

// ReplaceVideo publishes a new generation of the video on its home shard.
func (r *Router) ReplaceVideo(state *VideoState, postings map[string]PostingList) {
	r.shardFor(state.Video.ID).ReplaceVideo(state, postings)
}

// RemoveVideo drops the video from its home shard. Returns whether the
// video was present.
func (r *Router) RemoveVideo(videoID string) bool {
	return r.shardFor(videoID).RemoveVideo(videoID)
}

// Video returns the current published state for videoID.
func (r *Router) Video(videoID string) (*VideoState, bool) {
	return r.shardFor(videoID).Video(videoID)
}

// Lookup gathers the term's postings from every shard and returns them
// sorted by (VideoID, SegmentID) so results are deterministic regardless of
// shard count.
func (r *Router) Lookup(term string) PostingList {
	var merged PostingList
	for _, shard := range r.shards {
		merged = append(merged, shard.Lookup(term)...)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].VideoID != merged[j].VideoID {
			return merged[i].VideoID < merged[j].VideoID
		}
		return merged[i].SegmentID < merged[j].SegmentID
	})
	return merged
}

// VideoCount sums indexed videos across all shards.
func (r *Router) VideoCount() int {
	total := 0
	for _, shard := range r.shards {
		total += shard.VideoCount()
	}
	return total
}

// ShardVideoCounts reports per-shard video counts, used for metrics.
func (r *Router) ShardVideoCounts() []int {
	counts := make([]int, len(r.shards))
	for i, shard := range r.shards {
		counts[i] = shard.VideoCount()
	}
	return counts
}

// NumShards returns the shard count.
func (r *Router) NumShards() int {
	return len(r.shards)
}

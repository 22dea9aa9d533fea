package benchmark

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/ppenja/youtube-transcript-archive/internal/archive"
	"github.com/ppenja/youtube-transcript-archive/internal/catalog"
	"github.com/ppenja/youtube-transcript-archive/internal/index"
	"github.com/ppenja/youtube-transcript-archive/internal/index/tokenizer"
	"github.com/ppenja/youtube-transcript-archive/internal/indexer"
	"github.com/ppenja/youtube-transcript-archive/internal/search/executor"
	"github.com/ppenja/youtube-transcript-archive/internal/search/parser"
	"github.com/ppenja/youtube-transcript-archive/pkg/config"
)

var vocabulary = []string{
	"transcript", "video", "channel", "search", "music", "theory", "history",
	"science", "interview", "episode", "review", "tutorial", "analysis",
	"discussion", "question", "answer", "world", "language", "culture", "design",
}

func randomText(rng *rand.Rand, words int) string {
	text := ""
	for i := 0; i < words; i++ {
		if i > 0 {
			text += " "
		}
		text += vocabulary[rng.Intn(len(vocabulary))]
	}
	return text
}

func buildCorpus(b *testing.B, videos, segmentsPerVideo int) (*index.Router, *catalog.Store) {
	b.Helper()
	idx := index.NewRouter(8)
	store := catalog.NewStore()
	coordinator := indexer.New(idx, store, nil, nil, config.IndexConfig{})
	ctx := context.Background()

	if err := coordinator.RegisterChannel(ctx, archive.Channel{ID: "c1", Title: "Bench"}); err != nil {
		b.Fatal(err)
	}
	rng := rand.New(rand.NewSource(42))
	for v := 0; v < videos; v++ {
		segments := make([]archive.Segment, segmentsPerVideo)
		for s := range segments {
			segments[s] = archive.Segment{
				Position: s,
				Start:    float64(s * 10),
				Duration: 8,
				Text:     randomText(rng, 12),
			}
		}
		video := archive.Video{ID: fmt.Sprintf("video-%04d", v), ChannelID: "c1"}
		if err := coordinator.IngestVideo(ctx, video, segments); err != nil {
			b.Fatal(err)
		}
	}
	return idx, store
}

func BenchmarkTokenize(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	text := randomText(rng, 50)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tokenizer.Tokenize(text)
	}
}

func BenchmarkIngestVideo(b *testing.B) {
	idx := index.NewRouter(8)
	store := catalog.NewStore()
	coordinator := indexer.New(idx, store, nil, nil, config.IndexConfig{})
	ctx := context.Background()
	if err := coordinator.RegisterChannel(ctx, archive.Channel{ID: "c1", Title: "Bench"}); err != nil {
		b.Fatal(err)
	}

	rng := rand.New(rand.NewSource(7))
	segments := make([]archive.Segment, 200)
	for s := range segments {
		segments[s] = archive.Segment{Position: s, Start: float64(s * 10), Duration: 8, Text: randomText(rng, 12)}
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		video := archive.Video{ID: fmt.Sprintf("v-%d", i), ChannelID: "c1"}
		if err := coordinator.IngestVideo(ctx, video, segments); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSearchSingleTerm(b *testing.B) {
	idx, store := buildCorpus(b, 200, 50)
	ex := executor.New(idx, store)
	plan := parser.Parse("transcript", "")
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ex.Execute(ctx, plan, 20, 0); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSearchMultiTerm(b *testing.B) {
	idx, store := buildCorpus(b, 200, 50)
	ex := executor.New(idx, store)
	plan := parser.Parse("music theory history", "")
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ex.Execute(ctx, plan, 20, 0); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkIndexLookup(b *testing.B) {
	idx, _ := buildCorpus(b, 200, 50)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		idx.Lookup(vocabulary[i%len(vocabulary)])
	}
}

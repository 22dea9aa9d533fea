package analytics

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestCollectorDeliversToAggregator(t *testing.T) {
	agg := NewAggregator()
	c := NewCollector(agg, nil, 16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	c.TrackSearch(SearchEvent{Query: "delivered", Total: 1})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if agg.Snapshot().TotalQueries == 1 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("event never reached the aggregator")
}

func TestCollectorConcurrentDropsOnFullBuffer(t *testing.T) {
	c := NewCollector(NewAggregator(), nil, 1)
	// No Run goroutine: the buffer holds one event and every further
	// TrackSearch takes the drop path.
	c.TrackSearch(SearchEvent{Query: "buffered"})

	const goroutines = 8
	const perGoroutine = 100
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				c.TrackSearch(SearchEvent{Query: "overflow"})
			}
		}()
	}
	wg.Wait()

	if got := c.dropped.Load(); got != goroutines*perGoroutine {
		t.Errorf("dropped = %d, want %d", got, goroutines*perGoroutine)
	}
}

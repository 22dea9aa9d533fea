package analytics

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ppenja/youtube-transcript-archive/pkg/kafka"
)

// Collector buffers search events and fans them out to the in-memory
// aggregator and, when configured, to Kafka. Tracking never blocks the
// request path: a full buffer drops the event.
type Collector struct {
	events     chan SearchEvent
	aggregator *Aggregator
	producer   *kafka.Producer
	logger     *slog.Logger
	dropped    atomic.Int64
}

// NewCollector creates a Collector with the given buffer size. producer may
// be nil when Kafka is unavailable.
func NewCollector(aggregator *Aggregator, producer *kafka.Producer, bufferSize int) *Collector {
	if bufferSize <= 0 {
		bufferSize = 1024
	}
	return &Collector{
		events:     make(chan SearchEvent, bufferSize),
		aggregator: aggregator,
		producer:   producer,
		logger:     slog.Default().With("component", "analytics-collector"),
	}
}

// TrackSearch enqueues an event, dropping it if the buffer is full. Called
// concurrently from request goroutines.
func (c *Collector) TrackSearch(event SearchEvent) {
	select {
	case c.events <- event:
	default:
		if n := c.dropped.Add(1); n%1000 == 1 {
			c.logger.Warn("analytics buffer full, dropping events", "dropped_total", n)
		}
	}
}

// Run drains the event buffer until ctx is cancelled. Call from its own
// goroutine.
func (c *Collector) Run(ctx context.Context) {
	c.logger.Info("analytics collector started")
	for {
		select {
		case <-ctx.Done():
			c.drain()
			c.logger.Info("analytics collector stopped")
			return
		case event := <-c.events:
			c.process(ctx, event)
		}
	}
}

// drain flushes whatever is buffered at shutdown without blocking.
func (c *Collector) drain() {
	for {
		select {
		case event := <-c.events:
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			c.process(ctx, event)
			cancel()
		default:
			return
		}
	}
}

func (c *Collector) process(ctx context.Context, event SearchEvent) {
	c.aggregator.Record(event)
	if c.producer == nil {
		return
	}
	if err := c.producer.Publish(ctx, kafka.Event{Key: event.RequestID, Value: event}); err != nil {
		c.logger.Warn("failed to publish analytics event", "error", err)
	}
}

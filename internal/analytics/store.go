package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ppenja/youtube-transcript-archive/pkg/postgres"
)

// SnapshotStore persists aggregate snapshots to PostgreSQL on an interval,
// so usage statistics survive searchd restarts.
type SnapshotStore struct {
	pg         *postgres.Client
	aggregator *Aggregator
	interval   time.Duration
	logger     *slog.Logger
}

func NewSnapshotStore(pg *postgres.Client, aggregator *Aggregator, interval time.Duration) *SnapshotStore {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &SnapshotStore{
		pg:         pg,
		aggregator: aggregator,
		interval:   interval,
		logger:     slog.Default().With("component", "analytics-store"),
	}
}

// Run writes a snapshot every interval until ctx is cancelled, plus one final
// snapshot on shutdown.
func (s *SnapshotStore) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := s.Write(flushCtx); err != nil {
				s.logger.Warn("final snapshot failed", "error", err)
			}
			cancel()
			return
		case <-ticker.C:
			if err := s.Write(ctx); err != nil {
				s.logger.Warn("snapshot write failed", "error", err)
			}
		}
	}
}

// Write stores the current aggregate stats as one JSON row.
func (s *SnapshotStore) Write(ctx context.Context) error {
	stats := s.aggregator.Snapshot()
	if stats.TotalQueries == 0 {
		return nil
	}
	payload, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshaling analytics snapshot: %w", err)
	}
	_, err = s.pg.DB.ExecContext(ctx,
		`INSERT INTO analytics_snapshots (captured_at, stats) VALUES (now(), $1)`,
		payload)
	if err != nil {
		return fmt.Errorf("inserting analytics snapshot: %w", err)
	}
	s.logger.Debug("analytics snapshot written", "total_queries", stats.TotalQueries)
	return nil
}

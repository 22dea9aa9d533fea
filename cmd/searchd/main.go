// searchd is the read side of the transcript archive: it consumes transcript
// events from Kafka, maintains the in-memory inverted index, and serves the
// public search and browse APIs.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ppenja/youtube-transcript-archive/internal/analytics"
	"github.com/ppenja/youtube-transcript-archive/internal/catalog"
	"github.com/ppenja/youtube-transcript-archive/internal/index"
	"github.com/ppenja/youtube-transcript-archive/internal/indexer"
	"github.com/ppenja/youtube-transcript-archive/internal/ratelimit"
	"github.com/ppenja/youtube-transcript-archive/internal/search/cache"
	"github.com/ppenja/youtube-transcript-archive/internal/search/executor"
	searchhandler "github.com/ppenja/youtube-transcript-archive/internal/search/handler"
	"github.com/ppenja/youtube-transcript-archive/pkg/config"
	"github.com/ppenja/youtube-transcript-archive/pkg/health"
	"github.com/ppenja/youtube-transcript-archive/pkg/kafka"
	"github.com/ppenja/youtube-transcript-archive/pkg/logger"
	"github.com/ppenja/youtube-transcript-archive/pkg/metrics"
	"github.com/ppenja/youtube-transcript-archive/pkg/middleware"
	"github.com/ppenja/youtube-transcript-archive/pkg/postgres"
	"github.com/ppenja/youtube-transcript-archive/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.WithComponent("searchd")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	var metricsShutdown func(context.Context) error
	if cfg.Metrics.Enabled {
		metricsShutdown = metrics.StartServer(cfg.Metrics.Port)
	}

	// Optional dependencies degrade rather than abort: without PostgreSQL
	// the index starts empty, without Redis every query hits the executor.
	var pg *postgres.Client
	if pg, err = postgres.New(cfg.Postgres); err != nil {
		log.Warn("postgres unavailable, running memory-only", "error", err)
		pg = nil
	} else {
		defer pg.Close()
	}
	var rdb *redis.Client
	if rdb, err = redis.NewClient(cfg.Redis); err != nil {
		log.Warn("redis unavailable, search cache disabled", "error", err)
		rdb = nil
	} else {
		defer rdb.Close()
	}

	idx := index.NewRouter(cfg.Index.NumShards)
	store := catalog.NewStore()
	var persister *catalog.Persister
	if pg != nil {
		persister = catalog.NewPersister(pg)
	}
	coordinator := indexer.New(idx, store, persister, m, cfg.Index)

	if persister != nil {
		snap, err := persister.LoadAll(ctx)
		if err != nil {
			log.Error("failed to load catalog snapshot", "error", err)
			os.Exit(1)
		}
		if err := coordinator.Hydrate(ctx, snap); err != nil {
			log.Error("failed to hydrate index", "error", err)
			os.Exit(1)
		}
	}

	searchCache := cache.New(rdb, cfg.Redis.CacheTTL)
	aggregator := analytics.NewAggregator()
	var analyticsProducer *kafka.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		analyticsProducer = kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents)
		defer analyticsProducer.Close()
	}
	collector := analytics.NewCollector(aggregator, analyticsProducer, cfg.Search.AnalyticsBuffer)

	ex := executor.New(idx, store)
	searchHandler := searchhandler.New(ex, searchCache, collector, m, cfg.Search)
	catalogHandler := catalog.NewHandler(store, idx)
	analyticsHandler := analytics.NewHandler(aggregator)

	checker := health.NewChecker()
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d videos indexed", idx.VideoCount()),
		}
	})
	if pg != nil {
		pgRef := pg
		checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
			if err := pgRef.DB.PingContext(ctx); err != nil {
				return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
			}
			return health.ComponentHealth{Status: health.StatusUp}
		})
	}
	if rdb != nil {
		rdbRef := rdb
		checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
			if err := rdbRef.Ping(ctx); err != nil {
				return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
			}
			return health.ComponentHealth{Status: health.StatusUp}
		})
	}

	limiter := ratelimit.New(cfg.Search.RateLimitPerMin, cfg.Search.RateLimitWindow)

	mux := http.NewServeMux()
	searchHandler.Register(mux, ratelimit.Middleware(limiter))
	catalogHandler.Register(mux)
	analyticsHandler.Register(mux)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var root http.Handler = mux
	root = middleware.Timeout(cfg.Server.WriteTimeout)(root)
	root = middleware.Metrics(m)(root)
	root = middleware.CORS(middleware.DefaultCORSConfig())(root)
	root = middleware.RequestID(root)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      root,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout + 5*time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		collector.Run(gctx)
		return nil
	})
	if pg != nil {
		snapshots := analytics.NewSnapshotStore(pg, aggregator, cfg.Search.SnapshotInterval)
		g.Go(func() error {
			snapshots.Run(gctx)
			return nil
		})
	}
	if len(cfg.Kafka.Brokers) > 0 {
		ingestConsumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.TranscriptIngest,
			indexer.NewEventHandler(coordinator).Handle)
		g.Go(func() error {
			return ingestConsumer.Start(gctx)
		})

		invalidateConsumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.CacheInvalidate,
			func(ctx context.Context, key, value []byte) error {
				_, err := searchCache.Invalidate(ctx)
				return err
			})
		g.Go(func() error {
			return invalidateConsumer.Start(gctx)
		})
	}

	g.Go(func() error {
		log.Info("searchd listening", "addr", server.Addr, "shards", idx.NumShards())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if metricsShutdown != nil {
			_ = metricsShutdown(shutdownCtx)
		}
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("searchd exited with error", "error", err)
		os.Exit(1)
	}
	slog.Info("searchd stopped")
}

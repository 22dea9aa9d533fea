// ingestd is the write side of the transcript archive: it accepts admin
// transcript submissions over HTTP, persists them to PostgreSQL, and
// publishes them to Kafka for searchd to index.
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

	"github.com/ppenja/youtube-transcript-archive/internal/catalog"
	ingesthandler "github.com/ppenja/youtube-transcript-archive/internal/ingestion/handler"
	"github.com/ppenja/youtube-transcript-archive/internal/ingestion/publisher"
	"github.com/ppenja/youtube-transcript-archive/internal/ingestion/validator"
	"github.com/ppenja/youtube-transcript-archive/pkg/config"
	"github.com/ppenja/youtube-transcript-archive/pkg/health"
	"github.com/ppenja/youtube-transcript-archive/pkg/kafka"
	"github.com/ppenja/youtube-transcript-archive/pkg/logger"
	"github.com/ppenja/youtube-transcript-archive/pkg/middleware"
	"github.com/ppenja/youtube-transcript-archive/pkg/postgres"
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
	log := logger.WithComponent("ingestd")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var pg *postgres.Client
	if pg, err = postgres.New(cfg.Postgres); err != nil {
		log.Warn("postgres unavailable, submissions will not be durable", "error", err)
		pg = nil
	} else {
		defer pg.Close()
	}
	var persister *catalog.Persister
	if pg != nil {
		persister = catalog.NewPersister(pg)
	}

	ingestProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.TranscriptIngest)
	defer ingestProducer.Close()
	invalidateProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.CacheInvalidate)
	defer invalidateProducer.Close()

	pub := publisher.New(persister, ingestProducer, invalidateProducer)
	val := validator.New(cfg.Index.MaxSegmentsPerVideo, cfg.Index.MaxSegmentTextBytes)
	handler := ingesthandler.New(val, pub)

	checker := health.NewChecker()
	if pg != nil {
		pgRef := pg
		checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
			if err := pgRef.DB.PingContext(ctx); err != nil {
				return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
			}
			return health.ComponentHealth{Status: health.StatusUp}
		})
	}

	mux := http.NewServeMux()
	handler.Register(mux)
	mux.HandleFunc("GET /health", checker.ReadyHandler())

	var root http.Handler = mux
	root = middleware.Timeout(cfg.Server.WriteTimeout)(root)
	root = middleware.RequestID(root)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Ingest.Port),
		Handler:      root,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout + 5*time.Second,
	}

	go func() {
		log.Info("ingestd listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	slog.Info("ingestd stopped")
}

// Package handler serves the public search API.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ppenja/youtube-transcript-archive/internal/analytics"
	"github.com/ppenja/youtube-transcript-archive/internal/archive"
	"github.com/ppenja/youtube-transcript-archive/internal/search/cache"
	"github.com/ppenja/youtube-transcript-archive/internal/search/executor"
	"github.com/ppenja/youtube-transcript-archive/internal/search/parser"
	"github.com/ppenja/youtube-transcript-archive/pkg/config"
	apperrors "github.com/ppenja/youtube-transcript-archive/pkg/errors"
	"github.com/ppenja/youtube-transcript-archive/pkg/metrics"
	"github.com/ppenja/youtube-transcript-archive/pkg/middleware"
	"github.com/ppenja/youtube-transcript-archive/pkg/tracing"
)

// response is the wire shape of GET /api/search.
type response struct {
	Query   string              `json:"query"`
	Results []archive.SearchHit `json:"results"`
	Total   int                 `json:"total"`
	Limit   int                 `json:"limit"`
	Offset  int                 `json:"offset"`
}

// Handler validates search requests, consults the cache, and runs the
// executor on misses.
type Handler struct {
	executor  *executor.Executor
	cache     *cache.Cache
	collector *analytics.Collector
	metrics   *metrics.Metrics
	cfg       config.SearchConfig
	logger    *slog.Logger
}

// New creates the search handler. collector and m may be nil.
func New(ex *executor.Executor, ca *cache.Cache, collector *analytics.Collector, m *metrics.Metrics, cfg config.SearchConfig) *Handler {
	return &Handler{
		executor:  ex,
		cache:     ca,
		collector: collector,
		metrics:   m,
		cfg:       cfg,
		logger:    slog.Default().With("component", "search-handler"),
	}
}

// Register wires the search routes onto mux. searchMW, when non-nil, wraps
// only the query route; the cache admin routes stay unwrapped.
func (h *Handler) Register(mux *http.ServeMux, searchMW func(http.Handler) http.Handler) {
	search := http.Handler(http.HandlerFunc(h.Search))
	if searchMW != nil {
		search = searchMW(search)
	}
	mux.Handle("GET /api/search", search)
	mux.HandleFunc("GET /api/search/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/search/cache/invalidate", h.CacheInvalidate)
}

// Search handles GET /api/search?q=&limit=&offset=&channel_id=. A blank
// query is not an error: it returns an empty page so the UI can render a
// pristine search box without special-casing.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	query := r.URL.Query().Get("q")
	channelID := r.URL.Query().Get("channel_id")

	limit, offset, err := h.pagination(r)
	if err != nil {
		h.recordQuery("error")
		h.respondError(w, r, err)
		return
	}

	plan := parser.Parse(query, channelID)
	if strings.TrimSpace(query) == "" || plan.Empty() {
		h.recordQuery("zero_result")
		h.respondJSON(w, http.StatusOK, response{
			Query:   query,
			Results: []archive.SearchHit{},
			Total:   0,
			Limit:   limit,
			Offset:  offset,
		})
		return
	}

	requestID := middleware.GetRequestID(r.Context())
	ctx, span := tracing.StartSpan(r.Context(), "search", requestID)
	defer func() {
		span.End()
		span.Log()
	}()
	span.SetAttr("query", query)

	result, cacheHit, err := h.cache.Get(ctx, plan, limit, offset, func(ctx context.Context) (*executor.Result, error) {
		return h.executor.Execute(ctx, plan, limit, offset)
	})
	if err != nil {
		h.recordQuery("error")
		h.respondError(w, r, err)
		return
	}

	h.observe(result, cacheHit, time.Since(start))
	if h.collector != nil {
		h.collector.TrackSearch(analytics.SearchEvent{
			Timestamp: start,
			RequestID: requestID,
			Query:     query,
			Terms:     plan.Terms,
			ChannelID: channelID,
			Total:     result.Total,
			Returned:  len(result.Hits),
			LatencyMs: float64(time.Since(start).Microseconds()) / 1000,
			CacheHit:  cacheHit,
		})
	}

	h.respondJSON(w, http.StatusOK, response{
		Query:   query,
		Results: result.Hits,
		Total:   result.Total,
		Limit:   limit,
		Offset:  offset,
	})
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.cache.Stats())
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.cache.Invalidate(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]int64{"invalidated": deleted})
}

// pagination parses and bounds limit/offset. Out-of-range values are caller
// errors, not silently clamped.
func (h *Handler) pagination(r *http.Request) (limit, offset int, err error) {
	limit = h.cfg.DefaultLimit
	offset = 0

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > h.cfg.MaxResults {
			return 0, 0, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest,
				"limit must be an integer between 1 and %d", h.cfg.MaxResults)
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return 0, 0, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest,
				"offset must be a non-negative integer")
		}
	}
	return limit, offset, nil
}

func (h *Handler) observe(result *executor.Result, cacheHit bool, elapsed time.Duration) {
	if h.metrics == nil {
		return
	}
	if result.Total == 0 {
		h.metrics.SearchQueriesTotal.WithLabelValues("zero_result").Inc()
	} else {
		h.metrics.SearchQueriesTotal.WithLabelValues("hit").Inc()
	}
	status := "miss"
	if cacheHit {
		status = "hit"
		h.metrics.CacheHitsTotal.Inc()
	} else {
		h.metrics.CacheMissesTotal.Inc()
	}
	h.metrics.SearchLatency.WithLabelValues(status).Observe(elapsed.Seconds())
	h.metrics.SearchResultsCount.Observe(float64(len(result.Hits)))
}

func (h *Handler) recordQuery(resultType string) {
	if h.metrics != nil {
		h.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
	}
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatusCode(err)
	if status >= 500 {
		h.logger.Error("search request failed", "path", r.URL.Path, "error", err)
	}
	h.respondJSON(w, status, map[string]string{"error": err.Error()})
}

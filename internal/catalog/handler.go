package catalog

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ppenja/youtube-transcript-archive/internal/archive"
	"github.com/ppenja/youtube-transcript-archive/internal/index"
	apperrors "github.com/ppenja/youtube-transcript-archive/pkg/errors"
)

// transcriptSource exposes the published segment set for a video. Satisfied
// by *index.Router.
type transcriptSource interface {
	Video(videoID string) (*index.VideoState, bool)
}

// Handler serves the public channel and video browse endpoints.
type Handler struct {
	store  *Store
	idx    transcriptSource
	logger *slog.Logger
}

func NewHandler(store *Store, idx transcriptSource) *Handler {
	return &Handler{
		store:  store,
		idx:    idx,
		logger: slog.Default().With("component", "catalog-handler"),
	}
}

// Register wires the browse routes onto mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/channel", h.ResolveChannel)
	mux.HandleFunc("GET /api/channels", h.ListChannels)
	mux.HandleFunc("GET /api/channels/{id}", h.GetChannel)
	mux.HandleFunc("GET /api/channels/{id}/videos", h.ListChannelVideos)
	mux.HandleFunc("GET /api/videos/{id}", h.GetVideo)
}

// ResolveChannel handles GET /api/channel?url=. The URL is parsed down to a
// channel ID; unknown channels are a 404, unparseable URLs a 400.
func (h *Handler) ResolveChannel(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	channelID, err := archive.ParseChannelURL(rawURL)
	if err != nil {
		h.respondError(w, r, apperrors.Newf(apperrors.ErrInvalidInput,
			http.StatusBadRequest, "invalid channel URL: %v", err))
		return
	}
	ch, ok := h.store.Channel(channelID)
	if !ok {
		h.respondError(w, r, apperrors.Newf(apperrors.ErrChannelNotFound,
			http.StatusNotFound, "channel %s is not archived", channelID))
		return
	}
	h.respondJSON(w, http.StatusOK, ch)
}

func (h *Handler) ListChannels(w http.ResponseWriter, r *http.Request) {
	channels := h.store.Channels()
	h.respondJSON(w, http.StatusOK, map[string]any{
		"channels": channels,
		"total":    len(channels),
	})
}

func (h *Handler) GetChannel(w http.ResponseWriter, r *http.Request) {
	ch, ok := h.store.Channel(r.PathValue("id"))
	if !ok {
		h.respondError(w, r, apperrors.Newf(apperrors.ErrChannelNotFound,
			http.StatusNotFound, "channel %s is not archived", r.PathValue("id")))
		return
	}
	h.respondJSON(w, http.StatusOK, ch)
}

func (h *Handler) ListChannelVideos(w http.ResponseWriter, r *http.Request) {
	channelID := r.PathValue("id")
	if !h.store.HasChannel(channelID) {
		h.respondError(w, r, apperrors.Newf(apperrors.ErrChannelNotFound,
			http.StatusNotFound, "channel %s is not archived", channelID))
		return
	}
	videos := h.store.ChannelVideos(channelID)
	h.respondJSON(w, http.StatusOK, map[string]any{
		"channel_id": channelID,
		"videos":     videos,
		"total":      len(videos),
	})
}

// GetVideo returns video metadata plus the published transcript. Videos
// whose ingestion failed or is still in flight return metadata with an
// empty segment list.
func (h *Handler) GetVideo(w http.ResponseWriter, r *http.Request) {
	videoID := r.PathValue("id")
	video, status, ok := h.store.Video(videoID)
	if !ok {
		h.respondError(w, r, apperrors.Newf(apperrors.ErrVideoNotFound,
			http.StatusNotFound, "video %s is not archived", videoID))
		return
	}

	segments := []archive.Segment{}
	if state, ok := h.idx.Video(videoID); ok {
		segments = make([]archive.Segment, len(state.Segments))
		for i, entry := range state.Segments {
			segments[i] = entry.Segment
		}
	}
	h.respondJSON(w, http.StatusOK, map[string]any{
		"video":    video,
		"status":   status,
		"segments": segments,
	})
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
		h.logger.Error("request failed", "path", r.URL.Path, "error", err)
	} else {
		h.logger.Debug("request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	h.respondJSON(w, status, map[string]string{"error": err.Error()})
}

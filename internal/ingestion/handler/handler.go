// Package handler serves the admin ingest API on ingestd.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ppenja/youtube-transcript-archive/internal/archive"
	"github.com/ppenja/youtube-transcript-archive/internal/ingestion"
	"github.com/ppenja/youtube-transcript-archive/internal/ingestion/publisher"
	"github.com/ppenja/youtube-transcript-archive/internal/ingestion/validator"
	apperrors "github.com/ppenja/youtube-transcript-archive/pkg/errors"
)

// Handler validates and accepts admin transcript submissions.
type Handler struct {
	validator *validator.Validator
	publisher *publisher.Publisher
	logger    *slog.Logger
}

func New(v *validator.Validator, p *publisher.Publisher) *Handler {
	return &Handler{
		validator: v,
		publisher: p,
		logger:    slog.Default().With("component", "ingest-handler"),
	}
}

// Register wires the admin routes onto mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("PUT /admin/channels/{id}", h.RegisterChannel)
	mux.HandleFunc("PUT /admin/videos/{id}", h.IngestVideo)
	mux.HandleFunc("DELETE /admin/videos/{id}", h.RemoveVideo)
}

// RegisterChannel handles PUT /admin/channels/{id}. Registration is an
// upsert: repeating it refreshes the channel metadata.
func (h *Handler) RegisterChannel(w http.ResponseWriter, r *http.Request) {
	channelID := r.PathValue("id")

	var req ingestion.RegisterChannelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, apperrors.Newf(apperrors.ErrInvalidInput,
			http.StatusBadRequest, "decoding request body: %v", err))
		return
	}
	if err := h.validator.ValidateChannel(channelID, req); err != nil {
		h.respondError(w, err)
		return
	}

	ch := archive.Channel{
		ID:           channelID,
		Title:        req.Title,
		Description:  req.Description,
		ThumbnailURL: req.ThumbnailURL,
	}
	if err := h.publisher.RegisterChannel(r.Context(), ch); err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, ingestion.IngestResponse{Status: "registered"})
}

// IngestVideo handles PUT /admin/videos/{id}. A resubmission fully replaces
// the prior transcript for the video.
func (h *Handler) IngestVideo(w http.ResponseWriter, r *http.Request) {
	videoID := r.PathValue("id")

	var req ingestion.IngestVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, apperrors.Newf(apperrors.ErrInvalidInput,
			http.StatusBadRequest, "decoding request body: %v", err))
		return
	}
	if err := h.validator.ValidateVideo(videoID, req); err != nil {
		h.respondError(w, err)
		return
	}

	video := archive.Video{
		ID:           videoID,
		ChannelID:    req.ChannelID,
		Title:        req.Title,
		Description:  req.Description,
		PublishedAt:  req.PublishedAt,
		ThumbnailURL: req.ThumbnailURL,
	}
	segments := make([]archive.Segment, len(req.Segments))
	for i, seg := range req.Segments {
		segments[i] = archive.Segment{
			Position: i,
			Start:    seg.Start,
			Duration: seg.Duration,
			Text:     seg.Text,
		}
	}

	if err := h.publisher.IngestVideo(r.Context(), video, segments); err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusAccepted, ingestion.IngestResponse{
		VideoID:  videoID,
		Status:   "accepted",
		Segments: len(segments),
	})
}

// RemoveVideo handles DELETE /admin/videos/{id}. Removal is idempotent.
func (h *Handler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	videoID := r.PathValue("id")
	if err := h.publisher.RemoveVideo(r.Context(), videoID); err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusAccepted, ingestion.IngestResponse{
		VideoID: videoID,
		Status:  "removal_accepted",
	})
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatusCode(err)
	if status >= 500 {
		h.logger.Error("admin request failed", "error", err)
	}
	h.respondJSON(w, status, map[string]string{"error": err.Error()})
}

package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/vidwarden/vidwarden/internal/models"
	"github.com/vidwarden/vidwarden/pkg/api"
)

// Platform limits on video snippets.
const (
	maxTitleLength       = 100
	maxDescriptionLength = 5000
)

// VideoGateway is the slice of the gateway the video handler needs.
type VideoGateway interface {
	FetchVideo(ctx context.Context, videoID string, origin *models.RequestOrigin) (*models.Video, error)
	UpdateVideo(ctx context.Context, videoID, title, description string, origin *models.RequestOrigin) (*models.Video, error)
}

// VideoHandler serves the video endpoints.
type VideoHandler struct {
	logger  *slog.Logger
	gateway VideoGateway
}

// NewVideoHandler creates a new handler for video endpoints.
func NewVideoHandler(logger *slog.Logger, gateway VideoGateway) *VideoHandler {
	return &VideoHandler{
		logger:  logger,
		gateway: gateway,
	}
}

// Get handles GET /api/videos/{videoId}
func (h *VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	videoID := r.PathValue("videoId")
	if videoID == "" {
		sendError(w, h.logger, "videoId is required", http.StatusBadRequest)
		return
	}

	video, err := h.gateway.FetchVideo(ctx, videoID, requestOrigin(r))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to fetch video",
			slog.String("video_id", videoID), slog.Any("error", err))
		sendOperationError(w, h.logger, err)
		return
	}

	sendJSON(w, h.logger, video, http.StatusOK)
}

// Update handles PUT /api/videos/{videoId}
func (h *VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	videoID := r.PathValue("videoId")
	if videoID == "" {
		sendError(w, h.logger, "videoId is required", http.StatusBadRequest)
		return
	}

	var req api.UpdateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode update request", slog.Any("error", err))
		sendError(w, h.logger, "invalid request body", http.StatusBadRequest)
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		sendError(w, h.logger, "title is required", http.StatusBadRequest)
		return
	}
	if utf8.RuneCountInString(req.Title) > maxTitleLength {
		sendError(w, h.logger, "title exceeds 100 characters", http.StatusBadRequest)
		return
	}
	if utf8.RuneCountInString(req.Description) > maxDescriptionLength {
		sendError(w, h.logger, "description exceeds 5000 characters", http.StatusBadRequest)
		return
	}

	video, err := h.gateway.UpdateVideo(ctx, videoID, req.Title, req.Description, requestOrigin(r))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to update video",
			slog.String("video_id", videoID), slog.Any("error", err))
		sendOperationError(w, h.logger, err)
		return
	}

	h.logger.InfoContext(ctx, "video updated", slog.String("video_id", videoID))
	sendJSON(w, h.logger, video, http.StatusOK)
}

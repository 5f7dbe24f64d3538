package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/vidwarden/vidwarden/internal/models"
	"github.com/vidwarden/vidwarden/pkg/api"
)

// Platform limit on comment text.
const maxCommentLength = 10000

const (
	defaultCommentPage = 20
	maxCommentPage     = 100
)

// CommentGateway is the slice of the gateway the comment handler needs.
type CommentGateway interface {
	ListComments(ctx context.Context, videoID string, maxResults int, origin *models.RequestOrigin) ([]models.Comment, error)
	AddComment(ctx context.Context, videoID, text string, origin *models.RequestOrigin) (*models.Comment, error)
	ReplyToComment(ctx context.Context, commentID, text string, origin *models.RequestOrigin) (*models.Comment, error)
	DeleteComment(ctx context.Context, commentID string, origin *models.RequestOrigin) error
}

// CommentHandler serves the comment endpoints.
type CommentHandler struct {
	logger  *slog.Logger
	gateway CommentGateway
}

// NewCommentHandler creates a new handler for comment endpoints.
func NewCommentHandler(logger *slog.Logger, gateway CommentGateway) *CommentHandler {
	return &CommentHandler{
		logger:  logger,
		gateway: gateway,
	}
}

// List handles GET /api/videos/{videoId}/comments
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	videoID := r.PathValue("videoId")
	if videoID == "" {
		sendError(w, h.logger, "videoId is required", http.StatusBadRequest)
		return
	}

	maxResults := defaultCommentPage
	if raw := r.URL.Query().Get("maxResults"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxCommentPage {
			sendError(w, h.logger, "maxResults must be between 1 and 100", http.StatusBadRequest)
			return
		}
		maxResults = n
	}

	comments, err := h.gateway.ListComments(ctx, videoID, maxResults, requestOrigin(r))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list comments",
			slog.String("video_id", videoID), slog.Any("error", err))
		sendOperationError(w, h.logger, err)
		return
	}

	sendJSON(w, h.logger, api.CommentListResponse{
		Comments: comments,
		Count:    len(comments),
	}, http.StatusOK)
}

// Add handles POST /api/videos/{videoId}/comments
func (h *CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	videoID := r.PathValue("videoId")
	if videoID == "" {
		sendError(w, h.logger, "videoId is required", http.StatusBadRequest)
		return
	}

	var req api.AddCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, h.logger, "invalid request body", http.StatusBadRequest)
		return
	}
	if msg, ok := validateCommentText(req.Text); !ok {
		sendError(w, h.logger, msg, http.StatusBadRequest)
		return
	}

	comment, err := h.gateway.AddComment(ctx, videoID, req.Text, requestOrigin(r))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to add comment",
			slog.String("video_id", videoID), slog.Any("error", err))
		sendOperationError(w, h.logger, err)
		return
	}

	h.logger.InfoContext(ctx, "comment added",
		slog.String("video_id", videoID), slog.String("comment_id", comment.ID))
	sendJSON(w, h.logger, comment, http.StatusCreated)
}

// Reply handles POST /api/videos/{videoId}/comments/{commentId}/reply
func (h *CommentHandler) Reply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	commentID := r.PathValue("commentId")
	if commentID == "" {
		sendError(w, h.logger, "commentId is required", http.StatusBadRequest)
		return
	}

	var req api.ReplyCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, h.logger, "invalid request body", http.StatusBadRequest)
		return
	}
	if msg, ok := validateCommentText(req.Text); !ok {
		sendError(w, h.logger, msg, http.StatusBadRequest)
		return
	}

	reply, err := h.gateway.ReplyToComment(ctx, commentID, req.Text, requestOrigin(r))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to reply to comment",
			slog.String("comment_id", commentID), slog.Any("error", err))
		sendOperationError(w, h.logger, err)
		return
	}

	h.logger.InfoContext(ctx, "reply posted",
		slog.String("parent_id", commentID), slog.String("comment_id", reply.ID))
	sendJSON(w, h.logger, reply, http.StatusCreated)
}

// Delete handles DELETE /api/videos/{videoId}/comments/{commentId}
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	commentID := r.PathValue("commentId")
	if commentID == "" {
		sendError(w, h.logger, "commentId is required", http.StatusBadRequest)
		return
	}

	if err := h.gateway.DeleteComment(ctx, commentID, requestOrigin(r)); err != nil {
		h.logger.ErrorContext(ctx, "failed to delete comment",
			slog.String("comment_id", commentID), slog.Any("error", err))
		sendOperationError(w, h.logger, err)
		return
	}

	h.logger.InfoContext(ctx, "comment deleted", slog.String("comment_id", commentID))
	sendJSON(w, h.logger, api.MessageResponse{Message: "comment deleted"}, http.StatusOK)
}

func validateCommentText(text string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return "text is required", false
	}
	if utf8.RuneCountInString(text) > maxCommentLength {
		return "text exceeds 10000 characters", false
	}
	return "", true
}

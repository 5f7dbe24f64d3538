// Package handlers contains the HTTP handlers for the public API surface.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/vidwarden/vidwarden/internal/auth"
	"github.com/vidwarden/vidwarden/internal/models"
	"github.com/vidwarden/vidwarden/internal/youtube"
	"github.com/vidwarden/vidwarden/pkg/api"
)

// sendJSON writes a JSON response with the given status
func sendJSON(w http.ResponseWriter, logger *slog.Logger, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", slog.Any("error", err))
	}
}

// sendError writes a JSON error response
func sendError(w http.ResponseWriter, logger *slog.Logger, message string, status int) {
	sendJSON(w, logger, api.ErrorResponse{Error: message}, status)
}

// sendOperationError maps a gateway error to an HTTP status. The upstream
// platform's message is passed through; it is already user-facing.
func sendOperationError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, auth.ErrNotAuthenticated),
		errors.Is(err, auth.ErrNoRefreshToken):
		sendError(w, logger, "service is not authenticated, run the auth tool first", http.StatusUnauthorized)
	case errors.Is(err, auth.ErrUnauthorized):
		sendError(w, logger, "authorization was revoked, re-run the auth tool", http.StatusUnauthorized)
	case errors.Is(err, auth.ErrRefreshTimeout):
		sendError(w, logger, "token refresh timed out, try again", http.StatusServiceUnavailable)
	case youtube.IsKind(err, youtube.KindNotFound):
		sendError(w, logger, err.Error(), http.StatusNotFound)
	case youtube.IsKind(err, youtube.KindRateLimited):
		sendError(w, logger, err.Error(), http.StatusTooManyRequests)
	case youtube.IsKind(err, youtube.KindValidation):
		sendError(w, logger, err.Error(), http.StatusBadRequest)
	case youtube.IsKind(err, youtube.KindTransient):
		sendError(w, logger, err.Error(), http.StatusBadGateway)
	case errors.Is(err, context.DeadlineExceeded):
		sendError(w, logger, "upstream request timed out", http.StatusGatewayTimeout)
	default:
		sendError(w, logger, "internal server error", http.StatusInternalServerError)
	}
}

// requestOrigin captures caller metadata for the audit trail.
func requestOrigin(r *http.Request) *models.RequestOrigin {
	return &models.RequestOrigin{
		UserAgent:  r.UserAgent(),
		RemoteAddr: r.RemoteAddr,
	}
}

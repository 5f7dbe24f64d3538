package handlers

import (
	"log/slog"
	"net/http"

	"github.com/vidwarden/vidwarden/internal/models"
	"github.com/vidwarden/vidwarden/pkg/api"
)

// CredentialChecker reports whether an operator credential is loaded.
type CredentialChecker interface {
	Credential() (models.Credential, error)
}

// HealthHandler serves the health check endpoint.
type HealthHandler struct {
	logger  *slog.Logger
	creds   CredentialChecker
	version string
}

// NewHealthHandler creates a new handler for health checks.
func NewHealthHandler(logger *slog.Logger, creds CredentialChecker, version string) *HealthHandler {
	return &HealthHandler{
		logger:  logger,
		creds:   creds,
		version: version,
	}
}

// Health handles GET /api/health
// Reports liveness plus whether the service holds an operator credential.
// A missing credential is not an error: reads may still work via API key.
func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	_, err := h.creds.Credential()

	resp := api.HealthResponse{
		Status:        "ok",
		Version:       h.version,
		Authenticated: err == nil,
	}
	sendJSON(w, h.logger, resp, http.StatusOK)
}

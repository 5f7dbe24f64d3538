package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidwarden/vidwarden/internal/auth"
	"github.com/vidwarden/vidwarden/internal/models"
	"github.com/vidwarden/vidwarden/pkg/api"
)

// mockCredentialChecker implements CredentialChecker for testing
type mockCredentialChecker struct {
	err error
}

func (m *mockCredentialChecker) Credential() (models.Credential, error) {
	return models.Credential{}, m.err
}

func TestHealth_Authenticated(t *testing.T) {
	handler := NewHealthHandler(testLogger(), &mockCredentialChecker{}, "1.2.3")

	rec := httptest.NewRecorder()
	handler.Health(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
	assert.True(t, resp.Authenticated)
}

func TestHealth_NotAuthenticatedStillOK(t *testing.T) {
	handler := NewHealthHandler(testLogger(), &mockCredentialChecker{err: auth.ErrNotAuthenticated}, "dev")

	rec := httptest.NewRecorder()
	handler.Health(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.False(t, resp.Authenticated)
}

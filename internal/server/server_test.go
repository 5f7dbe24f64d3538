package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidwarden/vidwarden/internal/models"
)

// stubGateway implements GatewayService with canned answers
type stubGateway struct{}

func (stubGateway) FetchVideo(ctx context.Context, videoID string, origin *models.RequestOrigin) (*models.Video, error) {
	return &models.Video{ID: videoID}, nil
}

func (stubGateway) UpdateVideo(ctx context.Context, videoID, title, description string, origin *models.RequestOrigin) (*models.Video, error) {
	return &models.Video{ID: videoID, Title: title}, nil
}

func (stubGateway) ListComments(ctx context.Context, videoID string, maxResults int, origin *models.RequestOrigin) ([]models.Comment, error) {
	return nil, nil
}

func (stubGateway) AddComment(ctx context.Context, videoID, text string, origin *models.RequestOrigin) (*models.Comment, error) {
	return &models.Comment{ID: "c-new", VideoID: videoID}, nil
}

func (stubGateway) ReplyToComment(ctx context.Context, commentID, text string, origin *models.RequestOrigin) (*models.Comment, error) {
	return &models.Comment{ID: "r-new", ParentID: commentID}, nil
}

func (stubGateway) DeleteComment(ctx context.Context, commentID string, origin *models.RequestOrigin) error {
	return nil
}

type stubEvents struct{}

func (stubEvents) List(ctx context.Context, filter models.EventFilter) ([]*models.AuditEvent, error) {
	return nil, nil
}

func (stubEvents) Count(ctx context.Context, filter models.EventFilter) (int64, error) {
	return 0, nil
}

func (stubEvents) Stats(ctx context.Context, videoID string, window time.Duration) (*models.EventStats, error) {
	return &models.EventStats{}, nil
}

type stubCreds struct{}

func (stubCreds) Credential() (models.Credential, error) {
	return models.Credential{}, nil
}

func testRouter() http.Handler {
	return Router(Deps{
		Logger:  slog.New(slog.DiscardHandler),
		Gateway: stubGateway{},
		Events:  stubEvents{},
		Creds:   stubCreds{},
		Version: "test",
	})
}

func TestRouter_Routes(t *testing.T) {
	tests := []struct {
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{http.MethodGet, "/api/videos/vid-1", "", http.StatusOK},
		{http.MethodPut, "/api/videos/vid-1", `{"title":"t"}`, http.StatusOK},
		{http.MethodGet, "/api/videos/vid-1/comments", "", http.StatusOK},
		{http.MethodPost, "/api/videos/vid-1/comments", `{"text":"hi"}`, http.StatusCreated},
		{http.MethodPost, "/api/videos/vid-1/comments/c-1/reply", `{"text":"hi"}`, http.StatusCreated},
		{http.MethodDelete, "/api/videos/vid-1/comments/c-1", "", http.StatusOK},
		{http.MethodGet, "/api/event-logs", "", http.StatusOK},
		{http.MethodGet, "/api/event-logs/stats", "", http.StatusOK},
		{http.MethodGet, "/api/event-logs/recent/vid-1", "", http.StatusOK},
		{http.MethodGet, "/api/health", "", http.StatusOK},
		{http.MethodGet, "/api/unknown", "", http.StatusNotFound},
		{http.MethodDelete, "/api/videos/vid-1", "", http.StatusMethodNotAllowed},
	}

	router := testRouter()
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			req := httptest.NewRequest(tt.method, tt.path, body)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestServer_Shutdown(t *testing.T) {
	srv := New("127.0.0.1:0", testRouter(), slog.New(slog.DiscardHandler))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
}

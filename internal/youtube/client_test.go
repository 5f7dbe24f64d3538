package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/time/rate"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient(
		WithBaseURL(server.URL),
		WithRateLimit(rate.Inf, 1),
	)
	return client, server
}

func errorBody(code int, message, reason string) string {
	return fmt.Sprintf(`{"error":{"code":%d,"message":%q,"errors":[{"reason":%q}]}}`, code, message, reason)
}

func TestGetVideo_ParsesResponse(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/videos", r.URL.Path)
		assert.Equal(t, "snippet,statistics,status", r.URL.Query().Get("part"))
		assert.Equal(t, "vid-1", r.URL.Query().Get("id"))

		_, _ = w.Write([]byte(`{
			"items": [{
				"id": "vid-1",
				"snippet": {
					"title": "My Video",
					"description": "about things",
					"channelTitle": "My Channel",
					"publishedAt": "2024-03-01T12:00:00Z"
				},
				"statistics": {"viewCount": "1234", "likeCount": "56", "commentCount": "7"},
				"status": {"privacyStatus": "public"}
			}]
		}`))
	}))
	defer server.Close()

	video, err := client.GetVideo(context.Background(), Auth{APIKey: "k"}, "vid-1")
	require.NoError(t, err)
	assert.Equal(t, "vid-1", video.ID)
	assert.Equal(t, "My Video", video.Title)
	assert.Equal(t, "My Channel", video.ChannelTitle)
	assert.Equal(t, uint64(1234), video.ViewCount)
	assert.Equal(t, uint64(56), video.LikeCount)
	assert.Equal(t, uint64(7), video.CommentCount)
	assert.Equal(t, "public", video.PrivacyStatus)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), video.PublishedAt)
}

func TestGetVideo_EmptyItemsIsNotFound(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items": []}`))
	}))
	defer server.Close()

	_, err := client.GetVideo(context.Background(), Auth{APIKey: "k"}, "missing")
	assert.True(t, IsKind(err, KindNotFound))
}

func TestDo_AppliesAPIKeyAndBearer(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret-key", r.URL.Query().Get("key"))
		assert.Equal(t, "Bearer token-abc", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"items":[{"id":"v"}]}`))
	}))
	defer server.Close()

	_, err := client.GetVideo(context.Background(), Auth{APIKey: "secret-key", BearerToken: "token-abc"}, "v")
	require.NoError(t, err)
}

func TestUpdateVideo_SendsSnippetWithCategory(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req ytVideoUpdateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "vid-1", req.ID)
		assert.Equal(t, "new title", req.Snippet.Title)
		assert.Equal(t, "new description", req.Snippet.Description)
		assert.Equal(t, defaultCategoryID, req.Snippet.CategoryID)

		_, _ = w.Write([]byte(`{"id":"vid-1","snippet":{"title":"new title","description":"new description"}}`))
	}))
	defer server.Close()

	video, err := client.UpdateVideo(context.Background(), Auth{BearerToken: "t"}, "vid-1", "new title", "new description")
	require.NoError(t, err)
	assert.Equal(t, "new title", video.Title)
}

func TestListCommentThreads_ParsesRepliesAndDefaults(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/commentThreads", r.URL.Path)
		assert.Equal(t, "20", r.URL.Query().Get("maxResults"))
		assert.Equal(t, "time", r.URL.Query().Get("order"))

		_, _ = w.Write([]byte(`{
			"items": [{
				"id": "thread-1",
				"snippet": {
					"videoId": "vid-1",
					"topLevelComment": {
						"id": "c-1",
						"snippet": {"textDisplay": "first!", "authorDisplayName": "alice"}
					}
				},
				"replies": {
					"comments": [
						{"id": "r-1", "snippet": {"parentId": "c-1", "textOriginal": "welcome", "authorDisplayName": "bob"}}
					]
				}
			}]
		}`))
	}))
	defer server.Close()

	comments, err := client.ListCommentThreads(context.Background(), Auth{APIKey: "k"}, "vid-1", 0)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "c-1", comments[0].ID)
	assert.Equal(t, "vid-1", comments[0].VideoID)
	assert.Equal(t, "first!", comments[0].Text)
	assert.Equal(t, "alice", comments[0].Author)
	require.Len(t, comments[0].Replies, 1)
	assert.Equal(t, "r-1", comments[0].Replies[0].ID)
	assert.Equal(t, "c-1", comments[0].Replies[0].ParentID)
}

func TestInsertCommentThread_PostsText(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var req ytCommentThreadInsertRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "vid-1", req.Snippet.VideoID)
		assert.Equal(t, "great video", req.Snippet.TopLevelComment.Snippet.TextOriginal)

		_, _ = w.Write([]byte(`{
			"id": "thread-new",
			"snippet": {
				"videoId": "vid-1",
				"topLevelComment": {"id": "c-new", "snippet": {"textOriginal": "great video"}}
			}
		}`))
	}))
	defer server.Close()

	comment, err := client.InsertCommentThread(context.Background(), Auth{BearerToken: "t"}, "vid-1", "great video")
	require.NoError(t, err)
	assert.Equal(t, "c-new", comment.ID)
	assert.Equal(t, "vid-1", comment.VideoID)
	assert.Equal(t, "great video", comment.Text)
}

func TestInsertComment_PostsReply(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/comments", r.URL.Path)

		var req ytCommentInsertRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "c-parent", req.Snippet.ParentID)

		_, _ = w.Write([]byte(`{"id":"r-new","snippet":{"parentId":"c-parent","textOriginal":"thanks"}}`))
	}))
	defer server.Close()

	reply, err := client.InsertComment(context.Background(), Auth{BearerToken: "t"}, "c-parent", "thanks")
	require.NoError(t, err)
	assert.Equal(t, "r-new", reply.ID)
	assert.Equal(t, "c-parent", reply.ParentID)
}

func TestDeleteComment_NoContent(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "c-1", r.URL.Query().Get("id"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	require.NoError(t, client.DeleteComment(context.Background(), Auth{BearerToken: "t"}, "c-1"))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		wantKind     ErrorKind
		wantTokenErr bool
	}{
		{
			name:         "401 is token rejection",
			status:       http.StatusUnauthorized,
			body:         errorBody(401, "Invalid Credentials", "authError"),
			wantTokenErr: true,
		},
		{
			name:     "404 not found",
			status:   http.StatusNotFound,
			body:     errorBody(404, "Video not found.", "videoNotFound"),
			wantKind: KindNotFound,
		},
		{
			name:     "429 rate limited",
			status:   http.StatusTooManyRequests,
			body:     errorBody(429, "Too many requests", "rateLimitExceeded"),
			wantKind: KindRateLimited,
		},
		{
			name:     "403 quota exceeded is rate limited",
			status:   http.StatusForbidden,
			body:     errorBody(403, "Quota exceeded.", "quotaExceeded"),
			wantKind: KindRateLimited,
		},
		{
			name:         "403 auth error is token rejection",
			status:       http.StatusForbidden,
			body:         errorBody(403, "Insufficient scope", "insufficientPermissions"),
			wantTokenErr: true,
		},
		{
			name:     "403 comments disabled is validation",
			status:   http.StatusForbidden,
			body:     errorBody(403, "Comments are disabled.", "commentsDisabled"),
			wantKind: KindValidation,
		},
		{
			name:     "400 validation",
			status:   http.StatusBadRequest,
			body:     errorBody(400, "Invalid snippet.", "invalidSnippet"),
			wantKind: KindValidation,
		},
		{
			name:     "500 transient",
			status:   http.StatusInternalServerError,
			body:     errorBody(500, "Backend Error", "backendError"),
			wantKind: KindTransient,
		},
		{
			name:     "malformed error body still classifies",
			status:   http.StatusServiceUnavailable,
			body:     "upstream gateway broke",
			wantKind: KindTransient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := client.GetVideo(context.Background(), Auth{APIKey: "k"}, "vid-1")
			require.Error(t, err)

			if tt.wantTokenErr {
				assert.ErrorIs(t, err, ErrTokenRejected)
				return
			}
			assert.True(t, IsKind(err, tt.wantKind), "got %v", err)
		})
	}
}

func TestDo_NetworkErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // force connection refused

	client := NewClient(WithBaseURL(server.URL), WithRateLimit(rate.Inf, 1))
	_, err := client.GetVideo(context.Background(), Auth{APIKey: "k"}, "vid-1")
	assert.True(t, IsKind(err, KindTransient))
}

func TestDo_CanceledContext(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.GetVideo(ctx, Auth{APIKey: "k"}, "vid-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/vidwarden/vidwarden/internal/models"
)

const defaultBaseURL = "https://www.googleapis.com/youtube/v3"

// Default category for updates; the platform requires a category id on
// every snippet update and the managed assets all live in "People & Blogs".
const defaultCategoryID = "22"

// Auth selects how a single API call authenticates: a service-level API key
// for reads, or the operator's bearer token for writes.
type Auth struct {
	APIKey      string
	BearerToken string
}

// Client is a minimal Data API v3 client covering the operations this
// service needs. All calls share one outbound rate limiter so bursts of
// operations do not burn through the daily quota.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the API base URL. Used in tests.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithRateLimit overrides the outbound request rate.
func WithRateLimit(limit rate.Limit, burst int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(limit, burst)
	}
}

// NewClient creates a Data API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		limiter: rate.NewLimiter(rate.Limit(10), 5),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetVideo fetches metadata, statistics and status for one video.
func (c *Client) GetVideo(ctx context.Context, auth Auth, videoID string) (*models.Video, error) {
	query := url.Values{
		"part": {"snippet,statistics,status"},
		"id":   {videoID},
	}

	var resp ytVideoListResponse
	if err := c.do(ctx, auth, http.MethodGet, "/videos", query, nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.Items) == 0 {
		return nil, &RemoteError{Kind: KindNotFound, StatusCode: http.StatusNotFound,
			Message: fmt.Sprintf("video %s not found", videoID)}
	}
	return resp.Items[0].toModel(), nil
}

// UpdateVideo replaces the video's title and description.
func (c *Client) UpdateVideo(ctx context.Context, auth Auth, videoID, title, description string) (*models.Video, error) {
	query := url.Values{"part": {"snippet"}}
	body := ytVideoUpdateRequest{
		ID: videoID,
		Snippet: ytSnippet{
			Title:       title,
			Description: description,
			CategoryID:  defaultCategoryID,
		},
	}

	var resp ytVideo
	if err := c.do(ctx, auth, http.MethodPut, "/videos", query, body, &resp); err != nil {
		return nil, err
	}
	return resp.toModel(), nil
}

// ListCommentThreads returns the newest top-level comments with replies.
func (c *Client) ListCommentThreads(ctx context.Context, auth Auth, videoID string, maxResults int) ([]models.Comment, error) {
	if maxResults <= 0 {
		maxResults = 20
	}
	query := url.Values{
		"part":       {"snippet,replies"},
		"videoId":    {videoID},
		"maxResults": {fmt.Sprintf("%d", maxResults)},
		"order":      {"time"},
	}

	var resp ytCommentThreadListResponse
	if err := c.do(ctx, auth, http.MethodGet, "/commentThreads", query, nil, &resp); err != nil {
		return nil, err
	}

	comments := make([]models.Comment, 0, len(resp.Items))
	for _, thread := range resp.Items {
		comments = append(comments, thread.toModel())
	}
	return comments, nil
}

// InsertCommentThread posts a new top-level comment on a video.
func (c *Client) InsertCommentThread(ctx context.Context, auth Auth, videoID, text string) (*models.Comment, error) {
	query := url.Values{"part": {"snippet"}}
	var body ytCommentThreadInsertRequest
	body.Snippet.VideoID = videoID
	body.Snippet.TopLevelComment.Snippet.TextOriginal = text

	var resp ytCommentThread
	if err := c.do(ctx, auth, http.MethodPost, "/commentThreads", query, body, &resp); err != nil {
		return nil, err
	}
	comment := resp.toModel()
	return &comment, nil
}

// InsertComment posts a reply to an existing comment.
func (c *Client) InsertComment(ctx context.Context, auth Auth, parentID, text string) (*models.Comment, error) {
	query := url.Values{"part": {"snippet"}}
	var body ytCommentInsertRequest
	body.Snippet.ParentID = parentID
	body.Snippet.TextOriginal = text

	var resp ytComment
	if err := c.do(ctx, auth, http.MethodPost, "/comments", query, body, &resp); err != nil {
		return nil, err
	}
	comment := resp.toModel()
	return &comment, nil
}

// DeleteComment removes a comment.
func (c *Client) DeleteComment(ctx context.Context, auth Auth, commentID string) error {
	query := url.Values{"id": {commentID}}
	return c.do(ctx, auth, http.MethodDelete, "/comments", query, nil, nil)
}

func (c *Client) do(ctx context.Context, auth Auth, method, path string, query url.Values, body, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	if auth.APIKey != "" {
		query.Set("key", auth.APIKey)
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path+"?"+query.Encode(), bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+auth.BearerToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("request canceled: %w", ctx.Err())
		}
		return &RemoteError{Kind: KindTransient, Message: err.Error()}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RemoteError{Kind: KindTransient, StatusCode: resp.StatusCode, Message: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classify(resp.StatusCode, respBody)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// classify maps a platform error response to the service's error taxonomy.
func classify(statusCode int, body []byte) error {
	var envelope ytErrorResponse
	_ = json.Unmarshal(body, &envelope)

	message := envelope.Error.Message
	if message == "" {
		message = string(body)
	}
	var reason string
	if len(envelope.Error.Errors) > 0 {
		reason = envelope.Error.Errors[0].Reason
	}

	switch {
	case statusCode == http.StatusUnauthorized:
		return fmt.Errorf("%s: %w", message, ErrTokenRejected)
	case statusCode == http.StatusNotFound:
		return &RemoteError{Kind: KindNotFound, StatusCode: statusCode, Reason: reason, Message: message}
	case statusCode == http.StatusTooManyRequests:
		return &RemoteError{Kind: KindRateLimited, StatusCode: statusCode, Reason: reason, Message: message}
	case statusCode == http.StatusForbidden:
		// 403 covers quota exhaustion, auth scope problems and plain
		// feature restrictions (e.g. comments disabled on the video).
		switch reason {
		case "quotaExceeded", "rateLimitExceeded", "userRateLimitExceeded":
			return &RemoteError{Kind: KindRateLimited, StatusCode: statusCode, Reason: reason, Message: message}
		case "authError", "forbidden", "insufficientPermissions":
			return fmt.Errorf("%s (%s): %w", message, reason, ErrTokenRejected)
		default:
			return &RemoteError{Kind: KindValidation, StatusCode: statusCode, Reason: reason, Message: message}
		}
	case statusCode >= 500:
		return &RemoteError{Kind: KindTransient, StatusCode: statusCode, Reason: reason, Message: message}
	default:
		return &RemoteError{Kind: KindValidation, StatusCode: statusCode, Reason: reason, Message: message}
	}
}

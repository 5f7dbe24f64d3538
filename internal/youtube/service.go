// Package youtube exposes the video platform as six domain operations and
// hides every credential concern behind them: expiry checks, single-flight
// refresh, the one retry after an upstream token rejection, and the audit
// event each attempt leaves behind.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vidwarden/vidwarden/internal/auth"
	"github.com/vidwarden/vidwarden/internal/models"
)

//go:generate moq -out api_client_mock.go . APIClient

// APIClient is the raw platform client the gateway drives.
type APIClient interface {
	GetVideo(ctx context.Context, a Auth, videoID string) (*models.Video, error)
	UpdateVideo(ctx context.Context, a Auth, videoID, title, description string) (*models.Video, error)
	ListCommentThreads(ctx context.Context, a Auth, videoID string, maxResults int) ([]models.Comment, error)
	InsertCommentThread(ctx context.Context, a Auth, videoID, text string) (*models.Comment, error)
	InsertComment(ctx context.Context, a Auth, parentID, text string) (*models.Comment, error)
	DeleteComment(ctx context.Context, a Auth, commentID string) error
}

// CredentialProvider hands out valid credentials for write operations.
type CredentialProvider interface {
	EnsureValid(ctx context.Context) (models.Credential, error)
	Invalidate()
}

// Auditor records operation outcomes.
type Auditor interface {
	Record(event *models.AuditEvent)
}

// Compile-time check that Client implements APIClient
var _ APIClient = (*Client)(nil)

// Service is the external API gateway.
type Service struct {
	client      APIClient
	creds       CredentialProvider
	audit       Auditor
	logger      *slog.Logger
	apiKey      string
	callTimeout time.Duration
}

// NewService creates the gateway. apiKey is the service-level key used for
// read-only calls; when empty, reads fall back to the operator credential.
func NewService(client APIClient, creds CredentialProvider, auditor Auditor, apiKey string, callTimeout time.Duration, logger *slog.Logger) *Service {
	return &Service{
		client:      client,
		creds:       creds,
		audit:       auditor,
		apiKey:      apiKey,
		callTimeout: callTimeout,
		logger:      logger,
	}
}

// FetchVideo returns metadata and statistics for one video.
func (s *Service) FetchVideo(ctx context.Context, videoID string, origin *models.RequestOrigin) (*models.Video, error) {
	video, err := readCall(ctx, s, func(ctx context.Context, a Auth) (*models.Video, error) {
		return s.client.GetVideo(ctx, a, videoID)
	})

	s.record(&models.AuditEvent{
		EventType: models.EventVideoFetched,
		VideoID:   videoID,
		Origin:    origin,
	}, err)
	return video, err
}

// UpdateVideo replaces the video's title and description.
func (s *Service) UpdateVideo(ctx context.Context, videoID, title, description string, origin *models.RequestOrigin) (*models.Video, error) {
	video, err := writeCall(ctx, s, func(ctx context.Context, a Auth) (*models.Video, error) {
		return s.client.UpdateVideo(ctx, a, videoID, title, description)
	})

	s.record(&models.AuditEvent{
		EventType: models.EventVideoUpdated,
		VideoID:   videoID,
		Details:   map[string]any{"title": title, "description_length": len(description)},
		Origin:    origin,
	}, err)
	return video, err
}

// ListComments returns the newest top-level comments with their replies.
func (s *Service) ListComments(ctx context.Context, videoID string, maxResults int, origin *models.RequestOrigin) ([]models.Comment, error) {
	comments, err := readCall(ctx, s, func(ctx context.Context, a Auth) ([]models.Comment, error) {
		return s.client.ListCommentThreads(ctx, a, videoID, maxResults)
	})

	s.record(&models.AuditEvent{
		EventType: models.EventUserAction,
		VideoID:   videoID,
		Details:   map[string]any{"action": "list_comments", "returned": len(comments)},
		Origin:    origin,
	}, err)
	return comments, err
}

// AddComment posts a new top-level comment on a video.
func (s *Service) AddComment(ctx context.Context, videoID, text string, origin *models.RequestOrigin) (*models.Comment, error) {
	comment, err := writeCall(ctx, s, func(ctx context.Context, a Auth) (*models.Comment, error) {
		return s.client.InsertCommentThread(ctx, a, videoID, text)
	})

	event := &models.AuditEvent{
		EventType: models.EventCommentAdded,
		VideoID:   videoID,
		Details:   map[string]any{"text_length": len(text)},
		Origin:    origin,
	}
	if comment != nil {
		event.CommentID = comment.ID
	}
	s.record(event, err)
	return comment, err
}

// ReplyToComment posts a reply under an existing comment.
func (s *Service) ReplyToComment(ctx context.Context, commentID, text string, origin *models.RequestOrigin) (*models.Comment, error) {
	reply, err := writeCall(ctx, s, func(ctx context.Context, a Auth) (*models.Comment, error) {
		return s.client.InsertComment(ctx, a, commentID, text)
	})

	event := &models.AuditEvent{
		EventType: models.EventCommentReplied,
		CommentID: commentID,
		Details:   map[string]any{"text_length": len(text)},
		Origin:    origin,
	}
	if reply != nil {
		event.VideoID = reply.VideoID
	}
	s.record(event, err)
	return reply, err
}

// DeleteComment removes a comment.
func (s *Service) DeleteComment(ctx context.Context, commentID string, origin *models.RequestOrigin) error {
	_, err := writeCall(ctx, s, func(ctx context.Context, a Auth) (struct{}, error) {
		return struct{}{}, s.client.DeleteComment(ctx, a, commentID)
	})

	s.record(&models.AuditEvent{
		EventType: models.EventCommentDeleted,
		CommentID: commentID,
		Origin:    origin,
	}, err)
	return err
}

// writeCall runs fn with a valid operator credential. When the platform
// rejects the token despite local validity, the credential is invalidated
// and fn retried exactly once with a freshly ensured token; a second
// rejection is surfaced as ErrUnauthorized rather than retried again.
func writeCall[T any](ctx context.Context, s *Service, fn func(ctx context.Context, a Auth) (T, error)) (T, error) {
	var zero T

	out, err := callOnce(ctx, s, fn)
	if err == nil || !errors.Is(err, ErrTokenRejected) {
		return out, err
	}

	s.logger.Warn("access token rejected upstream, retrying once after refresh")
	s.creds.Invalidate()

	out, err = callOnce(ctx, s, fn)
	if errors.Is(err, ErrTokenRejected) {
		return zero, fmt.Errorf("token rejected after forced refresh: %w", auth.ErrUnauthorized)
	}
	return out, err
}

func callOnce[T any](ctx context.Context, s *Service, fn func(ctx context.Context, a Auth) (T, error)) (T, error) {
	var zero T

	cred, err := s.creds.EnsureValid(ctx)
	if err != nil {
		return zero, err
	}

	cctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	return fn(cctx, Auth{BearerToken: cred.AccessToken})
}

// readCall prefers the service-level API key, which needs no refresh
// machinery at all; without one it rides the write path's credential.
func readCall[T any](ctx context.Context, s *Service, fn func(ctx context.Context, a Auth) (T, error)) (T, error) {
	if s.apiKey == "" {
		return writeCall(ctx, s, fn)
	}

	cctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	return fn(cctx, Auth{APIKey: s.apiKey})
}

// record emits exactly one audit event for a settled operation.
func (s *Service) record(event *models.AuditEvent, err error) {
	event.Success = err == nil
	if err != nil {
		event.ErrorMessage = err.Error()

		var re *RemoteError
		if errors.As(err, &re) {
			if event.Details == nil {
				event.Details = map[string]any{}
			}
			event.Details["error_kind"] = string(re.Kind)
			event.Details["status_code"] = re.StatusCode
		}
	}
	s.audit.Record(event)
}

// Package api defines the JSON types exchanged between the service and its
// HTTP clients.
package api

import (
	"github.com/vidwarden/vidwarden/internal/models"
)

// UpdateVideoRequest is the body of PUT /api/videos/{videoId}.
type UpdateVideoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// AddCommentRequest is the body of POST /api/videos/{videoId}/comments.
type AddCommentRequest struct {
	Text string `json:"text"`
}

// ReplyCommentRequest is the body of POST /api/videos/{videoId}/comments/{commentId}/reply.
type ReplyCommentRequest struct {
	Text string `json:"text"`
}

// CommentListResponse wraps a page of comment threads.
type CommentListResponse struct {
	Comments []models.Comment `json:"comments"`
	Count    int              `json:"count"`
}

// EventListResponse is a page of audit events plus the unpaginated total.
type EventListResponse struct {
	Events []*models.AuditEvent `json:"events"`
	Total  int64                `json:"total"`
	Limit  int                  `json:"limit"`
	Offset int                  `json:"offset"`
}

// StatsResponse wraps the aggregation window results.
type StatsResponse struct {
	VideoID string             `json:"video_id,omitempty"`
	Days    int                `json:"days"`
	Stats   *models.EventStats `json:"stats"`
}

// HealthResponse is the health check body.
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version,omitempty"`
	Authenticated bool   `json:"authenticated"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse carries a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

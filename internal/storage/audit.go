package storage

import (
	"context"
	"time"

	"github.com/vidwarden/vidwarden/internal/models"
)

// AuditStorage defines the append-only audit event log.
// Events are never updated or deleted.
type AuditStorage interface {
	// SaveEvent appends one audit event
	SaveEvent(ctx context.Context, event *models.AuditEvent) error

	// ListEvents returns events matching the filter, newest first
	ListEvents(ctx context.Context, filter models.EventFilter) ([]*models.AuditEvent, error)

	// CountEvents returns the number of events matching the filter
	CountEvents(ctx context.Context, filter models.EventFilter) (int64, error)

	// Stats aggregates events created at or after since, optionally
	// restricted to one video id (empty string means all videos)
	Stats(ctx context.Context, videoID string, since time.Time) (*models.EventStats, error)
}

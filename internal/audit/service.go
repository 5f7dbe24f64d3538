// Package audit records every externally visible operation attempt. The log
// is best effort: recording never blocks an operation and a failed write
// never fails it, but every drop and write error is visible to the operator
// through diagnostics.
package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vidwarden/vidwarden/internal/models"
	"github.com/vidwarden/vidwarden/internal/storage"
)

const (
	defaultBufferSize = 1024
	persistTimeout    = 5 * time.Second
	closeTimeout      = 10 * time.Second
)

// Recorder appends audit events asynchronously and serves the read API.
type Recorder struct {
	storage storage.AuditStorage
	logger  *slog.Logger
	events  chan *models.AuditEvent
	done    chan struct{}
	mu      sync.RWMutex
	closed  bool
}

// NewRecorder creates a recorder and starts its background writer.
func NewRecorder(auditStorage storage.AuditStorage, logger *slog.Logger) *Recorder {
	r := &Recorder{
		storage: auditStorage,
		logger:  logger,
		events:  make(chan *models.AuditEvent, defaultBufferSize),
		done:    make(chan struct{}),
	}
	go r.run()
	return r
}

// Record enqueues one audit event. Fire-and-forget: it stamps the event id
// and creation time, never blocks, and never returns an error to the
// caller. When the buffer is full the event is dropped with a warning.
func (r *Recorder) Record(event *models.AuditEvent) {
	if event == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return
	}

	select {
	case r.events <- event:
	default:
		r.logger.Warn("audit buffer full, event dropped",
			slog.String("event_type", string(event.EventType)),
			slog.String("video_id", event.VideoID))
	}
}

// Close drains pending events and stops the writer. Events recorded after
// Close are dropped.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.events)
	}
	r.mu.Unlock()

	select {
	case <-r.done:
		return nil
	case <-time.After(closeTimeout):
		r.logger.Error("audit recorder close timed out")
		return context.DeadlineExceeded
	}
}

// List returns audit events matching the filter, newest first.
func (r *Recorder) List(ctx context.Context, filter models.EventFilter) ([]*models.AuditEvent, error) {
	return r.storage.ListEvents(ctx, filter)
}

// Count returns the number of events matching the filter.
func (r *Recorder) Count(ctx context.Context, filter models.EventFilter) (int64, error) {
	return r.storage.CountEvents(ctx, filter)
}

// Stats aggregates events over a trailing window, optionally restricted to
// one video.
func (r *Recorder) Stats(ctx context.Context, videoID string, window time.Duration) (*models.EventStats, error) {
	return r.storage.Stats(ctx, videoID, time.Now().Add(-window))
}

func (r *Recorder) run() {
	defer close(r.done)

	for event := range r.events {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		err := r.storage.SaveEvent(ctx, event)
		cancel()

		if err != nil {
			// Swallowed by contract: the triggering operation already
			// returned, and its outcome does not depend on audit durability.
			r.logger.Error("failed to persist audit event",
				slog.Any("error", err),
				slog.String("event_id", event.ID),
				slog.String("event_type", string(event.EventType)))
			continue
		}

		r.logger.Debug("audit event recorded",
			slog.String("event_type", string(event.EventType)),
			slog.String("video_id", event.VideoID),
			slog.Bool("success", event.Success))
	}
}

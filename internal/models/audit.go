package models

import "time"

// EventType classifies audit events.
type EventType string

// Supported event types. The note_* types are part of the audit data
// contract consumed by external collaborators; this service itself only
// emits the video, comment, user_action and api_error types.
const (
	EventVideoFetched   EventType = "video_fetched"
	EventVideoUpdated   EventType = "video_updated"
	EventCommentAdded   EventType = "comment_added"
	EventCommentReplied EventType = "comment_replied"
	EventCommentDeleted EventType = "comment_deleted"
	EventNoteCreated    EventType = "note_created"
	EventNoteUpdated    EventType = "note_updated"
	EventNoteDeleted    EventType = "note_deleted"
	EventAPIError       EventType = "api_error"
	EventUserAction     EventType = "user_action"
)

// Valid reports whether t is one of the supported event types.
func (t EventType) Valid() bool {
	switch t {
	case EventVideoFetched, EventVideoUpdated,
		EventCommentAdded, EventCommentReplied, EventCommentDeleted,
		EventNoteCreated, EventNoteUpdated, EventNoteDeleted,
		EventAPIError, EventUserAction:
		return true
	}
	return false
}

// RequestOrigin carries caller metadata for audit context.
type RequestOrigin struct {
	UserAgent  string `json:"user_agent,omitempty"`
	RemoteAddr string `json:"remote_addr,omitempty"`
}

// AuditEvent is one observed operation attempt. Events are created once the
// operation's outcome is known and are never updated or deleted.
type AuditEvent struct {
	CreatedAt    time.Time      `json:"created_at"`
	Details      map[string]any `json:"details,omitempty"`
	Origin       *RequestOrigin `json:"origin,omitempty"`
	ID           string         `json:"id"`
	EventType    EventType      `json:"event_type"`
	VideoID      string         `json:"video_id,omitempty"`
	CommentID    string         `json:"comment_id,omitempty"`
	NoteID       string         `json:"note_id,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	Success      bool           `json:"success"`
}

// EventFilter selects audit events for the read API. Zero values mean
// "no constraint"; Success is a pointer so false can be filtered on.
type EventFilter struct {
	From      time.Time
	To        time.Time
	Success   *bool
	EventType EventType
	VideoID   string
	Limit     int
	Offset    int
}

// EventTypeCount is the per-type slice of an aggregation window.
type EventTypeCount struct {
	EventType    EventType `json:"event_type"`
	Count        int64     `json:"count"`
	SuccessCount int64     `json:"success_count"`
	ErrorCount   int64     `json:"error_count"`
}

// EventStats aggregates events within a trailing window.
// SuccessRate is a percentage rounded to two decimals.
type EventStats struct {
	PerType          []EventTypeCount `json:"event_types"`
	TotalEvents      int64            `json:"total_events"`
	SuccessfulEvents int64            `json:"successful_events"`
	FailedEvents     int64            `json:"failed_events"`
	SuccessRate      float64          `json:"success_rate"`
}

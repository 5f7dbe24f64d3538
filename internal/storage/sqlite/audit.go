package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/vidwarden/vidwarden/internal/models"
	"github.com/vidwarden/vidwarden/internal/storage"
)

// Compile-time check that Storage implements storage.AuditStorage
var _ storage.AuditStorage = (*Storage)(nil)

const defaultListLimit = 50

// SaveEvent appends one audit event.
func (s *Storage) SaveEvent(ctx context.Context, event *models.AuditEvent) error {
	if event == nil {
		return fmt.Errorf("event is nil")
	}
	if !event.EventType.Valid() {
		return fmt.Errorf("unknown event type: %q", event.EventType)
	}

	var details []byte
	if len(event.Details) > 0 {
		var err error
		details, err = json.Marshal(event.Details)
		if err != nil {
			return fmt.Errorf("failed to marshal details: %w", err)
		}
	}

	var userAgent, remoteAddr string
	if event.Origin != nil {
		userAgent = event.Origin.UserAgent
		remoteAddr = event.Origin.RemoteAddr
	}

	query := `
		INSERT INTO audit_events
			(id, event_type, video_id, comment_id, note_id, details,
			 user_agent, remote_addr, success, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		string(event.EventType),
		nullable(event.VideoID),
		nullable(event.CommentID),
		nullable(event.NoteID),
		nullableBytes(details),
		nullable(userAgent),
		nullable(remoteAddr),
		event.Success,
		nullable(event.ErrorMessage),
		event.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save audit event: %w", err)
	}
	return nil
}

// ListEvents returns events matching the filter, newest first.
func (s *Storage) ListEvents(ctx context.Context, filter models.EventFilter) ([]*models.AuditEvent, error) {
	where, args := buildFilter(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	args = append(args, limit, filter.Offset)

	query := `
		SELECT id, event_type, video_id, comment_id, note_id, details,
		       user_agent, remote_addr, success, error_message, created_at
		FROM audit_events
	` + where + `
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var events []*models.AuditEvent
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return events, nil
}

// CountEvents returns the number of events matching the filter.
func (s *Storage) CountEvents(ctx context.Context, filter models.EventFilter) (int64, error) {
	where, args := buildFilter(filter)

	var count int64
	query := `SELECT COUNT(*) FROM audit_events` + where
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count audit events: %w", err)
	}
	return count, nil
}

// Stats aggregates events created at or after since, optionally restricted
// to one video id. SuccessRate is a percentage rounded to two decimals.
func (s *Storage) Stats(ctx context.Context, videoID string, since time.Time) (*models.EventStats, error) {
	where := ` WHERE created_at >= ?`
	args := []any{since.UTC()}
	if videoID != "" {
		where += ` AND video_id = ?`
		args = append(args, videoID)
	}

	query := `
		SELECT event_type,
		       COUNT(*) AS total,
		       SUM(CASE WHEN success THEN 1 ELSE 0 END) AS success_count
		FROM audit_events
	` + where + `
		GROUP BY event_type
		ORDER BY total DESC
	`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit stats: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	stats := &models.EventStats{}
	for rows.Next() {
		var (
			eventType    string
			total        int64
			successCount int64
		)
		if err := rows.Scan(&eventType, &total, &successCount); err != nil {
			return nil, fmt.Errorf("failed to scan stats row: %w", err)
		}
		stats.PerType = append(stats.PerType, models.EventTypeCount{
			EventType:    models.EventType(eventType),
			Count:        total,
			SuccessCount: successCount,
			ErrorCount:   total - successCount,
		})
		stats.TotalEvents += total
		stats.SuccessfulEvents += successCount
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	stats.FailedEvents = stats.TotalEvents - stats.SuccessfulEvents
	if stats.TotalEvents > 0 {
		rate := float64(stats.SuccessfulEvents) / float64(stats.TotalEvents) * 100
		stats.SuccessRate = math.Round(rate*100) / 100
	}
	return stats, nil
}

// buildFilter translates an EventFilter into a WHERE clause and arguments.
func buildFilter(filter models.EventFilter) (string, []any) {
	var conditions []string
	var args []any

	if filter.EventType != "" {
		conditions = append(conditions, "event_type = ?")
		args = append(args, string(filter.EventType))
	}
	if filter.VideoID != "" {
		conditions = append(conditions, "video_id = ?")
		args = append(args, filter.VideoID)
	}
	if filter.Success != nil {
		conditions = append(conditions, "success = ?")
		args = append(args, *filter.Success)
	}
	if !filter.From.IsZero() {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, filter.From.UTC())
	}
	if !filter.To.IsZero() {
		conditions = append(conditions, "created_at <= ?")
		args = append(args, filter.To.UTC())
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func scanEvent(rows *sql.Rows) (*models.AuditEvent, error) {
	var (
		event        models.AuditEvent
		eventType    string
		videoID      sql.NullString
		commentID    sql.NullString
		noteID       sql.NullString
		details      sql.NullString
		userAgent    sql.NullString
		remoteAddr   sql.NullString
		errorMessage sql.NullString
	)

	if err := rows.Scan(
		&event.ID,
		&eventType,
		&videoID,
		&commentID,
		&noteID,
		&details,
		&userAgent,
		&remoteAddr,
		&event.Success,
		&errorMessage,
		&event.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to scan audit event: %w", err)
	}

	event.EventType = models.EventType(eventType)
	event.VideoID = videoID.String
	event.CommentID = commentID.String
	event.NoteID = noteID.String
	event.ErrorMessage = errorMessage.String

	if details.Valid && details.String != "" {
		if err := json.Unmarshal([]byte(details.String), &event.Details); err != nil {
			return nil, fmt.Errorf("failed to unmarshal details: %w", err)
		}
	}
	if userAgent.Valid || remoteAddr.Valid {
		event.Origin = &models.RequestOrigin{
			UserAgent:  userAgent.String,
			RemoteAddr: remoteAddr.String,
		}
	}
	return &event, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

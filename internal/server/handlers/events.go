package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/vidwarden/vidwarden/internal/models"
	"github.com/vidwarden/vidwarden/pkg/api"
)

const (
	defaultEventPage = 50
	maxEventPage     = 500
	defaultStatsDays = 7
	maxStatsDays     = 90
	recentEventLimit = 10
)

// EventReader is the audit read side the events handler queries.
type EventReader interface {
	List(ctx context.Context, filter models.EventFilter) ([]*models.AuditEvent, error)
	Count(ctx context.Context, filter models.EventFilter) (int64, error)
	Stats(ctx context.Context, videoID string, window time.Duration) (*models.EventStats, error)
}

// EventsHandler serves the audit log read endpoints.
type EventsHandler struct {
	logger *slog.Logger
	events EventReader
}

// NewEventsHandler creates a new handler for audit log queries.
func NewEventsHandler(logger *slog.Logger, events EventReader) *EventsHandler {
	return &EventsHandler{
		logger: logger,
		events: events,
	}
}

// List handles GET /api/event-logs
// Supported query parameters: type, videoId, success, from, to (RFC 3339),
// limit, offset.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, errMsg := parseEventFilter(r.URL.Query())
	if errMsg != "" {
		sendError(w, h.logger, errMsg, http.StatusBadRequest)
		return
	}

	events, err := h.events.List(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list events", slog.Any("error", err))
		sendError(w, h.logger, "internal server error", http.StatusInternalServerError)
		return
	}

	total, err := h.events.Count(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to count events", slog.Any("error", err))
		sendError(w, h.logger, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(w, h.logger, api.EventListResponse{
		Events: events,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, http.StatusOK)
}

// Stats handles GET /api/event-logs/stats
// Aggregates events over a trailing window of `days` (default 7), optionally
// scoped to one videoId.
func (h *EventsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	days := defaultStatsDays
	if raw := query.Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxStatsDays {
			sendError(w, h.logger, "days must be between 1 and 90", http.StatusBadRequest)
			return
		}
		days = n
	}
	videoID := query.Get("videoId")

	stats, err := h.events.Stats(ctx, videoID, time.Duration(days)*24*time.Hour)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to aggregate events", slog.Any("error", err))
		sendError(w, h.logger, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(w, h.logger, api.StatsResponse{
		VideoID: videoID,
		Days:    days,
		Stats:   stats,
	}, http.StatusOK)
}

// Recent handles GET /api/event-logs/recent/{videoId}
// Returns the latest events for one video, newest first.
func (h *EventsHandler) Recent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	videoID := r.PathValue("videoId")
	if videoID == "" {
		sendError(w, h.logger, "videoId is required", http.StatusBadRequest)
		return
	}

	filter := models.EventFilter{
		VideoID: videoID,
		Limit:   recentEventLimit,
	}

	events, err := h.events.List(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list recent events",
			slog.String("video_id", videoID), slog.Any("error", err))
		sendError(w, h.logger, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(w, h.logger, api.EventListResponse{
		Events: events,
		Total:  int64(len(events)),
		Limit:  filter.Limit,
	}, http.StatusOK)
}

func parseEventFilter(query url.Values) (models.EventFilter, string) {
	filter := models.EventFilter{
		Limit:   defaultEventPage,
		VideoID: query.Get("videoId"),
	}

	if raw := query.Get("type"); raw != "" {
		eventType := models.EventType(raw)
		if !eventType.Valid() {
			return filter, "unknown event type: " + raw
		}
		filter.EventType = eventType
	}

	if raw := query.Get("success"); raw != "" {
		success, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, "success must be true or false"
		}
		filter.Success = &success
	}

	if raw := query.Get("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, "from must be an RFC 3339 timestamp"
		}
		filter.From = from
	}
	if raw := query.Get("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, "to must be an RFC 3339 timestamp"
		}
		filter.To = to
	}

	if raw := query.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxEventPage {
			return filter, "limit must be between 1 and 500"
		}
		filter.Limit = n
	}
	if raw := query.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return filter, "offset must be a non-negative integer"
		}
		filter.Offset = n
	}

	return filter, ""
}

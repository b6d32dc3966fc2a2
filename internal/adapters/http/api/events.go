// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/okian/repute/internal/domain/model"
)

// EventDependencies defines the interface for event processing dependencies.
type EventDependencies interface {
	RecordEvent(ctx context.Context, id string, kind model.EventKind, value uint32) (uint32, error)
	SeenAndRecord(ctx context.Context, key string) bool
	Unrecord(ctx context.Context, key string)
}

// EventsHandler handles event requests.
type EventsHandler struct {
	deps EventDependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps EventDependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// eventRequest mirrors the OpenAPI schema for POST /profiles/{id}/events.
type eventRequest struct {
	EventID string          `json:"event_id"`
	Kind    model.EventKind `json:"kind"`
	Value   uint32          `json:"value"`
}

type eventResponse struct {
	Status    string  `json:"status"`
	Duplicate bool    `json:"duplicate"`
	Score     *uint32 `json:"score,omitempty"`
}

// HandlePostEvent handles POST /profiles/{id}/events requests. A repeated
// event_id for the same contributor is acknowledged without being applied.
func (h *EventsHandler) HandlePostEvent(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_event"
	id := chi.URLParam(r, "id")

	var req eventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, op, err)
		return
	}
	if !req.Kind.Valid() {
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, model.ErrUnknownEventKind))
		return
	}

	key := ""
	if eid := strings.TrimSpace(req.EventID); eid != "" {
		key = dedupeKey(id, eid)
		if h.deps.SeenAndRecord(r.Context(), key) {
			writeJSON(w, http.StatusOK, eventResponse{Status: "duplicate", Duplicate: true})
			return
		}
	}

	score, err := h.deps.RecordEvent(r.Context(), id, req.Kind, req.Value)
	if err != nil {
		// Forget the key so the caller can retry.
		if key != "" {
			h.deps.Unrecord(r.Context(), key)
		}
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, eventResponse{Status: "applied", Score: &score})
}

// dedupeKey scopes an event id to its contributor. The id is length
// prefixed so no choice of separator characters can make two pairs meet.
func dedupeKey(id, eventID string) string {
	return strconv.Itoa(len(id)) + ":" + id + "/" + eventID
}

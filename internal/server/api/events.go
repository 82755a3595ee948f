package api

import (
	"net/http"
	"strconv"

	"github.com/BernieSumption/webcam-wave/internal/store"
)

// EventsHandler serves the recorded wave event log.
type EventsHandler struct {
	store *store.Store
}

// NewEventsHandler creates a new EventsHandler with the given store.
func NewEventsHandler(s *store.Store) *EventsHandler {
	return &EventsHandler{store: s}
}

type eventResponse struct {
	ID         string  `json:"id"`
	StartedAt  string  `json:"started_at"`
	EndedAt    *string `json:"ended_at"`
	PeakPixels int     `json:"peak_pixels"`
}

type listEventsResponse struct {
	Events []eventResponse `json:"events"`
}

// toEventResponse converts a store.WaveEvent to its JSON shape.
func toEventResponse(e *store.WaveEvent) eventResponse {
	resp := eventResponse{
		ID:         e.ID,
		StartedAt:  e.StartedAt.Format("2006-01-02T15:04:05Z07:00"),
		PeakPixels: e.PeakPixels,
	}
	if e.EndedAt != nil {
		ended := e.EndedAt.Format("2006-01-02T15:04:05Z07:00")
		resp.EndedAt = &ended
	}
	return resp
}

// ServeHTTP implements the http.Handler interface.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	events, err := h.store.Events().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}

	response := listEventsResponse{
		Events: make([]eventResponse, 0, len(events)),
	}
	for _, e := range events {
		response.Events = append(response.Events, toEventResponse(e))
	}

	writeJSON(w, http.StatusOK, response)
}

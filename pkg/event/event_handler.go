package event

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/citycal/citycal/internal/rest"
	log "github.com/sirupsen/logrus"
)

type eventsResponse struct {
	Events []Event `json:"events"`
}

type eventResponse struct {
	Event Event `json:"event"`
}

type cleanupResponse struct {
	Success bool `json:"success"`
	Removed int  `json:"removed"`
}

type EventHandler struct {
	eventService EventService
}

func NewEventHandler(eventService EventService) *EventHandler {
	return &EventHandler{eventService}
}

// ListEvents serves GET /api/events. Query parameters: upcoming=true drops
// past events, category=<id> (repeatable) keeps events tagged with one of
// the given categories.
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := Filter{
		Upcoming: strings.EqualFold(query.Get("upcoming"), "true"),
	}
	for _, c := range query["category"] {
		if c = strings.TrimSpace(c); c != "" {
			filter.Categories = append(filter.Categories, strings.ToLower(c))
		}
	}

	events := h.eventService.List(r.Context(), filter)
	log.Tracef("Events returned: %d", len(events))
	rest.WriteJSON(w, http.StatusOK, eventsResponse{Events: events})
}

func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var draft Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}

	created, err := h.eventService.Create(r.Context(), draft)
	if err != nil {
		writeServiceError(w, err, "Failed to add event")
		return
	}
	rest.WriteJSON(w, http.StatusCreated, eventResponse{Event: *created})
}

func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var draft Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}

	updated, err := h.eventService.Update(r.Context(), draft.ID, draft)
	if err != nil {
		writeServiceError(w, err, "Failed to update event")
		return
	}
	rest.WriteJSON(w, http.StatusOK, eventResponse{Event: *updated})
}

func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if err := h.eventService.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err, "Failed to delete event")
		return
	}
	rest.WriteJSON(w, http.StatusOK, rest.SuccessResponse{Success: true})
}

func (h *EventHandler) CleanupPastEvents(w http.ResponseWriter, r *http.Request) {
	removed, err := h.eventService.CleanupPast(r.Context())
	if err != nil {
		writeServiceError(w, err, "Failed to clean up past events")
		return
	}
	rest.WriteJSON(w, http.StatusOK, cleanupResponse{Success: true, Removed: removed})
}

func writeServiceError(w http.ResponseWriter, err error, message string) {
	var validationErr *ValidationError
	switch {
	case errors.As(err, &validationErr):
		rest.WriteError(w, http.StatusBadRequest, validationErr.Error(), validationErr.Field)
	case errors.Is(err, ErrEventNotFound):
		rest.WriteError(w, http.StatusNotFound, "Event not found", "")
	default:
		log.Errorf("%s: %v", message, err)
		rest.WriteError(w, http.StatusInternalServerError, message, "")
	}
}

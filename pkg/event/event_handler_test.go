package event

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/citycal/citycal/pkg/datetime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

func setupHandlerTest(now time.Time, events ...Event) (*EventHandler, *StubEventStore) {
	service, store, _ := setupServiceTest(now, events...)
	return NewEventHandler(service), store
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	body, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func TestEventHandler_CreateEvent(t *testing.T) {
	t.Run("Created", func(t *testing.T) {
		handler, store := setupHandlerTest(testNow)
		req := httptest.NewRequest(http.MethodPost, "/api/events", jsonBody(t, validDraft()))
		w := httptest.NewRecorder()

		handler.CreateEvent(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		var body struct {
			Event Event `json:"event"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "TUE", body.Event.Day)
		assert.Equal(t, "JAN 13", body.Event.Date)
		assert.Equal(t, "Free", body.Event.Price)
		assert.Len(t, store.Events(), 1)
	})

	t.Run("Missing title", func(t *testing.T) {
		handler, _ := setupHandlerTest(testNow)
		draft := validDraft()
		draft.Title = ""
		req := httptest.NewRequest(http.MethodPost, "/api/events", jsonBody(t, draft))
		w := httptest.NewRecorder()

		handler.CreateEvent(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var body errorBody
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "Event title is required", body.Error)
		assert.Equal(t, "title", body.Details)
	})

	t.Run("Malformed body", func(t *testing.T) {
		handler, _ := setupHandlerTest(testNow)
		req := httptest.NewRequest(http.MethodPost, "/api/events", bytes.NewBufferString("{"))
		w := httptest.NewRecorder()

		handler.CreateEvent(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Storage failure", func(t *testing.T) {
		handler, store := setupHandlerTest(testNow)
		store.SaveErr = errors.New("boom")
		req := httptest.NewRequest(http.MethodPost, "/api/events", jsonBody(t, validDraft()))
		w := httptest.NewRecorder()

		handler.CreateEvent(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		var body errorBody
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "Failed to add event", body.Error)
	})
}

func TestEventHandler_UpdateEvent(t *testing.T) {
	existing := Event{ID: "event-1", Day: "FRI", Date: "JAN 2", Title: "Old", Tags: []string{}}

	t.Run("Updated", func(t *testing.T) {
		handler, store := setupHandlerTest(testNow, existing)
		draft := validDraft()
		draft.ID = "event-1"
		req := httptest.NewRequest(http.MethodPut, "/api/events", jsonBody(t, draft))
		w := httptest.NewRecorder()

		handler.UpdateEvent(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Craft Fair", store.Events()[0].Title)
	})

	t.Run("Missing id", func(t *testing.T) {
		handler, _ := setupHandlerTest(testNow, existing)
		req := httptest.NewRequest(http.MethodPut, "/api/events", jsonBody(t, validDraft()))
		w := httptest.NewRecorder()

		handler.UpdateEvent(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var body errorBody
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "Event ID is required", body.Error)
	})

	t.Run("Not found", func(t *testing.T) {
		handler, _ := setupHandlerTest(testNow, existing)
		draft := validDraft()
		draft.ID = "event-2"
		req := httptest.NewRequest(http.MethodPut, "/api/events", jsonBody(t, draft))
		w := httptest.NewRecorder()

		handler.UpdateEvent(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		var body errorBody
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "Event not found", body.Error)
	})
}

func TestEventHandler_DeleteEvent(t *testing.T) {
	handler, store := setupHandlerTest(testNow, Event{ID: "event-1", Date: "JAN 2"})

	w := httptest.NewRecorder()
	handler.DeleteEvent(w, httptest.NewRequest(http.MethodDelete, "/api/events?id=event-1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
	assert.Empty(t, store.Events())

	w = httptest.NewRecorder()
	handler.DeleteEvent(w, httptest.NewRequest(http.MethodDelete, "/api/events?id=event-1", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	handler.DeleteEvent(w, httptest.NewRequest(http.MethodDelete, "/api/events", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEventHandler_ListEvents(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, datetime.Pacific)
	handler, _ := setupHandlerTest(now,
		Event{ID: "event-1", Date: "APR 2", Tags: []string{"MUSIC"}},
		Event{ID: "event-2", Date: "MAR 1", Tags: []string{"MUSIC"}},
		Event{ID: "event-3", Date: "MAR 20", Tags: []string{"TECH"}},
	)

	decode := func(t *testing.T, w *httptest.ResponseRecorder) []string {
		var body struct {
			Events []Event `json:"events"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		ids := make([]string, 0, len(body.Events))
		for _, e := range body.Events {
			ids = append(ids, e.ID)
		}
		return ids
	}

	w := httptest.NewRecorder()
	handler.ListEvents(w, httptest.NewRequest(http.MethodGet, "/api/events", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"event-2", "event-3", "event-1"}, decode(t, w))

	w = httptest.NewRecorder()
	handler.ListEvents(w, httptest.NewRequest(http.MethodGet, "/api/events?upcoming=true&category=MUSIC", nil))
	assert.Equal(t, []string{"event-1"}, decode(t, w))
}

func TestEventHandler_ListEvents_EmptyStore(t *testing.T) {
	handler, _ := setupHandlerTest(testNow)

	w := httptest.NewRecorder()
	handler.ListEvents(w, httptest.NewRequest(http.MethodGet, "/api/events", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"events":[]}`, w.Body.String())
}

func TestEventHandler_CleanupPastEvents(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, datetime.Pacific)
	handler, store := setupHandlerTest(now,
		Event{ID: "event-1", Date: "MAR 1"},
		Event{ID: "event-2", Date: "MAR 20"},
	)

	w := httptest.NewRecorder()
	handler.CleanupPastEvents(w, httptest.NewRequest(http.MethodPost, "/api/events/cleanup", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"removed":1}`, w.Body.String())
	assert.Len(t, store.Events(), 1)
}

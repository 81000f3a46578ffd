package feed

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/citycal/citycal/pkg/datetime"
	"github.com/citycal/citycal/pkg/event"
	log "github.com/sirupsen/logrus"
)

type EventLister interface {
	List(ctx context.Context, filter event.Filter) []event.Event
}

type Handler struct {
	events   EventLister
	renderer *Renderer
	cache    *Cache
}

// NewHandler builds the feed handler. cache may be nil to render on every request.
func NewHandler(events EventLister, renderer *Renderer, cache *Cache) *Handler {
	return &Handler{events: events, renderer: renderer, cache: cache}
}

// GetFeed serves upcoming events as text/calendar, honouring the same
// category=<id> filter as the JSON listing.
func (h *Handler) GetFeed(w http.ResponseWriter, r *http.Request) {
	filter := event.Filter{Upcoming: true}
	for _, c := range r.URL.Query()["category"] {
		if c = strings.TrimSpace(c); c != "" {
			filter.Categories = append(filter.Categories, strings.ToLower(c))
		}
	}

	body := h.render(r.Context(), filter)

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="events.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(body)); err != nil {
		log.Errorf("failed to write feed: %v", err)
	}
}

func (h *Handler) render(ctx context.Context, filter event.Filter) string {
	if h.cache == nil {
		return h.renderer.Render(h.events.List(ctx, filter))
	}

	// "upcoming" moves with the calendar day, so the day is part of the key.
	categories := slices.Clone(filter.Categories)
	slices.Sort(categories)
	key := h.renderer.normalizer.Now().Format(datetime.CalendarLayout) + "|" + strings.Join(categories, ",")
	if body, ok := h.cache.Get(key); ok {
		return body
	}

	generation := h.cache.Generation()
	events := h.events.List(ctx, filter)
	body := h.renderer.Render(events)
	// an empty list may be a degraded storage read
	if len(events) > 0 && !h.cache.Put(key, body, generation) {
		log.Debugf("Events changed while rendering feed %s, not caching it", key)
	}
	return body
}

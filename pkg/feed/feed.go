// Package feed publishes upcoming events as an iCalendar subscription.
package feed

import (
	"strings"

	ics "github.com/arran4/golang-ical"
	"github.com/citycal/citycal/pkg/datetime"
	"github.com/citycal/citycal/pkg/event"
	log "github.com/sirupsen/logrus"
)

type Renderer struct {
	normalizer *datetime.Normalizer
	name       string
	domain     string
}

func NewRenderer(normalizer *datetime.Normalizer, name string, domain string) *Renderer {
	return &Renderer{
		normalizer: normalizer,
		name:       name,
		domain:     domain,
	}
}

// Render builds a VCALENDAR with one all-day VEVENT per event. Events whose
// date cannot be parsed are skipped because they have no calendar position.
func (r *Renderer) Render(events []event.Event) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//citycal//events feed//EN")
	cal.SetXWRCalName(r.name)
	cal.SetXWRTimezone(r.normalizer.Location().String())

	stamp := r.normalizer.Now().UTC()
	for _, e := range events {
		start, ok := r.normalizer.ParseDisplay(e.Date)
		if !ok {
			log.Debugf("Skipping event %s in feed, unparseable date %q", e.ID, e.Date)
			continue
		}
		last := start
		if e.EndDate != "" {
			if end, ok := r.normalizer.ParseDisplay(e.EndDate); ok && !end.Before(start) {
				last = end
			}
		}

		vevent := cal.AddEvent(e.ID + "@" + r.domain)
		vevent.SetDtStampTime(stamp)
		vevent.SetAllDayStartAt(start)
		// DTEND of an all-day event is exclusive
		vevent.SetAllDayEndAt(last.AddDate(0, 0, 1))
		vevent.SetSummary(e.Title)
		vevent.SetLocation(e.Location)
		vevent.SetDescription(description(e))
		if e.Link != "" {
			vevent.SetURL(e.Link)
		}
	}
	return cal.Serialize()
}

func description(e event.Event) string {
	parts := make([]string, 0, 3)
	if e.Time != "" {
		parts = append(parts, e.Time)
	}
	if e.Price != "" {
		parts = append(parts, e.Price)
	}
	if len(e.Tags) > 0 {
		parts = append(parts, strings.Join(e.Tags, ", "))
	}
	return strings.Join(parts, " | ")
}

// Package datetime converts between the calendar dates used when editing
// events ("2026-01-13") and the year-less display dates stored on them
// ("JAN 13"). Every computation happens in one fixed civil timezone so that
// weekdays and "has this event passed" do not depend on the server locale.
package datetime

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

const (
	// CalendarLayout is the editable date form.
	CalendarLayout = "2006-01-02"

	// Sentinel returned by WeekdayOf when the calendar date cannot be parsed.
	UnknownWeekday = "TBD"
)

// Pacific is the fixed civil timezone of the calendar.
var Pacific = mustLoadLocation("America/Los_Angeles")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("failed to load location %s: %v", name, err))
	}
	return loc
}

var months = map[string]time.Month{
	"JAN": time.January,
	"FEB": time.February,
	"MAR": time.March,
	"APR": time.April,
	"MAY": time.May,
	"JUN": time.June,
	"JUL": time.July,
	"AUG": time.August,
	"SEP": time.September,
	"OCT": time.October,
	"NOV": time.November,
	"DEC": time.December,
}

type Normalizer struct {
	clock    Clock
	location *time.Location
}

func NewNormalizer(clock Clock, location *time.Location) *Normalizer {
	if location == nil {
		location = Pacific
	}
	return &Normalizer{
		clock:    clock,
		location: location,
	}
}

// Now returns the current moment in the normalizer's timezone.
func (n *Normalizer) Now() time.Time {
	return n.clock.Now().In(n.location)
}

func (n *Normalizer) Location() *time.Location {
	return n.location
}

func (n *Normalizer) currentYear() int {
	return n.Now().Year()
}

// ParseDisplay parses a display date ("JAN 13") in the current year at noon.
// Full month names and any letter case are accepted.
func (n *Normalizer) ParseDisplay(display string) (time.Time, bool) {
	fields := strings.Fields(strings.ToUpper(display))
	if len(fields) != 2 || len(fields[0]) < 3 {
		return time.Time{}, false
	}
	month, ok := months[fields[0][:3]]
	if !ok {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(fields[1])
	if err != nil {
		return time.Time{}, false
	}
	return n.dateAtNoon(n.currentYear(), month, day)
}

// ParseCalendar parses a calendar date ("2026-01-13") at noon.
func (n *Normalizer) ParseCalendar(calendarDate string) (time.Time, bool) {
	t, err := time.ParseInLocation(CalendarLayout, strings.TrimSpace(calendarDate), n.location)
	if err != nil {
		return time.Time{}, false
	}
	return n.dateAtNoon(t.Year(), t.Month(), t.Day())
}

// dateAtNoon pins a date to 12:00 so DST transitions never shift the day.
// Out-of-range days (FEB 30) are rejected instead of rolled over.
func (n *Normalizer) dateAtNoon(year int, month time.Month, day int) (time.Time, bool) {
	t := time.Date(year, month, day, 12, 0, 0, 0, n.location)
	if t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// ToEditableDate turns "JAN 13" into "2026-01-13" using the current year.
// Returns "" when the display date cannot be parsed.
func (n *Normalizer) ToEditableDate(display string) string {
	t, ok := n.ParseDisplay(display)
	if !ok {
		return ""
	}
	return t.Format(CalendarLayout)
}

// ToDisplayDate turns "2026-01-13" into "JAN 13". Unparseable input is
// returned unchanged.
func (n *Normalizer) ToDisplayDate(calendarDate string) string {
	t, ok := n.ParseCalendar(calendarDate)
	if !ok {
		return calendarDate
	}
	return formatDisplay(t)
}

// WeekdayOf returns the upper-case weekday abbreviation of a calendar date,
// or UnknownWeekday.
func (n *Normalizer) WeekdayOf(calendarDate string) string {
	t, ok := n.ParseCalendar(calendarDate)
	if !ok {
		return UnknownWeekday
	}
	return weekday(t)
}

// WeekdayOfDisplay returns the weekday of a display date in the current
// year, or "".
func (n *Normalizer) WeekdayOfDisplay(display string) string {
	t, ok := n.ParseDisplay(display)
	if !ok {
		return ""
	}
	return weekday(t)
}

// FormatRange renders "TUE JAN 13" or "TUE JAN 13 - THU JAN 15".
func (n *Normalizer) FormatRange(start, end, startWeekday string) string {
	if end != "" {
		return fmt.Sprintf("%s %s - %s %s", startWeekday, start, n.WeekdayOfDisplay(end), end)
	}
	if startWeekday == "" {
		return start
	}
	return startWeekday + " " + start
}

// SortKey is the moment an event is ordered by. Unparseable dates sort as
// the current moment.
func (n *Normalizer) SortKey(display string) time.Time {
	t, ok := n.ParseDisplay(display)
	if !ok {
		return n.Now()
	}
	return t
}

// HasPassed reports whether the effective date (endDate when present) ended
// before the start of today. Unparseable dates are never considered passed.
func (n *Normalizer) HasPassed(date, endDate string) bool {
	effective := date
	if endDate != "" {
		effective = endDate
	}
	eventDay := n.SortKey(effective)
	y, m, d := eventDay.Date()
	endOfEventDay := time.Date(y, m, d, 23, 59, 59, 999_000_000, n.location)

	now := n.Now()
	ny, nm, nd := now.Date()
	startOfToday := time.Date(ny, nm, nd, 0, 0, 0, 0, n.location)

	return endOfEventDay.Before(startOfToday)
}

func formatDisplay(t time.Time) string {
	return fmt.Sprintf("%s %d", strings.ToUpper(t.Month().String()[:3]), t.Day())
}

func weekday(t time.Time) string {
	return strings.ToUpper(t.Weekday().String()[:3])
}

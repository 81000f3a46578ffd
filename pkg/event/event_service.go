package event

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/citycal/citycal/internal/event_bus"
	"github.com/citycal/citycal/pkg/category"
	"github.com/citycal/citycal/pkg/datetime"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
)

type EventService interface {
	List(ctx context.Context, filter Filter) []Event
	Create(ctx context.Context, draft Draft) (*Event, error)
	Update(ctx context.Context, id string, draft Draft) (*Event, error)
	Delete(ctx context.Context, id string) error
	CleanupPast(ctx context.Context) (int, error)
}

// EventServiceImpl runs every mutation as one Load, an in-memory change and
// one Save. There is no locking: concurrent writers race and the last Save wins.
type EventServiceImpl struct {
	store      Store
	normalizer *datetime.Normalizer
	validate   *validator.Validate
	eventBus   *event_bus.EventBus
}

// NewEventService builds the service. eventBus may be nil when nobody listens
// for collection changes.
func NewEventService(store Store, normalizer *datetime.Normalizer, eventBus *event_bus.EventBus) *EventServiceImpl {
	return &EventServiceImpl{
		store:      store,
		normalizer: normalizer,
		validate:   newValidator(),
		eventBus:   eventBus,
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// List returns the stored events ordered by start date. A storage failure is
// logged and yields an empty list so the public listing keeps rendering.
func (s *EventServiceImpl) List(ctx context.Context, filter Filter) []Event {
	events, err := s.store.Load(ctx)
	if err != nil {
		log.Errorf("failed to load events, returning empty list: %v", err)
		return []Event{}
	}

	result := make([]Event, 0, len(events))
	// one "now" per call so every unparseable date gets the same key
	now := s.normalizer.Now()
	sortKeys := make([]time.Time, 0, len(events))
	for _, e := range events {
		if filter.Upcoming && s.HasPassed(e) {
			continue
		}
		if !category.MatchesAny(e.Tags, filter.Categories) {
			continue
		}
		if e.Tags == nil {
			e.Tags = []string{}
		}
		key, ok := s.normalizer.ParseDisplay(e.Date)
		if !ok {
			key = now
		}
		result = append(result, e)
		sortKeys = append(sortKeys, key)
	}

	sort.Stable(byKey{events: result, keys: sortKeys})
	return result
}

// byKey sorts events together with their precomputed sort keys.
type byKey struct {
	events []Event
	keys   []time.Time
}

func (b byKey) Len() int           { return len(b.events) }
func (b byKey) Less(i, j int) bool { return b.keys[i].Before(b.keys[j]) }
func (b byKey) Swap(i, j int) {
	b.events[i], b.events[j] = b.events[j], b.events[i]
	b.keys[i], b.keys[j] = b.keys[j], b.keys[i]
}

func (s *EventServiceImpl) Create(ctx context.Context, draft Draft) (*Event, error) {
	draft = trimDraft(draft)
	if err := s.validateDraft(draft); err != nil {
		return nil, err
	}

	events, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}

	event := s.fromDraft(s.newID(events), draft)
	events = append(events, event)
	if err := s.store.Save(ctx, events); err != nil {
		return nil, fmt.Errorf("failed to save events: %w", err)
	}

	log.Infof("Created event %s (%s on %s)", event.ID, event.Title, event.Date)
	s.publishChange(ctx, "created", []string{event.ID}, len(events))
	return &event, nil
}

func (s *EventServiceImpl) Update(ctx context.Context, id string, draft Draft) (*Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, &ValidationError{Field: "id"}
	}
	draft = trimDraft(draft)
	if err := s.validateDraft(draft); err != nil {
		return nil, err
	}

	events, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}

	index := slices.IndexFunc(events, func(e Event) bool { return e.ID == id })
	if index == -1 {
		return nil, ErrEventNotFound
	}

	event := s.fromDraft(id, draft)
	events[index] = event
	if err := s.store.Save(ctx, events); err != nil {
		return nil, fmt.Errorf("failed to save events: %w", err)
	}

	log.Infof("Updated event %s", id)
	s.publishChange(ctx, "updated", []string{id}, len(events))
	return &event, nil
}

func (s *EventServiceImpl) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return &ValidationError{Field: "id"}
	}

	events, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load events: %w", err)
	}

	remaining := slices.DeleteFunc(slices.Clone(events), func(e Event) bool { return e.ID == id })
	if len(remaining) == len(events) {
		return ErrEventNotFound
	}

	if err := s.store.Save(ctx, remaining); err != nil {
		return fmt.Errorf("failed to save events: %w", err)
	}

	log.Infof("Deleted event %s", id)
	s.publishChange(ctx, "deleted", []string{id}, len(remaining))
	return nil
}

// CleanupPast removes every event whose effective date has passed and saves
// the survivors once.
func (s *EventServiceImpl) CleanupPast(ctx context.Context) (int, error) {
	events, err := s.store.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load events: %w", err)
	}

	survivors := make([]Event, 0, len(events))
	var removedIDs []string
	for _, e := range events {
		if s.HasPassed(e) {
			removedIDs = append(removedIDs, e.ID)
			continue
		}
		survivors = append(survivors, e)
	}
	removed := len(events) - len(survivors)
	if removed == 0 {
		log.Debug("No past events to clean up")
		return 0, nil
	}

	if err := s.store.Save(ctx, survivors); err != nil {
		return 0, fmt.Errorf("failed to save events: %w", err)
	}

	log.Infof("Removed %d past event(s)", removed)
	s.publishChange(ctx, "cleanup", removedIDs, len(survivors))
	return removed, nil
}

// publishChange notifies subscribers after a successful save. Subscriber
// failures are logged and never undo the mutation.
func (s *EventServiceImpl) publishChange(ctx context.Context, action string, ids []string, total int) {
	if s.eventBus == nil {
		return
	}
	err := s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.EventsChangedType, event_bus.EventsChanged{
		Action: action,
		IDs:    ids,
		Total:  total,
	}))
	if err != nil {
		log.Errorf("failed to publish events change: %v", err)
	}
}

func (s *EventServiceImpl) HasPassed(e Event) bool {
	return s.normalizer.HasPassed(e.Date, e.EndDate)
}

func (s *EventServiceImpl) validateDraft(draft Draft) error {
	err := s.validate.Struct(draft)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		return &ValidationError{Field: validationErrors[0].Field()}
	}
	return fmt.Errorf("failed to validate event: %w", err)
}

// fromDraft derives the stored record: display dates, weekday and price label.
func (s *EventServiceImpl) fromDraft(id string, draft Draft) Event {
	start := s.calendarDate(draft.Date)

	endDate := ""
	if draft.EndDate != "" {
		endDate = s.normalizer.ToDisplayDate(s.calendarDate(draft.EndDate))
	}

	tags := make([]string, 0, len(draft.Tags))
	for _, tag := range draft.Tags {
		if _, ok := category.ByName(tag); !ok {
			log.Warnf("Event %s has tag %q which is not a known category", id, tag)
		}
		tags = append(tags, tag)
	}

	return Event{
		ID:       id,
		Day:      s.normalizer.WeekdayOf(start),
		Date:     s.normalizer.ToDisplayDate(start),
		EndDate:  endDate,
		Time:     draft.Time,
		Title:    draft.Title,
		Location: draft.Location,
		Price:    FormatPrice(PriceAmount(draft.Price)),
		Tags:     tags,
		Link:     draft.Link,
	}
}

// calendarDate accepts either "2026-01-13" or a display date such as "JAN 13".
// Anything else is passed through and ends up stored as typed.
func (s *EventServiceImpl) calendarDate(input string) string {
	if _, ok := s.normalizer.ParseCalendar(input); ok {
		return input
	}
	if editable := s.normalizer.ToEditableDate(input); editable != "" {
		return editable
	}
	return input
}

func (s *EventServiceImpl) newID(existing []Event) string {
	millis := s.normalizer.Now().UnixMilli()
	for {
		id := fmt.Sprintf("event-%d", millis)
		if !slices.ContainsFunc(existing, func(e Event) bool { return e.ID == id }) {
			return id
		}
		millis++
	}
}

func trimDraft(d Draft) Draft {
	d.ID = strings.TrimSpace(d.ID)
	d.Title = strings.TrimSpace(d.Title)
	d.Date = strings.TrimSpace(d.Date)
	d.EndDate = strings.TrimSpace(d.EndDate)
	d.Location = strings.TrimSpace(d.Location)
	d.Link = strings.TrimSpace(d.Link)
	d.Time = strings.TrimSpace(d.Time)
	d.Price = strings.TrimSpace(d.Price)
	return d
}

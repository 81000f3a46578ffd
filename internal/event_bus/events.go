package event_bus

const EventsChangedType EventType = "events.changed"

// EventsChanged is published after the stored collection was saved.
// Action is one of "created", "updated", "deleted", "cleanup" or "migrated".
type EventsChanged struct {
	Action string
	IDs    []string
	Total  int
}

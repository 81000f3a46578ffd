package event

import (
	"context"
	"slices"
	"sync"
)

// StubEventStore keeps the collection in memory. LoadErr and SaveErr let
// tests simulate an unavailable backend.
type StubEventStore struct {
	mu      sync.Mutex
	events  []Event
	saves   int
	LoadErr error
	SaveErr error
}

func NewStubEventStore(events ...Event) *StubEventStore {
	return &StubEventStore{events: slices.Clone(events)}
}

func (s *StubEventStore) Load(ctx context.Context) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	if s.events == nil {
		return []Event{}, nil
	}
	return slices.Clone(s.events), nil
}

func (s *StubEventStore) Save(ctx context.Context, events []Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.events = slices.Clone(events)
	s.saves++
	return nil
}

// Events returns the stored collection (useful for test assertions).
func (s *StubEventStore) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.events)
}

func (s *StubEventStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/citycal/citycal/internal/event_bus"
	log "github.com/sirupsen/logrus"
)

var ErrNoRemoteBackend = errors.New("no remote storage backend configured")

// Migrator copies the local file collection into the remote backend. It is
// meant to run once when promoting a local setup: running it again
// overwrites whatever the remote holds with the local file.
type Migrator struct {
	local    *FileStore
	remote   Store
	eventBus *event_bus.EventBus
}

// NewMigrator builds a migrator; eventBus may be nil.
func NewMigrator(local *FileStore, remote Store, eventBus *event_bus.EventBus) *Migrator {
	return &Migrator{local: local, remote: remote, eventBus: eventBus}
}

// Migrate returns the number of copied events. An empty local file copies
// nothing and leaves the remote untouched.
func (m *Migrator) Migrate(ctx context.Context) (int, error) {
	if m.remote == nil || m.remote.Backend() == BackendFile {
		return 0, ErrNoRemoteBackend
	}

	events, err := m.local.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load local events: %w", err)
	}
	if len(events) == 0 {
		log.Infof("No local events in %s, nothing to migrate", m.local.Path())
		return 0, nil
	}

	if err := m.remote.Save(ctx, events); err != nil {
		return 0, fmt.Errorf("failed to save events to %s: %w", m.remote.Backend(), err)
	}
	log.Infof("Migrated %d events to %s", len(events), m.remote.Backend())
	if m.eventBus != nil {
		change := event_bus.EventsChanged{Action: "migrated", Total: len(events)}
		if err := m.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.EventsChangedType, change)); err != nil {
			log.Errorf("failed to publish migration: %v", err)
		}
	}
	return len(events), nil
}

package app

import (
	"context"
	"fmt"

	"github.com/citycal/citycal/internal/config"
	"github.com/citycal/citycal/internal/event_bus"
	"github.com/citycal/citycal/pkg/category"
	"github.com/citycal/citycal/pkg/cleanup"
	"github.com/citycal/citycal/pkg/datetime"
	"github.com/citycal/citycal/pkg/event"
	"github.com/citycal/citycal/pkg/feed"
	"github.com/citycal/citycal/pkg/storage"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock      datetime.Clock
	Normalizer *datetime.Normalizer
	EventBus   *event_bus.EventBus

	Store           storage.Store
	Migrator        *storage.Migrator
	MigratorHandler *storage.MigratorHandler

	EventService event.EventService
	EventHandler *event.EventHandler

	CategoryHandler *category.Handler

	FeedHandler *feed.Handler

	// nil when no cleanup schedule is configured
	CleanupScheduler *cleanup.Scheduler
}

// BuildDependencies opens the configured storage and wires all services and handlers.
func BuildDependencies(ctx context.Context, cfg config.Application) (*Dependencies, error) {
	store, err := storage.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return buildDependencies(cfg, store, &datetime.SystemClock{})
}

func buildDependencies(cfg config.Application, store storage.Store, clock datetime.Clock) (*Dependencies, error) {
	deps := &Dependencies{}

	deps.Clock = clock
	deps.Normalizer = datetime.NewNormalizer(deps.Clock, datetime.Pacific)
	deps.EventBus = event_bus.NewEventBus()

	deps.Store = store
	deps.Migrator = storage.NewMigrator(storage.NewFileStore(cfg.Storage.File.Path), deps.Store, deps.EventBus)
	deps.MigratorHandler = storage.NewMigratorHandler(deps.Migrator)

	eventService := event.NewEventService(deps.Store, deps.Normalizer, deps.EventBus)
	deps.EventService = eventService
	deps.EventHandler = event.NewEventHandler(deps.EventService)

	deps.CategoryHandler = category.NewHandler()

	renderer := feed.NewRenderer(deps.Normalizer, cfg.Feed.Name, cfg.Feed.Domain)
	deps.FeedHandler = feed.NewHandler(deps.EventService, renderer, feed.NewCache(deps.EventBus))

	if cfg.Cleanup.Schedule != "" {
		scheduler, err := cleanup.NewScheduler(eventService, cfg.Cleanup.Schedule, datetime.Pacific)
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("failed to create cleanup scheduler: %w", err)
		}
		deps.CleanupScheduler = scheduler
	}

	return deps, nil
}

// Close releases the storage connection.
func (d *Dependencies) Close() error {
	if d.Store == nil {
		return nil
	}
	return d.Store.Close()
}

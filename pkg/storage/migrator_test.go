package storage

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/citycal/citycal/internal/event_bus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrator_Migrate(t *testing.T) {
	ctx := context.Background()

	t.Run("Copies local events to remote", func(t *testing.T) {
		local := NewFileStore(filepath.Join(t.TempDir(), "events.json"))
		require.NoError(t, local.Save(ctx, testEvents))
		remote, _ := setupRedisStore(t)

		migrated, err := NewMigrator(local, remote, nil).Migrate(ctx)

		require.NoError(t, err)
		assert.Equal(t, 2, migrated)
		events, err := remote.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, testEvents, events)
	})

	t.Run("Empty local file leaves remote untouched", func(t *testing.T) {
		local := NewFileStore(filepath.Join(t.TempDir(), "events.json"))
		remote, _ := setupRedisStore(t)
		require.NoError(t, remote.Save(ctx, testEvents[:1]))

		migrated, err := NewMigrator(local, remote, nil).Migrate(ctx)

		require.NoError(t, err)
		assert.Equal(t, 0, migrated)
		events, err := remote.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, testEvents[:1], events)
	})

	t.Run("Running twice overwrites remote with local data", func(t *testing.T) {
		local := NewFileStore(filepath.Join(t.TempDir(), "events.json"))
		require.NoError(t, local.Save(ctx, testEvents[:1]))
		remote, _ := setupRedisStore(t)
		migrator := NewMigrator(local, remote, nil)

		_, err := migrator.Migrate(ctx)
		require.NoError(t, err)
		require.NoError(t, remote.Save(ctx, testEvents))
		_, err = migrator.Migrate(ctx)
		require.NoError(t, err)

		events, err := remote.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, testEvents[:1], events)
	})

	t.Run("File backend has no remote", func(t *testing.T) {
		local := NewFileStore(filepath.Join(t.TempDir(), "events.json"))

		_, err := NewMigrator(local, local, nil).Migrate(ctx)
		assert.ErrorIs(t, err, ErrNoRemoteBackend)

		_, err = NewMigrator(local, nil, nil).Migrate(ctx)
		assert.ErrorIs(t, err, ErrNoRemoteBackend)
	})
}

func TestMigratorHandler_Migrate(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		local := NewFileStore(filepath.Join(t.TempDir(), "events.json"))
		require.NoError(t, local.Save(ctx, testEvents))
		remote, _ := setupRedisStore(t)
		handler := NewMigratorHandler(NewMigrator(local, remote, nil))
		w := httptest.NewRecorder()

		handler.Migrate(w, httptest.NewRequest(http.MethodGet, "/api/migrate", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Success  bool `json:"success"`
			Migrated int  `json:"migrated"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.True(t, body.Success)
		assert.Equal(t, 2, body.Migrated)
	})

	t.Run("Failure", func(t *testing.T) {
		local := NewFileStore(filepath.Join(t.TempDir(), "events.json"))
		handler := NewMigratorHandler(NewMigrator(local, local, nil))
		w := httptest.NewRecorder()

		handler.Migrate(w, httptest.NewRequest(http.MethodGet, "/api/migrate", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		var body struct {
			Error   string `json:"error"`
			Details string `json:"details"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "Failed to migrate events", body.Error)
		assert.Equal(t, ErrNoRemoteBackend.Error(), body.Details)
	})
}

func TestMigrator_PublishesMigration(t *testing.T) {
	ctx := context.Background()
	bus := event_bus.NewEventBus()
	var changes []event_bus.EventsChanged
	event_bus.SubscribeTyped(bus, event_bus.EventsChangedType, func(e event_bus.EventT[event_bus.EventsChanged]) error {
		changes = append(changes, e.Data)
		return nil
	})
	local := NewFileStore(filepath.Join(t.TempDir(), "events.json"))
	require.NoError(t, local.Save(ctx, testEvents))
	remote, _ := setupRedisStore(t)

	_, err := NewMigrator(local, remote, bus).Migrate(ctx)

	require.NoError(t, err)
	assert.Equal(t, []event_bus.EventsChanged{{Action: "migrated", Total: 2}}, changes)
}

package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/citycal/citycal/pkg/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEvents = []event.Event{
	{ID: "event-1", Day: "TUE", Date: "JAN 13", Time: "7:00 PM", Title: "Craft Fair", Location: "Civic Center", Price: "Free", Tags: []string{"MARKET"}, Link: "https://x.com"},
	{ID: "event-2", Day: "THU", Date: "JAN 15", EndDate: "JAN 17", Time: "10:00 AM", Title: "Zine Workshop", Location: "Library", Price: "From $5", Tags: []string{}},
}

func TestFileStore_LoadMissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), ".data", "events.json"))

	events, err := store.Load(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestFileStore_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".data", "events.json")
	store := NewFileStore(path)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testEvents))

	events, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, testEvents, events)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  {\n    \"id\": \"event-1\"")
	assert.NotContains(t, string(raw), `"endDate": ""`)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestFileStore_SaveReplacesCollection(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "events.json"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testEvents))
	require.NoError(t, store.Save(ctx, nil))

	events, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestFileStore_MalformedData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileStore(path).Load(context.Background())

	assert.ErrorContains(t, err, "malformed stored events")
}

func TestFileStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewFileStore(filepath.Join(t.TempDir(), "events.json"))

	assert.ErrorIs(t, store.Save(ctx, testEvents), context.Canceled)
	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

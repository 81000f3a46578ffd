package cleanup

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/citycal/citycal/pkg/datetime"
	"github.com/citycal/citycal/pkg/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCleaner struct {
	calls atomic.Int32
	err   error
}

func (c *countingCleaner) CleanupPast(ctx context.Context) (int, error) {
	c.calls.Add(1)
	return 0, c.err
}

func TestNewScheduler_InvalidSchedule(t *testing.T) {
	_, err := NewScheduler(&countingCleaner{}, "every day", datetime.Pacific)
	assert.Error(t, err)
}

func TestScheduler_Run(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, datetime.Pacific)
	store := event.NewStubEventStore(
		event.Event{ID: "event-1", Date: "MAR 1"},
		event.Event{ID: "event-2", Date: "MAR 20"},
	)
	service := event.NewEventService(store, datetime.NewNormalizer(&datetime.MockClock{FixedNow: now}, datetime.Pacific), nil)

	scheduler, err := NewScheduler(service, "0 3 * * *", datetime.Pacific)
	require.NoError(t, err)

	scheduler.Run()

	assert.Equal(t, []event.Event{{ID: "event-2", Date: "MAR 20"}}, store.Events())
}

func TestScheduler_RunFailureIsLogged(t *testing.T) {
	cleaner := &countingCleaner{err: errors.New("redis down")}
	scheduler, err := NewScheduler(cleaner, "@hourly", datetime.Pacific)
	require.NoError(t, err)

	assert.NotPanics(t, scheduler.Run)
	assert.Equal(t, int32(1), cleaner.calls.Load())
}

func TestScheduler_StartStop(t *testing.T) {
	cleaner := &countingCleaner{}
	scheduler, err := NewScheduler(cleaner, "@every 1s", datetime.Pacific)
	require.NoError(t, err)

	scheduler.Start()
	assert.Eventually(t, func() bool { return cleaner.calls.Load() > 0 }, 3*time.Second, 20*time.Millisecond)

	select {
	case <-scheduler.Stop().Done():
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

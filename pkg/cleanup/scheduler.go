// Package cleanup removes past events on a cron schedule.
package cleanup

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

type Cleaner interface {
	CleanupPast(ctx context.Context) (int, error)
}

type Scheduler struct {
	cron    *cron.Cron
	cleaner Cleaner
	timeout time.Duration
}

// NewScheduler validates the standard 5-field cron expression and registers the
// cleanup job. Schedules are evaluated in the given location.
func NewScheduler(cleaner Cleaner, schedule string, location *time.Location) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(cron.WithLocation(location)),
		cleaner: cleaner,
		timeout: time.Minute,
	}
	if _, err := s.cron.AddFunc(schedule, s.Run); err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Run performs one cleanup. Failures are logged; the next tick retries.
func (s *Scheduler) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	removed, err := s.cleaner.CleanupPast(ctx)
	if err != nil {
		log.Errorf("scheduled cleanup failed: %v", err)
		return
	}
	log.Infof("Scheduled cleanup removed %d past event(s)", removed)
}

func (s *Scheduler) Start() {
	log.Infof("Starting past event cleanup scheduler")
	s.cron.Start()
}

// Stop halts the scheduler and returns a context done once a running job finishes.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

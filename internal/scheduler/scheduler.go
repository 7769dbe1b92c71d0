package scheduler

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-dashboard/internal/dashboard"
)

// Source lists the dashboards to refresh on each run.
type Source interface {
	Located() map[string]*dashboard.Dashboard
	Prune() int
}

// Scheduler periodically refreshes every located dashboard.
type Scheduler struct {
	scheduler *gocron.Scheduler
	source    Source
	interval  time.Duration
	timeout   time.Duration
}

// New creates a new Scheduler. An interval <= 0 disables it.
func New(source Source, interval time.Duration) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		source:    source,
		interval:  interval,
		timeout:   30 * time.Second,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		log.Println("INFO: scheduler: refresh disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).WaitForSchedule().SingletonMode().Do(s.RunOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	log.Printf("INFO: scheduler: refreshing located dashboards every %s", s.interval)
	return nil
}

// RunOnce prunes idle sessions and refreshes the rest concurrently.
func (s *Scheduler) RunOnce() {
	if n := s.source.Prune(); n > 0 {
		log.Printf("INFO: scheduler: pruned %d idle sessions", n)
	}

	targets := s.source.Located()
	if len(targets) == 0 {
		return
	}
	log.Printf("DEBUG: scheduler: refreshing %d dashboards", len(targets))

	var wg sync.WaitGroup
	for id, d := range targets {
		wg.Add(1)
		go func(id string, d *dashboard.Dashboard) {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
			defer cancel()

			err := d.Refresh(ctx)
			switch {
			case err == nil:
			case errors.Is(err, dashboard.ErrBusy), errors.Is(err, dashboard.ErrSuperseded):
				log.Printf("DEBUG: scheduler: skipped session %s: %v", id, err)
			default:
				log.Printf("ERROR: scheduler: refresh failed for session %s: %v", id, err)
			}
		}(id, d)
	}
	wg.Wait()
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// RefreshFunc rewrites the cache file at path.
type RefreshFunc func(ctx context.Context, path string) error

// Scheduler periodically re-downloads the indicators and replaces the cache
// file. The dataset already served by the running process is left untouched;
// the new file is picked up on the next start.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresh   RefreshFunc
	path      string
	interval  time.Duration
	timeout   time.Duration
}

// New creates a new Scheduler.
func New(path string, interval, timeout time.Duration, refresh RefreshFunc) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		refresh:   refresh,
		path:      path,
		interval:  interval,
		timeout:   timeout,
	}
}

// Start schedules the refresh job and starts the underlying scheduler.
// A zero interval disables the job.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		log.Println("scheduler: refresh disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	log.Printf("scheduler: refreshing %s every %s", s.path, s.interval)
	return nil
}

func (s *Scheduler) run() {
	log.Println("scheduler: running cache refresh job")

	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if err := s.refresh(ctx, s.path); err != nil {
		log.Printf("scheduler: refresh of %s failed: %v", s.path, err)
		return
	}
	log.Println("scheduler: completed cache refresh job")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

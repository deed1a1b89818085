package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

// Syncer copies the authoritative snapshot of one world.
type Syncer interface {
	SyncWorld(ctx context.Context, worldID string) error
}

// Scheduler periodically syncs snapshots for configured worlds.
type Scheduler struct {
	scheduler *gocron.Scheduler
	syncer    Syncer
	worlds    []string
	interval  time.Duration
	timeout   time.Duration
}

// New creates a new Scheduler.
func New(worlds []string, interval time.Duration, syncer Syncer) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		syncer:    syncer,
		worlds:    worlds,
		interval:  interval,
		timeout:   30 * time.Second,
	}
}

// Start schedules the periodic job and starts the underlying scheduler. The
// first run happens immediately.
func (s *Scheduler) Start() error {
	if len(s.worlds) == 0 {
		log.Println("scheduler: no worlds configured; nothing to schedule")
		return nil
	}

	interval := s.interval
	if interval < time.Second {
		interval = time.Minute
	}

	_, err := s.scheduler.Every(interval).Do(s.RunOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce syncs every world concurrently and waits for all of them.
func (s *Scheduler) RunOnce() {
	log.Println("scheduler: running snapshot sync job")

	var wg sync.WaitGroup
	for _, worldID := range s.worlds {
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
			defer cancel()

			if err := s.syncer.SyncWorld(ctx, worldID); err != nil {
				log.Printf("scheduler: sync failed for %s: %v", worldID, err)
			}
		}()
	}
	wg.Wait()
	log.Println("scheduler: completed snapshot sync job")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

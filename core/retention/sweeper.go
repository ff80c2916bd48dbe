package retention

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Store is the slice of the job store the sweeper needs
type Store interface {
	DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Sweeper periodically deletes finished jobs older than the TTL. The
// dispatch core itself never deletes jobs; eviction is this collaborator's
// whole responsibility.
type Sweeper struct {
	store    Store
	ttl      time.Duration
	schedule string
	cron     *cron.Cron
}

// NewSweeper creates a sweeper. schedule is a standard cron expression;
// leave it empty for the default hourly run.
func NewSweeper(store Store, ttl time.Duration, schedule string) *Sweeper {
	if schedule == "" {
		schedule = "@hourly"
	}
	return &Sweeper{
		store:    store,
		ttl:      ttl,
		schedule: schedule,
	}
}

// Start begins the sweep schedule. A zero or negative TTL disables the
// sweeper entirely: finished jobs are then retained forever.
func (s *Sweeper) Start() error {
	if s.ttl <= 0 {
		log.Println("retention: disabled, finished jobs are kept")
		return nil
	}

	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.schedule, s.Sweep); err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("retention: sweeping finished jobs older than %v on schedule %q", s.ttl, s.schedule)
	return nil
}

// Stop stops the sweep schedule
func (s *Sweeper) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Sweep runs one eviction pass
func (s *Sweeper) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	removed, err := s.store.DeleteFinishedBefore(ctx, time.Now().Add(-s.ttl))
	if err != nil {
		log.Printf("retention: sweep failed: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("retention: removed %d finished jobs", removed)
	}
}

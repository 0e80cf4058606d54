package monitoring

import (
	"fmt"
	"time"

	"github.com/isdelr/todoshare-be/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler prunes the activity feed on a cron schedule.
type Scheduler struct {
	activity  services.ActivityServiceProvider
	retention time.Duration
	cron      *cron.Cron
	done      chan struct{}
}

// NewScheduler creates a scheduler that drops activity older than retention
// every time schedule fires.
func NewScheduler(activity services.ActivityServiceProvider, schedule string, retention time.Duration) (*Scheduler, error) {
	s := &Scheduler{
		activity:  activity,
		retention: retention,
		cron:      cron.New(),
		done:      make(chan struct{}),
	}
	if _, err := s.cron.AddFunc(schedule, s.pruneActivity); err != nil {
		return nil, fmt.Errorf("invalid prune schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Run starts the cron loop and blocks until Stop.
func (s *Scheduler) Run() {
	log.Info().Msg("Starting background scheduler...")
	s.cron.Start()
	<-s.done
	<-s.cron.Stop().Done()
	log.Info().Msg("Stopped background scheduler.")
}

// Stop halts the scheduler.
func (s *Scheduler) Stop() {
	close(s.done)
}

func (s *Scheduler) pruneActivity() {
	cutoff := time.Now().Add(-s.retention)
	if n := s.activity.Prune(cutoff); n > 0 {
		log.Info().Int("pruned", n).Time("cutoff", cutoff).Msg("Scheduler: pruned activity feed")
	}
}

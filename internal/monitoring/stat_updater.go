package monitoring

import (
	"time"

	"github.com/isdelr/todoshare-be/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Counter reports a current total.
type Counter func() int

// StatUpdater periodically copies store sizes into gauges.
type StatUpdater struct {
	users    Counter
	lists    Counter
	interval time.Duration
	done     chan struct{}
}

// NewStatUpdater creates a new StatUpdater.
func NewStatUpdater(users, lists Counter) *StatUpdater {
	return &StatUpdater{
		users:    users,
		lists:    lists,
		interval: 15 * time.Second,
		done:     make(chan struct{}),
	}
}

// Run starts the periodic updates.
func (su *StatUpdater) Run() {
	log.Info().Msg("Starting background stat updater...")
	ticker := time.NewTicker(su.interval)
	defer ticker.Stop()

	// Run once immediately on start
	su.update()

	for {
		select {
		case <-su.done:
			log.Info().Msg("Stopping background stat updater.")
			return
		case <-ticker.C:
			su.update()
		}
	}
}

// Stop halts the periodic updates.
func (su *StatUpdater) Stop() {
	close(su.done)
}

func (su *StatUpdater) update() {
	metrics.RegisteredUsers.Set(float64(su.users()))
	metrics.StoredLists.Set(float64(su.lists()))
}

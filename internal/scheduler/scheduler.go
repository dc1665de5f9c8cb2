package scheduler

import (
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog/log"

	"github.com/sekaiwx/vissrview/internal/cache"
)

// Sweeper periodically evicts expired artifacts from the cache. The cache
// already evicts lazily on access; the sweep just keeps memory bounded when
// nobody asks for a stale hour again.
type Sweeper struct {
	scheduler *gocron.Scheduler
	cache     *cache.Cache
	interval  time.Duration
}

// New creates a Sweeper. An interval of 0 disables sweeping.
func New(c *cache.Cache, interval time.Duration) *Sweeper {
	return &Sweeper{
		scheduler: gocron.NewScheduler(time.UTC),
		cache:     c,
		interval:  interval,
	}
}

// Start schedules the sweep job and starts the underlying scheduler.
func (s *Sweeper) Start() error {
	if s.interval <= 0 {
		log.Info().Msg("cache sweeper disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Do(func() {
		if dropped := s.cache.Sweep(); dropped > 0 {
			log.Info().Int("dropped", dropped).Int("remaining", s.cache.Len()).Msg("cache sweep")
		}
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Sweeper) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

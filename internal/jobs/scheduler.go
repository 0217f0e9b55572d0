package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/Nikocoro/prubas123/internal/queue"
)

type Scheduler struct {
	cron     *cron.Cron
	queue    *queue.Publisher
	schedule string
	log      zerolog.Logger
}

// NewScheduler takes a six-field cron spec (seconds first).
func NewScheduler(publisher *queue.Publisher, schedule string, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:     c,
		queue:    publisher,
		schedule: schedule,
		log:      log,
	}
}

func (s *Scheduler) Start() error {
	if s.queue == nil {
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, s.enqueueSweep); err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info().Str("schedule", s.schedule).Msg("photo sweep scheduled")
	return nil
}

// Stop waits up to five seconds for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) enqueueSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.queue.Publish(ctx, queue.TaskPhotoSweep, nil); err != nil {
		s.log.Error().Err(err).Msg("enqueue photo sweep failed")
	}
}

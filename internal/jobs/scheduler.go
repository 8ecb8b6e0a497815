package jobs

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

// Scheduler runs the background jobs on their configured intervals.
type Scheduler struct {
	scheduler gocron.Scheduler
	lowStock  *LowStockService
	logger    zerolog.Logger
}

func NewScheduler(lowStock *LowStockService, logger zerolog.Logger) (*Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Scheduler{
		scheduler: scheduler,
		lowStock:  lowStock,
		logger:    logger,
	}, nil
}

// Start registers the jobs and begins scheduling. interval is the
// period between low-stock scans.
func (s *Scheduler) Start(interval time.Duration) error {
	if interval <= 0 {
		interval = time.Hour
	}

	_, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if err := s.lowStock.ScanAll(ctx); err != nil {
				s.logger.Error().Err(err).Msg("low stock scan run failed")
			}
		}),
	)
	if err != nil {
		return err
	}

	s.scheduler.Start()
	s.logger.Info().Dur("interval", interval).Msg("background job scheduler started")
	return nil
}

// Shutdown stops the scheduler and waits for running jobs.
func (s *Scheduler) Shutdown() error {
	return s.scheduler.Shutdown()
}

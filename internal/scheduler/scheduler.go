// Package scheduler runs the nightly ingestion job.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/lshi/nbadaily/internal/ingest"
)

// Scheduler triggers one ingestion run per night, after the previous
// day's games have gone final.
type Scheduler struct {
	s      gocron.Scheduler
	runner *ingest.Runner
	logger *log.Logger
}

func NewScheduler(runner *ingest.Runner, logger *log.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = log.Default()
	}

	location, err := time.LoadLocation("America/New_York")
	if err != nil {
		return nil, fmt.Errorf("failed to load location: %w", err)
	}

	s, err := gocron.NewScheduler(
		gocron.WithLocation(location),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Scheduler{s: s, runner: runner, logger: logger}, nil
}

// Start registers the nightly job at the given hour and starts the
// scheduler.
func (s *Scheduler) Start(hour int) error {
	_, err := s.s.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(uint(hour), 0, 0))),
		gocron.NewTask(s.runIngest),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create nightly ingest job: %w", err)
	}

	s.s.Start()
	s.logger.Printf("[scheduler] nightly ingest scheduled at %02d:00", hour)
	return nil
}

func (s *Scheduler) runIngest() {
	s.logger.Printf("[scheduler] nightly ingest starting")
	if _, err := s.runner.Run(context.Background()); err != nil {
		s.logger.Printf("[scheduler] nightly ingest failed: %v", err)
	}
}

// Shutdown stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Shutdown() error {
	return s.s.Shutdown()
}

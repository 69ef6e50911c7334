/**
 * @description
 * Cron scheduler setup for the BS run jobs.
 */
package app

import (
	"context"
	"log/slog"

	"github.com/corebank/directdebit-service/internal/config"
	"github.com/robfig/cron/v3"
)

// Scheduler manages the cron jobs.
type Scheduler struct {
	cron   *cron.Cron
	jobs   *Jobs
	logger *slog.Logger
	config config.Config
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(jobs *Jobs, logger *slog.Logger, cfg config.Config) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger)))

	return &Scheduler{
		cron:   c,
		jobs:   jobs,
		logger: logger,
		config: cfg,
	}
}

// Start registers the jobs and starts the cron scheduler.
func (s *Scheduler) Start() {
	if _, err := s.cron.AddFunc(s.config.NotifyJobSchedule, s.jobs.RunNotifyUpcoming); err != nil {
		s.logger.Error("failed to schedule collection notification job", "error", err)
	} else {
		s.logger.Info("scheduled collection notification job", "schedule", s.config.NotifyJobSchedule)
	}

	if _, err := s.cron.AddFunc(s.config.CollectJobSchedule, s.jobs.RunCollectDue); err != nil {
		s.logger.Error("failed to schedule collection settlement job", "error", err)
	} else {
		s.logger.Info("scheduled collection settlement job", "schedule", s.config.CollectJobSchedule)
	}

	s.cron.Start()
}

// Stop gracefully stops the cron scheduler.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

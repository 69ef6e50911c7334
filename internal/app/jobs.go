/**
 * @description
 * Scheduled job implementations for the BS run. Each job wraps one batch
 * sweep with the wall clock and configured window, and guards against
 * overlapping invocations of the same sweep: the batch orchestrator is not
 * safe to run concurrently against the same candidate set.
 */
package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/corebank/directdebit-service/internal/config"
)

// batchRunner is the slice of the BS run service the jobs need.
type batchRunner interface {
	NotifyUpcoming(ctx context.Context, nowUTC time.Time, daysAhead int) (int, error)
	CollectDue(ctx context.Context, nowUTC time.Time) (int, error)
}

// Jobs contains the logic for all scheduled tasks.
type Jobs struct {
	runner batchRunner
	logger *slog.Logger
	config config.Config

	notifyMu  sync.Mutex
	collectMu sync.Mutex
}

// NewJobs creates a new Jobs runner.
func NewJobs(runner batchRunner, logger *slog.Logger, cfg config.Config) *Jobs {
	return &Jobs{
		runner: runner,
		logger: logger,
		config: cfg,
	}
}

// RunNotifyUpcoming notifies collections coming due within the configured
// look-ahead window.
func (j *Jobs) RunNotifyUpcoming() {
	if !j.notifyMu.TryLock() {
		j.logger.Warn("notify job already running, skipping this invocation")
		return
	}
	defer j.notifyMu.Unlock()

	j.logger.Info("starting collection notification job", "days_ahead", j.config.NotifyDaysAhead)

	count, err := j.runner.NotifyUpcoming(context.Background(), time.Now().UTC(), j.config.NotifyDaysAhead)
	if err != nil {
		j.logger.Error("collection notification job failed", "error", err)
		return
	}

	j.logger.Info("collection notification job finished", "notified", count)
}

// RunCollectDue settles collections that are due.
func (j *Jobs) RunCollectDue() {
	if !j.collectMu.TryLock() {
		j.logger.Warn("collect job already running, skipping this invocation")
		return
	}
	defer j.collectMu.Unlock()

	j.logger.Info("starting collection settlement job")

	count, err := j.runner.CollectDue(context.Background(), time.Now().UTC())
	if err != nil {
		// The orchestrator flushes outcomes recorded before the fault, so a
		// partial count is still accurate for what was settled.
		j.logger.Error("collection settlement job failed", "collected", count, "error", err)
		return
	}

	j.logger.Info("collection settlement job finished", "collected", count)
}

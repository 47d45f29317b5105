// Package scheduler runs the periodic reminder jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"fintrack/internal/logger"
	"fintrack/internal/services"
)

const (
	sweepTimeout       = time.Minute
	budgetCheckTimeout = 5 * time.Minute
)

// Jobs is the subset of the reminder service the scheduler drives.
type Jobs interface {
	ProcessDueReminders(ctx context.Context) (*services.SweepResult, error)
	CreateBudgetCheckReminders(ctx context.Context) (int, error)
}

// Scheduler owns the cron engine for the reminder sweep and the daily
// budget-check job.
type Scheduler struct {
	engine *cron.Cron
	jobs   Jobs
	log    *zap.SugaredLogger
}

// New registers both jobs. It fails if either cron expression is invalid.
func New(jobs Jobs, sweepSpec, budgetCheckSpec string) (*Scheduler, error) {
	log := logger.Named("scheduler")
	s := &Scheduler{
		engine: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.SkipIfStillRunning(cronLogger{log})),
		),
		jobs: jobs,
		log:  log,
	}

	if _, err := s.engine.AddFunc(sweepSpec, s.SweepReminders); err != nil {
		return nil, fmt.Errorf("invalid reminder sweep schedule %q: %w", sweepSpec, err)
	}
	if _, err := s.engine.AddFunc(budgetCheckSpec, s.CreateBudgetChecks); err != nil {
		return nil, fmt.Errorf("invalid budget check schedule %q: %w", budgetCheckSpec, err)
	}
	return s, nil
}

// Start runs the cron engine in its own goroutine.
func (s *Scheduler) Start() {
	s.engine.Start()
	s.log.Infow("scheduler started", "jobs", len(s.engine.Entries()))
}

// Stop stops scheduling new runs and waits for running jobs, or for ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.engine.Stop()
	select {
	case <-done.Done():
		s.log.Info("scheduler stopped")
	case <-ctx.Done():
		s.log.Warnw("scheduler stop timed out", "error", ctx.Err())
	}
}

// SweepReminders fires every due reminder once.
func (s *Scheduler) SweepReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	result, err := s.jobs.ProcessDueReminders(ctx)
	if err != nil {
		s.log.Errorw("reminder sweep failed", "error", err)
		return
	}
	if result.Total > 0 {
		s.log.Infow("reminder sweep finished",
			"total", result.Total,
			"success", result.Success,
			"failed", result.Failed,
		)
	}
}

// CreateBudgetChecks sends the daily budget-check notifications.
func (s *Scheduler) CreateBudgetChecks() {
	ctx, cancel := context.WithTimeout(context.Background(), budgetCheckTimeout)
	defer cancel()

	created, err := s.jobs.CreateBudgetCheckReminders(ctx)
	if err != nil {
		s.log.Errorw("budget check job failed", "error", err)
		return
	}
	s.log.Infow("budget check notifications created", "count", created)
}

// cronLogger adapts the zap logger to cron.Logger.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}

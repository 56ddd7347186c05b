package retention

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler fires retention pruning runs on a cron schedule, so audit
// databases backing long-running commands stay within policy without
// manual prune invocations. Schedules use five-field cron syntax or the
// descriptor forms ("@daily", "@every 6h"); an empty schedule disables
// scheduling entirely.
type Scheduler struct {
	schedule string
	prune    func(context.Context) (int64, error)
	logger   *slog.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

// NewScheduler creates a scheduler that invokes prune according to the
// given schedule once started.
func NewScheduler(schedule string, prune func(context.Context) (int64, error)) *Scheduler {
	return &Scheduler{
		schedule: schedule,
		prune:    prune,
		logger:   slog.Default().With("component", "audit.scheduler"),
	}
}

// Start validates the schedule and begins firing pruning runs. It returns
// immediately; runs continue until ctx is cancelled or Stop is called.
// Starting an already-started scheduler is an error.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.schedule == "" {
		s.logger.Info("no prune schedule configured, scheduled pruning disabled")
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid prune schedule %q: %w", s.schedule, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return fmt.Errorf("scheduler already started")
	}

	c := cron.New()
	if _, err := c.AddFunc(s.schedule, func() { s.fire(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule pruning: %w", err)
	}
	c.Start()
	s.cron = c

	s.logger.Info("scheduled pruning started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// fire runs a single pruning pass and logs its outcome.
func (s *Scheduler) fire(ctx context.Context) {
	deleted, err := s.prune(ctx)
	if err != nil {
		s.logger.Error("scheduled pruning failed", "error", err)
		return
	}
	if deleted > 0 {
		s.logger.Info("scheduled pruning finished", "deleted_count", deleted)
	} else {
		s.logger.Debug("scheduled pruning finished, nothing to delete")
	}
}

// Stop halts scheduling and waits for an in-flight pruning run to finish.
// Stopping a never-started or already-stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return
	}

	<-s.cron.Stop().Done()
	s.cron = nil
	s.logger.Info("scheduled pruning stopped")
}

// IsRunning reports whether the scheduler has been started and not yet
// stopped.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cron != nil
}

// NextRun returns the time of the next scheduled pruning run, or nil when
// the scheduler is not running.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return nil
	}

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}

	next := entries[0].Next
	return &next
}

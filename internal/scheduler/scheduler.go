package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs a job on a cron spec in a fixed timezone. A run that is
// still going when the next tick fires makes that tick a no-op.
type Scheduler struct {
	cron *cron.Cron
}

// New creates a scheduler for timezone (e.g. "Asia/Seoul").
func New(timezone string) (*Scheduler, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	logger := cron.PrintfLogger(slogPrintf{})
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.SkipIfStillRunning(logger)),
		),
	}, nil
}

// Add registers job under the standard five-field spec.
func (s *Scheduler) Add(spec string, job func()) error {
	if _, err := s.cron.AddFunc(spec, job); err != nil {
		return fmt.Errorf("add cron job %q: %w", spec, err)
	}
	return nil
}

// Next returns the next activation time, zero if nothing is scheduled.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	next := entries[0].Next
	for _, e := range entries[1:] {
		if e.Next.Before(next) {
			next = e.Next
		}
	}
	return next
}

// Run starts the scheduler and blocks until ctx is done, then waits for a
// running job to finish.
func (s *Scheduler) Run(ctx context.Context) {
	s.cron.Start()
	slog.Info("scheduler started", "next", s.Next())
	<-ctx.Done()
	<-s.cron.Stop().Done()
	slog.Info("scheduler stopped")
}

type slogPrintf struct{}

func (slogPrintf) Printf(format string, args ...interface{}) {
	slog.Info(fmt.Sprintf(format, args...))
}

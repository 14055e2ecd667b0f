// Package scheduler runs periodic maintenance of the session store.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	// HourlyPurgeSpec runs at the top of every hour.
	HourlyPurgeSpec = "0 * * * *"
	purgeTimeout    = 5 * time.Minute
)

// Purger removes expired sessions.
type Purger interface {
	PurgeExpired(ctx context.Context) (int, error)
}

// Scheduler owns the cron runner.
type Scheduler struct {
	ctx    context.Context
	cron   *cron.Cron
	purger Purger
	log    *slog.Logger
}

// New creates a scheduler whose jobs stop when ctx ends.
func New(ctx context.Context, purger Purger, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		ctx:    ctx,
		cron:   cron.New(cron.WithLocation(time.UTC)),
		purger: purger,
		log:    log,
	}
}

// Start registers the purge job and starts the runner.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(HourlyPurgeSpec, s.purgeExpired); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop stops the runner and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) purgeExpired() {
	ctx, cancel := context.WithTimeout(s.ctx, purgeTimeout)
	defer cancel()

	if ctx.Err() != nil {
		s.log.InfoContext(ctx, "Scheduler context is done", "error", ctx.Err())
		return
	}

	n, err := s.purger.PurgeExpired(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to purge expired sessions", "error", err)
		return
	}
	s.log.DebugContext(ctx, "Purged expired sessions", "count", n)
}

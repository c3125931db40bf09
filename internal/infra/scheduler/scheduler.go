package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Job is one unit of periodic work.
type Job func(ctx context.Context) error

// Scheduler runs a Job every interval until stopped.
type Scheduler struct {
	name     string
	interval time.Duration
	timeout  time.Duration
	job      Job
	log      *zerolog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// New builds a scheduler; an interval <= 0 defaults to one minute. Each run is
// bounded by the interval so a slow job cannot pile up behind itself.
func New(name string, interval time.Duration, job Job, logger *zerolog.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{name: name, interval: interval, timeout: interval, job: job, log: logger}
}

// Start runs the job once immediately, then on every tick. Calling Start on a
// running scheduler has no effect.
func (s *Scheduler) Start(parent context.Context) {
	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.loop(ctx)
}

func (s *Scheduler) loop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer func() {
		ticker.Stop()
		close(s.done)
	}()

	s.log.Debug().Str("job", s.name).Dur("interval", s.interval).Msg("scheduler started")
	for {
		s.runOnce(ctx)
		select {
		case <-ctx.Done():
			s.log.Debug().Str("job", s.name).Msg("scheduler stopped")
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.job(runCtx); err != nil && ctx.Err() == nil {
		s.log.Warn().Err(err).Str("job", s.name).Msg("scheduled job failed")
	}
}

// Stop cancels the loop and waits for the current run to finish. It is idempotent.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel = nil
}

// Package jobs runs the background sweeps on cron schedules.
package jobs

import (
	"context"
	"fmt"
	"time"

	"courtside/pkg/config"
	"courtside/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Job is one sweep. Run returns how many records it changed.
type Job struct {
	Name     string
	Schedule string
	Run      func(ctx context.Context) (int, error)
}

type Scheduler struct {
	cron    *cron.Cron
	log     *logger.Logger
	timeout time.Duration
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewScheduler(cfg *config.Config) *Scheduler {
	log := cfg.Log.Component("jobs")
	cronLog := cronLogger{log: log}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(cfg.Location),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		log:     log,
		timeout: cfg.RequestTimeout,
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (s *Scheduler) Register(job Job) error {
	if _, err := s.cron.AddFunc(job.Schedule, func() { s.run(job) }); err != nil {
		return fmt.Errorf("failed to schedule job %s with %q: %w", job.Name, job.Schedule, err)
	}
	s.log.Info("Job scheduled", "job", job.Name, "schedule", job.Schedule)
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs, cancels the running ones and waits for them to
// return or for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	s.cancel()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("jobs did not stop in time: %w", ctx.Err())
	}
}

func (s *Scheduler) run(job Job) {
	ctx := s.ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	started := time.Now()
	changed, err := job.Run(ctx)
	if err != nil {
		s.log.Error("Job failed", "job", job.Name, "duration", time.Since(started), "error", err)
		return
	}
	s.log.Debug("Job finished", "job", job.Name, "changed", changed, "duration", time.Since(started))
}

// cronLogger routes the cron library's own logging through slog.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append(keysAndValues, "error", err)...)
}

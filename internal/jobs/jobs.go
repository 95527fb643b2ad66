package jobs

import (
	"context"

	"courtside/pkg/config"
)

type SettlementSweeper interface {
	SweepPending(ctx context.Context) (int, error)
}

type NoShowSweeper interface {
	SweepNoShows(ctx context.Context) (int, error)
}

type EnrollmentExpirer interface {
	ExpireDue(ctx context.Context) (int, error)
}

// Sweeps lists the recurring jobs of the engine.
func Sweeps(cfg *config.Config, payments SettlementSweeper, reservations NoShowSweeper, enrollments EnrollmentExpirer) []Job {
	return []Job{
		{Name: "settlement-sweep", Schedule: cfg.SweepSchedule, Run: payments.SweepPending},
		{Name: "no-show-sweep", Schedule: cfg.NoShowSchedule, Run: reservations.SweepNoShows},
		{Name: "enrollment-expiry", Schedule: cfg.EnrollmentExpirySchedule, Run: enrollments.ExpireDue},
	}
}

// Schedule registers every sweep on s.
func Schedule(s *Scheduler, jobs []Job) error {
	for _, job := range jobs {
		if err := s.Register(job); err != nil {
			return err
		}
	}
	return nil
}

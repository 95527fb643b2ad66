package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"courtside/pkg/config"
	"courtside/pkg/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		Log:                      logger.Discard(),
		Location:                 time.UTC,
		RequestTimeout:           time.Second,
		SweepSchedule:            "@every 5m",
		NoShowSchedule:           "@every 10m",
		EnrollmentExpirySchedule: "@hourly",
	}
}

type sweeps struct {
	settlements, noShows, expiries atomic.Int32
}

func (s *sweeps) SweepPending(context.Context) (int, error) {
	s.settlements.Add(1)
	return 0, nil
}

func (s *sweeps) SweepNoShows(context.Context) (int, error) {
	s.noShows.Add(1)
	return 0, nil
}

func (s *sweeps) ExpireDue(context.Context) (int, error) {
	s.expiries.Add(1)
	return 0, errors.New("store unavailable")
}

func TestSweeps_UseConfiguredSchedules(t *testing.T) {
	cfg := testConfig()
	s := &sweeps{}
	jobs := Sweeps(cfg, s, s, s)

	want := map[string]string{
		"settlement-sweep":  "@every 5m",
		"no-show-sweep":     "@every 10m",
		"enrollment-expiry": "@hourly",
	}
	if len(jobs) != len(want) {
		t.Fatalf("expected %d jobs, got %d", len(want), len(jobs))
	}
	for _, job := range jobs {
		if want[job.Name] != job.Schedule {
			t.Errorf("job %s: schedule %q, want %q", job.Name, job.Schedule, want[job.Name])
		}
		// A failing job is logged, never propagated.
		NewScheduler(cfg).run(job)
	}
	if s.settlements.Load() != 1 || s.noShows.Load() != 1 || s.expiries.Load() != 1 {
		t.Errorf("expected every sweep to run once")
	}

	if err := Schedule(NewScheduler(cfg), jobs); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestScheduler_RejectsBadSchedule(t *testing.T) {
	s := NewScheduler(testConfig())
	err := s.Register(Job{Name: "broken", Schedule: "every now and then", Run: func(context.Context) (int, error) { return 0, nil }})
	if err == nil {
		t.Fatal("expected an error for an invalid schedule")
	}
}

func TestScheduler_RunsAndStops(t *testing.T) {
	s := NewScheduler(testConfig())
	ran := make(chan struct{}, 1)
	var cancelled atomic.Bool
	err := s.Register(Job{Name: "tick", Schedule: "@every 1s", Run: func(ctx context.Context) (int, error) {
		select {
		case ran <- struct{}{}:
		default:
		}
		<-ctx.Done()
		cancelled.Store(true)
		return 0, ctx.Err()
	}})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	s.Start()
	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not run")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if !cancelled.Load() {
		t.Error("running job should observe cancellation")
	}
}

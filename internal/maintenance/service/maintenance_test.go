package service

import (
	"context"
	"testing"
	"time"

	auditrepo "courtside/internal/audit/repository"
	auditservice "courtside/internal/audit/service"
	courtsrepo "courtside/internal/courts/repository"
	"courtside/internal/maintenance/repository"
	"courtside/internal/maintenance/validator"
	"courtside/pkg/clock"
	"courtside/pkg/config"
	"courtside/pkg/db/memory"
	apperrors "courtside/pkg/errors"
	"courtside/pkg/logger"
	"courtside/pkg/model"
)

const courtID = "3f1c2a9e-6a55-4c1e-9a41-2d4b1a7f0c01"

var (
	staff = model.Actor{ID: "staff-1", Role: model.RoleStaff}
	day   = time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
)

func newService(t *testing.T) (MaintenanceService, courtsrepo.CourtRepository) {
	t.Helper()
	log := logger.Discard()
	store := memory.NewStore()
	clk := clock.NewFixed(day.Add(7 * time.Hour))
	courts := courtsrepo.NewMemoryCourtRepository(store)
	if err := courts.Create(context.Background(), &model.Court{ID: courtID, Name: "Pista 1", Opens: "08:00", Closes: "22:00", Active: true}); err != nil {
		t.Fatalf("seed court: %v", err)
	}
	recorder := auditservice.NewRecorder(auditrepo.NewMemoryAuditRepository(store), nil, clk, log)
	cfg := &config.Config{Log: log, Location: time.UTC}
	svc := NewMaintenanceService(repository.NewMemoryMaintenanceRepository(store), courts, store, validator.NewMaintenanceValidator(log), recorder, clk, cfg)
	return svc, courts
}

func TestMaintenanceService_CreateAndList(t *testing.T) {
	svc, courts := newService(t)
	ctx := context.Background()

	window := model.MaintenanceWindow{
		CourtID: courtID,
		Start:   day.Add(10 * time.Hour),
		End:     day.Add(12 * time.Hour),
		Reason:  "  resurfacing   lines ",
	}
	if err := svc.Create(ctx, staff, &window); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if window.Reason != "resurfacing lines" || window.CreatedBy != "staff-1" {
		t.Errorf("unexpected window %+v", window)
	}

	court, _ := courts.FindByID(ctx, courtID)
	if court.BookingVersion != 1 {
		t.Errorf("creating a window should take the court guard, version %d", court.BookingVersion)
	}

	tests := []struct {
		name  string
		from  time.Time
		to    time.Time
		count int
	}{
		{"whole day", day, day.AddDate(0, 0, 1), 1},
		{"touching end", day.Add(12 * time.Hour), day.Add(13 * time.Hour), 0},
		{"inside", day.Add(11 * time.Hour), day.Add(11*time.Hour + 30*time.Minute), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			windows, err := svc.ListForCourt(ctx, courtID, tt.from, tt.to)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(windows) != tt.count {
				t.Errorf("expected %d windows, got %d", tt.count, len(windows))
			}
		})
	}

	if err := svc.Delete(ctx, staff, window.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, staff, window.ID); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected not found on second delete, got %v", err)
	}
}

func TestMaintenanceService_CreateValidation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	inverted := model.MaintenanceWindow{CourtID: courtID, Start: day.Add(12 * time.Hour), End: day.Add(10 * time.Hour), Reason: "nets"}
	if err := svc.Create(ctx, staff, &inverted); !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}

	unknownCourt := model.MaintenanceWindow{CourtID: "9b2e4c1a-1111-4222-8333-444455556666", Start: day.Add(10 * time.Hour), End: day.Add(11 * time.Hour), Reason: "nets"}
	if err := svc.Create(ctx, staff, &unknownCourt); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

package service

import (
	"context"
	"testing"
	"time"

	courtsrepo "courtside/internal/courts/repository"
	maintenancerepo "courtside/internal/maintenance/repository"
	reservationsrepo "courtside/internal/reservations/repository"
	"courtside/pkg/clock"
	"courtside/pkg/config"
	"courtside/pkg/db/memory"
	apperrors "courtside/pkg/errors"
	"courtside/pkg/logger"
	"courtside/pkg/model"
)

func TestAvailabilityService_ForCourt(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	courts := courtsrepo.NewMemoryCourtRepository(store)
	maintenance := maintenancerepo.NewMemoryMaintenanceRepository(store)
	reservations := reservationsrepo.NewMemoryReservationRepository(store)

	_ = courts.Create(ctx, &court)
	_ = maintenance.Create(ctx, &model.MaintenanceWindow{ID: "m1", CourtID: "c1", Start: at(11, 0), End: at(12, 0)})
	_ = reservations.Create(ctx, &model.Reservation{ID: "r1", CourtID: "c1", UserID: "u1", Start: at(9, 0), End: at(10, 0), Status: model.ReservationPaid})
	_ = reservations.Create(ctx, &model.Reservation{ID: "r2", CourtID: "other", UserID: "u2", Start: at(8, 0), End: at(9, 0), Status: model.ReservationPaid})

	cfg := &config.Config{Log: logger.Discard(), Location: time.UTC, DefaultSlotMinutes: 60}
	svc := NewAvailabilityService(courts, maintenance, reservations, clock.NewFixed(at(6, 0)), cfg)

	slots, err := svc.ForCourt(ctx, Query{CourtID: "c1", Date: day.Add(13 * time.Hour), UserID: "u1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []SlotStatus{SlotAvailable, SlotUserBooked, SlotAvailable, SlotMaintenance}
	got := statuses(slots)
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("slot %d: got %s, want %s", i, got[i], want[i])
		}
	}

	tests := []struct {
		name  string
		query Query
		code  string
	}{
		{"unknown court", Query{CourtID: "missing", Date: day}, apperrors.CodeNotFound},
		{"duration too short", Query{CourtID: "c1", Date: day, DurationMinutes: 5}, apperrors.CodeInvalidInput},
		{"duration too long", Query{CourtID: "c1", Date: day, DurationMinutes: 600}, apperrors.CodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ForCourt(ctx, tt.query)
			if !apperrors.HasCode(err, tt.code) {
				t.Errorf("expected %s, got %v", tt.code, err)
			}
		})
	}
}

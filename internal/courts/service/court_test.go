package service

import (
	"context"
	"testing"
	"time"

	auditrepo "courtside/internal/audit/repository"
	auditservice "courtside/internal/audit/service"
	"courtside/internal/courts/repository"
	"courtside/internal/courts/validator"
	"courtside/pkg/clock"
	"courtside/pkg/config"
	"courtside/pkg/db/memory"
	apperrors "courtside/pkg/errors"
	"courtside/pkg/logger"
	"courtside/pkg/model"
)

type fixture struct {
	svc   CourtService
	repo  repository.CourtRepository
	audit auditrepo.AuditRepository
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	log := logger.Discard()
	store := memory.NewStore()
	clk := clock.NewFixed(time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC))
	repo := repository.NewMemoryCourtRepository(store)
	audit := auditrepo.NewMemoryAuditRepository(store)
	recorder := auditservice.NewRecorder(audit, nil, clk, log)
	cfg := &config.Config{Log: log, Location: time.UTC}

	return fixture{
		svc:   NewCourtService(repo, store, validator.NewCourtValidator(log), recorder, clk, cfg),
		repo:  repo,
		audit: audit,
	}
}

var staff = model.Actor{ID: "staff-1", Role: model.RoleStaff}

func TestCourtService_Create(t *testing.T) {
	tests := []struct {
		name      string
		court     model.Court
		expectErr string
	}{
		{
			name:  "valid court",
			court: model.Court{Name: "  Pista   Central ", Opens: "08:00", Closes: "22:00", HourlyRateCents: 2000, Active: true},
		},
		{
			name:      "closing before opening",
			court:     model.Court{Name: "Pista 2", Opens: "22:00", Closes: "08:00", HourlyRateCents: 2000},
			expectErr: apperrors.CodeValidation,
		},
		{
			name:      "bad hours layout",
			court:     model.Court{Name: "Pista 3", Opens: "8am", Closes: "22:00", HourlyRateCents: 2000},
			expectErr: apperrors.CodeValidation,
		},
		{
			name:      "missing name",
			court:     model.Court{Opens: "08:00", Closes: "22:00"},
			expectErr: apperrors.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			court := tt.court
			err := f.svc.Create(context.Background(), staff, &court)

			if tt.expectErr != "" {
				if !apperrors.HasCode(err, tt.expectErr) {
					t.Fatalf("expected %s, got %v", tt.expectErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if court.ID == "" {
				t.Error("expected generated id")
			}
			if court.Name != "Pista Central" {
				t.Errorf("expected normalized name, got %q", court.Name)
			}

			count, _ := f.audit.CountBySubject(context.Background(), model.SubjectCourt, court.ID)
			if count != 1 {
				t.Errorf("expected one audit event, got %d", count)
			}
		})
	}
}

func TestCourtService_Update(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	court := model.Court{Name: "Pista 1", Opens: "08:00", Closes: "22:00", HourlyRateCents: 2000, Active: true}
	if err := f.svc.Create(ctx, staff, &court); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := f.repo.BumpBookingVersion(ctx, court.ID); err != nil {
		t.Fatalf("bump: %v", err)
	}

	rate := int64(2500)
	closes := "07:00"

	if _, err := f.svc.Update(ctx, staff, court.ID, &model.CourtUpdate{Closes: &closes}); !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected validation error for inverted hours, got %v", err)
	}

	updated, err := f.svc.Update(ctx, staff, court.ID, &model.CourtUpdate{HourlyRateCents: &rate})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.HourlyRateCents != 2500 || updated.Opens != "08:00" {
		t.Errorf("unexpected merge result %+v", updated)
	}

	stored, _ := f.repo.FindByID(ctx, court.ID)
	if stored.BookingVersion != 1 {
		t.Errorf("update must not reset the booking guard, got %d", stored.BookingVersion)
	}

	if _, err := f.svc.Update(ctx, staff, "missing", &model.CourtUpdate{HourlyRateCents: &rate}); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

package service

import (
	"context"
	"errors"
	"time"

	auditservice "courtside/internal/audit/service"
	courtserrors "courtside/internal/courts/errors"
	courtsrepo "courtside/internal/courts/repository"
	maintenanceerrors "courtside/internal/maintenance/errors"
	"courtside/internal/maintenance/repository"
	"courtside/internal/maintenance/validator"
	"courtside/pkg/clock"
	"courtside/pkg/config"
	"courtside/pkg/db"
	apperrors "courtside/pkg/errors"
	"courtside/pkg/model"
	"courtside/pkg/sanitizer"
	"courtside/pkg/validation"

	"github.com/google/uuid"
)

type MaintenanceService interface {
	Create(ctx context.Context, actor model.Actor, window *model.MaintenanceWindow) error
	Delete(ctx context.Context, actor model.Actor, id string) error
	ListForCourt(ctx context.Context, courtID string, from, to time.Time) ([]model.MaintenanceWindow, error)
}

type maintenanceService struct {
	repo      repository.MaintenanceRepository
	courts    courtsrepo.CourtRepository
	tx        db.TransactionManager
	validator *validator.MaintenanceValidator
	audit     *auditservice.Recorder
	clock     clock.Clock
	cfg       *config.Config
}

func NewMaintenanceService(
	repo repository.MaintenanceRepository,
	courts courtsrepo.CourtRepository,
	tx db.TransactionManager,
	validator *validator.MaintenanceValidator,
	audit *auditservice.Recorder,
	clk clock.Clock,
	cfg *config.Config,
) MaintenanceService {
	return &maintenanceService{
		repo:      repo,
		courts:    courts,
		tx:        tx,
		validator: validator,
		audit:     audit,
		clock:     clk,
		cfg:       cfg,
	}
}

// Create takes the court's booking guard so a window cannot be opened while a
// reservation for the same interval is being claimed.
func (s *maintenanceService) Create(ctx context.Context, actor model.Actor, window *model.MaintenanceWindow) error {
	window.Reason = sanitizer.NormalizeReason(window.Reason)
	window.CourtID = sanitizer.SanitizeID(window.CourtID)
	if err := s.validator.Validate(window); err != nil {
		s.cfg.Log.Warn("Maintenance window validation failed", "court_id", window.CourtID, "error", err)
		return validation.ToAppError("Invalid maintenance window", err)
	}

	window.ID = uuid.New().String()
	window.CreatedBy = actor.String()
	window.CreatedAt = s.clock.Now()

	batch := s.audit.NewBatch()
	err := s.tx.ExecuteTransaction(ctx, func(ctx context.Context) error {
		batch.Reset()
		if err := s.courts.BumpBookingVersion(ctx, window.CourtID); err != nil {
			if errors.Is(err, courtserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Court", window.CourtID)
			}
			return apperrors.Internal("Failed to lock court", err)
		}
		if err := s.repo.Create(ctx, window); err != nil {
			return apperrors.Internal("Failed to create maintenance window", err)
		}
		return batch.Record(ctx, model.AuditEvent{
			SubjectType: model.SubjectMaintenance,
			SubjectID:   window.ID,
			EventType:   "maintenance.created",
			Summary:     window.Reason,
			Actor:       actor.String(),
			Metadata: map[string]any{
				"court_id": window.CourtID,
				"start":    window.Start,
				"end":      window.End,
			},
		})
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create maintenance window", "court_id", window.CourtID, "error", err)
		return err
	}
	batch.Publish(ctx)

	s.cfg.Log.Info("Maintenance window created",
		"id", window.ID,
		"court_id", window.CourtID,
		"start", window.Start,
		"end", window.End,
	)
	return nil
}

func (s *maintenanceService) Delete(ctx context.Context, actor model.Actor, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Maintenance window ID cannot be empty")
	}

	batch := s.audit.NewBatch()
	err := s.tx.ExecuteTransaction(ctx, func(ctx context.Context) error {
		batch.Reset()
		window, err := s.repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, maintenanceerrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Maintenance window", id)
			}
			return apperrors.Internal("Failed to retrieve maintenance window", err)
		}
		if err := s.repo.Delete(ctx, id); err != nil {
			return apperrors.Internal("Failed to delete maintenance window", err)
		}
		return batch.Record(ctx, model.AuditEvent{
			SubjectType: model.SubjectMaintenance,
			SubjectID:   id,
			EventType:   "maintenance.deleted",
			Summary:     window.Reason,
			Actor:       actor.String(),
			Metadata:    map[string]any{"court_id": window.CourtID},
		})
	})
	if err != nil {
		s.cfg.Log.Error("Failed to delete maintenance window", "id", id, "error", err)
		return err
	}
	batch.Publish(ctx)

	s.cfg.Log.Info("Maintenance window deleted", "id", id)
	return nil
}

func (s *maintenanceService) ListForCourt(ctx context.Context, courtID string, from, to time.Time) ([]model.MaintenanceWindow, error) {
	if !to.After(from) {
		return nil, apperrors.InvalidInput("to must be after from")
	}
	windows, err := s.repo.FindOverlapping(ctx, courtID, from, to)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve maintenance windows", err)
	}
	return windows, nil
}

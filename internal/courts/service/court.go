package service

import (
	"context"
	"errors"

	auditservice "courtside/internal/audit/service"
	courtserrors "courtside/internal/courts/errors"
	"courtside/internal/courts/repository"
	"courtside/internal/courts/validator"
	"courtside/pkg/clock"
	"courtside/pkg/config"
	"courtside/pkg/db"
	apperrors "courtside/pkg/errors"
	"courtside/pkg/model"
	"courtside/pkg/sanitizer"
	"courtside/pkg/validation"

	"github.com/google/uuid"
)

type CourtService interface {
	Create(ctx context.Context, actor model.Actor, court *model.Court) error
	GetByID(ctx context.Context, id string) (*model.Court, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]model.Court, int64, error)
	Update(ctx context.Context, actor model.Actor, id string, updates *model.CourtUpdate) (*model.Court, error)
}

type courtService struct {
	repo      repository.CourtRepository
	tx        db.TransactionManager
	validator *validator.CourtValidator
	audit     *auditservice.Recorder
	clock     clock.Clock
	cfg       *config.Config
}

func NewCourtService(
	repo repository.CourtRepository,
	tx db.TransactionManager,
	validator *validator.CourtValidator,
	audit *auditservice.Recorder,
	clk clock.Clock,
	cfg *config.Config,
) CourtService {
	return &courtService{
		repo:      repo,
		tx:        tx,
		validator: validator,
		audit:     audit,
		clock:     clk,
		cfg:       cfg,
	}
}

func (s *courtService) Create(ctx context.Context, actor model.Actor, court *model.Court) error {
	court.Name = sanitizer.NormalizeName(court.Name)
	if err := s.validator.Validate(court); err != nil {
		s.cfg.Log.Warn("Court validation failed", "name", court.Name, "error", err)
		return validation.ToAppError("Invalid court", err)
	}

	now := s.clock.Now()
	court.ID = uuid.New().String()
	court.BookingVersion = 0
	court.CreatedAt = now
	court.UpdatedAt = now

	batch := s.audit.NewBatch()
	err := s.tx.ExecuteTransaction(ctx, func(ctx context.Context) error {
		batch.Reset()
		if err := s.repo.Create(ctx, court); err != nil {
			return apperrors.Internal("Failed to create court", err)
		}
		return batch.Record(ctx, model.AuditEvent{
			SubjectType: model.SubjectCourt,
			SubjectID:   court.ID,
			EventType:   "court.created",
			Summary:     "court " + court.Name + " created",
			Actor:       actor.String(),
			Metadata:    map[string]any{"hourly_rate_cents": court.HourlyRateCents},
		})
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create court", "error", err)
		return err
	}
	batch.Publish(ctx)

	s.cfg.Log.Info("Court created successfully", "id", court.ID, "name", court.Name)
	return nil
}

func (s *courtService) GetByID(ctx context.Context, id string) (*model.Court, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Court ID cannot be empty")
	}

	court, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, courtserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Court", id)
		}
		return nil, apperrors.Internal("Failed to retrieve court", err)
	}
	return court, nil
}

func (s *courtService) GetAll(ctx context.Context, limit int, offset int64) ([]model.Court, int64, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to count courts", "error", err)
		return nil, 0, apperrors.Internal("Failed to count courts", err)
	}
	courts, err := s.repo.FindAll(ctx, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list courts", "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve courts", err)
	}
	return courts, count, nil
}

// Update never touches existing reservations; their amounts were frozen at
// creation.
func (s *courtService) Update(ctx context.Context, actor model.Actor, id string, updates *model.CourtUpdate) (*model.Court, error) {
	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Court update validation failed", "id", id, "error", err)
		return nil, validation.ToAppError("Invalid update input", err)
	}

	var merged *model.Court
	batch := s.audit.NewBatch()
	err := s.tx.ExecuteTransaction(ctx, func(ctx context.Context) error {
		batch.Reset()
		existing, err := s.GetByID(ctx, id)
		if err != nil {
			return err
		}
		merged = mergeCourtUpdates(existing, updates)
		merged.UpdatedAt = s.clock.Now()
		if err := s.validator.Validate(merged); err != nil {
			return validation.ToAppError("Invalid update input", err)
		}
		if err := s.repo.Update(ctx, merged); err != nil {
			return apperrors.Internal("Failed to update court", err)
		}
		return batch.Record(ctx, model.AuditEvent{
			SubjectType: model.SubjectCourt,
			SubjectID:   id,
			EventType:   "court.updated",
			Summary:     "court " + merged.Name + " updated",
			Actor:       actor.String(),
			Metadata: map[string]any{
				"hourly_rate_cents": merged.HourlyRateCents,
				"active":            merged.Active,
				"opens":             merged.Opens,
				"closes":            merged.Closes,
			},
		})
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update court", "id", id, "error", err)
		return nil, err
	}
	batch.Publish(ctx)

	s.cfg.Log.Info("Court updated successfully", "id", id)
	return merged, nil
}

func mergeCourtUpdates(existing *model.Court, updates *model.CourtUpdate) *model.Court {
	merged := *existing
	if updates.Name != nil {
		merged.Name = sanitizer.NormalizeName(*updates.Name)
	}
	if updates.Opens != nil {
		merged.Opens = *updates.Opens
	}
	if updates.Closes != nil {
		merged.Closes = *updates.Closes
	}
	if updates.HourlyRateCents != nil {
		merged.HourlyRateCents = *updates.HourlyRateCents
	}
	if updates.Active != nil {
		merged.Active = *updates.Active
	}
	return &merged
}

package service

import (
	"context"
	"errors"

	auditservice "courtside/internal/audit/service"
	"courtside/internal/tariffs/engine"
	tariffserrors "courtside/internal/tariffs/errors"
	"courtside/internal/tariffs/repository"
	"courtside/internal/tariffs/validator"
	"courtside/pkg/clock"
	"courtside/pkg/config"
	"courtside/pkg/db"
	apperrors "courtside/pkg/errors"
	"courtside/pkg/model"
	"courtside/pkg/sanitizer"
	"courtside/pkg/validation"

	"github.com/google/uuid"
)

type TariffService interface {
	Create(ctx context.Context, actor model.Actor, tariff *model.Tariff) error
	GetByID(ctx context.Context, id string) (*model.Tariff, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]model.Tariff, int64, error)
	Update(ctx context.Context, actor model.Actor, id string, updates *model.TariffUpdate) (*model.Tariff, error)
	// Evaluate picks the tariff for a booking. Without an age no age-scoped
	// tariff can be matched and the evaluation is empty.
	Evaluate(ctx context.Context, userID, courtID string, age *int) (engine.Evaluation, error)
}

type tariffService struct {
	repo        repository.TariffRepository
	enrollments repository.EnrollmentRepository
	tx          db.TransactionManager
	validator   *validator.TariffValidator
	audit       *auditservice.Recorder
	clock       clock.Clock
	cfg         *config.Config
}

func NewTariffService(
	repo repository.TariffRepository,
	enrollments repository.EnrollmentRepository,
	tx db.TransactionManager,
	validator *validator.TariffValidator,
	audit *auditservice.Recorder,
	clk clock.Clock,
	cfg *config.Config,
) TariffService {
	return &tariffService{
		repo:        repo,
		enrollments: enrollments,
		tx:          tx,
		validator:   validator,
		audit:       audit,
		clock:       clk,
		cfg:         cfg,
	}
}

func (s *tariffService) Create(ctx context.Context, actor model.Actor, tariff *model.Tariff) error {
	tariff.Name = sanitizer.NormalizeName(tariff.Name)
	tariff.Segment = sanitizer.SanitizeSegment(tariff.Segment)
	tariff.CourtIDs = sanitizer.SanitizeIDs(tariff.CourtIDs)
	if err := s.validator.Validate(tariff); err != nil {
		s.cfg.Log.Warn("Tariff validation failed", "name", tariff.Name, "error", err)
		return validation.ToAppError("Invalid tariff", err)
	}

	tariff.ID = uuid.New().String()
	tariff.CreatedAt = s.clock.Now()

	batch := s.audit.NewBatch()
	err := s.tx.ExecuteTransaction(ctx, func(ctx context.Context) error {
		batch.Reset()
		if err := s.repo.Create(ctx, tariff); err != nil {
			return apperrors.Internal("Failed to create tariff", err)
		}
		return batch.Record(ctx, model.AuditEvent{
			SubjectType: model.SubjectTariff,
			SubjectID:   tariff.ID,
			EventType:   "tariff.created",
			Summary:     "tariff " + tariff.Name + " created",
			Actor:       actor.String(),
			Metadata: map[string]any{
				"discount_percent":         tariff.DiscountPercent,
				"requires_manual_approval": tariff.RequiresManualApproval,
			},
		})
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create tariff", "error", err)
		return err
	}
	batch.Publish(ctx)

	s.cfg.Log.Info("Tariff created successfully", "id", tariff.ID, "name", tariff.Name)
	return nil
}

func (s *tariffService) GetByID(ctx context.Context, id string) (*model.Tariff, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Tariff ID cannot be empty")
	}
	tariff, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, tariffserrors.ErrTariffNotFound) {
			return nil, apperrors.NotFoundWithID("Tariff", id)
		}
		return nil, apperrors.Internal("Failed to retrieve tariff", err)
	}
	return tariff, nil
}

func (s *tariffService) GetAll(ctx context.Context, limit int, offset int64) ([]model.Tariff, int64, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to count tariffs", "error", err)
		return nil, 0, apperrors.Internal("Failed to count tariffs", err)
	}
	tariffs, err := s.repo.FindAll(ctx, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list tariffs", "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve tariffs", err)
	}
	return tariffs, count, nil
}

func (s *tariffService) Update(ctx context.Context, actor model.Actor, id string, updates *model.TariffUpdate) (*model.Tariff, error) {
	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Tariff update validation failed", "id", id, "error", err)
		return nil, validation.ToAppError("Invalid update input", err)
	}

	var merged *model.Tariff
	batch := s.audit.NewBatch()
	err := s.tx.ExecuteTransaction(ctx, func(ctx context.Context) error {
		batch.Reset()
		existing, err := s.GetByID(ctx, id)
		if err != nil {
			return err
		}
		merged = mergeTariffUpdates(existing, updates)
		if err := s.validator.Validate(merged); err != nil {
			return validation.ToAppError("Invalid update input", err)
		}
		if err := s.repo.Update(ctx, merged); err != nil {
			return apperrors.Internal("Failed to update tariff", err)
		}
		return batch.Record(ctx, model.AuditEvent{
			SubjectType: model.SubjectTariff,
			SubjectID:   id,
			EventType:   "tariff.updated",
			Summary:     "tariff " + merged.Name + " updated",
			Actor:       actor.String(),
			Metadata: map[string]any{
				"discount_percent": merged.DiscountPercent,
				"active":           merged.Active,
			},
		})
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update tariff", "id", id, "error", err)
		return nil, err
	}
	batch.Publish(ctx)

	s.cfg.Log.Info("Tariff updated successfully", "id", id)
	return merged, nil
}

func (s *tariffService) Evaluate(ctx context.Context, userID, courtID string, age *int) (engine.Evaluation, error) {
	if age == nil {
		return engine.Evaluation{}, nil
	}

	tariffs, err := s.repo.FindActive(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to load tariffs", "error", err)
		return engine.Evaluation{}, apperrors.Internal("Failed to retrieve tariffs", err)
	}
	enrollments, err := s.enrollments.FindByUser(ctx, userID)
	if err != nil {
		s.cfg.Log.Error("Failed to load enrollments", "user_id", userID, "error", err)
		return engine.Evaluation{}, apperrors.Internal("Failed to retrieve enrollments", err)
	}

	return engine.FindApplicableTariff(tariffs, enrollments, userID, courtID, *age, s.clock.Now()), nil
}

func mergeTariffUpdates(existing *model.Tariff, updates *model.TariffUpdate) *model.Tariff {
	merged := *existing
	if updates.Name != nil {
		merged.Name = sanitizer.NormalizeName(*updates.Name)
	}
	if updates.DiscountPercent != nil {
		merged.DiscountPercent = *updates.DiscountPercent
	}
	if updates.RequiresManualApproval != nil {
		merged.RequiresManualApproval = *updates.RequiresManualApproval
	}
	if updates.ValidUntil != nil {
		until := *updates.ValidUntil
		merged.ValidUntil = &until
	}
	if updates.Active != nil {
		merged.Active = *updates.Active
	}
	if updates.CourtIDs != nil {
		merged.CourtIDs = sanitizer.SanitizeIDs(updates.CourtIDs)
	}
	return &merged
}

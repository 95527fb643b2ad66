package service

import (
	"context"
	"errors"

	auditservice "courtside/internal/audit/service"
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
)

type PromoService interface {
	Create(ctx context.Context, actor model.Actor, promo *model.PromoCode) error
	// Resolve returns the promo for code if it is usable now.
	Resolve(ctx context.Context, code string) (*model.PromoCode, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]model.PromoCode, int64, error)
	SetActive(ctx context.Context, actor model.Actor, code string, active bool) error
}

type promoService struct {
	repo      repository.PromoRepository
	tx        db.TransactionManager
	validator *validator.TariffValidator
	audit     *auditservice.Recorder
	clock     clock.Clock
	cfg       *config.Config
}

func NewPromoService(
	repo repository.PromoRepository,
	tx db.TransactionManager,
	validator *validator.TariffValidator,
	audit *auditservice.Recorder,
	clk clock.Clock,
	cfg *config.Config,
) PromoService {
	return &promoService{
		repo:      repo,
		tx:        tx,
		validator: validator,
		audit:     audit,
		clock:     clk,
		cfg:       cfg,
	}
}

func (s *promoService) Create(ctx context.Context, actor model.Actor, promo *model.PromoCode) error {
	promo.Code = sanitizer.SanitizePromoCode(promo.Code)
	if err := s.validator.ValidatePromo(promo); err != nil {
		s.cfg.Log.Warn("Promo code validation failed", "code", promo.Code, "error", err)
		return validation.ToAppError("Invalid promo code", err)
	}
	if promo.ValidFrom.IsZero() {
		promo.ValidFrom = s.clock.Now()
	}

	batch := s.audit.NewBatch()
	err := s.tx.ExecuteTransaction(ctx, func(ctx context.Context) error {
		batch.Reset()
		if err := s.repo.Create(ctx, promo); err != nil {
			if errors.Is(err, tariffserrors.ErrDuplicatePromo) {
				return apperrors.Conflict("promo code already exists")
			}
			return apperrors.Internal("Failed to create promo code", err)
		}
		return batch.Record(ctx, model.AuditEvent{
			SubjectType: model.SubjectTariff,
			SubjectID:   promo.Code,
			EventType:   "promo.created",
			Summary:     "promo code " + promo.Code + " created",
			Actor:       actor.String(),
			Metadata:    map[string]any{"kind": promo.Kind, "value": promo.Value},
		})
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create promo code", "code", promo.Code, "error", err)
		return err
	}
	batch.Publish(ctx)

	s.cfg.Log.Info("Promo code created", "code", promo.Code, "kind", promo.Kind)
	return nil
}

func (s *promoService) Resolve(ctx context.Context, code string) (*model.PromoCode, error) {
	code = sanitizer.SanitizePromoCode(code)
	if code == "" {
		return nil, apperrors.InvalidInput("Promo code cannot be empty")
	}

	promo, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, tariffserrors.ErrPromoNotFound) {
			return nil, apperrors.NotFoundWithID("Promo code", code)
		}
		return nil, apperrors.Internal("Failed to retrieve promo code", err)
	}
	if !promo.Usable(s.clock.Now()) {
		return nil, apperrors.InvalidInput("promo code is not active")
	}
	return promo, nil
}

func (s *promoService) GetAll(ctx context.Context, limit int, offset int64) ([]model.PromoCode, int64, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to count promo codes", "error", err)
		return nil, 0, apperrors.Internal("Failed to count promo codes", err)
	}
	promos, err := s.repo.FindAll(ctx, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list promo codes", "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve promo codes", err)
	}
	return promos, count, nil
}

func (s *promoService) SetActive(ctx context.Context, actor model.Actor, code string, active bool) error {
	code = sanitizer.SanitizePromoCode(code)

	batch := s.audit.NewBatch()
	err := s.tx.ExecuteTransaction(ctx, func(ctx context.Context) error {
		batch.Reset()
		if err := s.repo.SetActive(ctx, code, active); err != nil {
			if errors.Is(err, tariffserrors.ErrPromoNotFound) {
				return apperrors.NotFoundWithID("Promo code", code)
			}
			return apperrors.Internal("Failed to update promo code", err)
		}
		return batch.Record(ctx, model.AuditEvent{
			SubjectType: model.SubjectTariff,
			SubjectID:   code,
			EventType:   "promo.updated",
			Summary:     "promo code " + code + " updated",
			Actor:       actor.String(),
			Metadata:    map[string]any{"active": active},
		})
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update promo code", "code", code, "error", err)
		return err
	}
	batch.Publish(ctx)
	return nil
}

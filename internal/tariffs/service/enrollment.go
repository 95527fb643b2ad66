package service

import (
	"context"
	"errors"
	"strings"
	"time"

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

	"github.com/google/uuid"
)

const expiryBatchSize = 200

type EnrollmentService interface {
	Request(ctx context.Context, actor model.Actor, req *model.EnrollmentRequest) (*model.TariffEnrollment, error)
	DecideEnrollment(ctx context.Context, actor model.Actor, id string, req *model.EnrollmentDecisionRequest) (*model.TariffEnrollment, error)
	// ExpireDue moves lapsed PENDING and APPROVED enrollments to EXPIRED and
	// returns how many it changed.
	ExpireDue(ctx context.Context) (int, error)
	ListForUser(ctx context.Context, userID string) ([]model.TariffEnrollment, error)
	ListByStatus(ctx context.Context, status model.EnrollmentStatus, limit int, offset int64) ([]model.TariffEnrollment, int64, error)
}

type enrollmentService struct {
	repo      repository.EnrollmentRepository
	tariffs   repository.TariffRepository
	tx        db.TransactionManager
	validator *validator.TariffValidator
	audit     *auditservice.Recorder
	clock     clock.Clock
	cfg       *config.Config
}

func NewEnrollmentService(
	repo repository.EnrollmentRepository,
	tariffs repository.TariffRepository,
	tx db.TransactionManager,
	validator *validator.TariffValidator,
	audit *auditservice.Recorder,
	clk clock.Clock,
	cfg *config.Config,
) EnrollmentService {
	return &enrollmentService{
		repo:      repo,
		tariffs:   tariffs,
		tx:        tx,
		validator: validator,
		audit:     audit,
		clock:     clk,
		cfg:       cfg,
	}
}

func (s *enrollmentService) Request(ctx context.Context, actor model.Actor, req *model.EnrollmentRequest) (*model.TariffEnrollment, error) {
	req.TariffID = sanitizer.SanitizeID(req.TariffID)
	req.Notes = sanitizer.NormalizeReason(req.Notes)
	if err := s.validator.ValidateEnrollmentRequest(req); err != nil {
		s.cfg.Log.Warn("Enrollment request validation failed", "user_id", actor.ID, "error", err)
		return nil, validation.ToAppError("Invalid enrollment request", err)
	}

	now := s.clock.Now()
	enrollment := &model.TariffEnrollment{
		ID:          uuid.New().String(),
		TariffID:    req.TariffID,
		UserID:      actor.ID,
		Status:      model.EnrollmentPending,
		RequestedAt: now,
		Notes:       req.Notes,
		BlockingKey: model.EnrollmentBlockingKey(req.TariffID, actor.ID),
	}

	batch := s.audit.NewBatch()
	err := s.tx.ExecuteTransaction(ctx, func(ctx context.Context) error {
		batch.Reset()
		tariff, err := s.tariffs.FindByID(ctx, req.TariffID)
		if err != nil {
			if errors.Is(err, tariffserrors.ErrTariffNotFound) {
				return apperrors.NotFoundWithID("Tariff", req.TariffID)
			}
			return apperrors.Internal("Failed to retrieve tariff", err)
		}
		if !tariff.Active || !tariff.InValidity(now) {
			return apperrors.InvalidInput("tariff is not currently offered")
		}
		if !tariff.RequiresManualApproval {
			return apperrors.InvalidInput("tariff does not require enrollment")
		}
		enrollment.ExpiresAt = enrollmentExpiry(now, s.cfg.EnrollmentTTL, tariff.ValidUntil)

		if err := s.repo.Create(ctx, enrollment); err != nil {
			if errors.Is(err, tariffserrors.ErrDuplicateEnrollment) {
				return apperrors.Conflict("an enrollment for this tariff is already pending or approved")
			}
			return apperrors.Internal("Failed to create enrollment", err)
		}
		return batch.Record(ctx, model.AuditEvent{
			SubjectType: model.SubjectEnrollment,
			SubjectID:   enrollment.ID,
			EventType:   "enrollment.requested",
			Summary:     "enrollment requested for tariff " + tariff.Name,
			Actor:       actor.String(),
			Metadata:    map[string]any{"tariff_id": tariff.ID, "user_id": actor.ID},
		})
	})
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeConflict) || apperrors.HasCode(err, apperrors.CodeInvalidInput) {
			s.cfg.Log.Warn("Enrollment request rejected", "user_id", actor.ID, "tariff_id", req.TariffID, "error", err)
		} else {
			s.cfg.Log.Error("Failed to request enrollment", "user_id", actor.ID, "tariff_id", req.TariffID, "error", err)
		}
		return nil, err
	}
	batch.Publish(ctx)

	s.cfg.Log.Info("Enrollment requested", "id", enrollment.ID, "tariff_id", enrollment.TariffID, "user_id", enrollment.UserID)
	return enrollment, nil
}

// DecideEnrollment applies a staff decision. Repeating the decision an
// enrollment already carries is a no-op; any other decision on a non-PENDING
// enrollment is an invalid transition.
func (s *enrollmentService) DecideEnrollment(ctx context.Context, actor model.Actor, id string, req *model.EnrollmentDecisionRequest) (*model.TariffEnrollment, error) {
	if !actor.IsStaff() {
		return nil, apperrors.Forbidden("staff role required")
	}
	req.Notes = sanitizer.NormalizeReason(req.Notes)
	if err := s.validator.ValidateDecision(req); err != nil {
		s.cfg.Log.Warn("Enrollment decision validation failed", "id", id, "error", err)
		return nil, validation.ToAppError("Invalid enrollment decision", err)
	}

	var decided *model.TariffEnrollment
	batch := s.audit.NewBatch()
	err := s.tx.ExecuteTransaction(ctx, func(ctx context.Context) error {
		batch.Reset()
		enrollment, err := s.findEnrollment(ctx, id)
		if err != nil {
			return err
		}
		decided = enrollment

		target := model.EnrollmentApproved
		if req.Decision == model.DecisionReject {
			target = model.EnrollmentRejected
		}
		if enrollment.Status == target {
			return nil
		}
		if enrollment.Status != model.EnrollmentPending {
			return apperrors.InvalidTransition(string(enrollment.Status), strings.ToLower(string(req.Decision)))
		}

		now := s.clock.Now()
		updated := *enrollment
		updated.Status = target
		updated.DecidedAt = &now
		updated.DecidedBy = actor.String()
		updated.Notes = req.Notes

		if target == model.EnrollmentApproved {
			tariff, err := s.tariffs.FindByID(ctx, enrollment.TariffID)
			if err != nil {
				return apperrors.Internal("Failed to retrieve tariff", err)
			}
			updated.ExpiresAt = enrollmentExpiry(now, s.cfg.EnrollmentTTL, tariff.ValidUntil)
		} else {
			updated.BlockingKey = ""
		}

		if err := s.repo.UpdateStatus(ctx, &updated, model.EnrollmentPending); err != nil {
			if errors.Is(err, tariffserrors.ErrStatusChanged) {
				return apperrors.Conflict("enrollment was decided concurrently")
			}
			return apperrors.Internal("Failed to update enrollment", err)
		}
		decided = &updated

		return batch.Record(ctx, model.AuditEvent{
			SubjectType: model.SubjectEnrollment,
			SubjectID:   updated.ID,
			EventType:   "enrollment." + strings.ToLower(string(target)),
			Summary:     req.Notes,
			Actor:       actor.String(),
			Metadata: map[string]any{
				"tariff_id": updated.TariffID,
				"user_id":   updated.UserID,
				"from":      model.EnrollmentPending,
				"to":        target,
			},
		})
	})
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeInvalidTransition) || apperrors.HasCode(err, apperrors.CodeNotFound) {
			s.cfg.Log.Warn("Enrollment decision rejected", "id", id, "decision", req.Decision, "error", err)
		} else {
			s.cfg.Log.Error("Failed to decide enrollment", "id", id, "error", err)
		}
		return nil, err
	}
	batch.Publish(ctx)

	s.cfg.Log.Info("Enrollment decided", "id", id, "status", decided.Status, "actor", actor.String())
	return decided, nil
}

func (s *enrollmentService) ExpireDue(ctx context.Context) (int, error) {
	now := s.clock.Now()
	lapsed, err := s.tariffs.FindLapsedIDs(ctx, now)
	if err != nil {
		s.cfg.Log.Error("Failed to load lapsed tariffs", "error", err)
		return 0, apperrors.Internal("Failed to retrieve tariffs", err)
	}
	due, err := s.repo.FindDueForExpiry(ctx, now, lapsed, expiryBatchSize)
	if err != nil {
		s.cfg.Log.Error("Failed to load enrollments due for expiry", "error", err)
		return 0, apperrors.Internal("Failed to retrieve enrollments", err)
	}

	expired := 0
	for i := range due {
		if err := s.expire(ctx, &due[i], now); err != nil {
			if errors.Is(err, tariffserrors.ErrStatusChanged) {
				continue
			}
			s.cfg.Log.Error("Failed to expire enrollment", "id", due[i].ID, "error", err)
			continue
		}
		expired++
	}

	if expired > 0 {
		s.cfg.Log.Info("Enrollments expired", "count", expired)
	}
	return expired, nil
}

func (s *enrollmentService) expire(ctx context.Context, enrollment *model.TariffEnrollment, now time.Time) error {
	batch := s.audit.NewBatch()
	err := s.tx.ExecuteTransaction(ctx, func(ctx context.Context) error {
		batch.Reset()
		updated := *enrollment
		updated.Status = model.EnrollmentExpired
		updated.BlockingKey = ""
		if err := s.repo.UpdateStatus(ctx, &updated, enrollment.Status); err != nil {
			return err
		}
		return batch.Record(ctx, model.AuditEvent{
			SubjectType: model.SubjectEnrollment,
			SubjectID:   enrollment.ID,
			EventType:   "enrollment.expired",
			Summary:     "enrollment expired",
			Actor:       model.SystemActor.String(),
			Metadata: map[string]any{
				"tariff_id":  enrollment.TariffID,
				"user_id":    enrollment.UserID,
				"from":       enrollment.Status,
				"expired_at": now,
			},
		})
	})
	if err != nil {
		return err
	}
	batch.Publish(ctx)
	return nil
}

func (s *enrollmentService) ListForUser(ctx context.Context, userID string) ([]model.TariffEnrollment, error) {
	enrollments, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		s.cfg.Log.Error("Failed to list enrollments", "user_id", userID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve enrollments", err)
	}
	return enrollments, nil
}

func (s *enrollmentService) ListByStatus(ctx context.Context, status model.EnrollmentStatus, limit int, offset int64) ([]model.TariffEnrollment, int64, error) {
	count, err := s.repo.CountByStatus(ctx, status)
	if err != nil {
		s.cfg.Log.Error("Failed to count enrollments", "status", status, "error", err)
		return nil, 0, apperrors.Internal("Failed to count enrollments", err)
	}
	enrollments, err := s.repo.FindByStatus(ctx, status, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list enrollments", "status", status, "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve enrollments", err)
	}
	return enrollments, count, nil
}

func (s *enrollmentService) findEnrollment(ctx context.Context, id string) (*model.TariffEnrollment, error) {
	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, tariffserrors.ErrEnrollmentNotFound) {
			return nil, apperrors.NotFoundWithID("Enrollment", id)
		}
		return nil, apperrors.Internal("Failed to retrieve enrollment", err)
	}
	return enrollment, nil
}

// enrollmentExpiry caps the enrollment TTL at the tariff's own end of validity.
// A request gets one when it is filed and approval restarts it.
func enrollmentExpiry(now time.Time, ttl time.Duration, validUntil *time.Time) *time.Time {
	expires := now.Add(ttl)
	if validUntil != nil && validUntil.Before(expires) {
		expires = *validUntil
	}
	return &expires
}

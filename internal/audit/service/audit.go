package service

import (
	"context"

	"courtside/internal/audit/repository"
	apperrors "courtside/pkg/errors"
	"courtside/pkg/model"
)

type AuditService interface {
	ListBySubject(ctx context.Context, subjectType string, subjectID string, limit int, offset int64) ([]model.AuditEvent, int64, error)
}

type auditService struct {
	repo repository.AuditRepository
}

func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

var subjectTypes = map[string]model.SubjectType{
	"reservations": model.SubjectReservation,
	"enrollments":  model.SubjectEnrollment,
	"ledger":       model.SubjectLedgerEntry,
	"tariffs":      model.SubjectTariff,
	"maintenance":  model.SubjectMaintenance,
	"courts":       model.SubjectCourt,
	"wallets":      model.SubjectWallet,
}

func (s *auditService) ListBySubject(ctx context.Context, subjectType string, subjectID string, limit int, offset int64) ([]model.AuditEvent, int64, error) {
	st, ok := subjectTypes[subjectType]
	if !ok {
		return nil, 0, apperrors.InvalidInput("unknown audit subject type: " + subjectType)
	}
	if subjectID == "" {
		return nil, 0, apperrors.InvalidInput("Subject ID cannot be empty")
	}

	count, err := s.repo.CountBySubject(ctx, st, subjectID)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to count audit events", err)
	}
	events, err := s.repo.FindBySubject(ctx, st, subjectID, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to retrieve audit events", err)
	}
	return events, count, nil
}

package repository

import (
	"context"

	"courtside/pkg/model"
)

const CollectionName = "Audit_events"

// AuditRepository is append-only.
type AuditRepository interface {
	Insert(ctx context.Context, event *model.AuditEvent) error
	FindBySubject(ctx context.Context, subjectType model.SubjectType, subjectID string, limit int, offset int64) ([]model.AuditEvent, error)
	CountBySubject(ctx context.Context, subjectType model.SubjectType, subjectID string) (int64, error)
}

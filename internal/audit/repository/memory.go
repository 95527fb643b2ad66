package repository

import (
	"context"
	"sort"

	"courtside/pkg/db/memory"
	"courtside/pkg/model"
)

type sequencedEvent struct {
	seq   int64
	event model.AuditEvent
}

type memoryAuditRepository struct {
	store  *memory.Store
	events *memory.Table[sequencedEvent]
	next   int64
}

func NewMemoryAuditRepository(store *memory.Store) AuditRepository {
	return &memoryAuditRepository{
		store:  store,
		events: memory.NewTable[sequencedEvent](store),
	}
}

func (r *memoryAuditRepository) Insert(ctx context.Context, event *model.AuditEvent) error {
	defer r.store.Lock(ctx)()
	r.next++
	r.events.Rows[event.ID] = sequencedEvent{seq: r.next, event: *event}
	return nil
}

func (r *memoryAuditRepository) FindBySubject(ctx context.Context, subjectType model.SubjectType, subjectID string, limit int, offset int64) ([]model.AuditEvent, error) {
	return memory.Page(r.matching(ctx, subjectType, subjectID), limit, offset), nil
}

func (r *memoryAuditRepository) CountBySubject(ctx context.Context, subjectType model.SubjectType, subjectID string) (int64, error) {
	return int64(len(r.matching(ctx, subjectType, subjectID))), nil
}

func (r *memoryAuditRepository) matching(ctx context.Context, subjectType model.SubjectType, subjectID string) []model.AuditEvent {
	defer r.store.Lock(ctx)()

	var rows []sequencedEvent
	for _, row := range r.events.Rows {
		if row.event.SubjectType == subjectType && row.event.SubjectID == subjectID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	out := make([]model.AuditEvent, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.event)
	}
	return out
}

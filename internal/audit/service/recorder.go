package service

import (
	"context"
	"fmt"

	"courtside/internal/audit/repository"
	"courtside/pkg/clock"
	"courtside/pkg/logger"
	"courtside/pkg/model"

	"github.com/google/uuid"
)

// Recorder writes audit events inside the caller's transaction and fans them
// out as domain events once the caller has committed.
type Recorder struct {
	repo      repository.AuditRepository
	publisher EventPublisher
	clock     clock.Clock
	log       *logger.Logger
}

func NewRecorder(repo repository.AuditRepository, publisher EventPublisher, clk clock.Clock, log *logger.Logger) *Recorder {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &Recorder{
		repo:      repo,
		publisher: publisher,
		clock:     clk,
		log:       log,
	}
}

func (r *Recorder) Record(ctx context.Context, event model.AuditEvent) (model.AuditEvent, error) {
	event.ID = uuid.New().String()
	event.CreatedAt = r.clock.Now()
	if err := r.repo.Insert(ctx, &event); err != nil {
		return model.AuditEvent{}, fmt.Errorf("failed to record %s for %s %s: %w", event.EventType, event.SubjectType, event.SubjectID, err)
	}
	return event, nil
}

// Publish is best effort: a delivery failure is logged and never surfaces to
// the operation that produced the events.
func (r *Recorder) Publish(ctx context.Context, events ...model.AuditEvent) {
	ctx = context.WithoutCancel(ctx)
	for _, event := range events {
		if err := r.publisher.Publish(ctx, event); err != nil {
			r.log.Warn("Failed to publish domain event",
				"event_id", event.ID,
				"event_type", event.EventType,
				"subject_id", event.SubjectID,
				"error", err,
			)
		}
	}
}

// Batch collects the events recorded by one transaction attempt. Reset it at
// the start of every attempt; stores may retry the transaction body.
type Batch struct {
	recorder *Recorder
	events   []model.AuditEvent
}

func (r *Recorder) NewBatch() *Batch {
	return &Batch{recorder: r}
}

func (b *Batch) Reset() {
	b.events = b.events[:0]
}

func (b *Batch) Record(ctx context.Context, event model.AuditEvent) error {
	recorded, err := b.recorder.Record(ctx, event)
	if err != nil {
		return err
	}
	b.events = append(b.events, recorded)
	return nil
}

func (b *Batch) Events() []model.AuditEvent {
	return b.events
}

type enclosingBatchKey struct{}

// Enclose returns a context under which batches of nested operations hand
// their events to b instead of publishing them. Use it when those operations
// join b's transaction, so nothing leaves before the outer commit.
func (b *Batch) Enclose(ctx context.Context) context.Context {
	return context.WithValue(ctx, enclosingBatchKey{}, b)
}

func (b *Batch) Publish(ctx context.Context) {
	if outer, ok := ctx.Value(enclosingBatchKey{}).(*Batch); ok && outer != b {
		outer.events = append(outer.events, b.events...)
		return
	}
	b.recorder.Publish(ctx, b.events...)
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"courtside/internal/audit/repository"
	"courtside/pkg/clock"
	"courtside/pkg/db/memory"
	apperrors "courtside/pkg/errors"
	"courtside/pkg/kafka"
	"courtside/pkg/logger"
	"courtside/pkg/model"
)

type mockProducer struct {
	publishFunc func(ctx context.Context, msg kafka.Message) error
	messages    []kafka.Message
}

func (m *mockProducer) Publish(ctx context.Context, msg kafka.Message) error {
	m.messages = append(m.messages, msg)
	if m.publishFunc != nil {
		return m.publishFunc(ctx, msg)
	}
	return nil
}

func newRecorder(t *testing.T, producer MessageProducer) (*Recorder, *memory.Store, repository.AuditRepository) {
	t.Helper()
	store := memory.NewStore()
	repo := repository.NewMemoryAuditRepository(store)
	var publisher EventPublisher = NopPublisher{}
	if producer != nil {
		publisher = NewKafkaPublisher(producer, "courtside")
	}
	clk := clock.NewFixed(time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC))
	return NewRecorder(repo, publisher, clk, logger.Discard()), store, repo
}

func TestBatch_RolledBackWithTransaction(t *testing.T) {
	rec, store, repo := newRecorder(t, nil)
	batch := rec.NewBatch()

	err := store.ExecuteTransaction(context.Background(), func(ctx context.Context) error {
		batch.Reset()
		if err := batch.Record(ctx, model.AuditEvent{SubjectType: model.SubjectReservation, SubjectID: "r1", EventType: "reservation.created"}); err != nil {
			return err
		}
		return errors.New("later step failed")
	})
	if err == nil {
		t.Fatal("expected transaction error")
	}

	count, _ := repo.CountBySubject(context.Background(), model.SubjectReservation, "r1")
	if count != 0 {
		t.Errorf("audit event should roll back with the transaction, found %d", count)
	}
}

func TestBatch_PublishesAfterCommit(t *testing.T) {
	producer := &mockProducer{}
	rec, store, repo := newRecorder(t, producer)
	batch := rec.NewBatch()

	err := store.ExecuteTransaction(context.Background(), func(ctx context.Context) error {
		batch.Reset()
		return batch.Record(ctx, model.AuditEvent{SubjectType: model.SubjectReservation, SubjectID: "r1", EventType: "reservation.created", Actor: "u1"})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(producer.messages) != 0 {
		t.Fatal("nothing should be published before Publish is called")
	}

	batch.Publish(context.Background())

	if len(producer.messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(producer.messages))
	}
	msg := producer.messages[0]
	if msg.Key != "r1" || msg.GetEventType() != "reservation.created" {
		t.Errorf("unexpected message %+v", msg)
	}
	if msg.GetEventID() != batch.Events()[0].ID {
		t.Error("event id header should match the audit event id")
	}

	count, _ := repo.CountBySubject(context.Background(), model.SubjectReservation, "r1")
	if count != 1 {
		t.Errorf("expected 1 stored event, got %d", count)
	}
}

func TestBatch_NestedPublishWaitsForEnclosingCommit(t *testing.T) {
	producer := &mockProducer{}
	rec, store, _ := newRecorder(t, producer)
	outer := rec.NewBatch()

	err := store.ExecuteTransaction(outer.Enclose(context.Background()), func(ctx context.Context) error {
		outer.Reset()
		inner := rec.NewBatch()
		err := store.ExecuteTransaction(ctx, func(ctx context.Context) error {
			inner.Reset()
			return inner.Record(ctx, model.AuditEvent{SubjectType: model.SubjectReservation, SubjectID: "r1", EventType: "reservation.paid"})
		})
		if err != nil {
			return err
		}
		inner.Publish(ctx)
		if len(producer.messages) != 0 {
			t.Error("nested batch published before the enclosing transaction committed")
		}
		return outer.Record(ctx, model.AuditEvent{SubjectType: model.SubjectLedgerEntry, SubjectID: "e1", EventType: "payment.charge_succeeded"})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	outer.Publish(context.Background())
	if len(producer.messages) != 2 {
		t.Fatalf("expected 2 messages after commit, got %d", len(producer.messages))
	}
	if producer.messages[0].GetEventType() != "reservation.paid" {
		t.Errorf("nested event should keep its order, got %s first", producer.messages[0].GetEventType())
	}
}

func TestPublish_FailureIsSwallowed(t *testing.T) {
	producer := &mockProducer{publishFunc: func(context.Context, kafka.Message) error {
		return errors.New("broker down")
	}}
	rec, _, _ := newRecorder(t, producer)

	rec.Publish(context.Background(), model.AuditEvent{ID: "e1", SubjectID: "r1", EventType: "x"})

	if len(producer.messages) != 1 {
		t.Error("publish should have been attempted")
	}
}

func TestAuditService_ListBySubject(t *testing.T) {
	rec, _, repo := newRecorder(t, nil)
	ctx := context.Background()
	for _, et := range []string{"reservation.created", "reservation.paid", "reservation.checked_in"} {
		if _, err := rec.Record(ctx, model.AuditEvent{SubjectType: model.SubjectReservation, SubjectID: "r1", EventType: et}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	svc := NewAuditService(repo)
	events, total, err := svc.ListBySubject(ctx, "reservations", "r1", 2, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 3 || len(events) != 2 {
		t.Fatalf("expected total 3 and page of 2, got %d and %d", total, len(events))
	}
	if events[0].EventType != "reservation.paid" {
		t.Errorf("expected insertion order, got %s first", events[0].EventType)
	}

	if _, _, err := svc.ListBySubject(ctx, "users", "u1", 10, 0); !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected invalid input, got %v", err)
	}
}

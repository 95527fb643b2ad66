package service

import (
	"context"

	"courtside/pkg/kafka"
	"courtside/pkg/model"
)

const eventSchemaVersion = "1"

type EventPublisher interface {
	Publish(ctx context.Context, event model.AuditEvent) error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, model.AuditEvent) error { return nil }

type MessageProducer interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// KafkaPublisher keys every message by subject id so the events of one
// reservation or enrollment keep their order on a partition.
type KafkaPublisher struct {
	producer MessageProducer
	source   string
}

func NewKafkaPublisher(producer MessageProducer, source string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, source: source}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event model.AuditEvent) error {
	msg, err := kafka.NewMessage().
		WithKey(event.SubjectID).
		WithEventID(event.ID).
		WithEventType(event.EventType).
		WithSubjectType(string(event.SubjectType)).
		WithSchemaVersion(eventSchemaVersion).
		WithSource(p.source).
		WithTimestamp(event.CreatedAt).
		WithValue(event).
		Build()
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

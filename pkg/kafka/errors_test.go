package kafka

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ErrorTypeUnknown},
		{"deadline", fmt.Errorf("write: %w", context.DeadlineExceeded), ErrorTypeTransient},
		{"connection refused", errors.New("dial tcp: Connection Refused"), ErrorTypeTransient},
		{"leader", errors.New("[5] Leader Not Available"), ErrorTypeTransient},
		{"closed producer", ErrProducerClosed, ErrorTypePermanent},
		{"unknown topic", errors.New("unknown topic or partition"), ErrorTypePermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMessageBuilder(t *testing.T) {
	msg, err := NewMessage().
		WithKey("res-1").
		WithEventType("reservation.created").
		WithValue(map[string]string{"id": "res-1"}).
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.GetEventID() == "" {
		t.Error("event id should be generated")
	}
	if msg.GetEventType() != "reservation.created" {
		t.Errorf("unexpected event type %q", msg.GetEventType())
	}
	if _, ok := msg.GetHeader(HeaderTimestamp); !ok {
		t.Error("timestamp header should be set")
	}

	_, err = NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	if !errors.Is(err, ErrInvalidMessage) {
		t.Errorf("expected ErrInvalidMessage, got %v", err)
	}
}

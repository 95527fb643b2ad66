package service

import (
	"testing"

	"courtside/pkg/model"
)

func TestNextStatus(t *testing.T) {
	statuses := []model.ReservationStatus{
		model.ReservationPending,
		model.ReservationPaid,
		model.ReservationInProgress,
		model.ReservationCompleted,
		model.ReservationCancelled,
		model.ReservationNoShow,
	}
	allowed := map[Event]map[model.ReservationStatus]model.ReservationStatus{
		EventMarkPaid: {model.ReservationPending: model.ReservationPaid},
		EventCheckIn:  {model.ReservationPaid: model.ReservationInProgress, model.ReservationPending: model.ReservationInProgress},
		EventCheckOut: {model.ReservationInProgress: model.ReservationCompleted},
		EventCancel:   {model.ReservationPending: model.ReservationCancelled, model.ReservationPaid: model.ReservationCancelled},
		EventNoShow:   {model.ReservationPaid: model.ReservationNoShow},
	}

	for event, table := range allowed {
		for _, from := range statuses {
			to, ok := nextStatus(event, from)
			want, wantOK := table[from]
			if ok != wantOK || to != want {
				t.Errorf("%s from %s: got (%s, %v), want (%s, %v)", event, from, to, ok, want, wantOK)
			}
		}
	}
}

func TestNextStatus_TerminalStatesAreFinal(t *testing.T) {
	for _, from := range []model.ReservationStatus{model.ReservationCompleted, model.ReservationCancelled, model.ReservationNoShow} {
		for _, event := range []Event{EventMarkPaid, EventCheckIn, EventCheckOut, EventCancel, EventNoShow} {
			if to, ok := nextStatus(event, from); ok {
				t.Errorf("%s from terminal %s unexpectedly allowed to %s", event, from, to)
			}
		}
	}
}

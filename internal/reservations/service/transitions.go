package service

import "courtside/pkg/model"

type Event string

const (
	EventMarkPaid Event = "mark_paid"
	EventCheckIn  Event = "check_in"
	EventCheckOut Event = "check_out"
	EventCancel   Event = "cancel"
	EventNoShow   Event = "no_show"
)

// transitions is the complete lifecycle table. A (event, from) pair missing
// here is an invalid transition.
var transitions = map[Event]map[model.ReservationStatus]model.ReservationStatus{
	EventMarkPaid: {
		model.ReservationPending: model.ReservationPaid,
	},
	EventCheckIn: {
		model.ReservationPaid: model.ReservationInProgress,
		// Only zero-amount reservations get past the payment check.
		model.ReservationPending: model.ReservationInProgress,
	},
	EventCheckOut: {
		model.ReservationInProgress: model.ReservationCompleted,
	},
	EventCancel: {
		model.ReservationPending: model.ReservationCancelled,
		model.ReservationPaid:    model.ReservationCancelled,
	},
	EventNoShow: {
		model.ReservationPaid: model.ReservationNoShow,
	},
}

func nextStatus(event Event, from model.ReservationStatus) (model.ReservationStatus, bool) {
	to, ok := transitions[event][from]
	return to, ok
}
